package main

import (
	"flag"
	"log"

	"github.com/ArthurCbn/photobot/internal/config"
	"github.com/ArthurCbn/photobot/internal/web"
)

var (
	version = "dev" // set by ldflags during build
)

func main() {
	addr := flag.String("addr", "localhost:8080", "HTTP server address")
	source := flag.String("source", "", "photo directory shown on the map")
	groups := flag.String("groups", "", "group store path")
	flag.Parse()

	cfg := config.DefaultConfig()
	cfg.ApplyEnv()
	if *source != "" {
		cfg.Source = *source
	}
	if *groups != "" {
		cfg.GroupsFile = *groups
	}
	if err := cfg.ValidateServer(); err != nil {
		log.Fatal(err)
	}

	server := web.NewServer(cfg)
	defer server.Close()
	server.SetVersion(version)

	if err := server.Start(*addr); err != nil {
		log.Fatal(err)
	}
}
