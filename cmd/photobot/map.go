package main

import (
	"github.com/ArthurCbn/photobot/internal/web"
	"github.com/spf13/cobra"
)

var listenAddr string

var mapCmd = &cobra.Command{
	Use:   "map <source>",
	Short: "Serve the group editing API for the photos in source",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		cfg.Source = args[0]
		if listenAddr != "" {
			cfg.Listen = listenAddr
		}
		if err := cfg.ValidateServer(); err != nil {
			return err
		}

		server := web.NewServer(cfg)
		defer server.Close()
		server.SetVersion(appVersion)
		return server.Start(cfg.Listen)
	},
}

func init() {
	mapCmd.Flags().StringVar(&listenAddr, "listen", "", "HTTP listen address (default :8080)")
	mapCmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "scan source sub-directories")
}
