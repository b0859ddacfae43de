// Package web serves the group editing API used by the map, and runs sorts
// with progress streamed over a websocket.
package web

import (
	"net/http"
	"os"
	"sync"

	"github.com/ArthurCbn/photobot/internal/config"
	"github.com/ArthurCbn/photobot/internal/log"
	"github.com/ArthurCbn/photobot/internal/metadata"
	"github.com/ArthurCbn/photobot/internal/metrics"
	"github.com/ArthurCbn/photobot/internal/store"
	"github.com/gorilla/mux"
)

type Server struct {
	router   *mux.Router
	hub      *Hub
	version  string
	cfg      *config.Config
	store    *store.Store
	sessions *SessionStore
	meta     *metadata.Extractor
	tags     *metadata.ExifTool
	logger   *log.Logger
	points   pointCache
	runMu    sync.Mutex
}

// NewServer builds a server browsing cfg.Source and editing cfg.GroupsFile.
func NewServer(cfg *config.Config) *Server {
	tags := metadata.NewExifTool(cfg.ExifToolPath)
	s := &Server{
		router:   mux.NewRouter(),
		hub:      NewHub(),
		version:  "unknown",
		cfg:      cfg,
		store:    store.Open(cfg.GroupsFile),
		sessions: NewSessionStore(),
		meta:     metadata.New(tags),
		tags:     tags,
		logger:   log.NewConsole(os.Stdout),
	}

	go s.hub.Run()

	s.setupRoutes()
	return s
}

func (s *Server) SetVersion(v string) {
	s.version = v
}

// SetExtractor replaces the metadata extractor used to list points.
func (s *Server) SetExtractor(e *metadata.Extractor) {
	s.meta = e
}

func (s *Server) setupRoutes() {
	s.router.Use(metrics.Middleware)

	api := s.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/version", s.handleVersion).Methods("GET")
	api.HandleFunc("/groups", s.handleListGroups).Methods("GET")
	api.HandleFunc("/points", s.handlePoints).Methods("GET")
	api.HandleFunc("/sort", s.handleSort).Methods("POST")
	api.HandleFunc("/ws", s.handleWebSocket)

	// Editing session routes
	api.HandleFunc("/sessions", s.handleCreateSession).Methods("POST")
	api.HandleFunc("/sessions/{id}", s.handleGetSession).Methods("GET")
	api.HandleFunc("/sessions/{id}/dates", s.handleAddDateGroup).Methods("POST")
	api.HandleFunc("/sessions/{id}/drawings", s.handleSetDrawings).Methods("POST")
	api.HandleFunc("/sessions/{id}/names", s.handleSetName).Methods("POST")
	api.HandleFunc("/sessions/{id}/export", s.handleExport).Methods("POST")

	s.router.Handle("/metrics", metrics.Handler()).Methods("GET")
}

// Handler returns the HTTP handler serving every route.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Start(addr string) error {
	s.logger.Info("Starting photobot map server at http://" + addr)
	return http.ListenAndServe(addr, s.router)
}

// Close stops the websocket hub and the metadata helper.
func (s *Server) Close() error {
	s.hub.Stop()
	return s.tags.Close()
}
