package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/ArthurCbn/photobot/internal/config"
	"github.com/ArthurCbn/photobot/internal/group"
	"github.com/ArthurCbn/photobot/internal/metrics"
	"github.com/ArthurCbn/photobot/internal/pipeline"
	"github.com/ArthurCbn/photobot/internal/store"
	"github.com/gorilla/mux"
)

// ValidationError represents a field validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type APIErrorResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeAPIError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, APIErrorResponse{Message: message})
}

func writeValidationError(w http.ResponseWriter, field, message string) {
	writeJSON(w, http.StatusBadRequest, ValidationError{
		Field:   field,
		Message: message,
	})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"version": s.version})
}

type GroupsResponse struct {
	Path   string         `json:"path"`
	Groups []store.Record `json:"groups"`
}

func (s *Server) handleListGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := s.store.LoadOrEmpty()
	if err != nil {
		writeAPIError(w, http.StatusInternalServerError, err.Error())
		return
	}

	records := make([]store.Record, 0, len(groups))
	for _, g := range groups {
		records = append(records, store.ToRecord(g))
	}
	writeJSON(w, http.StatusOK, GroupsResponse{Path: s.store.Path(), Groups: records})
}

type PointsResponse struct {
	Points  []Point    `json:"points"`
	MinDate *time.Time `json:"min_date,omitempty"`
	MaxDate *time.Time `json:"max_date,omitempty"`
}

func (s *Server) handlePoints(w http.ResponseWriter, r *http.Request) {
	var from, to time.Time
	for field, dst := range map[string]*time.Time{"start": &from, "end": &to} {
		v := r.URL.Query().Get(field)
		if v == "" {
			continue
		}
		t, err := group.ParseDate(v)
		if err != nil {
			writeValidationError(w, field, err.Error())
			return
		}
		*dst = t
	}

	points, err := s.points.get(s.loadPoints)
	if err != nil {
		writeAPIError(w, http.StatusInternalServerError, err.Error())
		return
	}

	first, last := dateRange(points)
	writeJSON(w, http.StatusOK, PointsResponse{
		Points:  filterPoints(points, from, to),
		MinDate: first,
		MaxDate: last,
	})
}

// Editing sessions

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	sess := s.sessions.Create()
	writeJSON(w, http.StatusCreated, sess.View())
}

func (s *Server) session(w http.ResponseWriter, r *http.Request) (*Session, bool) {
	sess, ok := s.sessions.Get(mux.Vars(r)["id"])
	if !ok {
		writeAPIError(w, http.StatusNotFound, "session not found")
	}
	return sess, ok
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sess.View())
}

type DateGroupRequest struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type DateGroupResponse struct {
	Group   store.Record `json:"group"`
	Session SessionView  `json:"session"`
}

func (s *Server) handleAddDateGroup(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	var req DateGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIError(w, http.StatusBadRequest, err.Error())
		return
	}
	if _, err := group.ParseDate(req.Start); err != nil {
		writeValidationError(w, "start", err.Error())
		return
	}
	if _, err := group.ParseDate(req.End); err != nil {
		writeValidationError(w, "end", err.Error())
		return
	}

	existing, err := s.store.LoadOrEmpty()
	if err != nil {
		writeAPIError(w, http.StatusInternalServerError, err.Error())
		return
	}

	g, err := sess.AddDateGroup(req.Start, req.End, existing)
	if errors.Is(err, ErrDuplicateGroup) {
		writeAPIError(w, http.StatusConflict, "this date group already exists")
		return
	}
	if err != nil {
		writeValidationError(w, "end", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, DateGroupResponse{
		Group:   store.ToRecord(g),
		Session: sess.View(),
	})
}

type DrawingsRequest struct {
	AllDrawings []Feature `json:"all_drawings"`
}

func (s *Server) handleSetDrawings(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	var req DrawingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := sess.SetDrawings(req.AllDrawings); err != nil {
		writeValidationError(w, "all_drawings", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, sess.View())
}

type NameRequest struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func (s *Server) handleSetName(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	var req NameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIError(w, http.StatusBadRequest, err.Error())
		return
	}

	err := sess.SetName(req.ID, req.Name)
	if errors.Is(err, ErrUnknownShape) {
		writeAPIError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		writeValidationError(w, "name", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, sess.View())
}

type ExportResponse struct {
	Added   []store.Record `json:"added"`
	Message string         `json:"message"`
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	added, err := s.store.Append(sess.Pending()...)
	if err != nil {
		writeAPIError(w, http.StatusInternalServerError, err.Error())
		return
	}

	resp := ExportResponse{Added: []store.Record{}}
	for _, g := range added {
		resp.Added = append(resp.Added, store.ToRecord(g))
		metrics.GroupsAppended.WithLabelValues(string(g.Kind())).Inc()
	}
	if len(added) == 0 {
		resp.Message = "no new group"
	} else {
		resp.Message = fmt.Sprintf("%d group(s) added to %s", len(added), s.store.Path())
		s.logger.Info(resp.Message)
	}

	writeJSON(w, http.StatusOK, resp)
}

// Sort runs

func (s *Server) handleSort(w http.ResponseWriter, r *http.Request) {
	if !s.runMu.TryLock() {
		writeAPIError(w, http.StatusConflict, "sort already running")
		return
	}

	cfg := config.DefaultConfig()
	cfg.GroupsFile = s.store.Path()
	cfg.ExifToolPath = s.cfg.ExifToolPath
	if err := json.NewDecoder(r.Body).Decode(cfg); err != nil {
		s.runMu.Unlock()
		writeAPIError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.validateSort(cfg); err != nil {
		s.runMu.Unlock()
		var validationErr *config.ValidationError
		if errors.As(err, &validationErr) {
			writeValidationError(w, validationErr.Field, validationErr.Message)
			return
		}

		writeAPIError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "started"})

	go func() {
		defer s.runMu.Unlock()
		defer func() {
			if r := recover(); r != nil {
				s.logger.Error("sort panicked", fmt.Errorf("%v", r))
				s.broadcastProgress(pipeline.ProgressUpdate{Type: "error", Error: fmt.Sprintf("Internal Server Error: %v", r)})
			}
		}()

		s.runSort(cfg)
	}()
}

func (s *Server) validateSort(cfg *config.Config) error {
	for field, p := range map[string]string{"source": cfg.Source, "dest": cfg.Dest, "groups_file": cfg.GroupsFile} {
		if err := config.ValidatePath(p); err != nil {
			return &config.ValidationError{Field: field, Message: err.Error()}
		}
	}
	return cfg.Validate()
}

func (s *Server) runSort(cfg *config.Config) {
	p, err := pipeline.New(cfg)
	if err != nil {
		s.broadcastProgress(pipeline.ProgressUpdate{Type: "error", Error: err.Error()})
		return
	}
	defer p.Close()

	p.SetProgressCallback(func(update pipeline.ProgressUpdate) {
		s.broadcastProgress(update)
	})

	if _, err := p.Run(context.Background()); err != nil {
		s.logger.Error("sort failed", err)
		s.broadcastProgress(pipeline.ProgressUpdate{Type: "error", Error: err.Error()})
	}
}

func (s *Server) broadcastJSON(v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	select {
	case s.hub.broadcast <- data:
	case <-s.hub.done:
	}
}

func (s *Server) broadcastProgress(update pipeline.ProgressUpdate) {
	s.broadcastJSON(update)
}
