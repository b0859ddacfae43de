package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/ArthurCbn/photobot/internal/geo"
	"github.com/ArthurCbn/photobot/internal/group"
	"github.com/ArthurCbn/photobot/internal/store"
	"github.com/google/uuid"
)

var (
	ErrDuplicateGroup = errors.New("group already exists")
	ErrUnknownShape   = errors.New("no pending group with this id")
)

// Feature is a GeoJSON feature drawn on the map. Circles are Point
// features with a "radius" property in meters.
type Feature struct {
	Type       string                 `json:"type"`
	Geometry   Geometry               `json:"geometry"`
	Properties map[string]interface{} `json:"properties,omitempty"`

	// raw is the feature as received; every member takes part in the id.
	raw json.RawMessage
}

func (f *Feature) UnmarshalJSON(data []byte) error {
	type plain Feature
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*f = Feature(p)
	f.raw = append(json.RawMessage(nil), data...)
	return nil
}

type Geometry struct {
	Type        string          `json:"type"`
	Coordinates json.RawMessage `json:"coordinates"`
}

// ID hashes the feature content. Redrawing the same shape gives the same id.
func (f Feature) ID() string {
	if len(f.raw) > 0 {
		return group.ContentID(f.raw)
	}
	return group.ContentID(f)
}

// toGroup converts f into a circle or polygon group.
func (f Feature) toGroup(name string) (group.Group, error) {
	id := f.ID()

	switch f.Geometry.Type {
	case "Point":
		radius, ok := f.Properties["radius"].(float64)
		if !ok {
			return nil, fmt.Errorf("point feature %s has no radius", id)
		}
		var pt [2]float64
		if err := json.Unmarshal(f.Geometry.Coordinates, &pt); err != nil {
			return nil, fmt.Errorf("invalid point coordinates: %w", err)
		}
		return group.NewCircleGroup(name, id, pt[1], pt[0], radius/1000)

	case "Polygon":
		var rings [][][2]float64
		if err := json.Unmarshal(f.Geometry.Coordinates, &rings); err != nil || len(rings) == 0 {
			return nil, fmt.Errorf("invalid polygon coordinates")
		}
		return group.NewPolygonGroup(name, id, geo.Ring(rings[0]))

	case "MultiPolygon":
		var polys [][][][2]float64
		if err := json.Unmarshal(f.Geometry.Coordinates, &polys); err != nil || len(polys) == 0 || len(polys[0]) == 0 {
			return nil, fmt.Errorf("invalid multipolygon coordinates")
		}
		return group.NewPolygonGroup(name, id, geo.Ring(polys[0][0]))

	default:
		return nil, fmt.Errorf("unsupported geometry type %q", f.Geometry.Type)
	}
}

// Session holds the groups created in one editing session until they are
// exported, and the names given to them.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu       sync.Mutex
	names    map[string]string
	dates    []group.DateGroup
	drawings []group.Group
}

func newSession() *Session {
	return &Session{
		ID:        uuid.NewString(),
		CreatedAt: time.Now(),
		names:     make(map[string]string),
	}
}

// AddDateGroup queues a date group for [start, end]. A range whose id is
// already stored, queued or named is rejected with ErrDuplicateGroup.
func (s *Session) AddDateGroup(start, end string, existing []group.Group) (group.DateGroup, error) {
	g, err := group.NewDateGroup("", "", start, end)
	if err != nil {
		return group.DateGroup{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range existing {
		if e.Ident().ID == g.ID {
			return group.DateGroup{}, ErrDuplicateGroup
		}
	}
	if _, ok := s.names[g.ID]; ok {
		return group.DateGroup{}, ErrDuplicateGroup
	}
	for _, d := range s.dates {
		if d.ID == g.ID {
			return group.DateGroup{}, ErrDuplicateGroup
		}
	}

	s.dates = append(s.dates, g)
	return g, nil
}

// SetDrawings replaces the drawn shapes with features. The map sends every
// drawing each time, so shapes missing from features are dropped.
func (s *Session) SetDrawings(features []Feature) error {
	drawings := make([]group.Group, 0, len(features))
	for i, f := range features {
		g, err := f.toGroup("")
		if err != nil {
			return fmt.Errorf("drawing %d: %w", i, err)
		}
		drawings = append(drawings, g)
	}

	s.mu.Lock()
	s.drawings = drawings
	s.mu.Unlock()
	return nil
}

// SetName names the pending group id.
func (s *Session) SetName(id, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errors.New("name must not be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.pendingLocked(id) {
		return ErrUnknownShape
	}
	s.names[id] = name
	return nil
}

func (s *Session) pendingLocked(id string) bool {
	for _, d := range s.dates {
		if d.ID == id {
			return true
		}
	}
	for _, g := range s.drawings {
		if g.Ident().ID == id {
			return true
		}
	}
	return false
}

// Pending returns the queued date groups followed by the drawings, with
// their names applied. Unnamed groups get DefaultName.
func (s *Session) Pending() []group.Group {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]group.Group, 0, len(s.dates)+len(s.drawings))
	for _, d := range s.dates {
		out = append(out, s.named(d))
	}
	for _, g := range s.drawings {
		out = append(out, s.named(g))
	}
	return out
}

// Unnamed returns the ids of pending groups that still need a name.
func (s *Session) Unnamed() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := []string{}
	for _, d := range s.dates {
		if _, ok := s.names[d.ID]; !ok {
			ids = append(ids, d.ID)
		}
	}
	for _, g := range s.drawings {
		id := g.Ident().ID
		if _, ok := s.names[id]; !ok {
			ids = append(ids, id)
		}
	}
	return ids
}

func (s *Session) named(g group.Group) group.Group {
	id := g.Ident().ID
	name, ok := s.names[id]
	if !ok {
		name = group.DefaultName(id)
	}

	switch v := g.(type) {
	case group.DateGroup:
		v.Name = name
		return v
	case group.CircleGroup:
		v.Name = name
		return v
	case group.PolygonGroup:
		v.Name = name
		return v
	}
	return g
}

type SessionView struct {
	ID        string         `json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	Pending   []store.Record `json:"pending"`
	Unnamed   []string       `json:"unnamed"`
}

func (s *Session) View() SessionView {
	pending := s.Pending()
	records := make([]store.Record, 0, len(pending))
	for _, g := range pending {
		records = append(records, store.ToRecord(g))
	}
	return SessionView{
		ID:        s.ID,
		CreatedAt: s.CreatedAt,
		Pending:   records,
		Unnamed:   s.Unnamed(),
	}
}

// SessionStore keeps editing sessions in memory.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string]*Session)}
}

func (s *SessionStore) Create() *Session {
	sess := newSession()
	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()
	return sess
}

func (s *SessionStore) Get(id string) (*Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	return sess, ok
}
