// Package store reads and appends group definitions.
//
// The JSON file has the shape {"groups": [...]} where each record carries
// nom, id, type and the type-specific fields. A CSV table of date groups
// (nom,date_debut,date_fin) can be loaded read-only.
package store

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/ArthurCbn/photobot/internal/geo"
	"github.com/ArthurCbn/photobot/internal/group"
)

var (
	// ErrNotFound is returned by Load when the store file does not exist.
	ErrNotFound = errors.New("group store not found")
	// ErrReadOnly is returned when appending to a CSV store.
	ErrReadOnly = errors.New("group store format is read-only")
)

// Record is the on-disk and API form of a group.
type Record struct {
	Name        string       `json:"nom"`
	ID          string       `json:"id"`
	Type        string       `json:"type"`
	DateStart   string       `json:"date_debut,omitempty"`
	DateEnd     string       `json:"date_fin,omitempty"`
	Latitude    *float64     `json:"latitude,omitempty"`
	Longitude   *float64     `json:"longitude,omitempty"`
	RadiusKm    *float64     `json:"rayon_km,omitempty"`
	Coordinates [][2]float64 `json:"coordinates,omitempty"`
}

type document struct {
	Groups []json.RawMessage `json:"groups"`
}

// Store is a group definitions file.
type Store struct {
	mu   sync.Mutex
	path string
}

// Open returns a store backed by path. The file is not read until Load.
func Open(path string) *Store {
	return &Store{path: path}
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) isCSV() bool {
	return strings.EqualFold(filepath.Ext(s.path), ".csv")
}

// Load reads every group in file order. A missing file returns ErrNotFound.
func (s *Store) Load() ([]group.Group, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// LoadOrEmpty is Load, except a missing file yields no groups.
func (s *Store) LoadOrEmpty() ([]group.Group, error) {
	groups, err := s.Load()
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	return groups, err
}

func (s *Store) load() ([]group.Group, error) {
	f, err := os.Open(s.path)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, s.path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open group store: %w", err)
	}
	defer f.Close()

	if s.isCSV() {
		return decodeCSV(f)
	}
	return decodeJSON(f)
}

func decodeJSON(r io.Reader) ([]group.Group, error) {
	var doc document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to parse group store: %w", err)
	}

	groups := make([]group.Group, 0, len(doc.Groups))
	for i, raw := range doc.Groups {
		var rec Record
		if err := json.Unmarshal(raw, &rec); err != nil {
			return nil, fmt.Errorf("groups[%d]: %w", i, err)
		}
		g, err := fromRecord(rec)
		if err != nil {
			return nil, fmt.Errorf("groups[%d] (%s): %w", i, rec.ID, err)
		}
		groups = append(groups, g)
	}
	return groups, nil
}

func decodeCSV(r io.Reader) ([]group.Group, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	col := map[string]int{}
	for i, h := range header {
		col[strings.TrimSpace(h)] = i
	}
	for _, required := range []string{"nom", "date_debut", "date_fin"} {
		if _, ok := col[required]; !ok {
			return nil, fmt.Errorf("CSV header is missing column %q", required)
		}
	}

	var groups []group.Group
	for line := 2; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("CSV line %d: %w", line, err)
		}

		get := func(name string) string {
			i := col[name]
			if i >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[i])
		}

		id := ""
		if _, ok := col["id"]; ok {
			id = get("id")
		}
		g, err := group.NewDateGroup(get("nom"), id, csvDate(get("date_debut")), csvDate(get("date_fin")))
		if err != nil {
			return nil, fmt.Errorf("CSV line %d: %w", line, err)
		}
		groups = append(groups, g)
	}
	return groups, nil
}

// csvDate keeps the day part of "YYYY-MM-DD HH:MM:SS" cells written by
// spreadsheet tools.
func csvDate(s string) string {
	if len(s) > 10 && s[10] == ' ' && strings.Contains(s[10:], ":") {
		return s[:10]
	}
	return s
}

func fromRecord(rec Record) (group.Group, error) {
	switch group.Kind(rec.Type) {
	case group.KindDate:
		return group.NewDateGroup(rec.Name, rec.ID, rec.DateStart, rec.DateEnd)

	case group.KindCircle:
		if rec.Latitude == nil || rec.Longitude == nil || rec.RadiusKm == nil {
			return nil, errors.New("circle group requires latitude, longitude and rayon_km")
		}
		return group.NewCircleGroup(rec.Name, rec.ID, *rec.Latitude, *rec.Longitude, *rec.RadiusKm)

	case group.KindPolygon:
		return group.NewPolygonGroup(rec.Name, rec.ID, geo.Ring(rec.Coordinates))

	default:
		return group.UnknownGroup{
			Base:    group.Base{Name: rec.Name, ID: rec.ID},
			RawKind: rec.Type,
		}, nil
	}
}

// ToRecord converts g to its stored form.
func ToRecord(g group.Group) Record {
	b := g.Ident()
	rec := Record{Name: b.Name, ID: b.ID, Type: string(g.Kind())}

	switch v := g.(type) {
	case group.DateGroup:
		rec.DateStart = v.Start
		rec.DateEnd = v.End
	case group.CircleGroup:
		lat, lon, r := v.Center.Lat, v.Center.Lon, v.RadiusKm
		rec.Latitude = &lat
		rec.Longitude = &lon
		rec.RadiusKm = &r
	case group.PolygonGroup:
		rec.Coordinates = [][2]float64(v.Ring)
	}
	return rec
}

// Append adds the groups whose id is not already stored and returns them.
// The whole file is rewritten atomically. Unknown records already in the
// file are written back unchanged.
func (s *Store) Append(groups ...group.Group) ([]group.Group, error) {
	if s.isCSV() {
		return nil, fmt.Errorf("%w: %s", ErrReadOnly, s.path)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.readRaw()
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(existing))
	for _, raw := range existing {
		var head struct {
			ID string `json:"id"`
		}
		if err := json.Unmarshal(raw, &head); err == nil && head.ID != "" {
			seen[head.ID] = true
		}
	}

	var added []group.Group
	for _, g := range groups {
		id := g.Ident().ID
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true

		data, err := json.Marshal(ToRecord(g))
		if err != nil {
			return nil, fmt.Errorf("failed to marshal group %s: %w", id, err)
		}
		existing = append(existing, data)
		added = append(added, g)
	}

	if len(added) == 0 {
		return nil, nil
	}

	if err := s.writeRaw(existing); err != nil {
		return nil, err
	}
	return added, nil
}

func (s *Store) readRaw() ([]json.RawMessage, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read group store: %w", err)
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse group store: %w", err)
	}
	return doc.Groups, nil
}

func (s *Store) writeRaw(groups []json.RawMessage) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("failed to create store directory: %w", err)
	}

	data, err := json.MarshalIndent(document{Groups: groups}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal group store: %w", err)
	}

	// Atomic write: write to temp file then rename
	tmpFile := s.path + ".tmp"
	if err := os.WriteFile(tmpFile, data, 0644); err != nil {
		return fmt.Errorf("failed to write group store: %w", err)
	}
	if err := os.Rename(tmpFile, s.path); err != nil {
		os.Remove(tmpFile)
		return fmt.Errorf("failed to rename group store: %w", err)
	}
	return nil
}
