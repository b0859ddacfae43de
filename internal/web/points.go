package web

import (
	"sync"
	"time"

	"github.com/ArthurCbn/photobot/internal/metadata"
	"github.com/ArthurCbn/photobot/internal/scanner"
)

// Point is a source photo that carries GPS coordinates.
type Point struct {
	Name string     `json:"nom"`
	Path string     `json:"path"`
	Lat  float64    `json:"lat"`
	Lon  float64    `json:"lon"`
	Date *time.Time `json:"date,omitempty"`
}

// pointCache reads the source directory once. A failed read is retried on
// the next request.
type pointCache struct {
	mu     sync.Mutex
	loaded bool
	points []Point
}

func (c *pointCache) get(load func() ([]Point, error)) ([]Point, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.loaded {
		return c.points, nil
	}
	points, err := load()
	if err != nil {
		return nil, err
	}
	c.points = points
	c.loaded = true
	return points, nil
}

func (s *Server) loadPoints() ([]Point, error) {
	sc := scanner.New(metadata.ImageExtensions, s.cfg.Recursive)
	entries, err := sc.Scan(s.cfg.Source)
	if err != nil {
		return nil, err
	}

	points := []Point{}
	for _, entry := range entries {
		rec := s.meta.Extract(entry)
		if rec.Coords == nil {
			continue
		}
		points = append(points, Point{
			Name: entry.Name,
			Path: entry.Path,
			Lat:  rec.Coords.Lat,
			Lon:  rec.Coords.Lon,
			Date: rec.CapturedAt,
		})
	}
	return points, nil
}

// filterPoints keeps points whose capture day lies in [from, to]. A zero
// bound is open. Points without a date are dropped once a bound is set.
func filterPoints(points []Point, from, to time.Time) []Point {
	if from.IsZero() && to.IsZero() {
		return points
	}

	out := []Point{}
	for _, p := range points {
		if p.Date == nil {
			continue
		}
		day := p.Date.UTC().Truncate(24 * time.Hour)
		if !from.IsZero() && day.Before(from) {
			continue
		}
		if !to.IsZero() && day.After(to) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// dateRange returns the first and last capture days, nil when no point is dated.
func dateRange(points []Point) (first, last *time.Time) {
	for _, p := range points {
		if p.Date == nil {
			continue
		}
		d := p.Date.UTC()
		if first == nil || d.Before(*first) {
			v := d
			first = &v
		}
		if last == nil || d.After(*last) {
			v := d
			last = &v
		}
	}
	return first, last
}
