// Package classifier assigns a media record to the first matching group.
package classifier

import (
	"time"

	"github.com/ArthurCbn/photobot/internal/geo"
	"github.com/ArthurCbn/photobot/internal/group"
	"github.com/ArthurCbn/photobot/pkg/types"
)

// Matches reports whether rec belongs to g.
//
// Date bounds are whole UTC days: [From 00:00, To+1d 00:00). Zoned capture
// times are compared as UTC instants, naive ones by their wall clock.
func Matches(g group.Group, rec types.MediaRecord) bool {
	switch v := g.(type) {
	case group.DateGroup:
		if rec.CapturedAt == nil {
			return false
		}
		t := rec.CapturedAt.UTC()
		from := midnight(v.From)
		until := midnight(v.To).AddDate(0, 0, 1)
		return !t.Before(from) && t.Before(until)

	case group.CircleGroup:
		if rec.Coords == nil {
			return false
		}
		d := geo.HaversineKm(rec.Coords.Lat, rec.Coords.Lon, v.Center.Lat, v.Center.Lon)
		return d <= v.RadiusKm

	case group.PolygonGroup:
		if rec.Coords == nil {
			return false
		}
		return geo.PointInPolygon(rec.Coords.Lat, rec.Coords.Lon, v.Ring)

	case group.UnknownGroup:
		return false

	default:
		return false
	}
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Classifier holds groups in match order.
type Classifier struct {
	groups []group.Group
}

// New sorts groups once. The input slice is not modified.
func New(groups []group.Group) *Classifier {
	return &Classifier{groups: group.Sort(groups)}
}

// Classify returns the first group rec belongs to.
func (c *Classifier) Classify(rec types.MediaRecord) (group.Group, bool) {
	for _, g := range c.groups {
		if Matches(g, rec) {
			return g, true
		}
	}
	return nil, false
}
