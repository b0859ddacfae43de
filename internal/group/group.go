// Package group defines the date, circle and polygon groups media files are
// sorted into, and the order in which they are tried.
package group

import (
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/ArthurCbn/photobot/internal/geo"
	"github.com/ArthurCbn/photobot/pkg/types"
)

// Kind is the stored "type" of a group.
type Kind string

const (
	KindDate    Kind = "date"
	KindCircle  Kind = "circle"
	KindPolygon Kind = "polygone"
)

const (
	dateLayout         = "2006-01-02"
	dateTimeDotsLayout = "2006-01-02 15.04.05"
)

// Base holds the fields shared by every group.
type Base struct {
	Name string
	ID   string
}

// Ident returns the shared fields.
func (b Base) Ident() Base { return b }

// DisplayName returns Name, or a name derived from the id when empty.
func (b Base) DisplayName() string {
	if strings.TrimSpace(b.Name) != "" {
		return b.Name
	}
	return DefaultName(b.ID)
}

// Group is one of DateGroup, CircleGroup, PolygonGroup or UnknownGroup.
type Group interface {
	Ident() Base
	Kind() Kind
	sealed()
}

// DateGroup matches media captured on any day in [Start, End].
type DateGroup struct {
	Base
	// Start and End keep the stored text.
	Start string
	End   string
	// From and To are the parsed bounds.
	From time.Time
	To   time.Time
}

func (DateGroup) Kind() Kind { return KindDate }
func (DateGroup) sealed()    {}

// CircleGroup matches media taken within RadiusKm of Center.
type CircleGroup struct {
	Base
	Center   types.GeoPoint
	RadiusKm float64
}

func (CircleGroup) Kind() Kind { return KindCircle }
func (CircleGroup) sealed()    {}

// PolygonGroup matches media taken inside Ring.
type PolygonGroup struct {
	Base
	Ring geo.Ring
}

func (PolygonGroup) Kind() Kind { return KindPolygon }
func (PolygonGroup) sealed()    {}

// UnknownGroup is a stored group whose type is not recognised.
// It never matches and sorts after every other group.
type UnknownGroup struct {
	Base
	RawKind string
}

func (g UnknownGroup) Kind() Kind { return Kind(g.RawKind) }
func (UnknownGroup) sealed()      {}

// ParseDate accepts "YYYY-MM-DD" or "YYYY-MM-DD HH.MM.SS".
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(dateTimeDotsLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}
	return t, nil
}

// DateSpanDays returns the number of whole days between start and end.
func DateSpanDays(start, end string) (int, error) {
	from, err := ParseDate(start)
	if err != nil {
		return 0, err
	}
	to, err := ParseDate(end)
	if err != nil {
		return 0, err
	}
	return spanDays(from, to), nil
}

func spanDays(from, to time.Time) int {
	return int(math.Floor(to.Sub(from).Hours() / 24))
}

// NewDateGroup validates the bounds and fills ID when empty.
func NewDateGroup(name, id, start, end string) (DateGroup, error) {
	from, err := ParseDate(start)
	if err != nil {
		return DateGroup{}, fmt.Errorf("date_debut: %w", err)
	}
	to, err := ParseDate(end)
	if err != nil {
		return DateGroup{}, fmt.Errorf("date_fin: %w", err)
	}
	if to.Before(from) {
		return DateGroup{}, fmt.Errorf("date_fin %s is before date_debut %s", end, start)
	}
	if id == "" {
		id = DateGroupID(from, to)
	}
	return DateGroup{
		Base:  Base{Name: name, ID: id},
		Start: strings.TrimSpace(start),
		End:   strings.TrimSpace(end),
		From:  from,
		To:    to,
	}, nil
}

// NewCircleGroup validates the circle and fills ID when empty.
func NewCircleGroup(name, id string, lat, lon, radiusKm float64) (CircleGroup, error) {
	if err := validateCoord(lat, lon); err != nil {
		return CircleGroup{}, err
	}
	if radiusKm <= 0 || math.IsNaN(radiusKm) || math.IsInf(radiusKm, 0) {
		return CircleGroup{}, fmt.Errorf("rayon_km must be positive, got %v", radiusKm)
	}
	if id == "" {
		id = ContentID(map[string]interface{}{
			"type":      string(KindCircle),
			"latitude":  lat,
			"longitude": lon,
			"rayon_km":  radiusKm,
		})
	}
	return CircleGroup{
		Base:     Base{Name: name, ID: id},
		Center:   types.GeoPoint{Lat: lat, Lon: lon},
		RadiusKm: radiusKm,
	}, nil
}

// NewPolygonGroup validates the ring and fills ID when empty.
func NewPolygonGroup(name, id string, ring geo.Ring) (PolygonGroup, error) {
	if len(ring) < 3 {
		return PolygonGroup{}, fmt.Errorf("coordinates must have at least 3 points, got %d", len(ring))
	}
	for i, p := range ring {
		if err := validateCoord(p[1], p[0]); err != nil {
			return PolygonGroup{}, fmt.Errorf("coordinates[%d]: %w", i, err)
		}
	}
	if id == "" {
		id = ContentID(map[string]interface{}{
			"type":        string(KindPolygon),
			"coordinates": ring,
		})
	}
	return PolygonGroup{
		Base: Base{Name: name, ID: id},
		Ring: ring,
	}, nil
}

func validateCoord(lat, lon float64) error {
	if math.IsNaN(lat) || lat < -90 || lat > 90 {
		return fmt.Errorf("latitude %v out of range [-90, 90]", lat)
	}
	if math.IsNaN(lon) || lon < -180 || lon > 180 {
		return fmt.Errorf("longitude %v out of range [-180, 180]", lon)
	}
	return nil
}

// DateGroupID hashes the day range the same way the map editor does.
func DateGroupID(from, to time.Time) string {
	key := fmt.Sprintf("Dates_%s_%s", from.Format("20060102"), to.Format("20060102"))
	sum := md5.Sum([]byte(key))
	return hex.EncodeToString(sum[:])
}

// ContentID hashes v in the map editor's canonical JSON form, so a shape
// drawn again gets the id already stored for it. v may be raw JSON.
func ContentID(v interface{}) string {
	var data []byte
	switch raw := v.(type) {
	case json.RawMessage:
		data = raw
	case []byte:
		data = raw
	default:
		var err error
		if data, err = json.Marshal(v); err != nil {
			data = []byte(fmt.Sprintf("%v", v))
		}
	}
	if canon, err := canonicalJSON(data); err == nil {
		data = canon
	}
	sum := md5.Sum(data)
	return hex.EncodeToString(sum[:])
}

// DefaultName is used for groups that were never named.
func DefaultName(id string) string {
	return "Groupe_" + id
}
