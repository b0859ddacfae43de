package group

import (
	"sort"

	"github.com/ArthurCbn/photobot/internal/geo"
)

// Rank is the first component of the sort key.
const (
	RankDate    = 0
	RankArea    = 1
	RankUnknown = 2
)

// SortKey returns (kindRank, specificity). Smaller keys are more specific.
func SortKey(g Group) (int, float64) {
	switch v := g.(type) {
	case DateGroup:
		return RankDate, float64(spanDays(v.From, v.To))
	case CircleGroup:
		return RankArea, geo.CircleAreaKm2(v.RadiusKm)
	case PolygonGroup:
		return RankArea, geo.PolygonAreaKm2(v.Ring)
	default:
		return RankUnknown, 0
	}
}

// Sort returns a new slice ordered from most to least specific.
// Groups with equal keys keep their input order.
func Sort(groups []Group) []Group {
	type keyed struct {
		g    Group
		rank int
		size float64
	}

	items := make([]keyed, len(groups))
	for i, g := range groups {
		rank, size := SortKey(g)
		items[i] = keyed{g: g, rank: rank, size: size}
	}

	sort.SliceStable(items, func(i, j int) bool {
		if items[i].rank != items[j].rank {
			return items[i].rank < items[j].rank
		}
		return items[i].size < items[j].size
	})

	out := make([]Group, len(items))
	for i, it := range items {
		out[i] = it.g
	}
	return out
}
