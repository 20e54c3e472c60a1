package geo

import (
	"sort"

	"github.com/mmcloughlin/geohash"
)

// SpatialKeyPrecision is the geohash length stored on each book. 9 characters
// resolve to roughly 5 meters, well below any practical search radius.
const SpatialKeyPrecision = 9

// SpatialKey encodes a point into the bucketed index key stored on a book.
func SpatialKey(p Point) string {
	return geohash.EncodeWithPrecision(p.Latitude, p.Longitude, SpatialKeyPrecision)
}

// KeyRange is a half-open lexicographic range over spatial keys. End uses "~"
// as a terminator because it sorts after every base32 geohash character.
type KeyRange struct {
	Start string
	End   string
}

// CoverDisk returns key ranges that together cover every point within
// radiusKm of center. The cover is intentionally loose: candidates must still
// be filtered by true distance. It picks the finest geohash precision whose
// cell spans at least twice the radius, then takes the center cell and its
// eight neighbors, so a disk touching any cell corner stays covered.
func CoverDisk(center Point, radiusKm float64) []KeyRange {
	p := coverPrecision(center, radiusKm)

	cell := geohash.EncodeWithPrecision(center.Latitude, center.Longitude, p)
	cells := append(geohash.Neighbors(cell), cell)

	seen := make(map[string]bool, len(cells))
	ranges := make([]KeyRange, 0, len(cells))
	for _, c := range cells {
		if seen[c] {
			continue
		}
		seen[c] = true
		ranges = append(ranges, KeyRange{Start: c, End: c + "~"})
	}
	sort.Slice(ranges, func(i, j int) bool { return ranges[i].Start < ranges[j].Start })
	return ranges
}

func coverPrecision(center Point, radiusKm float64) uint {
	for p := uint(SpatialKeyPrecision); p > 1; p-- {
		box := geohash.BoundingBox(geohash.EncodeWithPrecision(center.Latitude, center.Longitude, p))
		height := DistanceKm(
			Point{Latitude: box.MinLat, Longitude: center.Longitude},
			Point{Latitude: box.MaxLat, Longitude: center.Longitude},
		)
		width := DistanceKm(
			Point{Latitude: center.Latitude, Longitude: box.MinLng},
			Point{Latitude: center.Latitude, Longitude: box.MaxLng},
		)
		if height >= 2*radiusKm && width >= 2*radiusKm {
			return p
		}
	}
	return 1
}
