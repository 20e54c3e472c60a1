package geo_test

import (
	"math"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"booklend-backend/internal/shared/geo"
)

func Test_DistanceKm(t *testing.T) {
	tests := []struct {
		name   string
		a, b   geo.Point
		wantKm float64
		delta  float64
	}{
		{
			name:   "same_point_is_zero",
			a:      geo.Point{Latitude: 48.8566, Longitude: 2.3522},
			b:      geo.Point{Latitude: 48.8566, Longitude: 2.3522},
			wantKm: 0,
			delta:  0.0001,
		},
		{
			name:   "paris_to_london",
			a:      geo.Point{Latitude: 48.8566, Longitude: 2.3522},
			b:      geo.Point{Latitude: 51.5074, Longitude: -0.1278},
			wantKm: 344,
			delta:  3,
		},
		{
			name:   "one_degree_of_latitude",
			a:      geo.Point{Latitude: 0, Longitude: 0},
			b:      geo.Point{Latitude: 1, Longitude: 0},
			wantKm: 111.2,
			delta:  0.5,
		},
		{
			name:   "across_the_antimeridian",
			a:      geo.Point{Latitude: 0, Longitude: 179.9},
			b:      geo.Point{Latitude: 0, Longitude: -179.9},
			wantKm: 22.2,
			delta:  0.5,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.wantKm, geo.DistanceKm(tc.a, tc.b), tc.delta)
			assert.InDelta(t, tc.wantKm, geo.DistanceKm(tc.b, tc.a), tc.delta)
		})
	}
}

func Test_Point_Valid(t *testing.T) {
	assert.True(t, geo.Point{Latitude: 90, Longitude: -180}.Valid())
	assert.False(t, geo.Point{Latitude: 90.1, Longitude: 0}.Valid())
	assert.False(t, geo.Point{Latitude: 0, Longitude: 180.1}.Valid())
}

func Test_SpatialKey_HasFixedPrecision(t *testing.T) {
	key := geo.SpatialKey(geo.Point{Latitude: 40.7128, Longitude: -74.0060})

	assert.Len(t, key, geo.SpatialKeyPrecision)
}

func Test_CoverDisk_RangesAreSortedAndHalfOpen(t *testing.T) {
	ranges := geo.CoverDisk(geo.Point{Latitude: 40.7128, Longitude: -74.0060}, 5)

	require.NotEmpty(t, ranges)
	assert.True(t, sort.SliceIsSorted(ranges, func(i, j int) bool {
		return ranges[i].Start < ranges[j].Start
	}))
	for _, r := range ranges {
		assert.Equal(t, r.Start+"~", r.End)
	}
}

// Every point inside the radius must land in some returned range; the cover
// may include points outside (those are filtered by true distance later).
func Test_CoverDisk_CoversPointsWithinRadius(t *testing.T) {
	center := geo.Point{Latitude: 40.7128, Longitude: -74.0060}

	for _, radiusKm := range []float64{0.5, 2, 10, 50} {
		ranges := geo.CoverDisk(center, radiusKm)

		// walk a ring just inside the radius plus some interior points
		for deg := 0; deg < 360; deg += 15 {
			for _, frac := range []float64{0.2, 0.6, 0.99} {
				rad := float64(deg) * math.Pi / 180
				p := offset(center, radiusKm*frac, rad)
				require.LessOrEqual(t, geo.DistanceKm(center, p), radiusKm)

				key := geo.SpatialKey(p)
				assert.True(t, covered(ranges, key),
					"radius %.1fkm: key %s for bearing %d frac %.2f not covered",
					radiusKm, key, deg, frac)
			}
		}
	}
}

// offset moves distanceKm from p along the given bearing, close enough for
// test distances.
func offset(p geo.Point, distanceKm, bearing float64) geo.Point {
	dLat := distanceKm * math.Cos(bearing) / 111.195
	dLng := distanceKm * math.Sin(bearing) / (111.195 * math.Cos(p.Latitude*math.Pi/180))
	return geo.Point{Latitude: p.Latitude + dLat, Longitude: p.Longitude + dLng}
}

func covered(ranges []geo.KeyRange, key string) bool {
	for _, r := range ranges {
		if key >= r.Start && key < r.End {
			return true
		}
	}
	return false
}

func Test_CoverDisk_SmallRadiusUsesFinerCellsThanLargeRadius(t *testing.T) {
	center := geo.Point{Latitude: 40.7128, Longitude: -74.0060}

	small := geo.CoverDisk(center, 0.1)
	large := geo.CoverDisk(center, 100)

	prefixLen := func(rs []geo.KeyRange) int { return len(strings.TrimSuffix(rs[0].End, "~")) }
	assert.Greater(t, prefixLen(small), prefixLen(large))
}
