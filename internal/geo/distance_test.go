package geo_test

import (
	"testing"

	"civicsense/backend/internal/geo"

	"github.com/stretchr/testify/assert"
)

// TestDistanceKm_IdenticalPoints verifies the distance of a point to itself is zero.
func TestDistanceKm_IdenticalPoints(t *testing.T) {
	assert.Zero(t, geo.DistanceKm(50.4501, 30.5234, 50.4501, 30.5234))
	assert.Zero(t, geo.DistanceKm(0, 0, 0, 0))
}

// TestDistanceKm_Symmetry verifies distance(a, b) == distance(b, a).
func TestDistanceKm_Symmetry(t *testing.T) {
	d1 := geo.DistanceKm(50.4501, 30.5234, 49.8397, 24.0297)
	d2 := geo.DistanceKm(49.8397, 24.0297, 50.4501, 30.5234)
	assert.Equal(t, d1, d2)
}

// TestDistanceKm_OneDegreeLatitude checks the haversine result against
// the analytic arc length of one degree of latitude.
func TestDistanceKm_OneDegreeLatitude(t *testing.T) {
	// 2π * 6371 / 360 ≈ 111.195 km
	d := geo.DistanceKm(0, 0, 1, 0)
	assert.InDelta(t, 111.195, d, 0.01)
}

// TestDistanceKm_KyivLviv checks a known city pair lands in the expected range.
func TestDistanceKm_KyivLviv(t *testing.T) {
	d := geo.DistanceKm(50.4501, 30.5234, 49.8397, 24.0297)
	assert.InDelta(t, 468, d, 8)
}

// TestDistanceKm_Monotone verifies farther points give larger distances.
func TestDistanceKm_Monotone(t *testing.T) {
	near := geo.DistanceKm(0, 0, 0.01, 0)
	far := geo.DistanceKm(0, 0, 0.02, 0)
	assert.Less(t, near, far)
}
