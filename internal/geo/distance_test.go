package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDistanceSamePointIsZero(t *testing.T) {
	points := []Point{
		{0, 0},
		{51.5074, -0.1278},
		{-90, 0},
		{90, 180},
	}
	for _, p := range points {
		d, err := Distance(p, p)
		require.NoError(t, err)
		assert.Equal(t, 0.0, d)
	}
}

func TestDistanceIsSymmetric(t *testing.T) {
	a := Point{51.5074, -0.1278} // London
	b := Point{48.8566, 2.3522}  // Paris

	d1, err := Distance(a, b)
	require.NoError(t, err)
	d2, err := Distance(b, a)
	require.NoError(t, err)

	assert.Equal(t, d1, d2)
}

func TestDistanceKnownValues(t *testing.T) {
	// One degree of longitude along the equator is ~111.19 km on a sphere
	// with radius 6371 km.
	d, err := Distance(Point{0, 0}, Point{0, 1})
	require.NoError(t, err)
	assert.InDelta(t, 111194.9, d, 10)

	// London to Paris, ~343.5 km great-circle.
	d, err = Distance(Point{51.5074, -0.1278}, Point{48.8566, 2.3522})
	require.NoError(t, err)
	assert.InDelta(t, 343500, d, 1500)
}

func TestDistanceAntipodalIsFinite(t *testing.T) {
	d, err := Distance(Point{0, 0}, Point{0, 180})
	require.NoError(t, err)
	require.False(t, math.IsNaN(d))
	// Half the circumference.
	assert.InDelta(t, math.Pi*earthRadiusMeters, d, 1)
}

func TestDistanceRejectsOutOfRangeCoordinates(t *testing.T) {
	bad := []Point{
		{91, 0},
		{-90.0001, 0},
		{0, 180.5},
		{0, -181},
		{math.NaN(), 0},
	}
	for _, p := range bad {
		_, err := Distance(p, Point{0, 0})
		assert.ErrorIs(t, err, ErrInvalidCoordinate)
		_, err = Distance(Point{0, 0}, p)
		assert.ErrorIs(t, err, ErrInvalidCoordinate)
	}
}

func TestIsWithinPerimeterMatchesDistance(t *testing.T) {
	center := Point{52.5200, 13.4050}
	sample := Point{52.5210, 13.4080}

	d, err := Distance(sample, center)
	require.NoError(t, err)

	inside, err := IsWithinPerimeter(sample, center, d+1)
	require.NoError(t, err)
	assert.True(t, inside)

	outside, err := IsWithinPerimeter(sample, center, d-1)
	require.NoError(t, err)
	assert.False(t, outside)
}

func TestIsWithinPerimeterBoundaryIsInclusive(t *testing.T) {
	// ~100m east of the origin along the equator. The exact distance is used
	// as the radius, so the boundary decision must be deterministic.
	center := Point{0, 0}
	sample := Point{0, 0.0009}

	d, err := Distance(sample, center)
	require.NoError(t, err)
	assert.InDelta(t, 100, d, 1)

	inside, err := IsWithinPerimeter(sample, center, d)
	require.NoError(t, err)
	assert.True(t, inside, "a point exactly on the boundary counts as inside")
}

func TestIsWithinPerimeterInvalidInput(t *testing.T) {
	_, err := IsWithinPerimeter(Point{95, 0}, Point{0, 0}, 100)
	assert.ErrorIs(t, err, ErrInvalidCoordinate)
}
