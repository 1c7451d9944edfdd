package geo

import (
	"errors"
	"math"
)

// Mean earth radius in meters. A spherical model is accurate to within a few
// meters over the sub-50km distances a workplace geofence deals with.
const earthRadiusMeters = 6371000.0

var ErrInvalidCoordinate = errors.New("latitude must be within [-90, 90] and longitude within [-180, 180]")

type Point struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Valid reports whether the point is inside the WGS84 coordinate ranges.
// NaN fails both comparisons, so it is rejected too.
func (p Point) Valid() bool {
	return p.Latitude >= -90 && p.Latitude <= 90 &&
		p.Longitude >= -180 && p.Longitude <= 180
}

// Distance returns the great-circle distance between a and b in meters,
// computed with the haversine formula.
func Distance(a, b Point) (float64, error) {
	if !a.Valid() || !b.Valid() {
		return 0, ErrInvalidCoordinate
	}

	lat1 := a.Latitude * math.Pi / 180
	lat2 := b.Latitude * math.Pi / 180
	dLat := (b.Latitude - a.Latitude) * math.Pi / 180
	dLon := (b.Longitude - a.Longitude) * math.Pi / 180

	sinLat := math.Sin(dLat / 2)
	sinLon := math.Sin(dLon / 2)

	h := sinLat*sinLat + math.Cos(lat1)*math.Cos(lat2)*sinLon*sinLon
	// Float rounding can push h a hair above 1 for near-antipodal points,
	// which would make Sqrt(1-h) NaN.
	if h > 1 {
		h = 1
	}

	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return earthRadiusMeters * c, nil
}

// IsWithinPerimeter reports whether p lies within radiusMeters of center.
// The boundary is inclusive: a point exactly radiusMeters away counts as inside.
func IsWithinPerimeter(p, center Point, radiusMeters float64) (bool, error) {
	d, err := Distance(p, center)
	if err != nil {
		return false, err
	}
	return d <= radiusMeters, nil
}
