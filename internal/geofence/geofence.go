// Package geofence decides whether a claimed location falls inside a circular
// boundary around a reference point. It is pure computation: no I/O, no shared
// state, so every caller gets deterministic, trivially testable behavior.
package geofence

import (
	"math"

	dErrors "muster/pkg/domain-errors"
)

// earthRadiusMeters is the Earth mean radius used by the haversine formula.
const earthRadiusMeters = 6371000.0

// DefaultRadiusMeters applies when neither the session nor the event
// configures an explicit geofence radius.
const DefaultRadiusMeters = 500.0

// Coordinates is a WGS84 latitude/longitude pair in decimal degrees.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Validate rejects non-finite and out-of-range coordinates. A validation
// failure here is a client input problem, never a "too far" outcome: the two
// carry different retry semantics and must not be conflated.
func (c Coordinates) Validate() error {
	if math.IsNaN(c.Lat) || math.IsInf(c.Lat, 0) {
		return dErrors.New(dErrors.CodeValidation, "latitude must be a finite number")
	}
	if math.IsNaN(c.Lng) || math.IsInf(c.Lng, 0) {
		return dErrors.New(dErrors.CodeValidation, "longitude must be a finite number")
	}
	if c.Lat < -90 || c.Lat > 90 {
		return dErrors.New(dErrors.CodeValidation, "latitude must be between -90 and 90")
	}
	if c.Lng < -180 || c.Lng > 180 {
		return dErrors.New(dErrors.CodeValidation, "longitude must be between -180 and 180")
	}
	return nil
}

// Decision is the outcome of a geofence evaluation. DistanceMeters and
// RadiusMeters are always populated so callers can render the exact shortfall.
type Decision struct {
	Admitted       bool
	DistanceMeters float64
	RadiusMeters   float64
}

// Distance computes the great-circle distance between two points in meters
// using the haversine formula. Symmetric: Distance(a, b) == Distance(b, a).
func Distance(a, b Coordinates) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)

	return 2 * earthRadiusMeters * math.Asin(math.Sqrt(h))
}

// Evaluate decides whether claimed is within radiusMeters of reference.
// The boundary is inclusive: exactly at the radius is admitted.
//
// A malformed claimed location yields a validation error (client must fix
// input). A malformed reference or non-positive radius yields a configuration
// error (operator must fix the event), never a denial.
func Evaluate(claimed, reference Coordinates, radiusMeters float64) (Decision, error) {
	if err := claimed.Validate(); err != nil {
		return Decision{}, err
	}
	if err := reference.Validate(); err != nil {
		return Decision{}, dErrors.Wrap(err, dErrors.CodeConfiguration, "event reference location is invalid")
	}
	if math.IsNaN(radiusMeters) || math.IsInf(radiusMeters, 0) || radiusMeters <= 0 {
		return Decision{}, dErrors.New(dErrors.CodeConfiguration, "geofence radius must be positive")
	}

	distance := Distance(claimed, reference)
	return Decision{
		Admitted:       distance <= radiusMeters,
		DistanceMeters: distance,
		RadiusMeters:   radiusMeters,
	}, nil
}
