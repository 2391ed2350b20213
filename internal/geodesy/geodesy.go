// Package geodesy implements ellipsoidal-earth distance and projection
// formulas on the WGS84 ellipsoid, plus the small amount of planar segment
// geometry the entity model needs.
package geodesy

import "math"

// WGS84 ellipsoid parameters.
const (
	SemiMajorAxis = 6378137.0         // a, meters
	SemiMinorAxis = 6356752.314245    // b, meters
	Flattening    = 1 / 298.257223563 // f
)

// DegToRad converts degrees to radians.
func DegToRad(deg float64) float64 {
	return deg * math.Pi / 180.0
}

// RadToDeg converts radians to degrees.
func RadToDeg(rad float64) float64 {
	return rad * 180.0 / math.Pi
}
