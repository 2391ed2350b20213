package geodesy

import (
	"math"

	"github.com/wegman-software/mapfile-go/internal/geo"
)

// Iteration limits for the inverse problem. The relative lambda check is a
// best-effort early exit and only fires from the second iteration on; the
// hard cap is the authoritative termination guarantee. Hitting the cap is an
// accepted approximation, not an error.
const (
	inverseMaxIterations = 11
	inverseEpsilon       = 1e-13
)

// Distance returns the ellipsoidal distance in meters between a and b using
// Vincenty's inverse formula.
func Distance(a, b geo.GeoPoint) float64 {
	l := DegToRad(b.Lon - a.Lon)
	u1 := math.Atan((1 - Flattening) * math.Tan(DegToRad(a.Lat)))
	u2 := math.Atan((1 - Flattening) * math.Tan(DegToRad(b.Lat)))

	sinU1, cosU1 := math.Sincos(u1)
	sinU2, cosU2 := math.Sincos(u2)

	lambda := l
	var sinSigma, cosSigma, sigma, cosSqAlpha, cos2SigmaM float64

	for i := 0; i < inverseMaxIterations; i++ {
		sinLambda, cosLambda := math.Sincos(lambda)

		t1 := cosU2 * sinLambda
		t2 := cosU1*sinU2 - sinU1*cosU2*cosLambda
		sinSigma = math.Sqrt(t1*t1 + t2*t2)
		cosSigma = sinU1*sinU2 + cosU1*cosU2*cosLambda
		sigma = math.Atan2(sinSigma, cosSigma)

		// Coincident or antipodal-degenerate points would divide by zero.
		sinAlpha := 0.0
		if sinSigma != 0 {
			sinAlpha = cosU1 * cosU2 * sinLambda / sinSigma
		}
		cosSqAlpha = 1 - sinAlpha*sinAlpha

		cos2SigmaM = 0
		if cosSqAlpha != 0 {
			cos2SigmaM = cosSigma - 2*sinU1*sinU2/cosSqAlpha
		}

		c := Flattening / 16 * cosSqAlpha * (4 + Flattening*(4-3*cosSqAlpha))
		prev := lambda
		lambda = l + (1-c)*Flattening*sinAlpha*
			(sigma+c*sinSigma*(cos2SigmaM+c*cosSigma*(-1+2*cos2SigmaM*cos2SigmaM)))

		if i >= 2 && lambda != 0 && math.Abs((lambda-prev)/lambda) < inverseEpsilon {
			break
		}
	}

	uSq := cosSqAlpha * (SemiMajorAxis*SemiMajorAxis - SemiMinorAxis*SemiMinorAxis) /
		(SemiMinorAxis * SemiMinorAxis)
	bigA := 1 + uSq/16384*(4096+uSq*(-768+uSq*(320-175*uSq)))
	bigB := uSq / 1024 * (256 + uSq*(-128+uSq*(74-47*uSq)))

	deltaSigma := bigB * sinSigma *
		(cos2SigmaM + bigB/4*
			(cosSigma*(-1+2*cos2SigmaM*cos2SigmaM)-
				bigB/6*cos2SigmaM*(-3+4*sinSigma*sinSigma)*(-3+4*cos2SigmaM*cos2SigmaM)))

	return SemiMinorAxis * bigA * (sigma - deltaSigma)
}
