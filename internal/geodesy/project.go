package geodesy

import (
	"math"

	"github.com/wegman-software/mapfile-go/internal/geo"
)

const (
	directEpsilon       = 1e-12
	directMaxIterations = 100
)

// Project returns the point reached by travelling from origin along the
// given initial bearing (degrees, clockwise from north) for the given
// distance in meters, using Vincenty's direct formula. The resulting
// longitude is normalized into [-180,180].
func Project(origin geo.GeoPoint, bearingDeg, distance float64) geo.GeoPoint {
	sinAlpha1, cosAlpha1 := math.Sincos(DegToRad(bearingDeg))

	tanU1 := (1 - Flattening) * math.Tan(DegToRad(origin.Lat))
	cosU1 := 1 / math.Sqrt(1+tanU1*tanU1)
	sinU1 := tanU1 * cosU1

	sigma1 := math.Atan2(tanU1, cosAlpha1)
	sinAlpha := cosU1 * sinAlpha1
	cosSqAlpha := 1 - sinAlpha*sinAlpha

	uSq := cosSqAlpha * (SemiMajorAxis*SemiMajorAxis - SemiMinorAxis*SemiMinorAxis) /
		(SemiMinorAxis * SemiMinorAxis)
	bigA := 1 + uSq/16384*(4096+uSq*(-768+uSq*(320-175*uSq)))
	bigB := uSq / 1024 * (256 + uSq*(-128+uSq*(74-47*uSq)))

	sigma := distance / (SemiMinorAxis * bigA)
	var sinSigma, cosSigma, cos2SigmaM float64

	for i := 0; i < directMaxIterations; i++ {
		cos2SigmaM = math.Cos(2*sigma1 + sigma)
		sinSigma, cosSigma = math.Sincos(sigma)

		deltaSigma := bigB * sinSigma *
			(cos2SigmaM + bigB/4*
				(cosSigma*(-1+2*cos2SigmaM*cos2SigmaM)-
					bigB/6*cos2SigmaM*(-3+4*sinSigma*sinSigma)*(-3+4*cos2SigmaM*cos2SigmaM)))

		prev := sigma
		sigma = distance/(SemiMinorAxis*bigA) + deltaSigma
		if math.Abs(sigma-prev) < directEpsilon {
			break
		}
	}

	tmp := sinU1*sinSigma - cosU1*cosSigma*cosAlpha1
	lat2 := math.Atan2(sinU1*cosSigma+cosU1*sinSigma*cosAlpha1,
		(1-Flattening)*math.Sqrt(sinAlpha*sinAlpha+tmp*tmp))

	lambda := math.Atan2(sinSigma*sinAlpha1, cosU1*cosSigma-sinU1*sinSigma*cosAlpha1)
	c := Flattening / 16 * cosSqAlpha * (4 + Flattening*(4-3*cosSqAlpha))
	l := lambda - (1-c)*Flattening*sinAlpha*
		(sigma+c*sinSigma*(cos2SigmaM+c*cosSigma*(-1+2*cos2SigmaM*cos2SigmaM)))

	lon2 := math.Mod(DegToRad(origin.Lon)+l+3*math.Pi, 2*math.Pi) - math.Pi

	return geo.GeoPoint{Lat: RadToDeg(lat2), Lon: RadToDeg(lon2)}
}

// BoxByCenterAndRadius returns the box whose top-left and bottom-right
// corners lie at the given radius from center along bearings 315 and 135
// degrees. The box circumscribes the radius circle at its corners, not its
// edges.
func BoxByCenterAndRadius(center geo.GeoPoint, radius float64) geo.GeoBox {
	topLeft := Project(center, 315, radius)
	bottomRight := Project(center, 135, radius)
	return geo.NewGeoBox(topLeft, bottomRight)
}
