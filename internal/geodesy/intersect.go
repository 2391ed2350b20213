package geodesy

import "github.com/wegman-software/mapfile-go/internal/geo"

// GetLineIntersection tests the segments a1-a2 and b1-b2 for intersection
// and returns the intersection point when one exists. Segments sharing an
// endpoint intersect at that endpoint. Collinear or parallel segments
// intersect when an endpoint of one lies strictly inside the other's
// bounding box.
func GetLineIntersection(a1, a2, b1, b2 geo.GeoPoint) (geo.GeoPoint, bool) {
	if a1 == b1 || a1 == b2 {
		return a1, true
	}
	if a2 == b1 || a2 == b2 {
		return a2, true
	}

	denom := (b2.Lat-b1.Lat)*(a2.Lon-a1.Lon) - (b2.Lon-b1.Lon)*(a2.Lat-a1.Lat)
	if denom == 0 {
		aBox := geo.NewGeoBox(a1, a2)
		if aBox.IsIncludes(b1, true) {
			return b1, true
		}
		if aBox.IsIncludes(b2, true) {
			return b2, true
		}
		bBox := geo.NewGeoBox(b1, b2)
		if bBox.IsIncludes(a1, true) {
			return a1, true
		}
		if bBox.IsIncludes(a2, true) {
			return a2, true
		}
		return geo.GeoPoint{}, false
	}

	ua := ((b2.Lon-b1.Lon)*(a1.Lat-b1.Lat) - (b2.Lat-b1.Lat)*(a1.Lon-b1.Lon)) / denom
	ub := ((a2.Lon-a1.Lon)*(a1.Lat-b1.Lat) - (a2.Lat-a1.Lat)*(a1.Lon-b1.Lon)) / denom

	if ua < 0 || ua > 1 || ub < 0 || ub > 1 {
		return geo.GeoPoint{}, false
	}

	return geo.GeoPoint{
		Lat: a1.Lat + ua*(a2.Lat-a1.Lat),
		Lon: a1.Lon + ua*(a2.Lon-a1.Lon),
	}, true
}
