package geodesy

import (
	"math"
	"testing"

	"github.com/wegman-software/mapfile-go/internal/geo"
)

func TestDistanceKnownValues(t *testing.T) {
	tests := []struct {
		name string
		a, b geo.GeoPoint
		want float64 // meters
		tol  float64
	}{
		{
			// Paris - Berlin, reference value from Vincenty on WGS84.
			name: "paris berlin",
			a:    geo.GeoPoint{Lat: 48.8566, Lon: 2.3522},
			b:    geo.GeoPoint{Lat: 52.5200, Lon: 13.4050},
			want: 879000,
			tol:  3000,
		},
		{
			// One degree of latitude at the equator.
			name: "one degree latitude",
			a:    geo.GeoPoint{Lat: 0, Lon: 0},
			b:    geo.GeoPoint{Lat: 1, Lon: 0},
			want: 110574,
			tol:  50,
		},
		{
			// One degree of longitude at the equator.
			name: "one degree longitude",
			a:    geo.GeoPoint{Lat: 0, Lon: 0},
			b:    geo.GeoPoint{Lat: 0, Lon: 1},
			want: 111319,
			tol:  50,
		},
		{
			name: "short hop",
			a:    geo.GeoPoint{Lat: 48.8566, Lon: 2.3522},
			b:    geo.GeoPoint{Lat: 48.8576, Lon: 2.3522},
			want: 111.2,
			tol:  0.5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Distance(tt.a, tt.b)
			if math.Abs(got-tt.want) > tt.tol {
				t.Errorf("Distance = %.1f, want %.1f +- %.1f", got, tt.want, tt.tol)
			}
		})
	}
}

func TestDistanceZeroForIdenticalPoints(t *testing.T) {
	p := geo.GeoPoint{Lat: 48.8566, Lon: 2.3522}
	if d := Distance(p, p); d != 0 {
		t.Errorf("self distance = %v, want 0", d)
	}

	pole := geo.GeoPoint{Lat: 90, Lon: 0}
	if d := Distance(pole, pole); d != 0 {
		t.Errorf("pole self distance = %v, want 0", d)
	}
}

func TestDistanceSymmetry(t *testing.T) {
	a := geo.GeoPoint{Lat: 48.8566, Lon: 2.3522}
	b := geo.GeoPoint{Lat: -33.8688, Lon: 151.2093}

	ab := Distance(a, b)
	ba := Distance(b, a)
	if math.Abs(ab-ba) > 1e-6 {
		t.Errorf("asymmetric distance: %v vs %v", ab, ba)
	}
	if ab < 1e6 {
		t.Errorf("Paris-Sydney distance implausibly small: %v", ab)
	}
}

func TestProjectDistanceRoundTrip(t *testing.T) {
	origin := geo.GeoPoint{Lat: 48.8566, Lon: 2.3522}

	tests := []struct {
		bearing  float64
		distance float64
	}{
		{0, 1000},
		{45, 5000},
		{90, 25000},
		{135, 100000},
		{270, 500000},
		{315, 12.5},
	}

	for _, tt := range tests {
		target := Project(origin, tt.bearing, tt.distance)
		got := Distance(origin, target)
		if math.Abs(got-tt.distance) > 0.001 {
			t.Errorf("bearing %v distance %v: round trip gives %v", tt.bearing, tt.distance, got)
		}
	}
}

func TestProjectBearings(t *testing.T) {
	origin := geo.GeoPoint{Lat: 48.8566, Lon: 2.3522}

	north := Project(origin, 0, 10000)
	if north.Lat <= origin.Lat || math.Abs(north.Lon-origin.Lon) > 1e-6 {
		t.Errorf("bearing 0 should move due north, got %v", north)
	}

	east := Project(origin, 90, 10000)
	if east.Lon <= origin.Lon {
		t.Errorf("bearing 90 should move east, got %v", east)
	}

	south := Project(origin, 180, 10000)
	if south.Lat >= origin.Lat {
		t.Errorf("bearing 180 should move south, got %v", south)
	}
}

func TestProjectNormalizesLongitude(t *testing.T) {
	// Crossing the date line eastwards must wrap into [-180,180].
	origin := geo.GeoPoint{Lat: 0, Lon: 179.5}
	target := Project(origin, 90, 200000)
	if target.Lon > 180 || target.Lon < -180 {
		t.Errorf("longitude not normalized: %v", target.Lon)
	}
	if target.Lon > 0 {
		t.Errorf("expected wrap to negative longitude, got %v", target.Lon)
	}
}

func TestBoxByCenterAndRadius(t *testing.T) {
	center := geo.GeoPoint{Lat: 48.8566, Lon: 2.3522}
	box := BoxByCenterAndRadius(center, 1000)

	if !box.IsValid() {
		t.Fatal("expected a valid box")
	}
	if !box.IsIncludes(center, false) {
		t.Error("box must contain its center")
	}

	// The corners lie at the radius distance from the center.
	d := Distance(center, box.GetTopLeft())
	if math.Abs(d-1000) > 0.01 {
		t.Errorf("top-left corner distance = %v, want 1000", d)
	}
	d = Distance(center, box.GetBottomRight())
	if math.Abs(d-1000) > 0.01 {
		t.Errorf("bottom-right corner distance = %v, want 1000", d)
	}
}
