package geo

import (
	"math"
	"testing"
)

func TestParseGeoPoint(t *testing.T) {
	tests := []struct {
		text string
		lat  float64
		lon  float64
		ok   bool
	}{
		{"48.8566 2.3522", 48.8566, 2.3522, true},
		{"48.8566, 2.3522", 48.8566, 2.3522, true},
		{"-33.8688 151.2093", -33.8688, 151.2093, true},
		{"+40.7128 -74.0060", 40.7128, -74.0060, true},
		{"48.8566 N 2.3522 E", 48.8566, 2.3522, true},
		{"N 48.8566 E 2.3522", 48.8566, 2.3522, true},
		{"33.8688 S 151.2093 E", -33.8688, 151.2093, true},
		{"40.7128 N 74.0060 W", 40.7128, -74.0060, true},
		{"n 48.8566 e 2.3522", 48.8566, 2.3522, true},
		{"48\xc2\xb0 51' 23.8\" N 2\xc2\xb0 21' 8.0\" E", 48.0 + 51.0/60 + 23.8/3600, 2.0 + 21.0/60 + 8.0/3600, true},
		{"48\xb0 51' N 2\xb0 21' E", 48.85, 2.35, true},
		{"90 180", 90, 180, true},
		{"-90 -180", -90, -180, true},
		{"0 0", 0, 0, true},

		{"", 0, 0, false},
		{"48.8566", 0, 0, false},
		{"91 0", 0, 0, false},
		{"0 181", 0, 0, false},
		{"N 48.8566 N 2.3522", 0, 0, false},
		{"abc def", 0, 0, false},
		{"48.8566 2.3522 trailing", 0, 0, false},
		{"48. 2.3522", 0, 0, false},
	}

	for _, tt := range tests {
		got, ok := ParseGeoPoint(tt.text)
		if ok != tt.ok {
			t.Errorf("ParseGeoPoint(%q) ok = %v, want %v", tt.text, ok, tt.ok)
			continue
		}
		if !ok {
			continue
		}
		if math.Abs(got.Lat-tt.lat) > 1e-9 || math.Abs(got.Lon-tt.lon) > 1e-9 {
			t.Errorf("ParseGeoPoint(%q) = %v %v, want %v %v", tt.text, got.Lat, got.Lon, tt.lat, tt.lon)
		}
	}
}

func TestParseGeoPointSignBeforeHemisphere(t *testing.T) {
	// An explicit sign prefix wins; the hemisphere suffix is then not
	// consumed and makes the input invalid.
	if _, ok := ParseGeoPoint("-48.8566 S 2.3522 E"); ok {
		t.Error("sign prefix plus hemisphere suffix must be rejected")
	}
}

func TestParseGeoPointRoundTripDisplay(t *testing.T) {
	p := GeoPoint{Lat: 48.8566, Lon: 2.3522}
	got, ok := ParseGeoPoint(p.GetDisplayText())
	if !ok {
		t.Fatalf("cannot parse display text %q", p.GetDisplayText())
	}
	if math.Abs(got.Lat-p.Lat) > 1e-5 || math.Abs(got.Lon-p.Lon) > 1e-5 {
		t.Errorf("round trip = %v, want %v", got, p)
	}
}
