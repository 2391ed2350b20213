package geodesy

import (
	"math"
	"testing"

	"github.com/wegman-software/mapfile-go/internal/geo"
)

func TestGetLineIntersection(t *testing.T) {
	p := func(lat, lon float64) geo.GeoPoint {
		return geo.GeoPoint{Lat: lat, Lon: lon}
	}

	tests := []struct {
		name           string
		a1, a2, b1, b2 geo.GeoPoint
		want           geo.GeoPoint
		ok             bool
	}{
		{
			name: "crossing",
			a1:   p(0, -1), a2: p(0, 1),
			b1: p(-1, 0), b2: p(1, 0),
			want: p(0, 0), ok: true,
		},
		{
			name: "shared endpoint",
			a1:   p(1, 1), a2: p(2, 2),
			b1: p(1, 1), b2: p(0, 5),
			want: p(1, 1), ok: true,
		},
		{
			name: "t junction",
			a1:   p(0, -1), a2: p(0, 1),
			b1: p(0, 0), b2: p(1, 0),
			want: p(0, 0), ok: true,
		},
		{
			name: "disjoint",
			a1:   p(0, 0), a2: p(0, 1),
			b1: p(1, 0), b2: p(1, 1),
			ok: false,
		},
		{
			name: "lines cross but segments do not",
			a1:   p(0, 0), a2: p(1, 1),
			b1: p(5, 0), b2: p(4, 10),
			ok: false,
		},
		{
			name: "collinear overlapping",
			a1:   p(0, 0), a2: p(10, 10),
			b1: p(5, 5), b2: p(15, 15),
			want: p(5, 5), ok: true,
		},
		{
			name: "collinear disjoint",
			a1:   p(0, 0), a2: p(1, 1),
			b1: p(5, 5), b2: p(6, 6),
			ok: false,
		},
		{
			name: "parallel",
			a1:   p(0, 0), a2: p(1, 1),
			b1: p(0, 1), b2: p(1, 2),
			ok: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := GetLineIntersection(tt.a1, tt.a2, tt.b1, tt.b2)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if !ok {
				return
			}
			if math.Abs(got.Lat-tt.want.Lat) > 1e-9 || math.Abs(got.Lon-tt.want.Lon) > 1e-9 {
				t.Errorf("intersection = %v, want %v", got, tt.want)
			}
		})
	}
}
