package nodeindex

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/wegman-software/mapfile-go/internal/geo"
)

const coordTolerance = 180.0 / 134217727.0

func TestPutGet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nodes.idx")

	idx, err := Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer idx.Close()

	coords := map[int64]geo.GeoPoint{
		1:       {Lat: 48.8566, Lon: 2.3522},
		42:      {Lat: -33.8688, Lon: 151.2093},
		1000000: {Lat: 0, Lon: 0},
	}
	for id, c := range coords {
		idx.Put(id, c)
	}

	for id, want := range coords {
		got, ok := idx.Get(id)
		if !ok {
			t.Fatalf("node %d missing", id)
		}
		if math.Abs(got.Lat-want.Lat) > coordTolerance || math.Abs(got.Lon-want.Lon) > 2*coordTolerance {
			t.Errorf("node %d = %v, want %v", id, got, want)
		}
	}

	if _, ok := idx.Get(2); ok {
		t.Error("unstored node must not resolve")
	}
	if _, ok := idx.Get(-1); ok {
		t.Error("negative id must not resolve")
	}
	if _, ok := idx.Get(maxNodeID + 1); ok {
		t.Error("out-of-range id must not resolve")
	}
}

func TestPutInvalidCoordinate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nodes.idx")

	idx, err := Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer idx.Close()

	idx.Put(7, geo.GeoPoint{Lat: 95, Lon: 0})
	if _, ok := idx.Get(7); ok {
		t.Error("invalid coordinate must not be stored")
	}
}

func TestReopenReadOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nodes.idx")

	idx, err := Create(path)
	if err != nil {
		t.Fatal(err)
	}
	idx.Put(5, geo.GeoPoint{Lat: 52.52, Lon: 13.405})
	if err := idx.Sync(); err != nil {
		t.Fatal(err)
	}
	if err := idx.Close(); err != nil {
		t.Fatal(err)
	}

	ro, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer ro.Close()

	got, ok := ro.Get(5)
	if !ok {
		t.Fatal("stored node missing after reopen")
	}
	if math.Abs(got.Lat-52.52) > coordTolerance {
		t.Errorf("lat = %f", got.Lat)
	}

	// Read-only indexes silently drop writes.
	ro.Put(6, geo.GeoPoint{Lat: 1, Lon: 1})
	if _, ok := ro.Get(6); ok {
		t.Error("read-only index must not accept writes")
	}
}
