package filestream

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/wegman-software/mapfile-go/internal/geo"
)

// writeRead runs write against a fresh file and returns a scanner over the
// result.
func writeRead(t *testing.T, write func(*FileWriter)) *FileScanner {
	t.Helper()
	path := filepath.Join(t.TempDir(), "stream.dat")

	w, err := NewFileWriter(path)
	if err != nil {
		t.Fatalf("NewFileWriter: %v", err)
	}
	write(w)
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	s, err := NewFileScanner(path)
	if err != nil {
		t.Fatalf("NewFileScanner: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestNumberRoundTrip(t *testing.T) {
	values := []uint64{0, 1, 127, 128, 129, 255, 300, 16383, 16384, 1<<32 - 1, 1 << 60, 1<<64 - 1}

	s := writeRead(t, func(w *FileWriter) {
		for _, v := range values {
			if err := w.WriteNumber(v); err != nil {
				t.Fatalf("WriteNumber(%d): %v", v, err)
			}
		}
	})

	for _, want := range values {
		got, err := s.ReadNumber()
		if err != nil {
			t.Fatalf("ReadNumber: %v", err)
		}
		if got != want {
			t.Errorf("ReadNumber = %d, want %d", got, want)
		}
	}
	if !s.IsEOF() {
		t.Error("expected EOF after reading all values")
	}
}

func TestNumberEncodingSize(t *testing.T) {
	// 7 bits per byte: 127 fits one byte, 128 needs two.
	s := writeRead(t, func(w *FileWriter) {
		w.WriteNumber(127)
		w.WriteNumber(128)
	})

	if _, err := s.ReadNumber(); err != nil {
		t.Fatal(err)
	}
	if s.Position() != 1 {
		t.Errorf("127 took %d bytes, want 1", s.Position())
	}
	if _, err := s.ReadNumber(); err != nil {
		t.Fatal(err)
	}
	if s.Position() != 3 {
		t.Errorf("128 took %d bytes, want 2", s.Position()-1)
	}
}

func TestSignedNumberRoundTrip(t *testing.T) {
	values := []int64{0, 1, -1, 63, -64, 64, -65, 1000000, -1000000, 1<<62 - 1, -(1 << 62)}

	s := writeRead(t, func(w *FileWriter) {
		for _, v := range values {
			if err := w.WriteSignedNumber(v); err != nil {
				t.Fatalf("WriteSignedNumber(%d): %v", v, err)
			}
		}
	})

	for _, want := range values {
		got, err := s.ReadSignedNumber()
		if err != nil {
			t.Fatalf("ReadSignedNumber: %v", err)
		}
		if got != want {
			t.Errorf("ReadSignedNumber = %d, want %d", got, want)
		}
	}
}

func TestStringAndScalarRoundTrip(t *testing.T) {
	s := writeRead(t, func(w *FileWriter) {
		w.WriteString("")
		w.WriteString("motorway")
		w.WriteString("name with spaces and ümläuts")
		w.WriteUint8(0xab)
		w.WriteUint16(0x1234)
		w.WriteBool(true)
		w.WriteBool(false)
	})

	for _, want := range []string{"", "motorway", "name with spaces and ümläuts"} {
		got, err := s.ReadString()
		if err != nil {
			t.Fatalf("ReadString: %v", err)
		}
		if got != want {
			t.Errorf("ReadString = %q, want %q", got, want)
		}
	}

	if v, err := s.ReadUint8(); err != nil || v != 0xab {
		t.Errorf("ReadUint8 = %x, %v", v, err)
	}
	if v, err := s.ReadUint16(); err != nil || v != 0x1234 {
		t.Errorf("ReadUint16 = %x, %v", v, err)
	}
	if v, err := s.ReadBool(); err != nil || v != true {
		t.Errorf("ReadBool = %v, %v", v, err)
	}
	if v, err := s.ReadBool(); err != nil || v != false {
		t.Errorf("ReadBool = %v, %v", v, err)
	}
}

func TestTypeIdWidths(t *testing.T) {
	s := writeRead(t, func(w *FileWriter) {
		if err := w.WriteTypeId(200, 1); err != nil {
			t.Fatalf("WriteTypeId width 1: %v", err)
		}
		if err := w.WriteTypeId(700, 2); err != nil {
			t.Fatalf("WriteTypeId width 2: %v", err)
		}
		if err := w.WriteTypeId(300, 1); err == nil {
			t.Error("expected error writing id 300 with width 1")
		}
	})

	if id, err := s.ReadTypeId(1); err != nil || id != 200 {
		t.Errorf("ReadTypeId(1) = %d, %v", id, err)
	}
	if id, err := s.ReadTypeId(2); err != nil || id != 700 {
		t.Errorf("ReadTypeId(2) = %d, %v", id, err)
	}
}

func TestCoordRoundTrip(t *testing.T) {
	coords := []geo.GeoPoint{
		{Lat: 48.8566, Lon: 2.3522},
		{Lat: -33.8688, Lon: 151.2093},
		{Lat: 90, Lon: 180},
		{Lat: -90, Lon: -180},
	}

	s := writeRead(t, func(w *FileWriter) {
		for _, c := range coords {
			if err := w.WriteCoord(c); err != nil {
				t.Fatalf("WriteCoord(%v): %v", c, err)
			}
		}
	})

	for _, want := range coords {
		got, err := s.ReadCoord()
		if err != nil {
			t.Fatalf("ReadCoord: %v", err)
		}
		// Values must agree at quantization resolution, ids exactly.
		if got.GetId() != want.GetId() {
			t.Errorf("ReadCoord id mismatch for %v: got %v", want, got)
		}
	}
}

func TestWriteCoordRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.dat")
	w, err := NewFileWriter(path)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	if err := w.WriteCoord(geo.GeoPoint{Lat: 95, Lon: 0}); err == nil {
		t.Error("expected error for out-of-range coordinate")
	}
}

func testPoints() []geo.GeoPointItem {
	return []geo.GeoPointItem{
		{Coord: geo.GeoPoint{Lat: 48.8566, Lon: 2.3522}, Serial: 1},
		{Coord: geo.GeoPoint{Lat: 48.8570, Lon: 2.3530}},
		{Coord: geo.GeoPoint{Lat: 48.8580, Lon: 2.3540}, Serial: 2},
		{Coord: geo.GeoPoint{Lat: 48.8590, Lon: 2.3550}},
	}
}

func TestMapPointsRoundTripWithIds(t *testing.T) {
	points := testPoints()

	s := writeRead(t, func(w *FileWriter) {
		if err := w.WriteMapPoints(points, true); err != nil {
			t.Fatalf("WriteMapPoints: %v", err)
		}
	})

	got, bbox, segments, err := s.ReadMapPoints(true)
	if err != nil {
		t.Fatalf("ReadMapPoints: %v", err)
	}
	if len(got) != len(points) {
		t.Fatalf("point count = %d, want %d", len(got), len(points))
	}
	for i := range points {
		if got[i].Serial != points[i].Serial {
			t.Errorf("point %d serial = %d, want %d", i, got[i].Serial, points[i].Serial)
		}
		if got[i].GetId() != points[i].GetId() {
			t.Errorf("point %d id mismatch", i)
		}
	}

	if !bbox.IsValid() {
		t.Fatal("expected a valid derived bbox")
	}
	for _, p := range got {
		if !bbox.IsIncludes(p.Coord, false) {
			t.Errorf("bbox does not cover %v", p.Coord)
		}
	}
	if len(segments) != 1 {
		t.Errorf("segments = %d, want 1", len(segments))
	}
}

func TestMapPointsRoundTripWithoutIds(t *testing.T) {
	points := testPoints()

	s := writeRead(t, func(w *FileWriter) {
		if err := w.WriteMapPoints(points, false); err != nil {
			t.Fatalf("WriteMapPoints: %v", err)
		}
	})

	got, _, _, err := s.ReadMapPoints(false)
	if err != nil {
		t.Fatalf("ReadMapPoints: %v", err)
	}
	for i := range got {
		if got[i].Serial != 0 {
			t.Errorf("point %d carries serial %d without ids", i, got[i].Serial)
		}
		if got[i].Coord.GetId() != points[i].Coord.GetId() {
			t.Errorf("point %d coordinate mismatch", i)
		}
	}
	if !s.IsEOF() {
		t.Error("id-less encoding must not contain a serial table")
	}
}

func TestMmapScannerMatchesSequential(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stream.dat")
	w, err := NewFileWriter(path)
	if err != nil {
		t.Fatal(err)
	}
	w.WriteNumber(300)
	w.WriteString("abc")
	w.WriteCoord(geo.GeoPoint{Lat: 1, Lon: 2})
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	s, err := NewMmapFileScanner(path)
	if err != nil {
		t.Fatalf("NewMmapFileScanner: %v", err)
	}
	defer s.Close()

	if v, err := s.ReadNumber(); err != nil || v != 300 {
		t.Errorf("ReadNumber = %d, %v", v, err)
	}
	if v, err := s.ReadString(); err != nil || v != "abc" {
		t.Errorf("ReadString = %q, %v", v, err)
	}
	pos := s.Position()
	if _, err := s.ReadCoord(); err != nil {
		t.Errorf("ReadCoord: %v", err)
	}

	// Random access: jump back and reread the coordinate.
	if err := s.SetPos(pos); err != nil {
		t.Fatalf("SetPos: %v", err)
	}
	c, err := s.ReadCoord()
	if err != nil {
		t.Fatalf("ReadCoord after SetPos: %v", err)
	}
	if c.GetId() != (geo.GeoPoint{Lat: 1, Lon: 2}).GetId() {
		t.Errorf("reread coordinate mismatch: %v", c)
	}
	if !s.IsEOF() {
		t.Error("expected EOF")
	}
}

func TestScannerPositionTracking(t *testing.T) {
	s := writeRead(t, func(w *FileWriter) {
		w.WriteUint8(1)
		w.WriteUint16(2)
		w.WriteCoord(geo.GeoPoint{Lat: 0, Lon: 0})
	})

	if s.Position() != 0 {
		t.Errorf("initial position = %d", s.Position())
	}
	s.ReadUint8()
	if s.Position() != 1 {
		t.Errorf("position after uint8 = %d", s.Position())
	}
	s.ReadUint16()
	if s.Position() != 3 {
		t.Errorf("position after uint16 = %d", s.Position())
	}
	s.ReadCoord()
	if s.Position() != 3+geo.CoordBufferSize {
		t.Errorf("position after coord = %d", s.Position())
	}
	if s.Size() != 3+geo.CoordBufferSize {
		t.Errorf("size = %d", s.Size())
	}
}

func TestScannerTruncatedInput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trunc.dat")
	// A lone continuation byte promises more data than exists.
	if err := os.WriteFile(path, []byte{0x80}, 0644); err != nil {
		t.Fatal(err)
	}

	s, err := NewFileScanner(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	if _, err := s.ReadNumber(); err == nil {
		t.Error("expected error for truncated varint")
	}
}
