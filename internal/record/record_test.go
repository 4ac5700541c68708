package record

import (
	"bytes"
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"

	"excitond/pkg/types"
)

func TestTripleLayoutIsBigEndianTXY(t *testing.T) {
	var b [EventSize]byte
	PutTriple(b[:], Triple{TS: 1, XM: 2, YM: 3})
	for i, want := range []float64{1, 2, 3} {
		got := math.Float64frombits(binary.BigEndian.Uint64(b[i*8 : i*8+8]))
		if got != want {
			t.Fatalf("field %d = %g, want %g", i, got, want)
		}
	}
	// 1.0 is 0x3FF0000000000000
	if b[0] != 0x3F || b[1] != 0xF0 {
		t.Fatalf("unexpected leading bytes % x", b[:2])
	}
}

func TestCoordLayout(t *testing.T) {
	var b [CoordSize]byte
	PutCoord(b[:], -1, 2)
	x, y, err := DecodeCoord(b[:])
	if err != nil || x != -1 || y != 2 {
		t.Fatalf("decode = %g, %g, %v", x, y, err)
	}
	if _, _, err := DecodeCoord(b[:8]); err == nil {
		t.Fatalf("expected error for short coordinate")
	}
}

func TestReadTriplesRejectsTruncatedAndNaN(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteTriples(&buf, []Triple{{TS: 1}, {TS: 2}}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := ReadTriples(bytes.NewReader(buf.Bytes()[:EventSize+5])); err == nil {
		t.Fatalf("expected truncation error")
	}

	var nan [EventSize]byte
	PutTriple(nan[:], Triple{TS: math.NaN()})
	if _, err := ReadTriples(bytes.NewReader(nan[:])); err == nil {
		t.Fatalf("expected NaN error")
	}
}

func TestReadTriplesEmpty(t *testing.T) {
	got, err := ReadTriples(bytes.NewReader(nil))
	if err != nil || len(got) != 0 {
		t.Fatalf("got %v, %v", got, err)
	}
}

func TestWriteReadRun(t *testing.T) {
	dir := t.TempDir()
	run := Run{
		Config:      RunConfig{Seed: 9, Experiment: types.ExperimentConfig{StartS: -1, EndS: 1, TimeStepS: 0.5}},
		Excitations: FromExcitations([]types.ExcitationEvent{{TS: -0.5, XM: 1e-6, YM: -2e-6}, {TS: 0.25}}),
		Emissions:   FromEmissions([]types.EmissionEvent{{TS: 0.5, XM: 3e-6, YM: 4e-6}}),
	}
	if err := WriteRun(dir, run); err != nil {
		t.Fatalf("write run: %v", err)
	}
	fi, err := os.Stat(filepath.Join(dir, ExcitationsFile))
	if err != nil {
		t.Fatalf("stat excitations: %v", err)
	}
	if fi.Size() != 2*EventSize {
		t.Fatalf("excitations size=%d", fi.Size())
	}
	got, err := ReadRun(dir)
	if err != nil {
		t.Fatalf("read run: %v", err)
	}
	if got.Config != run.Config {
		t.Fatalf("config=%+v", got.Config)
	}
	if len(got.Excitations) != 2 || got.Excitations[0] != run.Excitations[0] {
		t.Fatalf("excitations=%v", got.Excitations)
	}
	if len(got.Emissions) != 1 || Emissions(got.Emissions)[0] != (types.EmissionEvent{TS: 0.5, XM: 3e-6, YM: 4e-6}) {
		t.Fatalf("emissions=%v", got.Emissions)
	}
}

func TestReadRunWithoutEmissions(t *testing.T) {
	dir := t.TempDir()
	if err := WriteRun(dir, Run{Excitations: []Triple{{TS: 1}}}); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := ReadRun(dir)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if got.Emissions != nil {
		t.Fatalf("expected nil emissions, got %v", got.Emissions)
	}
	if len(Excitations(got.Excitations)) != 1 {
		t.Fatalf("excitations=%v", got.Excitations)
	}
}

func TestWriteRunRequiresDirectory(t *testing.T) {
	if err := WriteRun(filepath.Join(t.TempDir(), "missing"), Run{}); err == nil {
		t.Fatalf("expected error for missing dir")
	}
}
