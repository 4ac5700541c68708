// Package record encodes simulation events in the flat binary layout consumed
// by the plotting and fitting tools: one big-endian float64 triple
// (t_s, x_m, y_m) per event, no header.
package record

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"excitond/pkg/types"
)

const (
	// EventSize is the encoded size of one (t_s, x_m, y_m) record.
	EventSize = 24
	// CoordSize is the encoded size of one (x_m, y_m) record.
	CoordSize = 16
)

// Triple is the common shape of excitation and emission events on disk.
type Triple struct {
	TS, XM, YM float64
}

// PutTriple encodes tr into b, which must hold EventSize bytes.
func PutTriple(b []byte, tr Triple) {
	binary.BigEndian.PutUint64(b[0:8], math.Float64bits(tr.TS))
	binary.BigEndian.PutUint64(b[8:16], math.Float64bits(tr.XM))
	binary.BigEndian.PutUint64(b[16:24], math.Float64bits(tr.YM))
}

// DecodeTriple decodes one record from b. NaN fields are rejected.
func DecodeTriple(b []byte) (Triple, error) {
	if len(b) != EventSize {
		return Triple{}, fmt.Errorf("malformed event record: %d bytes, want %d", len(b), EventSize)
	}
	tr := Triple{
		TS: math.Float64frombits(binary.BigEndian.Uint64(b[0:8])),
		XM: math.Float64frombits(binary.BigEndian.Uint64(b[8:16])),
		YM: math.Float64frombits(binary.BigEndian.Uint64(b[16:24])),
	}
	if math.IsNaN(tr.TS) || math.IsNaN(tr.XM) || math.IsNaN(tr.YM) {
		return Triple{}, fmt.Errorf("event record contains NaN: %+v", tr)
	}
	return tr, nil
}

// PutCoord encodes a coordinate pair into b, which must hold CoordSize bytes.
func PutCoord(b []byte, xm, ym float64) {
	binary.BigEndian.PutUint64(b[0:8], math.Float64bits(xm))
	binary.BigEndian.PutUint64(b[8:16], math.Float64bits(ym))
}

// DecodeCoord decodes a coordinate pair from b.
func DecodeCoord(b []byte) (xm, ym float64, err error) {
	if len(b) != CoordSize {
		return 0, 0, fmt.Errorf("malformed coordinate record: %d bytes, want %d", len(b), CoordSize)
	}
	return math.Float64frombits(binary.BigEndian.Uint64(b[0:8])), math.Float64frombits(binary.BigEndian.Uint64(b[8:16])), nil
}

// WriteTriples streams records to w.
func WriteTriples(w io.Writer, triples []Triple) error {
	bw := bufio.NewWriter(w)
	var buf [EventSize]byte
	for _, tr := range triples {
		PutTriple(buf[:], tr)
		if _, err := bw.Write(buf[:]); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// ReadTriples reads records until EOF. A trailing partial record is an error.
func ReadTriples(r io.Reader) ([]Triple, error) {
	br := bufio.NewReader(r)
	var (
		out []Triple
		buf [EventSize]byte
	)
	for {
		_, err := io.ReadFull(br, buf[:])
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, fmt.Errorf("truncated event record after %d records", len(out))
		}
		if err != nil {
			return nil, err
		}
		tr, err := DecodeTriple(buf[:])
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", len(out), err)
		}
		out = append(out, tr)
	}
}

// FromEmissions converts emission events to records.
func FromEmissions(events []types.EmissionEvent) []Triple {
	out := make([]Triple, len(events))
	for i, e := range events {
		out[i] = Triple{TS: e.TS, XM: e.XM, YM: e.YM}
	}
	return out
}

// FromExcitations converts excitation events to records.
func FromExcitations(events []types.ExcitationEvent) []Triple {
	out := make([]Triple, len(events))
	for i, e := range events {
		out[i] = Triple{TS: e.TS, XM: e.XM, YM: e.YM}
	}
	return out
}

// Emissions converts records back to emission events.
func Emissions(triples []Triple) []types.EmissionEvent {
	out := make([]types.EmissionEvent, len(triples))
	for i, tr := range triples {
		out[i] = types.EmissionEvent{TS: tr.TS, XM: tr.XM, YM: tr.YM}
	}
	return out
}

// Excitations converts records back to excitation events.
func Excitations(triples []Triple) []types.ExcitationEvent {
	out := make([]types.ExcitationEvent, len(triples))
	for i, tr := range triples {
		out[i] = types.ExcitationEvent{TS: tr.TS, XM: tr.XM, YM: tr.YM}
	}
	return out
}

// Times extracts the t_s column.
func Times(triples []Triple) []float64 {
	out := make([]float64, len(triples))
	for i, tr := range triples {
		out[i] = tr.TS
	}
	return out
}
