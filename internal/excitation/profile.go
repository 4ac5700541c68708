package excitation

import (
	"errors"
	"fmt"
	"math"

	"excitond/pkg/types"
)

// ErrNotPrepared is returned when events are requested before Prepare.
var ErrNotPrepared = errors.New("excitation profile not prepared")

// ErrAlreadyPrepared is returned by a second Prepare; the event set is one-shot.
var ErrAlreadyPrepared = errors.New("excitation profile already prepared")

// CountForRate returns the number of excitations a source firing at rateHz
// produces over the window.
func CountForRate(startS, endS, rateHz float64) (int, error) {
	if err := checkWindow(startS, endS); err != nil {
		return 0, err
	}
	if !(rateHz > 0) || math.IsInf(rateHz, 0) {
		return 0, ErrInvalidParameter("excitation_rate_hz", rateHz)
	}
	n := math.Floor((endS - startS) * rateHz)
	if n > math.MaxInt32 {
		return 0, ErrInvalidParameter("n_excitations", n)
	}
	return int(n), nil
}

// eventStream is a forward-only cursor over the prepared events.
type eventStream struct {
	events []types.ExcitationEvent
	cursor int
}

func (s *eventStream) next() (types.ExcitationEvent, bool) {
	if s.cursor >= len(s.events) {
		return types.ExcitationEvent{}, false
	}
	ev := s.events[s.cursor]
	s.cursor++
	return ev, true
}

func (s *eventStream) remaining() int { return len(s.events) - s.cursor }

// Profile composes a time generator and a location generator into a single
// time-ordered stream of excitation events. Each prepared event is released
// exactly once across the profile's lifetime.
type Profile struct {
	StartS       float64
	EndS         float64
	NExcitations int

	times     TimeGenerator
	locations LocationGenerator

	stream *eventStream
	// at most one event drawn from stream but later than the last query
	lookahead types.ExcitationEvent
	held      bool
}

// NewProfile validates the window and count. Generators are not invoked until Prepare.
func NewProfile(startS, endS float64, n int, times TimeGenerator, locations LocationGenerator) (*Profile, error) {
	if err := checkWindow(startS, endS); err != nil {
		return nil, err
	}
	if err := checkCount(n); err != nil {
		return nil, err
	}
	if times == nil || locations == nil {
		return nil, fmt.Errorf("excitation profile requires a time and a location generator")
	}
	return &Profile{StartS: startS, EndS: endS, NExcitations: n, times: times, locations: locations}, nil
}

// Prepared reports whether Prepare has completed.
func (p *Profile) Prepared() bool { return p.stream != nil }

// Prepare invokes both generators once for the full count and stores the
// zipped events.
func (p *Profile) Prepare() error {
	if p.stream != nil {
		return ErrAlreadyPrepared
	}
	ts, err := p.times.Generate(p.StartS, p.EndS, p.NExcitations)
	if err != nil {
		return fmt.Errorf("generate excitation times: %w", err)
	}
	pts, err := p.locations.Generate(p.NExcitations)
	if err != nil {
		return fmt.Errorf("generate excitation locations: %w", err)
	}
	if len(ts) != p.NExcitations || len(pts) != p.NExcitations {
		return fmt.Errorf("generators returned %d times and %d locations, want %d", len(ts), len(pts), p.NExcitations)
	}
	events := make([]types.ExcitationEvent, p.NExcitations)
	for i := range events {
		events[i] = types.ExcitationEvent{XM: pts[i].XM, YM: pts[i].YM, TS: ts[i]}
	}
	p.stream = &eventStream{events: events}
	return nil
}

func (p *Profile) pull() (types.ExcitationEvent, bool) {
	if p.held {
		p.held = false
		return p.lookahead, true
	}
	return p.stream.next()
}

// ReleaseUpTo returns every unreleased event with TS <= t in ascending time
// order. Query times are expected to be non-decreasing.
func (p *Profile) ReleaseUpTo(t float64) ([]types.ExcitationEvent, error) {
	if p.stream == nil {
		return nil, ErrNotPrepared
	}
	var out []types.ExcitationEvent
	for {
		ev, ok := p.pull()
		if !ok {
			return out, nil
		}
		if ev.TS > t {
			p.lookahead, p.held = ev, true
			return out, nil
		}
		out = append(out, ev)
	}
}

// Peek returns the next unreleased event without consuming it.
func (p *Profile) Peek() (types.ExcitationEvent, bool) {
	if p.stream == nil {
		return types.ExcitationEvent{}, false
	}
	if !p.held {
		ev, ok := p.stream.next()
		if !ok {
			return types.ExcitationEvent{}, false
		}
		p.lookahead, p.held = ev, true
	}
	return p.lookahead, true
}

// Remaining counts events not yet released.
func (p *Profile) Remaining() int {
	if p.stream == nil {
		return 0
	}
	n := p.stream.remaining()
	if p.held {
		n++
	}
	return n
}

// Events returns a copy of the full prepared event set, released or not.
func (p *Profile) Events() []types.ExcitationEvent {
	if p.stream == nil {
		return nil
	}
	out := make([]types.ExcitationEvent, len(p.stream.events))
	copy(out, p.stream.events)
	return out
}

// FromEvents builds an already prepared profile over a recorded event set,
// e.g. one read back from disk. Events must be sorted by time.
func FromEvents(startS, endS float64, events []types.ExcitationEvent) (*Profile, error) {
	if err := checkWindow(startS, endS); err != nil {
		return nil, err
	}
	for i := 1; i < len(events); i++ {
		if events[i].TS < events[i-1].TS {
			return nil, ErrDegenerateInput(fmt.Sprintf("recorded excitations out of order at index %d", i))
		}
	}
	own := make([]types.ExcitationEvent, len(events))
	copy(own, events)
	return &Profile{StartS: startS, EndS: endS, NExcitations: len(own), stream: &eventStream{events: own}}, nil
}
