// Package analysis summarizes recorded event streams: time histograms, pulse
// clustering of excitation times and mono-exponential lifetime fits of
// emission times.
package analysis

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// ErrNoData is returned when an analysis is asked to summarize nothing.
var ErrNoData = errors.New("no events to analyze")

// Histogram holds bin edges and counts; len(Edges) == len(Counts)+1.
type Histogram struct {
	Edges  []float64
	Counts []float64
}

// Centers returns the midpoint of every bin.
func (h Histogram) Centers() []float64 {
	out := make([]float64, len(h.Counts))
	for i := range out {
		out[i] = (h.Edges[i] + h.Edges[i+1]) / 2
	}
	return out
}

// NewHistogram bins values into equal-width bins spanning their range.
func NewHistogram(values []float64, bins int) (Histogram, error) {
	if bins <= 0 {
		return Histogram{}, fmt.Errorf("bins must be positive, got %d", bins)
	}
	if len(values) == 0 {
		return Histogram{}, ErrNoData
	}
	sorted := slices.Clone(values)
	slices.Sort(sorted)
	lo, hi := sorted[0], sorted[len(sorted)-1]
	if hi == lo {
		hi = lo + 1
	}
	edges := make([]float64, bins+1)
	floats.Span(edges, lo, hi)
	// the last bin is half-open, so nudge its edge past the maximum
	edges[bins] = math.Nextafter(edges[bins], math.Inf(1))
	counts := stat.Histogram(nil, edges, sorted, nil)
	return Histogram{Edges: edges, Counts: counts}, nil
}

// Summary is a compact description of a time series.
type Summary struct {
	Count int
	Min   float64
	Max   float64
	Mean  float64
	Std   float64
}

// Summarize computes count, range, mean and standard deviation.
func Summarize(values []float64) (Summary, error) {
	if len(values) == 0 {
		return Summary{}, ErrNoData
	}
	mean, std := stat.MeanStdDev(values, nil)
	if len(values) == 1 {
		std = 0
	}
	return Summary{Count: len(values), Min: floats.Min(values), Max: floats.Max(values), Mean: mean, Std: std}, nil
}

// WrapToPulse maps every time to its offset from the nearest pulse center,
// with centers at integer multiples of periodS.
func WrapToPulse(times []float64, periodS float64) []float64 {
	out := make([]float64, len(times))
	for i, t := range times {
		out[i] = t - math.Round(t/periodS)*periodS
	}
	return out
}

// PulseFraction is the share of times within halfWidthS of a pulse center.
func PulseFraction(times []float64, periodS, halfWidthS float64) (float64, error) {
	if len(times) == 0 {
		return 0, ErrNoData
	}
	if !(periodS > 0) {
		return 0, fmt.Errorf("period must be positive, got %g", periodS)
	}
	near := 0
	for _, d := range WrapToPulse(times, periodS) {
		if math.Abs(d) <= halfWidthS {
			near++
		}
	}
	return float64(near) / float64(len(times)), nil
}

// FitLifetime estimates a mono-exponential decay time from emission times by a
// count-weighted least-squares line through log(counts) of the histogram,
// starting at its peak bin.
func FitLifetime(times []float64, bins int) (float64, error) {
	h, err := NewHistogram(times, bins)
	if err != nil {
		return 0, err
	}
	peak := floats.MaxIdx(h.Counts)
	centers := h.Centers()
	var xs, ys, ws []float64
	for i := peak; i < len(h.Counts); i++ {
		if h.Counts[i] <= 0 {
			continue
		}
		xs = append(xs, centers[i])
		ys = append(ys, math.Log(h.Counts[i]))
		ws = append(ws, h.Counts[i])
	}
	if len(xs) < 3 {
		return 0, fmt.Errorf("lifetime fit needs at least 3 populated bins after the peak, got %d", len(xs))
	}
	_, beta := stat.LinearRegression(xs, ys, ws, false)
	if !(beta < 0) {
		return 0, fmt.Errorf("emission counts do not decay (slope %g)", beta)
	}
	return -1 / beta, nil
}
