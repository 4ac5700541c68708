package excitation

import (
	"fmt"
	"math"
	"math/rand/v2"
	"slices"

	"gonum.org/v1/gonum/stat/distuv"
)

// FWHMPerSigma converts a Gaussian full width at half maximum to a standard deviation.
const FWHMPerSigma = 2.355

// The pulse train generator may draw up to pulseDrawsPerExcitation*n +
// pulseDrawFloor candidates before it gives up on a window. Windows that keep
// less than about one draw in a thousand are treated as degenerate.
const (
	pulseDrawsPerExcitation = 1000
	pulseDrawFloor          = 1_000_000
	// pulseBatchHeadroom inflates each batch above the count the observed
	// acceptance rate predicts.
	pulseBatchHeadroom = 1.25
)

// SigmaFromFWHM returns the standard deviation of a Gaussian with the given FWHM.
func SigmaFromFWHM(fwhm float64) float64 { return fwhm / FWHMPerSigma }

// TimeGenerator produces n excitation times within [startS, endS], sorted ascending.
type TimeGenerator interface {
	Generate(startS, endS float64, n int) ([]float64, error)
}

// ContinuousWave draws times uniformly over the window.
type ContinuousWave struct {
	rng *rand.Rand
}

// NewContinuousWave returns a continuous-wave generator drawing from rng.
func NewContinuousWave(rng *rand.Rand) *ContinuousWave {
	return &ContinuousWave{rng: rng}
}

func (g *ContinuousWave) Generate(startS, endS float64, n int) ([]float64, error) {
	if err := checkWindow(startS, endS); err != nil {
		return nil, err
	}
	if err := checkCount(n); err != nil {
		return nil, err
	}
	u := distuv.Uniform{Min: startS, Max: endS, Src: g.rng}
	out := make([]float64, n)
	for i := range out {
		out[i] = u.Rand()
	}
	slices.Sort(out)
	return out, nil
}

// GaussianPulseTrain bunches times into Gaussian pulses repeating at
// RepetitionRateHz, each pulse PulseFWHMS wide.
type GaussianPulseTrain struct {
	RepetitionRateHz float64
	PulseFWHMS       float64
	rng              *rand.Rand
}

// NewGaussianPulseTrain validates the pulse parameters.
func NewGaussianPulseTrain(repetitionRateHz, pulseFWHMS float64, rng *rand.Rand) (*GaussianPulseTrain, error) {
	if !(repetitionRateHz > 0) || math.IsInf(repetitionRateHz, 0) {
		return nil, ErrInvalidParameter("repetition_rate_hz", repetitionRateHz)
	}
	if !(pulseFWHMS > 0) || math.IsInf(pulseFWHMS, 0) {
		return nil, ErrInvalidParameter("pulse_fwhm_s", pulseFWHMS)
	}
	return &GaussianPulseTrain{RepetitionRateHz: repetitionRateHz, PulseFWHMS: pulseFWHMS, rng: rng}, nil
}

// PeriodS is the time between pulse centers.
func (g *GaussianPulseTrain) PeriodS() float64 { return 1 / g.RepetitionRateHz }

// SigmaS is the pulse standard deviation.
func (g *GaussianPulseTrain) SigmaS() float64 { return SigmaFromFWHM(g.PulseFWHMS) }

// Generate picks a pulse uniformly from those overlapping the window, adds a
// Gaussian offset and keeps samples inside [startS, endS]. The first batch is
// twice n; later batches are sized from the acceptance rate seen so far until
// n samples survive or the draw budget runs out.
func (g *GaussianPulseTrain) Generate(startS, endS float64, n int) ([]float64, error) {
	if err := checkWindow(startS, endS); err != nil {
		return nil, err
	}
	if err := checkCount(n); err != nil {
		return nil, err
	}
	period := g.PeriodS()
	first := math.Floor(startS / period)
	span := math.Ceil((endS - startS) / period)
	if span+1 > math.MaxInt32 {
		return nil, ErrDegenerateInput(fmt.Sprintf("window spans too many pulses: %g", span+1))
	}
	nPulses := int(span) + 1
	offset := distuv.Normal{Mu: 0, Sigma: g.SigmaS(), Src: g.rng}

	budget := pulseDrawsPerExcitation*float64(n) + pulseDrawFloor
	out := make([]float64, 0, n)
	drawn := 0
	for len(out) < n {
		if float64(drawn) >= budget {
			return nil, ErrDegenerateInput(fmt.Sprintf("pulse train produced %d of %d excitations in [%g, %g] after %d draws", len(out), n, startS, endS, drawn))
		}
		batch := math.Min(pulseBatch(n-len(out), len(out), drawn), budget-float64(drawn))
		for i := 0; i < int(batch) && len(out) < n; i++ {
			drawn++
			idx := first + float64(g.rng.IntN(nPulses))
			t := idx*period + offset.Rand()
			if t < startS || t > endS {
				continue
			}
			out = append(out, t)
		}
	}
	slices.Sort(out)
	return out, nil
}

// pulseBatch sizes the next resampling batch for missing samples from the
// share of drawn candidates accepted so far.
func pulseBatch(missing, accepted, drawn int) float64 {
	switch {
	case drawn == 0:
		return 2 * float64(missing)
	case accepted == 0:
		// nothing landed yet; grow geometrically
		return 2 * float64(drawn)
	}
	rate := float64(accepted) / float64(drawn)
	return math.Ceil(float64(missing)/rate*pulseBatchHeadroom) + 16
}
