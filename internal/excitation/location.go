package excitation

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"
)

// Point is a location in the plane, in meters.
type Point struct {
	XM float64
	YM float64
}

// LocationGenerator produces exactly n excitation locations.
type LocationGenerator interface {
	Generate(n int) ([]Point, error)
}

// GaussianSpot is a radially symmetric 2D Gaussian spot centered on the origin.
type GaussianSpot struct {
	FWHMM float64
	rng   *rand.Rand
}

// NewGaussianSpot validates the spot width.
func NewGaussianSpot(fwhmM float64, rng *rand.Rand) (*GaussianSpot, error) {
	if !(fwhmM > 0) || math.IsInf(fwhmM, 0) {
		return nil, ErrInvalidParameter("spot_fwhm_m", fwhmM)
	}
	return &GaussianSpot{FWHMM: fwhmM, rng: rng}, nil
}

// SigmaM is the spot standard deviation along each axis.
func (g *GaussianSpot) SigmaM() float64 { return SigmaFromFWHM(g.FWHMM) }

// Generate draws all x coordinates, then all y coordinates.
func (g *GaussianSpot) Generate(n int) ([]Point, error) {
	if err := checkCount(n); err != nil {
		return nil, err
	}
	d := distuv.Normal{Mu: 0, Sigma: g.SigmaM(), Src: g.rng}
	out := make([]Point, n)
	for i := range out {
		out[i].XM = d.Rand()
	}
	for i := range out {
		out[i].YM = d.Rand()
	}
	return out, nil
}
