// Package profile computes per-coefficient profile-likelihood confidence
// intervals: the classic Cyclops approximation that holds every other
// coefficient at the joint mode and brackets-then-roots the single
// coefficient's likelihood-ratio deviation.
package profile

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/flintstat/ccdfit/internal/ccd"
)

// chiSquareThreshold is half the 95% quantile of a 1-degree-of-freedom
// chi-square distribution — the classic 1.92 likelihood-ratio cutoff,
// computed once rather than hardcoded so its provenance is traceable.
var chiSquareThreshold = distuv.ChiSquared{K: 1}.Quantile(0.95) / 2

// Bracket is one coefficient's profile-likelihood confidence interval.
type Bracket struct {
	ColumnIndex int
	Low, High   float64
}

// Config bounds the outward bracket expansion and the zeroin root find.
type Config struct {
	InitialStep float64 // first outward step size, default 0.1 if <= 0
	ExpandRate  float64 // outward expansion multiplier, default 2 if <= 0
	MaxExpand   int     // outward expansion attempts per side, default 50
	Tol         float64 // zeroin tolerance, default 1e-6
	MaxIter     int     // zeroin iteration cap, default 100
}

func (c Config) withDefaults() Config {
	if c.InitialStep <= 0 {
		c.InitialStep = 0.1
	}
	if c.ExpandRate <= 0 {
		c.ExpandRate = 2
	}
	if c.MaxExpand <= 0 {
		c.MaxExpand = 50
	}
	if c.Tol <= 0 {
		c.Tol = 1e-6
	}
	if c.MaxIter <= 0 {
		c.MaxIter = 100
	}
	return c
}

// Run computes a profile-likelihood bracket for every column index in cols,
// in the order given — callers resolving column names to indices should
// preserve that resolution order, since it is the only deterministic
// ordering a profile run can promise (see DESIGN.md). β_j is restored to
// its mode value before Run returns, for every j, even on a partial
// failure.
func Run(o *ccd.Optimizer, cols []int, cfg Config) ([]Bracket, error) {
	cfg = cfg.withDefaults()

	mode := make([]float64, len(cols))
	for i, j := range cols {
		mode[i] = o.Beta(j)
	}
	defer func() {
		for i, j := range cols {
			o.SetBeta(j, mode[i])
		}
	}()

	llStar := o.GetLogLikelihood()

	results := make([]Bracket, len(cols))
	for i, j := range cols {
		betaStar := mode[i]

		f := func(x float64) float64 {
			if err := o.SetBeta(j, x); err != nil {
				return math.NaN()
			}
			return o.GetLogLikelihood() - llStar + chiSquareThreshold
		}

		low, err := bracketAndRoot(f, betaStar, -cfg.InitialStep, cfg)
		if err != nil {
			o.SetBeta(j, betaStar)
			return nil, fmt.Errorf("profile: column %d lower bound: %w", j, err)
		}
		high, err := bracketAndRoot(f, betaStar, cfg.InitialStep, cfg)
		if err != nil {
			o.SetBeta(j, betaStar)
			return nil, fmt.Errorf("profile: column %d upper bound: %w", j, err)
		}

		o.SetBeta(j, betaStar)
		results[i] = Bracket{ColumnIndex: j, Low: low, High: high}
	}

	return results, nil
}

// bracketAndRoot expands outward from center by step (negative for the
// lower bound, positive for the upper) until f changes sign, then roots it.
func bracketAndRoot(f func(float64) float64, center, step float64, cfg Config) (float64, error) {
	a := center
	fa := f(a)
	b := center
	fb := fa

	for i := 0; i < cfg.MaxExpand; i++ {
		b = center + step*math.Pow(cfg.ExpandRate, float64(i))
		fb = f(b)
		if (fa > 0) != (fb > 0) {
			lo, hi := a, b
			if lo > hi {
				lo, hi = hi, lo
			}
			return zeroin(f, lo, hi, cfg.Tol, cfg.MaxIter)
		}
		a, fa = b, fb
	}

	return 0, fmt.Errorf("profile: no sign change found within %d outward expansions", cfg.MaxExpand)
}
