// Package resample implements the cross-validation and bootstrap drivers
// that wrap internal/ccd.Optimizer: a K-fold grid/auto hyperparameter
// search over the prior's variance, and a replicate bootstrap over
// coefficient estimates. Each fold and each replicate is an independent
// fitting task dispatched to a worker pool (golang.org/x/sync/errgroup),
// one fresh *ccd.Optimizer per task, with no mutable state shared across
// tasks — per spec.md §5's concurrency model.
package resample

import (
	"math"
	"math/rand/v2"

	"github.com/flintstat/ccdfit/internal/ccd"
)

// Level selects how rows are grouped before folding/resampling.
type Level int

const (
	// LevelEntry treats every row as independently resamplable.
	LevelEntry Level = iota
	// LevelSubject keeps every row sharing a pid together.
	LevelSubject
)

func (l Level) String() string {
	if l == LevelSubject {
		return "subject"
	}
	return "entry"
}

// Factory builds a fresh, independently-fittable Optimizer over the same
// underlying data; resample calls it once per fold/replicate task so that
// concurrent tasks never share mutable optimizer state.
type Factory func() (*ccd.Optimizer, error)

// FitSpec bundles the Update() parameters shared by every fold/replicate
// fit in a CV or bootstrap run.
type FitSpec struct {
	MaxIter         int
	ConvergenceKind ccd.ConvergenceKind
	Tolerance       float64
}

func (f FitSpec) run(o *ccd.Optimizer) ccd.StatusCode {
	return o.Update(f.MaxIter, f.ConvergenceKind, f.Tolerance)
}

func newRand(seed uint64, stream uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, stream))
}

func distinctOrdered(pid []int) []int {
	seen := make(map[int]bool)
	var ids []int
	for _, id := range pid {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	return ids
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func stddev(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	m := mean(xs)
	ss := 0.0
	for _, x := range xs {
		d := x - m
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(xs)-1))
}
