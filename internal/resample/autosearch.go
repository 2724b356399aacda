package resample

import (
	"fmt"
	"math"
)

// goldenRatio is the golden-section search's fixed reduction factor.
const goldenRatio = 0.6180339887498949

// AutoResult is the outcome of an auto (golden-section) hyperparameter
// search.
type AutoResult struct {
	Best        float64
	Evaluations int
}

// AutoSearchCV searches [lo, hi] for the prior variance maximizing mean
// K-fold predictive log-likelihood via golden-section search, refined by a
// quadratic fit through the final bracket's three points — the source's
// hand-rolled 1-D hybrid (gonum's optimize package has no bracketed 1-D
// extremum finder to delegate to; see DESIGN.md).
func AutoSearchCV(newOptimizer Factory, lo, hi float64, folds int, pid []int, level Level, seed uint64, fit FitSpec, tol float64, maxEvals int) (*AutoResult, error) {
	if folds < 2 {
		return nil, fmt.Errorf("resample: folds must be >= 2, got %d", folds)
	}
	foldOf := assignFolds(pid, level, folds, newRand(seed, 0))

	objective := func(xi float64) (float64, error) {
		lls, err := evalFoldsAt(newOptimizer, xi, foldOf, folds, fit)
		if err != nil {
			return 0, err
		}
		return mean(lls), nil
	}

	a, b := lo, hi
	c := b - goldenRatio*(b-a)
	d := a + goldenRatio*(b-a)
	fc, err := objective(c)
	if err != nil {
		return nil, err
	}
	fd, err := objective(d)
	if err != nil {
		return nil, err
	}
	evals := 2

	for evals < maxEvals && (b-a) > tol*(math.Abs(a)+math.Abs(b)+1e-12) {
		if fc > fd {
			b, d, fd = d, c, fc
			c = b - goldenRatio*(b-a)
			fc, err = objective(c)
		} else {
			a, c, fc = c, d, fd
			d = a + goldenRatio*(b-a)
			fd, err = objective(d)
		}
		if err != nil {
			return nil, err
		}
		evals++
	}

	best := c
	fBest := fc
	if fd > fBest {
		best, fBest = d, fd
	}

	// Quadratic (Brent-style) refinement: fit a parabola through the
	// bracket's endpoints and its current best interior point, and take
	// the vertex if it lands inside [a, b] and improves on best.
	if vertex, ok := quadraticVertex(a, b, best, fBest, objective); ok {
		fv, err := objective(vertex)
		if err != nil {
			return nil, err
		}
		evals++
		if fv > fBest {
			best = vertex
		}
	}

	return &AutoResult{Best: best, Evaluations: evals}, nil
}

// quadraticVertex fits a parabola through (a, f(a)), (mid, fMid), (b, f(b))
// and returns its vertex when that vertex lies strictly inside (a, b).
func quadraticVertex(a, b, mid, fMid float64, objective func(float64) (float64, error)) (float64, bool) {
	fa, err := objective(a)
	if err != nil {
		return 0, false
	}
	fb, err := objective(b)
	if err != nil {
		return 0, false
	}

	// Lagrange three-point vertex formula for the interpolating parabola.
	num := (mid-a)*(mid-a)*(fMid-fb) - (mid-b)*(mid-b)*(fMid-fa)
	den := (mid-a)*(fMid-fb) - (mid-b)*(fMid-fa)
	if den == 0 {
		return 0, false
	}
	v := mid - 0.5*num/den
	if v <= a || v >= b {
		return 0, false
	}
	return v, true
}

