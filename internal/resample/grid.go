package resample

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"

	"github.com/flintstat/ccdfit/internal/ccd"
)

// GridResult is the outcome of a hyperparameter grid search.
type GridResult struct {
	Variances  []float64 // the S log-spaced grid points searched
	MeanLogLik []float64 // mean held-out predictive log-likelihood per point
	SDLogLik   []float64 // its standard deviation across folds
	Best       float64   // the argmax variance
	BestIndex  int
}

// GridSearchCV evaluates mean K-fold predictive log-likelihood at gridSize
// log-spaced points in [lo, hi] and returns the variance that maximizes it.
func GridSearchCV(newOptimizer Factory, lo, hi float64, gridSize, folds int, pid []int, level Level, seed uint64, fit FitSpec) (*GridResult, error) {
	if gridSize < 1 {
		return nil, fmt.Errorf("resample: gridSize must be >= 1, got %d", gridSize)
	}
	if folds < 2 {
		return nil, fmt.Errorf("resample: folds must be >= 2, got %d", folds)
	}

	grid := make([]float64, gridSize)
	floats.LogSpan(grid, lo, hi)

	foldOf := assignFolds(pid, level, folds, newRand(seed, 0))

	meanLL := make([]float64, gridSize)
	sdLL := make([]float64, gridSize)
	for i, xi := range grid {
		lls, err := evalFoldsAt(newOptimizer, xi, foldOf, folds, fit)
		if err != nil {
			return nil, err
		}
		meanLL[i] = mean(lls)
		sdLL[i] = stddev(lls)
	}

	best := 0
	for i := 1; i < gridSize; i++ {
		if meanLL[i] > meanLL[best] {
			best = i
		}
	}

	return &GridResult{
		Variances:  grid,
		MeanLogLik: meanLL,
		SDLogLik:   sdLL,
		Best:       grid[best],
		BestIndex:  best,
	}, nil
}

// evalFoldsAt runs the K-fold loop for one hyperparameter value, one fold
// per worker-pool task with its own fresh Optimizer.
func evalFoldsAt(newOptimizer Factory, variance float64, foldOf []int, folds int, fit FitSpec) ([]float64, error) {
	lls := make([]float64, folds)
	grp, _ := errgroup.WithContext(context.Background())
	for k := 0; k < folds; k++ {
		k := k
		grp.Go(func() error {
			o, err := newOptimizer()
			if err != nil {
				return err
			}
			o.SetHyperprior(variance)
			train, test := foldWeights(foldOf, k)
			if err := o.SetWeights(train, true); err != nil {
				return err
			}
			fit.run(o)
			if err := o.SetWeights(test, true); err != nil {
				return err
			}
			lls[k] = o.GetPredictiveLogLikelihood(test)
			return nil
		})
	}
	if err := grp.Wait(); err != nil {
		return nil, err
	}
	return lls, nil
}
