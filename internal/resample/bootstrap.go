package resample

import (
	"context"
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"
)

// BootstrapResult holds the per-replicate coefficient draws and the
// percentile summary spec.md §4.6 describes.
type BootstrapResult struct {
	Replicates [][]float64 // R x ncols, one row per replicate
	Mean       []float64
	SD         []float64
	CILower    []float64 // 2.5th percentile
	CIUpper    []float64 // 97.5th percentile
}

// Bootstrap draws R bootstrap replicates (LevelEntry or LevelSubject,
// matching the grouping the caller's pid vector encodes), refits each on
// its own fresh Optimizer, and summarizes the resulting coefficient draws.
// Replicates run concurrently, one fresh Optimizer per task, same as
// GridSearchCV's fold workers. An error from any replicate (building its
// Optimizer or setting its weights) makes Bootstrap return that error with
// no result; a replicate whose Update ends without SUCCESS is kept as is.
func Bootstrap(newOptimizer Factory, r int, pid []int, level Level, seed uint64, fit FitSpec) (*BootstrapResult, error) {
	if r < 1 {
		return nil, fmt.Errorf("resample: replicate count must be >= 1, got %d", r)
	}

	n := len(pid)
	reps := make([][]float64, r)
	grp, _ := errgroup.WithContext(context.Background())
	for i := 0; i < r; i++ {
		i := i
		grp.Go(func() error {
			o, err := newOptimizer()
			if err != nil {
				return err
			}
			w := bootstrapWeights(n, pid, level, newRand(seed, uint64(i)+1))
			if err := o.SetWeights(w, false); err != nil {
				return err
			}
			fit.run(o)
			beta := make([]float64, o.BetaSize())
			for j := range beta {
				beta[j] = o.Beta(j)
			}
			reps[i] = beta
			return nil
		})
	}
	if err := grp.Wait(); err != nil {
		return nil, err
	}

	ncols := len(reps[0])
	meanB := make([]float64, ncols)
	sdB := make([]float64, ncols)
	loB := make([]float64, ncols)
	hiB := make([]float64, ncols)
	column := make([]float64, r)
	for j := 0; j < ncols; j++ {
		for i := 0; i < r; i++ {
			column[i] = reps[i][j]
		}
		meanB[j] = mean(column)
		sdB[j] = stddev(column)
		loB[j], hiB[j] = percentileCI(column, 0.025, 0.975)
	}

	return &BootstrapResult{
		Replicates: reps,
		Mean:       meanB,
		SD:         sdB,
		CILower:    loB,
		CIUpper:    hiB,
	}, nil
}

// percentileCI returns the loQ/hiQ empirical quantiles of xs via linear
// interpolation between order statistics, leaving xs's own order untouched.
func percentileCI(xs []float64, loQ, hiQ float64) (float64, float64) {
	sorted := append([]float64(nil), xs...)
	sort.Float64s(sorted)
	return quantile(sorted, loQ), quantile(sorted, hiQ)
}

func quantile(sorted []float64, q float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n == 1 {
		return sorted[0]
	}
	pos := q * float64(n-1)
	lo := int(pos)
	if lo >= n-1 {
		return sorted[n-1]
	}
	frac := pos - float64(lo)
	return sorted[lo] + frac*(sorted[lo+1]-sorted[lo])
}
