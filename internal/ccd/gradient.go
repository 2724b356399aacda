package ccd

import (
	"context"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/flintstat/ccdfit/internal/colmatrix"
	"github.com/flintstat/ccdfit/internal/kernel"
)

// computeGradientHessian runs the CCD inner loop's steps 1-2 for column j:
// build the group numerator(s), reduce to (gradient, hessian) via the
// kernel, then fold in the construction-time precomputes. ok is false when
// the Hessian is non-positive or non-finite, per the spec's "skip the
// coordinate and raise a flag" rule.
func (o *Optimizer) computeGradientHessian(j int) (gradient, hessian float64, ok bool) {
	tr := o.traits
	col := o.mat.Column(j)
	isIndicator := col.Format() == colmatrix.Indicator

	var accG, accH float64
	switch tr.Grouping {
	case kernel.Ordered, kernel.OrderedWithTies:
		o.ensureOrderedDenom()
		numer, numer2 := o.orderedNumerators(j)
		for g := 0; g < o.nGroups; g++ {
			if o.nEvents[g] == 0 {
				continue
			}
			if tr.LikelihoodHasDenominator && o.denom[g] <= 0 {
				continue
			}
			dg, dh := o.kernel.IncrementGradientAndHessian(numer[g], numer2[g], o.denom[g], o.nEvents[g], isIndicator, true)
			accG += dg
			accH += dh
		}
	case kernel.Grouped:
		numer := make([]float64, o.nGroups)
		var numer2 []float64
		if tr.HasTwoNumeratorTerms {
			numer2 = make([]float64, o.nGroups)
		}
		for row, x := range col.All() {
			g := o.pid[row]
			numer[g] += o.kernel.GradientNumeratorContrib(x, o.e[row], o.xBeta[row], o.y[row])
			if tr.HasTwoNumeratorTerms {
				numer2[g] += o.kernel.GradientNumerator2Contrib(x, o.e[row])
			}
		}
		for g := 0; g < o.nGroups; g++ {
			if tr.LikelihoodHasDenominator && o.denom[g] <= 0 {
				continue
			}
			var n2 float64
			if numer2 != nil {
				n2 = numer2[g]
			}
			dg, dh := o.kernel.IncrementGradientAndHessian(numer[g], n2, o.denom[g], o.nEvents[g], isIndicator, true)
			accG += dg
			accH += dh
		}
	default: // Independent
		rows, vals := collectColumn(col)
		accG, accH = o.reduceIndependent(rows, vals, isIndicator)
	}

	if tr.PrecomputeGradient {
		// accG is the risk-weighted mean term Σx·p; the true score is
		// XjY minus it, but NextPoint's Newton step (Δ = -g/h) expects g
		// to be the negative-log-likelihood gradient, i.e. the sign-flipped
		// score: accG - XjY.
		gradient = accG - o.xjY[j]
	} else {
		gradient = accG
	}
	if tr.PrecomputeHessian {
		hessian = o.hessianFactor * o.xjX[j]
	} else {
		hessian = accH
	}
	if hessian <= 0 || math.IsNaN(hessian) || math.IsInf(hessian, 0) || math.IsNaN(gradient) || math.IsInf(gradient, 0) {
		return 0, 0, false
	}
	return gradient, hessian, true
}

// orderedNumerators runs the reverse-cumulative pass spec.md §4.3 step 1
// requires for Ordered/OrderedWithTies kernels: walk sortOrder once,
// accumulating column j's running contribution, and record the running
// total at every group's position (tie-blocks end up holding the total
// through the end of the block, shared by every row in it). The running
// sums restart at every stratum boundary (resetAtGroup), matching
// ensureOrderedDenom so a stratified Cox fit never pools risk sets across
// strata.
func (o *Optimizer) orderedNumerators(j int) (numer, numer2 []float64) {
	tr := o.traits
	col := o.mat.Column(j)
	numer = make([]float64, o.nGroups)
	if tr.HasTwoNumeratorTerms {
		numer2 = make([]float64, o.nGroups)
	}
	var runN, runN2 float64
	prevGroup := -1
	for _, row := range o.sortOrder {
		g := o.pid[row]
		if g != prevGroup {
			if o.resetAtGroup != nil && o.resetAtGroup[g] {
				runN, runN2 = 0, 0
			}
			prevGroup = g
		}
		if x := col.At(row); x != 0 {
			runN += o.kernel.GradientNumeratorContrib(x, o.e[row], o.xBeta[row], o.y[row])
			if tr.HasTwoNumeratorTerms {
				runN2 += o.kernel.GradientNumerator2Contrib(x, o.e[row])
			}
		}
		numer[g] = runN
		if tr.HasTwoNumeratorTerms {
			numer2[g] = runN2
		}
	}
	return numer, numer2
}

// collectColumn extracts a column's nonzero (row, value) pairs as parallel
// slices for the independent-model reduction. vals is nil for an indicator
// column, signalling "value is always 1" to the caller.
func collectColumn(col colmatrix.Column) (rows []int, vals []float64) {
	if ic, ok := col.(*colmatrix.IndicatorColumn); ok {
		return ic.Rows(), nil
	}
	for row, v := range col.All() {
		rows = append(rows, row)
		vals = append(vals, v)
	}
	return rows, vals
}

// reduceIndependent runs steps 1-2 fused (each Independent-model row is its
// own group) over the column's nonzero rows, splitting across a worker pool
// when the row count exceeds ParallelRowThreshold. The reduction order is a
// fixed left-to-right sum over per-worker partials, so the result does not
// depend on goroutine scheduling.
func (o *Optimizer) reduceIndependent(rows []int, vals []float64, isIndicator bool) (float64, float64) {
	n := len(rows)
	if n <= ParallelRowThreshold {
		return o.reduceIndependentRange(rows, vals, isIndicator, 0, n)
	}

	workers := runtime.GOMAXPROCS(0)
	if workers < 1 {
		workers = 1
	}
	chunk := (n + workers - 1) / workers
	type partial struct{ dg, dh float64 }
	partials := make([]partial, workers)

	grp, _ := errgroup.WithContext(context.Background())
	for w := 0; w < workers; w++ {
		start := w * chunk
		if start >= n {
			break
		}
		end := start + chunk
		if end > n {
			end = n
		}
		w, start, end := w, start, end
		grp.Go(func() error {
			dg, dh := o.reduceIndependentRange(rows, vals, isIndicator, start, end)
			partials[w] = partial{dg, dh}
			return nil
		})
	}
	_ = grp.Wait() // reduceIndependentRange never returns an error

	var dg, dh float64
	for _, p := range partials {
		dg += p.dg
		dh += p.dh
	}
	return dg, dh
}

func (o *Optimizer) reduceIndependentRange(rows []int, vals []float64, isIndicator bool, lo, hi int) (dg, dh float64) {
	tr := o.traits
	for i := lo; i < hi; i++ {
		row := rows[i]
		x := 1.0
		if vals != nil {
			x = vals[i]
		}
		if tr.LikelihoodHasDenominator && o.denom[row] <= 0 {
			continue
		}
		numer := o.kernel.GradientNumeratorContrib(x, o.e[row], o.xBeta[row], o.y[row])
		var numer2 float64
		if tr.HasTwoNumeratorTerms {
			numer2 = o.kernel.GradientNumerator2Contrib(x, o.e[row])
		}
		g, h := o.kernel.IncrementGradientAndHessian(numer, numer2, o.denom[row], o.weight[row], isIndicator, o.hasCustomWeights)
		dg += g
		dh += h
	}
	return dg, dh
}
