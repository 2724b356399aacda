package ccd

import "github.com/flintstat/ccdfit/internal/kernel"

// recomputeGroupAggregates rebuilds nEvents[g] = Σ weight·y over group g.
// Called at construction and whenever weights change.
func (o *Optimizer) recomputeGroupAggregates() {
	for g := range o.nEvents {
		o.nEvents[g] = 0
	}
	for row := 0; row < o.n; row++ {
		o.nEvents[o.pid[row]] += o.weight[row] * o.y[row]
	}
}

// recomputePrecomputedSums rebuilds XjY and XjX, the construction-time
// precomputes the gradient/Hessian combination rule subtracts from (resp.
// substitutes for) the per-pass accumulated sums.
func (o *Optimizer) recomputePrecomputedSums() {
	if o.traits.PrecomputeGradient {
		if o.xjY == nil {
			o.xjY = make([]float64, o.ncols)
		}
		for j := 0; j < o.ncols; j++ {
			sum := 0.0
			for row, x := range o.mat.Column(j).All() {
				sum += o.weight[row] * o.y[row] * x
			}
			o.xjY[j] = sum
		}
	}
	if o.traits.PrecomputeHessian {
		if o.xjX == nil {
			o.xjX = make([]float64, o.ncols)
		}
		for j := 0; j < o.ncols; j++ {
			sum := 0.0
			for row, x := range o.mat.Column(j).All() {
				sum += o.weight[row] * x * x
			}
			o.xjX[j] = sum
		}
	}
}

// recomputeEAndDenom rebuilds e[] from the current xBeta for every row, and
// for Independent/Grouped kernels also rebuilds denom[] from scratch. For
// Ordered/OrderedWithTies kernels denom is cumulative along sortOrder and is
// instead recomputed lazily by ensureOrderedDenom.
func (o *Optimizer) recomputeEAndDenom() {
	for row := 0; row < o.n; row++ {
		o.e[row] = o.kernel.OffsExpXBeta(o.offs[row], o.xBeta[row], o.y[row])
	}
	switch o.traits.Grouping {
	case kernel.Independent, kernel.Grouped:
		for g := range o.denom {
			o.denom[g] = o.kernel.DenomNullValue()
		}
		for row := 0; row < o.n; row++ {
			o.denom[o.pid[row]] += o.weight[row] * o.e[row]
		}
	default:
		o.orderedDenomValid = false
	}
}

// ensureOrderedDenom rebuilds the cumulative risk-set denominator for
// Ordered/OrderedWithTies kernels by walking sortOrder once; tie-blocks
// share the running total at the end of their block (Breslow's
// approximation: every simultaneous event sees the same risk set). The
// running sum restarts at every stratum boundary (resetAtGroup), so a
// stratified Cox fit never lets one stratum's risk set leak into another's.
func (o *Optimizer) ensureOrderedDenom() {
	if o.orderedDenomValid {
		return
	}
	run := o.kernel.DenomNullValue()
	prevGroup := -1
	for _, row := range o.sortOrder {
		g := o.pid[row]
		if g != prevGroup {
			if o.resetAtGroup != nil && o.resetAtGroup[g] {
				run = o.kernel.DenomNullValue()
			}
			prevGroup = g
		}
		run += o.weight[row] * o.e[row]
		o.denom[g] = run
	}
	o.orderedDenomValid = true
}

// applyDelta is the single code path that moves beta[j] by delta and keeps
// xBeta, e and denom consistent in the same call — every mutation of beta
// (SetBeta, SetFixedBeta, and the CCD inner loop's coordinate update) goes
// through it.
func (o *Optimizer) applyDelta(j int, delta float64) {
	o.beta[j] += delta
	if delta == 0 {
		return
	}
	col := o.mat.Column(j)
	switch o.traits.Grouping {
	case kernel.Independent, kernel.Grouped:
		for row, x := range col.All() {
			o.xBeta[row] += delta * x
			oldE := o.e[row]
			o.e[row] = o.kernel.OffsExpXBeta(o.offs[row], o.xBeta[row], o.y[row])
			o.denom[o.pid[row]] += o.weight[row] * (o.e[row] - oldE)
		}
	default:
		for row, x := range col.All() {
			o.xBeta[row] += delta * x
			o.e[row] = o.kernel.OffsExpXBeta(o.offs[row], o.xBeta[row], o.y[row])
		}
		o.orderedDenomValid = false
	}
	o.llValid = false
}

// GetLogLikelihood returns the current penalized log-likelihood, recomputing
// lazily if beta (or the prior, or the weights) changed since the last call.
func (o *Optimizer) GetLogLikelihood() float64 {
	if o.llValid {
		return o.llCache
	}
	if o.traits.Grouping == kernel.Ordered || o.traits.Grouping == kernel.OrderedWithTies {
		o.ensureOrderedDenom()
	}
	ll := 0.0
	for row := 0; row < o.n; row++ {
		if o.excluded[row] {
			continue
		}
		ll += o.weight[row] * o.kernel.LogLikeNumeratorContrib(o.y[row], o.xBeta[row])
		if o.traits.LikelihoodHasFixedTerms {
			ll += o.weight[row] * o.kernel.LogLikeFixedTermsContrib(o.y[row], o.offs[row])
		}
	}
	if o.traits.LikelihoodHasDenominator {
		for g := 0; g < o.nGroups; g++ {
			if o.denom[g] <= 0 {
				continue
			}
			ll -= o.kernel.LogLikeDenominatorContrib(o.nEvents[g], o.denom[g])
		}
	}
	for j := 0; j < o.ncols; j++ {
		ll += o.prior.Get(j).LogDensity(o.beta[j])
	}
	o.llCache = ll
	o.llValid = true
	return ll
}

// GetPredictiveLogLikelihood scores the current fit against an external
// weight vector (typically a CV fold's held-out indicator) without the
// prior density term, which is a training-time-only quantity. The
// denominator terms use denom and nEvents as last rebuilt by SetWeights;
// internal/resample calls SetWeights with the same held-out vector first, so
// both are then evaluated under the held-out weights at the fixed beta,
// without refitting.
func (o *Optimizer) GetPredictiveLogLikelihood(weights []float64) float64 {
	if o.traits.Grouping == kernel.Ordered || o.traits.Grouping == kernel.OrderedWithTies {
		o.ensureOrderedDenom()
	}
	ll := 0.0
	for row := 0; row < o.n; row++ {
		w := weights[row]
		if w == 0 {
			continue
		}
		ll += w * o.kernel.LogLikeNumeratorContrib(o.y[row], o.xBeta[row])
		if o.traits.LikelihoodHasFixedTerms {
			ll += w * o.kernel.LogLikeFixedTermsContrib(o.y[row], o.offs[row])
		}
	}
	if o.traits.LikelihoodHasDenominator {
		for g := 0; g < o.nGroups; g++ {
			if o.denom[g] <= 0 {
				continue
			}
			ll -= o.kernel.LogLikeDenominatorContrib(o.nEvents[g], o.denom[g])
		}
	}
	return ll
}

// Predict returns the kernel's scoring function evaluated at every row's
// current linear predictor, in row order.
func (o *Optimizer) Predict() []float64 {
	out := make([]float64, o.n)
	for row := 0; row < o.n; row++ {
		out[row] = o.kernel.PredictEstimate(o.xBeta[row])
	}
	return out
}
