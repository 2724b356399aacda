// Package ccd implements the cyclic coordinate descent optimizer that fits
// a penalized generalized linear model: it owns beta and the running sums
// derived from it (xBeta, the per-row offset*exp(xBeta) term, the grouped
// denominators), drives one model kernel's per-coefficient gradient and
// Hessian contributions through the joint prior's coordinate update, and
// reports convergence.
package ccd

import (
	"fmt"
	"sort"

	"github.com/flintstat/ccdfit/internal/colmatrix"
	"github.com/flintstat/ccdfit/internal/cyclopslog"
	"github.com/flintstat/ccdfit/internal/kernel"
	"github.com/flintstat/ccdfit/internal/prior"
)

// ParallelRowThreshold is the nonzero-row count above which a column's
// independent-model reduction is split across a worker pool instead of
// running inline.
const ParallelRowThreshold = 4096

// GroupConfig supplies the structural information the optimizer cannot
// derive from the matrix alone: the stratum id for grouped models (CLR,
// SCCS) and the outcome time for ordered models (Cox). Independent kernels
// ignore both fields and grouped kernels read only StratumID. Ordered kernels
// read Time, and also StratumID when Traits().ResetableAccumulators is set;
// an ordered kernel without that trait rejects a non-nil StratumID.
type GroupConfig struct {
	StratumID []int
	Time      []float64
}

// Optimizer is the fitting session for one (matrix, kernel, prior) triple.
type Optimizer struct {
	mat    *colmatrix.Matrix
	kernel kernel.Kernel
	prior  prior.JointPrior
	traits kernel.Traits
	log    *cyclopslog.Logger

	n, ncols int

	y, offs, weight []float64
	excluded        []bool
	hasCustomWeights bool

	pid          []int
	nGroups      int
	sortOrder    []int  // meaningful only for Ordered/OrderedWithTies
	resetAtGroup []bool // meaningful only for Ordered/OrderedWithTies; true at a stratum's first group

	beta  []float64
	fixed []bool

	xBeta []float64
	e     []float64

	denom             []float64
	orderedDenomValid bool
	nEvents           []float64

	xjY, xjX      []float64
	hessianFactor float64
	maxAbs        []float64

	llValid bool
	llCache float64
}

// New builds an Optimizer over mat with the given kernel and joint prior.
// offs may be nil (defaults to all 1s). group is read according to
// kern.Traits().Grouping; pass a zero GroupConfig for Independent kernels.
func New(mat *colmatrix.Matrix, kern kernel.Kernel, jp prior.JointPrior, y, offs []float64, group GroupConfig, log *cyclopslog.Logger) (*Optimizer, error) {
	n := mat.NRows()
	ncols := mat.NCols()
	if len(y) != n {
		return nil, fmt.Errorf("ccd: y has %d entries, want %d", len(y), n)
	}
	if offs == nil {
		offs = onesFloat(n)
	} else if len(offs) != n {
		return nil, fmt.Errorf("ccd: offs has %d entries, want %d", len(offs), n)
	}

	tr := kern.Traits()
	o := &Optimizer{
		mat:    mat,
		kernel: kern,
		prior:  jp,
		traits: tr,
		log:    log,
		n:      n,
		ncols:  ncols,
		y:      y,
		offs:   offs,
		weight: onesFloat(n),
		excluded: make([]bool, n),
		beta:   make([]float64, ncols),
		fixed:  make([]bool, ncols),
		xBeta:  make([]float64, n),
		e:      make([]float64, n),
	}

	switch tr.Grouping {
	case kernel.Independent:
		o.pid = identityInts(n)
		o.nGroups = n
	case kernel.Grouped:
		if len(group.StratumID) != n {
			return nil, fmt.Errorf("ccd: grouped kernel %q needs %d stratum ids, got %d", kern.Name(), n, len(group.StratumID))
		}
		o.pid, o.nGroups = remapStrata(group.StratumID)
	case kernel.Ordered, kernel.OrderedWithTies:
		if len(group.Time) != n {
			return nil, fmt.Errorf("ccd: ordered kernel %q needs %d event times, got %d", kern.Name(), n, len(group.Time))
		}
		var stratumID []int
		if tr.ResetableAccumulators {
			if len(group.StratumID) != n {
				return nil, fmt.Errorf("ccd: stratified ordered kernel %q needs %d stratum ids, got %d", kern.Name(), n, len(group.StratumID))
			}
			stratumID = group.StratumID
		} else if group.StratumID != nil {
			return nil, fmt.Errorf("ccd: kernel %q does not declare ResetableAccumulators but a stratum id vector was supplied", kern.Name())
		}
		o.sortOrder, o.pid, o.nGroups, o.resetAtGroup = buildOrderedGroups(n, group.Time, stratumID, tr.ExactTies)
	default:
		return nil, fmt.Errorf("ccd: unknown grouping %v", tr.Grouping)
	}

	o.denom = make([]float64, o.nGroups)
	o.nEvents = make([]float64, o.nGroups)

	if kern.Name() == kernel.NameLeastSquares {
		o.hessianFactor = 2
	} else {
		o.hessianFactor = 1
	}

	o.maxAbs = make([]float64, ncols)
	for j := 0; j < ncols; j++ {
		o.maxAbs[j] = mat.MaxAbs(j)
	}

	o.recomputeGroupAggregates()
	o.recomputePrecomputedSums()
	o.recomputeEAndDenom()
	return o, nil
}

func onesFloat(n int) []float64 {
	v := make([]float64, n)
	for i := range v {
		v[i] = 1
	}
	return v
}

func identityInts(n int) []int {
	v := make([]int, n)
	for i := range v {
		v[i] = i
	}
	return v
}

// remapStrata assigns each distinct raw stratum id a contiguous 0-based
// group index, in first-seen order.
func remapStrata(ids []int) (pid []int, nGroups int) {
	index := make(map[int]int)
	pid = make([]int, len(ids))
	for i, id := range ids {
		g, ok := index[id]
		if !ok {
			g = len(index)
			index[id] = g
		}
		pid[i] = g
	}
	return pid, len(index)
}

// buildOrderedGroups is the CCD-owned "sort permutation for sorted models"
// (spec's construction-time precompute list): rows are ordered by
// ascending stratum then by decreasing time within a stratum, and when
// exactTies is set, consecutive same-stratum rows sharing an identical time
// collapse into one Breslow tie-block group. stratumID is nil for
// unstratified ordered kernels, treating every row as one stratum.
// resetAtGroup[g] is true when group g is the first group of its stratum,
// the point at which the cumulative risk-set accumulator must restart
// (StratifiedCoxProportionalHazards's per-stratum reset).
func buildOrderedGroups(n int, time []float64, stratumID []int, exactTies bool) (sortOrder, pid []int, nGroups int, resetAtGroup []bool) {
	strat := stratumID
	if strat == nil {
		strat = make([]int, n) // all rows in stratum 0
	} else {
		strat, _ = remapStrata(strat)
	}

	sortOrder = identityInts(n)
	sort.SliceStable(sortOrder, func(a, b int) bool {
		ra, rb := sortOrder[a], sortOrder[b]
		if strat[ra] != strat[rb] {
			return strat[ra] < strat[rb]
		}
		return time[ra] > time[rb]
	})

	pid = make([]int, n)
	groupID := -1
	for i, row := range sortOrder {
		newStratum := i == 0 || strat[row] != strat[sortOrder[i-1]]
		newBlock := newStratum || !exactTies || time[row] != time[sortOrder[i-1]]
		if newBlock {
			groupID++
			resetAtGroup = append(resetAtGroup, newStratum)
		}
		pid[row] = groupID
	}
	return sortOrder, pid, groupID + 1, resetAtGroup
}

// Beta returns the current value of coefficient j.
func (o *Optimizer) Beta(j int) float64 { return o.beta[j] }

// BetaSize returns the number of coefficients.
func (o *Optimizer) BetaSize() int { return o.ncols }

// SetBeta sets beta[j] to v and updates every dependent row/group sum in
// the same call, so the optimizer is never left with xBeta, e or denom out
// of sync with beta.
func (o *Optimizer) SetBeta(j int, v float64) error {
	if j < 0 || j >= o.ncols {
		return fmt.Errorf("ccd: coefficient index %d out of range [0,%d)", j, o.ncols)
	}
	o.applyDelta(j, v-o.beta[j])
	return nil
}

// SetFixedBeta pins coefficient j to b and excludes it from future
// coordinate updates; xBeta retains its contribution.
func (o *Optimizer) SetFixedBeta(j int, b float64) error {
	if err := o.SetBeta(j, b); err != nil {
		return err
	}
	o.fixed[j] = true
	return nil
}

// UnfixBeta releases a coefficient pinned by SetFixedBeta.
func (o *Optimizer) UnfixBeta(j int) { o.fixed[j] = false }

// SetPriorType replaces the joint prior by a homogeneous prior of the given
// kind, preserving the current hyperprior variance.
func (o *Optimizer) SetPriorType(kind prior.Kind) error {
	single, err := prior.NewSingle(kind, o.prior.Variance())
	if err != nil {
		return err
	}
	o.prior = prior.NewFullyExchangeable(single)
	o.llValid = false
	return nil
}

// SetWeights replaces the per-row weights (nil resets to all 1s). cv marks
// zero-weight rows as excluded from the row sum of GetLogLikelihood,
// matching the held-out-fold convention used by internal/resample.
func (o *Optimizer) SetWeights(weights []float64, cv bool) error {
	if weights == nil {
		for i := range o.weight {
			o.weight[i] = 1
			o.excluded[i] = false
		}
		o.hasCustomWeights = false
	} else {
		if len(weights) != o.n {
			return fmt.Errorf("ccd: weights has %d entries, want %d", len(weights), o.n)
		}
		copy(o.weight, weights)
		o.hasCustomWeights = true
		for i, w := range weights {
			o.excluded[i] = cv && w == 0
		}
	}
	o.recomputeGroupAggregates()
	o.recomputePrecomputedSums()
	o.recomputeEAndDenom()
	o.llValid = false
	return nil
}

// ConditionID is a metadata string identifying the fitted likelihood, for
// loggers and diagnostics output.
func (o *Optimizer) ConditionID() string { return o.kernel.Name() }

// PriorInfo summarizes the joint prior's per-coefficient configuration.
func (o *Optimizer) PriorInfo() string {
	return fmt.Sprintf("%s(variance=%g)", o.prior.Get(0).Name(), o.prior.Variance())
}

// Hyperprior returns the joint prior's shared variance hyperparameter.
func (o *Optimizer) Hyperprior() float64 { return o.prior.Variance() }

// SetHyperprior updates the joint prior's shared variance (used by the
// cross-validation driver's grid/auto search).
func (o *Optimizer) SetHyperprior(v float64) {
	o.prior.SetVariance(v)
	o.llValid = false
}
