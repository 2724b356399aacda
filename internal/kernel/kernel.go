// Package kernel implements the per-likelihood pure-function bundles the
// CCD optimizer drives: numerator/denominator/gradient/Hessian/log-likelihood
// contributions for each supported GLM family, plus the trait flags that
// tell the optimizer how to index groups and accumulate sums.
//
// Each Kernel is a small stateless value selected once at construction time
// (runtime interface dispatch rather than the source's compile-time
// monomorphization — permitted explicitly by the spec's design notes). For
// indicator columns the optimizer's independent-model path walks the
// column's row list and passes x = 1.0, and IncrementGradientAndHessian's
// isIndicator flag selects a Hessian form that does not read numer2. The
// numerator contributions still multiply by that 1.0, and the grouped and
// ordered paths read indicator columns through the same value iterators as
// dense and sparse ones.
package kernel

// Grouping determines how the optimizer indexes denom/numer and whether
// cumulative accumulators are needed.
type Grouping int

const (
	// Independent: one group per row (logistic, least squares, Poisson).
	Independent Grouping = iota
	// Grouped: one group per stratum (conditional logistic, SCCS).
	Grouped
	// Ordered: cumulative sums along a sorted row order (Cox, no ties).
	Ordered
	// OrderedWithTies: Ordered, plus Breslow tie expansion within a group
	// of simultaneous events.
	OrderedWithTies
)

func (g Grouping) String() string {
	switch g {
	case Independent:
		return "independent"
	case Grouped:
		return "grouped"
	case Ordered:
		return "ordered"
	case OrderedWithTies:
		return "ordered-with-ties"
	default:
		return "unknown"
	}
}

// Traits are the compile-time (source) / construction-time (here) flags
// that drive the shared CCD machinery. See spec.md §4.2.
type Traits struct {
	Grouping                     Grouping
	SortPid                      bool
	CumulativeGradientAndHessian bool
	ResetableAccumulators        bool
	ExactTies                    bool
	HasTwoNumeratorTerms         bool
	LikelihoodHasDenominator     bool
	LikelihoodHasFixedTerms      bool
	// PrecomputeGradient/PrecomputeHessian mirror GLMProjection's
	// precomputeGradient (XjY) / LeastSquares' precomputeHessian (XjX).
	PrecomputeGradient bool
	PrecomputeHessian  bool
}

// Kernel is the per-likelihood contract every model implements in full.
// x is the covariate value (already folded to 1.0 by the caller on the
// indicator fast path); e is offsExpXBeta(k) (the per-row contribution to
// denom); xBeta is the row's linear predictor; y is the row's outcome.
type Kernel interface {
	Name() string
	Traits() Traits

	// DenomNullValue is denom[g]'s initial value (0 for exp-family, 1 for
	// logistic).
	DenomNullValue() float64

	// ObservationCount is the effective count for row weighting (1 or y).
	ObservationCount(y float64) float64

	// OffsExpXBeta is the per-row contribution to denom.
	OffsExpXBeta(offs, xBeta, y float64) float64

	// GradientNumeratorContrib is the additive contribution to numer for a
	// coefficient, one term per row touched by the column.
	GradientNumeratorContrib(x, e, xBeta, y float64) float64

	// GradientNumerator2Contrib is the contribution to numer2; used only
	// when Traits().HasTwoNumeratorTerms.
	GradientNumerator2Contrib(x, e float64) float64

	// IncrementGradientAndHessian reduces one group's (numer, numer2,
	// denom) into a (Δgradient, Δhessian) pair. isIndicator selects the
	// indicator-column Hessian form; weight is the group's hNWeight (or
	// nEvents for Cox/SCCS/CLR, which is always applied).
	IncrementGradientAndHessian(numer, numer2, denom, weight float64, isIndicator, weighted bool) (dGradient, dHessian float64)

	// LogLikeNumeratorContrib is an additive log-likelihood term.
	LogLikeNumeratorContrib(y, xBeta float64) float64

	// LogLikeDenominatorContrib is a subtractive log-likelihood term.
	LogLikeDenominatorContrib(nGroup, denomGroup float64) float64

	// LogLikeFixedTermsContrib is the constant term (e.g. -log(y!) for
	// Poisson, y*log(offset) for SCCS); zero when
	// Traits().LikelihoodHasFixedTerms is false.
	LogLikeFixedTermsContrib(y, offs float64) float64

	// PredictEstimate is the scoring function for the prediction output.
	PredictEstimate(xBeta float64) float64
}

// Name identifiers accepted by New, matching config.Arguments.ModelName.
const (
	NameLogistic             = "lr"
	NameConditionalLogistic  = "clr"
	NameSelfControlledSeries = "sccs"
	NamePoisson              = "pr"
	NameLeastSquares         = "ls"
	NameCox                  = "cox"
)

// New constructs the kernel named by modelName. stratified and exactTies are
// only meaningful for "cox"; they are ignored by every other model.
func New(modelName string, stratified, exactTies bool) (Kernel, error) {
	switch modelName {
	case NameLogistic:
		return Logistic{}, nil
	case NameConditionalLogistic:
		return ConditionalLogistic{}, nil
	case NameSelfControlledSeries:
		return SelfControlledCaseSeries{}, nil
	case NamePoisson:
		return Poisson{}, nil
	case NameLeastSquares:
		return LeastSquares{}, nil
	case NameCox:
		return Cox{Stratified: stratified, ExactTies: exactTies}, nil
	default:
		return nil, unknownModelError(modelName)
	}
}

type unknownModelError string

func (e unknownModelError) Error() string { return "kernel: unknown model name " + string(e) }
