package kernel

// LeastSquares is plain (possibly weighted) linear regression. It has no
// denominator and precomputes the Hessian (2·XjX) rather than accumulating
// it per pass; its gradient is the full score (no XjY precompute needed).
type LeastSquares struct{}

func (LeastSquares) Name() string { return NameLeastSquares }

func (LeastSquares) Traits() Traits {
	return Traits{
		Grouping:          Independent,
		PrecomputeHessian: true,
	}
}

func (LeastSquares) DenomNullValue() float64         { return 0 }
func (LeastSquares) ObservationCount(float64) float64 { return 1 }
func (LeastSquares) OffsExpXBeta(_, _, _ float64) float64 { return 0 }

func (LeastSquares) GradientNumeratorContrib(x, _, xBeta, y float64) float64 {
	return 2 * (xBeta - y) * x
}
func (LeastSquares) GradientNumerator2Contrib(float64, float64) float64 { return 0 }

// IncrementGradientAndHessian only ever sets the gradient; the Hessian is
// the precomputed 2·XjX[j] constant, applied by the optimizer directly.
func (LeastSquares) IncrementGradientAndHessian(numer, _, _, weight float64, _, weighted bool) (float64, float64) {
	if weighted {
		return weight * numer, 0
	}
	return numer, 0
}

func (LeastSquares) LogLikeNumeratorContrib(y, xBeta float64) float64 {
	residual := y - xBeta
	return -(residual * residual)
}
func (LeastSquares) LogLikeDenominatorContrib(float64, float64) float64 { return 0 }
func (LeastSquares) LogLikeFixedTermsContrib(float64, float64) float64 { return 0 }
func (LeastSquares) PredictEstimate(xBeta float64) float64             { return xBeta }
