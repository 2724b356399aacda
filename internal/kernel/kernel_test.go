package kernel

import (
	"math"
	"testing"
)

func almostEqual(a, b, tol float64) bool { return math.Abs(a-b) <= tol }

func TestLogisticPredictEstimate(t *testing.T) {
	k := Logistic{}
	got := k.PredictEstimate(0)
	if !almostEqual(got, 0.5, 1e-9) {
		t.Fatalf("PredictEstimate(0) = %v, want 0.5", got)
	}
}

func TestLogisticIncrementGradientAndHessianIndicator(t *testing.T) {
	k := Logistic{}
	// numer = x*e = 1*2 = 2, denom = 1+e = 3 -> g = 2/3
	g, h := k.IncrementGradientAndHessian(2, 0, 3, 1, true, false)
	if !almostEqual(g, 2.0/3.0, 1e-9) {
		t.Fatalf("gradient = %v, want 2/3", g)
	}
	want := (2.0 / 3.0) * (1 - 2.0/3.0)
	if !almostEqual(h, want, 1e-9) {
		t.Fatalf("hessian = %v, want %v", h, want)
	}
}

func TestPoissonFixedTerms(t *testing.T) {
	k := Poisson{}
	// -log(2!) = -log(2)
	got := k.LogLikeFixedTermsContrib(2, 0)
	want := -math.Log(2)
	if !almostEqual(got, want, 1e-9) {
		t.Fatalf("fixed terms = %v, want %v", got, want)
	}
	if got0 := k.LogLikeFixedTermsContrib(0, 0); got0 != 0 {
		t.Fatalf("fixed terms for y=0 = %v, want 0", got0)
	}
}

func TestSCCSFixedTerms(t *testing.T) {
	k := SelfControlledCaseSeries{}
	got := k.LogLikeFixedTermsContrib(3, 2)
	want := 3 * math.Log(2)
	if !almostEqual(got, want, 1e-9) {
		t.Fatalf("fixed terms = %v, want %v", got, want)
	}
}

func TestLeastSquaresGradientNumerator(t *testing.T) {
	k := LeastSquares{}
	got := k.GradientNumeratorContrib(2, 0, 3, 1)
	want := 2 * (3 - 1) * 2.0
	if !almostEqual(got, want, 1e-9) {
		t.Fatalf("gradient numerator = %v, want %v", got, want)
	}
}

func TestNewUnknownModel(t *testing.T) {
	if _, err := New("bogus", false, false); err == nil {
		t.Fatal("expected error for unknown model name")
	}
}

func TestCoxTraitsExactTies(t *testing.T) {
	k := Cox{ExactTies: true}
	tr := k.Traits()
	if tr.Grouping != OrderedWithTies {
		t.Fatalf("Grouping = %v, want OrderedWithTies", tr.Grouping)
	}
	if tr.ResetableAccumulators {
		t.Fatal("expected no resetable accumulators with exact ties but no stratification")
	}
}
