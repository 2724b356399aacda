package profile

import (
	"math"
	"testing"

	"github.com/flintstat/ccdfit/internal/ccd"
	"github.com/flintstat/ccdfit/internal/colmatrix"
	"github.com/flintstat/ccdfit/internal/kernel"
	"github.com/flintstat/ccdfit/internal/prior"
)

func almostEqual(a, b, tol float64) bool { return math.Abs(a-b) <= tol }

func fittedLogisticOptimizer(t *testing.T) (*ccd.Optimizer, int) {
	t.Helper()
	n := 20
	ones := make([]float64, n)
	x1 := make([]float64, n)
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		ones[i] = 1
		if i%2 == 0 {
			x1[i] = 0
			y[i] = 0
		} else {
			x1[i] = 1
			y[i] = 1
		}
	}
	intercept := colmatrix.NewDenseColumn("intercept", ones)
	slope := colmatrix.NewDenseColumn("x1", x1)
	mat, err := colmatrix.New(n, []colmatrix.Column{intercept, slope})
	if err != nil {
		t.Fatalf("colmatrix.New: %v", err)
	}
	k, err := kernel.New(kernel.NameLogistic, false, false)
	if err != nil {
		t.Fatal(err)
	}
	jp := prior.NewFullyExchangeable(prior.NewNormalPrior(2.0))
	o, err := ccd.New(mat, k, jp, y, nil, ccd.GroupConfig{}, nil)
	if err != nil {
		t.Fatalf("ccd.New: %v", err)
	}
	if status := o.Update(200, ccd.ConvergenceLange, 1e-12); status != ccd.StatusSuccess {
		t.Fatalf("Update status = %v, want SUCCESS", status)
	}
	return o, 1
}

func TestRunBracketsSlopeAroundMode(t *testing.T) {
	o, slopeCol := fittedLogisticOptimizer(t)
	mode := o.Beta(slopeCol)

	brackets, err := Run(o, []int{slopeCol}, Config{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(brackets) != 1 {
		t.Fatalf("len(brackets) = %d, want 1", len(brackets))
	}
	b := brackets[0]
	if b.Low >= mode || b.High <= mode {
		t.Fatalf("bracket [%v, %v] does not straddle the mode %v", b.Low, b.High, mode)
	}
}

func TestRunRestoresBetaAfterReturn(t *testing.T) {
	o, slopeCol := fittedLogisticOptimizer(t)
	mode := o.Beta(slopeCol)

	if _, err := Run(o, []int{slopeCol}, Config{}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !almostEqual(o.Beta(slopeCol), mode, 1e-12) {
		t.Fatalf("beta after Run = %v, want restored mode %v", o.Beta(slopeCol), mode)
	}
}

func TestZeroinFindsKnownRoot(t *testing.T) {
	f := func(x float64) float64 { return x*x - 2 }
	root, err := zeroin(f, 0, 2, 1e-10, 100)
	if err != nil {
		t.Fatalf("zeroin: %v", err)
	}
	if !almostEqual(root, math.Sqrt2, 1e-8) {
		t.Fatalf("root = %v, want sqrt(2)", root)
	}
}

func TestZeroinRejectsBracketWithoutSignChange(t *testing.T) {
	f := func(x float64) float64 { return x*x + 1 }
	if _, err := zeroin(f, -1, 1, 1e-6, 50); err == nil {
		t.Fatal("expected an error for a bracket with no sign change")
	}
}

func TestChiSquareThresholdMatchesClassicConstant(t *testing.T) {
	if !almostEqual(chiSquareThreshold, 1.9207, 1e-3) {
		t.Fatalf("chiSquareThreshold = %v, want ~1.9207", chiSquareThreshold)
	}
}
