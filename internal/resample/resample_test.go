package resample

import (
	"math"
	"testing"

	"github.com/flintstat/ccdfit/internal/ccd"
	"github.com/flintstat/ccdfit/internal/colmatrix"
	"github.com/flintstat/ccdfit/internal/kernel"
	"github.com/flintstat/ccdfit/internal/prior"
)

func almostEqual(a, b, tol float64) bool { return math.Abs(a-b) <= tol }

// linearSeparable builds a tiny logistic fixture: an intercept column and a
// slope column whose sign matches y, repeated to give every fold a mix of
// both classes.
func linearSeparable() ([]float64, []float64, []int) {
	x := []float64{0, 1, 0, 1, 0, 1, 0, 1, 0, 1, 0, 1}
	y := []float64{0, 1, 0, 1, 0, 1, 0, 1, 0, 1, 0, 1}
	pid := make([]int, len(x))
	for i := range pid {
		pid[i] = i
	}
	return x, y, pid
}

func newLogisticFactory(x, y []float64) Factory {
	return func() (*ccd.Optimizer, error) {
		n := len(x)
		ones := make([]float64, n)
		for i := range ones {
			ones[i] = 1
		}
		intercept := colmatrix.NewDenseColumn("intercept", ones)
		slope := colmatrix.NewDenseColumn("x1", append([]float64(nil), x...))
		mat, err := colmatrix.New(n, []colmatrix.Column{intercept, slope})
		if err != nil {
			return nil, err
		}
		k, err := kernel.New(kernel.NameLogistic, false, false)
		if err != nil {
			return nil, err
		}
		jp := prior.NewFullyExchangeable(prior.NewNormalPrior(1.0))
		return ccd.New(mat, k, jp, y, nil, ccd.GroupConfig{}, nil)
	}
}

func TestAssignFoldsBalancedEntryLevel(t *testing.T) {
	pid := make([]int, 20)
	for i := range pid {
		pid[i] = i
	}
	foldOf := assignFolds(pid, LevelEntry, 4, newRand(1, 0))

	counts := make([]int, 4)
	for _, f := range foldOf {
		if f < 0 || f >= 4 {
			t.Fatalf("fold index %d out of range", f)
		}
		counts[f]++
	}
	for _, c := range counts {
		if c != 5 {
			t.Fatalf("fold counts = %v, want all 5", counts)
		}
	}
}

func TestAssignFoldsKeepsSubjectsTogether(t *testing.T) {
	pid := []int{7, 7, 7, 9, 9, 3, 3, 3, 3}
	foldOf := assignFolds(pid, LevelSubject, 3, newRand(2, 0))

	byID := make(map[int]int)
	for row, id := range pid {
		f := foldOf[row]
		if prev, ok := byID[id]; ok {
			if prev != f {
				t.Fatalf("subject %d split across folds %d and %d", id, prev, f)
			}
		} else {
			byID[id] = f
		}
	}
}

func TestFoldWeightsComplementary(t *testing.T) {
	foldOf := []int{0, 1, 0, 2, 1}
	train, test := foldWeights(foldOf, 1)
	for row, f := range foldOf {
		if f == 1 {
			if train[row] != 0 || test[row] != 1 {
				t.Fatalf("row %d: train=%v test=%v, want held out", row, train[row], test[row])
			}
		} else {
			if train[row] != 1 || test[row] != 0 {
				t.Fatalf("row %d: train=%v test=%v, want kept in", row, train[row], test[row])
			}
		}
	}
}

func TestBootstrapWeightsEntryLevelSumsToN(t *testing.T) {
	n := 30
	pid := make([]int, n)
	for i := range pid {
		pid[i] = i
	}
	w := bootstrapWeights(n, pid, LevelEntry, newRand(3, 0))
	var sum float64
	for _, wi := range w {
		sum += wi
	}
	if sum != float64(n) {
		t.Fatalf("sum of bootstrap weights = %v, want %d", sum, n)
	}
}

func TestBootstrapWeightsSubjectLevelKeepsGroupsWhole(t *testing.T) {
	pid := []int{0, 0, 1, 1, 1, 2}
	w := bootstrapWeights(len(pid), pid, LevelSubject, newRand(4, 0))
	for _, group := range [][]int{{0, 1}, {2, 3, 4}} {
		first := w[group[0]]
		for _, row := range group[1:] {
			if w[row] != first {
				t.Fatalf("subject split: weights %v within one subject's rows", group)
			}
		}
	}
}

func TestGridSearchCVPrefersModerateVarianceOverTiny(t *testing.T) {
	x, y, pid := linearSeparable()
	factory := newLogisticFactory(x, y)
	fit := FitSpec{MaxIter: 100, ConvergenceKind: ccd.ConvergenceLange, Tolerance: 1e-10}

	result, err := GridSearchCV(factory, 0.001, 10, 6, 4, pid, LevelEntry, 42, fit)
	if err != nil {
		t.Fatalf("GridSearchCV: %v", err)
	}
	if len(result.Variances) != 6 {
		t.Fatalf("grid size = %d, want 6", len(result.Variances))
	}
	if result.BestIndex == 0 {
		t.Fatalf("best index picked the smallest (most-shrinking) variance %v; expected some larger variance to fit the separable signal better", result.Best)
	}
}

func TestAutoSearchCVStaysInBracket(t *testing.T) {
	x, y, pid := linearSeparable()
	factory := newLogisticFactory(x, y)
	fit := FitSpec{MaxIter: 100, ConvergenceKind: ccd.ConvergenceLange, Tolerance: 1e-10}

	result, err := AutoSearchCV(factory, 0.01, 5, 4, pid, LevelEntry, 7, fit, 1e-3, 20)
	if err != nil {
		t.Fatalf("AutoSearchCV: %v", err)
	}
	if result.Best < 0.01 || result.Best > 5 {
		t.Fatalf("best = %v, out of bracket [0.01, 5]", result.Best)
	}
	if result.Evaluations < 2 {
		t.Fatalf("evaluations = %d, want >= 2", result.Evaluations)
	}
}

func TestBootstrapProducesRReplicatesWithSaneCI(t *testing.T) {
	x, y, pid := linearSeparable()
	factory := newLogisticFactory(x, y)
	fit := FitSpec{MaxIter: 100, ConvergenceKind: ccd.ConvergenceLange, Tolerance: 1e-10}

	result, err := Bootstrap(factory, 25, pid, LevelEntry, 11, fit)
	if err != nil {
		t.Fatalf("Bootstrap: %v", err)
	}
	if len(result.Replicates) != 25 {
		t.Fatalf("replicate count = %d, want 25", len(result.Replicates))
	}
	for j, lo := range result.CILower {
		hi := result.CIUpper[j]
		if lo > hi {
			t.Fatalf("coefficient %d: CI lower %v > upper %v", j, lo, hi)
		}
		if result.Mean[j] < lo-1e-9 || result.Mean[j] > hi+1e-9 {
			t.Fatalf("coefficient %d: mean %v outside [%v, %v]", j, result.Mean[j], lo, hi)
		}
	}
}

func TestQuantileLinearInterpolation(t *testing.T) {
	sorted := []float64{1, 2, 3, 4, 5}
	if !almostEqual(quantile(sorted, 0), 1, 1e-12) {
		t.Fatalf("q0 = %v, want 1", quantile(sorted, 0))
	}
	if !almostEqual(quantile(sorted, 1), 5, 1e-12) {
		t.Fatalf("q1 = %v, want 5", quantile(sorted, 1))
	}
	if !almostEqual(quantile(sorted, 0.5), 3, 1e-12) {
		t.Fatalf("q0.5 = %v, want 3", quantile(sorted, 0.5))
	}
}
