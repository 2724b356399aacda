package prior

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNoPriorNextPoint(t *testing.T) {
	p := NoPrior{}
	require.InDelta(t, -2.0, p.NextPoint(4, 2, 0), 1e-9)
	require.Equal(t, 0.0, p.NextPoint(4, 0, 0))
}

func TestNormalPriorNextPoint(t *testing.T) {
	p := NewNormalPrior(1.0)
	// delta = -(g + beta/var) / (h + 1/var)
	got := p.NextPoint(1, 1, 2)
	want := -(1 + 2.0) / (1 + 1.0)
	require.InDelta(t, want, got, 1e-9)
}

func TestLaplacePriorSoftThresholdClipsToZero(t *testing.T) {
	p := NewLaplacePrior(1.0) // lambda = sqrt(2)
	// beta currently 0, small gradient magnitude below lambda on both sides
	// should not move the coefficient off zero.
	got := p.NextPoint(0.1, 10, 0)
	require.Equal(t, 0.0, got)
}

func TestLaplacePriorDoesNotCrossZero(t *testing.T) {
	p := NewLaplacePrior(1.0)
	// beta starts positive; a large negative step should clip at -beta, not
	// overshoot past zero.
	got := p.NextPoint(100, 1, 0.5)
	require.Equal(t, -0.5, got)
}

func TestFullyExchangeableSharesPrior(t *testing.T) {
	single := NewNormalPrior(2.0)
	j := NewFullyExchangeable(single)
	require.Same(t, single, j.Get(0))
	require.Same(t, single, j.Get(7))
	j.SetVariance(5.0)
	require.Equal(t, 5.0, single.Variance())
}

func TestMixtureOverride(t *testing.T) {
	base := NewNormalPrior(1.0)
	m := NewMixture(base)
	flat := NoPrior{}
	m.ChangePrior(flat, 3)
	require.Equal(t, "none", m.Get(3).Name())
	require.Equal(t, "normal", m.Get(0).Name())
}

func TestHierarchicalConditionsOnParent(t *testing.T) {
	leaf := NewNormalPrior(1.0)
	class := NewNormalPrior(4.0)
	parentOf := map[int]int{0: 10, 1: 10}
	classBeta := 2.0
	h := NewHierarchical(leaf, class, parentOf, func(j int) float64 {
		if j == 10 {
			return classBeta
		}
		return 0
	})

	leafPrior := h.Get(0)
	// NextPoint shrinks toward the class value: at beta==classValue the
	// effective local residual is zero, leaving the Newton step
	// -(g+0)/(h+1/var).
	got := leafPrior.NextPoint(1, 2, classBeta)
	require.InDelta(t, -1.0/3.0, got, 1e-9)

	// A coefficient with no parent falls back to the class-level prior.
	require.Equal(t, class, h.Get(999))
}

func TestGradientAtMatchesPriorFamily(t *testing.T) {
	require.Equal(t, 0.0, NoPrior{}.GradientAt(3.0))

	normal := NewNormalPrior(2.0)
	require.InDelta(t, 1.5, normal.GradientAt(3.0), 1e-9)

	laplace := NewLaplacePrior(2.0) // lambda = 1
	require.InDelta(t, 1.0, laplace.GradientAt(0.5), 1e-9)
	require.InDelta(t, -1.0, laplace.GradientAt(-0.5), 1e-9)
	require.Equal(t, 0.0, laplace.GradientAt(0))
}

func TestLogDensityFinite(t *testing.T) {
	p := NewNormalPrior(2.0)
	d := p.LogDensity(1.0)
	require.False(t, math.IsNaN(d) || math.IsInf(d, 0))
}
