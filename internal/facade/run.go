package facade

import (
	"fmt"

	"github.com/flintstat/ccdfit/internal/ccd"
	"github.com/flintstat/ccdfit/internal/config"
	"github.com/flintstat/ccdfit/internal/cyclopslog"
	"github.com/flintstat/ccdfit/internal/kernel"
	"github.com/flintstat/ccdfit/internal/prior"
	"github.com/flintstat/ccdfit/internal/profile"
	"github.com/flintstat/ccdfit/internal/resample"
)

// Report is everything a run produces: the fitted coefficients, the
// optimizer's terminal status, and whichever of CV/bootstrap/profile the
// configuration requested.
type Report struct {
	ColumnNames []string
	Beta        []float64
	LogLik      float64
	Status      ccd.StatusCode

	CV        *resample.GridResult
	CVAuto    *resample.AutoResult
	Bootstrap *resample.BootstrapResult
	Profile   []profile.Bracket
}

// Run loads data per a, builds the kernel/prior/optimizer, fits, and
// performs whichever of CV/bootstrap/profile a requests, in that order
// (spec.md §2: load → fit → (cv) → (bootstrap) → (profile) → report).
func Run(a config.Arguments) (*Report, error) {
	if err := a.Validate(); err != nil {
		return nil, err
	}

	ds, err := LoaderFor(a.FileFormat).Load(a.InFileName)
	if err != nil {
		return nil, err
	}

	log := cyclopslog.New(a.NoiseLevel)

	buildKernel := func() (kernel.Kernel, error) {
		stratified := ds.StratumID != nil
		return kernel.New(a.ModelName, stratified, true)
	}

	buildPrior := func() (prior.JointPrior, error) {
		kind := prior.KindNone
		switch {
		case a.UseNormalPrior:
			kind = prior.KindNormal
		case a.ComputeMLE:
			kind = prior.KindNone
		case a.Hyperprior != 0:
			kind = prior.KindLaplace
		}
		single, err := prior.NewSingle(kind, a.Hyperprior)
		if err != nil {
			return nil, err
		}
		if len(a.FlatPrior) == 0 {
			return prior.NewFullyExchangeable(single), nil
		}
		jp := prior.NewMixture(single)
		for _, name := range a.FlatPrior {
			j, ok := ds.ColumnIndex(name)
			if !ok {
				return nil, fmt.Errorf("data: flatPrior column %q not found", name)
			}
			jp.ChangePrior(prior.NoPrior{}, j)
		}
		return jp, nil
	}

	groupConfig := func() ccd.GroupConfig {
		return ccd.GroupConfig{StratumID: ds.StratumID, Time: ds.Time}
	}

	buildOptimizer := func() (*ccd.Optimizer, error) {
		k, err := buildKernel()
		if err != nil {
			return nil, err
		}
		jp, err := buildPrior()
		if err != nil {
			return nil, err
		}
		return ccd.New(ds.Matrix, k, jp, ds.Y, ds.Offsets, groupConfig(), log)
	}

	o, err := buildOptimizer()
	if err != nil {
		return nil, err
	}

	convKind := a.ConvergenceKind()
	status := o.Update(a.MaxIterations, convKind, a.Tolerance)

	names := ds.Matrix.ColNames()
	beta := make([]float64, len(names))
	for j := range beta {
		beta[j] = o.Beta(j)
	}

	report := &Report{
		ColumnNames: names,
		Beta:        beta,
		LogLik:      o.GetLogLikelihood(),
		Status:      status,
	}

	level := config.ResampleLevel(a.ModelName)
	pid := ds.StratumID
	if pid == nil {
		pid = identityIDs(len(ds.Y))
	}

	refit := a.DoCrossValidation

	if a.DoCrossValidation {
		fit := resample.FitSpec{MaxIter: a.MaxIterations, ConvergenceKind: convKind, Tolerance: a.Tolerance}
		if a.UseAutoSearchCV {
			auto, err := resample.AutoSearchCV(buildOptimizer, a.Lower, a.Upper, a.Fold, pid, level, a.Seed, fit, 1e-4, 40)
			if err != nil {
				return nil, err
			}
			report.CVAuto = auto
			applyOptimalVariance(o, auto.Best, convKind, a)
		} else {
			grid, err := resample.GridSearchCV(buildOptimizer, a.Lower, a.Upper, a.GridSize, a.Fold, pid, level, a.Seed, fit)
			if err != nil {
				return nil, err
			}
			report.CV = grid
			applyOptimalVariance(o, grid.Best, convKind, a)
		}
	}

	if a.FitMLEAtMode {
		// Validate requires a prior-first fit before fitMLEAtMode is
		// allowed: either the initial fit above (a nonzero hyperprior or
		// UseNormalPrior) or the CV refit just above explored the mode.
		if err := fitMLEAtMode(o, convKind, a); err != nil {
			return nil, err
		}
		refit = true
	}

	if refit {
		for j := range beta {
			beta[j] = o.Beta(j)
		}
		report.Beta = beta
		report.LogLik = o.GetLogLikelihood()
	}

	if a.DoBootstrap {
		fit := resample.FitSpec{MaxIter: a.MaxIterations, ConvergenceKind: convKind, Tolerance: a.Tolerance}
		boot, err := resample.Bootstrap(buildOptimizer, a.Replicates, pid, level, a.Seed, fit)
		if err != nil {
			return nil, err
		}
		report.Bootstrap = boot
	}

	if len(a.ProfileCI) > 0 {
		cols := make([]int, 0, len(a.ProfileCI))
		for _, name := range a.ProfileCI {
			j, ok := ds.ColumnIndex(name)
			if !ok {
				return nil, fmt.Errorf("data: profileCI column %q not found", name)
			}
			cols = append(cols, j)
		}
		brackets, err := profile.Run(o, cols, profile.Config{})
		if err != nil {
			return nil, err
		}
		report.Profile = brackets
	}

	return report, nil
}

// applyOptimalVariance implements resetForOptimal (spec.md §4.5): restore
// full weights, set the searched variance, refit.
func applyOptimalVariance(o *ccd.Optimizer, variance float64, convKind ccd.ConvergenceKind, a config.Arguments) {
	o.SetWeights(nil, false)
	o.SetHyperprior(variance)
	o.Update(a.MaxIterations, convKind, a.Tolerance)
}

// fitMLEAtMode implements the MLE-at-mode drop (spec.md §4.5,
// CcdInterface::runFitMLEAtMode): every coefficient still at exactly zero at
// the current mode is pinned there (setZeroBetaAsFixed), the prior switches
// to NoPrior, and the model refits the remaining coefficients unpenalized.
func fitMLEAtMode(o *ccd.Optimizer, convKind ccd.ConvergenceKind, a config.Arguments) error {
	for j := 0; j < o.BetaSize(); j++ {
		if o.Beta(j) == 0.0 {
			if err := o.SetFixedBeta(j, 0); err != nil {
				return err
			}
		}
	}
	if err := o.SetPriorType(prior.KindNone); err != nil {
		return err
	}
	o.Update(a.MaxIterations, convKind, a.Tolerance)
	return nil
}

func identityIDs(n int) []int {
	ids := make([]int, n)
	for i := range ids {
		ids[i] = i
	}
	return ids
}
