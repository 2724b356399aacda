// Package config holds the flat configuration record the façade builds a
// run from, mirroring the original engine's CLI switches one field at a
// time rather than threading loose parameters through every call.
package config

import (
	"fmt"

	"github.com/flintstat/ccdfit/internal/ccd"
	"github.com/flintstat/ccdfit/internal/cyclopslog"
	"github.com/flintstat/ccdfit/internal/kernel"
	"github.com/flintstat/ccdfit/internal/resample"
)

// Arguments is the configuration record passed to the façade. Every field
// has a documented default, applied by Defaults.
type Arguments struct {
	// Model selection.
	ModelName  string // one of kernel.Name*
	FileFormat string // sccs | clr | csv | cc | cox-csv | new-cox | bbr | generic

	// Prior selection.
	Hyperprior     float64
	UseNormalPrior bool
	ComputeMLE     bool
	FitMLEAtMode   bool
	FlatPrior      []string // column names excluded from penalization
	ProfileCI      []string // column names to compute profile CIs for

	// Convergence.
	Tolerance       float64
	MaxIterations   int
	ConvergenceType string // gradient | zhangoles | lange | mittal

	// CV control.
	Seed              uint64
	DoCrossValidation bool
	UseAutoSearchCV   bool
	Lower, Upper      float64
	Fold              int
	GridSize          int
	ComputeFold       int
	CVFileName        string

	// Bootstrap control.
	DoBootstrap        bool
	Replicates         int
	ReportRawEstimates bool

	// Hierarchical prior.
	UseHierarchy           bool
	HierarchyFileName      string
	ClassHierarchyVariance float64

	// Logging.
	NoiseLevel cyclopslog.Level

	// Output.
	InFileName       string
	OutFileName      string
	OutDirectoryName string
	OutputFormat     []string // subset of {estimates, prediction, diagnostics}
}

// Defaults returns the documented defaults: a Laplace prior with variance 1
// (Hyperprior 1.0, no Normal prior, no MLE), 1000 iterations at
// 1e-6 Lange-criterion tolerance, no CV/bootstrap/hierarchy, quiet logging,
// estimates-only output.
func Defaults() Arguments {
	return Arguments{
		ModelName:       kernel.NameLogistic,
		FileFormat:      "generic",
		Hyperprior:      1.0,
		Tolerance:       1e-6,
		MaxIterations:   1000,
		ConvergenceType: "lange",
		Lower:           0.01,
		Upper:           20.0,
		Fold:            10,
		GridSize:        10,
		Replicates:      100,
		NoiseLevel:      cyclopslog.Quiet,
		OutputFormat:    []string{"estimates"},
	}
}

// Error is a classified configuration/data/numeric/IO error, matching the
// error kinds the façade must report before fitting begins.
type Error struct {
	Kind string // "configuration" | "data" | "numeric" | "io"
	Msg  string
}

func (e *Error) Error() string { return fmt.Sprintf("%s: %s", e.Kind, e.Msg) }

func configErr(format string, args ...any) error {
	return &Error{Kind: "configuration", Msg: fmt.Sprintf(format, args...)}
}

// Validate checks the configuration-class errors that must be caught
// before a run begins: unknown model/format/convergence name, invalid
// numeric ranges, and MLE-at-mode without a prior-first fit.
func (a Arguments) Validate() error {
	switch a.ModelName {
	case kernel.NameLogistic, kernel.NameConditionalLogistic, kernel.NameSelfControlledSeries,
		kernel.NamePoisson, kernel.NameLeastSquares, kernel.NameCox:
	default:
		return configErr("unknown model %q", a.ModelName)
	}

	switch a.FileFormat {
	case "sccs", "clr", "csv", "cc", "cox-csv", "new-cox", "bbr", "generic":
	default:
		return configErr("unknown file format %q", a.FileFormat)
	}

	if _, err := convergenceKind(a.ConvergenceType); err != nil {
		return err
	}

	for _, f := range a.OutputFormat {
		switch f {
		case "estimates", "prediction", "diagnostics":
		default:
			return configErr("unknown output format %q", f)
		}
	}

	if a.DoCrossValidation {
		if a.Lower > a.Upper {
			return configErr("cross-validation range invalid: lower %v > upper %v", a.Lower, a.Upper)
		}
		if a.Fold < 2 {
			return configErr("cross-validation fold count must be >= 2, got %d", a.Fold)
		}
		if !a.UseAutoSearchCV && a.GridSize < 1 {
			return configErr("cross-validation grid size must be >= 1, got %d", a.GridSize)
		}
	}

	if a.DoBootstrap && a.Replicates < 1 {
		return configErr("bootstrap replicate count must be >= 1, got %d", a.Replicates)
	}

	if a.ComputeMLE && a.FitMLEAtMode {
		return configErr("unable to compute MLE at posterior mode, if mode is not first explored")
	}

	if a.FitMLEAtMode && !a.UseNormalPrior && a.Hyperprior == 0 && !a.DoCrossValidation {
		return configErr("fitMLEAtMode requires a prior-first fit (set hyperprior or enable cross-validation)")
	}

	return nil
}

func convergenceKind(name string) (ccd.ConvergenceKind, error) {
	switch name {
	case "gradient", "":
		return ccd.ConvergenceGradient, nil
	case "zhangoles":
		return ccd.ConvergenceZhangOles, nil
	case "lange":
		return ccd.ConvergenceLange, nil
	case "mittal":
		return ccd.ConvergenceMittal, nil
	default:
		return 0, configErr("unknown convergence type %q", name)
	}
}

// ConvergenceKind resolves ConvergenceType to its ccd.ConvergenceKind,
// assuming Validate has already accepted it.
func (a Arguments) ConvergenceKind() ccd.ConvergenceKind {
	k, _ := convergenceKind(a.ConvergenceType)
	return k
}

// ResampleLevel resolves whether CV/bootstrap resampling is entry- or
// subject-level from the model name rather than a dedicated Arguments
// field, since it is implied by the model (conditional models and Cox
// always resample at subject level).
func ResampleLevel(modelName string) resample.Level {
	switch modelName {
	case kernel.NameConditionalLogistic, kernel.NameSelfControlledSeries, kernel.NameCox:
		return resample.LevelSubject
	default:
		return resample.LevelEntry
	}
}
