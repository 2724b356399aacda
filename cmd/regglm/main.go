// Command regglm fits a regularized GLM from a flat set of CLI switches,
// replacing the teacher's hardcoded country-name switch (main.go) with a
// flag-parsed configuration record.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/flintstat/ccdfit/internal/config"
	"github.com/flintstat/ccdfit/internal/cyclopslog"
	"github.com/flintstat/ccdfit/internal/facade"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("regglm", flag.ContinueOnError)

	a := config.Defaults()
	var flatPrior, profileCI, outputFormat string

	fs.StringVar(&a.ModelName, "model", a.ModelName, "model name: lr|clr|sccs|pr|ls|cox")
	fs.StringVar(&a.FileFormat, "format", a.FileFormat, "input file format: generic|csv|sccs|clr|cc|cox-csv|new-cox|bbr")
	fs.Float64Var(&a.Hyperprior, "hyperprior", a.Hyperprior, "prior variance")
	fs.BoolVar(&a.UseNormalPrior, "normal-prior", a.UseNormalPrior, "use a Normal (ridge) prior instead of Laplace")
	fs.BoolVar(&a.ComputeMLE, "mle", a.ComputeMLE, "fit an unpenalized MLE (no prior) instead of the Laplace prior; ignored with -normal-prior")
	fs.BoolVar(&a.FitMLEAtMode, "mle-at-mode", a.FitMLEAtMode, "refit at the penalized mode with NoPrior on nonzero coefficients")
	fs.StringVar(&flatPrior, "flat-prior", "", "comma-separated column names excluded from penalization")
	fs.StringVar(&profileCI, "profile-ci", "", "comma-separated column names to compute profile CIs for")
	fs.Float64Var(&a.Tolerance, "tol", a.Tolerance, "convergence tolerance")
	fs.IntVar(&a.MaxIterations, "max-iter", a.MaxIterations, "maximum CCD passes")
	fs.StringVar(&a.ConvergenceType, "convergence", a.ConvergenceType, "convergence statistic: gradient|zhangoles|lange|mittal")
	fs.Uint64Var(&a.Seed, "seed", a.Seed, "RNG seed for CV/bootstrap")
	fs.BoolVar(&a.DoCrossValidation, "cv", a.DoCrossValidation, "run cross-validation over the prior variance")
	fs.BoolVar(&a.UseAutoSearchCV, "cv-auto", a.UseAutoSearchCV, "use golden-section auto-search instead of a grid")
	fs.Float64Var(&a.Lower, "cv-lower", a.Lower, "cross-validation variance lower bound")
	fs.Float64Var(&a.Upper, "cv-upper", a.Upper, "cross-validation variance upper bound")
	fs.IntVar(&a.Fold, "cv-fold", a.Fold, "cross-validation fold count")
	fs.IntVar(&a.GridSize, "cv-grid-size", a.GridSize, "cross-validation grid size")
	fs.BoolVar(&a.DoBootstrap, "bootstrap", a.DoBootstrap, "run the bootstrap driver")
	fs.IntVar(&a.Replicates, "bootstrap-replicates", a.Replicates, "bootstrap replicate count")
	fs.BoolVar(&a.ReportRawEstimates, "bootstrap-raw", a.ReportRawEstimates, "report raw per-replicate estimates")
	noiseLevel := fs.String("noise", "quiet", "logger verbosity: silent|quiet|noisy")
	fs.StringVar(&a.OutFileName, "out", "", "estimates output file")
	fs.StringVar(&outputFormat, "output-format", "estimates", "comma-separated subset of estimates,prediction,diagnostics")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "usage: regglm [flags] <inFile> [outFile]")
		return 2
	}
	a.InFileName = fs.Arg(0)
	if fs.NArg() > 1 {
		a.OutFileName = fs.Arg(1)
	}

	if flatPrior != "" {
		a.FlatPrior = strings.Split(flatPrior, ",")
	}
	if profileCI != "" {
		a.ProfileCI = strings.Split(profileCI, ",")
	}
	a.OutputFormat = strings.Split(outputFormat, ",")

	switch *noiseLevel {
	case "silent":
		a.NoiseLevel = cyclopslog.Silent
	case "noisy":
		a.NoiseLevel = cyclopslog.Noisy
	default:
		a.NoiseLevel = cyclopslog.Quiet
	}

	if err := a.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	report, err := facade.Run(a)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	fmt.Fprintf(os.Stderr, "status=%v logLik=%v\n", report.Status, report.LogLik)

	if a.OutFileName != "" {
		if err := (facade.CSVWriter{}).WriteEstimates(a.OutFileName, report.ColumnNames, report.Beta, nil, nil); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
	} else {
		for j, name := range report.ColumnNames {
			fmt.Printf("%s\t%v\n", name, report.Beta[j])
		}
	}

	return 0
}
