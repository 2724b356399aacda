package facade

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/flintstat/ccdfit/internal/config"
	"github.com/flintstat/ccdfit/internal/kernel"
)

func writeCSV(t *testing.T, rows string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.csv")
	if err := os.WriteFile(path, []byte(rows), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

const logisticCSV = `y,x1
0,0
1,1
0,0
1,1
0,0
1,1
0,0
1,1
`

func TestCSVLoaderParsesCovariatesAndOutcome(t *testing.T) {
	path := writeCSV(t, logisticCSV)
	ds, err := CSVLoader{AddIntercept: true}.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if ds.Matrix.NRows() != 8 {
		t.Fatalf("NRows = %d, want 8", ds.Matrix.NRows())
	}
	if ds.Matrix.NCols() != 2 {
		t.Fatalf("NCols = %d, want 2 (intercept + x1)", ds.Matrix.NCols())
	}
	j, ok := ds.ColumnIndex("x1")
	if !ok || ds.Matrix.At(1, j) != 1 {
		t.Fatalf("x1 column lookup/value wrong: ok=%v At(1,j)=%v", ok, ds.Matrix.At(1, j))
	}
	if len(ds.Y) != 8 || ds.Y[1] != 1 {
		t.Fatalf("Y = %v, want row 1 = 1", ds.Y)
	}
}

func TestCSVLoaderRejectsMissingOutcomeColumn(t *testing.T) {
	path := writeCSV(t, "x1\n0\n1\n")
	if _, err := (CSVLoader{}).Load(path); err == nil {
		t.Fatal("expected an error for a missing y column")
	}
}

func TestRunFitsLogisticAndWritesEstimates(t *testing.T) {
	path := writeCSV(t, logisticCSV)
	a := config.Defaults()
	a.ModelName = kernel.NameLogistic
	a.FileFormat = "generic"
	a.InFileName = path
	a.UseNormalPrior = true
	a.Hyperprior = 1.0
	a.MaxIterations = 200

	report, err := Run(a)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(report.Beta) != 2 {
		t.Fatalf("len(Beta) = %d, want 2", len(report.Beta))
	}
	if report.Beta[1] <= 0 {
		t.Fatalf("x1 coefficient = %v, want > 0 (x1=1 rows are all y=1)", report.Beta[1])
	}

	outPath := filepath.Join(t.TempDir(), "estimates.csv")
	if err := (CSVWriter{}).WriteEstimates(outPath, report.ColumnNames, report.Beta, nil, nil); err != nil {
		t.Fatalf("WriteEstimates: %v", err)
	}
	contents, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatal(err)
	}
	if len(contents) == 0 {
		t.Fatal("estimates file is empty")
	}
}

func TestRunAppliesMLEAtModeRefit(t *testing.T) {
	path := writeCSV(t, logisticCSV)
	a := config.Defaults()
	a.ModelName = kernel.NameLogistic
	a.FileFormat = "generic"
	a.InFileName = path
	a.UseNormalPrior = true
	a.Hyperprior = 1.0
	a.FitMLEAtMode = true
	a.MaxIterations = 200

	report, err := Run(a)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Beta[1] <= 0 {
		t.Fatalf("x1 coefficient = %v, want > 0 after the MLE-at-mode refit", report.Beta[1])
	}
}

func TestRunRejectsUnresolvableFlatPriorColumn(t *testing.T) {
	path := writeCSV(t, logisticCSV)
	a := config.Defaults()
	a.InFileName = path
	a.FlatPrior = []string{"does-not-exist"}

	if _, err := Run(a); err == nil {
		t.Fatal("expected an error for an unresolvable flatPrior column")
	}
}

func TestLoaderForStubsUnimplementedFormats(t *testing.T) {
	_, err := LoaderFor("sccs").Load("irrelevant.txt")
	if err == nil {
		t.Fatal("expected the sccs loader stub to report a configuration error")
	}
}
