package facade

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/flintstat/ccdfit/internal/colmatrix"
)

// Loader reads a Dataset from a file path. File-format-specific loaders
// (sccs, clr, cc, cox-csv, new-cox, bbr) are out of scope (spec.md §1's
// "referenced only by contract"); this package implements the two formats
// that need no external format spec to express: a plain generic/CSV table.
type Loader interface {
	Load(path string) (*Dataset, error)
}

// Writer emits a fitted run's estimates/predictions/diagnostics.
type Writer interface {
	WriteEstimates(path string, names []string, beta, lower, upper []float64) error
	WritePredictions(path string, predictions []float64) error
}

// reservedColumn names recognized as structural (not covariates) in the
// generic CSV loader.
const (
	colOutcome = "y"
	colStratum = "stratum"
	colOffset  = "offset"
	colWeight  = "weight"
	colTime    = "time"
)

// CSVLoader reads a header-first CSV table: one required "y" column, four
// optional structural columns ("stratum", "offset", "weight", "time"), and
// every remaining column becomes a dense covariate named by its header.
// Adapted from the teacher's LoadCSVToTimeSeries, generalized from a fixed
// (T x K) time-series matrix to an arbitrary named-column design matrix.
type CSVLoader struct {
	// AddIntercept prepends an all-ones "intercept" column when true.
	AddIntercept bool
}

func (l CSVLoader) Load(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if len(header) == 0 {
		return nil, fmt.Errorf("empty header in %s", path)
	}

	yCol := -1
	stratumCol, offsetCol, weightCol, timeCol := -1, -1, -1, -1
	var covariateCols []int
	var covariateNames []string
	for j, name := range header {
		switch name {
		case colOutcome:
			yCol = j
		case colStratum:
			stratumCol = j
		case colOffset:
			offsetCol = j
		case colWeight:
			weightCol = j
		case colTime:
			timeCol = j
		default:
			covariateCols = append(covariateCols, j)
			covariateNames = append(covariateNames, name)
		}
	}
	if yCol < 0 {
		return nil, fmt.Errorf("%s: missing required %q column", path, colOutcome)
	}

	var y []float64
	var stratumID []int
	var offsets, weights, timeVals []float64
	covariateData := make([][]float64, len(covariateCols))

	rowNum := 1
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", rowNum+1, err)
		}
		if len(record) != len(header) {
			return nil, fmt.Errorf("row %d: expected %d columns, got %d", rowNum+1, len(header), len(record))
		}

		v, err := strconv.ParseFloat(record[yCol], 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: parse %q column %q: %w", rowNum+1, colOutcome, record[yCol], err)
		}
		y = append(y, v)

		if stratumCol >= 0 {
			id, err := strconv.Atoi(record[stratumCol])
			if err != nil {
				return nil, fmt.Errorf("row %d: parse %q column %q: %w", rowNum+1, colStratum, record[stratumCol], err)
			}
			stratumID = append(stratumID, id)
		}
		if offsetCol >= 0 {
			v, err := strconv.ParseFloat(record[offsetCol], 64)
			if err != nil {
				return nil, fmt.Errorf("row %d: parse %q column %q: %w", rowNum+1, colOffset, record[offsetCol], err)
			}
			offsets = append(offsets, v)
		}
		if weightCol >= 0 {
			v, err := strconv.ParseFloat(record[weightCol], 64)
			if err != nil {
				return nil, fmt.Errorf("row %d: parse %q column %q: %w", rowNum+1, colWeight, record[weightCol], err)
			}
			weights = append(weights, v)
		}
		if timeCol >= 0 {
			v, err := strconv.ParseFloat(record[timeCol], 64)
			if err != nil {
				return nil, fmt.Errorf("row %d: parse %q column %q: %w", rowNum+1, colTime, record[timeCol], err)
			}
			timeVals = append(timeVals, v)
		}
		for i, col := range covariateCols {
			v, err := strconv.ParseFloat(record[col], 64)
			if err != nil {
				return nil, fmt.Errorf("row %d: parse column %q %q: %w", rowNum+1, header[col], record[col], err)
			}
			covariateData[i] = append(covariateData[i], v)
		}

		rowNum++
	}
	if rowNum == 1 {
		return nil, fmt.Errorf("no data rows in %s", path)
	}
	n := rowNum - 1

	var columns []colmatrix.Column
	if l.AddIntercept {
		ones := make([]float64, n)
		for i := range ones {
			ones[i] = 1
		}
		columns = append(columns, colmatrix.NewDenseColumn("intercept", ones))
	}
	for i, name := range covariateNames {
		columns = append(columns, colmatrix.NewDenseColumn(name, covariateData[i]))
	}

	mat, err := colmatrix.New(n, columns)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return &Dataset{
		Matrix:    mat,
		Y:         y,
		StratumID: stratumID,
		Offsets:   offsets,
		Weights:   weights,
		Time:      timeVals,
	}, nil
}
