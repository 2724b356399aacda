package facade

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
)

// CSVWriter emits estimates/predictions as CSV, replacing the teacher's
// PrintCoefficients/PrintForecast's stdout dump with files a caller can
// diff or reload.
type CSVWriter struct{}

func (CSVWriter) WriteEstimates(path string, names []string, beta, lower, upper []float64) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := []string{"name", "beta"}
	hasCI := lower != nil && upper != nil
	if hasCI {
		header = append(header, "lower", "upper")
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for j, name := range names {
		row := []string{name, strconv.FormatFloat(beta[j], 'g', -1, 64)}
		if hasCI {
			row = append(row, strconv.FormatFloat(lower[j], 'g', -1, 64), strconv.FormatFloat(upper[j], 'g', -1, 64))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func (CSVWriter) WritePredictions(path string, predictions []float64) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"prediction"}); err != nil {
		return err
	}
	for _, p := range predictions {
		if err := w.Write([]string{strconv.FormatFloat(p, 'g', -1, 64)}); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
