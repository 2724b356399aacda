// Package facade assembles the matrix, kernel, prior, optimizer, CV,
// bootstrap, and profile-likelihood layers behind the flat configuration
// record and orchestrates a single run: load, fit, optionally
// cross-validate, optionally bootstrap, optionally profile, report.
package facade

import "github.com/flintstat/ccdfit/internal/colmatrix"

// Dataset is everything a loader produces and an optimizer consumes: the
// design matrix plus the parallel outcome/stratum/offset/weight/time
// vectors a model may need.
type Dataset struct {
	Matrix    *colmatrix.Matrix
	Y         []float64
	StratumID []int
	Offsets   []float64
	Weights   []float64
	Time      []float64
}

// ColumnIndex resolves a column name to its design-matrix index, or
// reports "not found" — the lookup both FlatPrior and ProfileCI resolve
// through.
func (d *Dataset) ColumnIndex(name string) (int, bool) {
	return d.Matrix.Lookup(name)
}
