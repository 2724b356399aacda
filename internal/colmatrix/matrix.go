// Package colmatrix implements the design matrix: N rows by J columns of
// three physical kinds (dense, sparse, indicator), read-mostly after
// construction, with column lookup by name.
package colmatrix

import "fmt"

// Matrix is the read-only design matrix shared by every fitting session.
type Matrix struct {
	nrows   int
	columns []Column
	byName  map[string]int
}

// New builds a Matrix from columns already constructed with a consistent
// row count. An implicit intercept is NOT added here; callers that want one
// pass an all-ones DenseColumn explicitly (the façade does this only when
// the caller's configuration asked for it, per spec.md §3).
func New(nrows int, columns []Column) (*Matrix, error) {
	byName := make(map[string]int, len(columns))
	for j, c := range columns {
		if c.NRows() != nrows {
			return nil, fmt.Errorf("colmatrix: column %q has %d rows, want %d", c.Name(), c.NRows(), nrows)
		}
		if _, dup := byName[c.Name()]; dup {
			return nil, fmt.Errorf("colmatrix: duplicate column name %q", c.Name())
		}
		byName[c.Name()] = j
	}
	return &Matrix{nrows: nrows, columns: columns, byName: byName}, nil
}

// NRows returns N.
func (m *Matrix) NRows() int { return m.nrows }

// NCols returns J.
func (m *Matrix) NCols() int { return len(m.columns) }

// Column returns the j'th column. Panics if j is out of range, mirroring
// slice-index semantics used throughout the codebase for beta/column index
// access (beta indices and column indices coincide, spec.md §3).
func (m *Matrix) Column(j int) Column { return m.columns[j] }

// Format returns column j's physical format.
func (m *Matrix) Format(j int) Format { return m.columns[j].Format() }

// Lookup resolves a column name to its index.
func (m *Matrix) Lookup(name string) (int, bool) {
	j, ok := m.byName[name]
	return j, ok
}

// At returns X[k,j]. Convenience for tests and the non-hot-path callers;
// the CCD inner loop uses Column(j).All()/Rows() instead to avoid touching
// zero entries.
func (m *Matrix) At(k, j int) float64 { return m.columns[j].At(k) }

// ColNames returns the ordered column names.
func (m *Matrix) ColNames() []string {
	names := make([]string, len(m.columns))
	for j, c := range m.columns {
		names[j] = c.Name()
	}
	return names
}

// MaxAbs returns max|X[k,j]| across all rows in column j. The ccd optimizer
// caches it per column at construction; none of its convergence statistics
// reads it.
func (m *Matrix) MaxAbs(j int) float64 {
	col := m.columns[j]
	if _, ok := col.(*IndicatorColumn); ok {
		return 1
	}
	max := 0.0
	for _, v := range col.All() {
		if a := abs(v); a > max {
			max = a
		}
	}
	return max
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
