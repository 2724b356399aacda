package facade

import "fmt"

// stubLoader reports a configuration error for file formats this module
// only references by contract (spec.md §1): the engine core owns fitting,
// not every input parser. sccs/clr/cc/cox-csv/new-cox/bbr need a format
// spec this package was never given; generic/csv are implemented directly.
type stubLoader struct{ format string }

func (s stubLoader) Load(string) (*Dataset, error) {
	return nil, fmt.Errorf("configuration: file format %q has no in-module loader (out of scope; see spec §1)", s.format)
}

// LoaderFor resolves a configured file format to its Loader.
func LoaderFor(format string) Loader {
	switch format {
	case "generic", "csv":
		return CSVLoader{}
	case "sccs", "clr", "cc", "cox-csv", "new-cox", "bbr":
		return stubLoader{format: format}
	default:
		return stubLoader{format: format}
	}
}
