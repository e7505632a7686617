package filter

import (
	"math"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"github.com/daktre/theta-data-explorer/internal/dataset"
)

// Apply returns the subset of rows satisfying every active filter in fs.
// Pure with respect to ds: row order and column order are preserved, and
// a set of defaults returns the dataframe untouched. Filters referencing
// columns the dataset no longer has are skipped.
func Apply(ds *dataset.Dataset, fs Set) dataframe.DataFrame {
	df := ds.DF
	n := df.Nrow()

	var preds []func(i int) bool
	for name, f := range fs.Columns {
		c, ok := ds.Column(name)
		if !ok || IsDefault(f, c) {
			continue
		}
		preds = append(preds, columnPred(df.Col(name), f))
	}
	if q := strings.TrimSpace(fs.Search); q != "" {
		if p := searchPred(ds, q); p != nil {
			preds = append(preds, p)
		}
	}
	if len(preds) == 0 || n == 0 {
		return df
	}

	mask := make([]bool, n)
	for i := 0; i < n; i++ {
		keep := true
		for _, p := range preds {
			if !p(i) {
				keep = false
				break
			}
		}
		mask[i] = keep
	}
	return df.Subset(mask)
}

// columnPred builds the row predicate for one active filter. Missing
// values never satisfy an active filter.
func columnPred(s series.Series, f ColumnFilter) func(i int) bool {
	switch f.Kind {
	case Range:
		return func(i int) bool {
			el := s.Elem(i)
			if el.IsNA() {
				return false
			}
			v := el.Float()
			if math.IsNaN(v) {
				return false
			}
			return v >= f.Min && v <= f.Max
		}

	case Values:
		selected := make(map[string]struct{}, len(f.Values))
		for _, v := range f.Values {
			selected[v] = struct{}{}
		}
		return func(i int) bool {
			el := s.Elem(i)
			if el.IsNA() {
				return false
			}
			v := el.String()
			if v == "" {
				return false
			}
			_, ok := selected[v]
			return ok
		}

	case Contains:
		pat := strings.ToLower(f.Pattern)
		return func(i int) bool {
			el := s.Elem(i)
			if el.IsNA() {
				return false
			}
			v := el.String()
			if v == "" {
				return false
			}
			return strings.Contains(strings.ToLower(v), pat)
		}

	case Bool:
		want := f.Mode == BoolTrue
		return func(i int) bool {
			el := s.Elem(i)
			if el.IsNA() {
				return false
			}
			b, err := el.Bool()
			return err == nil && b == want
		}
	}

	return func(int) bool { return true }
}

// searchPred matches the global search text against every string-backed
// column; a row survives if any of them contains it. Returns nil when the
// dataset has no string columns.
func searchPred(ds *dataset.Dataset, q string) func(i int) bool {
	var cols []series.Series
	for _, c := range ds.Schema {
		switch c.Kind {
		case dataset.Categorical, dataset.Text, dataset.Time:
			cols = append(cols, ds.DF.Col(c.Name))
		}
	}
	if len(cols) == 0 {
		return nil
	}
	q = strings.ToLower(q)
	return func(i int) bool {
		for _, s := range cols {
			el := s.Elem(i)
			if el.IsNA() {
				continue
			}
			if strings.Contains(strings.ToLower(el.String()), q) {
				return true
			}
		}
		return false
	}
}
