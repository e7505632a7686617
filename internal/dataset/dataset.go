// Package dataset loads rectangular CSV/TSV data into a dataframe and
// derives the schema the filter layer drives its widgets from. Parsing and
// type detection are delegated to gota; this package only classifies the
// detected columns into the semantic kinds the explorer cares about.
package dataset

import (
	"math"
	"sort"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// CategoricalCutoff is the distinct-value threshold separating
// multi-select string columns from free-text ones. Same constant the
// original explorer used.
const CategoricalCutoff = 40

// Kind is the semantic column type inferred at load time.
type Kind string

const (
	Numeric     Kind = "numeric"
	Bool        Kind = "bool"
	Categorical Kind = "categorical"
	Text        Kind = "text"
	Time        Kind = "time"
)

// Column describes one column of the loaded table.
type Column struct {
	Name    string
	Kind    Kind
	Dtype   string // gota series type, for the column summary view
	NUnique int    // distinct non-missing values

	// Observed numeric range. NaN unless the column is numeric and has
	// at least one finite value.
	Min float64
	Max float64

	// Sorted distinct values, populated when NUnique <= CategoricalCutoff
	// on string-backed columns. Feeds the multi-select widget.
	Values []string
}

// HasRange reports whether the column has a usable numeric range.
func (c Column) HasRange() bool {
	return !math.IsNaN(c.Min) && !math.IsNaN(c.Max)
}

// Dataset is the immutable in-memory table for one session. A reload
// replaces it wholesale.
type Dataset struct {
	Name   string
	DF     dataframe.DataFrame
	Schema []Column
}

// Column looks up a schema column by name.
func (d *Dataset) Column(name string) (Column, bool) {
	for _, c := range d.Schema {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// Preview returns the first n rows.
func (d *Dataset) Preview(n int) dataframe.DataFrame {
	if d.DF.Nrow() <= n {
		return d.DF
	}
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	return d.DF.Subset(idx)
}

var timeLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"01/02/2006",
}

// looksTemporal reports whether every sampled value parses with a single
// date layout. Gota has no time type, so temporal columns arrive as
// strings and are sniffed here.
func looksTemporal(vals []string) bool {
	if len(vals) == 0 {
		return false
	}
	sample := vals
	if len(sample) > 50 {
		sample = sample[:50]
	}
	for _, layout := range timeLayouts {
		ok := true
		for _, v := range sample {
			if _, err := time.Parse(layout, v); err != nil {
				ok = false
				break
			}
		}
		if ok {
			return true
		}
	}
	return false
}

func inferSchema(df dataframe.DataFrame) []Column {
	names := df.Names()
	types := df.Types()
	cols := make([]Column, 0, len(names))

	for i, name := range names {
		s := df.Col(name)
		col := Column{Name: name, Dtype: string(types[i]), Min: math.NaN(), Max: math.NaN()}

		switch types[i] {
		case series.Int, series.Float:
			col.Kind = Numeric
			distinct := make(map[float64]struct{})
			lo, hi := math.Inf(1), math.Inf(-1)
			for _, v := range s.Float() {
				if math.IsNaN(v) || math.IsInf(v, 0) {
					continue
				}
				distinct[v] = struct{}{}
				if v < lo {
					lo = v
				}
				if v > hi {
					hi = v
				}
			}
			col.NUnique = len(distinct)
			if col.NUnique > 0 {
				col.Min, col.Max = lo, hi
			}

		case series.Bool:
			col.Kind = Bool
			distinct := make(map[string]struct{})
			for _, v := range s.Records() {
				if v == "" || v == "NaN" {
					continue
				}
				distinct[v] = struct{}{}
			}
			col.NUnique = len(distinct)

		default:
			vals := distinctStrings(s)
			col.NUnique = len(vals)
			switch {
			case looksTemporal(vals):
				col.Kind = Time
			case col.NUnique <= CategoricalCutoff:
				col.Kind = Categorical
			default:
				col.Kind = Text
			}
			if col.NUnique <= CategoricalCutoff {
				col.Values = vals
			}
		}

		cols = append(cols, col)
	}
	return cols
}

// distinctStrings collects the sorted distinct non-missing values of a
// string column. Empty cells and gota's NaN marker count as missing.
func distinctStrings(s series.Series) []string {
	seen := make(map[string]struct{})
	for i, v := range s.Records() {
		if v == "" || s.Elem(i).IsNA() {
			continue
		}
		seen[v] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for v := range seen {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
