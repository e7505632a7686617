// Package filter defines the per-column predicates the explorer builds
// from a dataset's schema and applies to produce the visible row subset.
// Every active filter must hold for a row to survive (logical AND); a
// filter at its default covers the whole column and is a no-op.
package filter

import (
	"github.com/daktre/theta-data-explorer/internal/dataset"
)

// Kind selects the filter variant, which doubles as the widget kind the
// frontend renders for the column.
type Kind string

const (
	Range    Kind = "range"    // inclusive numeric [min, max]
	Values   Kind = "values"   // multi-select over observed distinct values
	Contains Kind = "contains" // case-insensitive substring
	Bool     Kind = "bool"     // tri-state true/false/any
)

// BoolMode is the tri-state choice for boolean columns.
type BoolMode string

const (
	BoolAny   BoolMode = "any"
	BoolTrue  BoolMode = "true"
	BoolFalse BoolMode = "false"
)

// ColumnFilter is the predicate over one column. Which fields are
// meaningful depends on Kind.
type ColumnFilter struct {
	Column string `json:"column"`
	Kind   Kind   `json:"kind"`

	// range bounds; serialized unconditionally so a 0 bound stays
	// explicit on the wire.
	Min float64 `json:"min"`
	Max float64 `json:"max"`

	// values: an empty selection matches no rows, a selection covering
	// every observed value is a no-op.
	Values []string `json:"values,omitempty"`

	Pattern string   `json:"pattern,omitempty"` // contains
	Mode    BoolMode `json:"mode,omitempty"`    // bool
}

// Set is the conjunction of all active column filters plus an optional
// global search matched against every string column.
type Set struct {
	Search  string                  `json:"search,omitempty"`
	Columns map[string]ColumnFilter `json:"columns"`
}

// Clone returns a deep copy of the set.
func (s Set) Clone() Set {
	out := Set{Search: s.Search, Columns: make(map[string]ColumnFilter, len(s.Columns))}
	for name, f := range s.Columns {
		f.Values = append([]string(nil), f.Values...)
		out.Columns[name] = f
	}
	return out
}

// WidgetFor maps a schema column to the filter variant its widget uses.
// Time columns have no dedicated widget; they fall back to multi-select
// or substring by cardinality, like any other string column.
func WidgetFor(c dataset.Column) Kind {
	switch c.Kind {
	case dataset.Numeric:
		return Range
	case dataset.Bool:
		return Bool
	case dataset.Categorical:
		return Values
	case dataset.Time:
		if c.NUnique <= dataset.CategoricalCutoff {
			return Values
		}
		return Contains
	default:
		return Contains
	}
}

// DefaultFor builds the filter covering the entire column.
func DefaultFor(c dataset.Column) ColumnFilter {
	f := ColumnFilter{Column: c.Name, Kind: WidgetFor(c)}
	switch f.Kind {
	case Range:
		f.Min, f.Max = c.Min, c.Max
	case Values:
		f.Values = append([]string(nil), c.Values...)
	case Bool:
		f.Mode = BoolAny
	}
	return f
}

// Defaults builds the all-covering filter set for a schema. Numeric
// columns without a finite range get no filter at all, the same way the
// original explorer skips their slider.
func Defaults(schema []dataset.Column) Set {
	s := Set{Columns: make(map[string]ColumnFilter, len(schema))}
	for _, c := range schema {
		if c.Kind == dataset.Numeric && !c.HasRange() {
			continue
		}
		s.Columns[c.Name] = DefaultFor(c)
	}
	return s
}

// IsDefault reports whether f trivially covers the whole column, making
// it a no-op under Apply.
func IsDefault(f ColumnFilter, c dataset.Column) bool {
	switch f.Kind {
	case Range:
		if !c.HasRange() {
			return true
		}
		return f.Min <= c.Min && f.Max >= c.Max
	case Values:
		selected := make(map[string]struct{}, len(f.Values))
		for _, v := range f.Values {
			selected[v] = struct{}{}
		}
		for _, v := range c.Values {
			if _, ok := selected[v]; !ok {
				return false
			}
		}
		return true
	case Contains:
		return f.Pattern == ""
	case Bool:
		return f.Mode == "" || f.Mode == BoolAny
	}
	return true
}

// Normalize drops filters that no longer fit the schema, i.e. unknown
// columns and variant mismatches after a dataset swap. Stale state is
// never an error; the caller just loses those filters.
func Normalize(s *Set, schema []dataset.Column) {
	if s.Columns == nil {
		s.Columns = make(map[string]ColumnFilter)
	}
	byName := make(map[string]dataset.Column, len(schema))
	for _, c := range schema {
		byName[c.Name] = c
	}
	for name, f := range s.Columns {
		c, ok := byName[name]
		if !ok || WidgetFor(c) != f.Kind {
			delete(s.Columns, name)
			continue
		}
		f.Column = name
		s.Columns[name] = f
	}
}
