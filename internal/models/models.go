package models

// LoadRequest is the JSON body for loading a dataset from a URL.
type LoadRequest struct {
	URL string `json:"url"`
}

// ColumnMeta describes one column for the widget-building client: the
// semantic kind, which widget variant to render, and the observed domain
// the widget should span.
type ColumnMeta struct {
	Name    string   `json:"name"`
	Kind    string   `json:"kind"`
	Widget  string   `json:"widget"`
	Dtype   string   `json:"dtype"`
	NUnique int      `json:"n_unique"`
	Min     *float64 `json:"min,omitempty"`
	Max     *float64 `json:"max,omitempty"`
	Values  []string `json:"values,omitempty"`
}

type DatasetInfo struct {
	SessionID string       `json:"session_id"`
	Name      string       `json:"name"`
	Rows      int          `json:"rows"`
	Cols      int          `json:"cols"`
	Schema    []ColumnMeta `json:"schema"`
}

// RowsPage is one page of the filtered subset. Matched counts all rows
// surviving the filters; Total is the full dataset size.
type RowsPage struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
	Matched int        `json:"matched"`
	Total   int        `json:"total"`
	Limit   int        `json:"limit"`
	Offset  int        `json:"offset"`
}

type Summary struct {
	GroupBy     string     `json:"group_by"`
	Aggregation string     `json:"aggregation"`
	Columns     []string   `json:"columns"`
	Rows        [][]string `json:"rows"`
}
