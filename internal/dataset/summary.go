package dataset

import (
	"fmt"
	"sort"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// Aggregations over numeric columns offered by the quick-summary
// endpoint, keyed by the name the API accepts. "count" is handled
// separately as group size.
var aggregations = map[string]dataframe.AggregationType{
	"mean":   dataframe.Aggregation_MEAN,
	"median": dataframe.Aggregation_MEDIAN,
	"sum":    dataframe.Aggregation_SUM,
}

// Summarize groups df by groupCol and aggregates every numeric column
// with the named aggregation. "count" returns one row per group with its
// row count, independent of any numeric columns.
func Summarize(df dataframe.DataFrame, groupCol, agg string) (dataframe.DataFrame, error) {
	names := df.Names()
	types := df.Types()
	found := false
	var numeric []string
	for i, n := range names {
		if n == groupCol {
			found = true
			continue
		}
		if types[i] == series.Int || types[i] == series.Float {
			numeric = append(numeric, n)
		}
	}
	if !found {
		return dataframe.DataFrame{}, fmt.Errorf("unknown column %q", groupCol)
	}

	if agg == "count" {
		return groupSizes(df, groupCol), nil
	}
	typ, ok := aggregations[agg]
	if !ok {
		return dataframe.DataFrame{}, fmt.Errorf("unknown aggregation %q", agg)
	}
	if len(numeric) == 0 {
		return dataframe.DataFrame{}, fmt.Errorf("no numeric columns to summarise")
	}

	groups := df.GroupBy(groupCol)
	if groups.Err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("group by %s: %w", groupCol, groups.Err)
	}
	typs := make([]dataframe.AggregationType, len(numeric))
	for i := range typs {
		typs[i] = typ
	}
	res := groups.Aggregation(typs, numeric)
	if res.Error() != nil {
		return dataframe.DataFrame{}, fmt.Errorf("aggregate: %w", res.Error())
	}
	return res, nil
}

// groupSizes counts rows per group value. Missing values form no group,
// but rows with nulls in other columns still count toward their group.
func groupSizes(df dataframe.DataFrame, groupCol string) dataframe.DataFrame {
	s := df.Col(groupCol)
	counts := make(map[string]int)
	for i, v := range s.Records() {
		if v == "" || s.Elem(i).IsNA() {
			continue
		}
		counts[v]++
	}

	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	ns := make([]int, len(keys))
	for i, k := range keys {
		ns[i] = counts[k]
	}
	return dataframe.New(
		series.New(keys, series.String, groupCol),
		series.New(ns, series.Int, "count"),
	)
}
