package pipeline

import (
	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"golang-credit-cleaning-service/internal/schema"
	"golang-credit-cleaning-service/pkg/errors"
)

// projectColumns keeps the whitelist, parses date columns and zero-fills
// numeric nulls. Unparsable dates become nulls and are recorded in issues.
func projectColumns(df dataframe.DataFrame, issues *errors.IssueCollector) (dataframe.DataFrame, int, error) {
	if err := requireColumns(df, "projection", schema.ProjectedColumns...); err != nil {
		return df, 0, err
	}

	projected := df.Select(schema.ProjectedColumns)
	if err := frameError("projection", projected); err != nil {
		return df, 0, err
	}

	invalidDates := 0
	cols := make([]series.Series, 0, projected.Ncol())
	for _, name := range projected.Names() {
		col := projected.Col(name)
		switch {
		case schema.IsDateColumn(name):
			var bad int
			col, bad = normalizeDates(col, issues)
			invalidDates += bad
		case col.Type() == series.Int || col.Type() == series.Float:
			col = fillNulls(col)
		}
		cols = append(cols, col)
	}

	out := dataframe.New(cols...)
	return out, invalidDates, frameError("projection", out)
}

// normalizeDates rewrites DD/MM/YYYY values as ISO dates
func normalizeDates(col series.Series, issues *errors.IssueCollector) (series.Series, int) {
	values := make([]string, col.Len())
	bad := 0
	for i := 0; i < col.Len(); i++ {
		el := col.Elem(i)
		if el.IsNA() {
			continue
		}
		raw := el.String()
		t, ok := ParseDate(raw)
		if !ok {
			bad++
			issues.Add(errors.ValueIssue{Column: col.Name, Row: i, Value: raw, Code: errors.CodeInvalidDate})
			continue
		}
		values[i] = t.Format(OutputDateLayout)
	}
	return stringSeries(col.Name, values), bad
}

// fillNulls replaces nulls in a numeric column with zero
func fillNulls(col series.Series) series.Series {
	if !col.HasNaN() {
		return col
	}

	if col.Type() == series.Int {
		values := make([]int, col.Len())
		for i := 0; i < col.Len(); i++ {
			el := col.Elem(i)
			if el.IsNA() {
				continue
			}
			v, err := el.Int()
			if err == nil {
				values[i] = v
			}
		}
		return series.New(values, series.Int, col.Name)
	}

	values := col.Float()
	for i, v := range values {
		if col.Elem(i).IsNA() {
			values[i] = 0
			continue
		}
		values[i] = v
	}
	return series.New(values, series.Float, col.Name)
}
