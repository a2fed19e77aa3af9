package pipeline

import (
	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"golang-credit-cleaning-service/pkg/errors"
)

// requireColumns fails with a schema error naming every absent column
func requireColumns(df dataframe.DataFrame, stage string, columns ...string) error {
	present := make(map[string]bool, df.Ncol())
	for _, name := range df.Names() {
		present[name] = true
	}

	var missing []string
	for _, name := range columns {
		if !present[name] {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return errors.SchemaError(stage, missing)
	}
	return nil
}

// hasColumn reports whether df carries the named column
func hasColumn(df dataframe.DataFrame, name string) bool {
	for _, col := range df.Names() {
		if col == name {
			return true
		}
	}
	return false
}

// frameError wraps a dataframe failure as an internal error
func frameError(operation string, df dataframe.DataFrame) error {
	if df.Err == nil {
		return nil
	}
	return errors.InternalError(errors.CodeUnexpectedError, operation, df.Err)
}

// keepRows subsets df to the rows whose flag is true
func keepRows(df dataframe.DataFrame, keep []bool) dataframe.DataFrame {
	idx := make([]int, 0, len(keep))
	for i, k := range keep {
		if k {
			idx = append(idx, i)
		}
	}
	if len(idx) == len(keep) {
		return df
	}
	return df.Subset(idx)
}

// appendColumns adds the given series after the existing columns in one copy
func appendColumns(df dataframe.DataFrame, cols ...series.Series) dataframe.DataFrame {
	if df.Err != nil || len(cols) == 0 {
		return df
	}
	all := make([]series.Series, 0, df.Ncol()+len(cols))
	for _, name := range df.Names() {
		all = append(all, df.Col(name))
	}
	all = append(all, cols...)
	return dataframe.New(all...)
}

// replaceColumns swaps existing columns by name, keeping their position
func replaceColumns(df dataframe.DataFrame, cols ...series.Series) dataframe.DataFrame {
	if df.Err != nil || len(cols) == 0 {
		return df
	}
	byName := make(map[string]series.Series, len(cols))
	for _, col := range cols {
		byName[col.Name] = col
	}
	all := make([]series.Series, 0, df.Ncol())
	for _, name := range df.Names() {
		if col, ok := byName[name]; ok {
			all = append(all, col)
			continue
		}
		all = append(all, df.Col(name))
	}
	return dataframe.New(all...)
}

// stringSeries builds a string column; empty strings become nulls
func stringSeries(name string, values []string) series.Series {
	out := make([]string, len(values))
	for i, v := range values {
		if v == "" {
			out[i] = "NaN"
			continue
		}
		out[i] = v
	}
	return series.New(out, series.String, name)
}
