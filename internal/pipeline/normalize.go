package pipeline

import (
	"fmt"

	"github.com/go-gota/gota/dataframe"

	"golang-credit-cleaning-service/internal/schema"
	"golang-credit-cleaning-service/pkg/errors"
)

// renameCurrentMonth gives the unsuffixed current-month columns their _M0 names
func renameCurrentMonth(df dataframe.DataFrame) (dataframe.DataFrame, error) {
	sources := make([]string, len(schema.CurrentMonthRenames))
	for i, r := range schema.CurrentMonthRenames {
		sources[i] = r.From
	}
	if err := requireColumns(df, "column renaming", sources...); err != nil {
		return df, err
	}

	names := df.Names()
	index := make(map[string]int, len(names))
	for i, name := range names {
		index[name] = i
	}
	for _, r := range schema.CurrentMonthRenames {
		if _, taken := index[r.To]; taken {
			return df, errors.New(errors.CategorySchema, errors.CodeInvalidFormat,
				fmt.Sprintf("cannot rename %s: column %s already exists", r.From, r.To)).
				WithSuggestion("remove either the unsuffixed or the _M0 column from the export").
				WithContext("stage", "column renaming")
		}
		names[index[r.From]] = r.To
	}

	out := df.Copy()
	if err := out.SetNames(names...); err != nil {
		return df, errors.InternalError(errors.CodeUnexpectedError, "column renaming", err)
	}
	return out, nil
}
