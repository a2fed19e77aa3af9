package pipeline

import (
	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"golang-credit-cleaning-service/internal/schema"
)

// dropPersonalLoans removes Producto == "PP" rows, preserving order.
// Rows with no product are kept.
func dropPersonalLoans(df dataframe.DataFrame) (dataframe.DataFrame, int, error) {
	if err := requireColumns(df, "product filter", schema.ColumnProduct); err != nil {
		return df, 0, err
	}

	before := df.Nrow()
	out := df.Filter(dataframe.F{
		Colname:    schema.ColumnProduct,
		Comparator: series.CompFunc,
		Comparando: func(el series.Element) bool {
			return el.IsNA() || el.String() != schema.PersonalLoanProduct
		},
	})
	if err := frameError("product filter", out); err != nil {
		return df, 0, err
	}
	return out, before - out.Nrow(), nil
}
