package pipeline

import (
	"math"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/shopspring/decimal"

	"golang-credit-cleaning-service/internal/models"
	"golang-credit-cleaning-service/internal/schema"
	"golang-credit-cleaning-service/pkg/errors"
)

// numericColumn reads a column as floats. Nulls read as zero; non-null
// values that are not numbers are recorded and read as zero.
func numericColumn(df dataframe.DataFrame, name string, issues *errors.IssueCollector) []float64 {
	col := df.Col(name)
	values := make([]float64, col.Len())
	for i := 0; i < col.Len(); i++ {
		el := col.Elem(i)
		if el.IsNA() {
			continue
		}
		v := el.Float()
		if math.IsNaN(v) || math.IsInf(v, 0) {
			issues.Add(errors.ValueIssue{Column: name, Row: i, Value: el.String(), Code: errors.CodeInvalidValue})
			continue
		}
		values[i] = v
	}
	return values
}

// delinquencyColumn reads cycle codes; unparsable codes stay NaN so that
// recoding rejects them.
func delinquencyColumn(df dataframe.DataFrame, name string) []float64 {
	col := df.Col(name)
	values := make([]float64, col.Len())
	for i := 0; i < col.Len(); i++ {
		el := col.Elem(i)
		if el.IsNA() {
			continue
		}
		values[i] = el.Float()
	}
	return values
}

func labelAt(col series.Series, i int) string {
	el := col.Elem(i)
	if el.IsNA() {
		return ""
	}
	return el.String()
}

// buildAccounts converts the projected table into typed accounts, one per row
func buildAccounts(df dataframe.DataFrame, issues *errors.IssueCollector) ([]models.Account, error) {
	required := []string{schema.ColumnCreditLimit, schema.ColumnCreditBand, schema.ColumnCustomerType}
	for _, field := range schema.MonthlyFields {
		for offset := 0; offset < schema.MonthCount; offset++ {
			required = append(required, schema.Month(field, offset))
		}
	}
	if err := requireColumns(df, "account extraction", required...); err != nil {
		return nil, err
	}

	n := df.Nrow()
	accounts := make([]models.Account, n)
	limits := numericColumn(df, schema.ColumnCreditLimit, issues)
	bands := df.Col(schema.ColumnCreditBand)
	types := df.Col(schema.ColumnCustomerType)
	for i := range accounts {
		accounts[i].Row = i
		accounts[i].CreditLimit = limits[i]
		accounts[i].CreditBand = models.CreditBand(labelAt(bands, i))
		accounts[i].CustomerType = models.CustomerType(labelAt(types, i))
	}

	for offset := 0; offset < schema.MonthCount; offset++ {
		total := numericColumn(df, schema.Month(schema.TotalBalance, offset), issues)
		monthly := numericColumn(df, schema.Month(schema.MonthlyBalance, offset), issues)
		minimum := numericColumn(df, schema.Month(schema.MinimumPayment, offset), issues)
		payment := numericColumn(df, schema.Month(schema.Payment, offset), issues)
		utilization := numericColumn(df, schema.Month(schema.Utilization, offset), issues)
		codes := delinquencyColumn(df, schema.Month(schema.DelinquencyCode, offset))

		for i := range accounts {
			accounts[i].Months[offset] = models.MonthlyStatement{
				TotalBalance:    decimal.NewFromFloat(total[i]),
				MonthlyBalance:  decimal.NewFromFloat(monthly[i]),
				MinimumPayment:  decimal.NewFromFloat(minimum[i]),
				Payment:         decimal.NewFromFloat(payment[i]),
				Utilization:     utilization[i],
				DelinquencyCode: codes[i],
			}
		}
	}

	for i := range accounts {
		if err := accounts[i].Validate(); err != nil {
			return nil, errors.ValidationError(errors.CodeInvalidValue, "account", i, err)
		}
	}
	return accounts, nil
}
