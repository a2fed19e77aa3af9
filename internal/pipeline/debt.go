package pipeline

import (
	"math"
	"sort"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/shopspring/decimal"

	"golang-credit-cleaning-service/internal/models"
	"golang-credit-cleaning-service/internal/schema"
)

// Debt computes each month's outstanding debt and their mean over the months
// that carried a balance.
func Debt(account *models.Account) models.DebtProfile {
	var profile models.DebtProfile
	sum := decimal.Zero
	defined := 0
	for offset, month := range account.Months {
		debt, ok := month.OutstandingDebt()
		if !ok {
			continue
		}
		profile.Monthly[offset] = decimal.NullDecimal{Decimal: debt, Valid: true}
		sum = sum.Add(debt)
		defined++
	}
	if defined > 0 {
		profile.Average = decimal.NullDecimal{
			Decimal: sum.Div(decimal.NewFromInt(int64(defined))),
			Valid:   true,
		}
	}
	return profile
}

// Quartiles holds the 25th, 50th and 75th percentiles of semester average debt
type Quartiles struct {
	Q1 float64 `json:"q1"`
	Q2 float64 `json:"q2"`
	Q3 float64 `json:"q3"`
}

// ComputeQuartiles interpolates the quartiles linearly between the closest
// ranks, ignoring NaN. With no values every quartile is NaN.
func ComputeQuartiles(values []float64) Quartiles {
	sorted := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			sorted = append(sorted, v)
		}
	}
	sort.Float64s(sorted)

	return Quartiles{
		Q1: percentile(sorted, 0.25),
		Q2: percentile(sorted, 0.50),
		Q3: percentile(sorted, 0.75),
	}
}

func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return math.NaN()
	}
	pos := p * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	return sorted[lo] + (sorted[hi]-sorted[lo])*(pos-float64(lo))
}

// Categorize buckets an average debt against the quartiles. An undefined
// average compares false against every boundary and lands in the top bucket.
func (q Quartiles) Categorize(average float64) models.DebtCategory {
	switch {
	case average <= q.Q1:
		return models.DebtLow
	case average <= q.Q2:
		return models.DebtMediumLow
	case average <= q.Q3:
		return models.DebtMediumHigh
	default:
		return models.DebtHigh
	}
}

func nullableFloat(d decimal.NullDecimal) float64 {
	if !d.Valid {
		return math.NaN()
	}
	return d.Decimal.InexactFloat64()
}

// applyDebt appends monthly debt, the semester average and its quartile
// category. Quartiles are taken over the rows present at this point.
func applyDebt(df dataframe.DataFrame, accounts []models.Account) (dataframe.DataFrame, Quartiles, error) {
	n := len(accounts)
	monthly := make([][]float64, models.MonthsInWindow)
	for offset := range monthly {
		monthly[offset] = make([]float64, n)
	}
	averages := make([]float64, n)

	for i := range accounts {
		profile := Debt(&accounts[i])
		for offset, debt := range profile.Monthly {
			monthly[offset][i] = nullableFloat(debt)
		}
		averages[i] = nullableFloat(profile.Average)
	}

	quartiles := ComputeQuartiles(averages)
	categories := make([]string, n)
	for i, average := range averages {
		categories[i] = quartiles.Categorize(average).String()
	}

	cols := make([]series.Series, 0, models.MonthsInWindow+2)
	for offset := models.MonthsInWindow - 1; offset >= 0; offset-- {
		cols = append(cols, series.New(monthly[offset], series.Float, schema.Month(schema.Debt, offset)))
	}
	cols = append(cols,
		series.New(averages, series.Float, schema.ColumnAverageDebt),
		series.New(categories, series.String, schema.ColumnDebtCategory),
	)

	out := appendColumns(df, cols...)
	return out, quartiles, frameError("debt", out)
}
