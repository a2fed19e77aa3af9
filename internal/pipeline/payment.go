package pipeline

import (
	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"golang-credit-cleaning-service/internal/models"
	"golang-credit-cleaning-service/internal/schema"
)

// PaymentBehavior flags each month as a full, partial or missed payment.
// Months without a balance count toward none of the three.
func PaymentBehavior(account *models.Account) models.PaymentProfile {
	var profile models.PaymentProfile
	for offset, month := range account.Months {
		if month.IsFullPayment() {
			profile.Full[offset] = true
			profile.FullCount++
		}
		if month.IsPartialPayment() {
			profile.Partial[offset] = true
			profile.PartialCount++
		}
		if month.IsMissedPayment() {
			profile.Missed[offset] = true
			profile.MissedCount++
		}
	}
	return profile
}

func flag(b bool) int {
	if b {
		return 1
	}
	return 0
}

// applyPayments appends per-month payment flags, their counts and tiers
func applyPayments(df dataframe.DataFrame, accounts []models.Account) (dataframe.DataFrame, error) {
	n := len(accounts)
	full := make([][]int, models.MonthsInWindow)
	partial := make([][]int, models.MonthsInWindow)
	missed := make([][]int, models.MonthsInWindow)
	for offset := 0; offset < models.MonthsInWindow; offset++ {
		full[offset] = make([]int, n)
		partial[offset] = make([]int, n)
		missed[offset] = make([]int, n)
	}
	fullCounts := make([]int, n)
	partialCounts := make([]int, n)
	missedCounts := make([]int, n)
	fullTiers := make([]string, n)
	partialTiers := make([]string, n)
	missedTiers := make([]string, n)

	for i := range accounts {
		profile := PaymentBehavior(&accounts[i])
		for offset := 0; offset < models.MonthsInWindow; offset++ {
			full[offset][i] = flag(profile.Full[offset])
			partial[offset][i] = flag(profile.Partial[offset])
			missed[offset][i] = flag(profile.Missed[offset])
		}
		fullCounts[i] = profile.FullCount
		partialCounts[i] = profile.PartialCount
		missedCounts[i] = profile.MissedCount
		fullTiers[i] = profile.FullTier().String()
		partialTiers[i] = profile.PartialTier().String()
		missedTiers[i] = profile.MissedTier().String()
	}

	cols := make([]series.Series, 0, 3*models.MonthsInWindow+6)
	for offset := models.MonthsInWindow - 1; offset >= 0; offset-- {
		cols = append(cols,
			series.New(full[offset], series.Int, schema.Month(schema.FullPayment, offset)),
			series.New(partial[offset], series.Int, schema.Month(schema.PartialPayment, offset)),
			series.New(missed[offset], series.Int, schema.Month(schema.MissedPayment, offset)),
		)
	}
	cols = append(cols,
		series.New(fullCounts, series.Int, schema.ColumnFullPayments),
		series.New(partialCounts, series.Int, schema.ColumnPartialPayments),
		series.New(missedCounts, series.Int, schema.ColumnMissedPayments),
		series.New(fullTiers, series.String, schema.ColumnFullTier),
		series.New(partialTiers, series.String, schema.ColumnPartialTier),
		series.New(missedTiers, series.String, schema.ColumnMissedTier),
	)

	out := appendColumns(df, cols...)
	return out, frameError("payment behavior", out)
}
