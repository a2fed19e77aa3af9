package pipeline

import (
	"math"
	"testing"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"golang-credit-cleaning-service/internal/models"
	"golang-credit-cleaning-service/internal/schema"
	"golang-credit-cleaning-service/pkg/errors"
)

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func TestBandFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		limit float64
		top   float64
		want  models.CreditBand
	}{
		{"zero", 0, 20000, models.CreditBandNone},
		{"negative", -5, 20000, models.CreditBandNone},
		{"undefined", math.NaN(), 20000, models.CreditBandNone},
		{"smallest", 1, 20000, models.CreditBandLow},
		{"low edge", 1000, 20000, models.CreditBandLow},
		{"just above low edge", 1000.01, 20000, models.CreditBandMediumLow},
		{"medium-low edge", 5000, 20000, models.CreditBandMediumLow},
		{"medium-high edge", 15000, 20000, models.CreditBandMediumHigh},
		{"high", 15001, 20000, models.CreditBandHigh},
		{"top edge", 20000, 20000, models.CreditBandHigh},
		{"above top", 20001, 20000, models.CreditBandNone},
		{"empty high band", 15000, 15000, models.CreditBandMediumHigh},
		{"empty high band above edge", 15001, 12000, models.CreditBandNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, BandFor(tt.limit, tt.top))
		})
	}
}

func TestTopEdge(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 300.0, TopEdge([]float64{100, math.NaN(), 300, 200}))
	assert.True(t, math.IsNaN(TopEdge(nil)))
	assert.True(t, math.IsNaN(TopEdge([]float64{math.NaN()})))
}

func TestAssignCreditBands(t *testing.T) {
	t.Parallel()

	df := dataframe.New(series.New([]float64{500, 3000, 0, 20000}, series.Float, schema.ColumnCreditLimit))
	out, unbanded, err := assignCreditBands(df)
	require.NoError(t, err)
	assert.Equal(t, 1, unbanded)

	bands := out.Col(schema.ColumnCreditBand)
	assert.Equal(t, "Bajo", bands.Elem(0).String())
	assert.Equal(t, "Medio-Bajo", bands.Elem(1).String())
	assert.True(t, bands.Elem(2).IsNA())
	assert.Equal(t, "Alto", bands.Elem(3).String())

	_, _, err = assignCreditBands(dataframe.New(series.New([]int{1}, series.Int, "otra")))
	assert.True(t, errors.IsCategory(err, errors.CategorySchema))
}

func TestParseDate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input  string
		want   time.Time
		wantOK bool
	}{
		{"31/08/2024", date(2024, time.August, 31), true},
		{"1/2/2024", date(2024, time.February, 1), true},
		{" 05/03/2023 ", date(2023, time.March, 5), true},
		{"2024-08-31", time.Time{}, false},
		{"31/02/2024", time.Time{}, false},
		{"", time.Time{}, false},
		{"sin fecha", time.Time{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			got, ok := ParseDate(tt.input)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.True(t, tt.want.Equal(got), "got %v", got)
			}
		})
	}
}

func TestSubtractMonths(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		from time.Time
		want time.Time
	}{
		{"mid month", date(2024, time.August, 15), date(2024, time.February, 15)},
		{"clamped to leap day", date(2024, time.August, 31), date(2024, time.February, 29)},
		{"clamped to february", date(2023, time.August, 31), date(2023, time.February, 28)},
		{"year boundary", date(2024, time.March, 31), date(2023, time.September, 30)},
		{"same length", date(2024, time.July, 31), date(2024, time.January, 31)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := SubtractMonths(tt.from, loyaltyWindowMonths)
			assert.True(t, tt.want.Equal(got), "got %v", got)
		})
	}
}

func TestWindow_Classify(t *testing.T) {
	t.Parallel()

	window := NewWindow(date(2024, time.August, 31))
	assert.True(t, date(2024, time.February, 29).Equal(window.Start))

	assert.Equal(t, models.CustomerNew, window.Classify(date(2024, time.February, 29), true))
	assert.Equal(t, models.CustomerNew, window.Classify(date(2024, time.August, 31), true))
	assert.Equal(t, models.CustomerLoyal, window.Classify(date(2024, time.February, 28), true))
	assert.Equal(t, models.CustomerLoyal, window.Classify(time.Time{}, false))
}

func TestIsSuspiciousOverdraft(t *testing.T) {
	t.Parallel()

	assert.True(t, IsSuspiciousOverdraft(models.CreditBandLow, 1.5, 1))
	assert.True(t, IsSuspiciousOverdraft(models.CreditBandMediumLow, 1.01, 1))
	assert.False(t, IsSuspiciousOverdraft(models.CreditBandLow, 1, 1))
	assert.False(t, IsSuspiciousOverdraft(models.CreditBandLow, 1.5, 2))
	assert.False(t, IsSuspiciousOverdraft(models.CreditBandMediumHigh, 1.5, 1))
	assert.False(t, IsSuspiciousOverdraft(models.CreditBandNone, 1.5, 1))
}

func TestReferenceDate(t *testing.T) {
	t.Parallel()

	cutoff := schema.Month(schema.CutoffDate, 0)
	df := dataframe.New(series.New([]string{"30/06/2024", "NaN", "31/08/2024", "basura"}, series.String, cutoff))
	ref, err := ReferenceDate(df)
	require.NoError(t, err)
	assert.True(t, date(2024, time.August, 31).Equal(ref))

	_, err = ReferenceDate(dataframe.New(series.New([]string{"basura"}, series.String, cutoff)))
	cleanerErr, ok := errors.AsCleanerError(err)
	require.True(t, ok)
	assert.Equal(t, errors.CodeInvalidDate, cleanerErr.Code)
}

func TestRenameCurrentMonth(t *testing.T) {
	t.Parallel()

	cols := make([]series.Series, 0, len(schema.CurrentMonthRenames)+1)
	for _, r := range schema.CurrentMonthRenames {
		cols = append(cols, series.New([]int{1}, series.Int, r.From))
	}
	cols = append(cols, series.New([]int{2}, series.Int, "Saldo_total_M1"))

	out, err := renameCurrentMonth(dataframe.New(cols...))
	require.NoError(t, err)
	names := out.Names()
	assert.Contains(t, names, "Ciclo_atraso_M0")
	assert.Contains(t, names, "Saldo_total_M0")
	assert.Contains(t, names, "Saldo_total_M1")
	assert.NotContains(t, names, "Ciclo_Atraso")

	_, err = renameCurrentMonth(dataframe.New(cols[1:]...))
	cleanerErr, ok := errors.AsCleanerError(err)
	require.True(t, ok)
	assert.Equal(t, errors.CodeMissingColumn, cleanerErr.Code)
	assert.Equal(t, []string{"Saldo_total"}, cleanerErr.Context["columns"])

	clash := append(cols[:len(cols):len(cols)], series.New([]int{3}, series.Int, "Pago_M0"))
	_, err = renameCurrentMonth(dataframe.New(clash...))
	assert.True(t, errors.IsCategory(err, errors.CategorySchema))
}

func TestDropPersonalLoans(t *testing.T) {
	t.Parallel()

	df := dataframe.New(
		series.New([]string{"TC", "PP", "NaN", "PP", "TC"}, series.String, schema.ColumnProduct),
		series.New([]int{1, 2, 3, 4, 5}, series.Int, "id"),
	)
	out, dropped, err := dropPersonalLoans(df)
	require.NoError(t, err)
	assert.Equal(t, 2, dropped)

	ids, err := out.Col("id").Int()
	require.NoError(t, err)
	assert.Equal(t, []int{1, 3, 5}, ids)
}

func account(months ...models.MonthlyStatement) *models.Account {
	a := &models.Account{CreditBand: models.CreditBandLow, CustomerType: models.CustomerLoyal}
	for offset, m := range months {
		a.Months[offset] = m
	}
	return a
}

func month(total, payment int64) models.MonthlyStatement {
	return models.MonthlyStatement{
		TotalBalance:   decimal.NewFromInt(total),
		MonthlyBalance: decimal.NewFromInt(total),
		MinimumPayment: decimal.NewFromInt(total / 10),
		Payment:        decimal.NewFromInt(payment),
		Utilization:    0.4,
	}
}

var (
	idle = models.MonthlyStatement{}
	// usedOnly carries utilization without a balance: active, but nothing owed.
	usedOnly = models.MonthlyStatement{Utilization: 0.2}
)

func TestInactivity(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		account      *models.Account
		wantMonths   int
		wantStreak   int
		wantDebt     bool
		wantBehavior models.Behavior
	}{
		{
			name:         "always active",
			account:      account(month(100, 50), month(100, 50), month(100, 50), month(100, 50), month(100, 50), month(100, 50), month(100, 50)),
			wantBehavior: models.BehaviorActive,
		},
		// The debt flag is read from the month just before the first streak.
		// A streak that opens the window (M6) has no such month, so a
		// four-month streak with debt has to run M3..M0 instead.
		{
			name:         "idle M3..M0 after a balance in M4",
			account:      account(idle, idle, idle, idle, month(100, 0), month(100, 0), month(100, 0)),
			wantMonths:   4,
			wantStreak:   4,
			wantDebt:     true,
			wantBehavior: models.BehaviorInactiveWithDebt,
		},
		{
			name:         "idle from M6 has no month before the streak",
			account:      account(month(100, 0), month(100, 0), month(100, 0), idle, idle, idle, idle),
			wantMonths:   4,
			wantStreak:   4,
			wantBehavior: models.BehaviorInactiveNoDebt,
		},
		{
			name:         "first streak sets the debt flag",
			account:      account(idle, month(100, 0), idle, idle, usedOnly, month(100, 0), idle),
			wantMonths:   4,
			wantStreak:   2,
			wantBehavior: models.BehaviorIrregular,
		},
		{
			name:         "whole window idle",
			account:      account(idle, idle, idle, idle, idle, idle, idle),
			wantMonths:   7,
			wantStreak:   7,
			wantBehavior: models.BehaviorIrregular,
		},
		{
			name:         "short streak without prior debt",
			account:      account(month(100, 100), month(100, 100), idle, idle, usedOnly, month(100, 100), month(100, 100)),
			wantMonths:   2,
			wantStreak:   2,
			wantBehavior: models.BehaviorIrregular,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			profile := Inactivity(tt.account)
			assert.Equal(t, tt.wantMonths, profile.InactiveMonths)
			assert.Equal(t, tt.wantStreak, profile.LongestStreak)
			assert.Equal(t, tt.wantDebt, profile.DebtBeforeStreak)
			assert.Equal(t, tt.wantBehavior, profile.Behavior)
			assert.LessOrEqual(t, profile.LongestStreak, profile.InactiveMonths)
		})
	}
}

func TestClassifyBehavior(t *testing.T) {
	t.Parallel()

	tests := []struct {
		streak int
		debt   bool
		want   models.Behavior
	}{
		{0, false, models.BehaviorActive},
		{0, true, models.BehaviorActive},
		{1, true, models.BehaviorInactiveWithDebt},
		{6, true, models.BehaviorInactiveWithDebt},
		{4, false, models.BehaviorInactiveNoDebt},
		{6, false, models.BehaviorInactiveNoDebt},
		{3, false, models.BehaviorIrregular},
		{7, false, models.BehaviorIrregular},
		{7, true, models.BehaviorIrregular},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ClassifyBehavior(tt.streak, tt.debt), "streak %d debt %v", tt.streak, tt.debt)
	}
}

func TestPaymentBehavior(t *testing.T) {
	t.Parallel()

	a := account(month(100, 100), month(100, 150), month(100, 40), month(100, 0), idle, month(0, 20), month(100, 0))
	profile := PaymentBehavior(a)

	assert.Equal(t, [models.MonthsInWindow]bool{true, true, false, false, false, false, false}, profile.Full)
	assert.Equal(t, [models.MonthsInWindow]bool{false, false, true, false, false, false, false}, profile.Partial)
	assert.Equal(t, [models.MonthsInWindow]bool{false, false, false, true, false, false, true}, profile.Missed)
	assert.Equal(t, 2, profile.FullCount)
	assert.Equal(t, 1, profile.PartialCount)
	assert.Equal(t, 2, profile.MissedCount)
	assert.Equal(t, models.PaymentTierLow, profile.FullTier())
	assert.Equal(t, models.PaymentTierLow, profile.PartialTier())
	assert.Equal(t, models.PaymentTierLow, profile.MissedTier())

	for offset := range a.Months {
		set := 0
		for _, f := range []bool{profile.Full[offset], profile.Partial[offset], profile.Missed[offset]} {
			if f {
				set++
			}
		}
		assert.LessOrEqual(t, set, 1, "offset %d", offset)
	}
}

func TestDebt(t *testing.T) {
	t.Parallel()

	a := account(month(100, 30), month(100, 150), idle, month(300, 0), idle, idle, idle)
	profile := Debt(a)

	require.True(t, profile.Monthly[0].Valid)
	assert.True(t, decimal.NewFromInt(70).Equal(profile.Monthly[0].Decimal))
	require.True(t, profile.Monthly[1].Valid)
	assert.True(t, profile.Monthly[1].Decimal.IsZero())
	assert.False(t, profile.Monthly[2].Valid)
	assert.True(t, decimal.NewFromInt(300).Equal(profile.Monthly[3].Decimal))

	require.True(t, profile.Average.Valid)
	assert.Equal(t, "123.3333333333333333", profile.Average.Decimal.String())

	assert.False(t, Debt(account(idle)).Average.Valid)
}

func TestComputeQuartiles(t *testing.T) {
	t.Parallel()

	q := ComputeQuartiles([]float64{100, 0, math.NaN(), 50})
	assert.InDelta(t, 25, q.Q1, 1e-9)
	assert.InDelta(t, 50, q.Q2, 1e-9)
	assert.InDelta(t, 75, q.Q3, 1e-9)

	q = ComputeQuartiles([]float64{1, 2, 3, 4})
	assert.InDelta(t, 1.75, q.Q1, 1e-9)
	assert.InDelta(t, 2.5, q.Q2, 1e-9)
	assert.InDelta(t, 3.25, q.Q3, 1e-9)

	empty := ComputeQuartiles([]float64{math.NaN()})
	assert.True(t, math.IsNaN(empty.Q1))
	assert.True(t, math.IsNaN(empty.Q3))
}

func TestQuartiles_Categorize(t *testing.T) {
	t.Parallel()

	q := Quartiles{Q1: 25, Q2: 50, Q3: 75}
	assert.Equal(t, models.DebtLow, q.Categorize(0))
	assert.Equal(t, models.DebtLow, q.Categorize(25))
	assert.Equal(t, models.DebtMediumLow, q.Categorize(25.5))
	assert.Equal(t, models.DebtMediumLow, q.Categorize(50))
	assert.Equal(t, models.DebtMediumHigh, q.Categorize(75))
	assert.Equal(t, models.DebtHigh, q.Categorize(75.1))
	assert.Equal(t, models.DebtHigh, q.Categorize(math.NaN()))
}

func TestApplyDelinquency_OutOfRange(t *testing.T) {
	t.Parallel()

	a := account(month(100, 50))
	a.Months[2].DelinquencyCode = 12
	df := dataframe.New(series.New([]int{1}, series.Int, "id"))

	_, err := applyDelinquency(df, []models.Account{*a})
	cleanerErr, ok := errors.AsCleanerError(err)
	require.True(t, ok)
	assert.Equal(t, errors.CategoryValidation, cleanerErr.Category)
	assert.Equal(t, errors.CodeOutOfRange, cleanerErr.Code)
	assert.Equal(t, "Ciclo_atraso_M2", cleanerErr.Context["field"])
	assert.Equal(t, "12", cleanerErr.Context["value"])
}
