package models

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// MonthsInWindow is the number of statement months carried per account (M0..M6)
const MonthsInWindow = 7

// MonthlyStatement is one customer-month of the statement history
type MonthlyStatement struct {
	TotalBalance    decimal.Decimal `json:"total_balance"`
	MonthlyBalance  decimal.Decimal `json:"monthly_balance"`
	MinimumPayment  decimal.Decimal `json:"minimum_payment"`
	Payment         decimal.Decimal `json:"payment"`
	Utilization     float64         `json:"utilization"`
	DelinquencyCode float64         `json:"delinquency_code"`
}

// IsInactive reports whether every activity figure of the month is exactly zero
func (m MonthlyStatement) IsInactive() bool {
	return m.TotalBalance.IsZero() &&
		m.MonthlyBalance.IsZero() &&
		m.Payment.IsZero() &&
		m.MinimumPayment.IsZero() &&
		m.Utilization == 0
}

// HasBalance reports whether the month closed with a positive total balance
func (m MonthlyStatement) HasBalance() bool {
	return m.TotalBalance.IsPositive()
}

// IsFullPayment reports whether a positive balance was paid in full
func (m MonthlyStatement) IsFullPayment() bool {
	return m.HasBalance() && m.Payment.GreaterThanOrEqual(m.TotalBalance)
}

// IsPartialPayment reports whether something, but less than the balance, was paid
func (m MonthlyStatement) IsPartialPayment() bool {
	return m.Payment.IsPositive() && m.Payment.LessThan(m.TotalBalance)
}

// IsMissedPayment reports whether nothing was paid against a positive balance
func (m MonthlyStatement) IsMissedPayment() bool {
	return m.Payment.IsZero() && m.HasBalance()
}

// OutstandingDebt returns balance minus payment floored at zero.
// The second return is false when the month carries no balance.
func (m MonthlyStatement) OutstandingDebt() (decimal.Decimal, bool) {
	if !m.HasBalance() {
		return decimal.Zero, false
	}
	debt := m.TotalBalance.Sub(m.Payment)
	if debt.IsNegative() {
		return decimal.Zero, true
	}
	return debt, true
}

// DelinquencyStage recodes the month's cycle code
func (m MonthlyStatement) DelinquencyStage() (DelinquencyStage, error) {
	code := m.DelinquencyCode
	if math.IsNaN(code) || math.IsInf(code, 0) || code != math.Trunc(code) {
		return "", fmt.Errorf("delinquency cycle code %v is not an integer", code)
	}
	return StageForCode(int(code))
}

// Account is the typed view of one customer row
type Account struct {
	Row          int          `json:"row"`
	CreditLimit  float64      `json:"credit_limit"`
	CreditBand   CreditBand   `json:"credit_band"`
	CustomerType CustomerType `json:"customer_type"`
	// Months is indexed by offset: 0 is M0 (current), 6 is M6.
	Months [MonthsInWindow]MonthlyStatement `json:"months"`
}

// Chronological returns the statements ordered M6 -> M0
func (a *Account) Chronological() []MonthlyStatement {
	out := make([]MonthlyStatement, MonthsInWindow)
	for i := range out {
		out[i] = a.Months[MonthsInWindow-1-i]
	}
	return out
}

// Validate checks the account fields the derivation engines rely on
func (a *Account) Validate() error {
	if a.Row < 0 {
		return fmt.Errorf("row index cannot be negative")
	}
	if a.CreditBand != CreditBandNone && !a.CreditBand.IsValid() {
		return fmt.Errorf("invalid credit band: %s", a.CreditBand)
	}
	if a.CustomerType != "" && !a.CustomerType.IsValid() {
		return fmt.Errorf("invalid customer type: %s", a.CustomerType)
	}
	return nil
}

// String returns a string representation of the account
func (a *Account) String() string {
	return fmt.Sprintf("Account{Row: %d, Limit: %.2f, Band: %s, Type: %s}",
		a.Row, a.CreditLimit, a.CreditBand, a.CustomerType)
}

// InactivityProfile is the result of folding an account's months for inactivity
type InactivityProfile struct {
	// Inactive is indexed by offset like Account.Months.
	Inactive         [MonthsInWindow]bool `json:"inactive"`
	InactiveMonths   int                  `json:"inactive_months"`
	LongestStreak    int                  `json:"longest_streak"`
	DebtBeforeStreak bool                 `json:"debt_before_streak"`
	Behavior         Behavior             `json:"behavior"`
}

// PaymentProfile holds per-month payment flags and their tiers
type PaymentProfile struct {
	Full         [MonthsInWindow]bool `json:"full"`
	Partial      [MonthsInWindow]bool `json:"partial"`
	Missed       [MonthsInWindow]bool `json:"missed"`
	FullCount    int                  `json:"full_count"`
	PartialCount int                  `json:"partial_count"`
	MissedCount  int                  `json:"missed_count"`
}

// FullTier returns the tier of full-payment months
func (p PaymentProfile) FullTier() PaymentTier { return TierForCount(p.FullCount) }

// PartialTier returns the tier of partial-payment months
func (p PaymentProfile) PartialTier() PaymentTier { return TierForCount(p.PartialCount) }

// MissedTier returns the tier of missed-payment months
func (p PaymentProfile) MissedTier() PaymentTier { return TierForCount(p.MissedCount) }

// DebtProfile holds monthly outstanding debt and its semester average
type DebtProfile struct {
	Monthly [MonthsInWindow]decimal.NullDecimal `json:"monthly"`
	// Average is invalid when no month carried a balance.
	Average decimal.NullDecimal `json:"average"`
}
