package schema

// ProjectedColumns is the ordered whitelist kept after segmentation.
// Fecha_pago_M6 is not part of the export layout the pipeline serves.
var ProjectedColumns = buildProjection()

func buildProjection() []string {
	cols := []string{
		ColumnOrg, ColumnActivationDate,
		Month(TotalBalance, 0), Month(MonthlyBalance, 0), Month(MinimumPayment, 0),
		Month(Utilization, 0), ColumnCutoffDay, Month(CutoffDate, 0), Month(PaymentDueDate, 0),
		Month(NextCutoffDate, 0), Month(Payment, 0), Month(PaymentDate, 0),
		ColumnCreditLimit, Month(BehaviorCode, 0), Month(DelinquencyCode, 0),
	}

	history := []string{
		TotalBalance, MonthlyBalance, MinimumPayment, CutoffDate, PaymentDueDate,
		NextCutoffDate, Utilization, BehaviorCode, DelinquencyCode, Payment,
	}
	for _, prefix := range history {
		for offset := 1; offset < MonthCount; offset++ {
			cols = append(cols, Month(prefix, offset))
		}
	}
	for offset := 1; offset < MonthCount-1; offset++ {
		cols = append(cols, Month(PaymentDate, offset))
	}

	return append(cols, ColumnPaymentScore, ColumnTarget, ColumnCreditBand, ColumnCustomerType)
}

// MonthlyFields lists the numeric fields that make up one statement month
var MonthlyFields = []string{TotalBalance, MonthlyBalance, MinimumPayment, Payment, Utilization, DelinquencyCode}

// DerivedColumns returns the columns appended by the derivation engines, in output order
func DerivedColumns() []string {
	cols := Chronological(Inactive)
	cols = append(cols, ColumnInactiveMonths, ColumnLongestStreak, ColumnDebtBeforeStreak, ColumnBehavior)
	for offset := MonthCount - 1; offset >= 0; offset-- {
		cols = append(cols,
			Month(FullPayment, offset),
			Month(PartialPayment, offset),
			Month(MissedPayment, offset))
	}
	cols = append(cols,
		ColumnFullPayments, ColumnPartialPayments, ColumnMissedPayments,
		ColumnFullTier, ColumnPartialTier, ColumnMissedTier)
	cols = append(cols, Chronological(Debt)...)
	return append(cols, ColumnAverageDebt, ColumnDebtCategory, ColumnWorstDelinquency)
}
