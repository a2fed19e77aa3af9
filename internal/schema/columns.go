// Package schema catalogues the column names of the portfolio export and the
// columns the cleaning pipeline derives from it.
package schema

import (
	"fmt"
	"strings"
)

// Source columns read before the current-month rename.
const (
	ColumnCreditLimit    = "Limite_credito"
	ColumnProduct        = "Producto"
	ColumnActivationDate = "Fecha_activacion"
	ColumnOrg            = "ORG"
	ColumnCutoffDay      = "Corte"
	ColumnPaymentScore   = "Score_pago"
	ColumnTarget         = "Variable_objetivo"
)

// Derived columns.
const (
	ColumnCreditBand       = "Grupo_Credito"
	ColumnCustomerType     = "tipo_cliente"
	ColumnInactiveMonths   = "Meses_Inactivo"
	ColumnLongestStreak    = "max_meses_inactivos_consecutivos"
	ColumnDebtBeforeStreak = "deuda_antes_inactividad"
	ColumnBehavior         = "comportamiento_cliente"
	ColumnFullPayments     = "pago_total_deuda"
	ColumnPartialPayments  = "pago_parcial_deuda"
	ColumnMissedPayments   = "pago_nulo_deuda"
	ColumnFullTier         = "comportamiento_pago_total"
	ColumnPartialTier      = "comportamiento_pago_parcial"
	ColumnMissedTier       = "comportamiento_pago_nulo"
	ColumnAverageDebt      = "deuda_promedio_semestral"
	ColumnDebtCategory     = "categoria_deuda"
	ColumnWorstDelinquency = "max_morosidad"
)

// PersonalLoanProduct is the Producto value of personal-loan rows
const PersonalLoanProduct = "PP"

// DateMarker identifies date columns by name
const DateMarker = "Fecha"

// Monthly field prefixes; the column for offset i is Prefix + "_M" + i.
const (
	TotalBalance    = "Saldo_total"
	MonthlyBalance  = "Saldo_Mes"
	MinimumPayment  = "Pago_minimo"
	Payment         = "Pago"
	Utilization     = "Utilizacion"
	CutoffDate      = "Fecha_corte"
	PaymentDueDate  = "Fecha_limite_pago"
	PaymentDate     = "Fecha_pago"
	NextCutoffDate  = "Fecha_prox_corte"
	BehaviorCode    = "Behavior"
	DelinquencyCode = "Ciclo_atraso"

	Inactive       = "Inactivo"
	FullPayment    = "pago_total"
	PartialPayment = "pago_parcial"
	MissedPayment  = "pago_nulo"
	Debt           = "deuda"
)

// MonthCount is the number of monthly offsets, M0 through M6
const MonthCount = 7

// Month returns the column name of prefix at the given offset
func Month(prefix string, offset int) string {
	return fmt.Sprintf("%s_M%d", prefix, offset)
}

// Chronological returns the column names of prefix ordered M6 -> M0
func Chronological(prefix string) []string {
	names := make([]string, 0, MonthCount)
	for offset := MonthCount - 1; offset >= 0; offset-- {
		names = append(names, Month(prefix, offset))
	}
	return names
}

// CurrentMonthRenames maps the unsuffixed current-month columns to their M0 names
var CurrentMonthRenames = []struct {
	From string
	To   string
}{
	{"Saldo_total", "Saldo_total_M0"},
	{"Saldo_Mes", "Saldo_Mes_M0"},
	{"Pago_minimo", "Pago_minimo_M0"},
	{"Pago", "Pago_M0"},
	{"Utilizacion", "Utilizacion_M0"},
	{"Fecha_corte", "Fecha_corte_M0"},
	{"Fecha_limite_pago", "Fecha_limite_pago_M0"},
	{"Fecha_pago", "Fecha_pago_M0"},
	{"Fecha_prox_corte", "Fecha_prox_corte_M0"},
	{"Behavior", "Behavior_M0"},
	{"Ciclo_Atraso", "Ciclo_atraso_M0"},
}

// IsDateColumn reports whether the column holds DD/MM/YYYY dates
func IsDateColumn(name string) bool {
	return strings.Contains(name, DateMarker)
}
