package pipeline

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"

	"golang-credit-cleaning-service/internal/schema"
)

// statement holds the raw text of one month of a fixture customer
type statement struct {
	total, monthly, minimum, payment, utilization, cycle string
}

var (
	partialMonth = statement{"100", "100", "10", "50", "0.5", "0"}
	fullMonth    = statement{"100", "100", "10", "100", "0.5", "0"}
	missedMonth  = statement{"100", "100", "10", "0", "0.5", "0"}
	idleMonth    = statement{"0", "0", "0", "0", "0", "0"}
)

// Cut-off dates by offset; the reference date is 31/08/2024.
var cutoffDates = [schema.MonthCount]string{
	"31/08/2024", "31/07/2024", "30/06/2024", "31/05/2024", "30/04/2024", "31/03/2024", "29/02/2024",
}

// customer is one fixture row. Months are indexed by offset like Account.Months.
type customer struct {
	product    string
	city       string
	activation string
	limit      string
	months     [schema.MonthCount]statement
	overrides  map[string]string
}

func loyalCustomer(limit string, month statement) customer {
	c := customer{
		product:    "TC",
		city:       "Bogotá",
		activation: "15/01/2020",
		limit:      limit,
		overrides:  map[string]string{},
	}
	for offset := range c.months {
		c.months[offset] = month
	}
	return c
}

// idle marks the given offsets as fully inactive months
func (c customer) idle(offsets ...int) customer {
	for _, offset := range offsets {
		c.months[offset] = idleMonth
	}
	return c
}

// set forces the raw value of a column, using output (suffixed) names for M0
func (c customer) set(column, value string) customer {
	overrides := make(map[string]string, len(c.overrides)+1)
	for k, v := range c.overrides {
		overrides[k] = v
	}
	overrides[column] = value
	c.overrides = overrides
	return c
}

// sourceName maps an M0 column to its unsuffixed export name
func sourceName(column string) string {
	for _, r := range schema.CurrentMonthRenames {
		if r.To == column {
			return r.From
		}
	}
	return column
}

var monthPrefixes = []string{
	schema.TotalBalance, schema.MonthlyBalance, schema.MinimumPayment, schema.Payment,
	schema.Utilization, schema.CutoffDate, schema.PaymentDueDate, schema.PaymentDate,
	schema.NextCutoffDate, schema.BehaviorCode, schema.DelinquencyCode,
}

// fixtureHeaders returns the export header: identifying fields, the
// unsuffixed current month and the suffixed history
func fixtureHeaders() []string {
	headers := []string{
		schema.ColumnOrg, schema.ColumnProduct, "Ciudad", schema.ColumnActivationDate,
		schema.ColumnCreditLimit, schema.ColumnCutoffDay, schema.ColumnPaymentScore, schema.ColumnTarget,
	}
	for offset := 0; offset < schema.MonthCount; offset++ {
		for _, prefix := range monthPrefixes {
			headers = append(headers, sourceName(schema.Month(prefix, offset)))
		}
	}
	return headers
}

func (c customer) values(id int) map[string]string {
	row := map[string]string{
		schema.ColumnOrg:            "ORG" + string(rune('A'+id)),
		schema.ColumnProduct:        c.product,
		"Ciudad":                    c.city,
		schema.ColumnActivationDate: c.activation,
		schema.ColumnCreditLimit:    c.limit,
		schema.ColumnCutoffDay:      "15",
		schema.ColumnPaymentScore:   "700",
		schema.ColumnTarget:         "0",
	}
	for offset, m := range c.months {
		fields := map[string]string{
			schema.TotalBalance:    m.total,
			schema.MonthlyBalance:  m.monthly,
			schema.MinimumPayment:  m.minimum,
			schema.Payment:         m.payment,
			schema.Utilization:     m.utilization,
			schema.CutoffDate:      cutoffDates[offset],
			schema.PaymentDueDate:  cutoffDates[offset],
			schema.PaymentDate:     cutoffDates[offset],
			schema.NextCutoffDate:  cutoffDates[offset],
			schema.BehaviorCode:    "N",
			schema.DelinquencyCode: m.cycle,
		}
		for prefix, value := range fields {
			row[sourceName(schema.Month(prefix, offset))] = value
		}
	}
	for column, value := range c.overrides {
		row[sourceName(column)] = value
	}
	return row
}

// buildCSV renders customers under headers as ISO-8859-1 text
func buildCSV(t *testing.T, headers []string, customers []customer) []byte {
	t.Helper()

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	require.NoError(t, w.Write(headers))
	for i, c := range customers {
		values := c.values(i)
		record := make([]string, len(headers))
		for j, h := range headers {
			record[j] = values[h]
		}
		require.NoError(t, w.Write(record))
	}
	w.Flush()
	require.NoError(t, w.Error())

	encoded, err := charmap.ISO8859_1.NewEncoder().Bytes(buf.Bytes())
	require.NoError(t, err)
	return encoded
}

func writeFixture(t *testing.T, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cartera.csv")
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

// Positions of the scenario customers in portfolio().
const (
	rowActive = iota
	rowPersonalLoan
	rowNewCustomer
	rowOverdraft
	rowFullyInactive
	rowDebtBeforeStreak
	rowNoDebtStreak
	rowUnbanded
	rowShortStreak
)

// portfolio returns one customer per cleaning scenario. Only rowActive,
// rowDebtBeforeStreak and rowNoDebtStreak survive, in that order.
func portfolio() []customer {
	active := loyalCustomer("20000", partialMonth)

	personalLoan := loyalCustomer("5000", partialMonth)
	personalLoan.product = schema.PersonalLoanProduct

	newCustomer := loyalCustomer("3000", partialMonth)
	newCustomer.activation = "15/05/2024"

	overdraft := loyalCustomer("1", partialMonth).set(schema.Month(schema.Utilization, 0), "1.5")
	overdraft.city = "Medellín"

	fullyInactive := loyalCustomer("10000", idleMonth)

	// M6..M4 paid in full, then idle from M3: the month before the streak had a balance.
	debtBeforeStreak := loyalCustomer("3000", fullMonth).idle(3, 2, 1, 0)

	// Idle from M6, so there is no month before the streak; M2..M0 unpaid.
	noDebtStreak := loyalCustomer("10000", missedMonth).idle(6, 5, 4, 3).
		set(schema.Month(schema.DelinquencyCode, 0), "3")

	unbanded := loyalCustomer("0", partialMonth)

	shortStreak := loyalCustomer("500", partialMonth).idle(6)

	return []customer{
		active, personalLoan, newCustomer, overdraft, fullyInactive,
		debtBeforeStreak, noDebtStreak, unbanded, shortStreak,
	}
}
