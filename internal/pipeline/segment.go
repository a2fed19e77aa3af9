package pipeline

import (
	"time"

	"github.com/go-gota/gota/dataframe"

	"golang-credit-cleaning-service/internal/models"
	"golang-credit-cleaning-service/internal/schema"
	"golang-credit-cleaning-service/pkg/errors"
)

// loyaltyWindowMonths is how far before the reference date an activation
// still counts as a new customer.
const loyaltyWindowMonths = 6

// Window is the reference period used to tell new from loyal customers
type Window struct {
	Reference time.Time `json:"reference_date"`
	Start     time.Time `json:"window_start"`
}

// NewWindow builds the loyalty window ending at reference
func NewWindow(reference time.Time) Window {
	return Window{Reference: reference, Start: SubtractMonths(reference, loyaltyWindowMonths)}
}

// Classify returns the customer type for an activation date. Customers with
// no usable activation date are loyal.
func (w Window) Classify(activation time.Time, ok bool) models.CustomerType {
	if ok && !activation.Before(w.Start) {
		return models.CustomerNew
	}
	return models.CustomerLoyal
}

// ReferenceDate returns the latest parsable current-month cut-off date
func ReferenceDate(df dataframe.DataFrame) (time.Time, error) {
	cutoff := schema.Month(schema.CutoffDate, 0)
	if err := requireColumns(df, "segmentation", cutoff); err != nil {
		return time.Time{}, err
	}

	var latest time.Time
	found := false
	col := df.Col(cutoff)
	for i := 0; i < col.Len(); i++ {
		el := col.Elem(i)
		if el.IsNA() {
			continue
		}
		if t, ok := ParseDate(el.String()); ok && (!found || t.After(latest)) {
			latest, found = t, true
		}
	}

	if !found {
		return time.Time{}, errors.ValidationError(errors.CodeInvalidDate, cutoff, "no parsable values", nil).
			WithSuggestion("at least one current-month cut-off date must use the DD/MM/YYYY layout")
	}
	return latest, nil
}

// IsSuspiciousOverdraft reports a low-band account whose current utilization
// exceeds 1 while its limit carries the sentinel value 1.
func IsSuspiciousOverdraft(band models.CreditBand, utilization, limit float64) bool {
	return band.IsLowTier() && utilization > 1 && limit == 1
}

// segmentStats counts why rows left the segmentation stage
type segmentStats struct {
	newCustomers int
	suspicious   int
	unbanded     int
}

// segmentCustomers adds tipo_cliente and keeps only banded loyal customers
// that are not suspicious overdrafts.
func segmentCustomers(df dataframe.DataFrame, window Window) (dataframe.DataFrame, segmentStats, error) {
	var stats segmentStats
	utilizationCol := schema.Month(schema.Utilization, 0)
	if err := requireColumns(df, "segmentation",
		schema.ColumnActivationDate, utilizationCol, schema.ColumnCreditLimit, schema.ColumnCreditBand); err != nil {
		return df, stats, err
	}

	activations := df.Col(schema.ColumnActivationDate)
	utilization := df.Col(utilizationCol).Float()
	limits := df.Col(schema.ColumnCreditLimit).Float()
	bands := df.Col(schema.ColumnCreditBand)

	n := df.Nrow()
	types := make([]string, n)
	keep := make([]bool, n)
	for i := 0; i < n; i++ {
		var activation time.Time
		ok := false
		if el := activations.Elem(i); !el.IsNA() {
			activation, ok = ParseDate(el.String())
		}
		customer := window.Classify(activation, ok)
		types[i] = customer.String()

		band := models.CreditBandNone
		if el := bands.Elem(i); !el.IsNA() {
			band = models.CreditBand(el.String())
		}

		switch {
		case customer == models.CustomerNew:
			stats.newCustomers++
		case IsSuspiciousOverdraft(band, utilization[i], limits[i]):
			stats.suspicious++
		case band == models.CreditBandNone:
			stats.unbanded++
		default:
			keep[i] = true
		}
	}

	out := keepRows(appendColumns(df, stringSeries(schema.ColumnCustomerType, types)), keep)
	return out, stats, frameError("segmentation", out)
}
