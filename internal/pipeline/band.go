package pipeline

import (
	"math"

	"github.com/go-gota/gota/dataframe"

	"golang-credit-cleaning-service/internal/models"
	"golang-credit-cleaning-service/internal/schema"
)

// Right-closed upper edges of the Low, Medium-Low and Medium-High bands.
// The High band runs from the last edge to the observed maximum limit.
var bandEdges = [...]float64{1000, 5000, 15000}

// TopEdge returns the upper edge of the High band: the largest defined limit
func TopEdge(limits []float64) float64 {
	top := math.NaN()
	for _, limit := range limits {
		if math.IsNaN(limit) {
			continue
		}
		if math.IsNaN(top) || limit > top {
			top = limit
		}
	}
	return top
}

// BandFor assigns a credit limit to its band given the High band's upper edge.
// Limits at or below zero, undefined limits and limits above top have no band.
// When top does not exceed the Medium-High edge the High band is empty.
func BandFor(limit, top float64) models.CreditBand {
	if math.IsNaN(limit) || limit <= 0 {
		return models.CreditBandNone
	}

	switch {
	case limit <= bandEdges[0]:
		return models.CreditBandLow
	case limit <= bandEdges[1]:
		return models.CreditBandMediumLow
	case limit <= bandEdges[2]:
		return models.CreditBandMediumHigh
	case top > bandEdges[2] && limit <= top:
		return models.CreditBandHigh
	default:
		return models.CreditBandNone
	}
}

// assignCreditBands adds Grupo_Credito computed over the current rows and
// returns the number of rows left without a band.
func assignCreditBands(df dataframe.DataFrame) (dataframe.DataFrame, int, error) {
	if err := requireColumns(df, "credit banding", schema.ColumnCreditLimit); err != nil {
		return df, 0, err
	}

	limits := df.Col(schema.ColumnCreditLimit).Float()
	top := TopEdge(limits)

	bands := make([]string, len(limits))
	unbanded := 0
	for i, limit := range limits {
		band := BandFor(limit, top)
		if band == models.CreditBandNone {
			unbanded++
		}
		bands[i] = band.String()
	}

	out := appendColumns(df, stringSeries(schema.ColumnCreditBand, bands))
	return out, unbanded, frameError("credit banding", out)
}
