package pipeline

import (
	"fmt"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"golang-credit-cleaning-service/internal/models"
	"golang-credit-cleaning-service/internal/schema"
	"golang-credit-cleaning-service/pkg/errors"
)

// applyDelinquency recodes Ciclo_atraso_M0..M6 to stage names in place and
// appends the worst stage of each row. A code outside the stage table aborts.
func applyDelinquency(df dataframe.DataFrame, accounts []models.Account) (dataframe.DataFrame, error) {
	n := len(accounts)
	stages := make([][]string, models.MonthsInWindow)
	for offset := range stages {
		stages[offset] = make([]string, n)
	}
	worst := make([]string, n)

	row := make([]models.DelinquencyStage, models.MonthsInWindow)
	for i := range accounts {
		for offset, month := range accounts[i].Months {
			stage, err := month.DelinquencyStage()
			if err != nil {
				return df, errors.ValidationError(errors.CodeOutOfRange,
					schema.Month(schema.DelinquencyCode, offset), fmt.Sprint(month.DelinquencyCode), err).
					WithContext("row", i)
			}
			stages[offset][i] = stage.String()
			row[offset] = stage
		}
		stage, _ := models.WorstStage(row...)
		worst[i] = stage.String()
	}

	recoded := make([]series.Series, 0, models.MonthsInWindow)
	for offset := models.MonthsInWindow - 1; offset >= 0; offset-- {
		recoded = append(recoded, series.New(stages[offset], series.String, schema.Month(schema.DelinquencyCode, offset)))
	}

	out := replaceColumns(df, recoded...)
	out = appendColumns(out, series.New(worst, series.String, schema.ColumnWorstDelinquency))
	return out, frameError("delinquency", out)
}
