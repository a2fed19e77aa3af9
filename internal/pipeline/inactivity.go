package pipeline

import (
	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"golang-credit-cleaning-service/internal/models"
	"golang-credit-cleaning-service/internal/schema"
)

// Inactivity folds an account's months in chronological order (M6 -> M0)
// into its inactivity profile.
func Inactivity(account *models.Account) models.InactivityProfile {
	var profile models.InactivityProfile
	months := account.Chronological()

	run, first := 0, -1
	for i, month := range months {
		if !month.IsInactive() {
			run = 0
			continue
		}
		profile.Inactive[models.MonthsInWindow-1-i] = true
		profile.InactiveMonths++
		run++
		if run > profile.LongestStreak {
			profile.LongestStreak = run
		}
		if first < 0 {
			first = i
		}
	}

	// The month before the first inactive one, one step toward M6. There is
	// none when the account is already inactive in M6.
	if first > 0 {
		profile.DebtBeforeStreak = months[first-1].HasBalance()
	}

	profile.Behavior = ClassifyBehavior(profile.LongestStreak, profile.DebtBeforeStreak)
	return profile
}

// ClassifyBehavior applies the behavior rules in priority order. A streak
// covering the whole window matches no rule and is irregular.
func ClassifyBehavior(streak int, debtBeforeStreak bool) models.Behavior {
	switch {
	case streak >= 4 && streak <= 6 && !debtBeforeStreak:
		return models.BehaviorInactiveNoDebt
	case streak >= 1 && streak <= 6 && debtBeforeStreak:
		return models.BehaviorInactiveWithDebt
	case streak == 0:
		return models.BehaviorActive
	default:
		return models.BehaviorIrregular
	}
}

// inactivityStats counts irregular rows and the fully inactive subset of them
type inactivityStats struct {
	irregular     int
	fullyInactive int
}

// applyInactivity appends the inactivity columns and drops irregular rows
// from both the table and the accounts.
func applyInactivity(df dataframe.DataFrame, accounts []models.Account) (dataframe.DataFrame, []models.Account, inactivityStats, error) {
	var stats inactivityStats
	n := len(accounts)

	flags := make([][]bool, models.MonthsInWindow)
	for offset := range flags {
		flags[offset] = make([]bool, n)
	}
	counts := make([]int, n)
	streaks := make([]int, n)
	debts := make([]bool, n)
	behaviors := make([]string, n)
	keep := make([]bool, n)

	for i := range accounts {
		profile := Inactivity(&accounts[i])
		for offset, inactive := range profile.Inactive {
			flags[offset][i] = inactive
		}
		counts[i] = profile.InactiveMonths
		streaks[i] = profile.LongestStreak
		debts[i] = profile.DebtBeforeStreak
		behaviors[i] = profile.Behavior.String()

		if profile.Behavior == models.BehaviorIrregular {
			stats.irregular++
			if profile.LongestStreak == models.MonthsInWindow {
				stats.fullyInactive++
			}
			continue
		}
		keep[i] = true
	}

	cols := make([]series.Series, 0, models.MonthsInWindow+4)
	for offset := models.MonthsInWindow - 1; offset >= 0; offset-- {
		cols = append(cols, series.New(flags[offset], series.Bool, schema.Month(schema.Inactive, offset)))
	}
	cols = append(cols,
		series.New(counts, series.Int, schema.ColumnInactiveMonths),
		series.New(streaks, series.Int, schema.ColumnLongestStreak),
		series.New(debts, series.Bool, schema.ColumnDebtBeforeStreak),
		series.New(behaviors, series.String, schema.ColumnBehavior),
	)

	out := keepRows(appendColumns(df, cols...), keep)
	if err := frameError("inactivity", out); err != nil {
		return df, accounts, stats, err
	}
	return out, keepAccounts(accounts, keep), stats, nil
}

// keepAccounts filters accounts by keep and renumbers their rows densely
func keepAccounts(accounts []models.Account, keep []bool) []models.Account {
	out := make([]models.Account, 0, len(accounts))
	for i, account := range accounts {
		if !keep[i] {
			continue
		}
		account.Row = len(out)
		out = append(out, account)
	}
	return out
}
