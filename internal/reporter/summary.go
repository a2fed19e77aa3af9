package reporter

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"sort"
	"time"

	"golang-credit-cleaning-service/internal/pipeline"
	"golang-credit-cleaning-service/pkg/errors"
)

// SummaryGenerator prints run reports for operators
type SummaryGenerator struct {
	config *OutputConfig
}

// NewSummaryGenerator creates a summary generator. A nil config uses the defaults.
func NewSummaryGenerator(config *OutputConfig) (*SummaryGenerator, error) {
	if config == nil {
		config = DefaultOutputConfig()
	}

	if err := config.Validate(); err != nil {
		return nil, errors.ConfigurationError(errors.CodeInvalidConfig, "summary", config.Summary, err)
	}

	return &SummaryGenerator{config: config}, nil
}

// Generate writes report to w in the configured summary format
func (sg *SummaryGenerator) Generate(report *pipeline.RunReport, w io.Writer) error {
	if report == nil {
		return errors.ValidationError(errors.CodeMissingField, "report", nil, nil)
	}

	switch sg.config.Summary {
	case SummaryConsole:
		return sg.generateConsole(report, w)
	case SummaryJSON:
		return sg.generateJSON(report, w)
	case SummaryNone:
		return nil
	default:
		return fmt.Errorf("unsupported summary format: %s", sg.config.Summary)
	}
}

// jsonQuartiles renders NaN quartiles as null
type jsonQuartiles struct {
	Q1 *float64 `json:"q1"`
	Q2 *float64 `json:"q2"`
	Q3 *float64 `json:"q3"`
}

func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func (sg *SummaryGenerator) generateJSON(report *pipeline.RunReport, w io.Writer) error {
	type alias pipeline.RunReport
	payload := struct {
		*alias
		Quartiles  jsonQuartiles `json:"quartiles"`
		DurationMS int64         `json:"duration_ms"`
	}{
		alias: (*alias)(report),
		Quartiles: jsonQuartiles{
			Q1: finite(report.Quartiles.Q1),
			Q2: finite(report.Quartiles.Q2),
			Q3: finite(report.Quartiles.Q3),
		},
		DurationMS: report.Duration.Milliseconds(),
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(payload)
}

func (sg *SummaryGenerator) generateConsole(report *pipeline.RunReport, w io.Writer) error {
	fmt.Fprintf(w, "PORTFOLIO CLEANING REPORT\n")
	fmt.Fprintf(w, "Run:      %s\n", report.RunID)
	fmt.Fprintf(w, "Input:    %s\n", report.Input)
	fmt.Fprintf(w, "Started:  %s\n", report.StartedAt.Format(time.RFC3339))
	fmt.Fprintf(w, "Duration: %v\n\n", report.Duration)

	fmt.Fprintf(w, "=== SUMMARY ===\n")
	fmt.Fprintf(w, "Rows loaded:  %d\n", report.RowsIn)
	fmt.Fprintf(w, "Rows kept:    %d (%.1f%%)\n", report.RowsOut, calculatePercentage(report.RowsOut, report.RowsIn))
	if !report.Window.Reference.IsZero() {
		fmt.Fprintf(w, "Reference:    %s (new customers from %s)\n",
			report.Window.Reference.Format("2006-01-02"), report.Window.Start.Format("2006-01-02"))
	}
	if report.Load != nil {
		fmt.Fprintf(w, "Source:       %s, %s, %d columns\n", report.Load.Format, report.Load.Codec, report.Load.Columns)
	}
	fmt.Fprintf(w, "\n")

	fmt.Fprintf(w, "=== ROWS REMOVED ===\n")
	removed := []struct {
		label string
		count int
	}{
		{"Personal loans", report.PersonalLoans},
		{"New customers", report.NewCustomers},
		{"Suspicious overdraft", report.SuspiciousOverdraft},
		{"Outside credit bands", report.Unbanded},
		{"Irregular inactivity", report.Irregular},
	}
	for _, r := range removed {
		fmt.Fprintf(w, "%-22s %d (%.1f%%)\n", r.label+":", r.count, calculatePercentage(r.count, report.RowsIn))
	}
	fmt.Fprintf(w, "Fully inactive (of irregular): %d\n\n", report.FullyInactive)

	if len(report.Stages) > 0 {
		fmt.Fprintf(w, "=== STAGES ===\n")
		for _, s := range report.Stages {
			line := fmt.Sprintf("%-16s %6d -> %6d  %v", s.Name, s.RowsIn, s.RowsOut, s.Duration)
			if s.Err != "" {
				line += "  FAILED: " + s.Err
			}
			fmt.Fprintf(w, "%s\n", line)
		}
		fmt.Fprintf(w, "\n")
	}

	fmt.Fprintf(w, "=== SEGMENTS ===\n")
	writeCounts(w, "Payment behavior", report.Behaviors, report.RowsOut)
	writeCounts(w, "Debt category", report.DebtCategories, report.RowsOut)
	writeCounts(w, "Worst delinquency", report.WorstDelinquency, report.RowsOut)

	fmt.Fprintf(w, "=== DEBT QUARTILES ===\n")
	fmt.Fprintf(w, "Q1: %s\n", formatQuartile(report.Quartiles.Q1))
	fmt.Fprintf(w, "Q2: %s\n", formatQuartile(report.Quartiles.Q2))
	fmt.Fprintf(w, "Q3: %s\n\n", formatQuartile(report.Quartiles.Q3))

	if report.ValueIssues > 0 || report.InvalidDates > 0 {
		fmt.Fprintf(w, "=== VALUE ISSUES ===\n")
		fmt.Fprintf(w, "Unparsable values replaced by null: %d\n", report.ValueIssues)
		fmt.Fprintf(w, "Unparsable dates replaced by null:  %d\n", report.InvalidDates)
		for _, column := range sortedKeys(report.IssuesByColumn) {
			fmt.Fprintf(w, "  %-24s %d\n", column, report.IssuesByColumn[column])
		}

		samples := report.IssueSamples
		if len(samples) > sg.config.MaxIssueSamples {
			samples = samples[:sg.config.MaxIssueSamples]
		}
		if len(samples) > 0 {
			fmt.Fprintf(w, "Samples:\n")
			for _, issue := range samples {
				fmt.Fprintf(w, "  %s\n", issue)
			}
		}
		fmt.Fprintf(w, "\n")
	}

	return nil
}

func writeCounts(w io.Writer, title string, counts map[string]int, total int) {
	fmt.Fprintf(w, "%s:\n", title)
	if len(counts) == 0 {
		fmt.Fprintf(w, "  (none)\n\n")
		return
	}
	for _, key := range sortedKeys(counts) {
		fmt.Fprintf(w, "  %-22s %d (%.1f%%)\n", key, counts[key], calculatePercentage(counts[key], total))
	}
	fmt.Fprintf(w, "\n")
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func formatQuartile(v float64) string {
	if math.IsNaN(v) {
		return "n/a"
	}
	return fmt.Sprintf("%.2f", v)
}

// calculatePercentage calculates percentage with safe division
func calculatePercentage(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}
