// Package pipeline cleans credit-card portfolio exports.
//
// A run loads one export and passes the table through a fixed sequence of
// stages, each of which either removes rows or adds derived columns:
//  1. load the file (parsers.Loader)
//  2. assign Grupo_Credito from the credit limit
//  3. give the current-month columns their _M0 names
//  4. drop personal-loan products
//  5. keep loyal customers that are not suspicious overdrafts
//  6. project to the analysis columns, normalize dates and numeric nulls
//  7. inactivity flags and behavior, dropping irregular customers
//  8. payment completeness flags, counts and tiers
//  9. monthly and semester debt with its quartile category
//  10. delinquency stage names and the worst stage per customer
//
// Example usage:
//
//	cleaner, err := pipeline.NewCleaner(pipeline.DefaultConfig())
//	result, err := cleaner.Clean(ctx, "cartera.csv")
//	fmt.Println(result.Report)
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/google/uuid"

	"golang-credit-cleaning-service/internal/models"
	"golang-credit-cleaning-service/internal/parsers"
	"golang-credit-cleaning-service/internal/schema"
	"golang-credit-cleaning-service/pkg/errors"
	"golang-credit-cleaning-service/pkg/logger"
)

// Stage names, in execution order
const (
	StageLoad          = "load"
	StageCreditBand    = "credit_band"
	StageRename        = "rename"
	StageProductFilter = "product_filter"
	StageSegment       = "segment"
	StageProject       = "project"
	StageInactivity    = "inactivity"
	StagePayment       = "payment"
	StageDebt          = "debt"
	StageDelinquency   = "delinquency"
)

var stageOrder = []string{
	StageLoad, StageCreditBand, StageRename, StageProductFilter, StageSegment,
	StageProject, StageInactivity, StagePayment, StageDebt, StageDelinquency,
}

// Stages returns the stage names in execution order
func Stages() []string {
	out := make([]string, len(stageOrder))
	copy(out, stageOrder)
	return out
}

// Progress reports a completed stage of a run
type Progress struct {
	RunID          string            `json:"run_id"`
	CompletedSteps int               `json:"completed_steps"`
	TotalSteps     int               `json:"total_steps"`
	Stage          logger.StageStats `json:"stage"`
	Elapsed        time.Duration     `json:"elapsed"`
}

// PercentComplete returns the share of stages finished so far
func (p Progress) PercentComplete() float64 {
	if p.TotalSteps == 0 {
		return 0
	}
	return float64(p.CompletedSteps) / float64(p.TotalSteps) * 100
}

// ProgressCallback is called after each completed stage
type ProgressCallback func(Progress)

// RunReport summarizes what a cleaning run did to the portfolio
type RunReport struct {
	RunID     string              `json:"run_id"`
	Input     string              `json:"input"`
	StartedAt time.Time           `json:"started_at"`
	Duration  time.Duration       `json:"duration"`
	Stages    []logger.StageStats `json:"stages"`
	Load      *parsers.LoadStats  `json:"load"`
	Window    Window              `json:"window"`

	RowsIn  int `json:"rows_in"`
	RowsOut int `json:"rows_out"`

	UnbandedLoaded      int `json:"unbanded_loaded"`
	Unbanded            int `json:"unbanded"`
	PersonalLoans       int `json:"personal_loans"`
	NewCustomers        int `json:"new_customers"`
	SuspiciousOverdraft int `json:"suspicious_overdraft"`
	Irregular           int `json:"irregular"`
	FullyInactive       int `json:"fully_inactive"`
	InvalidDates        int `json:"invalid_dates"`

	ValueIssues      int                 `json:"value_issues"`
	IssuesByColumn   map[string]int      `json:"issues_by_column,omitempty"`
	IssueSamples     []errors.ValueIssue `json:"issue_samples,omitempty"`
	Quartiles        Quartiles           `json:"quartiles"`
	Behaviors        map[string]int      `json:"behaviors"`
	DebtCategories   map[string]int      `json:"debt_categories"`
	WorstDelinquency map[string]int      `json:"worst_delinquency"`
}

// String returns a one-line summary of the run
func (r *RunReport) String() string {
	return fmt.Sprintf("run %s: %d -> %d rows (personal loans %d, new %d, overdraft %d, unbanded %d, irregular %d) in %v",
		r.RunID, r.RowsIn, r.RowsOut, r.PersonalLoans, r.NewCustomers, r.SuspiciousOverdraft,
		r.Unbanded, r.Irregular, r.Duration)
}

// Result is the cleaned table together with the typed accounts behind it
type Result struct {
	Frame    dataframe.DataFrame
	Accounts []models.Account
	Report   *RunReport
}

// Cleaner runs the cleaning stages over portfolio files
type Cleaner struct {
	config *Config
	loader *parsers.Loader
	logger logger.Logger
}

// NewCleaner creates a new Cleaner with the given configuration
func NewCleaner(config *Config) (*Cleaner, error) {
	if config == nil {
		config = DefaultConfig()
	}

	if err := config.Validate(); err != nil {
		return nil, errors.ConfigurationError(errors.CodeInvalidConfig, "pipeline", config.Loader, err)
	}

	cfg, err := config.clone()
	if err != nil {
		return nil, errors.InternalError(errors.CodeUnexpectedError, "configuration copy", err)
	}

	log := cfg.Logger
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	log = log.WithComponent("pipeline")

	loader, err := parsers.NewLoader(cfg.Loader)
	if err != nil {
		return nil, err
	}

	return &Cleaner{
		config: cfg,
		loader: loader,
		logger: log,
	}, nil
}

// Clean loads path with the default configuration and returns the cleaned table
func Clean(path string) (dataframe.DataFrame, error) {
	cleaner, err := NewCleaner(DefaultConfig())
	if err != nil {
		return dataframe.DataFrame{}, err
	}
	result, err := cleaner.Clean(context.Background(), path)
	if err != nil {
		return dataframe.DataFrame{}, err
	}
	return result.Frame, nil
}

// run carries the state of one Clean call between stages
type run struct {
	ctx      context.Context
	log      logger.Logger
	tracker  *logger.StageTracker
	report   *RunReport
	issues   *errors.IssueCollector
	frame    dataframe.DataFrame
	accounts []models.Account
	cleaner  *Cleaner
}

// step runs one stage, recording its row counts and notifying callbacks.
// Cancellation is honored between stages only.
func (r *run) step(name string, fn func() error) error {
	if err := r.ctx.Err(); err != nil {
		return errors.InternalError(errors.CodeCancelled, "cleaning run", err).
			WithContext("stage", name)
	}

	stage := r.tracker.Begin(name, r.frame.Nrow())
	if err := fn(); err != nil {
		stage.Fail(err)
		return err
	}
	stats := stage.End(r.frame.Nrow())

	progress := Progress{
		RunID:          r.report.RunID,
		CompletedSteps: len(r.tracker.Stages()),
		TotalSteps:     len(stageOrder),
		Stage:          stats,
		Elapsed:        r.tracker.Elapsed(),
	}
	for _, callback := range r.cleaner.config.ProgressCallbacks {
		callback(progress)
	}
	return nil
}

// Clean runs every stage over the file at path
func (c *Cleaner) Clean(ctx context.Context, path string) (*Result, error) {
	runID := uuid.NewString()
	log := c.logger.WithRun(runID).WithField(logger.FieldFile, path)
	log.Info("Starting cleaning run")

	r := &run{
		ctx:     ctx,
		log:     log,
		tracker: logger.NewStageTracker("clean", log),
		cleaner: c,
		report: &RunReport{
			RunID:     runID,
			Input:     path,
			StartedAt: time.Now(),
		},
	}

	stages := []struct {
		name string
		fn   func() error
	}{
		{StageLoad, r.load},
		{StageCreditBand, r.creditBand},
		{StageRename, r.rename},
		{StageProductFilter, r.productFilter},
		{StageSegment, r.segment},
		{StageProject, r.project},
		{StageInactivity, r.inactivity},
		{StagePayment, r.payment},
		{StageDebt, r.debt},
		{StageDelinquency, r.delinquency},
	}
	for _, s := range stages {
		if err := r.step(s.name, s.fn); err != nil {
			log.WithError(err).WithField(logger.FieldStage, s.name).Error("Cleaning run failed")
			return nil, err
		}
	}

	r.finish()
	log.WithFields(logger.Fields{
		"rows_in":  r.report.RowsIn,
		"rows_out": r.report.RowsOut,
		"duration": r.report.Duration.String(),
	}).Info("Cleaning run completed")

	return &Result{
		Frame:    r.frame,
		Accounts: r.accounts,
		Report:   r.report,
	}, nil
}

func (r *run) load() error {
	loaded, err := r.cleaner.loader.WithLogger(r.log).Load(r.report.Input)
	if err != nil {
		return err
	}
	r.frame = loaded.Frame
	r.issues = loaded.Stats.Issues
	r.report.Load = loaded.Stats
	r.report.RowsIn = loaded.Frame.Nrow()
	return nil
}

func (r *run) creditBand() error {
	out, unbanded, err := assignCreditBands(r.frame)
	if err != nil {
		return err
	}
	r.frame = out
	r.report.UnbandedLoaded = unbanded
	if unbanded > 0 {
		r.log.WithField("rows", unbanded).Warn("Loaded rows without a credit band; those left after the product filter are dropped during segmentation")
	}
	return nil
}

func (r *run) rename() error {
	out, err := renameCurrentMonth(r.frame)
	if err != nil {
		return err
	}
	r.frame = out
	return nil
}

func (r *run) productFilter() error {
	out, dropped, err := dropPersonalLoans(r.frame)
	if err != nil {
		return err
	}
	r.frame = out
	r.report.PersonalLoans = dropped
	return nil
}

func (r *run) segment() error {
	reference, err := ReferenceDate(r.frame)
	if err != nil {
		return err
	}
	window := NewWindow(reference)
	r.report.Window = window

	out, stats, err := segmentCustomers(r.frame, window)
	if err != nil {
		return err
	}
	r.frame = out
	r.report.NewCustomers = stats.newCustomers
	r.report.SuspiciousOverdraft = stats.suspicious
	r.report.Unbanded = stats.unbanded

	r.log.WithFields(logger.Fields{
		"reference_date": reference.Format(OutputDateLayout),
		"window_start":   window.Start.Format(OutputDateLayout),
		"new_customers":  stats.newCustomers,
		"overdraft":      stats.suspicious,
		"unbanded":       stats.unbanded,
	}).Debug("Segmented customers")
	return nil
}

func (r *run) project() error {
	out, invalid, err := projectColumns(r.frame, r.issues)
	if err != nil {
		return err
	}
	r.frame = out
	r.report.InvalidDates = invalid
	if invalid > 0 {
		r.log.WithField("values", invalid).Warn("Unparsable dates replaced with nulls")
	}
	return nil
}

func (r *run) inactivity() error {
	accounts, err := buildAccounts(r.frame, r.issues)
	if err != nil {
		return err
	}

	out, kept, stats, err := applyInactivity(r.frame, accounts)
	if err != nil {
		return err
	}
	r.frame = out
	r.accounts = kept
	r.report.Irregular = stats.irregular
	r.report.FullyInactive = stats.fullyInactive
	if stats.fullyInactive > 0 {
		r.log.WithField("rows", stats.fullyInactive).Warn("Customers inactive for the whole window were dropped as irregular")
	}
	return nil
}

func (r *run) payment() error {
	out, err := applyPayments(r.frame, r.accounts)
	if err != nil {
		return err
	}
	r.frame = out
	return nil
}

func (r *run) debt() error {
	out, quartiles, err := applyDebt(r.frame, r.accounts)
	if err != nil {
		return err
	}
	r.frame = out
	r.report.Quartiles = quartiles
	return nil
}

func (r *run) delinquency() error {
	out, err := applyDelinquency(r.frame, r.accounts)
	if err != nil {
		return err
	}
	r.frame = out
	return nil
}

// finish fills in the report fields that summarize the final table
func (r *run) finish() {
	report := r.report
	report.Duration = r.tracker.Elapsed()
	report.Stages = r.tracker.Stages()
	report.RowsOut = r.frame.Nrow()
	report.ValueIssues = r.issues.Total()
	report.IssuesByColumn = r.issues.ByColumn()
	report.IssueSamples = r.issues.Samples()
	report.Behaviors = countValues(r.frame, schema.ColumnBehavior)
	report.DebtCategories = countValues(r.frame, schema.ColumnDebtCategory)
	report.WorstDelinquency = countValues(r.frame, schema.ColumnWorstDelinquency)
}

// countValues tallies the non-null values of a categorical column
func countValues(df dataframe.DataFrame, name string) map[string]int {
	counts := make(map[string]int)
	if !hasColumn(df, name) {
		return counts
	}
	col := df.Col(name)
	for i := 0; i < col.Len(); i++ {
		if el := col.Elem(i); !el.IsNA() {
			counts[el.String()]++
		}
	}
	return counts
}
