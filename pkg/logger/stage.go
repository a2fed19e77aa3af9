package logger

import (
	"fmt"
	"time"
)

// StageStats records what a single pipeline stage did to the table
type StageStats struct {
	Name     string        `json:"name"`
	RowsIn   int           `json:"rows_in"`
	RowsOut  int           `json:"rows_out"`
	Duration time.Duration `json:"duration"`
	Err      string        `json:"error,omitempty"`
}

// Dropped returns the number of rows removed by the stage
func (s StageStats) Dropped() int {
	if s.RowsIn < s.RowsOut {
		return 0
	}
	return s.RowsIn - s.RowsOut
}

// String returns a human-readable representation of the stage
func (s StageStats) String() string {
	return fmt.Sprintf("%s: %d -> %d rows in %v", s.Name, s.RowsIn, s.RowsOut, s.Duration)
}

// StageTracker logs the start and end of each stage of an ordered run and
// keeps the per-stage statistics. A tracker is not safe for concurrent use;
// the stages it observes run sequentially.
type StageTracker struct {
	logger    Logger
	operation string
	startTime time.Time
	stages    []StageStats
	clock     func() time.Time
}

// Stage is an in-flight stage returned by StageTracker.Begin
type Stage struct {
	tracker *StageTracker
	stats   StageStats
	started time.Time
}

// NewStageTracker creates a tracker for the named operation
func NewStageTracker(operation string, logger Logger) *StageTracker {
	if logger == nil {
		logger = GetGlobalLogger()
	}

	tracker := &StageTracker{
		logger:    logger.WithComponent("stages"),
		operation: operation,
		clock:     time.Now,
	}
	tracker.startTime = tracker.clock()

	tracker.logger.WithField("operation", operation).Debug("Starting operation")
	return tracker
}

// Begin starts a stage operating on rowsIn rows
func (t *StageTracker) Begin(name string, rowsIn int) *Stage {
	t.logger.WithFields(Fields{
		"operation": t.operation,
		FieldStage:  name,
		"rows_in":   rowsIn,
	}).Debug("Stage started")

	return &Stage{
		tracker: t,
		stats:   StageStats{Name: name, RowsIn: rowsIn},
		started: t.clock(),
	}
}

// End completes the stage with rowsOut surviving rows
func (s *Stage) End(rowsOut int) StageStats {
	s.stats.RowsOut = rowsOut
	s.stats.Duration = s.tracker.clock().Sub(s.started)
	s.tracker.stages = append(s.tracker.stages, s.stats)

	s.tracker.logger.WithFields(Fields{
		"operation": s.tracker.operation,
		FieldStage:  s.stats.Name,
		"rows_in":   s.stats.RowsIn,
		"rows_out":  rowsOut,
		"dropped":   s.stats.Dropped(),
		"duration":  s.stats.Duration.String(),
	}).Info("Stage completed")

	return s.stats
}

// Fail completes the stage with an error
func (s *Stage) Fail(err error) StageStats {
	s.stats.Duration = s.tracker.clock().Sub(s.started)
	s.stats.Err = err.Error()
	s.tracker.stages = append(s.tracker.stages, s.stats)

	s.tracker.logger.WithError(err).WithFields(Fields{
		"operation": s.tracker.operation,
		FieldStage:  s.stats.Name,
		"rows_in":   s.stats.RowsIn,
		"duration":  s.stats.Duration.String(),
	}).Error("Stage failed")

	return s.stats
}

// Stages returns the statistics of every finished stage, in order
func (t *StageTracker) Stages() []StageStats {
	out := make([]StageStats, len(t.stages))
	copy(out, t.stages)
	return out
}

// Elapsed returns the time since the tracker was created
func (t *StageTracker) Elapsed() time.Duration {
	return t.clock().Sub(t.startTime)
}

// TimedOperation executes a function and logs timing information
func TimedOperation(operation string, logger Logger, fn func() error) error {
	if logger == nil {
		logger = GetGlobalLogger()
	}
	start := time.Now()

	err := fn()

	fields := Fields{
		"operation": operation,
		"duration":  time.Since(start).String(),
	}
	if err != nil {
		fields["status"] = "error"
		logger.WithError(err).WithFields(fields).Error("Operation failed")
	} else {
		fields["status"] = "success"
		logger.WithFields(fields).Info("Operation completed successfully")
	}

	return err
}
