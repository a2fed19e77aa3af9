package errors

import (
	"fmt"
	"sort"
	"strings"
)

// ValueIssue describes a single cell that could not be interpreted and was
// replaced by a null value instead of aborting the run.
type ValueIssue struct {
	Column string    `json:"column"`
	Row    int       `json:"row"`
	Value  string    `json:"value"`
	Code   ErrorCode `json:"code"`
}

// String returns a human-readable description of the issue
func (i ValueIssue) String() string {
	return fmt.Sprintf("row %d, column '%s': '%s' (%s)", i.Row, i.Column, i.Value, i.Code)
}

// IssueCollector accumulates recovered per-value issues. Only the first
// maxSamples issues are retained; every issue is counted.
type IssueCollector struct {
	samples    []ValueIssue
	maxSamples int
	total      int
	byColumn   map[string]int
}

// NewIssueCollector creates a new collector keeping at most maxSamples samples
func NewIssueCollector(maxSamples int) *IssueCollector {
	if maxSamples < 0 {
		maxSamples = 0
	}
	return &IssueCollector{
		samples:    make([]ValueIssue, 0),
		maxSamples: maxSamples,
		byColumn:   make(map[string]int),
	}
}

// Add records an issue
func (c *IssueCollector) Add(issue ValueIssue) {
	c.total++
	c.byColumn[issue.Column]++
	if len(c.samples) < c.maxSamples {
		c.samples = append(c.samples, issue)
	}
}

// Total returns the number of recorded issues
func (c *IssueCollector) Total() int {
	return c.total
}

// HasIssues returns true if any issue has been recorded
func (c *IssueCollector) HasIssues() bool {
	return c.total > 0
}

// Samples returns the retained sample issues
func (c *IssueCollector) Samples() []ValueIssue {
	return c.samples
}

// ByColumn returns a copy of the per-column issue counts
func (c *IssueCollector) ByColumn() map[string]int {
	out := make(map[string]int, len(c.byColumn))
	for k, v := range c.byColumn {
		out[k] = v
	}
	return out
}

// Summary formats the per-column counts in a stable order
func (c *IssueCollector) Summary() string {
	if c.total == 0 {
		return "no value issues"
	}

	columns := make([]string, 0, len(c.byColumn))
	for column := range c.byColumn {
		columns = append(columns, column)
	}
	sort.Strings(columns)

	parts := make([]string, 0, len(columns))
	for _, column := range columns {
		parts = append(parts, fmt.Sprintf("%s: %d", column, c.byColumn[column]))
	}
	return fmt.Sprintf("%d value issues (%s)", c.total, strings.Join(parts, ", "))
}
