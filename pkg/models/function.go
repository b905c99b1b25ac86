// Package models defines the records produced by the analysis engine.
package models

// LineCounts classifies the lines of one function span.
// Invariant: Total == Code + Comment + Blank and Total covers the span
// from the first signature line through the closing brace, inclusive.
type LineCounts struct {
	Total   int `json:"total"`
	Code    int `json:"code"`
	Comment int `json:"comment"`
	Blank   int `json:"blank"`
}

// Consistent reports whether the classification sums to the total.
func (c LineCounts) Consistent() bool {
	return c.Total == c.Code+c.Comment+c.Blank
}

// ComplexityMetrics holds the structural metrics for one function body.
// Cyclomatic is always at least 1 (the base path); Nesting is 0 for a
// body with no nested control or block constructs.
type ComplexityMetrics struct {
	Cyclomatic uint32 `json:"cyclomatic"`
	Nesting    int    `json:"nesting"`
}

// FunctionRecord is the immutable per-function result: identity, line
// classification, and structural metrics. Records are created once per
// analysis run and never mutated; ordering is imposed only by the
// reporting layer.
type FunctionRecord struct {
	Name      string            `json:"name"`
	File      string            `json:"file"`
	StartLine uint32            `json:"start_line"`
	EndLine   uint32            `json:"end_line"`
	Lines     LineCounts        `json:"lines"`
	Metrics   ComplexityMetrics `json:"metrics"`
}

// FileResult holds all records for one source file, or the error that
// prevented the file from being analyzed. Failed files carry zero
// records, never a partial list.
type FileResult struct {
	Path      string           `json:"path"`
	Functions []FunctionRecord `json:"functions"`
	Error     string           `json:"error,omitempty"`
}

// Failed reports whether the file was skipped (unreadable or unparsable).
func (r FileResult) Failed() bool {
	return r.Error != ""
}

// Analysis is the aggregate across all analyzed files, exposed unsorted
// and unfiltered; sorting and filtering belong to the reporting layer.
type Analysis struct {
	Files   []FileResult `json:"files"`
	Summary Summary      `json:"summary"`
}

// Summary provides aggregate statistics across all function records.
type Summary struct {
	TotalFiles     int     `json:"total_files"`
	TotalFunctions int     `json:"total_functions"`
	FailedFiles    int     `json:"failed_files"`
	TotalCode      int     `json:"total_code"`
	AvgCyclomatic  float64 `json:"avg_cyclomatic"`
	MaxCyclomatic  uint32  `json:"max_cyclomatic"`
	MaxNesting     int     `json:"max_nesting"`
	P50Cyclomatic  uint32  `json:"p50_cyclomatic"`
	P90Cyclomatic  uint32  `json:"p90_cyclomatic"`
	P95Cyclomatic  uint32  `json:"p95_cyclomatic"`
}

// Records flattens all function records across files, in file order.
func (a *Analysis) Records() []FunctionRecord {
	var records []FunctionRecord
	for _, f := range a.Files {
		records = append(records, f.Functions...)
	}
	return records
}

// Thresholds defines the limits beyond which a function is flagged for
// refactoring in reports.
type Thresholds struct {
	MaxCyclomatic uint32 `json:"max_cyclomatic"`
	MaxNesting    int    `json:"max_nesting"`
}

// DefaultThresholds returns sensible defaults.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MaxCyclomatic: 10,
		MaxNesting:    4,
	}
}

// Exceeds reports whether the metrics break any threshold.
func (m ComplexityMetrics) Exceeds(t Thresholds) bool {
	return m.Cyclomatic > t.MaxCyclomatic || m.Nesting > t.MaxNesting
}
