// Package report turns analysis results into renderable tables.
package report

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/onah/fnloc/internal/output"
	"github.com/onah/fnloc/pkg/models"
)

// SortKey selects the column functions are ordered by.
type SortKey string

const (
	SortCode       SortKey = "code"
	SortTotal      SortKey = "total"
	SortComments   SortKey = "comments"
	SortName       SortKey = "name"
	SortComplexity SortKey = "complexity"
	SortNesting    SortKey = "nesting"
)

// ParseSortKey converts a string to a SortKey, defaulting to code.
func ParseSortKey(s string) (SortKey, error) {
	switch strings.ToLower(s) {
	case "", "code":
		return SortCode, nil
	case "total":
		return SortTotal, nil
	case "comments":
		return SortComments, nil
	case "name":
		return SortName, nil
	case "complexity":
		return SortComplexity, nil
	case "nesting":
		return SortNesting, nil
	default:
		return "", fmt.Errorf("unknown sort key %q", s)
	}
}

// Options controls how the function table is assembled. Color only affects
// cell highlighting; threshold checks themselves run regardless, so warning
// lists stay available for uncolored and file output.
type Options struct {
	Sort       SortKey
	MinLines   int
	Limit      int
	Thresholds models.Thresholds
	Color      bool
	Verbose    bool
}

// Headers is the column order shared by every output format.
var Headers = []string{"Function", "File", "Total", "Code", "Comment", "Blank", "Complexity", "Nesting"}

// Build assembles the report from an analysis. Records below MinLines of
// code are dropped, the rest are sorted and truncated to Limit.
func Build(analysis *models.Analysis, opts Options) *output.Report {
	records := filter(analysis.Records(), opts.MinLines)
	sortRecords(records, opts.Sort)
	if opts.Limit > 0 && len(records) > opts.Limit {
		records = records[:opts.Limit]
	}

	rows := make([][]string, len(records))
	for i, r := range records {
		rows[i] = row(r, opts.Thresholds, opts.Color)
	}

	rpt := &output.Report{
		Sections: []output.Renderable{
			output.NewTable("", Headers, rows, footer(records), records),
		},
		Data: map[string]any{
			"functions": records,
			"summary":   analysis.Summary,
		},
	}

	if opts.Verbose {
		rpt.Sections = append(rpt.Sections, summarySection(analysis))
	}
	return rpt
}

// filter keeps records with at least min lines of code.
func filter(records []models.FunctionRecord, min int) []models.FunctionRecord {
	if min <= 0 {
		return records
	}
	kept := records[:0:0]
	for _, r := range records {
		if r.Lines.Code >= min {
			kept = append(kept, r)
		}
	}
	return kept
}

// sortRecords orders records by the given key. Every ordering is stable
// with name then file as the final tie-break, so output is deterministic.
func sortRecords(records []models.FunctionRecord, key SortKey) {
	less := func(a, b models.FunctionRecord) bool {
		switch key {
		case SortTotal:
			if a.Lines.Total != b.Lines.Total {
				return a.Lines.Total > b.Lines.Total
			}
		case SortComments:
			if a.Lines.Comment != b.Lines.Comment {
				return a.Lines.Comment > b.Lines.Comment
			}
		case SortName:
			// fall through to the name tie-break
		case SortComplexity:
			if a.Metrics.Cyclomatic != b.Metrics.Cyclomatic {
				return a.Metrics.Cyclomatic > b.Metrics.Cyclomatic
			}
		case SortNesting:
			if a.Metrics.Nesting != b.Metrics.Nesting {
				return a.Metrics.Nesting > b.Metrics.Nesting
			}
		default:
			if a.Lines.Code != b.Lines.Code {
				return a.Lines.Code > b.Lines.Code
			}
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.File < b.File
	}
	sort.SliceStable(records, func(i, j int) bool {
		return less(records[i], records[j])
	})
}

// row formats a single record, coloring metric cells that cross thresholds
// when colored output is on.
func row(r models.FunctionRecord, th models.Thresholds, colored bool) []string {
	return []string{
		r.Name,
		fmt.Sprintf("%s:%d", r.File, r.StartLine),
		fmt.Sprintf("%d", r.Lines.Total),
		fmt.Sprintf("%d", r.Lines.Code),
		fmt.Sprintf("%d", r.Lines.Comment),
		fmt.Sprintf("%d", r.Lines.Blank),
		output.MetricColor(colored && exceedsCyclomatic(r, th),
			fmt.Sprintf("%d", r.Metrics.Cyclomatic)),
		output.MetricColor(colored && exceedsNesting(r, th),
			fmt.Sprintf("%d", r.Metrics.Nesting)),
	}
}

func exceedsCyclomatic(r models.FunctionRecord, th models.Thresholds) bool {
	return th.MaxCyclomatic > 0 && r.Metrics.Cyclomatic > th.MaxCyclomatic
}

func exceedsNesting(r models.FunctionRecord, th models.Thresholds) bool {
	return th.MaxNesting > 0 && r.Metrics.Nesting > th.MaxNesting
}

// Warnings lists every function whose metrics cross the thresholds, in
// record order, for the post-table listing in text mode.
func Warnings(analysis *models.Analysis, th models.Thresholds) []string {
	var msgs []string
	for _, r := range analysis.Records() {
		if exceedsCyclomatic(r, th) {
			msgs = append(msgs, fmt.Sprintf("%s:%d %s - cyclomatic complexity %d exceeds threshold %d",
				r.File, r.StartLine, r.Name, r.Metrics.Cyclomatic, th.MaxCyclomatic))
		}
		if exceedsNesting(r, th) {
			msgs = append(msgs, fmt.Sprintf("%s:%d %s - nesting depth %d exceeds threshold %d",
				r.File, r.StartLine, r.Name, r.Metrics.Nesting, th.MaxNesting))
		}
	}
	return msgs
}

// footer totals the line columns over the displayed records.
func footer(records []models.FunctionRecord) []string {
	if len(records) == 0 {
		return nil
	}
	var total, code, comment, blank int
	for _, r := range records {
		total += r.Lines.Total
		code += r.Lines.Code
		comment += r.Lines.Comment
		blank += r.Lines.Blank
	}
	p := message.NewPrinter(language.English)
	return []string{
		p.Sprintf("%d functions", len(records)),
		"",
		p.Sprintf("%d", total),
		p.Sprintf("%d", code),
		p.Sprintf("%d", comment),
		p.Sprintf("%d", blank),
		"",
		"",
	}
}

// summarySection describes the project-level aggregates.
func summarySection(analysis *models.Analysis) *output.Section {
	s := analysis.Summary
	p := message.NewPrinter(language.English)
	var b strings.Builder
	p.Fprintf(&b, "Files analyzed:   %d (%d failed)\n", s.TotalFiles, s.FailedFiles)
	p.Fprintf(&b, "Functions:        %d\n", s.TotalFunctions)
	p.Fprintf(&b, "Lines of code:    %d\n", s.TotalCode)
	p.Fprintf(&b, "Avg complexity:   %.2f\n", s.AvgCyclomatic)
	p.Fprintf(&b, "Max complexity:   %d\n", s.MaxCyclomatic)
	p.Fprintf(&b, "Max nesting:      %d\n", s.MaxNesting)
	p.Fprintf(&b, "P50/P90/P95:      %d / %d / %d", s.P50Cyclomatic, s.P90Cyclomatic, s.P95Cyclomatic)
	return &output.Section{
		Title:   "Summary",
		Content: b.String(),
		Data:    s,
	}
}

// Failures lists per-file parse errors for verbose output.
func Failures(analysis *models.Analysis) []string {
	var msgs []string
	for _, f := range analysis.Files {
		if f.Failed() {
			msgs = append(msgs, fmt.Sprintf("%s: %s", f.Path, f.Error))
		}
	}
	return msgs
}
