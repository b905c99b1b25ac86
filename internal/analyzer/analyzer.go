// Package analyzer implements the per-function metrics engine: span
// extraction, line classification, and structural complexity.
package analyzer

import (
	"context"
	"encoding/json"
	"os"
	"sort"

	"github.com/onah/fnloc/internal/cache"
	"github.com/onah/fnloc/internal/fileproc"
	"github.com/onah/fnloc/pkg/models"
	"github.com/onah/fnloc/pkg/parser"
	"gonum.org/v1/gonum/stat"
)

// FunctionAnalyzer computes per-function line counts and complexity metrics.
type FunctionAnalyzer struct {
	parser *parser.Parser
	cache  *cache.Cache
}

// ProjectOptions configures a whole-project analysis run.
type ProjectOptions struct {
	Workers    int
	Cache      *cache.Cache
	OnProgress fileproc.ProgressFunc
}

// New creates a new function analyzer.
func New() *FunctionAnalyzer {
	return &FunctionAnalyzer{parser: parser.New()}
}

// WithCache attaches a record cache consulted by AnalyzeFile and, unless
// ProjectOptions overrides it, by AnalyzeProject.
func (a *FunctionAnalyzer) WithCache(c *cache.Cache) *FunctionAnalyzer {
	a.cache = c
	return a
}

// AnalyzeFile analyzes a single file. Unreadable or unparsable files yield a
// FileResult carrying the error and zero records; they never abort a run.
func (a *FunctionAnalyzer) AnalyzeFile(path string) models.FileResult {
	return analyzeFile(a.parser, path, a.cache)
}

// AnalyzeSource analyzes raw source text as if it were the given file.
func (a *FunctionAnalyzer) AnalyzeSource(source []byte, path string) models.FileResult {
	return analyzeSource(a.parser, source, path)
}

// AnalyzeProject analyzes all files in parallel and aggregates the results.
// File order in the output is deterministic (sorted by path) regardless of
// worker scheduling, so re-running on unchanged input reproduces the same
// record sequence. Per-file failures are collected, not fatal; the returned
// error is only non-nil when the context is cancelled.
func (a *FunctionAnalyzer) AnalyzeProject(ctx context.Context, files []string, opts ProjectOptions) (*models.Analysis, error) {
	fileCache := opts.Cache
	if fileCache == nil {
		fileCache = a.cache
	}

	results, procErrs := fileproc.MapFilesWithContext(ctx, files, opts.Workers, func(psr *parser.Parser, path string) (models.FileResult, error) {
		return analyzeFile(psr, path, fileCache), nil
	}, opts.OnProgress)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	// Worker errors other than cancellation cannot happen: analyzeFile
	// reports failures inside the FileResult itself.
	_ = procErrs

	sort.Slice(results, func(i, j int) bool { return results[i].Path < results[j].Path })

	analysis := &models.Analysis{Files: results}
	analysis.Summary = summarize(results)
	return analysis, nil
}

// Close releases analyzer resources.
func (a *FunctionAnalyzer) Close() {
	a.parser.Close()
}

// analyzeFile reads, parses, and analyzes one file, consulting the cache
// keyed by content hash when one is configured.
func analyzeFile(psr *parser.Parser, path string, c *cache.Cache) models.FileResult {
	source, err := os.ReadFile(path)
	if err != nil {
		return models.FileResult{Path: path, Error: err.Error()}
	}

	if c != nil {
		hash := cache.HashBytes(source)
		if data, ok := c.GetWithHash(path, hash); ok {
			var cached models.FileResult
			if err := json.Unmarshal(data, &cached); err == nil && cached.Path == path {
				return cached
			}
		}
		result := analyzeSource(psr, source, path)
		if data, err := json.Marshal(result); err == nil {
			_ = c.SetWithHash(path, hash, data)
		}
		return result
	}

	return analyzeSource(psr, source, path)
}

// analyzeSource runs the engine over one file's text: parse once, extract
// spans, classify lines once for the whole file, then fold each span's
// subtree into a record.
func analyzeSource(psr *parser.Parser, source []byte, path string) models.FileResult {
	result, err := psr.Parse(source, path)
	if err != nil {
		return models.FileResult{Path: path, Error: err.Error()}
	}
	defer result.Close()

	classes := ClassifyLines(result)
	spans := ExtractSpans(result)

	fr := models.FileResult{
		Path:      path,
		Functions: make([]models.FunctionRecord, 0, len(spans)),
	}
	for _, span := range spans {
		fr.Functions = append(fr.Functions, buildRecord(span, path, classes, source))
	}
	return fr
}

// buildRecord composes one immutable FunctionRecord from a span, the file's
// line classification, and the span's subtree metrics.
func buildRecord(span FunctionSpan, path string, classes []LineClass, source []byte) models.FunctionRecord {
	return models.FunctionRecord{
		Name:      span.Name,
		File:      path,
		StartLine: span.StartLine,
		EndLine:   span.EndLine,
		Lines:     CountRange(classes, span.StartLine, span.EndLine),
		Metrics:   Metrics(span.Body, source),
	}
}

// summarize computes aggregate statistics over all records.
func summarize(files []models.FileResult) models.Summary {
	s := models.Summary{TotalFiles: len(files)}

	var cyclomatic []float64
	var totalCyc uint64
	for _, f := range files {
		if f.Failed() {
			s.FailedFiles++
			continue
		}
		for _, fn := range f.Functions {
			s.TotalFunctions++
			s.TotalCode += fn.Lines.Code
			totalCyc += uint64(fn.Metrics.Cyclomatic)
			cyclomatic = append(cyclomatic, float64(fn.Metrics.Cyclomatic))
			if fn.Metrics.Cyclomatic > s.MaxCyclomatic {
				s.MaxCyclomatic = fn.Metrics.Cyclomatic
			}
			if fn.Metrics.Nesting > s.MaxNesting {
				s.MaxNesting = fn.Metrics.Nesting
			}
		}
	}

	if s.TotalFunctions > 0 {
		s.AvgCyclomatic = float64(totalCyc) / float64(s.TotalFunctions)
		sort.Float64s(cyclomatic)
		s.P50Cyclomatic = uint32(stat.Quantile(0.50, stat.Empirical, cyclomatic, nil))
		s.P90Cyclomatic = uint32(stat.Quantile(0.90, stat.Empirical, cyclomatic, nil))
		s.P95Cyclomatic = uint32(stat.Quantile(0.95, stat.Empirical, cyclomatic, nil))
	}
	return s
}
