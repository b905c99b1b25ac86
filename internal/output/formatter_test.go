package output

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input string
		want  Format
	}{
		{"text", FormatText},
		{"TEXT", FormatText},
		{"json", FormatJSON},
		{"csv", FormatCSV},
		{"CSV", FormatCSV},
		{"markdown", FormatMarkdown},
		{"md", FormatMarkdown},
		{"", FormatText},
		{"invalid", FormatText},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := ParseFormat(tt.input)
			if got != tt.want {
				t.Errorf("ParseFormat(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNewFormatterWithFile(t *testing.T) {
	tmpDir := t.TempDir()
	outputPath := filepath.Join(tmpDir, "out.csv")

	f, err := NewFormatter(FormatCSV, outputPath, true)
	if err != nil {
		t.Fatalf("NewFormatter() error: %v", err)
	}

	if f.Colored() {
		t.Error("color should be disabled when writing to a file")
	}

	table := NewTable("", []string{"A", "B"}, [][]string{{"1", "2"}}, nil, nil)
	if err := f.Output(table); err != nil {
		t.Fatalf("Output() error: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}

	data, err := os.ReadFile(outputPath)
	if err != nil {
		t.Fatalf("ReadFile() error: %v", err)
	}
	want := "A,B\n1,2\n"
	if string(data) != want {
		t.Errorf("file contents = %q, want %q", data, want)
	}
}

func newTestTable() *Table {
	return NewTable(
		"Functions",
		[]string{"Function", "Total", "Code"},
		[][]string{
			{"main", "12", "9"},
			{"helper", "5", "4"},
		},
		[]string{"2 functions", "17", "13"},
		nil,
	)
}

func TestTable_RenderText(t *testing.T) {
	var buf bytes.Buffer
	if err := newTestTable().RenderText(&buf, false); err != nil {
		t.Fatalf("RenderText() error: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"Functions", "main", "helper", "12", "2 functions"} {
		if !strings.Contains(out, want) {
			t.Errorf("text output missing %q:\n%s", want, out)
		}
	}
}

func TestTable_RenderMarkdown(t *testing.T) {
	var buf bytes.Buffer
	if err := newTestTable().RenderMarkdown(&buf); err != nil {
		t.Fatalf("RenderMarkdown() error: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "## Functions") {
		t.Errorf("markdown output missing title:\n%s", out)
	}
	if !strings.Contains(out, "| Function | Total | Code |") {
		t.Errorf("markdown output missing header row:\n%s", out)
	}
	if !strings.Contains(out, "| --- | --- | --- |") {
		t.Errorf("markdown output missing separator row:\n%s", out)
	}
}

func TestTable_RenderCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := newTestTable().RenderCSV(&buf); err != nil {
		t.Fatalf("RenderCSV() error: %v", err)
	}

	want := "Function,Total,Code\nmain,12,9\nhelper,5,4\n"
	if buf.String() != want {
		t.Errorf("csv output = %q, want %q", buf.String(), want)
	}
}

func TestTable_RenderCSV_Quoting(t *testing.T) {
	table := NewTable("", []string{"Function", "File"},
		[][]string{{`spawn, then wait`, "src/run.rs"}}, nil, nil)

	var buf bytes.Buffer
	if err := table.RenderCSV(&buf); err != nil {
		t.Fatalf("RenderCSV() error: %v", err)
	}
	if !strings.Contains(buf.String(), `"spawn, then wait"`) {
		t.Errorf("comma-bearing cell not quoted: %q", buf.String())
	}
}

func TestTable_RenderData(t *testing.T) {
	data := newTestTable().RenderData()
	rows, ok := data.([]map[string]string)
	if !ok {
		t.Fatalf("RenderData() = %T, want []map[string]string", data)
	}
	if len(rows) != 2 {
		t.Fatalf("len(rows) = %d, want 2", len(rows))
	}
	if rows[0]["Function"] != "main" {
		t.Errorf("rows[0][Function] = %q, want main", rows[0]["Function"])
	}
}

func TestFormatter_OutputJSON(t *testing.T) {
	tmpDir := t.TempDir()
	outputPath := filepath.Join(tmpDir, "out.json")

	f, err := NewFormatter(FormatJSON, outputPath, false)
	if err != nil {
		t.Fatalf("NewFormatter() error: %v", err)
	}

	table := NewTable("", []string{"Name"}, [][]string{{"x"}}, nil,
		map[string]any{"count": 1})
	if err := f.Output(table); err != nil {
		t.Fatalf("Output() error: %v", err)
	}
	f.Close()

	data, err := os.ReadFile(outputPath)
	if err != nil {
		t.Fatalf("ReadFile() error: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded["count"] != float64(1) {
		t.Errorf("count = %v, want 1", decoded["count"])
	}
}

func TestReport_RenderCSVSkipsSections(t *testing.T) {
	rpt := &Report{
		Sections: []Renderable{
			newTestTable(),
			&Section{Title: "Summary", Content: "3 files"},
		},
	}

	var buf bytes.Buffer
	if err := rpt.RenderCSV(&buf); err != nil {
		t.Fatalf("RenderCSV() error: %v", err)
	}
	if strings.Contains(buf.String(), "Summary") {
		t.Errorf("csv output contains prose section: %q", buf.String())
	}
	if !strings.Contains(buf.String(), "main") {
		t.Errorf("csv output missing table rows: %q", buf.String())
	}
}

func TestSection_RenderText(t *testing.T) {
	s := &Section{
		Title:   "Summary",
		Content: "3 files analyzed",
		Sections: []Section{
			{Title: "Details", Content: "all good"},
		},
	}

	var buf bytes.Buffer
	if err := s.RenderText(&buf, false); err != nil {
		t.Fatalf("RenderText() error: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"Summary", "=======", "3 files analyzed", "Details", "-------"} {
		if !strings.Contains(out, want) {
			t.Errorf("text output missing %q:\n%s", want, out)
		}
	}
}

func TestFormatter_Warning(t *testing.T) {
	var buf bytes.Buffer
	f := &Formatter{format: FormatText, writer: &buf}

	f.Warning("nesting depth %d exceeds threshold %d", 5, 4)

	want := "WARNING: nesting depth 5 exceeds threshold 4\n"
	if buf.String() != want {
		t.Errorf("Warning() output = %q, want %q", buf.String(), want)
	}
}
