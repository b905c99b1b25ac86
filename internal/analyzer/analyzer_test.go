package analyzer

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/onah/fnloc/internal/cache"
	"github.com/onah/fnloc/internal/testutil"
)

const validSource = `
fn alpha(x: i32) -> i32 {
    if x > 0 {
        x
    } else {
        -x
    }
}

fn beta() -> i32 {
    0
}
`

func TestAnalyzeFile(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "lib.rs")
	testutil.WriteFile(t, path, validSource)

	a := New()
	defer a.Close()

	result := a.AnalyzeFile(path)
	if result.Failed() {
		t.Fatalf("AnalyzeFile failed: %s", result.Error)
	}
	if result.Path != path {
		t.Errorf("Path = %q, want %q", result.Path, path)
	}
	if len(result.Functions) != 2 {
		t.Fatalf("len(Functions) = %d, want 2", len(result.Functions))
	}
}

func TestAnalyzeFile_Fixture(t *testing.T) {
	a := New()
	defer a.Close()

	result := a.AnalyzeFile(filepath.Join("..", "..", "tests", "fixtures", "sample.rs"))
	if result.Failed() {
		t.Fatalf("AnalyzeFile failed: %s", result.Error)
	}

	want := []string{"Inventory::new", "Inventory::add", "Inventory::take", "total"}
	if len(result.Functions) != len(want) {
		t.Fatalf("len(Functions) = %d, want %d", len(result.Functions), len(want))
	}
	for i, name := range want {
		if result.Functions[i].Name != name {
			t.Errorf("Functions[%d].Name = %q, want %q", i, result.Functions[i].Name, name)
		}
	}

	take := result.Functions[2]
	if take.Metrics.Cyclomatic != 5 {
		t.Errorf("take Cyclomatic = %d, want 5 (three arms plus one guard)", take.Metrics.Cyclomatic)
	}
	for _, rec := range result.Functions {
		if !rec.Lines.Consistent() {
			t.Errorf("%s: inconsistent line counts %+v", rec.Name, rec.Lines)
		}
	}
}

func TestAnalyzeFile_Missing(t *testing.T) {
	a := New()
	defer a.Close()

	result := a.AnalyzeFile(filepath.Join(t.TempDir(), "absent.rs"))
	if !result.Failed() {
		t.Fatal("expected a failed result for a missing file")
	}
	if len(result.Functions) != 0 {
		t.Errorf("len(Functions) = %d, want 0", len(result.Functions))
	}
}

func TestAnalyzeSource_Malformed(t *testing.T) {
	a := New()
	defer a.Close()

	result := a.AnalyzeSource([]byte("fn broken( {\n"), "broken.rs")
	if !result.Failed() {
		t.Fatal("expected a failed result for malformed source")
	}
	if len(result.Functions) != 0 {
		t.Errorf("len(Functions) = %d, want 0 (no partial records)", len(result.Functions))
	}
}

func TestAnalyzeSource_Idempotent(t *testing.T) {
	a := New()
	defer a.Close()

	first := a.AnalyzeSource([]byte(validSource), "lib.rs")
	second := a.AnalyzeSource([]byte(validSource), "lib.rs")
	if !reflect.DeepEqual(first, second) {
		t.Error("repeated analysis of identical input produced different results")
	}
}

func TestAnalyzeProject(t *testing.T) {
	tmpDir := t.TempDir()
	testutil.CreateFileTree(t, tmpDir, map[string]string{
		"b.rs":      validSource,
		"a.rs":      "fn solo() -> i32 {\n    1\n}\n",
		"broken.rs": "fn broken( {\n",
	})

	a := New()
	defer a.Close()

	files := []string{
		filepath.Join(tmpDir, "b.rs"),
		filepath.Join(tmpDir, "a.rs"),
		filepath.Join(tmpDir, "broken.rs"),
	}
	analysis, err := a.AnalyzeProject(context.Background(), files, ProjectOptions{})
	if err != nil {
		t.Fatalf("AnalyzeProject failed: %v", err)
	}

	if len(analysis.Files) != 3 {
		t.Fatalf("len(Files) = %d, want 3", len(analysis.Files))
	}
	// Results are sorted by path regardless of input order.
	for i := 1; i < len(analysis.Files); i++ {
		if analysis.Files[i-1].Path > analysis.Files[i].Path {
			t.Errorf("Files out of order: %q after %q", analysis.Files[i].Path, analysis.Files[i-1].Path)
		}
	}

	s := analysis.Summary
	if s.TotalFiles != 3 {
		t.Errorf("TotalFiles = %d, want 3", s.TotalFiles)
	}
	if s.FailedFiles != 1 {
		t.Errorf("FailedFiles = %d, want 1", s.FailedFiles)
	}
	if s.TotalFunctions != 3 {
		t.Errorf("TotalFunctions = %d, want 3", s.TotalFunctions)
	}
	if s.MaxCyclomatic != 2 {
		t.Errorf("MaxCyclomatic = %d, want 2", s.MaxCyclomatic)
	}
	if s.AvgCyclomatic <= 1.0 || s.AvgCyclomatic >= 2.0 {
		t.Errorf("AvgCyclomatic = %f, want within (1, 2)", s.AvgCyclomatic)
	}
}

func TestAnalyzeProject_Cancelled(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "a.rs")
	testutil.WriteFile(t, path, validSource)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	a := New()
	defer a.Close()

	if _, err := a.AnalyzeProject(ctx, []string{path}, ProjectOptions{}); err == nil {
		t.Error("expected an error from a cancelled context")
	}
}

func TestAnalyzeProject_Deterministic(t *testing.T) {
	tmpDir := t.TempDir()
	testutil.CreateFileTree(t, tmpDir, map[string]string{
		"one.rs":   validSource,
		"two.rs":   "fn gamma() -> i32 {\n    2\n}\n",
		"three.rs": "fn delta() -> i32 {\n    3\n}\n",
	})
	files := []string{
		filepath.Join(tmpDir, "one.rs"),
		filepath.Join(tmpDir, "two.rs"),
		filepath.Join(tmpDir, "three.rs"),
	}

	a := New()
	defer a.Close()

	first, err := a.AnalyzeProject(context.Background(), files, ProjectOptions{Workers: 4})
	if err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	second, err := a.AnalyzeProject(context.Background(), files, ProjectOptions{Workers: 4})
	if err != nil {
		t.Fatalf("second run failed: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Error("runs over unchanged input differ")
	}
}

func TestAnalyzeProject_UsesAttachedCache(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "lib.rs")
	testutil.WriteFile(t, path, validSource)

	cacheDir := filepath.Join(tmpDir, "cache")
	c, err := cache.New(cacheDir, 1, true)
	if err != nil {
		t.Fatalf("cache.New failed: %v", err)
	}

	a := New().WithCache(c)
	defer a.Close()

	cold, err := a.AnalyzeProject(context.Background(), []string{path}, ProjectOptions{})
	if err != nil {
		t.Fatalf("AnalyzeProject failed: %v", err)
	}

	entries, err := os.ReadDir(cacheDir)
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	if len(entries) == 0 {
		t.Fatal("no cache entries written by the project run")
	}

	warm, err := a.AnalyzeProject(context.Background(), []string{path}, ProjectOptions{})
	if err != nil {
		t.Fatalf("second AnalyzeProject failed: %v", err)
	}
	if !reflect.DeepEqual(cold, warm) {
		t.Error("cached project run differs from the computed one")
	}
}

func TestAnalyzeFile_CachedResultMatches(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "lib.rs")
	testutil.WriteFile(t, path, validSource)

	c, err := cache.New(filepath.Join(tmpDir, "cache"), 1, true)
	if err != nil {
		t.Fatalf("cache.New failed: %v", err)
	}

	a := New().WithCache(c)
	defer a.Close()

	cold := a.AnalyzeFile(path)
	warm := a.AnalyzeFile(path)
	if !reflect.DeepEqual(cold, warm) {
		t.Error("cached result differs from computed result")
	}
}
