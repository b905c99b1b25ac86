// Package scanner finds Rust source files for analysis. It is a thin
// collaborator of the engine: the engine itself never touches the
// filesystem tree.
package scanner

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
	"github.com/onah/fnloc/pkg/config"
	"github.com/onah/fnloc/pkg/parser"
)

// Scanner finds source files in a directory.
type Scanner struct {
	config   *config.Config
	matchers []gitignore.Matcher
}

// New creates a new file scanner.
func New(cfg *config.Config) *Scanner {
	if cfg == nil {
		cfg = config.Default()
	}
	return &Scanner{config: cfg}
}

// findGitRoot finds the root of the git repository by looking for a .git
// directory. Returns empty string if not in a git repository.
func findGitRoot(start string) string {
	dir := start
	for {
		gitDir := filepath.Join(dir, ".git")
		if info, err := os.Stat(gitDir); err == nil && info.IsDir() {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// loadExcludePatterns combines config exclude patterns (parsed as gitignore
// syntax) with the repository's .gitignore files when enabled.
func (s *Scanner) loadExcludePatterns(root string) {
	var patterns []gitignore.Pattern

	for _, pattern := range s.config.Exclude.Patterns {
		patterns = append(patterns, gitignore.ParsePattern(pattern, nil))
	}
	for _, dir := range s.config.Exclude.Dirs {
		patterns = append(patterns, gitignore.ParsePattern(dir+"/", nil))
	}

	if s.config.Exclude.Gitignore {
		if gitRoot := findGitRoot(root); gitRoot != "" {
			fsys := osfs.New(gitRoot)
			if gitPatterns, err := gitignore.ReadPatterns(fsys, nil); err == nil {
				patterns = append(patterns, gitPatterns...)
			}
		}
	}

	if len(patterns) > 0 {
		s.matchers = append(s.matchers, gitignore.NewMatcher(patterns))
	}
}

// isExcluded checks if a path matches any exclusion pattern.
func (s *Scanner) isExcluded(path string, isDir bool) bool {
	if len(s.matchers) == 0 {
		return false
	}

	pathParts := strings.Split(path, string(filepath.Separator))
	for _, m := range s.matchers {
		if m.Match(pathParts, isDir) {
			return true
		}
	}
	return false
}

// ScanDir recursively scans a directory for Rust source files. Symlinks that
// escape the root are skipped.
func (s *Scanner) ScanDir(root string) ([]string, error) {
	files := make([]string, 0, 256)

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	absRoot, err = filepath.EvalSymlinks(absRoot)
	if err != nil {
		return nil, err
	}

	s.loadExcludePatterns(root)

	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}

		relPath, _ := filepath.Rel(root, path)

		if d.Type()&fs.ModeSymlink != 0 {
			resolved, err := filepath.EvalSymlinks(path)
			if err != nil || !isWithinRoot(resolved, absRoot) {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
		}

		if d.IsDir() {
			if s.isExcluded(relPath, true) {
				return filepath.SkipDir
			}
			return nil
		}

		if s.isExcluded(relPath, false) {
			return nil
		}
		if parser.IsRustFile(path) {
			files = append(files, path)
		}

		return nil
	})

	return files, walkErr
}

// ScanPaths resolves a mix of files and directories into the flat list of
// Rust files to analyze, preserving argument order.
func (s *Scanner) ScanPaths(paths []string) ([]string, error) {
	var files []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		if info.IsDir() {
			found, err := s.ScanDir(p)
			if err != nil {
				return nil, err
			}
			files = append(files, found...)
			continue
		}
		if parser.IsRustFile(p) {
			files = append(files, p)
		}
	}
	return files, nil
}

// isWithinRoot checks if a path is contained within the root directory.
func isWithinRoot(path, root string) bool {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return false
	}

	absPath = filepath.Clean(absPath)
	root = filepath.Clean(root)

	return absPath == root || strings.HasPrefix(absPath, root+string(filepath.Separator))
}
