package runner

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gobwas/glob"

	"github.com/mvp-joe/intl-extract/internal/parsers"
)

// compiledPattern holds both the pattern string and compiled glob
type compiledPattern struct {
	pattern string
	glob    glob.Glob
}

// Discovery finds the source files of a project with include and ignore globs.
// Patterns are matched against slash-separated paths relative to the root.
type Discovery struct {
	rootDir        string
	includePattern []compiledPattern
	ignorePatterns []compiledPattern
}

// NewDiscovery compiles the include and ignore patterns for rootDir.
func NewDiscovery(rootDir string, include, ignore []string) (*Discovery, error) {
	abs, err := filepath.Abs(rootDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve root %s: %w", rootDir, err)
	}

	d := &Discovery{rootDir: abs}
	if d.includePattern, err = compilePatterns(include); err != nil {
		return nil, err
	}
	if d.ignorePatterns, err = compilePatterns(ignore); err != nil {
		return nil, err
	}
	return d, nil
}

func compilePatterns(patterns []string) ([]compiledPattern, error) {
	out := make([]compiledPattern, 0, len(patterns))
	for _, pattern := range patterns {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
		}
		out = append(out, compiledPattern{pattern: pattern, glob: g})
	}
	return out, nil
}

// Root returns the absolute project root.
func (d *Discovery) Root() string {
	return d.rootDir
}

// Discover returns the sorted, de-duplicated absolute paths of the files to
// extract. With no paths the whole root is walked. A directory argument is
// walked with the same rules; a file argument is taken as-is as long as the
// parser supports its extension.
func (d *Discovery) Discover(paths ...string) ([]string, error) {
	if len(paths) == 0 {
		paths = []string{d.rootDir}
	}

	seen := make(map[string]bool)
	var files []string
	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			files = append(files, p)
		}
	}

	for _, p := range paths {
		abs, err := d.abs(p)
		if err != nil {
			return nil, err
		}
		info, err := os.Stat(abs)
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", p, err)
		}
		if !info.IsDir() {
			if !parsers.Supports(abs) {
				return nil, fmt.Errorf("unsupported source file: %s", p)
			}
			add(abs)
			continue
		}
		if err := d.walk(abs, add); err != nil {
			return nil, err
		}
	}

	sort.Strings(files)
	return files, nil
}

func (d *Discovery) walk(dir string, add func(string)) error {
	return filepath.WalkDir(dir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			if path != dir && d.SkipDir(path) {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Match(path) {
			add(path)
		}
		return nil
	})
}

func (d *Discovery) abs(p string) (string, error) {
	if !filepath.IsAbs(p) {
		p = filepath.Join(d.rootDir, p)
	}
	return filepath.Clean(p), nil
}

// rel returns the slash-separated path of p relative to the root, or false
// when p lies outside it.
func (d *Discovery) rel(p string) (string, bool) {
	relPath, err := filepath.Rel(d.rootDir, p)
	if err != nil || relPath == ".." || strings.HasPrefix(relPath, ".."+string(filepath.Separator)) {
		return "", false
	}
	// Normalize path separators for glob matching
	return filepath.ToSlash(relPath), true
}

// Match reports whether the file at path should be extracted.
func (d *Discovery) Match(path string) bool {
	if !parsers.Supports(path) {
		return false
	}
	relPath, ok := d.rel(path)
	if !ok {
		return false
	}
	if d.shouldIgnore(relPath) {
		return false
	}
	return matchesAnyPattern(relPath, d.includePattern)
}

// SkipDir reports whether a directory and everything below it is ignored.
func (d *Discovery) SkipDir(path string) bool {
	relPath, ok := d.rel(path)
	if !ok {
		return true
	}
	if relPath == "." {
		return false
	}
	// A directory "node_modules" is ignored by the pattern "node_modules/**".
	return d.shouldIgnore(relPath) || matchesAnyPattern(relPath+"/", d.ignorePatterns)
}

// shouldIgnore checks if a path matches any ignore pattern.
func (d *Discovery) shouldIgnore(relPath string) bool {
	// Always ignore our own state directory
	if relPath == ".intl-extract" || strings.HasPrefix(relPath, ".intl-extract/") {
		return true
	}
	return matchesAnyPattern(relPath, d.ignorePatterns)
}

// matchesAnyPattern checks if a path matches any of the given patterns.
// A leading "**/" also matches files in the root, so "**/*.js" matches
// both "index.js" and "src/app.js".
func matchesAnyPattern(path string, patterns []compiledPattern) bool {
	for _, cp := range patterns {
		if cp.glob.Match(path) {
			return true
		}
		if strings.HasPrefix(cp.pattern, "**/") && !strings.Contains(path, "/") {
			if g, err := glob.Compile(strings.TrimPrefix(cp.pattern, "**/"), '/'); err == nil && g.Match(path) {
				return true
			}
		}
	}
	return false
}
