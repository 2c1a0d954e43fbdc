// Package walker yields the files eligible for language detection under a
// root directory. It prunes paths matching the static ignore globs and
// go-enry's vendor and documentation path classes, honors .gitignore files
// found during the walk, and refuses to follow symlinks that escape the
// root. Generated and binary files are not filtered.
package walker

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/go-enry/go-enry/v2"
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
)

// Walker walks directory trees applying the filter stack. Safe for
// sequential reuse; a single Walk call must not be shared across goroutines.
type Walker struct {
	globs  []string
	logger *slog.Logger
}

// New returns a walker that prunes paths matching the given globs in
// addition to .gitignore rules and the built-in vendor/documentation
// classes.
func New(globs []string, logger *slog.Logger) *Walker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Walker{globs: globs, logger: logger}
}

// Walk visits every eligible regular file under root, passing its absolute
// path. The visit order is unspecified. Returning false from visit stops
// the walk.
func (w *Walker) Walk(root string, visit func(path string) bool) error {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("resolve root %s: %w", root, err)
	}
	resolvedRoot, err := filepath.EvalSymlinks(absRoot)
	if err != nil {
		return fmt.Errorf("resolve root %s: %w", root, err)
	}

	state := &walkState{
		walker:   w,
		resolved: resolvedRoot,
		visit:    visit,
		visited:  map[string]struct{}{resolvedRoot: {}},
	}
	state.walkDir(absRoot, "", nil)
	return nil
}

type walkState struct {
	walker   *Walker
	resolved string
	visit    func(path string) bool
	visited  map[string]struct{}
	stopped  bool
}

// walkDir processes one directory level. patterns carries the .gitignore
// stack accumulated from ancestor directories.
func (s *walkState) walkDir(dir, rel string, patterns []gitignore.Pattern) {
	if s.stopped {
		return
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		s.walker.logger.Warn("skipping unreadable directory", "path", dir, "error", err)
		return
	}
	// Real entries go before symlinks, so a directory reachable both directly
	// and through an in-root alias is walked under its real path.
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Type()&fs.ModeSymlink == 0 && entries[j].Type()&fs.ModeSymlink != 0
	})

	patterns = append(patterns, s.readGitignore(dir, rel)...)
	matcher := gitignore.NewMatcher(patterns)

	for _, entry := range entries {
		if s.stopped {
			return
		}

		name := entry.Name()
		entryRel := name
		if rel != "" {
			entryRel = rel + "/" + name
		}
		full := filepath.Join(dir, name)
		isDir := entry.IsDir()

		target := full
		if entry.Type()&fs.ModeSymlink != 0 {
			resolved, ok := s.resolveSymlink(full)
			if !ok {
				continue
			}
			info, err := os.Stat(resolved)
			if err != nil {
				continue
			}
			isDir = info.IsDir()
			target = resolved
		}

		if s.ignored(entryRel, isDir) {
			continue
		}
		if matcher.Match(strings.Split(entryRel, "/"), isDir) {
			continue
		}

		if isDir {
			if _, seen := s.visited[target]; seen {
				continue
			}
			s.visited[target] = struct{}{}
			s.walkDir(full, entryRel, patterns)
			continue
		}
		if !entry.Type().IsRegular() && target == full {
			continue
		}

		if !s.visit(full) {
			s.stopped = true
			return
		}
	}
}

// resolveSymlink follows a symlink and reports whether its target stays
// inside the walk root.
func (s *walkState) resolveSymlink(path string) (string, bool) {
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		return "", false
	}
	if resolved != s.resolved && !strings.HasPrefix(resolved, s.resolved+string(filepath.Separator)) {
		return "", false
	}
	return resolved, true
}

// ignored applies the static glob table and the built-in vendor and
// documentation path classes.
func (s *walkState) ignored(rel string, isDir bool) bool {
	probe := rel
	if isDir {
		probe = rel + "/"
	}
	if enry.IsVendor(probe) || enry.IsDocumentation(probe) {
		return true
	}

	for _, glob := range s.walker.globs {
		if isDir {
			if matched, err := doublestar.Match(strings.TrimSuffix(glob, "/**"), rel); err == nil && matched {
				return true
			}
			continue
		}
		if matched, err := doublestar.Match(glob, rel); err == nil && matched {
			return true
		}
	}
	return false
}

// readGitignore loads the directory's .gitignore patterns, scoped to the
// directory so they only apply beneath it.
func (s *walkState) readGitignore(dir, rel string) []gitignore.Pattern {
	raw, err := os.ReadFile(filepath.Join(dir, ".gitignore"))
	if err != nil {
		if !os.IsNotExist(err) {
			s.walker.logger.Warn("skipping unreadable .gitignore", "path", dir, "error", err)
		}
		return nil
	}

	var domain []string
	if rel != "" {
		domain = strings.Split(rel, "/")
	}

	var patterns []gitignore.Pattern
	for _, line := range strings.Split(string(raw), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, gitignore.ParsePattern(line, domain))
	}
	return patterns
}
