// Package breakdown aggregates per-file detections over a directory tree.
// A producer walks the tree into a bounded channel, a fixed pool of workers
// runs the detection pipeline, and a single reducer folds results into the
// per-language map. No lock protects the map; the reducer is the only
// writer.
package breakdown

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/hyply/hyply/internal/detector"
	"github.com/hyply/hyply/internal/walker"
)

// Queue capacities; bounded so a huge tree applies backpressure to the
// walker instead of accumulating paths in memory.
const (
	pathQueueSize   = 256
	resultQueueSize = 256
)

// Entry records one detected file within a language bucket.
type Entry struct {
	Detection detector.Detection `json:"detection"`
	Path      string             `json:"path"`
}

// Map groups detected files by language name. Within a language, entries
// appear in the order the reducer received them; cross-language order is
// undefined.
type Map map[string][]Entry

// Count returns the total number of classified files.
func (m Map) Count() int {
	total := 0
	for _, entries := range m {
		total += len(entries)
	}
	return total
}

// Options tunes a breakdown run.
type Options struct {
	// Workers sets the pool size; 0 means one worker per CPU.
	Workers int
	// ExtraIgnore adds caller globs on top of the static ignore table.
	ExtraIgnore []string
	// Logger receives dropped-file diagnostics; nil uses slog.Default().
	Logger *slog.Logger
}

// Engine fans the detection pipeline out over walked files.
type Engine struct {
	det    *detector.Detector
	opts   Options
	logger *slog.Logger
}

// New returns an engine running the given detector.
func New(det *detector.Detector, opts Options) *Engine {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{det: det, opts: opts, logger: logger}
}

type result struct {
	language string
	entry    Entry
}

// Run walks root and returns the language breakdown. A missing or
// unreadable root yields an empty map and the error; per-file failures are
// logged and dropped. Cancelling ctx stops the workers at their next file.
func (e *Engine) Run(ctx context.Context, root string) (Map, error) {
	info, err := os.Stat(root)
	if err != nil {
		return Map{}, fmt.Errorf("breakdown root %s: %w", root, err)
	}
	if !info.IsDir() {
		return Map{}, fmt.Errorf("breakdown root %s: not a directory", root)
	}

	workers := e.opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	globs := e.det.Tables().IgnoreGlobs()
	globs = append(append([]string{}, globs...), e.opts.ExtraIgnore...)
	walk := walker.New(globs, e.logger)

	paths := make(chan string, pathQueueSize)
	results := make(chan result, resultQueueSize)

	group, gctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		defer close(paths)
		return walk.Walk(root, func(path string) bool {
			select {
			case paths <- path:
				return true
			case <-gctx.Done():
				return false
			}
		})
	})

	for i := 0; i < workers; i++ {
		group.Go(func() error {
			for path := range paths {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				e.detectOne(path, results)
			}
			return nil
		})
	}

	var waitErr error
	done := make(chan struct{})
	go func() {
		defer close(done)
		waitErr = group.Wait()
		close(results)
	}()

	bd := Map{}
	for r := range results {
		bd[r.language] = append(bd[r.language], r.entry)
	}
	<-done

	if waitErr != nil {
		return bd, waitErr
	}
	if err := ctx.Err(); err != nil {
		return bd, err
	}
	return bd, nil
}

// detectOne runs the pipeline for a single file and emits its result.
// Failures never cross the worker boundary; they are logged here and the
// file is dropped.
func (e *Engine) detectOne(path string, results chan<- result) {
	det, err := e.det.Detect(path)
	if err != nil {
		e.logger.Warn("dropping unreadable file", "path", path, "error", err)
		return
	}
	if det == nil {
		return
	}
	results <- result{
		language: det.Language,
		entry:    Entry{Detection: *det, Path: path},
	}
}
