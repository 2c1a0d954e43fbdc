// Package hyply identifies the programming language of source files and
// aggregates identifications over directory trees.
//
// Single files resolve through a staged pipeline — filename, extension,
// shebang interpreter, content heuristics, then a token classifier — where
// each stage either answers outright or narrows the set of candidate
// languages for the next. Directory breakdowns fan the pipeline out across
// a worker pool while honoring ignore globs and .gitignore files.
package hyply

import (
	"context"

	"github.com/hyply/hyply/internal/breakdown"
	"github.com/hyply/hyply/internal/detector"
	"github.com/hyply/hyply/internal/langdata"
)

// Strategy identifies the pipeline stage that produced a detection.
type Strategy = detector.Strategy

const (
	StrategyFilename    = detector.StrategyFilename
	StrategyExtension   = detector.StrategyExtension
	StrategyInterpreter = detector.StrategyInterpreter
	StrategyHeuristics  = detector.StrategyHeuristics
	StrategyClassifier  = detector.StrategyClassifier
)

// Detection pairs a language name with the strategy that resolved it.
type Detection = detector.Detection

// Language is one entry of the embedded language catalog.
type Language = langdata.Language

// Entry records one detected file within a breakdown bucket.
type Entry = breakdown.Entry

// Breakdown maps language names to the files detected as that language.
type Breakdown = breakdown.Map

// Options tunes a breakdown run.
type Options = breakdown.Options

// Detect resolves the language of the file at path, reading it lazily. An
// unknowable file yields (nil, nil); read failures yield the error.
func Detect(path string) (*Detection, error) {
	return detector.Default().Detect(path)
}

// DetectWithContent resolves the language of path assuming content is the
// file's bytes. It performs no IO and is a pure function of its arguments.
func DetectWithContent(path string, content []byte) *Detection {
	return detector.Default().DetectContent(path, content)
}

// GetLanguageBreakdown analyzes the tree under root in parallel and groups
// the detected files by language. A missing or unreadable root yields an
// empty breakdown and an error; unreadable files inside the tree are
// dropped.
func GetLanguageBreakdown(root string) (Breakdown, error) {
	return GetLanguageBreakdownContext(context.Background(), root, Options{})
}

// GetLanguageBreakdownContext is GetLanguageBreakdown with cancellation and
// tuning. Workers observe ctx between files.
func GetLanguageBreakdownContext(ctx context.Context, root string, opts Options) (Breakdown, error) {
	engine := breakdown.New(detector.Default(), opts)
	return engine.Run(ctx, root)
}

// GetLanguageInfo looks up a catalog entry by canonical language name.
func GetLanguageInfo(name string) (*Language, bool) {
	return langdata.Default().Language(name)
}

// Languages returns all known language names in lexicographic order.
func Languages() []string {
	return langdata.Default().Names()
}
