// Package codestats collects line, comment and complexity statistics for
// the files the breakdown classified, grouped by detected language.
package codestats

import (
	"os"
	"sort"
	"sync"

	"github.com/boyter/scc/v3/processor"
)

var initOnce sync.Once

// Stats holds code statistics for one language bucket.
type Stats struct {
	Language   string `json:"language" yaml:"language"`
	Files      int    `json:"files" yaml:"files"`
	Lines      int64  `json:"lines" yaml:"lines"`
	Code       int64  `json:"code" yaml:"code"`
	Comments   int64  `json:"comments" yaml:"comments"`
	Blanks     int64  `json:"blanks" yaml:"blanks"`
	Complexity int64  `json:"complexity" yaml:"complexity"`
}

// Report is the aggregated result, sorted by lines descending.
type Report struct {
	Total      Stats   `json:"total" yaml:"total"`
	ByLanguage []Stats `json:"by_language" yaml:"by_language"`
}

// Analyzer accumulates per-file stats. Safe for concurrent ProcessFile
// calls.
type Analyzer struct {
	mu     sync.Mutex
	byLang map[string]*Stats
}

// NewAnalyzer returns an empty analyzer.
func NewAnalyzer() *Analyzer {
	return &Analyzer{byLang: make(map[string]*Stats)}
}

// ProcessFile counts one file under the given detected language. Content is
// read from disk when nil. Unreadable or empty files are skipped.
func (a *Analyzer) ProcessFile(path, language string, content []byte) {
	if language == "" {
		return
	}

	if len(content) == 0 {
		var err error
		content, err = os.ReadFile(path)
		if err != nil || len(content) == 0 {
			return
		}
	}

	initOnce.Do(processor.ProcessConstants)

	// SCC's own language detection picks the comment/complexity syntax;
	// aggregation still groups by the pipeline's language.
	sccLang := ""
	if langs, _ := processor.DetectLanguage(path); len(langs) > 0 {
		sccLang = langs[0]
	}

	job := &processor.FileJob{
		Filename: path,
		Language: sccLang,
		Content:  content,
		Bytes:    int64(len(content)),
	}
	processor.CountStats(job)

	a.mu.Lock()
	defer a.mu.Unlock()

	stats, ok := a.byLang[language]
	if !ok {
		stats = &Stats{Language: language}
		a.byLang[language] = stats
	}
	stats.Files++
	stats.Lines += job.Lines
	stats.Code += job.Code
	stats.Comments += job.Comment
	stats.Blanks += job.Blank
	stats.Complexity += job.Complexity
}

// Report returns the aggregated statistics.
func (a *Analyzer) Report() *Report {
	a.mu.Lock()
	defer a.mu.Unlock()

	report := &Report{Total: Stats{Language: "Total"}}
	for _, stats := range a.byLang {
		report.ByLanguage = append(report.ByLanguage, *stats)
		report.Total.Files += stats.Files
		report.Total.Lines += stats.Lines
		report.Total.Code += stats.Code
		report.Total.Comments += stats.Comments
		report.Total.Blanks += stats.Blanks
		report.Total.Complexity += stats.Complexity
	}
	sort.Slice(report.ByLanguage, func(i, j int) bool {
		if report.ByLanguage[i].Lines != report.ByLanguage[j].Lines {
			return report.ByLanguage[i].Lines > report.ByLanguage[j].Lines
		}
		return report.ByLanguage[i].Language < report.ByLanguage[j].Language
	})
	return report
}
