package cmd

import (
	"fmt"
	"io"
	"sort"

	"github.com/charmbracelet/lipgloss"
	"github.com/go-enry/go-enry/v2"

	"github.com/hyply/hyply"
	"github.com/hyply/hyply/internal/codestats"
	"github.com/hyply/hyply/internal/license"
)

// fileReport is the output for a single-file detection.
type fileReport struct {
	Path      string           `json:"path" yaml:"path"`
	Detection *hyply.Detection `json:"detection" yaml:"detection"`
}

func (r *fileReport) Payload() interface{} { return r }

func (r *fileReport) Text(w io.Writer) {
	if r.Detection == nil {
		fmt.Fprintln(w, "Unknown")
		return
	}
	fmt.Fprintln(w, r.Detection.Language)
}

// languageShare is one row of the percentage split.
type languageShare struct {
	Language string  `json:"language" yaml:"language"`
	Files    int     `json:"files" yaml:"files"`
	Percent  float64 `json:"percent" yaml:"percent"`
}

// treeReport is the output for a directory breakdown.
type treeReport struct {
	root      string
	breakdown hyply.Breakdown
	allTypes  bool
	showFiles bool
	colorize  bool
	stats     *codestats.Report
	licenses  []license.Match
}

type treeReportJSON struct {
	Root      string                   `json:"root" yaml:"root"`
	Languages []languageShare          `json:"languages" yaml:"languages"`
	Files     map[string][]hyply.Entry `json:"files,omitempty" yaml:"files,omitempty"`
	CodeStats *codestats.Report        `json:"code_stats,omitempty" yaml:"code_stats,omitempty"`
	Licenses  []license.Match          `json:"licenses,omitempty" yaml:"licenses,omitempty"`
}

// shares computes the percentage split over the counted languages, sorted
// by file count descending then name.
func (r *treeReport) shares() []languageShare {
	total := 0
	rows := make([]languageShare, 0, len(r.breakdown))
	for language, entries := range r.breakdown {
		if !r.countable(language) {
			continue
		}
		rows = append(rows, languageShare{Language: language, Files: len(entries)})
		total += len(entries)
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Files != rows[j].Files {
			return rows[i].Files > rows[j].Files
		}
		return rows[i].Language < rows[j].Language
	})
	for i := range rows {
		rows[i].Percent = float64(rows[i].Files*100) / float64(total)
	}
	return rows
}

// countable restricts the split to programming and markup languages unless
// all types were requested.
func (r *treeReport) countable(language string) bool {
	if r.allTypes {
		return true
	}
	info, ok := hyply.GetLanguageInfo(language)
	if !ok {
		return false
	}
	kind := info.EnryType()
	return kind == enry.Programming || kind == enry.Markup
}

func (r *treeReport) Payload() interface{} {
	out := &treeReportJSON{
		Root:      r.root,
		Languages: r.shares(),
		CodeStats: r.stats,
		Licenses:  r.licenses,
	}
	if r.showFiles {
		out.Files = r.breakdown
	}
	return out
}

func (r *treeReport) Text(w io.Writer) {
	rows := r.shares()
	for _, row := range rows {
		fmt.Fprintf(w, "%.2f%% %s\n", row.Percent, r.styled(row.Language))
	}

	if r.showFiles {
		for _, row := range rows {
			fmt.Fprintf(w, "\n%s\n", r.styled(row.Language))
			for _, entry := range r.breakdown[row.Language] {
				fmt.Fprintln(w, entry.Path)
			}
		}
	}

	if r.stats != nil {
		fmt.Fprintf(w, "\n%-20s %8s %10s %10s %10s %10s %10s\n",
			"Language", "Files", "Lines", "Code", "Comments", "Blanks", "Complexity")
		for _, s := range r.stats.ByLanguage {
			fmt.Fprintf(w, "%-20s %8d %10d %10d %10d %10d %10d\n",
				s.Language, s.Files, s.Lines, s.Code, s.Comments, s.Blanks, s.Complexity)
		}
		t := r.stats.Total
		fmt.Fprintf(w, "%-20s %8d %10d %10d %10d %10d %10d\n",
			"Total", t.Files, t.Lines, t.Code, t.Comments, t.Blanks, t.Complexity)
	}

	if len(r.licenses) > 0 {
		fmt.Fprintln(w)
		for _, match := range r.licenses {
			fmt.Fprintf(w, "License: %s (%.2f, %s)\n", match.License, match.Confidence, match.File)
		}
	}
}

// styled colors a language name with its catalog color on TTY output.
func (r *treeReport) styled(language string) string {
	if !r.colorize {
		return language
	}
	info, ok := hyply.GetLanguageInfo(language)
	if !ok || info.Color == "" {
		return language
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(info.Color)).Render(language)
}
