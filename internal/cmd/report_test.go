package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyply/hyply"
)

func sampleBreakdown() hyply.Breakdown {
	return hyply.Breakdown{
		"Rust": {
			{Detection: hyply.Detection{Language: "Rust", Strategy: hyply.StrategyExtension}, Path: "/p/a.rs"},
			{Detection: hyply.Detection{Language: "Rust", Strategy: hyply.StrategyExtension}, Path: "/p/b.rs"},
			{Detection: hyply.Detection{Language: "Rust", Strategy: hyply.StrategyExtension}, Path: "/p/c.rs"},
		},
		"Makefile": {
			{Detection: hyply.Detection{Language: "Makefile", Strategy: hyply.StrategyFilename}, Path: "/p/Makefile"},
		},
		"JSON": {
			{Detection: hyply.Detection{Language: "JSON", Strategy: hyply.StrategyExtension}, Path: "/p/x.json"},
		},
	}
}

func TestTreeReportText(t *testing.T) {
	report := &treeReport{root: "/p", breakdown: sampleBreakdown()}

	var buf bytes.Buffer
	report.Text(&buf)

	// JSON is a data language and stays out of the split by default.
	assert.Equal(t, "75.00% Rust\n25.00% Makefile\n", buf.String())
}

func TestTreeReportAllTypes(t *testing.T) {
	report := &treeReport{root: "/p", breakdown: sampleBreakdown(), allTypes: true}

	var buf bytes.Buffer
	report.Text(&buf)

	assert.Contains(t, buf.String(), "60.00% Rust")
	assert.Contains(t, buf.String(), "20.00% JSON")
	assert.Contains(t, buf.String(), "20.00% Makefile")
}

func TestTreeReportSharesSumTo100(t *testing.T) {
	report := &treeReport{root: "/p", breakdown: sampleBreakdown(), allTypes: true}

	total := 0.0
	for _, row := range report.shares() {
		total += row.Percent
	}
	assert.InDelta(t, 100.0, total, 0.01)
}

func TestTreeReportBreakdownListing(t *testing.T) {
	report := &treeReport{root: "/p", breakdown: sampleBreakdown(), showFiles: true}

	var buf bytes.Buffer
	report.Text(&buf)

	out := buf.String()
	assert.Contains(t, out, "/p/a.rs")
	assert.Contains(t, out, "/p/Makefile")
	assert.True(t, strings.Index(out, "75.00% Rust") < strings.Index(out, "/p/a.rs"),
		"the split prints before the file listing")
}

func TestTreeReportJSON(t *testing.T) {
	report := &treeReport{root: "/p", breakdown: sampleBreakdown(), showFiles: true}

	raw, err := json.Marshal(report.Payload())
	require.NoError(t, err)

	var decoded struct {
		Root      string `json:"root"`
		Languages []struct {
			Language string  `json:"language"`
			Files    int     `json:"files"`
			Percent  float64 `json:"percent"`
		} `json:"languages"`
		Files map[string][]struct {
			Detection struct {
				Language string `json:"language"`
				Strategy string `json:"strategy"`
			} `json:"detection"`
			Path string `json:"path"`
		} `json:"files"`
	}
	require.NoError(t, json.Unmarshal(raw, &decoded))

	assert.Equal(t, "/p", decoded.Root)
	require.NotEmpty(t, decoded.Languages)
	assert.Equal(t, "Rust", decoded.Languages[0].Language)
	assert.Equal(t, 3, decoded.Languages[0].Files)
	assert.Equal(t, "extension", decoded.Files["Rust"][0].Detection.Strategy)
}

func TestEmitToFile(t *testing.T) {
	report := &treeReport{root: "/p", breakdown: sampleBreakdown()}
	path := filepath.Join(t.TempDir(), "result.json")

	require.NoError(t, emit(report, "json", path))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "/p", decoded["root"])

	err = emit(report, "json", filepath.Join(t.TempDir(), "missing", "out.json"))
	assert.Error(t, err)
}

func TestFileReportText(t *testing.T) {
	var buf bytes.Buffer
	report := &fileReport{Path: "/p/a.rs", Detection: &hyply.Detection{Language: "Rust", Strategy: hyply.StrategyExtension}}
	report.Text(&buf)
	assert.Equal(t, "Rust\n", buf.String())

	buf.Reset()
	unknown := &fileReport{Path: "/p/mystery"}
	unknown.Text(&buf)
	assert.Equal(t, "Unknown\n", buf.String())
}
