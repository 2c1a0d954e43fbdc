package hyply

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectWithContentScenarios(t *testing.T) {
	tests := []struct {
		path     string
		content  string
		language string
		strategy Strategy
	}{
		{path: "src/main.rs", content: "fn main() { println!(\"hi\"); }", language: "Rust", strategy: StrategyExtension},
		{path: "Makefile", content: "all:\n\techo hi\n", language: "Makefile", strategy: StrategyFilename},
		{path: "script", content: "#!/usr/bin/env python3\nprint(1)\n", language: "Python", strategy: StrategyInterpreter},
		{path: "vec.h", content: "#include <vector>\nclass Foo {};\n", language: "C++", strategy: StrategyHeuristics},
		{path: "a.pl", content: "use strict;\nmy $x = 1;\n", language: "Perl", strategy: StrategyClassifier},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			det := DetectWithContent(tt.path, []byte(tt.content))
			require.NotNil(t, det)
			assert.Equal(t, tt.language, det.Language)
			assert.Equal(t, tt.strategy, det.Strategy)
		})
	}
}

func TestDetectWithContentBoundaries(t *testing.T) {
	assert.Nil(t, DetectWithContent("empty.rs", nil))
	assert.Nil(t, DetectWithContent("script", []byte("#!")))
	assert.Nil(t, DetectWithContent("blob.qqq", []byte("no shebang\n")))
}

func TestGetLanguageBreakdown(t *testing.T) {
	root := t.TempDir()
	files := map[string]string{
		"one.rs":       "fn one() {}\n",
		"two.rs":       "fn two() {}\n",
		"sub/three.rs": "fn three() {}\n",
		"Makefile":     "all:\n\techo hi\n",
	}
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}

	bd, err := GetLanguageBreakdown(root)
	require.NoError(t, err)

	assert.Len(t, bd["Rust"], 3)
	assert.Len(t, bd["Makefile"], 1)

	var rustPaths []string
	for _, entry := range bd["Rust"] {
		rustPaths = append(rustPaths, filepath.Base(entry.Path))
		assert.Equal(t, StrategyExtension, entry.Detection.Strategy)
	}
	sort.Strings(rustPaths)
	assert.Equal(t, []string{"one.rs", "three.rs", "two.rs"}, rustPaths)
}

func TestGetLanguageBreakdownContextOptions(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "x.go"), []byte("package x\n"), 0644))

	bd, err := GetLanguageBreakdownContext(context.Background(), root, Options{Workers: 2})
	require.NoError(t, err)
	assert.Len(t, bd["Go"], 1)

	_, err = GetLanguageBreakdown(filepath.Join(root, "missing"))
	assert.Error(t, err)
}

func TestGetLanguageInfo(t *testing.T) {
	rust, ok := GetLanguageInfo("Rust")
	require.True(t, ok)
	assert.Equal(t, "programming", rust.Type)

	_, ok = GetLanguageInfo("Klingon")
	assert.False(t, ok)
}

func TestLanguages(t *testing.T) {
	all := Languages()
	assert.True(t, sort.StringsAreSorted(all))
	assert.Contains(t, all, "Rust")
	assert.Contains(t, all, "Makefile")
}
