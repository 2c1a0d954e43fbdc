package langdata

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func names(langs []*Language) []string {
	out := make([]string, len(langs))
	for i, lang := range langs {
		out[i] = lang.Name
	}
	return out
}

func TestLoad(t *testing.T) {
	tables, err := Load()
	require.NoError(t, err)
	require.NotNil(t, tables)
	assert.NotEmpty(t, tables.Names())
}

func TestDefaultIsSingleton(t *testing.T) {
	assert.Same(t, Default(), Default())
}

func TestByExtension(t *testing.T) {
	tables := Default()

	tests := []struct {
		ext      string
		expected []string
	}{
		{ext: ".rs", expected: []string{"Rust"}},
		{ext: ".h", expected: []string{"C", "C++", "Objective-C"}},
		{ext: ".pl", expected: []string{"Perl", "Prolog"}},
		{ext: ".es", expected: []string{"Erlang", "JavaScript"}},
		{ext: ".sql", expected: []string{"PLSQL", "PLpgSQL", "SQL"}},
		{ext: ".H", expected: []string{"C", "C++", "Objective-C"}},
		{ext: ".nope", expected: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.ext, func(t *testing.T) {
			assert.Equal(t, tt.expected, names(tables.ByExtension(tt.ext)))
		})
	}
}

func TestByFilename(t *testing.T) {
	tables := Default()

	assert.Equal(t, []string{"Makefile"}, names(tables.ByFilename("Makefile")))
	assert.Equal(t, []string{"Ruby"}, names(tables.ByFilename("Rakefile")))
	assert.Equal(t, []string{"Dockerfile"}, names(tables.ByFilename("Dockerfile")))
	assert.Empty(t, tables.ByFilename("not-a-special-file"))
}

func TestByInterpreter(t *testing.T) {
	tables := Default()

	assert.Equal(t, []string{"Python"}, names(tables.ByInterpreter("python3")))
	assert.Equal(t, []string{"Shell"}, names(tables.ByInterpreter("bash")))
	assert.Empty(t, tables.ByInterpreter("befunge"))
}

func TestMatchExtension(t *testing.T) {
	tables := Default()

	tests := []struct {
		name     string
		filename string
		ext      string
	}{
		{name: "simple", filename: "main.rs", ext: ".rs"},
		{name: "compound beats simple", filename: "example.cmake.in", ext: ".cmake.in"},
		{name: "unknown middle extension falls through", filename: "nonsense.notrealextension.c", ext: ".c"},
		{name: "case folded", filename: "UPPER.C", ext: ".c"},
		{name: "dotfile with real extension", filename: ".eslintrc.json", ext: ".json"},
		{name: "dotfile alone is not an extension", filename: ".cs", ext: ""},
		{name: "no extension", filename: "noextension", ext: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			langs, ext := tables.MatchExtension(tt.filename)
			assert.Equal(t, tt.ext, ext)
			if tt.ext == "" {
				assert.Empty(t, langs)
			} else {
				assert.NotEmpty(t, langs)
			}
		})
	}
}

func TestHeuristicsTable(t *testing.T) {
	tables := Default()

	rules := tables.Heuristics(".h")
	require.NotEmpty(t, rules)
	assert.Equal(t, []string{"Objective-C"}, rules[0].Languages)

	last := rules[len(rules)-1]
	assert.Equal(t, []string{"C"}, last.Languages)
	assert.True(t, last.Match([]byte("anything")), "the trailing C rule is a default")

	// Perl vs Prolog is deliberately left to the classifier.
	assert.Empty(t, tables.Heuristics(".pl"))
}

func TestHeuristicRuleMatching(t *testing.T) {
	tables := Default()

	tests := []struct {
		name    string
		ext     string
		content string
		winner  string
	}{
		{name: "objc header", ext: ".h", content: "#import <Foundation/Foundation.h>\n", winner: "Objective-C"},
		{name: "cpp header", ext: ".h", content: "namespace fs {\n}\n", winner: "C++"},
		{name: "c header", ext: ".h", content: "int add(int a, int b);\n", winner: "C"},
		{name: "sql negative filter", ext: ".sql", content: "SELECT 1;\n", winner: "SQL"},
		{name: "plpgsql dollar quote", ext: ".sql", content: "CREATE FUNCTION f() RETURNS trigger AS $$ BEGIN END $$;\n", winner: "PLpgSQL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rules := tables.Heuristics(tt.ext)
			require.NotEmpty(t, rules)
			for _, rule := range rules {
				if rule.Match([]byte(tt.content)) {
					assert.Contains(t, rule.Languages, tt.winner)
					return
				}
			}
			t.Fatalf("no rule matched %q", tt.content)
		})
	}
}

func TestClassifierModel(t *testing.T) {
	model := Default().Classifier()

	perl, ok := model.LanguageID("Perl")
	require.True(t, ok)
	prolog, ok := model.LanguageID("Prolog")
	require.True(t, ok)
	assert.NotEqual(t, perl, prolog)

	_, ok = model.LanguageID("Not A Language")
	assert.False(t, ok)

	id, ok := model.TokenID([]byte("my"))
	require.True(t, ok)
	pairs := model.Pairs(id)
	require.NotEmpty(t, pairs)
	for _, pair := range pairs {
		assert.Negative(t, pair.Weight, "log-probabilities are negative")
		assert.Greater(t, pair.Weight, model.Fallback(int(pair.Lang)),
			"an observed token must beat the unseen fallback")
	}

	_, ok = model.TokenID([]byte("never-seen-token-xyz"))
	assert.False(t, ok)

	assert.Negative(t, model.Fallback(perl))
}

func TestIgnoreGlobs(t *testing.T) {
	globs := Default().IgnoreGlobs()
	assert.Contains(t, globs, "**/node_modules/**")
	assert.Contains(t, globs, "**/.git/**")
}

func TestLanguageInfo(t *testing.T) {
	tables := Default()

	rust, ok := tables.Language("Rust")
	require.True(t, ok)
	assert.Equal(t, "programming", rust.Type)
	assert.Equal(t, "#dea584", rust.Color)

	plpgsql, ok := tables.Language("PLpgSQL")
	require.True(t, ok)
	assert.Equal(t, "SQL", plpgsql.Group)

	_, ok = tables.Language("Klingon")
	assert.False(t, ok)
}

func TestValidationErrorMessage(t *testing.T) {
	assert.Equal(t, "validation failed", ValidationError{}.Error())
	assert.Equal(t, "validation failed: boom", ValidationError{Errors: []string{"boom"}}.Error())
	assert.Equal(t, "validation failed: a; b", ValidationError{Errors: []string{"a", "b"}}.Error())
}
