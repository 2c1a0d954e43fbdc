// Package langdata holds the static knowledge tables behind language
// detection: the language catalog, extension/filename/interpreter indexes,
// per-extension disambiguation rules, the classifier frequency model, and
// the ignore globs used by the directory walker.
//
// Tables are built once from embedded YAML, validated against JSON schemas,
// and immutable afterwards. All lookups are plain map reads and safe for
// concurrent use.
package langdata

import (
	"embed"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/go-enry/go-enry/v2"
	"gopkg.in/yaml.v3"
)

//go:embed data/*.yaml data/*.schema.json
var dataFS embed.FS

// Language is one entry of the language catalog.
type Language struct {
	Name         string   `yaml:"name"`
	Type         string   `yaml:"type"`
	Group        string   `yaml:"group,omitempty"`
	Color        string   `yaml:"color,omitempty"`
	Extensions   []string `yaml:"extensions,omitempty"`
	Filenames    []string `yaml:"filenames,omitempty"`
	Interpreters []string `yaml:"interpreters,omitempty"`
}

// EnryType maps the catalog type string onto go-enry's language type.
func (l *Language) EnryType() enry.Type {
	switch l.Type {
	case "programming":
		return enry.Programming
	case "markup":
		return enry.Markup
	case "data":
		return enry.Data
	case "prose":
		return enry.Prose
	default:
		return enry.Unknown
	}
}

// Tables is the read-only record of all static knowledge.
type Tables struct {
	languages    map[string]*Language
	byFilename   map[string][]*Language
	byExtension  map[string][]*Language
	byInterp     map[string][]*Language
	heuristics   map[string][]Rule
	ignoreGlobs  []string
	model        *Model
	orderedNames []string
}

var (
	defaultTables *Tables
	defaultErr    error
	loadOnce      sync.Once
)

// Default returns the tables built from the embedded data. The embedded data
// is part of the build; a load failure is a broken build and panics.
func Default() *Tables {
	loadOnce.Do(func() {
		defaultTables, defaultErr = Load()
	})
	if defaultErr != nil {
		panic(fmt.Sprintf("langdata: embedded tables failed to load: %v", defaultErr))
	}
	return defaultTables
}

type languagesFile struct {
	Languages []*Language `yaml:"languages"`
}

type ignoreFile struct {
	Ignore []string `yaml:"ignore"`
}

// Load parses and indexes the embedded data files.
func Load() (*Tables, error) {
	langs, err := loadLanguages()
	if err != nil {
		return nil, err
	}

	t := &Tables{
		languages:   make(map[string]*Language, len(langs)),
		byFilename:  make(map[string][]*Language),
		byExtension: make(map[string][]*Language),
		byInterp:    make(map[string][]*Language),
	}

	for _, lang := range langs {
		if _, dup := t.languages[lang.Name]; dup {
			return nil, fmt.Errorf("duplicate language %q", lang.Name)
		}
		t.languages[lang.Name] = lang
		t.orderedNames = append(t.orderedNames, lang.Name)

		for _, name := range lang.Filenames {
			t.byFilename[name] = append(t.byFilename[name], lang)
		}
		for _, ext := range lang.Extensions {
			key := strings.ToLower(ext)
			t.byExtension[key] = append(t.byExtension[key], lang)
		}
		for _, interp := range lang.Interpreters {
			t.byInterp[interp] = append(t.byInterp[interp], lang)
		}
	}
	sort.Strings(t.orderedNames)
	for _, index := range []map[string][]*Language{t.byFilename, t.byExtension, t.byInterp} {
		for _, candidates := range index {
			sortLanguages(candidates)
		}
	}

	t.heuristics, err = loadHeuristics(t.languages)
	if err != nil {
		return nil, err
	}

	t.model, err = loadModel(t.languages)
	if err != nil {
		return nil, err
	}

	t.ignoreGlobs, err = loadIgnoreGlobs()
	if err != nil {
		return nil, err
	}

	return t, nil
}

func loadLanguages() ([]*Language, error) {
	raw, err := dataFS.ReadFile("data/languages.yaml")
	if err != nil {
		return nil, fmt.Errorf("read languages.yaml: %w", err)
	}
	if err := validateYAML("data/languages.schema.json", raw); err != nil {
		return nil, fmt.Errorf("languages.yaml: %w", err)
	}

	var file languagesFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse languages.yaml: %w", err)
	}
	return file.Languages, nil
}

func loadIgnoreGlobs() ([]string, error) {
	raw, err := dataFS.ReadFile("data/ignore.yaml")
	if err != nil {
		return nil, fmt.Errorf("read ignore.yaml: %w", err)
	}

	var file ignoreFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse ignore.yaml: %w", err)
	}
	return file.Ignore, nil
}

func sortLanguages(langs []*Language) {
	sort.Slice(langs, func(i, j int) bool { return langs[i].Name < langs[j].Name })
}

// Language looks up a catalog entry by canonical name.
func (t *Tables) Language(name string) (*Language, bool) {
	lang, ok := t.languages[name]
	return lang, ok
}

// Names returns all language names in lexicographic order.
func (t *Tables) Names() []string {
	return t.orderedNames
}

// ByFilename returns the languages claiming an exact basename.
func (t *Tables) ByFilename(name string) []*Language {
	return t.byFilename[name]
}

// ByExtension returns the languages claiming an extension (with dot,
// case-insensitive).
func (t *Tables) ByExtension(ext string) []*Language {
	return t.byExtension[strings.ToLower(ext)]
}

// ByInterpreter returns the languages claiming a shebang interpreter
// basename.
func (t *Tables) ByInterpreter(basename string) []*Language {
	return t.byInterp[basename]
}

// Heuristics returns the ordered disambiguation rules for an extension.
func (t *Tables) Heuristics(ext string) []Rule {
	return t.heuristics[strings.ToLower(ext)]
}

// Classifier returns the token-frequency model.
func (t *Tables) Classifier() *Model {
	return t.model
}

// IgnoreGlobs returns the walker's ignore globs for VCS metadata and
// vendored dependency trees. Generated files are not covered.
func (t *Tables) IgnoreGlobs() []string {
	return t.ignoreGlobs
}

// MatchExtension finds the longest compound extension of name present in the
// table and returns its languages along with the matched extension. A
// leading dot (dotfiles) is not an extension separator.
func (t *Tables) MatchExtension(name string) ([]*Language, string) {
	lowered := strings.ToLower(name)
	lowered = strings.TrimPrefix(lowered, ".")

	for i := 0; i < len(lowered); i++ {
		if lowered[i] != '.' {
			continue
		}
		if langs, ok := t.byExtension[lowered[i:]]; ok {
			return langs, lowered[i:]
		}
	}
	return nil, ""
}
