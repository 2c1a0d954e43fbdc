package langdata

import (
	"fmt"
	"math"
	"sort"

	"gopkg.in/yaml.v3"
)

// unseenCount stands in for tokens a language has never been observed with.
const unseenCount = 1e-5

// Model is the classifier weight table. Language names and token texts are
// interned to small integers at load; the scoring loop works on ids and a
// flat pair array, never on strings or nested maps.
type Model struct {
	langs    []string
	langIDs  map[string]int
	fallback []float64
	tokenIDs map[string]int32
	offsets  []int32
	pairs    []Pair
}

// Pair is one (language, log-weight) entry for a token.
type Pair struct {
	Lang   int32
	Weight float64
}

type frequenciesFile struct {
	Frequencies map[string]map[string]float64 `yaml:"frequencies"`
}

func loadModel(known map[string]*Language) (*Model, error) {
	raw, err := dataFS.ReadFile("data/frequencies.yaml")
	if err != nil {
		return nil, fmt.Errorf("read frequencies.yaml: %w", err)
	}
	if err := validateYAML("data/frequencies.schema.json", raw); err != nil {
		return nil, fmt.Errorf("frequencies.yaml: %w", err)
	}

	var file frequenciesFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse frequencies.yaml: %w", err)
	}
	for name := range file.Frequencies {
		if _, ok := known[name]; !ok {
			return nil, fmt.Errorf("frequencies reference unknown language %q", name)
		}
	}
	return buildModel(file.Frequencies), nil
}

// buildModel interns languages and tokens and lays the weights out as
// token id -> offset into a flat (language id, weight) array.
func buildModel(frequencies map[string]map[string]float64) *Model {
	langs := make([]string, 0, len(frequencies))
	for name := range frequencies {
		langs = append(langs, name)
	}
	sort.Strings(langs)

	m := &Model{
		langs:    langs,
		langIDs:  make(map[string]int, len(langs)),
		fallback: make([]float64, len(langs)),
		tokenIDs: make(map[string]int32),
	}

	totals := make([]float64, len(langs))
	for id, name := range langs {
		m.langIDs[name] = id
		for _, count := range frequencies[name] {
			totals[id] += count
		}
		if totals[id] == 0 {
			totals[id] = 1
		}
		m.fallback[id] = math.Log(unseenCount / totals[id])
	}

	tokenSet := make(map[string]struct{})
	for _, counts := range frequencies {
		for token := range counts {
			tokenSet[token] = struct{}{}
		}
	}
	tokens := make([]string, 0, len(tokenSet))
	for token := range tokenSet {
		tokens = append(tokens, token)
	}
	sort.Strings(tokens)

	m.offsets = make([]int32, len(tokens)+1)
	for i, token := range tokens {
		m.tokenIDs[token] = int32(i)
		m.offsets[i] = int32(len(m.pairs))
		for id, name := range langs {
			if count, ok := frequencies[name][token]; ok {
				m.pairs = append(m.pairs, Pair{
					Lang:   int32(id),
					Weight: math.Log(count / totals[id]),
				})
			}
		}
	}
	m.offsets[len(tokens)] = int32(len(m.pairs))
	return m
}

// LanguageID returns the interned id for a language name.
func (m *Model) LanguageID(name string) (int, bool) {
	id, ok := m.langIDs[name]
	return id, ok
}

// Fallback returns the log-probability charged to a language for a token it
// has never been observed with.
func (m *Model) Fallback(lang int) float64 {
	return m.fallback[lang]
}

// TokenID returns the interned id for a token text.
func (m *Model) TokenID(text []byte) (int32, bool) {
	id, ok := m.tokenIDs[string(text)]
	return id, ok
}

// Pairs returns the (language, weight) entries recorded for a token id.
func (m *Model) Pairs(id int32) []Pair {
	return m.pairs[m.offsets[id]:m.offsets[id+1]]
}
