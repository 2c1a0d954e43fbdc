package langdata

import (
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// Rule binds one or more candidate languages to a content pattern for a
// single extension. Rules are applied in declared order; a rule without a
// pattern matches unconditionally and acts as the default.
type Rule struct {
	Languages []string
	pattern   pattern
}

// Match reports whether the rule's pattern holds for content. A nil pattern
// always matches.
func (r Rule) Match(content []byte) bool {
	if r.pattern == nil {
		return true
	}
	return r.pattern.match(content)
}

type pattern interface {
	match(content []byte) bool
}

type positivePattern struct{ re *regexp.Regexp }

func (p positivePattern) match(content []byte) bool { return p.re.Match(content) }

type negativePattern struct{ re *regexp.Regexp }

func (p negativePattern) match(content []byte) bool { return !p.re.Match(content) }

type andPattern struct{ patterns []pattern }

func (p andPattern) match(content []byte) bool {
	for _, sub := range p.patterns {
		if !sub.match(content) {
			return false
		}
	}
	return true
}

type orPattern struct{ patterns []pattern }

func (p orPattern) match(content []byte) bool {
	for _, sub := range p.patterns {
		if sub.match(content) {
			return true
		}
	}
	return false
}

type heuristicsFile struct {
	Disambiguations []disambiguationYAML `yaml:"disambiguations"`
}

type disambiguationYAML struct {
	Extensions []string   `yaml:"extensions"`
	Rules      []ruleYAML `yaml:"rules"`
}

type ruleYAML struct {
	Language        string        `yaml:"language,omitempty"`
	Languages       []string      `yaml:"languages,omitempty"`
	Pattern         string        `yaml:"pattern,omitempty"`
	NegativePattern string        `yaml:"negative_pattern,omitempty"`
	And             []patternYAML `yaml:"and,omitempty"`
	Or              []patternYAML `yaml:"or,omitempty"`
}

type patternYAML struct {
	Pattern         string        `yaml:"pattern,omitempty"`
	NegativePattern string        `yaml:"negative_pattern,omitempty"`
	And             []patternYAML `yaml:"and,omitempty"`
	Or              []patternYAML `yaml:"or,omitempty"`
}

func loadHeuristics(known map[string]*Language) (map[string][]Rule, error) {
	raw, err := dataFS.ReadFile("data/heuristics.yaml")
	if err != nil {
		return nil, fmt.Errorf("read heuristics.yaml: %w", err)
	}
	if err := validateYAML("data/heuristics.schema.json", raw); err != nil {
		return nil, fmt.Errorf("heuristics.yaml: %w", err)
	}

	var file heuristicsFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse heuristics.yaml: %w", err)
	}

	rules := make(map[string][]Rule)
	for _, dis := range file.Disambiguations {
		compiled := make([]Rule, 0, len(dis.Rules))
		for _, ry := range dis.Rules {
			rule, err := compileRule(ry, known)
			if err != nil {
				return nil, fmt.Errorf("heuristics for %v: %w", dis.Extensions, err)
			}
			compiled = append(compiled, rule)
		}
		for _, ext := range dis.Extensions {
			key := normalizeExt(ext)
			if _, dup := rules[key]; dup {
				return nil, fmt.Errorf("duplicate heuristics for extension %q", ext)
			}
			rules[key] = compiled
		}
	}
	return rules, nil
}

func compileRule(ry ruleYAML, known map[string]*Language) (Rule, error) {
	langs := ry.Languages
	if ry.Language != "" {
		langs = append([]string{ry.Language}, langs...)
	}
	if len(langs) == 0 {
		return Rule{}, fmt.Errorf("rule binds no language")
	}
	for _, name := range langs {
		if _, ok := known[name]; !ok {
			return Rule{}, fmt.Errorf("rule references unknown language %q", name)
		}
	}

	pat, err := compilePattern(patternYAML{
		Pattern:         ry.Pattern,
		NegativePattern: ry.NegativePattern,
		And:             ry.And,
		Or:              ry.Or,
	})
	if err != nil {
		return Rule{}, err
	}
	return Rule{Languages: langs, pattern: pat}, nil
}

// compilePattern returns nil for an empty spec, which makes the rule an
// unconditional default.
func compilePattern(py patternYAML) (pattern, error) {
	switch {
	case py.Pattern != "":
		re, err := regexp.Compile(py.Pattern)
		if err != nil {
			return nil, fmt.Errorf("pattern %q: %w", py.Pattern, err)
		}
		return positivePattern{re: re}, nil
	case py.NegativePattern != "":
		re, err := regexp.Compile(py.NegativePattern)
		if err != nil {
			return nil, fmt.Errorf("negative pattern %q: %w", py.NegativePattern, err)
		}
		return negativePattern{re: re}, nil
	case len(py.And) > 0:
		subs, err := compilePatterns(py.And)
		if err != nil {
			return nil, err
		}
		return andPattern{patterns: subs}, nil
	case len(py.Or) > 0:
		subs, err := compilePatterns(py.Or)
		if err != nil {
			return nil, err
		}
		return orPattern{patterns: subs}, nil
	default:
		return nil, nil
	}
}

func compilePatterns(specs []patternYAML) ([]pattern, error) {
	patterns := make([]pattern, 0, len(specs))
	for _, spec := range specs {
		sub, err := compilePattern(spec)
		if err != nil {
			return nil, err
		}
		if sub == nil {
			return nil, fmt.Errorf("empty pattern inside composite")
		}
		patterns = append(patterns, sub)
	}
	return patterns, nil
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(ext)
	if len(ext) > 0 && ext[0] != '.' {
		return "." + ext
	}
	return ext
}
