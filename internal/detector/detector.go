// Package detector implements the staged detection pipeline: filename,
// extension, shebang interpreter, content heuristics, and finally the token
// classifier. Each stage either resolves the file outright or narrows the
// set of candidate languages for the stages after it.
package detector

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/hyply/hyply/internal/langdata"
)

// heuristicWindow caps how much of a file the heuristic regexes see. The
// classifier still tokenizes the whole file.
const heuristicWindow = 128 * 1024

// Strategy identifies the pipeline stage that produced a detection.
type Strategy uint8

const (
	StrategyFilename Strategy = iota
	StrategyExtension
	StrategyInterpreter
	StrategyHeuristics
	StrategyClassifier
)

// String returns the stage name.
func (s Strategy) String() string {
	switch s {
	case StrategyFilename:
		return "filename"
	case StrategyExtension:
		return "extension"
	case StrategyInterpreter:
		return "interpreter"
	case StrategyHeuristics:
		return "heuristics"
	case StrategyClassifier:
		return "classifier"
	default:
		return "unknown"
	}
}

// MarshalJSON renders the strategy as its name.
func (s Strategy) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

// MarshalYAML renders the strategy as its name.
func (s Strategy) MarshalYAML() (interface{}, error) {
	return s.String(), nil
}

// Detection pairs a language name with the strategy that resolved it.
// Consumers may treat classifier results as lower confidence.
type Detection struct {
	Language string   `json:"language"`
	Strategy Strategy `json:"strategy"`
}

// Detector runs the pipeline against a set of knowledge tables.
type Detector struct {
	tables *langdata.Tables
}

// New returns a detector over the given tables.
func New(tables *langdata.Tables) *Detector {
	return &Detector{tables: tables}
}

// Default returns a detector over the embedded tables.
func Default() *Detector {
	return New(langdata.Default())
}

// Tables exposes the knowledge tables the detector was built with.
func (d *Detector) Tables() *langdata.Tables {
	return d.tables
}

// Detect resolves the language of the file at path, reading it lazily: the
// filename and extension stages run without IO, the interpreter stage reads
// one line, and only heuristics and the classifier read the full content.
// An unknowable file yields (nil, nil); read failures yield the error.
func (d *Detector) Detect(path string) (*Detection, error) {
	src := &fileSource{path: path}
	defer src.close()
	return d.run(path, src)
}

// DetectContent resolves the language of path assuming content is the file's
// bytes. It performs no IO and is a pure function of its arguments.
func (d *Detector) DetectContent(path string, content []byte) *Detection {
	if len(content) == 0 {
		return nil
	}
	det, _ := d.run(path, &byteSource{content: content})
	return det
}

func (d *Detector) run(path string, src source) (*Detection, error) {
	base := filepath.Base(path)

	candidates := d.tables.ByFilename(base)
	if len(candidates) == 1 {
		return &Detection{Language: candidates[0].Name, Strategy: StrategyFilename}, nil
	}

	extLangs, ext := d.tables.MatchExtension(base)
	candidates = narrow(candidates, extLangs)
	if len(candidates) == 1 {
		return &Detection{Language: candidates[0].Name, Strategy: StrategyExtension}, nil
	}

	line, err := src.firstLine()
	if err != nil {
		return nil, err
	}
	candidates = narrow(candidates, d.byShebang(line))
	if len(candidates) == 1 {
		return &Detection{Language: candidates[0].Name, Strategy: StrategyInterpreter}, nil
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	content, err := src.all()
	if err != nil {
		return nil, err
	}
	if len(content) == 0 {
		return nil, nil
	}

	if rules := d.tables.Heuristics(ext); len(rules) > 0 {
		matched := applyHeuristics(rules, candidates, prefix(content, heuristicWindow))
		if len(matched) == 1 {
			return &Detection{Language: matched[0].Name, Strategy: StrategyHeuristics}, nil
		}
		if len(matched) > 1 {
			candidates = matched
		}
	}

	language := d.classify(content, candidates)
	return &Detection{Language: language, Strategy: StrategyClassifier}, nil
}

func (d *Detector) byShebang(line []byte) []*langdata.Language {
	interpreter := interpreterFromShebang(line)
	if interpreter == "" {
		return nil
	}
	return d.tables.ByInterpreter(interpreter)
}

// applyHeuristics returns the candidate languages bound by the first
// matching rule, or nil when no rule matches. Rules binding no current
// candidate are skipped.
func applyHeuristics(rules []langdata.Rule, candidates []*langdata.Language, content []byte) []*langdata.Language {
	index := make(map[string]*langdata.Language, len(candidates))
	for _, lang := range candidates {
		index[lang.Name] = lang
	}

	for _, rule := range rules {
		bound := make([]*langdata.Language, 0, len(rule.Languages))
		for _, name := range rule.Languages {
			if lang, ok := index[name]; ok {
				bound = append(bound, lang)
			}
		}
		if len(bound) == 0 {
			continue
		}
		if rule.Match(content) {
			return bound
		}
	}
	return nil
}

// narrow intersects the previous candidates with a stage's matches. A stage
// with no matches leaves the set unchanged; an empty intersection keeps the
// previous candidates rather than discarding the earlier evidence.
func narrow(previous, matches []*langdata.Language) []*langdata.Language {
	if len(previous) == 0 {
		return matches
	}
	if len(matches) == 0 {
		return previous
	}

	in := make(map[*langdata.Language]struct{}, len(matches))
	for _, lang := range matches {
		in[lang] = struct{}{}
	}

	var intersection []*langdata.Language
	for _, lang := range previous {
		if _, ok := in[lang]; ok {
			intersection = append(intersection, lang)
		}
	}
	if len(intersection) == 0 {
		return previous
	}
	return intersection
}

func prefix(content []byte, limit int) []byte {
	if len(content) > limit {
		return content[:limit]
	}
	return content
}

// source feeds the pipeline file bytes. firstLine and all may each be called
// at most once, in that order.
type source interface {
	firstLine() ([]byte, error)
	all() ([]byte, error)
}

type byteSource struct {
	content []byte
}

func (s *byteSource) firstLine() ([]byte, error) {
	for i, b := range s.content {
		if b == '\n' {
			return s.content[:i], nil
		}
	}
	return s.content, nil
}

func (s *byteSource) all() ([]byte, error) {
	return s.content, nil
}

// fileSource opens the file on first use so that detections resolved by
// name alone cost no IO.
type fileSource struct {
	path   string
	file   *os.File
	reader *bufio.Reader
	line   []byte
}

func (s *fileSource) open() error {
	if s.file != nil {
		return nil
	}
	file, err := os.Open(s.path)
	if err != nil {
		return fmt.Errorf("open %s: %w", s.path, err)
	}
	s.file = file
	s.reader = bufio.NewReader(file)
	return nil
}

func (s *fileSource) firstLine() ([]byte, error) {
	if err := s.open(); err != nil {
		return nil, err
	}
	line, err := s.reader.ReadBytes('\n')
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}
	s.line = line
	return line, nil
}

// all returns the full file content, splicing the already-consumed first
// line back onto the remainder.
func (s *fileSource) all() ([]byte, error) {
	if err := s.open(); err != nil {
		return nil, err
	}
	rest, err := io.ReadAll(s.reader)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}
	if len(s.line) == 0 {
		return rest, nil
	}
	content := make([]byte, 0, len(s.line)+len(rest))
	content = append(content, s.line...)
	content = append(content, rest...)
	return content, nil
}

func (s *fileSource) close() {
	if s.file != nil {
		s.file.Close()
	}
}
