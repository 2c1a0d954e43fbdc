package detector

import (
	"sort"

	"github.com/hyply/hyply/internal/langdata"
	"github.com/hyply/hyply/tokenizer"
)

// classify scores content against the candidate set with the naive-Bayes
// frequency model and returns the winner. Candidates absent from the model
// score as if every token were unseen. Ties break toward the
// lexicographically smaller language name; candidates are sorted up front so
// a strict comparison is enough.
func (d *Detector) classify(content []byte, candidates []*langdata.Language) string {
	names := make([]string, len(candidates))
	for i, lang := range candidates {
		names[i] = lang.Name
	}
	sort.Strings(names)

	model := d.tables.Classifier()

	ids := make([]int, len(names))
	position := make(map[int32]int, len(names))
	for i, name := range names {
		if id, ok := model.LanguageID(name); ok {
			ids[i] = id
			position[int32(id)] = i
		} else {
			ids[i] = -1
		}
	}

	// A language missing from the model has no total to normalize against;
	// charge it the worst fallback seen so it can still win on ties only.
	worst := 0.0
	for _, id := range ids {
		if id >= 0 && model.Fallback(id) < worst {
			worst = model.Fallback(id)
		}
	}

	scores := make([]float64, len(names))
	scanner := tokenizer.NewScanner(content)
	for {
		tok, ok := scanner.Next()
		if !ok {
			break
		}

		for i, id := range ids {
			if id >= 0 {
				scores[i] += model.Fallback(id)
			} else {
				scores[i] += worst
			}
		}

		tokenID, seen := model.TokenID(tok.Value)
		if !seen {
			continue
		}
		for _, pair := range model.Pairs(tokenID) {
			if i, ok := position[pair.Lang]; ok {
				scores[i] += pair.Weight - model.Fallback(int(pair.Lang))
			}
		}
	}

	best := 0
	for i := 1; i < len(names); i++ {
		if scores[i] > scores[best] {
			best = i
		}
	}
	return names[best]
}
