// Package license reports the licenses declared at the root of an analyzed
// tree.
package license

import (
	"math"
	"sort"

	"github.com/go-enry/go-license-detector/v4/licensedb"
	"github.com/go-enry/go-license-detector/v4/licensedb/filer"
)

// minConfidence filters out speculative matches.
const minConfidence = 0.9

// Match is one detected license.
type Match struct {
	License    string  `json:"license" yaml:"license"`
	Confidence float64 `json:"confidence" yaml:"confidence"`
	File       string  `json:"file" yaml:"file"`
}

// DetectRoot scans LICENSE-style files in dir and returns the confident
// matches sorted by confidence descending. Detection failures yield an
// empty result; a missing license is not an error.
func DetectRoot(dir string) []Match {
	fs, err := filer.FromDirectory(dir)
	if err != nil {
		return nil
	}

	detected, err := licensedb.Detect(fs)
	if err != nil {
		return nil
	}

	var matches []Match
	for licenseID, match := range detected {
		if match.Confidence > minConfidence {
			matches = append(matches, Match{
				License:    licenseID,
				Confidence: math.Round(float64(match.Confidence)*100) / 100,
				File:       match.File,
			})
		}
	}
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Confidence != matches[j].Confidence {
			return matches[i].Confidence > matches[j].Confidence
		}
		return matches[i].License < matches[j].License
	})
	return matches
}
