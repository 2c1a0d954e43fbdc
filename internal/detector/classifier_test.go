package detector

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	d := Default()
	tables := d.Tables()

	tests := []struct {
		name       string
		candidates []string
		content    string
		expected   string
	}{
		{
			name:       "perl over prolog",
			candidates: []string{"Perl", "Prolog"},
			content:    "use strict;\nmy $x = 1;\nprint $x;\n",
			expected:   "Perl",
		},
		{
			name:       "prolog over perl",
			candidates: []string{"Perl", "Prolog"},
			content:    "parent(tom, bob).\nancestor(X, Y) :- parent(X, Y).\n",
			expected:   "Prolog",
		},
		{
			name:       "rust over c",
			candidates: []string{"C", "Rust"},
			content:    "fn main() { let mut x = 0; println!(\"{}\", x); }",
			expected:   "Rust",
		},
		{
			name:       "c over rust",
			candidates: []string{"C", "Rust"},
			content:    "#include <stdio.h>\nint main(void) { printf(\"hi\"); return 0; }",
			expected:   "C",
		},
		{
			name:       "erlang over javascript",
			candidates: []string{"Erlang", "JavaScript"},
			content:    "-module(x).\n-export([go/0]).\ngo() -> ok.\n",
			expected:   "Erlang",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			langs := lookup(tables, tt.candidates)
			require.Len(t, langs, len(tt.candidates))
			assert.Equal(t, tt.expected, d.classify([]byte(tt.content), langs))
		})
	}
}

// Candidates the model has never seen tie at the worst fallback score and
// resolve to the lexicographically smaller name.
func TestClassifyTieBreak(t *testing.T) {
	d := Default()
	tables := d.Tables()

	langs := lookup(tables, []string{"Zig", "Nim"})
	require.Len(t, langs, 2)

	winner := d.classify([]byte("some bytes neither has seen"), langs)
	assert.Equal(t, "Nim", winner)

	// Order of the candidate slice must not matter.
	winner = d.classify([]byte("some bytes neither has seen"), lookup(tables, []string{"Nim", "Zig"}))
	assert.Equal(t, "Nim", winner)
}
