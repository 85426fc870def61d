package emoji

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Piece of Cake", "piece of cake"},
		{"  piece   of\tcake!!  ", "piece of cake"},
		{"It's raining cats & dogs.", "its raining cats dogs"},
		{"don't_look", "dont_look"},
		{"", ""},
		{"?!", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Normalize(tt.in), "Normalize(%q)", tt.in)
	}
}

func TestIsAcceptable(t *testing.T) {
	tests := []struct {
		name   string
		guess  string
		answer string
		want   bool
	}{
		{"exact", "piece of cake", "piece of cake", true},
		{"case and punctuation", "PIECE, of cake!", "piece of cake", true},
		{"one deletion", "piece of cak", "piece of cake", true},
		{"two substitutions", "peice of cake", "piece of cake", true},
		{"too short despite overlap", "cake", "piece of cake", false},
		{"three edits", "pice f cak", "piece of cake", false},
		{"short answer allows one edit", "tme", "time", true},
		{"short answer rejects two edits", "tm", "time", false},
		{"empty guess", "", "time is money", false},
		{"empty guess short answer", "", "a", true},
		{"unrelated same length", "xxxxx xx xxxx", "piece of cake", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsAcceptable(tt.guess, tt.answer))
		})
	}
}

func TestIsAcceptableIgnoresCaseAndPunctuation(t *testing.T) {
	answers := []string{"piece of cake", "time is money", "break the ice", "busy as a bee"}
	guesses := []string{"piece of cak", "time is mony", "brake the ice", "bussy as a be", "cake", "ice"}

	for _, a := range answers {
		for _, g := range guesses {
			want := IsAcceptable(g, a)

			assert.Equal(t, want, IsAcceptable(strings.ToUpper(g)+"!", a), "guess %q answer %q", g, a)
			assert.Equal(t, want, IsAcceptable(g, strings.ToUpper(a)+"."), "guess %q answer %q", g, a)
		}
	}
}

func TestEqualNormalizedFormsAlwaysAccept(t *testing.T) {
	for _, p := range defaultPhrases {
		assert.True(t, IsAcceptable(p.Answer, p.Answer))
		assert.True(t, IsAcceptable("  "+strings.ToUpper(p.Answer)+"?! ", p.Answer))
	}
}
