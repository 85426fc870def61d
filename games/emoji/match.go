/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package emoji

import (
	"regexp"
	"strings"

	"github.com/agnivade/levenshtein"
)

var (
	nonWord    = regexp.MustCompile(`[^\w\s]`)
	whitespace = regexp.MustCompile(`\s+`)
)

// Normalize lowercases s, drops everything but word characters and
// whitespace, and collapses whitespace runs into single spaces.
func Normalize(s string) string {
	s = strings.ToLower(s)
	s = nonWord.ReplaceAllString(s, "")
	s = whitespace.ReplaceAllString(s, " ")

	return strings.TrimSpace(s)
}

// maxDistance is the number of edits tolerated for a normalized answer.
func maxDistance(answer string) int {
	if len(answer) > 5 {
		return 2
	}

	return 1
}

// IsAcceptable reports whether guess is close enough to answer to count as
// correct. Both sides are normalized first; minor typos are tolerated, but
// the guess must also be about as long as the answer.
func IsAcceptable(guess, answer string) bool {
	g, a := Normalize(guess), Normalize(answer)
	if g == a {
		return true
	}

	limit := maxDistance(a)

	diff := len(g) - len(a)
	if diff < 0 {
		diff = -diff
	}
	if diff > limit {
		return false
	}

	return levenshtein.ComputeDistance(g, a) <= limit
}
