package chords

import (
	"regexp"
	"strings"
)

// decorations matches everything that may decorate a chord name: brackets,
// sharps, flats, extensions, bass slashes, minor dashes and the aug/dim
// markers. Digits 5 and 6 are included as written in the song files.
var decorations = regexp.MustCompile(`\[|\]|#|\*|5|6|7|9|b|-|\+|/|\x{2013}|\x{2217}|aum|dim`)

// Clean removes every decoration from token.
func Clean(token string) string {
	return decorations.ReplaceAllString(token, "")
}

// IsChordLine reports whether every word of text is a chord of the scale once
// decorations are removed. Decorations split words, so "C/G" counts as two
// chords. A line without any word is not a chord line, and an empty scale
// never matches.
func IsChordLine(text string, scale Scale) bool {
	if len(scale) == 0 {
		return false
	}
	cleaned := decorations.ReplaceAllString(strings.TrimSpace(text), " ")
	words := 0
	for _, w := range strings.Split(strings.ToLower(cleaned), " ") {
		if w == "" {
			continue
		}
		words++
		if scale.IndexFold(w) < 0 {
			return false
		}
	}
	return words > 0
}
