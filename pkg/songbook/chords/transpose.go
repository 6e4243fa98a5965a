package chords

import (
	"fmt"
	"strings"
)

// leadChars may precede a chord name inside a token, e.g. "[Do]".
const leadChars = "[(*∗"

// BaseChord splits token into its leading decoration, the longest scale entry
// found right after it, and the verbatim rest. index is -1 when no scale entry
// starts the token; in that case lead and base are empty and rest is token.
func BaseChord(token string, scale Scale) (lead, base, rest string, index int) {
	body := strings.TrimLeft(token, leadChars)
	best := -1
	for i, c := range scale {
		if c == "" || !strings.HasPrefix(body, c) {
			continue
		}
		if best < 0 || len(c) > len(scale[best]) {
			best = i
		}
	}
	if best < 0 {
		return "", "", token, -1
	}
	lead = token[:len(token)-len(body)]
	base = scale[best]
	return lead, base, body[len(base):], best
}

// TransposeToken moves the base chord of token by offset semitones and keeps
// everything around it. Tokens without a recognised chord are returned as is.
func TransposeToken(token string, offset int, scale Scale) string {
	lead, _, rest, idx := BaseChord(token, scale)
	if idx < 0 {
		return token
	}
	moved, ok := scale.At(idx + offset)
	if !ok {
		return token
	}
	return lead + moved + rest
}

// TransposeLine transposes every space separated token of a chord line.
func TransposeLine(line string, offset int, scale Scale) string {
	if Reduce(offset) == 0 {
		return line
	}
	tokens := strings.Split(line, " ")
	for i, t := range tokens {
		tokens[i] = TransposeToken(t, offset, scale)
	}
	return strings.Join(tokens, " ")
}

// InitialChord returns the base chord of the first word of line, ignoring
// indentation. When no scale entry starts that word the decoration-stripped
// word is returned.
func InitialChord(line string, scale Scale) string {
	words := strings.Fields(line)
	if len(words) == 0 {
		return ""
	}
	first := words[0]
	if _, base, _, idx := BaseChord(first, scale); idx >= 0 {
		return base
	}
	return Clean(first)
}

// Offset computes the transposition needed to make startLine begin with the
// target chord. The result is the raw difference of scale positions and may be
// negative.
func Offset(startLine, target string, scale Scale) (int, error) {
	initial := InitialChord(startLine, scale)
	start := scale.Index(initial)
	if start < 0 {
		return 0, fmt.Errorf("%w: starting chord %q", ErrUnknownChord, initial)
	}
	end := scale.Index(target)
	if end < 0 {
		if _, _, _, idx := BaseChord(target, scale); idx >= 0 {
			end = idx
		}
	}
	if end < 0 {
		return 0, fmt.Errorf("%w: target chord %q", ErrUnknownChord, target)
	}
	return end - start, nil
}
