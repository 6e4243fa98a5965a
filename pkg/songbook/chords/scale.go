package chords

import (
	"errors"
	"fmt"
	"strings"
)

// Steps is the number of semitones in a chord scale.
const Steps = 12

var (
	ErrScaleSize      = errors.New("chord scale must have 12 entries")
	ErrScaleDuplicate = errors.New("chord scale has duplicate entries")
	ErrScaleEmptyStep = errors.New("chord scale has an empty entry")
	ErrUnknownChord   = errors.New("unknown chord")
)

// Scale is the ordered list of chord names of one locale, lowest step first.
type Scale []string

// ParseScale splits a space separated scale definition. No trimming is done,
// so a malformed definition produces a scale of the wrong size; use Validate
// to detect that.
func ParseScale(def string) Scale {
	if def == "" {
		return Scale{}
	}
	return Scale(strings.Split(def, " "))
}

// Index returns the position of chord in the scale, or -1.
func (s Scale) Index(chord string) int {
	for i, c := range s {
		if c == chord {
			return i
		}
	}
	return -1
}

// IndexFold is Index with case-insensitive comparison.
func (s Scale) IndexFold(chord string) int {
	for i, c := range s {
		if strings.EqualFold(c, chord) {
			return i
		}
	}
	return -1
}

// At returns the chord at step i reduced modulo 12. The second result is false
// when the reduced step falls outside a short (malformed) scale.
func (s Scale) At(i int) (string, bool) {
	i = Reduce(i)
	if i >= len(s) {
		return "", false
	}
	return s[i], true
}

// Validate reports the first structural problem of the scale.
func (s Scale) Validate() error {
	if len(s) != Steps {
		return fmt.Errorf("%w: got %d", ErrScaleSize, len(s))
	}
	seen := make(map[string]struct{}, len(s))
	for i, c := range s {
		if c == "" {
			return fmt.Errorf("%w: step %d", ErrScaleEmptyStep, i)
		}
		if _, dup := seen[c]; dup {
			return fmt.Errorf("%w: %q", ErrScaleDuplicate, c)
		}
		seen[c] = struct{}{}
	}
	return nil
}

// String joins the scale back into its definition form.
func (s Scale) String() string {
	return strings.Join(s, " ")
}

// Reduce maps any step offset into [0, 12).
func Reduce(step int) int {
	step %= Steps
	if step < 0 {
		step += Steps
	}
	return step
}
