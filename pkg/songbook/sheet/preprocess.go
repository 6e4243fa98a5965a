package sheet

import (
	"strings"
	"unicode/utf8"

	"github.com/himanishpuri/SongBook/pkg/songbook/chords"
)

// Preprocess lays out classified lines: it transposes chord lines by offset
// semitones and derives margins, chord styles and paragraph starts from the
// neighbouring lines. The input slice is not modified.
//
// The predecessor is read in its final form, so a margin taken from a speaker
// prefix carries through the rest of the song. Only the first line takes its
// margin from the successor, read as classified.
func Preprocess(first []Line, scale chords.Scale, offset int) []Line {
	out := make([]Line, len(first))
	transpose := chords.Reduce(offset) != 0

	for i, it := range first {
		if transpose && it.ChordLine {
			it.Text = chords.TransposeLine(it.Text, offset, scale)
		}

		var next *Line
		if i+1 < len(first) {
			next = &first[i+1]
		}

		// Align with the previous prefix; only the first line looks ahead.
		if it.Prefix == "" {
			if i > 0 {
				if out[i-1].Prefix != "" {
					it.Prefix = blank(out[i-1].Prefix)
				}
			} else if next != nil && next.Prefix != "" {
				it.Prefix = blank(next.Prefix)
			}
		}

		// A blank line before a sung line keeps the height of a chord line.
		if next != nil && strings.TrimSpace(it.Text) == "" && next.Sung {
			it.Style = StyleChordLine
			it.ChordLine = true
		}

		// Chords introducing a speaker section open a paragraph.
		if next != nil && it.ChordLine && next.Prefix != "" {
			it.Style = StyleChordLineWithMargin
			it.ParagraphStart = true
		}

		if next != nil && !it.ChordLine && it.Text == "" && (next.ChordLine || next.Text != "") {
			it.ParagraphStart = true
		}

		out[i] = it
	}
	return out
}

func blank(prefix string) string {
	return strings.Repeat(" ", utf8.RuneCountInString(prefix))
}
