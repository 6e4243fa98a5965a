package sheet

import (
	"strings"
	"unicode"

	"github.com/himanishpuri/SongBook/pkg/songbook/chords"
)

// Rule names, in matching order.
const (
	RulePsalmistAssembly = "psalmist-assembly"
	RuleSpeaker          = "speaker"
	RuleChords           = "chords"
	RuleSpecialNote      = "special-note"
	RuleSpecialTitle     = "special-title"
	RuleSpecialText      = "special-text"
	RuleLyric            = "lyric"
)

// CombinedWidth is the fixed width, in characters, of the
// psalmist-and-assembly indicator ("S. A.").
const CombinedWidth = 5

// Classifier classifies song lines for one locale.
type Classifier struct {
	scale chords.Scale
	roles Roles
}

// NewClassifier returns a classifier using scale for chord detection and
// roles for speaker indicators. An empty scale disables chord detection.
func NewClassifier(scale chords.Scale, roles Roles) *Classifier {
	return &Classifier{scale: scale, roles: roles}
}

// Scale returns the chord scale the classifier was built with.
func (c *Classifier) Scale() chords.Scale {
	return c.scale
}

type rule struct {
	name  string
	match func(c *Classifier, text string) bool
	build func(c *Classifier, text string) Line
}

// rules is evaluated top to bottom; the first match wins. The lyric rule
// matches everything and must stay last.
var rules = []rule{
	{RulePsalmistAssembly, (*Classifier).isCombinedIndicator, (*Classifier).combinedIndicator},
	{RuleSpeaker, (*Classifier).isSpeakerIndicator, (*Classifier).speakerIndicator},
	{RuleChords, (*Classifier).isChords, (*Classifier).chordLine},
	{RuleSpecialNote, (*Classifier).isSpecialNote, (*Classifier).specialNote},
	{RuleSpecialTitle, (*Classifier).isSpecialTitle, (*Classifier).specialTitle},
	{RuleSpecialText, (*Classifier).isSpecialText, (*Classifier).specialText},
	{RuleLyric, func(*Classifier, string) bool { return true }, (*Classifier).lyric},
}

// Rules returns the rule names in the order they are tried.
func Rules() []string {
	names := make([]string, len(rules))
	for i, r := range rules {
		names[i] = r.name
	}
	return names
}

// Classify returns the classification of a single raw line.
func (c *Classifier) Classify(text string) Line {
	for _, r := range rules {
		if r.match(c, text) {
			line := r.build(c, text)
			line.Rule = r.name
			return line
		}
	}
	panic("sheet: no rule matched")
}

// ClassifyAll classifies every line and moves trailing footnote markers into
// the line suffix.
func (c *Classifier) ClassifyAll(lines []string) []Line {
	out := make([]Line, len(lines))
	for i, text := range lines {
		line := c.Classify(text)
		if strings.HasSuffix(line.Text, NoteMarker) {
			line.Text = strings.TrimSuffix(line.Text, NoteMarker)
			line.Suffix = NoteMarker
			line.SuffixStyle = StyleChordLine
		}
		out[i] = line
	}
	return out
}

// Process classifies raw lines and lays them out with the given transposition.
func (c *Classifier) Process(lines []string, offset int) []Line {
	return Preprocess(c.ClassifyAll(lines), c.scale, offset)
}

func (c *Classifier) isCombinedIndicator(text string) bool {
	combined := c.roles.Combined()
	return combined != "" && strings.HasPrefix(text, combined)
}

func (c *Classifier) combinedIndicator(text string) Line {
	runes := []rune(text)
	cut := min(CombinedWidth, len(runes))
	return Line{
		Text:                strings.TrimSpace(string(runes[cut:])),
		Style:               StyleNormal,
		Prefix:              string(runes[:cut]) + " ",
		PrefixStyle:         StylePrefix,
		HasSpeakerIndicator: true,
	}
}

func (c *Classifier) isSpeakerIndicator(text string) bool {
	for _, label := range c.roles.Single() {
		if label != "" && strings.HasPrefix(text, label) {
			return true
		}
	}
	return false
}

func (c *Classifier) speakerIndicator(text string) Line {
	// Without a period the whole text stays in the body.
	cut := strings.Index(text, ".") + 1
	return Line{
		Text:                strings.TrimSpace(text[cut:]),
		Style:               StyleNormal,
		Prefix:              text[:cut] + " ",
		PrefixStyle:         StylePrefix,
		HasSpeakerIndicator: true,
	}
}

func (c *Classifier) isChords(text string) bool {
	return chords.IsChordLine(text, c.scale)
}

func (c *Classifier) chordLine(text string) Line {
	return Line{
		Text:                trimRight(text),
		Style:               StyleChordLine,
		HasSpeakerIndicator: true,
		ChordLine:           true,
	}
}

func (c *Classifier) isSpecialNote(text string) bool {
	return strings.HasPrefix(text, NoteMarker)
}

func (c *Classifier) specialNote(text string) Line {
	return Line{
		Text:                strings.TrimSpace(strings.TrimPrefix(text, NoteMarker)),
		Style:               StyleSpecialNote,
		Prefix:              NoteMarker + "  ",
		PrefixStyle:         StyleChordLine,
		HasSpeakerIndicator: true,
		SpecialNote:         true,
	}
}

func (c *Classifier) isSpecialTitle(text string) bool {
	trimmed := strings.TrimSpace(text)
	return strings.HasPrefix(trimmed, "**") && strings.HasSuffix(trimmed, "**")
}

func (c *Classifier) specialTitle(text string) Line {
	return Line{
		Text:                strings.TrimSpace(strings.ReplaceAll(text, "*", "")),
		Style:               StyleSpecialNoteTitle,
		HasSpeakerIndicator: true,
		ParagraphStart:      true,
		SpecialTitle:        true,
	}
}

func (c *Classifier) isSpecialText(text string) bool {
	return strings.HasPrefix(text, "-")
}

func (c *Classifier) specialText(text string) Line {
	return Line{
		Text:                strings.TrimSpace(strings.Replace(text, "-", "", 1)),
		Style:               StyleSpecialNote,
		HasSpeakerIndicator: true,
		SpecialText:         true,
	}
}

func (c *Classifier) lyric(text string) Line {
	body := trimRight(text)
	return Line{
		Text:                body,
		Style:               StyleNormal,
		Sung:                body != "",
		HasSpeakerIndicator: body != "",
	}
}

func trimRight(s string) string {
	return strings.TrimRightFunc(s, unicode.IsSpace)
}
