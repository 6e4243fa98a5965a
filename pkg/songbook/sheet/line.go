// Package sheet turns the raw lines of a song file into chord sheet lines:
// each line is classified by role (chords, speaker indicator, notes, lyrics)
// and then laid out against its neighbours.
package sheet

// Style is the rendering tag of a line or of its prefix/suffix. Painting a
// style is left to the renderer.
type Style int

const (
	StyleNone Style = iota
	StyleNormal
	StyleChordLine
	StyleChordLineWithMargin
	StyleSpecialNote
	StyleSpecialNoteTitle
	StylePrefix
)

func (s Style) String() string {
	switch s {
	case StyleNormal:
		return "normal"
	case StyleChordLine:
		return "chordLine"
	case StyleChordLineWithMargin:
		return "chordLineWithMargin"
	case StyleSpecialNote:
		return "specialNote"
	case StyleSpecialNoteTitle:
		return "specialNoteTitle"
	case StylePrefix:
		return "prefix"
	default:
		return "none"
	}
}

// MarshalText encodes the style by name so JSON output stays readable.
func (s Style) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// NoteMarker starts a special note line and, at the end of a line, marks a
// footnote reference.
const NoteMarker = "∗"

// Line is one classified line of a song.
type Line struct {
	Text        string `json:"text"`
	Style       Style  `json:"style"`
	Prefix      string `json:"prefix,omitempty"`
	PrefixStyle Style  `json:"prefixStyle"`
	Suffix      string `json:"suffix,omitempty"`
	SuffixStyle Style  `json:"suffixStyle"`

	// Sung is set for lyric lines with text.
	Sung                bool `json:"sung"`
	HasSpeakerIndicator bool `json:"hasSpeakerIndicator"`
	ChordLine           bool `json:"chordLine"`
	ParagraphStart      bool `json:"paragraphStart"`
	SpecialNote         bool `json:"specialNote"`
	SpecialTitle        bool `json:"specialTitle"`
	SpecialText         bool `json:"specialText"`

	// Rule names the classification rule that produced the line.
	Rule string `json:"rule"`
}

// Roles holds the speaker labels of a locale as they appear at the start of a
// line, e.g. "S." for the psalmist and "A." for the assembly.
type Roles struct {
	Psalmist string `yaml:"psalmist" json:"psalmist"`
	Assembly string `yaml:"assembly" json:"assembly"`
	Priest   string `yaml:"priest" json:"priest"`
	Men      string `yaml:"men" json:"men"`
	Women    string `yaml:"women" json:"women"`
	Children string `yaml:"children" json:"children"`
}

// Single returns the single-role labels in matching order.
func (r Roles) Single() []string {
	return []string{r.Psalmist, r.Assembly, r.Priest, r.Men, r.Women, r.Children}
}

// Combined is the psalmist-and-assembly indicator, or "" when either label
// is missing.
func (r Roles) Combined() string {
	if r.Psalmist == "" || r.Assembly == "" {
		return ""
	}
	return r.Psalmist + " " + r.Assembly
}
