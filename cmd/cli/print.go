package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"github.com/himanishpuri/SongBook/pkg/models"
	"github.com/himanishpuri/SongBook/pkg/songbook"
	"github.com/himanishpuri/SongBook/pkg/songbook/sheet"
)

const titleWidth = 40

var (
	chordColor   = color.New(color.FgCyan, color.Bold)
	prefixColor  = color.New(color.FgRed)
	noteColor    = color.New(color.FgYellow)
	titleColor   = color.New(color.FgYellow, color.Bold)
	headingColor = color.New(color.Bold)
	dimColor     = color.New(color.FgHiBlack)
)

// paint applies the terminal color of a sheet style.
func paint(style sheet.Style, text string) string {
	switch style {
	case sheet.StyleChordLine, sheet.StyleChordLineWithMargin:
		return chordColor.Sprint(text)
	case sheet.StylePrefix:
		return prefixColor.Sprint(text)
	case sheet.StyleSpecialNote:
		return noteColor.Sprint(text)
	case sheet.StyleSpecialNoteTitle:
		return titleColor.Sprint(text)
	default:
		return text
	}
}

// formatLine renders one sheet line: prefix, body and suffix.
func formatLine(l sheet.Line) string {
	var b strings.Builder
	if l.Prefix != "" {
		b.WriteString(paint(l.PrefixStyle, l.Prefix))
	}
	b.WriteString(paint(l.Style, l.Text))
	if l.Suffix != "" {
		b.WriteString(paint(l.SuffixStyle, l.Suffix))
	}
	return b.String()
}

func printSheet(w io.Writer, sh *songbook.Sheet) {
	song := sh.Song
	fmt.Fprintln(w, headingColor.Sprint(song.Title))
	if song.Source != "" {
		fmt.Fprintln(w, dimColor.Sprint(song.Source))
	}
	if song.Patched {
		fmt.Fprintln(w, dimColor.Sprintf("(patched, originally %q)", song.PatchedTitle))
	}
	if sh.Offset != 0 {
		fmt.Fprintln(w, dimColor.Sprintf("Transposed %+d, starting on %s", sh.Offset, sh.InitialChord))
	}
	if song.Error != "" {
		fmt.Fprintln(w, color.RedString("Could not read song: %s", song.Error))
		return
	}
	fmt.Fprintln(w)

	for _, l := range sh.Lines {
		if l.ParagraphStart && !l.ChordLine && l.Text == "" {
			fmt.Fprintln(w)
			continue
		}
		fmt.Fprintln(w, formatLine(l))
	}
}

// fit pads or truncates s to width terminal cells.
func fit(s string, width int) string {
	if runewidth.StringWidth(s) > width {
		s = runewidth.Truncate(s, width, "…")
	}
	return runewidth.FillRight(s, width)
}

func printSongs(w io.Writer, songs []models.Song) {
	if len(songs) == 0 {
		fmt.Fprintln(w, "📭 No songs found")
		return
	}

	fmt.Fprintf(w, "📚 %d song(s):\n\n", len(songs))
	for i, s := range songs {
		var flags []string
		if s.Patched {
			flags = append(flags, "patched")
		} else if s.Patchable {
			flags = append(flags, "patchable")
		}
		fmt.Fprintf(w, "%4d. %s %s %s %s\n",
			i+1,
			fit(s.Title, titleWidth),
			dimColor.Sprint(fit(s.Source, titleWidth)),
			fit(s.Locale, 5),
			strings.Join(flags, ","),
		)
		fmt.Fprintf(w, "      %s\n", dimColor.Sprint(s.Key))
	}
}

func printFiles(w io.Writer, files []models.SongFile) {
	if len(files) == 0 {
		fmt.Fprintln(w, "📭 No song files found")
		return
	}
	for _, f := range files {
		fmt.Fprintf(w, "%s %s\n", fit(f.Title, titleWidth), dimColor.Sprint(f.Source))
	}
}

func printPatches(w io.Writer, entries []models.PatchEntry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "📭 No patches")
		return
	}
	for _, e := range entries {
		fmt.Fprintf(w, "%s %s %s\n", fit(e.SongKey, 24), fit(e.Locale, 6), e.File)
	}
}

// printClassification shows the rule and style behind every line.
func printClassification(w io.Writer, lines []sheet.Line) {
	for i, l := range lines {
		var marks []string
		if l.ParagraphStart {
			marks = append(marks, "¶")
		}
		if l.Sung {
			marks = append(marks, "♪")
		}
		fmt.Fprintf(w, "%3d %s %s %s %s\n",
			i+1,
			fit(l.Rule, 18),
			fit(l.Style.String(), 20),
			fit(strings.Join(marks, ""), 2),
			formatLine(l),
		)
	}
}

func printCheck(w io.Writer, locales []string, problems []error) {
	fmt.Fprintf(w, "Locales: %s\n", strings.Join(locales, ", "))
	if len(problems) == 0 {
		fmt.Fprintln(w, color.GreenString("✅ Locale configuration is valid"))
		return
	}
	for _, p := range problems {
		fmt.Fprintf(w, "%s %v\n", color.RedString("✗"), p)
	}
}
