package models

// SongFile is the metadata parsed from a song file name of the form
// "Title - Source.txt".
type SongFile struct {
	Title  string `json:"title"`
	Source string `json:"source"`
	Name   string `json:"name"` // File name without the .txt extension
	Path   string `json:"path,omitempty"`
}

// Song is a songbook entry resolved for one locale.
type Song struct {
	Key    string `json:"key"`
	Title  string `json:"title"`
	Source string `json:"source"`
	Name   string `json:"name"`
	Path   string `json:"path"`   // Slash-separated path relative to the songs root
	Locale string `json:"locale"` // Locale the file was taken from
	Files  Files  `json:"files"`

	Patchable    bool   `json:"patchable"` // No file exists for the requested locale
	Patched      bool   `json:"patched"`
	PatchedTitle string `json:"patchedTitle,omitempty"` // Title before the patch was applied

	Lines    []string `json:"lines,omitempty"`
	FullText string   `json:"fullText,omitempty"`
	Error    string   `json:"error,omitempty"` // Set when the song file could not be read
}

// Loaded reports whether the song text has been read.
func (s *Song) Loaded() bool {
	return s.Lines != nil || s.Error != ""
}
