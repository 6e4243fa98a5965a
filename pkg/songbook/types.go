package songbook

import (
	"errors"

	"github.com/himanishpuri/SongBook/pkg/models"
	"github.com/himanishpuri/SongBook/pkg/songbook/index"
	"github.com/himanishpuri/SongBook/pkg/songbook/sheet"
)

var (
	ErrNoIndex      = errors.New("song index not loaded")
	ErrSongNotFound = index.ErrSongNotFound
	ErrInvalidPatch = errors.New("invalid patch")
	ErrNotPatchable = errors.New("song has its own file for this locale")
	ErrNoChords     = errors.New("song has no chord line")
)

// RenderOptions selects the transposition of a rendered song. A non-empty
// Target wins over Transpose: the offset is computed from the first chord of
// the song to Target.
type RenderOptions struct {
	Transpose int
	Target    string
}

// Sheet is a song laid out for display.
type Sheet struct {
	Song         models.Song  `json:"song"`
	Offset       int          `json:"offset"`
	InitialChord string       `json:"initialChord,omitempty"`
	Lines        []sheet.Line `json:"lines"`
}
