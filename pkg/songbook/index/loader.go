package index

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"
	"golang.org/x/text/unicode/norm"

	"github.com/himanishpuri/SongBook/pkg/models"
	"github.com/himanishpuri/SongBook/pkg/songbook/chords"
	"github.com/himanishpuri/SongBook/pkg/songbook/locale"
)

var bom = []byte("\ufeff")

// Loader reads song files from a songs root laid out as <locale>/<file>.txt.
type Loader struct {
	fsys   fs.FS
	scales *locale.Table
	limit  int
}

// NewLoader returns a loader over fsys. limit caps the number of files read
// concurrently by LoadSongs; zero or less uses a default.
func NewLoader(fsys fs.FS, scales *locale.Table, limit int) *Loader {
	if limit <= 0 {
		limit = defaultLimit
	}
	if scales == nil {
		scales = locale.Default()
	}
	return &Loader{fsys: fsys, scales: scales, limit: limit}
}

// ReadLocaleSongs lists the song files of rawLocale sorted by title. When the
// folder does not exist the base language is tried; a missing locale yields
// an empty list.
func (l *Loader) ReadLocaleSongs(ctx context.Context, rawLocale string) ([]models.SongFile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := fs.ReadDir(l.fsys, rawLocale)
	if err != nil {
		if base := locale.Base(rawLocale); base != rawLocale {
			return l.ReadLocaleSongs(ctx, base)
		}
		return []models.SongFile{}, nil
	}

	files := make([]models.SongFile, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), fileExt) {
			continue
		}
		// Names written on some filesystems arrive decomposed.
		sf := ParseFilename(norm.NFC.String(e.Name()))
		sf.Path = rawLocale + pathSep + e.Name()
		files = append(files, sf)
	}
	sort.SliceStable(files, func(i, j int) bool {
		return files[i].Title < files[j].Title
	})
	return files, nil
}

// LoadSong reads the text of song. Leading lines before the first chord
// line are dropped. A read failure is recorded in song.Error and leaves the
// song empty; only context cancellation is returned.
func (l *Loader) LoadSong(ctx context.Context, song *models.Song) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := fs.ReadFile(l.fsys, song.Path)
	if err != nil {
		song.Error = err.Error()
		song.Lines = []string{}
		song.FullText = ""
		return nil
	}

	lines := SongLines(data, l.scales.Scale(song.Locale))
	song.Error = ""
	song.Lines = lines
	song.FullText = strings.Join(lines, " ")
	return nil
}

// LoadSongs loads every song concurrently.
func (l *Loader) LoadSongs(ctx context.Context, songs []*models.Song) error {
	if len(songs) == 0 {
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(l.limit, len(songs)))

	for _, song := range songs {
		song := song
		g.Go(func() error {
			if err := l.LoadSong(gctx, song); err != nil {
				return fmt.Errorf("loading %s: %w", song.Key, err)
			}
			return nil
		})
	}
	return g.Wait()
}

// SongLines splits raw song text into lines and drops everything before the
// first chord line.
func SongLines(data []byte, scale chords.Scale) []string {
	data = bytes.TrimPrefix(data, bom)
	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	lines := strings.Split(text, "\n")
	for len(lines) > 0 && !chords.IsChordLine(lines[0], scale) {
		lines = lines[1:]
	}
	return append([]string{}, lines...)
}
