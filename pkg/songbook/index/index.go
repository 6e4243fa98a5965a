// Package index resolves songbook entries to song files per locale and loads
// their text.
package index

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/himanishpuri/SongBook/pkg/models"
	"github.com/himanishpuri/SongBook/pkg/songbook/locale"
)

var ErrSongNotFound = errors.New("song not found")

const (
	fileExt      = ".txt"
	titleSep     = " - "
	pathSep      = "/"
	defaultLimit = 8
)

// ParseFilename splits a song file name of the form "Title - Source.txt".
// Without a separator the whole name is the title.
func ParseFilename(filename string) models.SongFile {
	name := strings.TrimSuffix(filename, fileExt)
	title, source, found := strings.Cut(name, titleSep)
	if !found {
		return models.SongFile{Title: name, Name: name}
	}
	return models.SongFile{
		Title:  strings.TrimSpace(title),
		Source: strings.TrimSpace(source),
		Name:   name,
	}
}

// SongPath returns the slash-separated path of a song file relative to the
// songs root.
func SongPath(loc, filename string) string {
	return path.Join(loc, strings.TrimSuffix(filename, fileExt)+fileExt)
}

// Entry is one song of the index.
type Entry struct {
	Files models.Files `json:"files"`
}

// Index is the song index: song keys mapped to their files per locale.
type Index struct {
	keys    []string
	entries map[string]Entry
}

// LoadIndex decodes a JSON index of the form {"key": {"files": {...}}}.
func LoadIndex(r io.Reader) (*Index, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read index: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("failed to parse index: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("failed to parse index: expected object, got %v", tok)
	}

	ix := &Index{entries: make(map[string]Entry)}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("failed to parse index: %w", err)
		}
		key := keyTok.(string)

		var e Entry
		if err := dec.Decode(&e); err != nil {
			return nil, fmt.Errorf("failed to parse index entry %s: %w", key, err)
		}
		if len(e.Files) == 0 {
			return nil, fmt.Errorf("index entry %s has no files", key)
		}
		if _, dup := ix.entries[key]; !dup {
			ix.keys = append(ix.keys, key)
		}
		ix.entries[key] = e
	}
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("failed to parse index: %w", err)
	}
	return ix, nil
}

// LoadIndexFile reads the index from a JSON file.
func LoadIndexFile(filename string) (*Index, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open index: %w", err)
	}
	defer f.Close()
	return LoadIndex(f)
}

// Keys returns the song keys in declaration order.
func (ix *Index) Keys() []string {
	return append([]string(nil), ix.keys...)
}

// Len returns the number of songs in the index.
func (ix *Index) Len() int {
	return len(ix.keys)
}

// Entry returns the index entry of key.
func (ix *Index) Entry(key string) (Entry, bool) {
	e, ok := ix.entries[key]
	return e, ok
}

// SongMeta resolves the file backing key in loc. When loc has no file of its
// own the song falls back to its first declared locale and is marked
// patchable; a patch for key and loc then takes precedence.
func (ix *Index) SongMeta(key, loc string, patch models.Patch) (models.Song, error) {
	e, ok := ix.entries[key]
	if !ok {
		return models.Song{}, fmt.Errorf("%w: %s", ErrSongNotFound, key)
	}

	song := models.Song{Key: key, Files: e.Files}
	if file, ok := e.Files.Get(loc); ok {
		assignFile(&song, loc, file)
		return song, nil
	}

	def, _ := e.Files.Default()
	assignFile(&song, def.Locale, def.File)
	song.Patchable = true

	if file, ok := patch.Get(key, loc); ok {
		song.Patched = true
		song.PatchedTitle = song.Title
		assignFile(&song, loc, file)
		locales := make([]string, 0, len(patch[key]))
		for l := range patch[key] {
			locales = append(locales, l)
		}
		sort.Strings(locales)
		for _, l := range locales {
			song.Files = song.Files.With(l, patch[key][l])
		}
	}
	return song, nil
}

// SongsMeta resolves every song for rawLocale, sorted by title. Songs
// without a file for rawLocale are resolved for its base language.
func (ix *Index) SongsMeta(rawLocale string, patch models.Patch) []models.Song {
	base := locale.Base(rawLocale)
	songs := make([]models.Song, 0, len(ix.keys))
	for _, key := range ix.keys {
		song, _ := ix.SongMeta(key, rawLocale, patch)
		if _, ok := song.Files.Get(rawLocale); !ok && base != rawLocale {
			song, _ = ix.SongMeta(key, base, patch)
		}
		songs = append(songs, song)
	}
	sort.SliceStable(songs, func(i, j int) bool {
		return songs[i].Title < songs[j].Title
	})
	return songs
}

func assignFile(song *models.Song, loc, file string) {
	parsed := ParseFilename(file)
	song.Title = parsed.Title
	song.Source = parsed.Source
	song.Name = parsed.Name
	song.Locale = loc
	song.Path = SongPath(loc, parsed.Name)
}
