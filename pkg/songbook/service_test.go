package songbook

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/himanishpuri/SongBook/pkg/logger"
	"github.com/himanishpuri/SongBook/pkg/models"
	"github.com/himanishpuri/SongBook/pkg/songbook/chords"
)

const testIndex = `{
	"alabare": {"files": {"es": "Alabaré - Anónimo.txt", "en": "I Will Praise - Anonymous.txt"}},
	"resucito": {"files": {"es": "Resucitó - Kiko Argüello.txt"}},
	"sinacordes": {"files": {"es": "Sin acordes - Nadie.txt"}}
}`

// memStorage keeps patches in memory.
type memStorage struct {
	mu      sync.Mutex
	entries map[string]models.PatchEntry
	closed  bool
}

func newMemStorage() *memStorage {
	return &memStorage{entries: make(map[string]models.PatchEntry)}
}

func (m *memStorage) SetPatch(key, locale, file string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key+"/"+locale] = models.PatchEntry{SongKey: key, Locale: locale, File: file}
	return nil
}

func (m *memStorage) RemovePatch(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, e := range m.entries {
		if e.SongKey == key {
			delete(m.entries, id)
		}
	}
	return nil
}

func (m *memStorage) ClearPatches() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = make(map[string]models.PatchEntry)
	return nil
}

func (m *memStorage) ListPatches() ([]models.PatchEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.PatchEntry, 0, len(m.entries))
	for _, e := range m.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].SongKey+"/"+out[i].Locale < out[j].SongKey+"/"+out[j].Locale
	})
	return out, nil
}

func (m *memStorage) Patches() (models.Patch, error) {
	entries, _ := m.ListPatches()
	patch := make(models.Patch)
	for _, e := range entries {
		patch.Set(e.SongKey, e.Locale, e.File)
	}
	return patch, nil
}

func (m *memStorage) Close() error {
	m.closed = true
	return nil
}

func testSongsFS() fstest.MapFS {
	return fstest.MapFS{
		"index.json":                       {Data: []byte(testIndex)},
		"es/Alabaré - Anónimo.txt":         {Data: []byte("Alabaré\n\nDo Sol\nAlabaré, alabaré\nLa- Mi\nS. a mi Señor\n")},
		"es/Resucitó - Kiko Argüello.txt":  {Data: []byte("Resucitó\nLa-  Re- Mi7\nResucitó, resucitó\n")},
		"es/Sin acordes - Nadie.txt":       {Data: []byte("solo texto\n")},
		"en/I Will Praise - Anonymous.txt": {Data: []byte("C G\nI will praise\n")},
		"en/He Is Risen - Kiko.txt":        {Data: []byte("A- D- E7\nHe is risen\n")},
	}
}

// Helper function to create a service over an in-memory songs tree
func setupTestService(t *testing.T, fsys fstest.MapFS) (*songbookService, *memStorage) {
	t.Helper()

	stor := newMemStorage()
	svc, err := NewService(
		WithFS(fsys),
		WithStorage(stor),
		WithLogger(logger.NewNop()),
		WithLoadConcurrency(2),
	)
	require.NoError(t, err, "Failed to create service")
	t.Cleanup(func() {
		svc.Close()
	})
	return svc.(*songbookService), stor
}

func songTitles(songs []models.Song) []string {
	out := make([]string, len(songs))
	for i, s := range songs {
		out[i] = s.Locale + ":" + s.Title
	}
	return out
}

func TestListSongs(t *testing.T) {
	svc, _ := setupTestService(t, testSongsFS())
	ctx := context.Background()

	songs, err := svc.ListSongs(ctx, "es")
	require.NoError(t, err)
	assert.Equal(t, []string{"es:Alabaré", "es:Resucitó", "es:Sin acordes"}, songTitles(songs))

	songs, err = svc.ListSongs(ctx, "en-GB")
	require.NoError(t, err)
	assert.Equal(t, []string{"en:I Will Praise", "es:Resucitó", "es:Sin acordes"}, songTitles(songs))
	for _, s := range songs {
		assert.Equal(t, s.Locale == "es", s.Patchable, "patchable flag of %s", s.Key)
	}
}

func TestGetSong(t *testing.T) {
	svc, _ := setupTestService(t, testSongsFS())

	song, err := svc.GetSong(context.Background(), "resucito", "es-AR")
	require.NoError(t, err)
	assert.Equal(t, "Resucitó", song.Title)
	assert.Equal(t, "Kiko Argüello", song.Source)
	assert.Equal(t, []string{"La-  Re- Mi7", "Resucitó, resucitó", ""}, song.Lines)
	assert.Equal(t, "La-  Re- Mi7 Resucitó, resucitó ", song.FullText)

	_, err = svc.GetSong(context.Background(), "nope", "es")
	assert.ErrorIs(t, err, ErrSongNotFound)
}

func TestGetSongUsesCache(t *testing.T) {
	fsys := testSongsFS()
	svc, _ := setupTestService(t, fsys)
	ctx := context.Background()
	path := "es/Resucitó - Kiko Argüello.txt"

	_, err := svc.GetSong(ctx, "resucito", "es")
	require.NoError(t, err)

	fsys[path] = &fstest.MapFile{Data: []byte("Sol Re\nCambiado\n")}

	song, err := svc.GetSong(ctx, "resucito", "es")
	require.NoError(t, err)
	assert.Equal(t, "La-  Re- Mi7", song.Lines[0], "Expected cached lines")

	svc.invalidate(path)

	song, err = svc.GetSong(ctx, "resucito", "es")
	require.NoError(t, err)
	assert.Equal(t, "Sol Re", song.Lines[0], "Expected reloaded lines")
}

func TestRender(t *testing.T) {
	svc, _ := setupTestService(t, testSongsFS())
	ctx := context.Background()

	out, err := svc.Render(ctx, "resucito", "es", RenderOptions{Transpose: 3})
	require.NoError(t, err)
	assert.Equal(t, 3, out.Offset)
	assert.Equal(t, "Do-  Fa- Sol7", out.Lines[0].Text)
	assert.Equal(t, "Do", out.InitialChord)
	assert.Equal(t, "Resucitó, resucitó", out.Lines[1].Text)

	plain, err := svc.Render(ctx, "resucito", "es", RenderOptions{})
	require.NoError(t, err)
	assert.Equal(t, "La-  Re- Mi7", plain.Lines[0].Text, "Transposing must not alter the cached song")
	assert.Equal(t, "La", plain.InitialChord)
}

func TestRenderToTarget(t *testing.T) {
	svc, _ := setupTestService(t, testSongsFS())
	ctx := context.Background()

	out, err := svc.Render(ctx, "resucito", "es", RenderOptions{Transpose: 5, Target: "Do"})
	require.NoError(t, err)
	assert.Equal(t, -9, out.Offset)
	assert.Equal(t, "Do-  Fa- Sol7", out.Lines[0].Text)

	_, err = svc.Render(ctx, "resucito", "es", RenderOptions{Target: "H"})
	assert.ErrorIs(t, err, chords.ErrUnknownChord)

	_, err = svc.Render(ctx, "sinacordes", "es", RenderOptions{Target: "Do"})
	assert.ErrorIs(t, err, ErrNoChords)
}

func TestRenderIndentedChords(t *testing.T) {
	fsys := testSongsFS()
	fsys["es/Resucitó - Kiko Argüello.txt"] = &fstest.MapFile{Data: []byte("Resucitó\n    La-     Re-\nResucitó, resucitó\n")}
	svc, _ := setupTestService(t, fsys)
	ctx := context.Background()

	plain, err := svc.Render(ctx, "resucito", "es", RenderOptions{})
	require.NoError(t, err)
	assert.Equal(t, "La", plain.InitialChord)

	out, err := svc.Render(ctx, "resucito", "es", RenderOptions{Target: "Do"})
	require.NoError(t, err)
	assert.Equal(t, -9, out.Offset)
	assert.Equal(t, "    Do-     Fa-", out.Lines[0].Text)
	assert.Equal(t, "Do", out.InitialChord)
}

func TestRenderLaysOutSpeakers(t *testing.T) {
	svc, _ := setupTestService(t, testSongsFS())

	out, err := svc.Render(context.Background(), "alabare", "es", RenderOptions{})
	require.NoError(t, err)
	require.Len(t, out.Lines, 5)

	// "La- Mi" introduces the psalmist line.
	assert.True(t, out.Lines[2].ChordLine)
	assert.True(t, out.Lines[2].ParagraphStart)
	assert.Empty(t, out.Lines[2].Prefix, "only the first line borrows the next prefix")
	assert.Equal(t, "S. ", out.Lines[3].Prefix)
	assert.Equal(t, "a mi Señor", out.Lines[3].Text)
}

func TestRenderMissingFile(t *testing.T) {
	fsys := testSongsFS()
	delete(fsys, "es/Sin acordes - Nadie.txt")
	svc, _ := setupTestService(t, fsys)

	out, err := svc.Render(context.Background(), "sinacordes", "es", RenderOptions{})
	require.NoError(t, err)
	assert.NotEmpty(t, out.Song.Error)
	assert.Empty(t, out.Lines)
}

func TestSetPatch(t *testing.T) {
	svc, stor := setupTestService(t, testSongsFS())
	ctx := context.Background()

	song, err := svc.SetPatch(ctx, "resucito", "en-US", "He Is Risen - Kiko")
	require.NoError(t, err)
	assert.True(t, song.Patched)
	assert.Equal(t, "Resucitó", song.PatchedTitle)
	assert.Equal(t, "He Is Risen", song.Title)
	assert.Equal(t, "en", song.Locale)
	assert.Equal(t, []string{"A- D- E7", "He is risen", ""}, song.Lines)

	entries, err := stor.ListPatches()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, models.PatchEntry{SongKey: "resucito", Locale: "en", File: "He Is Risen - Kiko"}, entries[0])

	songs, err := svc.ListSongs(ctx, "en")
	require.NoError(t, err)
	assert.Contains(t, songTitles(songs), "en:He Is Risen")

	require.NoError(t, svc.RemovePatch(ctx, "resucito"))
	song, err = svc.GetSong(ctx, "resucito", "en")
	require.NoError(t, err)
	assert.False(t, song.Patched)
	assert.Equal(t, "es", song.Locale)
}

func TestSetPatchRejects(t *testing.T) {
	svc, _ := setupTestService(t, testSongsFS())
	ctx := context.Background()

	_, err := svc.SetPatch(ctx, "resucito", "en", "He Is Risen - Kiko.txt")
	assert.ErrorIs(t, err, ErrInvalidPatch)

	_, err = svc.SetPatch(ctx, "resucito", "en", "  ")
	assert.ErrorIs(t, err, ErrInvalidPatch)

	_, err = svc.SetPatch(ctx, "alabare", "en", "Other - File")
	assert.ErrorIs(t, err, ErrNotPatchable)

	_, err = svc.SetPatch(ctx, "nope", "en", "Other - File")
	assert.ErrorIs(t, err, ErrSongNotFound)
}

func TestClearPatches(t *testing.T) {
	svc, _ := setupTestService(t, testSongsFS())
	ctx := context.Background()

	_, err := svc.SetPatch(ctx, "resucito", "en", "He Is Risen - Kiko")
	require.NoError(t, err)
	require.NoError(t, svc.ClearPatches(ctx))

	entries, err := svc.ListPatches(ctx)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestSearchSongs(t *testing.T) {
	svc, _ := setupTestService(t, testSongsFS())
	ctx := context.Background()

	// Warm the cache for one song so both paths are covered.
	_, err := svc.GetSong(ctx, "resucito", "es")
	require.NoError(t, err)

	found, err := svc.SearchSongs(ctx, "es", "SEÑOR")
	require.NoError(t, err)
	assert.Equal(t, []string{"es:Alabaré"}, songTitles(found))

	found, err = svc.SearchSongs(ctx, "es", "resucitó")
	require.NoError(t, err)
	assert.Equal(t, []string{"es:Resucitó"}, songTitles(found))

	all, err := svc.SearchSongs(ctx, "es", "")
	require.NoError(t, err)
	assert.Len(t, all, 3)
	for _, s := range all {
		assert.True(t, s.Loaded(), "%s not loaded", s.Key)
	}
}

func TestListFiles(t *testing.T) {
	svc, _ := setupTestService(t, testSongsFS())

	files, err := svc.ListFiles(context.Background(), "en")
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "He Is Risen", files[0].Title)
	assert.Equal(t, "Kiko", files[0].Source)
}

func TestServiceWithoutIndex(t *testing.T) {
	fsys := testSongsFS()
	delete(fsys, "index.json")
	svc, _ := setupTestService(t, fsys)
	ctx := context.Background()

	_, err := svc.ListSongs(ctx, "es")
	assert.True(t, errors.Is(err, ErrNoIndex), "Expected ErrNoIndex, got %v", err)

	_, err = svc.Render(ctx, "resucito", "es", RenderOptions{})
	assert.ErrorIs(t, err, ErrNoIndex)

	// Files can still be browsed.
	files, err := svc.ListFiles(ctx, "es")
	require.NoError(t, err)
	assert.Len(t, files, 3)
}

func TestLocales(t *testing.T) {
	svc, _ := setupTestService(t, testSongsFS())

	assert.Equal(t, []string{"de", "en", "es", "fr", "it", "pt"}, svc.Locales())
	assert.Empty(t, svc.CheckLocales())
}

func TestCloseClosesStorage(t *testing.T) {
	stor := newMemStorage()
	svc, err := NewService(WithFS(testSongsFS()), WithStorage(stor), WithLogger(logger.NewNop()))
	require.NoError(t, err)

	require.NoError(t, svc.Close())
	assert.True(t, stor.closed)
}
