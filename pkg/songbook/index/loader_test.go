package index

import (
	"context"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"

	"github.com/himanishpuri/SongBook/pkg/models"
	"github.com/himanishpuri/SongBook/pkg/songbook/chords"
	"github.com/himanishpuri/SongBook/pkg/songbook/locale"
)

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"es/Alabaré - Anónimo.txt":         {Data: []byte("Alabaré\nAnónimo\n\nDo Sol\nAlabaré, alabaré\n")},
		"es/Resucitó - Kiko Argüello.txt":  {Data: []byte("\ufeffResucitó\r\nLa- Mi\r\nResucitó\r\n")},
		"es/Cancio\u0301n - Autor.txt":     {Data: []byte("Re\nCanción\n")},
		"es/notas.md":                      {Data: []byte("no es un canto")},
		"es/borradores/viejo.txt":          {Data: []byte("Do\n")},
		"en/I Will Praise - Anonymous.txt": {Data: []byte("I Will Praise\nC G\nI will praise\n")},
	}
}

func newTestLoader() *Loader {
	return NewLoader(testFS(), locale.Default(), 2)
}

func TestReadLocaleSongs(t *testing.T) {
	files, err := newTestLoader().ReadLocaleSongs(context.Background(), "es-AR")
	if err != nil {
		t.Fatalf("ReadLocaleSongs failed: %v", err)
	}

	var titles []string
	for _, f := range files {
		titles = append(titles, f.Title)
	}
	want := []string{"Alabaré", "Canción", "Resucitó"}
	if diff := cmp.Diff(want, titles); diff != "" {
		t.Errorf("Titles mismatch (-want +got):\n%s", diff)
	}

	// The name is normalised, the path stays readable.
	if files[1].Name != "Canci\u00f3n - Autor" {
		t.Errorf("Expected NFC name, got %q", files[1].Name)
	}
	if files[1].Path != "es/Cancio\u0301n - Autor.txt" {
		t.Errorf("Expected on-disk path, got %q", files[1].Path)
	}
}

func TestReadLocaleSongsMissingLocale(t *testing.T) {
	files, err := newTestLoader().ReadLocaleSongs(context.Background(), "ja")
	if err != nil {
		t.Fatalf("ReadLocaleSongs failed: %v", err)
	}
	if files == nil || len(files) != 0 {
		t.Errorf("Expected empty list, got %v", files)
	}
}

func TestLoadSong(t *testing.T) {
	l := newTestLoader()
	song := &models.Song{Key: "alabare", Locale: "es", Path: "es/Alabaré - Anónimo.txt"}

	if err := l.LoadSong(context.Background(), song); err != nil {
		t.Fatalf("LoadSong failed: %v", err)
	}
	want := []string{"Do Sol", "Alabaré, alabaré", ""}
	if diff := cmp.Diff(want, song.Lines); diff != "" {
		t.Errorf("Lines mismatch (-want +got):\n%s", diff)
	}
	if song.FullText != "Do Sol Alabaré, alabaré " {
		t.Errorf("Unexpected full text %q", song.FullText)
	}
	if !song.Loaded() || song.Error != "" {
		t.Errorf("Expected loaded song without error: %+v", song)
	}
}

func TestLoadSongNormalisesLineEndings(t *testing.T) {
	song := &models.Song{Locale: "es", Path: "es/Resucitó - Kiko Argüello.txt"}
	if err := newTestLoader().LoadSong(context.Background(), song); err != nil {
		t.Fatalf("LoadSong failed: %v", err)
	}
	want := []string{"La- Mi", "Resucitó", ""}
	if diff := cmp.Diff(want, song.Lines); diff != "" {
		t.Errorf("Lines mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadSongRecordsReadError(t *testing.T) {
	song := &models.Song{Locale: "es", Path: "es/missing.txt", FullText: "stale"}
	if err := newTestLoader().LoadSong(context.Background(), song); err != nil {
		t.Fatalf("Read errors must not be returned: %v", err)
	}
	if song.Error == "" || len(song.Lines) != 0 || song.FullText != "" {
		t.Errorf("Expected recorded error and empty song, got %+v", song)
	}
	if !song.Loaded() {
		t.Error("Failed song should count as loaded")
	}
}

func TestLoadSongCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	song := &models.Song{Locale: "es", Path: "es/Alabaré - Anónimo.txt"}
	if err := newTestLoader().LoadSong(ctx, song); err == nil {
		t.Error("Expected context error")
	}
	if song.Loaded() {
		t.Error("Cancelled load must leave the song untouched")
	}
}

func TestLoadSongs(t *testing.T) {
	songs := []*models.Song{
		{Key: "a", Locale: "es", Path: "es/Alabaré - Anónimo.txt"},
		{Key: "r", Locale: "es", Path: "es/Resucitó - Kiko Argüello.txt"},
		{Key: "p", Locale: "en", Path: "en/I Will Praise - Anonymous.txt"},
		{Key: "m", Locale: "en", Path: "en/missing.txt"},
	}

	if err := newTestLoader().LoadSongs(context.Background(), songs); err != nil {
		t.Fatalf("LoadSongs failed: %v", err)
	}
	for _, s := range songs {
		if !s.Loaded() {
			t.Errorf("%s not loaded", s.Key)
		}
	}
	if songs[2].Lines[0] != "C G" {
		t.Errorf("Expected English chord line first, got %q", songs[2].Lines[0])
	}
	if songs[3].Error == "" {
		t.Error("Expected error for missing song")
	}

	if err := newTestLoader().LoadSongs(context.Background(), nil); err != nil {
		t.Errorf("Expected no error for empty input, got %v", err)
	}
}

func TestSongLinesWithoutChords(t *testing.T) {
	got := SongLines([]byte("solo texto\nsin acordes\n"), chords.ParseScale("Do Do# Re Mib Mi Fa Fa# Sol Sol# La Sib Si"))
	if got == nil || len(got) != 0 {
		t.Errorf("Expected empty non-nil lines, got %#v", got)
	}
}
