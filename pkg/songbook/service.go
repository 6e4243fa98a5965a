package songbook

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/himanishpuri/SongBook/pkg/logger"
	"github.com/himanishpuri/SongBook/pkg/models"
	"github.com/himanishpuri/SongBook/pkg/songbook/chords"
	"github.com/himanishpuri/SongBook/pkg/songbook/index"
	"github.com/himanishpuri/SongBook/pkg/songbook/locale"
	"github.com/himanishpuri/SongBook/pkg/songbook/sheet"
)

// songbookService is the default implementation of the Service interface.
type songbookService struct {
	mu    sync.RWMutex
	index *index.Index
	cache map[string]*cachedSong // by song path

	fsys    fs.FS
	loader  *index.Loader
	locales *locale.Table
	storage Storage
	log     Logger
	config  *Config

	watcher *songsWatcher
	cancel  context.CancelFunc
}

// cachedSong is a loaded song with its lines classified but not laid out.
type cachedSong struct {
	song  models.Song
	lines []sheet.Line
}

func NewService(opts ...Option) (Service, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.Logger == nil {
		cfg.Logger = logger.GetLogger()
	}
	if cfg.Locales == nil {
		cfg.Locales = locale.Default()
	}

	fsys := cfg.FS
	if fsys == nil {
		fsys = os.DirFS(cfg.SongsDir)
	}

	var stor Storage
	var err error
	if cfg.Storage != nil {
		stor = cfg.Storage
	} else {
		stor, err = NewSQLiteStorage(cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to create storage: %w", err)
		}
	}

	s := &songbookService{
		cache:   make(map[string]*cachedSong),
		fsys:    fsys,
		loader:  index.NewLoader(fsys, cfg.Locales, cfg.LoadConcurrency),
		locales: cfg.Locales,
		storage: stor,
		log:     cfg.Logger,
		config:  cfg,
	}

	for _, problem := range cfg.Locales.Validate() {
		s.log.Warnf("Locale configuration: %v", problem)
	}

	if err := s.reloadIndex(); err != nil {
		s.log.Warnf("Song index unavailable: %v", err)
	}

	if cfg.Watch && cfg.FS == nil {
		if err := s.startWatcher(); err != nil {
			stor.Close()
			return nil, fmt.Errorf("failed to watch songs: %w", err)
		}
	}

	return s, nil
}

func (s *songbookService) indexPath() string {
	if s.config.IndexPath != "" {
		return s.config.IndexPath
	}
	return filepath.Join(s.config.SongsDir, DefaultIndex)
}

// reloadIndex reads the index and drops every cached song.
func (s *songbookService) reloadIndex() error {
	var (
		ix  *index.Index
		err error
	)
	if s.config.IndexPath == "" {
		f, openErr := s.fsys.Open(DefaultIndex)
		if openErr != nil {
			return openErr
		}
		ix, err = index.LoadIndex(f)
		f.Close()
	} else {
		ix, err = index.LoadIndexFile(s.config.IndexPath)
	}
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.index = ix
	s.cache = make(map[string]*cachedSong)
	s.mu.Unlock()

	s.log.Infof("Loaded song index with %d songs", ix.Len())
	return nil
}

func (s *songbookService) currentIndex() (*index.Index, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.index == nil {
		return nil, ErrNoIndex
	}
	return s.index, nil
}

func (s *songbookService) patches() (models.Patch, error) {
	patch, err := s.storage.Patches()
	if err != nil {
		return nil, fmt.Errorf("failed to read patches: %w", err)
	}
	return patch, nil
}

// resolve finds the file of key for rawLocale, falling back to the base
// language when rawLocale has no file of its own.
func resolve(ix *index.Index, key, rawLocale string, patch models.Patch) (models.Song, error) {
	song, err := ix.SongMeta(key, rawLocale, patch)
	if err != nil {
		return models.Song{}, err
	}
	if _, ok := song.Files.Get(rawLocale); !ok {
		if base := locale.Base(rawLocale); base != rawLocale {
			return ix.SongMeta(key, base, patch)
		}
	}
	return song, nil
}

func (s *songbookService) ListSongs(ctx context.Context, loc string) ([]models.Song, error) {
	ix, err := s.currentIndex()
	if err != nil {
		return nil, err
	}
	patch, err := s.patches()
	if err != nil {
		return nil, err
	}
	return ix.SongsMeta(loc, patch), nil
}

// SearchSongs loads every song of loc and returns those whose title or text
// contains query, ignoring case.
func (s *songbookService) SearchSongs(ctx context.Context, loc, query string) ([]models.Song, error) {
	songs, err := s.ListSongs(ctx, loc)
	if err != nil {
		return nil, err
	}

	var pending []*models.Song
	for i := range songs {
		if cached := s.cached(songs[i].Path); cached != nil {
			songs[i] = mergeLoaded(songs[i], cached.song)
			continue
		}
		pending = append(pending, &songs[i])
	}

	if len(pending) > 0 {
		s.log.Debugf("Loading %d songs for search", len(pending))
		if err := s.loader.LoadSongs(ctx, pending); err != nil {
			return nil, err
		}
		for _, song := range pending {
			s.store(*song)
		}
	}

	needle := strings.ToLower(strings.TrimSpace(query))
	out := make([]models.Song, 0, len(songs))
	for _, song := range songs {
		if needle == "" ||
			strings.Contains(strings.ToLower(song.Title), needle) ||
			strings.Contains(strings.ToLower(song.FullText), needle) {
			out = append(out, song)
		}
	}
	return out, nil
}

func (s *songbookService) GetSong(ctx context.Context, key, loc string) (*models.Song, error) {
	entry, err := s.load(ctx, key, loc)
	if err != nil {
		return nil, err
	}
	song := entry.song
	return &song, nil
}

func (s *songbookService) load(ctx context.Context, key, loc string) (*cachedSong, error) {
	ix, err := s.currentIndex()
	if err != nil {
		return nil, err
	}
	patch, err := s.patches()
	if err != nil {
		return nil, err
	}
	meta, err := resolve(ix, key, loc, patch)
	if err != nil {
		return nil, err
	}

	if cached := s.cached(meta.Path); cached != nil {
		return &cachedSong{song: mergeLoaded(meta, cached.song), lines: cached.lines}, nil
	}

	if err := s.loader.LoadSong(ctx, &meta); err != nil {
		return nil, err
	}
	if meta.Error != "" {
		s.log.Warnf("Failed to read song %s (%s): %s", key, meta.Path, meta.Error)
	}
	return s.store(meta), nil
}

func (s *songbookService) cached(path string) *cachedSong {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cache[path]
}

// store classifies a loaded song and caches it. Failed reads are not cached.
func (s *songbookService) store(song models.Song) *cachedSong {
	entry := &cachedSong{
		song:  song,
		lines: s.locales.Classifier(song.Locale).ClassifyAll(song.Lines),
	}
	if song.Error == "" {
		s.mu.Lock()
		s.cache[song.Path] = entry
		s.mu.Unlock()
	}
	return entry
}

// mergeLoaded copies the text of a cached song into freshly resolved
// metadata, which carries the current patch state.
func mergeLoaded(meta, loaded models.Song) models.Song {
	meta.Lines = loaded.Lines
	meta.FullText = loaded.FullText
	meta.Error = loaded.Error
	return meta
}

func (s *songbookService) Render(ctx context.Context, key, loc string, opts RenderOptions) (*Sheet, error) {
	entry, err := s.load(ctx, key, loc)
	if err != nil {
		return nil, err
	}

	scale := s.locales.Scale(entry.song.Locale)
	offset := opts.Transpose
	if opts.Target != "" {
		first, ok := firstChordLine(entry.lines)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrNoChords, key)
		}
		offset, err = chords.Offset(first, opts.Target, scale)
		if err != nil {
			return nil, err
		}
	}

	lines := sheet.Preprocess(entry.lines, scale, offset)
	out := &Sheet{
		Song:   entry.song,
		Offset: offset,
		Lines:  lines,
	}
	if first, ok := firstChordLine(lines); ok {
		out.InitialChord = chords.InitialChord(first, scale)
	}
	return out, nil
}

func firstChordLine(lines []sheet.Line) (string, bool) {
	for _, l := range lines {
		if l.ChordLine && strings.TrimSpace(l.Text) != "" {
			return l.Text, true
		}
	}
	return "", false
}

func (s *songbookService) ListFiles(ctx context.Context, loc string) ([]models.SongFile, error) {
	return s.loader.ReadLocaleSongs(ctx, loc)
}

// SetPatch points key at file for the base language of loc. file is a song
// file name from that language's folder, without extension.
func (s *songbookService) SetPatch(ctx context.Context, key, loc, file string) (*models.Song, error) {
	file = strings.TrimSpace(file)
	if file == "" || strings.HasSuffix(file, ".txt") {
		return nil, fmt.Errorf("%w: file must be a name without extension, got %q", ErrInvalidPatch, file)
	}

	ix, err := s.currentIndex()
	if err != nil {
		return nil, err
	}
	entry, ok := ix.Entry(key)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSongNotFound, key)
	}

	base := locale.Base(loc)
	if _, native := entry.Files.Get(base); native {
		return nil, fmt.Errorf("%w: %s/%s", ErrNotPatchable, key, base)
	}
	if _, err := fs.Stat(s.fsys, index.SongPath(base, file)); err != nil {
		s.log.Warnf("Patch file %s not found in %s: %v", file, base, err)
	}

	if err := s.storage.SetPatch(key, base, file); err != nil {
		return nil, err
	}
	s.log.Infof("Patched song %s for %s with %s", key, base, file)
	return s.GetSong(ctx, key, base)
}

// RemovePatch removes the patches of key for every locale.
func (s *songbookService) RemovePatch(ctx context.Context, key string) error {
	if err := s.storage.RemovePatch(key); err != nil {
		return err
	}
	s.log.Infof("Removed patches of song %s", key)
	return nil
}

func (s *songbookService) ClearPatches(ctx context.Context) error {
	return s.storage.ClearPatches()
}

func (s *songbookService) ListPatches(ctx context.Context) ([]models.PatchEntry, error) {
	return s.storage.ListPatches()
}

func (s *songbookService) Locales() []string {
	return s.locales.Locales()
}

func (s *songbookService) CheckLocales() []error {
	return s.locales.Validate()
}

// invalidate drops the cached song stored at path, a slash-separated path
// relative to the songs root.
func (s *songbookService) invalidate(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.cache[path]; ok {
		delete(s.cache, path)
		s.log.Debugf("Dropped cached song %s", path)
	}
}

func (s *songbookService) Close() error {
	if s.watcher != nil {
		s.watcher.Stop()
		s.cancel()
	}
	return s.storage.Close()
}
