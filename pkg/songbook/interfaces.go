package songbook

import (
	"context"

	"github.com/himanishpuri/SongBook/pkg/models"
)

type Service interface {
	ListSongs(ctx context.Context, locale string) ([]models.Song, error)
	SearchSongs(ctx context.Context, locale, query string) ([]models.Song, error)
	GetSong(ctx context.Context, key, locale string) (*models.Song, error)
	Render(ctx context.Context, key, locale string, opts RenderOptions) (*Sheet, error)
	ListFiles(ctx context.Context, locale string) ([]models.SongFile, error)
	SetPatch(ctx context.Context, key, locale, file string) (*models.Song, error)
	RemovePatch(ctx context.Context, key string) error
	ClearPatches(ctx context.Context) error
	ListPatches(ctx context.Context) ([]models.PatchEntry, error)
	Locales() []string
	CheckLocales() []error
	Close() error
}

type Storage interface {
	SetPatch(key, locale, file string) error
	RemovePatch(key string) error
	ClearPatches() error
	ListPatches() ([]models.PatchEntry, error)
	Patches() (models.Patch, error)
	Close() error
}

type Logger interface {
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
	Debugf(format string, args ...any)
}
