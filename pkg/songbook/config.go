package songbook

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/himanishpuri/SongBook/pkg/songbook/locale"
)

const (
	DefaultSongsDir = "songs"
	DefaultDBFile   = "songbook.sqlite3"
	DefaultIndex    = "index.json"
	DefaultLocale   = "es"
)

type Config struct {
	SongsDir        string
	IndexPath       string // Empty reads index.json from the songs root
	DBPath          string
	Locales         *locale.Table
	Logger          Logger
	Storage         Storage
	Watch           bool
	LoadConcurrency int
	FS              fs.FS // Overrides SongsDir as the source of song files
}

type Option func(*Config)

func WithSongsDir(dir string) Option {
	return func(c *Config) {
		c.SongsDir = dir
	}
}

func WithIndexPath(path string) Option {
	return func(c *Config) {
		c.IndexPath = path
	}
}

func WithDBPath(path string) Option {
	return func(c *Config) {
		c.DBPath = path
	}
}

func WithLocales(table *locale.Table) Option {
	return func(c *Config) {
		c.Locales = table
	}
}

func WithLogger(log Logger) Option {
	return func(c *Config) {
		c.Logger = log
	}
}

func WithStorage(storage Storage) Option {
	return func(c *Config) {
		c.Storage = storage
	}
}

// WithWatch reloads songs and the index when they change on disk. It has no
// effect when the songs come from WithFS.
func WithWatch(watch bool) Option {
	return func(c *Config) {
		c.Watch = watch
	}
}

func WithLoadConcurrency(n int) Option {
	return func(c *Config) {
		c.LoadConcurrency = n
	}
}

func WithFS(fsys fs.FS) Option {
	return func(c *Config) {
		c.FS = fsys
	}
}

func defaultConfig() *Config {
	cfg := &Config{
		SongsDir:        DefaultSongsDir,
		DBPath:          DefaultDBFile,
		LoadConcurrency: 8,
	}
	if dir := os.Getenv("SONGBOOK_SONGS_DIR"); dir != "" {
		cfg.SongsDir = dir
	}
	if path := os.Getenv("SONGBOOK_DB_PATH"); path != "" {
		cfg.DBPath = path
	}
	return cfg
}

// FileConfig is the TOML configuration shared by the command line tools.
type FileConfig struct {
	SongsDir        string `toml:"songs_dir"`
	IndexPath       string `toml:"index"`
	DBPath          string `toml:"db_path"`
	Locale          string `toml:"locale"`
	LocalesFile     string `toml:"locales_file"`
	LogLevel        string `toml:"log_level"`
	Watch           bool   `toml:"watch"`
	LoadConcurrency int    `toml:"load_concurrency"`

	Server ServerConfig `toml:"server"`
}

type ServerConfig struct {
	Port           int      `toml:"port"`
	AllowedOrigins []string `toml:"allowed_origins"`
}

// DefaultFileConfig returns the settings used when no file is given.
func DefaultFileConfig() FileConfig {
	return FileConfig{
		SongsDir: DefaultSongsDir,
		DBPath:   DefaultDBFile,
		Locale:   DefaultLocale,
		LogLevel: "info",
		Server: ServerConfig{
			Port:           8080,
			AllowedOrigins: []string{"*"},
		},
	}
}

// LoadConfigFile reads a TOML config. Keys missing from the file keep their
// defaults; relative paths are resolved against the file's directory.
func LoadConfigFile(path string) (FileConfig, error) {
	cfg := DefaultFileConfig()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return FileConfig{}, fmt.Errorf("%s: unknown key %q", path, undecoded[0].String())
	}
	if meta.IsDefined("load_concurrency") && cfg.LoadConcurrency <= 0 {
		return FileConfig{}, fmt.Errorf("%s: load_concurrency must be positive", path)
	}

	base := filepath.Dir(path)
	cfg.SongsDir = resolvePath(base, cfg.SongsDir, meta.IsDefined("songs_dir"))
	cfg.IndexPath = resolvePath(base, cfg.IndexPath, meta.IsDefined("index"))
	cfg.DBPath = resolvePath(base, cfg.DBPath, meta.IsDefined("db_path"))
	cfg.LocalesFile = resolvePath(base, cfg.LocalesFile, meta.IsDefined("locales_file"))
	return cfg, nil
}

func resolvePath(base, path string, defined bool) string {
	if !defined || path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(base, path)
}

// Options converts the file settings into service options. The locales file,
// if any, is layered over the built-in table.
func (fc FileConfig) Options() ([]Option, error) {
	table := locale.Default()
	if fc.LocalesFile != "" {
		extra, err := locale.LoadFile(fc.LocalesFile)
		if err != nil {
			return nil, err
		}
		table = table.Merge(extra)
	}

	opts := []Option{
		WithLocales(table),
		WithWatch(fc.Watch),
	}
	if fc.SongsDir != "" {
		opts = append(opts, WithSongsDir(fc.SongsDir))
	}
	if fc.IndexPath != "" {
		opts = append(opts, WithIndexPath(fc.IndexPath))
	}
	if fc.DBPath != "" {
		opts = append(opts, WithDBPath(fc.DBPath))
	}
	if fc.LoadConcurrency > 0 {
		opts = append(opts, WithLoadConcurrency(fc.LoadConcurrency))
	}
	return opts, nil
}
