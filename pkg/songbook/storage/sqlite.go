//go:build !js && !wasm
// +build !js,!wasm

package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	customlogger "github.com/himanishpuri/SongBook/pkg/logger"
	"github.com/himanishpuri/SongBook/pkg/models"
)

const DefaultDBFile = "songbook.sqlite3"
const errDBClientNil = "db client is nil"

type DBClient struct {
	DB *gorm.DB
	db *sql.DB
}

// LocalePatch points a song at a file of a locale that has no file of its own.
type LocalePatch struct {
	ID        string `gorm:"primaryKey;type:varchar(36)"`
	SongKey   string `gorm:"uniqueIndex:idx_patch_unique,priority:1;index:idx_patch_key" json:"key"`
	Locale    string `gorm:"uniqueIndex:idx_patch_unique,priority:2" json:"locale"`
	File      string `json:"file"`
	CreatedAt time.Time
}

func NewDBClient() (*DBClient, error) {
	dbPath := os.Getenv("SONGBOOK_DB_PATH")
	if dbPath == "" {
		dbPath = DefaultDBFile
	}
	return NewDBClientWithPath(dbPath)
}

func NewDBClientWithPath(dbPath string) (*DBClient, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating db dir: %w", err)
		}
	}

	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	}

	db, err := gorm.Open(sqlite.Open(dbPath), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("getting sql.DB from gorm: %w", err)
	}

	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.AutoMigrate(&LocalePatch{}); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("auto migrate: %w", err)
	}

	return &DBClient{DB: db, db: sqlDB}, nil
}

func (c *DBClient) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}

// SetPatch stores file as the patch of key in locale, replacing any
// previous patch for the pair.
func (c *DBClient) SetPatch(key, locale, file string) error {
	if c == nil || c.DB == nil {
		return errors.New(errDBClientNil)
	}

	row := LocalePatch{ID: uuid.NewString(), SongKey: key, Locale: locale, File: file}
	err := c.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "song_key"}, {Name: "locale"}},
		DoUpdates: clause.AssignmentColumns([]string{"file", "created_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("saving patch: %w", err)
	}
	return nil
}

// RemovePatch deletes every patch of key.
func (c *DBClient) RemovePatch(key string) error {
	if c == nil || c.DB == nil {
		return errors.New(errDBClientNil)
	}
	if err := c.DB.Where("song_key = ?", key).Delete(&LocalePatch{}).Error; err != nil {
		return fmt.Errorf("deleting patch: %w", err)
	}
	return nil
}

// ClearPatches deletes all patches.
func (c *DBClient) ClearPatches() error {
	if c == nil || c.DB == nil {
		return errors.New(errDBClientNil)
	}
	if err := c.DB.Where("1 = 1").Delete(&LocalePatch{}).Error; err != nil {
		return fmt.Errorf("clearing patches: %w", err)
	}
	return nil
}

// ListPatches returns the stored patches ordered by song key and locale.
func (c *DBClient) ListPatches() ([]models.PatchEntry, error) {
	if c == nil || c.DB == nil {
		return nil, errors.New(errDBClientNil)
	}

	var rows []LocalePatch
	if err := c.DB.Order("song_key, locale").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("listing patches: %w", err)
	}

	out := make([]models.PatchEntry, 0, len(rows))
	for _, r := range rows {
		out = append(out, models.PatchEntry{
			ID:        r.ID,
			SongKey:   r.SongKey,
			Locale:    r.Locale,
			File:      r.File,
			CreatedAt: r.CreatedAt.Unix(),
		})
	}
	return out, nil
}

// Patches returns all stored patches as a patch map.
func (c *DBClient) Patches() (models.Patch, error) {
	entries, err := c.ListPatches()
	if err != nil {
		return nil, err
	}
	patch := make(models.Patch)
	for _, e := range entries {
		patch.Set(e.SongKey, e.Locale, e.File)
	}
	return patch, nil
}

// MustNewDBClient opens the default database and panics on failure.
func MustNewDBClient() *DBClient {
	cli, err := NewDBClient()
	if err != nil {
		customlogger.GetLogger().Errorf("failed to open DB: %v", err)
		panic(err)
	}
	return cli
}
