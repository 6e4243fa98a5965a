//go:build !js && !wasm
// +build !js,!wasm

package songbook

import (
	"github.com/himanishpuri/SongBook/pkg/songbook/storage"
)

var _ Storage = (*storage.DBClient)(nil)

// NewSQLiteStorage creates a new SQLite storage backend.
func NewSQLiteStorage(dbPath string) (Storage, error) {
	db, err := storage.NewDBClientWithPath(dbPath)
	if err != nil {
		return nil, err
	}
	return db, nil
}
