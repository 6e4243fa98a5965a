package main

import (
	"errors"
	"strings"

	"github.com/himanishpuri/SongBook/pkg/models"
)

// SongDTO represents a song in list responses
type SongDTO struct {
	Key          string `json:"key"`
	Title        string `json:"title"`
	Source       string `json:"source,omitempty"`
	Locale       string `json:"locale"`
	Patchable    bool   `json:"patchable"`
	Patched      bool   `json:"patched"`
	PatchedTitle string `json:"patched_title,omitempty"`
}

func newSongDTO(song models.Song) SongDTO {
	return SongDTO{
		Key:          song.Key,
		Title:        song.Title,
		Source:       song.Source,
		Locale:       song.Locale,
		Patchable:    song.Patchable,
		Patched:      song.Patched,
		PatchedTitle: song.PatchedTitle,
	}
}

// ListSongsResponse is the response for GET /api/songs
type ListSongsResponse struct {
	Songs []SongDTO `json:"songs"`
	Count int       `json:"count"`
}

// ListFilesResponse is the response for GET /api/files
type ListFilesResponse struct {
	Files []models.SongFile `json:"files"`
	Count int               `json:"count"`
}

// PatchRequest is the request body for POST /api/patches
type PatchRequest struct {
	Key    string `json:"key"`
	Locale string `json:"locale"`
	File   string `json:"file"`
}

// Validate checks if the request is valid
func (r *PatchRequest) Validate() error {
	if strings.TrimSpace(r.Key) == "" {
		return errors.New("key is required")
	}
	if strings.TrimSpace(r.Locale) == "" {
		return errors.New("locale is required")
	}
	if strings.TrimSpace(r.File) == "" {
		return errors.New("file is required")
	}
	return nil
}

// PatchResponse is the response for a stored patch
type PatchResponse struct {
	Message string  `json:"message"`
	Song    SongDTO `json:"song"`
}

// ListPatchesResponse is the response for GET /api/patches
type ListPatchesResponse struct {
	Patches []models.PatchEntry `json:"patches"`
	Count   int                 `json:"count"`
}

// MessageResponse acknowledges a request without a body of its own
type MessageResponse struct {
	Message string `json:"message"`
}

// LocalesResponse is the response for GET /api/locales
type LocalesResponse struct {
	Locales  []string `json:"locales"`
	Valid    bool     `json:"valid"`
	Problems []string `json:"problems,omitempty"`
}

// ErrorResponse is the standard error response format
type ErrorResponse struct {
	Error     string `json:"error"`
	Message   string `json:"message,omitempty"`
	Code      int    `json:"code,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}
