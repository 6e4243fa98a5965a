package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/himanishpuri/SongBook/pkg/logger"
	"github.com/himanishpuri/SongBook/pkg/models"
	"github.com/himanishpuri/SongBook/pkg/songbook"
	"github.com/himanishpuri/SongBook/pkg/songbook/chords"
)

const requestTimeout = 30 * time.Second

// Server encapsulates the HTTP server and its dependencies
type Server struct {
	service songbook.Service
	config  *ServerConfig
	log     songbook.Logger
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port           int
	SongsDir       string
	DBPath         string
	DefaultLocale  string
	AllowedOrigins []string
}

// NewServer creates a new server instance
func NewServer(service songbook.Service, config *ServerConfig) *Server {
	return &Server{
		service: service,
		config:  config,
		log:     logger.GetLogger(),
	}
}

// respondJSON writes a JSON response
func (s *Server) respondJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Errorf("Failed to encode JSON response: %v", err)
	}
}

// respondError writes an error response
func (s *Server) respondError(w http.ResponseWriter, statusCode int, message string) {
	s.respondJSON(w, statusCode, ErrorResponse{
		Error:     http.StatusText(statusCode),
		Message:   message,
		Code:      statusCode,
		RequestID: w.Header().Get(requestIDHeader),
	})
}

// respondServiceError maps a service error to its HTTP status
func (s *Server) respondServiceError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.log.Errorf("Request failed: %v", err)
	}
	s.respondError(w, status, err.Error())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, songbook.ErrSongNotFound):
		return http.StatusNotFound
	case errors.Is(err, songbook.ErrInvalidPatch),
		errors.Is(err, songbook.ErrNoChords),
		errors.Is(err, chords.ErrUnknownChord):
		return http.StatusBadRequest
	case errors.Is(err, songbook.ErrNotPatchable):
		return http.StatusConflict
	case errors.Is(err, songbook.ErrNoIndex):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// locale returns the locale query parameter or the configured default
func (s *Server) locale(r *http.Request) string {
	if loc := strings.TrimSpace(r.URL.Query().Get("locale")); loc != "" {
		return loc
	}
	return s.config.DefaultLocale
}

// handleRoot handles GET /
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]any{
		"service": "SongBook API",
		"version": "1.0.0",
		"endpoints": map[string]string{
			"health":       "GET /health",
			"songs":        "GET /api/songs?locale=&q=",
			"song":         "GET /api/songs/{key}?locale=&transpose=&to=",
			"files":        "GET /api/files?locale=",
			"patches":      "GET /api/patches",
			"setPatch":     "POST /api/patches",
			"removePatch":  "DELETE /api/patches/{key}",
			"clearPatches": "DELETE /api/patches",
			"locales":      "GET /api/locales",
		},
	})
}

// handleHealth handles GET /health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}

// handleListSongs handles GET /api/songs
func (s *Server) handleListSongs(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	loc := s.locale(r)
	query := strings.TrimSpace(r.URL.Query().Get("q"))

	var songs []models.Song
	var err error
	if query != "" {
		songs, err = s.service.SearchSongs(ctx, loc, query)
	} else {
		songs, err = s.service.ListSongs(ctx, loc)
	}
	if err != nil {
		s.respondServiceError(w, err)
		return
	}

	dtos := make([]SongDTO, len(songs))
	for i, song := range songs {
		dtos[i] = newSongDTO(song)
	}
	s.respondJSON(w, http.StatusOK, ListSongsResponse{
		Songs: dtos,
		Count: len(dtos),
	})
}

// handleGetSong handles GET /api/songs/{key}
func (s *Server) handleGetSong(w http.ResponseWriter, r *http.Request, key string) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	q := r.URL.Query()
	var opts songbook.RenderOptions
	if raw := q.Get("transpose"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			s.respondError(w, http.StatusBadRequest, "transpose must be an integer")
			return
		}
		opts.Transpose = n
	}
	opts.Target = strings.TrimSpace(q.Get("to"))
	if opts.Target != "" && q.Get("transpose") != "" {
		s.respondError(w, http.StatusBadRequest, "transpose and to are mutually exclusive")
		return
	}

	sh, err := s.service.Render(ctx, key, s.locale(r), opts)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, sh)
}

// handleListFiles handles GET /api/files
func (s *Server) handleListFiles(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	files, err := s.service.ListFiles(ctx, s.locale(r))
	if err != nil {
		s.respondServiceError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, ListFilesResponse{
		Files: files,
		Count: len(files),
	})
}

// handleSetPatch handles POST /api/patches
func (s *Server) handleSetPatch(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	var req PatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.log.Warnf("Failed to decode patch request: %v", err)
		s.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	song, err := s.service.SetPatch(ctx, req.Key, req.Locale, req.File)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}
	s.respondJSON(w, http.StatusCreated, PatchResponse{
		Message: "Patch stored",
		Song:    newSongDTO(*song),
	})
}

// handleListPatches handles GET /api/patches
func (s *Server) handleListPatches(w http.ResponseWriter, r *http.Request) {
	entries, err := s.service.ListPatches(r.Context())
	if err != nil {
		s.respondServiceError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, ListPatchesResponse{
		Patches: entries,
		Count:   len(entries),
	})
}

// handleClearPatches handles DELETE /api/patches
func (s *Server) handleClearPatches(w http.ResponseWriter, r *http.Request) {
	if err := s.service.ClearPatches(r.Context()); err != nil {
		s.respondServiceError(w, err)
		return
	}
	s.log.Infof("Cleared all patches")
	s.respondJSON(w, http.StatusOK, MessageResponse{Message: "All patches removed"})
}

// handleRemovePatch handles DELETE /api/patches/{key}
func (s *Server) handleRemovePatch(w http.ResponseWriter, r *http.Request, key string) {
	if err := s.service.RemovePatch(r.Context(), key); err != nil {
		s.respondServiceError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, MessageResponse{Message: "Patches of " + key + " removed"})
}

// handleLocales handles GET /api/locales
func (s *Server) handleLocales(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	problems := s.service.CheckLocales()
	resp := LocalesResponse{
		Locales: s.service.Locales(),
		Valid:   len(problems) == 0,
	}
	for _, p := range problems {
		resp.Problems = append(resp.Problems, p.Error())
	}
	s.respondJSON(w, http.StatusOK, resp)
}

// handleSongs routes requests to /api/songs
func (s *Server) handleSongs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	s.handleListSongs(w, r)
}

// handleSong routes requests to /api/songs/{key}
func (s *Server) handleSong(w http.ResponseWriter, r *http.Request) {
	key := strings.TrimPrefix(r.URL.Path, "/api/songs/")
	if key == "" {
		s.respondError(w, http.StatusBadRequest, "Song key required")
		return
	}
	if r.Method != http.MethodGet {
		s.respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	s.handleGetSong(w, r, key)
}

// handlePatches routes requests to /api/patches
func (s *Server) handlePatches(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleListPatches(w, r)
	case http.MethodPost:
		s.handleSetPatch(w, r)
	case http.MethodDelete:
		s.handleClearPatches(w, r)
	default:
		s.respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

// handlePatch routes requests to /api/patches/{key}
func (s *Server) handlePatch(w http.ResponseWriter, r *http.Request) {
	key := strings.TrimPrefix(r.URL.Path, "/api/patches/")
	if key == "" {
		s.respondError(w, http.StatusBadRequest, "Song key required")
		return
	}
	if r.Method != http.MethodDelete {
		s.respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	s.handleRemovePatch(w, r, key)
}
