package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"sproutsync/host"
	"sproutsync/sprout"
	"sproutsync/storage"
)

type errorResponse struct {
	Error string `json:"error"`
	// User is true when the caller's input caused the failure.
	User bool `json:"user"`
}

type tagRequest struct {
	Tag string `json:"tag"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleSchema(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, sprout.Schema())
}

func (s *Server) handleConnection(w http.ResponseWriter, r *http.Request) {
	name, err := s.client.ConnectionName(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"name": name})
}

// handleSyncPage returns a single page of the sync table without persisting it.
func (s *Server) handleSyncPage(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	var cont *sprout.Continuation
	if endpoint := query.Get("continuation"); endpoint != "" {
		cont = &sprout.Continuation{NextPageEndpoint: endpoint}
	}

	var opts *sprout.SyncOptions
	if raw := query.Get("startFrom"); raw != "" {
		startFrom, err := strconv.Atoi(raw)
		if err != nil || startFrom < 0 {
			writeError(w, &sprout.UserError{Message: "startFrom must be a non-negative integer", Err: sprout.ErrInvalidInput})
			return
		}
		opts = &sprout.SyncOptions{StartFrom: startFrom}
	}

	page, err := s.client.SyncVideos(r.Context(), cont, opts)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (s *Server) handleAddTag(w http.ResponseWriter, r *http.Request) {
	videoID := chi.URLParam(r, "videoID")

	var req tagRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, &sprout.UserError{Message: "request body must be {\"tag\": \"...\"}", Err: sprout.ErrInvalidInput})
		return
	}

	video, err := host.ApplyTag(r.Context(), s.client, s.store, videoID, strings.TrimSpace(req.Tag))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, video)
}

func (s *Server) handleRunSync(w http.ResponseWriter, r *http.Request) {
	var opts host.RunOptions
	query := r.URL.Query()
	if raw := query.Get("maxPages"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, &sprout.UserError{Message: "maxPages must be a non-negative integer", Err: sprout.ErrInvalidInput})
			return
		}
		opts.MaxPages = n
	}
	opts.Reset = query.Get("reset") == "true"

	if !s.syncMu.TryLock() {
		writeJSON(w, http.StatusConflict, errorResponse{Error: ErrSyncInProgress.Error()})
		return
	}
	defer s.syncMu.Unlock()

	result, err := s.manager.Run(r.Context(), opts)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleListVideos(w http.ResponseWriter, r *http.Request) {
	videos, err := s.store.ListVideos(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"result": videos,
		"count":  len(videos),
	})
}

func (s *Server) handleSyncState(w http.ResponseWriter, r *http.Request) {
	state, err := s.manager.Status(r.Context())
	if errors.Is(err, storage.ErrNotFound) {
		state, err = storage.NewSyncState(host.VideosTable), nil
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

// statusFor maps an error to the HTTP status reported to the caller.
func statusFor(err error) int {
	var reqErr *sprout.RequestError
	switch {
	case errors.Is(err, sprout.ErrVideoNotFound):
		return http.StatusNotFound
	case sprout.IsUserError(err), errors.Is(err, sprout.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, sprout.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.As(err, &reqErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(err), errorResponse{
		Error: err.Error(),
		User:  sprout.IsUserError(err),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
