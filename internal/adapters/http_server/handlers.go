// internal/adapters/http_server/handlers.go
package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"placefinder/internal/app"
	"placefinder/internal/domain"
	"placefinder/internal/gate"
)

type Handlers struct {
	Search *app.SearchService
	Posts  *app.PostQueryService
	Gate   *gate.Gate
}

type searchRequest struct {
	Query string `json:"query"`
}

type apiError struct {
	Error string `json:"error"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.With(Gate(h.Gate)).Post("/v1/places/search", h.searchPlaces)
	s.mux.Get("/v1/posts", h.listPosts)
	s.mux.Get("/v1/posts/{slug}", h.getPost)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(apiError{Error: msg}); err != nil {
		log.Error().Err(err).Msg("write JSON error response failed")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write JSON response failed")
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

func (h *Handlers) searchPlaces(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	results, err := h.Search.Search(r.Context(), req.Query)
	if err != nil {
		if errors.Is(err, app.ErrEmptyQuery) {
			writeError(w, http.StatusBadRequest, "query is required")
			return
		}
		log.Error().Err(err).Str("query", req.Query).Msg("search failed")
		writeError(w, http.StatusInternalServerError, "search failed")
		return
	}

	if results == nil {
		results = []domain.FormattedResult{}
	}
	writeJSON(w, http.StatusOK, results)
}

func (h *Handlers) listPosts(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if ls := r.URL.Query().Get("limit"); ls != "" {
		l, err := strconv.Atoi(ls)
		if err != nil || l <= 0 || l > 100 {
			writeError(w, http.StatusBadRequest, "limit must be an integer between 1 and 100")
			return
		}
		limit = l
	}

	page, err := h.Posts.ListPosts(r.Context(), limit)
	if err != nil {
		log.Error().Err(err).Msg("list posts failed")
		writeError(w, http.StatusInternalServerError, "failed to list posts")
		return
	}

	etag, body := calcETagAndBody(page)
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write listPosts body")
	}
}

func (h *Handlers) getPost(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	post, err := h.Posts.GetPost(r.Context(), slug)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "post not found")
			return
		}
		log.Error().Err(err).Str("slug", slug).Msg("get post failed")
		writeError(w, http.StatusInternalServerError, "failed to load post")
		return
	}

	etag, body := calcETagAndBody(post)
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write getPost body")
	}
}
