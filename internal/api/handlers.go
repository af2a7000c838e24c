package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/starford/lumen/internal/chat"
	"github.com/starford/lumen/internal/noteservice"
	"github.com/starford/lumen/internal/prefs"
	"github.com/starford/lumen/internal/syncer"
)

// SyncRunner triggers and reports syncs.
type SyncRunner interface {
	Sync(ctx context.Context) (syncer.State, error)
	State() syncer.State
}

// Preferences is the settings store.
type Preferences interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	All(ctx context.Context) ([]prefs.Entry, error)
}

// Conversation is the chat relay.
type Conversation interface {
	Send(ctx context.Context, content string) (chat.Message, error)
	Messages() []chat.Message
	Clear()
}

// Handler holds API route handlers.
type Handler struct {
	svc   *noteservice.Service
	sync  SyncRunner
	prefs Preferences
	chat  Conversation
}

// HandlerOption wires an optional component into the Handler. Routes whose
// component is missing answer 503.
type HandlerOption func(*Handler)

// WithSync enables the sync routes.
func WithSync(s SyncRunner) HandlerOption {
	return func(h *Handler) { h.sync = s }
}

// WithPreferences enables the settings routes.
func WithPreferences(p Preferences) HandlerOption {
	return func(h *Handler) { h.prefs = p }
}

// WithChat enables the chat routes.
func WithChat(c Conversation) HandlerOption {
	return func(h *Handler) { h.chat = c }
}

// NewHandler creates a new Handler.
func NewHandler(svc *noteservice.Service, opts ...HandlerOption) *Handler {
	h := &Handler{svc: svc}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// notePath extracts the note id or path from the URL (everything after
// /api/notes/). Supports encoded slashes (e.g. topics%2Fnote.md).
func notePath(r *http.Request) string {
	raw := strings.TrimPrefix(chi.URLParam(r, "*"), "/")
	if raw == "" {
		return ""
	}
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}

// ListNotes handles GET /api/notes.
//
//	@Summary		Library view with filtering, sorting and pagination
//	@Tags			notes
//	@Produce		json
//	@Param			q		query		string	false	"Substring over title, content and tags"
//	@Param			tag		query		string	false	"Exact tag"
//	@Param			sort	query		string	false	"Sort field"	Enums(modified, created, title, wordCount)
//	@Param			limit	query		int		false	"Page size"
//	@Param			offset	query		int		false	"Page offset"
//	@Success		200		{object}	NoteListResponse
//	@Security		BearerAuth
//	@Router			/notes [get]
func (h *Handler) ListNotes(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))

	items, total, err := h.svc.ListNotes(r.Context(), noteservice.ListParams{
		Text:   q.Get("q"),
		Tag:    q.Get("tag"),
		Sort:   q.Get("sort"),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		writeError(w, "list notes", err)
		return
	}
	writeJSON(w, http.StatusOK, NoteListResponse{Notes: items, Total: total})
}

// GetNote handles GET /api/notes/*.
//
//	@Summary		Get a single note by id or path
//	@Tags			notes
//	@Produce		json
//	@Param			key	path		string	true	"Note id or path"
//	@Success		200	{object}	NoteDetail
//	@Success		304	"Not modified"
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes/{key} [get]
func (h *Handler) GetNote(w http.ResponseWriter, r *http.Request) {
	key := notePath(r)
	if key == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("id or path is required"))
		return
	}
	note, err := h.svc.GetNote(r.Context(), key)
	if err != nil {
		writeError(w, "get note", err)
		return
	}

	etag := `"` + note.Checksum + `"`
	w.Header().Set("ETag", etag)
	if inm := r.Header.Get("If-None-Match"); inm != "" && strings.Trim(inm, `"`) == note.Checksum {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	writeJSON(w, http.StatusOK, note)
}

// Tags handles GET /api/tags.
func (h *Handler) Tags(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, TagsResponse{Tags: h.svc.Tags(r.Context())})
}

// Search handles GET /api/search.
//
//	@Summary		Lexical search over the loaded notes
//	@Tags			search
//	@Produce		json
//	@Param			q	query		string	false	"Search query; empty returns no results"
//	@Success		200	{object}	SearchResponse
//	@Security		BearerAuth
//	@Router			/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	results := h.svc.Search(r.Context(), r.URL.Query().Get("q"))
	writeJSON(w, http.StatusOK, SearchResponse{Results: results})
}

// SearchRemote handles POST /api/search/remote.
//
//	@Summary		Delegated semantic search on the backend
//	@Tags			search
//	@Accept			json
//	@Produce		json
//	@Param			body	body		RemoteSearchRequest	true	"Query"
//	@Success		200		{object}	SearchResponse
//	@Failure		400		{object}	errResponse
//	@Failure		502		{object}	errResponse
//	@Failure		503		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/search/remote [post]
func (h *Handler) SearchRemote(w http.ResponseWriter, r *http.Request) {
	var req RemoteSearchRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	results, err := h.svc.SearchRemote(r.Context(), req.Query, req.Limit)
	if err != nil {
		writeUpstreamError(w, "remote search", err)
		return
	}
	writeJSON(w, http.StatusOK, SearchResponse{Results: results})
}

// Stats handles GET /api/stats.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Stats(r.Context()))
}

// Analytics handles GET /api/analytics.
//
//	@Summary		Top tags, monthly activity and the longest note
//	@Tags			stats
//	@Produce		json
//	@Param			top		query		int	false	"Number of tags"	default(10)
//	@Param			months	query		int	false	"Number of months"	default(6)
//	@Success		200		{object}	noteservice.Analytics
//	@Security		BearerAuth
//	@Router			/analytics [get]
func (h *Handler) Analytics(w http.ResponseWriter, r *http.Request) {
	top, _ := strconv.Atoi(r.URL.Query().Get("top"))
	months, _ := strconv.Atoi(r.URL.Query().Get("months"))
	writeJSON(w, http.StatusOK, h.svc.Analytics(r.Context(), top, months))
}
