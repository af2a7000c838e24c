package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(h *Handler, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Library and lookup.
	r.Get("/notes", h.ListNotes)
	r.Get("/notes/*", h.GetNote)
	r.Get("/tags", h.Tags)

	// Search.
	r.Get("/search", h.Search)
	r.Post("/search/remote", h.SearchRemote)

	// Stats.
	r.Get("/stats", h.Stats)
	r.Get("/analytics", h.Analytics)

	// Sync.
	r.Post("/sync", h.Sync)
	r.Get("/sync/status", h.SyncStatus)

	// Settings.
	r.Get("/settings", h.ListSettings)
	r.Get("/settings/{key}", h.GetSetting)
	r.Put("/settings/{key}", h.PutSetting)
	r.Delete("/settings/{key}", h.DeleteSetting)

	// Chat.
	r.Get("/chat", h.ChatHistory)
	r.Post("/chat", h.SendChat)
	r.Delete("/chat", h.ClearChat)

	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
