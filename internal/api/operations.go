package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/lumen/internal/apperr"
	"github.com/starford/lumen/internal/syncer"
)

func unavailable(w http.ResponseWriter) {
	writeError(w, "", apperr.ErrUnavailable)
}

// syncResponse carries the state after a sync attempt.
type syncResponse struct {
	State syncer.State `json:"state"`
	Error string       `json:"error,omitempty"`
}

// Sync handles POST /api/sync. The request waits for the run to finish.
//
//	@Summary		Trigger a full sync
//	@Tags			sync
//	@Produce		json
//	@Success		200	{object}	syncResponse
//	@Failure		502	{object}	syncResponse
//	@Failure		503	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/sync [post]
func (h *Handler) Sync(w http.ResponseWriter, r *http.Request) {
	if h.sync == nil {
		unavailable(w)
		return
	}
	st, err := h.sync.Sync(r.Context())
	if err != nil {
		status, _ := statusFor(err)
		if status == http.StatusInternalServerError {
			status = http.StatusBadGateway
		}
		writeJSON(w, status, syncResponse{State: st, Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, syncResponse{State: st})
}

// SyncStatus handles GET /api/sync/status.
func (h *Handler) SyncStatus(w http.ResponseWriter, _ *http.Request) {
	if h.sync == nil {
		unavailable(w)
		return
	}
	writeJSON(w, http.StatusOK, h.sync.State())
}

// ListSettings handles GET /api/settings.
func (h *Handler) ListSettings(w http.ResponseWriter, r *http.Request) {
	if h.prefs == nil {
		unavailable(w)
		return
	}
	all, err := h.prefs.All(r.Context())
	if err != nil {
		writeError(w, "list settings", err)
		return
	}
	writeJSON(w, http.StatusOK, SettingsResponse{Settings: all})
}

// GetSetting handles GET /api/settings/{key}.
func (h *Handler) GetSetting(w http.ResponseWriter, r *http.Request) {
	if h.prefs == nil {
		unavailable(w)
		return
	}
	key := chi.URLParam(r, "key")
	v, err := h.prefs.Get(r.Context(), key)
	if err != nil {
		writeError(w, "get setting", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"key": key, "value": v})
}

// PutSetting handles PUT /api/settings/{key}.
//
//	@Summary		Store a preference
//	@Tags			settings
//	@Accept			json
//	@Produce		json
//	@Param			key		path		string			true	"Preference key"
//	@Param			body	body		SettingRequest	true	"Value"
//	@Success		200		{object}	map[string]string
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/settings/{key} [put]
func (h *Handler) PutSetting(w http.ResponseWriter, r *http.Request) {
	if h.prefs == nil {
		unavailable(w)
		return
	}
	key := chi.URLParam(r, "key")
	var req SettingRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := validateSetting(key, req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	if err := h.prefs.Set(r.Context(), key, req.Value); err != nil {
		writeError(w, "put setting", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"key": key, "value": req.Value})
}

// DeleteSetting handles DELETE /api/settings/{key}.
func (h *Handler) DeleteSetting(w http.ResponseWriter, r *http.Request) {
	if h.prefs == nil {
		unavailable(w)
		return
	}
	if err := h.prefs.Delete(r.Context(), chi.URLParam(r, "key")); err != nil {
		writeError(w, "delete setting", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ChatHistory handles GET /api/chat.
func (h *Handler) ChatHistory(w http.ResponseWriter, _ *http.Request) {
	if h.chat == nil {
		unavailable(w)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"messages": h.chat.Messages()})
}

// SendChat handles POST /api/chat.
//
//	@Summary		Ask the assistant
//	@Tags			chat
//	@Accept			json
//	@Produce		json
//	@Param			body	body		ChatRequest	true	"Message"
//	@Success		200		{object}	chat.Message
//	@Failure		400		{object}	errResponse
//	@Failure		502		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/chat [post]
func (h *Handler) SendChat(w http.ResponseWriter, r *http.Request) {
	if h.chat == nil {
		unavailable(w)
		return
	}
	var req ChatRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	msg, err := h.chat.Send(r.Context(), req.Content)
	if err != nil {
		writeUpstreamError(w, "chat", err)
		return
	}
	writeJSON(w, http.StatusOK, msg)
}

// ClearChat handles DELETE /api/chat.
func (h *Handler) ClearChat(w http.ResponseWriter, _ *http.Request) {
	if h.chat == nil {
		unavailable(w)
		return
	}
	h.chat.Clear()
	w.WriteHeader(http.StatusNoContent)
}
