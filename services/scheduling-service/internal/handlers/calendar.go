package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/rfaria/traindesk/services/scheduling-service/internal/events"
	"github.com/rfaria/traindesk/services/scheduling-service/internal/gcal"
	"github.com/rfaria/traindesk/services/scheduling-service/internal/model"
	"github.com/rfaria/traindesk/services/scheduling-service/internal/policy"
	"github.com/rfaria/traindesk/services/scheduling-service/internal/store"
)

type CalendarHandler struct {
	store     *store.Store
	orch      *gcal.Orchestrator
	publisher *events.Publisher
	logger    *slog.Logger
	secret    string
}

func NewCalendarHandler(st *store.Store, orch *gcal.Orchestrator, publisher *events.Publisher, logger *slog.Logger, secret string) *CalendarHandler {
	return &CalendarHandler{store: st, orch: orch, publisher: publisher, logger: logger, secret: secret}
}

type syncRequest struct {
	// UserID lets an admin sync on behalf of another account; defaults to
	// the caller.
	UserID      string `json:"user_id"`
	AccessToken string `json:"access_token"`
}

type disconnectRequest struct {
	UserID string `json:"user_id"`
}

func (h *CalendarHandler) Sync(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req syncRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	user, targetID, ok := h.resolveTarget(w, r, req.UserID)
	if !ok {
		return
	}

	if err := h.orch.Sync(r.Context(), targetID, strings.TrimSpace(req.AccessToken)); err != nil {
		writeStoreError(w, err)
		return
	}

	h.publisher.Publish(r.Context(), events.TopicCalendarSynced, targetID, map[string]string{
		"user_id":      targetID,
		"triggered_by": user.ID,
	})
	writeJSON(w, http.StatusOK, map[string]string{"user_id": targetID, "status": "synced"})
}

func (h *CalendarHandler) Disconnect(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req disconnectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	_, targetID, ok := h.resolveTarget(w, r, req.UserID)
	if !ok {
		return
	}

	if err := h.orch.Disconnect(r.Context(), targetID); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"user_id": targetID, "status": "disconnected"})
}

// resolveTarget authenticates the caller and decides whose calendar the
// operation targets. Non-admins may only act on themselves.
func (h *CalendarHandler) resolveTarget(w http.ResponseWriter, r *http.Request, requested string) (model.User, string, bool) {
	user, ok := actor(r, h.store, h.secret)
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return model.User{}, "", false
	}
	if !policy.CanPerform(user, policy.ActionSyncCalendar) {
		writeError(w, http.StatusForbidden, "not allowed to manage calendar connections")
		return model.User{}, "", false
	}

	targetID := strings.TrimSpace(requested)
	if targetID == "" {
		targetID = user.ID
	}
	if targetID != user.ID && user.Role != model.RoleAdmin {
		writeError(w, http.StatusForbidden, "cannot manage another user's calendar")
		return model.User{}, "", false
	}
	return user, targetID, true
}
