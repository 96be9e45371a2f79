package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/rfaria/traindesk/libs/auth"
	"github.com/rfaria/traindesk/services/scheduling-service/internal/gcal"
	"github.com/rfaria/traindesk/services/scheduling-service/internal/model"
	"github.com/rfaria/traindesk/services/scheduling-service/internal/store"
)

func writeJSON(w http.ResponseWriter, status int, body any) {
	payload, err := json.Marshal(body)
	if err != nil {
		http.Error(w, "failed to build response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeStoreError maps domain errors onto HTTP statuses.
func writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, store.ErrConflict):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, gcal.ErrProviderFetch):
		writeError(w, http.StatusBadGateway, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// actor resolves the authenticated user from the bearer token.
func actor(r *http.Request, st *store.Store, secret string) (model.User, bool) {
	raw := strings.TrimSpace(r.Header.Get("Authorization"))
	if !strings.HasPrefix(raw, "Bearer ") {
		return model.User{}, false
	}
	claims, err := auth.ParseAndVerifyHS256(strings.TrimPrefix(raw, "Bearer "), secret)
	if err != nil {
		return model.User{}, false
	}
	user, ok := st.UserByID(claims.Sub)
	return user, ok
}
