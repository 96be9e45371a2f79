package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/rfaria/traindesk/libs/auth"
	"github.com/rfaria/traindesk/services/scheduling-service/internal/store"
	"golang.org/x/crypto/bcrypt"
)

type AuthHandler struct {
	store    *store.Store
	logger   *slog.Logger
	secret   string
	tokenTTL time.Duration
}

func NewAuthHandler(st *store.Store, logger *slog.Logger, secret string, tokenTTL time.Duration) *AuthHandler {
	if tokenTTL <= 0 {
		tokenTTL = 12 * time.Hour
	}
	return &AuthHandler{store: st, logger: logger, secret: secret, tokenTTL: tokenTTL}
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	UserID      string `json:"user_id"`
	Role        string `json:"role"`
}

type meResponse struct {
	UserID            string `json:"user_id"`
	Name              string `json:"name"`
	Email             string `json:"email"`
	Role              string `json:"role"`
	ConsultantID      string `json:"consultant_id,omitempty"`
	CalendarConnected bool   `json:"calendar_connected"`
	LastSync          string `json:"last_sync,omitempty"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	req.Password = strings.TrimSpace(req.Password)
	if req.Password == "" {
		writeError(w, http.StatusBadRequest, "password required")
		return
	}

	hash, err := hashPassword(req.Password)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to hash password")
		return
	}

	user, err := h.store.CreateUser(r.Context(), store.CreateUserParams{
		Name:         req.Name,
		Email:        req.Email,
		Role:         strings.ToUpper(strings.TrimSpace(req.Role)),
		PasswordHash: hash,
	})
	if err != nil {
		writeStoreError(w, err)
		return
	}

	token, err := h.signToken(user.ID, user.Role, user.ConsultantID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to sign token")
		return
	}
	h.logger.Info("user registered", "user_id", user.ID, "role", user.Role)
	writeJSON(w, http.StatusCreated, sessionResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		UserID:      user.ID,
		Role:        user.Role,
	})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	user, ok := h.store.UserByEmail(req.Email)
	if !ok || verifyPassword(user.PasswordHash, req.Password) != nil {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, err := h.signToken(user.ID, user.Role, user.ConsultantID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to sign token")
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		UserID:      user.ID,
		Role:        user.Role,
	})
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	user, ok := actor(r, h.store, h.secret)
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	resp := meResponse{
		UserID:            user.ID,
		Name:              user.Name,
		Email:             user.Email,
		Role:              user.Role,
		ConsultantID:      user.ConsultantID,
		CalendarConnected: user.CalendarConnected,
	}
	if user.LastSync != nil {
		resp.LastSync = user.LastSync.UTC().Format(time.RFC3339)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *AuthHandler) signToken(userID, role, consultantID string) (string, error) {
	now := time.Now()
	return auth.SignHS256(auth.Claims{
		Sub:          userID,
		Role:         role,
		ConsultantID: consultantID,
		Iat:          now.Unix(),
		Exp:          now.Add(h.tokenTTL).Unix(),
	}, h.secret)
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func verifyPassword(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}
