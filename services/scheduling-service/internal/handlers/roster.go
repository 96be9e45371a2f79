package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/rfaria/traindesk/services/scheduling-service/internal/model"
	"github.com/rfaria/traindesk/services/scheduling-service/internal/policy"
	"github.com/rfaria/traindesk/services/scheduling-service/internal/store"
)

type RosterHandler struct {
	store  *store.Store
	logger *slog.Logger
	secret string
}

func NewRosterHandler(st *store.Store, logger *slog.Logger, secret string) *RosterHandler {
	return &RosterHandler{store: st, logger: logger, secret: secret}
}

type consultantItem struct {
	ConsultantID string `json:"consultant_id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Role         string `json:"role"`
	Color        string `json:"color"`
	WorkStart    string `json:"work_start"`
	WorkEnd      string `json:"work_end"`
	WorkDays     []int  `json:"work_days"`
	UserID       string `json:"user_id,omitempty"`
}

type createConsultantRequest struct {
	Name          string `json:"name"`
	Email         string `json:"email"`
	Role          string `json:"role"`
	Color         string `json:"color"`
	WorkStart     string `json:"work_start"`
	WorkEnd       string `json:"work_end"`
	WorkDays      []int  `json:"work_days"`
	CreateAccount bool   `json:"create_account"`
	Password      string `json:"password"`
}

type updateConsultantRequest struct {
	ConsultantID string  `json:"consultant_id"`
	Name         *string `json:"name"`
	Email        *string `json:"email"`
	Role         *string `json:"role"`
	Color        *string `json:"color"`
	WorkStart    *string `json:"work_start"`
	WorkEnd      *string `json:"work_end"`
	WorkDays     *[]int  `json:"work_days"`
}

type deleteConsultantRequest struct {
	ConsultantID string `json:"consultant_id"`
}

// ListOrCreate dispatches the consultants collection route.
func (h *RosterHandler) ListOrCreate(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.List(w, r)
	case http.MethodPost:
		h.Create(w, r)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// List is open to any authenticated user; the calendar grid needs the
// roster no matter the role.
func (h *RosterHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if _, ok := actor(r, h.store, h.secret); !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	consultants := h.store.Consultants()
	items := make([]consultantItem, 0, len(consultants))
	for _, c := range consultants {
		items = append(items, toConsultantItem(c))
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *RosterHandler) Create(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if !h.requireManager(w, r) {
		return
	}

	var req createConsultantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	params := store.AddConsultantParams{
		Name:          req.Name,
		Email:         req.Email,
		Role:          req.Role,
		Color:         req.Color,
		WorkStart:     req.WorkStart,
		WorkEnd:       req.WorkEnd,
		WorkDays:      req.WorkDays,
		CreateAccount: req.CreateAccount,
	}
	if req.CreateAccount {
		password := strings.TrimSpace(req.Password)
		if password == "" {
			writeError(w, http.StatusBadRequest, "password required when creating an account")
			return
		}
		hash, err := hashPassword(password)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to hash password")
			return
		}
		params.InitialPassword = hash
	}

	c, err := h.store.AddConsultant(r.Context(), params)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	h.logger.Info("consultant added", "consultant_id", c.ID, "linked_account", c.UserID != "")
	writeJSON(w, http.StatusCreated, toConsultantItem(c))
}

func (h *RosterHandler) Update(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if !h.requireManager(w, r) {
		return
	}

	var req updateConsultantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	req.ConsultantID = strings.TrimSpace(req.ConsultantID)
	if req.ConsultantID == "" {
		writeError(w, http.StatusBadRequest, "consultant_id required")
		return
	}

	c, err := h.store.UpdateConsultant(r.Context(), req.ConsultantID, store.UpdateConsultantParams{
		Name:      req.Name,
		Email:     req.Email,
		Role:      req.Role,
		Color:     req.Color,
		WorkStart: req.WorkStart,
		WorkEnd:   req.WorkEnd,
		WorkDays:  req.WorkDays,
	})
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toConsultantItem(c))
}

func (h *RosterHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if !h.requireManager(w, r) {
		return
	}

	var req deleteConsultantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	req.ConsultantID = strings.TrimSpace(req.ConsultantID)
	if req.ConsultantID == "" {
		writeError(w, http.StatusBadRequest, "consultant_id required")
		return
	}

	if err := h.store.RemoveConsultant(r.Context(), req.ConsultantID); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"consultant_id": req.ConsultantID, "status": "removed"})
}

func (h *RosterHandler) requireManager(w http.ResponseWriter, r *http.Request) bool {
	user, ok := actor(r, h.store, h.secret)
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return false
	}
	if !policy.CanPerform(user, policy.ActionManageRoster) {
		writeError(w, http.StatusForbidden, "not allowed to manage the roster")
		return false
	}
	return true
}

func toConsultantItem(c model.Consultant) consultantItem {
	return consultantItem{
		ConsultantID: c.ID,
		Name:         c.Name,
		Email:        c.Email,
		Role:         c.Role,
		Color:        c.Color,
		WorkStart:    c.WorkStart,
		WorkEnd:      c.WorkEnd,
		WorkDays:     c.WorkDays,
		UserID:       c.UserID,
	}
}
