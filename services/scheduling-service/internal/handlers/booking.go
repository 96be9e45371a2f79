package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/rfaria/traindesk/services/scheduling-service/internal/events"
	"github.com/rfaria/traindesk/services/scheduling-service/internal/model"
	"github.com/rfaria/traindesk/services/scheduling-service/internal/policy"
	"github.com/rfaria/traindesk/services/scheduling-service/internal/schedule"
	"github.com/rfaria/traindesk/services/scheduling-service/internal/store"
)

type BookingHandler struct {
	store     *store.Store
	publisher *events.Publisher
	logger    *slog.Logger
	secret    string
}

func NewBookingHandler(st *store.Store, publisher *events.Publisher, logger *slog.Logger, secret string) *BookingHandler {
	return &BookingHandler{store: st, publisher: publisher, logger: logger, secret: secret}
}

type bookRequest struct {
	ConsultantID string `json:"consultant_id"`
	ClientName   string `json:"client_name"`
	Date         string `json:"date"`   // YYYY-MM-DD
	Period       string `json:"period"` // MORNING | AFTERNOON
}

type removeRequest struct {
	AppointmentID string `json:"appointment_id"`
}

type appointmentItem struct {
	AppointmentID string `json:"appointment_id"`
	ConsultantID  string `json:"consultant_id"`
	ClientName    string `json:"client_name"`
	Title         string `json:"title"`
	Start         string `json:"start"`
	End           string `json:"end"`
	Status        string `json:"status"`
	BookedByID    string `json:"booked_by_id,omitempty"`
}

type occupancyResponse struct {
	State       string           `json:"state"`
	Appointment *appointmentItem `json:"appointment,omitempty"`
	Event       *eventItem       `json:"event,omitempty"`
}

type eventItem struct {
	EventID      string `json:"event_id"`
	ConsultantID string `json:"consultant_id"`
	Title        string `json:"title"`
	Start        string `json:"start"`
	End          string `json:"end"`
}

// Occupancy classifies one consultant/date/period slot for the calendar
// grid: FREE, INTERNAL with the booking, or EXTERNAL with the busy block.
func (h *BookingHandler) Occupancy(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	consultantID := strings.TrimSpace(r.URL.Query().Get("consultant_id"))
	dateStr := strings.TrimSpace(r.URL.Query().Get("date"))
	periodStr := strings.TrimSpace(r.URL.Query().Get("period"))
	if consultantID == "" || dateStr == "" || periodStr == "" {
		writeError(w, http.StatusBadRequest, "consultant_id, date and period are required")
		return
	}

	date, err := time.ParseInLocation("2006-01-02", dateStr, h.store.Location())
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date")
		return
	}
	period, err := schedule.ParsePeriod(periodStr)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid period")
		return
	}

	occ := h.store.Occupancy(consultantID, date, period)
	resp := occupancyResponse{State: occ.State}
	if occ.Appointment != nil {
		item := toAppointmentItem(*occ.Appointment)
		resp.Appointment = &item
	}
	if occ.Event != nil {
		item := toEventItem(*occ.Event)
		resp.Event = &item
	}
	writeJSON(w, http.StatusOK, resp)
}

// Book commits a new half-day booking. The slot is derived from date+period
// so every appointment lands on the fixed period boundaries.
func (h *BookingHandler) Book(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	user, ok := actor(r, h.store, h.secret)
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	if !policy.CanPerform(user, policy.ActionBookAppointment) {
		writeError(w, http.StatusForbidden, "not allowed to book appointments")
		return
	}

	var req bookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	date, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(req.Date), h.store.Location())
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date")
		return
	}
	period, err := schedule.ParsePeriod(req.Period)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid period")
		return
	}

	consultant, ok := h.store.ConsultantByID(strings.TrimSpace(req.ConsultantID))
	if !ok {
		writeError(w, http.StatusNotFound, "consultant not found")
		return
	}
	if !schedule.Bookable(consultant, date, period, h.store.Location()) {
		writeError(w, http.StatusUnprocessableEntity, "consultant does not work this slot")
		return
	}

	start, end := schedule.PeriodRange(date, period, h.store.Location())
	appt, err := h.store.CreateAppointment(r.Context(), store.CreateAppointmentParams{
		ConsultantID: consultant.ID,
		ClientName:   req.ClientName,
		Start:        start,
		End:          end,
		BookedByID:   user.ID,
	})
	if err != nil {
		writeStoreError(w, err)
		return
	}

	h.publisher.Publish(r.Context(), events.TopicAppointmentBooked, appt.ID, map[string]any{
		"appointment_id": appt.ID,
		"consultant_id":  appt.ConsultantID,
		"client_name":    appt.ClientName,
		"start":          appt.Start.UTC().Format(time.RFC3339),
		"end":            appt.End.UTC().Format(time.RFC3339),
		"booked_by_id":   appt.BookedByID,
	})
	writeJSON(w, http.StatusCreated, toAppointmentItem(appt))
}

func (h *BookingHandler) Remove(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	user, ok := actor(r, h.store, h.secret)
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	if !policy.CanPerform(user, policy.ActionRemoveAppointment) {
		writeError(w, http.StatusForbidden, "not allowed to remove appointments")
		return
	}

	var req removeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	req.AppointmentID = strings.TrimSpace(req.AppointmentID)
	if req.AppointmentID == "" {
		writeError(w, http.StatusBadRequest, "appointment_id required")
		return
	}

	if err := h.store.RemoveAppointment(r.Context(), req.AppointmentID); err != nil {
		writeStoreError(w, err)
		return
	}

	h.publisher.Publish(r.Context(), events.TopicAppointmentRemoved, req.AppointmentID, map[string]any{
		"appointment_id": req.AppointmentID,
		"removed_by_id":  user.ID,
	})
	writeJSON(w, http.StatusOK, map[string]string{"appointment_id": req.AppointmentID, "status": "removed"})
}

// List returns appointments, optionally filtered by consultant and window.
func (h *BookingHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if _, ok := actor(r, h.store, h.secret); !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	consultantID := strings.TrimSpace(r.URL.Query().Get("consultant_id"))
	from, to, err := parseWindow(r, h.store.Location())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var appts []model.Appointment
	if from.IsZero() && to.IsZero() {
		for _, a := range h.store.Appointments() {
			if consultantID == "" || a.ConsultantID == consultantID {
				appts = append(appts, a)
			}
		}
	} else {
		appts = h.store.AppointmentsInRange(consultantID, from, to)
	}

	items := make([]appointmentItem, 0, len(appts))
	for _, a := range appts {
		items = append(items, toAppointmentItem(a))
	}
	writeJSON(w, http.StatusOK, items)
}

func parseWindow(r *http.Request, loc *time.Location) (time.Time, time.Time, error) {
	fromStr := strings.TrimSpace(r.URL.Query().Get("from"))
	toStr := strings.TrimSpace(r.URL.Query().Get("to"))
	if fromStr == "" && toStr == "" {
		return time.Time{}, time.Time{}, nil
	}

	from, err := time.ParseInLocation("2006-01-02", fromStr, loc)
	if err != nil {
		return time.Time{}, time.Time{}, errInvalidWindow
	}
	to, err := time.ParseInLocation("2006-01-02", toStr, loc)
	if err != nil {
		return time.Time{}, time.Time{}, errInvalidWindow
	}
	// to is inclusive as a calendar date, so the window ends at the next
	// midnight.
	return from, to.AddDate(0, 0, 1), nil
}

var errInvalidWindow = errors.New("from and to must both be YYYY-MM-DD dates")

func toAppointmentItem(a model.Appointment) appointmentItem {
	return appointmentItem{
		AppointmentID: a.ID,
		ConsultantID:  a.ConsultantID,
		ClientName:    a.ClientName,
		Title:         a.Title,
		Start:         a.Start.UTC().Format(time.RFC3339),
		End:           a.End.UTC().Format(time.RFC3339),
		Status:        a.Status,
		BookedByID:    a.BookedByID,
	}
}

func toEventItem(e model.ExternalEvent) eventItem {
	return eventItem{
		EventID:      e.ID,
		ConsultantID: e.ConsultantID,
		Title:        e.Title,
		Start:        e.Start.UTC().Format(time.RFC3339),
		End:          e.End.UTC().Format(time.RFC3339),
	}
}
