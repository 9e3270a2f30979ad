package scheduling

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/clinicore/platform/internal/identity"
	"github.com/clinicore/platform/pkg/logging"
)

// Handler provides the HTTP surface for appointment operations.
type Handler struct {
	service *Service
	logger  *logging.Logger
}

// NewHandler creates the appointments HTTP handler.
func NewHandler(service *Service, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, logger: logger}
}

// Routes returns a chi router with appointment routes. The auth middleware
// must already have attached the actor to the request context.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Get("/{appointmentID}", h.Get)
	r.Patch("/{appointmentID}", h.Update)
	return r
}

// scheduledDateLayouts are accepted on the wire. Values are stored and
// compared as given; no timezone conversion is applied.
var scheduledDateLayouts = []string{
	"2006-01-02T15:04:05",
	time.RFC3339,
}

func parseScheduledDate(value string) (time.Time, error) {
	for _, layout := range scheduledDateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, validationError("invalid scheduled_date %q", value)
}

type createRequest struct {
	ScheduledDate string `json:"scheduled_date"`
	ClinicID      string `json:"clinic_id"`
	EmployeeID    string `json:"employee_id"`
	ServiceID     string `json:"service_id"`
	Notes         string `json:"notes,omitempty"`
}

// Create books an appointment for the authenticated customer.
// POST /appointments
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := identity.ActorFromContext(r.Context())
	if !ok {
		writeError(w, authorizationError("authentication required"))
		return
	}

	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, validationError("invalid JSON body"))
		return
	}
	if req.ScheduledDate == "" || req.ClinicID == "" || req.EmployeeID == "" || req.ServiceID == "" {
		writeError(w, validationError("scheduled_date, clinic_id, employee_id and service_id are required"))
		return
	}

	scheduledAt, err := parseScheduledDate(req.ScheduledDate)
	if err != nil {
		writeError(w, err)
		return
	}
	clinicID, err := parseID(req.ClinicID, "clinic_id")
	if err != nil {
		writeError(w, err)
		return
	}
	employeeID, err := parseID(req.EmployeeID, "employee_id")
	if err != nil {
		writeError(w, err)
		return
	}
	serviceID, err := parseID(req.ServiceID, "service_id")
	if err != nil {
		writeError(w, err)
		return
	}

	detail, err := h.service.Create(r.Context(), actor, CreateInput{
		ClinicID:    clinicID,
		EmployeeID:  employeeID,
		ServiceID:   serviceID,
		ScheduledAt: scheduledAt,
		Notes:       req.Notes,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, detail)
}

// Get returns a single enriched appointment.
// GET /appointments/{appointmentID}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	actor, ok := identity.ActorFromContext(r.Context())
	if !ok {
		writeError(w, authorizationError("authentication required"))
		return
	}
	id, err := parseID(chi.URLParam(r, "appointmentID"), "appointment id")
	if err != nil {
		writeError(w, err)
		return
	}

	detail, err := h.service.Get(r.Context(), actor, id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

// List returns the actor's visible appointments.
// GET /appointments
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := identity.ActorFromContext(r.Context())
	if !ok {
		writeError(w, authorizationError("authentication required"))
		return
	}

	details, err := h.service.List(r.Context(), actor)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"appointments": details})
}

type updateRequest struct {
	ScheduledDate *string `json:"scheduled_date,omitempty"`
	Status        *string `json:"status,omitempty"`
	Notes         *string `json:"notes,omitempty"`

	ClinicID   *string `json:"clinic_id,omitempty"`
	CustomerID *string `json:"customer_id,omitempty"`
	EmployeeID *string `json:"employee_id,omitempty"`
	ServiceID  *string `json:"service_id,omitempty"`
}

// Update applies a partial update to an appointment.
// PATCH /appointments/{appointmentID}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	actor, ok := identity.ActorFromContext(r.Context())
	if !ok {
		writeError(w, authorizationError("authentication required"))
		return
	}
	id, err := parseID(chi.URLParam(r, "appointmentID"), "appointment id")
	if err != nil {
		writeError(w, err)
		return
	}

	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, validationError("invalid JSON body"))
		return
	}

	patch, err := req.toPatch()
	if err != nil {
		writeError(w, err)
		return
	}

	detail, err := h.service.Update(r.Context(), actor, id, patch)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (req updateRequest) toPatch() (UpdatePatch, error) {
	var patch UpdatePatch
	if req.ScheduledDate != nil {
		t, err := parseScheduledDate(*req.ScheduledDate)
		if err != nil {
			return UpdatePatch{}, err
		}
		patch.ScheduledAt = &t
	}
	if req.Status != nil {
		status, err := ParseStatus(*req.Status)
		if err != nil {
			return UpdatePatch{}, err
		}
		patch.Status = &status
	}
	patch.Notes = req.Notes

	// Write-once references are carried through so the service rejects the
	// whole request; their values are irrelevant beyond presence.
	patch.ClinicID = presentID(req.ClinicID)
	patch.CustomerID = presentID(req.CustomerID)
	patch.EmployeeID = presentID(req.EmployeeID)
	patch.ServiceID = presentID(req.ServiceID)
	return patch, nil
}

func presentID(raw *string) *uuid.UUID {
	if raw == nil {
		return nil
	}
	id, err := uuid.Parse(*raw)
	if err != nil {
		id = uuid.Nil
	}
	return &id
}

func parseID(raw, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, validationError("invalid %s %q", name, raw)
	}
	return id, nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, err error) {
	var e *Error
	if !errors.As(err, &e) {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	writeJSON(w, statusForKind(e.Kind), map[string]string{
		"error": e.Message,
		"kind":  string(e.Kind),
	})
}

func statusForKind(kind Kind) int {
	switch kind {
	case KindValidation, KindConfiguration:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	case KindAuthorization:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}
