package employees

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/atlas-hrm/atlas-hrm/internal/shared"
)

// Handler wires HTTP endpoints for the employee directory.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	audit     *shared.AuditLogger
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, audit *shared.AuditLogger) *Handler {
	return &Handler{logger: logger, service: service, audit: audit, validator: validator.New()}
}

// MountAdminRoutes registers the manage-employees routes.
func (h *Handler) MountAdminRoutes(r chi.Router) {
	r.Get("/", h.handleList)
	r.Post("/", h.handleCreate)
	r.Get("/{empID}", h.handleGet)
	r.Put("/{empID}", h.handleUpdate)
	r.Delete("/{empID}", h.handleDelete)
}

type employeePayload struct {
	EmpID         string   `json:"emp_id"`
	FirstName     string   `json:"first_name" validate:"required"`
	LastName      string   `json:"last_name" validate:"required"`
	Email         string   `json:"email" validate:"required,email"`
	MobileNo      *string  `json:"mobile_no"`
	DOB           *string  `json:"dob"`
	RoleID        *int64   `json:"role_id"`
	Salary        *float64 `json:"salary"`
	DateOfJoining *string  `json:"date_of_joining"`
	ProfilePhoto  *string  `json:"profile_photo"`
	Password      string   `json:"password"`
}

type listResponse struct {
	Data []Employee      `json:"data"`
	Meta shared.ListMeta `json:"meta"`
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	filters := ListFilters{
		Search:  r.URL.Query().Get("search"),
		Page:    queryInt(r, "page", 1),
		PerPage: queryInt(r, "per_page", 20),
	}
	if raw := r.URL.Query().Get("role_id"); raw != "" {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
			filters.RoleID = &id
		}
	}

	list, total, err := h.service.List(r.Context(), filters)
	if err != nil {
		shared.WriteDomainError(h.logger, w, err)
		return
	}
	if list == nil {
		list = []Employee{}
	}
	shared.WriteJSON(w, http.StatusOK, listResponse{
		Data: list,
		Meta: shared.NewListMeta(filters.Page, filters.PerPage, total),
	})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	emp, err := h.service.Get(r.Context(), chi.URLParam(r, "empID"))
	if err != nil {
		shared.WriteDomainError(h.logger, w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, emp)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	payload, in, ok := h.decodePayload(w, r)
	if !ok {
		return
	}
	emp, err := h.service.Create(r.Context(), in, payload.Password)
	if err != nil {
		shared.WriteDomainError(h.logger, w, err)
		return
	}
	h.recordAudit(r, "employee.create", emp.EmpID)
	shared.WriteJSON(w, http.StatusCreated, emp)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	_, in, ok := h.decodePayload(w, r)
	if !ok {
		return
	}
	emp, err := h.service.Update(r.Context(), chi.URLParam(r, "empID"), in)
	if err != nil {
		shared.WriteDomainError(h.logger, w, err)
		return
	}
	h.recordAudit(r, "employee.update", emp.EmpID)
	shared.WriteJSON(w, http.StatusOK, emp)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	empID := chi.URLParam(r, "empID")
	if err := h.service.Delete(r.Context(), empID); err != nil {
		shared.WriteDomainError(h.logger, w, err)
		return
	}
	h.recordAudit(r, "employee.delete", empID)
	shared.WriteJSON(w, http.StatusOK, map[string]string{"message": "employee deleted"})
}

// HandleProfile serves the caller's own directory record. The employee
// reference always comes from the session, never from the request.
func (h *Handler) HandleProfile(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil || sess.EmployeeID == nil {
		shared.WriteDomainError(h.logger, w, shared.ErrCapabilityDenied)
		return
	}
	emp, err := h.service.Profile(r.Context(), *sess.EmployeeID)
	if err != nil {
		shared.WriteDomainError(h.logger, w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, emp)
}

// HandleUpdateOwnPhoto accepts the opaque media reference for the caller's
// own record. Mounted separately because it sits behind update-own-photo
// rather than view-own-profile.
func (h *Handler) HandleUpdateOwnPhoto(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil || sess.EmployeeID == nil {
		shared.WriteDomainError(h.logger, w, shared.ErrCapabilityDenied)
		return
	}
	var payload struct {
		PhotoRef string `json:"photo_ref"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		shared.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	emp, err := h.service.UpdateOwnPhoto(r.Context(), *sess.EmployeeID, payload.PhotoRef)
	if err != nil {
		shared.WriteDomainError(h.logger, w, err)
		return
	}
	h.recordAudit(r, "employee.photo", emp.EmpID)
	shared.WriteJSON(w, http.StatusOK, emp)
}

func (h *Handler) decodePayload(w http.ResponseWriter, r *http.Request) (employeePayload, Input, bool) {
	var payload employeePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		shared.WriteError(w, http.StatusBadRequest, "invalid request body")
		return payload, Input{}, false
	}
	if err := h.validator.Struct(payload); err != nil {
		shared.WriteError(w, http.StatusBadRequest, "missing or invalid required field")
		return payload, Input{}, false
	}

	in := Input{
		EmpID:        payload.EmpID,
		FirstName:    payload.FirstName,
		LastName:     payload.LastName,
		Email:        payload.Email,
		MobileNo:     payload.MobileNo,
		RoleID:       payload.RoleID,
		Salary:       payload.Salary,
		ProfilePhoto: payload.ProfilePhoto,
	}
	var ok bool
	if in.DOB, ok = parseDate(w, payload.DOB, "dob"); !ok {
		return payload, Input{}, false
	}
	if in.DateOfJoining, ok = parseDate(w, payload.DateOfJoining, "date_of_joining"); !ok {
		return payload, Input{}, false
	}
	return payload, in, true
}

func (h *Handler) recordAudit(r *http.Request, action, empID string) {
	if h.audit == nil {
		return
	}
	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		return
	}
	entry := shared.AuditEntry{
		ActorID:  sess.PrincipalID,
		Action:   action,
		Entity:   "employee",
		EntityID: empID,
	}
	if err := h.audit.Record(r.Context(), entry); err != nil {
		h.logger.Warn("audit record", slog.Any("error", err))
	}
}

func parseDate(w http.ResponseWriter, raw *string, field string) (*time.Time, bool) {
	if raw == nil || *raw == "" {
		return nil, true
	}
	t, err := time.Parse("2006-01-02", *raw)
	if err != nil {
		shared.WriteError(w, http.StatusBadRequest, field+" must be a YYYY-MM-DD date")
		return nil, false
	}
	return &t, true
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}
