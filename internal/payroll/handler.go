package payroll

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

// Handler wires HTTP endpoints for payroll management.
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

// MountAdminRoutes registers the manage-payroll routes.
func (h *Handler) MountAdminRoutes(r chi.Router) {
	r.Get("/", h.handleList)
	r.Post("/", h.handleCreate)
	r.Get("/{id}", h.handleGet)
	r.Put("/{id}", h.handleUpdate)
	r.Delete("/{id}", h.handleDelete)
}

// HandleListOwn serves the employee self-service payroll history. The
// employee reference comes from the session; the service refuses any other.
func (h *Handler) HandleListOwn(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil || sess.EmployeeID == nil {
		shared.WriteDomainError(h.logger, w, shared.ErrCapabilityDenied)
		return
	}
	records, err := h.service.ListForEmployee(r.Context(), sess.EmployeeID, *sess.EmployeeID)
	if err != nil {
		shared.WriteDomainError(h.logger, w, err)
		return
	}
	if records == nil {
		records = []Record{}
	}
	shared.WriteJSON(w, http.StatusOK, records)
}

// createPayload deliberately has no net_salary field: a client-supplied net
// is dropped at decode time and the derived value always wins.
type createPayload struct {
	EmpID       string  `json:"emp_id" validate:"required"`
	Month       int     `json:"month" validate:"required"`
	Year        int     `json:"year" validate:"required"`
	BaseSalary  float64 `json:"base_salary"`
	Allowances  float64 `json:"allowances"`
	Deductions  float64 `json:"deductions"`
	Status      string  `json:"status"`
	PaymentDate *string `json:"payment_date"`
}

type updatePayload struct {
	EmpID       *string  `json:"emp_id"`
	Month       *int     `json:"month"`
	Year        *int     `json:"year"`
	BaseSalary  *float64 `json:"base_salary"`
	Allowances  *float64 `json:"allowances"`
	Deductions  *float64 `json:"deductions"`
	Status      *string  `json:"status"`
	PaymentDate *string  `json:"payment_date"`
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	records, err := h.service.List(r.Context())
	if err != nil {
		shared.WriteDomainError(h.logger, w, err)
		return
	}
	if records == nil {
		records = []Record{}
	}
	shared.WriteJSON(w, http.StatusOK, records)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	rec, err := h.service.Get(r.Context(), id)
	if err != nil {
		shared.WriteDomainError(h.logger, w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, rec)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var payload createPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		shared.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validator.Struct(payload); err != nil {
		shared.WriteError(w, http.StatusBadRequest, "emp_id, month, and year are required")
		return
	}
	paymentDate, ok := parsePaymentDate(w, payload.PaymentDate)
	if !ok {
		return
	}

	rec, err := h.service.Create(r.Context(), CreateInput{
		EmpID:       payload.EmpID,
		Month:       payload.Month,
		Year:        payload.Year,
		BaseSalary:  payload.BaseSalary,
		Allowances:  payload.Allowances,
		Deductions:  payload.Deductions,
		Status:      payload.Status,
		PaymentDate: paymentDate,
	})
	if err != nil {
		shared.WriteDomainError(h.logger, w, err)
		return
	}
	h.recordAudit(r, "payroll.create", rec.ID)
	shared.WriteJSON(w, http.StatusCreated, rec)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	var payload updatePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		shared.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	in := UpdateInput{
		EmpID:      payload.EmpID,
		Month:      payload.Month,
		Year:       payload.Year,
		BaseSalary: payload.BaseSalary,
		Allowances: payload.Allowances,
		Deductions: payload.Deductions,
		Status:     payload.Status,
	}
	if payload.PaymentDate != nil {
		if *payload.PaymentDate == "" {
			in.ClearDate = true
		} else {
			parsed, ok := parsePaymentDate(w, payload.PaymentDate)
			if !ok {
				return
			}
			in.PaymentDate = parsed
		}
	}

	rec, err := h.service.Update(r.Context(), id, in)
	if err != nil {
		shared.WriteDomainError(h.logger, w, err)
		return
	}
	h.recordAudit(r, "payroll.update", rec.ID)
	shared.WriteJSON(w, http.StatusOK, rec)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		shared.WriteDomainError(h.logger, w, err)
		return
	}
	h.recordAudit(r, "payroll.delete", id)
	shared.WriteJSON(w, http.StatusOK, map[string]string{"message": "payroll record deleted"})
}

func (h *Handler) recordAudit(r *http.Request, action string, recordID int64) {
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
		Entity:   "payroll_record",
		EntityID: strconv.FormatInt(recordID, 10),
	}
	if err := h.audit.Record(r.Context(), entry); err != nil {
		h.logger.Warn("audit record", slog.Any("error", err))
	}
}

func parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		shared.WriteError(w, http.StatusBadRequest, "invalid payroll record id")
		return 0, false
	}
	return id, true
}

func parsePaymentDate(w http.ResponseWriter, raw *string) (*time.Time, bool) {
	if raw == nil || *raw == "" {
		return nil, true
	}
	t, err := time.Parse("2006-01-02", *raw)
	if err != nil {
		shared.WriteError(w, http.StatusBadRequest, "payment_date must be a YYYY-MM-DD date")
		return nil, false
	}
	return &t, true
}
