package roles

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/atlas-hrm/atlas-hrm/internal/shared"
)

// Handler wires HTTP endpoints for role management.
type Handler struct {
	logger  *slog.Logger
	service *Service
	audit   *shared.AuditLogger
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, audit *shared.AuditLogger) *Handler {
	return &Handler{logger: logger, service: service, audit: audit}
}

// MountRoutes registers role routes. Capability gating is applied by the
// router group these mount under.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.handleList)
	r.Post("/", h.handleCreate)
	r.Put("/{id}", h.handleUpdate)
	r.Delete("/{id}", h.handleDelete)
}

type rolePayload struct {
	RoleName    string `json:"role_name"`
	Description string `json:"description"`
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.List(r.Context())
	if err != nil {
		shared.WriteDomainError(h.logger, w, err)
		return
	}
	if list == nil {
		list = []Role{}
	}
	shared.WriteJSON(w, http.StatusOK, list)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var payload rolePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		shared.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	role, err := h.service.Create(r.Context(), payload.RoleName, payload.Description)
	if err != nil {
		shared.WriteDomainError(h.logger, w, err)
		return
	}
	h.recordAudit(r, "role.create", role.ID)
	shared.WriteJSON(w, http.StatusCreated, role)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		shared.WriteError(w, http.StatusBadRequest, "invalid role id")
		return
	}
	var payload rolePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		shared.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	role, err := h.service.Update(r.Context(), id, payload.RoleName, payload.Description)
	if err != nil {
		shared.WriteDomainError(h.logger, w, err)
		return
	}
	h.recordAudit(r, "role.update", role.ID)
	shared.WriteJSON(w, http.StatusOK, role)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		shared.WriteError(w, http.StatusBadRequest, "invalid role id")
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		shared.WriteDomainError(h.logger, w, err)
		return
	}
	h.recordAudit(r, "role.delete", id)
	shared.WriteJSON(w, http.StatusOK, map[string]string{"message": "role deleted"})
}

func (h *Handler) recordAudit(r *http.Request, action string, roleID int64) {
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
		Entity:   "role",
		EntityID: strconv.FormatInt(roleID, 10),
	}
	if err := h.audit.Record(r.Context(), entry); err != nil {
		h.logger.Warn("audit record", slog.Any("error", err))
	}
}
