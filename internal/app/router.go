package app

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"

	"github.com/atlas-hrm/atlas-hrm/internal/auth"
	"github.com/atlas-hrm/atlas-hrm/internal/employees"
	"github.com/atlas-hrm/atlas-hrm/internal/observability"
	"github.com/atlas-hrm/atlas-hrm/internal/payroll"
	"github.com/atlas-hrm/atlas-hrm/internal/roles"
	"github.com/atlas-hrm/atlas-hrm/internal/shared"
	"github.com/atlas-hrm/atlas-hrm/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger           *slog.Logger
	Config           *Config
	AuthHandler      *auth.Handler
	AuthMiddleware   auth.Middleware
	EmployeesHandler *employees.Handler
	RolesHandler     *roles.Handler
	PayrollHandler   *payroll.Handler
	JobHandler       *jobs.Handler
	Metrics          *observability.Metrics
}

// NewRouter constructs the chi.Router with Atlas defaults. Every capability
// group carries its own authorize middleware; nothing below /admin or
// /employee is reachable without a session whose role grants the capability.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	loginLimit := 10
	if params.Config != nil && params.Config.LoginRateLimit > 0 {
		loginLimit = params.Config.LoginRateLimit
	}
	r.Route("/auth", func(sub chi.Router) {
		sub.Use(httprate.Limit(loginLimit, time.Minute, httprate.WithKeyFuncs(httprate.KeyByIP)))
		params.AuthHandler.MountRoutes(sub)
	})

	r.Route("/admin", func(admin chi.Router) {
		admin.Route("/employees", func(sub chi.Router) {
			sub.Use(params.AuthMiddleware.RequireCapability(shared.CapManageEmployees))
			params.EmployeesHandler.MountAdminRoutes(sub)
		})
		admin.Route("/roles", func(sub chi.Router) {
			sub.Use(params.AuthMiddleware.RequireCapability(shared.CapManageRoles))
			params.RolesHandler.MountRoutes(sub)
		})
		admin.Route("/payroll", func(sub chi.Router) {
			sub.Use(params.AuthMiddleware.RequireCapability(shared.CapManagePayroll))
			params.PayrollHandler.MountAdminRoutes(sub)
		})
		if params.JobHandler != nil {
			admin.Route("/jobs", func(sub chi.Router) {
				sub.Use(params.AuthMiddleware.RequireCapability(shared.CapManagePayroll))
				params.JobHandler.MountRoutes(sub)
			})
		}
	})

	r.Route("/employee", func(self chi.Router) {
		self.With(params.AuthMiddleware.RequireCapability(shared.CapViewOwnProfile)).
			Get("/profile", params.EmployeesHandler.HandleProfile)
		self.With(params.AuthMiddleware.RequireCapability(shared.CapViewOwnProfile)).
			Get("/payroll", params.PayrollHandler.HandleListOwn)
		self.With(params.AuthMiddleware.RequireCapability(shared.CapUpdateOwnPhoto)).
			Put("/profile/photo", params.EmployeesHandler.HandleUpdateOwnPhoto)
	})

	return r
}
