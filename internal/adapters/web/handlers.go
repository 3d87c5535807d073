package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"repairdesk/internal/app"
	"repairdesk/internal/core"
	"repairdesk/internal/remote"
)

// Handler holds the ApplicationService and the chi router. members and
// admin are nil in local mode, which runs without an identity layer.
type Handler struct {
	svc       app.ApplicationService
	members   remote.MemberService
	admin     remote.AdminService
	router    chi.Router
	jwtSecret string
	log       *zap.Logger
}

// Config wires a hosted handler.
type Config struct {
	Service        app.ApplicationService
	Members        remote.MemberService
	Admin          remote.AdminService
	JWTSecret      string
	AllowedOrigins []string
	Logger         *zap.Logger
}

// NewHandler creates the hosted router: JWT cookie auth, per-company role
// checks, admin provisioning endpoints.
func NewHandler(cfg Config) http.Handler {
	h := &Handler{
		svc:       cfg.Service,
		members:   cfg.Members,
		admin:     cfg.Admin,
		jwtSecret: cfg.JWTSecret,
		log:       cfg.Logger,
	}

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Logger(h.log))
	r.Use(Recoverer(h.log))
	if len(cfg.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   cfg.AllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Content-Type", "X-Request-ID"},
			AllowCredentials: true,
		}))
	}

	r.Get("/api/health", h.health)
	r.Post("/api/auth/login", h.login)
	r.Post("/api/auth/logout", h.logout)

	r.Group(func(r chi.Router) {
		r.Use(h.RequireAuth)
		r.Use(RequestBodyLimit(1 << 20)) // 1 MB

		r.Get("/api/auth/me", h.me)
		r.Get("/api/schema", h.snapshotSchema)

		r.Get("/api/companies", h.listCompanies)
		r.Post("/api/companies", h.createCompany)

		r.Route("/api/companies/{companyID}", func(r chi.Router) {
			r.With(h.RequireRole(core.RoleAdmin)).Delete("/", h.deleteCompany)
			r.With(h.RequireRole(core.RoleAdmin)).Get("/consistency", h.consistency)

			r.Group(func(r chi.Router) {
				r.Use(h.RequireRole(core.RoleViewer))
				r.Get("/inventory", h.listInventory)
				r.Get("/jobs", h.listJobs)
				r.Get("/jobs/{jobID}", h.getJob)
				r.Get("/queue", h.listQueue)
				r.Get("/events", h.listEvents)
				r.Get("/reports", h.report)
				r.Get("/reports/drilldown", h.drilldown)
				r.Get("/reports/export", h.exportReport)
			})

			r.Group(func(r chi.Router) {
				r.Use(h.RequireRole(core.RoleOperator))
				r.Post("/inventory", h.saveItem)
				r.Put("/inventory/{itemID}", h.saveItem)
				r.Post("/inventory/{itemID}/adjust", h.adjustItem)
				r.Delete("/inventory/{itemID}", h.deleteItem)
				r.Post("/jobs", h.saveJob)
				r.Put("/jobs/{jobID}", h.saveJob)
				r.Delete("/jobs/{jobID}", h.deleteJob)
				r.Put("/jobs/{jobID}/usage", h.applyUsage)
				r.Post("/queue/{entryID}/resolve", h.resolveQueueEntry)
			})
		})

		r.Post("/api/admin/users", h.adminCreateUser)
		r.Post("/api/admin/members", h.adminAssignRole)
	})

	h.router = r
	return r
}

// NewLocalHandler creates the single-user router: same data routes, no
// identity layer, plus snapshot import/export.
func NewLocalHandler(svc app.ApplicationService, log *zap.Logger) http.Handler {
	h := &Handler{svc: svc, log: log}

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Logger(h.log))
	r.Use(Recoverer(h.log))
	r.Use(RequestBodyLimit(8 << 20)) // imports can be large

	r.Get("/api/health", h.health)
	r.Get("/api/schema", h.snapshotSchema)

	r.Get("/api/companies", h.listCompanies)
	r.Post("/api/companies", h.createCompany)

	r.Route("/api/companies/{companyID}", func(r chi.Router) {
		r.Delete("/", h.deleteCompany)
		r.Get("/inventory", h.listInventory)
		r.Post("/inventory", h.saveItem)
		r.Put("/inventory/{itemID}", h.saveItem)
		r.Post("/inventory/{itemID}/adjust", h.adjustItem)
		r.Delete("/inventory/{itemID}", h.deleteItem)
		r.Get("/jobs", h.listJobs)
		r.Post("/jobs", h.saveJob)
		r.Get("/jobs/{jobID}", h.getJob)
		r.Put("/jobs/{jobID}", h.saveJob)
		r.Delete("/jobs/{jobID}", h.deleteJob)
		r.Put("/jobs/{jobID}/usage", h.applyUsage)
		r.Get("/queue", h.listQueue)
		r.Post("/queue/{entryID}/resolve", h.resolveQueueEntry)
		r.Get("/events", h.listEvents)
		r.Get("/reports", h.report)
		r.Get("/reports/drilldown", h.drilldown)
		r.Get("/reports/export", h.exportReport)
		r.Get("/consistency", h.consistency)
	})

	r.Get("/api/snapshot", h.exportSnapshot)
	r.Post("/api/snapshot", h.importSnapshot)

	h.router = r
	return r
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}

func (h *Handler) snapshotSchema(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, core.SnapshotSchema())
}
