// Package httptransport assembles the HTTP surface: the namespace routers,
// the middleware stack, and the operational endpoints.
package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	apphandler "stafflink/internal/applications/handler"
	candhandler "stafflink/internal/candidates/handler"
	examhandler "stafflink/internal/exam/handler"
	"stafflink/internal/export"
	identityhandler "stafflink/internal/identity/handler"
	interviewhandler "stafflink/internal/interviews/handler"
	jobhandler "stafflink/internal/jobs/handler"
	"stafflink/internal/platform/middleware"
	verificationhandler "stafflink/internal/verification/handler"
)

// Deps carries everything the router mounts.
type Deps struct {
	Identity     *identityhandler.Handler
	Verification *verificationhandler.Handler
	Jobs         *jobhandler.Handler
	Applications *apphandler.Handler
	Candidates   *candhandler.Handler
	Interviews   *interviewhandler.Handler
	Export       *export.Handler
	Exam         *examhandler.Handler

	TokenValidator middleware.TokenValidator
	AdminToken     string
	Logger         *slog.Logger
}

// NewRouter wires the namespaces: /auth, /admin, /employee, /student, /jobs,
// /assessment, plus /healthz and /metrics.
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.ClientMetadata)
	r.Use(middleware.Recovery(d.Logger))
	r.Use(middleware.Logger(d.Logger))
	r.Use(middleware.Timeout(60 * time.Second))

	requireAuth := middleware.RequireAuth(d.TokenValidator, d.Logger)

	r.Route("/auth", func(r chi.Router) {
		d.Identity.Register(r)
		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			d.Identity.RegisterAuthenticated(r)
		})
	})

	r.Route("/admin", func(r chi.Router) {
		r.Use(middleware.RequireAdminToken(d.AdminToken))
		d.Verification.RegisterAdmin(r)
		d.Exam.RegisterAdmin(r)
	})

	r.Route("/employee", func(r chi.Router) {
		r.Use(requireAuth)
		r.Use(middleware.RequireUserType("employee"))
		d.Verification.RegisterEmployee(r)
		d.Jobs.RegisterEmployee(r)
		d.Applications.RegisterEmployee(r)
		d.Candidates.RegisterEmployee(r)
		d.Interviews.RegisterEmployee(r)
		d.Export.RegisterEmployee(r)
	})

	r.Route("/student", func(r chi.Router) {
		r.Use(requireAuth)
		r.Use(middleware.RequireUserType("student"))
		d.Applications.RegisterStudent(r)
		d.Interviews.RegisterStudent(r)
	})

	r.Route("/jobs", func(r chi.Router) {
		d.Jobs.RegisterPublic(r)
		r.Group(func(r chi.Router) {
			r.Use(middleware.OptionalAuth(d.TokenValidator))
			d.Applications.RegisterPublic(r)
		})
	})

	r.Route("/assessment", func(r chi.Router) {
		d.Exam.Register(r)
	})

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"message":"ok"}`))
	})
	r.Handle("/metrics", promhttp.Handler())

	return r
}
