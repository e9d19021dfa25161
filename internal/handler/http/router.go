package http

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
	"github.com/onestaff/onestaff-os/internal/domain/user"
	"github.com/onestaff/onestaff-os/internal/handler/http/middleware"
	"github.com/onestaff/onestaff-os/internal/pkg/jwt"
)

type RouterConfig struct {
	Logger         *slog.Logger
	LogLevel       slog.Level
	AllowedOrigins []string
	RateLimiter    *middleware.UserRateLimiter
}

type Handlers struct {
	Runs     PayrollRunHandler
	Payslips PayslipHandler
	Reviews  PayrollReviewHandler
	Events   PayrollEventsHandler
}

func NewRouter(cfg RouterConfig, JWTService jwt.Service, h Handlers) *chi.Mux {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link", "Content-Disposition"},
		MaxAge:           300,
	}))

	r.Use(chiMiddleware.RequestID)
	r.Use(httplog.RequestLogger(cfg.Logger, &httplog.Options{
		Level:  cfg.LogLevel,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Route("/api/v1/payroll-execution", func(r chi.Router) {
		// The stream authenticates with its own query-string token
		r.Get("/events", h.Events.Stream)

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired(JWTService.JWTAuth()))

			r.With(middleware.RequirePermission(user.PermissionPayrollEventStream)).
				Get("/events/token", h.Events.GetSSEToken)

			r.Route("/runs", func(r chi.Router) {
				r.With(
					middleware.RequirePermission(user.PermissionPayrollRunCreate),
					cfg.RateLimiter.Handler,
				).Post("/", h.Runs.Create)

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionPayrollRunView))
					r.Get("/", h.Runs.List)
					r.Get("/{id}", h.Runs.Get)
					r.Get("/{id}/employee-details", h.Runs.EmployeeDetails)
				})

				r.With(middleware.RequirePermission(user.PermissionPayrollRunExport)).
					Get("/{id}/export", h.Runs.Export)

				r.With(
					middleware.RequirePermission(user.PermissionPayslipGenerate),
					cfg.RateLimiter.Handler,
				).Post("/{id}/generate-payslips", h.Payslips.Generate)

				r.With(middleware.RequirePermission(user.PermissionPayslipViewAll)).
					Get("/{id}/payslips", h.Payslips.ListByRun)

				// Per-action permissions are checked by the handler
				r.Post("/{id}/{action}", h.Runs.Transition)
			})

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAnyPermission(user.PermissionPayslipViewAll, user.PermissionPayslipViewOwn))
				r.Get("/employees/{employeeId}/payslips", h.Payslips.ListByEmployee)
				r.Get("/payslips/{id}/document", h.Payslips.Document)
			})

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequirePermission(user.PermissionPayrollReview))

				r.Route("/signing-bonuses", func(r chi.Router) {
					r.Get("/", h.Reviews.ListSigningBonuses)
					r.Post("/{id}/approve", h.Reviews.ApproveSigningBonus)
					r.Post("/{id}/reject", h.Reviews.RejectSigningBonus)
				})

				r.Route("/termination-benefits", func(r chi.Router) {
					r.Get("/", h.Reviews.ListTerminationBenefits)
					r.Post("/{id}/approve", h.Reviews.ApproveTerminationBenefit)
					r.Post("/{id}/reject", h.Reviews.RejectTerminationBenefit)
				})
			})
		})
	})

	return r
}
