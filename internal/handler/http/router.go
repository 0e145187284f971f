package http

import (
	"log/slog"

	"github.com/cmlabs-hris/payroll-engine/internal/config"
	"github.com/cmlabs-hris/payroll-engine/internal/handler/http/middleware"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

func NewRouter(cfg config.AppConfig, logger *slog.Logger, JWTService jwt.Service, payrollHandler PayrollHandler) *chi.Mux {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelDebug,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Route("/api/v1", func(r chi.Router) {

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired(JWTService.JWTAuth()))

			r.Route("/payroll", func(r chi.Router) {
				r.Route("/periods", func(r chi.Router) {
					r.Post("/", payrollHandler.CreatePeriod)
					r.Get("/", payrollHandler.ListPeriods)

					r.Route("/{id}", func(r chi.Router) {
						r.Get("/", payrollHandler.GetPeriod)
						r.Get("/payslips", payrollHandler.ListPayslips)
						r.Post("/start-calculation", payrollHandler.StartCalculation)
						r.Post("/calculate", payrollHandler.CalculatePeriod)
						r.Post("/run", payrollHandler.RunCalculation)
						r.Post("/submit", payrollHandler.SubmitForApproval)
						r.Post("/employees/{employeeID}/calculate", payrollHandler.CalculateEmployee)

						// Manager or owner only
						r.Group(func(r chi.Router) {
							r.Use(middleware.RequireManager)
							r.Post("/approve", payrollHandler.Approve)
							r.Post("/mark-paid", payrollHandler.MarkAsPaid)
							r.Post("/close", payrollHandler.ClosePeriod)
						})
					})
				})

				r.Route("/payslips/{id}", func(r chi.Router) {
					r.Get("/", payrollHandler.GetPayslip)
					r.Post("/adjustments", payrollHandler.CreateAdjustment)
				})

				r.With(middleware.RequireManager).Post("/adjustments/{id}/approve", payrollHandler.ApproveAdjustment)

				r.Post("/contracts", payrollHandler.CreateContract)
				r.Route("/employees/{employeeID}/contracts", func(r chi.Router) {
					r.Get("/", payrollHandler.ListContracts)
					r.Get("/active", payrollHandler.GetActiveContract)
				})
			})
		})
	})
	return r
}
