package http

import (
	"log/slog"
	"os"

	"github.com/cmlabs-hris/payroll-backend-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

func NewRouter(
	jwtService jwt.Service,
	authHandler AuthHandler,
	employeeHandler EmployeeHandler,
	compensationHandler CompensationHandler,
	payrollHandler PayrollHandler,
	payslipHandler PayslipHandler,
	reportHandler ReportHandler,
) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(false)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "payroll-backend"),
		slog.String("version", "v1.0.0"),
		slog.String("env", "development"),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000"},
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
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

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
		})

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(jwtService.JWTAuth()))
			r.Use(middleware.AuthRequired(jwtService.JWTAuth()))

			r.Route("/employees", func(r chi.Router) {
				r.Get("/", employeeHandler.List)
				r.Get("/{id}", employeeHandler.Get)

				// Finance or admin only
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireFinance)
					r.Post("/", employeeHandler.Create)
					r.Put("/{id}", employeeHandler.Update)
					r.Delete("/{id}", employeeHandler.Delete)
				})

				r.Route("/{employeeId}", func(r chi.Router) {
					r.Use(middleware.RequireFinance)

					r.Route("/salaries", func(r chi.Router) {
						r.Get("/", compensationHandler.ListSalaries)
						r.Post("/", compensationHandler.CreateSalary)
					})

					r.Route("/adjustments", func(r chi.Router) {
						r.Get("/", compensationHandler.ListAdjustments)
						r.Post("/", compensationHandler.CreateAdjustment)
					})

					r.Get("/payroll", payrollHandler.ComputePayroll)
				})
			})

			r.Route("/adjustments", func(r chi.Router) {
				r.Use(middleware.RequireFinance)
				r.Post("/{id}/close", compensationHandler.CloseAdjustment)
			})

			r.Route("/payroll-runs", func(r chi.Router) {
				r.Use(middleware.RequireFinance)
				r.Get("/", payrollHandler.ListRuns)
				r.Post("/", payrollHandler.CreateRun)
				r.Post("/bulk", payrollHandler.CreateBulkRuns)
				r.Get("/{id}", payrollHandler.GetRun)
				r.Put("/{id}", payrollHandler.UpdateRun)
				r.Post("/{id}/process", payrollHandler.SettleRun)
			})

			r.Route("/payslips", func(r chi.Router) {
				r.Get("/", payslipHandler.List)
				r.Get("/{id}", payslipHandler.Get)

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireFinance)
					r.Post("/{id}/mark-paid", payslipHandler.MarkPaid)
				})
			})

			r.Route("/reports", func(r chi.Router) {
				r.Use(middleware.RequireFinance)
				r.Get("/payroll-summary", reportHandler.PayrollSummary)
				r.Get("/department-distribution", reportHandler.DepartmentDistribution)
			})
		})
	})
	return r
}
