package rest

import (
	"database/sql"
	"log/slog"

	"github.com/frahmantamala/attendance-management/internal/attendance"
	"github.com/frahmantamala/attendance-management/internal/auth"
	"github.com/frahmantamala/attendance-management/internal/checkin"
	"github.com/frahmantamala/attendance-management/internal/department"
	"github.com/frahmantamala/attendance-management/internal/employee"
	"github.com/frahmantamala/attendance-management/internal/leave"
	"github.com/frahmantamala/attendance-management/internal/metrics"
	"github.com/frahmantamala/attendance-management/internal/timer"
	"github.com/frahmantamala/attendance-management/internal/transport/middleware"
	"github.com/frahmantamala/attendance-management/internal/transport/swagger"
	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"
	"github.com/redis/go-redis/v9"
)

type Handlers struct {
	Auth       *auth.Handler
	Employee   *employee.Handler
	Attendance *attendance.Handler
	Checkin    *checkin.Handler
	Timer      *timer.Handler
	Leave      *leave.Handler
	Department *department.Handler
	Metrics    *metrics.Handler
}

type Options struct {
	AllowedOrigins string
	OpenAPIPath    string
	RequestLogging bool
}

func RegisterAllRoutes(router *chi.Mux, db *sql.DB, rdb redis.Cmdable, h Handlers, opts Options, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db, rdb)

	router.Use(middleware.CORS(opts.AllowedOrigins))
	router.Use(chiMiddleware.RequestID)
	router.Use(middleware.RequestID)
	router.Use(middleware.RecoveryMiddleware(logger))
	if opts.RequestLogging {
		router.Use(middleware.LoggingMiddleware(logger))
	}

	if opts.OpenAPIPath != "" {
		router.Get("/openapi.yml", swagger.SpecHandler(opts.OpenAPIPath))
		router.Handle("/swagger/*", swagger.Handler())
	}

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		r.Post("/auth/login", h.Auth.Login)

		r.Group(func(pr chi.Router) {
			pr.Use(h.Auth.AuthMiddleware)

			pr.Post("/auth/logout", h.Auth.Logout)
			pr.Get("/users/me", h.Employee.GetCurrentUser)

			pr.Route("/attendance", func(ar chi.Router) {
				ar.Get("/today", h.Attendance.GetToday)
				ar.Get("/me/summary", h.Attendance.GetMySummary)
				ar.Post("/checkin/sessions", h.Checkin.OpenSession)
				ar.Post("/checkin/sessions/{id}/frames", h.Checkin.SubmitFrame)
				ar.Get("/notices/late", h.Checkin.TakeLateNotice)
			})

			pr.Route("/timer", func(tr chi.Router) {
				tr.Get("/", h.Timer.GetTimer)
				tr.Post("/stop", h.Timer.StopTimer)
				tr.Post("/reset", h.Timer.ResetTimer)
				tr.Delete("/", h.Timer.DeleteTimer)
			})

			pr.Post("/leave-requests", h.Leave.SubmitLeave)
			pr.Get("/leave-requests/mine", h.Leave.ListMine)
			pr.Get("/leave-days/{employeeID}", h.Leave.GetLeaveDays)

			pr.Route("/admin", func(adm chi.Router) {
				adm.Use(h.Auth.RequireAdmin)

				adm.Route("/employees", func(er chi.Router) {
					er.Get("/", h.Employee.ListEmployees)
					er.Post("/", h.Employee.CreateEmployee)
					er.Get("/{id}", h.Employee.GetEmployee)
					er.Put("/{id}", h.Employee.UpdateEmployee)
					er.Delete("/{id}", h.Employee.DeleteEmployee)
					er.Patch("/{id}/status", h.Employee.UpdateStatus)
					er.Post("/{id}/photo", h.Employee.UploadPhoto)
				})

				adm.Route("/departments", func(dr chi.Router) {
					dr.Get("/", h.Department.ListDepartments)
					dr.Post("/", h.Department.CreateDepartment)
					dr.Get("/analytics", h.Department.GetAnalytics)
					dr.Put("/{id}", h.Department.UpdateDepartment)
					dr.Delete("/{id}", h.Department.DeleteDepartment)
				})

				adm.Get("/leave-requests", h.Leave.ListAll)
				adm.Patch("/leave-requests/{id}/status", h.Leave.UpdateStatus)
				adm.Delete("/leave-requests/{id}", h.Leave.DeleteLeave)
				adm.Post("/leave-sweep", h.Leave.RunSweep)

				adm.Get("/attendance", h.Attendance.ListRecords)
				adm.Get("/attendance/stats", h.Attendance.GetStats)
				adm.Get("/attendance/departments", h.Attendance.GetDepartmentStats)
				adm.Get("/attendance/absence-reasons", h.Attendance.GetAbsenceReasons)

				adm.Get("/metrics", h.Metrics.GetMetrics)
			})
		})
	})
}
