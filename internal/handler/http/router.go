package http

import (
	"log/slog"
	"os"

	"github.com/crewclock/crewclock-backend-go/internal/handler/http/middleware"
	"github.com/crewclock/crewclock-backend-go/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

type Handlers struct {
	Auth         AuthHandler
	Shift        ShiftHandler
	WorkLog      WorkLogHandler
	Payroll      PayrollHandler
	Master       MasterHandler
	Notification NotificationHandler
	Events       EventsHandler
}

func NewRouter(jwtService jwt.Service, h Handlers, allowedOrigins []string) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(false)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "crewclock"),
		slog.String("version", "v1.0.0"),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
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

		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", h.Auth.Login)
			r.Post("/refresh", h.Auth.RefreshToken)
			r.Post("/logout", h.Auth.Logout)
			r.Route("/oauth", func(r chi.Router) {
				r.Get("/google", h.Auth.LoginWithGoogle)
				r.Get("/callback/google", h.Auth.OAuthCallbackGoogle)
			})
		})

		// SSE authenticates via query token, outside the verifier chain.
		r.Get("/events", h.Events.Stream)

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(jwtService.JWTAuth()))
			r.Use(middleware.AuthRequired(jwtService.JWTAuth()))

			r.Route("/shifts", func(r chi.Router) {
				r.Post("/start", h.Shift.StartSession)
				r.Post("/stop", h.Shift.StopSession)
				r.Get("/my", h.Shift.MySlots)
				r.Get("/assignments", h.Shift.AutoAssignSlots)

				r.Group(func(r chi.Router) {
					r.Use(middleware.AdminOnly)
					r.Get("/active", h.Shift.OrgSlots)
					r.Post("/{logID}/force-finish", h.Shift.ForceFinish)
				})
			})

			r.Route("/worklogs", func(r chi.Router) {
				r.Post("/sync", h.WorkLog.Upsert)
				r.Get("/my", h.WorkLog.GetMyMonth)
				// Correction, deletion and absence marking are gated by
				// the policy evaluator in the service, so positions with
				// an admin tier reach them without the org-admin flag.
				r.Post("/absence", h.WorkLog.MarkAbsence)
				r.Put("/{logID}/correct", h.WorkLog.Correct)
				r.Delete("/{logID}", h.WorkLog.Delete)

				r.Group(func(r chi.Router) {
					r.Use(middleware.AdminOnly)
					r.Get("/", h.WorkLog.ListMonth)
				})
			})

			r.Route("/payroll", func(r chi.Router) {
				r.Get("/my", h.Payroll.GetMy)
				// Org-wide and cross-employee views are gated by the
				// policy evaluator in the service.
				r.Get("/", h.Payroll.GetOrg)
				r.Get("/{userID}", h.Payroll.GetEmployee)
			})

			r.Route("/machines", func(r chi.Router) {
				r.Get("/", h.Master.ListMachines)

				r.Group(func(r chi.Router) {
					r.Use(middleware.AdminOnly)
					r.Post("/", h.Master.CreateMachine)
					r.Delete("/{machineID}", h.Master.DeleteMachine)
				})
			})

			r.Route("/positions", func(r chi.Router) {
				r.Use(middleware.AdminOnly)
				r.Get("/", h.Master.ListPositions)
				r.Post("/", h.Master.CreatePosition)
				r.Put("/{positionID}", h.Master.UpdatePosition)
				r.Delete("/{positionID}", h.Master.DeletePosition)
			})

			r.Route("/employees", func(r chi.Router) {
				r.Use(middleware.AdminOnly)
				r.Get("/", h.Master.ListEmployees)
				r.Put("/{employeeID}", h.Master.UpdateEmployee)
			})

			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", h.Notification.GetMy)
				r.Post("/read", h.Notification.MarkRead)
			})
		})
	})

	return r
}
