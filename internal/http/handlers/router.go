package handlers

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	mw "github.com/smartcardai/trialdesk/internal/http/middleware"
	"github.com/smartcardai/trialdesk/internal/service"
	"github.com/smartcardai/trialdesk/internal/store/sqlite"
)

// NewRouter wires the full route table.
func (h *Handlers) NewRouter(rateLimits sqlite.RateLimitRepo) chi.Router {
	r := chi.NewRouter()

	r.Use(mw.RequestID)
	r.Use(mw.Logging)
	r.Use(mw.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.Health)

		r.Route("/auth", func(r chi.Router) {
			registerLimit := mw.RateLimit(rateLimits, h.config.RateLimit.RegisterRequests, h.config.RateLimit.RegisterWindow)
			r.With(registerLimit).Post("/register", h.Register)
			r.Post("/login", h.Login)
			r.Post("/logout", h.Logout)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(h.RequireJWT(service.RoleAdmin))

			r.Get("/dashboard", h.AdminDashboard)
			r.Get("/users", h.AdminUsers)
			r.Get("/integrations", h.ListIntegrations)
			r.Post("/integrations", h.CreateIntegration)
			r.Get("/domains", h.ListDomains)
			r.Post("/domains", h.CreateDomain)

			r.Route("/interns", func(r chi.Router) {
				r.Get("/", h.ListInterns)
				r.Post("/", h.CreateIntern)
				r.Put("/{id}", h.UpdateIntern)
				r.Put("/{id}/credentials", h.UpdateInternCredentials)
				r.Delete("/{id}", h.DeleteIntern)
			})

			r.Route("/customers", func(r chi.Router) {
				r.Get("/", h.ListCustomers)
				r.Post("/", h.CreateCustomer)
				r.Put("/{id}", h.UpdateCustomer)
				r.Delete("/{id}", h.DeleteCustomer)
			})

			r.Route("/requests", func(r chi.Router) {
				r.Post("/{id}/assign", h.AssignRequest)
				r.Put("/{id}/status", h.UpdateRequestStatus)
				r.Put("/{id}/project", h.UpdateRequestProject)
			})

			r.Route("/demos", func(r chi.Router) {
				r.Get("/", h.ListDemos)
				r.Put("/{id}", h.UpdateDemo)
				r.Delete("/{id}", h.DeleteDemo)
				r.Post("/{id}/regenerate-credentials", h.RegenerateDemoCredentials)
				r.Post("/{id}/assign-intern", h.AssignDemoIntern)
				r.Put("/{id}/admin-note", h.UpdateDemoAdminNote)
				r.Put("/{id}/intern-note", h.UpdateDemoInternNote)
			})
		})

		r.Route("/intern", func(r chi.Router) {
			r.Use(h.RequireJWT(service.RoleIntern))

			r.Get("/requests", h.ListInternRequests)
			r.Put("/requests/{id}/note", h.UpdateInternRequestNote)
			r.Get("/demos", h.ListInternDemos)
			r.Put("/demos/{id}/note", h.UpdateInternDemoNote)
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Use(h.RequireJWT(""))

			// Numeric segments address a single notification; the
			// rest are recipient selectors.
			r.Put("/{id:[0-9]+}/read", h.MarkNotificationRead)
			r.Delete("/{id:[0-9]+}", h.DeleteNotification)
			r.Get("/{recipientType:[a-z]+}", h.ListNotifications)
			r.Get("/{recipientType:[a-z]+}/unread-count", h.UnreadNotificationCount)
			r.Put("/{recipientType:[a-z]+}/mark-all-read", h.MarkAllNotificationsRead)
		})

		r.Route("/user", func(r chi.Router) {
			r.Get("/profile", h.UserProfile)
			r.Get("/dashboard", h.UserDashboard)
		})
	})

	return r
}
