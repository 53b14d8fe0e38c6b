package rest

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"teamcal-backend/infrastructure/di"
	"teamcal-backend/interfaces/http/rest/handlers"
	"teamcal-backend/interfaces/http/rest/middleware"
	pkgerrors "teamcal-backend/pkg/errors"
)

// Router creates and configures the HTTP router
type Router struct {
	container *di.Container
	errors    *pkgerrors.ErrorHandler
}

// NewRouter creates a new router instance
func NewRouter(container *di.Container) *Router {
	return &Router{
		container: container,
		errors:    pkgerrors.NewErrorHandler(container.Logger, container.Config.IsDevelopment()),
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	c := rt.container
	router := chi.NewRouter()

	// Global middleware
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.Logger(c.Logger))
	router.Use(versionMiddleware)

	if c.Config.EnableTracing {
		router.Use(middleware.Tracing(c.Tracer))
	}

	if c.Config.EnableCORS {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   []string{"http://localhost:3000", "https://*.teamcal.app"},
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	if c.Config.EnableRateLimit {
		if c.Config.DistributedLimits && c.RateLimiter != nil {
			router.Use(middleware.DistributedRateLimit(c.RateLimiter, c.Logger))
		} else {
			router.Use(middleware.RateLimitByIP(c.Config.RateLimitPerMinute))
		}
	}

	// Liveness probes; the ops server carries the deep checks
	router.Get("/health", rt.healthCheck)
	router.Get("/ready", rt.readinessCheck)

	userHandler := handlers.NewUserHandler(c.UserService, rt.errors, c.Logger)
	authHandler := handlers.NewAuthHandler(c.TokenIssuer, c.UserService, rt.errors, c.Logger)

	router.Route("/api/v1", func(r chi.Router) {
		// Sign-up and development token minting stay outside the
		// authenticated group
		r.Post("/users", userHandler.Register)
		if c.Config.IsDevelopment() {
			r.Post("/auth/dev-token", authHandler.DevToken)
		}

		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(c.Tokens, c.Hooks, c.Logger))

			r.Post("/auth/refresh", authHandler.RefreshToken)

			// User endpoints
			r.Get("/users", userHandler.LookupByEmail)
			r.Get("/users/me", userHandler.Me)
			r.Put("/users/me", userHandler.UpdateMe)
			r.Delete("/users/me", userHandler.DeleteMe)
			r.Get("/users/{userID}", userHandler.GetUser)

			// Team, membership and event endpoints
			r.Route("/teams", func(r chi.Router) {
				teamHandler := handlers.NewTeamHandler(c.TeamService, c.Hooks, rt.errors, c.Logger)
				r.Post("/", teamHandler.CreateTeam)
				r.Get("/", teamHandler.ListMyTeams)
				r.Get("/{teamID}", teamHandler.GetTeam)
				r.Put("/{teamID}", teamHandler.UpdateTeam)
				r.Delete("/{teamID}", teamHandler.DeleteTeam)
				r.Post("/{teamID}/rotate-key", teamHandler.RotateSubscriptionKey)

				r.Post("/{teamID}/members", teamHandler.InviteMember)
				r.Get("/{teamID}/members", teamHandler.ListMembers)
				r.Put("/{teamID}/members/{userID}", teamHandler.ChangeMemberRole)
				r.Delete("/{teamID}/members/{userID}", teamHandler.RemoveMember)

				eventHandler := handlers.NewEventHandler(c.EventService, c.Hooks, rt.errors, c.Logger)
				r.Post("/{teamID}/events", eventHandler.CreateEvent)
				r.Get("/{teamID}/events", eventHandler.ListEvents)
				r.Get("/{teamID}/events/{eventID}", eventHandler.GetEvent)
				r.Put("/{teamID}/events/{eventID}", eventHandler.UpdateEvent)
				r.Delete("/{teamID}/events/{eventID}", eventHandler.DeleteEvent)
			})

			// Cross-team calendar window
			calendarHandler := handlers.NewCalendarHandler(c.CalendarService, rt.errors, c.Logger)
			r.Get("/calendar", calendarHandler.GetCalendar)
		})
	})

	return router
}

// healthCheck handles health check requests
func (rt *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy"}`))
}

// readinessCheck handles readiness check requests
func (rt *Router) readinessCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ready"}`))
}

// versionMiddleware adds API version headers to all responses
func versionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-API-Version", "v1")
		w.Header().Set("X-API-Latest", "v1")
		next.ServeHTTP(w, r)
	})
}
