package handlers

import (
	"net/http"
	"time"

	"photoshare-backend/internal/metrics"
	"photoshare-backend/internal/middleware"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"github.com/rs/zerolog/hlog"
	"github.com/rs/zerolog/log"
)

// Handlers groups the request handlers mounted by NewRouter
type Handlers struct {
	Auth          *AuthHandler
	Users         *UserHandler
	Images        *ImageHandler
	Friends       *FriendHandler
	Groups        *GroupHandler
	Notifications *NotificationHandler
	WebSocket     *WebSocketHandler
}

// RouterConfig holds the cross-cutting pieces of the router. Optional fields may be nil.
type RouterConfig struct {
	Sessions    middleware.TokenValidator
	CookieName  string
	CORSOrigins []string
	AuthLimiter *middleware.RateLimiter
	Health      http.Handler

	// Uploads serves stored files. Each request is gated by the session and image access.
	Uploads http.Handler

	// TrustProxy takes the client address from X-Forwarded-For or X-Real-IP.
	// Enable only behind a reverse proxy that overwrites those headers.
	TrustProxy bool
}

// NewRouter builds the chi router with every API route
func NewRouter(h Handlers, cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	if cfg.TrustProxy {
		r.Use(chiMiddleware.RealIP)
	}
	r.Use(hlog.NewHandler(log.Logger))
	r.Use(hlog.RequestIDHandler("request_id", "X-Request-Id"))
	r.Use(hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
		hlog.FromRequest(r).Info().
			Str("method", r.Method).
			Str("url", r.URL.Path).
			Int("status", status).
			Int("size", size).
			Dur("duration", duration).
			Msg("Request")
	}))
	r.Use(chiMiddleware.Recoverer)
	r.Use(metrics.InstrumentHandler)
	r.Use(corsHandler(cfg.CORSOrigins))

	r.Handle("/metrics", metrics.Handler())
	if cfg.Health != nil {
		r.Handle("/healthz", cfg.Health)
	}
	r.Get("/ws", h.WebSocket.HandleWebSocket)

	requireSession := middleware.AuthMiddleware(cfg.Sessions, cfg.CookieName)

	if cfg.Uploads != nil {
		r.With(requireSession, h.Images.RequireAssetAccess).Handle("/uploads/*", cfg.Uploads)
	}

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				if cfg.AuthLimiter != nil {
					r.Use(cfg.AuthLimiter.Handler)
				}
				r.Post("/register", h.Auth.Register)
				r.Post("/login", h.Auth.Login)
			})
			r.Post("/logout", h.Auth.Logout)
			r.With(requireSession).Get("/me", h.Auth.Me)
		})

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(requireSession)

			r.Route("/images", func(r chi.Router) {
				r.Post("/", h.Images.Upload)
				r.Get("/", h.Images.List)
				r.Get("/by-date", h.Images.ListByDate)
				r.Get("/dates", h.Images.ListDates)
				r.Get("/shared", h.Images.ListShared)
				r.Get("/{id}", h.Images.Get)
				r.Delete("/{id}", h.Images.Delete)
			})

			r.Route("/friends", func(r chi.Router) {
				r.Get("/", h.Friends.List)
				r.Get("/requests", h.Friends.ListRequests)
				r.Post("/request", h.Friends.SendRequest)
				r.Put("/requests/{id}", h.Friends.Respond)
			})

			r.Route("/users", func(r chi.Router) {
				r.Get("/search", h.Users.Search)
				r.Put("/me/push-token", h.Users.UpdatePushToken)
			})

			r.Route("/groups", func(r chi.Router) {
				r.Get("/", h.Groups.List)
				r.Post("/", h.Groups.Create)
				r.Get("/{id}", h.Groups.Get)
				r.Post("/{id}/members", h.Groups.AddMember)
				r.Delete("/{id}/members/{userId}", h.Groups.RemoveMember)
				r.Get("/{id}/images", h.Groups.ListImages)
			})

			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", h.Notifications.List)
				r.Get("/unread-count", h.Notifications.UnreadCount)
				r.Put("/read-all", h.Notifications.MarkAllRead)
				r.Put("/{id}/read", h.Notifications.MarkRead)
			})
		})
	})

	return r
}

// corsHandler allows credentialed requests from the configured origins
func corsHandler(origins []string) func(http.Handler) http.Handler {
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000", "http://localhost:5173"}
	}
	return cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}).Handler
}
