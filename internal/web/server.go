// Package web provides the HTTP server and handlers for the note board
// application: session-based auth, the notes and admin user tables, and the
// JSON API they are built on.
package web

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/microcosm-cc/bluemonday"

	"github.com/mandjevant/noteboard/internal/auth"
	"github.com/mandjevant/noteboard/internal/config"
	"github.com/mandjevant/noteboard/internal/crud/render"
	"github.com/mandjevant/noteboard/internal/logging"
	"github.com/mandjevant/noteboard/internal/model"
	"github.com/mandjevant/noteboard/internal/store"
	"github.com/mandjevant/noteboard/internal/web/middleware"
)

// Server is the HTTP server for the note board application.
type Server struct {
	store     store.Store
	auth      *auth.Service
	entities  *EntityRegistry
	renderers *render.Registry
	pages     *pageTemplates
	sanitizer *bluemonday.Policy
	cfg       *config.Config
	router    *chi.Mux
	server    *http.Server
}

// NewServer wires the server: entity registry, renderers, page templates,
// middleware and routes.
func NewServer(st store.Store, authSvc *auth.Service, cfg *config.Config) (*Server, error) {
	html, err := render.NewHTML()
	if err != nil {
		return nil, err
	}
	renderers := render.NewRegistry()
	renderers.MustRegister(html)

	pages, err := newPageTemplates()
	if err != nil {
		return nil, err
	}

	s := &Server{
		store:     st,
		auth:      authSvc,
		entities:  NewEntityRegistry(),
		renderers: renderers,
		pages:     pages,
		sanitizer: bluemonday.UGCPolicy(),
		cfg:       cfg,
		router:    chi.NewRouter(),
	}
	s.registerEntities()
	s.setupMiddleware()
	s.setupRoutes()
	return s, nil
}

// registerEntities declares the tables served by the generic /table routes.
func (s *Server) registerEntities() {
	cost := s.cfg.Auth.BcryptCost
	s.entities.Register(EntityProvider{
		Key:       "users",
		Superuser: true,
		Build: func(_ *model.User) Entity {
			return userEntity(s.store, cost)
		},
	})
	s.entities.Register(EntityProvider{
		Key: "notes",
		Build: func(user *model.User) Entity {
			return noteEntity(s.store, user.ID, s.sanitizer.Sanitize)
		},
	})
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(chimw.RequestID)
	s.router.Use(middleware.TrustedRealIP(s.cfg.Security.TrustedProxies))
	s.router.Use(middleware.Logger)
	s.router.Use(chimw.Recoverer)
	s.router.Use(chimw.Compress(5))
	s.router.Use(chimw.Timeout(s.cfg.Server.RequestTimeout))

	s.router.Use(s.securityHeaders)

	if s.cfg.Rate.Enabled {
		limiter := newRateLimiter(s.cfg.Rate.RequestsPerMinute, time.Minute)
		s.router.Use(limiter.middleware)
	}

	s.router.Use(middleware.SessionAuth(s.auth))
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.Handle("/static/*", staticHandler())

	// Pages
	s.router.Get("/", s.handleHome)
	s.router.Get("/login", s.handleLoginPage)
	s.router.Get("/signup", s.handleSignupPage)
	s.router.Get("/recover-password", s.handleRecoverPage)
	s.router.Get("/reset-password", s.handleResetPage)

	s.router.Group(func(r chi.Router) {
		r.Use(middleware.RequireUser)
		r.Get("/notes", s.handleNotesPage)

		// Generic table fragments
		r.Get("/table/{entityKey}", s.handleTableView)
		r.Get("/table/{entityKey}/edit", s.handleTableEditForm)
		r.Post("/table/{entityKey}/edit", s.handleTableEditSubmit)
		r.Post("/table/{entityKey}/delete", s.handleTableDelete)
	})

	s.router.Group(func(r chi.Router) {
		r.Use(middleware.RequireSuperuser)
		r.Get("/admin/users", s.handleAdminUsersPage)
	})

	// API routes
	s.router.Route("/api", func(r chi.Router) {
		// Credential endpoints get a stricter rate limit.
		r.Group(func(r chi.Router) {
			if s.cfg.Rate.Enabled {
				limiter := newRateLimiter(s.cfg.Rate.LoginLimit, time.Minute)
				r.Use(limiter.middleware)
			}
			r.Post("/login", s.handleLogin)
			r.Post("/signup", s.handleSignup)
			r.Post("/recover-password", s.handleRecoverPassword)
			r.Post("/reset-password", s.handleResetPassword)
		})
		r.Post("/logout", s.handleLogout)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireUser)

			r.Get("/users/me", s.handleCurrentUser)
			r.Patch("/users/me", s.handleUpdateCurrentUser)
			r.Post("/users/me/password", s.handleChangePassword)

			r.Get("/notes", s.handleListNotes)
			r.Post("/notes", s.handleCreateNote)
			r.Get("/notes/{noteID}", s.handleGetNote)
			r.Patch("/notes/{noteID}", s.handleUpdateNote)
			r.Delete("/notes/{noteID}", s.handleDeleteNote)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireSuperuser)

			r.Get("/users", s.handleListUsers)
			r.Get("/users/{userID}", s.handleGetUser)
			r.Patch("/users/{userID}", s.handleUpdateUser)
			r.Delete("/users/{userID}", s.handleDeleteUser)
		})
	})
}

// Start begins listening for HTTP requests.
func (s *Server) Start(addr string) error {
	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}

	logging.FromContext(context.Background()).Info("starting server", "addr", addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// securityHeaders adds security headers to all responses.
func (s *Server) securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		if s.cfg.Security.EnableCSP {
			w.Header().Set("Content-Security-Policy",
				"default-src 'self'; script-src 'self' https://unpkg.com 'unsafe-inline'; style-src 'self' 'unsafe-inline'; img-src 'self' data:; font-src 'self'")
		}
		next.ServeHTTP(w, r)
	})
}

// rateLimiter implements a simple token bucket rate limiter per IP.
type rateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	rate     int           // requests per window
	window   time.Duration // time window
}

type visitor struct {
	tokens    int
	lastReset time.Time
}

// newRateLimiter creates a rate limiter with the specified rate per window.
func newRateLimiter(rate int, window time.Duration) *rateLimiter {
	rl := &rateLimiter{
		visitors: make(map[string]*visitor),
		rate:     rate,
		window:   window,
	}
	go rl.cleanup()
	return rl
}

// cleanup removes stale visitor entries every minute.
func (rl *rateLimiter) cleanup() {
	for {
		time.Sleep(time.Minute)
		rl.mu.Lock()
		for ip, v := range rl.visitors {
			if time.Since(v.lastReset) > rl.window*2 {
				delete(rl.visitors, ip)
			}
		}
		rl.mu.Unlock()
	}
}

// allow checks if the request should be allowed and consumes a token if so.
func (rl *rateLimiter) allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	v, exists := rl.visitors[ip]
	if !exists {
		rl.visitors[ip] = &visitor{
			tokens:    rl.rate - 1,
			lastReset: time.Now(),
		}
		return true
	}

	if time.Since(v.lastReset) > rl.window {
		v.tokens = rl.rate - 1
		v.lastReset = time.Now()
		return true
	}

	if v.tokens <= 0 {
		return false
	}

	v.tokens--
	return true
}

// middleware returns an HTTP middleware that rate limits by IP.
func (rl *rateLimiter) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.allow(r.RemoteAddr) {
			w.Header().Set("Retry-After", "60")
			writeError(w, http.StatusTooManyRequests, "Rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}
