// Package http serves the server-rendered pages on top of the page
// controllers.
package http

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"fintrack/internal/cache"
	"fintrack/internal/guard"
	"fintrack/internal/log"
	"fintrack/internal/middleware/ratelimit"
	"fintrack/internal/middleware/security"
	"fintrack/internal/middleware/trace"
	"fintrack/internal/pages"
	appweb "fintrack/web"
)

const (
	flashTTL      = 5 * time.Minute
	flashCapacity = 1000
	cleanupEvery  = 10 * time.Minute
	staticMaxAge  = 3600
	readyTimeout  = 5 * time.Second
	maxFormBytes  = 64 << 10
	defaultPerMin = 60
	readTimeout   = 15 * time.Second
	writeTimeout  = 30 * time.Second
	idleTimeout   = 60 * time.Second
	headerTimeout = 5 * time.Second
)

// Sessions is what the web layer needs from the session store.
type Sessions interface {
	pages.Sessions
	guard.Authenticator
	DisplayName() string
}

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Deps struct {
	API      pages.API
	Sessions Sessions
	Activity pages.Activity
	// Store is checked by /readyz when the session is persisted.
	Store    Pinger
	Logger   *log.Logger

	RateLimitPerMinute int
}

type Server struct {
	http.Server

	pages     *pages.Controller
	sessions  Sessions
	guard     *guard.Guard
	templates map[string]*template.Template
	store     Pinger
	logger    *log.Logger

	flashes  *cache.LRUCache[flash]
	caches   *cache.Manager
	limiter  *ratelimit.Limiter
	detector *security.Detector
	tracer   *trace.Middleware

	started      time.Time
	shutdownOnce sync.Once
}

// NewServer parses the embedded templates and wires the routes, returning
// a server ready for ListenAndServe.
func NewServer(addr string, d Deps) (*Server, error) {
	if d.API == nil || d.Sessions == nil {
		return nil, errors.New("http: API and Sessions are required")
	}
	logger := d.Logger
	if logger == nil {
		logger = log.New(log.Config{Component: log.ComponentHTTP, Handler: slog.Default().Handler()})
	}
	perMinute := d.RateLimitPerMinute
	if perMinute <= 0 {
		perMinute = defaultPerMin
	}

	tmpl, err := parseTemplates()
	if err != nil {
		return nil, err
	}

	s := &Server{
		pages:     pages.New(d.API, d.Sessions, d.Activity, logger.WithComponent(log.ComponentPages)),
		sessions:  d.Sessions,
		guard:     guard.New(d.Sessions, pages.LoginPath, pages.DashboardPath),
		templates: tmpl,
		store:     d.Store,
		logger:    logger,
		flashes:   cache.NewLRUCache[flash](flashCapacity, flashTTL),
		caches:    cache.NewManager(logger.WithComponent(log.ComponentCache)),
		limiter:   ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: perMinute}),
		detector:  security.NewDetector(),
		started:   time.Now(),
	}
	s.tracer = trace.NewMiddleware(s.detector.ExtractClientIP, logger.WithComponent(log.ComponentTrace))
	s.caches.Register(s.flashes)
	s.caches.StartCleanup(cleanupEvery)

	router, err := s.routes()
	if err != nil {
		s.caches.Stop()
		return nil, err
	}
	s.Server = http.Server{
		Addr:              addr,
		Handler:           router,
		ReadTimeout:       readTimeout,
		ReadHeaderTimeout: headerTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
	}
	return s, nil
}

func (s *Server) routes() (http.Handler, error) {
	static, err := fs.Sub(appweb.StaticFS, "static")
	if err != nil {
		return nil, fmt.Errorf("mount static assets: %w", err)
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.tracer.Middleware)
	r.Use(s.detector.Middleware(s.logger.WithComponent(log.ComponentSecurity)))
	r.Use(security.Headers(security.DefaultHeadersConfig()))
	r.Use(s.limiter.Middleware(s.detector.ExtractClientIP, s.rateLimited, http.MethodPost))

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	r.With(security.StaticAssets(staticMaxAge)).
		Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(static))))

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, pages.DashboardPath, http.StatusFound)
	})
	r.Post("/logout", s.handleLogout)

	r.Group(func(r chi.Router) {
		r.Use(s.guard.Middleware(guard.GuestOnly))
		r.Get(pages.LoginPath, s.handleLoginPage)
		r.Post(pages.LoginPath, s.handleLogin)
		r.Get(registerPath, s.handleRegisterPage)
		r.Post(registerPath, s.handleRegister)
	})

	r.Group(func(r chi.Router) {
		r.Use(s.guard.Middleware(guard.Protected))
		r.Get(pages.DashboardPath, s.handleDashboard)
		r.Get(statisticsPath, s.handleStatistics)
		r.Get(pages.TransactionsPath, s.handleTransactions)
		r.Post(pages.TransactionsPath, s.handleCreateTransaction)
		r.Post(pages.TransactionsPath+"/{id}/delete", s.handleDeleteTransaction)
		r.Get(pages.CategoriesPath, s.handleCategories)
		r.Post(pages.CategoriesPath, s.handleCreateCategory)
		r.Post(pages.CategoriesPath+"/{id}/delete", s.handleDeleteCategory)
	})

	return r, nil
}

func (s *Server) rateLimited(w http.ResponseWriter, r *http.Request) {
	log.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
		log.FieldClientIP, s.detector.ExtractClientIP(r),
		log.FieldMethod, r.Method,
		log.FieldPath, r.URL.Path)
	w.Header().Set("Retry-After", "60")
	http.Error(w, "Too many requests, please slow down.", http.StatusTooManyRequests)
}

// Shutdown stops the background cleanup and then the HTTP server. Only the
// first call has an effect.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.caches.Stop()
		s.limiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}
