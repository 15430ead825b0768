// Package api exposes the ingredient store over HTTP.
package api

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/jwulff/inventory-go/internal/logger"
	"github.com/jwulff/inventory-go/internal/storage"
)

//go:embed static
var staticFiles embed.FS

// PoolChecker reports database pool health. *sqlite.Pool satisfies it.
type PoolChecker interface {
	Ping(ctx context.Context) error
	Stats() sql.DBStats
}

// Server handles HTTP requests for the inventory.
type Server struct {
	store      storage.Store
	pool       PoolChecker
	logger     *slog.Logger
	addr       string
	httpServer *http.Server
	startTime  time.Time
}

// NewServer creates a server for store. pool may be nil, in which case the
// health endpoint skips the pool check.
func NewServer(store storage.Store, pool PoolChecker, addr string) *Server {
	return &Server{
		store:     store,
		pool:      pool,
		logger:    logger.L().With("component", "api"),
		addr:      addr,
		startTime: time.Now(),
	}
}

// Routes sets up the HTTP routes with middleware.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequest)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"http://localhost:*", "http://127.0.0.1:*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/ingredients", s.handleListIngredients)
		r.Post("/ingredients", s.handleAddIngredient)
		r.Delete("/ingredients", s.handleDeleteIngredients)
	})

	r.Get("/", s.serveStatic("static/index.html", "text/html; charset=utf-8"))
	r.Get("/static/app.js", s.serveStatic("static/app.js", "application/javascript"))

	return r
}

// Start begins listening in a goroutine. It returns once the socket is bound.
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:              s.addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	s.addr = ln.Addr().String()

	go func() {
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("server stopped", "error", err)
		}
	}()
	s.logger.Info("server listening", "addr", s.addr)
	return nil
}

// Addr returns the listen address, resolved once Start has bound the socket.
func (s *Server) Addr() string {
	return s.addr
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) serveStatic(name, contentType string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, err := fs.ReadFile(staticFiles, name)
		if err != nil {
			http.Error(w, name+" not found", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", contentType)
		_, _ = w.Write(data)
	}
}

func (s *Server) logRequest(next http.Handler) http.Handler {
	fn := func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	}
	return http.HandlerFunc(fn)
}
