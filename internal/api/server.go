// Package api exposes teamkit over HTTP: the auth gate, owner-scoped
// project persistence, document rendering, export bundles and the prompt
// library.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/roach88/teamkit/internal/auth"
	"github.com/roach88/teamkit/internal/project"
	"github.com/roach88/teamkit/internal/render"
)

// AuthService is the subset of auth.Service the handlers need.
type AuthService interface {
	Register(ctx context.Context, in auth.RegisterInput) error
	VerifyEmail(ctx context.Context, token string) error
	Login(ctx context.Context, email, password string) (auth.Session, error)
	Profile(ctx context.Context, userID string) (auth.Profile, error)
	Authenticate(ctx context.Context, token string) (auth.Identity, error)
}

// ProjectService is the subset of project.Service the handlers need.
type ProjectService interface {
	Create(ctx context.Context, ownerID string, cfg json.RawMessage, docs project.Documents) (project.Project, error)
	Get(ctx context.Context, projectID, callerID string) (project.Project, error)
	ListByOwner(ctx context.Context, ownerID string) ([]project.Project, error)
	IDsByOwner(ctx context.Context, ownerID string) ([]string, error)
	Update(ctx context.Context, projectID, ownerID string, p project.Patch) (project.Project, error)
	Delete(ctx context.Context, projectID, ownerID string) (bool, error)
}

// Pinger reports backend health for /healthz.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ServerConfig holds the dependencies of a Server.
type ServerConfig struct {
	Auth     AuthService
	Projects ProjectService
	Prompts  *render.Library
	Health   Pinger
	Logger   *slog.Logger
}

// Server serves the teamkit HTTP API.
type Server struct {
	auth     AuthService
	projects ProjectService
	prompts  *render.Library
	health   Pinger
	logger   *slog.Logger

	mux        *http.ServeMux
	handler    http.Handler
	httpServer *http.Server
}

// NewServer creates a Server and registers every route.
func NewServer(cfg ServerConfig) *Server {
	s := &Server{
		auth:     cfg.Auth,
		projects: cfg.Projects,
		prompts:  cfg.Prompts,
		health:   cfg.Health,
		logger:   cfg.Logger,
		mux:      http.NewServeMux(),
	}
	if s.prompts == nil {
		s.prompts = render.DefaultLibrary()
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}

	s.mux.HandleFunc("GET /healthz", s.handleHealth)

	s.mux.HandleFunc("POST /auth/register", s.handleRegister)
	s.mux.HandleFunc("GET /auth/verify", s.handleVerify)
	s.mux.HandleFunc("POST /auth/login", s.handleLogin)
	s.mux.HandleFunc("GET /auth/profile", s.authed(s.handleProfile))
	s.mux.HandleFunc("POST /auth/logout", s.handleLogout)

	s.mux.HandleFunc("POST /config/save", s.authed(s.handleSaveConfig))
	s.mux.HandleFunc("POST /config/validate", s.handleValidateConfig)
	s.mux.HandleFunc("GET /config/user/projects", s.authed(s.handleListProjects))
	s.mux.HandleFunc("GET /config/user/ids", s.authed(s.handleListProjectIDs))
	s.mux.HandleFunc("GET /config/{id}", s.authed(s.handleGetConfig))
	s.mux.HandleFunc("PUT /config/{id}", s.authed(s.handleUpdateConfig))
	s.mux.HandleFunc("DELETE /config/{id}", s.authed(s.handleDeleteConfig))

	s.mux.HandleFunc("POST /export/zip", s.handleExportZip)
	s.mux.HandleFunc("POST /export/json", s.handleExportJSON)
	s.mux.HandleFunc("POST /render/{kind}", s.handleRender)

	s.mux.HandleFunc("GET /templates", s.handleTemplates)
	s.mux.HandleFunc("GET /prompts", s.handleListPrompts)
	s.mux.HandleFunc("GET /prompts/{id}", s.handleGetPrompt)
	s.mux.HandleFunc("POST /prompts/{id}/fill", s.handleFillPrompt)
	s.mux.HandleFunc("POST /prompts/compose", s.handleComposePrompt)

	s.handler = s.logRequests(s.mux)
	return s
}

// Handler returns the HTTP handler for use with custom servers.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start starts the HTTP server on the given address.
func (s *Server) Start(addr string) error {
	s.httpServer = s.newHTTPServer(addr)
	return s.httpServer.ListenAndServe()
}

func (s *Server) newHTTPServer(addr string) *http.Server {
	return &http.Server{
		Addr:         addr,
		Handler:      s.handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}

// Run serves on addr until ctx is cancelled, then shuts down within
// grace.
func (s *Server) Run(ctx context.Context, addr string, grace time.Duration) error {
	srv := s.newHTTPServer(addr)
	s.httpServer = srv

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), grace)
	defer cancel()
	if err := s.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.health != nil {
		if err := s.health.Ping(r.Context()); err != nil {
			s.logger.WarnContext(r.Context(), "health check failed", "error", err)
			WriteJSONError(w, http.StatusServiceUnavailable, "unavailable", "")
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// identityHandler is a handler that runs with an authenticated caller.
type identityHandler func(w http.ResponseWriter, r *http.Request, id auth.Identity)

// authed resolves the bearer token into an identity before calling next.
func (s *Server) authed(next identityHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := s.auth.Authenticate(r.Context(), bearerToken(r))
		if err != nil {
			writeError(w, r, s.logger, err)
			return
		}
		next(w, r, id)
	}
}

func bearerToken(r *http.Request) string {
	h := strings.TrimSpace(r.Header.Get("Authorization"))
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.InfoContext(r.Context(), "request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}
