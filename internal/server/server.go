// Package server exposes the catalog over HTTP for the directory front end.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/emberstone/vitrine/pkg/hub"
	"github.com/emberstone/vitrine/pkg/report"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
)

type catalog interface {
	Plugins(ctx context.Context) ([]hub.Plugin, error)
	Find(ctx context.Context, owner, name string) (hub.Plugin, error)
	Detail(ctx context.Context, p hub.Plugin) (hub.Detail, map[string]string)
	Readme(ctx context.Context, p hub.Plugin) (string, error)
	Releases(ctx context.Context, p hub.Plugin) ([]hub.Release, error)
	Commits(ctx context.Context, p hub.Plugin) ([]hub.Commit, error)
	Contributors(ctx context.Context, p hub.Plugin) ([]hub.Contributor, error)
	Gallery(ctx context.Context, p hub.Plugin) ([]string, error)
}

type reporter interface {
	Send(ctx context.Context, r report.Report) error
}

// Server routes catalog requests.
type Server struct {
	router   *mux.Router
	catalog  catalog
	reporter reporter
}

// New creates a Server instance.
func New(ctlg catalog, rep reporter) *Server {
	s := &Server{
		router:   mux.NewRouter(),
		catalog:  ctlg,
		reporter: rep,
	}

	s.router.Use(s.recoveryMiddleware, s.loggingMiddleware)

	s.router.HandleFunc("/", s.landing).Methods(http.MethodGet)
	s.router.HandleFunc("/submit", s.submitGuidance).Methods(http.MethodGet)
	s.router.HandleFunc("/report", s.report).Methods(http.MethodPost)

	s.router.HandleFunc("/plugins", s.plugins).Methods(http.MethodGet)
	s.router.HandleFunc("/plugins/{owner}/{name}", s.pluginDetail).Methods(http.MethodGet)
	s.router.HandleFunc("/plugins/{owner}/{name}/readme", s.pluginResource(s.readme)).Methods(http.MethodGet)
	s.router.HandleFunc("/plugins/{owner}/{name}/releases", s.pluginResource(s.releases)).Methods(http.MethodGet)
	s.router.HandleFunc("/plugins/{owner}/{name}/commits", s.pluginResource(s.commits)).Methods(http.MethodGet)
	s.router.HandleFunc("/plugins/{owner}/{name}/contributors", s.pluginResource(s.contributors)).Methods(http.MethodGet)
	s.router.HandleFunc("/plugins/{owner}/{name}/gallery", s.pluginResource(s.gallery)).Methods(http.MethodGet)

	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, req *http.Request) {
		start := time.Now()

		logger := log.With().
			Str("method", req.Method).
			Str("path", req.URL.Path).
			Logger()

		wrapped := &statusWriter{ResponseWriter: rw, status: http.StatusOK}

		next.ServeHTTP(wrapped, req.WithContext(logger.WithContext(req.Context())))

		logger.Debug().
			Int("status", wrapped.status).
			Dur("duration", time.Since(start)).
			Msg("Handled request")
	})
}

func (s *Server) recoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, req *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Ctx(req.Context()).Error().Interface("panic", rec).Msg("Recovered from panic")
				http.Error(rw, "Internal Server Error", http.StatusInternalServerError)
			}
		}()

		next.ServeHTTP(rw, req)
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}
