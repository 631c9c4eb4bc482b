package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/emberstone/vitrine/pkg/core"
	"github.com/emberstone/vitrine/pkg/hub"
	"github.com/emberstone/vitrine/pkg/report"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
)

func (s *Server) landing(rw http.ResponseWriter, _ *http.Request) {
	writeJSON(rw, http.StatusOK, map[string]string{
		"service": "vitrine",
		"status":  "ok",
	})
}

func (s *Server) plugins(rw http.ResponseWriter, req *http.Request) {
	plugins, err := s.catalog.Plugins(req.Context())
	if err != nil {
		writeError(req.Context(), rw, err)
		return
	}

	query := req.URL.Query().Get("q")
	sortKey := core.SortKey(req.URL.Query().Get("sort"))

	writeJSON(rw, http.StatusOK, core.DeriveView(plugins, query, sortKey))
}

func (s *Server) pluginDetail(rw http.ResponseWriter, req *http.Request) {
	p, ok := s.findPlugin(rw, req)
	if !ok {
		return
	}

	detail, sectionErrs := s.catalog.Detail(req.Context(), p)

	writeJSON(rw, http.StatusOK, map[string]interface{}{
		"plugin": detail,
		"errors": sectionErrs,
	})
}

// pluginResource wraps one lazy detail-tab resource handler with the
// owner/name resolution shared by all of them.
func (s *Server) pluginResource(fn func(context.Context, hub.Plugin) (interface{}, error)) http.HandlerFunc {
	return func(rw http.ResponseWriter, req *http.Request) {
		p, ok := s.findPlugin(rw, req)
		if !ok {
			return
		}

		value, err := fn(req.Context(), p)
		if err != nil {
			writeError(req.Context(), rw, err)
			return
		}

		writeJSON(rw, http.StatusOK, value)
	}
}

func (s *Server) readme(ctx context.Context, p hub.Plugin) (interface{}, error) {
	content, err := s.catalog.Readme(ctx, p)
	if err != nil {
		return nil, err
	}

	return map[string]string{"readme": content}, nil
}

func (s *Server) releases(ctx context.Context, p hub.Plugin) (interface{}, error) {
	return s.catalog.Releases(ctx, p)
}

func (s *Server) commits(ctx context.Context, p hub.Plugin) (interface{}, error) {
	return s.catalog.Commits(ctx, p)
}

func (s *Server) contributors(ctx context.Context, p hub.Plugin) (interface{}, error) {
	return s.catalog.Contributors(ctx, p)
}

func (s *Server) gallery(ctx context.Context, p hub.Plugin) (interface{}, error) {
	return s.catalog.Gallery(ctx, p)
}

func (s *Server) report(rw http.ResponseWriter, req *http.Request) {
	var r report.Report
	if err := json.NewDecoder(req.Body).Decode(&r); err != nil {
		writeJSON(rw, http.StatusBadRequest, map[string]string{"error": "invalid report payload"})
		return
	}

	if err := s.reporter.Send(req.Context(), r); err != nil {
		if errors.Is(err, report.ErrInvalidReport) {
			writeJSON(rw, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}

		writeError(req.Context(), rw, err)
		return
	}

	rw.WriteHeader(http.StatusAccepted)
}

func (s *Server) submitGuidance(rw http.ResponseWriter, _ *http.Request) {
	writeJSON(rw, http.StatusOK, map[string]interface{}{
		"steps": []string{
			"Create a public repository for your plugin.",
			"Add a plugin.yml manifest with name, version, and description.",
			"Tag the repository with the emberstone-plugin topic.",
			"Publish at least one release with a downloadable asset.",
		},
		"manifest": map[string]string{
			"file":    "plugin.yml",
			"example": "name: my-plugin\nversion: 1.0.0\ndescription: What the plugin does.\nkeywords: [farming, automation]\n",
		},
	})
}

func (s *Server) findPlugin(rw http.ResponseWriter, req *http.Request) (hub.Plugin, bool) {
	vars := mux.Vars(req)

	p, err := s.catalog.Find(req.Context(), vars["owner"], vars["name"])
	if err != nil {
		writeError(req.Context(), rw, err)
		return hub.Plugin{}, false
	}

	return p, true
}

func writeJSON(rw http.ResponseWriter, status int, value interface{}) {
	rw.Header().Set("Content-Type", "application/json")
	rw.WriteHeader(status)

	if err := json.NewEncoder(rw).Encode(value); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}

// writeError maps loader failures onto the API error shape: unknown
// plugins are 404, anything upstream is a bad gateway. Validation errors
// from report submission are the caller's fault.
func writeError(ctx context.Context, rw http.ResponseWriter, err error) {
	status := http.StatusBadGateway

	if errors.Is(err, hub.ErrNotFound) {
		status = http.StatusNotFound
	}

	var apiErr *hub.APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
		status = http.StatusNotFound
	}

	if status == http.StatusBadGateway {
		log.Ctx(ctx).Error().Err(err).Msg("Upstream failure")
	}

	writeJSON(rw, status, map[string]string{"error": err.Error()})
}
