package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/roach88/teamkit/internal/auth"
	"github.com/roach88/teamkit/internal/project"
	"github.com/roach88/teamkit/internal/team"
)

type saveConfigRequest struct {
	TeamConfig json.RawMessage `json:"teamConfig"`
	project.Documents
}

type saveConfigResponse struct {
	ID      string          `json:"id"`
	Project project.Project `json:"project"`
}

type deleteResponse struct {
	Success bool `json:"success"`
}

type validateResponse struct {
	Valid  bool         `json:"valid"`
	Issues []team.Issue `json:"issues"`
}

func (s *Server) handleSaveConfig(w http.ResponseWriter, r *http.Request, id auth.Identity) {
	var req saveConfigRequest
	if err := decodeJSON(w, r, maxJSONBody, &req); err != nil {
		writeError(w, r, s.logger, err)
		return
	}

	p, err := s.projects.Create(r.Context(), id.UserID, req.TeamConfig, req.Documents)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}

	w.Header().Set("Location", "/config/"+p.ID)
	writeJSON(w, http.StatusCreated, saveConfigResponse{ID: p.ID, Project: p})
}

func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request, id auth.Identity) {
	p, err := s.projects.Get(r.Context(), r.PathValue("id"), id.UserID)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}

	etag := strconv.Quote(p.ConfigDigest)
	w.Header().Set("ETag", etag)
	if etagMatches(r.Header.Get("If-None-Match"), etag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// etagMatches reports whether an If-None-Match header value names etag.
// The value may be "*" or a comma-separated list; weak tags compare by
// their opaque part.
func etagMatches(header, etag string) bool {
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimSpace(candidate)
		if candidate == "*" {
			return true
		}
		if strings.TrimPrefix(candidate, "W/") == etag {
			return true
		}
	}
	return false
}

func (s *Server) handleListProjectIDs(w http.ResponseWriter, r *http.Request, id auth.Identity) {
	ids, err := s.projects.IDsByOwner(r.Context(), id.UserID)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, ids)
}

func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request, id auth.Identity) {
	projects, err := s.projects.ListByOwner(r.Context(), id.UserID)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, projects)
}

func (s *Server) handleUpdateConfig(w http.ResponseWriter, r *http.Request, id auth.Identity) {
	var patch project.Patch
	if err := decodeJSON(w, r, maxJSONBody, &patch); err != nil {
		writeError(w, r, s.logger, err)
		return
	}

	p, err := s.projects.Update(r.Context(), r.PathValue("id"), id.UserID, patch)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleDeleteConfig(w http.ResponseWriter, r *http.Request, id auth.Identity) {
	removed, err := s.projects.Delete(r.Context(), r.PathValue("id"), id.UserID)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	if !removed {
		WriteJSONError(w, http.StatusNotFound, project.MsgNotFound, "")
		return
	}
	writeJSON(w, http.StatusOK, deleteResponse{Success: true})
}

// handleValidateConfig reports schema and reference issues without
// storing anything. Omitted preferences take their defaults first, as in
// files loaded by the CLI.
func (s *Server) handleValidateConfig(w http.ResponseWriter, r *http.Request) {
	var cfg team.TeamConfig
	if err := decodeJSON(w, r, maxJSONBody, &cfg); err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	team.ApplyDefaults(&cfg)
	issues := team.Validate(cfg)
	writeJSON(w, http.StatusOK, validateResponse{Valid: len(issues) == 0, Issues: issues})
}
