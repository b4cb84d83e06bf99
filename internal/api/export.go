package api

import (
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/roach88/teamkit/internal/apperr"
	"github.com/roach88/teamkit/internal/bundle"
	"github.com/roach88/teamkit/internal/render"
	"github.com/roach88/teamkit/internal/team"
)

const exportFailed = "Failed to generate export"

func (s *Server) handleExportZip(w http.ResponseWriter, r *http.Request) {
	var payload bundle.Payload
	if err := decodeJSON(w, r, maxExportBody, &payload); err != nil {
		writeError(w, r, s.logger, err)
		return
	}

	data, err := bundle.Pack(bundle.StandardFiles(payload))
	if err != nil {
		s.logger.ErrorContext(r.Context(), "export failed", "error", err)
		WriteJSONError(w, http.StatusInternalServerError, exportFailed, "")
		return
	}

	name := bundle.ArchiveName(payload.TeamConfig.ProjectName)
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", attachment(name))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// attachment builds a Content-Disposition header with a quoted filename.
// Names outside printable ASCII use the RFC 2231 filename* form.
func attachment(name string) string {
	for _, r := range name {
		if r < 0x20 || r > 0x7e {
			if v := mime.FormatMediaType("attachment", map[string]string{"filename": name}); v != "" {
				return v
			}
			return `attachment; filename="export.zip"`
		}
	}
	return `attachment; filename="` + strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(name) + `"`
}

func (s *Server) handleExportJSON(w http.ResponseWriter, r *http.Request) {
	var payload bundle.Payload
	if err := decodeJSON(w, r, maxExportBody, &payload); err != nil {
		writeError(w, r, s.logger, err)
		return
	}

	data, err := bundle.MarshalFiles(bundle.StandardFiles(payload))
	if err != nil {
		s.logger.ErrorContext(r.Context(), "export failed", "error", err)
		WriteJSONError(w, http.StatusInternalServerError, exportFailed, "")
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	kind := render.Kind(r.PathValue("kind"))

	var cfg team.TeamConfig
	if err := decodeJSON(w, r, maxJSONBody, &cfg); err != nil {
		writeError(w, r, s.logger, err)
		return
	}

	doc, err := render.Document(kind, cfg)
	var unknown *render.UnknownKindError
	if errors.As(err, &unknown) {
		WriteJSONError(w, http.StatusNotFound, "unknown document kind", unknown.Error())
		return
	}
	if err != nil {
		writeError(w, r, s.logger, apperr.Internal(fmt.Errorf("render %s: %w", kind, err)))
		return
	}

	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(doc))
}
