package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/roach88/teamkit/internal/apperr"
)

// Request body limits.
const (
	maxJSONBody   = 1 << 20
	maxExportBody = 4 << 20
)

// jsonErrorResponse encodes a structured error payload.
type jsonErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// WriteJSONError writes an error response encoded as JSON with the given status.
func WriteJSONError(w http.ResponseWriter, status int, message, details string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")

	payload := jsonErrorResponse{
		Error: strings.TrimSpace(message),
	}
	if detail := strings.TrimSpace(details); detail != "" {
		payload.Details = detail
	}

	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// statusOf maps an error code to its HTTP status.
func statusOf(code apperr.Code) int {
	switch code {
	case apperr.CodeBadRequest:
		return http.StatusBadRequest
	case apperr.CodeUnauthorized:
		return http.StatusUnauthorized
	case apperr.CodeNotFound:
		return http.StatusNotFound
	case apperr.CodeConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// writeError maps err to a JSON error response. Unexpected errors are
// logged and reported with a generic message.
func writeError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		WriteJSONError(w, http.StatusRequestEntityTooLarge, "request body too large",
			fmt.Sprintf("limit is %d bytes", tooLarge.Limit))
		return
	}

	status := statusOf(apperr.CodeOf(err))
	if status == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", `Bearer realm="teamkit"`)
	}
	if status == http.StatusInternalServerError {
		logger.ErrorContext(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	}

	var details string
	var ae *apperr.Error
	if errors.As(err, &ae) && ae.Code == apperr.CodeBadRequest && ae.Err != nil {
		details = ae.Err.Error()
	}
	WriteJSONError(w, status, apperr.MessageOf(err), details)
}

// decodeJSON reads at most limit bytes of JSON from r into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, limit int64, v any) error {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, limit))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return err
		}
		return apperr.BadRequest("failed to read request body")
	}
	if len(strings.TrimSpace(string(body))) == 0 {
		return apperr.BadRequest("request body is required")
	}
	if err := json.Unmarshal(body, v); err != nil {
		return apperr.Wrap(apperr.CodeBadRequest, "invalid JSON body", err)
	}
	return nil
}
