package project

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/roach88/teamkit/internal/canonical"
)

// emptyConfig is stored when the caller supplies no configuration at all.
var emptyConfig = json.RawMessage(`{}`)

// normalizeConfig checks that raw is a single JSON value and returns it
// unchanged. The configuration is otherwise opaque: unknown fields, wrong
// types and missing fields are all stored as-is.
func normalizeConfig(raw json.RawMessage) (json.RawMessage, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return emptyConfig, nil
	}
	if !json.Valid(raw) {
		return nil, fmt.Errorf("teamConfig is not valid JSON")
	}
	return raw, nil
}

// supplied reports whether a patch carries a configuration. An explicit
// JSON null counts as absent.
func supplied(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null"))
}

// projectNameOf extracts projectName when it is a string. Any other shape
// yields "".
func projectNameOf(raw json.RawMessage) string {
	var probe struct {
		ProjectName json.RawMessage `json:"projectName"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return ""
	}
	var name string
	if err := json.Unmarshal(probe.ProjectName, &name); err != nil {
		return ""
	}
	return name
}

// configDigest digests the canonical form of raw, so key order and
// whitespace do not change it. Documents the canonical encoder rejects
// (fractional numbers) fall back to their compacted bytes.
func configDigest(raw json.RawMessage) string {
	data, err := canonical.Canonicalize(raw)
	if err != nil {
		var buf bytes.Buffer
		if cerr := json.Compact(&buf, raw); cerr == nil {
			data = buf.Bytes()
		} else {
			data = raw
		}
	}
	return canonical.Digest(canonical.DomainTeamConfig, data)
}
