package api

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/teamkit/internal/bundle"
	"github.com/roach88/teamkit/internal/render"
)

func exportPayload(extra string) string {
	return `{"teamConfig":` + sampleConfig + extra + `}`
}

func TestExportZip(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/export/zip", "", exportPayload(`,"sprint":"# Sprint","adr":"# ADR"`))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/zip", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="Checkout Revamp.zip"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, strconv.Itoa(rec.Body.Len()), rec.Header().Get("Content-Length"))

	zr, err := zip.NewReader(bytes.NewReader(rec.Body.Bytes()), int64(rec.Body.Len()))
	require.NoError(t, err)

	var names []string
	contents := make(map[string]string)
	for _, f := range zr.File {
		names = append(names, f.Name)
		assert.Equal(t, zip.Deflate, f.Method)
		rc, err := f.Open()
		require.NoError(t, err)
		data, err := io.ReadAll(rc)
		require.NoError(t, err)
		rc.Close()
		contents[f.Name] = string(data)
	}
	assert.Equal(t, []string{bundle.TeamConfigFile, bundle.SprintPlanFile, bundle.ADRFile}, names)
	assert.Equal(t, "# Sprint", contents[bundle.SprintPlanFile])
	assert.Contains(t, contents[bundle.TeamConfigFile], "# Checkout Revamp\n\n## Team Configuration")
}

func TestExportZip_Unnamed(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/export/zip", "", `{"teamConfig":{"agents":[],"features":[]}}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `attachment; filename="export.zip"`, rec.Header().Get("Content-Disposition"))
}

func TestAttachment(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"Ledger.zip", `attachment; filename="Ledger.zip"`},
		{"Checkout Revamp.zip", `attachment; filename="Checkout Revamp.zip"`},
		{`say "hi".zip`, `attachment; filename="say \"hi\".zip"`},
		{"Café.zip", `attachment; filename*=utf-8''Caf%C3%A9.zip`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := attachment(tt.name)
			assert.Equal(t, tt.want, got)

			_, params, err := mime.ParseMediaType(got)
			require.NoError(t, err)
			assert.Equal(t, tt.name, params["filename"])
		})
	}
}

func TestExportZip_BadBody(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/export/zip", "", `{"teamConfig":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid JSON body", decodeError(t, rec).Error)
}

func TestExportJSON(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/export/json", "", exportPayload(`,"raci":"# RACI"`))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))

	var files map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &files))
	require.Len(t, files, 2)
	assert.Contains(t, files[bundle.TeamConfigFile], "# Checkout Revamp")
	assert.Equal(t, "# RACI", files[bundle.RACIFile])
}

func TestRender(t *testing.T) {
	ts := newTestServer(t)

	for _, kind := range render.Kinds {
		t.Run(string(kind), func(t *testing.T) {
			rec := ts.do(t, http.MethodPost, "/render/"+string(kind), "", sampleConfig)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			assert.Equal(t, "text/markdown; charset=utf-8", rec.Header().Get("Content-Type"))
			assert.Contains(t, rec.Body.String(), "Checkout Revamp")
		})
	}
}

func TestRender_UnknownKind(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/render/gantt", "", sampleConfig)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	resp := decodeError(t, rec)
	assert.Equal(t, "unknown document kind", resp.Error)
	assert.Contains(t, resp.Details, `"gantt"`)
}
