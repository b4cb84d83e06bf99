package api

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/teamkit/internal/project"
	"github.com/roach88/teamkit/internal/team"
)

func saveProject(t *testing.T, ts *testServer, token string) saveConfigResponse {
	t.Helper()

	rec := ts.do(t, http.MethodPost, "/config/save", token, `{"teamConfig":`+sampleConfig+`,"sprintPlan":"# Sprint"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp saveConfigResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "/config/"+resp.ID, rec.Header().Get("Location"))
	return resp
}

func TestConfigLifecycle(t *testing.T) {
	ts := newTestServer(t)
	token := ts.signIn(t, "ada@example.com")

	saved := saveProject(t, ts, token)
	assert.Equal(t, "Checkout Revamp", saved.Project.ProjectName)
	assert.Equal(t, project.StatusNotStarted, saved.Project.Status)
	require.NotNil(t, saved.Project.SprintPlan)
	assert.Equal(t, "# Sprint", *saved.Project.SprintPlan)
	assert.Nil(t, saved.Project.RACIChart)
	assert.JSONEq(t, sampleConfig, string(saved.Project.TeamConfig))

	rec := ts.do(t, http.MethodGet, "/config/user/projects", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list []project.Project
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, saved.ID, list[0].ID)

	rec = ts.do(t, http.MethodPut, "/config/"+saved.ID, token, map[string]any{
		"status":    "in_progress",
		"raciChart": "# RACI",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var updated project.Project
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.Equal(t, project.StatusInProgress, updated.Status)
	require.NotNil(t, updated.RACIChart)
	assert.Equal(t, "# RACI", *updated.RACIChart)
	require.NotNil(t, updated.SprintPlan)
	assert.Equal(t, saved.Project.ConfigDigest, updated.ConfigDigest)

	rec = ts.do(t, http.MethodPut, "/config/"+saved.ID, token, map[string]any{"status": "archived"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(t, http.MethodDelete, "/config/"+saved.ID, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true}`, rec.Body.String())

	rec = ts.do(t, http.MethodDelete, "/config/"+saved.ID, token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, project.MsgNotFound, decodeError(t, rec).Error)

	rec = ts.do(t, http.MethodGet, "/config/user/projects", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestGetConfig_ETag(t *testing.T) {
	ts := newTestServer(t)
	token := ts.signIn(t, "ada@example.com")
	saved := saveProject(t, ts, token)

	rec := ts.do(t, http.MethodGet, "/config/"+saved.ID, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	etag := rec.Header().Get("ETag")
	assert.Equal(t, `"`+saved.Project.ConfigDigest+`"`, etag)

	req := newRequest(t, http.MethodGet, "/config/"+saved.ID, token)
	req.Header.Set("If-None-Match", etag)
	rec = serve(ts, req)
	assert.Equal(t, http.StatusNotModified, rec.Code)
	assert.Empty(t, rec.Body.String())

	req = newRequest(t, http.MethodGet, "/config/"+saved.ID, token)
	req.Header.Set("If-None-Match", `"stale"`)
	rec = serve(ts, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	for _, header := range []string{`"stale", ` + etag, "*", "W/" + etag} {
		req = newRequest(t, http.MethodGet, "/config/"+saved.ID, token)
		req.Header.Set("If-None-Match", header)
		rec = serve(ts, req)
		assert.Equal(t, http.StatusNotModified, rec.Code, header)
	}
}

func TestETagMatches(t *testing.T) {
	tests := []struct {
		header string
		want   bool
	}{
		{"", false},
		{`"abc"`, true},
		{`"x", "abc"`, true},
		{`"x","y"`, false},
		{"*", true},
		{`W/"abc"`, true},
		{`abc`, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, etagMatches(tt.header, `"abc"`), tt.header)
	}
}

func TestListProjectIDs(t *testing.T) {
	ts := newTestServer(t)
	ada := ts.signIn(t, "ada@example.com")
	linus := ts.signIn(t, "linus@example.com")

	first := saveProject(t, ts, ada)
	second := saveProject(t, ts, ada)

	rec := ts.do(t, http.MethodGet, "/config/user/ids", ada, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var ids []string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ids))
	assert.Equal(t, []string{second.ID, first.ID}, ids)

	rec = ts.do(t, http.MethodGet, "/config/user/ids", linus, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestConfig_OwnerScoped(t *testing.T) {
	ts := newTestServer(t)
	ada := ts.signIn(t, "ada@example.com")
	linus := ts.signIn(t, "linus@example.com")
	saved := saveProject(t, ts, ada)

	rec := ts.do(t, http.MethodGet, "/config/"+saved.ID, linus, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, project.MsgNotFound, decodeError(t, rec).Error)

	rec = ts.do(t, http.MethodPut, "/config/"+saved.ID, linus, map[string]any{"status": "completed"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = ts.do(t, http.MethodDelete, "/config/"+saved.ID, linus, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = ts.do(t, http.MethodGet, "/config/user/projects", linus, nil)
	assert.JSONEq(t, `[]`, rec.Body.String())

	rec = ts.do(t, http.MethodGet, "/config/"+saved.ID, ada, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestConfig_RequiresSession(t *testing.T) {
	ts := newTestServer(t)

	for _, tc := range []struct{ method, path string }{
		{http.MethodPost, "/config/save"},
		{http.MethodGet, "/config/user/projects"},
		{http.MethodGet, "/config/user/ids"},
		{http.MethodGet, "/config/p1"},
		{http.MethodPut, "/config/p1"},
		{http.MethodDelete, "/config/p1"},
	} {
		rec := ts.do(t, tc.method, tc.path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "%s %s", tc.method, tc.path)
	}
}

func TestSaveConfig_OpaqueContent(t *testing.T) {
	ts := newTestServer(t)
	token := ts.signIn(t, "ada@example.com")

	rec := ts.do(t, http.MethodPost, "/config/save", token, `{"teamConfig":{"projectName":42,"extra":true}}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var resp saveConfigResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Empty(t, resp.Project.ProjectName)
	assert.JSONEq(t, `{"projectName":42,"extra":true}`, string(resp.Project.TeamConfig))
}

func TestValidateConfig(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/config/validate", "", sampleConfig)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp validateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Valid, "issues: %v", resp.Issues)
	assert.Empty(t, resp.Issues)

	rec = ts.do(t, http.MethodPost, "/config/validate", "", `{
		"projectName": "Ghosts",
		"agents": [],
		"features": [{"name": "Haunt", "scope": "", "acceptanceCriteria": [], "assignedTo": ["nobody"]}]
	}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Valid)
	require.NotEmpty(t, resp.Issues)

	var codes []string
	for _, issue := range resp.Issues {
		codes = append(codes, issue.Code)
	}
	assert.Contains(t, codes, team.IssueUnknownAssignee)
}
