package cli

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/teamkit/internal/team"
)

func executeValidate(t *testing.T, format, path string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := NewValidateCommand(&RootOptions{Format: format})
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{path})
	err := cmd.Execute()
	return buf.String(), err
}

func TestValidateValidConfig(t *testing.T) {
	out, err := executeValidate(t, "text", filepath.Join("testdata", "team.yaml"))
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Team config valid")
}

func TestValidateValidConfigJSON(t *testing.T) {
	out, err := executeValidate(t, "json", filepath.Join("testdata", "team.yaml"))
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	data, ok := resp.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, true, data["valid"])
}

func TestValidateIssues(t *testing.T) {
	out, err := executeValidate(t, "text", filepath.Join("testdata", "unassigned.yaml"))
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ Validation failed")
	assert.Contains(t, out, team.IssueUnknownAssignee)
	assert.Contains(t, out, `unknown agent id "ghost"`)
}

func TestValidateIssuesJSON(t *testing.T) {
	out, err := executeValidate(t, "json", filepath.Join("testdata", "unassigned.yaml"))
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp struct {
		Status string           `json:"status"`
		Data   ValidationResult `json:"data"`
		Error  *CLIError        `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.False(t, resp.Data.Valid)
	require.Len(t, resp.Data.Issues, 1)
	assert.Equal(t, "features.0.assignedTo.0", resp.Data.Issues[0].Field)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeInvalid, resp.Error.Code)
}

func TestValidateMissingFile(t *testing.T) {
	out, err := executeValidate(t, "text", filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), ErrCodeLoadFailed)
	assert.Contains(t, out, "cannot load team config")
}

func TestValidateUnsupportedExtension(t *testing.T) {
	_, err := executeValidate(t, "text", filepath.Join("testdata", "scenarios", "signup.txt"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
