package bundle

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/teamkit/internal/render"
	"github.com/roach88/teamkit/internal/team"
)

func readArchive(t *testing.T, data []byte) []File {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)

	var out []File
	for _, f := range zr.File {
		assert.Equal(t, zip.Deflate, f.Method, "entry %s", f.Name)
		rc, err := f.Open()
		require.NoError(t, err)
		b, err := io.ReadAll(rc)
		require.NoError(t, err)
		require.NoError(t, rc.Close())
		out = append(out, File{Name: f.Name, Content: string(b)})
	}
	return out
}

func TestPack_RoundTrip(t *testing.T) {
	files := []File{
		{Name: "a.md", Content: "# A\n"},
		{Name: "nested/b.md", Content: "B"},
		{Name: "empty.md", Content: ""},
	}

	data, err := Pack(files)
	require.NoError(t, err)
	assert.Equal(t, files, readArchive(t, data))
}

func TestPack_KeepsDuplicates(t *testing.T) {
	data, err := Pack([]File{{Name: "x.md", Content: "first"}, {Name: "x.md", Content: "second"}})
	require.NoError(t, err)

	got := readArchive(t, data)
	require.Len(t, got, 2)
	assert.Equal(t, "first", got[0].Content)
	assert.Equal(t, "second", got[1].Content)
}

func TestPack_Empty(t *testing.T) {
	data, err := Pack(nil)
	require.NoError(t, err)
	assert.Empty(t, readArchive(t, data))
}

func TestStandardFiles(t *testing.T) {
	cfg := team.TeamConfig{ProjectName: "Checkout"}

	only := StandardFiles(Payload{TeamConfig: cfg})
	require.Len(t, only, 1)
	assert.Equal(t, TeamConfigFile, only[0].Name)
	assert.Equal(t, render.TeamConfigMarkdown(cfg), only[0].Content)

	all := StandardFiles(Payload{TeamConfig: cfg, Sprint: "s", RACI: "r", ADR: "a"})
	names := make([]string, len(all))
	for i, f := range all {
		names[i] = f.Name
	}
	assert.Equal(t, []string{TeamConfigFile, SprintPlanFile, RACIFile, ADRFile}, names)

	some := StandardFiles(Payload{TeamConfig: cfg, ADR: "a"})
	require.Len(t, some, 2)
	assert.Equal(t, ADRFile, some[1].Name)
}

func TestArchiveName(t *testing.T) {
	assert.Equal(t, "Checkout Revamp.zip", ArchiveName("Checkout Revamp"))
	assert.Equal(t, "export.zip", ArchiveName(""))
}

func TestMarshalFiles(t *testing.T) {
	got, err := MarshalFiles([]File{
		{Name: "team-config.md", Content: "# <P>\n"},
		{Name: "raci-matrix.md", Content: "# RACI"},
	})
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"team-config.md\": \"# <P>\\n\",\n  \"raci-matrix.md\": \"# RACI\"\n}", string(got))

	var decoded map[string]string
	require.NoError(t, json.Unmarshal(got, &decoded))
	assert.Equal(t, map[string]string{"team-config.md": "# <P>\n", "raci-matrix.md": "# RACI"}, decoded)
}

func TestMarshalFiles_Empty(t *testing.T) {
	empty, err := MarshalFiles(nil)
	require.NoError(t, err)
	assert.Equal(t, "{}", string(empty))
}

func TestMarshalFiles_DuplicateKeepsLast(t *testing.T) {
	got, err := MarshalFiles([]File{
		{Name: "a.md", Content: "first"},
		{Name: "b.md", Content: "b"},
		{Name: "a.md", Content: "second"},
	})
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"a.md\": \"second\",\n  \"b.md\": \"b\"\n}", string(got))
}
