// Package bundle packs generated documents into a downloadable archive.
package bundle

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/roach88/teamkit/internal/render"
	"github.com/roach88/teamkit/internal/team"
)

// Standard entry names of an export bundle.
const (
	TeamConfigFile = "team-config.md"
	SprintPlanFile = "sprint-planning.md"
	RACIFile       = "raci-matrix.md"
	ADRFile        = "architecture-decision-record.md"
)

// DefaultArchiveName is used when the project has no name.
const DefaultArchiveName = "export.zip"

// File is one named text document.
type File struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

// Payload is the input of an export: a team configuration plus optional
// free-text documents.
type Payload struct {
	TeamConfig team.TeamConfig `json:"teamConfig"`
	Sprint     string          `json:"sprint,omitempty"`
	RACI       string          `json:"raci,omitempty"`
	ADR        string          `json:"adr,omitempty"`
}

// StandardFiles lists the documents of an export. team-config.md is always
// first. The optional documents follow in fixed order and only when their
// text is non-empty.
func StandardFiles(p Payload) []File {
	files := []File{{Name: TeamConfigFile, Content: render.TeamConfigMarkdown(p.TeamConfig)}}
	if p.Sprint != "" {
		files = append(files, File{Name: SprintPlanFile, Content: p.Sprint})
	}
	if p.RACI != "" {
		files = append(files, File{Name: RACIFile, Content: p.RACI})
	}
	if p.ADR != "" {
		files = append(files, File{Name: ADRFile, Content: p.ADR})
	}
	return files
}

// ArchiveName returns the download name of a project's bundle.
func ArchiveName(projectName string) string {
	if projectName == "" {
		return DefaultArchiveName
	}
	return projectName + ".zip"
}

// Pack writes every file as one Deflate-compressed zip entry, in order and
// with names verbatim. Duplicate names are written as-is.
func Pack(files []File) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	for _, f := range files {
		w, err := zw.CreateHeader(&zip.FileHeader{Name: f.Name, Method: zip.Deflate})
		if err != nil {
			return nil, fmt.Errorf("create entry %q: %w", f.Name, err)
		}
		if _, err := w.Write([]byte(f.Content)); err != nil {
			return nil, fmt.Errorf("write entry %q: %w", f.Name, err)
		}
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("close archive: %w", err)
	}
	return buf.Bytes(), nil
}

// MarshalFiles renders files as an indented JSON object mapping each
// entry name to its content, the non-archive export format. Keys keep
// their first position; a duplicate name takes the last content, as an
// archive reader would.
func MarshalFiles(files []File) ([]byte, error) {
	order := make([]string, 0, len(files))
	contents := make(map[string]string, len(files))
	for _, f := range files {
		if _, seen := contents[f.Name]; !seen {
			order = append(order, f.Name)
		}
		contents[f.Name] = f.Content
	}
	if len(order) == 0 {
		return []byte("{}"), nil
	}

	var buf bytes.Buffer
	buf.WriteString("{\n")
	for i, name := range order {
		key, err := marshalString(name)
		if err != nil {
			return nil, fmt.Errorf("marshal name %q: %w", name, err)
		}
		val, err := marshalString(contents[name])
		if err != nil {
			return nil, fmt.Errorf("marshal %q: %w", name, err)
		}
		buf.WriteString("  ")
		buf.Write(key)
		buf.WriteString(": ")
		buf.Write(val)
		if i < len(order)-1 {
			buf.WriteByte(',')
		}
		buf.WriteByte('\n')
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func marshalString(s string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}
