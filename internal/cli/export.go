package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/teamkit/internal/bundle"
)

// ExportOptions holds flags for the export command.
type ExportOptions struct {
	*RootOptions
	Output string // archive path; defaults to "<projectName>.zip"
	Sprint string // sprint plan markdown file
	RACI   string // RACI chart markdown file
	ADR    string // ADR markdown file
	JSON   bool   // write the files as a JSON object instead of a zip
	TeamOverrides
}

// ExportResult is the JSON payload of the export command.
type ExportResult struct {
	Written string   `json:"written"`
	Files   []string `json:"files"`
}

// NewExportCommand creates the export command.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "export <team-config>",
		Short: "Bundle a team configuration and its documents into a zip",
		Long: `Bundle a team configuration into a downloadable archive.

The archive always contains team-config.md. Sprint plan, RACI chart and
ADR documents are added when their files are given.

Examples:
  teamkit export team.yaml
  teamkit export team.yaml --sprint sprint.md --raci raci.md -o bundle.zip
  teamkit export team.yaml --json -o bundle.json
  teamkit export team.yaml --project-name "Ledger v2"`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output path (default <projectName>.zip)")
	cmd.Flags().StringVar(&opts.Sprint, "sprint", "", "sprint plan markdown file")
	cmd.Flags().StringVar(&opts.RACI, "raci", "", "RACI chart markdown file")
	cmd.Flags().StringVar(&opts.ADR, "adr", "", "architecture decision record markdown file")
	cmd.Flags().BoolVar(&opts.JSON, "json", false, "write a JSON object of file contents instead of a zip archive")
	addTeamOverrideFlags(cmd, &opts.TeamOverrides)

	return cmd
}

func runExport(opts *ExportOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	cfg, err := assembleTeamConfig(formatter, path, &opts.TeamOverrides, cmd)
	if err != nil {
		return err
	}

	payload := bundle.Payload{TeamConfig: cfg}
	for _, doc := range []struct {
		path   string
		target *string
	}{
		{opts.Sprint, &payload.Sprint},
		{opts.RACI, &payload.RACI},
		{opts.ADR, &payload.ADR},
	} {
		if doc.path == "" {
			continue
		}
		data, err := os.ReadFile(doc.path)
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeNotFound, "cannot read "+doc.path, err)
		}
		*doc.target = string(data)
	}

	files := bundle.StandardFiles(payload)

	var data []byte
	if opts.JSON {
		data, err = bundle.MarshalFiles(files)
	} else {
		data, err = bundle.Pack(files)
	}
	if err != nil {
		return formatter.Fail(ExitFailure, ErrCodeGeneric, "Failed to generate export", err)
	}

	out := opts.Output
	if out == "" {
		out = localFileName(bundle.ArchiveName(cfg.ProjectName))
		if opts.JSON {
			out = out[:len(out)-len(filepath.Ext(out))] + ".json"
		}
	}
	if err := os.WriteFile(out, data, 0644); err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeWriteFailed, "cannot write "+out, err)
	}

	names := make([]string, len(files))
	for i, f := range files {
		names[i] = f.Name
	}

	if formatter.IsJSON() {
		return formatter.Success(ExportResult{Written: out, Files: names})
	}
	fmt.Fprintf(formatter.Writer, "✓ Wrote %s\n", out)
	for _, name := range names {
		fmt.Fprintf(formatter.Writer, "  %s\n", name)
	}
	return nil
}

// localFileName flattens path separators so a project name can only name
// a file in the working directory.
func localFileName(name string) string {
	return strings.NewReplacer("/", "-", `\`, "-").Replace(name)
}
