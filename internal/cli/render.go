package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/roach88/teamkit/internal/render"
)

// maxReadableWidth caps the word-wrap width of --pretty output.
const maxReadableWidth = 100

// RenderOptions holds flags for the render command.
type RenderOptions struct {
	*RootOptions
	Output string // write to file instead of stdout
	Pretty bool   // style for the terminal
	TeamOverrides
}

// RenderResult is the JSON payload of the render command.
type RenderResult struct {
	Kind     render.Kind `json:"kind"`
	Document string      `json:"document,omitempty"`
	Written  string      `json:"written,omitempty"`
}

// NewRenderCommand creates the render command.
func NewRenderCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RenderOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "render <kind> <team-config>",
		Short: "Generate a planning document from a team configuration",
		Long: fmt.Sprintf(`Generate a Markdown document from a team configuration.

Kinds: %v

Examples:
  teamkit render raci team.yaml
  teamkit render sprint-plan team.toml -o sprint-planning.md
  teamkit render adr team.json --pretty
  teamkit render ai-prompt team.yaml --project-name "Ledger v2" --project-type existing`, render.Kinds),
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(opts, render.Kind(args[0]), args[1], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "write the document to a file")
	cmd.Flags().BoolVar(&opts.Pretty, "pretty", false, "style the document for the terminal")
	addTeamOverrideFlags(cmd, &opts.TeamOverrides)

	return cmd
}

func runRender(opts *RenderOptions, kind render.Kind, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	cfg, err := assembleTeamConfig(formatter, path, &opts.TeamOverrides, cmd)
	if err != nil {
		return err
	}

	doc, err := render.Document(kind, cfg)
	if err != nil {
		var unknown *render.UnknownKindError
		if errors.As(err, &unknown) {
			return formatter.Fail(ExitCommandError, ErrCodeNotFound, unknown.Error(), nil)
		}
		return formatter.Fail(ExitFailure, ErrCodeGeneric, "render failed", err)
	}

	if opts.Output != "" {
		if err := os.WriteFile(opts.Output, []byte(doc), 0644); err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeWriteFailed, "cannot write "+opts.Output, err)
		}
		if formatter.IsJSON() {
			return formatter.Success(RenderResult{Kind: kind, Written: opts.Output})
		}
		fmt.Fprintf(formatter.Writer, "✓ Wrote %s\n", opts.Output)
		return nil
	}

	if formatter.IsJSON() {
		return formatter.Success(RenderResult{Kind: kind, Document: doc})
	}
	if opts.Pretty {
		doc = prettyMarkdown(doc)
	}
	fmt.Fprint(formatter.Writer, doc)
	return nil
}

// prettyMarkdown styles markdown for the terminal, wrapping at the
// terminal width capped at maxReadableWidth. The raw text is returned when
// rendering fails.
func prettyMarkdown(markdown string) string {
	wrapWidth := 80
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		wrapWidth = w
	}
	if wrapWidth > maxReadableWidth {
		wrapWidth = maxReadableWidth
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(wrapWidth),
	)
	if err != nil {
		return markdown
	}
	rendered, err := renderer.Render(markdown)
	if err != nil {
		return markdown
	}
	return rendered
}
