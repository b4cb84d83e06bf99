package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/teamkit/internal/render"
)

// PromptsOptions holds flags shared by the prompts subcommands.
type PromptsOptions struct {
	*RootOptions
	Category   string
	Difficulty string
	Search     string
	Vars       []string // key=value
	Context    string
	Custom     string

	// Library overrides the built-in prompt library (for testing).
	Library *render.Library
}

// FilledPrompt is the JSON payload of fill and compose.
type FilledPrompt struct {
	ID     string `json:"id,omitempty"`
	Prompt string `json:"prompt"`
}

// NewPromptsCommand creates the prompts command group.
func NewPromptsCommand(rootOpts *RootOptions) *cobra.Command {
	return newPromptsCommand(&PromptsOptions{RootOptions: rootOpts})
}

func newPromptsCommand(opts *PromptsOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prompts",
		Short: "Browse and fill the AI prompt library",
	}

	list := &cobra.Command{
		Use:           "list",
		Short:         "List prompts, optionally filtered",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPromptsList(opts, cmd)
		},
	}
	list.Flags().StringVar(&opts.Category, "category", "", "category id (or \"all\")")
	list.Flags().StringVar(&opts.Difficulty, "difficulty", "", "beginner, intermediate or advanced")
	list.Flags().StringVarP(&opts.Search, "search", "s", "", "case-insensitive text in title, description or tags")

	show := &cobra.Command{
		Use:           "show <id>",
		Short:         "Print a prompt template",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPromptsShow(opts, args[0], cmd)
		},
	}

	fill := &cobra.Command{
		Use:   "fill <id>",
		Short: "Fill a prompt template with project values",
		Long: `Fill a prompt template. Unset variables keep a bracketed placeholder.

Example:
  teamkit prompts fill sprint-planning-advanced --var projectName=Checkout --var timeframe=2-week --context sprint`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPromptsFill(opts, args[0], cmd)
		},
	}

	compose := &cobra.Command{
		Use:           "compose",
		Short:         "Build a prompt from free text and project values",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPromptsCompose(opts, cmd)
		},
	}

	for _, c := range []*cobra.Command{fill, compose} {
		c.Flags().StringArrayVar(&opts.Vars, "var", nil, "variable as key=value (repeatable)")
		c.Flags().StringVar(&opts.Context, "context", "", "context id (general, sprint, feature, team, architecture, incident, review)")
		c.Flags().StringVar(&opts.Custom, "custom", "", "additional custom requirements")
	}

	cmd.AddCommand(list, show, fill, compose)
	return cmd
}

func (o *PromptsOptions) library() *render.Library {
	if o.Library != nil {
		return o.Library
	}
	return render.DefaultLibrary()
}

func runPromptsList(opts *PromptsOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	prompts := opts.library().Find(render.PromptFilter{
		Category:   opts.Category,
		Difficulty: opts.Difficulty,
		Search:     opts.Search,
	})

	if formatter.IsJSON() {
		return formatter.Success(prompts)
	}
	if len(prompts) == 0 {
		fmt.Fprintln(formatter.Writer, "No prompts found.")
		return nil
	}
	for _, p := range prompts {
		fmt.Fprintf(formatter.Writer, "%-32s %-16s %-13s %s\n", p.ID, p.Category, p.Difficulty, p.Title)
	}
	return nil
}

func runPromptsShow(opts *PromptsOptions, id string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	p, ok := opts.library().Get(id)
	if !ok {
		return formatter.Fail(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("prompt %q not found", id), nil)
	}
	if formatter.IsJSON() {
		return formatter.Success(p)
	}
	fmt.Fprintf(formatter.Writer, "# %s\n\n%s\n\nVariables: %s\n\n%s\n",
		p.Title, p.Description, strings.Join(p.Variables, ", "), p.Prompt)
	return nil
}

func runPromptsFill(opts *PromptsOptions, id string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	p, ok := opts.library().Get(id)
	if !ok {
		return formatter.Fail(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("prompt %q not found", id), nil)
	}
	req, err := opts.fillRequest()
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, "invalid --var", err)
	}
	return outputPrompt(formatter, id, render.Fill(p, req))
}

func runPromptsCompose(opts *PromptsOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	req, err := opts.fillRequest()
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, "invalid --var", err)
	}
	return outputPrompt(formatter, "", render.Compose(req))
}

func outputPrompt(formatter *OutputFormatter, id, prompt string) error {
	if formatter.IsJSON() {
		return formatter.Success(FilledPrompt{ID: id, Prompt: prompt})
	}
	fmt.Fprintln(formatter.Writer, prompt)
	return nil
}

func (o *PromptsOptions) fillRequest() (render.FillRequest, error) {
	vars := make(map[string]string, len(o.Vars))
	for _, kv := range o.Vars {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || strings.TrimSpace(k) == "" {
			return render.FillRequest{}, fmt.Errorf("%q is not key=value", kv)
		}
		vars[strings.TrimSpace(k)] = v
	}
	return render.FillRequest{Vars: vars, Context: o.Context, Custom: o.Custom}, nil
}
