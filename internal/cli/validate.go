package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/teamkit/internal/team"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid  bool         `json:"valid"`
	File   string       `json:"file"`
	Issues []team.Issue `json:"issues,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <team-config>",
		Short: "Validate a team configuration file",
		Long: `Validate a team configuration against the schema and check that
every feature assignee names a configured agent.

Accepts .json, .yaml, .yml, .toml and .cue files.

Exit codes:
  0 - Configuration valid
  1 - Validation issues found
  2 - File could not be loaded`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	cfg, err := loadTeamConfig(formatter, path)
	if err != nil {
		return err
	}

	issues := team.Validate(cfg)
	formatter.VerboseLog("Checked %d agent(s) and %d feature(s)", len(cfg.Agents), len(cfg.Features))

	if len(issues) == 0 {
		if formatter.IsJSON() {
			return formatter.Success(ValidationResult{Valid: true, File: path})
		}
		fmt.Fprintln(formatter.Writer, "✓ Team config valid")
		return nil
	}

	if formatter.IsJSON() {
		response := CLIResponse{
			Status: "error",
			Data:   ValidationResult{Valid: false, File: path, Issues: issues},
			Error: &CLIError{
				Code:    ErrCodeInvalid,
				Message: issues[0].Message,
			},
		}
		encoder := json.NewEncoder(formatter.Writer)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(response); err != nil {
			return err
		}
	} else {
		fmt.Fprintln(formatter.Writer, "✗ Validation failed")
		fmt.Fprintln(formatter.Writer)
		for _, issue := range issues {
			fmt.Fprintf(formatter.Writer, "  %s\n", issue)
		}
	}

	// Validation failures = exit code 1
	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d issue(s)", len(issues)))
}

// loadTeamConfig loads path and reports a load failure through formatter.
func loadTeamConfig(formatter *OutputFormatter, path string) (team.TeamConfig, error) {
	cfg, err := team.LoadFile(path)
	if err != nil {
		return team.TeamConfig{}, formatter.Fail(ExitCommandError, ErrCodeLoadFailed, "cannot load team config", err)
	}
	formatter.VerboseLog("Loaded %s (%q)", path, cfg.ProjectName)
	return cfg, nil
}
