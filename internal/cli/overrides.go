package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/teamkit/internal/team"
)

// TeamOverrides holds flags that replace fields of a loaded team config.
type TeamOverrides struct {
	ProjectName string
	Repository  string
	ProjectType string
}

func addTeamOverrideFlags(cmd *cobra.Command, o *TeamOverrides) {
	cmd.Flags().StringVar(&o.ProjectName, "project-name", "", "override the project name")
	cmd.Flags().StringVar(&o.Repository, "repo", "", "override the GitHub repository URL")
	cmd.Flags().StringVar(&o.ProjectType, "project-type", "", "override the project type (new|existing)")
}

// partial converts the flags that were set on cmd into a builder update.
func (o *TeamOverrides) partial(cmd *cobra.Command) (team.Partial, error) {
	var p team.Partial
	if cmd.Flags().Changed("project-name") {
		p.ProjectName = &o.ProjectName
	}
	if cmd.Flags().Changed("repo") {
		p.GithubProjectURL = &o.Repository
	}
	if cmd.Flags().Changed("project-type") {
		pt := team.ProjectType(o.ProjectType)
		if pt != team.ProjectTypeNew && pt != team.ProjectTypeExisting {
			return team.Partial{}, fmt.Errorf("invalid project type %q (use new or existing)", o.ProjectType)
		}
		p.ProjectType = &pt
	}
	return p, nil
}

// assembleTeamConfig loads path into a team.Builder and applies the
// overrides set on cmd. An incomplete result is reported on stderr but
// still returned.
func assembleTeamConfig(formatter *OutputFormatter, path string, o *TeamOverrides, cmd *cobra.Command) (team.TeamConfig, error) {
	overrides, err := o.partial(cmd)
	if err != nil {
		return team.TeamConfig{}, formatter.Fail(ExitCommandError, ErrCodeGeneric, err.Error(), nil)
	}

	cfg, err := loadTeamConfig(formatter, path)
	if err != nil {
		return team.TeamConfig{}, err
	}

	b := team.NewBuilder()
	b.SetProjectName(cfg.ProjectName)
	b.SetRepositoryURL(cfg.GithubProjectURL)
	if cfg.ProjectType != "" {
		b.SetProjectType(cfg.ProjectType)
	}
	if cfg.Agents != nil {
		b.SetAgents(cfg.Agents)
	}
	if cfg.Features != nil {
		b.SetFeatures(cfg.Features)
	}
	b.Merge(overrides)

	if !b.IsComplete() {
		fmt.Fprintf(formatter.GetErrWriter(), "warning: %s is incomplete (needs a project name, an agent and a feature)\n", path)
	}
	return b.Config(), nil
}
