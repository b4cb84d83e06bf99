package render

import (
	"bytes"
	_ "embed"
	"fmt"
	"strings"
	"text/template"

	"github.com/roach88/teamkit/internal/team"
)

//go:embed templates/ai-prompt.md.tmpl
var aiPromptSource string

var aiPromptTemplate = template.Must(template.New("ai-prompt").Parse(aiPromptSource))

// PromptSections are the outputs the AI prompt asks for, in order.
var PromptSections = []string{
	"Sprint plan with user stories, story points and task breakdown",
	"RACI matrix covering every feature",
	"Architecture decision record for the core technical choices",
	"Risk register with mitigations",
	"Test strategy aligned with the acceptance criteria",
	"Definition of done",
}

type promptData struct {
	ProjectName string
	ProjectType string
	Repository  string
	Agents      []promptAgent
	Features    []promptFeature
	Sections    []promptSection
}

type promptAgent struct {
	Name        string
	Role        string
	Strengths   string
	Constraints string
}

type promptFeature struct {
	Number    int
	Name      string
	Scope     string
	Assignees string
	Criteria  []string
}

type promptSection struct {
	Number int
	Title  string
}

// AIPrompt renders the natural-language prompt a user pastes into an
// external AI assistant. The project name, roster and features are
// interpolated into a fixed template followed by the enumerated
// PromptSections.
func AIPrompt(cfg team.TeamConfig) (string, error) {
	data := promptData{
		ProjectName: cfg.ProjectName,
		ProjectType: "new project",
	}
	if cfg.EffectiveProjectType() == team.ProjectTypeExisting {
		data.ProjectType = "existing codebase"
	}
	if repo, ok := team.ParseRepositoryURL(cfg.GithubProjectURL); ok {
		data.Repository = repo.FullName()
	} else if cfg.GithubProjectURL != "" {
		data.Repository = cfg.GithubProjectURL
	}

	for _, a := range cfg.Agents {
		data.Agents = append(data.Agents, promptAgent{
			Name:        a.Name,
			Role:        a.Orientation.Label(),
			Strengths:   strings.Join(a.Strengths, ", "),
			Constraints: strings.Join(a.Constraints, ", "),
		})
	}
	for i, f := range cfg.Features {
		data.Features = append(data.Features, promptFeature{
			Number:    i + 1,
			Name:      f.Name,
			Scope:     f.Scope,
			Assignees: strings.Join(assigneeNames(cfg, f.AssignedTo), ", "),
			Criteria:  f.AcceptanceCriteria,
		})
	}
	for i, s := range PromptSections {
		data.Sections = append(data.Sections, promptSection{Number: i + 1, Title: s})
	}

	var buf bytes.Buffer
	if err := aiPromptTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render ai prompt: %w", err)
	}
	return buf.String(), nil
}
