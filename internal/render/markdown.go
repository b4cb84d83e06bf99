package render

import (
	"fmt"
	"strings"

	"github.com/roach88/teamkit/internal/team"
)

// TeamConfigMarkdown renders the team-config.md document of an export
// bundle. Agents and features keep their configured order and list values
// are joined with ", ".
func TeamConfigMarkdown(cfg team.TeamConfig) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", cfg.ProjectName)
	b.WriteString("## Team Configuration\n\n")

	b.WriteString("### Team Members\n\n")
	for _, a := range cfg.Agents {
		fmt.Fprintf(&b, "#### %s\n", a.Name)
		fmt.Fprintf(&b, "- **Role**: %s\n", a.Orientation)
		fmt.Fprintf(&b, "- **Strengths**: %s\n", strings.Join(a.Strengths, ", "))
		fmt.Fprintf(&b, "- **Constraints**: %s\n", strings.Join(a.Constraints, ", "))
		b.WriteString("- **Preferences**:\n")
		fmt.Fprintf(&b, "  - Cost Sensitivity: %d\n", a.Preferences.CostSensitivity)
		fmt.Fprintf(&b, "  - Security Rigidity: %d\n", a.Preferences.SecurityRigidity)
		fmt.Fprintf(&b, "  - Maintainability: %d\n", a.Preferences.Maintainability)
		fmt.Fprintf(&b, "  - Performance: %d\n\n", a.Preferences.Performance)
	}

	b.WriteString("### Features\n\n")
	for _, f := range cfg.Features {
		fmt.Fprintf(&b, "#### %s\n", f.Name)
		fmt.Fprintf(&b, "**Scope**: %s\n\n", f.Scope)
		b.WriteString("**Acceptance Criteria**:\n")
		for _, c := range f.AcceptanceCriteria {
			fmt.Fprintf(&b, "- %s\n", c)
		}
		b.WriteString("\n")
	}

	return b.String()
}
