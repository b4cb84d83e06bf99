package render

import (
	"fmt"
	"strings"

	"github.com/roach88/teamkit/internal/team"
)

// SprintPlan renders a sprint planning skeleton: a goal line naming every
// feature, the team roster with constraints, and one backlog item per
// feature with its owners and acceptance criteria as a checklist.
func SprintPlan(cfg team.TeamConfig) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Sprint Plan: %s\n\n", cfg.ProjectName)

	b.WriteString("## Sprint Goal\n\n")
	if len(cfg.Features) == 0 {
		b.WriteString("No features defined yet.\n\n")
	} else {
		names := make([]string, len(cfg.Features))
		for i, f := range cfg.Features {
			names[i] = f.Name
		}
		fmt.Fprintf(&b, "Deliver %d feature(s): %s.\n\n", len(cfg.Features), strings.Join(names, ", "))
	}

	b.WriteString("## Team Capacity\n\n")
	b.WriteString("| Member | Role | Constraints |\n|---|---|---|\n")
	for _, a := range cfg.Agents {
		constraints := strings.Join(a.Constraints, ", ")
		if constraints == "" {
			constraints = "-"
		}
		fmt.Fprintf(&b, "| %s | %s | %s |\n", cell(a.Name), cell(a.Orientation.Label()), cell(constraints))
	}
	b.WriteString("\n")

	b.WriteString("## Backlog\n\n")
	for i, f := range cfg.Features {
		fmt.Fprintf(&b, "### %d. %s\n\n", i+1, f.Name)
		if f.Scope != "" {
			fmt.Fprintf(&b, "%s\n\n", f.Scope)
		}
		owners := "Unassigned"
		if names := assigneeNames(cfg, f.AssignedTo); len(names) > 0 {
			owners = strings.Join(names, ", ")
		}
		fmt.Fprintf(&b, "- Owner(s): %s\n", owners)
		for _, c := range f.AcceptanceCriteria {
			fmt.Fprintf(&b, "- [ ] %s\n", c)
		}
		b.WriteString("\n")
	}

	return b.String()
}

// assigneeNames maps agent ids to display names. Ids that match no agent
// are kept verbatim.
func assigneeNames(cfg team.TeamConfig, ids []string) []string {
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		if a, ok := cfg.AgentByID(id); ok {
			names = append(names, a.Name)
			continue
		}
		names = append(names, id)
	}
	return names
}
