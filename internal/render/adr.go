package render

import (
	"fmt"
	"strings"

	"github.com/roach88/teamkit/internal/team"
)

// ADR renders an architecture decision record skeleton for cfg. Context is
// derived from the project type, repository and features. Quality
// priorities average each preference dial across the team.
func ADR(cfg team.TeamConfig) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# ADR-001: Architecture for %s\n\n", cfg.ProjectName)
	b.WriteString("## Status\n\nProposed\n\n")

	b.WriteString("## Context\n\n")
	if cfg.EffectiveProjectType() == team.ProjectTypeExisting {
		b.WriteString("This decision applies to an existing codebase.")
	} else {
		b.WriteString("This decision applies to a new project.")
	}
	fmt.Fprintf(&b, " The team has %d member(s) and %d feature(s) in scope.\n", len(cfg.Agents), len(cfg.Features))
	if repo, ok := team.ParseRepositoryURL(cfg.GithubProjectURL); ok {
		fmt.Fprintf(&b, "\nRepository: %s\n", repo.FullName())
	}
	b.WriteString("\n")

	if len(cfg.Features) > 0 {
		b.WriteString("### Features in scope\n\n")
		for _, f := range cfg.Features {
			if f.Scope == "" {
				fmt.Fprintf(&b, "- %s\n", f.Name)
				continue
			}
			fmt.Fprintf(&b, "- %s: %s\n", f.Name, f.Scope)
		}
		b.WriteString("\n")
	}

	if len(cfg.Agents) > 0 {
		b.WriteString("### Quality priorities\n\n")
		b.WriteString("| Dial | Team average |\n|---|---|\n")
		for _, d := range dialAverages(cfg.Agents) {
			fmt.Fprintf(&b, "| %s | %.1f |\n", d.name, d.avg)
		}
		b.WriteString("\n")
	}

	b.WriteString("## Decision\n\n")
	decider := "the team"
	if i := accountableIndex(cfg.Agents); i >= 0 {
		decider = cfg.Agents[i].Name
	}
	fmt.Fprintf(&b, "_To be decided by %s._\n\n", decider)

	b.WriteString("## Consequences\n\n")
	b.WriteString("- Positive:\n- Negative:\n- Risks:\n")

	return b.String()
}

type dialAverage struct {
	name string
	avg  float64
}

func dialAverages(agents []team.Agent) []dialAverage {
	var cost, security, maint, perf int
	for _, a := range agents {
		cost += a.Preferences.CostSensitivity
		security += a.Preferences.SecurityRigidity
		maint += a.Preferences.Maintainability
		perf += a.Preferences.Performance
	}
	n := float64(len(agents))
	return []dialAverage{
		{"Cost Sensitivity", float64(cost) / n},
		{"Security Rigidity", float64(security) / n},
		{"Maintainability", float64(maint) / n},
		{"Performance", float64(perf) / n},
	}
}
