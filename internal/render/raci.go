package render

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/teamkit/internal/team"
)

// Responsibility is one RACI cell value.
type Responsibility string

const (
	Responsible Responsibility = "R"
	Accountable Responsibility = "A"
	Consulted   Responsibility = "C"
	Informed    Responsibility = "I"
)

// RACIRow holds the responsibilities of every agent for one feature, in
// agent order.
type RACIRow struct {
	Feature string
	Cells   []Responsibility
}

// RACI computes the responsibility grid for cfg.
//
// Agents named in a feature's assignedTo are Responsible. The first lead
// architect, or the first agent when the team has none, is Accountable
// unless already Responsible. Every other lead architect or QA automation
// agent is Consulted and the rest are Informed. Unknown assignee ids are
// ignored.
func RACI(cfg team.TeamConfig) []RACIRow {
	owner := accountableIndex(cfg.Agents)
	rows := make([]RACIRow, 0, len(cfg.Features))
	for _, f := range cfg.Features {
		row := RACIRow{Feature: f.Name, Cells: make([]Responsibility, len(cfg.Agents))}
		for i, a := range cfg.Agents {
			switch {
			case slices.Contains(f.AssignedTo, a.ID):
				row.Cells[i] = Responsible
			case i == owner:
				row.Cells[i] = Accountable
			case a.Orientation == team.OrientationLeadArchitect || a.Orientation == team.OrientationQAAutomation:
				row.Cells[i] = Consulted
			default:
				row.Cells[i] = Informed
			}
		}
		rows = append(rows, row)
	}
	return rows
}

// RACIMatrix renders the RACI grid of cfg as a Markdown table with one row
// per feature and one column per agent.
func RACIMatrix(cfg team.TeamConfig) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# RACI Matrix: %s\n\n", cfg.ProjectName)
	if len(cfg.Features) == 0 {
		b.WriteString("_No features defined._\n")
		return b.String()
	}

	b.WriteString("| Feature |")
	for _, a := range cfg.Agents {
		fmt.Fprintf(&b, " %s |", cell(a.Name))
	}
	b.WriteString("\n|---|")
	for range cfg.Agents {
		b.WriteString("---|")
	}
	b.WriteString("\n")

	for _, row := range RACI(cfg) {
		fmt.Fprintf(&b, "| %s |", cell(row.Feature))
		for _, r := range row.Cells {
			fmt.Fprintf(&b, " %s |", r)
		}
		b.WriteString("\n")
	}

	b.WriteString("\n**R** Responsible, **A** Accountable, **C** Consulted, **I** Informed\n")
	return b.String()
}

// accountableIndex returns the index of the agent accountable for every
// feature, or -1 for an empty team.
func accountableIndex(agents []team.Agent) int {
	for i, a := range agents {
		if a.Orientation == team.OrientationLeadArchitect {
			return i
		}
	}
	if len(agents) > 0 {
		return 0
	}
	return -1
}

// cell escapes a value for use inside a Markdown table cell.
func cell(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.ReplaceAll(s, "|", `\|`)
}
