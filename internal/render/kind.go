package render

import (
	"fmt"

	"github.com/roach88/teamkit/internal/team"
)

// Kind names a generated document.
type Kind string

const (
	KindTeamConfig Kind = "team-config"
	KindAIPrompt   Kind = "ai-prompt"
	KindRACI       Kind = "raci"
	KindSprintPlan Kind = "sprint-plan"
	KindADR        Kind = "adr"
)

// Kinds lists every document kind Document understands.
var Kinds = []Kind{KindTeamConfig, KindAIPrompt, KindRACI, KindSprintPlan, KindADR}

// UnknownKindError is returned by Document for an unrecognised kind.
type UnknownKindError struct {
	Kind string
}

func (e *UnknownKindError) Error() string {
	return fmt.Sprintf("unknown document kind %q (want one of %v)", e.Kind, Kinds)
}

// Document renders the document of the given kind.
func Document(kind Kind, cfg team.TeamConfig) (string, error) {
	switch kind {
	case KindTeamConfig:
		return TeamConfigMarkdown(cfg), nil
	case KindAIPrompt:
		return AIPrompt(cfg)
	case KindRACI:
		return RACIMatrix(cfg), nil
	case KindSprintPlan:
		return SprintPlan(cfg), nil
	case KindADR:
		return ADR(cfg), nil
	default:
		return "", &UnknownKindError{Kind: string(kind)}
	}
}
