package team

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
)

// Issue codes (T100-T199)
const (
	IssueSchema          = "T100" // value violates the CUE schema
	IssueDuplicateAgent  = "T101" // two agents share an id
	IssueUnknownAssignee = "T102" // assignedTo names an id not in agents
	IssueRepositoryURL   = "T103" // githubProjectUrl is not a github.com repository
)

// Issue is one advisory validation finding.
type Issue struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

func (i Issue) String() string {
	return fmt.Sprintf("[%s] %s: %s", i.Code, i.Field, i.Message)
}

//go:embed schema.cue
var schemaSource string

var (
	schemaOnce sync.Once
	schemaDef  cue.Value
	schemaErr  error
)

func teamConfigSchema() (cue.Value, error) {
	schemaOnce.Do(func() {
		ctx := cuecontext.New()
		v := ctx.CompileString(schemaSource, cue.Filename("schema.cue"))
		if err := v.Err(); err != nil {
			schemaErr = fmt.Errorf("compile schema: %w", err)
			return
		}
		schemaDef = v.LookupPath(cue.ParsePath("#TeamConfig"))
		if !schemaDef.Exists() {
			schemaErr = fmt.Errorf("compile schema: #TeamConfig not defined")
		}
	})
	return schemaDef, schemaErr
}

// Validate checks cfg against the embedded schema and the cross-field
// rules the schema cannot express. It returns every issue found (does not
// fail-fast). An empty result means the configuration is valid.
//
// Validation is advisory. Persisting a configuration never depends on it.
func Validate(cfg TeamConfig) []Issue {
	issues := validateSchema(cfg)
	issues = append(issues, validateReferences(cfg)...)

	if cfg.GithubProjectURL != "" {
		if _, ok := ParseRepositoryURL(cfg.GithubProjectURL); !ok {
			issues = append(issues, Issue{
				Field:   "githubProjectUrl",
				Message: "not a github.com repository URL",
				Code:    IssueRepositoryURL,
			})
		}
	}
	if issues == nil {
		issues = []Issue{}
	}
	return issues
}

func validateSchema(cfg TeamConfig) []Issue {
	schema, err := teamConfigSchema()
	if err != nil {
		return []Issue{{Field: "schema", Message: err.Error(), Code: IssueSchema}}
	}

	data, err := json.Marshal(cfg)
	if err != nil {
		return []Issue{{Field: "config", Message: err.Error(), Code: IssueSchema}}
	}

	v := schema.Context().CompileBytes(data, cue.Filename("config.json"))
	if err := v.Err(); err != nil {
		return issuesFromCUE(err)
	}

	unified := schema.Unify(v)
	if err := unified.Validate(cue.Concrete(true), cue.All()); err != nil {
		return issuesFromCUE(err)
	}
	return nil
}

// issuesFromCUE flattens a CUE error list into one issue per distinct
// path. Disjunction failures produce several errors for the same field.
func issuesFromCUE(err error) []Issue {
	var issues []Issue
	seen := make(map[string]bool)
	for _, e := range errors.Errors(err) {
		path := e.Path()
		if len(path) > 0 && strings.HasPrefix(path[0], "#") {
			path = path[1:]
		}
		field := strings.Join(path, ".")
		if field == "" {
			field = "config"
		}
		if seen[field] {
			continue
		}
		seen[field] = true

		format, args := e.Msg()
		issues = append(issues, Issue{
			Field:   field,
			Message: fmt.Sprintf(format, args...),
			Code:    IssueSchema,
		})
	}
	return issues
}

func validateReferences(cfg TeamConfig) []Issue {
	var issues []Issue

	ids := make(map[string]bool, len(cfg.Agents))
	for i, a := range cfg.Agents {
		if a.ID == "" {
			continue
		}
		if ids[a.ID] {
			issues = append(issues, Issue{
				Field:   fmt.Sprintf("agents.%d.id", i),
				Message: fmt.Sprintf("duplicate agent id %q", a.ID),
				Code:    IssueDuplicateAgent,
			})
		}
		ids[a.ID] = true
	}

	for i, f := range cfg.Features {
		for j, id := range f.AssignedTo {
			if !ids[id] {
				issues = append(issues, Issue{
					Field:   fmt.Sprintf("features.%d.assignedTo.%d", i, j),
					Message: fmt.Sprintf("unknown agent id %q", id),
					Code:    IssueUnknownAssignee,
				})
			}
		}
	}
	return issues
}

// formatCUEError keeps the first CUE error together with its position.
func formatCUEError(err error) error {
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}
	first := errs[0]
	if positions := errors.Positions(first); len(positions) > 0 {
		pos := positions[0]
		return fmt.Errorf("line %d:%d: %s", pos.Line(), pos.Column(), first.Error())
	}
	return first
}
