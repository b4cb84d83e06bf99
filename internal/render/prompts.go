package render

import (
	_ "embed"
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed prompts.yaml
var defaultPromptsYAML []byte

// Prompt is one entry of the prompt library. The prompt text carries
// {variable} placeholders that Fill substitutes.
type Prompt struct {
	ID          string   `json:"id" yaml:"id"`
	Category    string   `json:"category" yaml:"category"`
	Title       string   `json:"title" yaml:"title"`
	Description string   `json:"description" yaml:"description"`
	Prompt      string   `json:"prompt" yaml:"prompt"`
	Variables   []string `json:"variables" yaml:"variables"`
	Difficulty  string   `json:"difficulty" yaml:"difficulty"`
	Tags        []string `json:"tags" yaml:"tags"`
}

// Category groups prompts by concern.
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Categories lists every prompt category in display order.
var Categories = []Category{
	{ID: "planning", Name: "Planning & Strategy"},
	{ID: "development", Name: "Development"},
	{ID: "testing", Name: "Testing & QA"},
	{ID: "documentation", Name: "Documentation"},
	{ID: "optimization", Name: "Optimization"},
	{ID: "troubleshooting", Name: "Troubleshooting"},
	{ID: "security", Name: "Security & Compliance"},
	{ID: "devops", Name: "DevOps & Infrastructure"},
	{ID: "management", Name: "Team & Project Management"},
	{ID: "design", Name: "UX/UI Design"},
	{ID: "data", Name: "Data & Analytics"},
}

// Difficulties are the accepted difficulty levels.
var Difficulties = []string{"beginner", "intermediate", "advanced"}

// PromptContext frames a filled prompt with a banner line.
type PromptContext struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// PromptContexts lists the selectable contexts.
var PromptContexts = []PromptContext{
	{ID: "general", Name: "General Project", Description: "General project context"},
	{ID: "sprint", Name: "Sprint Planning", Description: "Current sprint context"},
	{ID: "feature", Name: "Feature Development", Description: "Specific feature work"},
	{ID: "team", Name: "Team Collaboration", Description: "Team dynamics and collaboration"},
	{ID: "architecture", Name: "System Architecture", Description: "Architecture decisions"},
	{ID: "incident", Name: "Incident Response", Description: "Production issues"},
	{ID: "review", Name: "Code Review", Description: "Code review process"},
}

// Variable is a known placeholder with its fallback text.
type Variable struct {
	Name        string
	Label       string
	Placeholder string
}

// Variables lists the known placeholders in substitution order.
var Variables = []Variable{
	{Name: "projectName", Label: "Project", Placeholder: "[Your Project Name]"},
	{Name: "teamSize", Label: "Team Size", Placeholder: "[Team Size]"},
	{Name: "technology", Label: "Technology", Placeholder: "[Technology Stack]"},
	{Name: "timeframe", Label: "Timeframe", Placeholder: "[Timeframe]"},
	{Name: "specificGoal", Label: "Goal", Placeholder: "[Your Specific Goal]"},
	{Name: "budget", Label: "Budget", Placeholder: "[Budget]"},
	{Name: "deadline", Label: "Deadline", Placeholder: "[Deadline]"},
	{Name: "stakeholders", Label: "Stakeholders", Placeholder: "[Stakeholders]"},
	{Name: "constraints", Label: "Constraints", Placeholder: "[Constraints]"},
	{Name: "currentIssue", Label: "Current Issue", Placeholder: "[Current Issue]"},
	{Name: "desiredOutcome", Label: "Desired Outcome", Placeholder: "[Desired Outcome]"},
}

// composeOrder is the order Compose lists supplied fields in.
var composeOrder = []string{
	"projectName", "technology", "specificGoal", "teamSize", "timeframe", "budget",
	"deadline", "stakeholders", "constraints", "currentIssue", "desiredOutcome",
}

const customRequirementsHeader = "**Additional Custom Requirements:**"

// FillRequest carries the user input for Fill and Compose.
type FillRequest struct {
	Vars    map[string]string `json:"variables"`
	Context string            `json:"context"`
	Custom  string            `json:"custom"`
}

// Library is an immutable, ordered set of prompts.
type Library struct {
	prompts []Prompt
	byID    map[string]int
}

// PromptFilter narrows Library.Find. Empty fields and "all" match every
// prompt. Search matches title, description or any tag, ignoring case.
type PromptFilter struct {
	Category   string
	Difficulty string
	Search     string
}

type promptFile struct {
	Prompts []Prompt `yaml:"prompts"`
}

// ParseLibrary decodes a YAML prompt catalog. Ids must be unique and
// categories and difficulties must be known.
func ParseLibrary(data []byte) (*Library, error) {
	var f promptFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse prompt library: %w", err)
	}

	lib := &Library{prompts: f.Prompts, byID: make(map[string]int, len(f.Prompts))}
	for i, p := range f.Prompts {
		if p.ID == "" {
			return nil, fmt.Errorf("prompt %d: missing id", i)
		}
		if _, dup := lib.byID[p.ID]; dup {
			return nil, fmt.Errorf("prompt %q: duplicate id", p.ID)
		}
		if !slices.ContainsFunc(Categories, func(c Category) bool { return c.ID == p.Category }) {
			return nil, fmt.Errorf("prompt %q: unknown category %q", p.ID, p.Category)
		}
		if !slices.Contains(Difficulties, p.Difficulty) {
			return nil, fmt.Errorf("prompt %q: unknown difficulty %q", p.ID, p.Difficulty)
		}
		lib.byID[p.ID] = i
	}
	return lib, nil
}

var (
	defaultLibrary     *Library
	defaultLibraryOnce sync.Once
)

// DefaultLibrary returns the embedded prompt library.
func DefaultLibrary() *Library {
	defaultLibraryOnce.Do(func() {
		lib, err := ParseLibrary(defaultPromptsYAML)
		if err != nil {
			panic(fmt.Sprintf("embedded prompt library: %v", err))
		}
		defaultLibrary = lib
	})
	return defaultLibrary
}

// All returns every prompt in catalog order.
func (l *Library) All() []Prompt {
	return append([]Prompt(nil), l.prompts...)
}

// Get returns the prompt with the given id.
func (l *Library) Get(id string) (Prompt, bool) {
	i, ok := l.byID[id]
	if !ok {
		return Prompt{}, false
	}
	return l.prompts[i], true
}

// Find returns the prompts matching f in catalog order. The result is
// never nil.
func (l *Library) Find(f PromptFilter) []Prompt {
	term := strings.ToLower(strings.TrimSpace(f.Search))
	out := []Prompt{}
	for _, p := range l.prompts {
		if !matchesAll(f.Category, p.Category) || !matchesAll(f.Difficulty, p.Difficulty) {
			continue
		}
		if term != "" && !p.mentions(term) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// CategoryCounts returns the number of prompts per category id. The key
// "all" holds the total.
func (l *Library) CategoryCounts() map[string]int {
	counts := map[string]int{"all": len(l.prompts)}
	for _, c := range Categories {
		counts[c.ID] = 0
	}
	for _, p := range l.prompts {
		counts[p.Category]++
	}
	return counts
}

func matchesAll(want, got string) bool {
	return want == "" || want == "all" || want == got
}

func (p Prompt) mentions(term string) bool {
	if strings.Contains(strings.ToLower(p.Title), term) ||
		strings.Contains(strings.ToLower(p.Description), term) {
		return true
	}
	for _, tag := range p.Tags {
		if strings.Contains(strings.ToLower(tag), term) {
			return true
		}
	}
	return false
}

// ContextBanner returns the banner line for a context id. Unknown ids
// fall back to the general banner.
func ContextBanner(id string) string {
	for _, c := range PromptContexts {
		if c.ID == id {
			return fmt.Sprintf("🎯 Context: %s\n%s", c.Name, c.Description)
		}
	}
	return "💡 Context: General Project"
}

// Fill substitutes every {variable} in p with the supplied value or its
// placeholder, prefixes the context banner and appends the custom
// requirements section when req.Custom is not blank.
func Fill(p Prompt, req FillRequest) string {
	body := p.Prompt
	for _, v := range Variables {
		val := strings.TrimSpace(req.Vars[v.Name])
		if val == "" {
			val = v.Placeholder
		}
		body = strings.ReplaceAll(body, "{"+v.Name+"}", val)
	}
	for _, name := range extraVariables(req.Vars) {
		body = strings.ReplaceAll(body, "{"+name+"}", req.Vars[name])
	}

	out := ContextBanner(req.Context) + "\n\n" + body
	if strings.TrimSpace(req.Custom) != "" {
		out += "\n\n" + customRequirementsHeader + "\n" + req.Custom
	}
	return out
}

// Compose builds a prompt without a template: the context banner, the
// custom text and one "Label: value" line per supplied variable.
func Compose(req FillRequest) string {
	out := ContextBanner(req.Context) + "\n\n" + req.Custom

	var fields []string
	for _, name := range composeOrder {
		val := strings.TrimSpace(req.Vars[name])
		if val == "" {
			continue
		}
		fields = append(fields, variableLabel(name)+": "+val)
	}
	if len(fields) > 0 {
		out += "\n\n" + strings.Join(fields, "\n")
	}
	return out
}

func variableLabel(name string) string {
	for _, v := range Variables {
		if v.Name == name {
			return v.Label
		}
	}
	return name
}

// extraVariables returns the supplied names that are not known
// placeholders, sorted.
func extraVariables(vars map[string]string) []string {
	var extra []string
	for name := range vars {
		if !slices.ContainsFunc(Variables, func(v Variable) bool { return v.Name == name }) {
			extra = append(extra, name)
		}
	}
	sort.Strings(extra)
	return extra
}
