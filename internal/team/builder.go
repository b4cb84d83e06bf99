package team

import (
	"strings"
	"sync"
)

// Builder holds an in-progress TeamConfig and applies point updates to it.
//
// Builder performs no validation: it is a pass-through cache for callers
// that assemble a configuration in several steps (flags, files, prompts).
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type Builder struct {
	mu  sync.Mutex
	cfg TeamConfig
}

// NewBuilder creates an empty builder with project type "new".
func NewBuilder() *Builder {
	b := &Builder{}
	b.reset()
	return b
}

// Partial is a set of optional updates for Merge. Nil fields are left
// untouched.
type Partial struct {
	ProjectName      *string
	ProjectType      *ProjectType
	Agents           []Agent
	Features         []FeatureConfig
	GithubProjectURL *string
}

func (b *Builder) SetProjectName(name string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cfg.ProjectName = name
}

// SetAgents replaces the agent list.
func (b *Builder) SetAgents(agents []Agent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cfg.Agents = cloneAgents(agents)
}

// SetFeatures replaces the feature list.
func (b *Builder) SetFeatures(features []FeatureConfig) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cfg.Features = cloneFeatures(features)
}

func (b *Builder) SetRepositoryURL(url string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cfg.GithubProjectURL = url
}

func (b *Builder) SetProjectType(t ProjectType) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cfg.ProjectType = t
}

// Merge applies every non-nil field of p. Agents and Features replace the
// current lists when non-nil.
func (b *Builder) Merge(p Partial) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if p.ProjectName != nil {
		b.cfg.ProjectName = *p.ProjectName
	}
	if p.ProjectType != nil {
		b.cfg.ProjectType = *p.ProjectType
	}
	if p.Agents != nil {
		b.cfg.Agents = cloneAgents(p.Agents)
	}
	if p.Features != nil {
		b.cfg.Features = cloneFeatures(p.Features)
	}
	if p.GithubProjectURL != nil {
		b.cfg.GithubProjectURL = *p.GithubProjectURL
	}
}

// Config returns a deep copy of the current configuration. Mutating the
// result does not affect the builder.
func (b *Builder) Config() TeamConfig {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.cfg.Clone()
}

// IsComplete reports whether the configuration has a project name, at
// least one agent and at least one feature.
func (b *Builder) IsComplete() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return strings.TrimSpace(b.cfg.ProjectName) != "" &&
		len(b.cfg.Agents) > 0 &&
		len(b.cfg.Features) > 0
}

// Reset discards all state.
func (b *Builder) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.reset()
}

func (b *Builder) reset() {
	b.cfg = TeamConfig{
		ProjectType: ProjectTypeNew,
		Agents:      []Agent{},
		Features:    []FeatureConfig{},
	}
}
