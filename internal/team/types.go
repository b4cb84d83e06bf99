package team

// Orientation is the working role of an agent. The set is closed.
type Orientation string

const (
	OrientationLeadArchitect     Orientation = "lead_architect_scrummaster"
	OrientationFullstackBackend  Orientation = "fullstack_backend"
	OrientationFullstackFrontend Orientation = "fullstack_frontend"
	OrientationJuniorFullstack   Orientation = "junior_fullstack"
	OrientationUXUI              Orientation = "ux_ui"
	OrientationDevOps            Orientation = "devops"
	OrientationQAAutomation      Orientation = "qa_automation"
)

// Orientations lists every orientation in display order.
var Orientations = []Orientation{
	OrientationLeadArchitect,
	OrientationFullstackBackend,
	OrientationFullstackFrontend,
	OrientationJuniorFullstack,
	OrientationUXUI,
	OrientationDevOps,
	OrientationQAAutomation,
}

var orientationLabels = map[Orientation]string{
	OrientationLeadArchitect:     "Lead Architect / Scrum Master",
	OrientationFullstackBackend:  "Full-stack (Backend Focus)",
	OrientationFullstackFrontend: "Full-stack (Frontend Focus)",
	OrientationJuniorFullstack:   "Junior Full-stack",
	OrientationUXUI:              "UX/UI Designer",
	OrientationDevOps:            "DevOps Engineer",
	OrientationQAAutomation:      "QA Automation Engineer",
}

// Label returns the human-readable name of o. Unknown orientations are
// returned verbatim.
func (o Orientation) Label() string {
	if l, ok := orientationLabels[o]; ok {
		return l
	}
	return string(o)
}

// IsValid reports whether o is one of the known orientations.
func (o Orientation) IsValid() bool {
	_, ok := orientationLabels[o]
	return ok
}

// ProjectType distinguishes greenfield projects from work on an existing
// codebase.
type ProjectType string

const (
	ProjectTypeNew      ProjectType = "new"
	ProjectTypeExisting ProjectType = "existing"
)

// DefaultPreference is the conventional midpoint of every preference dial.
const DefaultPreference = 5

// Preferences are four dials, conventionally 1-10.
type Preferences struct {
	CostSensitivity  int `json:"cost_sensitivity" yaml:"cost_sensitivity" toml:"cost_sensitivity"`
	SecurityRigidity int `json:"security_rigidity" yaml:"security_rigidity" toml:"security_rigidity"`
	Maintainability  int `json:"maintainability" yaml:"maintainability" toml:"maintainability"`
	Performance      int `json:"performance" yaml:"performance" toml:"performance"`
}

// DefaultPreferences returns every dial at DefaultPreference.
func DefaultPreferences() Preferences {
	return Preferences{
		CostSensitivity:  DefaultPreference,
		SecurityRigidity: DefaultPreference,
		Maintainability:  DefaultPreference,
		Performance:      DefaultPreference,
	}
}

// Agent is one member of the virtual team. Agents only exist inside a
// TeamConfig.
type Agent struct {
	ID          string      `json:"id" yaml:"id" toml:"id"`
	Name        string      `json:"name" yaml:"name" toml:"name"`
	Orientation Orientation `json:"orientation" yaml:"orientation" toml:"orientation"`
	Strengths   []string    `json:"strengths" yaml:"strengths" toml:"strengths"`
	Constraints []string    `json:"constraints" yaml:"constraints" toml:"constraints"`
	Preferences Preferences `json:"preferences" yaml:"preferences" toml:"preferences"`
}

// FeatureConfig is one product feature.
//
// AssignedTo holds agent ids from the same TeamConfig. The reference is
// never checked on write; Validate reports dangling ids.
type FeatureConfig struct {
	Name               string   `json:"name" yaml:"name" toml:"name"`
	Scope              string   `json:"scope" yaml:"scope" toml:"scope"`
	AcceptanceCriteria []string `json:"acceptanceCriteria" yaml:"acceptanceCriteria" toml:"acceptanceCriteria"`
	AssignedTo         []string `json:"assignedTo,omitempty" yaml:"assignedTo,omitempty" toml:"assignedTo,omitempty"`
}

// TeamConfig is the aggregate configuration of one project.
type TeamConfig struct {
	ProjectName      string          `json:"projectName" yaml:"projectName" toml:"projectName"`
	ProjectType      ProjectType     `json:"projectType,omitempty" yaml:"projectType,omitempty" toml:"projectType,omitempty"`
	Agents           []Agent         `json:"agents" yaml:"agents" toml:"agents"`
	Features         []FeatureConfig `json:"features" yaml:"features" toml:"features"`
	GithubProjectURL string          `json:"githubProjectUrl,omitempty" yaml:"githubProjectUrl,omitempty" toml:"githubProjectUrl,omitempty"`
}

// Clone returns a deep copy of c.
func (c TeamConfig) Clone() TeamConfig {
	out := c
	out.Agents = cloneAgents(c.Agents)
	out.Features = cloneFeatures(c.Features)
	return out
}

// AgentByID returns the agent with the given id.
func (c TeamConfig) AgentByID(id string) (Agent, bool) {
	for _, a := range c.Agents {
		if a.ID == id {
			return a, true
		}
	}
	return Agent{}, false
}

// EffectiveProjectType returns the project type, defaulting to "new".
func (c TeamConfig) EffectiveProjectType() ProjectType {
	if c.ProjectType == "" {
		return ProjectTypeNew
	}
	return c.ProjectType
}

func cloneAgents(in []Agent) []Agent {
	if in == nil {
		return nil
	}
	out := make([]Agent, len(in))
	for i, a := range in {
		a.Strengths = cloneStrings(a.Strengths)
		a.Constraints = cloneStrings(a.Constraints)
		out[i] = a
	}
	return out
}

func cloneFeatures(in []FeatureConfig) []FeatureConfig {
	if in == nil {
		return nil
	}
	out := make([]FeatureConfig, len(in))
	for i, f := range in {
		f.AcceptanceCriteria = cloneStrings(f.AcceptanceCriteria)
		f.AssignedTo = cloneStrings(f.AssignedTo)
		out[i] = f
	}
	return out
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	return append([]string(nil), in...)
}
