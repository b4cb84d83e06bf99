package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario defines an end-to-end HTTP scenario.
type Scenario struct {
	// Name uniquely identifies this scenario.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Flow is executed in order. A failing step stops the flow.
	Flow []Step `yaml:"flow"`
}

// Step is one request or one hook invocation.
type Step struct {
	// Name labels the step in failure messages.
	Name string `yaml:"name"`

	// Hook names a function registered with WithHook. Mutually exclusive
	// with Request.
	Hook string `yaml:"hook,omitempty"`

	Request *Request `yaml:"request,omitempty"`
	Expect  Expect   `yaml:"expect,omitempty"`

	// Capture stores response values as variables: name -> dotted JSON
	// path (e.g. "project.id", "0.id").
	Capture map[string]string `yaml:"capture,omitempty"`
}

// Request describes the HTTP request of a step. Path, Token and every
// string inside Body may reference variables as ${name}.
type Request struct {
	Method string `yaml:"method"`
	Path   string `yaml:"path"`

	// Token is sent as "Authorization: Bearer <token>" when non-empty.
	Token string `yaml:"token,omitempty"`

	// Body is encoded as JSON when present.
	Body any `yaml:"body,omitempty"`
}

// Expect holds the checks applied to a response.
type Expect struct {
	Status int `yaml:"status"`

	// JSON maps dotted paths to expected values (subset match).
	JSON map[string]any `yaml:"json,omitempty"`

	// Count is the expected length of a top-level JSON array.
	Count *int `yaml:"count,omitempty"`

	// Header maps header names to exact expected values.
	Header map[string]string `yaml:"header,omitempty"`

	// Contains lists substrings the raw body must contain.
	Contains []string `yaml:"contains,omitempty"`

	// ZipEntries is the exact, ordered list of entry names of a zip body.
	ZipEntries []string `yaml:"zip_entries,omitempty"`
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Flow) == 0 {
		return fmt.Errorf("flow list is required and must be non-empty")
	}

	for i, step := range s.Flow {
		if err := validateStep(i, &step); err != nil {
			return err
		}
	}
	return nil
}

func validateStep(i int, step *Step) error {
	switch {
	case step.Hook != "" && step.Request != nil:
		return fmt.Errorf("flow[%d]: hook and request are mutually exclusive", i)
	case step.Hook != "":
		return nil
	case step.Request == nil:
		return fmt.Errorf("flow[%d]: request or hook is required", i)
	}

	if step.Request.Method == "" {
		return fmt.Errorf("flow[%d]: request.method is required", i)
	}
	if step.Request.Path == "" {
		return fmt.Errorf("flow[%d]: request.path is required", i)
	}
	if step.Expect.Status == 0 {
		return fmt.Errorf("flow[%d]: expect.status is required", i)
	}
	if step.Expect.Count != nil && *step.Expect.Count < 0 {
		return fmt.Errorf("flow[%d]: expect.count must be >= 0, got %d", i, *step.Expect.Count)
	}
	return nil
}
