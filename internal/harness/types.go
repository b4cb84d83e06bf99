package harness

// StepResult records one executed step.
type StepResult struct {
	Name   string `json:"name"`
	Hook   string `json:"hook,omitempty"`
	Method string `json:"method,omitempty"`
	Path   string `json:"path,omitempty"`
	Status int    `json:"status,omitempty"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall success.
	Pass bool `json:"pass"`

	// Steps lists the executed steps in order.
	Steps []StepResult `json:"steps"`

	// Errors contains expectation failures. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Vars holds every variable captured or set by hooks.
	Vars Vars `json:"vars,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Steps:  []StepResult{},
		Errors: []string{},
		Vars:   Vars{},
	}
}

// AddError adds a failure and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddStep appends an executed step.
func (r *Result) AddStep(s StepResult) {
	r.Steps = append(r.Steps, s)
}
