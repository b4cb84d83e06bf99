package harness

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
)

// Vars holds the variables captured during a run.
type Vars map[string]string

// Hook is a test-supplied step. It may read and set variables.
type Hook func(ctx context.Context, vars Vars) error

// Harness executes scenarios against a handler.
type Harness struct {
	handler http.Handler
	hooks   map[string]Hook
}

// Option configures a Harness.
type Option func(*Harness)

// WithHook registers fn under name for use in "hook:" steps.
func WithHook(name string, fn Hook) Option {
	return func(h *Harness) { h.hooks[name] = fn }
}

// New creates a Harness for handler.
func New(handler http.Handler, opts ...Option) *Harness {
	h := &Harness{handler: handler, hooks: make(map[string]Hook)}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Run executes the scenario flow in order.
//
// A failed expectation marks the result as failed and stops the flow,
// since later steps usually depend on captured values. An error is
// returned only for problems with the scenario itself (unknown hook,
// unencodable body) or a failing hook.
func (h *Harness) Run(ctx context.Context, scenario *Scenario) (*Result, error) {
	result := NewResult()

	for i, step := range scenario.Flow {
		label := stepLabel(i, step)

		if step.Hook != "" {
			fn, ok := h.hooks[step.Hook]
			if !ok {
				return nil, fmt.Errorf("%s: unknown hook %q", label, step.Hook)
			}
			if err := fn(ctx, result.Vars); err != nil {
				return nil, fmt.Errorf("%s: hook %s: %w", label, step.Hook, err)
			}
			result.AddStep(StepResult{Name: label, Hook: step.Hook})
			continue
		}

		rec, err := h.send(ctx, step.Request, result.Vars)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", label, err)
		}

		body := rec.Body.Bytes()
		result.AddStep(StepResult{
			Name:   label,
			Method: step.Request.Method,
			Path:   expand(step.Request.Path, result.Vars),
			Status: rec.Code,
		})

		failures := checkExpect(step.Expect, rec.Code, rec.Header(), body, result.Vars)
		if len(failures) == 0 {
			failures = capture(step.Capture, body, result.Vars)
		}
		if len(failures) > 0 {
			for _, f := range failures {
				result.AddError(fmt.Sprintf("%s: %s", label, f))
			}
			return result, nil
		}
	}

	return result, nil
}

func (h *Harness) send(ctx context.Context, req *Request, vars Vars) (*httptest.ResponseRecorder, error) {
	var body io.Reader
	if req.Body != nil {
		data, err := json.Marshal(expandAll(req.Body, vars))
		if err != nil {
			return nil, fmt.Errorf("encode body: %w", err)
		}
		body = bytes.NewReader(data)
	}

	r := httptest.NewRequestWithContext(ctx, strings.ToUpper(req.Method), expand(req.Path, vars), body)
	if body != nil {
		r.Header.Set("Content-Type", "application/json")
	}
	if token := expand(req.Token, vars); token != "" {
		r.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, r)
	return rec, nil
}

func stepLabel(i int, step Step) string {
	if step.Name != "" {
		return fmt.Sprintf("flow[%d] %s", i, step.Name)
	}
	return fmt.Sprintf("flow[%d]", i)
}

var varPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// expand substitutes ${name} references. Unknown names are left as-is.
func expand(s string, vars Vars) string {
	return varPattern.ReplaceAllStringFunc(s, func(m string) string {
		if v, ok := vars[m[2:len(m)-1]]; ok {
			return v
		}
		return m
	})
}

// expandAll substitutes variables in every string of a decoded YAML value.
func expandAll(v any, vars Vars) any {
	switch t := v.(type) {
	case string:
		return expand(t, vars)
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = expandAll(val, vars)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = expandAll(val, vars)
		}
		return out
	default:
		return v
	}
}
