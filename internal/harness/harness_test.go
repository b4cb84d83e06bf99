package harness

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// echoHandler is a tiny API used to exercise the runner.
func echoHandler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /items", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":   "item-1",
			"item": body,
			"auth": r.Header.Get("Authorization"),
		})
	})
	mux.HandleFunc("GET /items/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode([]map[string]any{{"id": r.PathValue("id"), "qty": 2}})
	})
	mux.HandleFunc("GET /archive", func(w http.ResponseWriter, r *http.Request) {
		var buf bytes.Buffer
		zw := zip.NewWriter(&buf)
		_, _ = zw.Create("a.md")
		_, _ = zw.Create("b.md")
		_ = zw.Close()
		w.Header().Set("Content-Type", "application/zip")
		_, _ = w.Write(buf.Bytes())
	})
	return mux
}

func TestRun_CaptureAndSubstitute(t *testing.T) {
	sc, err := ParseScenario([]byte(`
name: capture
description: "captured ids feed later steps"
flow:
  - name: create
    request:
      method: POST
      path: /items
      token: ${session}
      body:
        name: widget
        tags: ["${session}"]
        qty: 3
    expect:
      status: 201
      json:
        item.name: widget
        item.qty: 3
        item.tags.0: secret
        auth: Bearer secret
    capture:
      item_id: id
  - name: fetch
    request:
      method: GET
      path: /items/${item_id}
    expect:
      status: 200
      count: 1
      json:
        0.id: ${item_id}
        0.qty: 2
      header:
        Content-Type: application/json
`))
	require.NoError(t, err)

	h := New(echoHandler(), WithHook("login", func(ctx context.Context, vars Vars) error {
		vars["session"] = "secret"
		return nil
	}))
	sc.Flow = append([]Step{{Name: "login", Hook: "login"}}, sc.Flow...)

	result, err := h.Run(context.Background(), sc)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Equal(t, "item-1", result.Vars["item_id"])
	require.Len(t, result.Steps, 3)
	assert.Equal(t, "/items/item-1", result.Steps[2].Path)
}

func TestRun_StopsAtFirstFailure(t *testing.T) {
	sc := &Scenario{
		Name:        "fail",
		Description: "wrong status",
		Flow: []Step{
			{Request: &Request{Method: "GET", Path: "/items/x"}, Expect: Expect{Status: 404}},
			{Request: &Request{Method: "GET", Path: "/items/y"}, Expect: Expect{Status: 200}},
		},
	}

	result, err := New(echoHandler()).Run(context.Background(), sc)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "status: expected 404, got 200")
	assert.Len(t, result.Steps, 1)
}

func TestRun_JSONMismatch(t *testing.T) {
	count := 3
	sc := &Scenario{
		Name:        "mismatch",
		Description: "subset mismatch",
		Flow: []Step{{
			Request: &Request{Method: "GET", Path: "/items/x"},
			Expect: Expect{
				Status: 200,
				Count:  &count,
				JSON:   map[string]any{"0.qty": 5, "0.missing": true},
			},
		}},
	}

	result, err := New(echoHandler()).Run(context.Background(), sc)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	assert.Len(t, result.Errors, 3)
}

func TestRun_ZipEntries(t *testing.T) {
	sc := &Scenario{
		Name:        "zip",
		Description: "zip body",
		Flow: []Step{{
			Request: &Request{Method: "GET", Path: "/archive"},
			Expect:  Expect{Status: 200, ZipEntries: []string{"a.md", "b.md"}},
		}},
	}

	result, err := New(echoHandler()).Run(context.Background(), sc)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)

	sc.Flow[0].Expect.ZipEntries = []string{"b.md"}
	result, err = New(echoHandler()).Run(context.Background(), sc)
	require.NoError(t, err)
	assert.False(t, result.Pass)
}

func TestRun_HookErrors(t *testing.T) {
	sc := &Scenario{Name: "hooks", Description: "d", Flow: []Step{{Hook: "missing"}}}
	_, err := New(echoHandler()).Run(context.Background(), sc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown hook "missing"`)

	boom := errors.New("boom")
	h := New(echoHandler(), WithHook("missing", func(context.Context, Vars) error { return boom }))
	_, err = h.Run(context.Background(), sc)
	assert.ErrorIs(t, err, boom)
}

func TestExpand(t *testing.T) {
	vars := Vars{"a": "1", "b_2": "two"}
	assert.Equal(t, "1-two-${c}", expand("${a}-${b_2}-${c}", vars))
	assert.Equal(t, map[string]any{"k": []any{"1", 7}}, expandAll(map[string]any{"k": []any{"${a}", 7}}, vars))
}

func TestLookupPath(t *testing.T) {
	var doc any
	require.NoError(t, json.Unmarshal([]byte(`{"a":{"b":[{"c":"x"}]}}`), &doc))

	v, ok := lookupPath(doc, "a.b.0.c")
	assert.True(t, ok)
	assert.Equal(t, "x", v)

	_, ok = lookupPath(doc, "a.b.1")
	assert.False(t, ok)
	_, ok = lookupPath(doc, "a.b.c")
	assert.False(t, ok)

	root, ok := lookupPath(doc, "")
	assert.True(t, ok)
	assert.Equal(t, doc, root)
}

func TestValuesEqual(t *testing.T) {
	assert.True(t, valuesEqual(float64(3), 3))
	assert.True(t, valuesEqual(map[string]any{"a": []any{true}}, map[string]any{"a": []any{true}}))
	assert.True(t, valuesEqual(nil, nil))
	assert.False(t, valuesEqual("3", 3))
}
