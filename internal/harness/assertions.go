package harness

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"reflect"
	"sort"
	"strconv"
	"strings"
)

// checkExpect returns one message per failed expectation.
func checkExpect(exp Expect, status int, header http.Header, body []byte, vars Vars) []string {
	var failures []string

	if status != exp.Status {
		failures = append(failures, fmt.Sprintf("status: expected %d, got %d (body: %s)",
			exp.Status, status, truncate(body, 200)))
		return failures
	}

	names := make([]string, 0, len(exp.Header))
	for name := range exp.Header {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		want := expand(exp.Header[name], vars)
		if got := header.Get(name); got != want {
			failures = append(failures, fmt.Sprintf("header %s: expected %q, got %q", name, want, got))
		}
	}

	for _, s := range exp.Contains {
		if want := expand(s, vars); !bytes.Contains(body, []byte(want)) {
			failures = append(failures, fmt.Sprintf("body does not contain %q", want))
		}
	}

	if len(exp.JSON) > 0 || exp.Count != nil {
		doc, err := decodeBody(body)
		if err != nil {
			return append(failures, err.Error())
		}
		failures = append(failures, matchJSON(doc, exp.JSON, vars)...)
		if exp.Count != nil {
			arr, ok := doc.([]any)
			switch {
			case !ok:
				failures = append(failures, fmt.Sprintf("count: body is %T, not an array", doc))
			case len(arr) != *exp.Count:
				failures = append(failures, fmt.Sprintf("count: expected %d, got %d", *exp.Count, len(arr)))
			}
		}
	}

	if exp.ZipEntries != nil {
		got, err := zipEntries(body)
		if err != nil {
			failures = append(failures, err.Error())
		} else if !reflect.DeepEqual(got, exp.ZipEntries) {
			failures = append(failures, fmt.Sprintf("zip entries: expected %v, got %v", exp.ZipEntries, got))
		}
	}

	return failures
}

// matchJSON checks that each dotted path in expected resolves to an equal
// value (subset match: extra fields in the document are ignored).
func matchJSON(doc any, expected map[string]any, vars Vars) []string {
	paths := make([]string, 0, len(expected))
	for p := range expected {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	var failures []string
	for _, p := range paths {
		got, ok := lookupPath(doc, p)
		if !ok {
			failures = append(failures, fmt.Sprintf("json %s: missing", p))
			continue
		}
		want := expandAll(expected[p], vars)
		if !valuesEqual(got, want) {
			failures = append(failures, fmt.Sprintf("json %s: expected %v, got %v", p, want, got))
		}
	}
	return failures
}

// capture stores the values at the given paths as variables.
func capture(captures map[string]string, body []byte, vars Vars) []string {
	if len(captures) == 0 {
		return nil
	}
	doc, err := decodeBody(body)
	if err != nil {
		return []string{err.Error()}
	}

	var failures []string
	for name, path := range captures {
		v, ok := lookupPath(doc, path)
		if !ok {
			failures = append(failures, fmt.Sprintf("capture %s: path %s missing", name, path))
			continue
		}
		if s, isString := v.(string); isString {
			vars[name] = s
		} else {
			vars[name] = fmt.Sprint(v)
		}
	}
	sort.Strings(failures)
	return failures
}

// lookupPath resolves a dotted path of object keys and array indexes.
// The empty path resolves to the document itself.
func lookupPath(doc any, path string) (any, bool) {
	if path == "" {
		return doc, true
	}
	cur := doc
	for _, part := range strings.Split(path, ".") {
		switch node := cur.(type) {
		case map[string]any:
			v, ok := node[part]
			if !ok {
				return nil, false
			}
			cur = v
		case []any:
			i, err := strconv.Atoi(part)
			if err != nil || i < 0 || i >= len(node) {
				return nil, false
			}
			cur = node[i]
		default:
			return nil, false
		}
	}
	return cur, true
}

// valuesEqual compares a decoded JSON value with a decoded YAML value.
// The expected value is round-tripped through JSON so that numbers and
// nested maps share one representation.
func valuesEqual(actual, expected any) bool {
	data, err := json.Marshal(expected)
	if err != nil {
		return false
	}
	var normalized any
	if err := json.Unmarshal(data, &normalized); err != nil {
		return false
	}
	return reflect.DeepEqual(actual, normalized)
}

func decodeBody(body []byte) (any, error) {
	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("body is not JSON: %v (body: %s)", err, truncate(body, 200))
	}
	return doc, nil
}

func zipEntries(body []byte) ([]string, error) {
	zr, err := zip.NewReader(bytes.NewReader(body), int64(len(body)))
	if err != nil {
		return nil, fmt.Errorf("body is not a zip archive: %w", err)
	}
	names := make([]string, 0, len(zr.File))
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	return names, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
