package api

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/teamkit/internal/harness"
)

// TestScenarios runs every scenario under testdata/scenarios against a
// fresh server.
func TestScenarios(t *testing.T) {
	paths, err := filepath.Glob(filepath.Join("testdata", "scenarios", "*.yaml"))
	require.NoError(t, err)
	require.NotEmpty(t, paths)

	for _, path := range paths {
		t.Run(filepath.Base(path), func(t *testing.T) {
			sc, err := harness.LoadScenario(path)
			require.NoError(t, err)

			ts := newTestServer(t)
			h := harness.New(ts.server.Handler(),
				harness.WithHook("verification_token", func(_ context.Context, vars harness.Vars) error {
					for _, email := range []string{"grace@example.com", "ada@example.com"} {
						if token, ok := ts.mailbox.token(email); ok {
							vars["verification_token"] = token
							return nil
						}
					}
					return fmt.Errorf("no verification mail sent")
				}),
			)

			result, err := h.Run(context.Background(), sc)
			require.NoError(t, err)
			assert.True(t, result.Pass, "scenario %s failed: %v", sc.Name, result.Errors)
		})
	}
}
