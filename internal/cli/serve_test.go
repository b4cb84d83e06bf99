package cli

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/teamkit/internal/auth"
	"github.com/roach88/teamkit/internal/config"
	"github.com/roach88/teamkit/internal/store"
)

func TestLoadServiceConfig_RequiresSecret(t *testing.T) {
	opts := &ServeOptions{RootOptions: &RootOptions{Format: "text"}, Viper: config.New()}
	cmd := newServeCommand(opts)

	_, err := loadServiceConfig(opts, cmd)
	require.ErrorIs(t, err, config.ErrMissingJWTSecret)
}

func TestLoadServiceConfig_FlagsOverride(t *testing.T) {
	v := config.New()
	v.Set(config.KeyJWTSecret, "s3cret")
	opts := &ServeOptions{RootOptions: &RootOptions{Format: "text"}, Viper: v}
	cmd := newServeCommand(opts)
	require.NoError(t, cmd.Flags().Set("addr", "127.0.0.1:4000"))

	cfg, err := loadServiceConfig(opts, cmd)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:4000", cfg.Server.Addr)
	assert.Equal(t, "teamkit.db", cfg.Database.Path)
	assert.Equal(t, "http://127.0.0.1:4000", cfg.Server.EffectiveBaseURL())
}

func TestServe_InvalidConfig(t *testing.T) {
	buf := &bytes.Buffer{}
	opts := &ServeOptions{RootOptions: &RootOptions{Format: "text"}, Viper: config.New()}
	cmd := newServeCommand(opts)
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, buf.String(), "Error [E006]: invalid configuration")
}

func TestServe_StopsOnCancel(t *testing.T) {
	v := config.New()
	v.Set(config.KeyJWTSecret, "s3cret")
	opts := &ServeOptions{RootOptions: &RootOptions{Format: "text"}, Viper: v}
	cmd := newServeCommand(opts)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	cmd.SetContext(ctx)
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{"--addr", "127.0.0.1:0", "--db", filepath.Join(t.TempDir(), "serve.db")})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "teamkit listening on 127.0.0.1:0")
}

func TestBuildServer(t *testing.T) {
	st, err := store.Open(filepath.Join(t.TempDir(), "build.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	v := config.New()
	v.Set(config.KeyJWTSecret, "s3cret")
	v.Set(config.KeyBcryptCost, 4)
	cfg, err := config.Load(v, "")
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv, err := buildServer(cfg, st, newMailer(cfg.Mail, logger), logger)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/templates", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestNewMailer(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	_, isLog := newMailer(config.MailConfig{}, logger).(auth.LogMailer)
	assert.True(t, isLog)

	_, isSMTP := newMailer(config.MailConfig{SMTPHost: "smtp.example.com", SMTPPort: 587}, logger).(*auth.SMTPMailer)
	assert.True(t, isSMTP)
}
