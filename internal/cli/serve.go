package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/roach88/teamkit/internal/api"
	"github.com/roach88/teamkit/internal/auth"
	"github.com/roach88/teamkit/internal/config"
	"github.com/roach88/teamkit/internal/project"
	"github.com/roach88/teamkit/internal/store"
	"github.com/roach88/teamkit/internal/telemetry"
)

// shutdownGrace bounds how long in-flight requests may take on shutdown.
const shutdownGrace = 10 * time.Second

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions

	// Viper overrides the configuration source (for testing).
	Viper *viper.Viper
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	return newServeCommand(&ServeOptions{RootOptions: rootOpts})
}

func newServeCommand(opts *ServeOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Long: `Start the teamkit HTTP API.

Settings come from the --config YAML file, then TEAMKIT_* environment
variables (e.g. TEAMKIT_AUTH_JWT_SECRET, TEAMKIT_DATABASE_PATH), then the
flags below. A JWT secret is required.

Example:
  TEAMKIT_AUTH_JWT_SECRET=change-me teamkit serve --addr :3005 --db ./teamkit.db`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(opts, cmd)
		},
	}

	cmd.Flags().String("addr", "", "listen address (default :3005)")
	cmd.Flags().String("db", "", "path to SQLite database (default teamkit.db)")
	cmd.Flags().String("base-url", "", "public base URL used in verification links")

	return cmd
}

// loadServiceConfig resolves the configuration, letting set flags win
// over the file and environment.
func loadServiceConfig(opts *ServeOptions, cmd *cobra.Command) (config.Config, error) {
	v := opts.Viper
	if v == nil {
		v = config.New()
	}
	for key, flag := range map[string]string{
		config.KeyServerAddr:    "addr",
		config.KeyDatabasePath:  "db",
		config.KeyServerBaseURL: "base-url",
	} {
		if f := cmd.Flags().Lookup(flag); f != nil && f.Changed {
			if err := v.BindPFlag(key, f); err != nil {
				return config.Config{}, fmt.Errorf("bind --%s: %w", flag, err)
			}
		}
	}

	cfg, err := config.Load(v, opts.ConfigPath)
	if err != nil {
		return config.Config{}, err
	}
	if err := cfg.RequireServe(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func runServe(opts *ServeOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	cfg, err := loadServiceConfig(opts, cmd)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeConfig, "invalid configuration", err)
	}

	level, _ := cfg.Log.SlogLevel()
	logger := newLogger(cmd.ErrOrStderr(), level, cfg.Log.Format, opts.Verbose)
	slog.SetDefault(logger)

	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, stop := signal.NotifyContext(parentCtx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := telemetry.Init(ctx, telemetry.Options{
		Enabled:     cfg.Telemetry.Enabled,
		Stdout:      cfg.Telemetry.Stdout,
		ServiceName: "teamkit",
		Version:     Version,
	}); err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeConfig, "failed to initialize telemetry", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			logger.Error("error flushing telemetry", "error", err)
		}
	}()

	logger.Info("opening database", "path", cfg.Database.Path)
	st, err := store.Open(cfg.Database.Path)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, "failed to open database", err)
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			logger.Error("error closing database", "error", closeErr)
		}
	}()

	srv, err := buildServer(cfg, st, newMailer(cfg.Mail, logger), logger)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeConfig, "failed to build server", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "teamkit listening on %s\n", cfg.Server.Addr)
	if err := srv.Run(ctx, cfg.Server.Addr, shutdownGrace); err != nil {
		return formatter.Fail(ExitFailure, ErrCodeGeneric, "server error", err)
	}

	logger.Info("server stopped gracefully")
	return nil
}

// buildServer wires the services over st into an API server.
func buildServer(cfg config.Config, st *store.Store, mailer auth.Mailer, logger *slog.Logger) (*api.Server, error) {
	authSvc, err := auth.NewService(st, mailer, auth.Config{
		BaseURL:    cfg.Server.EffectiveBaseURL(),
		JWTSecret:  []byte(cfg.Auth.JWTSecret),
		SessionTTL: cfg.Auth.SessionTTL,
		BcryptCost: cfg.Auth.BcryptCost,
	}, auth.WithLogger(logger))
	if err != nil {
		return nil, err
	}

	projects := project.NewService(telemetry.WrapProjects(st), project.WithLogger(logger))

	return api.NewServer(api.ServerConfig{
		Auth:     authSvc,
		Projects: projects,
		Health:   st,
		Logger:   logger,
	}), nil
}

// newMailer sends over SMTP when a host is configured and logs links
// otherwise.
func newMailer(mc config.MailConfig, logger *slog.Logger) auth.Mailer {
	if mc.SMTPHost == "" {
		return auth.LogMailer{Logger: logger}
	}
	return auth.NewSMTPMailer(auth.SMTPConfig{
		Host:     mc.SMTPHost,
		Port:     mc.SMTPPort,
		Username: mc.Username,
		Password: mc.Password,
		From:     mc.From,
	})
}
