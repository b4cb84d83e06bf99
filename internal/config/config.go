// Package config loads teamkit settings from defaults, an optional YAML
// file and TEAMKIT_* environment variables, in increasing precedence.
// Command-line flags bound by the CLI override all three.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable; "auth.jwt_secret" is read
// from TEAMKIT_AUTH_JWT_SECRET.
const EnvPrefix = "TEAMKIT"

// Keys.
const (
	KeyServerAddr       = "server.addr"
	KeyServerBaseURL    = "server.base_url"
	KeyDatabasePath     = "database.path"
	KeyJWTSecret        = "auth.jwt_secret"
	KeySessionTTL       = "auth.session_ttl"
	KeyBcryptCost       = "auth.bcrypt_cost"
	KeySMTPHost         = "mail.smtp_host"
	KeySMTPPort         = "mail.smtp_port"
	KeyMailUsername     = "mail.username"
	KeyMailPassword     = "mail.password"
	KeyMailFrom         = "mail.from"
	KeyLogLevel         = "log.level"
	KeyLogFormat        = "log.format"
	KeyTelemetryEnabled = "telemetry.enabled"
	KeyTelemetryStdout  = "telemetry.stdout"
)

// Config is the resolved configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Mail      MailConfig      `mapstructure:"mail"`
	Log       LogConfig       `mapstructure:"log"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
	// BaseURL prefixes verification links. Empty means derived from Addr.
	BaseURL string `mapstructure:"base_url"`
}

type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

type AuthConfig struct {
	JWTSecret  string        `mapstructure:"jwt_secret"`
	SessionTTL time.Duration `mapstructure:"session_ttl"`
	BcryptCost int           `mapstructure:"bcrypt_cost"`
}

// MailConfig selects the verification mailer. An empty SMTPHost means
// links are logged instead of sent.
type MailConfig struct {
	SMTPHost string `mapstructure:"smtp_host"`
	SMTPPort int    `mapstructure:"smtp_port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type TelemetryConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Stdout  bool `mapstructure:"stdout"`
}

// New returns a viper instance with every default registered and
// environment binding enabled.
func New() *viper.Viper {
	v := viper.New()

	v.SetDefault(KeyServerAddr, ":3005")
	v.SetDefault(KeyServerBaseURL, "")
	v.SetDefault(KeyDatabasePath, "teamkit.db")
	v.SetDefault(KeyJWTSecret, "")
	v.SetDefault(KeySessionTTL, 24*time.Hour)
	v.SetDefault(KeyBcryptCost, 10)
	v.SetDefault(KeySMTPHost, "")
	v.SetDefault(KeySMTPPort, 587)
	v.SetDefault(KeyMailUsername, "")
	v.SetDefault(KeyMailPassword, "")
	v.SetDefault(KeyMailFrom, "teamkit@localhost")
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "text")
	v.SetDefault(KeyTelemetryEnabled, false)
	v.SetDefault(KeyTelemetryStdout, false)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the YAML file at path into v, when path is non-empty, and
// decodes the result.
func Load(v *viper.Viper, path string) (Config, error) {
	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.check(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) check() error {
	if _, err := c.Log.SlogLevel(); err != nil {
		return err
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("%s: unsupported format %q (want text or json)", KeyLogFormat, c.Log.Format)
	}
	if c.Auth.SessionTTL <= 0 {
		return fmt.Errorf("%s: must be positive", KeySessionTTL)
	}
	return nil
}

// ErrMissingJWTSecret is returned by RequireServe when no signing secret is
// configured.
var ErrMissingJWTSecret = errors.New(KeyJWTSecret + " is required (set TEAMKIT_AUTH_JWT_SECRET)")

// RequireServe checks the settings only the HTTP server needs.
func (c Config) RequireServe() error {
	if c.Auth.JWTSecret == "" {
		return ErrMissingJWTSecret
	}
	if c.Database.Path == "" {
		return fmt.Errorf("%s: must not be empty", KeyDatabasePath)
	}
	return nil
}

// SlogLevel parses Level ("debug", "info", "warn", "error").
func (l LogConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return 0, fmt.Errorf("%s: %w", KeyLogLevel, err)
	}
	return level, nil
}

// EffectiveBaseURL returns BaseURL, or "http://localhost<addr>" when unset.
func (s ServerConfig) EffectiveBaseURL() string {
	if s.BaseURL != "" {
		return strings.TrimRight(s.BaseURL, "/")
	}
	if strings.HasPrefix(s.Addr, ":") {
		return "http://localhost" + s.Addr
	}
	return "http://" + s.Addr
}
