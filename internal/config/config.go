package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment overrides for values that should not live in the config file.
const (
	EnvDatabaseURL  = "ROSTERREPORT_DB_URL"
	EnvSMTPPassword = "ROSTERREPORT_SMTP_PASSWORD"
)

// Supported database engines; each maps to one fetcher factory.
const (
	EnginePGXPool = "pgxpool"
	EngineSQLDB   = "sqldb"
	EngineSQLX    = "sqlx"
)

var ErrMissingDatabaseURL = errors.New("database.url is not configured (file or " + EnvDatabaseURL + ")")
var ErrUnknownEngine = errors.New("database.engine must be one of pgxpool, sqldb, sqlx")

// Config is the full job configuration, loaded from a YAML file with
// environment overrides applied afterwards.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Query    QueryConfig    `yaml:"query"`
	Report   ReportConfig   `yaml:"report"`
	Email    EmailConfig    `yaml:"email"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// Duration wraps time.Duration so YAML can carry "30s" / "1h" forms.
type Duration time.Duration

// UnmarshalYAML parses a Go duration string.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", value.Value, err)
	}

	*d = Duration(parsed)

	return nil
}

// Std returns the wrapped standard library duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// DatabaseConfig selects the engine and its pool tuning.
type DatabaseConfig struct {
	URL               string   `yaml:"url"`
	Engine            string   `yaml:"engine"`
	MaxConns          int32    `yaml:"max_conns"`
	MaxConnLifetime   Duration `yaml:"max_conn_lifetime"`
	MaxConnIdleTime   Duration `yaml:"max_conn_idle_time"`
	ConnectTimeout    Duration `yaml:"connect_timeout"`
	MaxIdleConns      int      `yaml:"max_idle_conns"`
	HealthCheckPeriod Duration `yaml:"health_check_period"`
	QueryTimeout      Duration `yaml:"query_timeout"`
}

// QueryConfig points at the SQL template; an empty path selects the built-in
// statement.
type QueryConfig struct {
	TemplatePath string `yaml:"template_path"`
}

// ReportConfig selects the artifact format.
type ReportConfig struct {
	Format string `yaml:"format"`
}

// EmailConfig mirrors notify.Config in file form.
type EmailConfig struct {
	Host       string   `yaml:"host"`
	Port       int      `yaml:"port"`
	UseTLS     bool     `yaml:"use_tls"`
	UseAuth    bool     `yaml:"use_auth"`
	Username   string   `yaml:"username"`
	Password   string   `yaml:"password"`
	From       string   `yaml:"from"`
	Recipients []string `yaml:"recipients"`
}

// LoggingConfig controls slog output.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug | info | warn | error
	File  string `yaml:"file"`  // optional; logs go to stderr as well
}

// Load reads the YAML config file, applies defaults and environment
// overrides, and validates the result.
func Load(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := defaults()
	if unmarshalErr := yaml.Unmarshal(raw, &cfg); unmarshalErr != nil {
		return Config{}, fmt.Errorf("parsing config %s: %w", path, unmarshalErr)
	}

	cfg.applyEnv()

	if validateErr := cfg.validate(); validateErr != nil {
		return Config{}, validateErr
	}

	return cfg, nil
}

// defaults carries the pool tuning a small batch job wants; the database URL
// and email settings have no usable default.
func defaults() Config {
	return Config{
		Database: DatabaseConfig{
			Engine:            EnginePGXPool,
			MaxConns:          4,
			MaxConnLifetime:   Duration(time.Hour),
			MaxConnIdleTime:   Duration(30 * time.Minute),
			ConnectTimeout:    Duration(5 * time.Second),
			MaxIdleConns:      2,
			HealthCheckPeriod: Duration(time.Minute),
			QueryTimeout:      Duration(30 * time.Second),
		},
		Report: ReportConfig{
			Format: "csv",
		},
		Email: EmailConfig{
			Port: 25,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

func (c *Config) applyEnv() {
	if url := os.Getenv(EnvDatabaseURL); url != "" {
		c.Database.URL = url
	}
	if password := os.Getenv(EnvSMTPPassword); password != "" {
		c.Email.Password = password
	}
}

func (c Config) validate() error {
	if c.Database.URL == "" {
		return ErrMissingDatabaseURL
	}

	switch c.Database.Engine {
	case EnginePGXPool, EngineSQLDB, EngineSQLX:
	default:
		return fmt.Errorf("%w, got %q", ErrUnknownEngine, c.Database.Engine)
	}

	return nil
}
