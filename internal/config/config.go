package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server" envconfig:"SERVER"`
	Security  SecurityConfig  `yaml:"security" envconfig:"SECURITY"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Source    SourceConfig    `yaml:"source" envconfig:"SOURCE"`
	Cache     CacheConfig     `yaml:"cache" envconfig:"CACHE"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
	Reports   ReportsConfig   `yaml:"reports" envconfig:"REPORTS"`
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT" validate:"gt=0"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" validate:"gt=0"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT" validate:"gt=0"`
	RequestTimeout  time.Duration `yaml:"request_timeout" envconfig:"REQUEST_TIMEOUT" validate:"gt=0"`
	MaxHeaderBytes  int           `yaml:"max_header_bytes" envconfig:"MAX_HEADER_BYTES" validate:"gt=0"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" validate:"gt=0"`
}

// SecurityConfig contains CORS and rate limiting configuration.
type SecurityConfig struct {
	AllowedOrigins []string        `yaml:"allowed_origins" envconfig:"ALLOWED_ORIGINS" validate:"min=1"`
	EnableCORS     bool            `yaml:"enable_cors" envconfig:"ENABLE_CORS"`
	RateLimit      RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration.
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED"`
	RPS     float64 `yaml:"rps" envconfig:"RPS" validate:"gt=0"`
	Burst   int     `yaml:"burst" envconfig:"BURST" validate:"gt=0"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level       string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn error"`
	Format      string `yaml:"format" envconfig:"FORMAT" validate:"oneof=json text"`
	Output      string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=console file both"`
	FilePath    string `yaml:"file_path" envconfig:"FILE_PATH"`
	Development bool   `yaml:"development" envconfig:"DEVELOPMENT"`
}

// SourceConfig selects and parameterizes the row source. Kind "auto" picks
// sheets when fully configured, then a file when a path is set, then the
// bundled sample.
type SourceConfig struct {
	Kind            string        `yaml:"kind" envconfig:"KIND" validate:"oneof=auto sheets file sample"`
	SpreadsheetID   string        `yaml:"spreadsheet_id" envconfig:"SPREADSHEET_ID"`
	Worksheet       string        `yaml:"worksheet" envconfig:"WORKSHEET"`
	CredentialsFile string        `yaml:"credentials_file" envconfig:"CREDENTIALS_FILE"`
	CredentialsJSON string        `yaml:"credentials_json" envconfig:"CREDENTIALS_JSON"`
	FilePath        string        `yaml:"file_path" envconfig:"FILE_PATH"`
	RetryDelay      time.Duration `yaml:"retry_delay" envconfig:"RETRY_DELAY" validate:"gte=0"`
}

// CacheConfig bounds how long a fetched snapshot is reused before the
// source is read again. An explicit refresh always bypasses it.
type CacheConfig struct {
	TTL             time.Duration `yaml:"ttl" envconfig:"TTL" validate:"gte=0"`
	CleanupInterval time.Duration `yaml:"cleanup_interval" envconfig:"CLEANUP_INTERVAL" validate:"gt=0"`
}

// TelemetryConfig configures metrics and tracing.
type TelemetryConfig struct {
	ServiceName    string `yaml:"service_name" envconfig:"SERVICE_NAME"`
	MetricsEnabled bool   `yaml:"metrics_enabled" envconfig:"METRICS_ENABLED"`
	TraceExporter  string `yaml:"trace_exporter" envconfig:"TRACE_EXPORTER" validate:"oneof=none stdout"`
}

// ReportsConfig parameterizes report generation and table shaping.
type ReportsConfig struct {
	OutputDir      string `yaml:"output_dir" envconfig:"OUTPUT_DIR"`
	RecentSessions int    `yaml:"recent_sessions" envconfig:"RECENT_SESSIONS" validate:"gt=0"`
}

// SheetsConfigured reports whether enough settings are present to reach
// the Google Sheets source.
func (s SourceConfig) SheetsConfigured() bool {
	return s.SpreadsheetID != "" && (s.CredentialsFile != "" || s.CredentialsJSON != "")
}

// EffectiveKind resolves "auto" into a concrete source kind.
func (s SourceConfig) EffectiveKind() string {
	if s.Kind != "auto" {
		return s.Kind
	}
	if s.SheetsConfigured() {
		return "sheets"
	}
	if s.FilePath != "" {
		return "file"
	}
	return "sample"
}

// Load builds the configuration in three layers: defaults, then an
// optional YAML file, then POKER_* environment variables. Later layers
// only override what they actually specify.
func Load() (*Config, error) {
	return LoadFrom(configFilePath())
}

// LoadFrom is Load with an explicit config file path. An empty path skips
// the file layer.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			data, err := os.ReadFile(path)
			if err != nil {
				return nil, fmt.Errorf("read config file %s: %w", path, err)
			}
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config file %s: %w", path, err)
			}
		}
	}

	if err := envconfig.Process("POKER", cfg); err != nil {
		return nil, fmt.Errorf("load config from env: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

var structValidator = validator.New()

// validate checks field constraints and the cross-field rules the tags
// cannot express.
func (c *Config) validate() error {
	if err := structValidator.Struct(c); err != nil {
		return err
	}

	if c.Source.Kind == "sheets" && !c.Source.SheetsConfigured() {
		return fmt.Errorf("source kind is sheets but spreadsheet id or credentials are missing")
	}
	if c.Source.Kind == "file" && c.Source.FilePath == "" {
		return fmt.Errorf("source kind is file but no file path is configured")
	}
	if (c.Logging.Output == "file" || c.Logging.Output == "both") && c.Logging.FilePath == "" {
		return fmt.Errorf("logging output %q requires a file path", c.Logging.Output)
	}
	return nil
}

// EnsureDirectories creates the directories the application writes to.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.Reports.OutputDir}
	if c.Logging.Output == "file" || c.Logging.Output == "both" {
		dirs = append(dirs, filepath.Dir(c.Logging.FilePath))
	}
	for _, dir := range dirs {
		if dir == "" || dir == "." {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}

// configFilePath returns the first config file found in the conventional
// locations, or empty when none exists.
func configFilePath() string {
	if path := os.Getenv("POKER_CONFIG_FILE"); path != "" {
		return path
	}

	locations := []string{
		"config.yaml",
		"configs/config.yaml",
	}
	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}
	return ""
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			RequestTimeout:  30 * time.Second,
			MaxHeaderBytes:  1 << 20,
			ShutdownTimeout: 30 * time.Second,
		},
		Security: SecurityConfig{
			AllowedOrigins: []string{"http://localhost:8080"},
			EnableCORS:     true,
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     100,
				Burst:   50,
			},
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "console",
			FilePath: "logs/app.log",
		},
		Source: SourceConfig{
			Kind:       "auto",
			Worksheet:  "results",
			RetryDelay: 500 * time.Millisecond,
		},
		Cache: CacheConfig{
			TTL:             15 * time.Minute,
			CleanupInterval: 30 * time.Minute,
		},
		Telemetry: TelemetryConfig{
			ServiceName:    "poker-standings",
			MetricsEnabled: true,
			TraceExporter:  "none",
		},
		Reports: ReportsConfig{
			OutputDir:      "reports",
			RecentSessions: 10,
		},
	}
}
