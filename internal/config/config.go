package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	ferrors "git.home.luguber.info/inful/overfastsite/internal/foundation/errors"
)

// DefaultAPIBaseURL is the public OverFast API.
const DefaultAPIBaseURL = "https://overfast-api.tekrop.fr"

// Environment variables that override file values.
const (
	EnvAPIBaseURL = "OVERFAST_API_BASE_URL"
	EnvLogLevel   = "OVERFASTSITE_LOG_LEVEL"
)

// Config represents the generator configuration.
type Config struct {
	API     APIConfig     `yaml:"api"`
	Site    SiteConfig    `yaml:"site"`
	Output  OutputConfig  `yaml:"output"`
	Log     LogConfig     `yaml:"log"`
	Metrics MetricsConfig `yaml:"metrics,omitempty"`
	History HistoryConfig `yaml:"history,omitempty"`
	Notify  NotifyConfig  `yaml:"notify,omitempty"`
	Serve   ServeConfig   `yaml:"serve,omitempty"`
}

// APIConfig points the fetcher and the in-page script at the upstream API.
type APIConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout,omitempty"`
}

// SiteConfig controls page chrome.
type SiteConfig struct {
	Title string `yaml:"title"`
	// Intro is Markdown rendered below the page heading.
	Intro      string `yaml:"intro,omitempty"`
	Stylesheet string `yaml:"stylesheet,omitempty"`
}

// OutputConfig represents output configuration.
type OutputConfig struct {
	Directory string `yaml:"directory"`
}

// LogConfig selects slog level and handler.
type LogConfig struct {
	Level  string `yaml:"level,omitempty"`
	Format string `yaml:"format,omitempty"`
}

// MetricsConfig enables the Prometheus textfile written after each run.
type MetricsConfig struct {
	Textfile string `yaml:"textfile,omitempty"`
}

// HistoryConfig enables the SQLite run history.
type HistoryConfig struct {
	Path string `yaml:"path,omitempty"`
}

// NotifyConfig enables publishing run reports to NATS JetStream.
type NotifyConfig struct {
	NATSURL string `yaml:"nats_url,omitempty"`
	Subject string `yaml:"subject,omitempty"`
}

// ServeConfig configures the serve command.
type ServeConfig struct {
	Addr     string        `yaml:"addr,omitempty"`
	Interval time.Duration `yaml:"interval,omitempty"`
}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults fills unset fields.
func (c *Config) ApplyDefaults() {
	if c.API.BaseURL == "" {
		c.API.BaseURL = DefaultAPIBaseURL
	}
	c.API.BaseURL = strings.TrimRight(c.API.BaseURL, "/")
	if c.API.Timeout <= 0 {
		c.API.Timeout = 30 * time.Second
	}
	if c.Site.Title == "" {
		c.Site.Title = "OverFast API Website"
	}
	if c.Site.Stylesheet == "" {
		c.Site.Stylesheet = "https://cdn.jsdelivr.net/npm/tailwindcss@2.2.19/dist/tailwind.min.css"
	}
	if c.Output.Directory == "" {
		c.Output.Directory = "."
	}
	c.Log.Level = string(NormalizeLogLevel(c.Log.Level))
	c.Log.Format = string(NormalizeLogFormat(c.Log.Format))
	if c.Notify.NATSURL != "" && c.Notify.Subject == "" {
		c.Notify.Subject = "overfastsite.generated"
	}
	if c.Serve.Addr == "" {
		c.Serve.Addr = ":8080"
	}
	if c.Serve.Interval <= 0 {
		c.Serve.Interval = time.Hour
	}
}

// Load reads configuration from configPath. A missing file is not an error:
// the defaults are returned so the generator runs with no setup at all.
func Load(configPath string) (*Config, error) {
	if err := LoadDotEnv(); err != nil {
		return nil, err
	}

	var cfg Config
	data, err := os.ReadFile(configPath)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "read config file").
			Fatal().
			WithContext("path", configPath).
			Build()
	default:
		expanded := os.ExpandEnv(string(data))
		if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
			return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "parse config file").
				Fatal().
				UserAction().
				WithContext("path", configPath).
				Build()
		}
	}

	applyEnvOverrides(&cfg)
	cfg.ApplyDefaults()

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv(EnvAPIBaseURL)); v != "" {
		cfg.API.BaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.Log.Level = v
	}
}

// Init writes an example configuration file.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return ferrors.ConfigError(fmt.Sprintf("configuration file already exists: %s (use --force to overwrite)", configPath)).Build()
	}

	example := Default()
	example.Site.Intro = "Reference data from the **OverFast API**. Click a hero for details."
	example.History.Path = "overfastsite.db"

	data, err := yaml.Marshal(example)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(configPath, data, 0o600); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "write config file").
			WithContext("path", configPath).
			Build()
	}
	return nil
}
