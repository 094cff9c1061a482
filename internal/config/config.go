package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/kelseyhightower/envconfig"
)

// Config is loaded once at startup and treated as immutable afterwards.
// File values override defaults, environment variables override the file.
type Config struct {
	URL           string `yaml:"url" envconfig:"MONITOR_URL"`
	CheckInterval string `yaml:"check_interval" envconfig:"CHECK_INTERVAL"`
	Timeout       string `yaml:"timeout" envconfig:"TIMEOUT"`
	DBPath        string `yaml:"db_path" envconfig:"DB_PATH"`
	DatabaseURL   string `yaml:"database_url" envconfig:"DATABASE_URL"`
	DaysToKeep    int    `yaml:"days_to_keep" envconfig:"DAYS_TO_KEEP"`
	LogDir        string `yaml:"log_dir" envconfig:"LOG_DIR"`
	ReportsDir    string `yaml:"reports_dir" envconfig:"REPORTS_DIR"`
	APIAddr       string `yaml:"api_addr" envconfig:"API_ADDR"`
	QueueURL      string `yaml:"queue_url" envconfig:"QUEUE_URL"`

	Alerts AlertConfig `yaml:"alerts"`

	checkInterval time.Duration
	timeout       time.Duration
}

type AlertConfig struct {
	SMTPServer       string   `yaml:"smtp_server" envconfig:"SMTP_SERVER"`
	SMTPPort         int      `yaml:"smtp_port" envconfig:"SMTP_PORT"`
	SMTPUsername     string   `yaml:"smtp_username" envconfig:"SMTP_USERNAME"`
	SMTPPassword     string   `yaml:"smtp_password" envconfig:"SMTP_PASSWORD"`
	Recipients       []string `yaml:"alert_recipients" envconfig:"ALERT_RECIPIENTS"`
	SlackWebhookURL  string   `yaml:"slack_webhook_url" envconfig:"SLACK_WEBHOOK_URL"`
	OnFailure        bool     `yaml:"alert_on_failure" envconfig:"ALERT_ON_FAILURE"`
	OnRecovery       bool     `yaml:"alert_on_recovery" envconfig:"ALERT_ON_RECOVERY"`
	FailureThreshold int      `yaml:"consecutive_failures_threshold" envconfig:"CONSECUTIVE_FAILURES_THRESHOLD"`
}

// EmailEnabled reports whether the e-mail channel is fully configured.
// Resolved once at startup, not re-checked per alert.
func (a AlertConfig) EmailEnabled() bool {
	return a.SMTPServer != "" && a.SMTPUsername != "" && a.SMTPPassword != "" && len(a.Recipients) > 0
}

// SlackEnabled reports whether the webhook channel is configured.
func (a AlertConfig) SlackEnabled() bool {
	return a.SlackWebhookURL != ""
}

func Default() Config {
	return Config{
		CheckInterval: "5m",
		Timeout:       "10s",
		DBPath:        "uptime.db",
		DaysToKeep:    30,
		LogDir:        "logs",
		ReportsDir:    "reports",
		QueueURL:      "mem://alerts",
		Alerts: AlertConfig{
			SMTPPort:         587,
			OnFailure:        true,
			OnRecovery:       true,
			FailureThreshold: 3,
		},
	}
}

// Load reads the YAML file at path (if it exists) over the defaults, then
// applies environment overrides and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()

	raw, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("reading config file %s: %w", path, err)
	}

	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("applying environment overrides: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.URL == "" {
		return errors.New("url is required")
	}
	if c.Alerts.FailureThreshold < 1 {
		return fmt.Errorf("consecutive_failures_threshold must be >= 1, got %d", c.Alerts.FailureThreshold)
	}
	if c.DaysToKeep < 1 {
		return fmt.Errorf("days_to_keep must be >= 1, got %d", c.DaysToKeep)
	}

	var err error
	c.checkInterval, err = time.ParseDuration(c.CheckInterval)
	if err != nil {
		return fmt.Errorf("parsing check_interval: %w", err)
	}
	c.timeout, err = time.ParseDuration(c.Timeout)
	if err != nil {
		return fmt.Errorf("parsing timeout: %w", err)
	}
	if c.checkInterval <= 0 || c.timeout <= 0 {
		return errors.New("check_interval and timeout must be positive")
	}
	return nil
}

// Interval returns the parsed probe cadence.
func (c Config) Interval() time.Duration { return c.checkInterval }

// ProbeTimeout returns the parsed per-probe timeout.
func (c Config) ProbeTimeout() time.Duration { return c.timeout }
