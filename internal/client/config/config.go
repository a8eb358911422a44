package config

import (
	"errors"
	"fmt"
	"net/url"
	"time"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Config holds runtime settings for the recharge client.
//
// Fields:
//   - BaseURL: root of the recharge API; endpoints are resolved against it.
//   - RequestTimeout: per-request deadline of the API client.
//   - WarningDelay, LogoutDelay: inactivity monitor windows.
//   - DataDir: where the local sqlite database lives.
//   - Environment: "development" or "production"; production marks the
//     stored credential Secure.
//   - LogLevel: debug, info, warn or error.
//   - MetricsAddr: host:port for the /metrics endpoint; empty disables it.
type Config struct {
	BaseURL        string        `env:"RECHARGE_BASE_URL"`
	RequestTimeout time.Duration `env:"RECHARGE_REQUEST_TIMEOUT"`
	WarningDelay   time.Duration `env:"RECHARGE_WARNING_DELAY"`
	LogoutDelay    time.Duration `env:"RECHARGE_LOGOUT_DELAY"`
	DataDir        string        `env:"RECHARGE_DATA_DIR"`
	Environment    string        `env:"RECHARGE_ENV"`
	LogLevel       string        `env:"RECHARGE_LOG_LEVEL"`
	MetricsAddr    string        `env:"RECHARGE_METRICS_ADDR"`
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.BaseURL = "http://www.gs.montviewfarm.net/api/"
	c.RequestTimeout = 15 * time.Second
	c.WarningDelay = 25 * time.Minute
	c.LogoutDelay = 5 * time.Minute
	c.DataDir = ".gophrecharge"
	c.Environment = EnvDevelopment
	c.LogLevel = "info"
	c.MetricsAddr = ""
}

func (c *Config) Production() bool {
	return c.Environment == EnvProduction
}

func (c *Config) Validate() error {
	var errs []error
	if c.RequestTimeout <= 0 {
		errs = append(errs, fmt.Errorf("request timeout must be positive, got %s", c.RequestTimeout))
	}
	if c.WarningDelay <= 0 {
		errs = append(errs, fmt.Errorf("warning delay must be positive, got %s", c.WarningDelay))
	}
	if c.LogoutDelay <= 0 {
		errs = append(errs, fmt.Errorf("logout delay must be positive, got %s", c.LogoutDelay))
	}
	if u, err := url.Parse(c.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("base url %q is not an absolute url", c.BaseURL))
	}
	if c.Environment != EnvDevelopment && c.Environment != EnvProduction {
		errs = append(errs, fmt.Errorf("environment must be %q or %q, got %q", EnvDevelopment, EnvProduction, c.Environment))
	}
	return errors.Join(errs...)
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// the environment (including a .env file), JSON (if present) and
// command-line flags (if present). Later sources take precedence over
// earlier ones.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseEnv(cfg); err != nil {
		return nil, err
	}
	if err := parseJson(cfg); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
