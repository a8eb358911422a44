package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/dmitrijs2005/gophrecharge/internal/flagx"
	"github.com/dmitrijs2005/gophrecharge/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling.
// Durations are timex.Duration, so they may be strings like "5m" or integer
// nanoseconds. Absent keys leave the current value untouched.
type JsonConfig struct {
	BaseURL        *string         `json:"base_url"`
	RequestTimeout *timex.Duration `json:"request_timeout"`
	WarningDelay   *timex.Duration `json:"warning_delay"`
	LogoutDelay    *timex.Duration `json:"logout_delay"`
	DataDir        *string         `json:"data_dir"`
	Environment    *string         `json:"environment"`
	LogLevel       *string         `json:"log_level"`
	MetricsAddr    *string         `json:"metrics_addr"`
}

// parseJson overlays Config with values from the JSON file named by -c or
// -config. Without either flag it does nothing.
func parseJson(cfg *Config) error {
	path := flagx.ConfigFile(os.Args[1:])
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	setString(&cfg.BaseURL, jc.BaseURL)
	setDuration(&cfg.RequestTimeout, jc.RequestTimeout)
	setDuration(&cfg.WarningDelay, jc.WarningDelay)
	setDuration(&cfg.LogoutDelay, jc.LogoutDelay)
	setString(&cfg.DataDir, jc.DataDir)
	setString(&cfg.Environment, jc.Environment)
	setString(&cfg.LogLevel, jc.LogLevel)
	setString(&cfg.MetricsAddr, jc.MetricsAddr)
	return nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setDuration(dst *time.Duration, v *timex.Duration) {
	if v != nil {
		*dst = v.Duration
	}
}
