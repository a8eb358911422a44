// Package config loads runtime configuration for the recharge client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Environment variables RECHARGE_*, after loading an optional .env file.
//  3. Optional JSON file selected via flags: -c or -config.
//  4. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string   base URL of the recharge API
//	-t int      request timeout (seconds)
//	-w int      inactivity before the logout warning (seconds)
//	-l int      time after the warning before forced logout (seconds)
//	-d string   data directory
//	-e string   development | production
//	-v string   log level
//	-m string   metrics listen address
//
// # JSON schema
//
// Durations use timex.Duration, so values can be strings like "5m" or
// integer nanoseconds:
//
//	{
//	  "base_url": "https://api.example.com/api/",
//	  "request_timeout": "15s",
//	  "warning_delay": "25m",
//	  "logout_delay": "5m",
//	  "data_dir": ".gophrecharge",
//	  "environment": "production",
//	  "log_level": "info",
//	  "metrics_addr": "127.0.0.1:9100"
//	}
package config
