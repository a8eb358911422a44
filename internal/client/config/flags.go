package config

import (
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dmitrijs2005/gophrecharge/internal/flagx"
)

// parseFlags populates Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   base URL of the recharge API
//	-t int      request timeout (seconds)
//	-w int      inactivity before the warning (seconds)
//	-l int      time after the warning before forced logout (seconds)
//	-d string   data directory
//	-e string   environment: development or production
//	-v string   log level
//	-m string   metrics listen address
//
// os.Args is filtered with flagx.FilterArgs so flags owned by other
// components do not break parsing.
func parseFlags(cfg *Config) error {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-t", "-w", "-l", "-d", "-e", "-v", "-m"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.BaseURL, "a", cfg.BaseURL, "base URL of the recharge API")
	timeout := fs.Int("t", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")
	warning := fs.Int("w", int(cfg.WarningDelay.Seconds()), "inactivity before the logout warning (in seconds)")
	logout := fs.Int("l", int(cfg.LogoutDelay.Seconds()), "time after the warning before logout (in seconds)")
	fs.StringVar(&cfg.DataDir, "d", cfg.DataDir, "data directory")
	fs.StringVar(&cfg.Environment, "e", cfg.Environment, "environment (development|production)")
	fs.StringVar(&cfg.LogLevel, "v", cfg.LogLevel, "log level (debug|info|warn|error)")
	fs.StringVar(&cfg.MetricsAddr, "m", cfg.MetricsAddr, "metrics listen address, empty to disable")

	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}

	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	if set["t"] {
		cfg.RequestTimeout = time.Duration(*timeout) * time.Second
	}
	if set["w"] {
		cfg.WarningDelay = time.Duration(*warning) * time.Second
	}
	if set["l"] {
		cfg.LogoutDelay = time.Duration(*logout) * time.Second
	}
	return nil
}
