package main

import (
	"flag"
	"fmt"
	"os"
	"time"
)

// CLIConfig holds command-line configuration
type CLIConfig struct {
	EnvPath     string
	Publisher   string
	Timeout     time.Duration
	LogLevel    string
	LogFormat   string
	ShowVersion bool
	ShowHelp    bool
}

func parseFlags() *CLIConfig {
	cfg := &CLIConfig{}

	// Define flags with environment variable fallback
	flag.StringVar(&cfg.EnvPath, "env",
		getEnv("RSTREAM_VERIFY_ENV", ""),
		"Path to YAML environment file, empty for defaults (env: RSTREAM_VERIFY_ENV)")

	flag.StringVar(&cfg.Publisher, "publisher",
		getEnv("RSTREAM_VERIFY_PUBLISHER", "all"),
		"Publisher to verify: slice, range, channel or all (env: RSTREAM_VERIFY_PUBLISHER)")

	flag.DurationVar(&cfg.Timeout, "timeout",
		getEnvDuration("RSTREAM_VERIFY_TIMEOUT", 0),
		"Override the environment signal timeout, 0 keeps it (env: RSTREAM_VERIFY_TIMEOUT)")

	flag.StringVar(&cfg.LogLevel, "log-level",
		getEnv("RSTREAM_VERIFY_LOG_LEVEL", "info"),
		"Log level: debug, info, warn, error (env: RSTREAM_VERIFY_LOG_LEVEL)")

	flag.StringVar(&cfg.LogFormat, "log-format",
		getEnv("RSTREAM_VERIFY_LOG_FORMAT", "text"),
		"Log format: text, json (env: RSTREAM_VERIFY_LOG_FORMAT)")

	flag.BoolVar(&cfg.ShowVersion, "version", false, "Show version information")
	flag.BoolVar(&cfg.ShowVersion, "v", false, "Show version information")
	flag.BoolVar(&cfg.ShowHelp, "help", false, "Show help information")
	flag.BoolVar(&cfg.ShowHelp, "h", false, "Show help information")

	// Custom usage
	flag.Usage = printDetailedHelp

	flag.Parse()

	return cfg
}

func validateFlags(cfg *CLIConfig) error {
	// Skip validation for special flags
	if cfg.ShowVersion || cfg.ShowHelp {
		return nil
	}

	// Validate environment file exists when one is named
	if cfg.EnvPath != "" {
		if _, err := os.Stat(cfg.EnvPath); err != nil {
			return fmt.Errorf("environment file not found: %s", cfg.EnvPath)
		}
	}

	// Validate publisher selection
	validPublishers := []string{"slice", "range", "channel", "all"}
	if !contains(validPublishers, cfg.Publisher) {
		return fmt.Errorf("invalid publisher: %s", cfg.Publisher)
	}

	if cfg.Timeout < 0 {
		return fmt.Errorf("invalid timeout: %s", cfg.Timeout)
	}

	// Validate log level
	validLevels := []string{"debug", "info", "warn", "error"}
	if !contains(validLevels, cfg.LogLevel) {
		return fmt.Errorf("invalid log level: %s", cfg.LogLevel)
	}

	// Validate log format
	validFormats := []string{"text", "json"}
	if !contains(validFormats, cfg.LogFormat) {
		return fmt.Errorf("invalid log format: %s", cfg.LogFormat)
	}

	return nil
}

func printDetailedHelp() {
	_, _ = fmt.Fprintf(os.Stderr, `%s - behavioral verification for stream publishers

Usage: %s [options]

Runs the built-in reference publishers through the streaming contract
scenarios: ordered delivery under stepwise and unbounded demand, failure
on non-positive demand, cooperative cancellation, and demand accounting
under concurrent requesters.

Options:
`, appName, os.Args[0])
	flag.PrintDefaults()
	_, _ = fmt.Fprintf(os.Stderr, `
Examples:
  # Verify every built-in publisher with default settings
  %s

  # Verify only the channel publisher with a custom environment
  %s --publisher=channel --env=environment.yaml

  # Push the concurrency scenario harder via environment file
  export RSTREAM_VERIFY_ENV=/etc/rstream/verify.yaml
  %s --log-level=debug

Version: %s
Build: %s
`, os.Args[0], os.Args[0], os.Args[0], Version, BuildTime)
}

// Environment variable helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// Utility function to check if slice contains string
func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
