package main

import (
	"flag"
	"fmt"
	"os"
)

// CLIConfig holds command-line configuration
type CLIConfig struct {
	ConfigPath  string
	Endpoint    string
	ShowVersion bool
	ShowHelp    bool
	Validate    bool
}

func parseAndValidateFlags() (*CLIConfig, bool, error) {
	cfg := parseFlags()

	if cfg.ShowVersion {
		fmt.Printf("%s version %s\n", appName, Version)
		return cfg, true, nil
	}
	if cfg.ShowHelp {
		printDetailedHelp()
		return cfg, true, nil
	}

	if err := validateFlags(cfg); err != nil {
		return nil, false, fmt.Errorf("invalid flags: %w", err)
	}
	return cfg, false, nil
}

func parseFlags() *CLIConfig {
	cfg := &CLIConfig{}

	flag.StringVar(&cfg.ConfigPath, "config",
		getEnv("SURFACESTREAM_CONFIG", ""),
		"Path to configuration file (env: SURFACESTREAM_CONFIG)")

	flag.StringVar(&cfg.ConfigPath, "c",
		getEnv("SURFACESTREAM_CONFIG", ""),
		"Path to configuration file (env: SURFACESTREAM_CONFIG)")

	flag.StringVar(&cfg.Endpoint, "endpoint", "",
		"Agent stream URL, overrides the config file (env: SURFACESTREAM_ENDPOINT)")

	flag.BoolVar(&cfg.ShowVersion, "version", false, "Show version information")
	flag.BoolVar(&cfg.ShowVersion, "v", false, "Show version information")
	flag.BoolVar(&cfg.ShowHelp, "help", false, "Show help information")
	flag.BoolVar(&cfg.ShowHelp, "h", false, "Show help information")
	flag.BoolVar(&cfg.Validate, "validate", false, "Validate configuration and exit")

	flag.Usage = printDetailedHelp
	flag.Parse()

	return cfg
}

func validateFlags(cfg *CLIConfig) error {
	if cfg.ConfigPath != "" {
		if _, err := os.Stat(cfg.ConfigPath); err != nil {
			return fmt.Errorf("config file not found: %s", cfg.ConfigPath)
		}
	}
	return nil
}

func printDetailedHelp() {
	_, _ = fmt.Fprintf(os.Stderr, `%s - Surface Stream Mirror

Connects to a surface agent's event stream and maintains a local mirror of
its surfaces, logging lifecycle events as they happen.

USAGE:
    %s [OPTIONS]

OPTIONS:
    -config, -c PATH    Path to configuration file (JSON or YAML)
    -endpoint URL       Agent stream URL, overrides the config file
    -validate           Validate configuration and exit
    -version, -v        Show version information
    -help, -h           Show this help

ENVIRONMENT:
    SURFACESTREAM_CONFIG       Configuration file path
    SURFACESTREAM_ENDPOINT     Agent stream URL
    SURFACESTREAM_TRANSPORT    Connection mode: http or websocket
    SURFACESTREAM_LOG_LEVEL    debug, info, warn, error
    SURFACESTREAM_LOG_FORMAT   text or json
    SURFACESTREAM_METRICS_ADDR Prometheus listen address, e.g. :9102

EXAMPLES:
    %s -endpoint https://agent.example.com/stream
    %s -config configs/agent.yaml -validate
`, appName, appName, appName, appName)
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
