package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"authtriage/config"
	"authtriage/internal/logger"
)

const defaultConfigName = "authtriage.yml"

var configPath string

var rootCmd = &cobra.Command{
	Use:           "authtriage",
	Short:         "Heuristic triage of SSH and PAM authentication logs",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to "+defaultConfigName)
	rootCmd.AddCommand(analyzeCmd, serveCmd, consumeCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "authtriage: %v\n", err)
		os.Exit(1)
	}
}

// findConfigFile returns the first existing config among the flag value, the
// working directory and the executable's directory, or "" when none exists.
func findConfigFile(configArg string) string {
	if configArg != "" {
		if _, err := os.Stat(configArg); err == nil {
			return configArg
		}
		fmt.Fprintf(os.Stderr, "Warning: config file not found at %s, trying default locations\n", configArg)
	}

	if _, err := os.Stat(defaultConfigName); err == nil {
		return defaultConfigName
	}

	if exePath, err := os.Executable(); err == nil {
		path := filepath.Join(filepath.Dir(exePath), defaultConfigName)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// loadConfig reads the config if one is found and fills defaults either way.
func loadConfig() (*config.Config, string, error) {
	path := findConfigFile(configPath)
	cfg := &config.Config{}
	if path != "" {
		loaded, err := config.LoadConfig(path)
		if err != nil {
			return nil, path, fmt.Errorf("load config %s: %w", path, err)
		}
		cfg = loaded
	}
	config.ApplyDefaults(cfg)
	return cfg, path, nil
}

func initLogging(cfg *config.Config) error {
	l := cfg.AuthTriage.Logging
	if err := logger.Init(l.Enabled, l.Level, l.File, l.Console); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	return nil
}
