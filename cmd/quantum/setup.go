package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"quantum/internal/config"
	"quantum/internal/logging"
)

func setupColor(cmd *cobra.Command) error {
	mode, err := cmd.Flags().GetString("color")
	if err != nil {
		return err
	}
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "on", "always":
		color.NoColor = false
	case "off", "never":
		color.NoColor = true
	case "", "auto":
		color.NoColor = !isTerminal(os.Stdout) || os.Getenv("NO_COLOR") != ""
	default:
		return fmt.Errorf("invalid --color value %q (expected auto|on|off)", mode)
	}
	return nil
}

// loadConfig reads an explicit config file, or discovers one in the working
// directory. Environment overrides are applied in both cases.
func loadConfig(path string) (config.Config, error) {
	if path == "" {
		return config.Discover(".")
	}
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, err
	}
	if err := cfg.ApplyEnv(os.Getenv); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// newLogger builds the stderr logger. Flags override the config (which
// already carries environment overrides).
func newLogger(cmd *cobra.Command, cfg config.Logging) (*slog.Logger, error) {
	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.Level, _ = flags.GetString("log-level")
	}
	if flags.Changed("log-format") {
		cfg.Format, _ = flags.GetString("log-format")
	}
	return logging.Init(cmd.ErrOrStderr(), cfg.Format, cfg.Level)
}

func boolFlag(cmd *cobra.Command, name string) bool {
	v, err := cmd.Flags().GetBool(name)
	if err != nil {
		return false
	}
	return v
}
