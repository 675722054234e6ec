// Package main is the ibadahd entrypoint: the HTTP service plus a few
// one-shot commands for the terminal.
package main

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"ibadah-companion-backend/config"
)

const defaultConfigPath = "./config/config.yaml"

var configPath string

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "ibadahd",
		Short:         "Qibla direction, prayer windows and reminders",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runServeCmd,
	}

	defaultPath := os.Getenv("CONFIG_PATH")
	if defaultPath == "" {
		defaultPath = defaultConfigPath
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", defaultPath, "path to the YAML configuration file")

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newQiblaCmd())
	rootCmd.AddCommand(newPrayerCmd())
	rootCmd.AddCommand(newHijriCmd())
	rootCmd.AddCommand(newHolidaysCmd())

	return rootCmd
}

// loadConfigOrDefault is used by the one-shot commands, which work without a
// configuration file.
func loadConfigOrDefault() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if errors.Is(err, os.ErrNotExist) {
		return config.Default()
	}
	return cfg, err
}
