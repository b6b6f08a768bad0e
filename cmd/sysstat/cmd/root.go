// Package cmd implements the sysstat CLI commands.
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/HerbHall/sysstat/internal/config"
	"github.com/HerbHall/sysstat/internal/sysinfo"
	"github.com/HerbHall/sysstat/internal/version"
)

var (
	cfgFile  string
	logLevel string
)

// newSource returns the OS metrics source used by serve and collect.
var newSource = func() sysinfo.Source { return sysinfo.NewHost() }

var rootCmd = &cobra.Command{
	Use:   "sysstat",
	Short: "sysstat reports host runtime metrics over HTTP",
	Long: "sysstat serves a JSON snapshot of this host's clock, uptime, memory,\n" +
		"cpu load, network interfaces, sockets and filesystems, built from a\n" +
		"fixed set of named collectors.",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file path (default "+config.DefaultPath+" if present)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"log level: debug, info, warn or error (overrides config)")

	rootCmd.Version = version.Short()
	rootCmd.SetVersionTemplate("{{.Version}}\n")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// loadSettings reads the config file and applies CLI overrides.
func loadSettings() (*config.Settings, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	s, err := cfg.Settings()
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		s.Log.Level = logLevel
	}
	return s, nil
}
