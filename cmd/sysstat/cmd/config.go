package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration as YAML",
	Long:  "Print the configuration after defaults, the config file and SYSSTAT_* environment overrides are applied.",
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(cmd *cobra.Command, _ []string) error {
	s, err := loadSettings()
	if err != nil {
		return fmt.Errorf("sysstat config: %w", err)
	}
	out, err := s.YAML()
	if err != nil {
		return fmt.Errorf("sysstat config: %w", err)
	}
	_, err = cmd.OutOrStdout().Write(out)
	return err
}
