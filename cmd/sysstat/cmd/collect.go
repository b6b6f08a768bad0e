package cmd

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/HerbHall/sysstat/internal/registry"
	"github.com/HerbHall/sysstat/pkg/plugin"
)

var (
	collectDateFormat string
	collectHuman      bool
	collectQuery      map[string]string
	collectWait       time.Duration
)

var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Print one metrics snapshot and exit",
	Long: "Run every collector once and print the merged JSON document.\n" +
		"Background collectors such as cpu_load only report a value after\n" +
		"--wait has covered two of their sampling intervals.",
	RunE: runCollect,
}

func init() {
	collectCmd.Flags().StringVar(&collectDateFormat, "date-format", "epoch", "date format: epoch, local or utc")
	collectCmd.Flags().BoolVar(&collectHuman, "human-readable", false, "print sizes in MiB")
	collectCmd.Flags().StringToStringVar(&collectQuery, "query", nil, "extra collector parameters, e.g. interface=eth0")
	collectCmd.Flags().DurationVar(&collectWait, "wait", 0, "time to let background collectors sample first")
	rootCmd.AddCommand(collectCmd)
}

func runCollect(cmd *cobra.Command, _ []string) error {
	df, err := plugin.ParseDateFormat(collectDateFormat)
	if err != nil {
		return fmt.Errorf("sysstat collect: %w", err)
	}

	s, err := loadSettings()
	if err != nil {
		return fmt.Errorf("sysstat collect: %w", err)
	}
	// Keep stdout clean for the document.
	logger, err := newLogger(s.Log)
	if err != nil {
		return fmt.Errorf("sysstat collect: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	a, err := newApp(s, newSource(), logger, plugin.Factories())
	if err != nil {
		return fmt.Errorf("sysstat collect: %w", err)
	}

	ctx := cmd.Context()
	a.registry.StartAll(ctx)
	defer a.registry.StopAll()

	if collectWait > 0 {
		select {
		case <-time.After(collectWait):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	query := make(map[string]string, len(collectQuery))
	for k, v := range collectQuery {
		query[k] = v
	}
	cfg := &plugin.StatsConfig{
		DateFormat:    df,
		HumanReadable: collectHuman,
		QueryOther:    query,
		PluginConfig:  s.PluginConfig,
	}

	resp := registry.NewAggregator(a.registry, logger.Named("aggregator"), a.metrics).Collect(ctx, cfg)
	out, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		logger.Error("encode snapshot", zap.Error(err))
		return fmt.Errorf("sysstat collect: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}
