package server

import (
	"fmt"
	"net/url"

	"github.com/HerbHall/sysstat/pkg/plugin"
)

// Query parameters interpreted by the server. Everything else reaches the
// collectors through StatsConfig.QueryOther.
const (
	paramDateFormat    = "date_format"
	paramHumanReadable = "human_readable"
)

// parseStatsConfig builds the per-request collector configuration. When a
// parameter is repeated the last value wins.
func parseStatsConfig(q url.Values, pluginConfig plugin.ConfigValue) (*plugin.StatsConfig, error) {
	cfg := &plugin.StatsConfig{
		DateFormat:   plugin.DateEpoch,
		QueryOther:   make(map[string]string),
		PluginConfig: pluginConfig,
	}

	for key, values := range q {
		if len(values) == 0 {
			continue
		}
		value := values[len(values)-1]

		switch key {
		case paramDateFormat:
			f, err := plugin.ParseDateFormat(value)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", paramDateFormat, err)
			}
			cfg.DateFormat = f
		case paramHumanReadable:
			switch value {
			case "true":
				cfg.HumanReadable = true
			case "false":
				cfg.HumanReadable = false
			default:
				return nil, fmt.Errorf("%s: invalid value %q (want true or false)", paramHumanReadable, value)
			}
		default:
			cfg.QueryOther[key] = value
		}
	}
	return cfg, nil
}
