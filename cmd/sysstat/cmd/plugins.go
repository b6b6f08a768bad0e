package cmd

// Collector modules compiled into the binary. Each registers its factory
// with plugin.Register from init.
import (
	_ "github.com/HerbHall/sysstat/plugins/example"
)
