// Package main is the entry point for the sysstat binary.
package main

import (
	"os"

	"github.com/HerbHall/sysstat/cmd/sysstat/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
