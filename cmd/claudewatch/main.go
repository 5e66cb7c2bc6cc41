package main

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/claudewatch/claudewatch/internal/config"
	"github.com/claudewatch/claudewatch/internal/manager"
	"github.com/claudewatch/claudewatch/internal/tui"
	"github.com/claudewatch/claudewatch/internal/version"
)

func main() {
	if os.Getenv("CLAUDEWATCH_DEBUG") != "" {
		log.SetOutput(os.Stderr)
	} else {
		log.SetOutput(io.Discard)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		fmt.Fprintf(os.Stderr, "Config path: %s\n", config.ConfigPath())
		os.Exit(1)
	}

	root := cobra.Command{
		Use:     "claudewatch",
		Short:   "claudewatch is a terminal dashboard for Claude Code usage, rate limits and spend forecasts.",
		Version: version.String(),
		RunE: func(_ *cobra.Command, _ []string) error {
			return tui.Run(cfg, manager.New(cfg))
		},
	}

	root.AddCommand(NewUsageCommand(cfg))
	root.AddCommand(NewProjectsCommand(cfg))
	root.AddCommand(NewPredictCommand(cfg))
	root.AddCommand(NewWatchCommand(cfg))
	root.AddCommand(NewVersionCommand())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
