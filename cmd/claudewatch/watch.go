package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/claudewatch/claudewatch/internal/config"
	"github.com/claudewatch/claudewatch/internal/manager"
)

// NewWatchCommand runs the refresh loop and log watcher headlessly,
// printing one line per snapshot. Suited to piping into other tools or
// leaving in a spare terminal.
func NewWatchCommand(cfg config.Config) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Follow usage continuously, printing one line per refresh, until interrupted.",
		RunE: func(_ *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			mgr := manager.New(cfg)
			mgr.Subscribe(func(snap manager.Snapshot) {
				if asJSON {
					_ = printJSON(snap)
					return
				}
				fmt.Printf("%s  5h %5.1f%%  7d %5.1f%%  %s  cost 5h $%.2f today $%.2f  [%s]\n",
					snap.LastUpdated.Format(time.TimeOnly),
					snap.Utilization5h*100, snap.Utilization7d*100,
					snap.LimitStatus,
					snap.Cost5h, snap.CostDay,
					snap.DataSource)
			})

			go func() { _ = mgr.Watch(ctx) }()
			mgr.Run(ctx)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "emit each snapshot as JSON")
	return cmd
}
