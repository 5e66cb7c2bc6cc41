package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/claudewatch/claudewatch/internal/config"
	"github.com/claudewatch/claudewatch/internal/manager"
)

// NewUsageCommand prints one unified snapshot and exits, for scripting
// and shell prompts.
func NewUsageCommand(cfg config.Config) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "usage",
		Short: "Print the current usage snapshot and exit.",
		RunE: func(_ *cobra.Command, _ []string) error {
			mgr := manager.New(cfg)
			snap := mgr.GetUsageData(context.Background(), false)

			if asJSON {
				return printJSON(snap)
			}

			fmt.Printf("source        %s\n", snap.DataSource)
			fmt.Printf("limit status  %s\n", snap.LimitStatus)
			fmt.Printf("5h window     %.1f%% used, resets in %s\n",
				snap.Utilization5h*100, formatSeconds(snap.ResetIn5h))
			fmt.Printf("7d window     %.1f%% used, resets in %s\n",
				snap.Utilization7d*100, formatSeconds(snap.ResetIn7d))
			fmt.Printf("cost 5h       $%.2f\n", snap.Cost5h)
			fmt.Printf("cost today    $%.2f\n", snap.CostDay)
			fmt.Printf("cost 7d       $%.2f\n", snap.Cost7d)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "emit the snapshot as JSON")
	return cmd
}

// NewProjectsCommand prints per-workspace cost breakdowns for the
// workspaces listed in the config file.
func NewProjectsCommand(cfg config.Config) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "projects",
		Short: "Print per-project cost breakdowns and exit.",
		RunE: func(_ *cobra.Command, _ []string) error {
			mgr := manager.New(cfg)
			mgr.RefreshProjectCosts()
			projects := mgr.LastProjectCosts()

			if asJSON {
				return printJSON(projects)
			}

			if len(projects) == 0 {
				fmt.Println("no workspaces configured; add paths to the workspaces list in", config.ConfigPath())
				return nil
			}
			for _, p := range projects {
				fmt.Printf("%-24s today $%7.2f   7d $%8.2f   30d $%8.2f   %d sessions\n",
					p.ProjectName, p.CostToday, p.Cost7d, p.Cost30d, p.SessionCount)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "emit project costs as JSON")
	return cmd
}

// NewPredictCommand prints the burn-rate forecast and exits. The exit
// code reflects whether starting a heavy task is advisable, so the
// command can gate scripts.
func NewPredictCommand(cfg config.Config) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Print the spend forecast and recommendation, exit 1 if a heavy task is inadvisable.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			mgr := manager.New(cfg)
			mgr.Refresh(context.Background())
			pred, ok := mgr.LastPrediction()
			if !ok {
				fmt.Fprintln(os.Stderr, "no forecast available")
				os.Exit(1)
			}

			if asJSON {
				if err := printJSON(pred); err != nil {
					return err
				}
			} else {
				if pred.BurnRateUSDPerHour > 0 {
					fmt.Printf("burn rate     $%.2f/h\n", pred.BurnRateUSDPerHour)
				}
				if pred.ExhaustionInSeconds != nil {
					fmt.Printf("exhaustion    in %s\n", formatSeconds(*pred.ExhaustionInSeconds))
				}
				if pred.BudgetRemaining != nil {
					fmt.Printf("budget left   $%.2f\n", *pred.BudgetRemaining)
				}
				fmt.Println(pred.Recommendation)
			}

			if !pred.SafeToStartHeavyTask {
				cmd.SilenceUsage = true
				os.Exit(1)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "emit the forecast as JSON")
	return cmd
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func formatSeconds(seconds float64) string {
	d := time.Duration(seconds * float64(time.Second)).Round(time.Minute)
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	if h > 0 {
		return fmt.Sprintf("%dh %02dm", h, m)
	}
	return fmt.Sprintf("%dm", m)
}
