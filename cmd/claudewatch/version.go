package main

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/claudewatch/claudewatch/internal/appupdate"
	"github.com/claudewatch/claudewatch/internal/version"
)

// NewVersionCommand prints build metadata and, best-effort, whether a
// newer release exists.
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the claudewatch version and check for updates.",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Println("claudewatch", version.String())

			res, err := appupdate.NewChecker().Check(context.Background(), version.Version)
			if err != nil {
				log.Printf("[version] update check failed: %v", err)
				return
			}
			if res.UpdateAvailable {
				fmt.Printf("update available: %s -> %s\n", res.CurrentVersion, res.LatestVersion)
			}
		},
	}
}
