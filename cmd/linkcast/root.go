// Package main provides the entry point for the linkcast CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for linkcast.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "linkcast",
		Short: "Scan pages for links and publish media to social platforms",
		Long: `linkcast scans web pages for their internal and external links and
publishes media files to YouTube, Instagram, LinkedIn, and TikTok.

Links to social media sites are excluded from scan results by default.
Scan results and upload responses are stored in a local SQLite database
so that they can be reviewed later with "linkcast history".`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().Bool("log-json", false, "Write logs to stderr as JSON lines")

	// Add subcommands
	cmd.AddCommand(NewScanCmd())
	cmd.AddCommand(NewUploadCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
