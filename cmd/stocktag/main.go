package main

import (
	"fmt"
	"os"

	"github.com/liminalpurple/stocktag/internal/cli"
	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "stocktag",
		Short: "AI metadata tagging for stock photos and videos",
		Long: `Stocktag - batch AI metadata generation for stock photo and video submissions.

Add images and video poster frames to a session, generate titles,
descriptions, keywords, and categories in one pass, then refine fields
individually and export agency-ready CSV files.`,
		Version: version,
	}

	rootCmd.PersistentFlags().BoolVarP(&cli.Verbose, "verbose", "v", false, "enable debug logging")

	// Add commands
	rootCmd.AddCommand(cli.NewConfigureCmd())
	rootCmd.AddCommand(cli.NewAddCmd())
	rootCmd.AddCommand(cli.NewProcessCmd())
	rootCmd.AddCommand(cli.NewRegenCmd())
	rootCmd.AddCommand(cli.NewAnalyzeCmd())
	rootCmd.AddCommand(cli.NewTranslateCmd())
	rootCmd.AddCommand(cli.NewEditCmd())
	rootCmd.AddCommand(cli.NewUndoCmd())
	rootCmd.AddCommand(cli.NewRedoCmd())
	rootCmd.AddCommand(cli.NewListCmd())
	rootCmd.AddCommand(cli.NewRemoveCmd())
	rootCmd.AddCommand(cli.NewExportCmd())
	rootCmd.AddCommand(cli.NewSessionCmd())
	rootCmd.AddCommand(cli.NewQuotaCmd())

	// Execute
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
