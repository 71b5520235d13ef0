package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/liminalpurple/stocktag/internal/export"
)

// NewExportCmd creates the export command with its format subcommands
func NewExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export metadata of successfully processed items",
	}
	cmd.AddCommand(newExportCSVCmd())
	cmd.AddCommand(newExportKeywordsCmd())
	cmd.AddCommand(newExportClipboardCmd())
	return cmd
}

func newExportCSVCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "csv",
		Short: "Export agency-ready CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, closeSession, err := openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer closeSession()

			if len(s.reg.Successful()) == 0 {
				return fmt.Errorf("no successfully processed items to export")
			}
			data := export.CSV(s.reg.Items())
			if err := os.WriteFile(out, data, 0644); err != nil {
				return fmt.Errorf("failed to write CSV: %w", err)
			}
			fmt.Printf("Wrote %d item(s) to %s\n", len(s.reg.Successful()), out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "stocktag-export.csv", "output file")
	return cmd
}

func newExportKeywordsCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "keywords",
		Short: "Export a newline-joined keyword list",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, closeSession, err := openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer closeSession()

			text := export.KeywordList(s.reg.Items())
			if text == "" {
				return fmt.Errorf("no items with keywords to export")
			}
			if out == "-" {
				fmt.Println(text)
				return nil
			}
			if err := os.WriteFile(out, []byte(text+"\n"), 0644); err != nil {
				return fmt.Errorf("failed to write keyword list: %w", err)
			}
			fmt.Printf("Wrote keyword list to %s\n", out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "-", "output file ('-' for stdout)")
	return cmd
}

func newExportClipboardCmd() *cobra.Command {
	var stdout bool
	cmd := &cobra.Command{
		Use:   "clipboard",
		Short: "Copy all metadata to the system clipboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, closeSession, err := openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer closeSession()

			items := s.reg.Items()
			text := export.CopyAllText(items)
			if text == "" {
				return fmt.Errorf("no successfully processed items to copy")
			}
			if stdout {
				fmt.Println(text)
				return nil
			}
			if err := export.CopyAll(items); err != nil {
				return fmt.Errorf("failed to write clipboard: %w", err)
			}
			fmt.Printf("Copied %d item(s) to the clipboard\n", len(s.reg.Successful()))
			return nil
		},
	}
	cmd.Flags().BoolVar(&stdout, "stdout", false, "print instead of using the clipboard")
	return cmd
}
