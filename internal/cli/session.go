package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/liminalpurple/stocktag/internal/session"
)

// NewSessionCmd creates the session command with export/import/clear subcommands
func NewSessionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Archive, restore, or clear the tagging session",
	}
	cmd.AddCommand(newSessionExportCmd())
	cmd.AddCommand(newSessionImportCmd())
	cmd.AddCommand(newSessionClearCmd())
	return cmd
}

func newSessionExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export <file.zip>",
		Short: "Write the session to a ZIP archive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			if !strings.HasSuffix(path, ".zip") {
				path += ".zip"
			}

			s, closeSession, err := openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer closeSession()

			items := s.reg.Items()
			if len(items) == 0 {
				return fmt.Errorf("session is empty, nothing to export")
			}

			f, err := os.Create(path)
			if err != nil {
				return fmt.Errorf("failed to create archive: %w", err)
			}
			if err := session.Export(f, items); err != nil {
				f.Close()
				os.Remove(path)
				return fmt.Errorf("failed to export session: %w", err)
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("failed to close archive: %w", err)
			}
			fmt.Printf("Exported %d item(s) to %s\n", len(items), path)
			return nil
		},
	}
}

func newSessionImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.zip>",
		Short: "Replace the session with items from a ZIP archive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("failed to open archive: %w", err)
			}
			defer f.Close()
			info, err := f.Stat()
			if err != nil {
				return fmt.Errorf("failed to stat archive: %w", err)
			}

			// Parse the whole archive before touching the current
			// session so a corrupt file leaves it untouched.
			items, err := session.Import(f, info.Size())
			if err != nil {
				return fmt.Errorf("failed to import session: %w", err)
			}

			s, closeSession, err := openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer closeSession()

			s.reg.Clear()
			for _, it := range items {
				s.reg.Add(it)
			}
			fmt.Printf("Imported %d item(s) from %s\n", len(items), args[0])
			fmt.Println("Restored items keep their metadata but cannot be regenerated.")
			return nil
		},
	}
}

func newSessionClearCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove all items from the session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("refusing to clear the session without --yes")
			}
			s, closeSession, err := openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer closeSession()

			n := s.reg.Len()
			s.reg.Clear()
			fmt.Printf("Removed %d item(s)\n", n)
			return nil
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm clearing the session")
	return cmd
}
