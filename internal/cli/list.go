package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/liminalpurple/stocktag/internal/registry"
)

// NewListCmd creates the list command
func NewListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List items in the current session",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, closeSession, err := openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer closeSession()

			items := s.reg.Items()
			if len(items) == 0 {
				fmt.Println("Session is empty. Add files with 'stocktag add'.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tFILE\tSTATUS\tTITLE")
			for _, it := range items {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", it.ID, it.Filename, statusLabel(it), it.Current.Title)
			}
			if err := w.Flush(); err != nil {
				return err
			}
			fmt.Printf("\n%d item(s), %d processed\n", len(items), len(s.reg.Successful()))
			return nil
		},
	}
}

func statusLabel(it *registry.Item) string {
	switch it.Status {
	case registry.StatusError:
		if it.ErrorMessage != "" {
			return "error: " + it.ErrorMessage
		}
		return "error"
	case registry.StatusSuccess:
		if it.Restored {
			return "restored"
		}
		return "done"
	case registry.StatusProcessing:
		return "processing"
	default:
		return "idle"
	}
}
