package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// NewProcessCmd creates the process command
func NewProcessCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "process",
		Short: "Generate metadata for all unprocessed items",
		Long: `Walk unprocessed items one at a time and generate title, description,
keywords, category, and editorial metadata for each via the AI service.

Items are processed strictly in submission order so each generation can
be biased away from titles and keywords already used earlier in the
batch. One item's failure never aborts the rest. Ctrl+C stops the batch
between items; the item in flight completes or fails normally.`,
		RunE: runProcess,
	}
}

func runProcess(cmd *cobra.Command, args []string) error {
	s, closeSession, err := openSession(cmd.Context())
	if err != nil {
		return err
	}
	defer closeSession()

	pending := s.reg.Unprocessed()
	if len(pending) == 0 {
		fmt.Println("Nothing to process.")
		return nil
	}

	p, err := s.newProcessor()
	if err != nil {
		return err
	}

	// Ctrl+C requests cooperative cancellation between items.
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ids := make([]string, len(pending))
	for i, it := range pending {
		ids[i] = it.ID
	}

	fmt.Printf("Processing %d item(s)...\n", len(ids))
	sum := p.ProcessBatch(ctx, ids)

	fmt.Printf("\nDone: %d processed, %d failed, %d skipped", sum.Processed, sum.Failed, sum.Skipped)
	if sum.Cancelled {
		fmt.Print(" (cancelled)")
	}
	fmt.Println()

	for _, it := range s.reg.Items() {
		if it.ErrorMessage != "" {
			fmt.Fprintf(os.Stderr, "  %s: %s\n", it.Filename, it.ErrorMessage)
		}
	}

	return nil
}
