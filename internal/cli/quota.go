package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewQuotaCmd creates the quota command
func NewQuotaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "quota",
		Short: "Show today's token usage against the daily quota",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, closeSession, err := openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer closeSession()

			used, err := s.st.TokenUsage(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to read token usage: %w", err)
			}
			quota := s.cfg.Quota.DailyTokens
			remaining, err := s.st.RemainingTokens(cmd.Context(), quota)
			if err != nil {
				return fmt.Errorf("failed to compute remaining tokens: %w", err)
			}

			fmt.Printf("Daily quota: %d tokens\n", quota)
			fmt.Printf("Used today:  %d tokens\n", used)
			fmt.Printf("Remaining:   %d tokens\n", remaining)
			if remaining == 0 {
				fmt.Println("Quota exhausted. Processing will resume tomorrow.")
			}
			return nil
		},
	}
}
