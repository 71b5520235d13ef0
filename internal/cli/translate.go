package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/liminalpurple/stocktag/internal/llm"
	"github.com/liminalpurple/stocktag/internal/registry"
)

// NewTranslateCmd creates the translate command
func NewTranslateCmd() *cobra.Command {
	var lang string

	cmd := &cobra.Command{
		Use:   "translate <item>",
		Short: "Translate an item's metadata into another language",
		Long: `Print a translated copy of a processed item's title, description, and
keywords. The translation is display-only and never overwrites the
stored metadata.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, closeSession, err := openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer closeSession()

			it, err := s.resolveItem(args[0])
			if err != nil {
				return err
			}
			if it.Status != registry.StatusSuccess {
				return fmt.Errorf("%s has no metadata to translate yet", it.Filename)
			}

			if s.cfg.Anthropic.APIKey == "" {
				return fmt.Errorf("no Anthropic API key configured - run 'stocktag configure' or set ANTHROPIC_API_KEY")
			}
			client := llm.NewClient(s.cfg.Anthropic.APIKey, s.cfg.Anthropic.Model, s.cfg.Anthropic.MaxTokens)

			remaining, err := s.st.RemainingTokens(cmd.Context(), s.cfg.Quota.DailyTokens)
			if err != nil {
				return fmt.Errorf("failed to check token quota: %w", err)
			}
			if remaining == 0 {
				return llm.NewError(llm.KindQuotaExceeded, fmt.Errorf("daily token quota exhausted"))
			}

			text := fmt.Sprintf("Title: %s\nDescription: %s\nKeywords: %s",
				it.Current.Title, it.Current.Description, it.Current.Keywords)
			translated, tokens, err := client.Translate(cmd.Context(), text, lang)
			if err != nil {
				var serr *llm.ServiceError
				if errors.As(err, &serr) {
					return fmt.Errorf("%s", serr.UserMessage())
				}
				return err
			}
			if err := s.st.AddTokenUsage(cmd.Context(), tokens); err != nil {
				s.log.Warn().Err(err).Msg("failed to record token usage")
			}

			fmt.Printf("Translation (%s) for %s:\n\n%s\n", lang, it.Filename, translated)
			return nil
		},
	}
	cmd.Flags().StringVar(&lang, "to", "English", "target language")
	return cmd
}
