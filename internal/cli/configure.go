package cli

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/liminalpurple/stocktag/internal/config"
)

// NewConfigureCmd creates the configure command
func NewConfigureCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "configure",
		Short: "Set up API credentials and defaults",
		Long: `Interactive setup for stocktag.

Prompts for the Anthropic API key (hidden input), model name, and daily
token quota, then saves them to the configuration file.`,
		RunE: runConfigure,
	}
}

func runConfigure(cmd *cobra.Command, args []string) error {
	fmt.Println("Stocktag - Configuration")
	fmt.Println()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	reader := bufio.NewReader(os.Stdin)

	// Prompt for API key (hidden input)
	fmt.Print("Anthropic API key: ")
	keyBytes, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println() // Print newline after hidden input
	if err != nil {
		return fmt.Errorf("failed to read API key: %w", err)
	}
	if key := strings.TrimSpace(string(keyBytes)); key != "" {
		cfg.Anthropic.APIKey = key
	}

	// Prompt for model, keeping the current value on empty input
	fmt.Printf("Model [%s]: ", cfg.Anthropic.Model)
	model, err := reader.ReadString('\n')
	if err != nil {
		return fmt.Errorf("failed to read model: %w", err)
	}
	if model = strings.TrimSpace(model); model != "" {
		cfg.Anthropic.Model = model
	}

	// Prompt for daily quota
	fmt.Printf("Daily token quota [%d]: ", cfg.Quota.DailyTokens)
	quota, err := reader.ReadString('\n')
	if err != nil {
		return fmt.Errorf("failed to read quota: %w", err)
	}
	if quota = strings.TrimSpace(quota); quota != "" {
		n, err := strconv.ParseInt(quota, 10, 64)
		if err != nil || n <= 0 {
			return fmt.Errorf("invalid quota: %s", quota)
		}
		cfg.Quota.DailyTokens = n
	}

	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	configDir, _ := config.GetConfigDir()
	fmt.Println()
	fmt.Printf("Configuration saved to: %s/config.yaml\n", configDir)
	fmt.Println("You can now run 'stocktag add <files>' followed by 'stocktag process'.")

	return nil
}
