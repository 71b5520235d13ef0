package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/liminalpurple/stocktag/internal/llm"
)

// NewRegenCmd creates the regen command
func NewRegenCmd() *cobra.Command {
	var field string

	cmd := &cobra.Command{
		Use:   "regen <item>",
		Short: "Regenerate one metadata field for one item",
		Long: `Regenerate a single field (title, description, alt, or keywords) for
one item, using its current edited values as context. The result is
recorded as a new history snapshot, so it can be undone.

Restored items (imported without their original file) cannot be
regenerated.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRegen(cmd, args[0], field)
		},
	}
	cmd.Flags().StringVarP(&field, "field", "f", "title", "field to regenerate: title, description, alt, keywords")
	return cmd
}

func runRegen(cmd *cobra.Command, ref, field string) error {
	switch llm.Field(field) {
	case llm.FieldTitle, llm.FieldDescription, llm.FieldAltText, llm.FieldKeywords:
	default:
		return fmt.Errorf("unknown field %q (valid: title, description, alt, keywords)", field)
	}

	s, closeSession, err := openSession(cmd.Context())
	if err != nil {
		return err
	}
	defer closeSession()

	it, err := s.resolveItem(ref)
	if err != nil {
		return err
	}

	p, err := s.newProcessor()
	if err != nil {
		return err
	}

	if err := p.RegenerateField(cmd.Context(), it.ID, llm.Field(field)); err != nil {
		return err
	}

	updated, err := s.reg.Get(it.ID)
	if err != nil {
		return err
	}
	fmt.Printf("Regenerated %s for %s:\n", field, updated.Filename)
	switch llm.Field(field) {
	case llm.FieldTitle:
		fmt.Println(updated.Current.Title)
	case llm.FieldDescription:
		fmt.Println(updated.Current.Description)
	case llm.FieldAltText:
		fmt.Println(updated.Current.AltText)
	case llm.FieldKeywords:
		fmt.Println(updated.Current.Keywords)
	}
	return nil
}

// NewAnalyzeCmd creates the analyze command
func NewAnalyzeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "analyze <item>",
		Short: "Run deep keyword-suggestion analysis for one item",
		Args:  cobra.ExactArgs(1),
		RunE:  runAnalyze,
	}
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	s, closeSession, err := openSession(cmd.Context())
	if err != nil {
		return err
	}
	defer closeSession()

	it, err := s.resolveItem(args[0])
	if err != nil {
		return err
	}

	p, err := s.newProcessor()
	if err != nil {
		return err
	}

	if err := p.AnalyzeItem(cmd.Context(), it.ID); err != nil {
		return err
	}

	updated, err := s.reg.Get(it.ID)
	if err != nil {
		return err
	}
	a := updated.Analysis
	if a == nil {
		return fmt.Errorf("analysis produced no result for %s", updated.Filename)
	}
	fmt.Printf("Analysis for %s:\n", updated.Filename)
	printList := func(label string, values []string) {
		if len(values) == 0 {
			return
		}
		fmt.Printf("  %-9s", label+":")
		for i, v := range values {
			if i > 0 {
				fmt.Print(", ")
			}
			fmt.Print(v)
		}
		fmt.Println()
	}
	printList("objects", a.Objects)
	printList("concepts", a.Concepts)
	printList("colors", a.Colors)
	printList("style", a.Style)
	printList("lighting", a.Lighting)
	return nil
}
