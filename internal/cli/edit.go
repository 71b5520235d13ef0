package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/liminalpurple/stocktag/internal/registry"
)

// NewEditCmd creates the edit command
func NewEditCmd() *cobra.Command {
	var (
		title, description, keywords, category, altText string
		editorialOn, editorialOff                       bool
		city, region, date, fact                        string
	)

	cmd := &cobra.Command{
		Use:   "edit <item>",
		Short: "Edit metadata fields for one item",
		Long: `Record metadata edits for one item. Each invocation appends one or
more history snapshots, so every change can be undone.

Editorial handling: --editorial toggles the flag on (adding the
"editorial" keyword and applying the caption prefix built from
city/region/date/fact); --no-editorial toggles it off, stripping the
prefix and clearing the editorial fields. Changing --city/--region/
--date/--fact re-derives the prefix in a single atomic snapshot.`,
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
			if it.Status == registry.StatusProcessing {
				return fmt.Errorf("%s is being processed and cannot be edited", it.Filename)
			}

			updated := it.Clone()
			var intents []registry.EditIntent

			flags := cmd.Flags()
			if flags.Changed("title") {
				intents = append(intents, registry.TitleEdit{Value: title})
			}
			if flags.Changed("description") {
				intents = append(intents, registry.DescriptionEdit{Value: description})
			}
			if flags.Changed("keywords") {
				intents = append(intents, registry.KeywordsEdit{Value: keywords})
			}
			if flags.Changed("category") {
				intents = append(intents, registry.CategoryEdit{Value: category})
			}
			if flags.Changed("alt") {
				intents = append(intents, registry.AltTextEdit{Value: altText})
			}
			if flags.Changed("city") || flags.Changed("region") || flags.Changed("date") || flags.Changed("fact") {
				fields := registry.EditorialFieldsEdit{
					City:   updated.Current.EditorialCity,
					Region: updated.Current.EditorialRegion,
					Date:   updated.Current.EditorialDate,
					Fact:   updated.Current.EditorialFact,
				}
				if flags.Changed("city") {
					fields.City = city
				}
				if flags.Changed("region") {
					fields.Region = region
				}
				if flags.Changed("date") {
					fields.Date = date
				}
				if flags.Changed("fact") {
					fields.Fact = fact
				}
				intents = append(intents, fields)
			}
			if editorialOn {
				intents = append(intents, registry.EditorialToggle{On: true})
			}
			if editorialOff {
				intents = append(intents, registry.EditorialToggle{On: false})
			}

			if len(intents) == 0 {
				return fmt.Errorf("nothing to edit - pass at least one field flag")
			}

			for _, intent := range intents {
				registry.RecordEdit(updated, intent)
			}
			if err := s.reg.Replace(updated); err != nil {
				return err
			}

			fmt.Printf("Recorded %d edit(s) for %s (history: %d snapshots)\n",
				len(intents), updated.Filename, len(updated.History))
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "set the title")
	cmd.Flags().StringVar(&description, "description", "", "set the description")
	cmd.Flags().StringVar(&keywords, "keywords", "", "set the comma-joined keywords")
	cmd.Flags().StringVar(&category, "category", "", "set the category")
	cmd.Flags().StringVar(&altText, "alt", "", "set the alt text")
	cmd.Flags().BoolVar(&editorialOn, "editorial", false, "turn the editorial flag on")
	cmd.Flags().BoolVar(&editorialOff, "no-editorial", false, "turn the editorial flag off")
	cmd.Flags().StringVar(&city, "city", "", "editorial city")
	cmd.Flags().StringVar(&region, "region", "", "editorial region/country")
	cmd.Flags().StringVar(&date, "date", "", "editorial date")
	cmd.Flags().StringVar(&fact, "fact", "", "editorial fact")
	return cmd
}

// NewUndoCmd creates the undo command
func NewUndoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "undo <item>",
		Short: "Undo the last edit for one item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistoryStep(cmd, args[0], registry.Undo, "undo")
		},
	}
}

// NewRedoCmd creates the redo command
func NewRedoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "redo <item>",
		Short: "Redo a previously undone edit for one item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistoryStep(cmd, args[0], registry.Redo, "redo")
		},
	}
}

func runHistoryStep(cmd *cobra.Command, ref string, step func(*registry.Item) bool, name string) error {
	s, closeSession, err := openSession(cmd.Context())
	if err != nil {
		return err
	}
	defer closeSession()

	it, err := s.resolveItem(ref)
	if err != nil {
		return err
	}

	updated := it.Clone()
	if !step(updated) {
		fmt.Printf("Nothing to %s for %s.\n", name, it.Filename)
		return nil
	}
	if err := s.reg.Replace(updated); err != nil {
		return err
	}

	fmt.Printf("%s: now at snapshot %d of %d\n", updated.Filename, updated.HistoryIndex+1, len(updated.History))
	fmt.Printf("  Title: %s\n", updated.Current.Title)
	return nil
}
