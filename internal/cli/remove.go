package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewRemoveCmd creates the remove command
func NewRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <items...>",
		Short: "Remove items from the session",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, closeSession, err := openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer closeSession()

			removed := 0
			for _, ref := range args {
				it, err := s.resolveItem(ref)
				if err != nil {
					fmt.Println(err)
					continue
				}
				if err := s.reg.Remove(it.ID); err != nil {
					fmt.Println(err)
					continue
				}
				removed++
				fmt.Printf("Removed %s\n", it.Filename)
			}
			if removed == 0 {
				return fmt.Errorf("no items removed")
			}
			return nil
		},
	}
}
