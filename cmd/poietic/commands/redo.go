package commands

import (
	"fmt"

	"github.com/moolen/poietic/internal/ident"
	"github.com/spf13/cobra"
)

var redoCmd = &cobra.Command{
	Use:   "redo [frameID]",
	Short: "Redo to the next undone frame, or to a given frame id",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDesign(cfg)
		if err != nil {
			return err
		}

		var target ident.ID
		if len(args) == 1 {
			target, err = parseObjectID(args[0])
			if err != nil {
				return err
			}
		} else {
			redoable := d.RedoableFrames()
			if len(redoable) == 0 {
				return fmt.Errorf("nothing to redo")
			}
			target = redoable[0]
		}

		if err := d.Redo(target); err != nil {
			return err
		}
		if err := saveDesign(cfg, d); err != nil {
			return err
		}
		fmt.Printf("redid to frame %d\n", target)
		return nil
	},
}
