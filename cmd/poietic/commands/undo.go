package commands

import (
	"fmt"

	"github.com/moolen/poietic/internal/ident"
	"github.com/spf13/cobra"
)

var undoCmd = &cobra.Command{
	Use:   "undo [frameID]",
	Short: "Undo to the previous frame, or to a given frame id",
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
			undoable := d.UndoableFrames()
			if len(undoable) < 2 {
				return fmt.Errorf("nothing to undo")
			}
			target = undoable[len(undoable)-2]
		}

		if err := d.Undo(target); err != nil {
			return err
		}
		if err := saveDesign(cfg, d); err != nil {
			return err
		}
		fmt.Printf("undid to frame %d\n", target)
		return nil
	},
}
