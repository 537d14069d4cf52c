package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var framesCmd = &cobra.Command{
	Use:   "frames",
	Short: "List the design's accepted frame history",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDesign(cfg)
		if err != nil {
			return err
		}

		current, hasCurrent := d.CurrentFrameID()
		for _, id := range d.UndoableFrames() {
			marker := " "
			if hasCurrent && id == current {
				marker = "*"
			}
			fmt.Printf("%s %d\n", marker, id)
		}
		if redoable := d.RedoableFrames(); len(redoable) > 0 {
			fmt.Println("redoable:")
			for _, id := range redoable {
				fmt.Printf("  %d\n", id)
			}
		}
		for name, id := range d.NamedFrames() {
			fmt.Printf("bookmark %s -> %d\n", name, id)
		}
		return nil
	},
}
