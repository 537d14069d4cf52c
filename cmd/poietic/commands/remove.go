package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var removeCmd = &cobra.Command{
	Use:   "remove <id>",
	Short: "Remove an object, cascading to its children and incident edges",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDesign(cfg)
		if err != nil {
			return err
		}
		objectID, err := parseObjectID(args[0])
		if err != nil {
			return err
		}

		frameID, err := currentFrame(d)
		if err != nil {
			return err
		}
		tf, err := d.CreateFrame(&frameID)
		if err != nil {
			return err
		}

		if !tf.Contains(objectID) {
			return fmt.Errorf("no object %d in current frame", objectID)
		}
		removed := tf.RemoveCascading(objectID)

		if _, err := d.Accept(tf); err != nil {
			d.Discard(tf)
			return fmt.Errorf("rejected: %w", err)
		}

		if err := saveDesign(cfg, d); err != nil {
			return err
		}
		fmt.Printf("removed %d object(s): %v\n", len(removed), removed)
		return nil
	},
}
