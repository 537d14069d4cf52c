package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var setCmd = &cobra.Command{
	Use:   "set <id> <name=value>...",
	Short: "Set one or more attributes on an existing object",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDesign(cfg)
		if err != nil {
			return err
		}
		objectID, err := parseObjectID(args[0])
		if err != nil {
			return err
		}
		attrs, err := parseAttrFlags(args[1:])
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
		for name, v := range attrs {
			if err := tf.SetAttribute(objectID, name, v); err != nil {
				return err
			}
		}

		if _, err := d.Accept(tf); err != nil {
			d.Discard(tf)
			return fmt.Errorf("rejected: %w", err)
		}

		if err := saveDesign(cfg, d); err != nil {
			return err
		}
		fmt.Printf("updated object %d\n", objectID)
		return nil
	},
}
