package commands

import (
	"fmt"

	"github.com/moolen/poietic/internal/ident"
	"github.com/spf13/cobra"
)

var (
	createAttrs  []string
	createParent string
)

var createCmd = &cobra.Command{
	Use:   "create <type>",
	Short: "Create a node or unstructured object of the given metamodel type",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDesign(cfg)
		if err != nil {
			return err
		}

		typ, err := d.Metamodel().Type(args[0])
		if err != nil {
			return err
		}

		attrs, err := parseAttrFlags(createAttrs)
		if err != nil {
			return err
		}

		var deriving *ident.ID
		if id, ok := d.CurrentFrameID(); ok {
			deriving = &id
		}
		tf, err := d.CreateFrame(deriving)
		if err != nil {
			return err
		}

		newID, err := tf.Create(typ, nil, nil, nil, attrs, nil)
		if err != nil {
			return err
		}

		if createParent != "" {
			parentID, err := parseObjectID(createParent)
			if err != nil {
				return err
			}
			if err := tf.AddChild(newID, parentID); err != nil {
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
		fmt.Printf("created object %d\n", newID)
		return nil
	},
}

func init() {
	createCmd.Flags().StringArrayVar(&createAttrs, "attr", nil, "Attribute in name=value form, repeatable")
	createCmd.Flags().StringVar(&createParent, "parent", "", "Object id to attach the new object under")
}
