package commands

import (
	"fmt"

	"github.com/moolen/poietic/internal/graph"
	"github.com/moolen/poietic/internal/ident"
	"github.com/spf13/cobra"
)

var connectAttrs []string

var connectCmd = &cobra.Command{
	Use:   "connect <edgeType> <originID> <targetID>",
	Short: "Create an edge of the given type between two existing objects",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDesign(cfg)
		if err != nil {
			return err
		}

		typ, err := d.Metamodel().Type(args[0])
		if err != nil {
			return err
		}
		originID, err := parseObjectID(args[1])
		if err != nil {
			return err
		}
		targetID, err := parseObjectID(args[2])
		if err != nil {
			return err
		}

		attrs, err := parseAttrFlags(connectAttrs)
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

		structure := graph.EdgeStructure(originID, targetID)
		newID, err := tf.Create(typ, nil, nil, &structure, attrs, nil)
		if err != nil {
			return err
		}

		if _, err := d.Accept(tf); err != nil {
			d.Discard(tf)
			return fmt.Errorf("rejected: %w", err)
		}

		if err := saveDesign(cfg, d); err != nil {
			return err
		}
		fmt.Printf("created edge %d (%d -> %d)\n", newID, originID, targetID)
		return nil
	},
}

func init() {
	connectCmd.Flags().StringArrayVar(&connectAttrs, "attr", nil, "Attribute in name=value form, repeatable")
}
