package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var canConnectCmd = &cobra.Command{
	Use:   "can-connect <edgeType> <originID> <targetID>",
	Short: "Check whether a hypothetical edge would be allowed, without creating it",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDesign(cfg)
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

		frameID, err := currentFrame(d)
		if err != nil {
			return err
		}
		frame, _ := d.Frame(frameID)

		ok, err := d.ConstraintChecker().CanConnect(args[0], originID, targetID, frame.AsFrameView())
		if err != nil {
			return err
		}
		if ok {
			fmt.Println("yes")
			return nil
		}
		fmt.Println("no")
		return fmt.Errorf("connection not allowed")
	},
}
