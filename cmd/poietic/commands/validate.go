package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Diagnose the current frame against the metamodel, reporting every violation",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDesign(cfg)
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

		result := d.ConstraintChecker().Diagnose(tf)
		if result.OK() {
			fmt.Println("ok: no violations")
			return nil
		}

		for _, e := range result.StructuralErrors {
			fmt.Printf("structural: %v\n", e)
		}
		for id, errs := range result.ObjectErrors {
			for _, e := range errs {
				fmt.Printf("object %d: %v\n", id, e)
			}
		}
		for id, errs := range result.EdgeRuleViolations {
			for _, e := range errs {
				fmt.Printf("edge %d: %v\n", id, e)
			}
		}
		for name, ids := range result.ConstraintViolations {
			fmt.Printf("constraint %q: violated by %v\n", name, ids)
		}
		return fmt.Errorf("validation failed")
	},
}
