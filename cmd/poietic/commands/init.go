package commands

import (
	"fmt"
	"os"

	"github.com/moolen/poietic/internal/design"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create an empty design store bound to the configured metamodel",
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := os.Stat(cfg.ResolvedStorePath()); err == nil {
			return fmt.Errorf("store already exists at %s", cfg.ResolvedStorePath())
		}

		mm, err := loadMetamodelFile(cfg)
		if err != nil {
			return err
		}

		d := design.NewWithCacheSize(mm, nil, cfg.SnapshotCacheSize)
		if err := saveDesign(cfg, d); err != nil {
			return err
		}
		fmt.Printf("initialized empty design at %s (metamodel %q)\n", cfg.ResolvedStorePath(), mm.Name)
		return nil
	},
}
