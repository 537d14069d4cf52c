package commands

import (
	"fmt"
	"sort"

	"github.com/moolen/poietic/internal/graph"
	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Show the current frame's objects, or the detail of one object",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDesign(cfg)
		if err != nil {
			return err
		}
		frameID, err := currentFrame(d)
		if err != nil {
			return err
		}
		frame, _ := d.Frame(frameID)

		if len(args) == 1 {
			id, err := parseObjectID(args[0])
			if err != nil {
				return err
			}
			snap, ok := frame.Object(id)
			if !ok {
				return fmt.Errorf("no object %d in frame %d", id, frameID)
			}
			printSnapshot(snap)
			return nil
		}

		objects := frame.AllObjects()
		sort.Slice(objects, func(i, j int) bool { return objects[i].ObjectID() < objects[j].ObjectID() })
		fmt.Printf("frame %d: %d objects\n", frameID, len(objects))
		for _, snap := range objects {
			fmt.Printf("  %6d  %-20s %s\n", snap.ObjectID(), snap.TypeName(), snap.Structure())
		}
		return nil
	},
}

func printSnapshot(snap *graph.Snapshot) {
	fmt.Printf("object    %d\n", snap.ObjectID())
	fmt.Printf("snapshot  %d\n", snap.SnapshotID())
	fmt.Printf("type      %s\n", snap.TypeName())
	fmt.Printf("structure %s\n", snap.Structure())
	if origin, ok := snap.Origin(); ok {
		target, _ := snap.Target()
		fmt.Printf("origin    %d\n", origin)
		fmt.Printf("target    %d\n", target)
	}
	if parent, ok := snap.Parent(); ok {
		fmt.Printf("parent    %d\n", parent)
	}
	if children := snap.Children(); len(children) > 0 {
		fmt.Printf("children  %v\n", children)
	}
	attrs := snap.Attributes()
	names := make([]string, 0, len(attrs))
	for name := range attrs {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		str, err := attrs[name].StringValue()
		if err != nil {
			str = fmt.Sprintf("<%s>", attrs[name].ElementType())
		}
		fmt.Printf("  %s = %s\n", name, str)
	}
}
