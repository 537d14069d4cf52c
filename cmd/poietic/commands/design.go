package commands

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/moolen/poietic/internal/config"
	"github.com/moolen/poietic/internal/design"
	"github.com/moolen/poietic/internal/ident"
	"github.com/moolen/poietic/internal/metamodel"
	"github.com/moolen/poietic/internal/rawstore"
	"github.com/moolen/poietic/internal/value"
)

// loadMetamodelFile reads and parses the YAML metamodel definition named
// by cfg.MetamodelPath.
func loadMetamodelFile(cfg *config.Config) (*metamodel.Metamodel, error) {
	if cfg.MetamodelPath == "" {
		return nil, fmt.Errorf("no metamodel path configured (set --metamodel or metamodel_path)")
	}
	data, err := os.ReadFile(cfg.MetamodelPath)
	if err != nil {
		return nil, fmt.Errorf("reading metamodel %s: %w", cfg.MetamodelPath, err)
	}
	return metamodel.LoadYAML(data)
}

// openDesign builds a Design over the configured metamodel and, if a
// store file already exists at cfg.ResolvedStorePath, loads it. A
// missing store file is not an error: the caller gets a fresh, empty
// design ready to be populated and saved.
func openDesign(cfg *config.Config) (*design.Design, error) {
	mm, err := loadMetamodelFile(cfg)
	if err != nil {
		return nil, err
	}

	d := design.NewWithCacheSize(mm, nil, cfg.SnapshotCacheSize)

	data, err := os.ReadFile(cfg.ResolvedStorePath())
	if errors.Is(err, os.ErrNotExist) {
		return d, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading store %s: %w", cfg.ResolvedStorePath(), err)
	}

	raw, err := rawstore.NewReader().Read(data)
	if err != nil {
		return nil, fmt.Errorf("parsing store %s: %w", cfg.ResolvedStorePath(), err)
	}
	if err := rawstore.NewLoader(d).Load(raw); err != nil {
		return nil, fmt.Errorf("loading store %s: %w", cfg.ResolvedStorePath(), err)
	}
	return d, nil
}

// saveDesign writes d to cfg.ResolvedStorePath as indented JSON.
func saveDesign(cfg *config.Config, d *design.Design) error {
	data, err := rawstore.NewWriter().Write(d)
	if err != nil {
		return fmt.Errorf("building store: %w", err)
	}
	if err := os.WriteFile(cfg.ResolvedStorePath(), data, 0o644); err != nil {
		return fmt.Errorf("writing store %s: %w", cfg.ResolvedStorePath(), err)
	}
	return nil
}

// currentFrame returns d's current accepted frame id, erroring if the
// design has no history yet.
func currentFrame(d *design.Design) (ident.ID, error) {
	id, ok := d.CurrentFrameID()
	if !ok {
		return 0, fmt.Errorf("design has no accepted frames yet")
	}
	return id, nil
}

// parseObjectID parses a decimal object/snapshot/frame id from CLI input.
func parseObjectID(s string) (ident.ID, error) {
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q: %w", s, err)
	}
	return ident.ID(n), nil
}

// parseAttrFlags turns a list of "name=value" strings into an attribute
// map of Variants. Every value is stored as a String atom: spec's
// conversion matrix makes String mutually convertible with Int/Double/
// Bool, and a CLI's raw input is text to begin with, so this never loses
// information the type checker would otherwise have captured.
func parseAttrFlags(flags []string) (map[string]value.Variant, error) {
	out := make(map[string]value.Variant, len(flags))
	for _, f := range flags {
		parts := strings.SplitN(f, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid --attr %q, expected name=value", f)
		}
		out[parts[0]] = value.NewScalar(value.NewString(parts[1]))
	}
	return out, nil
}
