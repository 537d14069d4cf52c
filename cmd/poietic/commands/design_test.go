package commands

import "testing"

func TestParseAttrFlags(t *testing.T) {
	attrs, err := parseAttrFlags([]string{"name=Water Tank", "level=42"})
	if err != nil {
		t.Fatalf("parseAttrFlags failed: %v", err)
	}
	if len(attrs) != 2 {
		t.Fatalf("expected 2 attributes, got %d", len(attrs))
	}
	name, err := attrs["name"].StringValue()
	if err != nil || name != "Water Tank" {
		t.Errorf("attrs[name] = %q, %v, want %q, nil", name, err, "Water Tank")
	}
}

func TestParseAttrFlagsRejectsMissingEquals(t *testing.T) {
	if _, err := parseAttrFlags([]string{"no-equals-sign"}); err == nil {
		t.Error("expected error for flag without '='")
	}
}

func TestParseObjectID(t *testing.T) {
	id, err := parseObjectID("42")
	if err != nil {
		t.Fatalf("parseObjectID failed: %v", err)
	}
	if id != 42 {
		t.Errorf("parseObjectID(42) = %d, want 42", id)
	}

	if _, err := parseObjectID("not-a-number"); err == nil {
		t.Error("expected error for non-numeric id")
	}
}
