package metamodel

import (
	"fmt"

	"github.com/moolen/poietic/internal/value"
	"gopkg.in/yaml.v3"
)

// yamlPredicate is the on-disk shape of a Predicate: exactly one field
// should be set, mirroring the closed Predicate variant set in
// predicate.go.
type yamlPredicate struct {
	Any          *struct{}        `yaml:"any,omitempty"`
	IsType       string            `yaml:"is_type,omitempty"`
	HasTrait     string            `yaml:"has_trait,omitempty"`
	HasComponent string            `yaml:"has_component,omitempty"`
	And          []yamlPredicate   `yaml:"and,omitempty"`
	Or           []yamlPredicate   `yaml:"or,omitempty"`
	Not          *yamlPredicate    `yaml:"not,omitempty"`
	Edge         *yamlEdgePredicate `yaml:"edge,omitempty"`
}

type yamlEdgePredicate struct {
	Edge   *yamlPredicate `yaml:"edge,omitempty"`
	Origin *yamlPredicate `yaml:"origin,omitempty"`
	Target *yamlPredicate `yaml:"target,omitempty"`
}

type yamlAttribute struct {
	Name     string `yaml:"name"`
	Type     string `yaml:"type"`
	Optional bool   `yaml:"optional,omitempty"`
}

type yamlTrait struct {
	Name       string          `yaml:"name"`
	Attributes []yamlAttribute `yaml:"attributes"`
}

type yamlType struct {
	Name       string   `yaml:"name"`
	Structural string   `yaml:"structural"`
	Traits     []string `yaml:"traits,omitempty"`
}

type yamlEdgeRule struct {
	Type                string         `yaml:"type"`
	Origin              *yamlPredicate `yaml:"origin,omitempty"`
	OutgoingCardinality string         `yaml:"outgoing_cardinality"`
	Target              *yamlPredicate `yaml:"target,omitempty"`
	IncomingCardinality string         `yaml:"incoming_cardinality"`
}

type yamlRequirement struct {
	RejectAll       *struct{}               `yaml:"reject_all,omitempty"`
	AcceptAll       *struct{}               `yaml:"accept_all,omitempty"`
	UniqueNeighbour *yamlUniqueNeighbour    `yaml:"unique_neighbour,omitempty"`
	EdgeEndpoint    *yamlEdgeEndpoint       `yaml:"edge_endpoint,omitempty"`
}

type yamlUniqueNeighbour struct {
	Direction string         `yaml:"direction"`
	Required  bool           `yaml:"required,omitempty"`
	Predicate *yamlPredicate `yaml:"predicate,omitempty"`
}

type yamlEdgeEndpoint struct {
	Origin *yamlPredicate `yaml:"origin,omitempty"`
	Target *yamlPredicate `yaml:"target,omitempty"`
	Edge   *yamlPredicate `yaml:"edge,omitempty"`
}

type yamlConstraint struct {
	Name        string           `yaml:"name"`
	Match       *yamlPredicate   `yaml:"match,omitempty"`
	Requirement *yamlRequirement `yaml:"requirement"`
}

type yamlMetamodel struct {
	Name        string           `yaml:"name"`
	Traits      []yamlTrait      `yaml:"traits,omitempty"`
	Types       []yamlType       `yaml:"types"`
	EdgeRules   []yamlEdgeRule   `yaml:"edge_rules,omitempty"`
	Constraints []yamlConstraint `yaml:"constraints,omitempty"`
}

// LoadYAML parses a metamodel definition file. Types may reference
// traits declared earlier in the same document; edge rules and
// constraints may reference any declared type or trait regardless of
// order, since the metamodel is fully built before rules are resolved.
func LoadYAML(data []byte) (*Metamodel, error) {
	var raw yamlMetamodel
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("metamodel: parsing yaml: %w", err)
	}
	if raw.Name == "" {
		return nil, fmt.Errorf("metamodel: name is required")
	}

	mm := New(raw.Name)

	for _, rt := range raw.Traits {
		attrs := make([]Attribute, 0, len(rt.Attributes))
		for _, ra := range rt.Attributes {
			typ, err := value.ParseType(ra.Type)
			if err != nil {
				return nil, fmt.Errorf("metamodel: trait %q attribute %q: %w", rt.Name, ra.Name, err)
			}
			attrs = append(attrs, Attribute{Name: ra.Name, Type: typ, Optional: ra.Optional})
		}
		mm.AddTrait(&Trait{Name: rt.Name, Attributes: attrs})
	}

	for _, rtype := range raw.Types {
		st, err := ParseStructuralType(rtype.Structural)
		if err != nil {
			return nil, fmt.Errorf("metamodel: type %q: %w", rtype.Name, err)
		}
		traits := make([]*Trait, 0, len(rtype.Traits))
		for _, tname := range rtype.Traits {
			tr, err := mm.Trait(tname)
			if err != nil {
				return nil, fmt.Errorf("metamodel: type %q: %w", rtype.Name, err)
			}
			traits = append(traits, tr)
		}
		mm.AddType(&ObjectType{Name: rtype.Name, Structural: st, Traits: traits})
	}

	for _, rrule := range raw.EdgeRules {
		typ, err := mm.Type(rrule.Type)
		if err != nil {
			return nil, fmt.Errorf("metamodel: edge rule for %q: %w", rrule.Type, err)
		}
		outgoing, err := ParseCardinality(rrule.OutgoingCardinality)
		if err != nil {
			return nil, fmt.Errorf("metamodel: edge rule for %q: %w", rrule.Type, err)
		}
		incoming, err := ParseCardinality(rrule.IncomingCardinality)
		if err != nil {
			return nil, fmt.Errorf("metamodel: edge rule for %q: %w", rrule.Type, err)
		}
		origin, err := parsePredicate(rrule.Origin, mm)
		if err != nil {
			return nil, fmt.Errorf("metamodel: edge rule for %q origin: %w", rrule.Type, err)
		}
		target, err := parsePredicate(rrule.Target, mm)
		if err != nil {
			return nil, fmt.Errorf("metamodel: edge rule for %q target: %w", rrule.Type, err)
		}
		mm.AddEdgeRule(&EdgeRule{
			Type:                typ,
			OriginPredicate:     origin,
			OutgoingCardinality: outgoing,
			TargetPredicate:     target,
			IncomingCardinality: incoming,
		})
	}

	for _, rc := range raw.Constraints {
		match, err := parsePredicate(rc.Match, mm)
		if err != nil {
			return nil, fmt.Errorf("metamodel: constraint %q match: %w", rc.Name, err)
		}
		req, err := parseRequirement(rc.Requirement, mm)
		if err != nil {
			return nil, fmt.Errorf("metamodel: constraint %q: %w", rc.Name, err)
		}
		mm.AddConstraint(&Constraint{Name: rc.Name, Match: match, Requirement: req})
	}

	return mm, nil
}

func parsePredicate(raw *yamlPredicate, mm *Metamodel) (Predicate, error) {
	if raw == nil {
		return nil, nil
	}
	switch {
	case raw.Any != nil:
		return AnyPredicate{}, nil
	case raw.IsType != "":
		t, err := mm.Type(raw.IsType)
		if err != nil {
			return nil, err
		}
		return IsTypePredicate{Type: t}, nil
	case raw.HasTrait != "":
		t, err := mm.Trait(raw.HasTrait)
		if err != nil {
			return nil, err
		}
		return HasTraitPredicate{Trait: t}, nil
	case raw.HasComponent != "":
		return HasComponentPredicate{Component: raw.HasComponent}, nil
	case len(raw.And) > 0:
		operands, err := parsePredicateList(raw.And, mm)
		if err != nil {
			return nil, err
		}
		return CompoundPredicate{Op: And, Operands: operands}, nil
	case len(raw.Or) > 0:
		operands, err := parsePredicateList(raw.Or, mm)
		if err != nil {
			return nil, err
		}
		return CompoundPredicate{Op: Or, Operands: operands}, nil
	case raw.Not != nil:
		operand, err := parsePredicate(raw.Not, mm)
		if err != nil {
			return nil, err
		}
		return NegationPredicate{Operand: operand}, nil
	case raw.Edge != nil:
		edgePred, err := parsePredicate(raw.Edge.Edge, mm)
		if err != nil {
			return nil, err
		}
		originPred, err := parsePredicate(raw.Edge.Origin, mm)
		if err != nil {
			return nil, err
		}
		targetPred, err := parsePredicate(raw.Edge.Target, mm)
		if err != nil {
			return nil, err
		}
		return EdgePredicate{EdgePred: edgePred, OriginPred: originPred, TargetPred: targetPred}, nil
	default:
		return nil, fmt.Errorf("empty predicate")
	}
}

func parsePredicateList(raws []yamlPredicate, mm *Metamodel) ([]Predicate, error) {
	out := make([]Predicate, 0, len(raws))
	for i := range raws {
		p, err := parsePredicate(&raws[i], mm)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func parseRequirement(raw *yamlRequirement, mm *Metamodel) (Requirement, error) {
	if raw == nil {
		return AcceptAllRequirement{}, nil
	}
	switch {
	case raw.RejectAll != nil:
		return RejectAllRequirement{}, nil
	case raw.AcceptAll != nil:
		return AcceptAllRequirement{}, nil
	case raw.UniqueNeighbour != nil:
		un := raw.UniqueNeighbour
		var dir Direction
		switch un.Direction {
		case "incoming":
			dir = Incoming
		case "outgoing":
			dir = Outgoing
		default:
			return nil, fmt.Errorf("unique_neighbour: invalid direction %q", un.Direction)
		}
		pred, err := parsePredicate(un.Predicate, mm)
		if err != nil {
			return nil, err
		}
		if pred == nil {
			pred = AnyPredicate{}
		}
		return UniqueNeighbourRequirement{Predicate: pred, Direction: dir, Required: un.Required}, nil
	case raw.EdgeEndpoint != nil:
		ee := raw.EdgeEndpoint
		origin, err := parsePredicate(ee.Origin, mm)
		if err != nil {
			return nil, err
		}
		target, err := parsePredicate(ee.Target, mm)
		if err != nil {
			return nil, err
		}
		edge, err := parsePredicate(ee.Edge, mm)
		if err != nil {
			return nil, err
		}
		return EdgeEndpointRequirement{Origin: origin, Target: target, Edge: edge}, nil
	default:
		return nil, fmt.Errorf("empty requirement")
	}
}
