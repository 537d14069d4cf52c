// Package value implements the tagged scalar/array attribute values
// ("Variants") used throughout the design graph core, along with the
// total conversion matrix between them.
package value

import (
	"fmt"
	"strconv"
	"strings"
)

// Type tags an Atom's underlying representation.
type Type int

const (
	Int Type = iota
	Double
	Bool
	String
	Point
)

func (t Type) String() string {
	switch t {
	case Int:
		return "int"
	case Double:
		return "double"
	case Bool:
		return "bool"
	case String:
		return "string"
	case Point:
		return "point"
	default:
		return "unknown"
	}
}

// ParseType parses the on-disk/CLI spelling of a Type.
func ParseType(s string) (Type, error) {
	switch strings.ToLower(s) {
	case "int":
		return Int, nil
	case "double":
		return Double, nil
	case "bool":
		return Bool, nil
	case "string":
		return String, nil
	case "point":
		return Point, nil
	default:
		return 0, fmt.Errorf("unknown value type %q", s)
	}
}

// Coord is a 2D point, the underlying representation of the Point atom.
type Coord struct {
	X float64
	Y float64
}

// Atom is a single scalar value carrying exactly one Type's payload.
type Atom struct {
	typ Type
	i   int64
	d   float64
	b   bool
	s   string
	pt  Coord
}

func NewInt(i int64) Atom       { return Atom{typ: Int, i: i} }
func NewDouble(d float64) Atom  { return Atom{typ: Double, d: d} }
func NewBool(b bool) Atom       { return Atom{typ: Bool, b: b} }
func NewString(s string) Atom   { return Atom{typ: String, s: s} }
func NewPoint(x, y float64) Atom { return Atom{typ: Point, pt: Coord{X: x, Y: y}} }

// Type returns the atom's declared value type.
func (a Atom) Type() Type { return a.typ }

// ConversionError is returned when a value of one type cannot be, or
// failed to be, converted to another.
type ConversionError struct {
	From    Type
	To      Type
	Failed  bool // true: conversion was attempted and failed; false: not convertible at all
	Detail  string
}

func (e *ConversionError) Error() string {
	if e.Failed {
		if e.Detail != "" {
			return fmt.Sprintf("conversion failed from %s to %s: %s", e.From, e.To, e.Detail)
		}
		return fmt.Sprintf("conversion failed from %s to %s", e.From, e.To)
	}
	return fmt.Sprintf("%s is not convertible to %s", e.From, e.To)
}

func conversionFailed(from, to Type, detail string) error {
	return &ConversionError{From: from, To: to, Failed: true, Detail: detail}
}

func notConvertible(from, to Type) error {
	return &ConversionError{From: from, To: to, Failed: false}
}

// InvalidBooleanValueError is returned when a string fails to parse as a
// recognizable boolean spelling.
type InvalidBooleanValueError struct {
	Value string
}

func (e *InvalidBooleanValueError) Error() string {
	return fmt.Sprintf("invalid boolean value %q", e.Value)
}

// IsConvertible reports whether a is convertible to the target type. It
// never performs the conversion, so it cannot fail on malformed data (a
// String atom containing "abc" is "convertible to" Int in principle, but
// IntValue() on it will return a ConversionError).
func (a Atom) IsConvertible(to Type) bool {
	if a.typ == to {
		return true
	}
	if a.typ == Point || to == Point {
		// Point only converts to/from String.
		return a.typ == String || to == String
	}
	return true // Int/Double/Bool/String are mutually convertible (subject to parse success)
}

// IntValue converts a to an int64, following spec.md's conversion matrix:
//   - Int: identity.
//   - Double: exact only (no fractional part), else ConversionFailed.
//   - Bool: false=0, true=1.
//   - String: parsed as a base-10 integer, else ConversionFailed.
//   - Point: NotConvertible.
func (a Atom) IntValue() (int64, error) {
	switch a.typ {
	case Int:
		return a.i, nil
	case Double:
		if a.d != float64(int64(a.d)) {
			return 0, conversionFailed(a.typ, Int, "non-integral double")
		}
		return int64(a.d), nil
	case Bool:
		if a.b {
			return 1, nil
		}
		return 0, nil
	case String:
		n, err := strconv.ParseInt(strings.TrimSpace(a.s), 10, 64)
		if err != nil {
			return 0, conversionFailed(a.typ, Int, err.Error())
		}
		return n, nil
	default:
		return 0, notConvertible(a.typ, Int)
	}
}

// DoubleValue converts a to a float64.
func (a Atom) DoubleValue() (float64, error) {
	switch a.typ {
	case Int:
		return float64(a.i), nil
	case Double:
		return a.d, nil
	case Bool:
		if a.b {
			return 1, nil
		}
		return 0, nil
	case String:
		f, err := strconv.ParseFloat(strings.TrimSpace(a.s), 64)
		if err != nil {
			return 0, conversionFailed(a.typ, Double, err.Error())
		}
		return f, nil
	default:
		return 0, notConvertible(a.typ, Double)
	}
}

// BoolValue converts a to a bool.
//   - Int/Double: zero=false, nonzero=true.
//   - Bool: identity.
//   - String: "true"/"false" (case-insensitive), else InvalidBooleanValueError.
//   - Point: NotConvertible.
func (a Atom) BoolValue() (bool, error) {
	switch a.typ {
	case Bool:
		return a.b, nil
	case Int:
		return a.i != 0, nil
	case Double:
		return a.d != 0, nil
	case String:
		switch strings.ToLower(strings.TrimSpace(a.s)) {
		case "true":
			return true, nil
		case "false":
			return false, nil
		default:
			return false, &InvalidBooleanValueError{Value: a.s}
		}
	default:
		return false, notConvertible(a.typ, Bool)
	}
}

// StringValue renders a as its textual form. Point renders as "[x,y]"
// (see spec.md's Open Question on point serialization: the JSON-array
// spelling is the one this implementation produces and accepts).
func (a Atom) StringValue() (string, error) {
	switch a.typ {
	case String:
		return a.s, nil
	case Int:
		return strconv.FormatInt(a.i, 10), nil
	case Double:
		return strconv.FormatFloat(a.d, 'g', -1, 64), nil
	case Bool:
		if a.b {
			return "true", nil
		}
		return "false", nil
	case Point:
		return formatPoint(a.pt), nil
	default:
		return "", notConvertible(a.typ, String)
	}
}

// PointValue converts a to a Coord. Only Point (identity) and String
// (parsed as "[x,y]", optional whitespace) are convertible.
func (a Atom) PointValue() (Coord, error) {
	switch a.typ {
	case Point:
		return a.pt, nil
	case String:
		pt, err := parsePoint(a.s)
		if err != nil {
			return Coord{}, conversionFailed(a.typ, Point, err.Error())
		}
		return pt, nil
	default:
		return Coord{}, notConvertible(a.typ, Point)
	}
}

func formatPoint(p Coord) string {
	return fmt.Sprintf("[%s,%s]", strconv.FormatFloat(p.X, 'g', -1, 64), strconv.FormatFloat(p.Y, 'g', -1, 64))
}

func parsePoint(s string) (Coord, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "[") || !strings.HasSuffix(s, "]") {
		return Coord{}, fmt.Errorf("point string must be of the form [x,y], got %q", s)
	}
	inner := strings.TrimSpace(s[1 : len(s)-1])
	parts := strings.SplitN(inner, ",", 2)
	if len(parts) != 2 {
		return Coord{}, fmt.Errorf("point string must be of the form [x,y], got %q", s)
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return Coord{}, fmt.Errorf("invalid x coordinate in %q: %w", s, err)
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return Coord{}, fmt.Errorf("invalid y coordinate in %q: %w", s, err)
	}
	return Coord{X: x, Y: y}, nil
}

// Variant is either a single Atom or a homogeneous array of Atoms.
type Variant struct {
	array bool
	elems []Atom
}

// NewScalar wraps a single atom as a scalar Variant.
func NewScalar(a Atom) Variant {
	return Variant{elems: []Atom{a}}
}

// NewArray wraps a slice of same-typed atoms as an array Variant. It
// panics if elems is empty or mixed-type, since an array's element type
// must be known and homogeneous.
func NewArray(elems []Atom) Variant {
	if len(elems) == 0 {
		panic("value: NewArray requires at least one element")
	}
	t := elems[0].typ
	for _, e := range elems[1:] {
		if e.typ != t {
			panic("value: NewArray requires homogeneous element types")
		}
	}
	cp := make([]Atom, len(elems))
	copy(cp, elems)
	return Variant{array: true, elems: cp}
}

// IsArray reports whether v holds an array rather than a scalar.
func (v Variant) IsArray() bool { return v.array }

// ElementType returns the underlying atom type (of the scalar, or of
// every element in the array).
func (v Variant) ElementType() Type {
	if len(v.elems) == 0 {
		return String
	}
	return v.elems[0].typ
}

// Scalar returns the underlying Atom and true, or the zero Atom and
// false if v is an array.
func (v Variant) Scalar() (Atom, bool) {
	if v.array || len(v.elems) != 1 {
		return Atom{}, false
	}
	return v.elems[0], true
}

// Elements returns the array's elements, or a single-element slice for
// a scalar Variant.
func (v Variant) Elements() []Atom {
	out := make([]Atom, len(v.elems))
	copy(out, v.elems)
	return out
}

// IsConvertible reports whether a scalar Variant is convertible to the
// target type. Arrays are only "convertible" to their own element type.
func (v Variant) IsConvertible(to Type) bool {
	if v.array {
		return to == v.ElementType()
	}
	a, ok := v.Scalar()
	if !ok {
		return false
	}
	return a.IsConvertible(to)
}

// IntValue, DoubleValue, BoolValue, StringValue, PointValue delegate to
// the scalar atom; they fail with NotConvertible on an array Variant.
func (v Variant) IntValue() (int64, error) {
	a, ok := v.Scalar()
	if !ok {
		return 0, notConvertible(v.ElementType(), Int)
	}
	return a.IntValue()
}

func (v Variant) DoubleValue() (float64, error) {
	a, ok := v.Scalar()
	if !ok {
		return 0, notConvertible(v.ElementType(), Double)
	}
	return a.DoubleValue()
}

func (v Variant) BoolValue() (bool, error) {
	a, ok := v.Scalar()
	if !ok {
		return false, notConvertible(v.ElementType(), Bool)
	}
	return a.BoolValue()
}

func (v Variant) StringValue() (string, error) {
	a, ok := v.Scalar()
	if !ok {
		return "", notConvertible(v.ElementType(), String)
	}
	return a.StringValue()
}

func (v Variant) PointValue() (Coord, error) {
	a, ok := v.Scalar()
	if !ok {
		return Coord{}, notConvertible(v.ElementType(), Point)
	}
	return a.PointValue()
}

// Equal reports deep equality between two Variants.
func (v Variant) Equal(other Variant) bool {
	if v.array != other.array || len(v.elems) != len(other.elems) {
		return false
	}
	for i := range v.elems {
		if v.elems[i] != other.elems[i] {
			return false
		}
	}
	return true
}
