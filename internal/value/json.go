package value

import (
	"encoding/json"
	"fmt"
)

// atomToRaw returns the JSON-level representation of a single Atom. Point
// always encodes through its string form ("[x,y]"); every other atom
// encodes as its native JSON scalar.
func atomToRaw(a Atom) (interface{}, error) {
	switch a.typ {
	case Int:
		return a.i, nil
	case Double:
		return a.d, nil
	case Bool:
		return a.b, nil
	case String:
		return a.s, nil
	case Point:
		return formatPoint(a.pt), nil
	default:
		return nil, fmt.Errorf("value: unknown atom type %d", a.typ)
	}
}

func rawToAtom(typ Type, raw json.RawMessage) (Atom, error) {
	switch typ {
	case Int:
		var n int64
		if err := json.Unmarshal(raw, &n); err != nil {
			return Atom{}, fmt.Errorf("decoding int atom: %w", err)
		}
		return NewInt(n), nil
	case Double:
		var f float64
		if err := json.Unmarshal(raw, &f); err != nil {
			return Atom{}, fmt.Errorf("decoding double atom: %w", err)
		}
		return NewDouble(f), nil
	case Bool:
		var b bool
		if err := json.Unmarshal(raw, &b); err != nil {
			return Atom{}, fmt.Errorf("decoding bool atom: %w", err)
		}
		return NewBool(b), nil
	case String:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return Atom{}, fmt.Errorf("decoding string atom: %w", err)
		}
		return NewString(s), nil
	case Point:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return Atom{}, fmt.Errorf("decoding point atom: %w", err)
		}
		pt, err := parsePoint(s)
		if err != nil {
			return Atom{}, fmt.Errorf("decoding point atom: %w", err)
		}
		return NewPoint(pt.X, pt.Y), nil
	default:
		return Atom{}, fmt.Errorf("value: unknown value type %d", typ)
	}
}

// tupleEncoding is ["type", value] for a scalar, or ["type", [values...]]
// for an array, matching the compact tuple form some store writers use.
type tupleEncoding [2]json.RawMessage

// MarshalTuple encodes v as a 2-element JSON array: [typeName, payload].
func MarshalTuple(v Variant) ([]byte, error) {
	typeName, err := json.Marshal(v.ElementType().String())
	if err != nil {
		return nil, err
	}

	var payload json.RawMessage
	if v.array {
		raws := make([]interface{}, len(v.elems))
		for i, a := range v.elems {
			r, err := atomToRaw(a)
			if err != nil {
				return nil, err
			}
			raws[i] = r
		}
		b, err := json.Marshal(raws)
		if err != nil {
			return nil, err
		}
		payload = b
	} else {
		a, ok := v.Scalar()
		if !ok {
			return nil, fmt.Errorf("value: empty variant")
		}
		raw, err := atomToRaw(a)
		if err != nil {
			return nil, err
		}
		b, err := json.Marshal(raw)
		if err != nil {
			return nil, err
		}
		payload = b
	}

	return json.Marshal([]json.RawMessage{typeName, payload})
}

// dictEncoding is {"type": typeName, "value": payload}, optionally with
// "array": true for array variants.
type dictEncoding struct {
	Type  string          `json:"type"`
	Array bool            `json:"array,omitempty"`
	Value json.RawMessage `json:"value"`
}

// MarshalDict encodes v as {"type": ..., "value": ..., "array": ...}.
func MarshalDict(v Variant) ([]byte, error) {
	var payload json.RawMessage
	if v.array {
		raws := make([]interface{}, len(v.elems))
		for i, a := range v.elems {
			r, err := atomToRaw(a)
			if err != nil {
				return nil, err
			}
			raws[i] = r
		}
		b, err := json.Marshal(raws)
		if err != nil {
			return nil, err
		}
		payload = b
	} else {
		a, ok := v.Scalar()
		if !ok {
			return nil, fmt.Errorf("value: empty variant")
		}
		raw, err := atomToRaw(a)
		if err != nil {
			return nil, err
		}
		b, err := json.Marshal(raw)
		if err != nil {
			return nil, err
		}
		payload = b
	}

	return json.Marshal(dictEncoding{Type: v.ElementType().String(), Array: v.array, Value: payload})
}

// Unmarshal decodes a Variant from either the tuple encoding
// (["type", value]) or the dict encoding ({"type":..., "value":...}),
// detecting which was used from the JSON's outermost shape. Both
// encodings round-trip through MarshalTuple/MarshalDict.
func Unmarshal(data []byte) (Variant, error) {
	trimmed := make([]byte, 0, len(data))
	for _, b := range data {
		if b == ' ' || b == '\t' || b == '\n' || b == '\r' {
			continue
		}
		trimmed = append(trimmed, b)
	}
	if len(trimmed) == 0 {
		return Variant{}, fmt.Errorf("value: empty input")
	}

	switch trimmed[0] {
	case '[':
		var parts []json.RawMessage
		if err := json.Unmarshal(data, &parts); err != nil {
			return Variant{}, fmt.Errorf("decoding tuple variant: %w", err)
		}
		if len(parts) != 2 {
			return Variant{}, fmt.Errorf("value: tuple variant must have exactly 2 elements, got %d", len(parts))
		}
		var typeName string
		if err := json.Unmarshal(parts[0], &typeName); err != nil {
			return Variant{}, fmt.Errorf("decoding tuple variant type: %w", err)
		}
		typ, err := ParseType(typeName)
		if err != nil {
			return Variant{}, err
		}
		return decodePayload(typ, parts[1])
	case '{':
		var d dictEncoding
		if err := json.Unmarshal(data, &d); err != nil {
			return Variant{}, fmt.Errorf("decoding dict variant: %w", err)
		}
		typ, err := ParseType(d.Type)
		if err != nil {
			return Variant{}, err
		}
		return decodePayload(typ, d.Value)
	default:
		return Variant{}, fmt.Errorf("value: unrecognized variant encoding")
	}
}

func decodePayload(typ Type, payload json.RawMessage) (Variant, error) {
	trimmed := make([]byte, 0, len(payload))
	for _, b := range payload {
		if b == ' ' || b == '\t' || b == '\n' || b == '\r' {
			continue
		}
		trimmed = append(trimmed, b)
	}
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var raws []json.RawMessage
		if err := json.Unmarshal(payload, &raws); err != nil {
			return Variant{}, fmt.Errorf("decoding array payload: %w", err)
		}
		atoms := make([]Atom, len(raws))
		for i, r := range raws {
			a, err := rawToAtom(typ, r)
			if err != nil {
				return Variant{}, err
			}
			atoms[i] = a
		}
		return NewArray(atoms), nil
	}

	a, err := rawToAtom(typ, payload)
	if err != nil {
		return Variant{}, err
	}
	return NewScalar(a), nil
}
