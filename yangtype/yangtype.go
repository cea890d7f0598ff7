// Package yangtype models the closed set of YANG base types carried in a
// SID file's "type" field and the two type-directed casts (JSON→wire,
// wire→JSON) that the CBOR transcoder applies to leaf values.
//
// Casting is pure and side-effect-free: it depends only on its arguments,
// never on the catalog beyond the optional resolver callbacks supplied by
// the caller. See sidcat.Catalog for the schema the casts are driven by.
package yangtype

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/samsirohi11/coreconf/cferrors"
)

// Kind enumerates the YANG base types a leaf can be declared as.
type Kind int

const (
	KindString Kind = iota
	KindInt8
	KindInt16
	KindInt32
	KindInt64
	KindUint8
	KindUint16
	KindUint32
	KindUint64
	KindDecimal64
	KindBinary
	KindBoolean
	KindEmpty
	KindIdentityref
	KindLeafref
	KindInstanceIdentifier
	KindBits
	KindURI
	KindEnumeration
	KindUnion
	KindUnknown
)

// String returns the YANG base type name for k, or its UnknownName-less
// generic label for KindUnknown.
func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInt8:
		return "int8"
	case KindInt16:
		return "int16"
	case KindInt32:
		return "int32"
	case KindInt64:
		return "int64"
	case KindUint8:
		return "uint8"
	case KindUint16:
		return "uint16"
	case KindUint32:
		return "uint32"
	case KindUint64:
		return "uint64"
	case KindDecimal64:
		return "decimal64"
	case KindBinary:
		return "binary"
	case KindBoolean:
		return "boolean"
	case KindEmpty:
		return "empty"
	case KindIdentityref:
		return "identityref"
	case KindLeafref:
		return "leafref"
	case KindInstanceIdentifier:
		return "instance-identifier"
	case KindBits:
		return "bits"
	case KindURI:
		return "uri"
	case KindEnumeration:
		return "enumeration"
	case KindUnion:
		return "union"
	default:
		return "unknown"
	}
}

// Type is a YANG type descriptor. Enumeration carries its name→value map
// in EnumValues; Union carries its ordered member list in UnionTypes;
// Unknown carries the unrecognized type name in UnknownName.
type Type struct {
	Kind        Kind
	EnumValues  map[string]int64
	UnionTypes  []Type
	UnknownName string
}

// Bytes is the typed carrier for YANG binary values. Casting produces a
// Bytes value rather than a generic slice of integers so the CBOR
// transcoder can hand the encoder a real CBOR byte string (see
// DESIGN.md's note on binary representation).
type Bytes []byte

func simple(k Kind) Type { return Type{Kind: k} }

// FromSIDType parses the "type" field of a SID-file item, which is a JSON
// string (base type name), an object (enumeration: decimal-string keys
// mapping to labels), or an array (union of base-type name strings).
func FromSIDType(raw any) Type {
	switch v := raw.(type) {
	case string:
		return fromName(v)
	case map[string]any:
		enumValues := make(map[string]int64, len(v))
		for k, labelRaw := range v {
			label, ok := labelRaw.(string)
			if !ok {
				continue
			}
			n, err := strconv.ParseInt(k, 10, 64)
			if err != nil {
				n = 0
			}
			enumValues[label] = n
		}
		return Type{Kind: KindEnumeration, EnumValues: enumValues}
	case []any:
		members := make([]Type, 0, len(v))
		for _, m := range v {
			name, ok := m.(string)
			if !ok {
				continue
			}
			members = append(members, fromName(name))
		}
		return Type{Kind: KindUnion, UnionTypes: members}
	default:
		return Type{Kind: KindUnknown, UnknownName: "invalid"}
	}
}

func fromName(s string) Type {
	switch s {
	case "string":
		return simple(KindString)
	case "int8":
		return simple(KindInt8)
	case "int16":
		return simple(KindInt16)
	case "int32":
		return simple(KindInt32)
	case "int64":
		return simple(KindInt64)
	case "uint8":
		return simple(KindUint8)
	case "uint16":
		return simple(KindUint16)
	case "uint32":
		return simple(KindUint32)
	case "uint64":
		return simple(KindUint64)
	case "decimal64":
		return simple(KindDecimal64)
	case "binary":
		return simple(KindBinary)
	case "boolean":
		return simple(KindBoolean)
	case "empty":
		return simple(KindEmpty)
	case "identityref":
		return simple(KindIdentityref)
	case "leafref":
		return simple(KindLeafref)
	case "instance-identifier":
		return simple(KindInstanceIdentifier)
	case "bits":
		return simple(KindBits)
	case "inet:uri", "uri":
		return simple(KindURI)
	default:
		return Type{Kind: KindUnknown, UnknownName: s}
	}
}

// SidResolver looks up the SID assigned to a bare identityref name.
type SidResolver func(identifier string) (int64, bool)

// IdentifierResolver looks up the identifier path assigned to a SID.
type IdentifierResolver func(sid int64) (string, bool)

// CastToWire converts a decoded JSON value into its wire representation
// for the given YANG type.
func CastToWire(value any, t Type, resolve SidResolver) (any, error) {
	switch t.Kind {
	case KindString, KindURI:
		s, _ := value.(string)
		return s, nil

	case KindInt8, KindInt16, KindInt32, KindInt64:
		n, err := toInt64(value)
		if err != nil {
			return nil, err
		}
		return n, nil

	case KindUint8, KindUint16, KindUint32, KindUint64:
		n, err := toUint64(value)
		if err != nil {
			return nil, err
		}
		return n, nil

	case KindDecimal64:
		f, err := toFloat64(value)
		if err != nil {
			return nil, err
		}
		return f, nil

	case KindBinary:
		s, ok := value.(string)
		if !ok {
			return nil, cferrors.New(cferrors.KindTypeConversion, "binary value must be base64 text")
		}
		b, err := base64.StdEncoding.DecodeString(s)
		if err != nil {
			return nil, cferrors.Wrap(cferrors.KindTypeConversion, "base64 decode", err)
		}
		return Bytes(b), nil

	case KindBoolean:
		switch v := value.(type) {
		case bool:
			return v, nil
		case string:
			return v == "true", nil
		default:
			return false, nil
		}

	case KindIdentityref:
		if s, ok := value.(string); ok && resolve != nil {
			if name, found := splitPrefixed(s); found {
				if sid, ok := resolve(name); ok {
					return sid, nil
				}
			}
		}
		return value, nil

	case KindEnumeration:
		if s, ok := value.(string); ok {
			if n, found := t.EnumValues[s]; found {
				return n, nil
			}
		}
		if n, err := toInt64(value); err == nil {
			return n, nil
		}
		return nil, cferrors.New(cferrors.KindTypeConversion, fmt.Sprintf("enumeration value not found: %v", value))

	case KindEmpty, KindLeafref, KindInstanceIdentifier, KindBits:
		return value, nil

	case KindUnion:
		for _, member := range t.UnionTypes {
			if v, ok := tryCastToWire(value, member, resolve); ok {
				return v, nil
			}
		}
		return value, nil

	default: // KindUnknown
		return value, nil
	}
}

// tryCastToWire applies a strict success predicate per union member: a
// type "succeeds" only on a structural match, not merely because its cast
// function happens not to return an error (see DESIGN.md, union ordering).
func tryCastToWire(value any, t Type, resolve SidResolver) (any, bool) {
	switch t.Kind {
	case KindString, KindURI:
		s, ok := value.(string)
		if !ok {
			return nil, false
		}
		return s, true
	case KindInt8, KindInt16, KindInt32, KindInt64:
		n, err := toInt64(value)
		if err != nil {
			return nil, false
		}
		return n, true
	case KindUint8, KindUint16, KindUint32, KindUint64:
		n, err := toUint64(value)
		if err != nil {
			return nil, false
		}
		return n, true
	case KindDecimal64:
		f, err := toFloat64(value)
		if err != nil {
			return nil, false
		}
		return f, true
	case KindBinary:
		s, ok := value.(string)
		if !ok {
			return nil, false
		}
		b, err := base64.StdEncoding.DecodeString(s)
		if err != nil {
			return nil, false
		}
		return Bytes(b), true
	case KindBoolean:
		switch v := value.(type) {
		case bool:
			return v, true
		case string:
			if v == "true" || v == "false" {
				return v == "true", true
			}
			return nil, false
		default:
			return nil, false
		}
	case KindEnumeration:
		if s, ok := value.(string); ok {
			if n, found := t.EnumValues[s]; found {
				return n, true
			}
			return nil, false
		}
		return nil, false
	default:
		v, err := CastToWire(value, t, resolve)
		if err != nil {
			return nil, false
		}
		return v, true
	}
}

// CastFromWire converts a wire-representation value back to its JSON form
// for the given YANG type (the inverse of CastToWire).
func CastFromWire(value any, t Type, resolve IdentifierResolver, moduleName string) (any, error) {
	switch t.Kind {
	case KindString, KindURI:
		s, _ := value.(string)
		return s, nil

	case KindInt8, KindInt16, KindInt32, KindInt64,
		KindUint8, KindUint16, KindUint32, KindUint64:
		if n, err := toInt64(value); err == nil {
			return n, nil
		}
		if n, err := toUint64(value); err == nil {
			return n, nil
		}
		return value, nil

	case KindDecimal64:
		if f, err := toFloat64(value); err == nil {
			return f, nil
		}
		return value, nil

	case KindBinary:
		b, ok := value.(Bytes)
		if !ok {
			if raw, ok := value.([]byte); ok {
				b = Bytes(raw)
			} else {
				return value, nil
			}
		}
		return base64.StdEncoding.EncodeToString(b), nil

	case KindBoolean:
		b, _ := value.(bool)
		return b, nil

	case KindIdentityref:
		if sid, err := toInt64(value); err == nil && resolve != nil {
			if identifier, found := resolve(sid); found {
				return moduleName + ":" + identifier, nil
			}
		}
		return value, nil

	case KindEnumeration:
		if n, err := toInt64(value); err == nil {
			for name, v := range t.EnumValues {
				if v == n {
					return name, nil
				}
			}
		}
		return value, nil

	case KindEmpty, KindLeafref, KindInstanceIdentifier, KindBits:
		return value, nil

	case KindUnion:
		for _, member := range t.UnionTypes {
			v, err := CastFromWire(value, member, resolve, moduleName)
			if err == nil {
				return v, nil
			}
		}
		return value, nil

	default:
		return value, nil
	}
}

func splitPrefixed(s string) (name string, ok bool) {
	for i := 0; i < len(s); i++ {
		if s[i] == ':' {
			return s[i+1:], true
		}
	}
	return "", false
}

func toInt64(value any) (int64, error) {
	switch v := value.(type) {
	case int64:
		return v, nil
	case int:
		return int64(v), nil
	case uint64:
		return int64(v), nil
	case float64:
		return int64(v), nil
	case json.Number:
		return v.Int64()
	case string:
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, cferrors.Wrap(cferrors.KindTypeConversion, fmt.Sprintf("cannot parse %q as int64", v), err)
		}
		return n, nil
	default:
		return 0, cferrors.New(cferrors.KindTypeConversion, fmt.Sprintf("cannot convert %T to int64", value))
	}
}

func toUint64(value any) (uint64, error) {
	switch v := value.(type) {
	case uint64:
		return v, nil
	case int64:
		if v < 0 {
			return 0, cferrors.New(cferrors.KindTypeConversion, fmt.Sprintf("cannot convert %d to uint64", v))
		}
		return uint64(v), nil
	case int:
		if v < 0 {
			return 0, cferrors.New(cferrors.KindTypeConversion, fmt.Sprintf("cannot convert %d to uint64", v))
		}
		return uint64(v), nil
	case float64:
		if v < 0 {
			return 0, cferrors.New(cferrors.KindTypeConversion, fmt.Sprintf("cannot convert %v to uint64", v))
		}
		return uint64(v), nil
	case json.Number:
		n, err := strconv.ParseUint(v.String(), 10, 64)
		if err != nil {
			return 0, cferrors.Wrap(cferrors.KindTypeConversion, fmt.Sprintf("cannot parse %q as uint64", v.String()), err)
		}
		return n, nil
	case string:
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return 0, cferrors.Wrap(cferrors.KindTypeConversion, fmt.Sprintf("cannot parse %q as uint64", v), err)
		}
		return n, nil
	default:
		return 0, cferrors.New(cferrors.KindTypeConversion, fmt.Sprintf("cannot convert %T to uint64", value))
	}
}

func toFloat64(value any) (float64, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case int64:
		return float64(v), nil
	case uint64:
		return float64(v), nil
	case json.Number:
		return v.Float64()
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, cferrors.Wrap(cferrors.KindTypeConversion, fmt.Sprintf("cannot parse %q as f64", v), err)
		}
		return f, nil
	default:
		return 0, cferrors.New(cferrors.KindTypeConversion, fmt.Sprintf("cannot convert %T to f64", value))
	}
}
