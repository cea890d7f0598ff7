// Package instanceid implements the RFC 9595 CBOR encoding of YANG
// instance identifiers: either a bare SID (for a scalar path) or an array
// alternating SID deltas and list-key values.
package instanceid

import (
	"bytes"
	"io"
	"strconv"
	"strings"

	"github.com/fxamacker/cbor/v2"

	"github.com/samsirohi11/coreconf/cferrors"
	"github.com/samsirohi11/coreconf/sidcat"
)

// ComponentKind distinguishes the two kinds of path component.
type ComponentKind int

const (
	// KindSidDelta is a parent-relative SID delta to a child node.
	KindSidDelta ComponentKind = iota
	// KindKeyValue is a list-entry key value.
	KindKeyValue
)

// PathComponent is one element of an instance identifier: either a SID
// delta or a key value used to select a list entry.
type PathComponent struct {
	Kind  ComponentKind
	Delta int64
	Key   any
}

// Path is a full instance identifier: an ordered sequence of path
// components plus the absolute SID it resolves to.
type Path struct {
	Components  []PathComponent
	absoluteSid int64
	hasAbsolute bool
}

// New returns an empty instance path.
func New() *Path {
	return &Path{}
}

// FromSid returns a single-component instance path whose absolute SID is
// sid (i.e. a SID delta of sid from the root).
func FromSid(sid int64) *Path {
	p := New()
	p.PushDelta(sid)
	return p
}

// PushDelta appends a SID-delta component and advances the absolute SID.
func (p *Path) PushDelta(delta int64) {
	p.Components = append(p.Components, PathComponent{Kind: KindSidDelta, Delta: delta})
	if p.hasAbsolute {
		p.absoluteSid += delta
	} else {
		p.absoluteSid = delta
		p.hasAbsolute = true
	}
}

// PushKey appends a list-entry key-value component.
func (p *Path) PushKey(key any) {
	p.Components = append(p.Components, PathComponent{Kind: KindKeyValue, Key: key})
}

// AbsoluteSid returns the SID this path resolves to, if any component has
// been pushed.
func (p *Path) AbsoluteSid() (int64, bool) {
	return p.absoluteSid, p.hasAbsolute
}

// IsEmpty reports whether the path has no components.
func (p *Path) IsEmpty() bool { return len(p.Components) == 0 }

// FromYangPath resolves a slash-separated YANG path (e.g.
// "/example-1:greeting/author") into a sequence of SID deltas using the
// given catalog.
func FromYangPath(path string, catalog *sidcat.Catalog) (*Path, error) {
	p := New()
	var currentSid int64

	parts := strings.Split(path, "/")
	built := make([]string, 0, len(parts))
	for _, part := range parts {
		if part == "" {
			continue
		}
		built = append(built, part)
		fullPath := "/" + strings.Join(built, "/")

		sid, ok := catalog.Sid(fullPath)
		if !ok {
			return nil, cferrors.SidNotFound(fullPath)
		}
		p.PushDelta(sid - currentSid)
		currentSid = sid
	}

	return p, nil
}

// ToValue renders the path to the generic any-typed CBOR value it
// serializes as: nil for an empty path, a bare int64 for a single delta,
// or a slice alternating deltas and keys.
func (p *Path) ToValue() any {
	if len(p.Components) == 0 {
		return nil
	}
	if len(p.Components) == 1 && p.Components[0].Kind == KindSidDelta {
		return p.Components[0].Delta
	}

	arr := make([]any, len(p.Components))
	for i, c := range p.Components {
		if c.Kind == KindSidDelta {
			arr[i] = c.Delta
		} else {
			arr[i] = c.Key
		}
	}
	return arr
}

// FromValue parses the generic any-typed CBOR value form back into a Path.
func FromValue(value any) (*Path, error) {
	p := New()

	switch v := value.(type) {
	case nil:
		// empty path
	case int64:
		p.PushDelta(v)
	case uint64:
		p.PushDelta(int64(v))
	case []any:
		expectDelta := true
		for _, item := range v {
			if expectDelta {
				delta, ok := asInt64(item)
				if !ok {
					return nil, cferrors.New(cferrors.KindTypeConversion, "expected SID delta")
				}
				p.PushDelta(delta)
			} else {
				p.PushKey(item)
			}
			expectDelta = !expectDelta
		}
	default:
		return nil, cferrors.New(cferrors.KindTypeConversion, "invalid instance identifier format")
	}

	return p, nil
}

func asInt64(value any) (int64, bool) {
	switch v := value.(type) {
	case int64:
		return v, true
	case uint64:
		return int64(v), true
	case int:
		return int64(v), true
	default:
		return 0, false
	}
}

// EncodeCBOR serializes the path as a single CBOR item.
func (p *Path) EncodeCBOR() ([]byte, error) {
	b, err := cbor.Marshal(p.ToValue())
	if err != nil {
		return nil, cferrors.Wrap(cferrors.KindCborEncode, "encoding instance path", err)
	}
	return b, nil
}

// DecodeCBOR parses a single CBOR item into a Path.
func DecodeCBOR(data []byte) (*Path, error) {
	var value any
	if err := cbor.Unmarshal(data, &value); err != nil {
		return nil, cferrors.Wrap(cferrors.KindCborDecode, "decoding instance path", err)
	}
	return FromValue(value)
}

// EncodeIdentifiers serializes multiple paths as a CBOR sequence
// (application/yang-identifiers+cbor), used for FETCH requests.
func EncodeIdentifiers(paths []*Path) ([]byte, error) {
	var buf bytes.Buffer
	enc := cbor.NewEncoder(&buf)
	for _, p := range paths {
		if err := enc.Encode(p.ToValue()); err != nil {
			return nil, cferrors.Wrap(cferrors.KindCborEncode, "encoding identifier sequence", err)
		}
	}
	return buf.Bytes(), nil
}

// DecodeIdentifiers parses a CBOR sequence of identifiers, as carried by a
// FETCH request payload. Each item is either a bare integer SID or an
// array whose first element is the SID; any remaining array elements are
// list-key values and are ignored, not chained into the SID the way a
// full instance-identifier path chains deltas.
func DecodeIdentifiers(data []byte) ([]*Path, error) {
	dec := cbor.NewDecoder(bytes.NewReader(data))
	var paths []*Path
	for {
		var value any
		err := dec.Decode(&value)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, cferrors.Wrap(cferrors.KindCborDecode, "decoding identifier sequence", err)
		}
		p, err := identifierFromValue(value)
		if err != nil {
			return nil, err
		}
		paths = append(paths, p)
	}
	return paths, nil
}

// identifierFromValue parses a single FETCH-identifier item: nil (empty),
// a bare SID integer, or an array whose first element is the SID.
func identifierFromValue(value any) (*Path, error) {
	p := New()

	switch v := value.(type) {
	case nil:
		// empty identifier
	case int64:
		p.PushDelta(v)
	case uint64:
		p.PushDelta(int64(v))
	case []any:
		if len(v) == 0 {
			return nil, cferrors.New(cferrors.KindTypeConversion, "empty identifier array")
		}
		sid, ok := asInt64(v[0])
		if !ok {
			return nil, cferrors.New(cferrors.KindTypeConversion, "expected integer SID as first identifier element")
		}
		p.PushDelta(sid)
	default:
		return nil, cferrors.New(cferrors.KindTypeConversion, "invalid instance identifier format")
	}

	return p, nil
}

// Instance pairs a path with a value; HasValue false represents a delete in
// an iPATCH request or a "resource absent" entry in a response.
type Instance struct {
	Path  *Path
	Value any
	// HasValue distinguishes an explicit JSON null Value from "no value
	// carried" (delete semantics), since Value itself may legitimately be
	// nil for either case.
	HasValue bool
}

// NewInstance builds an Instance carrying a value.
func NewInstance(path *Path, value any) Instance {
	return Instance{Path: path, Value: value, HasValue: true}
}

// DeleteInstance builds an Instance representing a delete (no value).
func DeleteInstance(path *Path) Instance {
	return Instance{Path: path, HasValue: false}
}

// ToValue renders the instance as the one-entry {sid: value|null} map it
// serializes as.
func (inst Instance) ToValue() map[string]any {
	sid, _ := inst.Path.AbsoluteSid()
	var v any
	if inst.HasValue {
		v = inst.Value
	}
	return map[string]any{strconv.FormatInt(sid, 10): v}
}

// EncodeInstances serializes multiple instances as a CBOR sequence
// (application/yang-instances+cbor-seq), used for iPATCH requests and
// responses.
func EncodeInstances(instances []Instance) ([]byte, error) {
	var buf bytes.Buffer
	enc := cbor.NewEncoder(&buf)
	for _, inst := range instances {
		if err := enc.Encode(inst.ToValue()); err != nil {
			return nil, cferrors.Wrap(cferrors.KindCborEncode, "encoding instance sequence", err)
		}
	}
	return buf.Bytes(), nil
}

// DecodeInstances parses a CBOR sequence of {sid: value} maps into
// Instances. A map value of CBOR null decodes to a delete Instance.
func DecodeInstances(data []byte) ([]Instance, error) {
	dec := cbor.NewDecoder(bytes.NewReader(data))
	var instances []Instance
	for {
		var value any
		err := dec.Decode(&value)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, cferrors.Wrap(cferrors.KindCborDecode, "decoding instance sequence", err)
		}

		m, ok := asStringMap(value)
		if !ok {
			continue
		}
		for key, val := range m {
			sid, err := strconv.ParseInt(key, 10, 64)
			if err != nil {
				return nil, cferrors.New(cferrors.KindTypeConversion, "invalid SID in instance")
			}
			path := New()
			path.PushDelta(sid)

			if val == nil {
				instances = append(instances, DeleteInstance(path))
			} else {
				instances = append(instances, NewInstance(path, val))
			}
		}
	}
	return instances, nil
}

func asStringMap(value any) (map[string]any, bool) {
	switch v := value.(type) {
	case map[string]any:
		return v, true
	case map[any]any:
		result := make(map[string]any, len(v))
		for k, val := range v {
			switch kk := k.(type) {
			case string:
				result[kk] = val
			case []byte:
				result[string(kk)] = val
			}
		}
		return result, true
	default:
		return nil, false
	}
}
