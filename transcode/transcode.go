// Package transcode walks a decoded JSON value against a SID catalog,
// replacing identifier-path object keys with parent-relative SID deltas
// (and the inverse), then hands the result to a CBOR codec.
//
// The wire encoding keeps SID deltas as CBOR text-string map keys rather
// than integer keys: bandwidth-wise this is a deliberate choice made by
// the protocol this module speaks, and "optimizing" it to integer keys
// would break interop with any peer conforming to it.
package transcode

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/fxamacker/cbor/v2"

	"github.com/samsirohi11/coreconf/cferrors"
	"github.com/samsirohi11/coreconf/sidcat"
	"github.com/samsirohi11/coreconf/yangtype"
)

// maxDepth bounds the recursive walk so a pathological or adversarial
// payload cannot exhaust the stack.
const maxDepth = 64

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	em, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("transcode: building CBOR encode mode: %v", err))
	}
	encMode = em

	dm, err := cbor.DecOptions{
		MapKeyByteString: cbor.MapKeyByteStringAllowed,
	}.DecMode()
	if err != nil {
		panic(fmt.Sprintf("transcode: building CBOR decode mode: %v", err))
	}
	decMode = dm
}

// stringKeyedMaps recursively converts a decoded CBOR value's
// map[interface{}]interface{} maps (fxamacker/cbor's default for
// interface{}-typed destinations) into map[string]interface{}, so the
// rest of the walk can treat decoded CBOR the same as decoded JSON.
func stringKeyedMaps(data any) any {
	switch v := data.(type) {
	case map[any]any:
		result := make(map[string]any, len(v))
		for key, value := range v {
			var strKey string
			switch k := key.(type) {
			case string:
				strKey = k
			case []byte:
				strKey = string(k)
			default:
				strKey = fmt.Sprintf("%v", k)
			}
			result[strKey] = stringKeyedMaps(value)
		}
		return result
	case map[string]any:
		result := make(map[string]any, len(v))
		for key, value := range v {
			result[key] = stringKeyedMaps(value)
		}
		return result
	case []any:
		result := make([]any, len(v))
		for i, elem := range v {
			result[i] = stringKeyedMaps(elem)
		}
		return result
	default:
		return data
	}
}

// Transcoder converts between a module's JSON representation and its
// SID-delta CBOR wire representation.
type Transcoder struct {
	Catalog *sidcat.Catalog
}

// New builds a Transcoder over the given catalog.
func New(catalog *sidcat.Catalog) *Transcoder {
	return &Transcoder{Catalog: catalog}
}

// EncodeJSON converts a decoded JSON value into CBOR-ready SID-delta form
// and then into CBOR bytes.
func (tc *Transcoder) EncodeJSON(value any) ([]byte, error) {
	coreconfValue, err := tc.LookupSid(value)
	if err != nil {
		return nil, err
	}
	b, err := encMode.Marshal(coreconfValue)
	if err != nil {
		return nil, cferrors.Wrap(cferrors.KindCborEncode, "marshaling CBOR", err)
	}
	return b, nil
}

// DecodeCBOR parses CBOR bytes and converts the SID-delta form back into
// a decoded JSON value keyed by identifier names.
func (tc *Transcoder) DecodeCBOR(data []byte) (any, error) {
	var coreconfValue any
	if err := decMode.Unmarshal(data, &coreconfValue); err != nil {
		return nil, cferrors.Wrap(cferrors.KindCborDecode, "unmarshaling CBOR", err)
	}
	return tc.LookupIdentifier(stringKeyedMaps(coreconfValue))
}

// LookupSid transforms JSON object keys (identifier path components) into
// parent-relative SID-delta keys, applying YangType casts to leaves.
func (tc *Transcoder) LookupSid(value any) (any, error) {
	return tc.processValueForSid(value, tc.Catalog.ModulePrefix, 0, 0)
}

func (tc *Transcoder) processValueForSid(value any, path string, parentSid int64, depth int) (any, error) {
	if depth > maxDepth {
		return nil, cferrors.New(cferrors.KindCborEncode, "maximum nesting depth exceeded")
	}

	switch v := value.(type) {
	case map[string]any:
		newMap := make(map[string]any, len(v))
		for key, child := range v {
			var qualifiedPath string
			if strings.HasSuffix(path, ":") {
				qualifiedPath = "/" + key
			} else {
				qualifiedPath = path + "/" + key
			}

			childSid, ok := tc.Catalog.Sid(qualifiedPath)
			if !ok {
				return nil, cferrors.SidNotFound(qualifiedPath)
			}
			delta := childSid - parentSid

			processed, err := tc.processValueForSid(child, qualifiedPath, childSid, depth+1)
			if err != nil {
				return nil, err
			}
			newMap[strconv.FormatInt(delta, 10)] = processed
		}
		return newMap, nil

	case []any:
		newArr := make([]any, len(v))
		for i, elem := range v {
			processed, err := tc.processValueForSid(elem, path, parentSid, depth+1)
			if err != nil {
				return nil, err
			}
			newArr[i] = processed
		}
		return newArr, nil

	default:
		if yt, ok := tc.Catalog.Type(path); ok {
			return yangtype.CastToWire(value, yt, tc.Catalog.SidResolver())
		}
		return value, nil
	}
}

// LookupIdentifier transforms parent-relative SID-delta keys back into
// leaf identifier names, applying inverse YangType casts to leaves.
func (tc *Transcoder) LookupIdentifier(value any) (any, error) {
	return tc.processValueForIdentifier(value, 0, "/", 0)
}

func (tc *Transcoder) processValueForIdentifier(value any, delta int64, path string, depth int) (any, error) {
	if depth > maxDepth {
		return nil, cferrors.New(cferrors.KindCborDecode, "maximum nesting depth exceeded")
	}

	switch v := value.(type) {
	case map[string]any:
		newMap := make(map[string]any, len(v))
		for key, child := range v {
			keyDelta, err := strconv.ParseInt(key, 10, 64)
			if err != nil {
				return nil, cferrors.New(cferrors.KindTypeConversion, fmt.Sprintf("invalid SID key: %s", key))
			}
			sid := keyDelta + delta

			identifier, ok := tc.Catalog.Identifier(sid)
			if !ok {
				return nil, cferrors.IdentifierNotFound(sid)
			}

			leafName := identifier
			if i := strings.LastIndexByte(identifier, '/'); i >= 0 {
				leafName = identifier[i+1:]
			}

			processed, err := tc.processValueForIdentifier(child, sid, identifier, depth+1)
			if err != nil {
				return nil, err
			}
			newMap[leafName] = processed
		}
		return newMap, nil

	case []any:
		newArr := make([]any, len(v))
		for i, elem := range v {
			processed, err := tc.processValueForIdentifier(elem, delta, path, depth+1)
			if err != nil {
				return nil, err
			}
			newArr[i] = processed
		}
		return newArr, nil

	default:
		if yt, ok := tc.Catalog.Type(path); ok {
			return yangtype.CastFromWire(value, yt, tc.Catalog.IdentifierResolver(), tc.Catalog.ModuleName)
		}
		return value, nil
	}
}
