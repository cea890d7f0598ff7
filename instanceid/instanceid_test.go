package instanceid

import (
	"testing"

	"github.com/fxamacker/cbor/v2"

	"github.com/samsirohi11/coreconf/sidcat"
)

func TestPathSingleDeltaRoundTrip(t *testing.T) {
	p := New()
	p.PushDelta(60001)

	cborBytes, err := p.EncodeCBOR()
	if err != nil {
		t.Fatalf("EncodeCBOR() error = %v", err)
	}

	decoded, err := DecodeCBOR(cborBytes)
	if err != nil {
		t.Fatalf("DecodeCBOR() error = %v", err)
	}

	sid, ok := decoded.AbsoluteSid()
	if !ok || sid != 60001 {
		t.Errorf("AbsoluteSid() = (%d, %v), want (60001, true)", sid, ok)
	}
}

func TestPathWithKeyIsArray(t *testing.T) {
	p := New()
	p.PushDelta(1756)
	p.PushKey("myserver")

	value := p.ToValue()
	arr, ok := value.([]any)
	if !ok {
		t.Fatalf("ToValue() = %T, want []any", value)
	}
	if len(arr) != 2 {
		t.Fatalf("ToValue() len = %d, want 2", len(arr))
	}
	if arr[0] != int64(1756) {
		t.Errorf("arr[0] = %v, want 1756", arr[0])
	}
	if arr[1] != "myserver" {
		t.Errorf("arr[1] = %v, want myserver", arr[1])
	}
}

func TestEmptyPathIsNull(t *testing.T) {
	p := New()
	if v := p.ToValue(); v != nil {
		t.Errorf("ToValue() = %v, want nil", v)
	}
}

func TestFromYangPath(t *testing.T) {
	cat, err := sidcat.Parse([]byte(`{
		"module-name": "example-1",
		"module-revision": "unknown",
		"item": [
			{"identifier": "/example-1:greeting", "sid": 60001},
			{"identifier": "/example-1:greeting/author", "sid": 60002, "type": "string"}
		]
	}`))
	if err != nil {
		t.Fatalf("sidcat.Parse() error = %v", err)
	}

	p, err := FromYangPath("/example-1:greeting/author", cat)
	if err != nil {
		t.Fatalf("FromYangPath() error = %v", err)
	}

	sid, ok := p.AbsoluteSid()
	if !ok || sid != 60002 {
		t.Errorf("AbsoluteSid() = (%d, %v), want (60002, true)", sid, ok)
	}
	if len(p.Components) != 2 {
		t.Fatalf("len(Components) = %d, want 2", len(p.Components))
	}
	if p.Components[0].Delta != 60001 {
		t.Errorf("Components[0].Delta = %d, want 60001", p.Components[0].Delta)
	}
	if p.Components[1].Delta != 1 {
		t.Errorf("Components[1].Delta = %d, want 1", p.Components[1].Delta)
	}
}

func TestFromYangPathUnknownSegment(t *testing.T) {
	cat, err := sidcat.Parse([]byte(`{"module-name": "example-1", "module-revision": "unknown", "item": []}`))
	if err != nil {
		t.Fatalf("sidcat.Parse() error = %v", err)
	}
	if _, err := FromYangPath("/example-1:missing", cat); err == nil {
		t.Errorf("expected error for unresolvable path segment")
	}
}

func TestEncodeDecodeInstances(t *testing.T) {
	path := New()
	path.PushDelta(1755)
	instance := NewInstance(path, true)

	data, err := EncodeInstances([]Instance{instance})
	if err != nil {
		t.Fatalf("EncodeInstances() error = %v", err)
	}

	decoded, err := DecodeInstances(data)
	if err != nil {
		t.Fatalf("DecodeInstances() error = %v", err)
	}
	if len(decoded) != 1 {
		t.Fatalf("len(decoded) = %d, want 1", len(decoded))
	}
	if decoded[0].Value != true {
		t.Errorf("decoded[0].Value = %v, want true", decoded[0].Value)
	}
	if !decoded[0].HasValue {
		t.Errorf("decoded[0].HasValue = false, want true")
	}
}

func TestDeleteInstanceRoundTrip(t *testing.T) {
	path := New()
	path.PushDelta(1755)
	instance := DeleteInstance(path)

	data, err := EncodeInstances([]Instance{instance})
	if err != nil {
		t.Fatalf("EncodeInstances() error = %v", err)
	}
	decoded, err := DecodeInstances(data)
	if err != nil {
		t.Fatalf("DecodeInstances() error = %v", err)
	}
	if len(decoded) != 1 {
		t.Fatalf("len(decoded) = %d, want 1", len(decoded))
	}
	if decoded[0].HasValue {
		t.Errorf("decoded[0].HasValue = true, want false (delete)")
	}
}

func TestEncodeDecodeIdentifiersSequence(t *testing.T) {
	p1 := New()
	p1.PushDelta(60001)
	p2 := New()
	p2.PushDelta(1756)
	p2.PushKey("myserver")

	data, err := EncodeIdentifiers([]*Path{p1, p2})
	if err != nil {
		t.Fatalf("EncodeIdentifiers() error = %v", err)
	}

	decoded, err := DecodeIdentifiers(data)
	if err != nil {
		t.Fatalf("DecodeIdentifiers() error = %v", err)
	}
	if len(decoded) != 2 {
		t.Fatalf("len(decoded) = %d, want 2", len(decoded))
	}
	sid0, _ := decoded[0].AbsoluteSid()
	if sid0 != 60001 {
		t.Errorf("decoded[0] absolute sid = %d, want 60001", sid0)
	}
	// decoded[1] came from [1756, "myserver"]: the array's first element is
	// the SID and the key that follows is not chained into it.
	sid1, ok := decoded[1].AbsoluteSid()
	if !ok || sid1 != 1756 {
		t.Errorf("decoded[1] absolute sid = (%d, %v), want (1756, true)", sid1, ok)
	}
	if len(decoded[1].Components) != 1 {
		t.Errorf("decoded[1] components = %d, want 1", len(decoded[1].Components))
	}
}

func TestDecodeIdentifiersIgnoresTrailingKeysWithoutChaining(t *testing.T) {
	// [d0, key1, d2, key2]: a full instance path would chain d0+d2 into
	// the absolute SID, but a FETCH identifier only takes the first
	// element and discards everything after it.
	data, err := cbor.Marshal([]any{int64(60010), "key1", int64(5), "key2"})
	if err != nil {
		t.Fatalf("cbor.Marshal() error = %v", err)
	}

	decoded, err := DecodeIdentifiers(data)
	if err != nil {
		t.Fatalf("DecodeIdentifiers() error = %v", err)
	}
	if len(decoded) != 1 {
		t.Fatalf("len(decoded) = %d, want 1", len(decoded))
	}

	sid, ok := decoded[0].AbsoluteSid()
	if !ok || sid != 60010 {
		t.Errorf("AbsoluteSid() = (%d, %v), want (60010, true)", sid, ok)
	}
	if len(decoded[0].Components) != 1 {
		t.Errorf("len(Components) = %d, want 1", len(decoded[0].Components))
	}
}

func TestDecodeIdentifiersBareIntegerAndEmpty(t *testing.T) {
	data, err := cbor.Marshal(int64(60002))
	if err != nil {
		t.Fatalf("cbor.Marshal() error = %v", err)
	}
	decoded, err := DecodeIdentifiers(data)
	if err != nil {
		t.Fatalf("DecodeIdentifiers() error = %v", err)
	}
	if len(decoded) != 1 {
		t.Fatalf("len(decoded) = %d, want 1", len(decoded))
	}
	sid, ok := decoded[0].AbsoluteSid()
	if !ok || sid != 60002 {
		t.Errorf("AbsoluteSid() = (%d, %v), want (60002, true)", sid, ok)
	}
}
