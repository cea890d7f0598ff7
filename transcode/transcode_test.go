package transcode

import (
	"testing"

	"github.com/samsirohi11/coreconf/sidcat"
)

const sampleSID = `{
	"module-name": "example-1",
	"module-revision": "unknown",
	"item": [
		{"namespace": "module", "identifier": "example-1", "status": "unstable", "sid": 60000},
		{"namespace": "data", "identifier": "/example-1:greeting", "status": "unstable", "sid": 60001},
		{"namespace": "data", "identifier": "/example-1:greeting/author", "status": "unstable", "sid": 60002, "type": "string"},
		{"namespace": "data", "identifier": "/example-1:greeting/message", "status": "unstable", "sid": 60003, "type": "string"}
	],
	"key-mapping": {}
}`

func newTranscoder(t *testing.T) *Transcoder {
	t.Helper()
	cat, err := sidcat.Parse([]byte(sampleSID))
	if err != nil {
		t.Fatalf("sidcat.Parse() error = %v", err)
	}
	return New(cat)
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	tc := newTranscoder(t)

	input := map[string]any{
		"example-1:greeting": map[string]any{
			"author":  "Obi",
			"message": "Hello there!",
		},
	}

	cborBytes, err := tc.EncodeJSON(input)
	if err != nil {
		t.Fatalf("EncodeJSON() error = %v", err)
	}
	if len(cborBytes) == 0 {
		t.Fatalf("EncodeJSON() returned empty bytes")
	}

	decoded, err := tc.DecodeCBOR(cborBytes)
	if err != nil {
		t.Fatalf("DecodeCBOR() error = %v", err)
	}

	top, ok := decoded.(map[string]any)
	if !ok {
		t.Fatalf("decoded value is %T, want map[string]any", decoded)
	}
	greeting, ok := top["example-1:greeting"].(map[string]any)
	if !ok {
		t.Fatalf("greeting is %T, want map[string]any", top["example-1:greeting"])
	}
	if greeting["author"] != "Obi" {
		t.Errorf("author = %v, want Obi", greeting["author"])
	}
	if greeting["message"] != "Hello there!" {
		t.Errorf("message = %v, want 'Hello there!'", greeting["message"])
	}
}

func TestLookupSidDeltas(t *testing.T) {
	tc := newTranscoder(t)

	input := map[string]any{
		"example-1:greeting": map[string]any{
			"author": "Obi",
		},
	}

	sidForm, err := tc.LookupSid(input)
	if err != nil {
		t.Fatalf("LookupSid() error = %v", err)
	}

	top, ok := sidForm.(map[string]any)
	if !ok {
		t.Fatalf("sidForm is %T, want map[string]any", sidForm)
	}
	// 60001 - 0 = 60001
	greeting, ok := top["60001"].(map[string]any)
	if !ok {
		t.Fatalf("expected key '60001', got keys %v", top)
	}
	// 60002 - 60001 = 1
	if greeting["1"] != "Obi" {
		t.Errorf("greeting[\"1\"] = %v, want Obi", greeting["1"])
	}
}

func TestLookupSidUnknownIdentifier(t *testing.T) {
	tc := newTranscoder(t)
	_, err := tc.LookupSid(map[string]any{"example-1:nonexistent": "x"})
	if err == nil {
		t.Fatalf("expected error for unknown identifier")
	}
}

func TestLookupIdentifierUnknownSid(t *testing.T) {
	tc := newTranscoder(t)
	_, err := tc.LookupIdentifier(map[string]any{"999999": "x"})
	if err == nil {
		t.Fatalf("expected error for unresolvable SID delta")
	}
}

func TestLookupIdentifierInvalidKey(t *testing.T) {
	tc := newTranscoder(t)
	_, err := tc.LookupIdentifier(map[string]any{"not-a-number": "x"})
	if err == nil {
		t.Fatalf("expected error for non-numeric SID delta key")
	}
}

func BenchmarkEncodeJSON(b *testing.B) {
	cat, err := sidcat.Parse([]byte(sampleSID))
	if err != nil {
		b.Fatalf("sidcat.Parse() error = %v", err)
	}
	tc := New(cat)
	input := map[string]any{
		"example-1:greeting": map[string]any{
			"author":  "Obi",
			"message": "Hello there!",
		},
	}

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := tc.EncodeJSON(input); err != nil {
			b.Fatalf("EncodeJSON() error = %v", err)
		}
	}
}

func BenchmarkDecodeCBOR(b *testing.B) {
	cat, err := sidcat.Parse([]byte(sampleSID))
	if err != nil {
		b.Fatalf("sidcat.Parse() error = %v", err)
	}
	tc := New(cat)
	input := map[string]any{
		"example-1:greeting": map[string]any{
			"author":  "Obi",
			"message": "Hello there!",
		},
	}
	cborBytes, err := tc.EncodeJSON(input)
	if err != nil {
		b.Fatalf("EncodeJSON() error = %v", err)
	}

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := tc.DecodeCBOR(cborBytes); err != nil {
			b.Fatalf("DecodeCBOR() error = %v", err)
		}
	}
}
