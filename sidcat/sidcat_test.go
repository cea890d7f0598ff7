package sidcat

import (
	"testing"

	"github.com/samsirohi11/coreconf/yangtype"
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

func TestParse(t *testing.T) {
	cat, err := Parse([]byte(sampleSID))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if cat.ModuleName != "example-1" {
		t.Errorf("ModuleName = %q, want example-1", cat.ModuleName)
	}
	if cat.ModuleRevision != "unknown" {
		t.Errorf("ModuleRevision = %q, want unknown", cat.ModuleRevision)
	}
	if cat.ModulePrefix != "/example-1:" {
		t.Errorf("ModulePrefix = %q, want /example-1:", cat.ModulePrefix)
	}
}

func TestSidLookup(t *testing.T) {
	cat, err := Parse([]byte(sampleSID))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if sid, ok := cat.Sid("/example-1:greeting"); !ok || sid != 60001 {
		t.Errorf("Sid(greeting) = (%d, %v), want (60001, true)", sid, ok)
	}
	if sid, ok := cat.Sid("/example-1:greeting/author"); !ok || sid != 60002 {
		t.Errorf("Sid(author) = (%d, %v), want (60002, true)", sid, ok)
	}
	if id, ok := cat.Identifier(60003); !ok || id != "/example-1:greeting/message" {
		t.Errorf("Identifier(60003) = (%q, %v), want (/example-1:greeting/message, true)", id, ok)
	}
	if _, ok := cat.Sid("/example-1:nonexistent"); ok {
		t.Errorf("Sid(nonexistent) unexpectedly found")
	}
}

func TestTypeLookup(t *testing.T) {
	cat, err := Parse([]byte(sampleSID))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	got, ok := cat.Type("/example-1:greeting/author")
	if !ok {
		t.Fatalf("Type(author) not found")
	}
	if got.Kind != yangtype.KindString {
		t.Errorf("Type(author).Kind = %v, want KindString", got.Kind)
	}

	if _, ok := cat.Type("/example-1:greeting"); ok {
		t.Errorf("Type(greeting) unexpectedly found; container has no type")
	}
}

func TestItemsAlias(t *testing.T) {
	content := `{
		"module-name": "alias-1",
		"module-revision": "unknown",
		"items": [
			{"identifier": "/alias-1:leaf", "sid": 70000, "type": "boolean"}
		]
	}`
	cat, err := Parse([]byte(content))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if sid, ok := cat.Sid("/alias-1:leaf"); !ok || sid != 70000 {
		t.Errorf("Sid(leaf) = (%d, %v), want (70000, true)", sid, ok)
	}
}

func TestKeyMapping(t *testing.T) {
	content := `{
		"module-name": "list-1",
		"module-revision": "unknown",
		"item": [
			{"identifier": "/list-1:entries", "sid": 80000}
		],
		"key-mapping": {"80000": [80001, 80002]}
	}`
	cat, err := Parse([]byte(content))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	keys, ok := cat.Keys(80000)
	if !ok || len(keys) != 2 || keys[0] != 80001 || keys[1] != 80002 {
		t.Errorf("Keys(80000) = %v, %v, want [80001 80002], true", keys, ok)
	}
}

func TestIdentifierResolverStripsModulePrefix(t *testing.T) {
	content := `{
		"module-name": "example-1",
		"module-revision": "unknown",
		"item": [
			{"identifier": "/example-1:infrared", "sid": 60042}
		]
	}`
	cat, err := Parse([]byte(content))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	resolve := cat.IdentifierResolver()
	name, ok := resolve(60042)
	if !ok || name != "infrared" {
		t.Errorf("IdentifierResolver()(60042) = (%q, %v), want (infrared, true)", name, ok)
	}
}

func TestParseInvalidJSON(t *testing.T) {
	if _, err := Parse([]byte("not json")); err == nil {
		t.Errorf("expected error parsing invalid JSON")
	}
}
