// Command explained walks through a GET/FETCH/iPATCH-set/iPATCH-delete
// sequence against an in-process handler, printing the wire CBOR and its
// decoded JSON at each step: the Go equivalent of the original example's
// step-by-step protocol walkthrough.
package main

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/samsirohi11/coreconf/coreconf"
	"github.com/samsirohi11/coreconf/datastore"
	"github.com/samsirohi11/coreconf/sidcat"
	"github.com/samsirohi11/coreconf/transcode"
)

const sampleSID = `{
	"module-name": "example-1",
	"module-revision": "unknown",
	"item": [
		{"namespace": "module", "identifier": "example-1", "sid": 60000},
		{"namespace": "data", "identifier": "/example-1:greeting", "sid": 60001},
		{"namespace": "data", "identifier": "/example-1:greeting/author", "sid": 60002, "type": "string"},
		{"namespace": "data", "identifier": "/example-1:greeting/message", "sid": 60003, "type": "string"}
	],
	"key-mapping": {}
}`

const initialData = `{
	"example-1:greeting": {
		"author": "Obi-Wan",
		"message": "Hello there!"
	}
}`

func main() {
	fmt.Println("CORECONF walkthrough: SID-indexed YANG data over GET/FETCH/iPATCH")
	fmt.Println()

	catalog, err := sidcat.Parse([]byte(sampleSID))
	if err != nil {
		panic(err)
	}

	fmt.Println("SID mappings:")
	for _, e := range []struct {
		sid   int64
		label string
	}{
		{60000, "example-1 (module)"},
		{60001, "/example-1:greeting (container)"},
		{60002, "/example-1:greeting/author (leaf, string)"},
		{60003, "/example-1:greeting/message (leaf, string)"},
	} {
		fmt.Printf("  %d = %s\n", e.sid, e.label)
	}
	fmt.Println()

	var seed map[string]any
	if err := json.Unmarshal([]byte(initialData), &seed); err != nil {
		panic(err)
	}
	ds := datastore.WithData(catalog, seed)
	handler := coreconf.NewHandler(ds)
	builder := coreconf.NewRequestBuilder(catalog)
	tc := transcode.New(catalog)

	fmt.Println("Initial data:")
	printJSON(seed)
	fmt.Println()

	ctx := context.Background()

	// 1. GET: retrieve the entire datastore.
	step("1. GET", "Retrieve the entire datastore")
	resp := handler.Handle(ctx, coreconf.NewRequest(coreconf.MethodGet))
	printResponse(resp)
	printDecodedCBOR(tc, resp.Payload)
	fmt.Println()

	// 2. FETCH: retrieve SID 60002 (author) specifically.
	step("2. FETCH", "Retrieve specific nodes by SID (here: 60002, author)")
	fetchPayload, err := builder.BuildFetchSids([]int64{60002})
	if err != nil {
		panic(err)
	}
	fmt.Printf("Request payload (CBOR): %s\n", hex.EncodeToString(fetchPayload))
	resp = handler.Handle(ctx, coreconf.NewRequest(coreconf.MethodFetch).WithPayload(fetchPayload, coreconf.ContentFormatYangIdentifiersCBOR))
	printResponse(resp)
	printDecodedInstances(builder, catalog, resp.Payload)
	fmt.Println()

	// 3. iPATCH: change author from "Obi-Wan" to "General Kenobi".
	step("3. iPATCH", `Modify a node: {60002: "General Kenobi"}`)
	patchPayload, err := builder.BuildIPatchSids([]coreconf.SidChange{{Sid: 60002, Value: "General Kenobi", HasValue: true}})
	if err != nil {
		panic(err)
	}
	fmt.Printf("Request payload (CBOR): %s\n", hex.EncodeToString(patchPayload))
	resp = handler.Handle(ctx, coreconf.NewRequest(coreconf.MethodIPatch).WithPayload(patchPayload, coreconf.ContentFormatYangInstancesCBORSeq))
	printResponse(resp)
	fmt.Println()

	// 4. GET: verify the change took effect.
	step("4. GET", "Verify the change")
	resp = handler.Handle(ctx, coreconf.NewRequest(coreconf.MethodGet))
	printDecodedCBOR(tc, resp.Payload)
	fmt.Println()

	// 5. iPATCH with null: delete the author node.
	step("5. iPATCH (delete)", "Delete a node by setting it to null: {60002: null}")
	deletePayload, err := builder.BuildIPatchSids([]coreconf.SidChange{{Sid: 60002, HasValue: false}})
	if err != nil {
		panic(err)
	}
	fmt.Printf("Request payload (CBOR): %s\n", hex.EncodeToString(deletePayload))
	resp = handler.Handle(ctx, coreconf.NewRequest(coreconf.MethodIPatch).WithPayload(deletePayload, coreconf.ContentFormatYangInstancesCBORSeq))
	printResponse(resp)
	fmt.Println()

	fmt.Println("Final state (author deleted):")
	resp = handler.Handle(ctx, coreconf.NewRequest(coreconf.MethodGet))
	printDecodedCBOR(tc, resp.Payload)

	fmt.Println()
	fmt.Println("Summary:")
	fmt.Println("  GET     - retrieve the entire datastore")
	fmt.Println("  FETCH   - retrieve specific nodes by SID")
	fmt.Println("  iPATCH  - create/update nodes ({SID: value}), delete nodes ({SID: null})")
	fmt.Println("  POST    - invoke RPCs/actions")
}

func step(title, purpose string) {
	fmt.Printf("--- %s ---\n%s\n", title, purpose)
}

func printResponse(resp coreconf.Response) {
	fmt.Printf("Response code: %s\n", resp.Code)
	fmt.Printf("Response CBOR (%d bytes): %s\n", len(resp.Payload), hex.EncodeToString(resp.Payload))
}

func printDecodedCBOR(tc *transcode.Transcoder, payload []byte) {
	decoded, err := tc.DecodeCBOR(payload)
	if err != nil {
		fmt.Println("  (failed to decode:", err, ")")
		return
	}
	printJSON(decoded)
}

func printDecodedInstances(builder *coreconf.RequestBuilder, catalog *sidcat.Catalog, payload []byte) {
	values, err := builder.ParseResponse(payload)
	if err != nil {
		fmt.Println("  (failed to decode:", err, ")")
		return
	}
	for _, v := range values {
		identifier, _ := catalog.Identifier(v.Sid)
		fmt.Printf("  SID %d (%s) = %v\n", v.Sid, identifier, v.Value)
	}
}

func printJSON(value any) {
	out, err := json.MarshalIndent(value, "  ", "  ")
	if err != nil {
		fmt.Println("  (failed to render:", err, ")")
		return
	}
	fmt.Println("  " + string(out))
}
