package coreconf

import (
	"testing"

	"github.com/samsirohi11/coreconf/sidcat"
)

func newTestBuilder(t *testing.T) *RequestBuilder {
	t.Helper()
	cat, err := sidcat.Parse([]byte(sampleSID))
	if err != nil {
		t.Fatalf("sidcat.Parse() error = %v", err)
	}
	return NewRequestBuilder(cat)
}

func TestBuildFetch(t *testing.T) {
	b := newTestBuilder(t)
	payload, err := b.BuildFetch([]string{"/example-1:greeting"})
	if err != nil {
		t.Fatalf("BuildFetch() error = %v", err)
	}
	if len(payload) == 0 {
		t.Errorf("BuildFetch() returned empty payload")
	}
}

func TestBuildFetchSids(t *testing.T) {
	b := newTestBuilder(t)
	payload, err := b.BuildFetchSids([]int64{60001, 60002})
	if err != nil {
		t.Fatalf("BuildFetchSids() error = %v", err)
	}
	if len(payload) == 0 {
		t.Errorf("BuildFetchSids() returned empty payload")
	}
}

func TestBuildIPatchAndParseResponseRoundTrip(t *testing.T) {
	b := newTestBuilder(t)

	payload, err := b.BuildIPatch([]PathChange{
		{Path: "/example-1:greeting/author", Value: "Luke", HasValue: true},
	})
	if err != nil {
		t.Fatalf("BuildIPatch() error = %v", err)
	}

	values, err := b.ParseResponse(payload)
	if err != nil {
		t.Fatalf("ParseResponse() error = %v", err)
	}
	if len(values) != 1 || values[0].Sid != 60002 || values[0].Value != "Luke" {
		t.Errorf("ParseResponse() = %+v, want [{60002 Luke}]", values)
	}
}

func TestBuildIPatchSids(t *testing.T) {
	b := newTestBuilder(t)
	payload, err := b.BuildIPatchSids([]SidChange{
		{Sid: 60002, Value: "Luke", HasValue: true},
		{Sid: 60003, HasValue: false},
	})
	if err != nil {
		t.Fatalf("BuildIPatchSids() error = %v", err)
	}
	if len(payload) == 0 {
		t.Errorf("BuildIPatchSids() returned empty payload")
	}
}

func TestBuildPost(t *testing.T) {
	b := newTestBuilder(t)
	payload, err := b.BuildPost("/example-1:greeting", nil)
	if err != nil {
		t.Fatalf("BuildPost() error = %v", err)
	}
	if len(payload) == 0 {
		t.Errorf("BuildPost() returned empty payload")
	}
}

func TestParseResponseJSON(t *testing.T) {
	b := newTestBuilder(t)
	payload, err := b.BuildIPatchSids([]SidChange{{Sid: 60002, Value: "Luke", HasValue: true}})
	if err != nil {
		t.Fatalf("BuildIPatchSids() error = %v", err)
	}

	result, err := b.ParseResponseJSON(payload)
	if err != nil {
		t.Fatalf("ParseResponseJSON() error = %v", err)
	}
	if result["/example-1:greeting/author"] != "Luke" {
		t.Errorf("ParseResponseJSON() = %+v, want author = Luke", result)
	}
}
