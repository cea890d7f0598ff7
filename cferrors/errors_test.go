package cferrors

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"sid not found", SidNotFound("/example-1:greeting"), KindSidNotFound},
		{"identifier not found", IdentifierNotFound(60099), KindIdentifierNotFound},
		{"wrapped", fmt.Errorf("context: %w", SidNotFound("/x")), KindSidNotFound},
		{"plain stdlib error", errors.New("boom"), KindOther},
		{"nil error path", nil, KindOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Errorf("KindOf() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestErrorMessage(t *testing.T) {
	cause := errors.New("eof")
	err := Wrap(KindCborDecode, "decoding payload", cause)

	if !errors.Is(err, cause) {
		t.Errorf("expected errors.Is to find wrapped cause")
	}
	want := "cbor_decode: decoding payload: eof"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestKindString(t *testing.T) {
	if KindSidNotFound.String() != "sid_not_found" {
		t.Errorf("unexpected Kind.String() = %q", KindSidNotFound.String())
	}
	if Kind(999).String() != "other" {
		t.Errorf("unknown kind should stringify to 'other'")
	}
}
