// Package cferrors defines the closed error taxonomy used across the
// coreconf packages. It does not define response codes; those live in
// package coreconf.
package cferrors

import (
	"errors"
	"fmt"
)

// Kind is a closed enumeration of the error categories a coreconf
// operation can fail with. It lets the request handler translate any
// error returned by a codec, caster, or datastore call into a Response
// without inspecting error strings.
type Kind int

const (
	// KindOther covers errors outside the closed taxonomy (host I/O at
	// the edge, programmer errors). Handlers treat it as internal.
	KindOther Kind = iota
	KindSidNotFound
	KindIdentifierNotFound
	KindCborDecode
	KindCborEncode
	KindTypeConversion
	KindInvalidSidFile
	KindValidationError
	KindResourceNotFound
	KindMethodNotAllowed
	KindUnsupportedContentFormat
)

func (k Kind) String() string {
	switch k {
	case KindSidNotFound:
		return "sid_not_found"
	case KindIdentifierNotFound:
		return "identifier_not_found"
	case KindCborDecode:
		return "cbor_decode"
	case KindCborEncode:
		return "cbor_encode"
	case KindTypeConversion:
		return "type_conversion"
	case KindInvalidSidFile:
		return "invalid_sid_file"
	case KindValidationError:
		return "validation_error"
	case KindResourceNotFound:
		return "resource_not_found"
	case KindMethodNotAllowed:
		return "method_not_allowed"
	case KindUnsupportedContentFormat:
		return "unsupported_content_format"
	default:
		return "other"
	}
}

// Error is the error type returned by every coreconf package. It carries
// a Kind so callers can branch on category without string matching, plus
// an optional wrapped cause.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// New constructs an *Error with the given kind and message.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap constructs an *Error that wraps cause, preserving it via errors.Unwrap.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// SidNotFound reports that no SID is registered for the given identifier
// path.
func SidNotFound(identifier string) *Error {
	return New(KindSidNotFound, fmt.Sprintf("no SID registered for identifier %q", identifier))
}

// IdentifierNotFound reports that no identifier is registered for the
// given SID.
func IdentifierNotFound(sid int64) *Error {
	return New(KindIdentifierNotFound, fmt.Sprintf("no identifier registered for SID %d", sid))
}

// KindOf extracts the Kind from err if it (or something it wraps) is a
// *Error; otherwise it returns KindOther.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindOther
}
