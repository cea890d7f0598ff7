// Package coreconf implements the transport-agnostic CORECONF request
// handler and client-side request builder: the four-method protocol
// (GET, FETCH, iPATCH, POST) built on top of datastore.Datastore and the
// instanceid/transcode codecs.
package coreconf

import "fmt"

// ContentFormat identifies a CORECONF CBOR media type by its CoAP
// Content-Format registry value.
type ContentFormat uint16

const (
	// ContentFormatYangDataCBOR is application/yang-data+cbor.
	ContentFormatYangDataCBOR ContentFormat = 112
	// ContentFormatYangIdentifiersCBOR is application/yang-identifiers+cbor.
	ContentFormatYangIdentifiersCBOR ContentFormat = 311
	// ContentFormatYangInstancesCBORSeq is application/yang-instances+cbor-seq.
	ContentFormatYangInstancesCBORSeq ContentFormat = 313
)

// ContentFormatFromUint16 converts a raw Content-Format id to a known
// ContentFormat, reporting false for anything CORECONF doesn't use.
func ContentFormatFromUint16(v uint16) (ContentFormat, bool) {
	switch ContentFormat(v) {
	case ContentFormatYangDataCBOR, ContentFormatYangIdentifiersCBOR, ContentFormatYangInstancesCBORSeq:
		return ContentFormat(v), true
	default:
		return 0, false
	}
}

// Method is a CORECONF request method.
type Method int

const (
	MethodGet Method = iota
	MethodFetch
	MethodIPatch
	MethodPost
)

func (m Method) String() string {
	switch m {
	case MethodGet:
		return "GET"
	case MethodFetch:
		return "FETCH"
	case MethodIPatch:
		return "iPATCH"
	case MethodPost:
		return "POST"
	default:
		return "UNKNOWN"
	}
}

// ResponseCode is a CoAP-style response code used by CORECONF.
type ResponseCode int

const (
	ResponseCodeCreated ResponseCode = iota
	ResponseCodeChanged
	ResponseCodeContent
	ResponseCodeBadRequest
	ResponseCodeUnauthorized
	ResponseCodeBadOption
	ResponseCodeNotFound
	ResponseCodeMethodNotAllowed
	ResponseCodeRequestEntityIncomplete
	ResponseCodeConflict
	ResponseCodeRequestEntityTooLarge
	ResponseCodeUnsupportedContentFormat
	ResponseCodeInternalServerError
)

// ToCodePair returns the (class, detail) CoAP code pair, e.g. (2, 5) for
// 2.05 Content.
func (c ResponseCode) ToCodePair() (uint8, uint8) {
	switch c {
	case ResponseCodeCreated:
		return 2, 1
	case ResponseCodeChanged:
		return 2, 4
	case ResponseCodeContent:
		return 2, 5
	case ResponseCodeBadRequest:
		return 4, 0
	case ResponseCodeUnauthorized:
		return 4, 1
	case ResponseCodeBadOption:
		return 4, 2
	case ResponseCodeNotFound:
		return 4, 4
	case ResponseCodeMethodNotAllowed:
		return 4, 5
	case ResponseCodeRequestEntityIncomplete:
		return 4, 8
	case ResponseCodeConflict:
		return 4, 9
	case ResponseCodeRequestEntityTooLarge:
		return 4, 13
	case ResponseCodeUnsupportedContentFormat:
		return 4, 15
	default:
		return 5, 0
	}
}

func (c ResponseCode) String() string {
	class, detail := c.ToCodePair()
	return fmt.Sprintf("%d.%02d", class, detail)
}

// IsSuccess reports whether c is one of the 2.xx codes.
func (c ResponseCode) IsSuccess() bool {
	switch c {
	case ResponseCodeCreated, ResponseCodeChanged, ResponseCodeContent:
		return true
	default:
		return false
	}
}

// ContentParam is the 'c' query parameter controlling which descendant
// nodes a GET/FETCH reports.
type ContentParam int

const (
	ContentParamAll ContentParam = iota
	ContentParamConfig
	ContentParamNonconfig
)

func contentParamFromString(s string) (ContentParam, bool) {
	switch s {
	case "a":
		return ContentParamAll, true
	case "c":
		return ContentParamConfig, true
	case "n":
		return ContentParamNonconfig, true
	default:
		return 0, false
	}
}

// DefaultsParam is the 'd' query parameter controlling default-value
// reporting.
type DefaultsParam int

const (
	DefaultsParamAll DefaultsParam = iota
	DefaultsParamTrim
)

func defaultsParamFromString(s string) (DefaultsParam, bool) {
	switch s {
	case "a":
		return DefaultsParamAll, true
	case "t":
		return DefaultsParamTrim, true
	default:
		return 0, false
	}
}

// QueryParams holds the parsed 'c' and 'd' query parameters. The SID
// schema this module targets carries no config-flag or default-value
// metadata to filter by, so these are parsed but currently advisory —
// see DESIGN.md.
type QueryParams struct {
	Content  ContentParam
	Defaults DefaultsParam
}

// ParseQueryParams parses a query string like "c=c&d=t".
func ParseQueryParams(query string) QueryParams {
	params := QueryParams{}
	for _, part := range splitAmp(query) {
		key, value, ok := splitOnce(part, '=')
		if !ok {
			continue
		}
		switch key {
		case "c":
			if c, ok := contentParamFromString(value); ok {
				params.Content = c
			}
		case "d":
			if d, ok := defaultsParamFromString(value); ok {
				params.Defaults = d
			}
		}
	}
	return params
}

func splitAmp(s string) []string {
	var parts []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '&' {
			parts = append(parts, s[start:i])
			start = i + 1
		}
	}
	parts = append(parts, s[start:])
	return parts
}

func splitOnce(s string, sep byte) (string, string, bool) {
	for i := 0; i < len(s); i++ {
		if s[i] == sep {
			return s[:i], s[i+1:], true
		}
	}
	return s, "", false
}

// Request is a transport-agnostic CORECONF request.
type Request struct {
	Method        Method
	Payload       []byte
	ContentFormat *ContentFormat
	Query         QueryParams
}

// NewRequest builds an empty request for the given method.
func NewRequest(method Method) Request {
	return Request{Method: method}
}

// WithPayload returns a copy of r carrying the given payload and format.
func (r Request) WithPayload(payload []byte, format ContentFormat) Request {
	r.Payload = payload
	r.ContentFormat = &format
	return r
}

// WithQuery returns a copy of r carrying the given query parameters.
func (r Request) WithQuery(q QueryParams) Request {
	r.Query = q
	return r
}

// Response is a transport-agnostic CORECONF response.
type Response struct {
	Code          ResponseCode
	Payload       []byte
	ContentFormat *ContentFormat
}

// ContentResponse builds a 2.05 Content response carrying payload.
func ContentResponse(payload []byte, format ContentFormat) Response {
	return Response{Code: ResponseCodeContent, Payload: payload, ContentFormat: &format}
}

// ChangedResponse builds a 2.04 Changed response with no payload.
func ChangedResponse() Response {
	return Response{Code: ResponseCodeChanged}
}

// ErrorResponse builds an error response carrying message as the payload.
func ErrorResponse(code ResponseCode, message string) Response {
	return Response{Code: code, Payload: []byte(message)}
}

// NotFoundResponse builds a 4.04 Not Found response for path.
func NotFoundResponse(path string) Response {
	return ErrorResponse(ResponseCodeNotFound, fmt.Sprintf("Resource not found: %s", path))
}

// MethodNotAllowedResponse builds a 4.05 Method Not Allowed response.
func MethodNotAllowedResponse(m Method) Response {
	return ErrorResponse(ResponseCodeMethodNotAllowed, fmt.Sprintf("Method %s not allowed", m))
}
