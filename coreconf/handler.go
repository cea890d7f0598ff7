package coreconf

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/samsirohi11/coreconf/datastore"
	"github.com/samsirohi11/coreconf/instanceid"
)

// RPCHandler dispatches a POST-invoked RPC/action. input is nil when the
// caller supplied no input instance; a nil, nil return means "no output".
type RPCHandler func(ctx context.Context, input any) (any, error)

// MetricsRecorder is the subset of coreconfmetrics.Metrics the handler
// needs, kept as an interface here so this package does not import the
// ambient metrics package directly.
type MetricsRecorder interface {
	ObserveRequest(method string, responseClass int, durationSeconds float64)
}

// Handler processes CORECONF requests against a datastore. It has no
// transport dependency — plug it into any CoAP (or CoAP-like) server.
type Handler struct {
	ds            *datastore.Datastore
	rpcHandlers   map[int64]RPCHandler
	transactional bool
	logger        *slog.Logger
	metrics       MetricsRecorder
}

// HandlerOption configures a Handler at construction time.
type HandlerOption func(*Handler)

// WithTransactional enables snapshot/restore iPATCH semantics: all
// changes in a request apply atomically, rolling back to the pre-request
// state on the first error instead of leaving partial writes.
func WithTransactional(enabled bool) HandlerOption {
	return func(h *Handler) { h.transactional = enabled }
}

// WithLogger attaches a structured logger; per-operation detail logs at
// Debug, taxonomy errors at Warn/Error.
func WithLogger(logger *slog.Logger) HandlerOption {
	return func(h *Handler) { h.logger = logger }
}

// WithMetrics attaches a metrics recorder.
func WithMetrics(m MetricsRecorder) HandlerOption {
	return func(h *Handler) { h.metrics = m }
}

// NewHandler builds a Handler over the given datastore.
func NewHandler(ds *datastore.Datastore, opts ...HandlerOption) *Handler {
	h := &Handler{
		ds:          ds,
		rpcHandlers: make(map[int64]RPCHandler),
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Datastore returns the handler's underlying datastore.
func (h *Handler) Datastore() *datastore.Datastore { return h.ds }

// RegisterRPC registers fn to handle POST requests addressed at sid.
// Unregistered SIDs fall back to the null-ack behavior.
func (h *Handler) RegisterRPC(sid int64, fn RPCHandler) {
	h.rpcHandlers[sid] = fn
}

// Handle dispatches request to the method-specific handler and records
// an optional per-request correlation id and metrics observation.
func (h *Handler) Handle(ctx context.Context, request Request) Response {
	start := time.Now()
	requestID := uuid.NewString()
	logger := h.logger.With("request_id", requestID, "method", request.Method.String())
	logger.Debug("handling coreconf request")

	var response Response
	switch request.Method {
	case MethodGet:
		response = h.handleGet(ctx, request)
	case MethodFetch:
		response = h.handleFetch(ctx, request)
	case MethodIPatch:
		response = h.handleIPatch(ctx, request)
	case MethodPost:
		response = h.handlePost(ctx, request)
	default:
		response = MethodNotAllowedResponse(request.Method)
	}

	if !response.Code.IsSuccess() {
		logger.Warn("coreconf request failed", "code", response.Code.String())
	}
	if h.metrics != nil {
		class, _ := response.Code.ToCodePair()
		h.metrics.ObserveRequest(request.Method.String(), int(class), time.Since(start).Seconds())
	}
	return response
}

func (h *Handler) handleGet(_ context.Context, _ Request) Response {
	cbor, err := h.ds.GetAllCBOR()
	if err != nil {
		return ErrorResponse(ResponseCodeInternalServerError, err.Error())
	}
	return ContentResponse(cbor, ContentFormatYangDataCBOR)
}

func (h *Handler) handleFetch(ctx context.Context, request Request) Response {
	if request.ContentFormat != nil &&
		*request.ContentFormat != ContentFormatYangIdentifiersCBOR &&
		*request.ContentFormat != ContentFormatYangDataCBOR {
		return ErrorResponse(ResponseCodeUnsupportedContentFormat, "expected yang-identifiers+cbor")
	}

	if len(request.Payload) == 0 {
		return h.handleGet(ctx, request)
	}

	paths, err := instanceid.DecodeIdentifiers(request.Payload)
	if err != nil {
		return ErrorResponse(ResponseCodeBadRequest, err.Error())
	}

	instances := make([]instanceid.Instance, 0, len(paths))
	for _, p := range paths {
		sid, ok := p.AbsoluteSid()
		if !ok {
			continue
		}
		value, found, err := h.ds.GetBySid(sid)
		if err != nil {
			// unknown SID: skip silently, matching the original's
			// "SID not in model, skip" behavior
			continue
		}
		if !found {
			continue
		}
		instances = append(instances, instanceid.NewInstance(instanceid.FromSid(sid), value))
	}

	cbor, err := instanceid.EncodeInstances(instances)
	if err != nil {
		return ErrorResponse(ResponseCodeInternalServerError, err.Error())
	}
	return ContentResponse(cbor, ContentFormatYangInstancesCBORSeq)
}

func (h *Handler) handleIPatch(_ context.Context, request Request) Response {
	if request.ContentFormat != nil &&
		*request.ContentFormat != ContentFormatYangInstancesCBORSeq &&
		*request.ContentFormat != ContentFormatYangDataCBOR {
		return ErrorResponse(ResponseCodeUnsupportedContentFormat, "expected yang-instances+cbor-seq")
	}

	instances, err := instanceid.DecodeInstances(request.Payload)
	if err != nil {
		return ErrorResponse(ResponseCodeBadRequest, err.Error())
	}

	var snapshot any
	if h.transactional {
		snapshot = h.ds.Snapshot()
	}

	for _, inst := range instances {
		sid, ok := inst.Path.AbsoluteSid()
		if !ok {
			continue
		}

		var applyErr error
		if inst.HasValue {
			applyErr = h.ds.SetBySid(sid, inst.Value)
		} else {
			_, applyErr = h.ds.DeleteBySid(sid)
		}

		if applyErr != nil {
			if h.transactional {
				h.ds.Restore(snapshot)
			}
			return ErrorResponse(ResponseCodeConflict, applyErr.Error())
		}
	}

	return ChangedResponse()
}

func (h *Handler) handlePost(ctx context.Context, request Request) Response {
	if request.ContentFormat != nil && *request.ContentFormat != ContentFormatYangInstancesCBORSeq {
		return ErrorResponse(ResponseCodeUnsupportedContentFormat, "expected yang-instances+cbor-seq")
	}

	instances, err := instanceid.DecodeInstances(request.Payload)
	if err != nil {
		return ErrorResponse(ResponseCodeBadRequest, err.Error())
	}

	results := make([]instanceid.Instance, 0, len(instances))
	for _, inst := range instances {
		sid, ok := inst.Path.AbsoluteSid()
		if !ok {
			continue
		}

		if fn, registered := h.rpcHandlers[sid]; registered {
			var input any
			if inst.HasValue {
				input = inst.Value
			}
			output, err := fn(ctx, input)
			if err != nil {
				return ErrorResponse(ResponseCodeInternalServerError, err.Error())
			}
			if output == nil {
				results = append(results, instanceid.DeleteInstance(instanceid.FromSid(sid)))
			} else {
				results = append(results, instanceid.NewInstance(instanceid.FromSid(sid), output))
			}
			continue
		}

		if _, ok := h.ds.Catalog().Identifier(sid); ok {
			results = append(results, instanceid.DeleteInstance(instanceid.FromSid(sid)))
			continue
		}

		return NotFoundResponse(formatRPCNotFound(sid))
	}

	cbor, err := instanceid.EncodeInstances(results)
	if err != nil {
		return ErrorResponse(ResponseCodeInternalServerError, err.Error())
	}
	return Response{Code: ResponseCodeChanged, Payload: cbor, ContentFormat: ptr(ContentFormatYangInstancesCBORSeq)}
}

func ptr[T any](v T) *T { return &v }

func formatRPCNotFound(sid int64) string {
	return "RPC SID " + strconv.FormatInt(sid, 10)
}
