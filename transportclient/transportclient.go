// Package transportclient provides a resilient WebSocket client carrying
// coreconf requests and responses. The protocol this module implements is
// transport-agnostic (spec.md defines only the CoAP payload semantics); this
// package substitutes a WebSocket framing for the illustrative demo
// binaries, since the example pack carries no CoAP library. Connect retries
// the initial dial with exponential backoff and jitter, the same shape as
// the wider codebase's Jetstream client, trimmed to a single in-flight
// request/response instead of a queued message stream. A connection that
// drops after Connect returns is not re-established automatically.
package transportclient

import (
	"context"
	"errors"
	"log/slog"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/gorilla/websocket"

	"github.com/samsirohi11/coreconf/coreconf"
)

// Default values for WebSocket reconnection.
const (
	DefaultBaseDelay        = 100 * time.Millisecond
	DefaultMaxDelay         = 10 * time.Second
	DefaultJitterFactor     = 0.5
	DefaultMaxRetryAttempts = 5
)

// Configuration errors.
var (
	ErrEmptyURL        = errors.New("server URL cannot be empty")
	ErrInvalidDelay    = errors.New("base delay must be positive")
	ErrInvalidMaxDelay = errors.New("max delay must be >= base delay")
	ErrInvalidJitter   = errors.New("jitter factor must be between 0 and 1")
	ErrNotConnected    = errors.New("client is not connected")
	ErrMaxRetries      = errors.New("exceeded maximum connection retry attempts")
)

// Config holds configuration for the demo WebSocket client.
type Config struct {
	URL              string
	BaseDelay        time.Duration
	MaxDelay         time.Duration
	JitterFactor     float64
	MaxRetryAttempts int64
}

// DefaultConfig returns a Config with sensible default values for url.
func DefaultConfig(url string) Config {
	return Config{
		URL:              url,
		BaseDelay:        DefaultBaseDelay,
		MaxDelay:         DefaultMaxDelay,
		JitterFactor:     DefaultJitterFactor,
		MaxRetryAttempts: DefaultMaxRetryAttempts,
	}
}

// Validate checks that the configuration is usable.
func (c Config) Validate() error {
	if c.URL == "" {
		return ErrEmptyURL
	}
	if c.BaseDelay <= 0 {
		return ErrInvalidDelay
	}
	if c.MaxDelay < c.BaseDelay {
		return ErrInvalidMaxDelay
	}
	if c.JitterFactor < 0 || c.JitterFactor > 1 {
		return ErrInvalidJitter
	}
	return nil
}

// Frame is the wire envelope carrying a coreconf.Request over WebSocket.
// It is itself CBOR-encoded, reusing the same encoder as the protocol
// payloads it carries.
type Frame struct {
	Method        int     `cbor:"method"`
	ContentFormat *uint16 `cbor:"content_format,omitempty"`
	QueryContent  int     `cbor:"query_content,omitempty"`
	QueryDefaults int     `cbor:"query_defaults,omitempty"`
	Payload       []byte  `cbor:"payload,omitempty"`
}

// ResponseFrame is the wire envelope carrying a coreconf.Response.
type ResponseFrame struct {
	Code          int     `cbor:"code"`
	ContentFormat *uint16 `cbor:"content_format,omitempty"`
	Payload       []byte  `cbor:"payload,omitempty"`
}

// EncodeFrame serializes a coreconf.Request into wire bytes.
func EncodeFrame(req coreconf.Request) ([]byte, error) {
	frame := Frame{
		Method:        int(req.Method),
		QueryContent:  int(req.Query.Content),
		QueryDefaults: int(req.Query.Defaults),
		Payload:       req.Payload,
	}
	if req.ContentFormat != nil {
		v := uint16(*req.ContentFormat)
		frame.ContentFormat = &v
	}
	return cbor.Marshal(frame)
}

// DecodeFrame parses wire bytes back into a coreconf.Request.
func DecodeFrame(data []byte) (coreconf.Request, error) {
	var frame Frame
	if err := cbor.Unmarshal(data, &frame); err != nil {
		return coreconf.Request{}, err
	}
	req := coreconf.Request{
		Method:  coreconf.Method(frame.Method),
		Payload: frame.Payload,
		Query:   coreconf.QueryParams{Content: coreconf.ContentParam(frame.QueryContent), Defaults: coreconf.DefaultsParam(frame.QueryDefaults)},
	}
	if frame.ContentFormat != nil {
		cf := coreconf.ContentFormat(*frame.ContentFormat)
		req.ContentFormat = &cf
	}
	return req, nil
}

// EncodeResponseFrame serializes a coreconf.Response into wire bytes.
func EncodeResponseFrame(resp coreconf.Response) ([]byte, error) {
	frame := ResponseFrame{Code: int(resp.Code), Payload: resp.Payload}
	if resp.ContentFormat != nil {
		v := uint16(*resp.ContentFormat)
		frame.ContentFormat = &v
	}
	return cbor.Marshal(frame)
}

// DecodeResponseFrame parses wire bytes back into a coreconf.Response.
func DecodeResponseFrame(data []byte) (coreconf.Response, error) {
	var frame ResponseFrame
	if err := cbor.Unmarshal(data, &frame); err != nil {
		return coreconf.Response{}, err
	}
	resp := coreconf.Response{Code: coreconf.ResponseCode(frame.Code), Payload: frame.Payload}
	if frame.ContentFormat != nil {
		cf := coreconf.ContentFormat(*frame.ContentFormat)
		resp.ContentFormat = &cf
	}
	return resp, nil
}

// Client is a resilient WebSocket client for talking to a coreconf demo
// server. Connect dials with exponential backoff and jitter, but (unlike
// the wider codebase's streaming Jetstream client) carries one in-flight
// request/response pair at a time rather than a queued message stream.
type Client struct {
	config Config
	logger *slog.Logger

	mu             sync.Mutex
	rng            *rand.Rand
	conn           *websocket.Conn
	reconnectCount int64
}

// NewClient creates a demo transport client. If logger is nil, slog.Default
// is used.
func NewClient(config Config, logger *slog.Logger) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		config: config,
		logger: logger,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}, nil
}

// Connect dials the server, retrying with exponential backoff until
// MaxRetryAttempts is exhausted (0 means retry forever until ctx is done).
func (c *Client) Connect(ctx context.Context) error {
	var attempt int64
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
		conn, _, err := dialer.DialContext(ctx, c.config.URL, nil)
		if err == nil {
			c.mu.Lock()
			c.conn = conn
			c.mu.Unlock()
			atomic.StoreInt64(&c.reconnectCount, 0)
			c.logger.Info("connected to coreconf server", "url", c.config.URL)
			return nil
		}

		attempt++
		c.logger.Warn("connection attempt failed", "error", err, "attempt", attempt)
		if c.config.MaxRetryAttempts > 0 && attempt >= c.config.MaxRetryAttempts {
			return ErrMaxRetries
		}

		delay := c.computeBackoff(attempt)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
}

// SendRequest sends req and blocks for the matching response.
func (c *Client) SendRequest(req coreconf.Request) (coreconf.Response, error) {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		return coreconf.Response{}, ErrNotConnected
	}

	frame, err := EncodeFrame(req)
	if err != nil {
		return coreconf.Response{}, err
	}
	if err := conn.WriteMessage(websocket.BinaryMessage, frame); err != nil {
		return coreconf.Response{}, err
	}

	_, payload, err := conn.ReadMessage()
	if err != nil {
		return coreconf.Response{}, err
	}
	return DecodeResponseFrame(payload)
}

// Close closes the underlying connection, if any.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	return err
}

// IsConnected reports whether the client currently holds an open connection.
func (c *Client) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn != nil
}

// computeBackoff calculates the next reconnection delay with exponential
// backoff and jitter.
func (c *Client) computeBackoff(attempt int64) time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()

	shift := uint(attempt)
	if shift > 30 {
		shift = 30
	}
	backoff := float64(c.config.BaseDelay) * float64(uint64(1)<<shift)
	if backoff > float64(c.config.MaxDelay) {
		backoff = float64(c.config.MaxDelay)
	}
	if c.config.JitterFactor > 0 {
		jitter := (c.rng.Float64() - 0.5) * c.config.JitterFactor
		backoff = backoff * (1 + jitter)
	}
	return time.Duration(backoff)
}
