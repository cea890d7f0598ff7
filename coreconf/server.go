package coreconf

import (
	"context"
	"sync"
)

// Server wraps a Handler with a mutex so a transport adapter serializing
// requests from multiple goroutines through one handler has a ready-made
// single-writer lock, instead of every transport author building one.
type Server struct {
	mu      sync.Mutex
	handler *Handler
}

// NewServer wraps handler for concurrent use.
func NewServer(handler *Handler) *Server {
	return &Server{handler: handler}
}

// RegisterRPC registers fn to handle POST requests addressed at sid.
func (s *Server) RegisterRPC(sid int64, fn RPCHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handler.RegisterRPC(sid, fn)
}

// Handle serializes access to the underlying Handler.
func (s *Server) Handle(ctx context.Context, request Request) Response {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.handler.Handle(ctx, request)
}

// Handler returns the wrapped handler for read-only inspection (e.g.
// Handler.Datastore()). Callers must not call Handle concurrently with
// methods on the returned Handler that mutate it.
func (s *Server) Handler() *Handler { return s.handler }
