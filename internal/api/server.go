// Package api is the thin HTTP adapter in front of the synchronization
// tree: it parses query parameters, calls the sync query surface, and
// serializes the {success, data, error_message} envelope spec.md §6
// mandates bit-for-bit. It holds no tree logic of its own.
package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/byldsync/treesync/internal/httpx"
	"github.com/byldsync/treesync/internal/synctree"
)

// Option configures a Server using the functional-options pattern; options
// are applied left to right in New.
type Option func(*Server)

// WithLogger overrides the server's logger. The default discards logs.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// WithAddr sets the listen address used by ListenAndServe.
func WithAddr(addr string) Option {
	return func(s *Server) { s.addr = addr }
}

// Server is the HTTP adapter over a *synctree.SyncTree.
type Server struct {
	tree   *synctree.SyncTree
	logger *slog.Logger
	addr   string
	http   *http.Server
}

// New builds a Server for tree, applying opts. The default logger
// discards everything and the default address is ":8080".
func New(tree *synctree.SyncTree, opts ...Option) *Server {
	s := &Server{
		tree:   tree,
		logger: slog.New(slog.NewTextHandler(discard{}, nil)),
		addr:   ":8080",
	}
	for _, opt := range opts {
		opt(s)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/sync/node", s.handleNode)
	mux.HandleFunc("/api/sync", s.handleSince)

	s.http = &http.Server{
		Addr: s.addr,
		Handler: httpx.Chain(mux,
			httpx.Recovery(s.logger),
			httpx.Logger(s.logger),
		),
	}
	return s
}

// ListenAndServe starts the HTTP server, blocking until it errors or
// Shutdown is called (matching net/http.Server's contract exactly — the
// adapter adds no behavior on top of it).
func (s *Server) ListenAndServe() error {
	return s.http.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

// Handler exposes the underlying http.Handler for tests that want to drive
// requests with httptest without binding a real listener.
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }
