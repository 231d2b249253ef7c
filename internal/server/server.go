package server

import (
	"context"

	"label-resolver/internal/resolver"

	"golang.org/x/sync/errgroup"
)

// Options configures which transports run alongside the stdio RPC.
type Options struct {
	// HTTPAddr enables the REST facade when non-empty.
	HTTPAddr string
	// Watch clears the cache when label resources change under Root.
	Watch bool
	// Root is the label metadata root, used by the watcher.
	Root string
}

// Server bundles the stdio RPC transport with its optional companions.
type Server struct {
	rpc     *RPC
	http    *HTTP
	watcher *Watcher
}

// New assembles a server around an engine.
func New(engine *resolver.Resolver, opts Options) *Server {
	service := NewService(engine)

	s := &Server{rpc: NewRPC(service)}
	if opts.HTTPAddr != "" {
		s.http = NewHTTP(service, opts.HTTPAddr)
	}
	if opts.Watch && opts.Root != "" {
		s.watcher = NewWatcher(opts.Root, engine.ClearCache)
	}
	return s
}

// Run blocks until the stdio client disconnects, a transport fails, or ctx
// is cancelled. The stdio transport ending shuts the others down.
func (s *Server) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	eg, egctx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		defer cancel()
		return s.rpc.Run(egctx)
	})
	if s.http != nil {
		eg.Go(func() error {
			return s.http.Run(egctx)
		})
	}
	if s.watcher != nil {
		eg.Go(func() error {
			return s.watcher.Run(egctx)
		})
	}

	return eg.Wait()
}
