package server

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/dmitrymomot/subject/core/logger"
)

// Server serves one handler with graceful shutdown. Safe for concurrent use.
type Server struct {
	addr           string
	logger         *slog.Logger
	shutdown       time.Duration
	readTimeout    time.Duration
	writeTimeout   time.Duration
	idleTimeout    time.Duration
	maxHeaderBytes int
	tlsConfig      *tls.Config
	onShutdown     []func()

	mu       sync.Mutex
	current  *http.Server
	listener net.Listener
}

// New creates a Server for addr. Without options it logs nowhere and uses
// the package defaults.
func New(addr string, opts ...Option) *Server {
	s := &Server{
		addr:           addr,
		logger:         logger.Discard(),
		shutdown:       DefaultShutdownTimeout,
		readTimeout:    DefaultReadTimeout,
		writeTimeout:   DefaultWriteTimeout,
		idleTimeout:    DefaultIdleTimeout,
		maxHeaderBytes: DefaultMaxHeaderBytes,
	}

	for _, opt := range opts {
		opt(s)
	}

	s.logger = s.logger.With(logger.Component("server"))
	return s
}

// Addr returns the bound address while listening, otherwise the configured one.
// Useful with ":0".
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.addr
}

// Start binds the address and serves handler. It returns ctx.Err() once ctx
// is done, leaving the server running until Stop; it returns nil when Stop
// ends serving first. Request contexts derive from ctx.
func (s *Server) Start(ctx context.Context, handler http.Handler) error {
	srv, ln, err := s.listen(ctx, handler)
	if err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "server listening",
		slog.String("addr", ln.Addr().String()),
		slog.Bool("tls", srv.TLSConfig != nil),
	)

	served := make(chan error, 1)
	go func() {
		if srv.TLSConfig != nil {
			served <- srv.ServeTLS(ln, "", "")
			return
		}
		served <- srv.Serve(ln)
	}()

	select {
	case err := <-served:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		s.detach(srv)
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Server) listen(ctx context.Context, handler http.Handler) (*http.Server, net.Listener, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current != nil {
		return nil, nil, ErrServerAlreadyRunning
	}

	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return nil, nil, errors.Join(ErrListen, fmt.Errorf("%s: %w", s.addr, err))
	}

	srv := &http.Server{
		Handler:        handler,
		ReadTimeout:    s.readTimeout,
		WriteTimeout:   s.writeTimeout,
		IdleTimeout:    s.idleTimeout,
		MaxHeaderBytes: s.maxHeaderBytes,
		TLSConfig:      s.tlsConfig,
		ErrorLog:       slog.NewLogLogger(s.logger.Handler(), slog.LevelWarn),
		BaseContext: func(net.Listener) context.Context {
			return ctx
		},
	}
	// Hijacked websocket connections are not tracked by Shutdown; hooks let
	// the owner end them.
	for _, fn := range s.onShutdown {
		srv.RegisterOnShutdown(fn)
	}

	s.current, s.listener = srv, ln
	return srv, ln, nil
}

// detach forgets srv if it is still the current one.
func (s *Server) detach(srv *http.Server) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == srv {
		s.current, s.listener = nil, nil
	}
}

// Stop shuts the server down within the shutdown timeout, running the
// registered shutdown hooks. It is a no-op when the server is not running.
func (s *Server) Stop() error {
	s.mu.Lock()
	srv := s.current
	s.mu.Unlock()

	if srv == nil {
		return nil
	}
	defer s.detach(srv)

	start := time.Now()
	s.logger.Info("shutting down server", slog.Duration("timeout", s.shutdown))

	ctx, cancel := context.WithTimeout(context.Background(), s.shutdown)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		s.logger.Error("server shutdown failed", logger.Error(err), logger.Elapsed(start))
		return errors.Join(ErrShutdown, err)
	}

	s.logger.Info("server stopped", logger.Elapsed(start))
	return nil
}

// Run adapts the server to errgroup: it serves until ctx is done, then stops.
func (s *Server) Run(ctx context.Context, handler http.Handler) func() error {
	return func() error {
		err := s.Start(ctx, handler)
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return s.Stop()
		}
		return err
	}
}
