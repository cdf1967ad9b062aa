package daemon

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/matheus3301/fleetchat/internal/api"
	"go.uber.org/zap"
)

// DefaultAddr is the dev server's listen address.
const DefaultAddr = "127.0.0.1:8787"

// Server manages the HTTP server lifecycle of the dev server.
type Server struct {
	httpServer *http.Server
	listener   net.Listener
	logger     *zap.Logger
}

// NewServer binds the listen address so port conflicts surface at startup.
func NewServer(p Params, logger *zap.Logger, h *api.Handler) (*Server, error) {
	addr := p.Addr
	if addr == "" {
		addr = DefaultAddr
	}
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", addr, err)
	}
	return &Server{
		httpServer: &http.Server{
			Handler:           h.Router(),
			ReadHeaderTimeout: 10 * time.Second,
		},
		listener: listener,
		logger:   logger,
	}, nil
}

// Addr returns the bound address.
func (s *Server) Addr() string {
	return s.listener.Addr().String()
}

// URL returns the base URL clients should use.
func (s *Server) URL() string {
	return "http://" + s.Addr()
}

// Start begins serving requests. Blocks until stopped.
func (s *Server) Start() error {
	s.logger.Info("http server starting", zap.String("addr", s.Addr()))
	err := s.httpServer.Serve(s.listener)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Stop performs a graceful shutdown.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("http server stopping")
	return s.httpServer.Shutdown(ctx)
}
