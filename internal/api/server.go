package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/zjrosen/sigtrack/internal/log"
)

// Server wraps the Handler with an http.Server for lifecycle management.
type Server struct {
	server   *http.Server
	listener net.Listener
	port     int // Actual port after binding (useful when using :0)
}

// ServerConfig configures the API server.
type ServerConfig struct {
	// Addr is the address to listen on, e.g. "127.0.0.1:8765".
	Addr    string
	Handler HandlerConfig
	// ReadTimeout defaults to 30s.
	ReadTimeout time.Duration
}

// NewServer binds Addr and prepares the server. Use Port to learn the
// bound port when Addr asks for port 0.
func NewServer(cfg ServerConfig) (*Server, error) {
	readTimeout := cfg.ReadTimeout
	if readTimeout == 0 {
		readTimeout = 30 * time.Second
	}

	listener, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", cfg.Addr, err)
	}

	port := 0
	if tcpAddr, ok := listener.Addr().(*net.TCPAddr); ok {
		port = tcpAddr.Port
	}

	return &Server{
		port:     port,
		listener: listener,
		server: &http.Server{
			Handler:           NewHandler(cfg.Handler).Routes(),
			ReadTimeout:       readTimeout,
			ReadHeaderTimeout: 10 * time.Second,
			WriteTimeout:      30 * time.Second,
		},
	}, nil
}

// Start serves until Stop is called. A clean stop returns nil.
func (s *Server) Start() error {
	log.Info(log.CatAPI, "Starting API server", "addr", s.listener.Addr().String(), "port", s.port)
	if err := s.server.Serve(s.listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	log.Info(log.CatAPI, "Stopping API server")
	return s.server.Shutdown(ctx)
}

// Port returns the port the server is listening on.
func (s *Server) Port() int {
	return s.port
}

// Addr returns the bound listener address.
func (s *Server) Addr() string {
	return s.listener.Addr().String()
}
