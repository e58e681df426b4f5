// Package server implements the local HTTP server behind the browser UI.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"syscall"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/zeppplayer/zeppplayer/internal/config"
	"github.com/zeppplayer/zeppplayer/internal/projects"
)

// ErrPortInUse is returned by New when the address is already bound.
var ErrPortInUse = errors.New("port already in use")

// Options configures a Server.
type Options struct {
	Address string
	Layout  config.Layout
	Index   *projects.Index
	Logger  zerolog.Logger
}

// Server serves the application UI, the user's projects and a small JSON API.
type Server struct {
	echo     *echo.Echo
	listener net.Listener
	port     int
	layout   config.Layout
	index    *projects.Index
	logger   zerolog.Logger
}

// New binds the address and registers routes. Binding happens here, not in
// Serve, so a taken port is reported before anything else starts.
func New(opts Options) (*Server, error) {
	listener, err := (&net.ListenConfig{}).Listen(context.TODO(), "tcp", opts.Address)
	if err != nil {
		if errors.Is(err, syscall.EADDRINUSE) {
			return nil, fmt.Errorf("failed to listen on %s: %w: %w", opts.Address, ErrPortInUse, err)
		}
		return nil, fmt.Errorf("failed to listen on %s: %w", opts.Address, err)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Listener = listener

	srv := &Server{
		echo:     e,
		listener: listener,
		port:     listener.Addr().(*net.TCPAddr).Port,
		layout:   opts.Layout,
		index:    opts.Index,
		logger:   opts.Logger,
	}
	srv.registerRoutes()

	return srv, nil
}

// Port returns the port the server is listening on.
func (s *Server) Port() int {
	return s.port
}

// Handler exposes the router for in-process requests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Serve starts serving requests. This blocks until Shutdown is called.
func (s *Server) Serve() error {
	s.logger.Info().Str("address", s.listener.Addr().String()).Msg("HTTP server listening")
	err := s.echo.Start("")
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
