// Package server exposes the imposition core over HTTP: upload, preview,
// impose, re-download, and preset management. It is a thin shell — every
// route either calls into pkg/imposition or pkg/presets directly; no layout
// or geometry logic lives here.
package server

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/sheetwright/imposer/internal/zap4echo"
	"github.com/sheetwright/imposer/pkg/presets"
)

const (
	_defaultAddr            = "127.0.0.1:8888"
	_defaultShutdownTimeout = 5 * time.Second
	_defaultSessionCapacity = 10
)

// Server is the imposition HTTP surface.
type Server struct {
	server          *echo.Echo
	addr            string
	notify          chan error
	shutdownTimeout time.Duration
	sessions        *SessionCache
	presets         *presets.Store
}

// New builds a Server listening at host:port, with saved presets persisted
// under presetsDir.
func New(host, port, presetsDir string) (*Server, error) {
	addr := fmt.Sprintf("%s:%s", host, port)
	if port == "" {
		addr = _defaultAddr
	}

	store, err := presets.NewStore(presetsDir)
	if err != nil {
		return nil, fmt.Errorf("server: %w", err)
	}

	e := echo.New()
	e.Logger.SetOutput(io.Discard)
	log, _ := zap.NewDevelopment()

	e.Use(
		zap4echo.Logger(log),
		zap4echo.Recover(log),
	)
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{"*"},
		AllowHeaders:     []string{echo.HeaderContentType, echo.HeaderAuthorization, echo.HeaderXCSRFToken},
		AllowCredentials: true,
		AllowMethods:     []string{http.MethodGet, http.MethodPost},
	}))

	s := &Server{
		server:          e,
		addr:            addr,
		notify:          make(chan error, 1),
		shutdownTimeout: _defaultShutdownTimeout,
		sessions:        NewSessionCache(_defaultSessionCapacity),
		presets:         store,
	}

	if err := s.Routes(); err != nil {
		return nil, fmt.Errorf("server: routes: %w", err)
	}
	return s, nil
}

// Start runs the server in the background; errors surface on Notify.
func (s *Server) Start() {
	go func() {
		s.notify <- s.server.Start(s.addr)
		close(s.notify)
	}()
}

// Notify returns the channel Start reports its terminal error on.
func (s *Server) Notify() <-chan error {
	return s.notify
}

// Shutdown stops the server gracefully within shutdownTimeout.
func (s *Server) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()
	return s.server.Shutdown(ctx)
}

// Echo exposes the underlying echo instance, for tests that want to drive
// requests directly without a listening socket.
func (s *Server) Echo() *echo.Echo {
	return s.server
}
