// Package server exposes the overlay surface: the embedded status page and
// the WebSocket endpoint overlay clients attach to.
package server

import (
	"context"
	"io/fs"
	"net/http"

	"github.com/edaniels/golog"

	"github.com/soar/padmap/internal/hub"
)

type Server struct {
	hub         *hub.Hub
	broadcaster *hub.Broadcaster
	ctrl        hub.Controllable
	frontendFS  fs.FS
	addr        string
	logger      golog.Logger
	httpServer  *http.Server
}

func New(h *hub.Hub, b *hub.Broadcaster, ctrl hub.Controllable, frontendFS fs.FS, addr string, logger golog.Logger) *Server {
	return &Server{
		hub:         h,
		broadcaster: b,
		ctrl:        ctrl,
		frontendFS:  frontendFS,
		addr:        addr,
		logger:      logger,
	}
}

func (s *Server) ListenAndServe() error {
	mux := http.NewServeMux()

	// WebSocket endpoint
	mux.HandleFunc("/ws", handleWebSocket(s.hub, s.broadcaster, s.ctrl, s.logger))

	// Static files (overlay frontend)
	mux.Handle("/", http.FileServer(http.FS(s.frontendFS)))

	s.httpServer = &http.Server{
		Addr:    s.addr,
		Handler: mux,
	}

	s.logger.Infow("http server listening", "addr", s.addr)
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		s.logger.Info("shutting down http server")
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}
