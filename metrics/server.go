package metrics

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// Server serves a Collector's registry over HTTP on loopback.
type Server struct {
	server   *http.Server
	port     int
	endpoint string
}

func NewServer(port int, endpoint string) *Server {
	return &Server{port: port, endpoint: endpoint}
}

// Setup builds the HTTP handler for c.
func (s *Server) Setup(c *Collector) {
	mux := http.NewServeMux()
	mux.Handle(s.endpoint, promhttp.HandlerFor(c.Registry(), promhttp.HandlerOpts{}))

	s.server = &http.Server{
		Addr:    fmt.Sprintf("127.0.0.1:%d", s.port),
		Handler: mux,
	}
}

// Start listens synchronously and serves in the background. A failed bind
// is returned; the overlay keeps running without metrics.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return fmt.Errorf("metrics listen on %s: %w", s.server.Addr, err)
	}
	go func() {
		logrus.Infof("metrics server listening on %s%s", ln.Addr(), s.endpoint)
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.WithError(err).Error("metrics server failed")
		}
	}()
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	logrus.Info("shutting down metrics server...")
	return s.server.Shutdown(ctx)
}
