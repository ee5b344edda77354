package metrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server exposes the registry over HTTP for scraping
type Server struct {
	httpServer *http.Server
}

// NewServer builds a metrics server on host:port serving path.
// InitRegistry must have been called first.
func NewServer(host string, port int, path string) (*Server, error) {
	if Registry == nil {
		return nil, errors.New("metrics registry not initialized")
	}

	mux := http.NewServeMux()
	mux.Handle(path, promhttp.HandlerFor(Registry, promhttp.HandlerOpts{Registry: Registry}))

	return &Server{
		httpServer: &http.Server{
			Addr:              fmt.Sprintf("%s:%d", host, port),
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}, nil
}

// Start serves in the background. Listen errors other than a clean shutdown
// are delivered on the returned channel.
func (s *Server) Start() <-chan error {
	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()
	return errCh
}

// Shutdown stops the server, waiting for in-flight scrapes
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// Setup initializes the registry with process/go collectors and installs the
// behavior collector as the global recorder. It returns the command collector
// for use as mediator middleware.
func Setup() (*CommandMetricsCollector, error) {
	InitRegistry()

	if err := Registry.Register(collectors.NewGoCollector()); err != nil {
		return nil, fmt.Errorf("failed to register go collector: %w", err)
	}
	if err := Registry.Register(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{})); err != nil {
		return nil, fmt.Errorf("failed to register process collector: %w", err)
	}

	behavior := NewBehaviorMetricsCollector()
	if err := behavior.Register(); err != nil {
		return nil, fmt.Errorf("failed to register behavior metrics: %w", err)
	}
	SetGlobalCollector(behavior)

	commands := NewCommandMetricsCollector()
	if err := commands.Register(); err != nil {
		return nil, fmt.Errorf("failed to register command metrics: %w", err)
	}

	return commands, nil
}

// Teardown drops the registry and global recorder
func Teardown() {
	SetGlobalCollector(nil)
	Registry = nil
}
