package prometheus

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 5 * time.Second
)

// Exporter serves the soundtext collectors at /metrics.
type Exporter struct {
	addr     string
	registry *prometheus.Registry

	mu       sync.Mutex
	server   *http.Server
	listener net.Listener
}

// NewExporter creates an exporter for addr with the soundtext, Go runtime and
// process collectors registered.
func NewExporter(addr string) *Exporter {
	reg := prometheus.NewRegistry()
	reg.MustRegister(allMetrics...)
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return NewExporterWithRegistry(addr, reg)
}

// NewExporterWithRegistry creates an exporter serving registry as is.
func NewExporterWithRegistry(addr string, registry *prometheus.Registry) *Exporter {
	return &Exporter{addr: addr, registry: registry}
}

// Registry returns the registry the exporter serves.
func (e *Exporter) Registry() *prometheus.Registry {
	return e.registry
}

// Handler returns the /metrics handler, for mounting on an existing mux.
func (e *Exporter) Handler() http.Handler {
	return promhttp.HandlerFor(e.registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

// Addr returns the bound address once Listen has succeeded, or the configured one.
func (e *Exporter) Addr() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.listener != nil {
		return e.listener.Addr().String()
	}
	return e.addr
}

// Listen binds the configured address. Serve must be called afterwards.
func (e *Exporter) Listen() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.listener != nil {
		return nil
	}

	ln, err := net.Listen("tcp", e.addr)
	if err != nil {
		return err
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", e.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	e.listener = ln
	e.server = &http.Server{Handler: mux, ReadHeaderTimeout: readHeaderTimeout}
	return nil
}

// Serve serves on the bound listener until ctx is done, then shuts down.
// It returns nil after a clean shutdown.
func (e *Exporter) Serve(ctx context.Context) error {
	if err := e.Listen(); err != nil {
		return err
	}

	e.mu.Lock()
	server, ln := e.server, e.listener
	e.mu.Unlock()

	errCh := make(chan error, 1)
	go func() { errCh <- server.Serve(ln) }()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	}
}

// Register adds a collector to the exporter's registry.
func (e *Exporter) Register(c prometheus.Collector) error {
	return e.registry.Register(c)
}
