// Package metrics exposes sweep pipeline counters in Prometheus format.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aki/chatsweep/internal/core/logger"
	"github.com/aki/chatsweep/internal/core/message"
	"github.com/aki/chatsweep/internal/core/sweep"
)

var _ sweep.Observer = (*Metrics)(nil)

// Metrics is a sweep.Observer that counts pipeline events on its own
// registry
type Metrics struct {
	registry *prometheus.Registry

	pagesFetched    prometheus.Counter
	messagesScanned prometheus.Counter
	deleted         prometheus.Counter
	deleteFailures  prometheus.Counter
	operations      *prometheus.CounterVec
}

// New creates and registers the chatsweep collectors
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		pagesFetched: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "chatsweep_pages_fetched_total",
			Help: "Message pages requested from the chat API.",
		}),
		messagesScanned: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "chatsweep_messages_scanned_total",
			Help: "Messages inspected while collecting, owned or not.",
		}),
		deleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "chatsweep_messages_deleted_total",
			Help: "Messages deleted successfully.",
		}),
		deleteFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "chatsweep_delete_failures_total",
			Help: "Delete calls that failed or were skipped after cancellation.",
		}),
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "chatsweep_operations_total",
			Help: "Finished bulk delete operations by terminal status.",
		}, []string{"status"}),
	}

	m.registry.MustRegister(
		m.pagesFetched,
		m.messagesScanned,
		m.deleted,
		m.deleteFailures,
		m.operations,
	)
	return m
}

// Registry returns the registry holding the collectors
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) PageFetched(_ string, raw, _ int) {
	m.pagesFetched.Inc()
	m.messagesScanned.Add(float64(raw))
}

func (m *Metrics) DeleteAttempted(_, _ int, _ message.Message, err error) {
	if err != nil {
		m.deleteFailures.Inc()
		return
	}
	m.deleted.Inc()
}

func (m *Metrics) OperationFinished(status sweep.Status, _ message.Outcome) {
	m.operations.WithLabelValues(string(status)).Inc()
}

// Serve exposes /metrics on addr until ctx is cancelled
func (m *Metrics) Serve(ctx context.Context, addr string, log logger.Logger) error {
	log = logger.OrNop(log)

	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("metrics endpoint listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
