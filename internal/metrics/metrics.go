// Package metrics provides Prometheus metrics for speed test sessions.
//
// Recording a session:
//
//	rec := metrics.NewRecorder()
//	rec.SessionStarted()
//	defer rec.SessionFinished("complete")
//	rec.ObservePhase("download", elapsed)
//	rec.SetResults(87.45, 9.32, 14.32)
//
// Metrics live on a private registry; Serve exposes it on /metrics when a
// listen address is configured.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder owns the registry and every collector of the application
type Recorder struct {
	registry *prometheus.Registry

	// SessionsTotal counts finished sessions.
	// Labels: outcome (complete, config_retrieval, no_servers, access_denied, unclassified)
	SessionsTotal *prometheus.CounterVec

	// ActiveSessions is 1 while a session is running
	ActiveSessions prometheus.Gauge

	// PhaseDuration tracks how long each measurement phase took.
	// Labels: phase (server, download, upload)
	PhaseDuration *prometheus.HistogramVec

	// ProgressSamplesTotal counts provider progress callbacks.
	// Labels: phase (download, upload)
	ProgressSamplesTotal *prometheus.CounterVec

	// MutationsTotal counts UI mutations by fate.
	// Labels: result (applied, dropped)
	MutationsTotal *prometheus.CounterVec

	DownloadMbps prometheus.Gauge
	UploadMbps   prometheus.Gauge
	PingMs       prometheus.Gauge
}

// NewRecorder creates a recorder with all collectors registered
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		SessionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fluxnet_sessions_total",
				Help: "Total finished speed test sessions by outcome",
			},
			[]string{"outcome"},
		),
		ActiveSessions: factory.NewGauge(prometheus.GaugeOpts{
			Name: "fluxnet_active_sessions",
			Help: "Number of speed test sessions currently running",
		}),
		PhaseDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "fluxnet_phase_duration_seconds",
				Help:    "Duration of each measurement phase",
				Buckets: prometheus.ExponentialBuckets(0.25, 2, 8), // 250ms to ~32s
			},
			[]string{"phase"},
		),
		ProgressSamplesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fluxnet_progress_samples_total",
				Help: "Progress samples received from the measurement provider",
			},
			[]string{"phase"},
		),
		MutationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fluxnet_ui_mutations_total",
				Help: "UI mutations by result",
			},
			[]string{"result"},
		),
		DownloadMbps: factory.NewGauge(prometheus.GaugeOpts{
			Name: "fluxnet_last_download_mbps",
			Help: "Download speed of the last completed session",
		}),
		UploadMbps: factory.NewGauge(prometheus.GaugeOpts{
			Name: "fluxnet_last_upload_mbps",
			Help: "Upload speed of the last completed session",
		}),
		PingMs: factory.NewGauge(prometheus.GaugeOpts{
			Name: "fluxnet_last_ping_ms",
			Help: "Latency of the last completed session",
		}),
	}
}

// SessionStarted marks a session as running
func (r *Recorder) SessionStarted() {
	r.ActiveSessions.Inc()
}

// SessionFinished records the outcome of a session
func (r *Recorder) SessionFinished(outcome string) {
	r.ActiveSessions.Dec()
	r.SessionsTotal.WithLabelValues(outcome).Inc()
}

// ObservePhase records the duration of a measurement phase
func (r *Recorder) ObservePhase(phase string, d time.Duration) {
	r.PhaseDuration.WithLabelValues(phase).Observe(d.Seconds())
}

// RecordSample counts a progress callback
func (r *Recorder) RecordSample(phase string) {
	r.ProgressSamplesTotal.WithLabelValues(phase).Inc()
}

// RecordMutation counts an applied mutation
func (r *Recorder) RecordMutation() {
	r.MutationsTotal.WithLabelValues("applied").Inc()
}

// RecordDropped counts a mutation dropped after teardown
func (r *Recorder) RecordDropped() {
	r.MutationsTotal.WithLabelValues("dropped").Inc()
}

// SetResults stores the final values of a completed session
func (r *Recorder) SetResults(downloadMbps, uploadMbps, pingMs float64) {
	r.DownloadMbps.Set(downloadMbps)
	r.UploadMbps.Set(uploadMbps)
	r.PingMs.Set(pingMs)
}

// Handler returns an http.Handler exposing the registry
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is cancelled
func (r *Recorder) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", r.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
