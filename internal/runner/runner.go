package runner

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/ytget/fluxnet/internal/bridge"
	"github.com/ytget/fluxnet/internal/locale"
	"github.com/ytget/fluxnet/internal/logging"
	"github.com/ytget/fluxnet/internal/measure"
	"github.com/ytget/fluxnet/internal/model"
)

// diagnosticLimit caps the diagnostic shown for unclassified failures
const diagnosticLimit = 50

// accessDeniedMarker is how a 403 from the coordination service reads in error text
const accessDeniedMarker = "HTTP Error 403: Forbidden"

// Texts resolves user-visible strings
type Texts interface {
	GetText(key string) string
	Format(key string, args ...interface{}) string
}

// Recorder receives session telemetry
type Recorder interface {
	SessionStarted()
	SessionFinished(outcome string)
	ObservePhase(phase string, d time.Duration)
	RecordSample(phase string)
	SetResults(downloadMbps, uploadMbps, pingMs float64)
}

type nopRecorder struct{}

func (nopRecorder) SessionStarted()                      {}
func (nopRecorder) SessionFinished(string)               {}
func (nopRecorder) ObservePhase(string, time.Duration)   {}
func (nopRecorder) RecordSample(string)                  {}
func (nopRecorder) SetResults(float64, float64, float64) {}

// Option configures a Runner
type Option func(*Runner)

// WithRecorder attaches session telemetry
func WithRecorder(rec Recorder) Option {
	return func(r *Runner) { r.recorder = rec }
}

// WithOnFinish registers a callback invoked on the worker after the finalizer
func WithOnFinish(fn func(*model.TestSession)) Option {
	return func(r *Runner) { r.onFinish = fn }
}

// Runner drives one speed test session at a time. Every display change goes
// through the poster; the runner never touches widgets.
type Runner struct {
	poster   bridge.Poster
	factory  measure.Factory
	texts    Texts
	recorder Recorder
	onFinish func(*model.TestSession)
	logger   *zap.Logger

	running atomic.Bool
	wg      sync.WaitGroup

	// transition serializes session entry with the finalizer, so a start
	// issued as soon as the button is re-enabled sees the runner idle
	transition sync.Mutex

	mu   sync.Mutex
	last *model.TestSession
}

// New creates a runner posting to poster and measuring with providers from factory
func New(poster bridge.Poster, factory measure.Factory, texts Texts, opts ...Option) *Runner {
	r := &Runner{
		poster:   poster,
		factory:  factory,
		texts:    texts,
		recorder: nopRecorder{},
		logger:   logging.Named("runner"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Start begins a new session on a worker goroutine. It returns false and does
// nothing while a session is already running.
func (r *Runner) Start() bool {
	r.transition.Lock()
	defer r.transition.Unlock()

	if !r.running.CompareAndSwap(false, true) {
		r.logger.Debug("start ignored, session in flight")
		return false
	}

	session := model.NewTestSession()
	r.logger.Info("session started", zap.String("session", session.ID))
	r.recorder.SessionStarted()

	r.enterRunning(session)

	r.wg.Add(1)
	go r.run(session)
	return true
}

// Running reports whether a session is in flight
func (r *Runner) Running() bool {
	return r.running.Load()
}

// Wait blocks until the current session, if any, has finished
func (r *Runner) Wait() {
	r.wg.Wait()
}

// LastSession returns a copy of the most recently finished session, or nil
func (r *Runner) LastSession() *model.TestSession {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.last == nil {
		return nil
	}
	return r.last.Clone()
}

// enterRunning puts the UI into the busy state and clears previous values
func (r *Runner) enterRunning(session *model.TestSession) {
	bridge.PostButton(r.poster, false, r.texts.GetText(locale.KeyTesting))
	bridge.PostProgress(r.poster, model.ProgressStart)
	r.postValues(model.PlaceholderValue)
	r.setStatus(session, r.texts.GetText(locale.KeyStatusInitializing))
}

func (r *Runner) run(session *model.TestSession) {
	defer r.wg.Done()
	defer r.finish(session)
	defer func() {
		if p := recover(); p != nil {
			r.fail(session, fmt.Errorf("panic: %v", p))
		}
	}()

	if err := r.execute(context.Background(), session); err != nil {
		r.fail(session, err)
	}
}

func (r *Runner) execute(ctx context.Context, session *model.TestSession) error {
	provider := r.factory()

	session.SetPhase(model.PhaseFindingServer)
	r.setStatus(session, r.texts.GetText(locale.KeyStatusFindingServer))

	start := time.Now()
	ping, err := provider.SelectBestServer(ctx)
	r.recorder.ObservePhase("server", time.Since(start))
	if err != nil {
		return err
	}
	session.PingMs = model.Float(ping)
	session.Server = provider.Server()
	bridge.PostText(r.poster, model.TargetPing, bridge.FormatValue(ping))

	session.SetPhase(model.PhaseDownloading)
	if label := session.Server.Label(); label != "" {
		r.setStatus(session, r.texts.Format(locale.KeyStatusDownloadingVia, label))
	} else {
		r.setStatus(session, r.texts.GetText(locale.KeyStatusDownloading))
	}
	download, err := r.transfer(ctx, "download", model.TargetDownload, provider.MeasureDownload)
	if err != nil {
		return err
	}
	session.Download = model.Float(download)

	session.SetPhase(model.PhaseUploading)
	r.setStatus(session, r.texts.GetText(locale.KeyStatusUploading))
	upload, err := r.transfer(ctx, "upload", model.TargetUpload, provider.MeasureUpload)
	if err != nil {
		return err
	}
	session.Upload = model.Float(upload)

	ping = provider.CurrentPing(ctx)
	session.PingMs = model.Float(ping)
	bridge.PostText(r.poster, model.TargetPing, bridge.FormatValue(ping))

	r.setStatus(session, r.texts.GetText(locale.KeyStatusComplete))
	session.SetPhase(model.PhaseComplete)
	r.recorder.SetResults(download, upload, ping)

	r.logger.Info("session complete",
		zap.String("session", session.ID),
		zap.Float64("download_mbps", download),
		zap.Float64("upload_mbps", upload),
		zap.Float64("ping_ms", ping))
	return nil
}

type measureFunc func(context.Context, measure.ProgressFunc) (float64, error)

// transfer runs one transfer phase with a fresh normalizer and posts the
// provider's aggregate, in Mbps, once the phase ends.
func (r *Runner) transfer(ctx context.Context, phase string, target model.Target, measureFn measureFunc) (float64, error) {
	norm := bridge.NewNormalizer(r.poster, target).OnSample(func() {
		r.recorder.RecordSample(phase)
	})

	start := time.Now()
	bps, err := measureFn(ctx, norm.Sample)
	norm.Stop()
	r.recorder.ObservePhase(phase, time.Since(start))
	if err != nil {
		return 0, err
	}

	mbps := bps / 1_000_000
	bridge.PostText(r.poster, target, bridge.FormatValue(mbps))
	return mbps, nil
}

// fail shows the error markers and the most specific status message
func (r *Runner) fail(session *model.TestSession, err error) {
	kind := Classify(err)
	message := r.failureMessage(kind, err)

	r.logger.Error("session failed",
		zap.String("session", session.ID),
		zap.Stringer("phase", session.Phase),
		zap.Stringer("kind", kind),
		zap.Error(err))

	session.Fail(kind, message)
	r.postValues(model.ErrorValue)
	bridge.PostText(r.poster, model.TargetStatus, message)
}

// finish runs exactly once per session, on every exit path. The re-enabled
// button is always the last mutation of the session.
func (r *Runner) finish(session *model.TestSession) {
	r.recorder.SessionFinished(outcome(session))

	r.mu.Lock()
	r.last = session.Clone()
	r.mu.Unlock()

	r.transition.Lock()
	bridge.PostProgress(r.poster, model.ProgressStop)
	bridge.PostProgress(r.poster, model.ProgressReset)
	bridge.PostButton(r.poster, true, r.texts.GetText(locale.KeyStartTest))
	r.running.Store(false)
	r.transition.Unlock()

	if r.onFinish != nil {
		r.onFinish(session.Clone())
	}
}

func (r *Runner) setStatus(session *model.TestSession, text string) {
	session.Status = text
	bridge.PostText(r.poster, model.TargetStatus, text)
}

// postValues sets all three result fields to the same marker
func (r *Runner) postValues(marker string) {
	for _, target := range []model.Target{model.TargetDownload, model.TargetUpload, model.TargetPing} {
		bridge.PostText(r.poster, target, marker)
	}
}

func (r *Runner) failureMessage(kind model.FailureKind, err error) string {
	switch kind {
	case model.FailureConfigRetrieval:
		return r.texts.GetText(locale.KeyErrConfigRetrieval)
	case model.FailureNoServers:
		return r.texts.GetText(locale.KeyErrNoServers)
	case model.FailureAccessDenied:
		return r.texts.GetText(locale.KeyErrAccessDenied)
	default:
		return r.texts.Format(locale.KeyErrGeneric, truncate(err.Error(), diagnosticLimit))
	}
}

// Classify maps a provider error to a failure kind
func Classify(err error) model.FailureKind {
	switch {
	case err == nil:
		return model.FailureNone
	case errors.Is(err, measure.ErrConfigRetrieval):
		return model.FailureConfigRetrieval
	case errors.Is(err, measure.ErrNoServers):
		return model.FailureNoServers
	case measure.IsForbidden(err), strings.Contains(err.Error(), accessDeniedMarker):
		return model.FailureAccessDenied
	default:
		return model.FailureUnclassified
	}
}

func outcome(session *model.TestSession) string {
	switch session.Failure {
	case model.FailureNone:
		return "complete"
	case model.FailureConfigRetrieval:
		return "config_retrieval"
	case model.FailureNoServers:
		return "no_servers"
	case model.FailureAccessDenied:
		return "access_denied"
	default:
		return "unclassified"
	}
}

// truncate keeps at most limit runes of s
func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
