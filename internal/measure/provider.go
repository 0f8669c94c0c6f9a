package measure

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/ytget/fluxnet/internal/model"
)

// ProgressFunc receives cumulative bytes transferred and seconds elapsed since
// the start of the current transfer phase.
type ProgressFunc func(bytesTransferred int64, elapsedSeconds float64)

// Provider defines the measurement operations a test session runs in order.
type Provider interface {
	// SelectBestServer discovers servers and returns the latency of the best one in ms
	SelectBestServer(ctx context.Context) (float64, error)
	// MeasureDownload returns the aggregate download rate in bits per second
	MeasureDownload(ctx context.Context, onProgress ProgressFunc) (float64, error)
	// MeasureUpload returns the aggregate upload rate in bits per second
	MeasureUpload(ctx context.Context, onProgress ProgressFunc) (float64, error)
	// CurrentPing returns the latest, possibly refined, latency in ms
	CurrentPing(ctx context.Context) float64
	// Server returns the selected server, zero before selection
	Server() model.Server
}

// Factory creates a fresh provider for every session
type Factory func() Provider

var (
	// ErrConfigRetrieval means the coordination service could not be reached
	ErrConfigRetrieval = errors.New("cannot retrieve speedtest configuration")
	// ErrNoServers means no usable test server was found
	ErrNoServers = errors.New("no matched servers")
	// ErrNoServerSelected is returned by transfer phases run before SelectBestServer
	ErrNoServerSelected = errors.New("no server selected")
)

// StatusError reports an unexpected HTTP status from a remote endpoint
type StatusError struct {
	URL  string
	Code int
}

// Error renders the status the way HTTP clients commonly report it,
// e.g. "HTTP Error 403: Forbidden".
func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP Error %d: %s", e.Code, http.StatusText(e.Code))
}

// IsForbidden reports whether err carries an HTTP 403 status
func IsForbidden(err error) bool {
	var statusErr *StatusError
	return errors.As(err, &statusErr) && statusErr.Code == http.StatusForbidden
}
