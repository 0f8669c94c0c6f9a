package measure

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/ytget/fluxnet/internal/config"
	"github.com/ytget/fluxnet/internal/logging"
	"github.com/ytget/fluxnet/internal/model"
)

const (
	readBufferSize = 32 * 1024
	uploadAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
)

// serverEntry mirrors one element of the servers API response
type serverEntry struct {
	ID       string  `json:"id"`
	URL      string  `json:"url"`
	Name     string  `json:"name"`
	Country  string  `json:"country"`
	Sponsor  string  `json:"sponsor"`
	Host     string  `json:"host"`
	Distance float64 `json:"distance"`
}

// clientConfig holds the parts of speedtest-config.php we use
type clientConfig struct {
	Client struct {
		IP  string `xml:"ip,attr"`
		ISP string `xml:"isp,attr"`
	} `xml:"client"`
}

// Speedtest is the HTTP implementation of Provider.
// A Speedtest is owned by a single session and is not safe for concurrent use.
type Speedtest struct {
	cfg     *config.Config
	client  *http.Client
	limiter *rate.Limiter
	logger  *zap.Logger

	server  *serverEntry
	pingMs  float64
	baseURL string
}

// NewSpeedtest creates a provider with the given configuration
func NewSpeedtest(cfg *config.Config) *Speedtest {
	st := &Speedtest{
		cfg: cfg,
		client: &http.Client{
			Transport: &http.Transport{
				Proxy:                 http.ProxyFromEnvironment,
				MaxIdleConns:          10,
				MaxIdleConnsPerHost:   10,
				IdleConnTimeout:       30 * time.Second,
				DisableCompression:    true, // Don't compress test data
				TLSHandshakeTimeout:   cfg.RequestTimeout,
				ResponseHeaderTimeout: cfg.RequestTimeout,
			},
		},
		logger: logging.Named("measure"),
	}

	if cfg.RateLimitMbps > 0 {
		bytesPerSecond := cfg.RateLimitMbps * 1_000_000 / 8
		burst := max(int(bytesPerSecond/10), readBufferSize)
		st.limiter = rate.NewLimiter(rate.Limit(bytesPerSecond), burst)
	}

	return st
}

// NewFactory returns a Factory producing Speedtest providers
func NewFactory(cfg *config.Config) Factory {
	return func() Provider {
		return NewSpeedtest(cfg)
	}
}

// Server returns the selected server
func (st *Speedtest) Server() model.Server {
	if st.server == nil {
		return model.Server{}
	}
	return model.Server{
		ID:      st.server.ID,
		Name:    st.server.Name,
		Sponsor: st.server.Sponsor,
		Country: st.server.Country,
		Host:    st.server.Host,
	}
}

// SelectBestServer fetches the client configuration and server list, pings
// the closest candidates and keeps the one with the lowest latency.
func (st *Speedtest) SelectBestServer(ctx context.Context) (float64, error) {
	if err := st.fetchConfig(ctx); err != nil {
		return 0, err
	}

	servers, err := st.fetchServers(ctx)
	if err != nil {
		return 0, err
	}

	sort.SliceStable(servers, func(i, j int) bool {
		return servers[i].Distance < servers[j].Distance
	})
	if len(servers) > st.cfg.Candidates {
		servers = servers[:st.cfg.Candidates]
	}

	var best *serverEntry
	bestLatency := 0.0
	for i := range servers {
		candidate := &servers[i]
		latency, err := st.latency(ctx, latencyURL(candidate.URL))
		if err != nil {
			st.logger.Debug("candidate unreachable", zap.String("host", candidate.Host), zap.Error(err))
			if ctx.Err() != nil {
				return 0, ctx.Err()
			}
			continue
		}
		if best == nil || latency < bestLatency {
			best, bestLatency = candidate, latency
		}
	}

	if best == nil {
		return 0, fmt.Errorf("%w: none of %d candidates answered", ErrNoServers, len(servers))
	}

	st.server = best
	st.pingMs = bestLatency
	st.baseURL = baseURL(best.URL)

	st.logger.Info("best server selected",
		zap.String("host", best.Host),
		zap.String("sponsor", best.Sponsor),
		zap.Float64("ping_ms", bestLatency))

	return bestLatency, nil
}

// MeasureDownload fetches random images of the configured sizes one after
// another and returns total bits over total seconds.
func (st *Speedtest) MeasureDownload(ctx context.Context, onProgress ProgressFunc) (float64, error) {
	if st.server == nil {
		return 0, ErrNoServerSelected
	}

	var transferred atomic.Int64
	report := st.reporter(onProgress)
	start := time.Now()

	for _, size := range st.cfg.DownloadSizes {
		target := fmt.Sprintf("%s/random%dx%d.jpg?x=%s", st.baseURL, size, size, uuid.NewString())
		if err := st.download(ctx, target, func(n int) {
			total := transferred.Add(int64(n))
			report(total, time.Since(start).Seconds())
		}); err != nil {
			return 0, fmt.Errorf("download test failed: %w", err)
		}
	}

	return bitsPerSecond(transferred.Load(), time.Since(start)), nil
}

// MeasureUpload posts generated payloads of the configured sizes to the
// server's upload endpoint and returns total bits over total seconds.
func (st *Speedtest) MeasureUpload(ctx context.Context, onProgress ProgressFunc) (float64, error) {
	if st.server == nil {
		return 0, ErrNoServerSelected
	}

	var transferred atomic.Int64
	report := st.reporter(onProgress)
	start := time.Now()

	for _, size := range st.cfg.UploadSizes {
		if err := st.upload(ctx, st.server.URL, size, func(n int) {
			total := transferred.Add(int64(n))
			report(total, time.Since(start).Seconds())
		}); err != nil {
			return 0, fmt.Errorf("upload test failed: %w", err)
		}
	}

	return bitsPerSecond(transferred.Load(), time.Since(start)), nil
}

// CurrentPing probes the selected server once more and returns the lower of
// the new and the previous latency. Probe failures keep the previous value.
func (st *Speedtest) CurrentPing(ctx context.Context) float64 {
	if st.server == nil {
		return st.pingMs
	}

	latency, err := st.latency(ctx, latencyURL(st.server.URL))
	if err != nil {
		st.logger.Debug("ping refresh failed", zap.Error(err))
		return st.pingMs
	}
	if latency < st.pingMs {
		st.pingMs = latency
	}
	return st.pingMs
}

func (st *Speedtest) fetchConfig(ctx context.Context) error {
	body, err := st.get(ctx, st.cfg.ConfigURL)
	if err != nil {
		if IsForbidden(err) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrConfigRetrieval, err)
	}

	var cc clientConfig
	if err := xml.Unmarshal(body, &cc); err != nil {
		return fmt.Errorf("%w: malformed configuration: %v", ErrConfigRetrieval, err)
	}

	st.logger.Debug("client configuration retrieved",
		zap.String("ip", cc.Client.IP),
		zap.String("isp", cc.Client.ISP))
	return nil
}

func (st *Speedtest) fetchServers(ctx context.Context) ([]serverEntry, error) {
	body, err := st.get(ctx, st.cfg.ServersURL)
	if err != nil {
		st.logger.Warn("server list unavailable", zap.String("url", st.cfg.ServersURL), zap.Error(err))
		return nil, fmt.Errorf("servers retrieval failed: %w", err)
	}

	var servers []serverEntry
	if err := json.Unmarshal(body, &servers); err != nil {
		st.logger.Warn("server list malformed", zap.String("url", st.cfg.ServersURL), zap.Error(err))
		return nil, fmt.Errorf("servers retrieval failed: %w", err)
	}

	usable := servers[:0]
	for _, s := range servers {
		if s.URL != "" {
			usable = append(usable, s)
		}
	}
	if len(usable) == 0 {
		return nil, ErrNoServers
	}
	return usable, nil
}

// get performs a GET with the request timeout and returns the whole body
func (st *Speedtest) get(ctx context.Context, target string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, st.cfg.RequestTimeout)
	defer cancel()

	req, err := st.newRequest(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}

	resp, err := st.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func(Body io.ReadCloser) {
		_ = Body.Close()
	}(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{URL: target, Code: resp.StatusCode}
	}
	return io.ReadAll(resp.Body)
}

// latency averages PingSamples round trips to target, in milliseconds
func (st *Speedtest) latency(ctx context.Context, target string) (float64, error) {
	var total time.Duration
	for i := 0; i < st.cfg.PingSamples; i++ {
		probe := target + "?x=" + uuid.NewString()
		start := time.Now()
		if _, err := st.get(ctx, probe); err != nil {
			return 0, err
		}
		total += time.Since(start)
	}
	avg := total / time.Duration(st.cfg.PingSamples)
	return float64(avg.Microseconds()) / 1000, nil
}

func (st *Speedtest) download(ctx context.Context, target string, onRead func(int)) error {
	req, err := st.newRequest(ctx, http.MethodGet, target, nil)
	if err != nil {
		return err
	}

	resp, err := st.client.Do(req)
	if err != nil {
		return err
	}
	defer func(Body io.ReadCloser) {
		_ = Body.Close()
	}(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return &StatusError{URL: target, Code: resp.StatusCode}
	}

	buf := make([]byte, readBufferSize)
	for {
		n, err := resp.Body.Read(buf)
		if n > 0 {
			if werr := st.wait(ctx, n); werr != nil {
				return werr
			}
			onRead(n)
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

func (st *Speedtest) upload(ctx context.Context, target string, size int, onRead func(int)) error {
	body := &progressReader{
		r:      strings.NewReader(uploadPayload(size)),
		ctx:    ctx,
		wait:   st.wait,
		onRead: onRead,
	}

	req, err := st.newRequest(ctx, http.MethodPost, target, body)
	if err != nil {
		return err
	}
	req.ContentLength = int64(size)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := st.client.Do(req)
	if err != nil {
		return err
	}
	defer func(Body io.ReadCloser) {
		_ = Body.Close()
	}(resp.Body)
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &StatusError{URL: target, Code: resp.StatusCode}
	}
	return nil
}

func (st *Speedtest) newRequest(ctx context.Context, method, target string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", st.cfg.UserAgent)
	req.Header.Set("Cache-Control", "no-cache")
	return req, nil
}

// wait blocks until the bandwidth cap allows n more bytes
func (st *Speedtest) wait(ctx context.Context, n int) error {
	if st.limiter == nil {
		return nil
	}
	return st.limiter.WaitN(ctx, n)
}

// reporter throttles progress callbacks to the configured interval; the first
// sample is always delivered.
func (st *Speedtest) reporter(onProgress ProgressFunc) ProgressFunc {
	if onProgress == nil {
		return func(int64, float64) {}
	}
	if st.cfg.ProgressInterval <= 0 {
		return onProgress
	}
	sometimes := &rate.Sometimes{Interval: st.cfg.ProgressInterval}
	return func(b int64, elapsed float64) {
		sometimes.Do(func() { onProgress(b, elapsed) })
	}
}

// progressReader reports bytes as the HTTP transport consumes the body
type progressReader struct {
	r      io.Reader
	ctx    context.Context
	wait   func(context.Context, int) error
	onRead func(int)
}

func (p *progressReader) Read(b []byte) (int, error) {
	if len(b) > readBufferSize {
		b = b[:readBufferSize]
	}
	n, err := p.r.Read(b)
	if n > 0 {
		if werr := p.wait(p.ctx, n); werr != nil {
			return 0, werr
		}
		p.onRead(n)
	}
	return n, err
}

// uploadPayload builds a form body of exactly size bytes
func uploadPayload(size int) string {
	const prefix = "content1="
	if size <= len(prefix) {
		return prefix[:size]
	}
	fill := size - len(prefix)
	repeated := strings.Repeat(uploadAlphabet, fill/len(uploadAlphabet)+1)
	return prefix + repeated[:fill]
}

// baseURL strips the upload script name from a server URL
func baseURL(serverURL string) string {
	u, err := url.Parse(serverURL)
	if err != nil {
		return strings.TrimSuffix(serverURL, "/upload.php")
	}
	dir := path.Dir(u.Path)
	if dir == "." || dir == "/" {
		dir = ""
	}
	u.Path = dir
	u.RawQuery = ""
	return strings.TrimSuffix(u.String(), "/")
}

func latencyURL(serverURL string) string {
	return baseURL(serverURL) + "/latency.txt"
}

func bitsPerSecond(bytes int64, elapsed time.Duration) float64 {
	if elapsed <= 0 {
		return 0
	}
	return float64(bytes) * 8 / elapsed.Seconds()
}
