// Command fluxnet runs one speed test without a window and prints the
// results to stdout.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/ytget/fluxnet/internal/bridge"
	"github.com/ytget/fluxnet/internal/config"
	"github.com/ytget/fluxnet/internal/console"
	"github.com/ytget/fluxnet/internal/locale"
	"github.com/ytget/fluxnet/internal/logging"
	"github.com/ytget/fluxnet/internal/measure"
	"github.com/ytget/fluxnet/internal/metrics"
	"github.com/ytget/fluxnet/internal/model"
	"github.com/ytget/fluxnet/internal/runner"
)

func main() {
	os.Exit(run())
}

func run() int {
	fs := flag.NewFlagSet("fluxnet", flag.ExitOnError)
	configPath := fs.String("config", "", "path to a fluxnet.yaml file")
	lang := fs.String("lang", "en", "output language (en, ru, pt)")
	rateLimit := fs.Float64("rate-limit", 0, "bandwidth limit in Mbps (overrides config)")
	metricsAddr := fs.String("metrics", "", "serve Prometheus metrics on this address (overrides config)")
	verbose := fs.Int("v", -1, "log verbosity 0-2 (overrides config)")
	_ = fs.Parse(os.Args[1:])

	var (
		cfg *config.Config
		err error
	)
	if *configPath != "" {
		cfg, err = config.LoadFile(*configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		return 2
	}
	if *rateLimit > 0 {
		cfg.RateLimitMbps = *rateLimit
	}
	if *metricsAddr != "" {
		cfg.MetricsAddr = *metricsAddr
	}
	if *verbose >= 0 {
		cfg.Verbosity = *verbose
	}

	logging.SetLevel(cfg.Verbosity)
	defer logging.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	recorder := metrics.NewRecorder()
	if cfg.MetricsAddr != "" {
		go func() {
			if err := recorder.Serve(ctx, cfg.MetricsAddr); err != nil {
				logging.Error("metrics server stopped", zap.Error(err))
			}
		}()
	}

	texts := locale.NewLocalization()
	texts.SetLanguage(*lang)

	b := bridge.New(console.NewPrinter(os.Stdout, texts), bridge.Direct, bridge.WithObserver(recorder))
	defer b.Close()

	r := runner.New(b, measure.NewFactory(cfg), texts, runner.WithRecorder(recorder))
	r.Start()

	finished := make(chan struct{})
	go func() {
		r.Wait()
		b.Sync()
		close(finished)
	}()

	select {
	case <-finished:
	case <-ctx.Done():
		fmt.Fprintln(os.Stderr, "\ninterrupted")
		return 130
	}

	session := r.LastSession()
	if session == nil || session.Phase != model.PhaseComplete {
		return 1
	}
	if label := session.Server.Label(); label != "" {
		fmt.Printf("%s %s\n", texts.GetText(locale.KeyServer), label)
	}
	return 0
}
