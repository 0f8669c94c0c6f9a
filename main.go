package main

import (
	"context"

	"fyne.io/fyne/v2/app"
	"go.uber.org/zap"

	"github.com/ytget/fluxnet/internal/config"
	"github.com/ytget/fluxnet/internal/logging"
	"github.com/ytget/fluxnet/internal/measure"
	"github.com/ytget/fluxnet/internal/metrics"
	"github.com/ytget/fluxnet/internal/ui"
)

// Version is set during build via -ldflags "-X main.version=X.Y.Z"
var version = "dev"

const (
	AppID   = "com.ytget.fluxnet"
	AppName = "FluxNet Speed Tester"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		cfg = config.DefaultConfig()
		logging.Warn("failed to load config, using defaults", zap.Error(err))
	}

	logging.SetLevel(cfg.Verbosity)
	defer logging.Sync()
	logging.Info("starting", zap.String("app", AppName), zap.String("version", version))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	recorder := metrics.NewRecorder()
	if cfg.MetricsAddr != "" {
		go func() {
			if err := recorder.Serve(ctx, cfg.MetricsAddr); err != nil {
				logging.Error("metrics server stopped", zap.Error(err))
			}
		}()
	}

	myApp := app.NewWithID(AppID)

	myWindow := myApp.NewWindow(AppName)
	ui.NewRootUI(myWindow, myApp, version, measure.NewFactory(cfg), recorder)

	myWindow.ShowAndRun()
}
