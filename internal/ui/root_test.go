package ui

import (
	"context"
	"testing"

	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ytget/fluxnet/internal/config"
	"github.com/ytget/fluxnet/internal/locale"
	"github.com/ytget/fluxnet/internal/measure"
	"github.com/ytget/fluxnet/internal/metrics"
	"github.com/ytget/fluxnet/internal/model"
)

type stubProvider struct {
	err error
}

func (s *stubProvider) SelectBestServer(context.Context) (float64, error) { return 14.32, s.err }

func (s *stubProvider) MeasureDownload(_ context.Context, onProgress measure.ProgressFunc) (float64, error) {
	onProgress(0, 0)
	onProgress(2_000_000, 1)
	return 87_450_000, nil
}

func (s *stubProvider) MeasureUpload(_ context.Context, onProgress measure.ProgressFunc) (float64, error) {
	onProgress(1_000_000, 1)
	return 9_320_000, nil
}

func (s *stubProvider) CurrentPing(context.Context) float64 { return 14.32 }

func (s *stubProvider) Server() model.Server {
	return model.Server{Sponsor: "Acme", Name: "Berlin"}
}

func newTestRoot(t *testing.T, provider measure.Provider, recorder *metrics.Recorder) *RootUI {
	t.Helper()
	a := test.NewApp()
	w := a.NewWindow("test")
	t.Cleanup(w.Close)

	return NewRootUI(w, a, "1.2.3", func() measure.Provider { return provider }, recorder)
}

// runTest taps start and waits for every mutation of the session
func runTest(t *testing.T, ui *RootUI) {
	t.Helper()
	test.Tap(ui.state.Button)
	ui.runner.Wait()
	ui.bridge.Sync()
}

func TestRootUI_InitialState(t *testing.T) {
	ui := newTestRoot(t, &stubProvider{}, nil)

	assert.Equal(t, "FluxNet Speed Tester v1.2.3", ui.window.Title())
	assert.True(t, ui.window.FixedSize())
	assert.Equal(t, "Start Speed Test", ui.state.Button.Text)
	assert.Equal(t, "Click 'Start Speed Test' to begin.", statusText(ui.state))
	assert.Equal(t, model.PlaceholderValue, ui.state.Download.Text)
	require.NotNil(t, ui.window.MainMenu())
	assert.Len(t, ui.window.MainMenu().Items, 2)
}

func TestRootUI_SuccessfulTest(t *testing.T) {
	recorder := metrics.NewRecorder()
	ui := newTestRoot(t, &stubProvider{}, recorder)

	runTest(t, ui)

	assert.Equal(t, "87.45", ui.state.Download.Text)
	assert.Equal(t, "9.32", ui.state.Upload.Text)
	assert.Equal(t, "14.32", ui.state.Ping.Text)
	assert.Equal(t, "Test Complete!", statusText(ui.state))
	assert.False(t, ui.state.Button.Disabled())
	assert.Equal(t, "Start Speed Test", ui.state.Button.Text)
	assert.False(t, ui.state.Progress.Visible())
}

func TestRootUI_FailedTest(t *testing.T) {
	ui := newTestRoot(t, &stubProvider{err: measure.ErrNoServers}, nil)

	runTest(t, ui)

	assert.Equal(t, model.ErrorValue, ui.state.Download.Text)
	assert.Equal(t, model.ErrorValue, ui.state.Upload.Text)
	assert.Equal(t, model.ErrorValue, ui.state.Ping.Text)
	assert.Equal(t, "Error: No suitable test servers found.", statusText(ui.state))
	assert.False(t, ui.state.Button.Disabled())
}

func TestRootUI_LanguageChange(t *testing.T) {
	ui := newTestRoot(t, &stubProvider{}, nil)

	ui.onLanguageChange("ru")

	assert.Equal(t, "ru", ui.settings.GetLanguage())
	assert.Equal(t, "Начать тест", ui.state.Button.Text)
	assert.Equal(t, "Загрузка:", ui.downloadCaption.Text)
	assert.Equal(t, ui.localization.GetText(locale.KeyAppTitle)+" v1.2.3", ui.window.Title())
	assert.Equal(t, ui.localization.GetText(locale.KeyStatusReady), statusText(ui.state))

	runTest(t, ui)
	assert.Equal(t, "Тест завершён!", statusText(ui.state))

	ui.onLanguageChange("en")
	assert.Equal(t, "Тест завершён!", statusText(ui.state), "results stay until the next test")
}

func TestRootUI_ApplySettings(t *testing.T) {
	ui := newTestRoot(t, &stubProvider{}, nil)

	ui.settings.SetLanguage("pt")
	ui.settings.SetThemeVariant(config.ThemeLight)
	ui.applySettings()

	assert.Equal(t, "Iniciar teste", ui.state.Button.Text)
	flux, ok := ui.app.Settings().Theme().(*FluxTheme)
	require.True(t, ok)
	assert.Equal(t, config.ThemeLight, flux.variant)
}

func TestRootUI_CloseDropsLaterMutations(t *testing.T) {
	ui := newTestRoot(t, &stubProvider{}, nil)

	ui.Close()
	runTest(t, ui)

	assert.Equal(t, model.PlaceholderValue, ui.state.Download.Text)
	assert.Equal(t, "Start Speed Test", ui.state.Button.Text)
	assert.False(t, ui.runner.Running())
}
