package ui

import (
	"fmt"
	"sort"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
	"go.uber.org/zap"

	"github.com/ytget/fluxnet/internal/bridge"
	"github.com/ytget/fluxnet/internal/config"
	"github.com/ytget/fluxnet/internal/locale"
	"github.com/ytget/fluxnet/internal/logging"
	"github.com/ytget/fluxnet/internal/measure"
	"github.com/ytget/fluxnet/internal/metrics"
	"github.com/ytget/fluxnet/internal/model"
	"github.com/ytget/fluxnet/internal/runner"
)

// RootUI represents the main UI structure
type RootUI struct {
	window       fyne.Window
	app          fyne.App
	settings     *config.Settings
	localization *locale.Localization
	logger       *zap.Logger
	version      string

	state  *UIState
	bridge *bridge.Bridge
	runner *runner.Runner

	title           *widget.Label
	downloadCaption *widget.Label
	uploadCaption   *widget.Label
	pingCaption     *widget.Label
	downloadUnit    *widget.Label
	uploadUnit      *widget.Label
	pingUnit        *widget.Label
}

// NewRootUI creates and initializes the main UI. recorder may be nil.
func NewRootUI(window fyne.Window, app fyne.App, version string, factory measure.Factory, recorder *metrics.Recorder) *RootUI {
	settings := config.NewSettings(app)

	localization := locale.NewLocalization()
	localization.SetLanguage(settings.GetLanguage())

	ui := &RootUI{
		window:       window,
		app:          app,
		settings:     settings,
		localization: localization,
		logger:       logging.Named("ui"),
		version:      version,
	}

	ui.state = NewUIState(
		localization.GetText(locale.KeyStartTest),
		localization.GetText(locale.KeyStatusReady),
		ui.onStartClick,
	)

	var bridgeOpts []bridge.Option
	runnerOpts := []runner.Option{runner.WithOnFinish(ui.onSessionFinished)}
	if recorder != nil {
		bridgeOpts = append(bridgeOpts, bridge.WithObserver(recorder))
		runnerOpts = append(runnerOpts, runner.WithRecorder(recorder))
	}
	ui.bridge = bridge.New(ui.state, fyne.DoAndWait, bridgeOpts...)
	ui.runner = runner.New(ui.bridge, factory, localization, runnerOpts...)

	app.Settings().SetTheme(NewFluxTheme(settings.GetThemeVariant()))
	window.SetTitle(ui.windowTitle())
	window.Resize(fyne.NewSize(WindowWidth, WindowHeight))
	window.SetFixedSize(true)
	window.SetOnClosed(ui.Close)

	ui.setupUI()
	return ui
}

// Close tears down the bridge; later mutations are dropped
func (ui *RootUI) Close() {
	ui.logger.Debug("window closed, closing bridge")
	ui.bridge.Close()
}

// setupUI creates and arranges all UI components
func (ui *RootUI) setupUI() {
	ui.createMenu()

	ui.title = widget.NewLabelWithStyle(ui.localization.GetText(locale.KeyAppTitle), fyne.TextAlignCenter, fyne.TextStyle{Bold: true})
	ui.title.Importance = widget.HighImportance
	icon := widget.NewLabelWithStyle(IconRocket, fyne.TextAlignCenter, fyne.TextStyle{})

	settingsBtn := widget.NewButton(IconSettings, ui.onShowSettings)
	settingsBtn.Importance = widget.LowImportance
	header := container.NewBorder(nil, nil, nil, settingsBtn, ui.title)

	ui.downloadCaption = widget.NewLabel(ui.localization.GetText(locale.KeyDownload))
	ui.uploadCaption = widget.NewLabel(ui.localization.GetText(locale.KeyUpload))
	ui.pingCaption = widget.NewLabel(ui.localization.GetText(locale.KeyPing))
	ui.downloadUnit = widget.NewLabel(ui.localization.GetText(locale.KeyUnitMbps))
	ui.uploadUnit = widget.NewLabel(ui.localization.GetText(locale.KeyUnitMbps))
	ui.pingUnit = widget.NewLabel(ui.localization.GetText(locale.KeyUnitMs))

	results := container.NewGridWithColumns(3,
		ui.downloadCaption, ui.state.Download, ui.downloadUnit,
		ui.uploadCaption, ui.state.Upload, ui.uploadUnit,
		ui.pingCaption, ui.state.Ping, ui.pingUnit,
	)

	progress := container.NewCenter(container.NewGridWrap(
		fyne.NewSize(ProgressWidth, ui.state.Progress.MinSize().Height),
		ui.state.Progress,
	))

	content := container.NewVBox(
		header,
		icon,
		results,
		progress,
		ui.state.Status,
		container.NewCenter(ui.state.Button),
	)

	ui.window.SetContent(container.NewPadded(content))
}

// createMenu creates the application menu
func (ui *RootUI) createMenu() {
	settingsItem := fyne.NewMenuItem(ui.localization.GetText(locale.KeySettings), ui.onShowSettings)

	languageMenu := fyne.NewMenu(ui.localization.GetText(locale.KeyLanguage))

	availableLanguages := ui.localization.GetAvailableLanguages()
	codes := make([]string, 0, len(availableLanguages))
	for code := range availableLanguages {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	for _, code := range codes {
		langCode := code
		langItem := fyne.NewMenuItem(availableLanguages[code], func() {
			ui.onLanguageChange(langCode)
		})
		langItem.Checked = ui.localization.GetCurrentLanguage() == code
		languageMenu.Items = append(languageMenu.Items, langItem)
	}

	mainMenu := fyne.NewMainMenu(
		fyne.NewMenu(ui.localization.GetText(locale.KeyFile), settingsItem),
		languageMenu,
	)

	ui.window.SetMainMenu(mainMenu)
}

// onStartClick handles the start button
func (ui *RootUI) onStartClick() {
	if !ui.runner.Start() {
		ui.logger.Debug("start ignored while a test is running")
	}
}

// onSessionFinished runs on the worker after the finalizer was posted
func (ui *RootUI) onSessionFinished(session *model.TestSession) {
	ui.logger.Info("speed test finished",
		zap.String("session", session.ID),
		zap.Stringer("phase", session.Phase),
		zap.Stringer("failure", session.Failure),
		zap.String("server", session.Server.Label()),
		zap.Duration("duration", session.Duration()))
}

// onLanguageChange handles language change
func (ui *RootUI) onLanguageChange(langCode string) {
	ui.localization.SetLanguage(langCode)
	ui.settings.SetLanguage(langCode)
	ui.refreshUITexts()
	ui.createMenu()
}

// onShowSettings shows the settings dialog
func (ui *RootUI) onShowSettings() {
	NewSettingsDialog(ui.settings, ui.localization, ui.window, ui.applySettings).Show()
}

// applySettings reloads language and theme from preferences
func (ui *RootUI) applySettings() {
	ui.localization.SetLanguage(ui.settings.GetLanguage())
	ui.app.Settings().SetTheme(NewFluxTheme(ui.settings.GetThemeVariant()))
	ui.refreshUITexts()
	ui.createMenu()
}

// windowTitle is the localized application name followed by the build version
func (ui *RootUI) windowTitle() string {
	return fmt.Sprintf("%s v%s", ui.localization.GetText(locale.KeyAppTitle), ui.version)
}

// refreshUITexts updates static texts with the current language. Values and
// the status line of a running test are left to the runner.
func (ui *RootUI) refreshUITexts() {
	ui.window.SetTitle(ui.windowTitle())
	ui.title.SetText(ui.localization.GetText(locale.KeyAppTitle))

	ui.downloadCaption.SetText(ui.localization.GetText(locale.KeyDownload))
	ui.uploadCaption.SetText(ui.localization.GetText(locale.KeyUpload))
	ui.pingCaption.SetText(ui.localization.GetText(locale.KeyPing))
	ui.downloadUnit.SetText(ui.localization.GetText(locale.KeyUnitMbps))
	ui.uploadUnit.SetText(ui.localization.GetText(locale.KeyUnitMbps))
	ui.pingUnit.SetText(ui.localization.GetText(locale.KeyUnitMs))

	if ui.runner.Running() {
		return
	}
	ui.state.Button.SetText(ui.localization.GetText(locale.KeyStartTest))
	if ui.runner.LastSession() == nil {
		ui.state.Apply(bridge.Mutation{
			Target: model.TargetStatus,
			Value:  ui.localization.GetText(locale.KeyStatusReady),
		})
	}
}
