package ui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/data/binding"
	"fyne.io/fyne/v2/widget"
	"go.uber.org/zap"

	"github.com/ytget/fluxnet/internal/bridge"
	"github.com/ytget/fluxnet/internal/logging"
	"github.com/ytget/fluxnet/internal/model"
)

// UIState owns every widget the bridge writes to. Apply must only be called
// on the UI thread, which the bridge guarantees.
type UIState struct {
	Download *widget.Label
	Upload   *widget.Label
	Ping     *widget.Label
	Status   *widget.Label
	Button   *widget.Button
	Progress *widget.ProgressBarInfinite

	status binding.String
	logger *zap.Logger
}

// NewUIState creates the widgets in their idle state
func NewUIState(buttonLabel, readyText string, onStart func()) *UIState {
	s := &UIState{
		Download: newValueLabel(),
		Upload:   newValueLabel(),
		Ping:     newValueLabel(),
		status:   binding.NewString(),
		logger:   logging.Named("ui"),
	}

	_ = s.status.Set(readyText)
	s.Status = widget.NewLabelWithData(s.status)
	s.Status.Alignment = fyne.TextAlignCenter
	s.Status.Wrapping = fyne.TextWrapWord
	s.Status.TextStyle = fyne.TextStyle{Italic: true}

	s.Button = widget.NewButton(buttonLabel, onStart)
	s.Button.Importance = widget.HighImportance

	s.Progress = widget.NewProgressBarInfinite()
	s.Progress.Stop()
	s.Progress.Hide()

	return s
}

func newValueLabel() *widget.Label {
	label := widget.NewLabel(model.PlaceholderValue)
	label.Alignment = fyne.TextAlignTrailing
	label.TextStyle = fyne.TextStyle{Bold: true, Monospace: true}
	label.Importance = widget.SuccessImportance
	return label
}

// Apply implements bridge.Applier
func (s *UIState) Apply(m bridge.Mutation) {
	switch m.Target {
	case model.TargetDownload:
		s.setValue(s.Download, m)
	case model.TargetUpload:
		s.setValue(s.Upload, m)
	case model.TargetPing:
		s.setValue(s.Ping, m)
	case model.TargetStatus:
		text, ok := m.Value.(string)
		if !ok {
			s.unexpected(m)
			return
		}
		_ = s.status.Set(text)
	case model.TargetButton:
		state, ok := m.Value.(model.ButtonState)
		if !ok {
			s.unexpected(m)
			return
		}
		s.Button.SetText(state.Label)
		if state.Enabled {
			s.Button.Enable()
		} else {
			s.Button.Disable()
		}
	case model.TargetProgress:
		signal, ok := m.Value.(model.ProgressSignal)
		if !ok {
			s.unexpected(m)
			return
		}
		s.setProgress(signal)
	default:
		s.unexpected(m)
	}
}

func (s *UIState) setValue(label *widget.Label, m bridge.Mutation) {
	text, ok := m.Value.(string)
	if !ok {
		s.unexpected(m)
		return
	}
	if text == model.ErrorValue {
		label.Importance = widget.DangerImportance
	} else {
		label.Importance = widget.SuccessImportance
	}
	label.SetText(text)
}

func (s *UIState) setProgress(signal model.ProgressSignal) {
	switch signal {
	case model.ProgressStart:
		s.Progress.Show()
		s.Progress.Start()
	case model.ProgressStop:
		s.Progress.Stop()
	case model.ProgressReset:
		s.Progress.Hide()
	}
}

func (s *UIState) unexpected(m bridge.Mutation) {
	s.logger.Warn("ignoring mutation with unexpected value",
		zap.Stringer("target", m.Target),
		zap.Any("value", m.Value))
}
