package console

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ytget/fluxnet/internal/bridge"
	"github.com/ytget/fluxnet/internal/locale"
	"github.com/ytget/fluxnet/internal/model"
)

func newPrinter() (*Printer, *bytes.Buffer) {
	var buf bytes.Buffer
	return NewPrinter(&buf, locale.NewLocalization()), &buf
}

func lines(buf *bytes.Buffer) []string {
	return strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
}

func TestPrinter_RendersValues(t *testing.T) {
	p, buf := newPrinter()

	p.Apply(bridge.Mutation{Target: model.TargetDownload, Value: "87.45"})
	p.Apply(bridge.Mutation{Target: model.TargetPing, Value: "14.32"})
	p.Apply(bridge.Mutation{Target: model.TargetStatus, Value: "Test Complete!"})

	assert.Equal(t, []string{
		"Download:     87.45 Mbps",
		"Ping:         14.32 ms",
		"» Test Complete!",
	}, lines(buf))
}

func TestPrinter_MarkersHaveNoUnit(t *testing.T) {
	p, buf := newPrinter()

	p.Apply(bridge.Mutation{Target: model.TargetUpload, Value: model.PlaceholderValue})
	p.Apply(bridge.Mutation{Target: model.TargetUpload, Value: model.ErrorValue})

	assert.Equal(t, []string{
		"Upload:         ---",
		"Upload:       Error",
	}, lines(buf))
}

func TestPrinter_CollapsesRepeatsAndSkipsControls(t *testing.T) {
	p, buf := newPrinter()

	p.Apply(bridge.Mutation{Target: model.TargetDownload, Value: "16.00"})
	p.Apply(bridge.Mutation{Target: model.TargetDownload, Value: "16.00"})
	p.Apply(bridge.Mutation{Target: model.TargetButton, Value: model.ButtonState{Label: "x"}})
	p.Apply(bridge.Mutation{Target: model.TargetProgress, Value: model.ProgressStart})
	p.Apply(bridge.Mutation{Target: model.TargetDownload, Value: 16})

	assert.Equal(t, []string{"Download:     16.00 Mbps"}, lines(buf))
}

func TestPrinter_Localized(t *testing.T) {
	texts := locale.NewLocalization()
	texts.SetLanguage("ru")
	var buf bytes.Buffer
	p := NewPrinter(&buf, texts)

	p.Apply(bridge.Mutation{Target: model.TargetPing, Value: "9.00"})
	assert.Contains(t, buf.String(), "Пинг:")
	assert.Contains(t, buf.String(), "мс")
}
