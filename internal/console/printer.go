// Package console renders bridge mutations as text lines for headless runs.
package console

import (
	"fmt"
	"io"

	"github.com/ytget/fluxnet/internal/bridge"
	"github.com/ytget/fluxnet/internal/locale"
	"github.com/ytget/fluxnet/internal/model"
)

// Printer is a bridge.Applier writing one line per visible change. Repeated
// values for the same target are collapsed. The bridge serializes calls.
type Printer struct {
	out   io.Writer
	texts *locale.Localization
	last  map[model.Target]string
}

// NewPrinter creates a printer writing to out
func NewPrinter(out io.Writer, texts *locale.Localization) *Printer {
	return &Printer{
		out:   out,
		texts: texts,
		last:  make(map[model.Target]string),
	}
}

// Apply implements bridge.Applier
func (p *Printer) Apply(m bridge.Mutation) {
	line, ok := p.render(m)
	if !ok || p.last[m.Target] == line {
		return
	}
	p.last[m.Target] = line
	fmt.Fprintln(p.out, line)
}

func (p *Printer) render(m bridge.Mutation) (string, bool) {
	switch m.Target {
	case model.TargetDownload:
		return p.value(locale.KeyDownload, locale.KeyUnitMbps, m.Value)
	case model.TargetUpload:
		return p.value(locale.KeyUpload, locale.KeyUnitMbps, m.Value)
	case model.TargetPing:
		return p.value(locale.KeyPing, locale.KeyUnitMs, m.Value)
	case model.TargetStatus:
		text, ok := m.Value.(string)
		return "» " + text, ok
	default:
		// button and progress have no console representation
		return "", false
	}
}

func (p *Printer) value(captionKey, unitKey string, v any) (string, bool) {
	text, ok := v.(string)
	if !ok {
		return "", false
	}
	caption := p.texts.GetText(captionKey)
	if text == model.PlaceholderValue || text == model.ErrorValue {
		return fmt.Sprintf("%-10s %8s", caption, text), true
	}
	return fmt.Sprintf("%-10s %8s %s", caption, text, p.texts.GetText(unitKey)), true
}
