package ui

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"

	"github.com/ytget/fluxnet/internal/config"
)

// Palette of the dark variant
var (
	darkBackground = color.NRGBA{R: 0x2E, G: 0x2E, B: 0x2E, A: 0xFF}
	darkForeground = color.NRGBA{R: 0xE0, G: 0xE0, B: 0xE0, A: 0xFF}
	darkButton     = color.NRGBA{R: 0x4A, G: 0x4A, B: 0x4A, A: 0xFF}
	darkHover      = color.NRGBA{R: 0x5A, G: 0x5A, B: 0x5A, A: 0xFF}
	accentColor    = color.NRGBA{R: 0x00, G: 0x7A, B: 0xCC, A: 0xFF}
	resultColor    = color.NRGBA{R: 0x4C, G: 0xAF, B: 0x50, A: 0xFF}
	errorColor     = color.NRGBA{R: 0xF4, G: 0x43, B: 0x36, A: 0xFF}
)

// FluxTheme is the application theme. It pins the variant chosen in settings
// unless that is ThemeSystem.
type FluxTheme struct {
	variant config.ThemeVariant
}

// NewFluxTheme creates the theme for the given variant preference
func NewFluxTheme(variant config.ThemeVariant) fyne.Theme {
	return &FluxTheme{variant: variant}
}

func (t *FluxTheme) resolve(requested fyne.ThemeVariant) fyne.ThemeVariant {
	switch t.variant {
	case config.ThemeDark:
		return theme.VariantDark
	case config.ThemeLight:
		return theme.VariantLight
	default:
		return requested
	}
}

// Color returns theme colors
func (t *FluxTheme) Color(name fyne.ThemeColorName, requested fyne.ThemeVariant) color.Color {
	variant := t.resolve(requested)

	switch name {
	case theme.ColorNamePrimary, theme.ColorNameFocus:
		return accentColor
	case theme.ColorNameSuccess:
		return resultColor
	case theme.ColorNameError:
		return errorColor
	}

	if variant == theme.VariantDark {
		switch name {
		case theme.ColorNameBackground:
			return darkBackground
		case theme.ColorNameForeground:
			return darkForeground
		case theme.ColorNameButton:
			return darkButton
		case theme.ColorNameHover:
			return darkHover
		}
	}

	return theme.DefaultTheme().Color(name, variant)
}

// Font returns theme fonts
func (t *FluxTheme) Font(style fyne.TextStyle) fyne.Resource {
	return theme.DefaultTheme().Font(style)
}

// Icon returns theme icons
func (t *FluxTheme) Icon(name fyne.ThemeIconName) fyne.Resource {
	return theme.DefaultTheme().Icon(name)
}

// Size enlarges headings and text so results read from a distance
func (t *FluxTheme) Size(name fyne.ThemeSizeName) float32 {
	switch name {
	case theme.SizeNameHeadingText:
		return 22
	case theme.SizeNameSubHeadingText:
		return 18
	case theme.SizeNameInputRadius, theme.SizeNameSelectionRadius:
		return 2
	}
	return theme.DefaultTheme().Size(name)
}
