// Package ui contains the Fyne desktop interface. UIState owns the result
// widgets and applies mutations delivered by the bridge; RootUI builds the
// window, menu and settings dialog and wires the start button to the runner.
package ui
