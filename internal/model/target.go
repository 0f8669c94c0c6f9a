package model

// Target identifies one display element the UI exposes for mutation
type Target int

const (
	TargetDownload Target = iota
	TargetUpload
	TargetPing
	TargetStatus
	TargetButton
	TargetProgress
)

// String returns a short name used in logs
func (t Target) String() string {
	switch t {
	case TargetDownload:
		return "download"
	case TargetUpload:
		return "upload"
	case TargetPing:
		return "ping"
	case TargetStatus:
		return "status"
	case TargetButton:
		return "button"
	case TargetProgress:
		return "progress"
	default:
		return "unknown"
	}
}

// ButtonState is the value posted to TargetButton
type ButtonState struct {
	Enabled bool
	Label   string
}

// ProgressSignal is the value posted to TargetProgress
type ProgressSignal int

const (
	ProgressStart ProgressSignal = iota
	ProgressStop
	ProgressReset
)

// String returns the string representation of ProgressSignal
func (p ProgressSignal) String() string {
	switch p {
	case ProgressStart:
		return "start"
	case ProgressStop:
		return "stop"
	case ProgressReset:
		return "reset"
	default:
		return "unknown"
	}
}
