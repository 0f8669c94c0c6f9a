package model

// Phase represents the current stage of a test session
type Phase string

const (
	// PhaseIdle means no session has been started yet
	PhaseIdle Phase = "Idle"

	// PhaseFindingServer means the best server is being selected and pinged
	PhaseFindingServer Phase = "FindingServer"

	// PhaseDownloading means the download measurement is in progress
	PhaseDownloading Phase = "Downloading"

	// PhaseUploading means the upload measurement is in progress
	PhaseUploading Phase = "Uploading"

	// PhaseComplete means all measurements finished successfully
	PhaseComplete Phase = "Complete"

	// PhaseFailed means the session stopped on an error
	PhaseFailed Phase = "Failed"
)

// String returns the string representation of Phase
func (p Phase) String() string {
	return string(p)
}

// IsRunning returns true while the worker owns the session
func (p Phase) IsRunning() bool {
	return p == PhaseFindingServer || p == PhaseDownloading || p == PhaseUploading
}

// IsTerminal returns true if the session reached complete or failed
func (p Phase) IsTerminal() bool {
	return p == PhaseComplete || p == PhaseFailed
}

// FailureKind classifies why a session failed
type FailureKind string

const (
	FailureNone            FailureKind = ""
	FailureConfigRetrieval FailureKind = "ConfigRetrievalFailure"
	FailureNoServers       FailureKind = "NoServersAvailable"
	FailureAccessDenied    FailureKind = "AccessDenied"
	FailureUnclassified    FailureKind = "Unclassified"
)

// String returns the string representation of FailureKind
func (k FailureKind) String() string {
	if k == FailureNone {
		return "None"
	}
	return string(k)
}
