package model

import "testing"

func TestPhase_IsRunning(t *testing.T) {
	tests := []struct {
		phase    Phase
		expected bool
	}{
		{PhaseIdle, false},
		{PhaseFindingServer, true},
		{PhaseDownloading, true},
		{PhaseUploading, true},
		{PhaseComplete, false},
		{PhaseFailed, false},
	}

	for _, test := range tests {
		result := test.phase.IsRunning()
		if result != test.expected {
			t.Errorf("Phase(%s).IsRunning() = %v, expected %v", test.phase, result, test.expected)
		}
	}
}

func TestPhase_IsTerminal(t *testing.T) {
	tests := []struct {
		phase    Phase
		expected bool
	}{
		{PhaseIdle, false},
		{PhaseFindingServer, false},
		{PhaseDownloading, false},
		{PhaseUploading, false},
		{PhaseComplete, true},
		{PhaseFailed, true},
	}

	for _, test := range tests {
		result := test.phase.IsTerminal()
		if result != test.expected {
			t.Errorf("Phase(%s).IsTerminal() = %v, expected %v", test.phase, result, test.expected)
		}
	}
}

func TestFailureKind_String(t *testing.T) {
	if FailureNone.String() != "None" {
		t.Errorf("FailureNone.String() = %s, expected None", FailureNone.String())
	}
	if FailureAccessDenied.String() != "AccessDenied" {
		t.Errorf("FailureAccessDenied.String() = %s, expected AccessDenied", FailureAccessDenied.String())
	}
}

func TestTarget_String(t *testing.T) {
	tests := []struct {
		target   Target
		expected string
	}{
		{TargetDownload, "download"},
		{TargetUpload, "upload"},
		{TargetPing, "ping"},
		{TargetStatus, "status"},
		{TargetButton, "button"},
		{TargetProgress, "progress"},
		{Target(42), "unknown"},
	}

	for _, test := range tests {
		if result := test.target.String(); result != test.expected {
			t.Errorf("Target(%d).String() = %s, expected %s", test.target, result, test.expected)
		}
	}
}
