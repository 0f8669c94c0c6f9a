package model

import (
	"strings"
	"testing"
	"time"
)

func TestNewTestSession(t *testing.T) {
	s := NewTestSession()

	if !strings.HasPrefix(s.ID, "session-") {
		t.Errorf("Expected ID to start with 'session-', got: %s", s.ID)
	}
	if len(s.ID) != len("session-")+36 {
		t.Errorf("Expected ID length %d, got %d for ID: %s", len("session-")+36, len(s.ID), s.ID)
	}
	if s.Phase != PhaseIdle {
		t.Errorf("Expected phase Idle, got %s", s.Phase)
	}
	if s.PingMs != nil || s.Download != nil || s.Upload != nil {
		t.Error("Expected measurements to be unset")
	}

	other := NewTestSession()
	if other.ID == s.ID {
		t.Error("Expected different session IDs")
	}
}

func TestTestSession_Fail(t *testing.T) {
	s := NewTestSession()
	s.SetPhase(PhaseDownloading)
	s.PingMs = Float(12.5)
	s.Download = Float(40.1)

	s.Fail(FailureNoServers, "no servers")

	if s.Phase != PhaseFailed {
		t.Errorf("Expected phase Failed, got %s", s.Phase)
	}
	if s.Failure != FailureNoServers {
		t.Errorf("Expected failure NoServersAvailable, got %s", s.Failure)
	}
	if s.PingMs != nil || s.Download != nil || s.Upload != nil {
		t.Error("Expected partial measurements to be cleared on failure")
	}
	if s.FinishedAt.IsZero() {
		t.Error("Expected FinishedAt to be set")
	}
}

func TestTestSession_Duration(t *testing.T) {
	start := time.Now().Add(-3 * time.Second)
	s := &TestSession{StartedAt: start, FinishedAt: start.Add(2 * time.Second)}

	if s.Duration() != 2*time.Second {
		t.Errorf("Expected duration 2s, got %v", s.Duration())
	}
}

func TestTestSession_Clone(t *testing.T) {
	s := NewTestSession()
	s.Download = Float(10)

	c := s.Clone()
	*c.Download = 20

	if *s.Download != 10 {
		t.Errorf("Expected original download to stay 10, got %v", *s.Download)
	}
}

func TestServer_Label(t *testing.T) {
	tests := []struct {
		server   Server
		expected string
	}{
		{Server{Sponsor: "Acme", Name: "Berlin", Host: "h:8080"}, "Acme (Berlin)"},
		{Server{Sponsor: "Acme", Host: "h:8080"}, "Acme"},
		{Server{Name: "Berlin", Host: "h:8080"}, "Berlin"},
		{Server{Host: "h:8080"}, "h:8080"},
	}

	for _, test := range tests {
		if result := test.server.Label(); result != test.expected {
			t.Errorf("Label() = %q, expected %q", result, test.expected)
		}
	}
}
