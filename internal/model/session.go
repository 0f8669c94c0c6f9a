package model

import (
	"time"

	"github.com/google/uuid"
)

// Display values shared by every UI surface
const (
	PlaceholderValue = "---"
	ErrorValue       = "Error"
	ZeroValue        = "0.00"
)

// Server describes the test endpoint picked for a session
type Server struct {
	ID      string
	Name    string
	Sponsor string
	Country string
	Host    string
}

// Label returns a short human readable description of the server
func (s Server) Label() string {
	switch {
	case s.Sponsor != "" && s.Name != "":
		return s.Sponsor + " (" + s.Name + ")"
	case s.Sponsor != "":
		return s.Sponsor
	case s.Name != "":
		return s.Name
	}
	return s.Host
}

// TestSession represents a single end-to-end measurement run.
// Nil measurement pointers mean "not yet measured".
type TestSession struct {
	ID         string
	Phase      Phase
	PingMs     *float64
	Download   *float64 // Mbps
	Upload     *float64 // Mbps
	Status     string
	Failure    FailureKind
	Server     Server
	StartedAt  time.Time
	FinishedAt time.Time
}

// NewTestSession creates a session ready to enter the running state
func NewTestSession() *TestSession {
	return &TestSession{
		ID:        "session-" + uuid.NewString(),
		Phase:     PhaseIdle,
		StartedAt: time.Now(),
	}
}

// SetPhase moves the session to the given phase
func (s *TestSession) SetPhase(p Phase) {
	s.Phase = p
	if p.IsTerminal() {
		s.FinishedAt = time.Now()
	}
}

// Fail marks the session failed and clears partial measurements so that no
// stale number survives a failure.
func (s *TestSession) Fail(kind FailureKind, status string) {
	s.Failure = kind
	s.Status = status
	s.PingMs = nil
	s.Download = nil
	s.Upload = nil
	s.SetPhase(PhaseFailed)
}

// Duration returns how long the session ran, or has run so far
func (s *TestSession) Duration() time.Duration {
	if s.FinishedAt.IsZero() {
		return time.Since(s.StartedAt)
	}
	return s.FinishedAt.Sub(s.StartedAt)
}

// Clone returns a copy safe to hand to another goroutine
func (s *TestSession) Clone() *TestSession {
	c := *s
	c.PingMs = copyFloat(s.PingMs)
	c.Download = copyFloat(s.Download)
	c.Upload = copyFloat(s.Upload)
	return &c
}

func copyFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	f := *v
	return &f
}

// Float returns a pointer to v, handy for the nullable session fields
func Float(v float64) *float64 {
	return &v
}
