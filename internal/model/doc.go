package model

// Package model defines the domain data structures shared by the runner, the
// bridge and the UI: test sessions, phases, failure kinds and the mutation
// targets the UI exposes. Values are small and short-lived; a session lives
// only until the next one starts.
