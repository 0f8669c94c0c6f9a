// Package runner sequences one speed test session on a supervised worker
// goroutine and reports every display change through a bridge.Poster.
package runner
