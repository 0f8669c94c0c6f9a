package bridge

// Package bridge carries display mutations from worker goroutines to the UI
// thread. Mutations are queued in submission order and applied one batch at a
// time by a single consumer goroutine that hands each batch to the UI through
// a dispatcher, so the UI never sees two mutations concurrently.
