package measure

// Package measure implements the measurement provider: it talks to a
// speedtest.net style coordination service to pick the closest server, then
// measures latency, download and upload throughput against it over plain HTTP,
// reporting cumulative transfer progress while doing so.
