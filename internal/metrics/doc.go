// Package metrics declares the Prometheus metrics exported by the video
// tagger: HTTP traffic, database query timings, scanner progress, player
// command outcomes and collection filtering.
//
// Metrics are registered with promauto at package load and served from a
// dedicated metrics listener (see main.go).
package metrics
