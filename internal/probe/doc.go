// Package probe extracts video durations with ffprobe. Probing is an
// enrichment step, not a requirement: files whose duration cannot be
// read stay in the library with an unknown duration.
package probe
