package probe

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"time"

	"video-tagger/internal/logging"
	"video-tagger/internal/metrics"
	"video-tagger/internal/workers"
)

const (
	defaultBinary  = "ffprobe"
	defaultTimeout = 30 * time.Second
	maxPoolSize    = 16
)

// Prober runs ffprobe over library files.
type Prober struct {
	binary  string
	timeout time.Duration
}

// New returns a Prober using the ffprobe binary from PATH.
func New() *Prober {
	return &Prober{binary: defaultBinary, timeout: defaultTimeout}
}

// Duration returns the container duration of the file at path, in
// seconds.
func (p *Prober) Duration(ctx context.Context, path string) (float64, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, p.binary,
		"-v", "quiet",
		"-show_entries", "format=duration",
		"-of", "csv=p=0",
		path,
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		metrics.ProbeDurationsTotal.WithLabelValues("error").Inc()
		return 0, fmt.Errorf("ffprobe %s: %w - %s", path, err, stderr.String())
	}

	seconds, err := parseDuration(stdout.String())
	if err != nil {
		metrics.ProbeDurationsTotal.WithLabelValues("error").Inc()
		return 0, fmt.Errorf("ffprobe %s: %w", path, err)
	}
	metrics.ProbeDurationsTotal.WithLabelValues("ok").Inc()
	return seconds, nil
}

// Each probes every path on a worker pool sized for I/O-bound work and
// calls fn with each successful result. Failures are logged and
// skipped; fn may be called from multiple goroutines. Each returns
// once all paths are handled or ctx is cancelled.
func (p *Prober) Each(ctx context.Context, paths []string, fn func(path string, seconds float64)) {
	if len(paths) == 0 {
		return
	}

	n := workers.ForIO(maxPoolSize)
	if n > len(paths) {
		n = len(paths)
	}

	jobs := make(chan string)
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			for path := range jobs {
				seconds, err := p.Duration(ctx, path)
				if err != nil {
					logging.Debug("Probe failed for %s: %v", path, err)
					continue
				}
				fn(path, seconds)
			}
		}()
	}

	for _, path := range paths {
		select {
		case jobs <- path:
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return
		}
	}
	close(jobs)
	wg.Wait()
}

// parseDuration parses ffprobe's csv duration output. Streams with no
// known duration print "N/A".
func parseDuration(out string) (float64, error) {
	s := strings.TrimSpace(out)
	if s == "" || strings.EqualFold(s, "N/A") {
		return 0, fmt.Errorf("no duration reported")
	}
	seconds, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("bad duration %q: %w", s, err)
	}
	if seconds < 0 {
		return 0, fmt.Errorf("negative duration %q", s)
	}
	return seconds, nil
}
