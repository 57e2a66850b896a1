package scanner

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"video-tagger/internal/logging"
	"video-tagger/internal/metrics"
)

// DefaultSuffixes is the out-of-the-box extension filter, stored and
// edited as a single semicolon-delimited setting value.
const DefaultSuffixes = ".mp4;.avi;.mkv;.mov;.wmv;.flv;.webm;.mpeg;.mpg;.m4v;.3gp;.vob;.ogv;.ogg;.mxf;.rm;.divx;.xvid"

// Event is one item on a scan's stream. Ordinary events carry the
// resolved path of a matched file. The terminal event has Done set,
// arrives exactly once, and closes the stream; its Err is non-nil only
// when the walk itself failed (not for individual unreadable entries,
// which are logged and skipped).
type Event struct {
	Path string
	Done bool
	Err  error
}

// Scanner walks one directory tree for video files. A Scanner runs at
// most one scan; create a new one per run.
type Scanner struct {
	root          string
	suffixes      []string
	includeHidden bool

	events  chan Event
	aborted atomic.Bool
	running atomic.Bool
	found   atomic.Int64
	done    chan struct{}
}

// New returns a Scanner for the given root. suffixes is the list of
// extensions to match (leading dot, compared case-insensitively); an
// empty list matches every file. Hidden entries (dot-prefixed) are
// skipped unless includeHidden is set.
func New(root string, suffixes []string, includeHidden bool) *Scanner {
	lowered := make([]string, 0, len(suffixes))
	for _, s := range suffixes {
		lowered = append(lowered, strings.ToLower(s))
	}
	return &Scanner{
		root:          root,
		suffixes:      lowered,
		includeHidden: includeHidden,
		events:        make(chan Event, 64),
		done:          make(chan struct{}),
	}
}

// SplitSuffixes parses a semicolon-delimited extension list, dropping
// empty segments and normalizing to a leading dot.
func SplitSuffixes(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if !strings.HasPrefix(part, ".") {
			part = "." + part
		}
		out = append(out, part)
	}
	return out
}

// Start validates the root and launches the walk in a goroutine,
// returning the event stream. The stream is closed after the terminal
// event. Cancelling ctx stops the walk the same way Abort does.
func (s *Scanner) Start(ctx context.Context) (<-chan Event, error) {
	info, err := os.Stat(s.root)
	if err != nil {
		return nil, fmt.Errorf("scan root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("scan root %s is not a directory", s.root)
	}

	s.running.Store(true)
	metrics.ScannerRunsTotal.Inc()
	metrics.ScannerRunning.Set(1)

	go s.run(ctx)
	return s.events, nil
}

// Abort requests a cooperative stop. The walk checks the flag at every
// entry; the terminal event still arrives.
func (s *Scanner) Abort() {
	if s.aborted.CompareAndSwap(false, true) {
		metrics.ScannerAborted.Inc()
	}
}

// Aborted reports whether Abort was called.
func (s *Scanner) Aborted() bool { return s.aborted.Load() }

// Running reports whether the walk is still in progress.
func (s *Scanner) Running() bool { return s.running.Load() }

// Found returns the number of files matched so far.
func (s *Scanner) Found() int64 { return s.found.Load() }

// Wait blocks until the walk has finished.
func (s *Scanner) Wait() { <-s.done }

func (s *Scanner) run(ctx context.Context) {
	start := time.Now()
	defer func() {
		s.running.Store(false)
		metrics.ScannerRunning.Set(0)
		metrics.ScannerLastRunDuration.Set(time.Since(start).Seconds())
		close(s.events)
		close(s.done)
	}()

	walkErr := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if s.aborted.Load() {
			return filepath.SkipAll
		}
		select {
		case <-ctx.Done():
			s.aborted.Store(true)
			return filepath.SkipAll
		default:
		}

		if err != nil {
			// Unreadable entries don't kill the scan.
			logging.Warn("Scan: skipping %s: %v", path, err)
			metrics.ScannerErrors.Inc()
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		name := d.Name()
		if !s.includeHidden && strings.HasPrefix(name, ".") && path != s.root {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !s.matches(name) {
			return nil
		}

		// Store the file under its real location so a link and its
		// target never produce two library entries.
		resolved, rerr := filepath.EvalSymlinks(path)
		if rerr != nil {
			logging.Warn("Scan: resolving %s: %v", path, rerr)
			metrics.ScannerErrors.Inc()
			return nil
		}

		s.found.Add(1)
		metrics.ScannerFilesFound.Inc()
		select {
		case s.events <- Event{Path: resolved}:
		case <-ctx.Done():
			s.aborted.Store(true)
			return filepath.SkipAll
		}
		return nil
	})

	if walkErr != nil {
		logging.Error("Scan of %s failed: %v", s.root, walkErr)
		metrics.ScannerErrors.Inc()
	}
	logging.Info("Scan of %s finished: %d files found (aborted=%v)",
		s.root, s.found.Load(), s.aborted.Load())

	// The terminal event must not be lost to a concurrent cancel while a
	// reader is still draining. Only give up when the buffer is full and
	// the context is gone, which means nobody is reading anymore; the
	// closed channel marks the end in that case.
	select {
	case s.events <- Event{Done: true, Err: walkErr}:
	default:
		select {
		case s.events <- Event{Done: true, Err: walkErr}:
		case <-ctx.Done():
		}
	}
}

func (s *Scanner) matches(name string) bool {
	if len(s.suffixes) == 0 {
		return true
	}
	lower := strings.ToLower(name)
	for _, suffix := range s.suffixes {
		if strings.HasSuffix(lower, suffix) {
			return true
		}
	}
	return false
}
