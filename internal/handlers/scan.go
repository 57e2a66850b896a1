package handlers

import (
	"context"
	"errors"
	"net/http"
	"os"
	"strings"
	"sync"

	"video-tagger/internal/database"
	"video-tagger/internal/logging"
	"video-tagger/internal/scanner"
)

// Settings keys persisted across scans.
const (
	settingScanFilter = "scan_file_filter"
	settingLastFolder = "last_scanned_folder"
	settingShowHidden = "show_hidden_files"
)

// scanSession is one scan run plus its accumulated results, kept until
// the next scan replaces it so found files can be imported after the
// walk finishes.
type scanSession struct {
	sc     *scanner.Scanner
	cancel context.CancelFunc
	root   string

	mu       sync.Mutex
	found    []string
	err      error
	done     bool
	imported bool
}

func (s *scanSession) drain(events <-chan scanner.Event) {
	for ev := range events {
		s.mu.Lock()
		if ev.Done {
			s.done = true
			s.err = ev.Err
		} else {
			s.found = append(s.found, ev.Path)
		}
		s.mu.Unlock()
	}
	// The stream is closed; the walk context is only needed for teardown.
	s.cancel()
}

func (s *scanSession) snapshot() (found []string, done, imported bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	found = make([]string, len(s.found))
	copy(found, s.found)
	return found, s.done, s.imported, s.err
}

// ScanRequest starts a walk of root. An empty suffix list falls back
// to the persisted scan filter, then to the built-in default.
type ScanRequest struct {
	Root     string `json:"root"`
	Suffixes string `json:"suffixes"`
}

// ScanStatusResponse reports the state of the current scan session.
type ScanStatusResponse struct {
	Root     string   `json:"root"`
	Running  bool     `json:"running"`
	Done     bool     `json:"done"`
	Aborted  bool     `json:"aborted"`
	Imported bool     `json:"imported"`
	Found    int      `json:"found"`
	Files    []string `json:"files"`
	Error    string   `json:"error,omitempty"`
}

// StartScan launches a directory scan. Only one scan session exists at
// a time; starting while one is running is a conflict.
func (h *Handlers) StartScan(w http.ResponseWriter, r *http.Request) {
	var req ScanRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Root) == "" {
		writeJSONError(w, "root must not be empty", http.StatusBadRequest)
		return
	}

	suffixes := req.Suffixes
	if suffixes == "" {
		suffixes, _ = h.db.GetSetting(r.Context(), settingScanFilter, scanner.DefaultSuffixes)
	}
	showHidden, _ := h.db.GetSetting(r.Context(), settingShowHidden, "false")

	h.scanMu.Lock()
	defer h.scanMu.Unlock()

	if h.scan != nil && h.scan.sc.Running() {
		writeJSONError(w, "a scan is already running", http.StatusConflict)
		return
	}

	sc := scanner.New(req.Root, scanner.SplitSuffixes(suffixes), showHidden == "true")
	ctx, cancel := context.WithCancel(context.Background())
	events, err := sc.Start(ctx)
	if err != nil {
		cancel()
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	session := &scanSession{sc: sc, cancel: cancel, root: req.Root}
	go session.drain(events)
	h.scan = session

	// Remember the last-used values for the next session.
	if err := h.db.SetSetting(r.Context(), settingScanFilter, suffixes); err != nil {
		logging.Warn("persisting %s: %v", settingScanFilter, err)
	}
	if err := h.db.SetSetting(r.Context(), settingLastFolder, req.Root); err != nil {
		logging.Warn("persisting %s: %v", settingLastFolder, err)
	}

	writeJSONStatus(w, "scanning")
}

// ScanStatus reports the current session, including files found so far.
func (h *Handlers) ScanStatus(w http.ResponseWriter, _ *http.Request) {
	h.scanMu.Lock()
	session := h.scan
	h.scanMu.Unlock()

	if session == nil {
		writeJSONError(w, "no scan session", http.StatusNotFound)
		return
	}

	found, done, imported, scanErr := session.snapshot()
	resp := ScanStatusResponse{
		Root:     session.root,
		Running:  session.sc.Running(),
		Done:     done,
		Aborted:  session.sc.Aborted(),
		Imported: imported,
		Found:    len(found),
		Files:    found,
	}
	if scanErr != nil {
		resp.Error = scanErr.Error()
	}
	writeJSON(w, resp)
}

// AbortScan requests a cooperative stop of the running scan. The abort
// flag alone stops the walk; cancelling the context here could race the
// terminal event away from the drain goroutine, so teardown is left to
// the drain once the stream closes.
func (h *Handlers) AbortScan(w http.ResponseWriter, _ *http.Request) {
	h.scanMu.Lock()
	session := h.scan
	h.scanMu.Unlock()

	if session == nil {
		writeJSONError(w, "no scan session", http.StatusNotFound)
		return
	}

	session.sc.Abort()
	writeJSONStatus(w, "aborting")
}

// ImportResponse reports what an import run did.
type ImportResponse struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
	Errors   int `json:"errors"`
}

// ImportScan adds the finished scan's files to the library. Paths the
// library already tracks are skipped; files that vanished since the
// walk are counted as errors. Durations are probed in the background
// after the response is sent.
func (h *Handlers) ImportScan(w http.ResponseWriter, r *http.Request) {
	h.scanMu.Lock()
	session := h.scan
	h.scanMu.Unlock()

	if session == nil {
		writeJSONError(w, "no scan session", http.StatusNotFound)
		return
	}
	found, done, _, _ := session.snapshot()
	if !done {
		writeJSONError(w, "scan still running", http.StatusConflict)
		return
	}

	var resp ImportResponse
	added := make(map[string]*database.VideoFile, len(found))
	for _, path := range found {
		info, err := os.Stat(path)
		if err != nil {
			logging.Warn("Import: stat %s: %v", path, err)
			resp.Errors++
			continue
		}

		file := database.NewVideoFile(path, info.Size(), info.ModTime())
		if _, err := h.db.AddFile(r.Context(), file); err != nil {
			if errors.Is(err, database.ErrPathExists) {
				resp.Skipped++
				continue
			}
			logging.Error("Import: AddFile(%s): %v", path, err)
			resp.Errors++
			continue
		}

		h.view.Add(file)
		added[path] = file
		resp.Imported++
	}

	session.mu.Lock()
	session.imported = true
	session.mu.Unlock()

	if h.prober != nil && len(added) > 0 {
		go h.probeDurations(added)
	}

	logging.Info("Import finished: %d added, %d skipped, %d errors",
		resp.Imported, resp.Skipped, resp.Errors)
	writeJSON(w, resp)
}

// probeDurations enriches freshly imported files with ffprobe results.
func (h *Handlers) probeDurations(files map[string]*database.VideoFile) {
	paths := make([]string, 0, len(files))
	for path := range files {
		paths = append(paths, path)
	}

	h.prober.Each(context.Background(), paths, func(path string, seconds float64) {
		file := files[path]
		if err := h.db.SetDuration(context.Background(), file.ID, &seconds); err != nil {
			logging.Warn("Probe: SetDuration(%d): %v", file.ID, err)
			return
		}
		file.Duration = &seconds
	})
	h.view.Invalidate()
}
