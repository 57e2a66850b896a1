package handlers

import (
	"net/http"
	"runtime"
	"time"

	"video-tagger/internal/startup"
)

// HealthResponse contains the health check response
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Uptime  string `json:"uptime"`

	TotalFiles   int `json:"totalFiles"`
	VisibleFiles int `json:"visibleFiles"`
	TotalTags    int `json:"totalTags"`

	GoVersion    string `json:"goVersion"`
	NumCPU       int    `json:"numCpu"`
	NumGoroutine int    `json:"numGoroutine"`
}

// HealthCheck returns the health status of the service
func (h *Handlers) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, HealthResponse{
		Status:       "healthy",
		Version:      startup.Version,
		Uptime:       time.Since(h.startTime).Round(time.Second).String(),
		TotalFiles:   h.view.Total(),
		VisibleFiles: len(h.view.Visible()),
		TotalTags:    h.tags.Len(),
		GoVersion:    runtime.Version(),
		NumCPU:       runtime.NumCPU(),
		NumGoroutine: runtime.NumGoroutine(),
	})
}

// Healthz is the minimal liveness/readiness probe.
func (h *Handlers) Healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSONStatus(w, "ok")
}
