package handlers

import (
	"net/http"

	"video-tagger/internal/startup"
)

// Version returns build information
func (h *Handlers) Version(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, startup.GetBuildInfo())
}
