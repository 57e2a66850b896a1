package handlers

import (
	"net/http"

	"video-tagger/internal/logging"
)

// PlayRequest names the library file to preview.
type PlayRequest struct {
	ID int64 `json:"id"`
}

// SeekRequest jumps to an absolute position in the current item.
type SeekRequest struct {
	Seconds int `json:"seconds"`
}

// requirePlayer answers 503 when no player is available. Player
// trouble never propagates past this layer; at worst a preview
// doesn't start.
func (h *Handlers) requirePlayer(w http.ResponseWriter) bool {
	if h.player == nil {
		writeJSONError(w, "player unavailable", http.StatusServiceUnavailable)
		return false
	}
	return true
}

// PlayerPlay previews a library file in the external player, or
// resumes the current item when no id is given.
func (h *Handlers) PlayerPlay(w http.ResponseWriter, r *http.Request) {
	if !h.requirePlayer(w) {
		return
	}

	var req PlayRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if req.ID == 0 {
		if err := h.player.Play(); err != nil {
			writeJSONError(w, "player error", http.StatusBadGateway)
			return
		}
		writeJSONStatus(w, "playing")
		return
	}

	file := h.view.Get(req.ID)
	if file == nil {
		writeJSONError(w, "file not found", http.StatusNotFound)
		return
	}
	if err := h.player.PlayFile(file.Path); err != nil {
		logging.Warn("PlayFile(%s): %v", file.Path, err)
		writeJSONError(w, "player error", http.StatusBadGateway)
		return
	}
	writeJSONStatus(w, "playing")
}

// PlayerPause toggles pause on the current item.
func (h *Handlers) PlayerPause(w http.ResponseWriter, _ *http.Request) {
	if !h.requirePlayer(w) {
		return
	}
	if err := h.player.Pause(); err != nil {
		writeJSONError(w, "player error", http.StatusBadGateway)
		return
	}
	writeJSONStatus(w, "paused")
}

// PlayerStop stops playback.
func (h *Handlers) PlayerStop(w http.ResponseWriter, _ *http.Request) {
	if !h.requirePlayer(w) {
		return
	}
	if err := h.player.Stop(); err != nil {
		writeJSONError(w, "player error", http.StatusBadGateway)
		return
	}
	writeJSONStatus(w, "stopped")
}

// PlayerSeek jumps to an absolute position in seconds.
func (h *Handlers) PlayerSeek(w http.ResponseWriter, r *http.Request) {
	if !h.requirePlayer(w) {
		return
	}

	var req SeekRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Seconds < 0 {
		writeJSONError(w, "seconds must not be negative", http.StatusBadRequest)
		return
	}

	if err := h.player.Seek(req.Seconds); err != nil {
		writeJSONError(w, "player error", http.StatusBadGateway)
		return
	}
	writeJSONStatus(w, "seeked")
}

// PlayerStatus reports current playback state.
func (h *Handlers) PlayerStatus(w http.ResponseWriter, _ *http.Request) {
	if !h.requirePlayer(w) {
		return
	}
	status, err := h.player.Status()
	if err != nil {
		writeJSONError(w, "player error", http.StatusBadGateway)
		return
	}
	writeJSON(w, status)
}
