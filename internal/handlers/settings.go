package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"video-tagger/internal/logging"
)

// SettingValue is the wire shape of one setting.
type SettingValue struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// ListSettings returns every stored setting.
func (h *Handlers) ListSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.db.AllSettings(r.Context())
	if err != nil {
		logging.Error("AllSettings: %v", err)
		writeJSONError(w, "database error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, settings)
}

// GetSetting returns one setting; unknown keys answer with an empty
// value rather than 404, matching the store's default-value contract.
func (h *Handlers) GetSetting(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["key"]
	value, err := h.db.GetSetting(r.Context(), key, "")
	if err != nil {
		logging.Error("GetSetting(%q): %v", key, err)
		writeJSONError(w, "database error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, SettingValue{Key: key, Value: value})
}

// PutSetting stores one setting, overwriting any previous value.
func (h *Handlers) PutSetting(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["key"]

	var req struct {
		Value string `json:"value"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.db.SetSetting(r.Context(), key, req.Value); err != nil {
		logging.Error("SetSetting(%q): %v", key, err)
		writeJSONError(w, "database error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, SettingValue{Key: key, Value: req.Value})
}

// DeleteSetting removes one setting; removing an absent key is a no-op.
func (h *Handlers) DeleteSetting(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["key"]
	if err := h.db.RemoveSetting(r.Context(), key); err != nil {
		logging.Error("RemoveSetting(%q): %v", key, err)
		writeJSONError(w, "database error", http.StatusInternalServerError)
		return
	}
	writeJSONStatus(w, "removed")
}
