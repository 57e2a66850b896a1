package handlers

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/mux"

	"video-tagger/internal/logging"
)

// TagRequest names a tag to create or attach.
type TagRequest struct {
	Name string `json:"name"`
}

// ListTags returns every known tag with its usage count, zero-count
// tags included.
func (h *Handlers) ListTags(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, h.tags.Counts())
}

// CreateTag defines a bare tag attached to nothing. Creating an
// existing tag (by any capitalization) is a no-op.
func (h *Handlers) CreateTag(w http.ResponseWriter, r *http.Request) {
	name, ok := h.tagFromBody(w, r)
	if !ok {
		return
	}

	// Reuse the stored spelling if the tag already exists.
	if stored, found := h.tags.Resolve(name); found {
		name = stored
	}

	if err := h.db.AddTag(r.Context(), name); err != nil {
		logging.Error("AddTag(%q): %v", name, err)
		writeJSONError(w, "database error", http.StatusInternalServerError)
		return
	}
	h.tags.Define(name)

	writeJSON(w, map[string]string{"name": name})
}

// AttachTag adds a tag to a file, creating the tag if needed. Attaching
// a tag the file already carries changes nothing.
func (h *Handlers) AttachTag(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeJSONError(w, "bad file id", http.StatusBadRequest)
		return
	}
	name, ok := h.tagFromBody(w, r)
	if !ok {
		return
	}
	if stored, found := h.tags.Resolve(name); found {
		name = stored
	}

	file := h.view.Get(id)
	if file == nil {
		writeJSONError(w, "file not found", http.StatusNotFound)
		return
	}

	if err := h.db.SetTag(r.Context(), id, name); err != nil {
		logging.Error("SetTag(%d, %q): %v", id, name, err)
		writeJSONError(w, "database error", http.StatusInternalServerError)
		return
	}

	// Store, entity and aggregate move together; the count only bumps
	// when the association is actually new.
	if !file.HasTag(name) {
		file.AddTag(name)
		h.tags.Attach(name)
		h.view.Invalidate()
	}

	writeJSON(w, toFileJSON(file))
}

// DetachTag removes a tag from a file. Detaching a tag the file does
// not carry is a no-op.
func (h *Handlers) DetachTag(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeJSONError(w, "bad file id", http.StatusBadRequest)
		return
	}
	name, ok := h.tagFromPath(w, r)
	if !ok {
		return
	}

	file := h.view.Get(id)
	if file == nil {
		writeJSONError(w, "file not found", http.StatusNotFound)
		return
	}

	if err := h.db.RemoveTag(r.Context(), id, name); err != nil {
		logging.Error("RemoveTag(%d, %q): %v", id, name, err)
		writeJSONError(w, "database error", http.StatusInternalServerError)
		return
	}

	if file.HasTag(name) {
		file.RemoveTag(name)
		h.tags.Detach(name)
		h.view.Invalidate()
	}

	writeJSON(w, toFileJSON(file))
}

// DeleteTag removes a tag everywhere: its definition, every
// association, and its count. Deleting an unknown tag is a no-op.
func (h *Handlers) DeleteTag(w http.ResponseWriter, r *http.Request) {
	name, ok := h.tagFromPath(w, r)
	if !ok {
		return
	}

	if err := h.db.DeleteTag(r.Context(), name); err != nil {
		logging.Error("DeleteTag(%q): %v", name, err)
		writeJSONError(w, "database error", http.StatusInternalServerError)
		return
	}

	for _, file := range h.view.All() {
		file.RemoveTag(name)
	}
	h.tags.Drop(name)
	h.view.Invalidate()

	writeJSONStatus(w, "deleted")
}

// tagFromBody reads and validates the tag name in the request body.
func (h *Handlers) tagFromBody(w http.ResponseWriter, r *http.Request) (string, bool) {
	var req TagRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSONError(w, "invalid request body", http.StatusBadRequest)
		return "", false
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		writeJSONError(w, "tag name must not be empty", http.StatusBadRequest)
		return "", false
	}
	return name, true
}

// tagFromPath reads the {tag} route variable, resolving it to the
// stored spelling case-insensitively.
func (h *Handlers) tagFromPath(w http.ResponseWriter, r *http.Request) (string, bool) {
	raw := mux.Vars(r)["tag"]
	if unescaped, err := url.PathUnescape(raw); err == nil {
		raw = unescaped
	}
	name := strings.TrimSpace(raw)
	if name == "" {
		writeJSONError(w, "tag name must not be empty", http.StatusBadRequest)
		return "", false
	}
	if stored, found := h.tags.Resolve(name); found {
		name = stored
	}
	return name, true
}
