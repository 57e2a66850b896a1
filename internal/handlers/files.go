package handlers

import (
	"errors"
	"net/http"

	"video-tagger/internal/collection"
	"video-tagger/internal/database"
	"video-tagger/internal/logging"
)

// FileListResponse carries the visible slice of the collection plus
// the counts behind "Showing N of M files".
type FileListResponse struct {
	Files   []fileJSON `json:"files"`
	Visible int        `json:"visible"`
	Total   int        `json:"total"`
}

// ListFiles returns the filtered, sorted view. Optional query
// parameters sort (name|path|size|date|duration|rating|tags) and
// order (asc|desc) re-sort the view before answering.
func (h *Handlers) ListFiles(w http.ResponseWriter, r *http.Request) {
	if sortCol := r.URL.Query().Get("sort"); sortCol != "" {
		if !collection.ValidSortColumn(sortCol) {
			writeJSONError(w, "unknown sort column: "+sortCol, http.StatusBadRequest)
			return
		}
		order := r.URL.Query().Get("order")
		if order != "" && order != "asc" && order != "desc" {
			writeJSONError(w, "order must be asc or desc", http.StatusBadRequest)
			return
		}
		h.view.SortBy(collection.SortColumn(sortCol), order != "desc")
	}

	visible := h.view.Visible()
	writeJSON(w, FileListResponse{
		Files:   toFileJSONList(visible),
		Visible: len(visible),
		Total:   h.view.Total(),
	})
}

// GetFile returns a single file by id.
func (h *Handlers) GetFile(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeJSONError(w, "bad file id", http.StatusBadRequest)
		return
	}

	file, err := h.db.GetFile(r.Context(), id)
	if errors.Is(err, database.ErrNotFound) {
		writeJSONError(w, "file not found", http.StatusNotFound)
		return
	}
	if err != nil {
		logging.Error("GetFile(%d): %v", id, err)
		writeJSONError(w, "database error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, toFileJSON(file))
}

// RemoveFile drops a file from the library. The file on disk is left
// alone.
func (h *Handlers) RemoveFile(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeJSONError(w, "bad file id", http.StatusBadRequest)
		return
	}

	file := h.view.Get(id)
	if file == nil {
		writeJSONError(w, "file not found", http.StatusNotFound)
		return
	}

	if err := h.db.RemoveFile(r.Context(), id); err != nil {
		logging.Error("RemoveFile(%d): %v", id, err)
		writeJSONError(w, "database error", http.StatusInternalServerError)
		return
	}

	// Associations are gone; usage counts drop with them, but the tag
	// definitions stay.
	for _, name := range file.TagNames() {
		h.tags.Detach(name)
	}
	h.view.Remove(id)

	writeJSONStatus(w, "removed")
}

// PinRequest names the file the user is interacting with; id 0 clears
// the pin.
type PinRequest struct {
	ID int64 `json:"id"`
}

// SetPinned records the pinned file. Pinning never re-filters on its
// own; the pin shows up at the next recomputation.
func (h *Handlers) SetPinned(w http.ResponseWriter, r *http.Request) {
	var req PinRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.ID != 0 && h.view.Get(req.ID) == nil {
		writeJSONError(w, "file not found", http.StatusNotFound)
		return
	}

	h.view.SetPinned(req.ID)
	writeJSON(w, map[string]int64{"pinned": req.ID})
}

// RatingRequest sets a file's rating; null clears it.
type RatingRequest struct {
	Rating *int `json:"rating"`
}

// SetRating overwrites a file's rating. Valid ratings are 0 through 5;
// null removes the rating entirely (unrated filters like rating 0 but
// is stored as absent).
func (h *Handlers) SetRating(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeJSONError(w, "bad file id", http.StatusBadRequest)
		return
	}

	var req RatingRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Rating != nil && (*req.Rating < 0 || *req.Rating > 5) {
		writeJSONError(w, "rating must be between 0 and 5", http.StatusBadRequest)
		return
	}

	file := h.view.Get(id)
	if file == nil {
		writeJSONError(w, "file not found", http.StatusNotFound)
		return
	}

	if err := h.db.SetRating(r.Context(), id, req.Rating); err != nil {
		logging.Error("SetRating(%d): %v", id, err)
		writeJSONError(w, "database error", http.StatusInternalServerError)
		return
	}

	file.Rating = req.Rating
	h.view.Invalidate()

	writeJSON(w, toFileJSON(file))
}
