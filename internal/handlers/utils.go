package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gorilla/mux"

	"video-tagger/internal/database"
	"video-tagger/internal/logging"
)

// writeJSON encodes v as JSON and writes it to the response writer.
// Encoding errors are only logged; there is no recovering mid-response.
func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Error("failed to encode JSON response: %v", err)
	}
}

// writeJSONError writes an error response as JSON with the given status code.
func writeJSONError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(map[string]string{"error": message}); err != nil {
		logging.Error("failed to encode JSON error: %v", err)
	}
}

// writeJSONStatus writes a simple status response as JSON.
func writeJSONStatus(w http.ResponseWriter, status string) {
	writeJSON(w, map[string]string{"status": status})
}

// decodeJSON decodes the request body into v, rejecting unknown fields.
func decodeJSON(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// pathID extracts the {id} route variable. The route pattern already
// restricts it to digits.
func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
}

// fileJSON is the wire shape of a library file.
type fileJSON struct {
	ID           int64     `json:"id"`
	Path         string    `json:"path"`
	Name         string    `json:"name"`
	Stem         string    `json:"stem"`
	Size         int64     `json:"size"`
	SizeHuman    string    `json:"sizeHuman"`
	DateModified time.Time `json:"dateModified"`
	Duration     *float64  `json:"duration"`
	Rating       *int      `json:"rating"`
	Tags         []string  `json:"tags"`
}

func toFileJSON(f *database.VideoFile) fileJSON {
	tags := f.TagNames()
	if tags == nil {
		tags = []string{}
	}
	return fileJSON{
		ID:           f.ID,
		Path:         f.Path,
		Name:         f.Name(),
		Stem:         f.Stem(),
		Size:         f.Size,
		SizeHuman:    humanize.IBytes(uint64(f.Size)),
		DateModified: f.DateModified,
		Duration:     f.Duration,
		Rating:       f.Rating,
		Tags:         tags,
	}
}

func toFileJSONList(files []*database.VideoFile) []fileJSON {
	out := make([]fileJSON, len(files))
	for i, f := range files {
		out[i] = toFileJSON(f)
	}
	return out
}
