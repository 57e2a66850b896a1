package handlers

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"

	"video-tagger/internal/collection"
	"video-tagger/internal/database"
	"video-tagger/internal/player"
	"video-tagger/internal/probe"
)

// MediaPlayer is the slice of the player driver the handlers use.
// A nil MediaPlayer means playback is unavailable.
type MediaPlayer interface {
	PlayFile(path string) error
	Play() error
	Pause() error
	Stop() error
	Seek(seconds int) error
	Status() (player.Status, error)
}

type Handlers struct {
	db     *database.Database
	view   *collection.View
	tags   *collection.TagCounts
	prober *probe.Prober // nil when duration probing is disabled
	player MediaPlayer   // nil when the player is disabled or failed to start

	startTime time.Time

	scanMu sync.Mutex
	scan   *scanSession
}

func New(db *database.Database, view *collection.View, tags *collection.TagCounts, prober *probe.Prober, mp MediaPlayer) *Handlers {
	return &Handlers{
		db:        db,
		view:      view,
		tags:      tags,
		prober:    prober,
		player:    mp,
		startTime: time.Now(),
	}
}

// Routes builds the full API router.
func (h *Handlers) Routes() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/health", h.HealthCheck).Methods(http.MethodGet)
	r.HandleFunc("/healthz", h.Healthz).Methods(http.MethodGet)
	r.HandleFunc("/livez", h.Healthz).Methods(http.MethodGet)
	r.HandleFunc("/readyz", h.Healthz).Methods(http.MethodGet)
	r.HandleFunc("/version", h.Version).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/files", h.ListFiles).Methods(http.MethodGet)
	api.HandleFunc("/files/pinned", h.SetPinned).Methods(http.MethodPut)
	api.HandleFunc("/files/{id:[0-9]+}", h.GetFile).Methods(http.MethodGet)
	api.HandleFunc("/files/{id:[0-9]+}", h.RemoveFile).Methods(http.MethodDelete)
	api.HandleFunc("/files/{id:[0-9]+}/rating", h.SetRating).Methods(http.MethodPut)
	api.HandleFunc("/files/{id:[0-9]+}/tags", h.AttachTag).Methods(http.MethodPost)
	api.HandleFunc("/files/{id:[0-9]+}/tags/{tag}", h.DetachTag).Methods(http.MethodDelete)

	api.HandleFunc("/filter", h.GetFilter).Methods(http.MethodGet)
	api.HandleFunc("/filter", h.SetFilter).Methods(http.MethodPut)

	api.HandleFunc("/tags", h.ListTags).Methods(http.MethodGet)
	api.HandleFunc("/tags", h.CreateTag).Methods(http.MethodPost)
	api.HandleFunc("/tags/{tag}", h.DeleteTag).Methods(http.MethodDelete)

	api.HandleFunc("/scan", h.StartScan).Methods(http.MethodPost)
	api.HandleFunc("/scan", h.ScanStatus).Methods(http.MethodGet)
	api.HandleFunc("/scan", h.AbortScan).Methods(http.MethodDelete)
	api.HandleFunc("/scan/import", h.ImportScan).Methods(http.MethodPost)

	api.HandleFunc("/player/play", h.PlayerPlay).Methods(http.MethodPost)
	api.HandleFunc("/player/pause", h.PlayerPause).Methods(http.MethodPost)
	api.HandleFunc("/player/stop", h.PlayerStop).Methods(http.MethodPost)
	api.HandleFunc("/player/seek", h.PlayerSeek).Methods(http.MethodPost)
	api.HandleFunc("/player/status", h.PlayerStatus).Methods(http.MethodGet)

	api.HandleFunc("/settings", h.ListSettings).Methods(http.MethodGet)
	api.HandleFunc("/settings/{key}", h.GetSetting).Methods(http.MethodGet)
	api.HandleFunc("/settings/{key}", h.PutSetting).Methods(http.MethodPut)
	api.HandleFunc("/settings/{key}", h.DeleteSetting).Methods(http.MethodDelete)

	return r
}
