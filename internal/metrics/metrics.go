package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "video_tagger_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "video_tagger_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "video_tagger_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)
)

// Database metrics
var (
	DBQueryTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "video_tagger_db_queries_total",
			Help: "Total number of database queries",
		},
		[]string{"operation", "status"},
	)

	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "video_tagger_db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"operation"},
	)

	DBConnectionsOpen = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "video_tagger_db_connections_open",
			Help: "Number of open database connections",
		},
	)
)

// Scanner metrics
var (
	ScannerRunsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "video_tagger_scanner_runs_total",
			Help: "Total number of directory scans started",
		},
	)

	ScannerFilesFound = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "video_tagger_scanner_files_found_total",
			Help: "Total number of matching files discovered by scans",
		},
	)

	ScannerErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "video_tagger_scanner_errors_total",
			Help: "Total number of per-entry scan errors that were skipped",
		},
	)

	ScannerAborted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "video_tagger_scanner_aborted_total",
			Help: "Total number of scans cancelled before completion",
		},
	)

	ScannerRunning = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "video_tagger_scanner_running",
			Help: "Whether a directory scan is in progress (1 = scanning, 0 = idle)",
		},
	)

	ScannerLastRunDuration = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "video_tagger_scanner_last_run_duration_seconds",
			Help: "Duration of the last completed scan in seconds",
		},
	)
)

// Player metrics
var (
	PlayerCommandsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "video_tagger_player_commands_total",
			Help: "Total number of commands sent to the media player",
		},
		[]string{"command", "status"},
	)

	PlayerUp = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "video_tagger_player_up",
			Help: "Whether the media player process is available (1 = up, 0 = down)",
		},
	)
)

// Collection metrics
var (
	CollectionRefilterDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "video_tagger_collection_refilter_duration_seconds",
			Help:    "Time spent re-evaluating the collection after a criteria change",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
	)

	CollectionVisibleFiles = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "video_tagger_collection_visible_files",
			Help: "Number of files accepted by the active filter",
		},
	)

	CollectionTotalFiles = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "video_tagger_collection_total_files",
			Help: "Number of files in the library",
		},
	)
)

// Probe metrics
var (
	ProbeDurationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "video_tagger_probe_durations_total",
			Help: "Total number of duration probes by outcome",
		},
		[]string{"status"},
	)
)
