package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"video-tagger/internal/collection"
	"video-tagger/internal/database"
	"video-tagger/internal/handlers"
	"video-tagger/internal/logging"
	"video-tagger/internal/metrics"
	"video-tagger/internal/middleware"
	"video-tagger/internal/player"
	"video-tagger/internal/probe"
	"video-tagger/internal/startup"
)

func main() {
	startTime := time.Now()

	// Load configuration
	config, err := startup.LoadConfig()
	if err != nil {
		startup.LogFatal("Configuration error: %v", err)
	}

	// Initialize database
	dbStart := time.Now()
	db, err := database.New(context.Background(), config.DatabasePath)
	if err != nil {
		startup.LogFatal("Failed to initialize database: %v", err)
	}
	defer db.Close()
	startup.LogDatabaseInit(time.Since(dbStart))

	// Load the library into the in-memory working set
	loadStart := time.Now()
	files, err := db.ListFiles(context.Background())
	if err != nil {
		startup.LogFatal("Failed to load library: %v", err)
	}
	counts, err := db.TagCounts(context.Background())
	if err != nil {
		startup.LogFatal("Failed to load tags: %v", err)
	}
	view := collection.NewView()
	view.SetFiles(files)
	tags := collection.NewTagCounts(counts)
	startup.LogLibraryLoaded(len(files), tags.Len(), time.Since(loadStart))

	// Initialize player driver (optional; endpoints report 503 without it)
	startup.LogPlayerInit(config.PlayerCommand, config.PlayerDisabled)
	var mp handlers.MediaPlayer
	var p *player.Player
	if !config.PlayerDisabled {
		p, err = player.New(config.PlayerCommand)
		if err != nil {
			logging.Warn("Player unavailable: %v", err)
		} else {
			mp = p
		}
	}

	// Initialize duration prober
	startup.LogProbeInit(config.ProbeDisabled)
	var prober *probe.Prober
	if !config.ProbeDisabled {
		prober = probe.New()
	}

	// Initialize handlers and routes
	h := handlers.New(db, view, tags, prober, mp)
	router := h.Routes()
	startup.LogHTTPRoutes(router)

	// Periodic library gauges
	collector := metrics.NewCollector(&statsSource{db: db, view: view, tags: tags}, 30*time.Second)
	collector.Start()

	// Apply logging middleware
	loggingConfig := middleware.DefaultLoggingConfig()
	loggingConfig.LogHealthChecks = config.LogHealthChecks
	loggedHandler := middleware.Logger(loggingConfig)(router)

	// Apply metrics middleware
	handler := middleware.Metrics(middleware.DefaultMetricsConfig())(loggedHandler)

	// Create server
	srv := &http.Server{
		Addr:         ":" + config.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Metrics exposed on a separate port so scrapes bypass the API surface
	var metricsSrv *http.Server
	if config.MetricsEnabled {
		metricsMux := http.NewServeMux()
		metricsMux.Handle("/metrics", promhttp.Handler())
		metricsSrv = &http.Server{
			Addr:         ":" + config.MetricsPort,
			Handler:      metricsMux,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
		}
		go func() {
			if err := metricsSrv.ListenAndServe(); err != http.ErrServerClosed {
				logging.Error("Metrics server error: %v", err)
			}
		}()
	}

	// Start graceful shutdown handler
	go handleShutdown(srv, metricsSrv, collector, p, db)

	// Start server
	startup.LogServerStarted(startup.ServerConfig{
		Port:            config.Port,
		MetricsPort:     config.MetricsPort,
		MetricsEnabled:  config.MetricsEnabled,
		StartupDuration: time.Since(startTime),
	})
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		startup.LogFatal("Server error: %v", err)
	}
}

// statsSource adapts the live stores to the metrics collector.
type statsSource struct {
	db   *database.Database
	view *collection.View
	tags *collection.TagCounts
}

func (s *statsSource) GetStats() metrics.Stats {
	return metrics.Stats{
		TotalFiles:   s.view.Total(),
		VisibleFiles: len(s.view.Visible()),
		TotalTags:    s.tags.Len(),
		OpenDBConns:  s.db.OpenConnections(),
	}
}

func handleShutdown(srv, metricsSrv *http.Server, collector *metrics.Collector, p *player.Player, db *database.Database) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan

	startup.LogShutdownInitiated(sig.String())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	collector.Stop()
	startup.LogShutdownStepComplete("Metrics collector stopped")

	if p != nil {
		if err := p.Close(); err != nil {
			logging.Warn("Player shutdown error: %v", err)
		} else {
			startup.LogShutdownStepComplete("Player stopped")
		}
	}

	if metricsSrv != nil {
		if err := metricsSrv.Shutdown(ctx); err != nil {
			logging.Warn("Metrics server shutdown error: %v", err)
		} else {
			startup.LogShutdownStepComplete("Metrics server stopped")
		}
	}

	if err := srv.Shutdown(ctx); err != nil {
		logging.Warn("Server shutdown error: %v", err)
	} else {
		startup.LogShutdownStepComplete("HTTP server stopped")
	}

	if err := db.Close(); err != nil {
		logging.Warn("Database shutdown error: %v", err)
	} else {
		startup.LogShutdownStepComplete("Database closed")
	}

	startup.LogShutdownComplete()
}
