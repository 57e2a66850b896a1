package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// StatsProvider supplies the gauges the collector publishes.
type StatsProvider interface {
	GetStats() Stats
}

// Stats holds a snapshot of library-wide counts.
type Stats struct {
	TotalFiles   int
	VisibleFiles int
	TotalTags    int
	OpenDBConns  int
}

// LibraryTagsTotal tracks the number of distinct tags in the library.
var LibraryTagsTotal = promauto.NewGauge(
	prometheus.GaugeOpts{
		Name: "video_tagger_library_tags_total",
		Help: "Number of distinct tags in the library",
	},
)

// Collector periodically publishes library statistics as gauges.
type Collector struct {
	statsProvider StatsProvider
	interval      time.Duration
	stopChan      chan struct{}
}

// NewCollector creates a new metrics collector.
func NewCollector(provider StatsProvider, interval time.Duration) *Collector {
	return &Collector{
		statsProvider: provider,
		interval:      interval,
		stopChan:      make(chan struct{}),
	}
}

// Start begins the metrics collection loop.
func (c *Collector) Start() {
	go c.collectLoop()
}

// Stop stops the metrics collection.
func (c *Collector) Stop() {
	close(c.stopChan)
}

func (c *Collector) collectLoop() {
	// Collect immediately on start
	c.collect()

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.collect()
		case <-c.stopChan:
			return
		}
	}
}

func (c *Collector) collect() {
	if c.statsProvider == nil {
		return
	}

	stats := c.statsProvider.GetStats()

	CollectionTotalFiles.Set(float64(stats.TotalFiles))
	CollectionVisibleFiles.Set(float64(stats.VisibleFiles))
	LibraryTagsTotal.Set(float64(stats.TotalTags))
	DBConnectionsOpen.Set(float64(stats.OpenDBConns))
}
