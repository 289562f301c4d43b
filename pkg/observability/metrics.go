package observability

import (
	"net/http"
	"strconv"
	"time"

	"forever-us/application/ports"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds all Prometheus metrics for the application
type Collector struct {
	// Registry for this collector instance
	registry *prometheus.Registry

	// HTTP metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Persistence metrics
	DocumentSaves *prometheus.CounterVec
	SaveDuration  prometheus.Histogram

	// Business metrics
	MemoriesAdded   prometheus.Counter
	MemoriesDeleted prometheus.Counter
	ImagesProcessed *prometheus.CounterVec
}

var _ ports.StateMetrics = (*Collector)(nil)

// NewCollector creates a collector with its own registry under namespace
func NewCollector(namespace string) *Collector {
	registry := prometheus.NewRegistry()

	httpRequests := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	httpDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	documentSaves := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "document_saves_total",
			Help:      "Total number of document saves by outcome",
		},
		[]string{"status"},
	)

	saveDuration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "document_save_duration_seconds",
			Help:      "Document save duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
	)

	memoriesAdded := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "memories_added_total",
			Help:      "Total number of memories added",
		},
	)

	memoriesDeleted := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "memories_deleted_total",
			Help:      "Total number of memories deleted",
		},
	)

	imagesProcessed := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "images_processed_total",
			Help:      "Total number of uploaded images by outcome",
		},
		[]string{"status"},
	)

	registry.MustRegister(
		httpRequests,
		httpDuration,
		documentSaves,
		saveDuration,
		memoriesAdded,
		memoriesDeleted,
		imagesProcessed,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &Collector{
		registry:        registry,
		HTTPRequests:    httpRequests,
		HTTPDuration:    httpDuration,
		DocumentSaves:   documentSaves,
		SaveDuration:    saveDuration,
		MemoriesAdded:   memoriesAdded,
		MemoriesDeleted: memoriesDeleted,
		ImagesProcessed: imagesProcessed,
	}
}

// RecordHTTPRequest records one served request
func (c *Collector) RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	c.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.HTTPDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordDocumentSave records the outcome of one save
func (c *Collector) RecordDocumentSave(success bool, duration time.Duration) {
	c.DocumentSaves.WithLabelValues(outcome(success)).Inc()
	c.SaveDuration.Observe(duration.Seconds())
}

// RecordMemoryAdded counts a new memory
func (c *Collector) RecordMemoryAdded() {
	c.MemoriesAdded.Inc()
}

// RecordMemoryDeleted counts a removed memory
func (c *Collector) RecordMemoryDeleted() {
	c.MemoriesDeleted.Inc()
}

// RecordImageProcessed counts an upload by outcome
func (c *Collector) RecordImageProcessed(success bool) {
	c.ImagesProcessed.WithLabelValues(outcome(success)).Inc()
}

// GetRegistry returns the Prometheus registry for this collector
func (c *Collector) GetRegistry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus exposition format
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

func outcome(success bool) string {
	if success {
		return "success"
	}
	return "failure"
}
