package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	pagesAnalyzed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "scoresplit",
			Name:      "pages_analyzed_total",
			Help:      "Pages analyzed, labeled by classification result (part, unclassified)",
		},
		[]string{"result"},
	)

	pageTextSource = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "scoresplit",
			Name:      "page_text_source_total",
			Help:      "Pages by text source (embedded, ocr)",
		},
		[]string{"source"},
	)

	ocrLatency = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "scoresplit",
			Name:      "ocr_duration_seconds",
			Help:      "Duration of per-page OCR including rasterization",
			Buckets:   prometheus.DefBuckets,
		},
	)

	partsDetected = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "scoresplit",
			Name:      "parts_detected",
			Help:      "Part groups detected per document",
			Buckets:   []float64{0, 1, 2, 4, 8, 16, 32},
		},
	)

	partFilesWritten = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "scoresplit",
			Name:      "part_files_written_total",
			Help:      "Part PDF files written, labeled by result (success, error)",
		},
		[]string{"result"},
	)

	jobsProcessed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "scoresplit",
			Name:      "jobs_processed_total",
			Help:      "Split jobs processed in service mode, labeled by result",
		},
		[]string{"result"},
	)

	queueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "scoresplit",
			Name:      "queue_depth",
			Help:      "Pending split jobs in the stream",
		},
	)
)

// Init registers collectors.
func Init() {
	prometheus.MustRegister(pagesAnalyzed, pageTextSource, ocrLatency, partsDetected, partFilesWritten, jobsProcessed, queueDepth)
}

// Handler returns the http.Handler for /metrics
func Handler() http.Handler { return promhttp.Handler() }

func IncPageAnalyzed(result string)    { pagesAnalyzed.WithLabelValues(result).Inc() }
func IncPageTextSource(source string)  { pageTextSource.WithLabelValues(source).Inc() }
func ObserveOCR(dur time.Duration)     { ocrLatency.Observe(dur.Seconds()) }
func ObservePartsDetected(n int)       { partsDetected.Observe(float64(n)) }
func IncPartFileWritten(result string) { partFilesWritten.WithLabelValues(result).Inc() }
func IncJobProcessed(result string)    { jobsProcessed.WithLabelValues(result).Inc() }
func SetQueueDepth(v int64)            { queueDepth.Set(float64(v)) }
