// Package metrics defines the Prometheus instrumentation for the service.
// The metric set mirrors the operational counters the UI dashboards expect:
// upload volume and duration, vector store and embedding operations, query
// latency, and chat model requests.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// FileUploadsTotal counts file uploads by file type and outcome.
	FileUploadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "file_uploads_total",
		Help: "Total number of file uploads",
	}, []string{"file_type", "status"})

	// FileProcessingDuration observes end-to-end ingestion time per file type.
	FileProcessingDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "file_processing_duration_seconds",
		Help:    "Duration of file processing in seconds",
		Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60},
	}, []string{"file_type"})

	// VectorStoreOperations counts calls against the vector index.
	VectorStoreOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vector_store_operations_total",
		Help: "Total number of vector store operations",
	}, []string{"operation", "status"})

	// EmbeddingOperations counts embedding batches by provider and outcome.
	EmbeddingOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "embedding_operations_total",
		Help: "Total number of embedding operations",
	}, []string{"provider", "status"})

	// QueryResponseTime observes the latency of question answering.
	QueryResponseTime = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "query_response_time_seconds",
		Help:    "Time taken to respond to queries",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30},
	}, []string{"query_type"})

	// LLMRequests counts chat model calls by model and outcome.
	LLMRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "llm_requests_total",
		Help: "Total number of LLM requests",
	}, []string{"model", "status"})
)

// Outcome converts an error into the status label used across the counters.
func Outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
