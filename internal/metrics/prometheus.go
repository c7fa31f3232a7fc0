package metrics

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	ChatRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "support_agent_chat_requests_total",
			Help: "Total chat requests processed",
		},
		[]string{"status"},
	)

	ChatDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "support_agent_chat_duration_seconds",
			Help:    "Chat request duration in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10},
		},
	)

	RetrievalResults = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "support_agent_retrieval_results",
			Help:    "Number of chunks retrieved per chat request",
			Buckets: []float64{0, 1, 2, 3, 5, 10},
		},
	)

	ComplaintsDetected = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "support_agent_complaints_detected_total",
			Help: "Total chat requests flagged as complaints",
		},
	)

	TicketsCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "support_agent_tickets_created_total",
			Help: "Total tickets created",
		},
		[]string{"source"},
	)

	LLMTokens = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "support_agent_llm_tokens_total",
			Help: "Total tokens consumed by the LLM API",
		},
		[]string{"type"},
	)

	CacheHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "support_agent_cache_hits_total",
			Help: "Total cache hits",
		},
		[]string{"cache_type"},
	)

	CacheMisses = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "support_agent_cache_misses_total",
			Help: "Total cache misses",
		},
		[]string{"cache_type"},
	)

	DocumentsIngested = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "support_agent_documents_ingested_total",
			Help: "Total documents processed by ingestion",
		},
	)

	ChunksIngested = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "support_agent_chunks_ingested_total",
			Help: "Total chunks stored in the vector collection",
		},
	)
)

func Init() {
	prometheus.MustRegister(ChatRequests)
	prometheus.MustRegister(ChatDuration)
	prometheus.MustRegister(RetrievalResults)
	prometheus.MustRegister(ComplaintsDetected)
	prometheus.MustRegister(TicketsCreated)
	prometheus.MustRegister(LLMTokens)
	prometheus.MustRegister(CacheHits)
	prometheus.MustRegister(CacheMisses)
	prometheus.MustRegister(DocumentsIngested)
	prometheus.MustRegister(ChunksIngested)
}

func Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
