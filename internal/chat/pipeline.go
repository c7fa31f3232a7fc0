package chat

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Manav129/RAG-CHATBOT/internal/llm"
	"github.com/Manav129/RAG-CHATBOT/internal/metrics"
	"github.com/Manav129/RAG-CHATBOT/internal/vector/milvus"
	"github.com/Manav129/RAG-CHATBOT/pkg/logger"
	"github.com/Manav129/RAG-CHATBOT/pkg/utils"
)

// noResultsAnswer is returned without calling the LLM when retrieval
// comes back empty.
const noResultsAnswer = "I'm sorry, but I couldn't find any relevant information in our documentation. Please contact our support team at support@goelelectronics.com for assistance."

// LanguageModel is the slice of the LLM client the pipeline needs.
type LanguageModel interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
	GenerateAnswer(ctx context.Context, question, docContext string) (string, error)
	Model() string
}

var _ LanguageModel = (*llm.Client)(nil)

// Retriever searches the vector store by query embedding.
type Retriever interface {
	Search(ctx context.Context, queryEmbedding []float32, topK int) ([]milvus.SearchResult, error)
	Stats(ctx context.Context) (*milvus.CollectionInfo, error)
}

var _ Retriever = (*milvus.Client)(nil)

// AnswerCache caches chat results and query embeddings. A nil cache
// disables caching.
type AnswerCache interface {
	GetAnswer(ctx context.Context, queryHash string, result interface{}) (bool, error)
	SetAnswer(ctx context.Context, queryHash string, result interface{}, ttl time.Duration) error
	GetEmbedding(ctx context.Context, textHash string) ([]float32, bool, error)
	SetEmbedding(ctx context.Context, textHash string, embedding []float32, ttl time.Duration) error
}

// Pipeline answers customer questions with retrieval-augmented
// generation and flags complaints for ticket creation.
type Pipeline struct {
	llm       LanguageModel
	retriever Retriever
	cache     AnswerCache
	topK      int
	cacheTTL  time.Duration
}

// Result is the outcome of one chat turn. ShouldCreateTicket mirrors
// IsComplaint so callers can auto-open a ticket for complaints.
type Result struct {
	Query              string   `json:"query"`
	Answer             string   `json:"answer"`
	Citations          []string `json:"citations"`
	IsComplaint        bool     `json:"is_complaint"`
	ShouldCreateTicket bool     `json:"should_create_ticket"`
	ModelUsed          string   `json:"model_used"`
}

// SystemStatus describes the RAG system for the /stats endpoint.
type SystemStatus struct {
	Status           string `json:"status"`
	Collection       string `json:"collection"`
	DocumentsIndexed int64  `json:"documents_indexed"`
	VectorDim        int    `json:"vector_dim"`
}

func NewPipeline(languageModel LanguageModel, retriever Retriever, cache AnswerCache, topK int, cacheTTL time.Duration) *Pipeline {
	if topK <= 0 {
		topK = 3
	}
	if cacheTTL <= 0 {
		cacheTTL = time.Hour
	}
	return &Pipeline{
		llm:       languageModel,
		retriever: retriever,
		cache:     cache,
		topK:      topK,
		cacheTTL:  cacheTTL,
	}
}

// Chat runs the full pipeline: embed the query, retrieve the closest
// chunks, answer from that context, then scan the query for complaint
// language.
func (p *Pipeline) Chat(ctx context.Context, query string) (*Result, error) {
	start := time.Now()
	queryHash := utils.HashString(strings.ToLower(strings.TrimSpace(query)))

	if p.cache != nil {
		var cached Result
		hit, err := p.cache.GetAnswer(ctx, queryHash, &cached)
		if err != nil {
			logger.Warn("Chat cache lookup failed", zap.Error(err))
		} else if hit {
			metrics.ChatRequests.WithLabelValues("cached").Inc()
			return &cached, nil
		}
	}

	embedding, err := p.queryEmbedding(ctx, query, queryHash)
	if err != nil {
		metrics.ChatRequests.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	results, err := p.retriever.Search(ctx, embedding, p.topK)
	if err != nil {
		metrics.ChatRequests.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("failed to search documents: %w", err)
	}
	metrics.RetrievalResults.Observe(float64(len(results)))

	if len(results) == 0 {
		logger.Info("No documents retrieved for query", zap.String("query_hash", queryHash))
		metrics.ChatRequests.WithLabelValues("no_results").Inc()
		return &Result{
			Query:     query,
			Answer:    noResultsAnswer,
			Citations: []string{},
			ModelUsed: p.llm.Model(),
		}, nil
	}

	answer, err := p.llm.GenerateAnswer(ctx, query, buildContext(results))
	if err != nil {
		metrics.ChatRequests.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("failed to generate answer: %w", err)
	}

	isComplaint := llm.DetectComplaint(query)
	if isComplaint {
		metrics.ComplaintsDetected.Inc()
	}

	result := &Result{
		Query:              query,
		Answer:             answer,
		Citations:          citations(results),
		IsComplaint:        isComplaint,
		ShouldCreateTicket: isComplaint,
		ModelUsed:          p.llm.Model(),
	}

	// Complaint turns are not cached: each one should open its own ticket.
	if p.cache != nil && !isComplaint {
		if err := p.cache.SetAnswer(ctx, queryHash, result, p.cacheTTL); err != nil {
			logger.Warn("Failed to cache chat answer", zap.Error(err))
		}
	}

	metrics.ChatRequests.WithLabelValues("success").Inc()
	metrics.ChatDuration.Observe(time.Since(start).Seconds())

	logger.Info("Chat turn completed",
		zap.String("query_hash", queryHash),
		zap.Int("retrieved", len(results)),
		zap.Bool("is_complaint", isComplaint),
		zap.Duration("latency", time.Since(start)),
	)

	return result, nil
}

// Status reports collection health for the /stats endpoint.
func (p *Pipeline) Status(ctx context.Context) (*SystemStatus, error) {
	info, err := p.retriever.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read collection stats: %w", err)
	}

	return &SystemStatus{
		Status:           "operational",
		Collection:       info.Name,
		DocumentsIndexed: info.RowCount,
		VectorDim:        info.VectorDim,
	}, nil
}

func (p *Pipeline) queryEmbedding(ctx context.Context, query, queryHash string) ([]float32, error) {
	if p.cache != nil {
		embedding, hit, err := p.cache.GetEmbedding(ctx, queryHash)
		if err != nil {
			logger.Warn("Embedding cache lookup failed", zap.Error(err))
		} else if hit {
			return embedding, nil
		}
	}

	embedding, err := p.llm.GenerateEmbedding(ctx, query)
	if err != nil {
		return nil, err
	}

	if p.cache != nil {
		if err := p.cache.SetEmbedding(ctx, queryHash, embedding, p.cacheTTL); err != nil {
			logger.Warn("Failed to cache embedding", zap.Error(err))
		}
	}

	return embedding, nil
}

// buildContext formats retrieved chunks for the answer prompt, best
// match first.
func buildContext(results []milvus.SearchResult) string {
	parts := make([]string, len(results))
	for i, result := range results {
		parts[i] = fmt.Sprintf("[Document %d: %s] (Relevance: %.0f%%)\n%s",
			i+1, result.Source, result.Score*100, result.Text)
	}
	return strings.Join(parts, "\n\n---\n\n")
}

// citations lists the distinct source documents in retrieval order.
func citations(results []milvus.SearchResult) []string {
	seen := make(map[string]bool, len(results))
	out := make([]string, 0, len(results))
	for _, result := range results {
		if seen[result.Source] {
			continue
		}
		seen[result.Source] = true
		out = append(out, result.Source)
	}
	return out
}
