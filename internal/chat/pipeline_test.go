package chat

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Manav129/RAG-CHATBOT/internal/vector/milvus"
)

type fakeLLM struct {
	answer         string
	embedCalls     int
	answerCalls    int
	lastDocContext string
}

func (f *fakeLLM) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	f.embedCalls++
	return []float32{0.1, 0.2, 0.3}, nil
}

func (f *fakeLLM) GenerateAnswer(ctx context.Context, question, docContext string) (string, error) {
	f.answerCalls++
	f.lastDocContext = docContext
	return f.answer, nil
}

func (f *fakeLLM) Model() string {
	return "llama-3.1-8b-instant"
}

type fakeRetriever struct {
	results []milvus.SearchResult
}

func (f *fakeRetriever) Search(ctx context.Context, queryEmbedding []float32, topK int) ([]milvus.SearchResult, error) {
	return f.results, nil
}

func (f *fakeRetriever) Stats(ctx context.Context) (*milvus.CollectionInfo, error) {
	return &milvus.CollectionInfo{Name: "support_docs", RowCount: 42, VectorDim: 1536}, nil
}

type fakeCache struct {
	answers    map[string][]byte
	embeddings map[string][]float32
}

func newFakeCache() *fakeCache {
	return &fakeCache{
		answers:    make(map[string][]byte),
		embeddings: make(map[string][]float32),
	}
}

func (f *fakeCache) GetAnswer(ctx context.Context, queryHash string, result interface{}) (bool, error) {
	data, ok := f.answers[queryHash]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(data, result)
}

func (f *fakeCache) SetAnswer(ctx context.Context, queryHash string, result interface{}, ttl time.Duration) error {
	data, err := json.Marshal(result)
	if err != nil {
		return err
	}
	f.answers[queryHash] = data
	return nil
}

func (f *fakeCache) GetEmbedding(ctx context.Context, textHash string) ([]float32, bool, error) {
	embedding, ok := f.embeddings[textHash]
	return embedding, ok, nil
}

func (f *fakeCache) SetEmbedding(ctx context.Context, textHash string, embedding []float32, ttl time.Duration) error {
	f.embeddings[textHash] = embedding
	return nil
}

func sampleResults() []milvus.SearchResult {
	return []milvus.SearchResult{
		{ChunkID: "a_0", Text: "Refunds are processed within 5-7 business days.", Source: "Refund_Policy.pdf", Score: 0.92},
		{ChunkID: "a_1", Text: "Items must be returned within 30 days.", Source: "Refund_Policy.pdf", Score: 0.88},
		{ChunkID: "b_0", Text: "Standard shipping takes 5-7 days.", Source: "Shipping_Delivery.pdf", Score: 0.75},
	}
}

func TestChatAnswersWithCitations(t *testing.T) {
	model := &fakeLLM{answer: "Refunds take 5-7 business days per Refund_Policy.pdf."}
	p := NewPipeline(model, &fakeRetriever{results: sampleResults()}, nil, 3, 0)

	result, err := p.Chat(context.Background(), "What is your refund policy?")
	require.NoError(t, err)

	assert.Equal(t, "What is your refund policy?", result.Query)
	assert.Equal(t, model.answer, result.Answer)
	assert.Equal(t, []string{"Refund_Policy.pdf", "Shipping_Delivery.pdf"}, result.Citations)
	assert.False(t, result.IsComplaint)
	assert.False(t, result.ShouldCreateTicket)
	assert.Equal(t, "llama-3.1-8b-instant", result.ModelUsed)
	assert.Equal(t, 1, model.answerCalls)
}

func TestChatNoResults(t *testing.T) {
	model := &fakeLLM{answer: "unused"}
	p := NewPipeline(model, &fakeRetriever{}, nil, 3, 0)

	result, err := p.Chat(context.Background(), "Do you sell spaceships?")
	require.NoError(t, err)

	assert.Contains(t, result.Answer, "couldn't find any relevant information")
	assert.Empty(t, result.Citations)
	assert.False(t, result.ShouldCreateTicket)
	assert.Equal(t, 0, model.answerCalls, "LLM should not be called without context")
}

func TestChatFlagsComplaint(t *testing.T) {
	model := &fakeLLM{answer: "I'm sorry to hear that. Our shipping policy says..."}
	p := NewPipeline(model, &fakeRetriever{results: sampleResults()}, nil, 3, 0)

	result, err := p.Chat(context.Background(), "I'm frustrated! My order never arrived and no one is helping me!")
	require.NoError(t, err)

	assert.True(t, result.IsComplaint)
	assert.True(t, result.ShouldCreateTicket)
}

func TestChatContextFormat(t *testing.T) {
	model := &fakeLLM{answer: "ok"}
	p := NewPipeline(model, &fakeRetriever{results: sampleResults()}, nil, 3, 0)

	_, err := p.Chat(context.Background(), "What is your refund policy?")
	require.NoError(t, err)

	assert.Contains(t, model.lastDocContext, "[Document 1: Refund_Policy.pdf] (Relevance: 92%)")
	assert.Contains(t, model.lastDocContext, "Refunds are processed within 5-7 business days.")
	assert.Contains(t, model.lastDocContext, "\n\n---\n\n")
}

func TestChatUsesAnswerCache(t *testing.T) {
	model := &fakeLLM{answer: "first answer"}
	cache := newFakeCache()
	p := NewPipeline(model, &fakeRetriever{results: sampleResults()}, cache, 3, time.Minute)

	first, err := p.Chat(context.Background(), "What is your refund policy?")
	require.NoError(t, err)
	require.Equal(t, 1, model.answerCalls)

	second, err := p.Chat(context.Background(), "What is your refund policy?")
	require.NoError(t, err)

	assert.Equal(t, first.Answer, second.Answer)
	assert.Equal(t, 1, model.answerCalls, "second turn should be served from cache")
	assert.Equal(t, 1, model.embedCalls)
}

func TestChatDoesNotCacheComplaints(t *testing.T) {
	model := &fakeLLM{answer: "Sorry about that."}
	cache := newFakeCache()
	p := NewPipeline(model, &fakeRetriever{results: sampleResults()}, cache, 3, time.Minute)

	query := "This is unacceptable, my package is damaged"

	_, err := p.Chat(context.Background(), query)
	require.NoError(t, err)
	_, err = p.Chat(context.Background(), query)
	require.NoError(t, err)

	assert.Equal(t, 2, model.answerCalls, "complaints must bypass the answer cache")
}

func TestStatus(t *testing.T) {
	p := NewPipeline(&fakeLLM{}, &fakeRetriever{}, nil, 3, 0)

	status, err := p.Status(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "operational", status.Status)
	assert.Equal(t, "support_docs", status.Collection)
	assert.Equal(t, int64(42), status.DocumentsIndexed)
}

func TestCitationsDeduplicate(t *testing.T) {
	got := citations(sampleResults())
	assert.Equal(t, []string{"Refund_Policy.pdf", "Shipping_Delivery.pdf"}, got)
}
