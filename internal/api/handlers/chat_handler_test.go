package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/Manav129/RAG-CHATBOT/internal/chat"
	"github.com/Manav129/RAG-CHATBOT/internal/storage/tickets"
	"github.com/Manav129/RAG-CHATBOT/internal/vector/milvus"
)

type stubLLM struct {
	answer string
}

func (s *stubLLM) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	return []float32{0.1, 0.2, 0.3}, nil
}

func (s *stubLLM) GenerateAnswer(ctx context.Context, question, docContext string) (string, error) {
	return s.answer, nil
}

func (s *stubLLM) Model() string {
	return "llama-3.1-8b-instant"
}

type stubRetriever struct{}

func (s *stubRetriever) Search(ctx context.Context, queryEmbedding []float32, topK int) ([]milvus.SearchResult, error) {
	return []milvus.SearchResult{
		{ChunkID: "a_0", Text: "Refunds are processed within 5-7 business days.", Source: "Refund_Policy.pdf", Score: 0.9},
	}, nil
}

func (s *stubRetriever) Stats(ctx context.Context) (*milvus.CollectionInfo, error) {
	return &milvus.CollectionInfo{Name: "support_docs", RowCount: 1, VectorDim: 3}, nil
}

type chatResponseBody struct {
	Query         string   `json:"query"`
	Answer        string   `json:"answer"`
	Citations     []string `json:"citations"`
	IsComplaint   bool     `json:"is_complaint"`
	TicketID      string   `json:"ticket_id"`
	TicketCreated bool     `json:"ticket_created"`
}

func newChatTestApp(t *testing.T, answer string) (*fiber.App, *tickets.Store, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	store, err := tickets.NewStore(db)
	require.NoError(t, err)

	pipeline := chat.NewPipeline(&stubLLM{answer: answer}, &stubRetriever{}, nil, 3, 0)

	app := fiber.New()
	app.Post("/chat", NewChatHandler(pipeline, store).HandleChat)

	return app, store, db
}

func postChat(t *testing.T, app *fiber.App, body string) (int, chatResponseBody) {
	t.Helper()

	req := httptest.NewRequest("POST", "/chat", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var parsed chatResponseBody
	require.NoError(t, json.Unmarshal(raw, &parsed))

	return resp.StatusCode, parsed
}

func TestChatComplaintCreatesHighPriorityTicket(t *testing.T) {
	answer := "I'm sorry to hear that. Per Refund_Policy.pdf a replacement ships within 5-7 days."
	app, store, _ := newChatTestApp(t, answer)

	query := "I'm frustrated! My order never arrived and no one is helping me!"
	status, body := postChat(t, app, `{"query":"`+query+`","customer_email":"jo@example.com","customer_name":"Jo"}`)

	require.Equal(t, fiber.StatusOK, status)
	assert.True(t, body.IsComplaint)
	assert.True(t, body.TicketCreated)
	require.NotEmpty(t, body.TicketID)

	ticket, err := store.GetByTicketID(context.Background(), body.TicketID)
	require.NoError(t, err)
	assert.Equal(t, tickets.PriorityHigh, ticket.Priority)
	assert.Equal(t, "complaint", ticket.Category)
	assert.Equal(t, query, ticket.CustomerQuery)
	assert.Equal(t, answer, ticket.AIResponse)
	assert.Equal(t, "jo@example.com", ticket.CustomerEmail)
	assert.Equal(t, tickets.StatusOpen, ticket.Status)
}

func TestChatQuestionDoesNotCreateTicket(t *testing.T) {
	app, store, _ := newChatTestApp(t, "Refunds take 5-7 business days.")

	status, body := postChat(t, app, `{"query":"What is your refund policy?"}`)

	require.Equal(t, fiber.StatusOK, status)
	assert.False(t, body.IsComplaint)
	assert.False(t, body.TicketCreated)
	assert.Empty(t, body.TicketID)

	list, err := store.List(context.Background(), "", 0)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestChatAnswersEvenWhenTicketStoreFails(t *testing.T) {
	answer := "I'm sorry about the damage. Returns are covered in Refund_Policy.pdf."
	app, _, db := newChatTestApp(t, answer)

	// Closing the underlying connection makes every ticket insert fail.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	status, body := postChat(t, app, `{"query":"This is unacceptable, my package arrived damaged"}`)

	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, answer, body.Answer)
	assert.True(t, body.IsComplaint)
	assert.False(t, body.TicketCreated)
	assert.Empty(t, body.TicketID)
}

func TestChatRequiresQuery(t *testing.T) {
	app, _, _ := newChatTestApp(t, "unused")

	status, _ := postChat(t, app, `{}`)
	assert.Equal(t, fiber.StatusBadRequest, status)
}
