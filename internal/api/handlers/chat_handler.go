package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/Manav129/RAG-CHATBOT/internal/chat"
	"github.com/Manav129/RAG-CHATBOT/internal/storage/tickets"
	"github.com/Manav129/RAG-CHATBOT/pkg/logger"
)

type ChatHandler struct {
	pipeline *chat.Pipeline
	tickets  *tickets.Store
}

type ChatRequest struct {
	Query         string `json:"query"`
	CustomerEmail string `json:"customer_email"`
	CustomerName  string `json:"customer_name"`
}

func NewChatHandler(pipeline *chat.Pipeline, ticketStore *tickets.Store) *ChatHandler {
	return &ChatHandler{
		pipeline: pipeline,
		tickets:  ticketStore,
	}
}

// HandleChat answers a customer question. Complaints additionally open a
// high-priority ticket carrying the question and the generated answer.
func (h *ChatHandler) HandleChat(c *fiber.Ctx) error {
	var req ChatRequest
	if err := c.BodyParser(&req); err != nil {
		logger.Error("Failed to parse chat request", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.Query == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "query is required",
		})
	}

	result, err := h.pipeline.Chat(c.Context(), req.Query)
	if err != nil {
		logger.Error("Chat pipeline failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to process query",
		})
	}

	ticketID, ticketCreated := h.maybeCreateTicket(c.Context(), req, result)

	return c.JSON(fiber.Map{
		"query":          result.Query,
		"answer":         result.Answer,
		"citations":      result.Citations,
		"is_complaint":   result.IsComplaint,
		"ticket_id":      ticketID,
		"ticket_created": ticketCreated,
	})
}

// maybeCreateTicket opens a complaint ticket when the pipeline asks for
// one. Ticket failures do not fail the chat response; the customer still
// gets their answer.
func (h *ChatHandler) maybeCreateTicket(ctx context.Context, req ChatRequest, result *chat.Result) (string, bool) {
	if !result.ShouldCreateTicket || h.tickets == nil {
		return "", false
	}

	ticket, err := h.tickets.Create(ctx, tickets.CreateParams{
		CustomerEmail: req.CustomerEmail,
		CustomerName:  req.CustomerName,
		CustomerQuery: req.Query,
		AIResponse:    result.Answer,
		Priority:      string(tickets.PriorityHigh),
		Category:      "complaint",
	})
	if err != nil {
		logger.Error("Failed to create complaint ticket", zap.Error(err))
		return "", false
	}

	tickets.RecordCreated("chat")
	return ticket.TicketID, true
}
