package handlers

import (
	"context"
	"strings"

	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/Manav129/RAG-CHATBOT/internal/chat"
	"github.com/Manav129/RAG-CHATBOT/internal/storage/tickets"
	"github.com/Manav129/RAG-CHATBOT/pkg/logger"
)

// WebSocketHandler streams chat answers word by word over a socket so
// the frontend can render them as they arrive.
type WebSocketHandler struct {
	pipeline *chat.Pipeline
	tickets  *tickets.Store
}

func NewWebSocketHandler(pipeline *chat.Pipeline, ticketStore *tickets.Store) *WebSocketHandler {
	return &WebSocketHandler{
		pipeline: pipeline,
		tickets:  ticketStore,
	}
}

func (h *WebSocketHandler) HandleConnection(c *websocket.Conn) {
	logger.Info("WebSocket connection established")

	defer func() {
		c.Close()
		logger.Info("WebSocket connection closed")
	}()

	for {
		var msg struct {
			Type          string `json:"type"`
			Query         string `json:"query"`
			CustomerEmail string `json:"customer_email"`
			CustomerName  string `json:"customer_name"`
		}

		if err := c.ReadJSON(&msg); err != nil {
			logger.Debug("WebSocket read failed", zap.Error(err))
			break
		}

		if msg.Type != "chat" || msg.Query == "" {
			continue
		}

		req := ChatRequest{
			Query:         msg.Query,
			CustomerEmail: msg.CustomerEmail,
			CustomerName:  msg.CustomerName,
		}

		if err := h.streamAnswer(c, req); err != nil {
			logger.Error("Failed to stream chat answer", zap.Error(err))
			h.sendError(c, "Failed to process query")
		}
	}
}

func (h *WebSocketHandler) streamAnswer(c *websocket.Conn, req ChatRequest) error {
	ctx := context.Background()

	if err := h.send(c, "status", "Searching documentation..."); err != nil {
		return err
	}

	result, err := h.pipeline.Chat(ctx, req.Query)
	if err != nil {
		return err
	}

	words := strings.Fields(result.Answer)
	for i, word := range words {
		chunk := word
		if i < len(words)-1 {
			chunk += " "
		}
		if err := h.send(c, "chunk", chunk); err != nil {
			return err
		}
	}

	var ticketID string
	ticketCreated := false
	if result.ShouldCreateTicket && h.tickets != nil {
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
		} else {
			tickets.RecordCreated("chat")
			ticketID = ticket.TicketID
			ticketCreated = true
		}
	}

	return c.WriteJSON(map[string]interface{}{
		"type":           "complete",
		"citations":      result.Citations,
		"is_complaint":   result.IsComplaint,
		"ticket_id":      ticketID,
		"ticket_created": ticketCreated,
	})
}

func (h *WebSocketHandler) send(c *websocket.Conn, msgType, content string) error {
	return c.WriteJSON(map[string]interface{}{
		"type":    msgType,
		"content": content,
	})
}

func (h *WebSocketHandler) sendError(c *websocket.Conn, errorMsg string) {
	c.WriteJSON(map[string]interface{}{
		"type":  "error",
		"error": errorMsg,
	})
}
