package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/Manav129/RAG-CHATBOT/internal/chat"
	"github.com/Manav129/RAG-CHATBOT/internal/storage/tickets"
	"github.com/Manav129/RAG-CHATBOT/pkg/logger"
)

type SystemHandler struct {
	pipeline *chat.Pipeline
	tickets  *tickets.Store
}

func NewSystemHandler(pipeline *chat.Pipeline, ticketStore *tickets.Store) *SystemHandler {
	return &SystemHandler{
		pipeline: pipeline,
		tickets:  ticketStore,
	}
}

func (h *SystemHandler) HandleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"service":   "customer-support-agent",
	})
}

// HandleStats combines vector collection health with per-status ticket
// counts. Either half degrades independently if its backend is down.
func (h *SystemHandler) HandleStats(c *fiber.Ctx) error {
	response := fiber.Map{
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}

	status, err := h.pipeline.Status(c.Context())
	if err != nil {
		logger.Warn("Failed to read RAG system status", zap.Error(err))
		response["rag_system"] = fiber.Map{"status": "unavailable"}
	} else {
		response["rag_system"] = status
	}

	stats, err := h.tickets.CountStats(c.Context())
	if err != nil {
		logger.Warn("Failed to read ticket stats", zap.Error(err))
		response["tickets"] = fiber.Map{"status": "unavailable"}
	} else {
		response["tickets"] = stats
	}

	return c.JSON(response)
}
