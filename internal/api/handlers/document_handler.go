package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/Manav129/RAG-CHATBOT/internal/cache/redis"
	"github.com/Manav129/RAG-CHATBOT/internal/ingestion"
	"github.com/Manav129/RAG-CHATBOT/pkg/logger"
)

type DocumentHandler struct {
	processor *ingestion.Processor
	cache     *redis.Client
}

type IngestRequest struct {
	Reset bool `json:"reset"`
}

func NewDocumentHandler(processor *ingestion.Processor, cache *redis.Client) *DocumentHandler {
	return &DocumentHandler{
		processor: processor,
		cache:     cache,
	}
}

// HandleIngest indexes every document in the docs directory. The request
// body is optional; an empty body means reset=false.
func (h *DocumentHandler) HandleIngest(c *fiber.Ctx) error {
	var req IngestRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid request body",
			})
		}
	}

	result, err := h.processor.Ingest(c.Context(), req.Reset)
	if err != nil {
		logger.Error("Document ingestion failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to ingest documents",
		})
	}

	// Cached answers may cite documents that just changed.
	if h.cache != nil {
		if err := h.cache.InvalidateAnswers(c.Context()); err != nil {
			logger.Warn("Failed to invalidate answer cache after ingest", zap.Error(err))
		}
	}

	return c.JSON(result)
}
