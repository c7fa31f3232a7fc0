package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/Manav129/RAG-CHATBOT/internal/storage/tickets"
	"github.com/Manav129/RAG-CHATBOT/pkg/logger"
)

type TicketHandler struct {
	store *tickets.Store
}

type TicketCreateRequest struct {
	CustomerQuery string `json:"customer_query"`
	CustomerEmail string `json:"customer_email"`
	CustomerName  string `json:"customer_name"`
	Priority      string `json:"priority"`
	Category      string `json:"category"`
}

type TicketUpdateRequest struct {
	Status string `json:"status"`
	Notes  string `json:"notes"`
}

func NewTicketHandler(store *tickets.Store) *TicketHandler {
	return &TicketHandler{store: store}
}

func (h *TicketHandler) HandleCreate(c *fiber.Ctx) error {
	var req TicketCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.CustomerQuery == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "customer_query is required",
		})
	}

	ticket, err := h.store.Create(c.Context(), tickets.CreateParams{
		CustomerQuery: req.CustomerQuery,
		CustomerEmail: req.CustomerEmail,
		CustomerName:  req.CustomerName,
		Priority:      req.Priority,
		Category:      req.Category,
	})
	if err != nil {
		return h.errorResponse(c, err, "Failed to create ticket")
	}

	tickets.RecordCreated("api")

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"ticket":  ticket,
	})
}

func (h *TicketHandler) HandleList(c *fiber.Ctx) error {
	status := c.Query("status")
	limit := c.QueryInt("limit", 0)

	list, err := h.store.List(c.Context(), status, limit)
	if err != nil {
		return h.errorResponse(c, err, "Failed to list tickets")
	}

	return c.JSON(fiber.Map{
		"count":   len(list),
		"tickets": list,
	})
}

func (h *TicketHandler) HandleGet(c *fiber.Ctx) error {
	ticket, err := h.store.GetByTicketID(c.Context(), c.Params("id"))
	if err != nil {
		return h.errorResponse(c, err, "Failed to load ticket")
	}

	return c.JSON(ticket)
}

func (h *TicketHandler) HandleUpdate(c *fiber.Ctx) error {
	var req TicketUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.Status == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "status is required",
		})
	}

	ticket, err := h.store.UpdateStatus(c.Context(), c.Params("id"), req.Status, req.Notes)
	if err != nil {
		return h.errorResponse(c, err, "Failed to update ticket")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"ticket":  ticket,
	})
}

func (h *TicketHandler) HandleDelete(c *fiber.Ctx) error {
	ticketID := c.Params("id")

	if err := h.store.Delete(c.Context(), ticketID); err != nil {
		return h.errorResponse(c, err, "Failed to delete ticket")
	}

	return c.JSON(fiber.Map{
		"success":   true,
		"ticket_id": ticketID,
	})
}

func (h *TicketHandler) errorResponse(c *fiber.Ctx, err error, fallback string) error {
	switch {
	case errors.Is(err, tickets.ErrTicketNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Ticket not found",
		})
	case errors.Is(err, tickets.ErrInvalidStatus), errors.Is(err, tickets.ErrInvalidPriority):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	default:
		logger.Error(fallback, zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": fallback,
		})
	}
}
