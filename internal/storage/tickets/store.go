package tickets

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Manav129/RAG-CHATBOT/internal/metrics"
	"github.com/Manav129/RAG-CHATBOT/pkg/logger"
)

var (
	ErrTicketNotFound  = errors.New("ticket not found")
	ErrInvalidStatus   = errors.New("invalid ticket status")
	ErrInvalidPriority = errors.New("invalid ticket priority")
)

const defaultListLimit = 50

// Store persists tickets through GORM. It works against MySQL in
// production and the SQLite driver in tests.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) (*Store, error) {
	if err := db.AutoMigrate(&Ticket{}); err != nil {
		return nil, fmt.Errorf("failed to migrate tickets table: %w", err)
	}
	return &Store{db: db}, nil
}

// CreateParams carries the caller-supplied fields for a new ticket.
// Status is always "open" on creation; Priority defaults to medium.
type CreateParams struct {
	CustomerEmail string
	CustomerName  string
	CustomerQuery string
	AIResponse    string
	Priority      string
	Category      string
}

// Create inserts a new ticket and assigns it the next sequential
// TKT-xxxxx identifier. The identifier is derived from the last primary
// key inside the same transaction as the insert.
func (s *Store) Create(ctx context.Context, params CreateParams) (*Ticket, error) {
	priority := PriorityMedium
	if params.Priority != "" {
		p, ok := ValidPriority(params.Priority)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrInvalidPriority, params.Priority)
		}
		priority = p
	}

	ticket := &Ticket{
		CustomerEmail: params.CustomerEmail,
		CustomerName:  params.CustomerName,
		CustomerQuery: params.CustomerQuery,
		AIResponse:    params.AIResponse,
		Status:        StatusOpen,
		Priority:      priority,
		Category:      params.Category,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var last Ticket
		err := tx.Order("id DESC").First(&last).Error
		switch {
		case err == nil:
			ticket.TicketID = formatTicketID(last.ID + 1)
		case errors.Is(err, gorm.ErrRecordNotFound):
			ticket.TicketID = formatTicketID(1)
		default:
			return fmt.Errorf("failed to read last ticket: %w", err)
		}
		return tx.Create(ticket).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create ticket: %w", err)
	}

	logger.Info("Ticket created",
		zap.String("ticket_id", ticket.TicketID),
		zap.String("priority", string(ticket.Priority)),
		zap.String("category", ticket.Category),
	)

	return ticket, nil
}

// GetByTicketID looks up a ticket by its TKT-xxxxx identifier.
func (s *Store) GetByTicketID(ctx context.Context, ticketID string) (*Ticket, error) {
	var ticket Ticket
	err := s.db.WithContext(ctx).Where("ticket_id = ?", ticketID).First(&ticket).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrTicketNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load ticket %s: %w", ticketID, err)
	}
	return &ticket, nil
}

// UpdateStatus transitions a ticket to the given status and optionally
// appends resolution notes.
func (s *Store) UpdateStatus(ctx context.Context, ticketID, status, notes string) (*Ticket, error) {
	newStatus, ok := ValidStatus(status)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	ticket, err := s.GetByTicketID(ctx, ticketID)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{
		"status":     newStatus,
		"updated_at": time.Now(),
	}
	if notes != "" {
		updates["notes"] = notes
	}

	if err := s.db.WithContext(ctx).Model(ticket).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update ticket %s: %w", ticketID, err)
	}

	logger.Info("Ticket status updated",
		zap.String("ticket_id", ticketID),
		zap.String("status", string(newStatus)),
	)

	return s.GetByTicketID(ctx, ticketID)
}

// List returns tickets newest first, optionally filtered by status.
// limit <= 0 falls back to the default page size.
func (s *Store) List(ctx context.Context, status string, limit int) ([]Ticket, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}

	query := s.db.WithContext(ctx).Order("created_at DESC").Limit(limit)
	if status != "" {
		st, ok := ValidStatus(status)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
		}
		query = query.Where("status = ?", st)
	}

	var out []Ticket
	if err := query.Find(&out).Error; err != nil {
		return nil, fmt.Errorf("failed to list tickets: %w", err)
	}
	return out, nil
}

// Delete removes a ticket by its TKT-xxxxx identifier.
func (s *Store) Delete(ctx context.Context, ticketID string) error {
	result := s.db.WithContext(ctx).Where("ticket_id = ?", ticketID).Delete(&Ticket{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete ticket %s: %w", ticketID, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrTicketNotFound
	}

	logger.Info("Ticket deleted", zap.String("ticket_id", ticketID))
	return nil
}

// DeleteWhereStatus removes every ticket in the given status and returns
// the number removed. Used by the maintenance CLI to prune closed tickets.
func (s *Store) DeleteWhereStatus(ctx context.Context, status string) (int64, error) {
	st, ok := ValidStatus(status)
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	result := s.db.WithContext(ctx).Where("status = ?", st).Delete(&Ticket{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to prune %s tickets: %w", status, result.Error)
	}
	return result.RowsAffected, nil
}

// CountStats aggregates per-status counts for the stats endpoint.
func (s *Store) CountStats(ctx context.Context) (*Stats, error) {
	stats := &Stats{}

	if err := s.db.WithContext(ctx).Model(&Ticket{}).Count(&stats.Total).Error; err != nil {
		return nil, fmt.Errorf("failed to count tickets: %w", err)
	}

	counts := map[Status]*int64{
		StatusOpen:       &stats.Open,
		StatusInProgress: &stats.InProgress,
		StatusResolved:   &stats.Resolved,
		StatusClosed:     &stats.Closed,
	}
	for status, dest := range counts {
		err := s.db.WithContext(ctx).Model(&Ticket{}).Where("status = ?", status).Count(dest).Error
		if err != nil {
			return nil, fmt.Errorf("failed to count %s tickets: %w", status, err)
		}
	}

	return stats, nil
}

// RecordCreated bumps the tickets-created metric with its origin
// ("chat" for complaint auto-creation, "api" for manual creation).
func RecordCreated(source string) {
	metrics.TicketsCreated.WithLabelValues(source).Inc()
}

func formatTicketID(n uint) string {
	return fmt.Sprintf("TKT-%05d", n)
}
