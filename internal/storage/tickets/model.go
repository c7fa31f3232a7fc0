package tickets

import "time"

type Status string

const (
	StatusOpen       Status = "open"
	StatusInProgress Status = "in_progress"
	StatusResolved   Status = "resolved"
	StatusClosed     Status = "closed"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// Ticket is one support case. TicketID is the human-readable identifier
// (TKT-00001) handed to customers; ID is the database key it derives from.
type Ticket struct {
	ID            uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	TicketID      string    `gorm:"size:20;uniqueIndex;not null" json:"ticket_id"`
	CustomerEmail string    `gorm:"size:255" json:"customer_email"`
	CustomerName  string    `gorm:"size:255" json:"customer_name"`
	CustomerQuery string    `gorm:"type:text;not null" json:"customer_query"`
	AIResponse    string    `gorm:"type:text" json:"ai_response"`
	Status        Status    `gorm:"size:20;not null;default:'open'" json:"status"`
	Priority      Priority  `gorm:"size:20;not null;default:'medium'" json:"priority"`
	Category      string    `gorm:"size:100" json:"category"`
	Notes         string    `gorm:"type:text" json:"notes"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (Ticket) TableName() string {
	return "tickets"
}

// Stats holds per-status ticket counts for the /stats endpoint.
type Stats struct {
	Total      int64 `json:"total"`
	Open       int64 `json:"open"`
	InProgress int64 `json:"in_progress"`
	Resolved   int64 `json:"resolved"`
	Closed     int64 `json:"closed"`
}

func ValidStatus(s string) (Status, bool) {
	switch Status(s) {
	case StatusOpen, StatusInProgress, StatusResolved, StatusClosed:
		return Status(s), true
	}
	return "", false
}

func ValidPriority(p string) (Priority, bool) {
	switch Priority(p) {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return Priority(p), true
	}
	return "", false
}
