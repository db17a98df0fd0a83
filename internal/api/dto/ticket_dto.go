package dto

import (
	"time"

	"github.com/spec-kit/supportbox/internal/domain"
)

// TicketSummary response.
type TicketSummary struct {
	ID         string                `json:"id"`
	ProtocolID string                `json:"protocol_id"`
	Type       domain.TicketType     `json:"type"`
	Title      string                `json:"title"`
	Category   domain.TicketCategory `json:"category"`
	Priority   domain.TicketPriority `json:"priority"`
	Status     domain.TicketStatus   `json:"status"`
	StatusText string                `json:"status_label"`
	Origin     domain.IntakeReason   `json:"origin"`
	CreatedAt  time.Time             `json:"created_at"`
	UpdatedAt  time.Time             `json:"updated_at"`
}

// TicketDetailResponse provides full ticket info.
type TicketDetailResponse struct {
	TicketSummary
	Description string                  `json:"description"`
	ResolvedAt  *time.Time              `json:"resolved_at"`
	Comments    []TicketCommentResponse `json:"comments"`
}

// TicketCommentResponse represents one thread entry.
type TicketCommentResponse struct {
	ID         string                   `json:"id"`
	AuthorType domain.CommentAuthorType `json:"author_type"`
	Body       string                   `json:"body"`
	CreatedAt  time.Time                `json:"created_at"`
}

// CreateCommentRequest payload.
type CreateCommentRequest struct {
	Body string `json:"body"`
}

// TicketStatsResponse feeds the agent panel counters.
type TicketStatsResponse struct {
	Open       int `json:"open"`
	InProgress int `json:"in_progress"`
	Resolved   int `json:"resolved"`
	Urgent     int `json:"urgent"`
}
