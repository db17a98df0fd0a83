package dto

import (
	"time"

	"github.com/spec-kit/supportbox/internal/domain"
)

// SubmitProblemRequest payload.
type SubmitProblemRequest struct {
	ProblemDescription string `json:"problem_description"`
}

// SubmitTicketRequest payload. Type, title and priority are optional.
type SubmitTicketRequest struct {
	Type        string `json:"type"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Priority    string `json:"priority"`
}

// SessionResponse is the wizard state rendered by the client.
type SessionResponse struct {
	ID                 string                `json:"id"`
	Version            uint64                `json:"version"`
	Step               string                `json:"step"`
	Busy               bool                  `json:"busy"`
	ProblemDescription string                `json:"problem_description"`
	AISuggestion       string                `json:"ai_suggestion,omitempty"`
	TicketType         domain.TicketType     `json:"type,omitempty"`
	Title              string                `json:"title,omitempty"`
	Category           domain.TicketCategory `json:"category,omitempty"`
	Priority           domain.TicketPriority `json:"priority,omitempty"`
	Escalated          bool                  `json:"escalated"`
	IntakeReason       domain.IntakeReason   `json:"intake_reason,omitempty"`
	RejectedSuggestion string                `json:"rejected_suggestion,omitempty"`
	Notice             string                `json:"notice,omitempty"`
	ProtocolID         string                `json:"protocol_id,omitempty"`
	Resolution         string                `json:"resolution,omitempty"`
	Categories         []CategoryOption      `json:"categories,omitempty"`
	CreatedAt          time.Time             `json:"created_at"`
	UpdatedAt          time.Time             `json:"updated_at"`
}

// CategoryOption is one entry of the intake form's category select.
type CategoryOption struct {
	Value domain.TicketCategory `json:"value"`
	Label string                `json:"label"`
}

// SessionCreatedResponse carries the new session and its token.
type SessionCreatedResponse struct {
	Token     string          `json:"token"`
	ExpiresAt time.Time       `json:"expires_at"`
	Session   SessionResponse `json:"session"`
}
