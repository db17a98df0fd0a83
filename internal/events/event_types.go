package events

import (
	"time"

	"github.com/spec-kit/supportbox/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated       EventType = "ticket_created"
	EventTicketStatusChanged EventType = "ticket_status_changed"
	EventTicketCommentAdded  EventType = "ticket_comment_added"
	EventTriageDeflected     EventType = "triage_deflected"
	EventTriageEscalated     EventType = "triage_escalated"
	EventTriageGatewayFailed EventType = "triage_gateway_failed"
)

// ActorType identifies who caused an event.
type ActorType string

const (
	ActorRequester ActorType = "REQUESTER"
	ActorAgent     ActorType = "AGENT"
	ActorSystem    ActorType = "SYSTEM"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  string      `json:"ticket_id,omitempty"`
	SessionID string      `json:"session_id,omitempty"`
	Actor     ActorType   `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	ProtocolID string                `json:"protocol_id"`
	Type       domain.TicketType     `json:"type"`
	Category   domain.TicketCategory `json:"category"`
	Priority   domain.TicketPriority `json:"priority"`
	Origin     domain.IntakeReason   `json:"origin"`
	Title      string                `json:"title"`
}

// TicketStatusChangedPayload payload.
type TicketStatusChangedPayload struct {
	ProtocolID string              `json:"protocol_id"`
	OldStatus  domain.TicketStatus `json:"old_status"`
	NewStatus  domain.TicketStatus `json:"new_status"`
}

// TicketCommentAddedPayload payload.
type TicketCommentAddedPayload struct {
	ProtocolID  string                   `json:"protocol_id"`
	CommentID   string                   `json:"comment_id"`
	AuthorType  domain.CommentAuthorType `json:"author_type"`
	BodyPreview string                   `json:"body_preview"`
}

// TriageOutcomePayload describes how a triage attempt ended.
type TriageOutcomePayload struct {
	ProblemFingerprint string `json:"problem_fingerprint"`
	Reason             string `json:"reason,omitempty"`
}
