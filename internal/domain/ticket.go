package domain

import (
	"strconv"
	"strings"
	"time"
)

// ProtocolPrefix starts every human-facing ticket protocol id.
const ProtocolPrefix = "REQ-"

// ParseProtocolNumber extracts n from a REQ-n protocol id.
func ParseProtocolNumber(protocolID string) (int64, bool) {
	rest, ok := strings.CutPrefix(strings.ToUpper(strings.TrimSpace(protocolID)), ProtocolPrefix)
	if !ok {
		return 0, false
	}
	n, err := strconv.ParseInt(rest, 10, 64)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// TicketStatus enumerates lifecycle states for tickets in the agent queue.
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "OPEN"
	TicketStatusInProgress TicketStatus = "IN_PROGRESS"
	TicketStatusResolved   TicketStatus = "RESOLVED"
)

// ParseStatus maps user input such as "open" or "in-progress" onto a status.
func ParseStatus(raw string) (TicketStatus, bool) {
	normalized := strings.NewReplacer("-", "_", " ", "_").Replace(strings.ToUpper(strings.TrimSpace(raw)))
	switch s := TicketStatus(normalized); s {
	case TicketStatusOpen, TicketStatusInProgress, TicketStatusResolved:
		return s, true
	default:
		return "", false
	}
}

// TicketPriority enumerates urgency.
type TicketPriority string

const (
	TicketPriorityLow    TicketPriority = "LOW"
	TicketPriorityMedium TicketPriority = "MEDIUM"
	TicketPriorityHigh   TicketPriority = "HIGH"
	TicketPriorityUrgent TicketPriority = "URGENT"
)

// TicketCategory is the affected area picked during formal intake.
type TicketCategory string

const (
	CategoryHardware TicketCategory = "hardware"
	CategorySoftware TicketCategory = "software"
	CategoryAccess   TicketCategory = "access"
	CategoryNetwork  TicketCategory = "network"
)

// Categories lists the accepted categories in display order.
var Categories = []TicketCategory{CategoryHardware, CategorySoftware, CategoryAccess, CategoryNetwork}

var categoryAliases = map[string]TicketCategory{
	"hardware": CategoryHardware,
	"software": CategorySoftware,
	"access":   CategoryAccess,
	"acesso":   CategoryAccess,
	"network":  CategoryNetwork,
	"rede":     CategoryNetwork,
}

// ParseCategory maps user input onto the fixed category set.
func ParseCategory(raw string) (TicketCategory, bool) {
	category, ok := categoryAliases[strings.ToLower(strings.TrimSpace(raw))]
	return category, ok
}

// ParsePriority maps user input onto a priority.
func ParsePriority(raw string) (TicketPriority, bool) {
	switch p := TicketPriority(strings.ToUpper(strings.TrimSpace(raw))); p {
	case TicketPriorityLow, TicketPriorityMedium, TicketPriorityHigh, TicketPriorityUrgent:
		return p, true
	default:
		return "", false
	}
}

// TicketType separates something broken from a request for something new.
type TicketType string

const (
	TicketTypeIncident TicketType = "INCIDENT"
	TicketTypeRequest  TicketType = "REQUEST"
)

var typeAliases = map[string]TicketType{
	"incident":    TicketTypeIncident,
	"incidente":   TicketTypeIncident,
	"request":     TicketTypeRequest,
	"requisicao":  TicketTypeRequest,
	"requisição":  TicketTypeRequest,
	"solicitacao": TicketTypeRequest,
	"solicitação": TicketTypeRequest,
}

// ParseTicketType maps user input onto a ticket type.
func ParseTicketType(raw string) (TicketType, bool) {
	t, ok := typeAliases[strings.ToLower(strings.TrimSpace(raw))]
	return t, ok
}

// IntakeReason records why a session reached formal intake.
type IntakeReason string

const (
	IntakeEscalated      IntakeReason = "ESCALATED"
	IntakeRejected       IntakeReason = "REJECTED"
	IntakeGatewayFailure IntakeReason = "GATEWAY_FAILURE"
	IntakeManual         IntakeReason = "MANUAL"
)

// Ticket is the record created by the formal intake fallback.
type Ticket struct {
	ID          string
	ProtocolID  string
	SessionID   string
	Type        TicketType
	Title       string
	Description string
	Category    TicketCategory
	Priority    TicketPriority
	Status      TicketStatus
	Origin      IntakeReason
	CreatedAt   time.Time
	UpdatedAt   time.Time
	ResolvedAt  *time.Time
}

// TicketSubmission is what the triage workflow hands to the submission sink.
type TicketSubmission struct {
	SessionID          string
	Type               TicketType
	Title              string
	Description        string
	Category           TicketCategory
	Priority           TicketPriority
	Origin             IntakeReason
	RejectedSuggestion string
}

// TicketReceipt confirms an accepted submission.
type TicketReceipt struct {
	TicketID   string
	ProtocolID string
	CreatedAt  time.Time
}

// TicketStats summarizes the agent queue.
type TicketStats struct {
	Open       int
	InProgress int
	Resolved   int
	Urgent     int
}
