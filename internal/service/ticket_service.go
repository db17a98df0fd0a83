package service

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/supportbox/internal/domain"
	"github.com/spec-kit/supportbox/internal/events"
	"github.com/spec-kit/supportbox/internal/observability"
	"github.com/spec-kit/supportbox/internal/repository"
	apperrors "github.com/spec-kit/supportbox/pkg/util"
)

const (
	titlePreviewLen   = 80
	commentPreviewLen = 120
	maxCommentLen     = 4000
)

// TicketService registers tickets from formal intake and serves the agent queue.
type TicketService struct {
	tickets    repository.TicketRepository
	comments   repository.TicketCommentRepository
	protocols  ProtocolGenerator
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger
	now        func() time.Time
}

// TicketDependencies bundles collaborators for ticket service.
type TicketDependencies struct {
	TicketRepo  repository.TicketRepository
	CommentRepo repository.TicketCommentRepository
	Protocols   ProtocolGenerator
	Dispatcher  events.Dispatcher
	Metrics     *observability.Metrics
	Logger      *zap.Logger
}

// TicketListFilter describes agent queue filters.
type TicketListFilter struct {
	Statuses   []domain.TicketStatus
	Types      []domain.TicketType
	Priorities []domain.TicketPriority
	Categories []domain.TicketCategory
	Search     string
	Limit      int
	Offset     int
}

// TicketDetail is a ticket with its comment thread.
type TicketDetail struct {
	Ticket   domain.Ticket
	Comments []domain.TicketComment
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	protocols := deps.Protocols
	if protocols == nil {
		protocols = NewCounterProtocolGenerator()
	}
	return &TicketService{
		tickets:    deps.TicketRepo,
		comments:   deps.CommentRepo,
		protocols:  protocols,
		dispatcher: deps.Dispatcher,
		metrics:    deps.Metrics,
		logger:     logger,
		now:        time.Now,
	}
}

// Submit registers a ticket produced by the triage workflow.
func (s *TicketService) Submit(ctx context.Context, sub domain.TicketSubmission) (domain.TicketReceipt, error) {
	description := strings.TrimSpace(sub.Description)
	if description == "" {
		return domain.TicketReceipt{}, apperrors.NewValidationError("description is required", map[string]any{"field": "description"})
	}
	category, ok := domain.ParseCategory(string(sub.Category))
	if !ok {
		return domain.TicketReceipt{}, apperrors.NewValidationError("category is invalid", map[string]any{"field": "category"})
	}
	ticketType := domain.TicketTypeIncident
	if sub.Type != "" {
		parsed, ok := domain.ParseTicketType(string(sub.Type))
		if !ok {
			return domain.TicketReceipt{}, apperrors.NewValidationError("type is invalid", map[string]any{"field": "type"})
		}
		ticketType = parsed
	}
	title := strings.TrimSpace(sub.Title)
	if title == "" {
		title = firstLine(description)
	}
	priority := sub.Priority
	if priority == "" {
		priority = domain.TicketPriorityMedium
	}
	origin := sub.Origin
	if origin == "" {
		origin = domain.IntakeManual
	}

	protocolID, err := s.protocols.Next(ctx)
	if err != nil {
		return domain.TicketReceipt{}, err
	}

	now := s.now().UTC()
	ticket := &domain.Ticket{
		ID:          uuid.NewString(),
		ProtocolID:  protocolID,
		SessionID:   sub.SessionID,
		Type:        ticketType,
		Title:       stringPreview(title, titlePreviewLen),
		Description: description,
		Category:    category,
		Priority:    priority,
		Status:      domain.TicketStatusOpen,
		Origin:      origin,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return domain.TicketReceipt{}, err
	}

	if suggestion := strings.TrimSpace(sub.RejectedSuggestion); suggestion != "" {
		note := &domain.TicketComment{
			ID:         uuid.NewString(),
			TicketID:   ticket.ID,
			AuthorType: domain.AuthorTypeSystem,
			Body:       "Sugestão automática recusada pelo solicitante:\n" + suggestion,
			CreatedAt:  now,
		}
		if err := s.comments.Create(ctx, note); err != nil {
			s.logger.Warn("store rejected suggestion failed", zap.String("protocol_id", protocolID), zap.Error(err))
		}
	}

	s.metrics.RecordTicketCreated(string(ticket.Category))
	s.publishEvent(ctx, events.Event{
		Type:      events.EventTicketCreated,
		TicketID:  ticket.ID,
		SessionID: ticket.SessionID,
		Actor:     events.ActorRequester,
		Payload: events.TicketCreatedPayload{
			ProtocolID: ticket.ProtocolID,
			Type:       ticket.Type,
			Category:   ticket.Category,
			Priority:   ticket.Priority,
			Origin:     ticket.Origin,
			Title:      ticket.Title,
		},
	})
	return domain.TicketReceipt{TicketID: ticket.ID, ProtocolID: ticket.ProtocolID, CreatedAt: ticket.CreatedAt}, nil
}

// ListTickets returns the agent queue, newest first.
func (s *TicketService) ListTickets(ctx context.Context, filter TicketListFilter) ([]domain.Ticket, error) {
	return s.tickets.ListWithFilter(ctx, repository.TicketFilter{
		Statuses:   filter.Statuses,
		Types:      filter.Types,
		Priorities: filter.Priorities,
		Categories: filter.Categories,
		Search:     filter.Search,
		Limit:      filter.Limit,
		Offset:     filter.Offset,
	})
}

// GetTicket loads a ticket and its comments by protocol id.
func (s *TicketService) GetTicket(ctx context.Context, protocolID string) (*TicketDetail, error) {
	ticket, err := s.getByProtocol(ctx, protocolID)
	if err != nil {
		return nil, err
	}
	comments, err := s.comments.ListByTicket(ctx, ticket.ID)
	if err != nil {
		return nil, err
	}
	return &TicketDetail{Ticket: *ticket, Comments: comments}, nil
}

// StartTicket moves an open ticket into progress.
func (s *TicketService) StartTicket(ctx context.Context, protocolID string) (*domain.Ticket, error) {
	return s.changeStatus(ctx, protocolID, actionStart)
}

// ResolveTicket marks a ticket as done.
func (s *TicketService) ResolveTicket(ctx context.Context, protocolID string) (*domain.Ticket, error) {
	return s.changeStatus(ctx, protocolID, actionResolve)
}

// ReopenTicket puts a resolved ticket back in progress.
func (s *TicketService) ReopenTicket(ctx context.Context, protocolID string) (*domain.Ticket, error) {
	return s.changeStatus(ctx, protocolID, actionReopen)
}

// AddComment appends to the ticket thread.
func (s *TicketService) AddComment(ctx context.Context, protocolID string, author domain.CommentAuthorType, body string) (*domain.TicketComment, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, apperrors.NewValidationError("comment body is required", map[string]any{"field": "body"})
	}
	if len(body) > maxCommentLen {
		return nil, apperrors.NewValidationError("comment body is too long", map[string]any{"field": "body", "max": maxCommentLen})
	}
	ticket, err := s.getByProtocol(ctx, protocolID)
	if err != nil {
		return nil, err
	}

	comment := &domain.TicketComment{
		ID:         uuid.NewString(),
		TicketID:   ticket.ID,
		AuthorType: author,
		Body:       body,
		CreatedAt:  s.now().UTC(),
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketCommentAdded,
		TicketID: ticket.ID,
		Actor:    actorFor(author),
		Payload: events.TicketCommentAddedPayload{
			ProtocolID:  ticket.ProtocolID,
			CommentID:   comment.ID,
			AuthorType:  author,
			BodyPreview: stringPreview(body, commentPreviewLen),
		},
	})
	return comment, nil
}

// Stats returns the queue counters shown on the agent panel.
func (s *TicketService) Stats(ctx context.Context) (domain.TicketStats, error) {
	return s.tickets.Stats(ctx)
}

func (s *TicketService) changeStatus(ctx context.Context, protocolID string, action statusAction) (*domain.Ticket, error) {
	ticket, err := s.getByProtocol(ctx, protocolID)
	if err != nil {
		return nil, err
	}
	oldStatus := ticket.Status
	rule := statusRules[action]
	if !slices.Contains(rule.from, oldStatus) {
		return nil, apperrors.NewInvalidTransition(string(oldStatus), string(action))
	}
	newStatus := rule.to

	now := s.now().UTC()
	ticket.Status = newStatus
	ticket.UpdatedAt = now
	if newStatus == domain.TicketStatusResolved {
		ticket.ResolvedAt = &now
	} else {
		ticket.ResolvedAt = nil
	}
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketStatusChanged,
		TicketID: ticket.ID,
		Actor:    events.ActorAgent,
		Payload: events.TicketStatusChangedPayload{
			ProtocolID: ticket.ProtocolID,
			OldStatus:  oldStatus,
			NewStatus:  newStatus,
		},
	})
	return ticket, nil
}

func (s *TicketService) getByProtocol(ctx context.Context, protocolID string) (*domain.Ticket, error) {
	protocolID = strings.ToUpper(strings.TrimSpace(protocolID))
	ticket, err := s.tickets.GetByProtocol(ctx, protocolID)
	if err != nil {
		if de := apperrors.ToDomainError(err); de.Code == apperrors.CodeNotFound {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"protocol_id": protocolID})
		}
		return nil, err
	}
	return ticket, nil
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = s.now().UTC()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

type statusAction string

const (
	actionStart   statusAction = "start"
	actionResolve statusAction = "resolve"
	actionReopen  statusAction = "reopen"
)

var statusRules = map[statusAction]struct {
	from []domain.TicketStatus
	to   domain.TicketStatus
}{
	actionStart:   {from: []domain.TicketStatus{domain.TicketStatusOpen}, to: domain.TicketStatusInProgress},
	actionResolve: {from: []domain.TicketStatus{domain.TicketStatusOpen, domain.TicketStatusInProgress}, to: domain.TicketStatusResolved},
	actionReopen:  {from: []domain.TicketStatus{domain.TicketStatusResolved}, to: domain.TicketStatusInProgress},
}

func actorFor(author domain.CommentAuthorType) events.ActorType {
	switch author {
	case domain.AuthorTypeAgent:
		return events.ActorAgent
	case domain.AuthorTypeSystem:
		return events.ActorSystem
	default:
		return events.ActorRequester
	}
}

func firstLine(text string) string {
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		return text[:i]
	}
	return text
}

func stringPreview(body string, max int) string {
	body = strings.TrimSpace(body)
	runes := []rune(body)
	if len(runes) <= max {
		return body
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}
