package repository

import (
	"context"
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/supportbox/internal/domain"
	apperrors "github.com/spec-kit/supportbox/pkg/util"
)

// Memory repositories back the service when no database is configured.
// Missing rows are reported with pgx.ErrNoRows so callers handle both
// backends the same way.

type memoryTicketRepository struct {
	mu         sync.RWMutex
	byID       map[string]*domain.Ticket
	byProtocol map[string]string
}

// NewMemoryTicketRepository builds an in-process ticket store.
func NewMemoryTicketRepository() TicketRepository {
	return &memoryTicketRepository{
		byID:       make(map[string]*domain.Ticket),
		byProtocol: make(map[string]string),
	}
}

func (r *memoryTicketRepository) Create(_ context.Context, ticket *domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byProtocol[ticket.ProtocolID]; exists {
		return apperrors.NewConflict("protocol already registered", map[string]any{"protocol_id": ticket.ProtocolID})
	}
	stored := *ticket
	r.byID[ticket.ID] = &stored
	r.byProtocol[ticket.ProtocolID] = ticket.ID
	return nil
}

func (r *memoryTicketRepository) Update(_ context.Context, ticket *domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[ticket.ID]; !ok {
		return pgx.ErrNoRows
	}
	stored := *ticket
	r.byID[ticket.ID] = &stored
	return nil
}

func (r *memoryTicketRepository) GetByProtocol(_ context.Context, protocolID string) (*domain.Ticket, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byProtocol[protocolID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	ticket := *r.byID[id]
	return &ticket, nil
}

func (r *memoryTicketRepository) ListWithFilter(_ context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	r.mu.RLock()
	var matched []domain.Ticket
	search := strings.ToLower(strings.TrimSpace(filter.Search))
	for _, t := range r.byID {
		if len(filter.Statuses) > 0 && !slices.Contains(filter.Statuses, t.Status) {
			continue
		}
		if len(filter.Types) > 0 && !slices.Contains(filter.Types, t.Type) {
			continue
		}
		if len(filter.Priorities) > 0 && !slices.Contains(filter.Priorities, t.Priority) {
			continue
		}
		if len(filter.Categories) > 0 && !slices.Contains(filter.Categories, t.Category) {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(t.ProtocolID), search) &&
			!strings.Contains(strings.ToLower(t.Title), search) &&
			!strings.Contains(strings.ToLower(t.Description), search) {
			continue
		}
		matched = append(matched, *t)
	}
	r.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].ProtocolID > matched[j].ProtocolID
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	limit, offset := normalizePage(filter.Limit, filter.Offset)
	if offset >= len(matched) {
		return nil, nil
	}
	end := min(offset+limit, len(matched))
	return matched[offset:end], nil
}

func (r *memoryTicketRepository) Stats(_ context.Context) (domain.TicketStats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var stats domain.TicketStats
	for _, t := range r.byID {
		switch t.Status {
		case domain.TicketStatusOpen:
			stats.Open++
		case domain.TicketStatusInProgress:
			stats.InProgress++
		case domain.TicketStatusResolved:
			stats.Resolved++
		}
		if t.Priority == domain.TicketPriorityUrgent && t.Status != domain.TicketStatusResolved {
			stats.Urgent++
		}
	}
	return stats, nil
}

func (r *memoryTicketRepository) HighestProtocolNumber(_ context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var highest int64
	for protocolID := range r.byProtocol {
		if n, ok := domain.ParseProtocolNumber(protocolID); ok && n > highest {
			highest = n
		}
	}
	return highest, nil
}

type memoryTicketCommentRepository struct {
	mu       sync.RWMutex
	byTicket map[string][]domain.TicketComment
}

// NewMemoryTicketCommentRepository builds an in-process comment store.
func NewMemoryTicketCommentRepository() TicketCommentRepository {
	return &memoryTicketCommentRepository{byTicket: make(map[string][]domain.TicketComment)}
}

func (r *memoryTicketCommentRepository) Create(_ context.Context, comment *domain.TicketComment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byTicket[comment.TicketID] = append(r.byTicket[comment.TicketID], *comment)
	return nil
}

func (r *memoryTicketCommentRepository) ListByTicket(_ context.Context, ticketID string) ([]domain.TicketComment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.byTicket[ticketID]), nil
}
