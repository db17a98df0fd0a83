package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/supportbox/internal/domain"
	apperrors "github.com/spec-kit/supportbox/pkg/util"
)

func seedTicket(t *testing.T, repo TicketRepository, n int, mutate func(*domain.Ticket)) domain.Ticket {
	t.Helper()
	ticket := domain.Ticket{
		ID:          fmt.Sprintf("id-%d", n),
		ProtocolID:  fmt.Sprintf("REQ-%d", 1000+n),
		Title:       fmt.Sprintf("ticket %d", n),
		Description: "descrição",
		Category:    domain.CategoryHardware,
		Priority:    domain.TicketPriorityMedium,
		Status:      domain.TicketStatusOpen,
		CreatedAt:   time.Date(2026, 1, 1, 0, 0, n, 0, time.UTC),
	}
	if mutate != nil {
		mutate(&ticket)
	}
	require.NoError(t, repo.Create(context.Background(), &ticket))
	return ticket
}

func TestMemoryTicketRepositoryCreateAndGet(t *testing.T) {
	repo := NewMemoryTicketRepository()
	created := seedTicket(t, repo, 1, nil)

	got, err := repo.GetByProtocol(context.Background(), created.ProtocolID)
	require.NoError(t, err)
	assert.Equal(t, created, *got)

	got.Title = "mutated"
	again, err := repo.GetByProtocol(context.Background(), created.ProtocolID)
	require.NoError(t, err)
	assert.Equal(t, "ticket 1", again.Title)

	_, err = repo.GetByProtocol(context.Background(), "REQ-9999")
	assert.ErrorIs(t, err, pgx.ErrNoRows)

	dup := created
	err = repo.Create(context.Background(), &dup)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeConflict))
}

func TestMemoryTicketRepositoryUpdate(t *testing.T) {
	repo := NewMemoryTicketRepository()
	ticket := seedTicket(t, repo, 1, nil)
	ticket.Status = domain.TicketStatusResolved
	require.NoError(t, repo.Update(context.Background(), &ticket))

	got, err := repo.GetByProtocol(context.Background(), ticket.ProtocolID)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusResolved, got.Status)

	missing := domain.Ticket{ID: "nope"}
	assert.ErrorIs(t, repo.Update(context.Background(), &missing), pgx.ErrNoRows)
}

func TestMemoryTicketRepositoryFilterAndPaging(t *testing.T) {
	repo := NewMemoryTicketRepository()
	seedTicket(t, repo, 1, nil)
	seedTicket(t, repo, 2, func(tk *domain.Ticket) {
		tk.Priority = domain.TicketPriorityUrgent
		tk.Category = domain.CategoryNetwork
		tk.Title = "VPN fora do ar"
		tk.Type = domain.TicketTypeRequest
	})
	seedTicket(t, repo, 3, func(tk *domain.Ticket) { tk.Status = domain.TicketStatusResolved })
	seedTicket(t, repo, 4, func(tk *domain.Ticket) { tk.Status = domain.TicketStatusInProgress })

	all, err := repo.ListWithFilter(context.Background(), TicketFilter{})
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, "REQ-1004", all[0].ProtocolID)

	open, err := repo.ListWithFilter(context.Background(), TicketFilter{Statuses: []domain.TicketStatus{domain.TicketStatusOpen}})
	require.NoError(t, err)
	assert.Len(t, open, 2)

	byCategory, err := repo.ListWithFilter(context.Background(), TicketFilter{Categories: []domain.TicketCategory{domain.CategoryNetwork}})
	require.NoError(t, err)
	require.Len(t, byCategory, 1)
	assert.Equal(t, "REQ-1002", byCategory[0].ProtocolID)

	byType, err := repo.ListWithFilter(context.Background(), TicketFilter{Types: []domain.TicketType{domain.TicketTypeRequest}})
	require.NoError(t, err)
	require.Len(t, byType, 1)
	assert.Equal(t, "REQ-1002", byType[0].ProtocolID)

	bySearch, err := repo.ListWithFilter(context.Background(), TicketFilter{Search: "vpn"})
	require.NoError(t, err)
	assert.Len(t, bySearch, 1)

	page, err := repo.ListWithFilter(context.Background(), TicketFilter{Limit: 2, Offset: 2})
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "REQ-1002", page[0].ProtocolID)

	empty, err := repo.ListWithFilter(context.Background(), TicketFilter{Offset: 10})
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestMemoryTicketRepositoryStats(t *testing.T) {
	repo := NewMemoryTicketRepository()
	seedTicket(t, repo, 1, func(tk *domain.Ticket) { tk.Priority = domain.TicketPriorityUrgent })
	seedTicket(t, repo, 2, func(tk *domain.Ticket) {
		tk.Priority = domain.TicketPriorityUrgent
		tk.Status = domain.TicketStatusResolved
	})
	seedTicket(t, repo, 3, func(tk *domain.Ticket) { tk.Status = domain.TicketStatusInProgress })

	stats, err := repo.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStats{Open: 1, InProgress: 1, Resolved: 1, Urgent: 1}, stats)
}

func TestMemoryTicketCommentRepositoryKeepsOrder(t *testing.T) {
	repo := NewMemoryTicketCommentRepository()
	for i, body := range []string{"primeiro", "segundo"} {
		c := domain.TicketComment{ID: fmt.Sprint(i), TicketID: "t1", AuthorType: domain.AuthorTypeAgent, Body: body}
		require.NoError(t, repo.Create(context.Background(), &c))
	}

	comments, err := repo.ListByTicket(context.Background(), "t1")
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, "primeiro", comments[0].Body)
	assert.Equal(t, "segundo", comments[1].Body)

	none, err := repo.ListByTicket(context.Background(), "t2")
	require.NoError(t, err)
	assert.Empty(t, none)
}
