package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/supportbox/internal/domain"
)

const defaultListLimit = 20

// TicketFilter captures agent queue search parameters.
type TicketFilter struct {
	Statuses   []domain.TicketStatus
	Types      []domain.TicketType
	Priorities []domain.TicketPriority
	Categories []domain.TicketCategory
	Search     string
	Limit      int
	Offset     int
}

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	Update(ctx context.Context, ticket *domain.Ticket) error
	GetByProtocol(ctx context.Context, protocolID string) (*domain.Ticket, error)
	ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error)
	Stats(ctx context.Context) (domain.TicketStats, error)
	HighestProtocolNumber(ctx context.Context) (int64, error)
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

const ticketColumns = `id, protocol_id, session_id, ticket_type, title, description, category, priority, status,
               origin, created_at, updated_at, resolved_at`

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (id, protocol_id, session_id, ticket_type, title, description, category, priority, status, origin, created_at, updated_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`
	_, err := r.pool.Exec(ctx, query,
		ticket.ID,
		ticket.ProtocolID,
		ticket.SessionID,
		ticket.Type,
		ticket.Title,
		ticket.Description,
		ticket.Category,
		ticket.Priority,
		ticket.Status,
		ticket.Origin,
		ticket.CreatedAt,
		ticket.UpdatedAt,
	)
	return err
}

func (r *ticketRepository) Update(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        UPDATE tickets SET title=$1, description=$2, category=$3, priority=$4, status=$5,
            resolved_at=$6, updated_at=$7
        WHERE id=$8`
	cmd, err := r.pool.Exec(ctx, query,
		ticket.Title,
		ticket.Description,
		ticket.Category,
		ticket.Priority,
		ticket.Status,
		ticket.ResolvedAt,
		ticket.UpdatedAt,
		ticket.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketRepository) GetByProtocol(ctx context.Context, protocolID string) (*domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE protocol_id=$1`
	ticket, err := scanTicket(r.pool.QueryRow(ctx, query, protocolID))
	if err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *ticketRepository) ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if len(filter.Statuses) > 0 {
		clauses = append(clauses, inClause("status", toAny(filter.Statuses), &args))
	}
	if len(filter.Types) > 0 {
		clauses = append(clauses, inClause("ticket_type", toAny(filter.Types), &args))
	}
	if len(filter.Priorities) > 0 {
		clauses = append(clauses, inClause("priority", toAny(filter.Priorities), &args))
	}
	if len(filter.Categories) > 0 {
		clauses = append(clauses, inClause("category", toAny(filter.Categories), &args))
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		args = append(args, "%"+strings.ToLower(search)+"%")
		placeholder := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf("(LOWER(protocol_id) LIKE %s OR LOWER(title) LIKE %s OR LOWER(description) LIKE %s)",
			placeholder, placeholder, placeholder))
	}

	limit, offset := normalizePage(filter.Limit, filter.Offset)
	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE %s ORDER BY created_at DESC LIMIT %d OFFSET %d`,
		ticketColumns, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Ticket
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, ticket)
	}
	return result, rows.Err()
}

func (r *ticketRepository) Stats(ctx context.Context) (domain.TicketStats, error) {
	const query = `
        SELECT COUNT(*) FILTER (WHERE status='OPEN'),
               COUNT(*) FILTER (WHERE status='IN_PROGRESS'),
               COUNT(*) FILTER (WHERE status='RESOLVED'),
               COUNT(*) FILTER (WHERE priority='URGENT' AND status<>'RESOLVED')
        FROM tickets`
	var stats domain.TicketStats
	err := r.pool.QueryRow(ctx, query).Scan(&stats.Open, &stats.InProgress, &stats.Resolved, &stats.Urgent)
	return stats, err
}

// HighestProtocolNumber returns the largest n among stored REQ-n ids, or 0.
func (r *ticketRepository) HighestProtocolNumber(ctx context.Context) (int64, error) {
	const query = `
        SELECT COALESCE(MAX(CAST(SUBSTRING(protocol_id FROM 5) AS BIGINT)), 0)
        FROM tickets
        WHERE protocol_id ~ '^REQ-[0-9]+$'`
	var n int64
	err := r.pool.QueryRow(ctx, query).Scan(&n)
	return n, err
}

func scanTicket(row pgx.Row) (domain.Ticket, error) {
	var ticket domain.Ticket
	err := row.Scan(
		&ticket.ID,
		&ticket.ProtocolID,
		&ticket.SessionID,
		&ticket.Type,
		&ticket.Title,
		&ticket.Description,
		&ticket.Category,
		&ticket.Priority,
		&ticket.Status,
		&ticket.Origin,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
		&ticket.ResolvedAt,
	)
	return ticket, err
}

func inClause(column string, values []any, args *[]any) string {
	placeholders := make([]string, len(values))
	for i, v := range values {
		*args = append(*args, v)
		placeholders[i] = fmt.Sprintf("$%d", len(*args))
	}
	return fmt.Sprintf("%s IN (%s)", column, strings.Join(placeholders, ","))
}

func toAny[T ~string](values []T) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return out
}

func normalizePage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
