package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/quickdesk/helpdesk/internal/domain"
)

// ActivityLogRepository is the append-only audit ledger. Write failures are
// returned to the caller; whether they veto the triggering action is decided
// by the lifecycle engine, not swallowed here.
type ActivityLogRepository interface {
	Create(ctx context.Context, entry *domain.ActivityLogEntry) error
	ListByTicket(ctx context.Context, ticketID int64, limit int) ([]domain.ActivityLogEntry, error)
	ListByUser(ctx context.Context, userID int64, limit int) ([]domain.ActivityLogEntry, error)
	ListRecent(ctx context.Context, limit int) ([]domain.ActivityLogEntry, error)
}

type activityLogRepository struct {
	q Querier
}

// NewActivityLogRepository builds repository.
func NewActivityLogRepository(q Querier) ActivityLogRepository {
	return &activityLogRepository{q: q}
}

func (r *activityLogRepository) Create(ctx context.Context, entry *domain.ActivityLogEntry) error {
	const query = `
        INSERT INTO activity_logs (user_id, action, description, ticket_id, ip_address)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at`
	return r.q.QueryRow(ctx, query,
		entry.UserID,
		entry.Action,
		entry.Description,
		entry.TicketID,
		entry.IPAddress,
	).Scan(&entry.ID, &entry.CreatedAt)
}

func (r *activityLogRepository) ListByTicket(ctx context.Context, ticketID int64, limit int) ([]domain.ActivityLogEntry, error) {
	const query = `
        SELECT id, user_id, action, description, ticket_id, ip_address, created_at
        FROM activity_logs WHERE ticket_id=$1 ORDER BY created_at DESC LIMIT $2`
	return r.list(ctx, query, ticketID, clampLimit(limit, 50))
}

func (r *activityLogRepository) ListByUser(ctx context.Context, userID int64, limit int) ([]domain.ActivityLogEntry, error) {
	const query = `
        SELECT id, user_id, action, description, ticket_id, ip_address, created_at
        FROM activity_logs WHERE user_id=$1 ORDER BY created_at DESC LIMIT $2`
	return r.list(ctx, query, userID, clampLimit(limit, 100))
}

func (r *activityLogRepository) ListRecent(ctx context.Context, limit int) ([]domain.ActivityLogEntry, error) {
	const query = `
        SELECT id, user_id, action, description, ticket_id, ip_address, created_at
        FROM activity_logs ORDER BY created_at DESC LIMIT $1`
	rows, err := r.q.Query(ctx, query, clampLimit(limit, 100))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanActivityEntries(rows)
}

func (r *activityLogRepository) list(ctx context.Context, query string, key int64, limit int) ([]domain.ActivityLogEntry, error) {
	rows, err := r.q.Query(ctx, query, key, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanActivityEntries(rows)
}

func scanActivityEntries(rows pgx.Rows) ([]domain.ActivityLogEntry, error) {
	var result []domain.ActivityLogEntry
	for rows.Next() {
		var entry domain.ActivityLogEntry
		if err := rows.Scan(
			&entry.ID,
			&entry.UserID,
			&entry.Action,
			&entry.Description,
			&entry.TicketID,
			&entry.IPAddress,
			&entry.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}

func clampLimit(limit, fallback int) int {
	if limit <= 0 || limit > 500 {
		return fallback
	}
	return limit
}
