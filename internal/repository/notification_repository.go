package repository

import (
	"context"

	"github.com/quickdesk/helpdesk/internal/domain"
)

// NotificationRepository is the per-user inbox. MarkRead and MarkAllRead are
// idempotent one-way flips; there is no delete.
type NotificationRepository interface {
	Create(ctx context.Context, notification *domain.Notification) error
	ListUnread(ctx context.Context, userID int64) ([]domain.Notification, error)
	// MarkRead flips a single notification; a no-op when already read or missing.
	MarkRead(ctx context.Context, notificationID int64) error
	// MarkAllRead flips every unread notification of the user, returning how
	// many were flipped.
	MarkAllRead(ctx context.Context, userID int64) (int64, error)
	CountUnread(ctx context.Context, userID int64) (int64, error)
}

type notificationRepository struct {
	q Querier
}

// NewNotificationRepository builds repository.
func NewNotificationRepository(q Querier) NotificationRepository {
	return &notificationRepository{q: q}
}

func (r *notificationRepository) Create(ctx context.Context, notification *domain.Notification) error {
	const query = `
        INSERT INTO notifications (user_id, ticket_id, title, message, notification_type)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, is_read, created_at`
	return r.q.QueryRow(ctx, query,
		notification.UserID,
		notification.TicketID,
		notification.Title,
		notification.Message,
		notification.Type,
	).Scan(&notification.ID, &notification.IsRead, &notification.CreatedAt)
}

func (r *notificationRepository) ListUnread(ctx context.Context, userID int64) ([]domain.Notification, error) {
	const query = `
        SELECT id, user_id, ticket_id, title, message, notification_type, is_read, created_at
        FROM notifications WHERE user_id=$1 AND is_read=FALSE
        ORDER BY created_at DESC`
	rows, err := r.q.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Notification
	for rows.Next() {
		var n domain.Notification
		if err := rows.Scan(
			&n.ID,
			&n.UserID,
			&n.TicketID,
			&n.Title,
			&n.Message,
			&n.Type,
			&n.IsRead,
			&n.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, n)
	}
	return result, rows.Err()
}

func (r *notificationRepository) MarkRead(ctx context.Context, notificationID int64) error {
	const query = `UPDATE notifications SET is_read=TRUE WHERE id=$1 AND is_read=FALSE`
	_, err := r.q.Exec(ctx, query, notificationID)
	return err
}

func (r *notificationRepository) MarkAllRead(ctx context.Context, userID int64) (int64, error) {
	const query = `UPDATE notifications SET is_read=TRUE WHERE user_id=$1 AND is_read=FALSE`
	cmd, err := r.q.Exec(ctx, query, userID)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

func (r *notificationRepository) CountUnread(ctx context.Context, userID int64) (int64, error) {
	const query = `SELECT COUNT(id) FROM notifications WHERE user_id=$1 AND is_read=FALSE`
	var count int64
	err := r.q.QueryRow(ctx, query, userID).Scan(&count)
	return count, err
}
