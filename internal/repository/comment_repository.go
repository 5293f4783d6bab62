package repository

import (
	"context"

	"github.com/quickdesk/helpdesk/internal/domain"
)

// CommentRepository stores ticket comments. Comments are immutable; there is
// no update or delete.
type CommentRepository interface {
	Create(ctx context.Context, comment *domain.Comment) error
	// ListByTicket returns comments oldest first. When internalVisible is
	// false, internal notes are filtered out.
	ListByTicket(ctx context.Context, ticketID int64, internalVisible bool) ([]domain.Comment, error)
}

type commentRepository struct {
	q Querier
}

// NewCommentRepository builds repository.
func NewCommentRepository(q Querier) CommentRepository {
	return &commentRepository{q: q}
}

func (r *commentRepository) Create(ctx context.Context, comment *domain.Comment) error {
	const query = `
        INSERT INTO comments (ticket_id, user_id, message, is_internal)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at`
	return r.q.QueryRow(ctx, query,
		comment.TicketID,
		comment.AuthorID,
		comment.Message,
		comment.IsInternal,
	).Scan(&comment.ID, &comment.CreatedAt)
}

func (r *commentRepository) ListByTicket(ctx context.Context, ticketID int64, internalVisible bool) ([]domain.Comment, error) {
	query := `
        SELECT id, ticket_id, user_id, message, is_internal, created_at
        FROM comments WHERE ticket_id=$1`
	if !internalVisible {
		query += ` AND is_internal=FALSE`
	}
	query += ` ORDER BY created_at ASC`

	rows, err := r.q.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Comment
	for rows.Next() {
		var comment domain.Comment
		if err := rows.Scan(
			&comment.ID,
			&comment.TicketID,
			&comment.AuthorID,
			&comment.Message,
			&comment.IsInternal,
			&comment.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, comment)
	}
	return result, rows.Err()
}
