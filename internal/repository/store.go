package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Querier is the subset of pgx satisfied by both *pgxpool.Pool and pgx.Tx,
// so the same repository code runs inside and outside a transaction.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store bundles the repositories and the transactional boundary. Lifecycle
// operations run their ticket mutation, audit append and notification insert
// against a single tx-scoped Store; nothing becomes visible on rollback.
type Store interface {
	Tickets() TicketRepository
	Comments() CommentRepository
	Activity() ActivityLogRepository
	Notifications() NotificationRepository
	Users() UserRepository
	Categories() CategoryRepository

	// InTx runs fn against a transaction-scoped Store, committing when fn
	// returns nil and rolling back otherwise. Calling InTx on an already
	// transactional Store reuses the open transaction.
	InTx(ctx context.Context, fn func(Store) error) error
}

type pgxStore struct {
	pool *pgxpool.Pool // nil when tx-scoped

	tickets       TicketRepository
	comments      CommentRepository
	activity      ActivityLogRepository
	notifications NotificationRepository
	users         UserRepository
	categories    CategoryRepository
}

// NewStore builds the Postgres-backed store.
func NewStore(pool *pgxpool.Pool) Store {
	return newPgxStore(pool, pool)
}

func newPgxStore(pool *pgxpool.Pool, q Querier) *pgxStore {
	return &pgxStore{
		pool:          pool,
		tickets:       NewTicketRepository(q),
		comments:      NewCommentRepository(q),
		activity:      NewActivityLogRepository(q),
		notifications: NewNotificationRepository(q),
		users:         NewUserRepository(q),
		categories:    NewCategoryRepository(q),
	}
}

func (s *pgxStore) Tickets() TicketRepository              { return s.tickets }
func (s *pgxStore) Comments() CommentRepository            { return s.comments }
func (s *pgxStore) Activity() ActivityLogRepository        { return s.activity }
func (s *pgxStore) Notifications() NotificationRepository  { return s.notifications }
func (s *pgxStore) Users() UserRepository                  { return s.users }
func (s *pgxStore) Categories() CategoryRepository         { return s.categories }

func (s *pgxStore) InTx(ctx context.Context, fn func(Store) error) error {
	if s.pool == nil {
		return fn(s)
	}
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	txStore := newPgxStore(nil, tx)
	if err := fn(txStore); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}
