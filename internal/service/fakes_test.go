package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/quickdesk/helpdesk/internal/domain"
	"github.com/quickdesk/helpdesk/internal/repository"
)

var errActivityDown = errors.New("activity insert failed")

// fakeStore is an in-memory repository.Store. InTx snapshots all state before
// running fn and restores it when fn fails, mimicking a rollback.
type fakeStore struct {
	tickets       map[int64]domain.Ticket
	comments      []domain.Comment
	activity      []domain.ActivityLogEntry
	notifications []domain.Notification
	users         map[int64]domain.User
	categories    map[int64]domain.Category

	nextTicketID       int64
	nextCommentID      int64
	nextActivityID     int64
	nextNotificationID int64
	nextUserID         int64
	nextCategoryID     int64

	failActivity bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		tickets:    map[int64]domain.Ticket{},
		users:      map[int64]domain.User{},
		categories: map[int64]domain.Category{},
	}
}

func (f *fakeStore) addUser(user domain.User) domain.User {
	f.nextUserID++
	user.ID = f.nextUserID
	f.users[user.ID] = user
	return user
}

func (f *fakeStore) addCategory(name string) domain.Category {
	f.nextCategoryID++
	category := domain.Category{ID: f.nextCategoryID, Name: name}
	f.categories[category.ID] = category
	return category
}

func (f *fakeStore) addTicket(ticket domain.Ticket) domain.Ticket {
	f.nextTicketID++
	ticket.ID = f.nextTicketID
	f.tickets[ticket.ID] = ticket
	return ticket
}

func (f *fakeStore) snapshot() fakeStore {
	snap := fakeStore{
		tickets:            make(map[int64]domain.Ticket, len(f.tickets)),
		comments:           append([]domain.Comment(nil), f.comments...),
		activity:           append([]domain.ActivityLogEntry(nil), f.activity...),
		notifications:      append([]domain.Notification(nil), f.notifications...),
		users:              make(map[int64]domain.User, len(f.users)),
		categories:         make(map[int64]domain.Category, len(f.categories)),
		nextTicketID:       f.nextTicketID,
		nextCommentID:      f.nextCommentID,
		nextActivityID:     f.nextActivityID,
		nextNotificationID: f.nextNotificationID,
		nextUserID:         f.nextUserID,
		nextCategoryID:     f.nextCategoryID,
	}
	for id, t := range f.tickets {
		snap.tickets[id] = t
	}
	for id, u := range f.users {
		snap.users[id] = u
	}
	for id, c := range f.categories {
		snap.categories[id] = c
	}
	return snap
}

func (f *fakeStore) restore(snap fakeStore) {
	failActivity := f.failActivity
	*f = snap
	f.failActivity = failActivity
}

func (f *fakeStore) Tickets() repository.TicketRepository             { return fakeTicketRepo{f} }
func (f *fakeStore) Comments() repository.CommentRepository           { return fakeCommentRepo{f} }
func (f *fakeStore) Activity() repository.ActivityLogRepository       { return fakeActivityRepo{f} }
func (f *fakeStore) Notifications() repository.NotificationRepository { return fakeNotificationRepo{f} }
func (f *fakeStore) Users() repository.UserRepository                 { return fakeUserRepo{f} }
func (f *fakeStore) Categories() repository.CategoryRepository        { return fakeCategoryRepo{f} }

func (f *fakeStore) InTx(_ context.Context, fn func(repository.Store) error) error {
	snap := f.snapshot()
	if err := fn(f); err != nil {
		f.restore(snap)
		return err
	}
	return nil
}

type fakeTicketRepo struct{ s *fakeStore }

func (r fakeTicketRepo) Create(_ context.Context, ticket *domain.Ticket) error {
	r.s.nextTicketID++
	ticket.ID = r.s.nextTicketID
	r.s.tickets[ticket.ID] = *ticket
	return nil
}

func (r fakeTicketRepo) Update(_ context.Context, ticket *domain.Ticket) error {
	if _, ok := r.s.tickets[ticket.ID]; !ok {
		return pgx.ErrNoRows
	}
	r.s.tickets[ticket.ID] = *ticket
	return nil
}

func (r fakeTicketRepo) GetByID(_ context.Context, id int64) (*domain.Ticket, error) {
	ticket, ok := r.s.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &ticket, nil
}

func (r fakeTicketRepo) GetByIDForUpdate(ctx context.Context, id int64) (*domain.Ticket, error) {
	return r.GetByID(ctx, id)
}

func (r fakeTicketRepo) ListWithFilter(_ context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	var out []domain.Ticket
	for _, ticket := range r.s.tickets {
		if filter.CreatorID != nil && ticket.CreatorID != *filter.CreatorID {
			continue
		}
		if filter.AssigneeID != nil && (ticket.AssigneeID == nil || *ticket.AssigneeID != *filter.AssigneeID) {
			continue
		}
		if filter.Unassigned && ticket.AssigneeID != nil {
			continue
		}
		if filter.CategoryID != nil && ticket.CategoryID != *filter.CategoryID {
			continue
		}
		if len(filter.Statuses) > 0 && !containsStatus(filter.Statuses, ticket.Status) {
			continue
		}
		if len(filter.Priorities) > 0 && !containsPriority(filter.Priorities, ticket.Priority) {
			continue
		}
		out = append(out, ticket)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r fakeTicketRepo) CountByStatus(_ context.Context) (map[domain.TicketStatus]int64, error) {
	counts := map[domain.TicketStatus]int64{}
	for _, ticket := range r.s.tickets {
		counts[ticket.Status]++
	}
	return counts, nil
}

func (r fakeTicketRepo) CountByCategory(_ context.Context, categoryID int64) (int64, error) {
	var n int64
	for _, ticket := range r.s.tickets {
		if ticket.CategoryID == categoryID {
			n++
		}
	}
	return n, nil
}

type fakeCommentRepo struct{ s *fakeStore }

func (r fakeCommentRepo) Create(_ context.Context, comment *domain.Comment) error {
	r.s.nextCommentID++
	comment.ID = r.s.nextCommentID
	r.s.comments = append(r.s.comments, *comment)
	return nil
}

func (r fakeCommentRepo) ListByTicket(_ context.Context, ticketID int64, internalVisible bool) ([]domain.Comment, error) {
	var out []domain.Comment
	for _, comment := range r.s.comments {
		if comment.TicketID != ticketID {
			continue
		}
		if comment.IsInternal && !internalVisible {
			continue
		}
		out = append(out, comment)
	}
	return out, nil
}

type fakeActivityRepo struct{ s *fakeStore }

func (r fakeActivityRepo) Create(_ context.Context, entry *domain.ActivityLogEntry) error {
	if r.s.failActivity {
		return errActivityDown
	}
	r.s.nextActivityID++
	entry.ID = r.s.nextActivityID
	r.s.activity = append(r.s.activity, *entry)
	return nil
}

func (r fakeActivityRepo) ListByTicket(_ context.Context, ticketID int64, _ int) ([]domain.ActivityLogEntry, error) {
	var out []domain.ActivityLogEntry
	for _, entry := range r.s.activity {
		if entry.TicketID != nil && *entry.TicketID == ticketID {
			out = append(out, entry)
		}
	}
	return out, nil
}

func (r fakeActivityRepo) ListByUser(_ context.Context, userID int64, _ int) ([]domain.ActivityLogEntry, error) {
	var out []domain.ActivityLogEntry
	for _, entry := range r.s.activity {
		if entry.UserID == userID {
			out = append(out, entry)
		}
	}
	return out, nil
}

func (r fakeActivityRepo) ListRecent(_ context.Context, _ int) ([]domain.ActivityLogEntry, error) {
	return append([]domain.ActivityLogEntry(nil), r.s.activity...), nil
}

type fakeNotificationRepo struct{ s *fakeStore }

func (r fakeNotificationRepo) Create(_ context.Context, notification *domain.Notification) error {
	r.s.nextNotificationID++
	notification.ID = r.s.nextNotificationID
	r.s.notifications = append(r.s.notifications, *notification)
	return nil
}

func (r fakeNotificationRepo) ListUnread(_ context.Context, userID int64) ([]domain.Notification, error) {
	var out []domain.Notification
	for _, notification := range r.s.notifications {
		if notification.UserID == userID && !notification.IsRead {
			out = append(out, notification)
		}
	}
	return out, nil
}

func (r fakeNotificationRepo) MarkRead(_ context.Context, notificationID int64) error {
	for i := range r.s.notifications {
		if r.s.notifications[i].ID == notificationID && !r.s.notifications[i].IsRead {
			r.s.notifications[i].IsRead = true
			return nil
		}
	}
	return nil
}

func (r fakeNotificationRepo) MarkAllRead(_ context.Context, userID int64) (int64, error) {
	var flipped int64
	for i := range r.s.notifications {
		if r.s.notifications[i].UserID == userID && !r.s.notifications[i].IsRead {
			r.s.notifications[i].IsRead = true
			flipped++
		}
	}
	return flipped, nil
}

func (r fakeNotificationRepo) CountUnread(_ context.Context, userID int64) (int64, error) {
	var n int64
	for _, notification := range r.s.notifications {
		if notification.UserID == userID && !notification.IsRead {
			n++
		}
	}
	return n, nil
}

type fakeUserRepo struct{ s *fakeStore }

func (r fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	for _, existing := range r.s.users {
		if existing.Email == user.Email {
			return errors.New("duplicate email")
		}
	}
	r.s.nextUserID++
	user.ID = r.s.nextUserID
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	r.s.users[user.ID] = *user
	return nil
}

func (r fakeUserRepo) Update(_ context.Context, user *domain.User) error {
	if _, ok := r.s.users[user.ID]; !ok {
		return pgx.ErrNoRows
	}
	r.s.users[user.ID] = *user
	return nil
}

func (r fakeUserRepo) GetByID(_ context.Context, id int64) (*domain.User, error) {
	user, ok := r.s.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &user, nil
}

func (r fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, user := range r.s.users {
		if user.Email == email {
			u := user
			return &u, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r fakeUserRepo) ListActiveByRole(_ context.Context, role domain.Role) ([]domain.User, error) {
	var out []domain.User
	for _, user := range r.s.users {
		if user.Role == role && user.IsActive {
			out = append(out, user)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r fakeUserRepo) ListAll(_ context.Context) ([]domain.User, error) {
	var out []domain.User
	for _, user := range r.s.users {
		out = append(out, user)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type fakeCategoryRepo struct{ s *fakeStore }

func (r fakeCategoryRepo) Create(_ context.Context, category *domain.Category) error {
	r.s.nextCategoryID++
	category.ID = r.s.nextCategoryID
	r.s.categories[category.ID] = *category
	return nil
}

func (r fakeCategoryRepo) Delete(_ context.Context, id int64) error {
	if _, ok := r.s.categories[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.s.categories, id)
	return nil
}

func (r fakeCategoryRepo) GetByID(_ context.Context, id int64) (*domain.Category, error) {
	category, ok := r.s.categories[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &category, nil
}

func (r fakeCategoryRepo) ListAll(_ context.Context) ([]domain.Category, error) {
	var out []domain.Category
	for _, category := range r.s.categories {
		out = append(out, category)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func containsStatus(list []domain.TicketStatus, s domain.TicketStatus) bool {
	for _, candidate := range list {
		if candidate == s {
			return true
		}
	}
	return false
}

func containsPriority(list []domain.TicketPriority, p domain.TicketPriority) bool {
	for _, candidate := range list {
		if candidate == p {
			return true
		}
	}
	return false
}
