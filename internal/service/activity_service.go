package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/quickdesk/helpdesk/internal/domain"
	"github.com/quickdesk/helpdesk/internal/repository"
	apperrors "github.com/quickdesk/helpdesk/pkg/util"
)

// ActivityService is the read side of the audit ledger plus the two session
// hooks (login/logout) that append outside a ticket transaction.
type ActivityService struct {
	store  repository.Store
	logger *zap.Logger
}

// NewActivityService constructs the service.
func NewActivityService(store repository.Store, logger *zap.Logger) *ActivityService {
	return &ActivityService{store: store, logger: logger}
}

// ForTicket returns a ticket's audit trail, newest first.
func (s *ActivityService) ForTicket(ctx context.Context, ticketID int64, limit int) ([]domain.ActivityLogEntry, error) {
	entries, err := s.store.Activity().ListByTicket(ctx, ticketID, limit)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return entries, nil
}

// ForUser returns a user's actions, newest first.
func (s *ActivityService) ForUser(ctx context.Context, userID int64, limit int) ([]domain.ActivityLogEntry, error) {
	entries, err := s.store.Activity().ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return entries, nil
}

// Recent returns system-wide activity, newest first.
func (s *ActivityService) Recent(ctx context.Context, limit int) ([]domain.ActivityLogEntry, error) {
	entries, err := s.store.Activity().ListRecent(ctx, limit)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return entries, nil
}

// RecordLogin appends a user_login entry. Session events are outside any
// ticket transaction; a write failure here is logged, not surfaced, so a
// ledger hiccup cannot lock users out.
func (s *ActivityService) RecordLogin(ctx context.Context, user *domain.User, ip *string) {
	s.record(ctx, user, domain.ActionUserLogin, fmt.Sprintf("User %s logged in", user.Username), ip)
}

// RecordLogout appends a user_logout entry.
func (s *ActivityService) RecordLogout(ctx context.Context, user *domain.User, ip *string) {
	s.record(ctx, user, domain.ActionUserLogout, fmt.Sprintf("User %s logged out", user.Username), ip)
}

func (s *ActivityService) record(ctx context.Context, user *domain.User, action domain.ActivityAction, description string, ip *string) {
	entry := &domain.ActivityLogEntry{
		UserID:      user.ID,
		Action:      action,
		Description: description,
		IPAddress:   ip,
	}
	if err := s.store.Activity().Create(ctx, entry); err != nil {
		s.logger.Warn("failed to record session activity",
			zap.String("action", string(action)),
			zap.Int64("user_id", user.ID),
			zap.Error(err))
	}
}
