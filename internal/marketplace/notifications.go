package marketplace

import (
	"context"
	"errors"

	"medilink/internal/apperrors"
	"medilink/internal/auth"
	"medilink/models"
	"medilink/repository"
)

// NotificationService serves a principal's polled inbox.
type NotificationService struct {
	repo repository.NotificationRepositoryI
}

func NewNotificationService(repo repository.NotificationRepositoryI) *NotificationService {
	return &NotificationService{repo: repo}
}

func (s *NotificationService) List(ctx context.Context, p *auth.Principal) ([]models.Notification, error) {
	list, err := s.repo.ListByReceiver(ctx, p.ID, p.Kind)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return list, nil
}

func (s *NotificationService) UnreadCount(ctx context.Context, p *auth.Principal) (int, error) {
	n, err := s.repo.CountUnread(ctx, p.ID, p.Kind)
	if err != nil {
		return 0, apperrors.Internal(err)
	}
	return n, nil
}

// MarkRead marks one of p's notifications read. Notifications addressed to someone
// else are reported as not found.
func (s *NotificationService) MarkRead(ctx context.Context, p *auth.Principal, id int64) (*models.Notification, error) {
	if err := s.repo.MarkRead(ctx, id, p.ID, p.Kind); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.ErrNotificationNotFound
		}
		return nil, apperrors.Internal(err)
	}
	n, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if n == nil {
		return nil, apperrors.ErrNotificationNotFound
	}
	return n, nil
}

func (s *NotificationService) MarkAllRead(ctx context.Context, p *auth.Principal) (int64, error) {
	n, err := s.repo.MarkAllRead(ctx, p.ID, p.Kind)
	if err != nil {
		return 0, apperrors.Internal(err)
	}
	return n, nil
}
