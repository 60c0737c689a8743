package notifications

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	pkgerrors "github.com/ayuuum/HomeServiceAI-sub000/pkg/errors"
	"github.com/ayuuum/HomeServiceAI-sub000/pkg/pagination"
)

// Service exposes the admin notification feed.
type Service interface {
	List(ctx context.Context, orgID uuid.UUID, params pagination.Params, unreadOnly bool) (*FeedList, error)
	MarkRead(ctx context.Context, orgID, notificationID uuid.UUID) error
	MarkAllRead(ctx context.Context, orgID uuid.UUID) error
	UnreadCount(ctx context.Context, orgID uuid.UUID) (int64, error)
}

type service struct {
	repo Repository
}

// NewService builds the notification feed service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("notifications repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) List(ctx context.Context, orgID uuid.UUID, params pagination.Params, unreadOnly bool) (*FeedList, error) {
	if orgID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "organization id required")
	}
	list, err := s.repo.List(ctx, orgID, params, unreadOnly)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list notifications")
	}
	return list, nil
}

func (s *service) MarkRead(ctx context.Context, orgID, notificationID uuid.UUID) error {
	if orgID == uuid.Nil || notificationID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "organization id and notification id required")
	}
	affected, err := s.repo.MarkRead(ctx, orgID, notificationID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark notification read")
	}
	if affected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "notification not found or already read")
	}
	return nil
}

func (s *service) MarkAllRead(ctx context.Context, orgID uuid.UUID) error {
	if orgID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "organization id required")
	}
	if err := s.repo.MarkAllRead(ctx, orgID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark all notifications read")
	}
	return nil
}

func (s *service) UnreadCount(ctx context.Context, orgID uuid.UUID) (int64, error) {
	if orgID == uuid.Nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "organization id required")
	}
	count, err := s.repo.UnreadCount(ctx, orgID)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count unread notifications")
	}
	return count, nil
}
