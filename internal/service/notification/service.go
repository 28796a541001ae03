package notification

import (
	"context"
	"fmt"

	"github.com/risingbsm/bsm-api/internal/model"
	"github.com/risingbsm/bsm-api/internal/query"
	"github.com/risingbsm/bsm-api/internal/repository"
)

// Service creates and serves in-app notifications. Email delivery
// happens asynchronously in the dispatch worker; this layer only writes
// the rows that feed it.
type Service struct {
	repo  repository.NotificationRepository
	users repository.UserRepository
}

func NewService(repo repository.NotificationRepository, users repository.UserRepository) *Service {
	return &Service{repo: repo, users: users}
}

// NotifyUser creates a notification for a single user. Unknown types
// degrade to info.
func (s *Service) NotifyUser(ctx context.Context, userID int64, title, message, typ string, link *string) (*model.Notification, error) {
	if !model.ValidNotificationType(typ) {
		typ = model.NotificationTypeInfo
	}

	created, err := s.repo.Create(ctx, &model.Notification{
		UserID:  userID,
		Title:   title,
		Message: message,
		Type:    typ,
		Link:    link,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create notification: %w", err)
	}
	return created, nil
}

// NotifyStaff fans one notification out to every active admin and
// manager.
func (s *Service) NotifyStaff(ctx context.Context, title, message, typ string, link *string) error {
	for _, role := range []string{model.UserRoleAdmin, model.UserRoleManager} {
		res, err := s.users.List(ctx, &model.UserFilter{
			BaseFilter: model.BaseFilter{Status: model.UserStatusActive},
			Role:       role,
		}, query.Options{Limit: query.MaxLimit})
		if err != nil {
			return fmt.Errorf("failed to list %s users: %w", role, err)
		}
		for i := range res.Data {
			if _, err := s.NotifyUser(ctx, res.Data[i].ID, title, message, typ, link); err != nil {
				return err
			}
		}
	}
	return nil
}

// ListForUser returns one page of the user's notifications.
func (s *Service) ListForUser(ctx context.Context, userID int64, f *model.NotificationFilter) (*query.Result[model.Notification], error) {
	return s.repo.ListForUser(ctx, userID, f)
}

// MarkRead marks one of the user's notifications as read. Rows owned
// by other users surface as NotFound.
func (s *Service) MarkRead(ctx context.Context, id, userID int64) error {
	return s.repo.MarkRead(ctx, id, userID)
}

// MarkAllRead marks every unread notification of the user as read and
// returns how many changed.
func (s *Service) MarkAllRead(ctx context.Context, userID int64) (int64, error) {
	return s.repo.MarkAllRead(ctx, userID)
}

// UnreadCount returns the user's unread badge count.
func (s *Service) UnreadCount(ctx context.Context, userID int64) (int64, error) {
	return s.repo.UnreadCount(ctx, userID)
}
