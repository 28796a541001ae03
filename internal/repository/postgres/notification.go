package postgres

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/risingbsm/bsm-api/internal/model"
	"github.com/risingbsm/bsm-api/internal/query"
	"github.com/risingbsm/bsm-api/internal/repository"
	apperrors "github.com/risingbsm/bsm-api/pkg/errors"
)

type notificationRepository struct {
	*Store[model.Notification]
}

func NewNotificationRepository(db *sqlx.DB) repository.NotificationRepository {
	return &notificationRepository{
		Store: NewStore[model.Notification](db, Meta{
			Table:  "notifications",
			Entity: "notification",
			Insert: []string{"user_id", "title", "message", "type", "link"},
			Updatable: map[string]bool{
				"read": true, "dispatched": true,
			},
			Sortable:    map[string]bool{"id": true, "created_at": true},
			DefaultSort: "created_at DESC",
		}),
	}
}

func (r *notificationRepository) Create(ctx context.Context, n *model.Notification) (*model.Notification, error) {
	return r.Store.Create(ctx, n)
}

func (r *notificationRepository) ListForUser(ctx context.Context, userID int64, f *model.NotificationFilter) (*query.Result[model.Notification], error) {
	cr := query.New().Eq("user_id", userID)
	opts := query.Options{}
	if f != nil {
		if f.UnreadOnly {
			cr.Eq("read", false)
		}
		opts.Page = f.Page
		opts.Limit = f.Limit
	}
	return r.FindAll(ctx, cr, opts)
}

func (r *notificationRepository) MarkRead(ctx context.Context, id, userID int64) error {
	q := `UPDATE notifications SET read = TRUE, updated_at = NOW() WHERE id = $1 AND user_id = $2`

	res, err := r.db.ExecContext(ctx, q, id, userID)
	if err != nil {
		return classify("mark notification read", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return classify("mark notification read", err)
	}
	if rows == 0 {
		return apperrors.NotFound("notification", id)
	}
	return nil
}

func (r *notificationRepository) MarkAllRead(ctx context.Context, userID int64) (int64, error) {
	q := `UPDATE notifications SET read = TRUE, updated_at = NOW() WHERE user_id = $1 AND read = FALSE`

	res, err := r.db.ExecContext(ctx, q, userID)
	if err != nil {
		return 0, classify("mark notifications read", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return 0, classify("mark notifications read", err)
	}
	return rows, nil
}

func (r *notificationRepository) UnreadCount(ctx context.Context, userID int64) (int64, error) {
	return r.Store.Count(ctx, query.New().Eq("user_id", userID).Eq("read", false))
}

// NextUndispatched fetches a batch of undispatched rows for the
// worker, oldest first. SKIP LOCKED keeps two pollers from grabbing
// the same rows in the same instant; delivery is still at least once.
func (r *notificationRepository) NextUndispatched(ctx context.Context, limit int) ([]model.Notification, error) {
	q := `
		SELECT * FROM notifications
		WHERE dispatched = FALSE
		ORDER BY created_at ASC
		LIMIT $1
		FOR UPDATE SKIP LOCKED
	`

	rows := []model.Notification{}
	if err := r.db.SelectContext(ctx, &rows, q, limit); err != nil {
		return nil, classify("fetch undispatched notifications", err)
	}
	return rows, nil
}

func (r *notificationRepository) MarkDispatched(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	q := `UPDATE notifications SET dispatched = TRUE, updated_at = NOW() WHERE id = ANY($1)`

	if _, err := r.db.ExecContext(ctx, q, pq.Array(ids)); err != nil {
		return classify("mark notifications dispatched", err)
	}
	return nil
}

func (r *notificationRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	q := `DELETE FROM notifications WHERE created_at < $1 AND read = TRUE`

	res, err := r.db.ExecContext(ctx, q, cutoff)
	if err != nil {
		return 0, classify("purge notifications", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return 0, classify("purge notifications", err)
	}
	return rows, nil
}
