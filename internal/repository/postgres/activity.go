package postgres

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/risingbsm/bsm-api/internal/model"
	"github.com/risingbsm/bsm-api/internal/query"
	"github.com/risingbsm/bsm-api/internal/repository"
)

type activityRepository struct {
	db *sqlx.DB
}

func NewActivityRepository(db *sqlx.DB) repository.ActivityRepository {
	return &activityRepository{db: db}
}

func (r *activityRepository) Create(ctx context.Context, entry *model.ActivityLog) error {
	q := `
		INSERT INTO activity_logs (
			entity_type, entity_id, action, details,
			user_id, user_name, ip_address
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.ExecContext(ctx, q,
		entry.EntityType,
		entry.EntityID,
		entry.Action,
		entry.Details,
		entry.UserID,
		entry.UserName,
		entry.IPAddress,
	)
	if err != nil {
		return classify("create activity log", err)
	}
	return nil
}

func (r *activityRepository) List(ctx context.Context, f *model.ActivityFilter) (*query.Result[model.ActivityLog], error) {
	cr := query.New()
	opts := query.Options{}
	if f != nil {
		if f.EntityType != "" {
			cr.Eq("entity_type", f.EntityType)
		}
		if f.EntityID != nil {
			cr.Eq("entity_id", *f.EntityID)
		}
		if f.UserID != nil {
			cr.Eq("user_id", *f.UserID)
		}
		if f.Action != "" {
			cr.Eq("action", f.Action)
		}
		opts.Page = f.Page
		opts.Limit = f.Limit
	}
	opts = opts.Normalized()

	where, args := compileCriteria(cr)

	countQuery := "SELECT COUNT(*) FROM activity_logs"
	if where != "" {
		countQuery += " WHERE " + where
	}
	var total int64
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, classify("count activity logs", err)
	}

	q := "SELECT * FROM activity_logs"
	if where != "" {
		q += " WHERE " + where
	}
	q += " ORDER BY created_at DESC"
	q += limitOffset(len(args))
	args = append(args, opts.Limit, opts.Offset())

	rows := []model.ActivityLog{}
	if err := r.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, classify("list activity logs", err)
	}
	return query.NewResult(rows, query.NewPagination(opts.Page, opts.Limit, total)), nil
}

func (r *activityRepository) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	q := `DELETE FROM activity_logs WHERE created_at < $1`

	res, err := r.db.ExecContext(ctx, q, cutoff)
	if err != nil {
		return 0, classify("purge activity logs", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return 0, classify("purge activity logs", err)
	}
	return rows, nil
}
