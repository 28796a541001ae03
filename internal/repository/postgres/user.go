package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/risingbsm/bsm-api/internal/model"
	"github.com/risingbsm/bsm-api/internal/query"
	"github.com/risingbsm/bsm-api/internal/repository"
	apperrors "github.com/risingbsm/bsm-api/pkg/errors"
)

type userRepository struct {
	*Store[model.User]
}

func NewUserRepository(db *sqlx.DB) repository.UserRepository {
	return &userRepository{
		Store: NewStore[model.User](db, Meta{
			Table:  "users",
			Entity: "user",
			Insert: []string{
				"name", "email", "password_hash", "phone", "role", "status",
			},
			Updatable: map[string]bool{
				"name": true, "email": true, "phone": true,
				"role": true, "status": true,
			},
			Sortable: map[string]bool{
				"id": true, "name": true, "email": true, "role": true,
				"status": true, "created_at": true, "last_login_at": true,
			},
			DefaultSort: "name ASC",
		}),
	}
}

func (r *userRepository) buildCriteria(f *model.UserFilter, includeDeleted bool) *query.Criteria {
	cr := query.New()
	if f == nil {
		if !includeDeleted {
			cr.NotEq("status", model.UserStatusDeleted)
		}
		return cr
	}

	if f.Status != "" {
		cr.Eq("status", f.Status)
	} else if !includeDeleted {
		cr.NotEq("status", model.UserStatusDeleted)
	}
	if f.Search != "" {
		cr.Search(f.Search, "name", "email")
	}
	if f.Role != "" {
		cr.Eq("role", f.Role)
	}
	return cr
}

func (r *userRepository) List(ctx context.Context, f *model.UserFilter, opts query.Options) (*query.Result[model.User], error) {
	return r.FindAll(ctx, r.buildCriteria(f, opts.IncludeDeleted), opts)
}

func (r *userRepository) Get(ctx context.Context, id int64) (*model.User, error) {
	return r.FindByID(ctx, id)
}

func (r *userRepository) GetOrFail(ctx context.Context, id int64) (*model.User, error) {
	return r.FindByIDOrFail(ctx, id)
}

func (r *userRepository) Count(ctx context.Context, f *model.UserFilter) (int64, error) {
	return r.Store.Count(ctx, r.buildCriteria(f, false))
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	q := `SELECT * FROM users WHERE LOWER(email) = LOWER($1)`

	var user model.User
	if err := r.db.GetContext(ctx, &user, q, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, classify("get user by email", err)
	}
	return &user, nil
}

func (r *userRepository) UpdateLastLogin(ctx context.Context, id int64, at time.Time) error {
	q := `UPDATE users SET last_login_at = $1, updated_at = NOW() WHERE id = $2`

	res, err := r.db.ExecContext(ctx, q, at, id)
	if err != nil {
		return classify("update user login", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return classify("update user login", err)
	}
	if rows == 0 {
		return apperrors.NotFound("user", id)
	}
	return nil
}

func (r *userRepository) UpdatePassword(ctx context.Context, id int64, hash string) error {
	q := `UPDATE users SET password_hash = $1, updated_at = NOW() WHERE id = $2`

	res, err := r.db.ExecContext(ctx, q, hash, id)
	if err != nil {
		return classify("update user password", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return classify("update user password", err)
	}
	if rows == 0 {
		return apperrors.NotFound("user", id)
	}
	return nil
}
