package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/risingbsm/bsm-api/internal/model"
	"github.com/risingbsm/bsm-api/internal/repository"
	apperrors "github.com/risingbsm/bsm-api/pkg/errors"
)

type tokenRepository struct {
	db *sqlx.DB
}

func NewTokenRepository(db *sqlx.DB) repository.TokenRepository {
	return &tokenRepository{db: db}
}

func (r *tokenRepository) Store(ctx context.Context, t *model.RefreshToken) error {
	q := `
		INSERT INTO refresh_tokens (token, user_id, expires_at)
		VALUES ($1, $2, $3)
	`

	if _, err := r.db.ExecContext(ctx, q, t.Token, t.UserID, t.ExpiresAt); err != nil {
		return classify("store refresh token", err)
	}
	return nil
}

func (r *tokenRepository) Find(ctx context.Context, token string) (*model.RefreshToken, error) {
	q := `SELECT * FROM refresh_tokens WHERE token = $1`

	var t model.RefreshToken
	if err := r.db.GetContext(ctx, &t, q, token); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, classify("find refresh token", err)
	}
	return &t, nil
}

func (r *tokenRepository) Revoke(ctx context.Context, token string) error {
	q := `UPDATE refresh_tokens SET revoked = TRUE WHERE token = $1`

	res, err := r.db.ExecContext(ctx, q, token)
	if err != nil {
		return classify("revoke refresh token", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return classify("revoke refresh token", err)
	}
	if rows == 0 {
		return apperrors.NotFoundMsg("refresh token not found")
	}
	return nil
}

func (r *tokenRepository) RevokeAllForUser(ctx context.Context, userID int64) error {
	q := `UPDATE refresh_tokens SET revoked = TRUE WHERE user_id = $1 AND revoked = FALSE`

	if _, err := r.db.ExecContext(ctx, q, userID); err != nil {
		return classify("revoke refresh tokens", err)
	}
	return nil
}

func (r *tokenRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	q := `DELETE FROM refresh_tokens WHERE expires_at < $1 OR revoked = TRUE`

	res, err := r.db.ExecContext(ctx, q, before)
	if err != nil {
		return 0, classify("purge refresh tokens", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return 0, classify("purge refresh tokens", err)
	}
	return rows, nil
}
