package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/risingbsm/bsm-api/internal/query"
	"github.com/risingbsm/bsm-api/internal/repository"
	apperrors "github.com/risingbsm/bsm-api/pkg/errors"
)

// Meta describes the table behind a Store.
type Meta struct {
	// Table is the table name.
	Table string
	// Entity is the display name used in error messages.
	Entity string
	// Insert lists the columns written on create, as named parameters.
	Insert []string
	// Updatable whitelists columns accepted in update patches.
	Updatable map[string]bool
	// Sortable whitelists columns accepted in ORDER BY.
	Sortable map[string]bool
	// DefaultSort applies when no valid sort is requested.
	DefaultSort string
}

// Store provides the generic table operations every entity repository
// builds on. Rows are scanned into T via sqlx db tags.
type Store[T any] struct {
	db   *sqlx.DB
	meta Meta
}

// NewStore creates a store for one table.
func NewStore[T any](db *sqlx.DB, meta Meta) *Store[T] {
	if meta.DefaultSort == "" {
		meta.DefaultSort = "id DESC"
	}
	return &Store[T]{db: db, meta: meta}
}

// DB returns the database instance
func (s *Store[T]) DB() *sqlx.DB {
	return s.db
}

// FindAll runs a count plus a paginated, sorted select for the given
// criteria. The returned slice never exceeds the normalized limit.
func (s *Store[T]) FindAll(ctx context.Context, cr *query.Criteria, opts query.Options) (*query.Result[T], error) {
	opts = opts.Normalized()
	where, args := compileCriteria(cr)

	countQuery := "SELECT COUNT(*) FROM " + s.meta.Table
	if where != "" {
		countQuery += " WHERE " + where
	}

	var total int64
	if err := s.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, classify("count "+s.meta.Entity, err)
	}

	selectQuery := "SELECT * FROM " + s.meta.Table
	if where != "" {
		selectQuery += " WHERE " + where
	}
	selectQuery += " ORDER BY " + orderBy(opts.Sort, s.meta.Sortable, s.meta.DefaultSort)
	selectQuery += limitOffset(len(args))
	args = append(args, opts.Limit, opts.Offset())

	rows := []T{}
	if err := s.db.SelectContext(ctx, &rows, selectQuery, args...); err != nil {
		return nil, classify("list "+s.meta.Entity, err)
	}

	return query.NewResult(rows, query.NewPagination(opts.Page, opts.Limit, total)), nil
}

// FindByID returns the row, or nil when it does not exist.
func (s *Store[T]) FindByID(ctx context.Context, id int64) (*T, error) {
	q := fmt.Sprintf("SELECT * FROM %s WHERE id = $1", s.meta.Table)

	var row T
	if err := s.db.GetContext(ctx, &row, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, classify("get "+s.meta.Entity, err)
	}
	return &row, nil
}

// FindByIDOrFail returns the row or a NotFound error naming the entity.
func (s *Store[T]) FindByIDOrFail(ctx context.Context, id int64) (*T, error) {
	row, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, apperrors.NotFound(s.meta.Entity, id)
	}
	return row, nil
}

// FindOne returns the first match in default sort order, or nil.
func (s *Store[T]) FindOne(ctx context.Context, cr *query.Criteria) (*T, error) {
	where, args := compileCriteria(cr)

	q := "SELECT * FROM " + s.meta.Table
	if where != "" {
		q += " WHERE " + where
	}
	q += " ORDER BY " + s.meta.DefaultSort + " LIMIT 1"

	var row T
	if err := s.db.GetContext(ctx, &row, q, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, classify("find "+s.meta.Entity, err)
	}
	return &row, nil
}

// Create inserts the entity and returns the stored row, including
// database-assigned id and timestamps.
func (s *Store[T]) Create(ctx context.Context, entity *T) (*T, error) {
	rows, err := sqlx.NamedQueryContext(ctx, s.db, s.insertQuery(), entity)
	if err != nil {
		return nil, classify("create "+s.meta.Entity, err)
	}
	defer rows.Close()

	return s.scanOne(rows, "create")
}

// CreateTx is Create inside a caller-managed transaction.
func (s *Store[T]) CreateTx(ctx context.Context, tx *sqlx.Tx, entity *T) (*T, error) {
	rows, err := sqlx.NamedQueryContext(ctx, tx, s.insertQuery(), entity)
	if err != nil {
		return nil, classify("create "+s.meta.Entity, err)
	}
	defer rows.Close()

	return s.scanOne(rows, "create")
}

func (s *Store[T]) insertQuery() string {
	cols := strings.Join(s.meta.Insert, ", ")
	params := ":" + strings.Join(s.meta.Insert, ", :")
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING *", s.meta.Table, cols, params)
}

func (s *Store[T]) scanOne(rows *sqlx.Rows, operation string) (*T, error) {
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, classify(operation+" "+s.meta.Entity, err)
		}
		return nil, apperrors.Database(operation+" "+s.meta.Entity, sql.ErrNoRows)
	}
	var row T
	if err := rows.StructScan(&row); err != nil {
		return nil, classify(operation+" "+s.meta.Entity, err)
	}
	return &row, nil
}

// Update applies a whitelisted patch and returns the updated row. A
// missing id surfaces as NotFound: before the write when CheckExists
// is set, otherwise from the empty RETURNING result.
func (s *Store[T]) Update(ctx context.Context, id int64, patch map[string]interface{}, opts repository.UpdateOptions) (*T, error) {
	if opts.CheckExists {
		if _, err := s.FindByIDOrFail(ctx, id); err != nil {
			return nil, err
		}
	}

	keys := make([]string, 0, len(patch))
	for k := range patch {
		if s.meta.Updatable[k] {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		return s.FindByIDOrFail(ctx, id)
	}
	sort.Strings(keys)

	set := make([]string, 0, len(keys)+1)
	args := make([]interface{}, 0, len(keys)+1)
	for _, k := range keys {
		args = append(args, patch[k])
		set = append(set, fmt.Sprintf("%s = $%d", k, len(args)))
	}
	set = append(set, "updated_at = NOW()")
	args = append(args, id)

	q := fmt.Sprintf("UPDATE %s SET %s WHERE id = $%d RETURNING *",
		s.meta.Table, strings.Join(set, ", "), len(args))

	var row T
	if err := s.db.GetContext(ctx, &row, q, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound(s.meta.Entity, id)
		}
		return nil, classify("update "+s.meta.Entity, err)
	}
	return &row, nil
}

// UpdateMany applies a patch to every existing id and returns the
// matched-row count. Missing ids are skipped silently.
func (s *Store[T]) UpdateMany(ctx context.Context, ids []int64, patch map[string]interface{}) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	keys := make([]string, 0, len(patch))
	for k := range patch {
		if s.meta.Updatable[k] {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		return 0, nil
	}
	sort.Strings(keys)

	set := make([]string, 0, len(keys)+1)
	args := make([]interface{}, 0, len(keys)+len(ids))
	for _, k := range keys {
		args = append(args, patch[k])
		set = append(set, fmt.Sprintf("%s = $%d", k, len(args)))
	}
	set = append(set, "updated_at = NOW()")

	placeholders := make([]string, len(ids))
	for i, id := range ids {
		args = append(args, id)
		placeholders[i] = fmt.Sprintf("$%d", len(args))
	}

	q := fmt.Sprintf("UPDATE %s SET %s WHERE id IN (%s)",
		s.meta.Table, strings.Join(set, ", "), strings.Join(placeholders, ", "))

	res, err := s.db.ExecContext(ctx, q, args...)
	if err != nil {
		return 0, classify("bulk update "+s.meta.Entity, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, classify("bulk update "+s.meta.Entity, err)
	}
	return affected, nil
}

// Delete physically removes the row. Soft deletion is a status patch
// and belongs to the caller.
func (s *Store[T]) Delete(ctx context.Context, id int64, opts repository.DeleteOptions) error {
	if opts.CheckExists {
		if _, err := s.FindByIDOrFail(ctx, id); err != nil {
			return err
		}
	}

	q := fmt.Sprintf("DELETE FROM %s WHERE id = $1", s.meta.Table)
	res, err := s.db.ExecContext(ctx, q, id)
	if err != nil {
		return classify("delete "+s.meta.Entity, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return classify("delete "+s.meta.Entity, err)
	}
	if affected == 0 {
		return apperrors.NotFound(s.meta.Entity, id)
	}
	return nil
}

// Count returns the number of rows matching the criteria.
func (s *Store[T]) Count(ctx context.Context, cr *query.Criteria) (int64, error) {
	where, args := compileCriteria(cr)

	q := "SELECT COUNT(*) FROM " + s.meta.Table
	if where != "" {
		q += " WHERE " + where
	}

	var total int64
	if err := s.db.GetContext(ctx, &total, q, args...); err != nil {
		return 0, classify("count "+s.meta.Entity, err)
	}
	return total, nil
}

// CountBy groups matching rows by one column, for the stats endpoints.
func (s *Store[T]) CountBy(ctx context.Context, column string, cr *query.Criteria) (map[string]int64, error) {
	where, args := compileCriteria(cr)

	q := fmt.Sprintf("SELECT %s AS value, COUNT(*) AS count FROM %s", column, s.meta.Table)
	if where != "" {
		q += " WHERE " + where
	}
	q += fmt.Sprintf(" GROUP BY %s", column)

	var rows []struct {
		Value string `db:"value"`
		Count int64  `db:"count"`
	}
	if err := s.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, classify("count "+s.meta.Entity, err)
	}

	out := make(map[string]int64, len(rows))
	for _, r := range rows {
		out[r.Value] = r.Count
	}
	return out, nil
}

// WithTx executes a function within a transaction
func (s *Store[T]) WithTx(ctx context.Context, fn func(*sqlx.Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit()
}
