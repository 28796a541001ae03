package postgres

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/risingbsm/bsm-api/internal/model"
	"github.com/risingbsm/bsm-api/internal/query"
	"github.com/risingbsm/bsm-api/internal/repository"
)

type customerRepository struct {
	*Store[model.Customer]
}

func NewCustomerRepository(db *sqlx.DB) repository.CustomerRepository {
	return &customerRepository{
		Store: NewStore[model.Customer](db, Meta{
			Table:  "customers",
			Entity: "customer",
			Insert: []string{
				"name", "email", "phone", "company", "address",
				"city", "postal_code", "country", "newsletter", "status",
			},
			Updatable: map[string]bool{
				"name": true, "email": true, "phone": true, "company": true,
				"address": true, "city": true, "postal_code": true,
				"country": true, "newsletter": true, "status": true,
			},
			Sortable: map[string]bool{
				"id": true, "name": true, "email": true, "city": true,
				"country": true, "status": true, "created_at": true, "updated_at": true,
			},
			DefaultSort: "created_at DESC",
		}),
	}
}

// buildCriteria translates the typed filter. Soft-deleted rows are
// excluded unless the caller pins a status or asks for them.
func (r *customerRepository) buildCriteria(f *model.CustomerFilter, includeDeleted bool) *query.Criteria {
	cr := query.New()
	if f == nil {
		if !includeDeleted {
			cr.NotEq("status", model.CustomerStatusDeleted)
		}
		return cr
	}

	if f.Status != "" {
		cr.Eq("status", f.Status)
	} else if !includeDeleted {
		cr.NotEq("status", model.CustomerStatusDeleted)
	}
	if f.Search != "" {
		cr.Search(f.Search, "name", "email", "phone", "company")
	}
	if f.City != "" {
		cr.Contains("city", f.City)
	}
	if f.Country != "" {
		cr.Eq("country", f.Country)
	}
	if f.Newsletter != nil {
		cr.Eq("newsletter", *f.Newsletter)
	}
	return cr
}

func (r *customerRepository) List(ctx context.Context, f *model.CustomerFilter, opts query.Options) (*query.Result[model.Customer], error) {
	return r.FindAll(ctx, r.buildCriteria(f, opts.IncludeDeleted), opts)
}

func (r *customerRepository) Get(ctx context.Context, id int64) (*model.Customer, error) {
	return r.FindByID(ctx, id)
}

func (r *customerRepository) GetOrFail(ctx context.Context, id int64) (*model.Customer, error) {
	return r.FindByIDOrFail(ctx, id)
}

func (r *customerRepository) Count(ctx context.Context, f *model.CustomerFilter) (int64, error) {
	return r.Store.Count(ctx, r.buildCriteria(f, false))
}

func (r *customerRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	return r.CountBy(ctx, "status", query.New())
}

func (r *customerRepository) AddNote(ctx context.Context, note *model.CustomerNote) (*model.CustomerNote, error) {
	q := `
		INSERT INTO customer_notes (customer_id, user_id, user_name, content)
		VALUES ($1, $2, $3, $4)
		RETURNING *
	`

	var created model.CustomerNote
	if err := r.db.GetContext(ctx, &created, q, note.CustomerID, note.UserID, note.UserName, note.Content); err != nil {
		return nil, classify("create customer note", err)
	}
	return &created, nil
}

func (r *customerRepository) ListNotes(ctx context.Context, customerID int64) ([]model.CustomerNote, error) {
	q := `
		SELECT * FROM customer_notes
		WHERE customer_id = $1
		ORDER BY created_at DESC
	`

	notes := []model.CustomerNote{}
	if err := r.db.SelectContext(ctx, &notes, q, customerID); err != nil {
		return nil, classify("list customer notes", err)
	}
	return notes, nil
}
