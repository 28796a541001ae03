package postgres

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/risingbsm/bsm-api/internal/model"
	"github.com/risingbsm/bsm-api/internal/query"
	"github.com/risingbsm/bsm-api/internal/repository"
	apperrors "github.com/risingbsm/bsm-api/pkg/errors"
)

type requestRepository struct {
	*Store[model.Request]
	appointments *Store[model.Appointment]
}

func NewRequestRepository(db *sqlx.DB) repository.RequestRepository {
	return &requestRepository{
		Store: NewStore[model.Request](db, Meta{
			Table:  "requests",
			Entity: "request",
			Insert: []string{
				"name", "email", "phone", "service", "message",
				"customer_id", "processor_id", "appointment_id", "status",
			},
			Updatable: map[string]bool{
				"name": true, "email": true, "phone": true, "service": true,
				"message": true, "customer_id": true, "processor_id": true,
				"appointment_id": true, "status": true,
			},
			Sortable: map[string]bool{
				"id": true, "name": true, "email": true, "service": true,
				"status": true, "created_at": true, "updated_at": true,
			},
			DefaultSort: "created_at DESC",
		}),
		appointments: NewStore[model.Appointment](db, appointmentMeta),
	}
}

func (r *requestRepository) buildCriteria(f *model.RequestFilter) *query.Criteria {
	cr := query.New()
	if f == nil {
		return cr
	}

	if f.Status != "" {
		cr.Eq("status", f.Status)
	}
	if f.Search != "" {
		cr.Search(f.Search, "name", "email", "service", "message")
	}
	if f.ProcessorID != nil {
		cr.Eq("processor_id", *f.ProcessorID)
	}
	if f.CustomerID != nil {
		cr.Eq("customer_id", *f.CustomerID)
	}
	return cr
}

func (r *requestRepository) List(ctx context.Context, f *model.RequestFilter, opts query.Options) (*query.Result[model.Request], error) {
	cr := r.buildCriteria(f)
	if f != nil && f.Unassigned {
		// processor_id IS NULL has no criteria op; keep it out of the DSL
		return r.listUnassigned(ctx, cr, opts)
	}
	return r.FindAll(ctx, cr, opts)
}

// listUnassigned narrows any criteria to rows without a processor.
func (r *requestRepository) listUnassigned(ctx context.Context, cr *query.Criteria, opts query.Options) (*query.Result[model.Request], error) {
	opts = opts.Normalized()
	where, args := compileCriteria(cr)
	null := "processor_id IS NULL"
	if where != "" {
		where += " AND " + null
	} else {
		where = null
	}

	var total int64
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM requests WHERE "+where, args...); err != nil {
		return nil, classify("count request", err)
	}

	q := "SELECT * FROM requests WHERE " + where +
		" ORDER BY " + orderBy(opts.Sort, r.meta.Sortable, r.meta.DefaultSort) +
		limitOffset(len(args))
	args = append(args, opts.Limit, opts.Offset())

	rows := []model.Request{}
	if err := r.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, classify("list request", err)
	}
	return query.NewResult(rows, query.NewPagination(opts.Page, opts.Limit, total)), nil
}

func (r *requestRepository) Get(ctx context.Context, id int64) (*model.Request, error) {
	return r.FindByID(ctx, id)
}

func (r *requestRepository) GetOrFail(ctx context.Context, id int64) (*model.Request, error) {
	return r.FindByIDOrFail(ctx, id)
}

func (r *requestRepository) Count(ctx context.Context, f *model.RequestFilter) (int64, error) {
	return r.Store.Count(ctx, r.buildCriteria(f))
}

func (r *requestRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	return r.CountBy(ctx, "status", query.New())
}

func (r *requestRepository) AddNote(ctx context.Context, note *model.RequestNote) (*model.RequestNote, error) {
	q := `
		INSERT INTO request_notes (request_id, user_id, user_name, content)
		VALUES ($1, $2, $3, $4)
		RETURNING *
	`

	var created model.RequestNote
	if err := r.db.GetContext(ctx, &created, q, note.RequestID, note.UserID, note.UserName, note.Content); err != nil {
		return nil, classify("create request note", err)
	}
	return &created, nil
}

func (r *requestRepository) ListNotes(ctx context.Context, requestID int64) ([]model.RequestNote, error) {
	q := `
		SELECT * FROM request_notes
		WHERE request_id = $1
		ORDER BY created_at DESC
	`

	notes := []model.RequestNote{}
	if err := r.db.SelectContext(ctx, &notes, q, requestID); err != nil {
		return nil, classify("list request notes", err)
	}
	return notes, nil
}

// ConvertToAppointment creates the appointment, links it to the
// request and moves the request to in_progress, atomically.
func (r *requestRepository) ConvertToAppointment(ctx context.Context, requestID int64, appt *model.Appointment) (*model.Appointment, error) {
	var created *model.Appointment

	err := r.WithTx(ctx, func(tx *sqlx.Tx) error {
		var err error
		created, err = r.appointments.CreateTx(ctx, tx, appt)
		if err != nil {
			return err
		}

		q := `
			UPDATE requests SET
				appointment_id = $1,
				status = $2,
				updated_at = NOW()
			WHERE id = $3
		`
		res, err := tx.ExecContext(ctx, q, created.ID, model.RequestStatusInProgress, requestID)
		if err != nil {
			return classify("convert request", err)
		}
		rows, err := res.RowsAffected()
		if err != nil {
			return classify("convert request", err)
		}
		if rows == 0 {
			return apperrors.NotFound("request", requestID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}
