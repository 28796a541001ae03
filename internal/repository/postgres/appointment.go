package postgres

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/risingbsm/bsm-api/internal/model"
	"github.com/risingbsm/bsm-api/internal/query"
	"github.com/risingbsm/bsm-api/internal/repository"
)

// appointmentMeta is shared with the request repository, which
// creates appointments during conversion.
var appointmentMeta = Meta{
	Table:  "appointments",
	Entity: "appointment",
	Insert: []string{
		"title", "customer_id", "appointment_date", "duration",
		"location", "description", "status",
	},
	Updatable: map[string]bool{
		"title": true, "customer_id": true, "appointment_date": true,
		"duration": true, "location": true, "description": true, "status": true,
	},
	Sortable: map[string]bool{
		"id": true, "title": true, "appointment_date": true,
		"status": true, "created_at": true, "updated_at": true,
	},
	DefaultSort: "appointment_date ASC",
}

type appointmentRepository struct {
	*Store[model.Appointment]
}

func NewAppointmentRepository(db *sqlx.DB) repository.AppointmentRepository {
	return &appointmentRepository{
		Store: NewStore[model.Appointment](db, appointmentMeta),
	}
}

func (r *appointmentRepository) buildCriteria(f *model.AppointmentFilter, now time.Time) *query.Criteria {
	cr := query.New()
	if f == nil {
		return cr
	}

	if f.Status != "" {
		cr.Eq("status", f.Status)
	}
	if f.Search != "" {
		cr.Search(f.Search, "title", "location", "description")
	}
	if f.CustomerID != nil {
		cr.Eq("customer_id", *f.CustomerID)
	}
	if f.From != nil {
		cr.Gte("appointment_date", *f.From)
	}
	if f.To != nil {
		cr.Lte("appointment_date", *f.To)
	}
	if f.Upcoming && f.From == nil {
		cr.Gte("appointment_date", now)
	}
	return cr
}

func (r *appointmentRepository) List(ctx context.Context, f *model.AppointmentFilter, opts query.Options) (*query.Result[model.Appointment], error) {
	return r.FindAll(ctx, r.buildCriteria(f, time.Now()), opts)
}

func (r *appointmentRepository) Get(ctx context.Context, id int64) (*model.Appointment, error) {
	return r.FindByID(ctx, id)
}

func (r *appointmentRepository) GetOrFail(ctx context.Context, id int64) (*model.Appointment, error) {
	return r.FindByIDOrFail(ctx, id)
}

func (r *appointmentRepository) Count(ctx context.Context, f *model.AppointmentFilter) (int64, error) {
	return r.Store.Count(ctx, r.buildCriteria(f, time.Now()))
}

func (r *appointmentRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	return r.CountBy(ctx, "status", query.New())
}

func (r *appointmentRepository) AddNote(ctx context.Context, note *model.AppointmentNote) (*model.AppointmentNote, error) {
	q := `
		INSERT INTO appointment_notes (appointment_id, user_id, user_name, content)
		VALUES ($1, $2, $3, $4)
		RETURNING *
	`

	var created model.AppointmentNote
	if err := r.db.GetContext(ctx, &created, q, note.AppointmentID, note.UserID, note.UserName, note.Content); err != nil {
		return nil, classify("create appointment note", err)
	}
	return &created, nil
}

func (r *appointmentRepository) ListNotes(ctx context.Context, appointmentID int64) ([]model.AppointmentNote, error) {
	q := `
		SELECT * FROM appointment_notes
		WHERE appointment_id = $1
		ORDER BY created_at DESC
	`

	notes := []model.AppointmentNote{}
	if err := r.db.SelectContext(ctx, &notes, q, appointmentID); err != nil {
		return nil, classify("list appointment notes", err)
	}
	return notes, nil
}

func (r *appointmentRepository) ListUpcoming(ctx context.Context, from time.Time, limit int) ([]model.Appointment, error) {
	q := `
		SELECT * FROM appointments
		WHERE appointment_date >= $1 AND status IN ($2, $3)
		ORDER BY appointment_date ASC
		LIMIT $4
	`

	rows := []model.Appointment{}
	err := r.db.SelectContext(ctx, &rows, q, from,
		model.AppointmentStatusPlanned, model.AppointmentStatusConfirmed, limit)
	if err != nil {
		return nil, classify("list appointment", err)
	}
	return rows, nil
}
