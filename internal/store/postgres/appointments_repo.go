package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/uptrace/bun"

	"apptmed/backend/internal/domain"
	"apptmed/backend/internal/store"
)

// AppointmentRepo persists engine state to postgres. It implements
// store.AppointmentStore.
type AppointmentRepo struct {
	db *bun.DB
}

func NewAppointmentRepo(db *bun.DB) *AppointmentRepo {
	return &AppointmentRepo{db: db}
}

type appointmentRow struct {
	bun.BaseModel `bun:"table:appointments"`

	ID          uuid.UUID `bun:"id,pk,type:uuid"`
	Title       string    `bun:"title,notnull"`
	Description string    `bun:"description"`
	StartTime   time.Time `bun:"start_time,notnull"`
	EndTime     time.Time `bun:"end_time,notnull"`
	Status      string    `bun:"status,notnull"`
	Type        string    `bun:"type,notnull"`
	Location    string    `bun:"location"`
	Notes       string    `bun:"notes"`

	ClientID     uuid.UUID `bun:"client_id,notnull,type:uuid"`
	ClientName   string    `bun:"client_name"`
	ClientEmail  string    `bun:"client_email"`
	ClientRole   string    `bun:"client_role"`
	ClientAvatar string    `bun:"client_avatar"`

	StaffID     *uuid.UUID `bun:"staff_id,type:uuid"`
	StaffName   string     `bun:"staff_name"`
	StaffEmail  string     `bun:"staff_email"`
	StaffRole   string     `bun:"staff_role"`
	StaffAvatar string     `bun:"staff_avatar"`

	Clients           []domain.Participant `bun:"clients,type:jsonb"`
	RecurrencePattern string               `bun:"recurrence_pattern"`

	CreatedAt time.Time `bun:"created_at,notnull"`
	UpdatedAt time.Time `bun:"updated_at,notnull"`
}

func (r *appointmentRow) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	now := time.Now().UTC()
	switch query.(type) {
	case *bun.InsertQuery:
		if r.CreatedAt.IsZero() {
			r.CreatedAt = now
		}
		if r.UpdatedAt.IsZero() {
			r.UpdatedAt = now
		}
	case *bun.UpdateQuery:
		r.UpdatedAt = now
	}
	return nil
}

func (r *AppointmentRepo) Upsert(ctx context.Context, appt domain.Appointment) (domain.Appointment, error) {
	row := toRow(appt)
	_, err := r.db.NewInsert().
		Model(&row).
		On("CONFLICT (id) DO UPDATE").
		Set("title = EXCLUDED.title").
		Set("description = EXCLUDED.description").
		Set("start_time = EXCLUDED.start_time").
		Set("end_time = EXCLUDED.end_time").
		Set("status = EXCLUDED.status").
		Set("location = EXCLUDED.location").
		Set("notes = EXCLUDED.notes").
		Set("staff_id = EXCLUDED.staff_id").
		Set("staff_name = EXCLUDED.staff_name").
		Set("staff_email = EXCLUDED.staff_email").
		Set("staff_role = EXCLUDED.staff_role").
		Set("staff_avatar = EXCLUDED.staff_avatar").
		Set("clients = EXCLUDED.clients").
		Set("recurrence_pattern = EXCLUDED.recurrence_pattern").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23P01" && pgErr.ConstraintName == "appointments_no_overlap" {
			return domain.Appointment{}, store.ErrConflict
		}
		return domain.Appointment{}, err
	}
	return fromRow(row), nil
}

func (r *AppointmentRepo) FetchAll(ctx context.Context) ([]domain.Appointment, error) {
	var rows []appointmentRow
	err := r.db.NewSelect().
		Model(&rows).
		OrderExpr("start_time ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]domain.Appointment, len(rows))
	for i, row := range rows {
		out[i] = fromRow(row)
	}
	return out, nil
}

func toRow(appt domain.Appointment) appointmentRow {
	row := appointmentRow{
		ID:                appt.ID,
		Title:             appt.Title,
		Description:       appt.Description,
		StartTime:         appt.StartTime.UTC(),
		EndTime:           appt.EndTime.UTC(),
		Status:            string(appt.Status),
		Type:              string(appt.Type),
		Location:          appt.Location,
		Notes:             appt.Notes,
		ClientID:          appt.Client.ID,
		ClientName:        appt.Client.Name,
		ClientEmail:       appt.Client.Email,
		ClientRole:        string(appt.Client.Role),
		ClientAvatar:      appt.Client.Avatar,
		Clients:           appt.Clients,
		RecurrencePattern: appt.RecurrencePattern,
		CreatedAt:         appt.CreatedAt,
		UpdatedAt:         appt.UpdatedAt,
	}
	if appt.Staff != nil {
		staffID := appt.Staff.ID
		row.StaffID = &staffID
		row.StaffName = appt.Staff.Name
		row.StaffEmail = appt.Staff.Email
		row.StaffRole = string(appt.Staff.Role)
		row.StaffAvatar = appt.Staff.Avatar
	}
	return row
}

func fromRow(row appointmentRow) domain.Appointment {
	appt := domain.Appointment{
		ID:          row.ID,
		Title:       row.Title,
		Description: row.Description,
		StartTime:   row.StartTime,
		EndTime:     row.EndTime,
		Status:      domain.AppointmentStatus(row.Status),
		Type:        domain.AppointmentType(row.Type),
		Location:    row.Location,
		Notes:       row.Notes,
		Client: domain.Participant{
			ID:     row.ClientID,
			Name:   row.ClientName,
			Email:  row.ClientEmail,
			Role:   domain.Role(row.ClientRole),
			Avatar: row.ClientAvatar,
		},
		Clients:           row.Clients,
		RecurrencePattern: row.RecurrencePattern,
		CreatedAt:         row.CreatedAt,
		UpdatedAt:         row.UpdatedAt,
	}
	if row.StaffID != nil {
		appt.Staff = &domain.Participant{
			ID:     *row.StaffID,
			Name:   row.StaffName,
			Email:  row.StaffEmail,
			Role:   domain.Role(row.StaffRole),
			Avatar: row.StaffAvatar,
		}
	}
	return appt
}
