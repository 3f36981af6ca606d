package repository

import (
	"context"
	"errors"
	"fmt"

	"sportify-backoffice/internal/data/entity"
	"sportify-backoffice/pkg/database"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

const appointmentChangedChannel = "coach_appointments_changed"

type AppointmentRepository interface {
	PayableRepository

	FindByID(ctx context.Context, id string) (*entity.CoachAppointment, error)
	// ListWithProof returns appointments in any of statuses that carry a proof photo,
	// newest proof first.
	ListWithProof(ctx context.Context, statuses []entity.Status) ([]*entity.CoachAppointment, error)
	// Watch calls fn with the ListWithProof result now and after every change, until ctx ends.
	Watch(ctx context.Context, statuses []entity.Status, fn func([]*entity.CoachAppointment)) error
}

const appointmentColumns = `id, coach_id, coach_name, user_id, user_email, student_name, date, time_slot, end_time,
	duration, price, payment_amount, status, payment_status, payment_id, billplz_bill_id, paid_amount,
	paid_at, failed_at, transaction_details, last_callback_key, proof_photo_base64, proof_notes,
	proof_uploaded_at, verification_status, verified_at, verified_by, verification_notes,
	payment_released_to_coach, payment_released_at, coach_earnings, platform_fee, created_at, updated_at`

type appointmentRepository struct {
	db       database.PgxIface
	listener database.Listener
	log      *zap.Logger
}

func NewAppointmentRepository(db database.PgxIface, listener database.Listener, log *zap.Logger) AppointmentRepository {
	return &appointmentRepository{
		db:       db,
		listener: listener,
		log:      log.With(zap.String("repository", "coach_appointment")),
	}
}

func (r *appointmentRepository) FindByID(ctx context.Context, id string) (*entity.CoachAppointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM coach_appointments WHERE id = $1`

	rows, err := r.db.Query(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("find coach appointment %s: %w", id, err)
	}

	appt, err := pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[entity.CoachAppointment])
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find coach appointment by ID",
			zap.Error(err),
			zap.String("appointment_id", id),
		)
		return nil, fmt.Errorf("find coach appointment %s: %w", id, err)
	}
	if err := checkDecoded(r.log, id, appt); err != nil {
		return nil, err
	}

	return appt, nil
}

func (r *appointmentRepository) FindPayable(ctx context.Context, id string) (*entity.PaymentRecord, error) {
	appt, err := r.FindByID(ctx, id)
	if err != nil || appt == nil {
		return nil, err
	}
	return appt.PaymentRecord(), nil
}

func (r *appointmentRepository) UpdateIf(ctx context.Context, id string, cond entity.Condition, updates []entity.FieldUpdate) error {
	err := updateIfSQL(ctx, r.db, entity.CollectionCoachAppointments, id, cond, updates)
	if err != nil && !errors.Is(err, ErrConflict) && !errors.Is(err, ErrNotFound) {
		r.log.Error("Failed to update coach appointment",
			zap.Error(err),
			zap.String("appointment_id", id),
		)
	}
	return err
}

func (r *appointmentRepository) ListWithProof(ctx context.Context, statuses []entity.Status) ([]*entity.CoachAppointment, error) {
	query := `SELECT ` + appointmentColumns + `
		FROM coach_appointments
		WHERE status = ANY($1) AND COALESCE(proof_photo_base64, '') <> ''
		ORDER BY proof_uploaded_at DESC NULLS LAST, id`

	rows, err := r.db.Query(ctx, query, toStrings(statuses))
	if err != nil {
		r.log.Error("Failed to list appointments with proof", zap.Error(err))
		return nil, fmt.Errorf("list appointments with proof: %w", err)
	}

	appts, err := pgx.CollectRows(rows, pgx.RowToAddrOfStructByName[entity.CoachAppointment])
	if err != nil {
		return nil, fmt.Errorf("scan appointments with proof: %w", err)
	}
	for _, a := range appts {
		if err := checkDecoded(r.log, a.ID, a); err != nil {
			return nil, err
		}
	}
	return appts, nil
}

func (r *appointmentRepository) Watch(ctx context.Context, statuses []entity.Status, fn func([]*entity.CoachAppointment)) error {
	if r.listener == nil {
		return errors.New("watch coach appointments: no listener configured")
	}

	emit := func() error {
		appts, err := r.ListWithProof(ctx, statuses)
		if err != nil {
			return err
		}
		fn(appts)
		return nil
	}
	if err := emit(); err != nil {
		return err
	}

	var listErr error
	err := r.listener.Listen(ctx, appointmentChangedChannel, func(string) {
		if listErr != nil {
			return
		}
		if err := emit(); err != nil && ctx.Err() == nil {
			r.log.Warn("Failed to refresh watched appointments", zap.Error(err))
			listErr = err
		}
	})
	if err != nil {
		return err
	}
	return listErr
}
