package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"sportify-backoffice/internal/data/entity"
	"sportify-backoffice/pkg/database"

	"cloud.google.com/go/firestore"
	"go.uber.org/zap"
)

var (
	ErrNotFound = errors.New("record not found")
	// ErrConflict means the record no longer satisfies the update condition.
	ErrConflict = errors.New("record changed")
)

// PayableRepository is what the callback processor needs from either record collection.
type PayableRepository interface {
	FindPayable(ctx context.Context, id string) (*entity.PaymentRecord, error)
	UpdateIf(ctx context.Context, id string, cond entity.Condition, updates []entity.FieldUpdate) error
}

type Repository struct {
	Booking      BookingRepository
	Appointment  AppointmentRepository
	Notification NotificationRepository
	Admin        AdminRepository
}

// Payable returns the repository backing the collection of the given kind.
func (r *Repository) Payable(kind entity.RecordKind) PayableRepository {
	if kind == entity.KindCourt {
		return r.Booking
	}
	return r.Appointment
}

// NewRepository builds the PostgreSQL-backed store.
func NewRepository(db database.PgxIface, listener database.Listener, log *zap.Logger) *Repository {
	return &Repository{
		Booking:      NewBookingRepository(db, log),
		Appointment:  NewAppointmentRepository(db, listener, log),
		Notification: NewNotificationRepository(db, log),
		Admin:        NewAdminRepository(db, log),
	}
}

// NewFirestoreRepository builds the Firestore-backed store.
func NewFirestoreRepository(client *firestore.Client, log *zap.Logger) *Repository {
	return &Repository{
		Booking:      NewBookingFirestore(client, log),
		Appointment:  NewAppointmentFirestore(client, log),
		Notification: NewNotificationFirestore(client, log),
		Admin:        NewAdminFirestore(client, log),
	}
}

// checkDecoded logs and rejects a decoded record carrying an unknown status.
func checkDecoded(log *zap.Logger, id string, record interface{ Validate() error }) error {
	if err := record.Validate(); err != nil {
		log.Error("Rejected record with unknown status",
			zap.Error(err),
			zap.String("record_id", id),
		)
		return fmt.Errorf("decode %s: %w", id, err)
	}
	return nil
}

func toStrings[T ~string](values []T) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return out
}

// conditionalUpdateSQL renders a single-row UPDATE guarded by cond. $1 is the record id.
func conditionalUpdateSQL(table string, id string, cond entity.Condition, updates []entity.FieldUpdate) (string, []any) {
	args := []any{id}
	sets := make([]string, 0, len(updates))
	for _, u := range updates {
		args = append(args, u.Value)
		sets = append(sets, fmt.Sprintf("%s = $%d", u.Column, len(args)))
	}

	where := []string{"id = $1"}
	if len(cond.StatusIn) > 0 {
		args = append(args, toStrings(cond.StatusIn))
		where = append(where, fmt.Sprintf("status = ANY($%d)", len(args)))
	}
	if len(cond.PaymentStatusIn) > 0 {
		args = append(args, toStrings(cond.PaymentStatusIn))
		where = append(where, fmt.Sprintf("payment_status = ANY($%d)", len(args)))
	}
	if cond.CallbackKeyNot != "" {
		args = append(args, cond.CallbackKeyNot)
		where = append(where, fmt.Sprintf("last_callback_key <> $%d", len(args)))
	}
	if cond.PayoutPending {
		where = append(where, "NOT payment_released_to_coach")
	}

	query := fmt.Sprintf("UPDATE %s SET %s WHERE %s", table, strings.Join(sets, ", "), strings.Join(where, " AND "))
	return query, args
}

// updateIfSQL runs the guarded update and tells a missing row apart from a failed condition.
func updateIfSQL(ctx context.Context, db database.PgxIface, table, id string, cond entity.Condition, updates []entity.FieldUpdate) error {
	query, args := conditionalUpdateSQL(table, id, cond, updates)
	tag, err := db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update %s %s: %w", table, id, err)
	}
	if tag.RowsAffected() == 1 {
		return nil
	}

	var exists bool
	err = db.QueryRow(ctx, fmt.Sprintf("SELECT EXISTS (SELECT 1 FROM %s WHERE id = $1)", table), id).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check %s %s: %w", table, id, err)
	}
	if !exists {
		return ErrNotFound
	}
	return ErrConflict
}
