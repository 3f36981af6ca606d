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

type EscrowFilter string

const (
	EscrowAll      EscrowFilter = "all"
	EscrowHeld     EscrowFilter = "held"
	EscrowReleased EscrowFilter = "released"
)

// PaymentTotal aggregates bookings sharing one payment status.
type PaymentTotal struct {
	PaymentStatus entity.PaymentStatus
	Count         int64
	Amount        float64
}

type BookingRepository interface {
	PayableRepository

	FindByID(ctx context.Context, id string) (*entity.Booking, error)
	ListEscrow(ctx context.Context, filter EscrowFilter, limit, offset int) ([]*entity.Booking, int64, error)
	PaymentTotals(ctx context.Context) ([]PaymentTotal, error)
}

const bookingColumns = `id, booking_type, date, time_slot, end_time, total_price, venue_name, venue_owner_id,
	user_id, user_name, user_email, court_name, court_number, status, payment_status,
	payment_id, billplz_bill_id, paid_amount, paid_at, failed_at, transaction_details, last_callback_key,
	released_at, released_by, refunded_at, refunded_by, refund_request_rejected, refund_rejected_at,
	refund_rejected_by, created_at, updated_at`

type bookingRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewBookingRepository(db database.PgxIface, log *zap.Logger) BookingRepository {
	return &bookingRepository{
		db:  db,
		log: log.With(zap.String("repository", "booking")),
	}
}

func (r *bookingRepository) FindByID(ctx context.Context, id string) (*entity.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`

	rows, err := r.db.Query(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("find booking %s: %w", id, err)
	}

	booking, err := pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[entity.Booking])
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find booking by ID",
			zap.Error(err),
			zap.String("booking_id", id),
		)
		return nil, fmt.Errorf("find booking %s: %w", id, err)
	}
	if err := checkDecoded(r.log, id, booking); err != nil {
		return nil, err
	}

	return booking, nil
}

func (r *bookingRepository) FindPayable(ctx context.Context, id string) (*entity.PaymentRecord, error) {
	booking, err := r.FindByID(ctx, id)
	if err != nil || booking == nil {
		return nil, err
	}
	return booking.PaymentRecord(), nil
}

func (r *bookingRepository) UpdateIf(ctx context.Context, id string, cond entity.Condition, updates []entity.FieldUpdate) error {
	err := updateIfSQL(ctx, r.db, entity.CollectionBookings, id, cond, updates)
	if err != nil && !errors.Is(err, ErrConflict) && !errors.Is(err, ErrNotFound) {
		r.log.Error("Failed to update booking",
			zap.Error(err),
			zap.String("booking_id", id),
		)
	}
	return err
}

// escrowWhere limits the ledger to court bookings; coach payouts go through session verification.
func escrowWhere(filter EscrowFilter) (string, []any) {
	court := string(entity.KindCourt)
	held := toStrings(entity.HeldPaymentStatuses)
	switch filter {
	case EscrowHeld:
		return "booking_type = $1 AND payment_status = ANY($2)", []any{court, held}
	case EscrowReleased:
		return "booking_type = $1 AND payment_status = $2", []any{court, string(entity.PaymentReleasedToVenue)}
	default:
		statuses := append(held, string(entity.PaymentReleasedToVenue))
		return "booking_type = $1 AND (payment_status = ANY($2) OR status = $3)",
			[]any{court, statuses, string(entity.StatusRefundRequested)}
	}
}

func (r *bookingRepository) ListEscrow(ctx context.Context, filter EscrowFilter, limit, offset int) ([]*entity.Booking, int64, error) {
	where, args := escrowWhere(filter)

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM bookings WHERE `+where, args...).Scan(&total); err != nil {
		r.log.Error("Failed to count escrow bookings", zap.Error(err), zap.String("filter", string(filter)))
		return nil, 0, fmt.Errorf("count escrow bookings: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM bookings WHERE %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		bookingColumns, where, len(args)+1, len(args)+2)
	rows, err := r.db.Query(ctx, query, append(args, limit, offset)...)
	if err != nil {
		r.log.Error("Failed to list escrow bookings", zap.Error(err), zap.String("filter", string(filter)))
		return nil, 0, fmt.Errorf("list escrow bookings: %w", err)
	}

	bookings, err := pgx.CollectRows(rows, pgx.RowToAddrOfStructByName[entity.Booking])
	if err != nil {
		return nil, 0, fmt.Errorf("scan escrow bookings: %w", err)
	}
	for _, b := range bookings {
		if err := checkDecoded(r.log, b.ID, b); err != nil {
			return nil, 0, err
		}
	}

	return bookings, total, nil
}

func (r *bookingRepository) PaymentTotals(ctx context.Context) ([]PaymentTotal, error) {
	query := `
		SELECT payment_status, COUNT(*), COALESCE(SUM(total_price), 0)::float8
		FROM bookings
		WHERE booking_type = $1 AND payment_status = ANY($2)
		GROUP BY payment_status
	`
	tracked := append(toStrings(entity.HeldPaymentStatuses),
		string(entity.PaymentReleasedToVenue), string(entity.PaymentRefunded))

	rows, err := r.db.Query(ctx, query, string(entity.KindCourt), tracked)
	if err != nil {
		r.log.Error("Failed to sum bookings by payment status", zap.Error(err))
		return nil, fmt.Errorf("sum bookings by payment status: %w", err)
	}
	defer rows.Close()

	var totals []PaymentTotal
	for rows.Next() {
		var t PaymentTotal
		if err := rows.Scan(&t.PaymentStatus, &t.Count, &t.Amount); err != nil {
			return nil, fmt.Errorf("scan payment total: %w", err)
		}
		totals = append(totals, t)
	}

	return totals, rows.Err()
}
