package repository

import (
	"context"
	"errors"
	"reflect"
	"regexp"
	"strings"
	"testing"
	"time"

	"sportify-backoffice/internal/data/entity"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newMockPool(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock
}

// columnNames splits a column list constant into names.
func columnNames(columns string) []string {
	var out []string
	for _, c := range strings.Split(columns, ",") {
		out = append(out, strings.TrimSpace(c))
	}
	return out
}

// rowValues lays out record's db-tagged fields in column order.
func rowValues(record any, columns []string) []any {
	byColumn := make(map[string]any)
	var walk func(v reflect.Value)
	walk = func(v reflect.Value) {
		t := v.Type()
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			if f.Anonymous {
				walk(v.Field(i))
				continue
			}
			if tag := f.Tag.Get("db"); tag != "" {
				byColumn[tag] = v.Field(i).Interface()
			}
		}
	}
	walk(reflect.ValueOf(record).Elem())

	out := make([]any, len(columns))
	for i, c := range columns {
		out[i] = byColumn[c]
	}
	return out
}

func bookingRows(bookings ...*entity.Booking) *pgxmock.Rows {
	columns := columnNames(bookingColumns)
	rows := pgxmock.NewRows(columns)
	for _, b := range bookings {
		rows.AddRow(rowValues(b, columns)...)
	}
	return rows
}

const releaseSQL = "UPDATE bookings SET payment_status = $2 WHERE id = $1 AND payment_status = ANY($3)"

func releaseBooking(ctx context.Context, repo BookingRepository) error {
	return repo.UpdateIf(ctx, "B1",
		entity.Condition{PaymentStatusIn: entity.HeldPaymentStatuses},
		[]entity.FieldUpdate{entity.FieldPaymentStatus.Set(string(entity.PaymentReleasedToVenue))},
	)
}

func TestBookingUpdateIf(t *testing.T) {
	ctx := context.Background()
	existsSQL := regexp.QuoteMeta("SELECT EXISTS (SELECT 1 FROM bookings WHERE id = $1)")

	t.Run("row updated", func(t *testing.T) {
		mock := newMockPool(t)
		mock.ExpectExec(regexp.QuoteMeta(releaseSQL)).
			WithArgs("B1", "released_to_venue", []string{"completed", "paid", "held_by_admin"}).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		err := releaseBooking(ctx, NewBookingRepository(mock, zap.NewNop()))
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing row", func(t *testing.T) {
		mock := newMockPool(t)
		mock.ExpectExec(regexp.QuoteMeta(releaseSQL)).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))
		mock.ExpectQuery(existsSQL).
			WithArgs("B1").
			WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))

		err := releaseBooking(ctx, NewBookingRepository(mock, zap.NewNop()))
		assert.ErrorIs(t, err, ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("condition no longer holds", func(t *testing.T) {
		mock := newMockPool(t)
		mock.ExpectExec(regexp.QuoteMeta(releaseSQL)).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))
		mock.ExpectQuery(existsSQL).
			WithArgs("B1").
			WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

		err := releaseBooking(ctx, NewBookingRepository(mock, zap.NewNop()))
		assert.ErrorIs(t, err, ErrConflict)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("database failure", func(t *testing.T) {
		mock := newMockPool(t)
		dbErr := errors.New("connection reset")
		mock.ExpectExec(regexp.QuoteMeta(releaseSQL)).WillReturnError(dbErr)

		err := releaseBooking(ctx, NewBookingRepository(mock, zap.NewNop()))
		assert.ErrorIs(t, err, dbErr)
		assert.NotErrorIs(t, err, ErrConflict)
		assert.NotErrorIs(t, err, ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestAppointmentUpdateIfPayoutGuard(t *testing.T) {
	mock := newMockPool(t)
	mock.ExpectExec(regexp.QuoteMeta(
		"UPDATE coach_appointments SET payment_released_to_coach = $2 WHERE id = $1 AND status = ANY($3) AND NOT payment_released_to_coach")).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS (SELECT 1 FROM coach_appointments WHERE id = $1)")).
		WithArgs("S1").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

	repo := NewAppointmentRepository(mock, nil, zap.NewNop())
	err := repo.UpdateIf(context.Background(), "S1",
		entity.Condition{StatusIn: []entity.Status{entity.StatusVerified}, PayoutPending: true},
		[]entity.FieldUpdate{entity.FieldPaymentReleased.Set(true)},
	)

	assert.ErrorIs(t, err, ErrConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingFindByID(t *testing.T) {
	ctx := context.Background()
	findSQL := regexp.QuoteMeta("FROM bookings WHERE id = $1")
	created := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	t.Run("decodes a known record", func(t *testing.T) {
		mock := newMockPool(t)
		mock.ExpectQuery(findSQL).WithArgs("B1").WillReturnRows(bookingRows(&entity.Booking{
			ID: "B1", BookingType: "court", Date: "2026-03-10", TimeSlot: "18:00", TotalPrice: 50,
			Status: entity.StatusConfirmed, PaymentStatus: entity.PaymentPaid,
			Timestamps: entity.Timestamps{CreatedAt: created, UpdatedAt: created},
		}))

		b, err := NewBookingRepository(mock, zap.NewNop()).FindByID(ctx, "B1")
		require.NoError(t, err)
		require.NotNil(t, b)
		assert.Equal(t, entity.PaymentPaid, b.PaymentStatus)
		assert.Equal(t, 50.0, b.TotalPrice)
		assert.Equal(t, created, b.CreatedAt)
	})

	t.Run("missing row is nil", func(t *testing.T) {
		mock := newMockPool(t)
		mock.ExpectQuery(findSQL).WithArgs("B9").WillReturnRows(bookingRows())

		b, err := NewBookingRepository(mock, zap.NewNop()).FindByID(ctx, "B9")
		assert.NoError(t, err)
		assert.Nil(t, b)
	})

	t.Run("unknown payment status is rejected", func(t *testing.T) {
		mock := newMockPool(t)
		mock.ExpectQuery(findSQL).WithArgs("B1").WillReturnRows(bookingRows(&entity.Booking{
			ID: "B1", Status: entity.StatusConfirmed, PaymentStatus: "settled",
		}))

		b, err := NewBookingRepository(mock, zap.NewNop()).FindByID(ctx, "B1")
		assert.ErrorIs(t, err, entity.ErrUnknownStatus)
		assert.Nil(t, b)
	})
}

func TestNotificationCreateIfAbsent(t *testing.T) {
	ctx := context.Background()
	insertSQL := regexp.QuoteMeta("INSERT INTO notifications")
	n := &entity.Notification{
		ID:        "N1",
		UserID:    "user-1",
		Type:      entity.NotificationPaymentSuccess,
		Title:     "Payment Successful",
		CreatedAt: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
	}

	t.Run("new id is written", func(t *testing.T) {
		mock := newMockPool(t)
		mock.ExpectExec(insertSQL).WillReturnResult(pgxmock.NewResult("INSERT", 1))

		created, err := NewNotificationRepository(mock, zap.NewNop()).CreateIfAbsent(ctx, n)
		require.NoError(t, err)
		assert.True(t, created)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("existing id is left alone", func(t *testing.T) {
		mock := newMockPool(t)
		mock.ExpectExec(insertSQL).WillReturnResult(pgxmock.NewResult("INSERT", 0))

		created, err := NewNotificationRepository(mock, zap.NewNop()).CreateIfAbsent(ctx, n)
		require.NoError(t, err)
		assert.False(t, created)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestEscrowWhereIsCourtOnly(t *testing.T) {
	for _, filter := range []EscrowFilter{EscrowAll, EscrowHeld, EscrowReleased} {
		where, args := escrowWhere(filter)
		assert.True(t, strings.HasPrefix(where, "booking_type = $1 AND "), filter)
		assert.Equal(t, "court", args[0], filter)
	}
}
