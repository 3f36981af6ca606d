package usecase

import (
	"context"
	"testing"
	"time"

	"sportify-backoffice/internal/data/entity"
	"sportify-backoffice/internal/dto/request"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var klLocation = time.FixedZone("MYT", 8*60*60)

func heldBooking(id string) *entity.Booking {
	return &entity.Booking{
		ID:            id,
		UserID:        "user-1",
		UserEmail:     "user1@example.com",
		VenueOwner:    "owner-1",
		VenueName:     "Arena KL",
		Date:          "2026-03-10",
		TimeSlot:      "18:00",
		TotalPrice:    50,
		Status:        entity.StatusConfirmed,
		PaymentStatus: entity.PaymentCompleted,
	}
}

func newTestEscrow(bookings *fakeBookingRepo, notifications *fakeNotificationRepo) *escrowService {
	return &escrowService{
		repo:     bookings,
		notifier: newTestNotifier(notifications),
		loc:      klLocation,
		log:      zap.NewNop(),
		now:      func() time.Time { return testNow },
	}
}

func TestReleaseToVenue(t *testing.T) {
	ctx := context.Background()

	t.Run("releases a held payment once", func(t *testing.T) {
		bookings := newFakeBookingRepo(heldBooking("B1"))
		notifications := newFakeNotificationRepo()
		svc := newTestEscrow(bookings, notifications)

		resp, err := svc.ReleaseToVenue(ctx, "B1", "admin-1")
		require.NoError(t, err)
		assert.True(t, resp.NotificationSent)
		assert.Equal(t, string(entity.PaymentReleasedToVenue), resp.PaymentStatus)

		b := bookings.get("B1")
		assert.Equal(t, entity.PaymentReleasedToVenue, b.PaymentStatus)
		assert.Equal(t, "admin-1", b.ReleasedBy)
		require.NotNil(t, b.ReleasedAt)

		sent := notifications.all()
		require.Len(t, sent, 1)
		assert.Equal(t, "owner-1", sent[0].UserID)
		assert.Equal(t, "RM 50.00 has been released for booking at Arena KL on 2026-03-10", sent[0].Message)

		_, err = svc.ReleaseToVenue(ctx, "B1", "admin-1")
		assert.ErrorIs(t, err, ErrInvalidTransition)
		assert.Equal(t, 1, bookings.updates)
	})

	t.Run("every held synonym is releasable", func(t *testing.T) {
		for _, ps := range entity.HeldPaymentStatuses {
			b := heldBooking("B1")
			b.PaymentStatus = ps
			bookings := newFakeBookingRepo(b)
			svc := newTestEscrow(bookings, newFakeNotificationRepo())

			_, err := svc.ReleaseToVenue(ctx, "B1", "admin-1")
			require.NoError(t, err, string(ps))
		}
	})

	t.Run("rejects payments that are not held", func(t *testing.T) {
		for _, ps := range []entity.PaymentStatus{entity.PaymentUnpaid, entity.PaymentFailed, entity.PaymentRefunded, entity.PaymentReleasedToVenue} {
			b := heldBooking("B1")
			b.PaymentStatus = ps
			bookings := newFakeBookingRepo(b)
			svc := newTestEscrow(bookings, newFakeNotificationRepo())

			_, err := svc.ReleaseToVenue(ctx, "B1", "admin-1")
			assert.ErrorIs(t, err, ErrInvalidTransition, string(ps))
			assert.Equal(t, 0, bookings.updates)
		}
	})

	t.Run("missing venue owner falls back", func(t *testing.T) {
		b := heldBooking("B1")
		b.VenueOwner = ""
		notifications := newFakeNotificationRepo()
		svc := newTestEscrow(newFakeBookingRepo(b), notifications)

		_, err := svc.ReleaseToVenue(ctx, "B1", "admin-1")
		require.NoError(t, err)
		assert.Equal(t, venueOwnerFallback, notifications.all()[0].UserID)
	})

	t.Run("concurrent change is reported", func(t *testing.T) {
		bookings := newFakeBookingRepo(heldBooking("B1"))
		bookings.beforeUpdate = func(b *entity.Booking) {
			b.PaymentStatus = entity.PaymentRefunded
		}
		svc := newTestEscrow(bookings, newFakeNotificationRepo())

		_, err := svc.ReleaseToVenue(ctx, "B1", "admin-1")
		assert.ErrorIs(t, err, ErrStateChanged)
	})

	t.Run("unknown booking", func(t *testing.T) {
		svc := newTestEscrow(newFakeBookingRepo(), newFakeNotificationRepo())

		_, err := svc.ReleaseToVenue(ctx, "nope", "admin-1")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("notification failure keeps the release", func(t *testing.T) {
		bookings := newFakeBookingRepo(heldBooking("B1"))
		notifications := newFakeNotificationRepo()
		notifications.err = errStoreDown
		svc := newTestEscrow(bookings, notifications)

		resp, err := svc.ReleaseToVenue(ctx, "B1", "admin-1")
		require.NoError(t, err)
		assert.False(t, resp.NotificationSent)
		assert.Contains(t, resp.Message, "notification could not be sent")
		assert.Equal(t, entity.PaymentReleasedToVenue, bookings.get("B1").PaymentStatus)
	})
}

func TestRefund(t *testing.T) {
	ctx := context.Background()

	t.Run("refunds outside the cutoff", func(t *testing.T) {
		bookings := newFakeBookingRepo(heldBooking("B1"))
		notifications := newFakeNotificationRepo()
		svc := newTestEscrow(bookings, notifications)

		resp, err := svc.Refund(ctx, "B1", "admin-1")
		require.NoError(t, err)
		assert.Equal(t, string(entity.StatusRefunded), resp.Status)

		b := bookings.get("B1")
		assert.Equal(t, entity.StatusRefunded, b.Status)
		assert.Equal(t, entity.PaymentRefunded, b.PaymentStatus)
		assert.Equal(t, "admin-1", b.RefundedBy)

		sent := notifications.all()
		require.Len(t, sent, 1)
		assert.Equal(t, "user-1", sent[0].UserID)
		assert.Contains(t, sent[0].Message, "RM 50.00 will be returned to your account within 5-7 working days")
	})

	t.Run("booking ten hours away is rejected locally", func(t *testing.T) {
		// testNow is 17:00 in Kuala Lumpur on 2026-03-01.
		b := heldBooking("B1")
		b.Date = "2026-03-02"
		b.TimeSlot = "03:00"
		bookings := newFakeBookingRepo(b)
		notifications := newFakeNotificationRepo()
		svc := newTestEscrow(bookings, notifications)

		_, err := svc.Refund(ctx, "B1", "admin-1")
		assert.ErrorIs(t, err, ErrRefundWindowClosed)
		assert.Contains(t, err.Error(), "24 hours")
		assert.Equal(t, 0, bookings.updates)
		assert.Empty(t, notifications.all())
	})

	t.Run("booking that already started is rejected", func(t *testing.T) {
		// testNow is 17:00 in Kuala Lumpur on 2026-03-01.
		b := heldBooking("B1")
		b.Date = "2026-03-01"
		b.TimeSlot = "15:00"
		bookings := newFakeBookingRepo(b)
		notifications := newFakeNotificationRepo()
		svc := newTestEscrow(bookings, notifications)

		_, err := svc.Refund(ctx, "B1", "admin-1")
		assert.ErrorIs(t, err, ErrRefundWindowClosed)
		assert.Equal(t, 0, bookings.updates)
		assert.Equal(t, entity.PaymentCompleted, bookings.get("B1").PaymentStatus)
		assert.Empty(t, notifications.all())
	})

	t.Run("released payments cannot be refunded", func(t *testing.T) {
		b := heldBooking("B1")
		b.PaymentStatus = entity.PaymentReleasedToVenue
		bookings := newFakeBookingRepo(b)
		svc := newTestEscrow(bookings, newFakeNotificationRepo())

		_, err := svc.Refund(ctx, "B1", "admin-1")
		assert.ErrorIs(t, err, ErrInvalidTransition)
		assert.Equal(t, 0, bookings.updates)
	})
}

func TestRefundRequests(t *testing.T) {
	ctx := context.Background()

	requested := func() *entity.Booking {
		b := heldBooking("B1")
		b.Status = entity.StatusRefundRequested
		return b
	}

	t.Run("approve refunds the booking", func(t *testing.T) {
		bookings := newFakeBookingRepo(requested())
		svc := newTestEscrow(bookings, newFakeNotificationRepo())

		_, err := svc.ApproveRefundRequest(ctx, "B1", "admin-1")
		require.NoError(t, err)
		assert.Equal(t, entity.PaymentRefunded, bookings.get("B1").PaymentStatus)
	})

	t.Run("approve without a request", func(t *testing.T) {
		bookings := newFakeBookingRepo(heldBooking("B1"))
		svc := newTestEscrow(bookings, newFakeNotificationRepo())

		_, err := svc.ApproveRefundRequest(ctx, "B1", "admin-1")
		assert.ErrorIs(t, err, ErrInvalidTransition)
	})

	t.Run("reject keeps the booking active", func(t *testing.T) {
		bookings := newFakeBookingRepo(requested())
		notifications := newFakeNotificationRepo()
		svc := newTestEscrow(bookings, notifications)

		resp, err := svc.RejectRefundRequest(ctx, "B1", "admin-1")
		require.NoError(t, err)
		assert.Equal(t, string(entity.StatusConfirmed), resp.Status)

		b := bookings.get("B1")
		assert.Equal(t, entity.StatusConfirmed, b.Status)
		assert.Equal(t, entity.PaymentCompleted, b.PaymentStatus)
		assert.True(t, b.RefundRequestRejected)
		assert.Equal(t, "admin-1", b.RefundRejectedBy)

		sent := notifications.all()
		require.Len(t, sent, 1)
		assert.Equal(t, "Your refund request for booking at Arena KL on 2026-03-10 has been rejected. The booking remains active.", sent[0].Message)
	})
}

func TestEscrowStats(t *testing.T) {
	paid := heldBooking("B2")
	paid.PaymentStatus = entity.PaymentPaid
	paid.TotalPrice = 20.10
	released := heldBooking("B3")
	released.PaymentStatus = entity.PaymentReleasedToVenue
	released.TotalPrice = 30
	refunded := heldBooking("B4")
	refunded.PaymentStatus = entity.PaymentRefunded
	refunded.TotalPrice = 15.5
	unpaid := heldBooking("B5")
	unpaid.PaymentStatus = entity.PaymentUnpaid

	svc := newTestEscrow(newFakeBookingRepo(heldBooking("B1"), paid, released, refunded, unpaid), newFakeNotificationRepo())

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.Held.Count)
	assert.Equal(t, 70.10, stats.Held.Amount)
	assert.Equal(t, int64(1), stats.Released.Count)
	assert.Equal(t, 30.0, stats.Released.Amount)
	assert.Equal(t, int64(1), stats.Refunded.Count)
	assert.Equal(t, 15.5, stats.Refunded.Amount)
}

func TestListPayments(t *testing.T) {
	soon := heldBooking("B2")
	soon.Date = "2026-03-02"
	soon.TimeSlot = "03:00"
	released := heldBooking("B3")
	released.PaymentStatus = entity.PaymentReleasedToVenue

	svc := newTestEscrow(newFakeBookingRepo(heldBooking("B1"), soon, released), newFakeNotificationRepo())

	req := &request.EscrowListRequest{Filter: "held"}
	req.Page, req.PerPage = 1, 10

	page, err := svc.ListPayments(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Pagination.Total)

	refundable := map[string]bool{}
	for _, item := range page.Data {
		refundable[item.ID] = item.CanRefund
	}
	assert.Equal(t, map[string]bool{"B1": true, "B2": false}, refundable)
}
