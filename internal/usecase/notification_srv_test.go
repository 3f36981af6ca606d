package usecase

import (
	"context"
	"errors"
	"testing"

	"sportify-backoffice/internal/data/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotificationEmit(t *testing.T) {
	ctx := context.Background()

	t.Run("writes an unread high priority record", func(t *testing.T) {
		repo := newFakeNotificationRepo()
		svc := newTestNotifier(repo)

		err := svc.Emit(ctx, NotificationInput{
			UserID:   "user-1",
			Type:     entity.NotificationPaymentSuccess,
			Title:    "Payment Successful",
			Message:  "paid",
			Metadata: map[string]any{"bookingId": "B1"},
		})
		require.NoError(t, err)

		sent := repo.all()
		require.Len(t, sent, 1)
		assert.NotEmpty(t, sent[0].ID)
		assert.False(t, sent[0].IsRead)
		assert.Equal(t, entity.PriorityHigh, sent[0].Priority)
		assert.Equal(t, testNow, sent[0].CreatedAt)
		assert.Equal(t, "B1", sent[0].Metadata["bookingId"])
	})

	t.Run("same id is written once and mailed once", func(t *testing.T) {
		repo := newFakeNotificationRepo()
		sender := &fakeSender{}
		svc := newTestNotifier(repo)
		svc.sender = sender

		in := NotificationInput{
			ID:      "n-1",
			UserID:  "user-1",
			Email:   "user1@example.com",
			Type:    entity.NotificationPayment,
			Title:   "Refund Successful",
			Message: "refunded",
		}
		require.NoError(t, svc.Emit(ctx, in))
		require.NoError(t, svc.Emit(ctx, in))
		svc.Wait()

		assert.Len(t, repo.all(), 1)
		msgs := sender.messages()
		require.Len(t, msgs, 1)
		assert.Equal(t, "user1@example.com", msgs[0].To)
		assert.Equal(t, "Refund Successful", msgs[0].Subject)
	})

	t.Run("email failure does not fail the emit", func(t *testing.T) {
		repo := newFakeNotificationRepo()
		sender := &fakeSender{err: errors.New("smtp down")}
		svc := newTestNotifier(repo)
		svc.sender = sender

		err := svc.Emit(ctx, NotificationInput{UserID: "user-1", Email: "user1@example.com", Type: entity.NotificationPayment})
		require.NoError(t, err)
		svc.Wait()
		assert.Len(t, sender.messages(), 1)
	})

	t.Run("no email without an address", func(t *testing.T) {
		sender := &fakeSender{}
		svc := newTestNotifier(newFakeNotificationRepo())
		svc.sender = sender

		require.NoError(t, svc.Emit(ctx, NotificationInput{UserID: "coach-1", Type: entity.NotificationPayment}))
		svc.Wait()
		assert.Empty(t, sender.messages())
	})

	t.Run("store failure is returned", func(t *testing.T) {
		repo := newFakeNotificationRepo()
		repo.err = errStoreDown
		svc := newTestNotifier(repo)

		err := svc.Emit(ctx, NotificationInput{UserID: "user-1", Type: entity.NotificationPayment})
		assert.ErrorIs(t, err, errStoreDown)
	})
}
