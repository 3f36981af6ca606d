package repository

import (
	"context"
	"errors"
	"fmt"

	"sportify-backoffice/internal/data/entity"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// fsState decodes only the fields a Condition is evaluated against.
type fsState struct {
	Status                 entity.Status        `firestore:"status"`
	PaymentStatus          entity.PaymentStatus `firestore:"paymentStatus"`
	LastCallbackKey        string               `firestore:"lastCallbackKey"`
	PaymentReleasedToCoach bool                 `firestore:"paymentReleasedToCoach"`
}

func (s fsState) recordState() entity.RecordState {
	return entity.RecordState{
		Status:          s.Status,
		PaymentStatus:   s.PaymentStatus,
		LastCallbackKey: s.LastCallbackKey,
		PayoutReleased:  s.PaymentReleasedToCoach,
	}
}

func isNotFound(err error) bool {
	return status.Code(err) == codes.NotFound
}

func isAlreadyExists(err error) bool {
	return status.Code(err) == codes.AlreadyExists
}

func toFirestoreUpdates(updates []entity.FieldUpdate) []firestore.Update {
	out := make([]firestore.Update, len(updates))
	for i, u := range updates {
		out[i] = firestore.Update{Path: u.Path, Value: u.Value}
	}
	return out
}

// updateIfFirestore runs read-check-write in one transaction.
func updateIfFirestore(ctx context.Context, client *firestore.Client, ref *firestore.DocumentRef, cond entity.Condition, updates []entity.FieldUpdate) error {
	err := client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			if isNotFound(err) {
				return ErrNotFound
			}
			return err
		}

		var state fsState
		if err := snap.DataTo(&state); err != nil {
			return fmt.Errorf("decode %s: %w", ref.Path, err)
		}
		if err := state.recordState().Validate(); err != nil {
			return fmt.Errorf("decode %s: %w", ref.Path, err)
		}
		if !cond.Matches(state.recordState()) {
			return ErrConflict
		}

		return tx.Update(ref, toFirestoreUpdates(updates))
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) || errors.Is(err, ErrConflict) {
			return err
		}
		return fmt.Errorf("update %s: %w", ref.Path, err)
	}
	return nil
}
