package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"sportify-backoffice/internal/data/entity"
	"sportify-backoffice/internal/data/repository"
	"sportify-backoffice/internal/dto/request"
	"sportify-backoffice/pkg/billplz"
	"sportify-backoffice/pkg/cache"
	"sportify-backoffice/pkg/utils"

	"go.uber.org/zap"
)

type CallbackOutcome string

const (
	CallbackApplied   CallbackOutcome = "applied"
	CallbackDuplicate CallbackOutcome = "duplicate"
	CallbackIgnored   CallbackOutcome = "ignored"
)

type CallbackResult struct {
	Outcome CallbackOutcome
	Message string
}

type PaymentCallbackService interface {
	// Process verifies and applies one gateway callback given as its flat field map.
	Process(ctx context.Context, fields map[string]string) (*CallbackResult, error)
}

type paymentCallbackService struct {
	repo         *repository.Repository
	notifier     NotificationService
	guard        cache.InFlightGuard
	signatureKey string
	log          *zap.Logger
	now          func() time.Time
}

// NewPaymentCallbackService wires the callback processor. guard may be nil.
func NewPaymentCallbackService(
	repo *repository.Repository,
	notifier NotificationService,
	guard cache.InFlightGuard,
	signatureKey string,
	log *zap.Logger,
) PaymentCallbackService {
	return &paymentCallbackService{
		repo:         repo,
		notifier:     notifier,
		guard:        guard,
		signatureKey: signatureKey,
		log:          log.With(zap.String("service", "payment_callback")),
		now:          time.Now,
	}
}

func (s *paymentCallbackService) Process(ctx context.Context, fields map[string]string) (*CallbackResult, error) {
	if err := billplz.Verify(s.signatureKey, fields); err != nil {
		s.log.Warn("Rejected callback signature", zap.String("bill_id", fields["id"]), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	cb := request.NewBillplzCallback(fields)
	s.log.Info("Billplz callback received",
		zap.String("bill_id", cb.BillID),
		zap.String("paid", cb.Paid),
		zap.String("state", cb.State),
		zap.String("transaction_id", cb.TransactionID),
	)

	if cb.Reference1 == "" {
		s.log.Error("Callback without booking reference", zap.String("bill_id", cb.BillID))
		return nil, fmt.Errorf("%w: missing booking ID", ErrInvalidArgument)
	}

	kind := entity.KindFromReference(cb.Reference2)
	store := s.repo.Payable(kind)

	record, err := store.FindPayable(ctx, cb.Reference1)
	if err != nil {
		return nil, fmt.Errorf("load %s %s: %w", kind.Collection(), cb.Reference1, err)
	}
	if record == nil {
		s.log.Error("Callback references unknown record",
			zap.String("collection", kind.Collection()),
			zap.String("record_id", cb.Reference1),
			zap.String("bill_id", cb.BillID),
		)
		return nil, fmt.Errorf("%w: booking %s", ErrNotFound, cb.Reference1)
	}

	var target entity.PaymentStatus
	switch {
	case utils.IsTruthy(cb.Paid) && cb.State == "paid":
		target = entity.PaymentCompleted
	case cb.State == "deleted" || cb.State == "expired":
		target = entity.PaymentFailed
	default:
		return &CallbackResult{Outcome: CallbackIgnored, Message: "Callback processed successfully"}, nil
	}

	key := utils.CallbackKey(record.ID, cb.BillID, cb.State)

	if record.LastCallbackKey == key {
		s.log.Info("Duplicate callback, replaying notifications", zap.String("record_id", record.ID))
		if err := s.notify(ctx, record, cb, key, target); err != nil {
			return nil, err
		}
		return &CallbackResult{Outcome: CallbackDuplicate, Message: "Callback already processed"}, nil
	}

	if s.guard != nil {
		acquired, err := s.guard.Acquire(ctx, key)
		switch {
		case err != nil:
			s.log.Warn("In-flight guard unavailable", zap.Error(err))
		case !acquired:
			s.log.Info("Callback already in flight", zap.String("record_id", record.ID))
			return &CallbackResult{Outcome: CallbackDuplicate, Message: "Callback already in progress"}, nil
		default:
			defer s.release(ctx, key)
		}
	}

	return s.apply(ctx, store, record, cb, key, target)
}

// release frees the in-flight key on every exit. Later duplicates are caught by the stored
// callback key, so the guard only has to cover the apply window.
func (s *paymentCallbackService) release(ctx context.Context, key string) {
	if err := s.guard.Release(context.WithoutCancel(ctx), key); err != nil {
		s.log.Warn("Failed to release in-flight guard", zap.Error(err))
	}
}

func (s *paymentCallbackService) apply(
	ctx context.Context,
	store repository.PayableRepository,
	record *entity.PaymentRecord,
	cb *request.BillplzCallback,
	key string,
	target entity.PaymentStatus,
) (*CallbackResult, error) {
	if !CanTransitionPayment(record.PaymentStatus, target) {
		s.log.Warn("Ignoring callback that would move payment backwards",
			zap.String("record_id", record.ID),
			zap.String("bill_id", cb.BillID),
			zap.String("from", string(record.PaymentStatus)),
			zap.String("to", string(target)),
		)
		return &CallbackResult{Outcome: CallbackIgnored, Message: "Callback acknowledged, no change"}, nil
	}

	cond := entity.Condition{
		PaymentStatusIn: paymentSources(target),
		CallbackKeyNot:  key,
	}

	err := store.UpdateIf(ctx, record.ID, cond, s.updatesFor(cb, key, target))
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return nil, fmt.Errorf("%w: booking %s", ErrNotFound, record.ID)
	case errors.Is(err, repository.ErrConflict):
		current, ferr := store.FindPayable(ctx, record.ID)
		if ferr != nil {
			return nil, fmt.Errorf("reload %s: %w", record.ID, ferr)
		}
		if current == nil || current.LastCallbackKey != key {
			s.log.Warn("Record changed before callback could apply",
				zap.String("record_id", record.ID),
				zap.String("bill_id", cb.BillID),
			)
			return &CallbackResult{Outcome: CallbackIgnored, Message: "Callback acknowledged, no change"}, nil
		}
		// A concurrent delivery of the same callback won; fall through to notifications.
	case err != nil:
		return nil, fmt.Errorf("apply callback to %s: %w", record.ID, err)
	default:
		s.log.Info("Payment status updated",
			zap.String("record_id", record.ID),
			zap.String("kind", string(record.Kind)),
			zap.String("payment_status", string(target)),
		)
	}

	if err := s.notify(ctx, record, cb, key, target); err != nil {
		return nil, err
	}
	return &CallbackResult{Outcome: CallbackApplied, Message: "Callback processed successfully"}, nil
}

func (s *paymentCallbackService) updatesFor(cb *request.BillplzCallback, key string, target entity.PaymentStatus) []entity.FieldUpdate {
	now := s.now()

	if target == entity.PaymentFailed {
		return []entity.FieldUpdate{
			entity.FieldStatus.Set(string(entity.StatusCancelled)),
			entity.FieldPaymentStatus.Set(string(entity.PaymentFailed)),
			entity.FieldBillplzBillID.Set(cb.BillID),
			entity.FieldFailedAt.Set(now),
			entity.FieldTransactionDetails.Set(&entity.TransactionDetails{
				BillID:   cb.BillID,
				State:    cb.State,
				FailedAt: &now,
			}),
			entity.FieldLastCallbackKey.Set(key),
			entity.FieldUpdatedAt.Set(now),
		}
	}

	paymentID := cb.TransactionID
	if paymentID == "" {
		paymentID = cb.BillID
	}
	var paidAmount any
	if v := minorToMajor(cb.PaidAmount); v != nil {
		paidAmount = *v
	}

	return []entity.FieldUpdate{
		entity.FieldStatus.Set(string(entity.StatusConfirmed)),
		entity.FieldPaymentStatus.Set(string(entity.PaymentCompleted)),
		entity.FieldPaymentID.Set(paymentID),
		entity.FieldBillplzBillID.Set(cb.BillID),
		entity.FieldPaidAmount.Set(paidAmount),
		entity.FieldPaidAt.Set(now),
		entity.FieldTransactionDetails.Set(&entity.TransactionDetails{
			TransactionID:     cb.TransactionID,
			TransactionStatus: cb.TransactionStatus,
			BillID:            cb.BillID,
			State:             cb.State,
			PaidAt:            cb.PaidAt,
		}),
		entity.FieldLastCallbackKey.Set(key),
		entity.FieldUpdatedAt.Set(now),
	}
}

// notify emits the callback's notifications with ids derived from the dedupe key, so replays
// never create a second copy.
func (s *paymentCallbackService) notify(
	ctx context.Context,
	record *entity.PaymentRecord,
	cb *request.BillplzCallback,
	key string,
	target entity.PaymentStatus,
) error {
	isCoach := record.Kind == entity.KindCoach
	amount := minorToMajor(cb.PaidAmount)

	if target == entity.PaymentFailed {
		msg := "Your court booking payment could not be processed. Please try again."
		if isCoach {
			msg = "Your coaching session payment could not be processed. Please try again."
		}
		return s.notifier.Emit(ctx, NotificationInput{
			ID:      utils.NotificationID(key, "owner"),
			UserID:  record.UserID,
			Email:   record.UserEmail,
			Type:    entity.NotificationPaymentFailed,
			Title:   "Payment Failed",
			Message: msg,
			Metadata: map[string]any{
				"bookingId":   record.ID,
				"bookingType": string(record.Kind),
				"state":       cb.State,
			},
		})
	}

	msg := fmt.Sprintf("Your court booking payment has been confirmed. %s on %s.", record.VenueName, record.Date)
	if isCoach {
		msg = fmt.Sprintf("Your coaching session payment has been confirmed. Session with %s on %s.", record.CoachName, record.Date)
	}
	err := s.notifier.Emit(ctx, NotificationInput{
		ID:      utils.NotificationID(key, "owner"),
		UserID:  record.UserID,
		Email:   record.UserEmail,
		Type:    entity.NotificationPaymentSuccess,
		Title:   "Payment Successful",
		Message: msg,
		Metadata: map[string]any{
			"bookingId":     record.ID,
			"bookingType":   string(record.Kind),
			"amount":        amountOrNil(amount),
			"transactionId": cb.TransactionID,
		},
	})
	if err != nil {
		return err
	}

	if !isCoach {
		return nil
	}
	return s.notifier.Emit(ctx, NotificationInput{
		ID:      utils.NotificationID(key, "coach"),
		UserID:  record.CoachID,
		Type:    entity.NotificationBookingConfirmed,
		Title:   "Booking Payment Confirmed",
		Message: fmt.Sprintf("Payment confirmed for session with %s on %s.", record.StudentName, record.Date),
		Metadata: map[string]any{
			"bookingId":   record.ID,
			"bookingType": string(record.Kind),
			"amount":      amountOrNil(amount),
		},
	})
}

func amountOrNil(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}
