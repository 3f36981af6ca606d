package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"sportify-backoffice/internal/data/entity"
	"sportify-backoffice/internal/data/repository"
	"sportify-backoffice/internal/dto/request"
	"sportify-backoffice/internal/dto/response"

	"go.uber.org/zap"
)

// venueOwnerFallback receives release notifications for bookings without a venue owner.
const venueOwnerFallback = "venue_owner"

type EscrowService interface {
	ListPayments(ctx context.Context, req *request.EscrowListRequest) (*response.PaginatedResponse[response.EscrowBookingResponse], error)
	Stats(ctx context.Context) (*response.EscrowStatsResponse, error)

	ReleaseToVenue(ctx context.Context, bookingID, adminID string) (*response.ActionResponse, error)
	Refund(ctx context.Context, bookingID, adminID string) (*response.ActionResponse, error)
	ApproveRefundRequest(ctx context.Context, bookingID, adminID string) (*response.ActionResponse, error)
	RejectRefundRequest(ctx context.Context, bookingID, adminID string) (*response.ActionResponse, error)
}

type escrowService struct {
	repo     repository.BookingRepository
	notifier NotificationService
	loc      *time.Location
	log      *zap.Logger
	now      func() time.Time
}

func NewEscrowService(repo repository.BookingRepository, notifier NotificationService, loc *time.Location, log *zap.Logger) EscrowService {
	return &escrowService{
		repo:     repo,
		notifier: notifier,
		loc:      loc,
		log:      log.With(zap.String("service", "escrow")),
		now:      time.Now,
	}
}

func (s *escrowService) ListPayments(ctx context.Context, req *request.EscrowListRequest) (*response.PaginatedResponse[response.EscrowBookingResponse], error) {
	filter := repository.EscrowFilter(req.Filter)
	if filter == "" {
		filter = repository.EscrowAll
	}

	bookings, total, err := s.repo.ListEscrow(ctx, filter, req.Limit(), req.Offset())
	if err != nil {
		s.log.Error("Failed to list escrow payments", zap.Error(err))
		return nil, fmt.Errorf("list escrow payments: %w", err)
	}

	now := s.now()
	items := make([]response.EscrowBookingResponse, 0, len(bookings))
	for _, b := range bookings {
		refundable := b.PaymentStatus.IsHeld() && CanRefund(b.Date, b.TimeSlot, now, s.loc)
		items = append(items, response.NewEscrowBookingResponse(b, refundable))
	}

	return response.NewPaginatedResponse(items, req.Page, req.Limit(), total), nil
}

func (s *escrowService) Stats(ctx context.Context) (*response.EscrowStatsResponse, error) {
	totals, err := s.repo.PaymentTotals(ctx)
	if err != nil {
		s.log.Error("Failed to load escrow totals", zap.Error(err))
		return nil, fmt.Errorf("load escrow totals: %w", err)
	}

	stats := &response.EscrowStatsResponse{}
	for _, t := range totals {
		var bucket *response.EscrowBucket
		switch {
		case t.PaymentStatus.IsHeld():
			bucket = &stats.Held
		case t.PaymentStatus == entity.PaymentReleasedToVenue:
			bucket = &stats.Released
		case t.PaymentStatus == entity.PaymentRefunded:
			bucket = &stats.Refunded
		default:
			continue
		}
		bucket.Count += t.Count
		bucket.Amount = sumAmounts(bucket.Amount, t.Amount)
	}

	return stats, nil
}

func (s *escrowService) load(ctx context.Context, bookingID string) (*entity.Booking, error) {
	booking, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("load booking %s: %w", bookingID, err)
	}
	if booking == nil {
		return nil, fmt.Errorf("%w: booking %s", ErrNotFound, bookingID)
	}
	return booking, nil
}

// update applies a guarded update keyed on the state observed at read time.
func (s *escrowService) update(ctx context.Context, booking *entity.Booking, updates []entity.FieldUpdate) error {
	cond := entity.Condition{
		StatusIn:        []entity.Status{booking.Status},
		PaymentStatusIn: []entity.PaymentStatus{booking.PaymentStatus},
	}

	err := s.repo.UpdateIf(ctx, booking.ID, cond, updates)
	switch {
	case errors.Is(err, repository.ErrConflict):
		return fmt.Errorf("%w: booking %s", ErrStateChanged, booking.ID)
	case errors.Is(err, repository.ErrNotFound):
		return fmt.Errorf("%w: booking %s", ErrNotFound, booking.ID)
	case err != nil:
		return fmt.Errorf("update booking %s: %w", booking.ID, err)
	}
	return nil
}

func (s *escrowService) requireHeld(booking *entity.Booking, to entity.PaymentStatus) error {
	if !CanTransitionPayment(booking.PaymentStatus, to) {
		return fmt.Errorf("%w: booking %s payment is %q, cannot move to %q",
			ErrInvalidTransition, booking.ID, booking.PaymentStatus, to)
	}
	return nil
}

// result builds the action response, downgrading the message when the notification failed.
func (s *escrowService) result(booking *entity.Booking, status entity.Status, paymentStatus entity.PaymentStatus, message string, notifyErr error) *response.ActionResponse {
	resp := &response.ActionResponse{
		ID:               booking.ID,
		Status:           string(status),
		PaymentStatus:    string(paymentStatus),
		NotificationSent: notifyErr == nil,
		Message:          message,
	}
	if notifyErr != nil {
		s.log.Warn("Booking updated but notification failed",
			zap.String("booking_id", booking.ID),
			zap.Error(notifyErr),
		)
		resp.Message = message + " but the notification could not be sent"
	}
	return resp
}

func (s *escrowService) ReleaseToVenue(ctx context.Context, bookingID, adminID string) (*response.ActionResponse, error) {
	booking, err := s.load(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if err := s.requireHeld(booking, entity.PaymentReleasedToVenue); err != nil {
		return nil, err
	}

	now := s.now()
	err = s.update(ctx, booking, []entity.FieldUpdate{
		entity.FieldPaymentStatus.Set(string(entity.PaymentReleasedToVenue)),
		entity.FieldReleasedAt.Set(now),
		entity.FieldReleasedBy.Set(adminID),
		entity.FieldUpdatedAt.Set(now),
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("Payment released to venue",
		zap.String("booking_id", booking.ID),
		zap.String("admin_id", adminID),
		zap.Float64("amount", booking.TotalPrice),
	)

	owner := booking.VenueOwner
	if owner == "" {
		owner = venueOwnerFallback
	}
	notifyErr := s.notifier.Emit(ctx, NotificationInput{
		UserID:  owner,
		Type:    entity.NotificationPayment,
		Title:   "Payment Released",
		Message: fmt.Sprintf("RM %s has been released for booking at %s on %s", formatAmount(booking.TotalPrice), booking.VenueName, booking.Date),
		Metadata: map[string]any{
			"bookingId": booking.ID,
			"amount":    booking.TotalPrice,
			"action":    "view_revenue",
		},
	})

	return s.result(booking, booking.Status, entity.PaymentReleasedToVenue, "Payment released to venue owner", notifyErr), nil
}

func (s *escrowService) Refund(ctx context.Context, bookingID, adminID string) (*response.ActionResponse, error) {
	booking, err := s.load(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	return s.refund(ctx, booking, adminID)
}

func (s *escrowService) refund(ctx context.Context, booking *entity.Booking, adminID string) (*response.ActionResponse, error) {
	if err := s.requireHeld(booking, entity.PaymentRefunded); err != nil {
		return nil, err
	}
	if !CanRefund(booking.Date, booking.TimeSlot, s.now(), s.loc) {
		return nil, fmt.Errorf("%w: booking %s on %s %s", ErrRefundWindowClosed, booking.ID, booking.Date, booking.TimeSlot)
	}

	now := s.now()
	err := s.update(ctx, booking, []entity.FieldUpdate{
		entity.FieldStatus.Set(string(entity.StatusRefunded)),
		entity.FieldPaymentStatus.Set(string(entity.PaymentRefunded)),
		entity.FieldRefundedAt.Set(now),
		entity.FieldRefundedBy.Set(adminID),
		entity.FieldUpdatedAt.Set(now),
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("Booking refunded",
		zap.String("booking_id", booking.ID),
		zap.String("admin_id", adminID),
		zap.Float64("amount", booking.TotalPrice),
	)

	notifyErr := s.notifier.Emit(ctx, NotificationInput{
		UserID: booking.UserID,
		Email:  booking.UserEmail,
		Type:   entity.NotificationPayment,
		Title:  "Refund Successful",
		Message: fmt.Sprintf("Your booking at %s on %s has been refunded. RM %s will be returned to your account within 5-7 working days.",
			booking.VenueName, booking.Date, formatAmount(booking.TotalPrice)),
		Metadata: map[string]any{
			"bookingId": booking.ID,
			"amount":    booking.TotalPrice,
			"action":    "view_booking",
		},
	})

	return s.result(booking, entity.StatusRefunded, entity.PaymentRefunded, "Refund processed", notifyErr), nil
}

func (s *escrowService) requireRefundRequested(booking *entity.Booking) error {
	if booking.Status != entity.StatusRefundRequested {
		return fmt.Errorf("%w: booking %s has no pending refund request (status %q)",
			ErrInvalidTransition, booking.ID, booking.Status)
	}
	return nil
}

func (s *escrowService) ApproveRefundRequest(ctx context.Context, bookingID, adminID string) (*response.ActionResponse, error) {
	booking, err := s.load(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if err := s.requireRefundRequested(booking); err != nil {
		return nil, err
	}
	return s.refund(ctx, booking, adminID)
}

func (s *escrowService) RejectRefundRequest(ctx context.Context, bookingID, adminID string) (*response.ActionResponse, error) {
	booking, err := s.load(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if err := s.requireRefundRequested(booking); err != nil {
		return nil, err
	}

	now := s.now()
	err = s.update(ctx, booking, []entity.FieldUpdate{
		entity.FieldStatus.Set(string(entity.StatusConfirmed)),
		entity.FieldRefundRequestRejected.Set(true),
		entity.FieldRefundRejectedAt.Set(now),
		entity.FieldRefundRejectedBy.Set(adminID),
		entity.FieldUpdatedAt.Set(now),
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("Refund request rejected",
		zap.String("booking_id", booking.ID),
		zap.String("admin_id", adminID),
	)

	notifyErr := s.notifier.Emit(ctx, NotificationInput{
		UserID: booking.UserID,
		Email:  booking.UserEmail,
		Type:   entity.NotificationPayment,
		Title:  "Refund Request Rejected",
		Message: fmt.Sprintf("Your refund request for booking at %s on %s has been rejected. The booking remains active.",
			booking.VenueName, booking.Date),
		Metadata: map[string]any{
			"bookingId": booking.ID,
			"action":    "view_booking",
		},
	})

	return s.result(booking, entity.StatusConfirmed, booking.PaymentStatus, "Refund request rejected", notifyErr), nil
}
