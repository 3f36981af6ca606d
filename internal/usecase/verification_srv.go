package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"sportify-backoffice/internal/data/entity"
	"sportify-backoffice/internal/data/repository"
	"sportify-backoffice/internal/dto/request"
	"sportify-backoffice/internal/dto/response"

	"go.uber.org/zap"
)

const defaultApprovalNotes = "Session verified and approved"

type VerificationService interface {
	ListSessions(ctx context.Context, filter string) ([]response.SessionResponse, error)
	// WatchSessions pushes the session queue for filter on every change until ctx ends.
	WatchSessions(ctx context.Context, filter string, fn func([]response.SessionResponse)) error

	Verify(ctx context.Context, sessionID, adminID string, req *request.VerifySessionRequest) (*response.ActionResponse, error)
	ReleasePayment(ctx context.Context, sessionID, adminID string) (*response.ActionResponse, error)
}

type verificationService struct {
	repo     repository.AppointmentRepository
	notifier NotificationService
	log      *zap.Logger
	now      func() time.Time
}

func NewVerificationService(repo repository.AppointmentRepository, notifier NotificationService, log *zap.Logger) VerificationService {
	return &verificationService{
		repo:     repo,
		notifier: notifier,
		log:      log.With(zap.String("service", "verification")),
		now:      time.Now,
	}
}

// queueStatuses maps a queue filter to appointment statuses. Empty selects the pending queue.
func queueStatuses(filter string) ([]entity.Status, error) {
	switch filter {
	case "":
		return []entity.Status{entity.StatusAwaitingVerification}, nil
	case "all":
		return []entity.Status{entity.StatusAwaitingVerification, entity.StatusVerified, entity.StatusCompleted}, nil
	}

	status := entity.Status(filter)
	switch status {
	case entity.StatusAwaitingVerification, entity.StatusVerified, entity.StatusCompleted:
		return []entity.Status{status}, nil
	}
	return nil, fmt.Errorf("%w: unknown session filter %q", ErrInvalidArgument, filter)
}

func (s *verificationService) ListSessions(ctx context.Context, filter string) ([]response.SessionResponse, error) {
	statuses, err := queueStatuses(filter)
	if err != nil {
		return nil, err
	}

	appts, err := s.repo.ListWithProof(ctx, statuses)
	if err != nil {
		s.log.Error("Failed to list sessions", zap.Error(err), zap.String("filter", filter))
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return response.NewSessionResponses(appts), nil
}

func (s *verificationService) WatchSessions(ctx context.Context, filter string, fn func([]response.SessionResponse)) error {
	statuses, err := queueStatuses(filter)
	if err != nil {
		return err
	}

	return s.repo.Watch(ctx, statuses, func(appts []*entity.CoachAppointment) {
		fn(response.NewSessionResponses(appts))
	})
}

func (s *verificationService) load(ctx context.Context, sessionID string) (*entity.CoachAppointment, error) {
	appt, err := s.repo.FindByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", sessionID, err)
	}
	if appt == nil {
		return nil, fmt.Errorf("%w: session %s", ErrNotFound, sessionID)
	}
	return appt, nil
}

func (s *verificationService) Verify(ctx context.Context, sessionID, adminID string, req *request.VerifySessionRequest) (*response.ActionResponse, error) {
	notes := strings.TrimSpace(req.Notes)
	if !req.Approved && notes == "" {
		return nil, ErrNotesRequired
	}

	appt, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if appt.Status != entity.StatusAwaitingVerification {
		return nil, fmt.Errorf("%w: session %s is %q, not awaiting verification",
			ErrInvalidTransition, appt.ID, appt.Status)
	}

	now := s.now()
	var (
		updates   []entity.FieldUpdate
		newStatus entity.Status
		notify    NotificationInput
	)

	if req.Approved {
		if notes == "" {
			notes = defaultApprovalNotes
		}
		newStatus = entity.StatusVerified
		updates = []entity.FieldUpdate{
			entity.FieldVerificationStatus.Set(string(entity.VerificationVerified)),
			entity.FieldVerifiedAt.Set(now),
			entity.FieldVerifiedBy.Set(adminID),
			entity.FieldVerificationNotes.Set(notes),
			entity.FieldStatus.Set(string(entity.StatusVerified)),
			entity.FieldUpdatedAt.Set(now),
		}
		notify = NotificationInput{
			UserID: appt.CoachID,
			Type:   entity.NotificationPayment,
			Title:  "Training Proof Approved!",
			Message: fmt.Sprintf("Your training proof for the session with %s on %s has been verified and approved. Payment will be released soon!",
				appt.StudentName, appt.Date),
			Metadata: map[string]any{
				"appointmentId": appt.ID,
				"action":        "view_booking",
				"status":        string(entity.VerificationVerified),
				"amount":        appt.ChargedAmount(),
			},
		}
	} else {
		newStatus = entity.StatusConfirmed
		updates = []entity.FieldUpdate{
			entity.FieldVerificationStatus.Set(string(entity.VerificationRejected)),
			entity.FieldVerifiedAt.Set(now),
			entity.FieldVerifiedBy.Set(adminID),
			entity.FieldVerificationNotes.Set(notes),
			entity.FieldStatus.Set(string(entity.StatusConfirmed)),
			entity.FieldProofPhotoBase64.Set(nil),
			entity.FieldProofUploadedAt.Set(nil),
			entity.FieldProofNotes.Set(nil),
			entity.FieldUpdatedAt.Set(now),
		}
		notify = NotificationInput{
			UserID: appt.CoachID,
			Type:   entity.NotificationSystem,
			Title:  "Training Proof Rejected",
			Message: fmt.Sprintf("Your training proof for the session with %s on %s was not approved. Reason: %s. Please upload a new proof photo.",
				appt.StudentName, appt.Date, notes),
			Metadata: map[string]any{
				"appointmentId":   appt.ID,
				"action":          "upload_proof",
				"status":          string(entity.VerificationRejected),
				"rejectionReason": notes,
			},
		}
	}

	cond := entity.Condition{StatusIn: []entity.Status{entity.StatusAwaitingVerification}}
	if err := s.update(ctx, appt.ID, cond, updates); err != nil {
		return nil, err
	}

	s.log.Info("Session verified",
		zap.String("session_id", appt.ID),
		zap.String("admin_id", adminID),
		zap.Bool("approved", req.Approved),
	)

	notifyErr := s.notifier.Emit(ctx, notify)
	message := "Session verified"
	if !req.Approved {
		message = "Session rejected"
	}
	return s.result(appt, newStatus, message, notifyErr), nil
}

func (s *verificationService) ReleasePayment(ctx context.Context, sessionID, adminID string) (*response.ActionResponse, error) {
	appt, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if appt.PaymentReleasedToCoach {
		return nil, fmt.Errorf("%w: session %s", ErrAlreadyReleased, appt.ID)
	}
	if appt.Status != entity.StatusVerified {
		return nil, fmt.Errorf("%w: session %s is %q, only verified sessions can be paid out",
			ErrInvalidTransition, appt.ID, appt.Status)
	}

	earnings, fee := SplitPlatformFee(appt.ChargedAmount())
	now := s.now()

	cond := entity.Condition{
		StatusIn:      []entity.Status{entity.StatusVerified},
		PayoutPending: true,
	}
	err = s.update(ctx, appt.ID, cond, []entity.FieldUpdate{
		entity.FieldStatus.Set(string(entity.StatusCompleted)),
		entity.FieldPaymentReleased.Set(true),
		entity.FieldPaymentReleasedAt.Set(now),
		entity.FieldCoachEarnings.Set(earnings),
		entity.FieldPlatformFee.Set(fee),
		entity.FieldUpdatedAt.Set(now),
	})
	if errors.Is(err, ErrStateChanged) {
		if current, ferr := s.repo.FindByID(ctx, appt.ID); ferr == nil && current != nil && current.PaymentReleasedToCoach {
			return nil, fmt.Errorf("%w: session %s", ErrAlreadyReleased, appt.ID)
		}
	}
	if err != nil {
		return nil, err
	}

	s.log.Info("Coach payment released",
		zap.String("session_id", appt.ID),
		zap.String("admin_id", adminID),
		zap.Float64("coach_earnings", earnings),
		zap.Float64("platform_fee", fee),
	)

	notifyErr := s.notifier.Emit(ctx, NotificationInput{
		UserID: appt.CoachID,
		Type:   entity.NotificationPayment,
		Title:  "Payment Released!",
		Message: fmt.Sprintf("Payment for your session with %s on %s has been released. Amount: RM %s",
			appt.StudentName, appt.Date, formatAmount(earnings)),
		Metadata: map[string]any{
			"appointmentId": appt.ID,
			"action":        "view_booking",
			"status":        string(entity.StatusCompleted),
			"amount":        earnings,
		},
	})

	resp := s.result(appt, entity.StatusCompleted, "Payment released to coach", notifyErr)
	resp.CoachEarnings = &earnings
	resp.PlatformFee = &fee
	return resp, nil
}

func (s *verificationService) update(ctx context.Context, id string, cond entity.Condition, updates []entity.FieldUpdate) error {
	err := s.repo.UpdateIf(ctx, id, cond, updates)
	switch {
	case errors.Is(err, repository.ErrConflict):
		return fmt.Errorf("%w: session %s", ErrStateChanged, id)
	case errors.Is(err, repository.ErrNotFound):
		return fmt.Errorf("%w: session %s", ErrNotFound, id)
	case err != nil:
		return fmt.Errorf("update session %s: %w", id, err)
	}
	return nil
}

func (s *verificationService) result(appt *entity.CoachAppointment, status entity.Status, message string, notifyErr error) *response.ActionResponse {
	resp := &response.ActionResponse{
		ID:               appt.ID,
		Status:           string(status),
		PaymentStatus:    string(appt.PaymentStatus),
		NotificationSent: notifyErr == nil,
		Message:          message,
	}
	if notifyErr != nil {
		s.log.Warn("Session updated but notification failed",
			zap.String("session_id", appt.ID),
			zap.Error(notifyErr),
		)
		resp.Message = message + " but the notification could not be sent"
	}
	return resp
}
