package usecase

import (
	"context"
	"fmt"
	"strings"

	"sportify-backoffice/internal/data/entity"
	"sportify-backoffice/internal/data/repository"
	"sportify-backoffice/internal/dto/request"
	"sportify-backoffice/internal/dto/response"

	"go.uber.org/zap"
)

type PaymentStatusService interface {
	Check(ctx context.Context, userID string, req *request.PaymentStatusRequest) (*response.PaymentStatusResponse, error)
}

type paymentStatusService struct {
	repo *repository.Repository
	log  *zap.Logger
}

func NewPaymentStatusService(repo *repository.Repository, log *zap.Logger) PaymentStatusService {
	return &paymentStatusService{
		repo: repo,
		log:  log.With(zap.String("service", "payment_status")),
	}
}

func (s *paymentStatusService) Check(ctx context.Context, userID string, req *request.PaymentStatusRequest) (*response.PaymentStatusResponse, error) {
	bookingID := strings.TrimSpace(req.BookingID)
	if bookingID == "" {
		return nil, fmt.Errorf("%w: Booking ID is required", ErrInvalidArgument)
	}

	kind := entity.KindFromReference(req.BookingType)
	record, err := s.repo.Payable(kind).FindPayable(ctx, bookingID)
	if err != nil {
		s.log.Error("Failed to load record for status check",
			zap.Error(err),
			zap.String("record_id", bookingID),
		)
		return nil, fmt.Errorf("check payment status of %s: %w", bookingID, err)
	}
	if record == nil {
		return nil, fmt.Errorf("%w: Booking not found", ErrNotFound)
	}

	if record.UserID != userID {
		s.log.Warn("Status check for a booking owned by another user",
			zap.String("record_id", bookingID),
			zap.String("user_id", userID),
		)
		return nil, fmt.Errorf("%w: Not authorized to check this booking", ErrPermissionDenied)
	}

	return &response.PaymentStatusResponse{
		Success:       true,
		Status:        string(record.Status),
		PaymentStatus: string(record.PaymentStatus),
		PaymentID:     record.PaymentID,
	}, nil
}
