package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"sportify-backoffice/internal/data/entity"
	"sportify-backoffice/internal/data/repository"
	"sportify-backoffice/pkg/mailer"
	"sportify-backoffice/pkg/utils"

	"go.uber.org/zap"
)

const emailTimeout = 30 * time.Second

// NotificationInput describes one in-app notification. A non-empty ID makes the write
// idempotent: a second Emit with the same ID is a no-op.
type NotificationInput struct {
	ID       string
	UserID   string
	Email    string
	Type     entity.NotificationType
	Title    string
	Message  string
	Metadata map[string]any
}

type NotificationService interface {
	Emit(ctx context.Context, in NotificationInput) error
	// Wait blocks until background email sends have finished.
	Wait()
}

type notificationService struct {
	repo   repository.NotificationRepository
	sender mailer.Sender
	log    *zap.Logger
	now    func() time.Time
	wg     sync.WaitGroup
}

// NewNotificationService writes notification records and, when sender is non-nil, mirrors
// them by email on a best-effort basis.
func NewNotificationService(repo repository.NotificationRepository, sender mailer.Sender, log *zap.Logger) NotificationService {
	return &notificationService{
		repo:   repo,
		sender: sender,
		log:    log.With(zap.String("service", "notification")),
		now:    time.Now,
	}
}

func (s *notificationService) Emit(ctx context.Context, in NotificationInput) error {
	id := in.ID
	if id == "" {
		id = utils.GenerateUUIDString()
	}

	n := &entity.Notification{
		ID:        id,
		UserID:    in.UserID,
		Type:      in.Type,
		Title:     in.Title,
		Message:   in.Message,
		IsRead:    false,
		Priority:  entity.PriorityHigh,
		CreatedAt: s.now(),
		Metadata:  in.Metadata,
	}

	created, err := s.repo.CreateIfAbsent(ctx, n)
	if err != nil {
		return fmt.Errorf("emit %s notification to %s: %w", in.Type, in.UserID, err)
	}
	if !created {
		s.log.Debug("Notification already exists", zap.String("notification_id", id))
		return nil
	}

	if s.sender != nil && in.Email != "" {
		s.sendEmail(in)
	}
	return nil
}

func (s *notificationService) sendEmail(in NotificationInput) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), emailTimeout)
		defer cancel()

		err := s.sender.Send(ctx, mailer.Message{
			To:      in.Email,
			Subject: in.Title,
			Body:    in.Message,
		})
		if err != nil {
			s.log.Warn("Failed to send notification email",
				zap.Error(err),
				zap.String("user_id", in.UserID),
				zap.String("type", string(in.Type)),
			)
		}
	}()
}

func (s *notificationService) Wait() {
	s.wg.Wait()
}
