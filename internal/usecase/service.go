package usecase

import (
	"sportify-backoffice/internal/data/repository"
	"sportify-backoffice/pkg/cache"
	"sportify-backoffice/pkg/mailer"
	"sportify-backoffice/pkg/utils"

	"go.uber.org/zap"
)

type Service struct {
	Notification    NotificationService
	PaymentCallback PaymentCallbackService
	Escrow          EscrowService
	Verification    VerificationService
	PaymentStatus   PaymentStatusService
}

// NewService wires every use case. sender and guard are optional.
func NewService(
	repo *repository.Repository,
	sender mailer.Sender,
	guard cache.InFlightGuard,
	config *utils.Config,
	log *zap.Logger,
) *Service {
	notifier := NewNotificationService(repo.Notification, sender, log)

	return &Service{
		Notification:    notifier,
		PaymentCallback: NewPaymentCallbackService(repo, notifier, guard, config.Billplz.XSignatureKey, log),
		Escrow:          NewEscrowService(repo.Booking, notifier, config.Location(), log),
		Verification:    NewVerificationService(repo.Appointment, notifier, log),
		PaymentStatus:   NewPaymentStatusService(repo, log),
	}
}
