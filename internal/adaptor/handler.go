package adaptor

import (
	"context"

	"sportify-backoffice/internal/dto/response"
	"sportify-backoffice/internal/usecase"
	"sportify-backoffice/pkg/utils"

	"go.uber.org/zap"
)

type Handler struct {
	Webhook *WebhookHandler
	Status  *StatusHandler
	Escrow  *EscrowHandler
	Session *SessionHandler
}

func NewHandler(service *usecase.Service, log *zap.Logger) *Handler {
	return &Handler{
		Webhook: NewWebhookHandler(service.PaymentCallback, log),
		Status:  NewStatusHandler(service.PaymentStatus, log),
		Escrow:  NewEscrowHandler(service.Escrow, log),
		Session: NewSessionHandler(service.Verification, log),
	}
}

// auditAdminAction records who changed a record once an admin mutation succeeds.
func auditAdminAction(ctx context.Context, log *zap.Logger, operation, recordID string, result *response.ActionResponse) {
	adminID, _ := utils.GetUserIDFromContext(ctx)
	role, _ := utils.GetRoleFromContext(ctx)

	log.Info("Admin action completed",
		zap.String("operation", operation),
		zap.String("record_id", recordID),
		zap.String("admin_id", adminID),
		zap.String("role", role),
		zap.Bool("notification_sent", result.NotificationSent),
	)
}
