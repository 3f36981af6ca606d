package repository

import (
	"context"
	"fmt"

	"sportify-backoffice/internal/data/entity"
	"sportify-backoffice/pkg/database"

	"go.uber.org/zap"
)

type NotificationRepository interface {
	// CreateIfAbsent writes n unless a notification with the same ID exists.
	// It reports whether a new record was written.
	CreateIfAbsent(ctx context.Context, n *entity.Notification) (bool, error)
}

type notificationRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewNotificationRepository(db database.PgxIface, log *zap.Logger) NotificationRepository {
	return &notificationRepository{
		db:  db,
		log: log.With(zap.String("repository", "notification")),
	}
}

func (r *notificationRepository) CreateIfAbsent(ctx context.Context, n *entity.Notification) (bool, error) {
	query := `
		INSERT INTO notifications (id, user_id, type, title, message, is_read, priority, created_at, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO NOTHING
	`

	tag, err := r.db.Exec(ctx, query,
		n.ID,
		n.UserID,
		string(n.Type),
		n.Title,
		n.Message,
		n.IsRead,
		n.Priority,
		n.CreatedAt,
		n.Metadata,
	)
	if err != nil {
		r.log.Error("Failed to create notification",
			zap.Error(err),
			zap.String("notification_id", n.ID),
			zap.String("user_id", n.UserID),
		)
		return false, fmt.Errorf("create notification %s: %w", n.ID, err)
	}

	return tag.RowsAffected() == 1, nil
}
