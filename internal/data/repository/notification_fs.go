package repository

import (
	"context"
	"fmt"

	"sportify-backoffice/internal/data/entity"

	"cloud.google.com/go/firestore"
	"go.uber.org/zap"
)

type notificationFirestore struct {
	client *firestore.Client
	log    *zap.Logger
}

func NewNotificationFirestore(client *firestore.Client, log *zap.Logger) NotificationRepository {
	return &notificationFirestore{
		client: client,
		log:    log.With(zap.String("repository", "notification"), zap.String("store", "firestore")),
	}
}

func (r *notificationFirestore) CreateIfAbsent(ctx context.Context, n *entity.Notification) (bool, error) {
	_, err := r.client.Collection(entity.CollectionNotifications).Doc(n.ID).Create(ctx, n)
	if isAlreadyExists(err) {
		return false, nil
	}
	if err != nil {
		r.log.Error("Failed to create notification",
			zap.Error(err),
			zap.String("notification_id", n.ID),
			zap.String("user_id", n.UserID),
		)
		return false, fmt.Errorf("create notification %s: %w", n.ID, err)
	}
	return true, nil
}
