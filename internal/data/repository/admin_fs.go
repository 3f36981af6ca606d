package repository

import (
	"context"
	"fmt"

	"sportify-backoffice/internal/data/entity"

	"cloud.google.com/go/firestore"
	"go.uber.org/zap"
)

type adminFirestore struct {
	client *firestore.Client
	log    *zap.Logger
}

func NewAdminFirestore(client *firestore.Client, log *zap.Logger) AdminRepository {
	return &adminFirestore{
		client: client,
		log:    log.With(zap.String("repository", "admin"), zap.String("store", "firestore")),
	}
}

func (r *adminFirestore) FindByUID(ctx context.Context, uid string) (*entity.Admin, error) {
	snap, err := r.client.Collection(entity.CollectionAdmin).Doc(uid).Get(ctx)
	if isNotFound(err) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find admin by UID", zap.Error(err), zap.String("uid", uid))
		return nil, fmt.Errorf("find admin %s: %w", uid, err)
	}

	var admin entity.Admin
	if err := snap.DataTo(&admin); err != nil {
		return nil, fmt.Errorf("decode admin %s: %w", uid, err)
	}
	admin.UID = uid
	return &admin, nil
}
