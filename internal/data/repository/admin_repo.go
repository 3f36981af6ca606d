package repository

import (
	"context"
	"errors"
	"fmt"

	"sportify-backoffice/internal/data/entity"
	"sportify-backoffice/pkg/database"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type AdminRepository interface {
	FindByUID(ctx context.Context, uid string) (*entity.Admin, error)
}

type adminRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewAdminRepository(db database.PgxIface, log *zap.Logger) AdminRepository {
	return &adminRepository{
		db:  db,
		log: log.With(zap.String("repository", "admin")),
	}
}

func (r *adminRepository) FindByUID(ctx context.Context, uid string) (*entity.Admin, error) {
	query := `
		SELECT uid, name, email, role, is_active, permissions
		FROM admin
		WHERE uid = $1
	`

	var admin entity.Admin
	err := r.db.QueryRow(ctx, query, uid).Scan(
		&admin.UID,
		&admin.Name,
		&admin.Email,
		&admin.Role,
		&admin.IsActive,
		&admin.Permissions,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find admin by UID",
			zap.Error(err),
			zap.String("uid", uid),
		)
		return nil, fmt.Errorf("find admin %s: %w", uid, err)
	}

	return &admin, nil
}
