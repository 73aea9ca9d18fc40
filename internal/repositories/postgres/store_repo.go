package postgres

import (
	"context"
	"errors"

	"github.com/elzaeemwork/autoreply-backend/internal/models"
	"github.com/elzaeemwork/autoreply-backend/internal/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type StoreProfileRepository interface {
	GetByUserID(ctx context.Context, userID string) (*models.StoreProfile, error)
	Create(ctx context.Context, p *models.StoreProfile) error
	Upsert(ctx context.Context, p *models.StoreProfile) error
}

type storeProfileRepo struct {
	db *gorm.DB
}

func NewStoreProfileRepo(db *gorm.DB) StoreProfileRepository {
	return &storeProfileRepo{db: db}
}

func (r *storeProfileRepo) GetByUserID(ctx context.Context, userID string) (*models.StoreProfile, error) {
	var p models.StoreProfile
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Take(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	return &p, err
}

func (r *storeProfileRepo) Create(ctx context.Context, p *models.StoreProfile) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *storeProfileRepo) Upsert(ctx context.Context, p *models.StoreProfile) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "address", "description", "phone", "email", "website", "logo", "updated_at"}),
		}).
		Create(p).Error
}
