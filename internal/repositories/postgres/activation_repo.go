package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/elzaeemwork/autoreply-backend/internal/models"
	"github.com/elzaeemwork/autoreply-backend/internal/utils"
	"gorm.io/gorm"
)

type ActivationCodeRepository interface {
	List(ctx context.Context) ([]models.ActivationCode, error)
	Create(ctx context.Context, c *models.ActivationCode) error
	// GetUnused returns the code only while it has not been redeemed.
	GetUnused(ctx context.Context, code string) (*models.ActivationCode, error)
	MarkUsed(ctx context.Context, code, userID string, at time.Time) error
	Delete(ctx context.Context, code string) error
}

type activationCodeRepo struct {
	db *gorm.DB
}

func NewActivationCodeRepo(db *gorm.DB) ActivationCodeRepository {
	return &activationCodeRepo{db: db}
}

func (r *activationCodeRepo) List(ctx context.Context) ([]models.ActivationCode, error) {
	var rows []models.ActivationCode
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&rows).Error
	return rows, err
}

func (r *activationCodeRepo) Create(ctx context.Context, c *models.ActivationCode) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *activationCodeRepo) GetUnused(ctx context.Context, code string) (*models.ActivationCode, error) {
	var c models.ActivationCode
	err := r.db.WithContext(ctx).Where("code = ? AND used = false", code).Take(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	return &c, err
}

func (r *activationCodeRepo) MarkUsed(ctx context.Context, code, userID string, at time.Time) error {
	res := r.db.WithContext(ctx).Model(&models.ActivationCode{}).
		Where("code = ? AND used = false", code).
		Updates(map[string]any{"used": true, "used_by": userID, "used_at": at})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return utils.ErrNotFound
	}
	return nil
}

func (r *activationCodeRepo) Delete(ctx context.Context, code string) error {
	res := r.db.WithContext(ctx).Where("code = ?", code).Delete(&models.ActivationCode{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return utils.ErrNotFound
	}
	return nil
}
