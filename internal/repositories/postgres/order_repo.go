package postgres

import (
	"context"
	"errors"

	"github.com/elzaeemwork/autoreply-backend/internal/models"
	"github.com/elzaeemwork/autoreply-backend/internal/utils"
	"gorm.io/gorm"
)

type OrderRepository interface {
	ListByUser(ctx context.Context, userID string) ([]models.Order, error)
	GetByID(ctx context.Context, userID, id string) (*models.Order, error)
	Create(ctx context.Context, o *models.Order) error
	UpdateFields(ctx context.Context, userID, id string, fields map[string]any) (*models.Order, error)
	Delete(ctx context.Context, userID, id string) error
	// Count is the total across all tenants, for the admin dashboard.
	Count(ctx context.Context) (int64, error)
}

type orderRepo struct {
	db *gorm.DB
}

func NewOrderRepo(db *gorm.DB) OrderRepository {
	return &orderRepo{db: db}
}

func (r *orderRepo) ListByUser(ctx context.Context, userID string) ([]models.Order, error) {
	var rows []models.Order
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&rows).Error
	return rows, err
}

func (r *orderRepo) GetByID(ctx context.Context, userID, id string) (*models.Order, error) {
	var o models.Order
	err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Take(&o).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	return &o, err
}

func (r *orderRepo) Create(ctx context.Context, o *models.Order) error {
	return r.db.WithContext(ctx).Create(o).Error
}

func (r *orderRepo) UpdateFields(ctx context.Context, userID, id string, fields map[string]any) (*models.Order, error) {
	res := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(fields)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, utils.ErrNotFound
	}
	return r.GetByID(ctx, userID, id)
}

func (r *orderRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Order{}).Count(&n).Error
	return n, err
}

func (r *orderRepo) Delete(ctx context.Context, userID, id string) error {
	res := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&models.Order{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return utils.ErrNotFound
	}
	return nil
}
