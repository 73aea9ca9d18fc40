package postgres

import (
	"context"
	"errors"

	"github.com/elzaeemwork/autoreply-backend/internal/models"
	"github.com/elzaeemwork/autoreply-backend/internal/utils"
	"gorm.io/gorm"
)

// Every operation is scoped by user id; one tenant can never read or write
// another tenant's rows.
type ProductRepository interface {
	ListByUser(ctx context.Context, userID string) ([]models.Product, error)
	GetByID(ctx context.Context, userID, id string) (*models.Product, error)
	Create(ctx context.Context, p *models.Product) error
	UpdateFields(ctx context.Context, userID, id string, fields map[string]any) (*models.Product, error)
	Delete(ctx context.Context, userID, id string) error
	// Count is the total across all tenants, for the admin dashboard.
	Count(ctx context.Context) (int64, error)
}

type productRepo struct {
	db *gorm.DB
}

func NewProductRepo(db *gorm.DB) ProductRepository {
	return &productRepo{db: db}
}

func (r *productRepo) ListByUser(ctx context.Context, userID string) ([]models.Product, error) {
	var rows []models.Product
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&rows).Error
	return rows, err
}

func (r *productRepo) GetByID(ctx context.Context, userID, id string) (*models.Product, error) {
	var p models.Product
	err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Take(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	return &p, err
}

func (r *productRepo) Create(ctx context.Context, p *models.Product) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *productRepo) UpdateFields(ctx context.Context, userID, id string, fields map[string]any) (*models.Product, error) {
	res := r.db.WithContext(ctx).Model(&models.Product{}).
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

func (r *productRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Product{}).Count(&n).Error
	return n, err
}

func (r *productRepo) Delete(ctx context.Context, userID, id string) error {
	res := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&models.Product{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return utils.ErrNotFound
	}
	return nil
}
