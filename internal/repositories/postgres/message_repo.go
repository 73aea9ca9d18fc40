package postgres

import (
	"context"

	"github.com/elzaeemwork/autoreply-backend/internal/models"
	"gorm.io/gorm"
)

// Messages are append-only; there is no update or delete.
type MessageRepository interface {
	Create(ctx context.Context, m *models.Message) error
	ListByUser(ctx context.Context, userID string) ([]models.Message, error)
	// LatestN returns the newest n messages, newest first.
	LatestN(ctx context.Context, userID string, n int) ([]models.Message, error)
}

type messageRepo struct {
	db *gorm.DB
}

func NewMessageRepo(db *gorm.DB) MessageRepository {
	return &messageRepo{db: db}
}

func (r *messageRepo) Create(ctx context.Context, m *models.Message) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *messageRepo) ListByUser(ctx context.Context, userID string) ([]models.Message, error) {
	var rows []models.Message
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&rows).Error
	return rows, err
}

func (r *messageRepo) LatestN(ctx context.Context, userID string, n int) ([]models.Message, error) {
	if n <= 0 {
		n = 5
	}
	var rows []models.Message
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(n).
		Find(&rows).Error
	return rows, err
}
