package services

import (
	"context"
	"errors"
	"time"

	"github.com/elzaeemwork/autoreply-backend/internal/cache"
	"github.com/elzaeemwork/autoreply-backend/internal/models"
	pgrepo "github.com/elzaeemwork/autoreply-backend/internal/repositories/postgres"
	"github.com/elzaeemwork/autoreply-backend/internal/utils"

	"github.com/google/uuid"
)

const catalogCacheTTL = 5 * time.Minute

type ProductService interface {
	List(ctx context.Context, userID string) ([]models.Product, error)
	Create(ctx context.Context, userID string, p *models.Product) (*models.Product, error)
	Update(ctx context.Context, userID, id string, fields map[string]any) (*models.Product, error)
	Delete(ctx context.Context, userID, id string) error
	SetImage(ctx context.Context, userID, id, imageURL string) (*models.Product, error)
}

type productService struct {
	products pgrepo.ProductRepository
	cache    cache.Cache
}

func NewProductService(products pgrepo.ProductRepository, c cache.Cache) ProductService {
	return &productService{products: products, cache: c}
}

func catalogKey(userID string) string { return "catalog:" + userID }

func (s *productService) List(ctx context.Context, userID string) ([]models.Product, error) {
	const op = "ProductService.List"

	if userID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "user_id is required", nil)
	}

	if s.cache != nil {
		var cached []models.Product
		if hit, err := s.cache.GetJSON(ctx, catalogKey(userID), &cached); err == nil && hit {
			return cached, nil
		}
	}

	rows, err := s.products.ListByUser(ctx, userID)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list products", err)
	}

	if s.cache != nil {
		_ = s.cache.SetJSON(ctx, catalogKey(userID), rows, catalogCacheTTL)
	}
	return rows, nil
}

func (s *productService) Create(ctx context.Context, userID string, p *models.Product) (*models.Product, error) {
	const op = "ProductService.Create"

	if userID == "" || p == nil || p.Name == "" || p.Price == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "name and price are required", nil)
	}

	p.ID = uuid.NewString()
	p.UserID = userID
	p.InStock = true
	if err := s.products.Create(ctx, p); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to create product", err)
	}

	s.invalidate(ctx, userID)
	return p, nil
}

func (s *productService) Update(ctx context.Context, userID, id string, fields map[string]any) (*models.Product, error) {
	const op = "ProductService.Update"

	if userID == "" || id == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "user_id and product id are required", nil)
	}
	if len(fields) == 0 {
		return nil, utils.E(utils.CodeInvalidArgument, op, "at least one field is required", nil)
	}

	p, err := s.products.UpdateFields(ctx, userID, id, fields)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "product not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to update product", err)
	}

	s.invalidate(ctx, userID)
	return p, nil
}

func (s *productService) Delete(ctx context.Context, userID, id string) error {
	const op = "ProductService.Delete"

	if userID == "" || id == "" {
		return utils.E(utils.CodeInvalidArgument, op, "user_id and product id are required", nil)
	}
	if err := s.products.Delete(ctx, userID, id); err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return utils.E(utils.CodeNotFound, op, "product not found", err)
		}
		return utils.E(utils.CodeInternal, op, "failed to delete product", err)
	}

	s.invalidate(ctx, userID)
	return nil
}

func (s *productService) SetImage(ctx context.Context, userID, id, imageURL string) (*models.Product, error) {
	return s.Update(ctx, userID, id, map[string]any{"image": imageURL})
}

func (s *productService) invalidate(ctx context.Context, userID string) {
	if s.cache != nil {
		_ = s.cache.Del(ctx, catalogKey(userID))
	}
}
