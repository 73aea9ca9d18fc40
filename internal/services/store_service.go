package services

import (
	"context"
	"errors"
	"time"

	"github.com/elzaeemwork/autoreply-backend/internal/cache"
	"github.com/elzaeemwork/autoreply-backend/internal/models"
	pgrepo "github.com/elzaeemwork/autoreply-backend/internal/repositories/postgres"
	"github.com/elzaeemwork/autoreply-backend/internal/utils"
)

const storeCacheTTL = 5 * time.Minute

type StoreService interface {
	// Get returns the user's store profile, creating it with empty
	// defaults on first read.
	Get(ctx context.Context, userID string) (*models.StoreProfile, error)
	Update(ctx context.Context, userID string, p *models.StoreProfile) (*models.StoreProfile, error)
}

type storeService struct {
	stores pgrepo.StoreProfileRepository
	cache  cache.Cache
}

func NewStoreService(stores pgrepo.StoreProfileRepository, c cache.Cache) StoreService {
	return &storeService{stores: stores, cache: c}
}

func storeKey(userID string) string { return "store:" + userID }

func (s *storeService) Get(ctx context.Context, userID string) (*models.StoreProfile, error) {
	const op = "StoreService.Get"

	if userID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "user_id is required", nil)
	}

	if s.cache != nil {
		var cached models.StoreProfile
		if hit, err := s.cache.GetJSON(ctx, storeKey(userID), &cached); err == nil && hit {
			return &cached, nil
		}
	}

	p, err := s.stores.GetByUserID(ctx, userID)
	if errors.Is(err, utils.ErrNotFound) {
		p = &models.StoreProfile{UserID: userID}
		if cerr := s.stores.Create(ctx, p); cerr != nil {
			return nil, utils.E(utils.CodeInternal, op, "failed to create default store profile", cerr)
		}
	} else if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to get store profile", err)
	}

	if s.cache != nil {
		_ = s.cache.SetJSON(ctx, storeKey(userID), p, storeCacheTTL)
	}
	return p, nil
}

func (s *storeService) Update(ctx context.Context, userID string, p *models.StoreProfile) (*models.StoreProfile, error) {
	const op = "StoreService.Update"

	if userID == "" || p == nil {
		return nil, utils.E(utils.CodeInvalidArgument, op, "user_id and profile are required", nil)
	}

	p.UserID = userID
	p.UpdatedAt = time.Now().UTC()
	if err := s.stores.Upsert(ctx, p); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to upsert store profile", err)
	}

	if s.cache != nil {
		_ = s.cache.Del(ctx, storeKey(userID))
	}
	return p, nil
}
