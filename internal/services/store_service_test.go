package services_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/elzaeemwork/autoreply-backend/internal/models"
	"github.com/elzaeemwork/autoreply-backend/internal/services"
	"github.com/elzaeemwork/autoreply-backend/internal/utils"
)

type fakeStoreRepo struct {
	byUser  map[string]*models.StoreProfile
	creates int
}

func newFakeStoreRepo() *fakeStoreRepo {
	return &fakeStoreRepo{byUser: map[string]*models.StoreProfile{}}
}

func (f *fakeStoreRepo) GetByUserID(_ context.Context, userID string) (*models.StoreProfile, error) {
	p, ok := f.byUser[userID]
	if !ok {
		return nil, utils.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeStoreRepo) Create(_ context.Context, p *models.StoreProfile) error {
	f.creates++
	cp := *p
	f.byUser[p.UserID] = &cp
	return nil
}

func (f *fakeStoreRepo) Upsert(_ context.Context, p *models.StoreProfile) error {
	cp := *p
	f.byUser[p.UserID] = &cp
	return nil
}

// fakeCache is a map-backed cache with the same JSON round-trip semantics
// as the Redis implementation.
type fakeCache struct {
	entries map[string][]byte
}

func newFakeCache() *fakeCache { return &fakeCache{entries: map[string][]byte{}} }

func (f *fakeCache) GetJSON(_ context.Context, key string, dst any) (bool, error) {
	b, ok := f.entries[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dst)
}

func (f *fakeCache) SetJSON(_ context.Context, key string, val any, _ time.Duration) error {
	b, err := json.Marshal(val)
	if err != nil {
		return err
	}
	f.entries[key] = b
	return nil
}

func (f *fakeCache) Del(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(f.entries, k)
	}
	return nil
}

func TestStoreGetCreatesDefaultProfileOnce(t *testing.T) {
	repo := newFakeStoreRepo()
	svc := services.NewStoreService(repo, newFakeCache())
	ctx := context.Background()

	p, err := svc.Get(ctx, "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.UserID != "u1" || p.Name != "" {
		t.Fatalf("expected empty default profile, got %+v", p)
	}
	if repo.creates != 1 {
		t.Fatalf("expected 1 create, got %d", repo.creates)
	}

	// Second read must not create again.
	if _, err := svc.Get(ctx, "u1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.creates != 1 {
		t.Fatalf("default profile created twice: %d", repo.creates)
	}
}

func TestStoreUpdateInvalidatesCache(t *testing.T) {
	repo := newFakeStoreRepo()
	c := newFakeCache()
	svc := services.NewStoreService(repo, c)
	ctx := context.Background()

	if _, err := svc.Get(ctx, "u1"); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	if _, err := svc.Update(ctx, "u1", &models.StoreProfile{Name: "متجر الكرادة"}); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	p, err := svc.Get(ctx, "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Name != "متجر الكرادة" {
		t.Fatalf("stale profile after update: %+v", p)
	}
}

func TestStoreGetRequiresUserID(t *testing.T) {
	svc := services.NewStoreService(newFakeStoreRepo(), nil)
	if _, err := svc.Get(context.Background(), ""); !utils.IsCode(err, utils.CodeInvalidArgument) {
		t.Fatalf("expected INVALID_ARGUMENT, got %v", err)
	}
}
