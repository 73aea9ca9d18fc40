package mongo

import (
	"context"
	"errors"
	"time"

	"github.com/elzaeemwork/autoreply-backend/internal/models"
	"github.com/elzaeemwork/autoreply-backend/internal/utils"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// PageCredentialRepository stores per-tenant Facebook OAuth material, one
// document per user with the connected pages nested inside.
type PageCredentialRepository interface {
	Save(ctx context.Context, cred *models.PageCredential) error
	GetByUserID(ctx context.Context, userID string) (*models.PageCredential, error)
	// ResolvePage maps an inbound page id to the owning credential and the
	// matching page account. This is the webhook's tenant lookup.
	ResolvePage(ctx context.Context, pageID string) (*models.PageCredential, *models.PageAccount, error)
	Delete(ctx context.Context, userID string) error
}

type pageCredentialRepo struct {
	col *mongo.Collection
}

func NewPageCredentialRepo(db *mongo.Database) PageCredentialRepository {
	return &pageCredentialRepo{col: db.Collection("page_credentials")}
}

func (r *pageCredentialRepo) Save(ctx context.Context, cred *models.PageCredential) error {
	if cred.ConnectedAt.IsZero() {
		cred.ConnectedAt = time.Now().UTC()
	}
	_, err := r.col.UpdateOne(ctx,
		bson.M{"user_id": cred.UserID},
		bson.M{"$set": cred},
		options.Update().SetUpsert(true),
	)
	return err
}

func (r *pageCredentialRepo) GetByUserID(ctx context.Context, userID string) (*models.PageCredential, error) {
	var cred models.PageCredential
	err := r.col.FindOne(ctx, bson.M{"user_id": userID}).Decode(&cred)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, utils.ErrNotFound
	}
	return &cred, err
}

func (r *pageCredentialRepo) ResolvePage(ctx context.Context, pageID string) (*models.PageCredential, *models.PageAccount, error) {
	var cred models.PageCredential
	err := r.col.FindOne(ctx, bson.M{"accounts.id": pageID}).Decode(&cred)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil, utils.ErrNotFound
	}
	if err != nil {
		return nil, nil, err
	}
	for i := range cred.Accounts {
		if cred.Accounts[i].ID == pageID {
			return &cred, &cred.Accounts[i], nil
		}
	}
	return nil, nil, utils.ErrNotFound
}

func (r *pageCredentialRepo) Delete(ctx context.Context, userID string) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"user_id": userID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return utils.ErrNotFound
	}
	return nil
}
