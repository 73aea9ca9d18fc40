package config

import (
	"context"
	"errors"
	"os"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func EnsureMongoIndexes() error {
	if MongoClient == nil {
		return errors.New("MongoClient is nil; call InitMongo() first")
	}

	dbName := os.Getenv("MONGO_DB")
	if dbName == "" {
		dbName = "autoreply"
	}
	db := MongoClient.Database(dbName)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// page_credentials: one doc per user; webhook resolves tenants by the
	// nested page account id.
	creds := db.Collection("page_credentials")
	_, err := creds.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "user_id", Value: 1}},
			Options: options.Index().
				SetName("uniq_user_id").
				SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "accounts.id", Value: 1}},
			Options: options.Index().SetName("by_page_id"),
		},
	})
	return err
}
