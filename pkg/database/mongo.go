package database

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/edustack/learnhub-api/pkg/config"
)

// NewMongo returns a connected MongoDB database handle.
func NewMongo(ctx context.Context, cfg config.MongoConfig) (*mongo.Client, *mongo.Database, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	opts := options.Client().
		ApplyURI(cfg.URI).
		SetServerSelectionTimeout(5 * time.Second)
	if cfg.OpTimeout > 0 {
		// Client-wide ceiling for every store operation.
		opts.SetTimeout(cfg.OpTimeout)
	}

	client, err := mongo.Connect(connectCtx, opts)
	if err != nil {
		return nil, nil, err
	}

	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, err
	}

	return client, client.Database(cfg.Database), nil
}
