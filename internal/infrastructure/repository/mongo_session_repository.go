package repository

import (
	"context"
	"fmt"
	"time"

	"shopify-session-gate/internal/domain"
	"shopify-session-gate/internal/infrastructure/repository/entity"
	"shopify-session-gate/internal/ports"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoSessionRepository implements SessionStore using MongoDB
type MongoSessionRepository struct {
	collection *mongo.Collection
}

// NewMongoSessionRepository creates a new MongoDB session store
func NewMongoSessionRepository(db *mongo.Database) ports.SessionStore {
	return &MongoSessionRepository{
		collection: db.Collection("sessions"),
	}
}

// Get retrieves the session for a shop domain
func (r *MongoSessionRepository) Get(ctx context.Context, shopDomain string) (*domain.Session, error) {
	var doc entity.SessionDoc
	err := r.collection.FindOne(ctx, bson.M{"_id": shopDomain}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, nil // No session for this shop, not an error
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	return doc.ToDomain(), nil
}

// Put validates and upserts a session
func (r *MongoSessionRepository) Put(ctx context.Context, session *domain.Session) error {
	if err := session.Validate(); err != nil {
		return err
	}

	doc := entity.SessionDocFromDomain(session)
	doc.UpdatedAt = time.Now()
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now()
	}

	opts := options.Replace().SetUpsert(true)
	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": doc.ShopDomain}, doc, opts)
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	return nil
}

// Delete removes the session for a shop domain
func (r *MongoSessionRepository) Delete(ctx context.Context, shopDomain string) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": shopDomain})
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
