package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"liveeditor/internal/domain"
)

// MongoDocumentStore implements domain.DocumentStore on a MongoDB collection,
// one document per tenant. The tenant document is kept as canonical JSON
// text so both backends persist byte-identical content.
type MongoDocumentStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

type mongoDocument struct {
	TenantID    string    `bson:"_id"`
	ActiveTheme int       `bson:"activeTheme"`
	Document    string    `bson:"document"`
	ContentHash string    `bson:"contentHash"`
	UpdatedAt   time.Time `bson:"updatedAt"`
}

// NewMongoDocumentStore connects to uri and uses database dbName.
func NewMongoDocumentStore(ctx context.Context, uri, dbName string) (*MongoDocumentStore, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return &MongoDocumentStore{
		client: client,
		coll:   client.Database(dbName).Collection("tenant_documents"),
	}, nil
}

func (s *MongoDocumentStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *MongoDocumentStore) LoadDocument(ctx context.Context, tenantID string) (*domain.TenantDocument, error) {
	var rec mongoDocument
	err := s.coll.FindOne(ctx, bson.M{"_id": tenantID}).Decode(&rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return domain.NewTenantDocument(tenantID), nil
	}
	if err != nil {
		return nil, fmt.Errorf("find document: %w", err)
	}
	doc, err := decodeDocument([]byte(rec.Document), tenantID)
	if err != nil {
		return nil, err
	}
	doc.UpdatedAt = rec.UpdatedAt
	return doc, nil
}

func (s *MongoDocumentStore) SaveDocument(ctx context.Context, doc *domain.TenantDocument) error {
	raw, hash, err := encodeDocument(doc)
	if err != nil {
		return err
	}

	var current mongoDocument
	err = s.coll.FindOne(ctx, bson.M{"_id": doc.TenantID}).Decode(&current)
	if err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
		return fmt.Errorf("find document: %w", err)
	}
	if err == nil && current.ContentHash == hash {
		return nil
	}

	rec := mongoDocument{
		TenantID:    doc.TenantID,
		ActiveTheme: doc.ActiveTheme,
		Document:    string(raw),
		ContentHash: hash,
		UpdatedAt:   time.Now(),
	}
	_, err = s.coll.ReplaceOne(ctx, bson.M{"_id": doc.TenantID}, rec, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("replace document: %w", err)
	}
	doc.UpdatedAt = rec.UpdatedAt
	return nil
}

var _ domain.DocumentStore = (*MongoDocumentStore)(nil)
