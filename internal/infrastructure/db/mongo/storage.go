package mongo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/carrental/storefront/internal/core/ports"
)

const storageCollection = "client_storage"

var _ ports.Storage = (*Storage)(nil)

// Storage keeps every key of a namespace in one document:
//
//	{ _id: <namespace>, values: { <key>: <value>, ... } }
//
// Single-document updates are atomic, so multi-key writes never half apply.
type Storage struct {
	client    *mongo.Client
	coll      *mongo.Collection
	namespace string
}

func NewStorage(client *mongo.Client, db *mongo.Database, namespace string) *Storage {
	return &Storage{client: client, coll: db.Collection(storageCollection), namespace: namespace}
}

// field names cannot contain '.' or start with '$'.
var fieldEscaper = strings.NewReplacer("%", "%25", ".", "%2E", "$", "%24")

func valuePath(key string) string {
	return "values." + fieldEscaper.Replace(key)
}

func (s *Storage) Get(ctx context.Context, key string) (string, bool, error) {
	var doc struct {
		Values map[string]string `bson:"values"`
	}
	opts := options.FindOne().SetProjection(bson.M{valuePath(key): 1})
	err := s.coll.FindOne(ctx, bson.M{"_id": s.namespace}, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("find storage key %s: %w", key, err)
	}
	v, ok := doc.Values[fieldEscaper.Replace(key)]
	return v, ok, nil
}

func (s *Storage) Put(ctx context.Context, values map[string]string) error {
	if len(values) == 0 {
		return nil
	}
	set := bson.M{}
	for k, v := range values {
		set[valuePath(k)] = v
	}
	_, err := s.coll.UpdateOne(ctx,
		bson.M{"_id": s.namespace},
		bson.M{"$set": set},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("update storage: %w", err)
	}
	return nil
}

func (s *Storage) Remove(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	unset := bson.M{}
	for _, k := range keys {
		unset[valuePath(k)] = ""
	}
	if _, err := s.coll.UpdateOne(ctx, bson.M{"_id": s.namespace}, bson.M{"$unset": unset}); err != nil {
		return fmt.Errorf("unset storage keys: %w", err)
	}
	return nil
}

func (s *Storage) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

func (s *Storage) Close() error {
	return s.client.Disconnect(context.Background())
}
