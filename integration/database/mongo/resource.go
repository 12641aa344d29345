package mongo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/bastionkit/bastion/core/resource"
)

// collectionStore adapts a MongoDB collection to the resource.Store
// interface. Record ids map to the document _id.
type collectionStore struct {
	coll *mongo.Collection
}

// Resource returns a resource.Store backed by the named collection.
func Resource(db *mongo.Database, name string) resource.Store {
	return &collectionStore{coll: db.Collection(name)}
}

func (s *collectionStore) Insert(ctx context.Context, rec resource.Record) (resource.Record, error) {
	doc := toDocument(rec)
	if _, ok := doc["_id"]; !ok {
		doc["_id"] = uuid.NewString()
	}

	if _, err := s.coll.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("failed to insert document: %w", err)
	}
	return fromDocument(doc), nil
}

func (s *collectionStore) Update(ctx context.Context, id string, rec resource.Record) (resource.Record, error) {
	if id == "" {
		return nil, resource.ErrMissingID
	}

	doc := toDocument(rec)
	doc["_id"] = id

	res, err := s.coll.ReplaceOne(ctx, bson.M{"_id": id}, doc)
	if err != nil {
		return nil, fmt.Errorf("failed to replace document: %w", err)
	}
	if res.MatchedCount == 0 {
		return nil, resource.ErrNotFound
	}
	return fromDocument(doc), nil
}

func (s *collectionStore) Patch(ctx context.Context, id string, fields resource.Record) (resource.Record, error) {
	if id == "" {
		return nil, resource.ErrMissingID
	}

	set := toDocument(fields)
	delete(set, "_id")

	var updated bson.M
	err := s.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, resource.ErrNotFound
	} else if err != nil {
		return nil, fmt.Errorf("failed to patch document: %w", err)
	}
	return fromDocument(updated), nil
}

func (s *collectionStore) Get(ctx context.Context, id string) (resource.Record, error) {
	if id == "" {
		return nil, resource.ErrMissingID
	}

	var doc bson.M
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, resource.ErrNotFound
	} else if err != nil {
		return nil, fmt.Errorf("failed to fetch document: %w", err)
	}
	return fromDocument(doc), nil
}

func (s *collectionStore) Delete(ctx context.Context, id string) error {
	if id == "" {
		return resource.ErrMissingID
	}

	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	if res.DeletedCount == 0 {
		return resource.ErrNotFound
	}
	return nil
}

func (s *collectionStore) Query(ctx context.Context, filter resource.Filter) ([]resource.Record, error) {
	return s.find(ctx, toQuery(filter), nil)
}

func (s *collectionStore) List(ctx context.Context, opts resource.ListOptions) ([]resource.Record, error) {
	var findOpts *options.FindOptionsBuilder
	if opts.Limit > 0 {
		findOpts = options.Find().SetLimit(opts.Limit)
	}
	return s.find(ctx, bson.M{}, findOpts)
}

func (s *collectionStore) find(ctx context.Context, query bson.M, opts *options.FindOptionsBuilder) ([]resource.Record, error) {
	var cursor *mongo.Cursor
	var err error
	if opts != nil {
		cursor, err = s.coll.Find(ctx, query, opts)
	} else {
		cursor, err = s.coll.Find(ctx, query)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query documents: %w", err)
	}
	defer cursor.Close(ctx)

	var recs []resource.Record
	for cursor.Next(ctx) {
		var doc bson.M
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode document: %w", err)
		}
		recs = append(recs, fromDocument(doc))
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor iteration failed: %w", err)
	}
	return recs, nil
}

// toDocument converts a record to a BSON document, renaming id to _id.
func toDocument(rec resource.Record) bson.M {
	doc := make(bson.M, len(rec))
	for k, v := range rec {
		if k == "id" {
			doc["_id"] = v
			continue
		}
		doc[k] = v
	}
	return doc
}

// fromDocument converts a BSON document back to a record, renaming _id to id
// and normalizing BSON-specific value types to plain Go ones.
func fromDocument(doc bson.M) resource.Record {
	rec := make(resource.Record, len(doc))
	for k, v := range doc {
		if k == "_id" {
			k = "id"
		}
		rec[k] = normalize(v)
	}
	return rec
}

func normalize(v any) any {
	switch val := v.(type) {
	case bson.DateTime:
		return val.Time().UTC()
	case bson.M:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = normalize(item)
		}
		return out
	case bson.A:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = normalize(item)
		}
		return out
	default:
		return v
	}
}

// toQuery translates the portable filter into a MongoDB query. Operator maps
// pass through unchanged since the operator names follow MongoDB conventions.
func toQuery(filter resource.Filter) bson.M {
	query := make(bson.M, len(filter))
	for field, cond := range filter {
		if ops, ok := cond.(map[string]any); ok {
			sub := make(bson.M, len(ops))
			for op, v := range ops {
				sub[op] = v
			}
			query[field] = sub
			continue
		}
		query[field] = cond
	}
	return query
}
