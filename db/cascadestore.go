package db

import (
	"context"
	"errors"
	"fmt"

	"voyago/cascade"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Store satisfies cascade.Store.
var _ cascade.Store = (*Store)(nil)

func (s *Store) Exists(ctx context.Context, collection string, id primitive.ObjectID) (bool, error) {
	coll := s.Collection(collection)
	if coll == nil {
		return false, fmt.Errorf("unknown collection %q", collection)
	}
	n, err := coll.CountDocuments(ctx, bson.M{"_id": id})
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *Store) FindIDs(ctx context.Context, collection string, filter bson.M) ([]primitive.ObjectID, error) {
	coll := s.Collection(collection)
	if coll == nil {
		return nil, fmt.Errorf("unknown collection %q", collection)
	}
	cursor, err := coll.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var ids []primitive.ObjectID
	for cursor.Next(ctx) {
		var doc struct {
			ID primitive.ObjectID `bson:"_id"`
		}
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		ids = append(ids, doc.ID)
	}
	return ids, cursor.Err()
}

func (s *Store) ParentOf(ctx context.Context, collection string, id primitive.ObjectID, field string) (primitive.ObjectID, error) {
	coll := s.Collection(collection)
	if coll == nil {
		return primitive.NilObjectID, fmt.Errorf("unknown collection %q", collection)
	}
	var doc bson.M
	err := coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return primitive.NilObjectID, cascade.ErrNotFound
	}
	if err != nil {
		return primitive.NilObjectID, err
	}
	parent, ok := doc[field].(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, fmt.Errorf("%s.%s is not an id", collection, field)
	}
	return parent, nil
}

func (s *Store) DeleteMany(ctx context.Context, collection string, filter bson.M) (int64, error) {
	coll := s.Collection(collection)
	if coll == nil {
		return 0, fmt.Errorf("unknown collection %q", collection)
	}
	res, err := coll.DeleteMany(ctx, filter)
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (s *Store) Push(ctx context.Context, collection string, parent primitive.ObjectID, field string, child primitive.ObjectID) error {
	coll := s.Collection(collection)
	if coll == nil {
		return fmt.Errorf("unknown collection %q", collection)
	}
	res, err := coll.UpdateOne(ctx, bson.M{"_id": parent}, bson.M{"$addToSet": bson.M{field: child}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%s %s: %w", collection, parent.Hex(), cascade.ErrNotFound)
	}
	return nil
}

func (s *Store) Pull(ctx context.Context, collection string, parent primitive.ObjectID, field string, child primitive.ObjectID) error {
	coll := s.Collection(collection)
	if coll == nil {
		return fmt.Errorf("unknown collection %q", collection)
	}
	_, err := coll.UpdateOne(ctx, bson.M{"_id": parent}, bson.M{"$pull": bson.M{field: child}})
	return err
}
