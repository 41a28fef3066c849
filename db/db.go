package db

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store holds the Mongo client and the named collections. It is built once
// at startup and handed to the handlers and the cascade coordinator; nothing
// reaches it through package globals.
type Store struct {
	Client *mongo.Client

	Users        *mongo.Collection
	Payes        *mongo.Collection
	Hotels       *mongo.Collection
	Chambres     *mongo.Collection
	Offres       *mongo.Collection
	Reservations *mongo.Collection
	Avis         *mongo.Collection
}

func Connect(ctx context.Context, uri, dbName string) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, err
	}

	d := client.Database(dbName)
	s := &Store{
		Client:       client,
		Users:        d.Collection("users"),
		Payes:        d.Collection("payes"),
		Hotels:       d.Collection("hotels"),
		Chambres:     d.Collection("chambres"),
		Offres:       d.Collection("offres"),
		Reservations: d.Collection("reservations"),
		Avis:         d.Collection("avis"),
	}

	if err := s.ensureIndexes(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) ensureIndexes(ctx context.Context) error {
	_, err := s.Users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

func (s *Store) Close(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return s.Client.Disconnect(ctx)
}

// Collection maps a cascade collection name to its handle.
func (s *Store) Collection(name string) *mongo.Collection {
	switch name {
	case "users":
		return s.Users
	case "payes":
		return s.Payes
	case "hotels":
		return s.Hotels
	case "chambres":
		return s.Chambres
	case "offres":
		return s.Offres
	case "reservations":
		return s.Reservations
	case "avis":
		return s.Avis
	}
	return nil
}
