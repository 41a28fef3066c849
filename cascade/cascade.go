// Package cascade keeps the denormalized document graph consistent: parent
// existence checks before child inserts, embedded back-reference lists on
// hotels and reservations, and dependent-first cascading deletes.
package cascade

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var ErrNotFound = errors.New("not found")

// Store is the slice of the document store the coordinator needs. db.Store
// implements it over Mongo; tests use an in-memory fake.
type Store interface {
	Exists(ctx context.Context, collection string, id primitive.ObjectID) (bool, error)
	FindIDs(ctx context.Context, collection string, filter bson.M) ([]primitive.ObjectID, error)
	ParentOf(ctx context.Context, collection string, id primitive.ObjectID, field string) (primitive.ObjectID, error)
	DeleteMany(ctx context.Context, collection string, filter bson.M) (int64, error)
	Push(ctx context.Context, collection string, parent primitive.ObjectID, field string, child primitive.ObjectID) error
	Pull(ctx context.Context, collection string, parent primitive.ObjectID, field string, child primitive.ObjectID) error
}

type Coordinator struct {
	store Store
}

func New(store Store) *Coordinator {
	return &Coordinator{store: store}
}

// ParentExists fails a child create before anything is inserted when the
// referenced parent is missing.
func (c *Coordinator) ParentExists(ctx context.Context, collection string, id primitive.ObjectID) error {
	ok, err := c.store.Exists(ctx, collection, id)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%s %s: %w", collection, id.Hex(), ErrNotFound)
	}
	return nil
}

// AttachChildRef appends the child id to the parent's embedded list after a
// successful child insert. Failures are returned, never swallowed: the
// caller decides how to report a child that exists but is missing from its
// parent's list.
func (c *Coordinator) AttachChildRef(ctx context.Context, parentColl string, parentID primitive.ObjectID, field string, childID primitive.ObjectID) error {
	return c.store.Push(ctx, parentColl, parentID, field, childID)
}

// DetachChildRef pulls the child id out of the parent's embedded list when
// a single child is deleted without deleting its parent.
func (c *Coordinator) DetachChildRef(ctx context.Context, parentColl string, parentID primitive.ObjectID, field string, childID primitive.ObjectID) error {
	return c.store.Pull(ctx, parentColl, parentID, field, childID)
}

// DeletePaye removes the paye and, dependents first, every hotel that
// references it along with those hotels' chambres and offres. Every step
// deletes by filter, so re-running a partially completed cascade converges.
func (c *Coordinator) DeletePaye(ctx context.Context, id primitive.ObjectID) error {
	hotelIDs, err := c.store.FindIDs(ctx, "hotels", bson.M{"payeId": id})
	if err != nil {
		return err
	}
	if len(hotelIDs) > 0 {
		if _, err := c.store.DeleteMany(ctx, "chambres", bson.M{"hotelId": bson.M{"$in": hotelIDs}}); err != nil {
			return err
		}
		if _, err := c.store.DeleteMany(ctx, "offres", bson.M{"hotelId": bson.M{"$in": hotelIDs}}); err != nil {
			return err
		}
		if _, err := c.store.DeleteMany(ctx, "hotels", bson.M{"payeId": id}); err != nil {
			return err
		}
	}
	return c.deleteByID(ctx, "payes", id)
}

// DeleteHotel removes the hotel's chambres and offres, then the hotel.
func (c *Coordinator) DeleteHotel(ctx context.Context, id primitive.ObjectID) error {
	if _, err := c.store.DeleteMany(ctx, "chambres", bson.M{"hotelId": id}); err != nil {
		return err
	}
	if _, err := c.store.DeleteMany(ctx, "offres", bson.M{"hotelId": id}); err != nil {
		return err
	}
	return c.deleteByID(ctx, "hotels", id)
}

// DeleteUser removes every avis written by the user or attached to one of
// the user's reservations, then the reservations, then the user. Avis the
// user wrote on someone else's reservation are also pulled out of that
// reservation's embedded list, since the reservation itself survives.
func (c *Coordinator) DeleteUser(ctx context.Context, id primitive.ObjectID) error {
	resIDs, err := c.store.FindIDs(ctx, "reservations", bson.M{"userId": id})
	if err != nil {
		return err
	}
	own := make(map[primitive.ObjectID]bool, len(resIDs))
	for _, rid := range resIDs {
		own[rid] = true
	}

	authored, err := c.store.FindIDs(ctx, "avis", bson.M{"userId": id})
	if err != nil {
		return err
	}
	for _, avisID := range authored {
		resID, err := c.store.ParentOf(ctx, "avis", avisID, "reservationId")
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				continue
			}
			return err
		}
		if own[resID] {
			continue
		}
		if err := c.store.Pull(ctx, "reservations", resID, "avis", avisID); err != nil {
			return err
		}
	}

	avisFilter := bson.M{"userId": id}
	if len(resIDs) > 0 {
		avisFilter = bson.M{"$or": []bson.M{
			{"userId": id},
			{"reservationId": bson.M{"$in": resIDs}},
		}}
	}
	if _, err := c.store.DeleteMany(ctx, "avis", avisFilter); err != nil {
		return err
	}
	if _, err := c.store.DeleteMany(ctx, "reservations", bson.M{"userId": id}); err != nil {
		return err
	}
	return c.deleteByID(ctx, "users", id)
}

// DeleteReservation removes the avis referencing the reservation, then the
// reservation itself.
func (c *Coordinator) DeleteReservation(ctx context.Context, id primitive.ObjectID) error {
	if _, err := c.store.DeleteMany(ctx, "avis", bson.M{"reservationId": id}); err != nil {
		return err
	}
	return c.deleteByID(ctx, "reservations", id)
}

// DeleteChambre removes the chambre and pulls it from the owning hotel's
// embedded list.
func (c *Coordinator) DeleteChambre(ctx context.Context, id primitive.ObjectID) error {
	return c.deleteChild(ctx, "chambres", id, "hotels", "hotelId", "chambres")
}

// DeleteOffre removes the offre and pulls it from the owning hotel's
// embedded list.
func (c *Coordinator) DeleteOffre(ctx context.Context, id primitive.ObjectID) error {
	return c.deleteChild(ctx, "offres", id, "hotels", "hotelId", "offres")
}

// DeleteAvis removes the avis and pulls it from the owning reservation's
// embedded list.
func (c *Coordinator) DeleteAvis(ctx context.Context, id primitive.ObjectID) error {
	return c.deleteChild(ctx, "avis", id, "reservations", "reservationId", "avis")
}

func (c *Coordinator) deleteChild(ctx context.Context, childColl string, childID primitive.ObjectID, parentColl, refField, listField string) error {
	parentID, err := c.store.ParentOf(ctx, childColl, childID, refField)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return fmt.Errorf("%s %s: %w", childColl, childID.Hex(), ErrNotFound)
		}
		return err
	}
	if err := c.deleteByID(ctx, childColl, childID); err != nil {
		return err
	}
	return c.store.Pull(ctx, parentColl, parentID, listField, childID)
}

func (c *Coordinator) deleteByID(ctx context.Context, collection string, id primitive.ObjectID) error {
	n, err := c.store.DeleteMany(ctx, collection, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", collection, id.Hex(), ErrNotFound)
	}
	return nil
}
