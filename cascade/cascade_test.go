package cascade_test

import (
	"context"
	"errors"
	"testing"

	"voyago/cascade"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ---- fake store ----

type memStore struct {
	colls map[string][]bson.M
}

func newMemStore() *memStore {
	return &memStore{colls: map[string][]bson.M{}}
}

func (m *memStore) add(collection string, doc bson.M) primitive.ObjectID {
	id := primitive.NewObjectID()
	doc["_id"] = id
	m.colls[collection] = append(m.colls[collection], doc)
	return id
}

func matches(doc bson.M, filter bson.M) bool {
	for key, want := range filter {
		if key == "$or" {
			any := false
			for _, sub := range want.([]bson.M) {
				if matches(doc, sub) {
					any = true
					break
				}
			}
			if !any {
				return false
			}
			continue
		}
		switch w := want.(type) {
		case bson.M:
			in, ok := w["$in"].([]primitive.ObjectID)
			if !ok {
				return false
			}
			got, ok := doc[key].(primitive.ObjectID)
			if !ok {
				return false
			}
			found := false
			for _, id := range in {
				if id == got {
					found = true
					break
				}
			}
			if !found {
				return false
			}
		default:
			if doc[key] != want {
				return false
			}
		}
	}
	return true
}

func (m *memStore) Exists(_ context.Context, collection string, id primitive.ObjectID) (bool, error) {
	for _, doc := range m.colls[collection] {
		if doc["_id"] == id {
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) FindIDs(_ context.Context, collection string, filter bson.M) ([]primitive.ObjectID, error) {
	var ids []primitive.ObjectID
	for _, doc := range m.colls[collection] {
		if matches(doc, filter) {
			ids = append(ids, doc["_id"].(primitive.ObjectID))
		}
	}
	return ids, nil
}

func (m *memStore) ParentOf(_ context.Context, collection string, id primitive.ObjectID, field string) (primitive.ObjectID, error) {
	for _, doc := range m.colls[collection] {
		if doc["_id"] == id {
			return doc[field].(primitive.ObjectID), nil
		}
	}
	return primitive.NilObjectID, cascade.ErrNotFound
}

func (m *memStore) DeleteMany(_ context.Context, collection string, filter bson.M) (int64, error) {
	var kept []bson.M
	var deleted int64
	for _, doc := range m.colls[collection] {
		if matches(doc, filter) {
			deleted++
		} else {
			kept = append(kept, doc)
		}
	}
	m.colls[collection] = kept
	return deleted, nil
}

func (m *memStore) Push(_ context.Context, collection string, parent primitive.ObjectID, field string, child primitive.ObjectID) error {
	for _, doc := range m.colls[collection] {
		if doc["_id"] == parent {
			list, _ := doc[field].([]primitive.ObjectID)
			for _, id := range list {
				if id == child {
					return nil
				}
			}
			doc[field] = append(list, child)
			return nil
		}
	}
	return cascade.ErrNotFound
}

func (m *memStore) Pull(_ context.Context, collection string, parent primitive.ObjectID, field string, child primitive.ObjectID) error {
	for _, doc := range m.colls[collection] {
		if doc["_id"] == parent {
			list, _ := doc[field].([]primitive.ObjectID)
			var kept []primitive.ObjectID
			for _, id := range list {
				if id != child {
					kept = append(kept, id)
				}
			}
			doc[field] = kept
		}
	}
	return nil
}

func (m *memStore) count(collection string) int {
	return len(m.colls[collection])
}

func (m *memStore) refs(collection string, parent primitive.ObjectID, field string) []primitive.ObjectID {
	for _, doc := range m.colls[collection] {
		if doc["_id"] == parent {
			list, _ := doc[field].([]primitive.ObjectID)
			return list
		}
	}
	return nil
}

// ---- fixtures ----

type fixture struct {
	store *memStore
	co    *cascade.Coordinator

	paye, hotel, chambre, offre primitive.ObjectID
	user, reservation, avis     primitive.ObjectID
}

func setup(t *testing.T) *fixture {
	t.Helper()
	s := newMemStore()
	f := &fixture{store: s, co: cascade.New(s)}

	f.paye = s.add("payes", bson.M{"nomPaye": "Tunisie"})
	f.hotel = s.add("hotels", bson.M{"payeId": f.paye})
	f.chambre = s.add("chambres", bson.M{"hotelId": f.hotel})
	f.offre = s.add("offres", bson.M{"hotelId": f.hotel})
	f.user = s.add("users", bson.M{"email": "a@x.com"})
	f.reservation = s.add("reservations", bson.M{"hotelId": f.hotel, "chambreId": f.chambre, "userId": f.user})
	f.avis = s.add("avis", bson.M{"userId": f.user, "reservationId": f.reservation})

	ctx := context.Background()
	for _, child := range []struct {
		field string
		id    primitive.ObjectID
	}{{"chambres", f.chambre}, {"offres", f.offre}} {
		if err := f.co.AttachChildRef(ctx, "hotels", f.hotel, child.field, child.id); err != nil {
			t.Fatalf("attach %s: %v", child.field, err)
		}
	}
	if err := f.co.AttachChildRef(ctx, "reservations", f.reservation, "avis", f.avis); err != nil {
		t.Fatalf("attach avis: %v", err)
	}
	return f
}

// ---- tests ----

func TestParentExists(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	if err := f.co.ParentExists(ctx, "hotels", f.hotel); err != nil {
		t.Fatalf("existing hotel reported missing: %v", err)
	}

	err := f.co.ParentExists(ctx, "hotels", primitive.NewObjectID())
	if !errors.Is(err, cascade.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestAttachDetachChildRef(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	refs := f.store.refs("hotels", f.hotel, "chambres")
	if len(refs) != 1 || refs[0] != f.chambre {
		t.Fatalf("hotel chambres list = %v, want [%s]", refs, f.chambre.Hex())
	}

	// attaching twice must not duplicate the reference
	if err := f.co.AttachChildRef(ctx, "hotels", f.hotel, "chambres", f.chambre); err != nil {
		t.Fatalf("re-attach: %v", err)
	}
	if refs := f.store.refs("hotels", f.hotel, "chambres"); len(refs) != 1 {
		t.Fatalf("duplicate reference after re-attach: %v", refs)
	}

	if err := f.co.DetachChildRef(ctx, "hotels", f.hotel, "chambres", f.chambre); err != nil {
		t.Fatalf("detach: %v", err)
	}
	if refs := f.store.refs("hotels", f.hotel, "chambres"); len(refs) != 0 {
		t.Fatalf("reference still present after detach: %v", refs)
	}

	err := f.co.AttachChildRef(ctx, "hotels", primitive.NewObjectID(), "chambres", f.chambre)
	if err == nil {
		t.Fatal("attach to missing parent must fail")
	}
}

func TestDeletePayeCascades(t *testing.T) {
	f := setup(t)

	if err := f.co.DeletePaye(context.Background(), f.paye); err != nil {
		t.Fatalf("DeletePaye: %v", err)
	}

	for _, coll := range []string{"payes", "hotels", "chambres", "offres"} {
		if n := f.store.count(coll); n != 0 {
			t.Errorf("%s not empty after paye cascade: %d left", coll, n)
		}
	}
}

func TestDeleteHotelCascades(t *testing.T) {
	f := setup(t)

	if err := f.co.DeleteHotel(context.Background(), f.hotel); err != nil {
		t.Fatalf("DeleteHotel: %v", err)
	}

	for _, coll := range []string{"hotels", "chambres", "offres"} {
		if n := f.store.count(coll); n != 0 {
			t.Errorf("%s not empty after hotel cascade: %d left", coll, n)
		}
	}
	if n := f.store.count("payes"); n != 1 {
		t.Errorf("paye must survive a hotel delete")
	}
}

func TestDeleteUserCascades(t *testing.T) {
	f := setup(t)

	// a second user's data must survive
	other := f.store.add("users", bson.M{"email": "b@x.com"})
	otherRes := f.store.add("reservations", bson.M{"userId": other})
	f.store.add("avis", bson.M{"userId": other, "reservationId": otherRes})

	if err := f.co.DeleteUser(context.Background(), f.user); err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}

	if n := f.store.count("reservations"); n != 1 {
		t.Errorf("reservations left = %d, want 1", n)
	}
	if n := f.store.count("avis"); n != 1 {
		t.Errorf("avis left = %d, want 1", n)
	}
	if n := f.store.count("users"); n != 1 {
		t.Errorf("users left = %d, want 1", n)
	}
}

// An avis the deleted user wrote on another user's reservation must vanish
// from that reservation's embedded list, not just from the avis collection.
func TestDeleteUserDetachesAvisFromSurvivingReservations(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	other := f.store.add("users", bson.M{"email": "b@x.com"})
	otherRes := f.store.add("reservations", bson.M{"userId": other})
	crossAvis := f.store.add("avis", bson.M{"userId": f.user, "reservationId": otherRes})
	if err := f.co.AttachChildRef(ctx, "reservations", otherRes, "avis", crossAvis); err != nil {
		t.Fatalf("attach avis: %v", err)
	}

	if err := f.co.DeleteUser(ctx, f.user); err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}

	if n := f.store.count("avis"); n != 0 {
		t.Errorf("avis left = %d, want 0", n)
	}
	if refs := f.store.refs("reservations", otherRes, "avis"); len(refs) != 0 {
		t.Errorf("surviving reservation still references deleted avis: %v", refs)
	}
}

func TestDeleteReservationCascades(t *testing.T) {
	f := setup(t)

	if err := f.co.DeleteReservation(context.Background(), f.reservation); err != nil {
		t.Fatalf("DeleteReservation: %v", err)
	}
	if n := f.store.count("avis"); n != 0 {
		t.Errorf("avis left = %d, want 0", n)
	}
	if n := f.store.count("users"); n != 1 {
		t.Errorf("deleting a reservation must not touch users")
	}
}

func TestDeleteChildDetachesBackRef(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	if err := f.co.DeleteChambre(ctx, f.chambre); err != nil {
		t.Fatalf("DeleteChambre: %v", err)
	}
	if refs := f.store.refs("hotels", f.hotel, "chambres"); len(refs) != 0 {
		t.Errorf("hotel still references deleted chambre: %v", refs)
	}

	if err := f.co.DeleteOffre(ctx, f.offre); err != nil {
		t.Fatalf("DeleteOffre: %v", err)
	}
	if refs := f.store.refs("hotels", f.hotel, "offres"); len(refs) != 0 {
		t.Errorf("hotel still references deleted offre: %v", refs)
	}

	if err := f.co.DeleteAvis(ctx, f.avis); err != nil {
		t.Fatalf("DeleteAvis: %v", err)
	}
	if refs := f.store.refs("reservations", f.reservation, "avis"); len(refs) != 0 {
		t.Errorf("reservation still references deleted avis: %v", refs)
	}
}

func TestDeleteMissingEntity(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	for name, del := range map[string]func(context.Context, primitive.ObjectID) error{
		"paye":        f.co.DeletePaye,
		"hotel":       f.co.DeleteHotel,
		"user":        f.co.DeleteUser,
		"reservation": f.co.DeleteReservation,
		"chambre":     f.co.DeleteChambre,
		"offre":       f.co.DeleteOffre,
		"avis":        f.co.DeleteAvis,
	} {
		if err := del(ctx, primitive.NewObjectID()); !errors.Is(err, cascade.ErrNotFound) {
			t.Errorf("delete missing %s: got %v, want ErrNotFound", name, err)
		}
	}
}

// A partially completed cascade must converge when re-run: filter-based
// deletes make the second pass a no-op for the already-removed dependents.
func TestCascadeRerunConverges(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	// simulate a crash after the chambres step
	if _, err := f.store.DeleteMany(ctx, "chambres", bson.M{"hotelId": f.hotel}); err != nil {
		t.Fatal(err)
	}

	if err := f.co.DeleteHotel(ctx, f.hotel); err != nil {
		t.Fatalf("re-run after partial cascade: %v", err)
	}
	for _, coll := range []string{"hotels", "chambres", "offres"} {
		if n := f.store.count(coll); n != 0 {
			t.Errorf("%s not empty: %d left", coll, n)
		}
	}
}
