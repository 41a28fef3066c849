package hotels

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"voyago/cascade"
	"voyago/db"
	"voyago/models"
	"voyago/mq"
	"voyago/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Handler struct {
	store   *db.Store
	cascade *cascade.Coordinator
	events  *mq.Emitter
}

func NewHandler(store *db.Store, co *cascade.Coordinator, events *mq.Emitter) *Handler {
	return &Handler{store: store, cascade: co, events: events}
}

func (h *Handler) CreateHotel(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var hotel models.Hotel
	if err := json.NewDecoder(r.Body).Decode(&hotel); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid hotel data")
		return
	}
	if hotel.NomHotel == "" || hotel.PayeID.IsZero() {
		utils.RespondWithError(w, http.StatusBadRequest, "nomHotel and payeId are required")
		return
	}

	// A hotel may not reference a nonexistent paye.
	if err := h.cascade.ParentExists(r.Context(), "payes", hotel.PayeID); err != nil {
		if errors.Is(err, cascade.ErrNotFound) {
			utils.RespondWithError(w, http.StatusNotFound, "Paye not found")
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	hotel.ID = primitive.NewObjectID()
	if hotel.ImagesHotel == nil {
		hotel.ImagesHotel = []string{}
	}
	hotel.Chambres = []primitive.ObjectID{}
	hotel.Offres = []primitive.ObjectID{}

	if _, err := h.store.Hotels.InsertOne(r.Context(), hotel); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to insert hotel")
		return
	}

	go h.events.Emit(context.Background(), "hotel-created", models.Event{EntityType: "hotel", EntityID: hotel.ID.Hex(), Method: "POST"})
	utils.RespondWithJSON(w, http.StatusCreated, utils.M{"id": hotel.ID.Hex(), "message": "Hotel created"})
}

func (h *Handler) GetHotels(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	skip, limit := utils.ParsePagination(r, 20, 100)
	cursor, err := h.store.Hotels.Find(ctx, bson.M{}, options.Find().SetSkip(skip).SetLimit(limit))
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Error fetching hotels")
		return
	}
	defer cursor.Close(ctx)

	var hotels []models.Hotel
	if err := cursor.All(ctx, &hotels); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Error parsing hotel data")
		return
	}
	if hotels == nil {
		hotels = []models.Hotel{}
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"status_code": http.StatusOK, "hotels": hotels})
}

func (h *Handler) GetHotel(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := utils.ParseID(ps.ByName("id"))
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid hotel ID")
		return
	}

	var hotel models.Hotel
	if err := h.store.Hotels.FindOne(r.Context(), bson.M{"_id": id}).Decode(&hotel); err != nil {
		utils.RespondWithError(w, http.StatusNotFound, "Hotel not found")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, hotel)
}

// GetHotelChambres resolves the hotel's embedded chambre id list into full
// documents.
func (h *Handler) GetHotelChambres(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	h.childList(w, r, ps, h.storeChambres, "chambres")
}

// GetHotelOffres resolves the hotel's embedded offre id list.
func (h *Handler) GetHotelOffres(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	h.childList(w, r, ps, h.storeOffres, "offres")
}

type childFinder func(ctx context.Context, hotelID primitive.ObjectID) (any, error)

func (h *Handler) storeChambres(ctx context.Context, hotelID primitive.ObjectID) (any, error) {
	cursor, err := h.store.Chambres.Find(ctx, bson.M{"hotelId": hotelID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	chambres := []models.Chambre{}
	if err := cursor.All(ctx, &chambres); err != nil {
		return nil, err
	}
	return chambres, nil
}

func (h *Handler) storeOffres(ctx context.Context, hotelID primitive.ObjectID) (any, error) {
	cursor, err := h.store.Offres.Find(ctx, bson.M{"hotelId": hotelID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	offres := []models.Offre{}
	if err := cursor.All(ctx, &offres); err != nil {
		return nil, err
	}
	return offres, nil
}

func (h *Handler) childList(w http.ResponseWriter, r *http.Request, ps httprouter.Params, find childFinder, plural string) {
	id, err := utils.ParseID(ps.ByName("id"))
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid hotel ID")
		return
	}
	if err := h.cascade.ParentExists(r.Context(), "hotels", id); err != nil {
		utils.RespondWithError(w, http.StatusNotFound, "Hotel not found")
		return
	}

	children, err := find(r.Context(), id)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Error fetching "+plural)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"status_code": http.StatusOK, plural: children})
}

func (h *Handler) UpdateHotel(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := utils.ParseID(ps.ByName("id"))
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid hotel ID")
		return
	}

	var hotel models.Hotel
	if err := json.NewDecoder(r.Body).Decode(&hotel); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid hotel data")
		return
	}

	if !hotel.PayeID.IsZero() {
		if err := h.cascade.ParentExists(r.Context(), "payes", hotel.PayeID); err != nil {
			utils.RespondWithError(w, http.StatusNotFound, "Paye not found")
			return
		}
	}

	n, err := h.store.Hotels.CountDocuments(r.Context(), bson.M{"_id": id})
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if n == 0 {
		utils.RespondWithError(w, http.StatusNotFound, "Hotel not found")
		return
	}

	// Embedded chambre/offre lists are owned by the coordinator and are
	// not replaceable through an update.
	set := bson.M{
		"nomHotel":    hotel.NomHotel,
		"adresse":     hotel.Adresse,
		"classement":  hotel.Classement,
		"description": hotel.Description,
	}
	if hotel.ImagesHotel != nil {
		set["imagesHotel"] = hotel.ImagesHotel
	}
	if !hotel.PayeID.IsZero() {
		set["payeId"] = hotel.PayeID
	}

	if _, err := h.store.Hotels.UpdateOne(r.Context(), bson.M{"_id": id}, bson.M{"$set": set}); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to update hotel")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"message": "Hotel updated"})
}

func (h *Handler) DeleteHotel(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := utils.ParseID(ps.ByName("id"))
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid hotel ID")
		return
	}

	if err := h.cascade.DeleteHotel(r.Context(), id); err != nil {
		if errors.Is(err, cascade.ErrNotFound) {
			utils.RespondWithError(w, http.StatusNotFound, "Hotel not found")
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to delete hotel")
		return
	}

	go h.events.Emit(context.Background(), "hotel-deleted", models.Event{EntityType: "hotel", EntityID: id.Hex(), Method: "DELETE"})
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"message": "Hotel deleted"})
}

// AddImage pushes a served photo path onto the hotel's imagesHotel list; the
// upload itself is handled by filemgr.
func (h *Handler) AddImage(ctx context.Context, hotelID primitive.ObjectID, path string) error {
	res, err := h.store.Hotels.UpdateOne(ctx, bson.M{"_id": hotelID}, bson.M{"$addToSet": bson.M{"imagesHotel": path}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return cascade.ErrNotFound
	}
	return nil
}
