package payes

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

func (h *Handler) CreatePaye(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var paye models.Paye
	if err := json.NewDecoder(r.Body).Decode(&paye); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid paye data")
		return
	}
	if paye.NomPaye == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "nomPaye is required")
		return
	}

	paye.ID = primitive.NewObjectID()
	if _, err := h.store.Payes.InsertOne(r.Context(), paye); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to insert paye")
		return
	}

	go h.events.Emit(context.Background(), "paye-created", models.Event{EntityType: "paye", EntityID: paye.ID.Hex(), Method: "POST"})
	utils.RespondWithJSON(w, http.StatusCreated, utils.M{"id": paye.ID.Hex(), "message": "Paye created"})
}

func (h *Handler) GetPayes(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	skip, limit := utils.ParsePagination(r, 20, 100)
	cursor, err := h.store.Payes.Find(ctx, bson.M{}, options.Find().SetSkip(skip).SetLimit(limit))
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Error fetching payes")
		return
	}
	defer cursor.Close(ctx)

	var payes []models.Paye
	if err := cursor.All(ctx, &payes); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Error parsing paye data")
		return
	}
	if payes == nil {
		payes = []models.Paye{}
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"status_code": http.StatusOK, "payes": payes})
}

func (h *Handler) GetPaye(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := utils.ParseID(ps.ByName("id"))
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid paye ID")
		return
	}

	var paye models.Paye
	if err := h.store.Payes.FindOne(r.Context(), bson.M{"_id": id}).Decode(&paye); err != nil {
		utils.RespondWithError(w, http.StatusNotFound, "Paye not found")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, paye)
}

// GetPayeHotels lists the hotels of one destination.
func (h *Handler) GetPayeHotels(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := utils.ParseID(ps.ByName("id"))
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid paye ID")
		return
	}

	cursor, err := h.store.Hotels.Find(r.Context(), bson.M{"payeId": id})
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Error fetching hotels")
		return
	}
	defer cursor.Close(r.Context())

	var hotels []models.Hotel
	if err := cursor.All(r.Context(), &hotels); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Error parsing hotel data")
		return
	}
	if hotels == nil {
		hotels = []models.Hotel{}
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"status_code": http.StatusOK, "hotels": hotels})
}

func (h *Handler) UpdatePaye(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := utils.ParseID(ps.ByName("id"))
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid paye ID")
		return
	}

	var paye models.Paye
	if err := json.NewDecoder(r.Body).Decode(&paye); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid paye data")
		return
	}

	// Existence is checked apart from the modified count so an unchanged
	// document is not reported as missing.
	n, err := h.store.Payes.CountDocuments(r.Context(), bson.M{"_id": id})
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if n == 0 {
		utils.RespondWithError(w, http.StatusNotFound, "Paye not found")
		return
	}

	_, err = h.store.Payes.UpdateOne(r.Context(), bson.M{"_id": id}, bson.M{"$set": bson.M{
		"nomPaye":   paye.NomPaye,
		"imagePaye": paye.ImagePaye,
	}})
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to update paye")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"message": "Paye updated"})
}

func (h *Handler) DeletePaye(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := utils.ParseID(ps.ByName("id"))
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid paye ID")
		return
	}

	if err := h.cascade.DeletePaye(r.Context(), id); err != nil {
		if errors.Is(err, cascade.ErrNotFound) {
			utils.RespondWithError(w, http.StatusNotFound, "Paye not found")
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to delete paye")
		return
	}

	go h.events.Emit(context.Background(), "paye-deleted", models.Event{EntityType: "paye", EntityID: id.Hex(), Method: "DELETE"})
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"message": "Paye deleted"})
}
