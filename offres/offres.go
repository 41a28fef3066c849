package offres

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
	"github.com/rs/zerolog/log"
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

func (h *Handler) CreateOffre(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var offre models.Offre
	if err := json.NewDecoder(r.Body).Decode(&offre); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid offre data")
		return
	}
	if offre.HotelID.IsZero() {
		utils.RespondWithError(w, http.StatusBadRequest, "hotelId is required")
		return
	}
	if offre.PrixParNuit <= 0 {
		utils.RespondWithError(w, http.StatusBadRequest, "prixParNuit must be positive")
		return
	}

	if err := h.cascade.ParentExists(r.Context(), "hotels", offre.HotelID); err != nil {
		if errors.Is(err, cascade.ErrNotFound) {
			utils.RespondWithError(w, http.StatusNotFound, "Hotel not found")
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	offre.ID = primitive.NewObjectID()
	if _, err := h.store.Offres.InsertOne(r.Context(), offre); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to insert offre")
		return
	}

	if err := h.cascade.AttachChildRef(r.Context(), "hotels", offre.HotelID, "offres", offre.ID); err != nil {
		log.Printf("offre %s: attach to hotel %s: %v", offre.ID.Hex(), offre.HotelID.Hex(), err)
		utils.RespondWithJSON(w, http.StatusInternalServerError, utils.M{
			"id":    offre.ID.Hex(),
			"error": "Offre created but hotel list update failed",
		})
		return
	}

	go h.events.Emit(context.Background(), "offre-created", models.Event{EntityType: "offre", EntityID: offre.ID.Hex(), Method: "POST"})
	utils.RespondWithJSON(w, http.StatusCreated, utils.M{"id": offre.ID.Hex(), "message": "Offre created"})
}

func (h *Handler) GetOffres(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	skip, limit := utils.ParsePagination(r, 20, 100)
	cursor, err := h.store.Offres.Find(ctx, bson.M{}, options.Find().SetSkip(skip).SetLimit(limit))
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Error fetching offres")
		return
	}
	defer cursor.Close(ctx)

	var offres []models.Offre
	if err := cursor.All(ctx, &offres); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Error parsing offre data")
		return
	}
	if offres == nil {
		offres = []models.Offre{}
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"status_code": http.StatusOK, "offres": offres})
}

func (h *Handler) GetOffre(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := utils.ParseID(ps.ByName("id"))
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid offre ID")
		return
	}

	var offre models.Offre
	if err := h.store.Offres.FindOne(r.Context(), bson.M{"_id": id}).Decode(&offre); err != nil {
		utils.RespondWithError(w, http.StatusNotFound, "Offre not found")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, offre)
}

func (h *Handler) UpdateOffre(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := utils.ParseID(ps.ByName("id"))
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid offre ID")
		return
	}

	var offre models.Offre
	if err := json.NewDecoder(r.Body).Decode(&offre); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid offre data")
		return
	}

	n, err := h.store.Offres.CountDocuments(r.Context(), bson.M{"_id": id})
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if n == 0 {
		utils.RespondWithError(w, http.StatusNotFound, "Offre not found")
		return
	}

	_, err = h.store.Offres.UpdateOne(r.Context(), bson.M{"_id": id}, bson.M{"$set": bson.M{
		"prixParNuit": offre.PrixParNuit,
		"promotion":   offre.Promotion,
	}})
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to update offre")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"message": "Offre updated"})
}

func (h *Handler) DeleteOffre(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := utils.ParseID(ps.ByName("id"))
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid offre ID")
		return
	}

	if err := h.cascade.DeleteOffre(r.Context(), id); err != nil {
		if errors.Is(err, cascade.ErrNotFound) {
			utils.RespondWithError(w, http.StatusNotFound, "Offre not found")
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to delete offre")
		return
	}

	go h.events.Emit(context.Background(), "offre-deleted", models.Event{EntityType: "offre", EntityID: id.Hex(), Method: "DELETE"})
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"message": "Offre deleted"})
}
