package chambres

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

func (h *Handler) CreateChambre(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var chambre models.Chambre
	if err := json.NewDecoder(r.Body).Decode(&chambre); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid chambre data")
		return
	}
	if chambre.TypeChambre == "" || chambre.HotelID.IsZero() {
		utils.RespondWithError(w, http.StatusBadRequest, "typeChambre and hotelId are required")
		return
	}

	// The chambre is never persisted when the hotel is missing.
	if err := h.cascade.ParentExists(r.Context(), "hotels", chambre.HotelID); err != nil {
		if errors.Is(err, cascade.ErrNotFound) {
			utils.RespondWithError(w, http.StatusNotFound, "Hotel not found")
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	chambre.ID = primitive.NewObjectID()
	if chambre.ImagesChambre == nil {
		chambre.ImagesChambre = []string{}
	}
	if _, err := h.store.Chambres.InsertOne(r.Context(), chambre); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to insert chambre")
		return
	}

	// The back-reference is part of the same logical operation; a failure
	// is reported, not swallowed, even though the chambre itself exists.
	if err := h.cascade.AttachChildRef(r.Context(), "hotels", chambre.HotelID, "chambres", chambre.ID); err != nil {
		log.Printf("chambre %s: attach to hotel %s: %v", chambre.ID.Hex(), chambre.HotelID.Hex(), err)
		utils.RespondWithJSON(w, http.StatusInternalServerError, utils.M{
			"id":    chambre.ID.Hex(),
			"error": "Chambre created but hotel list update failed",
		})
		return
	}

	go h.events.Emit(context.Background(), "chambre-created", models.Event{EntityType: "chambre", EntityID: chambre.ID.Hex(), Method: "POST"})
	utils.RespondWithJSON(w, http.StatusCreated, utils.M{"id": chambre.ID.Hex(), "message": "Chambre created"})
}

func (h *Handler) GetChambres(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	skip, limit := utils.ParsePagination(r, 20, 100)
	cursor, err := h.store.Chambres.Find(ctx, bson.M{}, options.Find().SetSkip(skip).SetLimit(limit))
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Error fetching chambres")
		return
	}
	defer cursor.Close(ctx)

	var chambres []models.Chambre
	if err := cursor.All(ctx, &chambres); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Error parsing chambre data")
		return
	}
	if chambres == nil {
		chambres = []models.Chambre{}
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"status_code": http.StatusOK, "chambres": chambres})
}

func (h *Handler) GetChambre(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := utils.ParseID(ps.ByName("id"))
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid chambre ID")
		return
	}

	var chambre models.Chambre
	if err := h.store.Chambres.FindOne(r.Context(), bson.M{"_id": id}).Decode(&chambre); err != nil {
		utils.RespondWithError(w, http.StatusNotFound, "Chambre not found")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, chambre)
}

func (h *Handler) UpdateChambre(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := utils.ParseID(ps.ByName("id"))
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid chambre ID")
		return
	}

	var chambre models.Chambre
	if err := json.NewDecoder(r.Body).Decode(&chambre); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid chambre data")
		return
	}

	n, err := h.store.Chambres.CountDocuments(r.Context(), bson.M{"_id": id})
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if n == 0 {
		utils.RespondWithError(w, http.StatusNotFound, "Chambre not found")
		return
	}

	// hotelId is fixed at creation; moving a chambre between hotels would
	// desync both embedded lists.
	set := bson.M{
		"typeChambre": chambre.TypeChambre,
		"prixParNuit": chambre.PrixParNuit,
	}
	if chambre.ImagesChambre != nil {
		set["imagesChambre"] = chambre.ImagesChambre
	}

	if _, err := h.store.Chambres.UpdateOne(r.Context(), bson.M{"_id": id}, bson.M{"$set": set}); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to update chambre")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"message": "Chambre updated"})
}

func (h *Handler) DeleteChambre(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := utils.ParseID(ps.ByName("id"))
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid chambre ID")
		return
	}

	if err := h.cascade.DeleteChambre(r.Context(), id); err != nil {
		if errors.Is(err, cascade.ErrNotFound) {
			utils.RespondWithError(w, http.StatusNotFound, "Chambre not found")
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to delete chambre")
		return
	}

	go h.events.Emit(context.Background(), "chambre-deleted", models.Event{EntityType: "chambre", EntityID: id.Hex(), Method: "DELETE"})
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"message": "Chambre deleted"})
}
