package avis

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"voyago/cascade"
	"voyago/db"
	"voyago/middleware"
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

func (h *Handler) CreateAvis(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var a models.Avis
	if err := json.NewDecoder(r.Body).Decode(&a); err != nil || a.Note < 1 || a.Note > 5 || a.Commentaire == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid avis data")
		return
	}

	// Default the author to the authenticated user when the payload does
	// not name one.
	if a.UserID.IsZero() {
		if userID, ok := middleware.UserID(r.Context()); ok {
			if oid, err := utils.ParseID(userID); err == nil {
				a.UserID = oid
			}
		}
	}
	if a.UserID.IsZero() || a.ReservationID.IsZero() {
		utils.RespondWithError(w, http.StatusBadRequest, "userId and reservationId are required")
		return
	}

	if err := h.cascade.ParentExists(r.Context(), "users", a.UserID); err != nil {
		if errors.Is(err, cascade.ErrNotFound) {
			utils.RespondWithError(w, http.StatusNotFound, "User not found")
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if err := h.cascade.ParentExists(r.Context(), "reservations", a.ReservationID); err != nil {
		if errors.Is(err, cascade.ErrNotFound) {
			utils.RespondWithError(w, http.StatusNotFound, "Reservation not found")
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	a.ID = primitive.NewObjectID()
	if a.DateAvis == "" {
		a.DateAvis = time.Now().Format(time.RFC3339)
	}

	if _, err := h.store.Avis.InsertOne(r.Context(), a); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to insert avis")
		return
	}

	if err := h.cascade.AttachChildRef(r.Context(), "reservations", a.ReservationID, "avis", a.ID); err != nil {
		log.Printf("avis %s: attach to reservation %s: %v", a.ID.Hex(), a.ReservationID.Hex(), err)
		utils.RespondWithJSON(w, http.StatusInternalServerError, utils.M{
			"id":    a.ID.Hex(),
			"error": "Avis created but reservation list update failed",
		})
		return
	}

	go h.events.Emit(context.Background(), "avis-created", models.Event{EntityType: "avis", EntityID: a.ID.Hex(), Method: "POST"})
	utils.RespondWithJSON(w, http.StatusCreated, utils.M{"id": a.ID.Hex(), "message": "Avis created"})
}

func (h *Handler) GetAllAvis(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	skip, limit := utils.ParsePagination(r, 20, 100)
	cursor, err := h.store.Avis.Find(ctx, bson.M{}, options.Find().SetSkip(skip).SetLimit(limit))
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Error fetching avis")
		return
	}
	defer cursor.Close(ctx)

	var list []models.Avis
	if err := cursor.All(ctx, &list); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Error parsing avis data")
		return
	}
	if list == nil {
		list = []models.Avis{}
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"status_code": http.StatusOK, "avis": list})
}

func (h *Handler) GetAvis(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := utils.ParseID(ps.ByName("id"))
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid avis ID")
		return
	}

	var a models.Avis
	if err := h.store.Avis.FindOne(r.Context(), bson.M{"_id": id}).Decode(&a); err != nil {
		utils.RespondWithError(w, http.StatusNotFound, "Avis not found")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, a)
}

func (h *Handler) UpdateAvis(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := utils.ParseID(ps.ByName("id"))
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid avis ID")
		return
	}

	var a models.Avis
	if err := json.NewDecoder(r.Body).Decode(&a); err != nil || a.Note < 1 || a.Note > 5 {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid avis data")
		return
	}

	n, err := h.store.Avis.CountDocuments(r.Context(), bson.M{"_id": id})
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if n == 0 {
		utils.RespondWithError(w, http.StatusNotFound, "Avis not found")
		return
	}

	_, err = h.store.Avis.UpdateOne(r.Context(), bson.M{"_id": id}, bson.M{"$set": bson.M{
		"note":        a.Note,
		"commentaire": a.Commentaire,
		"dateAvis":    a.DateAvis,
	}})
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to update avis")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"message": "Avis updated"})
}

func (h *Handler) DeleteAvis(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := utils.ParseID(ps.ByName("id"))
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid avis ID")
		return
	}

	if err := h.cascade.DeleteAvis(r.Context(), id); err != nil {
		if errors.Is(err, cascade.ErrNotFound) {
			utils.RespondWithError(w, http.StatusNotFound, "Avis not found")
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to delete avis")
		return
	}

	go h.events.Emit(context.Background(), "avis-deleted", models.Event{EntityType: "avis", EntityID: id.Hex(), Method: "DELETE"})
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"message": "Avis deleted"})
}
