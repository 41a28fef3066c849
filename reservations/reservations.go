package reservations

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

func (h *Handler) CreateReservation(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var res models.Reservation
	if err := json.NewDecoder(r.Body).Decode(&res); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid reservation data")
		return
	}
	if res.HotelID.IsZero() || res.ChambreID.IsZero() {
		utils.RespondWithError(w, http.StatusBadRequest, "hotelId and chambreId are required")
		return
	}
	if res.PlacesDisponibles <= 0 {
		utils.RespondWithError(w, http.StatusBadRequest, "placesDisponibles must be a positive integer")
		return
	}

	if err := h.cascade.ParentExists(r.Context(), "hotels", res.HotelID); err != nil {
		if errors.Is(err, cascade.ErrNotFound) {
			utils.RespondWithError(w, http.StatusNotFound, "Hotel not found")
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if err := h.cascade.ParentExists(r.Context(), "chambres", res.ChambreID); err != nil {
		if errors.Is(err, cascade.ErrNotFound) {
			utils.RespondWithError(w, http.StatusNotFound, "Chambre not found")
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	// The authenticated user owns the reservation.
	if userID, ok := middleware.UserID(r.Context()); ok {
		if oid, err := utils.ParseID(userID); err == nil {
			res.UserID = oid
		}
	}

	res.ID = primitive.NewObjectID()
	res.Avis = []primitive.ObjectID{}
	if res.DateReservation == "" {
		res.DateReservation = time.Now().Format(time.RFC3339)
	}

	if _, err := h.store.Reservations.InsertOne(r.Context(), res); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to insert reservation")
		return
	}

	go h.events.Emit(context.Background(), "reservation-created", models.Event{EntityType: "reservation", EntityID: res.ID.Hex(), Method: "POST"})
	utils.RespondWithJSON(w, http.StatusCreated, utils.M{"id": res.ID.Hex(), "message": "Reservation created"})
}

func (h *Handler) GetReservations(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	skip, limit := utils.ParsePagination(r, 20, 100)

	// ?user=<id> narrows to one user's reservations
	filter := bson.M{}
	if userHex := r.URL.Query().Get("user"); userHex != "" {
		uid, err := utils.ParseID(userHex)
		if err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, "Invalid user ID")
			return
		}
		filter["userId"] = uid
	}

	cursor, err := h.store.Reservations.Find(ctx, filter, options.Find().SetSkip(skip).SetLimit(limit))
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Error fetching reservations")
		return
	}
	defer cursor.Close(ctx)

	var reservations []models.Reservation
	if err := cursor.All(ctx, &reservations); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Error parsing reservation data")
		return
	}
	if reservations == nil {
		reservations = []models.Reservation{}
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"status_code": http.StatusOK, "reservations": reservations})
}

func (h *Handler) GetReservation(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := utils.ParseID(ps.ByName("id"))
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid reservation ID")
		return
	}

	var res models.Reservation
	if err := h.store.Reservations.FindOne(r.Context(), bson.M{"_id": id}).Decode(&res); err != nil {
		utils.RespondWithError(w, http.StatusNotFound, "Reservation not found")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, res)
}

func (h *Handler) UpdateReservation(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := utils.ParseID(ps.ByName("id"))
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid reservation ID")
		return
	}

	var res models.Reservation
	if err := json.NewDecoder(r.Body).Decode(&res); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid reservation data")
		return
	}
	if res.PlacesDisponibles < 0 {
		utils.RespondWithError(w, http.StatusBadRequest, "placesDisponibles may not be negative")
		return
	}

	n, err := h.store.Reservations.CountDocuments(r.Context(), bson.M{"_id": id})
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if n == 0 {
		utils.RespondWithError(w, http.StatusNotFound, "Reservation not found")
		return
	}

	_, err = h.store.Reservations.UpdateOne(r.Context(), bson.M{"_id": id}, bson.M{"$set": bson.M{
		"dateReservation":   res.DateReservation,
		"dateDepart":        res.DateDepart,
		"dateRetour":        res.DateRetour,
		"destination":       res.Destination,
		"description":       res.Description,
		"typeReservation":   res.TypeReservation,
		"montantTotal":      res.MontantTotal,
		"prix":              res.Prix,
		"placesDisponibles": res.PlacesDisponibles,
	}})
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to update reservation")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"message": "Reservation updated"})
}

func (h *Handler) DeleteReservation(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := utils.ParseID(ps.ByName("id"))
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid reservation ID")
		return
	}

	if err := h.cascade.DeleteReservation(r.Context(), id); err != nil {
		if errors.Is(err, cascade.ErrNotFound) {
			utils.RespondWithError(w, http.StatusNotFound, "Reservation not found")
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to delete reservation")
		return
	}

	go h.events.Emit(context.Background(), "reservation-deleted", models.Event{EntityType: "reservation", EntityID: id.Hex(), Method: "DELETE"})
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"message": "Reservation deleted"})
}
