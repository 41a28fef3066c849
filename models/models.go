package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is an account that can log in and own reservations and avis.
type User struct {
	ID       primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name     string             `json:"name" bson:"name"`
	Email    string             `json:"email" bson:"email"`
	Password string             `json:"-" bson:"password"`
	Role     string             `json:"role" bson:"role"`
}

// Paye is a destination country owning hotels.
type Paye struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	NomPaye   string             `json:"nomPaye" bson:"nomPaye"`
	ImagePaye string             `json:"imagePaye" bson:"imagePaye"`
}

// Hotel keeps id-only references to its chambres and offres; the child
// documents live in their own collections and the lists are kept in sync
// by the cascade coordinator.
type Hotel struct {
	ID          primitive.ObjectID   `json:"id" bson:"_id,omitempty"`
	NomHotel    string               `json:"nomHotel" bson:"nomHotel"`
	ImagesHotel []string             `json:"imagesHotel" bson:"imagesHotel"`
	Adresse     string               `json:"adresse" bson:"adresse"`
	Classement  int                  `json:"classement" bson:"classement"`
	Description string               `json:"description" bson:"description"`
	PayeID      primitive.ObjectID   `json:"payeId" bson:"payeId"`
	Chambres    []primitive.ObjectID `json:"chambres" bson:"chambres"`
	Offres      []primitive.ObjectID `json:"offres" bson:"offres"`
}

type Chambre struct {
	ID            primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	TypeChambre   string             `json:"typeChambre" bson:"typeChambre"`
	ImagesChambre []string           `json:"imagesChambre" bson:"imagesChambre"`
	PrixParNuit   float64            `json:"prixParNuit" bson:"prixParNuit"`
	HotelID       primitive.ObjectID `json:"hotelId" bson:"hotelId"`
}

type Offre struct {
	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	PrixParNuit float64            `json:"prixParNuit" bson:"prixParNuit"`
	Promotion   float64            `json:"promotion" bson:"promotion"`
	HotelID     primitive.ObjectID `json:"hotelId" bson:"hotelId"`
}

// Reservation carries its own remaining-capacity counter
// (placesDisponibles); it must be positive when the reservation is created.
type Reservation struct {
	ID                primitive.ObjectID   `json:"id" bson:"_id,omitempty"`
	DateReservation   string               `json:"dateReservation" bson:"dateReservation"`
	DateDepart        string               `json:"dateDepart" bson:"dateDepart"`
	DateRetour        string               `json:"dateRetour" bson:"dateRetour"`
	Destination       string               `json:"destination" bson:"destination"`
	Description       string               `json:"description" bson:"description"`
	TypeReservation   string               `json:"typeReservation" bson:"typeReservation"`
	MontantTotal      float64              `json:"montantTotal" bson:"montantTotal"`
	Prix              float64              `json:"prix" bson:"prix"`
	PlacesDisponibles int                  `json:"placesDisponibles" bson:"placesDisponibles"`
	HotelID           primitive.ObjectID   `json:"hotelId" bson:"hotelId"`
	ChambreID         primitive.ObjectID   `json:"chambreId" bson:"chambreId"`
	UserID            primitive.ObjectID   `json:"userId,omitempty" bson:"userId,omitempty"`
	Avis              []primitive.ObjectID `json:"avis" bson:"avis"`
}

type Avis struct {
	ID            primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Note          int                `json:"note" bson:"note"`
	Commentaire   string             `json:"commentaire" bson:"commentaire"`
	DateAvis      string             `json:"dateAvis" bson:"dateAvis"`
	UserID        primitive.ObjectID `json:"userId" bson:"userId"`
	ReservationID primitive.ObjectID `json:"reservationId" bson:"reservationId"`
}

// Event is a change notification published on the mq channel after a
// successful mutation.
type Event struct {
	EntityType string `json:"entity_type"`
	EntityID   string `json:"entity_id"`
	Method     string `json:"method"`
}
