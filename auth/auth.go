package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"voyago/db"
	"voyago/middleware"
	"voyago/models"
	"voyago/rdx"
	"voyago/utils"

	"github.com/julienschmidt/httprouter"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
)

const (
	accessTokenTTL  = 12 * time.Hour
	refreshTokenTTL = 7 * 24 * time.Hour
)

type Handler struct {
	store *db.Store
	auth  *middleware.Auth
	cache *rdx.Cache
}

func NewHandler(store *db.Store, auth *middleware.Auth, cache *rdx.Cache) *Handler {
	return &Handler{store: store, auth: auth, cache: cache}
}

type credentials struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req credentials
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid input")
		return
	}
	if req.Email == "" || req.Password == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	// Check if the email is already taken
	var existing models.User
	err := h.store.Users.FindOne(r.Context(), bson.M{"email": req.Email}).Decode(&existing)
	if err == nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Email already registered")
		return
	} else if !errors.Is(err, mongo.ErrNoDocuments) {
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	user, err := newUser(req)
	if err != nil {
		log.Printf("register: bcrypt error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to hash password")
		return
	}

	if _, err := h.store.Users.InsertOne(r.Context(), user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			utils.RespondWithError(w, http.StatusBadRequest, "Email already registered")
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to register user")
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, utils.M{
		"id":      user.ID.Hex(),
		"message": "User registered",
	})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req credentials
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid input")
		return
	}

	// Unknown email and wrong password share one message so accounts
	// cannot be enumerated.
	var stored models.User
	err := h.store.Users.FindOne(r.Context(), bson.M{"email": req.Email}).Decode(&stored)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid email or password")
		return
	}
	if err := verifyPassword(stored.Password, req.Password); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid email or password")
		return
	}

	tokenString, err := h.auth.Sign(stored.ID.Hex(), stored.Role, accessTokenTTL)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	refreshToken, err := generateRefreshToken()
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Error generating refresh token")
		return
	}

	_, err = h.store.Users.UpdateOne(r.Context(),
		bson.M{"_id": stored.ID},
		bson.M{"$set": bson.M{
			"refresh_token":  hashToken(refreshToken),
			"refresh_expiry": time.Now().Add(refreshTokenTTL),
			"last_login":     time.Now(),
		}},
	)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to store refresh token")
		return
	}

	if err := h.cache.SetSession(r.Context(), stored.ID.Hex(), tokenString); err != nil {
		log.Printf("login: session cache: %v", err)
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"token":        tokenString,
		"refreshToken": refreshToken,
		"id":           stored.ID.Hex(),
		"role":         stored.Role,
	})
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	claims, err := h.auth.Validate(r.Header.Get("Authorization"))
	if err != nil {
		utils.RespondWithError(w, http.StatusUnauthorized, "Invalid token")
		return
	}

	if err := h.cache.DelSession(r.Context(), claims.UserID); err != nil {
		log.Printf("logout: session cache: %v", err)
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"message": "Logged out"})
}

func (h *Handler) RefreshToken(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	claims, err := h.auth.Validate(r.Header.Get("Authorization"))
	if err != nil {
		utils.RespondWithError(w, http.StatusUnauthorized, "Invalid token")
		return
	}

	// Only refresh tokens close to expiry
	if time.Until(claims.ExpiresAt.Time) >= 30*time.Minute {
		utils.RespondWithError(w, http.StatusForbidden, "Token refresh not allowed yet")
		return
	}

	newToken, err := h.auth.Sign(claims.UserID, claims.Role, accessTokenTTL)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to refresh token")
		return
	}
	if err := h.cache.SetSession(r.Context(), claims.UserID, newToken); err != nil {
		log.Printf("refresh: session cache: %v", err)
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"token": newToken})
}

// SessionLive reports whether the user still has a cached session; used by
// tests and the logout flow.
func (h *Handler) SessionLive(ctx context.Context, userID string) bool {
	_, err := h.cache.GetSession(ctx, userID)
	return err == nil
}

// newUser shapes a registration request into a stored user: bcrypt-hashed
// password, role defaulting to "user".
func newUser(req credentials) (models.User, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, err
	}
	role := req.Role
	if role == "" {
		role = "user"
	}
	return models.User{
		ID:       primitive.NewObjectID(),
		Name:     req.Name,
		Email:    req.Email,
		Password: string(hashed),
		Role:     role,
	}, nil
}

func verifyPassword(hash, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))
}

func generateRefreshToken() (string, error) {
	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(tokenBytes), nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
