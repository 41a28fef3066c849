package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"voyago/middleware"

	"github.com/julienschmidt/httprouter"
)

func TestSignValidateRoundTrip(t *testing.T) {
	auth := middleware.NewAuth([]byte("test-secret"))

	token, err := auth.Sign("u123", "admin", time.Hour)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	claims, err := auth.Validate("Bearer " + token)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if claims.UserID != "u123" || claims.Role != "admin" {
		t.Fatalf("claims = %+v", claims)
	}
}

func TestValidateRejects(t *testing.T) {
	auth := middleware.NewAuth([]byte("test-secret"))
	other := middleware.NewAuth([]byte("other-secret"))

	token, err := other.Sign("u123", "user", time.Hour)
	if err != nil {
		t.Fatal(err)
	}

	cases := map[string]string{
		"wrong secret":   "Bearer " + token,
		"no bearer":      token,
		"empty":          "",
		"garbage":        "Bearer not.a.jwt",
		"missing prefix": "Token abc",
	}
	for name, header := range cases {
		if _, err := auth.Validate(header); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestValidateExpired(t *testing.T) {
	auth := middleware.NewAuth([]byte("test-secret"))
	token, err := auth.Sign("u123", "user", -time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := auth.Validate("Bearer " + token); err == nil {
		t.Fatal("expired token accepted")
	}
}

func TestAuthenticateMiddleware(t *testing.T) {
	auth := middleware.NewAuth([]byte("test-secret"))

	var gotUserID string
	handler := auth.Authenticate(func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		gotUserID, _ = middleware.UserID(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	// no token
	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, "/", nil), nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("missing token: status %d", rec.Code)
	}

	// valid token
	token, err := auth.Sign("u42", "user", time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	handler(rec, req, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("valid token: status %d", rec.Code)
	}
	if gotUserID != "u42" {
		t.Fatalf("user id in context = %q, want u42", gotUserID)
	}
}
