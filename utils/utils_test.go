package utils_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"voyago/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestParseID(t *testing.T) {
	valid := primitive.NewObjectID().Hex()
	id, err := utils.ParseID(valid)
	if err != nil {
		t.Fatalf("valid hex rejected: %v", err)
	}
	if id.Hex() != valid {
		t.Fatalf("round trip: %s != %s", id.Hex(), valid)
	}

	for name, in := range map[string]string{
		"empty":       "",
		"non-hex":     "zzzzzzzzzzzzzzzzzzzzzzzz",
		"too short":   "abcdef",
		"too long":    valid + "ff",
		"with spaces": " " + valid[1:],
	} {
		if _, err := utils.ParseID(in); err == nil {
			t.Errorf("%s: %q accepted", name, in)
		}
	}
}

func TestParsePagination(t *testing.T) {
	cases := []struct {
		query     string
		wantSkip  int64
		wantLimit int64
	}{
		{"", 0, 20},
		{"?page=3&limit=10", 20, 10},
		{"?page=0&limit=-5", 0, 20},
		{"?limit=9999", 0, 100},
	}
	for _, tc := range cases {
		r := httptest.NewRequest(http.MethodGet, "/hotels/"+tc.query, nil)
		skip, limit := utils.ParsePagination(r, 20, 100)
		if skip != tc.wantSkip || limit != tc.wantLimit {
			t.Errorf("%q: got (%d, %d), want (%d, %d)", tc.query, skip, limit, tc.wantSkip, tc.wantLimit)
		}
	}
}

func TestRespondWithError(t *testing.T) {
	rec := httptest.NewRecorder()
	utils.RespondWithError(rec, http.StatusNotFound, "Hotel not found")

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("content type = %q", ct)
	}
	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body["error"] != "Hotel not found" {
		t.Fatalf("body = %v", body)
	}
}
