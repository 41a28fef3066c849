package payes_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"voyago/payes"

	"github.com/julienschmidt/httprouter"
)

// A malformed hex id must be rejected as client input before any store
// call, so a handler with no store behind it can serve these cases.
func TestMalformedIDIsClientError(t *testing.T) {
	h := payes.NewHandler(nil, nil, nil)
	params := httprouter.Params{{Key: "id", Value: "not-a-hex-id"}}

	handlers := map[string]httprouter.Handle{
		"get":    h.GetPaye,
		"hotels": h.GetPayeHotels,
		"update": h.UpdatePaye,
		"delete": h.DeletePaye,
	}

	for name, handle := range handlers {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/payes/not-a-hex-id", nil)
		handle(rec, req, params)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", name, rec.Code)
		}
		var body map[string]string
		if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
			t.Fatalf("%s: body not JSON: %v", name, err)
		}
		if body["error"] == "" {
			t.Errorf("%s: missing error detail", name)
		}
	}
}
