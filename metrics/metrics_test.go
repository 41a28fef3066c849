package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestRegistryAndHandler(t *testing.T) {
	reg := Registry()

	// record one sample so the counters show up in the scrape
	ObserveHTTP("/hotels", "GET", 200, 12*time.Millisecond)

	rr := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rr, httptest.NewRequest("GET", "/metrics", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("metrics status: %d", rr.Code)
	}
	body, _ := io.ReadAll(rr.Body)
	if !strings.Contains(string(body), "voyago_http_requests_total") {
		t.Fatal("expected voyago_http_requests_total in scrape output")
	}
}

func TestInstrumentRecordsStatus(t *testing.T) {
	reg := Registry()

	h := Instrument(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/hotels/abc", nil))

	rr := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rr, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rr.Body)
	out := string(body)
	if !strings.Contains(out, `route="/hotels"`) || !strings.Contains(out, `status="404"`) {
		t.Fatalf("scrape missing instrumented sample:\n%s", out)
	}
}

func TestRouteLabel(t *testing.T) {
	for path, want := range map[string]string{
		"/":                  "/",
		"/hotels/":           "/hotels",
		"/hotels/abc/offres": "/hotels",
		"/login/":            "/login",
	} {
		if got := routeLabel(path); got != want {
			t.Errorf("routeLabel(%q) = %q, want %q", path, got, want)
		}
	}
}
