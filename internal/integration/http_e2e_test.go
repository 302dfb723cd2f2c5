//go:build integration || !unit

package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"placefinder/internal/adapters/googleplaces"
	server "placefinder/internal/adapters/http_server"
	"placefinder/internal/app"
	"placefinder/internal/domain"
	"placefinder/internal/gate"
	"placefinder/internal/shared"
)

// memCache keeps the pipeline honest about its cache-aside contract without
// needing a redis instance.
type memCache struct{ store map[string][]byte }

func (c *memCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	b, ok := c.store[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dst)
}
func (c *memCache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	if c.store == nil {
		c.store = map[string][]byte{}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.store[key] = b
	return nil
}
func (c *memCache) Del(ctx context.Context, key string) error { return nil }

// fakePlacesBackend mimics the provider: text search returns one shared
// place for every term (so dedup matters), find-candidates surfaces a stub
// that details resolves with more fields.
func fakePlacesBackend(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/textsearch/json", func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprint(w, `{
			"status": "OK",
			"results": [
				{"place_id": "shared-1", "name": "Starbucks Pike Place", "vicinity": "1912 Pike Pl"},
				{"place_id": "text-only", "name": "Starbucks Reserve", "formatted_address": "1124 Pike St"}
			]
		}`)
	})
	mux.HandleFunc("/findplacefromtext/json", func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprint(w, `{"status": "OK", "candidates": [{"place_id": "shared-1"}]}`)
	})
	mux.HandleFunc("/details/json", func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprint(w, `{
			"status": "OK",
			"result": {"place_id": "shared-1", "name": "Starbucks Pike Place",
			           "formatted_address": "1912 Pike Pl, Seattle", "website": "https://starbucks.com",
			           "user_ratings_total": 9000, "photos": [{"photo_reference": "ref-abc"}]}
		}`)
	})
	return httptest.NewServer(mux)
}

func newAPI(t *testing.T, placesURL string, rateLimit int) http.Handler {
	t.Helper()
	places, err := googleplaces.New(placesURL, "test-key", 1000, 400)
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	cfg := shared.Config{
		MinResults:     3,
		DetailFetchCap: 3,
		Overrides:      []shared.Override{{Trigger: "agentfire", Query: "AgentFire web development"}},
	}
	search := app.NewSearchService(places, &memCache{}, time.Minute, cfg, nil)
	g := gate.New(rateLimit, time.Minute)

	srv := server.New()
	srv.MountHandlers(&server.Handlers{Search: search, Gate: g})
	return srv.Mux()
}

func doSearch(t *testing.T, h http.Handler, query string, hdr map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	body, _ := json.Marshal(map[string]string{"query": query})
	req := httptest.NewRequest(http.MethodPost, "/v1/places/search", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

var browserHeaders = map[string]string{
	"User-Agent":      "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36",
	"Referer":         "https://placefinder.example/",
	"Accept-Language": "en-US,en;q=0.9",
	"X-Forwarded-For": "203.0.113.50",
}

func TestHTTP_EndToEnd_SearchDedupAndFormat(t *testing.T) {
	backend := fakePlacesBackend(t)
	defer backend.Close()
	h := newAPI(t, backend.URL, 100)

	rr := doSearch(t, h, "starbucks.com", browserHeaders)
	if rr.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rr.Code, rr.Body.String())
	}

	var out []domain.FormattedResult
	if err := json.NewDecoder(rr.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}

	seen := map[string]bool{}
	for _, r := range out {
		if seen[r.PlaceID] {
			t.Fatalf("duplicate place_id %s across strategies", r.PlaceID)
		}
		seen[r.PlaceID] = true
	}
	if !seen["shared-1"] || !seen["text-only"] {
		t.Fatalf("missing expected places: %+v", out)
	}

	for _, r := range out {
		if r.PlaceID == "shared-1" {
			// the text-search variant came first, so its vicinity fallback wins
			if r.FormattedAddress != "1912 Pike Pl" {
				t.Fatalf("expected vicinity fallback, got %q", r.FormattedAddress)
			}
		}
		if r.PlaceID == "text-only" && r.ReviewCount != 0 {
			t.Fatalf("expected default review_count 0, got %d", r.ReviewCount)
		}
	}
}

func TestHTTP_EndToEnd_EmptyQuery(t *testing.T) {
	backend := fakePlacesBackend(t)
	defer backend.Close()
	h := newAPI(t, backend.URL, 100)

	rr := doSearch(t, h, "   ", browserHeaders)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status %d", rr.Code)
	}
	var e struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&e); err != nil || e.Error == "" {
		t.Fatalf("expected error body, got %q (%v)", rr.Body.String(), err)
	}
}

func TestHTTP_EndToEnd_BotRejected(t *testing.T) {
	backend := fakePlacesBackend(t)
	defer backend.Close()
	h := newAPI(t, backend.URL, 100)

	hdr := map[string]string{
		"User-Agent":      "Mozilla/5.0 (compatible; Googlebot/2.1; +http://www.google.com/bot.html)",
		"Referer":         "https://google.com",
		"Accept-Language": "en",
	}
	rr := doSearch(t, h, "starbucks", hdr)
	if rr.Code != http.StatusForbidden {
		t.Fatalf("status %d: %s", rr.Code, rr.Body.String())
	}
}

func TestHTTP_EndToEnd_RateLimitWithRetryAfter(t *testing.T) {
	backend := fakePlacesBackend(t)
	defer backend.Close()
	h := newAPI(t, backend.URL, 3)

	for i := 0; i < 3; i++ {
		if rr := doSearch(t, h, "starbucks", browserHeaders); rr.Code != http.StatusOK {
			t.Fatalf("request %d: status %d", i+1, rr.Code)
		}
	}
	rr := doSearch(t, h, "starbucks", browserHeaders)
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("status %d", rr.Code)
	}
	if got := rr.Header().Get("Retry-After"); got != "60" {
		t.Fatalf("Retry-After = %q", got)
	}
}
