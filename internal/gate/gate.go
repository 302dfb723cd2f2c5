// Package gate is the front door of the search path: a bot filter plus a
// sliding-window rate limiter keyed on the caller's forwarded address.
package gate

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	ReasonBot         = "bot_detected"
	ReasonRateLimited = "rate_limited"
)

// botMarkers are matched against the lowercased User-Agent.
var botMarkers = []string{
	"bot", "crawler", "spider", "scrapy", "headless",
	"phantomjs", "selenium", "puppeteer", "playwright",
	"curl", "wget", "python-requests", "go-http-client",
}

// Decision is the outcome of Admit. Reason is empty when Allowed.
type Decision struct {
	Allowed bool
	Reason  string
}

var allow = Decision{Allowed: true}

// Gate holds per-client request timestamps inside the trailing window.
// One mutex guards the whole map; contention is low at this request rate.
type Gate struct {
	limit  int
	window time.Duration
	now    func() time.Time

	mu      sync.Mutex
	clients map[string][]time.Time
}

func New(limit int, window time.Duration) *Gate {
	if limit <= 0 {
		limit = 10
	}
	if window <= 0 {
		window = time.Minute
	}
	return &Gate{
		limit:   limit,
		window:  window,
		now:     time.Now,
		clients: make(map[string][]time.Time),
	}
}

// Admit classifies the request and, when allowed, records the current
// timestamp against the client key.
func (g *Gate) Admit(r *http.Request) Decision {
	if isBot(r) {
		return Decision{Reason: ReasonBot}
	}

	key := ClientKey(r)
	now := g.now()
	cutoff := now.Add(-g.window)

	g.mu.Lock()
	defer g.mu.Unlock()

	stamps := prune(g.clients[key], cutoff)
	if len(stamps) >= g.limit {
		g.clients[key] = stamps
		return Decision{Reason: ReasonRateLimited}
	}
	g.clients[key] = append(stamps, now)
	return allow
}

// SweepLoop periodically drops client keys whose timestamps have all aged
// out of the window, bounding map growth. Blocks until stop is closed.
func (g *Gate) SweepLoop(interval time.Duration, stop <-chan struct{}) {
	if interval <= 0 {
		interval = time.Minute
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-stop:
			return
		case <-t.C:
			if n := g.sweep(); n > 0 {
				log.Debug().Int("evicted", n).Msg("rate limiter sweep")
			}
		}
	}
}

func (g *Gate) sweep() int {
	cutoff := g.now().Add(-g.window)
	g.mu.Lock()
	defer g.mu.Unlock()

	evicted := 0
	for key, stamps := range g.clients {
		stamps = prune(stamps, cutoff)
		if len(stamps) == 0 {
			delete(g.clients, key)
			evicted++
			continue
		}
		g.clients[key] = stamps
	}
	return evicted
}

// prune drops timestamps at or before cutoff. Stamps are appended in order,
// so the first retained index covers the rest.
func prune(stamps []time.Time, cutoff time.Time) []time.Time {
	for i, ts := range stamps {
		if ts.After(cutoff) {
			return stamps[i:]
		}
	}
	return nil
}

// ClientKey buckets callers by the first X-Forwarded-For entry, falling
// back to a shared "unknown" bucket when the header is absent.
func ClientKey(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		if key := strings.TrimSpace(parts[0]); key != "" {
			return key
		}
	}
	return "unknown"
}

// isBot flags known automation user agents, plus requests that carry
// neither a Referer nor an Accept-Language header.
func isBot(r *http.Request) bool {
	ua := strings.ToLower(r.Header.Get("User-Agent"))
	for _, marker := range botMarkers {
		if strings.Contains(ua, marker) {
			return true
		}
	}
	return r.Header.Get("Referer") == "" && r.Header.Get("Accept-Language") == ""
}
