package shared

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// Override maps a query substring to an extra search issued when the
// trigger matches the query but no accumulated result name does.
type Override struct {
	Trigger string
	Query   string
}

type Config struct {
	AppEnv      string
	HTTPAddr    string
	MetricsAddr string
	MySQLDSN    string
	RedisAddr   string
	RedisDB     int
	RedisPass   string

	PlacesBase string
	PlacesKey  string
	PlacesRPS  int

	CacheTTL time.Duration

	RateLimit  int
	RateWindow time.Duration

	MinResults     int
	DetailFetchCap int
	PhotoMaxWidth  int
	Overrides      []Override

	VendorDetect  bool
	VendorWorkers int
}

func Load() Config {
	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
		}
		return def
	}
	c := Config{
		AppEnv:         env("APP_ENV", "prod"),
		HTTPAddr:       env("HTTP_ADDR", ":8080"),
		MetricsAddr:    env("METRICS_ADDR", ":9100"),
		MySQLDSN:       env("MYSQL_DSN", "root:root@tcp(localhost:3306)/placefinder?parseTime=true&charset=utf8mb4,utf8&loc=UTC"),
		RedisAddr:      env("REDIS_ADDR", "localhost:6379"),
		RedisPass:      env("REDIS_PASSWORD", ""),
		RedisDB:        atoi("REDIS_DB", 0),
		PlacesBase:     env("PLACES_BASE_URL", "https://maps.googleapis.com/maps/api/place"),
		PlacesKey:      env("PLACES_API_KEY", ""),
		PlacesRPS:      atoi("PLACES_RPS", 10),
		CacheTTL:       time.Duration(atoi("CACHE_TTL_SECONDS", 300)) * time.Second,
		RateLimit:      atoi("RATE_LIMIT", 10),
		RateWindow:     time.Duration(atoi("RATE_WINDOW_SECONDS", 60)) * time.Second,
		MinResults:     atoi("MIN_RESULTS", 3),
		DetailFetchCap: atoi("DETAIL_FETCH_CAP", 3),
		PhotoMaxWidth:  atoi("PHOTO_MAX_WIDTH", 400),
		Overrides:      parseOverrides(env("SEARCH_OVERRIDES", "agentfire=AgentFire web development")),
		VendorDetect:   boolEnv("VENDOR_DETECT"),
		VendorWorkers:  atoi("VENDOR_WORKERS", 4),
	}
	if c.PlacesKey == "" {
		log.Warn().Msg("PLACES_API_KEY is empty")
	}
	return c
}

// parseOverrides parses "trigger=query;trigger=query". Malformed pairs are
// skipped with a warning rather than failing startup.
func parseOverrides(raw string) []Override {
	var out []Override
	for _, pair := range strings.Split(raw, ";") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		trigger, query, ok := strings.Cut(pair, "=")
		trigger = strings.TrimSpace(trigger)
		query = strings.TrimSpace(query)
		if !ok || trigger == "" || query == "" {
			log.Warn().Str("pair", pair).Msg("skipping malformed SEARCH_OVERRIDES pair")
			continue
		}
		out = append(out, Override{Trigger: strings.ToLower(trigger), Query: query})
	}
	return out
}

func boolEnv(k string) bool {
	v := strings.ToLower(os.Getenv(k))
	return v == "1" || v == "true" || v == "yes"
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
