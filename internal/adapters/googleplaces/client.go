// internal/adapters/googleplaces/client.go
package googleplaces

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"placefinder/internal/adapters/observability"
	"placefinder/internal/domain"
)

// detailFields is the provider field mask used when resolving a candidate
// to its full record.
var detailFields = []string{
	"place_id", "name", "formatted_address", "photos", "website", "user_ratings_total",
}

// DetailFields returns a copy of the default field mask for detail fetches.
func DetailFields() []string {
	return append([]string(nil), detailFields...)
}

// TransportError covers network failures, non-2xx responses, and non-OK
// provider status codes. The orchestrator treats it as "zero results from
// that call"; there is no retry at this layer.
type TransportError struct {
	Op     string
	Status string
	Err    error
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("places %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("places %s: status %s", e.Op, e.Status)
}

func (e *TransportError) Unwrap() error { return e.Err }

// MalformedResponseError means the provider answered 2xx but the body did
// not decode into the expected shape.
type MalformedResponseError struct {
	Op  string
	Err error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("places %s: malformed response: %v", e.Op, e.Err)
}

func (e *MalformedResponseError) Unwrap() error { return e.Err }

type Client struct {
	base          string
	hc            *http.Client
	key           string
	rl            *rate.Limiter
	photoMaxWidth int
}

func New(base, key string, rps, photoMaxWidth int) (*Client, error) {
	if key == "" {
		return nil, errors.New("places API key is required")
	}
	if rps <= 0 {
		rps = 10
	}
	if photoMaxWidth <= 0 {
		photoMaxWidth = 400
	}
	return &Client{
		base:          strings.TrimRight(base, "/"),
		hc:            &http.Client{Timeout: 10 * time.Second},
		key:           key,
		rl:            rate.NewLimiter(rate.Limit(rps), rps),
		photoMaxWidth: photoMaxWidth,
	}, nil
}

// provider response envelopes

type textSearchResponse struct {
	Results      []domain.RawCandidate `json:"results"`
	Status       string                `json:"status"`
	ErrorMessage string                `json:"error_message"`
}

type findPlaceResponse struct {
	Candidates   []domain.RawCandidate `json:"candidates"`
	Status       string                `json:"status"`
	ErrorMessage string                `json:"error_message"`
}

type detailsResponse struct {
	Result       *domain.RawCandidate `json:"result"`
	Status       string               `json:"status"`
	ErrorMessage string               `json:"error_message"`
}

func (c *Client) TextSearch(ctx context.Context, term string) ([]domain.RawCandidate, error) {
	const op = "textsearch"
	q := url.Values{}
	q.Set("query", term)
	q.Set("key", c.key)

	var out textSearchResponse
	if err := c.get(ctx, op, c.base+"/textsearch/json?"+q.Encode(), &out); err != nil {
		return nil, err
	}
	if err := statusErr(op, out.Status, out.ErrorMessage); err != nil {
		return nil, err
	}
	return out.Results, nil
}

func (c *Client) FindCandidates(ctx context.Context, term string) ([]domain.RawCandidate, error) {
	const op = "findplacefromtext"
	q := url.Values{}
	q.Set("input", term)
	q.Set("inputtype", "textquery")
	q.Set("fields", strings.Join(append(DetailFields(), "geometry"), ","))
	q.Set("key", c.key)

	var out findPlaceResponse
	if err := c.get(ctx, op, c.base+"/findplacefromtext/json?"+q.Encode(), &out); err != nil {
		return nil, err
	}
	if err := statusErr(op, out.Status, out.ErrorMessage); err != nil {
		return nil, err
	}
	return out.Candidates, nil
}

func (c *Client) FetchDetails(ctx context.Context, placeID string, fields []string) (domain.RawCandidate, error) {
	const op = "details"
	if len(fields) == 0 {
		fields = detailFields
	}
	q := url.Values{}
	q.Set("place_id", placeID)
	q.Set("fields", strings.Join(fields, ","))
	q.Set("key", c.key)

	var out detailsResponse
	if err := c.get(ctx, op, c.base+"/details/json?"+q.Encode(), &out); err != nil {
		return domain.RawCandidate{}, err
	}
	if err := statusErr(op, out.Status, out.ErrorMessage); err != nil {
		return domain.RawCandidate{}, err
	}
	if out.Result == nil {
		return domain.RawCandidate{}, &MalformedResponseError{Op: op, Err: errors.New("missing result object")}
	}
	return *out.Result, nil
}

func (c *Client) PhotoURL(ref string) string {
	if ref == "" {
		return ""
	}
	q := url.Values{}
	q.Set("maxwidth", strconv.Itoa(c.photoMaxWidth))
	q.Set("photoreference", ref)
	q.Set("key", c.key)
	return c.base + "/photo?" + q.Encode()
}

// get performs one paced GET and decodes the body. No retries: a failed
// strategy is simply skipped by the caller in favor of the next one.
func (c *Client) get(ctx context.Context, op, u string, out any) error {
	if err := c.rl.Wait(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "placefinder/1.0")

	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		observability.ObserveExternal("places", op, 0, time.Since(start))
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()
	observability.ObserveExternal("places", op, resp.StatusCode, time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &TransportError{
			Op:     op,
			Status: strconv.Itoa(resp.StatusCode),
			Err:    fmt.Errorf("bad status %d: %s", resp.StatusCode, strings.TrimSpace(string(b))),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &MalformedResponseError{Op: op, Err: err}
	}
	return nil
}

// statusErr maps provider status fields to errors. OK and ZERO_RESULTS are
// both success; ZERO_RESULTS just carries an empty list.
func statusErr(op, status, msg string) error {
	switch status {
	case "OK", "ZERO_RESULTS", "":
		return nil
	default:
		if msg != "" {
			return &TransportError{Op: op, Status: status, Err: errors.New(msg)}
		}
		return &TransportError{Op: op, Status: status}
	}
}
