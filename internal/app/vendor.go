package app

import (
	"context"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"placefinder/internal/domain"
)

// VendorSignature ties an HTML marker substring to the platform it reveals.
type VendorSignature struct {
	Name   string
	Marker string
	Logo   string
	URL    string
}

// DefaultVendorSignatures covers the platforms the search UI knows how to
// badge. Markers are matched against lowercased page bytes.
var DefaultVendorSignatures = []VendorSignature{
	{Name: "AgentFire", Marker: "agentfire", Logo: "https://agentfire.com/favicon.ico", URL: "https://agentfire.com"},
	{Name: "WordPress", Marker: "wp-content", Logo: "https://s.w.org/favicon.ico", URL: "https://wordpress.org"},
	{Name: "Shopify", Marker: "cdn.shopify.com", Logo: "https://www.shopify.com/favicon.ico", URL: "https://www.shopify.com"},
	{Name: "Wix", Marker: "wix.com", Logo: "https://www.wix.com/favicon.ico", URL: "https://www.wix.com"},
	{Name: "Squarespace", Marker: "squarespace.com", Logo: "https://www.squarespace.com/favicon.ico", URL: "https://www.squarespace.com"},
	{Name: "Webflow", Marker: "webflow", Logo: "https://webflow.com/favicon.ico", URL: "https://webflow.com"},
}

const vendorBodyLimit = 256 << 10

// VendorDetector fetches result websites and attaches VendorInfo when a
// known platform signature appears in the page. Fetch failures leave the
// result unenriched; nothing here can fail the request.
type VendorDetector struct {
	hc   *http.Client
	sigs []VendorSignature
	sem  *semaphore.Weighted
}

func NewVendorDetector(workers int, sigs []VendorSignature) *VendorDetector {
	if workers <= 0 {
		workers = 4
	}
	if len(sigs) == 0 {
		sigs = DefaultVendorSignatures
	}
	return &VendorDetector{
		hc:   &http.Client{Timeout: 5 * time.Second},
		sigs: sigs,
		sem:  semaphore.NewWeighted(int64(workers)),
	}
}

// Enrich mutates results in place. Each website fetch is independent, so
// they fan out under the semaphore bound; the seen-set work is already done
// upstream and results are only written at distinct indexes.
func (d *VendorDetector) Enrich(ctx context.Context, results []domain.FormattedResult) {
	var wg sync.WaitGroup
	for i := range results {
		if results[i].Website == "" {
			continue
		}
		if err := d.sem.Acquire(ctx, 1); err != nil {
			break
		}
		wg.Add(1)
		go func(r *domain.FormattedResult) {
			defer wg.Done()
			defer d.sem.Release(1)
			r.Vendor = d.detect(ctx, r.Website)
		}(&results[i])
	}
	wg.Wait()
}

func (d *VendorDetector) detect(ctx context.Context, site string) *domain.VendorInfo {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, site, nil)
	if err != nil {
		return nil
	}
	req.Header.Set("User-Agent", "placefinder/1.0")

	resp, err := d.hc.Do(req)
	if err != nil {
		log.Debug().Err(err).Str("site", site).Msg("vendor fetch failed")
		return nil
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, vendorBodyLimit))
	if err != nil {
		return nil
	}
	page := strings.ToLower(string(body))

	for _, sig := range d.sigs {
		if strings.Contains(page, sig.Marker) {
			return &domain.VendorInfo{Name: sig.Name, Logo: sig.Logo, URL: sig.URL}
		}
	}
	return nil
}
