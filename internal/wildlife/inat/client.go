package inat

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"
)

const (
	// BaseURL is the iNaturalist API endpoint.
	BaseURL = "https://api.inaturalist.org/v1"

	// PerPageMax is the largest page size the API allows.
	PerPageMax = 100

	// taxonTimeout bounds each taxon-detail request.
	taxonTimeout = 10 * time.Second

	// retryAttempts and retryInitialDelay govern backoff on rate-limit
	// and timeout responses: 2s, then 4s, then give up.
	retryAttempts     = 3
	retryInitialDelay = 2 * time.Second
)

// Client is an HTTP client for the iNaturalist API. iNaturalist asks
// clients to stay at or under ~1 request per second, enforced here with a
// limiter so batch jobs cannot trip the server-side rate limit.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter

	// baseURL and sleep are swapped out by tests.
	baseURL string
	sleep   func(time.Duration)
}

func NewClient() *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		limiter: rate.NewLimiter(rate.Limit(1), 1),
		baseURL: BaseURL,
		sleep:   time.Sleep,
	}
}

// SearchParams are the query parameters for an observations search.
type SearchParams struct {
	NELat float64
	NELng float64
	SWLat float64
	SWLng float64

	// Since is the inclusive lower date bound (d1), YYYY-MM-DD. The API
	// filter is per calendar day, not an exact timestamp cutoff; callers
	// that need a strict cutoff filter again after fetching.
	Since string

	// Order is "asc" or "desc" by observed_on.
	Order string

	PerPage  int
	MaxPages int
}

// FetchObservations pages through the observations search until results
// run out or MaxPages is hit. A failed page logs a warning and stops the
// fetch; whatever was collected so far is returned, so a mid-run failure
// degrades to a shorter batch instead of losing the job.
func (c *Client) FetchObservations(ctx context.Context, p SearchParams) ([]Observation, error) {
	perPage := p.PerPage
	if perPage <= 0 || perPage > PerPageMax {
		perPage = PerPageMax
	}
	maxPages := p.MaxPages
	if maxPages <= 0 {
		maxPages = 1
	}
	order := p.Order
	if order == "" {
		order = "asc"
	}

	params := url.Values{}
	params.Set("nelat", formatCoord(p.NELat))
	params.Set("nelng", formatCoord(p.NELng))
	params.Set("swlat", formatCoord(p.SWLat))
	params.Set("swlng", formatCoord(p.SWLng))
	params.Set("verifiable", "true")
	params.Set("order_by", "observed_on")
	params.Set("order", order)
	params.Set("per_page", strconv.Itoa(perPage))
	if p.Since != "" {
		params.Set("d1", p.Since)
	}

	var all []Observation

	for page := 1; page <= maxPages; page++ {
		params.Set("page", strconv.Itoa(page))

		if err := c.limiter.Wait(ctx); err != nil {
			return all, err
		}

		fullURL := fmt.Sprintf("%s/observations?%s", c.baseURL, params.Encode())
		start := time.Now()

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return all, fmt.Errorf("create request: %w", err)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			log.Printf("[inat] page %d fetch error, stopping: %v", page, err)
			return all, nil
		}

		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			log.Printf("[inat] page %d returned status %d, stopping", page, resp.StatusCode)
			return all, nil
		}

		var body searchResponse
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			resp.Body.Close()
			log.Printf("[inat] page %d decode error, stopping: %v", page, err)
			return all, nil
		}
		resp.Body.Close()

		log.Printf("[inat] GET /observations page=%d status=%d duration=%dms results=%d",
			page, resp.StatusCode, time.Since(start).Milliseconds(), len(body.Results))

		if len(body.Results) == 0 {
			break
		}
		all = append(all, body.Results...)
	}

	return all, nil
}

// LatestObservation returns the single most relevant observation near a
// point, for the demonstration endpoint.
func (c *Client) LatestObservation(ctx context.Context, lat, lng, radiusKm float64) (*Observation, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("lat", formatCoord(lat))
	params.Set("lng", formatCoord(lng))
	params.Set("radius", strconv.FormatFloat(radiusKm, 'f', -1, 64))

	fullURL := fmt.Sprintf("%s/observations?%s", c.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("observations request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("observations status %d", resp.StatusCode)
	}

	var body searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode observations: %w", err)
	}
	if len(body.Results) == 0 {
		return nil, nil
	}
	return &body.Results[0], nil
}

// FetchTaxon fetches one taxon's details, retrying rate-limit and timeout
// responses with a doubling delay (2s, 4s) before giving up. Other
// failures are not retried.
func (c *Client) FetchTaxon(ctx context.Context, id int64) (*Taxon, error) {
	fullURL := fmt.Sprintf("%s/taxa/%d", c.baseURL, id)
	delay := retryInitialDelay

	for attempt := 1; attempt <= retryAttempts; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		rctx, cancel := context.WithTimeout(ctx, taxonTimeout)
		req, err := http.NewRequestWithContext(rctx, http.MethodGet, fullURL, nil)
		if err != nil {
			cancel()
			return nil, fmt.Errorf("create request: %w", err)
		}

		resp, err := c.httpClient.Do(req)
		cancel()
		if err != nil {
			// Treat transport errors (timeouts included) as transient.
			if attempt < retryAttempts {
				log.Printf("[inat] taxon %d attempt %d failed, retrying in %s: %v", id, attempt, delay, err)
				c.sleep(delay)
				delay *= 2
				continue
			}
			return nil, fmt.Errorf("fetch taxon %d: %w", id, err)
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			resp.Body.Close()
			if attempt < retryAttempts {
				log.Printf("[inat] taxon %d rate limited, retrying in %s", id, delay)
				c.sleep(delay)
				delay *= 2
				continue
			}
			return nil, fmt.Errorf("fetch taxon %d: rate limited after %d attempts", id, retryAttempts)
		}

		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, fmt.Errorf("fetch taxon %d: status %d", id, resp.StatusCode)
		}

		var body taxaResponse
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			resp.Body.Close()
			return nil, fmt.Errorf("decode taxon %d: %w", id, err)
		}
		resp.Body.Close()

		if len(body.Results) == 0 {
			return nil, nil
		}
		return &body.Results[0], nil
	}

	return nil, fmt.Errorf("fetch taxon %d: retries exhausted", id)
}

func formatCoord(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
