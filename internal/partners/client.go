// Package partners finds the closest service partners for a customer
// address using the Google Geocoding and Distance Matrix APIs.
package partners

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"math/rand"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"hvacquote/internal/config"
)

const (
	metersPerMile = 1609.34
	// The Distance Matrix API caps destinations per request.
	distanceChunkSize = 25
)

type Coord struct {
	Lat float64
	Lng float64
}

func (c Coord) String() string {
	return fmt.Sprintf("%f,%f", c.Lat, c.Lng)
}

// Client wraps the two Maps endpoints with a shared rate limiter and
// retry on throttling/server errors.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

func NewClient(cfg config.Config) *Client {
	rps := cfg.GeocodeRateRPS
	if rps <= 0 {
		rps = 1
	}
	return &Client{
		apiKey:     cfg.GoogleMapsAPIKey,
		baseURL:    strings.TrimRight(cfg.MapsBaseURL, "/"),
		httpClient: &http.Client{Timeout: time.Duration(cfg.MapsTimeoutMs) * time.Millisecond},
		limiter:    rate.NewLimiter(rate.Limit(rps), 1),
	}
}

type geocodeResponse struct {
	Status  string `json:"status"`
	Results []struct {
		FormattedAddress string `json:"formatted_address"`
		Geometry         struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
}

type matrixResponse struct {
	Status string `json:"status"`
	Rows   []struct {
		Elements []struct {
			Status   string `json:"status"`
			Distance struct {
				Value int `json:"value"` // meters
			} `json:"distance"`
		} `json:"elements"`
	} `json:"rows"`
}

// Geocode resolves an address string to coordinates.
func (c *Client) Geocode(ctx context.Context, address string) (Coord, error) {
	body, err := c.fetchJSON(ctx, "/maps/api/geocode/json", map[string]string{"address": address})
	if err != nil {
		return Coord{}, err
	}

	var resp geocodeResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return Coord{}, err
	}
	if resp.Status != "OK" || len(resp.Results) == 0 {
		return Coord{}, fmt.Errorf("geocoding failed for %q: status %s", address, resp.Status)
	}

	loc := resp.Results[0].Geometry.Location
	return Coord{Lat: loc.Lat, Lng: loc.Lng}, nil
}

// DrivingDistances returns driving miles from origin to every
// destination, in order. Destinations are requested in chunks of 25;
// any failed element or chunk yields +Inf so callers can sort failures
// last instead of aborting.
func (c *Client) DrivingDistances(ctx context.Context, origin Coord, dests []Coord) []float64 {
	out := make([]float64, 0, len(dests))

	for start := 0; start < len(dests); start += distanceChunkSize {
		end := start + distanceChunkSize
		if end > len(dests) {
			end = len(dests)
		}
		chunk := dests[start:end]

		parts := make([]string, 0, len(chunk))
		for _, d := range chunk {
			parts = append(parts, d.String())
		}

		body, err := c.fetchJSON(ctx, "/maps/api/distancematrix/json", map[string]string{
			"origins":      origin.String(),
			"destinations": strings.Join(parts, "|"),
			"units":        "imperial",
		})
		if err != nil {
			zap.L().Warn("distance matrix request failed", zap.Error(err))
			out = appendInf(out, len(chunk))
			continue
		}

		var resp matrixResponse
		if err := json.Unmarshal(body, &resp); err != nil || resp.Status != "OK" || len(resp.Rows) == 0 {
			zap.L().Warn("distance matrix response unusable", zap.String("status", resp.Status))
			out = appendInf(out, len(chunk))
			continue
		}

		elements := resp.Rows[0].Elements
		for i := range chunk {
			if i >= len(elements) || elements[i].Status != "OK" {
				out = append(out, math.Inf(1))
				continue
			}
			out = append(out, float64(elements[i].Distance.Value)/metersPerMile)
		}
	}

	return out
}

func appendInf(out []float64, n int) []float64 {
	for i := 0; i < n; i++ {
		out = append(out, math.Inf(1))
	}
	return out
}

func (c *Client) fetchJSON(ctx context.Context, endpoint string, params map[string]string) ([]byte, error) {
	if strings.TrimSpace(c.apiKey) == "" {
		return nil, errors.New("missing GOOGLE_MAPS_API_KEY")
	}

	u, err := url.Parse(c.baseURL + endpoint)
	if err != nil {
		return nil, err
	}
	q := u.Query()
	for k, v := range params {
		q.Set(k, v)
	}
	q.Set("key", c.apiKey)
	u.RawQuery = q.Encode()

	var lastErr error
	for attempt := 1; attempt <= 4; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		body, readErr := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if readErr != nil {
			lastErr = readErr
			continue
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			if isRetryableStatus(resp.StatusCode) && attempt < 4 {
				backoff := time.Duration(250*(1<<(attempt-1))+rand.Intn(100)) * time.Millisecond
				time.Sleep(backoff)
				lastErr = fmt.Errorf("maps status %d", resp.StatusCode)
				continue
			}
			return nil, fmt.Errorf("maps api error: status=%d body=%s", resp.StatusCode, string(body))
		}

		return body, nil
	}

	if lastErr == nil {
		lastErr = errors.New("maps request failed")
	}
	return nil, lastErr
}

func isRetryableStatus(status int) bool {
	switch status {
	case 429, 500, 502, 503, 504:
		return true
	default:
		return false
	}
}
