package partners

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"testing"

	"hvacquote/internal/config"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func testClient(t *testing.T, rt roundTripFunc) *Client {
	t.Helper()
	cfg, err := config.Load()
	if err != nil {
		t.Fatal(err)
	}
	cfg.GoogleMapsAPIKey = "test-key"
	cfg.MapsBaseURL = "https://maps.example.test"
	cfg.GeocodeRateRPS = 1000

	client := NewClient(cfg)
	client.httpClient = &http.Client{Transport: rt}
	return client
}

func jsonResponse(status int, payload any) *http.Response {
	blob, _ := json.Marshal(payload)
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(string(blob))),
		Header:     make(http.Header),
	}
}

func TestGeocode(t *testing.T) {
	client := testClient(t, func(r *http.Request) (*http.Response, error) {
		if r.URL.Path != "/maps/api/geocode/json" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("key") != "test-key" {
			t.Fatal("missing api key")
		}
		if r.URL.Query().Get("address") == "" {
			t.Fatal("missing address param")
		}
		return jsonResponse(http.StatusOK, map[string]any{
			"status": "OK",
			"results": []map[string]any{
				{"geometry": map[string]any{"location": map[string]any{"lat": 39.78, "lng": -89.65}}},
			},
		}), nil
	})

	coord, err := client.Geocode(context.Background(), "1234 Main Street, Springfield IL 62704")
	if err != nil {
		t.Fatal(err)
	}
	if coord.Lat != 39.78 || coord.Lng != -89.65 {
		t.Fatalf("coord = %+v", coord)
	}
}

func TestGeocodeZeroResults(t *testing.T) {
	client := testClient(t, func(r *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, map[string]any{"status": "ZERO_RESULTS", "results": []any{}}), nil
	})

	if _, err := client.Geocode(context.Background(), "nowhere at all"); err == nil {
		t.Fatal("want error for ZERO_RESULTS")
	}
}

func TestGeocodeMissingKey(t *testing.T) {
	cfg, _ := config.Load()
	cfg.GoogleMapsAPIKey = ""
	client := NewClient(cfg)
	if _, err := client.Geocode(context.Background(), "anywhere"); err == nil {
		t.Fatal("want error for missing api key")
	}
}

func TestGeocodeRetriesServerError(t *testing.T) {
	attempt := 0
	client := testClient(t, func(r *http.Request) (*http.Response, error) {
		attempt++
		if attempt == 1 {
			return jsonResponse(http.StatusInternalServerError, map[string]any{"error": "boom"}), nil
		}
		return jsonResponse(http.StatusOK, map[string]any{
			"status": "OK",
			"results": []map[string]any{
				{"geometry": map[string]any{"location": map[string]any{"lat": 1.0, "lng": 2.0}}},
			},
		}), nil
	})

	if _, err := client.Geocode(context.Background(), "retry street"); err != nil {
		t.Fatal(err)
	}
	if attempt != 2 {
		t.Fatalf("attempts = %d", attempt)
	}
}

func TestDrivingDistancesChunksRequests(t *testing.T) {
	var chunkSizes []int
	client := testClient(t, func(r *http.Request) (*http.Response, error) {
		dests := strings.Split(r.URL.Query().Get("destinations"), "|")
		chunkSizes = append(chunkSizes, len(dests))

		elements := make([]map[string]any, len(dests))
		for i := range dests {
			elements[i] = map[string]any{"status": "OK", "distance": map[string]any{"value": 1609}}
		}
		return jsonResponse(http.StatusOK, map[string]any{
			"status": "OK",
			"rows":   []map[string]any{{"elements": elements}},
		}), nil
	})

	dests := make([]Coord, 30)
	for i := range dests {
		dests[i] = Coord{Lat: float64(i), Lng: float64(i)}
	}

	distances := client.DrivingDistances(context.Background(), Coord{Lat: 0, Lng: 0}, dests)
	if len(distances) != 30 {
		t.Fatalf("len = %d", len(distances))
	}
	if len(chunkSizes) != 2 || chunkSizes[0] != 25 || chunkSizes[1] != 5 {
		t.Fatalf("chunk sizes = %v", chunkSizes)
	}
	if math.Abs(distances[0]-1609.0/1609.34) > 1e-9 {
		t.Fatalf("distance = %v", distances[0])
	}
}

func TestDrivingDistancesFailedElementIsInf(t *testing.T) {
	client := testClient(t, func(r *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, map[string]any{
			"status": "OK",
			"rows": []map[string]any{{
				"elements": []map[string]any{
					{"status": "OK", "distance": map[string]any{"value": 3218}},
					{"status": "NOT_FOUND"},
				},
			}},
		}), nil
	})

	distances := client.DrivingDistances(context.Background(), Coord{}, []Coord{{Lat: 1}, {Lat: 2}})
	if len(distances) != 2 {
		t.Fatalf("len = %d", len(distances))
	}
	if math.IsInf(distances[0], 1) || !math.IsInf(distances[1], 1) {
		t.Fatalf("distances = %v", distances)
	}
}

func TestDrivingDistancesFailedChunkIsInf(t *testing.T) {
	client := testClient(t, func(r *http.Request) (*http.Response, error) {
		return nil, fmt.Errorf("network down")
	})

	distances := client.DrivingDistances(context.Background(), Coord{}, []Coord{{Lat: 1}, {Lat: 2}})
	if len(distances) != 2 || !math.IsInf(distances[0], 1) || !math.IsInf(distances[1], 1) {
		t.Fatalf("distances = %v", distances)
	}
}
