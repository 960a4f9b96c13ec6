package imgw

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
)

var (
	errUnexpectedStatus = errors.New("unexpected status code")
	errCircuitOpen      = errors.New("circuit breaker open")
)

// Upstream is the contract for the IMGW synop endpoint the fetcher pulls
// from. It exists so tests can substitute a fake feed.
type Upstream interface {
	FetchObservations(ctx context.Context) ([]Observation, error)
}

// Client pulls synoptic observations from the public IMGW endpoint.
//
// A single call performs no retries: transient failures self-heal on the
// next scheduled fetch cycle. The circuit breaker only short-circuits
// outbound calls while the upstream keeps failing.
type Client struct {
	baseURL    string
	httpClient *http.Client
	circuit    *gobreaker.CircuitBreaker
}

// NewClient creates a Client with a bounded per-call timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "imgw",
		MaxRequests: 2,
		Interval:    5 * time.Minute,
		Timeout:     10 * time.Minute,
	})

	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		circuit: cb,
	}
}

// FetchObservations issues one GET against the synop endpoint and decodes
// the station array.
func (c *Client) FetchObservations(ctx context.Context) ([]Observation, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL, nil)
	if err != nil {
		return nil, fmt.Errorf("imgw: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	result, err := c.circuit.Execute(func() (interface{}, error) {
		resp, execErr := c.httpClient.Do(req)
		if execErr != nil {
			return nil, execErr
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, fmt.Errorf("%w: %d", errUnexpectedStatus, resp.StatusCode)
		}

		var observations []Observation
		if decErr := json.NewDecoder(resp.Body).Decode(&observations); decErr != nil {
			return nil, fmt.Errorf("decode response: %w", decErr)
		}
		return observations, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("imgw: %w: %v", errCircuitOpen, err)
		}
		return nil, fmt.Errorf("imgw: fetch: %w", err)
	}

	observations, ok := result.([]Observation)
	if !ok {
		return nil, fmt.Errorf("imgw: unexpected result type from circuit breaker")
	}
	return observations, nil
}
