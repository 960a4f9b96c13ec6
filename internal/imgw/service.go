package imgw

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"
)

// ErrLookbackTooLong is returned when a historical query asks for more days
// than the configured maximum. It is the only error the facade surfaces to
// the request boundary.
var ErrLookbackTooLong = errors.New("maximum lookback period is 30 days")

// StationsResponse is the shared shape of the current and historical views.
type StationsResponse struct {
	Stations   []Observation `json:"stations"`
	TotalCount int           `json:"total_count"`
	LastUpdate string        `json:"last_update"`
}

// StatsResponse aggregates store and ingestion-log counters.
type StatsResponse struct {
	TotalRecords  int            `json:"total_records"`
	StationsCount int            `json:"stations_count"`
	LastUpdate    *string        `json:"last_update"`
	APICalls24h   map[string]int `json:"api_calls_24h"`
	Timestamp     string         `json:"timestamp"`
}

// HealthResponse reports storage health for the health endpoint.
type HealthResponse struct {
	Status          string `json:"status"`
	DatabaseRecords *int   `json:"database_records,omitempty"`
	Error           string `json:"error,omitempty"`
	Timestamp       string `json:"timestamp"`
}

// Service is the query facade over the observation store. It owns the
// cold-start fetch on an empty store and the request-level constraints on
// historical lookback.
type Service struct {
	store          ObservationStore
	fetcher        *Fetcher
	currentLimit   int
	maxHistoryDays int
	refreshTimeout time.Duration
	clock          clockwork.Clock
	log            *slog.Logger
}

// NewService creates a Service.
func NewService(store ObservationStore, fetcher *Fetcher, currentLimit, maxHistoryDays int, clock clockwork.Clock, logger *slog.Logger) *Service {
	return &Service{
		store:          store,
		fetcher:        fetcher,
		currentLimit:   currentLimit,
		maxHistoryDays: maxHistoryDays,
		refreshTimeout: time.Minute,
		clock:          clock,
		log:            logger,
	}
}

// CurrentView returns the latest reading per station. On an empty store it
// performs one synchronous fetch cycle and a single re-read, so the first
// request after startup does not see an empty result.
func (s *Service) CurrentView(ctx context.Context) StationsResponse {
	stations := s.store.LatestPerStation(ctx, s.currentLimit)
	if len(stations) == 0 {
		s.log.Info("store empty, triggering cold-start fetch")
		s.fetcher.FetchAndStore(ctx)
		stations = s.store.LatestPerStation(ctx, s.currentLimit)
	}
	return s.stationsResponse(stations)
}

// HistoricalView returns observations newer than today minus days, ordered
// newest first. Lookback beyond the configured maximum is a client error.
func (s *Service) HistoricalView(ctx context.Context, days int) (StationsResponse, error) {
	if days > s.maxHistoryDays {
		return StationsResponse{}, ErrLookbackTooLong
	}
	return s.stationsResponse(s.store.Historical(ctx, days)), nil
}

// StatsView returns aggregate counters. Pure reads, no side effects.
func (s *Service) StatsView(ctx context.Context) StatsResponse {
	var lastUpdate *string
	if ts := s.store.LatestTimestamp(ctx); ts != "" {
		lastUpdate = &ts
	}

	cutoff := s.clock.Now().UTC().Add(-24 * time.Hour)
	return StatsResponse{
		TotalRecords:  s.store.RecordCount(ctx),
		StationsCount: s.store.DistinctStationCount(ctx),
		LastUpdate:    lastUpdate,
		APICalls24h:   s.store.IngestionStatsSince(ctx, cutoff),
		Timestamp:     s.now(),
	}
}

// Refresh dispatches one fetch cycle in the background and returns
// immediately. The triggering request never waits for completion.
func (s *Service) Refresh() {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.refreshTimeout)
		defer cancel()
		s.fetcher.FetchAndStore(ctx)
	}()
}

// Health reports storage connectivity. A storage fault is surfaced here
// explicitly instead of degrading to an empty result.
func (s *Service) Health(ctx context.Context) HealthResponse {
	count, err := s.store.HealthStats(ctx)
	if err != nil {
		return HealthResponse{
			Status:    "unhealthy",
			Error:     err.Error(),
			Timestamp: s.now(),
		}
	}
	return HealthResponse{
		Status:          "healthy",
		DatabaseRecords: &count,
		Timestamp:       s.now(),
	}
}

func (s *Service) stationsResponse(stations []Observation) StationsResponse {
	if stations == nil {
		stations = []Observation{}
	}
	return StationsResponse{
		Stations:   stations,
		TotalCount: len(stations),
		LastUpdate: s.now(),
	}
}

func (s *Service) now() string {
	return s.clock.Now().UTC().Format(time.RFC3339)
}
