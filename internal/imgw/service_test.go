package imgw_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mzielinski/imgw-weather/internal/imgw"
	"github.com/mzielinski/imgw-weather/internal/observability"
)

func newTestService(upstream *fakeUpstream, st *fakeStore) *imgw.Service {
	clock := clockwork.NewFakeClockAt(time.Date(2024, 1, 1, 13, 0, 0, 0, time.UTC))
	fetcher := imgw.NewFetcher(upstream, st, observability.NewMetricsForTesting(), slog.Default())
	return imgw.NewService(st, fetcher, 100, 30, clock, slog.Default())
}

func TestCurrentViewColdStartFetchesOnce(t *testing.T) {
	upstream := &fakeUpstream{observations: []imgw.Observation{
		testObservation("12375", "Warszawa"),
	}}
	st := &fakeStore{}
	svc := newTestService(upstream, st)

	resp := svc.CurrentView(context.Background())

	assert.Equal(t, 1, upstream.calls)
	assert.Equal(t, 1, resp.TotalCount)
	require.Len(t, resp.Stations, 1)
	assert.Equal(t, "Warszawa", resp.Stations[0].StationName)
}

func TestCurrentViewSkipsFetchWhenDataPresent(t *testing.T) {
	upstream := &fakeUpstream{}
	st := &fakeStore{latest: []imgw.Observation{testObservation("12375", "Warszawa")}}
	svc := newTestService(upstream, st)

	resp := svc.CurrentView(context.Background())

	assert.Equal(t, 0, upstream.calls)
	assert.Equal(t, 1, resp.TotalCount)
}

func TestCurrentViewEmptyAfterFailedColdStart(t *testing.T) {
	upstream := &fakeUpstream{err: errors.New("upstream down")}
	st := &fakeStore{}
	svc := newTestService(upstream, st)

	resp := svc.CurrentView(context.Background())

	// Still a well-formed response, just empty.
	assert.Equal(t, 1, upstream.calls)
	assert.Equal(t, 0, resp.TotalCount)
	assert.NotNil(t, resp.Stations)
}

func TestHistoricalViewLookbackBoundary(t *testing.T) {
	svc := newTestService(&fakeUpstream{}, &fakeStore{})

	_, err := svc.HistoricalView(context.Background(), 31)
	assert.ErrorIs(t, err, imgw.ErrLookbackTooLong)

	resp, err := svc.HistoricalView(context.Background(), 30)
	require.NoError(t, err)
	assert.Equal(t, 0, resp.TotalCount)
	assert.NotNil(t, resp.Stations)
}

func TestStatsView(t *testing.T) {
	st := &fakeStore{
		latest: []imgw.Observation{testObservation("12375", "Warszawa")},
		stats:  map[string]int{"success": 3, "error": 1},
	}
	svc := newTestService(&fakeUpstream{}, st)

	stats := svc.StatsView(context.Background())

	assert.Equal(t, 1, stats.TotalRecords)
	assert.Equal(t, 1, stats.StationsCount)
	require.NotNil(t, stats.LastUpdate)
	assert.Equal(t, "2024-01-01 12:00", *stats.LastUpdate)
	assert.Equal(t, map[string]int{"success": 3, "error": 1}, stats.APICalls24h)
}

func TestStatsViewEmptyStore(t *testing.T) {
	svc := newTestService(&fakeUpstream{}, &fakeStore{})

	stats := svc.StatsView(context.Background())

	assert.Equal(t, 0, stats.TotalRecords)
	assert.Nil(t, stats.LastUpdate)
}

func TestHealth(t *testing.T) {
	st := &fakeStore{latest: []imgw.Observation{testObservation("12375", "Warszawa")}}
	svc := newTestService(&fakeUpstream{}, st)

	health := svc.Health(context.Background())
	assert.Equal(t, "healthy", health.Status)
	require.NotNil(t, health.DatabaseRecords)
	assert.Equal(t, 1, *health.DatabaseRecords)

	st.healthErr = errors.New("database is locked")
	health = svc.Health(context.Background())
	assert.Equal(t, "unhealthy", health.Status)
	assert.Contains(t, health.Error, "database is locked")
	assert.Nil(t, health.DatabaseRecords)
}
