package imgw_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mzielinski/imgw-weather/internal/imgw"
	"github.com/mzielinski/imgw-weather/internal/observability"
)

// --- fakes ---

type fakeUpstream struct {
	observations []imgw.Observation
	err          error
	calls        int
}

func (f *fakeUpstream) FetchObservations(_ context.Context) ([]imgw.Observation, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.observations, nil
}

type ingestionEntry struct {
	status imgw.IngestionStatus
	count  int
	detail string
}

// fakeStore keeps everything in memory and mimics the real store's
// skip-invalid-records upsert behavior.
type fakeStore struct {
	latest     []imgw.Observation
	historical []imgw.Observation
	ingestions []ingestionEntry
	stats      map[string]int
	healthErr  error
}

func (f *fakeStore) UpsertBatch(_ context.Context, records []imgw.Observation) int {
	count := 0
	for _, rec := range records {
		if rec.SkipReason() != "" {
			continue
		}
		f.latest = append(f.latest, rec)
		count++
	}
	return count
}

func (f *fakeStore) LatestPerStation(_ context.Context, limit int) []imgw.Observation {
	if len(f.latest) > limit {
		return f.latest[:limit]
	}
	return f.latest
}

func (f *fakeStore) Historical(_ context.Context, _ int) []imgw.Observation {
	return f.historical
}

func (f *fakeStore) RecordCount(_ context.Context) int          { return len(f.latest) }
func (f *fakeStore) DistinctStationCount(_ context.Context) int { return len(f.latest) }

func (f *fakeStore) LatestTimestamp(_ context.Context) string {
	if len(f.latest) == 0 {
		return ""
	}
	last := f.latest[len(f.latest)-1]
	return last.Date + " " + last.Hour
}

func (f *fakeStore) RecordIngestion(_ context.Context, status imgw.IngestionStatus, count int, detail string) {
	f.ingestions = append(f.ingestions, ingestionEntry{status: status, count: count, detail: detail})
}

func (f *fakeStore) IngestionStatsSince(_ context.Context, _ time.Time) map[string]int {
	return f.stats
}

func (f *fakeStore) HealthStats(_ context.Context) (int, error) {
	if f.healthErr != nil {
		return 0, f.healthErr
	}
	return len(f.latest), nil
}

func strptr(s string) *string { return &s }

func testObservation(id, name string) imgw.Observation {
	return imgw.Observation{
		StationID:   id,
		StationName: name,
		Date:        "2024-01-01",
		Hour:        "12:00",
		Temperature: strptr("5.2"),
	}
}

// --- tests ---

func TestFetchAndStoreSuccess(t *testing.T) {
	upstream := &fakeUpstream{observations: []imgw.Observation{
		testObservation("12375", "Warszawa"),
		testObservation("12566", "Kraków"),
	}}
	st := &fakeStore{}

	f := imgw.NewFetcher(upstream, st, observability.NewMetricsForTesting(), slog.Default())

	ok := f.FetchAndStore(context.Background())
	assert.True(t, ok)

	require.Len(t, st.ingestions, 1)
	assert.Equal(t, imgw.StatusSuccess, st.ingestions[0].status)
	assert.Equal(t, 2, st.ingestions[0].count)
	assert.Len(t, st.latest, 2)
}

func TestFetchAndStoreTransportError(t *testing.T) {
	upstream := &fakeUpstream{err: errors.New("connection refused")}
	st := &fakeStore{}

	f := imgw.NewFetcher(upstream, st, observability.NewMetricsForTesting(), slog.Default())

	ok := f.FetchAndStore(context.Background())
	assert.False(t, ok)

	require.Len(t, st.ingestions, 1)
	assert.Equal(t, imgw.StatusError, st.ingestions[0].status)
	assert.Equal(t, 0, st.ingestions[0].count)
	assert.Contains(t, st.ingestions[0].detail, "connection refused")
	assert.Empty(t, st.latest)
}

func TestFetchAndStoreEmptyPayloadIsWarning(t *testing.T) {
	upstream := &fakeUpstream{observations: []imgw.Observation{}}
	st := &fakeStore{}

	f := imgw.NewFetcher(upstream, st, observability.NewMetricsForTesting(), slog.Default())

	ok := f.FetchAndStore(context.Background())
	assert.False(t, ok)

	require.Len(t, st.ingestions, 1)
	assert.Equal(t, imgw.StatusWarning, st.ingestions[0].status)
	assert.Equal(t, 0, st.ingestions[0].count)
}

func TestFetchAndStorePartialBatch(t *testing.T) {
	malformed := testObservation("", "Bez ID") // missing station id
	upstream := &fakeUpstream{observations: []imgw.Observation{
		testObservation("12375", "Warszawa"),
		malformed,
	}}
	st := &fakeStore{}

	f := imgw.NewFetcher(upstream, st, observability.NewMetricsForTesting(), slog.Default())

	ok := f.FetchAndStore(context.Background())
	assert.True(t, ok)

	require.Len(t, st.ingestions, 1)
	assert.Equal(t, imgw.StatusSuccess, st.ingestions[0].status)
	assert.Equal(t, 1, st.ingestions[0].count)
}
