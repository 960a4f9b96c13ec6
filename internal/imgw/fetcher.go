package imgw

import (
	"context"
	"log/slog"

	"github.com/mzielinski/imgw-weather/internal/observability"
)

// Fetcher runs one ingestion cycle: pull the synop feed, persist the batch,
// and record the outcome in the ingestion log.
type Fetcher struct {
	upstream Upstream
	store    ObservationStore
	metrics  *observability.Metrics
	log      *slog.Logger
}

// NewFetcher creates a Fetcher.
func NewFetcher(upstream Upstream, store ObservationStore, metrics *observability.Metrics, logger *slog.Logger) *Fetcher {
	return &Fetcher{
		upstream: upstream,
		store:    store,
		metrics:  metrics,
		log:      logger,
	}
}

// FetchAndStore performs a single fetch cycle and reports whether new data
// was written. Transport and payload failures are absorbed here: they end up
// in the ingestion log and as a false return, never as an error to the
// scheduler or a request handler.
func (f *Fetcher) FetchAndStore(ctx context.Context) bool {
	observations, err := f.upstream.FetchObservations(ctx)
	if err != nil {
		f.log.Error("imgw fetch failed", "error", err)
		f.store.RecordIngestion(ctx, StatusError, 0, err.Error())
		f.metrics.FetchCycles.WithLabelValues(string(StatusError)).Inc()
		return false
	}

	if len(observations) == 0 {
		// Legitimate during synoptic gaps: a soft failure, not an error.
		f.log.Warn("imgw returned an empty payload")
		f.store.RecordIngestion(ctx, StatusWarning, 0, "empty response payload")
		f.metrics.FetchCycles.WithLabelValues(string(StatusWarning)).Inc()
		return false
	}

	count := f.store.UpsertBatch(ctx, observations)
	f.store.RecordIngestion(ctx, StatusSuccess, count, "")
	f.metrics.FetchCycles.WithLabelValues(string(StatusSuccess)).Inc()
	f.metrics.RecordsUpserted.Add(float64(count))

	f.log.Info("imgw fetch completed", "received", len(observations), "stored", count)
	return true
}
