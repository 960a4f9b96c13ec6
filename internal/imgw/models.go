package imgw

import (
	"context"
	"time"
)

// Observation is one synoptic measurement reported by a station at a given
// date and hour. JSON tags carry the IMGW wire field names verbatim; any
// consumer of the API relies on this exact shape.
//
// Scalar readings are nullable strings on purpose: the upstream feed uses
// free-form markers for missing sensors, and ingestion must never fail on
// formatting variance.
type Observation struct {
	StationID   string  `json:"id_stacji"`
	StationName string  `json:"stacja"`
	Date        string  `json:"data_pomiaru"`
	Hour        string  `json:"godzina_pomiaru"`
	Temperature *string `json:"temperatura"`
	WindSpeed   *string `json:"predkosc_wiatru"`
	WindDir     *string `json:"kierunek_wiatru"`
	Humidity    *string `json:"wilgotnosc_wzgledna"`
	Precip      *string `json:"suma_opadu"`
	Pressure    *string `json:"cisnienie"`
}

// SkipReason returns a non-empty reason when the observation is missing a
// natural-key field and must be skipped during ingestion. A batch upsert
// skips such records instead of aborting.
func (o Observation) SkipReason() string {
	switch {
	case o.StationID == "":
		return "missing id_stacji"
	case o.Date == "":
		return "missing data_pomiaru"
	case o.Hour == "":
		return "missing godzina_pomiaru"
	}
	return ""
}

// IngestionStatus classifies the outcome of one fetch cycle.
type IngestionStatus string

const (
	StatusSuccess IngestionStatus = "success"
	StatusWarning IngestionStatus = "warning"
	StatusError   IngestionStatus = "error"
)

// ObservationStore is the persistence contract for the ingestion pipeline
// and the query facade. Read methods degrade to empty results on storage
// faults; callers cannot distinguish "no data yet" from a failed query.
// HealthStats is the one exception and surfaces the underlying error so the
// health endpoint can report an unhealthy state with detail.
type ObservationStore interface {
	UpsertBatch(ctx context.Context, records []Observation) int
	LatestPerStation(ctx context.Context, limit int) []Observation
	Historical(ctx context.Context, daysBack int) []Observation
	RecordCount(ctx context.Context) int
	DistinctStationCount(ctx context.Context) int
	LatestTimestamp(ctx context.Context) string
	RecordIngestion(ctx context.Context, status IngestionStatus, count int, errDetail string)
	IngestionStatsSince(ctx context.Context, cutoff time.Time) map[string]int
	HealthStats(ctx context.Context) (int, error)
}
