package telemetry

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds the pipeline instruments.
type Metrics struct {
	QueryCounter   metric.Int64Counter
	QueryDuration  metric.Float64Histogram
	IngestDuration metric.Float64Histogram
	ChunksUpserted metric.Int64Counter
}

// InitMetrics initializes the application metrics.
func InitMetrics() (*Metrics, error) {
	meter := otel.Meter("pdf-qa-backend")

	queryCounter, err := meter.Int64Counter(
		"query.requests.total",
		metric.WithDescription("Total query requests"),
	)
	if err != nil {
		return nil, err
	}

	queryDuration, err := meter.Float64Histogram(
		"query.duration",
		metric.WithDescription("Query pipeline duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	ingestDuration, err := meter.Float64Histogram(
		"ingest.duration",
		metric.WithDescription("Document ingestion duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	chunksUpserted, err := meter.Int64Counter(
		"ingest.chunks.upserted",
		metric.WithDescription("Total chunks upserted into the vector index"),
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{
		QueryCounter:   queryCounter,
		QueryDuration:  queryDuration,
		IngestDuration: ingestDuration,
		ChunksUpserted: chunksUpserted,
	}, nil
}
