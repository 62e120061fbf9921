// Package metrics declares the prometheus collectors of the bible content pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Resolutions counts resolver results by operation and the source that served them.
	Resolutions = promauto.NewCounterVec( //nolint:gochecknoglobals
		prometheus.CounterOpts{
			Name: "biblia_bible_resolutions_total",
			Help: "Bible content resolutions, differentiated by operation and serving source.",
		},
		[]string{"operation", "source"},
	)

	// RemoteRequests counts outbound api calls by api and http status ("error" for transport failures).
	RemoteRequests = promauto.NewCounterVec( //nolint:gochecknoglobals
		prometheus.CounterOpts{
			Name: "biblia_remote_requests_total",
			Help: "Outbound requests to scripture apis and the chat webhook.",
		},
		[]string{"api", "status"},
	)

	// ImportedRows counts rows written by the importer per kind (books, chapters, verses).
	ImportedRows = promauto.NewCounterVec( //nolint:gochecknoglobals
		prometheus.CounterOpts{
			Name: "biblia_imported_rows_total",
			Help: "Rows upserted by the bible importer.",
		},
		[]string{"kind"},
	)
)

// RequestDuration observes the handling time of http requests by route pattern, method and status.
var RequestDuration = promauto.NewHistogramVec( //nolint:gochecknoglobals
	prometheus.HistogramOpts{
		Name:    "biblia_http_request_duration_seconds",
		Help:    "Time spent handling http requests.",
		Buckets: prometheus.DefBuckets,
	},
	[]string{"route", "method", "status"},
)
