package kafka

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Producer metrics are labelled by topic and event type. Both sets are
// small and fixed, so cardinality stays bounded.
var (
	eventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kafka_producer_messages_published_total",
			Help: "Domain events written to Kafka",
		},
		[]string{"topic", "event_type"},
	)

	eventPublishFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kafka_producer_publish_errors_total",
			Help: "Domain events Kafka refused or that timed out",
		},
		[]string{"topic", "event_type"},
	)

	publishLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "kafka_producer_publish_duration_seconds",
			Help:    "Time spent in WriteMessages per event",
			Buckets: []float64{.001, .005, .01, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"topic"},
	)
)

// observePublish records the outcome of one publish attempt.
func observePublish(topic, eventType string, started time.Time, err error) {
	publishLatency.WithLabelValues(topic).Observe(time.Since(started).Seconds())
	if err != nil {
		eventPublishFailures.WithLabelValues(topic, eventType).Inc()
		return
	}
	eventsPublished.WithLabelValues(topic, eventType).Inc()
}
