package telemetry

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	commandsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fulfillment_commands_total",
		Help: "Commands processed by the fulfillment engine, by command and outcome.",
	}, []string{"command", "outcome"})

	eventsProjected = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fulfillment_events_projected_total",
		Help: "Events folded into read models by the projector.",
	})
)

// RecordCommand counts a processed command and its outcome
func RecordCommand(command string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	commandsTotal.WithLabelValues(command, outcome).Inc()
}

// RecordProjection counts a projected event
func RecordProjection() {
	eventsProjected.Inc()
}

// Handler exposes the metrics endpoint
func Handler() http.Handler {
	return promhttp.Handler()
}
