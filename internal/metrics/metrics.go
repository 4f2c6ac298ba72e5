// Package metrics exposes Prometheus instrumentation for the chat
// server.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	connectionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "messenger_connections_active",
		Help: "Number of WebSocket clients currently connected to this instance",
	})

	messagesPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "messenger_messages_published_total",
		Help: "Chat messages published to the broker grouped by outcome",
	}, []string{"status"})

	framesBroadcast = promauto.NewCounter(prometheus.CounterOpts{
		Name: "messenger_frames_broadcast_total",
		Help: "Frames fanned out to locally connected clients",
	})
)

// Handler returns the HTTP handler serving the metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ClientConnected records a new WebSocket connection.
func ClientConnected() {
	connectionsActive.Inc()
}

// ClientDisconnected records a closed WebSocket connection.
func ClientDisconnected() {
	connectionsActive.Dec()
}

// ObservePublish records an attempt to publish a chat message.
func ObservePublish(err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	messagesPublished.WithLabelValues(status).Inc()
}

// ObserveBroadcast records frames delivered to local clients.
func ObserveBroadcast(delivered int) {
	framesBroadcast.Add(float64(delivered))
}
