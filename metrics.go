package remotelog

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Process-wide relay metrics, summed over every Relay.
var (
	mSent = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "remotelog",
		Name:      "lines_sent_total",
		Help:      "Log lines written to the remote client",
	})

	mBytes = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "remotelog",
		Name:      "bytes_sent_total",
		Help:      "Bytes written to the remote client",
	})

	mFiltered = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "remotelog",
		Name:      "lines_filtered_total",
		Help:      "Log lines not relayed because they came from the reserved task",
	})

	mTruncated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "remotelog",
		Name:      "lines_truncated_total",
		Help:      "Log lines cut to the format buffer capacity",
	})

	mDropped = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "remotelog",
		Name:      "lines_dropped_total",
		Help:      "Log lines dropped because the async queue was full",
	})

	mFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "remotelog",
		Name:      "send_failures_total",
		Help:      "Transport failures that tore the relay down",
	})

	mConnected = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "remotelog",
		Name:      "client_connected",
		Help:      "1 while a remote client is connected",
	})
)
