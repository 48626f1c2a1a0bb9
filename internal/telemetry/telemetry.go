// Package telemetry configures structured logging and defines the
// acquire-phase Prometheus gauges. The gauges change only through
// AcquireGauges.Observe; no commit path in this repository calls it.
package telemetry

import (
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Setup configures the global zerolog logger with a console writer and a
// level taken from LOG_LEVEL.
func Setup() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	switch os.Getenv("LOG_LEVEL") {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

// Component returns a sublogger tagged with the owning package's name,
// e.g. log.With().Str("component", "planner").Logger().
func Component(name string) zerolog.Logger {
	return log.With().Str("component", name).Logger()
}

// AcquireGauges are the two Prometheus gauges for a commit's acquire
// phase; they hold whatever the last Observe call set.
type AcquireGauges struct {
	Percent     prometheus.Gauge
	BytesPerSec prometheus.Gauge
}

// NewAcquireGauges registers the gauge pair against reg. Pass
// prometheus.DefaultRegisterer for process-global registration, or a
// fresh *prometheus.Registry in tests to avoid collisions across runs.
func NewAcquireGauges(reg prometheus.Registerer) *AcquireGauges {
	g := &AcquireGauges{
		Percent: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "packtui_acquire_percent",
			Help: "Current download-phase completion percentage of the active commit.",
		}),
		BytesPerSec: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "packtui_acquire_bytes_per_sec",
			Help: "Current download throughput of the active commit, in bytes per second.",
		}),
	}
	reg.MustRegister(g.Percent, g.BytesPerSec)
	return g
}

// Observe updates both gauges from a progress snapshot's fields.
func (g *AcquireGauges) Observe(percent int, bytesPerSec uint64) {
	g.Percent.Set(float64(percent))
	g.BytesPerSec.Set(float64(bytesPerSec))
}
