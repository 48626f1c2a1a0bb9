package telemetry

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestAcquireGaugesObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	gauges := NewAcquireGauges(reg)

	gauges.Observe(42, 1024)

	metric := &dto.Metric{}
	if err := gauges.Percent.Write(metric); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if got := metric.GetGauge().GetValue(); got != 42 {
		t.Fatalf("Percent = %v, want 42", got)
	}

	metric = &dto.Metric{}
	if err := gauges.BytesPerSec.Write(metric); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if got := metric.GetGauge().GetValue(); got != 1024 {
		t.Fatalf("BytesPerSec = %v, want 1024", got)
	}
}
