package progress

import "testing"

// TestPulseMonotonic verifies Testable Property 10: current_bytes is
// non-decreasing within a phase and percent stays in [0, 100].
func TestPulseMonotonic(t *testing.T) {
	s := NewSharedState(0)
	s.Start()

	pulses := []struct {
		percent int
		bytes   uint64
	}{
		{10, 100}, {20, 250}, {19, 200}, {100, 1000}, {150, 2000}, {-5, 2500},
	}

	var lastBytes uint64
	for _, p := range pulses {
		s.Pulse(p.percent, p.bytes, 5000, 1000)
		got := s.Read()
		if got.Percent < 0 || got.Percent > 100 {
			t.Fatalf("percent %d out of [0,100]", got.Percent)
		}
		if got.CurrentBytes < lastBytes {
			t.Fatalf("current_bytes regressed: %d < %d", got.CurrentBytes, lastBytes)
		}
		lastBytes = got.CurrentBytes
	}
}

func TestPulseIntervalDefault(t *testing.T) {
	s := NewSharedState(0)
	if s.PulseInterval() <= 0 {
		t.Fatal("expected a positive default pulse interval")
	}
}

func TestStatusChangedTransitionsPhase(t *testing.T) {
	s := NewSharedState(0)
	s.Start()
	s.Stop()
	if got := s.Read().Phase; got != "installing" {
		t.Fatalf("Phase after Stop() = %q, want installing", got)
	}
	s.StatusChanged("pkg-a", 1, 3, InstallActionUnpacking)
	snap := s.Read()
	if snap.StepsDone != 1 || snap.TotalSteps != 3 {
		t.Fatalf("StatusChanged did not record steps: %+v", snap)
	}
	s.MarkDone(false)
	if got := s.Read().Phase; got != "done" {
		t.Fatalf("Phase after MarkDone(false) = %q, want done", got)
	}
}
