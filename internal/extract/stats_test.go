package extract

import (
	"testing"
	"time"
)

func TestLLMStats_Empty(t *testing.T) {
	s := NewLLMStats(time.Hour)
	snap := s.Snapshot()
	if snap.Count != 0 {
		t.Errorf("expected empty snapshot, got count %d", snap.Count)
	}
}

func TestLLMStats_Aggregates(t *testing.T) {
	s := NewLLMStats(time.Hour)
	for _, ms := range []int64{100, 200, 300, 400} {
		s.Record(ms)
	}
	snap := s.Snapshot()
	if snap.Count != 4 {
		t.Fatalf("expected 4 samples, got %d", snap.Count)
	}
	if snap.MinMs != 100 || snap.MaxMs != 400 {
		t.Errorf("min/max wrong: %d/%d", snap.MinMs, snap.MaxMs)
	}
	if snap.AvgMs != 250 {
		t.Errorf("avg wrong: %f", snap.AvgMs)
	}
	if snap.P50Ms != 250 {
		t.Errorf("p50 wrong: %f", snap.P50Ms)
	}
}

func TestLLMStats_NegativeClamped(t *testing.T) {
	s := NewLLMStats(time.Hour)
	s.Record(-50)
	snap := s.Snapshot()
	if snap.MinMs != 0 {
		t.Errorf("negative durations must clamp to zero, got %d", snap.MinMs)
	}
}

func TestLLMStats_WindowPrune(t *testing.T) {
	s := NewLLMStats(10 * time.Millisecond)
	s.Record(100)
	time.Sleep(25 * time.Millisecond)
	s.Record(200)
	snap := s.Snapshot()
	if snap.Count != 1 {
		t.Fatalf("expected the old sample pruned, got %d samples", snap.Count)
	}
	if snap.MinMs != 200 {
		t.Errorf("wrong surviving sample: %d", snap.MinMs)
	}
}

func TestPercentile_Interpolation(t *testing.T) {
	vals := []int64{100, 200}
	if got := percentile(vals, 50); got != 150 {
		t.Errorf("p50 of [100,200] = %f, want 150", got)
	}
	if got := percentile(vals, 0); got != 100 {
		t.Errorf("p0 = %f, want 100", got)
	}
	if got := percentile(vals, 100); got != 200 {
		t.Errorf("p100 = %f, want 200", got)
	}
}
