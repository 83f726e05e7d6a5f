package profile

import "testing"

func TestProfiler_StartEmptyMode(t *testing.T) {
	s := Profiler{}.Start()

	if _, ok := s.(ignore); !ok {
		t.Errorf("expected no-op stopper, got %T", s)
	}

	s.Stop()
}

func TestProfiler_StartUnknownMode(t *testing.T) {
	s := Profiler{Mode: "bogus", Path: t.TempDir()}.Start()
	defer s.Stop()

	if _, ok := s.(ignore); !ok {
		t.Errorf("expected no-op stopper, got %T", s)
	}
}
