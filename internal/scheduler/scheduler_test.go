package scheduler

import (
	"context"
	"errors"
	"testing"
)

func TestStart_RequiresReportFunc(t *testing.T) {
	s := New("")
	defer s.Stop()
	if err := s.Start(); !errors.Is(err, ErrNoReportFunc) {
		t.Fatalf("want ErrNoReportFunc, got %v", err)
	}
	if s.IsRunning() {
		t.Fatalf("scheduler should not run without a job")
	}
}

func TestStart_InvalidSpec(t *testing.T) {
	s := New("every sunday")
	defer s.Stop()
	s.SetReportFunction(func(context.Context) error { return nil })
	if err := s.Start(); err == nil {
		t.Fatalf("expected spec error")
	}
}

func TestStart_RegistersWeeklyJob(t *testing.T) {
	s := New(DefaultWeeklySpec)
	calls := 0
	s.SetReportFunction(func(ctx context.Context) error {
		calls++
		return ctx.Err()
	})
	if err := s.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	if !s.IsRunning() {
		t.Fatalf("job not registered")
	}
	if err := s.RunNow(); err != nil || calls != 1 {
		t.Fatalf("run now: err=%v calls=%d", err, calls)
	}
	s.Stop()
	if err := s.RunNow(); !errors.Is(err, context.Canceled) {
		t.Fatalf("job context should be canceled after stop, got %v", err)
	}
}
