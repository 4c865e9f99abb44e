package scheduler

import (
	"context"
	"testing"
	"time"
)

func TestIntervalSchedulerRunsImmediatelyAndRepeats(t *testing.T) {
	t.Parallel()

	shanghai, err := time.LoadLocation("Asia/Shanghai")
	if err != nil {
		t.Skipf("zone database unavailable: %v", err)
	}

	s := NewIntervalScheduler(10*time.Millisecond, shanghai)
	triggers := make(chan time.Time, 16)

	if err := s.Start(context.Background(), func(at time.Time) {
		select {
		case triggers <- at:
		default:
		}
	}); err != nil {
		t.Fatalf("Start error: %v", err)
	}

	for i := 0; i < 2; i++ {
		select {
		case at := <-triggers:
			if at.Location() != shanghai {
				t.Fatalf("trigger not in configured zone: %v", at.Location())
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("job did not run (iteration %d)", i)
		}
	}

	stopCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.Stop(stopCtx); err != nil {
		t.Fatalf("Stop error: %v", err)
	}

	// Drain anything queued before the stop, then make sure nothing follows.
	for len(triggers) > 0 {
		<-triggers
	}
	select {
	case <-triggers:
		t.Fatal("job ran after Stop")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestIntervalSchedulerStopWithoutStart(t *testing.T) {
	t.Parallel()

	s := NewIntervalScheduler(time.Hour, nil)
	if err := s.Stop(context.Background()); err != nil {
		t.Fatalf("Stop error: %v", err)
	}
}

func TestIntervalSchedulerStopsOnContextCancel(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	s := NewIntervalScheduler(time.Hour, nil)

	ran := make(chan struct{}, 1)
	if err := s.Start(ctx, func(time.Time) { ran <- struct{}{} }); err != nil {
		t.Fatalf("Start error: %v", err)
	}
	<-ran
	cancel()

	stopCtx, stopCancel := context.WithTimeout(context.Background(), time.Second)
	defer stopCancel()
	if err := s.Stop(stopCtx); err != nil {
		t.Fatalf("goroutine should have exited after cancel: %v", err)
	}
}
