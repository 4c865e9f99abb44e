package usecase

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"PolicyCrawler/internal/logging"
)

type manualDriver struct {
	job     func(time.Time)
	stopped bool
}

func (d *manualDriver) Start(_ context.Context, job func(time.Time)) error {
	d.job = job
	return nil
}

func (d *manualDriver) Stop(context.Context) error {
	d.stopped = true
	return nil
}

type countingRunner struct {
	runs []time.Time
	err  error
}

func (r *countingRunner) Run(_ context.Context, now time.Time) (Report, error) {
	r.runs = append(r.runs, now)
	return Report{}, r.err
}

func TestSchedulerLogsFailedRuns(t *testing.T) {
	t.Parallel()

	var logs bytes.Buffer
	driver := &manualDriver{}
	runner := &countingRunner{err: errors.New("load archive: corrupt")}
	s := NewScheduler(driver, runner, logging.NewWithWriter(&logs, "info", "text"))

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start error: %v", err)
	}
	driver.job(runDay)
	driver.job(runDay.Add(24 * time.Hour))

	if len(runner.runs) != 2 {
		t.Fatalf("expected two runs, got %d", len(runner.runs))
	}
	if !strings.Contains(logs.String(), "scheduled crawl failed") {
		t.Fatalf("failure not logged: %s", logs.String())
	}

	if err := s.Stop(context.Background()); err != nil || !driver.stopped {
		t.Fatalf("Stop error: %v (stopped=%v)", err, driver.stopped)
	}
}

func TestSchedulerWithoutDriver(t *testing.T) {
	t.Parallel()

	s := NewScheduler(nil, &countingRunner{}, nil)
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start error: %v", err)
	}
	if err := s.Stop(context.Background()); err != nil {
		t.Fatalf("Stop error: %v", err)
	}
}
