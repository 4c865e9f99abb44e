package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"PolicyCrawler/internal/domain"
)

func TestRecorderCounts(t *testing.T) {
	t.Parallel()

	m := New()
	m.PolicyFound("工信部")
	m.PolicyFound("工信部")
	m.CandidateSkipped("科技部", domain.SkipNoKeyword)
	m.FetchFailed("福建省政府")
	m.RunCompleted(time.Unix(1747699200, 0), 42)

	if got := testutil.ToFloat64(m.PoliciesFound.WithLabelValues("工信部")); got != 2 {
		t.Fatalf("policies found = %v", got)
	}
	if got := testutil.ToFloat64(m.CandidatesSkipped.WithLabelValues("科技部", "no_keyword")); got != 1 {
		t.Fatalf("skipped = %v", got)
	}
	if got := testutil.ToFloat64(m.FetchFailures.WithLabelValues("福建省政府")); got != 1 {
		t.Fatalf("fetch failures = %v", got)
	}
	if got := testutil.ToFloat64(m.ArchiveRecords); got != 42 {
		t.Fatalf("archive records = %v", got)
	}
	if got := testutil.ToFloat64(m.LastSuccess); got != 1747699200 {
		t.Fatalf("last success = %v", got)
	}
}

func TestRegistriesAreIndependent(t *testing.T) {
	t.Parallel()

	a, b := New(), New()
	a.PolicyFound("工信部")

	if got := testutil.ToFloat64(b.PoliciesFound.WithLabelValues("工信部")); got != 0 {
		t.Fatalf("second registry saw %v", got)
	}
}

func TestRegistryGathersAllFamilies(t *testing.T) {
	t.Parallel()

	m := New()
	m.PolicyFound("工信部")
	m.CandidateSkipped("工信部", domain.SkipShortTitle)
	m.FetchFailed("工信部")
	m.RunCompleted(time.Unix(100, 0), 1)

	count, err := testutil.GatherAndCount(m.Registry())
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if count != 5 {
		t.Fatalf("expected 5 series, got %d", count)
	}
}

func TestWriteTextfile(t *testing.T) {
	t.Parallel()

	m := New()
	m.RunCompleted(time.Unix(100, 0), 7)

	path := filepath.Join(t.TempDir(), "textfile", "policycrawler.prom")
	if err := m.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile error: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read textfile: %v", err)
	}
	if !strings.Contains(string(raw), "policycrawler_archive_records 7") {
		t.Fatalf("unexpected textfile:\n%s", raw)
	}
}
