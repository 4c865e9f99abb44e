package ports

import (
	"context"
	"time"

	"PolicyCrawler/internal/domain"
)

// Fetcher retrieves the markup of a listing page. Failures wrap domain.ErrFetch.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// ListingSource fetches and parses every listing page of a department.
// Pages that fail are returned with Err set rather than aborting the crawl.
type ListingSource interface {
	Collect(ctx context.Context, dept domain.Department) []domain.Page
}

// ArchiveRepository owns the persisted archive.
type ArchiveRepository interface {
	Load(ctx context.Context) (domain.Archive, error)
	Save(ctx context.Context, archive domain.Archive) error
}

// SnapshotWriter persists the batch of one run.
type SnapshotWriter interface {
	WriteSnapshot(ctx context.Context, records []domain.Record) error
}

// Notifier streams a digest of newly archived policies to a channel.
type Notifier interface {
	PublishDigest(ctx context.Context, digest string) error
}

// RunRecorder observes the outcome of pipeline runs.
type RunRecorder interface {
	FetchFailed(department string)
	CandidateSkipped(department string, reason domain.SkipReason)
	PolicyFound(department string)
	RunCompleted(at time.Time, archiveSize int)
}

// Scheduler controls when pipelines execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
