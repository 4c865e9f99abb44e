package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"PolicyCrawler/internal/archive"
	"PolicyCrawler/internal/domain"
	"PolicyCrawler/internal/logging"
	"PolicyCrawler/internal/ports"
)

const maxDigestEntries = 20

// PipelineDeps wires all driven adapters into the orchestration pipeline.
type PipelineDeps struct {
	Source        ports.ListingSource
	Departments   []domain.Department
	Snapshots     ports.SnapshotWriter
	Archive       ports.ArchiveRepository
	Notifier      ports.Notifier
	Recorder      ports.RunRecorder
	RetentionDays int
	Logger        *slog.Logger
}

// Pipeline implements the daily crawl: collect, snapshot, merge, archive.
type Pipeline struct {
	source        ports.ListingSource
	departments   []domain.Department
	snapshots     ports.SnapshotWriter
	archive       ports.ArchiveRepository
	notifier      ports.Notifier
	recorder      ports.RunRecorder
	retentionDays int
	logger        *slog.Logger
}

// Report summarizes one run.
type Report struct {
	Found         int
	ArchiveSize   int
	NewlyArchived int
	FailedPages   int
	Skipped       map[domain.SkipReason]int
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	logger := deps.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	retention := deps.RetentionDays
	if retention <= 0 {
		retention = archive.DefaultRetentionDays
	}

	return &Pipeline{
		source:        deps.Source,
		departments:   deps.Departments,
		snapshots:     deps.Snapshots,
		archive:       deps.Archive,
		notifier:      deps.Notifier,
		recorder:      deps.Recorder,
		retentionDays: retention,
		logger:        logger,
	}
}

// Run executes one crawl. Fetch failures and rejected candidates are
// counted and skipped; snapshot, load and save failures abort the run.
func (p *Pipeline) Run(ctx context.Context, now time.Time) (Report, error) {
	if p.source == nil || p.snapshots == nil || p.archive == nil {
		return Report{}, fmt.Errorf("pipeline is not fully configured")
	}

	report := Report{Skipped: map[domain.SkipReason]int{}}
	batch := p.collect(ctx, &report)
	if err := ctx.Err(); err != nil {
		return report, err
	}
	report.Found = len(batch)

	if err := p.snapshots.WriteSnapshot(ctx, batch); err != nil {
		return report, fmt.Errorf("write snapshot: %w", err)
	}

	existing, err := p.archive.Load(ctx)
	if err != nil {
		return report, fmt.Errorf("load archive: %w", err)
	}

	merged := archive.Merge(existing.Records, batch, p.retentionDays, now)
	if err := p.archive.Save(ctx, domain.Archive{Records: merged}); err != nil {
		return report, fmt.Errorf("save archive: %w", err)
	}

	fresh := archive.NewSince(existing.Records, merged)
	report.ArchiveSize = len(merged)
	report.NewlyArchived = len(fresh)

	if p.recorder != nil {
		p.recorder.RunCompleted(now, len(merged))
	}

	p.logger.Info("crawl finished",
		"today", report.Found,
		"archived", report.ArchiveSize,
		"new", report.NewlyArchived,
		"failed_pages", report.FailedPages,
		"cutoff", archive.Cutoff(now, p.retentionDays),
	)

	p.notify(ctx, fresh)

	return report, nil
}

func (p *Pipeline) collect(ctx context.Context, report *Report) []domain.Record {
	var batch []domain.Record

	for _, dept := range p.departments {
		if ctx.Err() != nil {
			return batch
		}
		p.logger.Info("visit department", "department", dept.Name, "pages", len(dept.PolicyURLs))

		for _, page := range p.source.Collect(ctx, dept) {
			if page.Err != nil {
				report.FailedPages++
				if p.recorder != nil {
					p.recorder.FetchFailed(dept.Name)
				}
				p.logger.Warn("listing skipped", "department", dept.Name, "url", page.URL, "error", page.Err)
				continue
			}

			for _, candidate := range page.Candidates {
				ev := EvaluateCandidate(dept, candidate)
				if !ev.Accepted() {
					report.Skipped[ev.Reason]++
					if p.recorder != nil {
						p.recorder.CandidateSkipped(dept.Name, ev.Reason)
					}
					p.logger.Debug("candidate dropped", "department", dept.Name, "title", candidate.Title, "reason", ev.Reason)
					continue
				}

				if p.recorder != nil {
					p.recorder.PolicyFound(dept.Name)
				}
				p.logger.Info("policy found", "department", dept.Name, "title", ev.Record.Title, "date", ev.Record.Date)
				batch = append(batch, ev.Record)
			}
		}
	}

	return batch
}

func (p *Pipeline) notify(ctx context.Context, fresh []domain.Record) {
	if p.notifier == nil || len(fresh) == 0 {
		return
	}
	if err := p.notifier.PublishDigest(ctx, buildDigestMessage(fresh)); err != nil {
		p.logger.Warn("digest not delivered", "error", err)
	}
}

func buildDigestMessage(records []domain.Record) string {
	if len(records) == 0 {
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "新增政策 %d 条\n\n", len(records))

	shown := records
	if len(shown) > maxDigestEntries {
		shown = shown[:maxDigestEntries]
	}
	for _, rec := range shown {
		fmt.Fprintf(&b, "- %s\n%s · %s · %s\n%s\n\n",
			rec.Title,
			rec.Department,
			rec.Category.Label(),
			rec.Date,
			rec.URL)
	}
	if rest := len(records) - len(shown); rest > 0 {
		fmt.Fprintf(&b, "……另有 %d 条\n", rest)
	}

	return b.String()
}
