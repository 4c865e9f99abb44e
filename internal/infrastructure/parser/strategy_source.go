package parser

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"PolicyCrawler/internal/domain"
	"PolicyCrawler/internal/ports"
	"PolicyCrawler/internal/scanner"
)

// Limits caps the listing items inspected per page.
type Limits struct {
	ItemsPerPage         int
	RenderedItemsPerPage int
}

// StrategySource implements ListingSource via registered extractor strategies.
type StrategySource struct {
	registry *scanner.Registry
	fetcher  ports.Fetcher
	renderer ports.Fetcher
	limits   Limits
	logger   *slog.Logger
}

var _ ports.ListingSource = (*StrategySource)(nil)

// NewStrategySource wires the extractor registry with the page fetchers.
// renderer may be nil, in which case rendered departments use fetcher.
func NewStrategySource(reg *scanner.Registry, fetcher, renderer ports.Fetcher, limits Limits, log *slog.Logger) *StrategySource {
	return &StrategySource{
		registry: reg,
		fetcher:  fetcher,
		renderer: renderer,
		limits:   limits,
		logger:   log,
	}
}

// Collect fetches every listing URL of the department in order. A page
// that cannot be fetched or parsed is returned with Err wrapping
// domain.ErrFetch; later pages are still processed.
func (s *StrategySource) Collect(ctx context.Context, dept domain.Department) []domain.Page {
	pages := make([]domain.Page, 0, len(dept.PolicyURLs))

	extractor, resolveErr := s.resolve(dept.Extractor)
	fetcher, limit := s.fetcherFor(dept)

	for _, pageURL := range dept.PolicyURLs {
		page := domain.Page{Department: dept.Name, URL: pageURL}

		if resolveErr != nil {
			page.Err = resolveErr
			pages = append(pages, page)
			continue
		}

		s.debug("fetch listing", "department", dept.Name, "url", pageURL, "render", dept.Render)
		markup, err := fetcher.Fetch(ctx, pageURL)
		if err != nil {
			page.Err = asFetchError(err)
			pages = append(pages, page)
			continue
		}

		candidates, err := extractor.Extract(markup, limit)
		if err != nil {
			page.Err = fmt.Errorf("%w: extract %s: %v", domain.ErrFetch, pageURL, err)
			pages = append(pages, page)
			continue
		}

		s.debug("listing parsed", "department", dept.Name, "url", pageURL, "candidates", len(candidates))
		page.Candidates = candidates
		pages = append(pages, page)
	}

	return pages
}

func (s *StrategySource) resolve(name string) (scanner.Extractor, error) {
	if s.registry == nil {
		return nil, fmt.Errorf("%w: extractor registry is not configured", domain.ErrFetch)
	}
	if name == "" {
		name = "html"
	}
	extractor, err := s.registry.Resolve(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrFetch, err)
	}
	return extractor, nil
}

func (s *StrategySource) fetcherFor(dept domain.Department) (ports.Fetcher, int) {
	if dept.Render && s.renderer != nil {
		return s.renderer, s.limits.RenderedItemsPerPage
	}
	return s.fetcher, s.limits.ItemsPerPage
}

func asFetchError(err error) error {
	if errors.Is(err, domain.ErrFetch) {
		return err
	}
	return fmt.Errorf("%w: %v", domain.ErrFetch, err)
}

func (s *StrategySource) debug(msg string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}
