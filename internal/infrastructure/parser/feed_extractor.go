package parser

import (
	"fmt"
	"strings"

	"github.com/mmcdole/gofeed"

	"PolicyCrawler/internal/domain"
	"PolicyCrawler/internal/scanner"
)

// FeedExtractor reads RSS/Atom channels some portals publish next to their listings.
type FeedExtractor struct {
	parser *gofeed.Parser
}

var _ scanner.Extractor = (*FeedExtractor)(nil)

// NewFeedExtractor wires a gofeed parser.
func NewFeedExtractor() *FeedExtractor {
	return &FeedExtractor{parser: gofeed.NewParser()}
}

// Name identifies the strategy inside the registry.
func (f *FeedExtractor) Name() string {
	return "rss"
}

// Extract converts the first limit feed items. The surrounding text starts
// with the item's publication date so the usual date rules apply.
func (f *FeedExtractor) Extract(markup string, limit int) ([]domain.Candidate, error) {
	feed, err := f.parser.ParseString(markup)
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	items := feed.Items
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}

	candidates := make([]domain.Candidate, 0, len(items))
	for _, item := range items {
		if item == nil || item.Link == "" {
			continue
		}

		parts := make([]string, 0, 3)
		if published := item.PublishedParsed; published != nil {
			parts = append(parts, published.Format(domain.DateLayout))
		} else if updated := item.UpdatedParsed; updated != nil {
			parts = append(parts, updated.Format(domain.DateLayout))
		}
		parts = append(parts, item.Title, item.Description)

		candidates = append(candidates, domain.Candidate{
			Title: strings.TrimSpace(item.Title),
			Href:  strings.TrimSpace(item.Link),
			Text:  strings.Join(parts, " "),
		})
	}

	return candidates, nil
}
