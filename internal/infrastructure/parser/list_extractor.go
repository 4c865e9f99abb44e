package parser

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"PolicyCrawler/internal/domain"
	"PolicyCrawler/internal/scanner"
)

// ListExtractor reads policy listings laid out as <li> items with a link.
type ListExtractor struct{}

var _ scanner.Extractor = ListExtractor{}

// NewListExtractor returns the HTML list strategy.
func NewListExtractor() ListExtractor {
	return ListExtractor{}
}

// Name identifies the strategy inside the registry.
func (ListExtractor) Name() string {
	return "html"
}

// Extract inspects the first limit <li> elements. Items without an anchor
// carrying an href are skipped but still count toward the limit.
func (ListExtractor) Extract(markup string, limit int) ([]domain.Candidate, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}

	items := doc.Find("li")
	if limit > 0 && items.Length() > limit {
		items = items.Slice(0, limit)
	}

	var candidates []domain.Candidate
	items.Each(func(_ int, item *goquery.Selection) {
		link := item.Find("a[href]").First()
		href, ok := link.Attr("href")
		if !ok {
			return
		}

		candidates = append(candidates, domain.Candidate{
			Title: strings.TrimSpace(link.Text()),
			Href:  strings.TrimSpace(href),
			Text:  item.Text(),
		})
	})

	return candidates, nil
}
