package usecase

import (
	"errors"
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"

	"PolicyCrawler/internal/domain"
)

var (
	isoDateExpr    = regexp.MustCompile(`\d{4}-\d{2}-\d{2}`)
	chineseDateExp = regexp.MustCompile(`\d{4}年\d{2}月\d{2}日`)
	dateMarkers    = strings.NewReplacer("年", "-", "月", "-", "日", "")
)

// EvaluateCandidate applies the title length, keyword, date and URL rules
// of the department to one listing entry.
func EvaluateCandidate(dept domain.Department, c domain.Candidate) domain.Evaluation {
	title := strings.TrimSpace(c.Title)
	if utf8.RuneCountInString(title) < domain.MinTitleLength {
		return domain.Skip(domain.SkipShortTitle)
	}
	if !matchesKeyword(title, dept.Keywords) {
		return domain.Skip(domain.SkipNoKeyword)
	}

	date, ok := ExtractDate(c.Text)
	if !ok {
		return domain.Skip(domain.SkipNoDate)
	}
	if !domain.ValidDate(date) {
		return domain.Skip(domain.SkipInvalidDate)
	}

	link, err := resolveURL(dept.BaseURL, c.Href)
	if err != nil {
		return domain.Skip(domain.SkipInvalidURL)
	}

	rec, err := domain.NewRecord(title, date, link, dept.Name, dept.Category)
	if err != nil {
		return domain.Skip(domain.SkipInvalidRecord)
	}
	return domain.Ok(rec)
}

// ExtractDate finds a YYYY-MM-DD date in text, falling back to the
// YYYY年MM月DD日 form normalized to YYYY-MM-DD.
func ExtractDate(text string) (string, bool) {
	if m := isoDateExpr.FindString(text); m != "" {
		return m, true
	}
	if m := chineseDateExp.FindString(text); m != "" {
		return dateMarkers.Replace(m), true
	}
	return "", false
}

func matchesKeyword(title string, keywords []string) bool {
	for _, kw := range keywords {
		if kw != "" && strings.Contains(title, kw) {
			return true
		}
	}
	return false
}

var errNotAbsolute = errors.New("resolved URL is not absolute")

func resolveURL(base, href string) (string, error) {
	baseURL, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return "", err
	}

	resolved := baseURL.ResolveReference(ref)
	if !resolved.IsAbs() || resolved.Host == "" {
		return "", errNotAbsolute
	}
	return resolved.String(), nil
}
