package domain

import (
	"fmt"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	// DateLayout is the canonical date form; string order equals date order.
	DateLayout = "2006-01-02"

	// KeyLength is the number of leading title characters forming the dedup key.
	KeyLength = 50

	// MinTitleLength filters navigation links and other noise.
	MinTitleLength = 10
)

// Category tags the administrative level of the issuing department.
type Category string

const (
	CategoryNational   Category = "national"
	CategoryProvincial Category = "provincial"
)

const (
	nationalLabel   = "国家级"
	provincialLabel = "省级"
)

// Label returns the display text persisted in the JSON files.
func (c Category) Label() string {
	switch c {
	case CategoryNational:
		return nationalLabel
	case CategoryProvincial:
		return provincialLabel
	default:
		return string(c)
	}
}

// MarshalText renders the category as its display label.
func (c Category) MarshalText() ([]byte, error) {
	switch c {
	case CategoryNational, CategoryProvincial:
		return []byte(c.Label()), nil
	default:
		return nil, fmt.Errorf("%w: unknown category %q", ErrValidation, string(c))
	}
}

// UnmarshalText accepts the display label or the generic name.
func (c *Category) UnmarshalText(text []byte) error {
	switch string(text) {
	case nationalLabel, string(CategoryNational):
		*c = CategoryNational
	case provincialLabel, string(CategoryProvincial):
		*c = CategoryProvincial
	default:
		return fmt.Errorf("%w: unknown category %q", ErrValidation, string(text))
	}
	return nil
}

// Record is a single policy announcement.
type Record struct {
	Title      string   `json:"title"`
	Date       string   `json:"date"`
	URL        string   `json:"url"`
	Department string   `json:"department"`
	Category   Category `json:"type"`
}

// NewRecord validates the fields and builds a Record.
func NewRecord(title, date, rawURL, department string, category Category) (Record, error) {
	title = strings.TrimSpace(title)
	if utf8.RuneCountInString(title) < MinTitleLength {
		return Record{}, fmt.Errorf("%w: title %q shorter than %d characters", ErrValidation, title, MinTitleLength)
	}
	if !ValidDate(date) {
		return Record{}, fmt.Errorf("%w: date %q is not %s", ErrValidation, date, DateLayout)
	}
	parsed, err := url.Parse(rawURL)
	if err != nil || !parsed.IsAbs() || parsed.Host == "" {
		return Record{}, fmt.Errorf("%w: url %q is not absolute", ErrValidation, rawURL)
	}
	if strings.TrimSpace(department) == "" {
		return Record{}, fmt.Errorf("%w: department is empty", ErrValidation)
	}
	if category != CategoryNational && category != CategoryProvincial {
		return Record{}, fmt.Errorf("%w: unknown category %q", ErrValidation, string(category))
	}

	return Record{
		Title:      title,
		Date:       date,
		URL:        parsed.String(),
		Department: department,
		Category:   category,
	}, nil
}

// Key returns the dedup key: the first KeyLength characters of the title.
func (r Record) Key() string {
	return TitleKey(r.Title)
}

// TitleKey truncates a title to KeyLength characters.
func TitleKey(title string) string {
	if utf8.RuneCountInString(title) <= KeyLength {
		return title
	}
	runes := []rune(title)
	return string(runes[:KeyLength])
}

// ValidDate reports whether s is a real calendar date in DateLayout form.
func ValidDate(s string) bool {
	if len(s) != len(DateLayout) {
		return false
	}
	_, err := time.Parse(DateLayout, s)
	return err == nil
}

// Archive is the persisted rolling collection of records.
type Archive struct {
	UpdatedAt string   `json:"update_time,omitempty"`
	Records   []Record `json:"policies"`
}

// Snapshot is the batch found by a single run, stored as-is.
type Snapshot struct {
	Total   int      `json:"total"`
	Records []Record `json:"policies"`
}

// NewSnapshot wraps a batch; a nil batch becomes an empty list.
func NewSnapshot(records []Record) Snapshot {
	if records == nil {
		records = []Record{}
	}
	return Snapshot{Total: len(records), Records: records}
}
