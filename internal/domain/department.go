package domain

// Department is an issuing body with the listing pages crawled for it.
type Department struct {
	Name       string
	BaseURL    string
	PolicyURLs []string
	Keywords   []string
	Category   Category
	// Extractor names the scanner strategy that parses its pages.
	Extractor string
	// Render loads pages through a headless browser instead of plain HTTP.
	Render bool
}

// Page is the outcome of fetching and parsing one listing URL.
type Page struct {
	Department string
	URL        string
	Candidates []Candidate
	// Err is set when the page was skipped; it wraps ErrFetch.
	Err error
}
