package domain

// Candidate is a raw listing entry produced by an extractor.
type Candidate struct {
	Title string
	Href  string
	// Text is the surrounding text of the entry, searched for a date.
	Text string
}

// SkipReason explains why a candidate did not become a Record.
type SkipReason string

const (
	SkipShortTitle    SkipReason = "short_title"
	SkipNoKeyword     SkipReason = "no_keyword"
	SkipNoDate        SkipReason = "no_date"
	SkipInvalidDate   SkipReason = "invalid_date"
	SkipInvalidURL    SkipReason = "invalid_url"
	SkipInvalidRecord SkipReason = "invalid_record"
)

// Evaluation is either Ok with a Record or a Skip with its reason.
type Evaluation struct {
	Record Record
	Reason SkipReason
}

// Ok wraps an accepted record.
func Ok(r Record) Evaluation {
	return Evaluation{Record: r}
}

// Skip wraps a rejected candidate.
func Skip(reason SkipReason) Evaluation {
	return Evaluation{Reason: reason}
}

// Accepted reports whether the evaluation carries a record.
func (e Evaluation) Accepted() bool {
	return e.Reason == ""
}
