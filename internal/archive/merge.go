// Package archive combines archived policy records with a fresh batch.
package archive

import (
	"time"

	"PolicyCrawler/internal/domain"
)

// DefaultRetentionDays is the trailing window kept in the archive.
const DefaultRetentionDays = 90

// Merge concatenates existing and incoming, keeps one record per dedup key
// and drops records dated before now minus retentionDays.
//
// For a repeated key the last record in existing++incoming wins, whatever
// its date; it takes the position where the key first appeared. The inputs
// are not modified.
func Merge(existing, incoming []domain.Record, retentionDays int, now time.Time) []domain.Record {
	cutoff := Cutoff(now, retentionDays)

	order := make([]string, 0, len(existing)+len(incoming))
	latest := make(map[string]domain.Record, len(existing)+len(incoming))

	for _, batch := range [][]domain.Record{existing, incoming} {
		for _, rec := range batch {
			key := rec.Key()
			if _, ok := latest[key]; !ok {
				order = append(order, key)
			}
			latest[key] = rec
		}
	}

	merged := make([]domain.Record, 0, len(order))
	for _, key := range order {
		rec := latest[key]
		if rec.Date < cutoff {
			continue
		}
		merged = append(merged, rec)
	}

	return merged
}

// Cutoff returns the oldest date kept for the given window, as a DateLayout string.
func Cutoff(now time.Time, retentionDays int) string {
	if retentionDays <= 0 {
		retentionDays = DefaultRetentionDays
	}
	return now.AddDate(0, 0, -retentionDays).Format(domain.DateLayout)
}

// NewSince returns the records of merged whose key is absent from existing.
func NewSince(existing, merged []domain.Record) []domain.Record {
	known := make(map[string]struct{}, len(existing))
	for _, rec := range existing {
		known[rec.Key()] = struct{}{}
	}

	var fresh []domain.Record
	for _, rec := range merged {
		if _, ok := known[rec.Key()]; ok {
			continue
		}
		fresh = append(fresh, rec)
	}
	return fresh
}
