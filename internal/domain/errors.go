package domain

import "errors"

// Error classes used across the pipeline. Callers match them with errors.Is.
var (
	// ErrFetch marks a listing page that could not be retrieved. Non-fatal.
	ErrFetch = errors.New("fetch failed")
	// ErrValidation marks a candidate or record that violates the data model.
	ErrValidation = errors.New("validation failed")
	// ErrStorage marks an archive file that exists but cannot be decoded.
	ErrStorage = errors.New("storage corrupted")
	// ErrWrite marks a failed write of the snapshot or archive.
	ErrWrite = errors.New("write failed")
)
