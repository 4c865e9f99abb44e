package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"PolicyCrawler/internal/domain"
	"PolicyCrawler/internal/ports"
)

// ArchiveStore persists the rolling policy archive as a JSON file.
type ArchiveStore struct {
	path string
	now  func() time.Time
}

var _ ports.ArchiveRepository = (*ArchiveStore)(nil)

// NewArchiveStore binds the store to a file path; now defaults to time.Now.
func NewArchiveStore(path string, now func() time.Time) *ArchiveStore {
	if now == nil {
		now = time.Now
	}
	return &ArchiveStore{path: path, now: now}
}

// Load reads the archive. A missing file yields an empty archive; a file
// that cannot be decoded, or holds a record whose date is not DateLayout,
// yields an error wrapping domain.ErrStorage.
func (s *ArchiveStore) Load(ctx context.Context) (domain.Archive, error) {
	if err := ctx.Err(); err != nil {
		return domain.Archive{}, err
	}

	raw, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return domain.Archive{Records: []domain.Record{}}, nil
	}
	if err != nil {
		return domain.Archive{}, fmt.Errorf("%w: read %s: %v", domain.ErrStorage, s.path, err)
	}

	var archive domain.Archive
	if err := decodeStrict(raw, &archive); err != nil {
		return domain.Archive{}, fmt.Errorf("%w: decode %s: %v", domain.ErrStorage, s.path, err)
	}
	if archive.Records == nil {
		archive.Records = []domain.Record{}
	}
	for i, rec := range archive.Records {
		if !domain.ValidDate(rec.Date) {
			return domain.Archive{}, fmt.Errorf("%w: %s: policies[%d] has date %q", domain.ErrStorage, s.path, i, rec.Date)
		}
	}

	return archive, nil
}

// Save stamps the archive with today's date and atomically replaces the file.
func (s *ArchiveStore) Save(ctx context.Context, archive domain.Archive) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	archive.UpdatedAt = s.now().Format(domain.DateLayout)
	if archive.Records == nil {
		archive.Records = []domain.Record{}
	}

	return writeJSON(s.path, archive)
}

// SnapshotWriter stores the batch found by the current run.
type SnapshotWriter struct {
	path string
}

var _ ports.SnapshotWriter = (*SnapshotWriter)(nil)

// NewSnapshotWriter binds the writer to a file path.
func NewSnapshotWriter(path string) *SnapshotWriter {
	return &SnapshotWriter{path: path}
}

// WriteSnapshot overwrites the snapshot file with the given records.
func (w *SnapshotWriter) WriteSnapshot(ctx context.Context, records []domain.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return writeJSON(w.path, domain.NewSnapshot(records))
}

// decodeStrict rejects empty input and trailing data after the document.
func decodeStrict(raw []byte, v any) error {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return errors.New("empty document")
	}
	if bytes.Equal(trimmed, []byte("null")) {
		return errors.New("null document")
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	if err := dec.Decode(v); err != nil {
		return err
	}
	if dec.More() {
		return errors.New("unexpected data after document")
	}
	return nil
}

// writeJSON encodes v and replaces path through a temp file in the same directory.
func writeJSON(path string, v any) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("%w: encode %s: %v", domain.ErrWrite, path, err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: create dir %s: %v", domain.ErrWrite, dir, err)
	}

	tmpPath := path + ".tmp"
	if err := writeSynced(tmpPath, buf.Bytes()); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("%w: write %s: %v", domain.ErrWrite, tmpPath, err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("%w: rename %s: %v", domain.ErrWrite, path, err)
	}

	return nil
}

func writeSynced(path string, data []byte) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
