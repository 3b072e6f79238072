package storage

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"DailyDigest/internal/domain"
	"DailyDigest/internal/ports"
)

const dateLayout = "2006-01-02"

// FileStore persists digests as newline-delimited JSON files laid out as
// <root>/<track>/<date>/<source>.ndjson. One file per (track, date, source);
// a write replaces the whole file.
type FileStore struct {
	root string
}

var _ ports.DigestStore = (*FileStore)(nil)

// NewFileStore wires the output root directory.
func NewFileStore(root string) *FileStore {
	return &FileStore{root: root}
}

// record is the on-disk shape consumed by the viewer.
type record struct {
	SourceID     string            `json:"source_id"`
	Title        string            `json:"title"`
	URL          string            `json:"url,omitempty"`
	PublishedAt  time.Time         `json:"published_at"`
	Category     string            `json:"category,omitempty"`
	Summary      string            `json:"summary"`
	SummarizedAt time.Time         `json:"summarized_at"`
	Extra        map[string]string `json:"extra,omitempty"`
}

// Write replaces the digest file for (track, date, source) atomically:
// entries are encoded into a temp file in the target directory and renamed
// over the final path, so a failed write never leaves a partial file.
func (s *FileStore) Write(ctx context.Context, track string, date time.Time, source string, entries []domain.DigestEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	dir := filepath.Join(s.root, track, date.Format(dateLayout))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create digest dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, source+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if err := encodeEntries(tmp, entries); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("encode entries: %w", err)
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}

	final := filepath.Join(dir, source+".ndjson")
	if err := os.Rename(tmpName, final); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace digest file: %w", err)
	}

	return nil
}

// Read returns the entries of a digest file in stored order. A missing file
// means "no items that day" and yields an empty result, not an error.
func (s *FileStore) Read(ctx context.Context, track string, date time.Time, source string) ([]domain.DigestEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := filepath.Join(s.root, track, date.Format(dateLayout), source+".ndjson")
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open digest file: %w", err)
	}
	defer f.Close()

	var entries []domain.DigestEntry
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var rec record
		if err := json.Unmarshal(line, &rec); err != nil {
			return nil, fmt.Errorf("decode digest record: %w", err)
		}
		entries = append(entries, rec.toEntry())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read digest file: %w", err)
	}

	return entries, nil
}

func encodeEntries(f *os.File, entries []domain.DigestEntry) error {
	w := bufio.NewWriter(f)
	enc := json.NewEncoder(w)
	for _, entry := range entries {
		if err := enc.Encode(toRecord(entry)); err != nil {
			return err
		}
	}
	return w.Flush()
}

func toRecord(entry domain.DigestEntry) record {
	return record{
		SourceID:     entry.Item.SourceID,
		Title:        entry.Item.Title,
		URL:          entry.Item.URL,
		PublishedAt:  entry.Item.PublishedAt,
		Category:     entry.Item.Category,
		Summary:      entry.Summary,
		SummarizedAt: entry.SummarizedAt,
		Extra:        entry.Item.Extra,
	}
}

func (r record) toEntry() domain.DigestEntry {
	return domain.DigestEntry{
		Item: domain.Item{
			SourceID:    r.SourceID,
			Title:       r.Title,
			URL:         r.URL,
			PublishedAt: r.PublishedAt,
			Category:    r.Category,
			Extra:       r.Extra,
		},
		Summary:      r.Summary,
		SummarizedAt: r.SummarizedAt,
	}
}
