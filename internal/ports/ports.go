package ports

import (
	"context"
	"time"

	"DailyDigest/internal/domain"
)

// Summarizer turns raw content into a digest following an instruction template.
type Summarizer interface {
	Summarize(ctx context.Context, text, instruction string) (string, error)
}

// DigestStore persists digest files partitioned by (track, date, source).
type DigestStore interface {
	Write(ctx context.Context, track string, date time.Time, source string, entries []domain.DigestEntry) error
	Read(ctx context.Context, track string, date time.Time, source string) ([]domain.DigestEntry, error)
}
