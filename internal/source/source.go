package source

import (
	"context"
	"fmt"
	"sort"
	"time"

	"DailyDigest/internal/domain"
)

// Kind labels the flavor of content a source produces; it selects the
// summarization instruction template.
type Kind string

const (
	KindPapers   Kind = "papers"
	KindNews     Kind = "news"
	KindForum    Kind = "forum"
	KindTech     Kind = "tech"
	KindTrending Kind = "trending"
)

// Request carries all parameters required to execute a fetch.
type Request struct {
	Now        time.Time
	Window     time.Duration
	Query      string
	Categories []string
	MaxResults int
	Options    map[string]string
}

// WithinWindow reports whether ts falls inside the lookback window ending at
// Now. A zero window accepts everything.
func (r Request) WithinWindow(ts time.Time) bool {
	if r.Window <= 0 {
		return true
	}
	return ts.After(r.Now.Add(-r.Window))
}

// AllowsCategory applies the allow-list; an empty list allows everything.
func (r Request) AllowsCategory(category string) bool {
	if len(r.Categories) == 0 {
		return true
	}
	for _, c := range r.Categories {
		if c == category {
			return true
		}
	}
	return false
}

// Option returns a per-source option with a fallback.
func (r Request) Option(key, fallback string) string {
	if v, ok := r.Options[key]; ok && v != "" {
		return v
	}
	return fallback
}

// Source captures a single adapter implementation (arXiv papers, Hacker News, etc.).
type Source interface {
	Name() string
	Kind() Kind
	Fetch(ctx context.Context, req Request) ([]domain.Item, error)
}

// Registry keeps a mapping from source kinds to their implementations.
type Registry struct {
	sources map[Kind]Source
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{sources: map[Kind]Source{}}
}

// Register adds or replaces a source implementation.
func (r *Registry) Register(src Source) {
	if r.sources == nil {
		r.sources = map[Kind]Source{}
	}
	r.sources[src.Kind()] = src
}

// Resolve returns a source by kind or an error if it is absent.
func (r *Registry) Resolve(kind Kind) (Source, error) {
	if src, ok := r.sources[kind]; ok {
		return src, nil
	}
	return nil, fmt.Errorf("source kind %s is not registered", kind)
}

// SortByRecency orders items by PublishedAt descending with SourceID
// ascending as the deterministic tie break.
func SortByRecency(items []domain.Item) {
	sort.SliceStable(items, func(i, j int) bool {
		if !items[i].PublishedAt.Equal(items[j].PublishedAt) {
			return items[i].PublishedAt.After(items[j].PublishedAt)
		}
		return items[i].SourceID < items[j].SourceID
	})
}

// Truncate caps the item list preserving its current order.
func Truncate(items []domain.Item, max int) []domain.Item {
	if max <= 0 || len(items) <= max {
		return items
	}
	return items[:max]
}

// DropEmpty removes items that failed to yield text to summarize.
func DropEmpty(items []domain.Item) []domain.Item {
	kept := items[:0]
	for _, item := range items {
		if item.Body != "" {
			kept = append(kept, item)
		}
	}
	return kept
}
