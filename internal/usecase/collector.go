package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"DailyDigest/internal/domain"
	"DailyDigest/internal/ports"
	"DailyDigest/internal/prompt"
	"DailyDigest/internal/source"
)

// ConfiguredSource pairs a source adapter with its per-track request
// parameters. Request.Now is filled in at run time.
type ConfiguredSource struct {
	Name    string
	Source  source.Source
	Request source.Request
}

// CollectorDeps wires the driven adapters into the collection run.
type CollectorDeps struct {
	Sources     []ConfiguredSource
	Summarizer  ports.Summarizer
	Store       ports.DigestStore
	Concurrency int
	Logger      *slog.Logger
}

// Collector runs one track: fetch every configured source, summarize each
// item, and write one digest file per source. A failing source never halts
// the run; items whose summarization exhausts its retries are dropped from
// the digest (uniform policy, no placeholder entries).
type Collector struct {
	sources     []ConfiguredSource
	summarizer  ports.Summarizer
	store       ports.DigestStore
	concurrency int
	logger      *slog.Logger
}

// NewCollector constructs the orchestration component.
func NewCollector(deps CollectorDeps) *Collector {
	concurrency := deps.Concurrency
	if concurrency <= 0 {
		concurrency = 4
	}
	return &Collector{
		sources:     deps.Sources,
		summarizer:  deps.Summarizer,
		store:       deps.Store,
		concurrency: concurrency,
		logger:      deps.Logger,
	}
}

type fetchResult struct {
	items []domain.Item
	err   error
}

// Run executes one collection run for the given track with "now" read once
// for window and date computation.
func (c *Collector) Run(ctx context.Context, track string, now time.Time) domain.RunReport {
	report := domain.RunReport{Track: track, Date: now}

	fetched := c.fetchAll(ctx, now)

	for i, cs := range c.sources {
		outcome := domain.SourceOutcome{Source: cs.Name}
		result := fetched[i]

		if result.err != nil {
			outcome.Err = fmt.Errorf("fetch: %w", result.err)
			c.warn("source fetch failed", "source", cs.Name, "error", result.err)
			report.Outcomes = append(report.Outcomes, outcome)
			continue
		}

		outcome.Fetched = len(result.items)
		c.debug("source fetched", "source", cs.Name, "items", len(result.items))

		entries := c.summarizeAll(ctx, cs, result.items)

		switch {
		case len(entries) > 0:
			if err := c.store.Write(ctx, track, now, cs.Name, entries); err != nil {
				outcome.Err = fmt.Errorf("write digest: %w", err)
				c.warn("digest write failed", "source", cs.Name, "error", err)
				break
			}
			outcome.Written = len(entries)
		case len(result.items) > 0:
			outcome.Err = fmt.Errorf("summarization failed for all %d items", len(result.items))
		}

		report.Outcomes = append(report.Outcomes, outcome)
	}

	c.debug("run complete", "track", track, "status", string(report.Status()))
	return report
}

// fetchAll runs every source fetch concurrently; adapters share no mutable
// state. Errors are captured per source, never propagated.
func (c *Collector) fetchAll(ctx context.Context, now time.Time) []fetchResult {
	results := make([]fetchResult, len(c.sources))

	var g errgroup.Group
	for i, cs := range c.sources {
		i := i
		req := cs.Request
		req.Now = now
		src := cs.Source

		g.Go(func() error {
			items, err := src.Fetch(ctx, req)
			results[i] = fetchResult{items: items, err: err}
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// summarizeAll summarizes one source's items through a bounded worker pool,
// preserving fetch order in the returned entries.
func (c *Collector) summarizeAll(ctx context.Context, cs ConfiguredSource, items []domain.Item) []domain.DigestEntry {
	if len(items) == 0 {
		return nil
	}

	instruction := prompt.ForKind(cs.Source.Kind())
	results := make([]*domain.DigestEntry, len(items))

	var g errgroup.Group
	g.SetLimit(c.concurrency)
	for i, item := range items {
		i, item := i, item
		g.Go(func() error {
			summary, err := c.summarizer.Summarize(ctx, composeText(item), instruction)
			if err != nil {
				c.warn("summarization failed", "source", cs.Name, "item", item.SourceID, "error", err)
				return nil
			}
			results[i] = &domain.DigestEntry{
				Item:         item,
				Summary:      summary,
				SummarizedAt: time.Now().UTC(),
			}
			return nil
		})
	}
	_ = g.Wait()

	entries := make([]domain.DigestEntry, 0, len(items))
	for _, entry := range results {
		if entry != nil {
			entries = append(entries, *entry)
		}
	}
	return entries
}

// composeText places the title ahead of the body so head truncation in the
// summarization client always preserves it.
func composeText(item domain.Item) string {
	return item.Title + "\n\n" + item.Body
}

func (c *Collector) debug(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Debug(msg, args...)
	}
}

func (c *Collector) warn(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Warn(msg, args...)
	}
}
