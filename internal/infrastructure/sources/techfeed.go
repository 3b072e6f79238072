package sources

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	readability "github.com/go-shiori/go-readability"
	"github.com/mmcdole/gofeed"

	"DailyDigest/internal/domain"
	"DailyDigest/internal/source"
)

const defaultEntriesPerFeed = 10

// TechFeed pulls recent entries from configured RSS/Atom feeds. Feeds arrive
// as Request.Options entries mapping feed name to feed URL; the feed name
// becomes the item category.
type TechFeed struct {
	client *http.Client
	logger *slog.Logger
	parser *gofeed.Parser
}

var _ source.Source = (*TechFeed)(nil)

// NewTechFeed wires an HTTP client; nil falls back to a 20s-timeout client.
func NewTechFeed(client *http.Client, logger *slog.Logger) *TechFeed {
	client = orDefault(client)
	parser := gofeed.NewParser()
	parser.Client = client
	parser.UserAgent = userAgent
	return &TechFeed{
		client: client,
		logger: logger,
		parser: parser,
	}
}

func (t *TechFeed) Name() string { return "techfeed" }

func (t *TechFeed) Kind() source.Kind { return source.KindTech }

// Fetch walks configured feeds in name order, keeps entries inside the
// lookback window, and extracts each article's readable body. A failing feed
// is logged and skipped; a failing article falls back to the feed summary.
func (t *TechFeed) Fetch(ctx context.Context, req source.Request) ([]domain.Item, error) {
	if len(req.Options) == 0 {
		return nil, fmt.Errorf("no feeds configured")
	}

	names := make([]string, 0, len(req.Options))
	for name := range req.Options {
		names = append(names, name)
	}
	sort.Strings(names)

	perFeed := req.MaxResults
	if perFeed <= 0 {
		perFeed = defaultEntriesPerFeed
	}

	var items []domain.Item
	for _, name := range names {
		feedURL := req.Options[name]
		feed, err := t.parser.ParseURLWithContext(feedURL, ctx)
		if err != nil {
			t.debug("skip feed", "feed", name, "error", err)
			continue
		}

		count := 0
		for _, entry := range feed.Items {
			published := entryTime(entry)
			if published.IsZero() || !req.WithinWindow(published) {
				continue
			}
			if count == perFeed {
				break
			}

			body := t.articleText(ctx, entry.Link)
			if body == "" {
				body = htmlText(entry.Description)
			}

			id := entry.GUID
			if id == "" {
				id = entry.Link
			}

			items = append(items, domain.Item{
				SourceID:    id,
				Title:       entry.Title,
				Body:        body,
				URL:         entry.Link,
				Category:    name,
				PublishedAt: published.UTC(),
			})
			count++
		}
	}

	items = source.DropEmpty(items)
	source.SortByRecency(items)
	return items, nil
}

func entryTime(entry *gofeed.Item) time.Time {
	if entry.PublishedParsed != nil {
		return *entry.PublishedParsed
	}
	if entry.UpdatedParsed != nil {
		return *entry.UpdatedParsed
	}
	return time.Time{}
}

// articleText downloads the entry page and extracts the readable body text.
func (t *TechFeed) articleText(ctx context.Context, link string) string {
	if link == "" {
		return ""
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return ""
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := t.client.Do(req)
	if err != nil {
		t.debug("article fetch failed", "url", link, "error", err)
		return ""
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return ""
	}

	pageURL, _ := url.Parse(link)
	article, err := readability.FromReader(resp.Body, pageURL)
	if err != nil {
		t.debug("article extraction failed", "url", link, "error", err)
		return ""
	}

	return strings.TrimSpace(article.TextContent)
}

func (t *TechFeed) debug(msg string, args ...any) {
	if t.logger != nil {
		t.logger.Debug(msg, args...)
	}
}
