package sources

import (
	"context"
	"encoding/xml"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"DailyDigest/internal/domain"
	"DailyDigest/internal/source"
)

const (
	defaultPapersPageURL = "https://huggingface.co/papers"
	defaultArxivAPIURL   = "https://export.arxiv.org/api/query"
)

var paperHrefExpr = regexp.MustCompile(`^/papers/(\d{4}\.\d{4,5})$`)

// Papers collects the papers curated on the Hugging Face daily page and
// resolves their metadata through the arXiv export API.
type Papers struct {
	client   *http.Client
	logger   *slog.Logger
	pageURL  string
	queryURL string
}

var _ source.Source = (*Papers)(nil)

// NewPapers wires an HTTP client; nil falls back to a 20s-timeout client.
func NewPapers(client *http.Client, logger *slog.Logger) *Papers {
	return &Papers{
		client:   orDefault(client),
		logger:   logger,
		pageURL:  defaultPapersPageURL,
		queryURL: defaultArxivAPIURL,
	}
}

func (p *Papers) Name() string { return "papers" }

func (p *Papers) Kind() source.Kind { return source.KindPapers }

// Fetch scrapes the curated paper ids for the previous day and maps each to
// an Item carrying the abstract as body. Curation order is preserved.
func (p *Papers) Fetch(ctx context.Context, req source.Request) ([]domain.Item, error) {
	ids, err := p.curatedIDs(ctx, req.Now)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}

	byID, err := p.resolve(ctx, ids)
	if err != nil {
		return nil, err
	}

	items := make([]domain.Item, 0, len(ids))
	for _, id := range ids {
		item, ok := byID[id]
		if !ok {
			continue
		}
		if !req.AllowsCategory(item.Category) {
			continue
		}
		items = append(items, item)
	}

	items = source.DropEmpty(items)
	return source.Truncate(items, req.MaxResults), nil
}

// curatedIDs scrapes arXiv ids from the daily page. The page for a given
// date lists papers submitted the day before.
func (p *Papers) curatedIDs(ctx context.Context, now time.Time) ([]string, error) {
	day := now.AddDate(0, 0, -1).Format("2006-01-02")
	pageURL := fmt.Sprintf("%s?date=%s", p.pageURL, day)

	doc, err := getDocument(ctx, p.client, pageURL)
	if err != nil {
		return nil, fmt.Errorf("papers page: %w", err)
	}

	var ids []string
	seen := map[string]struct{}{}
	doc.Find("article a").Each(func(i int, a *goquery.Selection) {
		href, ok := a.Attr("href")
		if !ok {
			return
		}
		match := paperHrefExpr.FindStringSubmatch(href)
		if match == nil {
			return
		}
		id := match[1]
		if _, dup := seen[id]; dup {
			return
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	})

	return ids, nil
}

type atomFeed struct {
	Entries []atomEntry `xml:"entry"`
}

type atomEntry struct {
	ID        string `xml:"id"`
	Title     string `xml:"title"`
	Summary   string `xml:"summary"`
	Published string `xml:"published"`
	Authors   []struct {
		Name string `xml:"name"`
	} `xml:"author"`
	PrimaryCategory struct {
		Term string `xml:"term,attr"`
	} `xml:"primary_category"`
}

// resolve queries the arXiv export API for the given ids in one batch.
func (p *Papers) resolve(ctx context.Context, ids []string) (map[string]domain.Item, error) {
	query := url.Values{}
	query.Set("id_list", strings.Join(ids, ","))
	query.Set("max_results", fmt.Sprintf("%d", len(ids)))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.queryURL+"?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build arxiv request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("query arxiv: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("arxiv returned %s", resp.Status)
	}

	var feed atomFeed
	if err := xml.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return nil, fmt.Errorf("decode arxiv feed: %w", err)
	}

	items := make(map[string]domain.Item, len(feed.Entries))
	for _, entry := range feed.Entries {
		id := arxivID(entry.ID)
		if id == "" {
			continue
		}

		published := time.Time{}
		if ts, err := time.Parse(time.RFC3339, entry.Published); err == nil {
			published = ts.UTC()
		}

		extra := map[string]string{}
		if names := authorNames(entry); names != "" {
			extra["authors"] = names
		}

		items[id] = domain.Item{
			SourceID:    id,
			Title:       collapseSpace(entry.Title),
			Body:        strings.TrimSpace(entry.Summary),
			URL:         "https://arxiv.org/abs/" + id,
			Category:    entry.PrimaryCategory.Term,
			PublishedAt: published,
			Extra:       extra,
		}
	}

	return items, nil
}

// arxivID extracts the bare id from an entry id URL, dropping any version
// suffix so it matches the id scraped from the daily page.
func arxivID(entryID string) string {
	idx := strings.LastIndex(entryID, "/abs/")
	if idx < 0 {
		return ""
	}
	id := entryID[idx+len("/abs/"):]
	if v := strings.LastIndex(id, "v"); v > 0 {
		id = id[:v]
	}
	return id
}

func authorNames(entry atomEntry) string {
	names := make([]string, 0, len(entry.Authors))
	for _, a := range entry.Authors {
		if a.Name != "" {
			names = append(names, a.Name)
		}
	}
	return strings.Join(names, ", ")
}
