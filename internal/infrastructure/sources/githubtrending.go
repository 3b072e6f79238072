package sources

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"DailyDigest/internal/domain"
	"DailyDigest/internal/source"
)

const defaultTrendingBaseURL = "https://github.com/trending"

// GithubTrending scrapes the daily trending page per configured language.
// Trending entries carry no timestamps, so the lookback window does not
// apply; the page itself is scoped to the day.
type GithubTrending struct {
	client  *http.Client
	logger  *slog.Logger
	baseURL string
}

var _ source.Source = (*GithubTrending)(nil)

// NewGithubTrending wires an HTTP client; nil falls back to a 20s-timeout client.
func NewGithubTrending(client *http.Client, logger *slog.Logger) *GithubTrending {
	return &GithubTrending{
		client:  orDefault(client),
		logger:  logger,
		baseURL: defaultTrendingBaseURL,
	}
}

func (g *GithubTrending) Name() string { return "github-trending" }

func (g *GithubTrending) Kind() source.Kind { return source.KindTrending }

// Fetch scrapes one page per language in Request.Categories (an empty list
// scrapes the all-languages page). Repositories without a description have
// nothing to summarize and are dropped.
func (g *GithubTrending) Fetch(ctx context.Context, req source.Request) ([]domain.Item, error) {
	languages := req.Categories
	if len(languages) == 0 {
		languages = []string{""}
	}

	var items []domain.Item
	seen := map[string]struct{}{}
	for _, language := range languages {
		pageURL := g.baseURL + "?since=daily"
		if language != "" {
			pageURL = g.baseURL + "/" + language + "?since=daily"
		}

		doc, err := getDocument(ctx, g.client, pageURL)
		if err != nil {
			g.debug("skip language", "language", language, "error", err)
			continue
		}

		for _, item := range g.extractRepos(doc, language) {
			if _, dup := seen[item.SourceID]; dup {
				continue
			}
			seen[item.SourceID] = struct{}{}
			items = append(items, item)
		}
	}

	items = source.DropEmpty(items)
	return source.Truncate(items, req.MaxResults), nil
}

func (g *GithubTrending) extractRepos(doc *goquery.Document, language string) []domain.Item {
	var items []domain.Item

	doc.Find("article.Box-row").Each(func(i int, row *goquery.Selection) {
		href, ok := row.Find("h2 a").First().Attr("href")
		if !ok {
			return
		}
		name := strings.Trim(strings.TrimSpace(href), "/")
		if name == "" {
			return
		}

		description := collapseSpace(row.Find("p").First().Text())

		stars := 0
		starText := row.Find(`a[href$="/stargazers"]`).First().Text()
		starText = strings.ReplaceAll(strings.TrimSpace(starText), ",", "")
		if n, err := strconv.Atoi(starText); err == nil {
			stars = n
		}

		extra := map[string]string{"stars": strconv.Itoa(stars)}
		if language != "" {
			extra["language"] = language
		}

		items = append(items, domain.Item{
			SourceID: name,
			Title:    name,
			Body:     description,
			URL:      "https://github.com/" + name,
			Category: language,
			Extra:    extra,
		})
	})

	return items
}

func (g *GithubTrending) debug(msg string, args ...any) {
	if g.logger != nil {
		g.logger.Debug(msg, args...)
	}
}
