package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"DailyDigest/internal/domain"
	"DailyDigest/internal/source"
)

const (
	defaultHackerNewsBaseURL = "https://hacker-news.firebaseio.com/v0"
	defaultHackerNewsScan    = 30
	defaultHackerNewsScore   = 20
)

// HackerNews pulls top stories from the Firebase API.
type HackerNews struct {
	client  *http.Client
	logger  *slog.Logger
	baseURL string
}

var _ source.Source = (*HackerNews)(nil)

// NewHackerNews wires an HTTP client; nil falls back to a 20s-timeout client.
func NewHackerNews(client *http.Client, logger *slog.Logger) *HackerNews {
	return &HackerNews{
		client:  orDefault(client),
		logger:  logger,
		baseURL: defaultHackerNewsBaseURL,
	}
}

func (h *HackerNews) Name() string { return "hackernews" }

func (h *HackerNews) Kind() source.Kind { return source.KindNews }

type hnStory struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Score       int    `json:"score"`
	URL         string `json:"url"`
	Text        string `json:"text"`
	Time        int64  `json:"time"`
	Type        string `json:"type"`
	Descendants int    `json:"descendants"`
}

// Fetch walks the current top-story ids in rank order, keeping stories that
// clear the score floor and fall inside the lookback window. Self-post text
// is stripped of markup; link-only stories summarize from the headline.
func (h *HackerNews) Fetch(ctx context.Context, req source.Request) ([]domain.Item, error) {
	ids, err := h.topStoryIDs(ctx)
	if err != nil {
		return nil, err
	}

	scan, err := strconv.Atoi(req.Option("scan_limit", strconv.Itoa(defaultHackerNewsScan)))
	if err != nil || scan <= 0 {
		scan = defaultHackerNewsScan
	}
	if len(ids) > scan {
		ids = ids[:scan]
	}

	minScore, err := strconv.Atoi(req.Option("min_score", strconv.Itoa(defaultHackerNewsScore)))
	if err != nil {
		minScore = defaultHackerNewsScore
	}

	var items []domain.Item
	for _, id := range ids {
		story, err := h.story(ctx, id)
		if err != nil {
			h.debug("skip story", "id", id, "error", err)
			continue
		}
		if story.Type != "story" || story.Title == "" {
			continue
		}
		if story.Score < minScore {
			continue
		}

		published := time.Unix(story.Time, 0).UTC()
		if !req.WithinWindow(published) {
			continue
		}

		body := story.Title
		if story.Text != "" {
			body = htmlText(story.Text)
		}

		items = append(items, domain.Item{
			SourceID:    strconv.FormatInt(story.ID, 10),
			Title:       story.Title,
			Body:        body,
			URL:         story.URL,
			PublishedAt: published,
			Extra: map[string]string{
				"score":    strconv.Itoa(story.Score),
				"comments": strconv.Itoa(story.Descendants),
			},
		})
	}

	items = source.DropEmpty(items)
	return source.Truncate(items, req.MaxResults), nil
}

func (h *HackerNews) topStoryIDs(ctx context.Context) ([]int64, error) {
	var ids []int64
	if err := h.getJSON(ctx, h.baseURL+"/topstories.json", &ids); err != nil {
		return nil, fmt.Errorf("top stories: %w", err)
	}
	return ids, nil
}

func (h *HackerNews) story(ctx context.Context, id int64) (hnStory, error) {
	var story hnStory
	url := fmt.Sprintf("%s/item/%d.json", h.baseURL, id)
	if err := h.getJSON(ctx, url, &story); err != nil {
		return hnStory{}, err
	}
	return story, nil
}

func (h *HackerNews) getJSON(ctx context.Context, url string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := h.client.Do(req)
	if err != nil {
		return fmt.Errorf("request %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %s", resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (h *HackerNews) debug(msg string, args ...any) {
	if h.logger != nil {
		h.logger.Debug(msg, args...)
	}
}
