package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"DailyDigest/internal/domain"
	"DailyDigest/internal/source"
)

const (
	defaultRedditBaseURL  = "https://www.reddit.com"
	defaultRedditPosts    = 10
	defaultRedditComments = 3
	minUpvoteRatio        = 0.7
)

// Reddit pulls hot posts from the public subreddit listing endpoints. The
// subreddit allow-list arrives as Request.Categories.
type Reddit struct {
	client  *http.Client
	logger  *slog.Logger
	baseURL string
}

var _ source.Source = (*Reddit)(nil)

// NewReddit wires an HTTP client; nil falls back to a 20s-timeout client.
func NewReddit(client *http.Client, logger *slog.Logger) *Reddit {
	return &Reddit{
		client:  orDefault(client),
		logger:  logger,
		baseURL: defaultRedditBaseURL,
	}
}

func (r *Reddit) Name() string { return "reddit" }

func (r *Reddit) Kind() source.Kind { return source.KindForum }

type redditListing struct {
	Data struct {
		Children []struct {
			Data redditPost `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

type redditPost struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Selftext    string  `json:"selftext"`
	Permalink   string  `json:"permalink"`
	Author      string  `json:"author"`
	Ups         int     `json:"ups"`
	UpvoteRatio float64 `json:"upvote_ratio"`
	Stickied    bool    `json:"stickied"`
	CreatedUTC  float64 `json:"created_utc"`
	Subreddit   string  `json:"subreddit"`
	NumComments int     `json:"num_comments"`
}

type redditComment struct {
	Body string `json:"body"`
	Ups  int    `json:"ups"`
}

// Fetch collects hot posts per configured subreddit. Moderator posts,
// megathreads, stickies, and low-ratio posts are filtered out; the post text
// plus its top comments form the body. A failing subreddit is logged and
// skipped so the remaining subreddits still contribute.
func (r *Reddit) Fetch(ctx context.Context, req source.Request) ([]domain.Item, error) {
	if len(req.Categories) == 0 {
		return nil, fmt.Errorf("no subreddits configured")
	}

	perSub, err := strconv.Atoi(req.Option("posts_per_subreddit", strconv.Itoa(defaultRedditPosts)))
	if err != nil || perSub <= 0 {
		perSub = defaultRedditPosts
	}
	commentLimit, err := strconv.Atoi(req.Option("comment_limit", strconv.Itoa(defaultRedditComments)))
	if err != nil || commentLimit < 0 {
		commentLimit = defaultRedditComments
	}

	var items []domain.Item
	for _, sub := range req.Categories {
		posts, err := r.hotPosts(ctx, sub, perSub)
		if err != nil {
			r.debug("skip subreddit", "subreddit", sub, "error", err)
			continue
		}

		for _, post := range posts {
			if skipPost(post) {
				continue
			}

			published := time.Unix(int64(post.CreatedUTC), 0).UTC()
			if !req.WithinWindow(published) {
				continue
			}

			comments, err := r.topComments(ctx, sub, post.ID, commentLimit)
			if err != nil {
				r.debug("comments unavailable", "post", post.ID, "error", err)
			}

			body := composePostBody(post, comments)
			if body == "" {
				continue
			}

			items = append(items, domain.Item{
				SourceID:    post.ID,
				Title:       post.Title,
				Body:        body,
				URL:         r.baseURL + post.Permalink,
				Category:    post.Subreddit,
				PublishedAt: published,
				Extra: map[string]string{
					"upvotes":  strconv.Itoa(post.Ups),
					"comments": strconv.Itoa(post.NumComments),
				},
			})
		}
	}

	return source.Truncate(items, req.MaxResults), nil
}

func skipPost(post redditPost) bool {
	if post.Author == "" || post.Author == "AutoModerator" {
		return true
	}
	if post.Stickied {
		return true
	}
	if strings.Contains(strings.ToLower(post.Title), "megathread") {
		return true
	}
	return post.UpvoteRatio < minUpvoteRatio
}

func composePostBody(post redditPost, comments []redditComment) string {
	var b strings.Builder
	if text := strings.TrimSpace(post.Selftext); text != "" {
		b.WriteString(text)
	}
	if len(comments) > 0 {
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString("Top comments:\n")
		for _, c := range comments {
			fmt.Fprintf(&b, "- (%d upvotes) %s\n", c.Ups, strings.TrimSpace(c.Body))
		}
	}
	return strings.TrimSpace(b.String())
}

func (r *Reddit) hotPosts(ctx context.Context, subreddit string, limit int) ([]redditPost, error) {
	url := fmt.Sprintf("%s/r/%s/hot.json?limit=%d", r.baseURL, subreddit, limit)

	var listing redditListing
	if err := r.getJSON(ctx, url, &listing); err != nil {
		return nil, err
	}

	posts := make([]redditPost, 0, len(listing.Data.Children))
	for _, child := range listing.Data.Children {
		posts = append(posts, child.Data)
	}
	return posts, nil
}

// topComments reads the comment listing for a post. The endpoint returns a
// two-element array: the post listing, then the comment listing.
func (r *Reddit) topComments(ctx context.Context, subreddit, postID string, limit int) ([]redditComment, error) {
	if limit == 0 {
		return nil, nil
	}

	url := fmt.Sprintf("%s/r/%s/comments/%s.json?limit=%d&depth=1", r.baseURL, subreddit, postID, limit)

	var payload []json.RawMessage
	if err := r.getJSON(ctx, url, &payload); err != nil {
		return nil, err
	}
	if len(payload) < 2 {
		return nil, nil
	}

	var listing struct {
		Data struct {
			Children []struct {
				Data redditComment `json:"data"`
			} `json:"children"`
		} `json:"data"`
	}
	if err := json.Unmarshal(payload[1], &listing); err != nil {
		return nil, fmt.Errorf("decode comments: %w", err)
	}

	comments := make([]redditComment, 0, limit)
	for _, child := range listing.Data.Children {
		if strings.TrimSpace(child.Data.Body) == "" {
			continue
		}
		comments = append(comments, child.Data)
		if len(comments) == limit {
			break
		}
	}
	return comments, nil
}

func (r *Reddit) getJSON(ctx context.Context, url string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := r.client.Do(req)
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

func (r *Reddit) debug(msg string, args ...any) {
	if r.logger != nil {
		r.logger.Debug(msg, args...)
	}
}
