package sources

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"DailyDigest/internal/source"
)

func newHackerNewsServer(t *testing.T, now time.Time) *httptest.Server {
	t.Helper()

	fresh := now.Add(-2 * time.Hour).Unix()
	stale := now.Add(-48 * time.Hour).Unix()

	stories := map[string]string{
		"1": fmt.Sprintf(`{"id":1,"type":"story","title":"Big launch","score":120,"url":"https://example.com/launch","time":%d,"descendants":42}`, fresh),
		"2": fmt.Sprintf(`{"id":2,"type":"story","title":"Ask HN: advice","score":80,"text":"<p>How do I <b>test</b> this?</p>","time":%d,"descendants":10}`, fresh),
		"3": fmt.Sprintf(`{"id":3,"type":"story","title":"Low score","score":5,"time":%d}`, fresh),
		"4": fmt.Sprintf(`{"id":4,"type":"story","title":"Old story","score":200,"time":%d}`, stale),
		"5": fmt.Sprintf(`{"id":5,"type":"job","title":"Hiring","score":90,"time":%d}`, fresh),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/topstories.json", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[1,2,3,4,5]`))
	})
	mux.HandleFunc("/item/", func(w http.ResponseWriter, r *http.Request) {
		id := r.URL.Path[len("/item/") : len(r.URL.Path)-len(".json")]
		body, ok := stories[id]
		if !ok {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(body))
	})
	return httptest.NewServer(mux)
}

func TestHackerNewsFetch(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.August, 30, 12, 0, 0, 0, time.UTC)
	server := newHackerNewsServer(t, now)
	defer server.Close()

	h := NewHackerNews(server.Client(), nil)
	h.baseURL = server.URL

	req := source.Request{Now: now, Window: 24 * time.Hour}

	items, err := h.Fetch(context.Background(), req)
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}

	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d: %+v", len(items), items)
	}

	if items[0].SourceID != "1" {
		t.Fatalf("rank order not preserved: %+v", items)
	}
	if items[0].Body != "Big launch" {
		t.Fatalf("link story must fall back to headline, got %q", items[0].Body)
	}
	if items[0].Extra["score"] != "120" {
		t.Fatalf("score missing from extras: %+v", items[0].Extra)
	}

	if items[1].SourceID != "2" {
		t.Fatalf("unexpected second item: %+v", items[1])
	}
	if items[1].Body != "How do I test this?" {
		t.Fatalf("self-post text not stripped: %q", items[1].Body)
	}
}

func TestHackerNewsMinScoreOption(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.August, 30, 12, 0, 0, 0, time.UTC)
	server := newHackerNewsServer(t, now)
	defer server.Close()

	h := NewHackerNews(server.Client(), nil)
	h.baseURL = server.URL

	req := source.Request{
		Now:     now,
		Window:  24 * time.Hour,
		Options: map[string]string{"min_score": "100"},
	}

	items, err := h.Fetch(context.Background(), req)
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}
	if len(items) != 1 || items[0].SourceID != "1" {
		t.Fatalf("score floor not applied: %+v", items)
	}
}
