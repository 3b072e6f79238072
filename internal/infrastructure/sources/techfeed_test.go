package sources

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"DailyDigest/internal/source"
)

const articleHTML = `<html><head><title>Camera sensor deep dive</title></head><body>
<article>
<p>Modern camera sensors have moved to stacked designs, where the photodiode layer,
the processing logic, and a dedicated memory layer are bonded into a single die.
This change is what makes fast sensor readout possible on recent bodies, and it
explains why rolling shutter artifacts have nearly disappeared from flagship cameras.</p>
<p>The stacked approach also changes the thermal story. Because the readout
electronics sit directly under the photosites, heat management becomes part of the
sensor package itself, and manufacturers now quote sustained burst figures rather
than single-shot peak numbers when they talk about performance.</p>
<p>For photographers the practical takeaway is simple: the sensor readout speed,
not the mechanical shutter, is now the limiting factor for flash sync and for
silent shooting in demanding situations such as stage work or wildlife.</p>
</article>
</body></html>`

func newTechFeedServer(t *testing.T, now time.Time) *httptest.Server {
	t.Helper()

	fresh := now.Add(-2 * time.Hour).UTC().Format(time.RFC1123Z)
	stale := now.Add(-72 * time.Hour).UTC().Format(time.RFC1123Z)

	mux := http.NewServeMux()
	mux.HandleFunc("/feed.xml", func(w http.ResponseWriter, r *http.Request) {
		host := "http://" + r.Host
		w.Header().Set("Content-Type", "application/rss+xml")
		fmt.Fprintf(w, `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"><channel>
  <title>Camera Blog</title>
  <item>
    <title>Sensor deep dive</title>
    <link>%s/article1</link>
    <guid>%s/article1</guid>
    <description>Short teaser.</description>
    <pubDate>%s</pubDate>
  </item>
  <item>
    <title>Missing article</title>
    <link>%s/missing</link>
    <guid>%s/missing</guid>
    <description>&lt;p&gt;Fallback &lt;b&gt;description&lt;/b&gt; text.&lt;/p&gt;</description>
    <pubDate>%s</pubDate>
  </item>
  <item>
    <title>Old news</title>
    <link>%s/article1</link>
    <guid>%s/old</guid>
    <description>Stale.</description>
    <pubDate>%s</pubDate>
  </item>
</channel></rss>`, host, host, fresh, host, host, fresh, host, host, stale)
	})
	mux.HandleFunc("/article1", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(articleHTML))
	})
	return httptest.NewServer(mux)
}

func TestTechFeedFetch(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.August, 30, 12, 0, 0, 0, time.UTC)
	server := newTechFeedServer(t, now)
	defer server.Close()

	tf := NewTechFeed(server.Client(), nil)

	req := source.Request{
		Now:     now,
		Window:  24 * time.Hour,
		Options: map[string]string{"camera-blog": server.URL + "/feed.xml"},
	}

	items, err := tf.Fetch(context.Background(), req)
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}

	if len(items) != 2 {
		t.Fatalf("expected 2 items inside the window, got %d: %+v", len(items), items)
	}

	first := items[0]
	if first.Title != "Sensor deep dive" {
		t.Fatalf("unexpected first item: %+v", first)
	}
	if first.Category != "camera-blog" {
		t.Fatalf("feed name must become the category: %s", first.Category)
	}
	if !strings.Contains(first.Body, "sensor readout") {
		t.Fatalf("article body not extracted: %q", first.Body)
	}

	second := items[1]
	if second.Title != "Missing article" {
		t.Fatalf("unexpected second item: %+v", second)
	}
	if !strings.Contains(second.Body, "Fallback description text.") {
		t.Fatalf("description fallback not applied: %q", second.Body)
	}
}

func TestTechFeedPerFeedCap(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.August, 30, 12, 0, 0, 0, time.UTC)
	server := newTechFeedServer(t, now)
	defer server.Close()

	tf := NewTechFeed(server.Client(), nil)

	req := source.Request{
		Now:        now,
		Window:     24 * time.Hour,
		MaxResults: 1,
		Options:    map[string]string{"camera-blog": server.URL + "/feed.xml"},
	}

	items, err := tf.Fetch(context.Background(), req)
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}
	if len(items) != 1 || items[0].Title != "Sensor deep dive" {
		t.Fatalf("per-feed cap must keep feed order: %+v", items)
	}
}

func TestTechFeedNoFeedsConfigured(t *testing.T) {
	t.Parallel()

	tf := NewTechFeed(nil, nil)
	if _, err := tf.Fetch(context.Background(), source.Request{}); err == nil {
		t.Fatal("expected error without configured feeds")
	}
}
