package site

import (
	"encoding/xml"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestSitemapUsesOpenGraphURLs(t *testing.T) {
	a := newTestApp(t, SiteConfig{URL: "https://example.com"})
	savePost(t, a, Post{Slug: "hello", Title: "Hello", Date: "2024-02-01", Content: "x", Published: true})
	if err := a.Store.SetPostMeta("hello", "url", "https://example.com/canonical/hello/"); err != nil {
		t.Fatalf("SetPostMeta failed: %v", err)
	}
	a.Cache.Invalidate()

	rec := serve(a, httptest.NewRequest(http.MethodGet, "/sitemap.xml", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var set sitemapURLSet
	if err := xml.Unmarshal(rec.Body.Bytes(), &set); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(set.URLs) != 2 {
		t.Fatalf("urls = %d, want 2", len(set.URLs))
	}
	if set.URLs[0].Loc != "https://example.com/" {
		t.Errorf("front loc = %q", set.URLs[0].Loc)
	}
	if set.URLs[1].Loc != "https://example.com/canonical/hello/" || set.URLs[1].LastMod != "2024-02-01" {
		t.Errorf("post url = %+v", set.URLs[1])
	}
}

func TestFeedUsesResolvedDescriptions(t *testing.T) {
	a := newTestApp(t, SiteConfig{Name: "Example Blog", URL: "https://example.com", Description: "Notes"})
	savePost(t, a, Post{Slug: "a", Title: "A", Date: "2024-02-01", Excerpt: "Excerpt A", Content: "x", Published: true})
	savePost(t, a, Post{Slug: "b", Title: "B", Date: "2024-02-02", Content: "Body of **B**.", Published: true})

	rec := serve(a, httptest.NewRequest(http.MethodGet, "/feed.xml", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/rss+xml") {
		t.Errorf("Content-Type = %q", ct)
	}
	var feed rssXML
	if err := xml.Unmarshal(rec.Body.Bytes(), &feed); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if feed.Channel.Title != "Example Blog" || feed.Channel.Description != "Notes" || feed.Channel.Link != "https://example.com/" {
		t.Errorf("channel = %+v", feed.Channel)
	}
	if len(feed.Channel.Items) != 2 {
		t.Fatalf("items = %d, want 2", len(feed.Channel.Items))
	}
	tests := []struct {
		title, link, description string
	}{
		{"B", "https://example.com/blog/b/", "Body of B."},
		{"A", "https://example.com/blog/a/", "Excerpt A"},
	}
	for i, tt := range tests {
		it := feed.Channel.Items[i]
		if it.Title != tt.title || it.Link != tt.link || it.Description != tt.description {
			t.Errorf("item %d = %+v, want %+v", i, it, tt)
		}
	}
}

func TestRobotsPointsToSitemap(t *testing.T) {
	a := newTestApp(t, SiteConfig{URL: "https://example.com"})
	rec := serve(a, httptest.NewRequest(http.MethodGet, "/robots.txt", nil))
	if !strings.Contains(rec.Body.String(), "Sitemap: https://example.com/sitemap.xml") {
		t.Errorf("robots.txt = %q", rec.Body.String())
	}
}
