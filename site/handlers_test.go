package site

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"

	"github.com/eringen/opengraph"
)

func newTestApp(t *testing.T, cfg SiteConfig, opts ...Option) *App {
	t.Helper()
	cfg.DatabasePath = filepath.Join(t.TempDir(), "site.db")
	cfg.AdminPassword = "correct horse"
	cfg.SessionSecret = "0123456789abcdef0123456789abcdef"
	a := New(cfg, opts...)
	if err := a.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	t.Cleanup(func() { a.Close() })
	return a
}

func savePost(t *testing.T, a *App, p Post) {
	t.Helper()
	if err := a.Store.SavePost(p); err != nil {
		t.Fatalf("SavePost(%s) failed: %v", p.Slug, err)
	}
	a.Cache.Invalidate()
}

func serve(a *App, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	a.Echo.ServeHTTP(rec, req)
	return rec
}

func get(t *testing.T, a *App, target string) (*httptest.ResponseRecorder, *goquery.Document) {
	t.Helper()
	rec := serve(a, httptest.NewRequest(http.MethodGet, target, nil))
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(rec.Body.Bytes()))
	if err != nil {
		t.Fatalf("parse html: %v", err)
	}
	return rec, doc
}

func ogContent(doc *goquery.Document, key string) (string, bool) {
	return doc.Find(`head meta[property="` + key + `"]`).Attr("content")
}

func TestHomePageMetadata(t *testing.T) {
	a := newTestApp(t, SiteConfig{Name: "Example Blog", URL: "https://example.com", Description: "Notes"})

	rec, doc := get(t, a, "/")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if prefix, _ := doc.Find("html").Attr("prefix"); prefix != "og: "+opengraph.NamespaceURI {
		t.Errorf("html prefix = %q", prefix)
	}
	if strings.Contains(rec.Body.String(), "xmlns:og") {
		t.Error("namespace declared inline although the root element carries it")
	}

	tests := []struct {
		key  string
		want string
	}{
		{"og:site_name", "Example Blog"},
		{"og:url", "https://example.com/"},
		{"og:type", "blog"},
		{"og:description", "Notes"},
	}
	for _, tt := range tests {
		if got, _ := ogContent(doc, tt.key); got != tt.want {
			t.Errorf("%s = %q, want %q", tt.key, got, tt.want)
		}
	}
	if _, ok := ogContent(doc, "og:title"); ok {
		t.Error("og:title should be omitted on the front page")
	}
}

func TestPostPageMetadata(t *testing.T) {
	a := newTestApp(t, SiteConfig{Name: "Example Blog", URL: "https://example.com", Thumbnails: true})
	savePost(t, a, Post{
		Slug:      "hello-world",
		Title:     "Hello World",
		Date:      "2024-03-01",
		Excerpt:   "A <em>short</em> hello.",
		Content:   "# Hi\n\nBody text.",
		Thumbnail: "/uploads/hello.jpg",
		Published: true,
	})

	rec, doc := get(t, a, "/blog/hello-world/")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	tests := []struct {
		key  string
		want string
	}{
		{"og:title", "Hello World"},
		{"og:type", "blog"},
		{"og:image", "https://example.com/uploads/hello.jpg"},
		{"og:url", "https://example.com/blog/hello-world/"},
		{"og:description", "A short hello."},
	}
	for _, tt := range tests {
		if got, _ := ogContent(doc, tt.key); got != tt.want {
			t.Errorf("%s = %q, want %q", tt.key, got, tt.want)
		}
	}
	if doc.Find("article h1").First().Text() != "Hello World" {
		t.Errorf("article heading = %q", doc.Find("article h1").First().Text())
	}
}

func TestPostPageSummaryFromBody(t *testing.T) {
	a := newTestApp(t, SiteConfig{URL: "https://example.com", SummaryWords: 5, Shortcodes: []string{"gallery"}})
	savePost(t, a, Post{
		Slug:      "long",
		Title:     "Long",
		Date:      "2024-03-01",
		Content:   "First **bold** words [gallery ids=\"1\"] and then many more words follow here.",
		Published: true,
	})

	_, doc := get(t, a, "/blog/long/")
	want := "First bold words and then" + opengraph.DefaultSummaryMore
	if got, _ := ogContent(doc, "og:description"); got != want {
		t.Errorf("og:description = %q, want %q", got, want)
	}
}

func TestPostPageSummaryKeepsLiteralAngleBrackets(t *testing.T) {
	a := newTestApp(t, SiteConfig{URL: "https://example.com"})
	savePost(t, a, Post{
		Slug:      "compare",
		Title:     "Compare",
		Date:      "2024-03-02",
		Content:   "Check if a < b and use the `<b>` tag for bold.",
		Published: true,
	})

	_, doc := get(t, a, "/blog/compare/")
	want := "Check if a < b and use the <b> tag for bold."
	if got, _ := ogContent(doc, "og:description"); got != want {
		t.Errorf("og:description = %q, want %q", got, want)
	}
}

func TestPostNotFound(t *testing.T) {
	a := newTestApp(t, SiteConfig{})
	savePost(t, a, Post{Slug: "draft", Title: "Draft", Date: "2024-01-01", Content: "x"})

	for _, target := range []string{"/blog/missing/", "/blog/draft/"} {
		rec, doc := get(t, a, target)
		if rec.Code != http.StatusNotFound {
			t.Errorf("GET %s status = %d, want 404", target, rec.Code)
		}
		if doc.Find("h1").Text() != "Not found" {
			t.Errorf("GET %s heading = %q", target, doc.Find("h1").Text())
		}
	}
}

func TestStoredOverrides(t *testing.T) {
	a := newTestApp(t, SiteConfig{
		Name:      "Example Blog",
		URL:       "https://example.com",
		OpenGraph: map[string]string{"locality": "Berlin", "email": "config@example.com"},
	})
	savePost(t, a, Post{Slug: "p", Title: "Original", Date: "2024-01-01", Content: "x", Published: true})
	if err := a.Store.SetOption("email", "saved@example.com"); err != nil {
		t.Fatalf("SetOption failed: %v", err)
	}
	if err := a.Store.SetPostMeta("p", "title", "Better Title"); err != nil {
		t.Fatalf("SetPostMeta failed: %v", err)
	}
	a.Cache.Invalidate()

	_, doc := get(t, a, "/blog/p/")
	tests := []struct {
		key  string
		want string
	}{
		{"og:title", "Better Title"},
		{"og:email", "saved@example.com"},
		{"og:locality", "Berlin"},
	}
	for _, tt := range tests {
		if got, _ := ogContent(doc, tt.key); got != tt.want {
			t.Errorf("%s = %q, want %q", tt.key, got, tt.want)
		}
	}
}

func TestProviderAndFilterOptions(t *testing.T) {
	a := newTestApp(t, SiteConfig{URL: "https://example.com"},
		WithProvider(opengraph.Type, func(opengraph.Page, string) string { return "website" },
			opengraph.WithPriority(50), opengraph.Overwrite()),
		WithMetadataFilter(func(_ opengraph.Page, md *opengraph.Metadata) {
			md.Set("og:locale", "en_US")
		}),
	)

	_, doc := get(t, a, "/")
	if got, _ := ogContent(doc, "og:type"); got != "website" {
		t.Errorf("og:type = %q, want website", got)
	}
	if got, _ := ogContent(doc, "og:locale"); got != "en_US" {
		t.Errorf("og:locale = %q, want en_US", got)
	}
}

func TestMetadataAPI(t *testing.T) {
	a := newTestApp(t, SiteConfig{Name: "Example Blog", URL: "https://example.com"})
	savePost(t, a, Post{Slug: "hello", Title: "Hello", Date: "2024-01-01", Content: "x", Published: true})

	rec := serve(a, httptest.NewRequest(http.MethodGet, "/api/opengraph?path=/blog/hello/", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var resp metadataResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Metadata) != len(opengraph.Properties()) {
		t.Errorf("metadata entries = %d, want %d", len(resp.Metadata), len(opengraph.Properties()))
	}
	if resp.Metadata[0].Key != "og:title" || resp.Metadata[0].Value != "Hello" {
		t.Errorf("first entry = %+v", resp.Metadata[0])
	}
	if !strings.Contains(resp.HTML, `<meta property="og:title" content="Hello" />`) {
		t.Errorf("html = %q", resp.HTML)
	}

	rec = serve(a, httptest.NewRequest(http.MethodGet, "/api/opengraph?path=/about/", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown path status = %d, want 404", rec.Code)
	}
}

func cookieHeader(cookies ...*http.Cookie) string {
	parts := make([]string, 0, len(cookies))
	for _, c := range cookies {
		parts = append(parts, c.Name+"="+c.Value)
	}
	return strings.Join(parts, "; ")
}

func findCookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func postForm(a *App, target string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Cookie", cookieHeader(cookies...))
	return serve(a, req)
}

func TestAdminSavesSiteOptions(t *testing.T) {
	a := newTestApp(t, SiteConfig{Name: "Example Blog", URL: "https://example.com"})

	rec := serve(a, httptest.NewRequest(http.MethodGet, "/admin/", nil))
	csrf := findCookie(rec, "_csrf")
	if csrf == nil {
		t.Fatal("no csrf cookie on admin page")
	}

	rec = postForm(a, "/admin/login/", url.Values{"password": {"wrong"}, "_csrf": {csrf.Value}}, csrf)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "Wrong password") {
		t.Fatalf("wrong password: status %d", rec.Code)
	}

	rec = postForm(a, "/admin/login/", url.Values{"password": {"correct horse"}, "_csrf": {csrf.Value}}, csrf)
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("login status = %d, want 303", rec.Code)
	}
	sess := findCookie(rec, sessionName)
	if sess == nil {
		t.Fatal("no session cookie after login")
	}

	rec = postForm(a, "/admin/options/", url.Values{
		"_csrf":        {csrf.Value},
		"og:email":     {"hi@example.com"},
		"phone_number": {"+49 30 1234"},
		"unrelated":    {"ignored"},
	}, csrf, sess)
	if rec.Code != http.StatusOK {
		t.Fatalf("options status = %d, body %s", rec.Code, rec.Body.String())
	}
	opts, err := a.Store.Options()
	if err != nil {
		t.Fatalf("Options failed: %v", err)
	}
	if len(opts) != 2 || opts["email"] != "hi@example.com" {
		t.Errorf("stored options = %v", opts)
	}

	_, doc := get(t, a, "/")
	if got, _ := ogContent(doc, "og:phone_number"); got != "+49 30 1234" {
		t.Errorf("og:phone_number = %q", got)
	}
}

func TestAdminRequiresLogin(t *testing.T) {
	a := newTestApp(t, SiteConfig{})

	rec := serve(a, httptest.NewRequest(http.MethodGet, "/admin/", nil))
	csrf := findCookie(rec, "_csrf")
	if csrf == nil {
		t.Fatal("no csrf cookie on admin page")
	}
	rec = postForm(a, "/admin/options/", url.Values{"_csrf": {csrf.Value}, "email": {"x@example.com"}}, csrf)
	if rec.Code != http.StatusSeeOther {
		t.Errorf("status = %d, want 303", rec.Code)
	}
	opts, err := a.Store.Options()
	if err != nil {
		t.Fatalf("Options failed: %v", err)
	}
	if len(opts) != 0 {
		t.Errorf("options saved without login: %v", opts)
	}
}

func TestAdminRejectsMissingCSRF(t *testing.T) {
	a := newTestApp(t, SiteConfig{})

	rec := postForm(a, "/admin/login/", url.Values{"password": {"correct horse"}})
	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", rec.Code)
	}
}

func loginAdmin(t *testing.T, a *App) (csrf, sess *http.Cookie) {
	t.Helper()
	rec := serve(a, httptest.NewRequest(http.MethodGet, "/admin/", nil))
	csrf = findCookie(rec, "_csrf")
	if csrf == nil {
		t.Fatal("no csrf cookie on admin page")
	}
	rec = postForm(a, "/admin/login/", url.Values{"password": {"correct horse"}, "_csrf": {csrf.Value}}, csrf)
	sess = findCookie(rec, sessionName)
	if sess == nil {
		t.Fatalf("no session cookie after login, status %d", rec.Code)
	}
	return csrf, sess
}

func TestAdminDashboardPostForms(t *testing.T) {
	a := newTestApp(t, SiteConfig{Name: "Example Blog", URL: "https://example.com"})
	csrf, sess := loginAdmin(t, a)

	rec := postForm(a, "/admin/save/", url.Values{
		"_csrf":     {csrf.Value},
		"title":     {"Hello World"},
		"date":      {"2024-05-01"},
		"content":   {"Body text."},
		"published": {"1"},
	}, csrf, sess)
	if rec.Code != http.StatusOK {
		t.Fatalf("save status = %d, body %s", rec.Code, rec.Body.String())
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(rec.Body.Bytes()))
	if err != nil {
		t.Fatalf("parse html: %v", err)
	}
	for _, sel := range []string{
		`form.post-save[action="/admin/save/"]`,
		`form.post-meta[action="/admin/post/hello-world/meta/"]`,
		`form.post-delete[action="/admin/post/hello-world/delete/"]`,
	} {
		if doc.Find(sel).Length() != 1 {
			t.Errorf("dashboard has no %s", sel)
		}
	}
	if doc.Find(`form.post-meta input[name="title"]`).Length() != 1 {
		t.Error("post metadata form has no title input")
	}

	rec = postForm(a, "/admin/post/hello-world/meta/", url.Values{
		"_csrf": {csrf.Value},
		"title": {"Custom title"},
	}, csrf, sess)
	if rec.Code != http.StatusOK {
		t.Fatalf("meta status = %d", rec.Code)
	}
	_, page := get(t, a, "/blog/hello-world/")
	if got, _ := ogContent(page, "og:title"); got != "Custom title" {
		t.Errorf("og:title = %q, want %q", got, "Custom title")
	}

	rec = postForm(a, "/admin/post/hello-world/delete/", url.Values{"_csrf": {csrf.Value}}, csrf, sess)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete status = %d", rec.Code)
	}
	if _, err := a.Store.GetPostAny("hello-world"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetPostAny after delete err = %v, want ErrNotFound", err)
	}
}
