package site

import (
	"encoding/xml"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/eringen/opengraph"
)

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

type rssXML struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title       string    `xml:"title"`
	Link        string    `xml:"link"`
	Description string    `xml:"description"`
	Items       []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	Description string `xml:"description"`
	PubDate     string `xml:"pubDate,omitempty"`
	GUID        string `xml:"guid"`
}

// handleSitemap lists the front page and every published post under the
// same URLs the pages advertise as og:url.
func (a *App) handleSitemap(c echo.Context) error {
	posts, err := a.Cache.ListPosts()
	if err != nil {
		return err
	}
	options, err := a.Cache.Options()
	if err != nil {
		return err
	}
	urls := []sitemapURL{{Loc: a.Resolver.Value(opengraph.URL, a.FrontPage(options))}}
	for _, p := range posts {
		page, _, err := a.PostPage(p, options)
		if err != nil {
			return err
		}
		urls = append(urls, sitemapURL{
			Loc:     a.Resolver.Value(opengraph.URL, page),
			LastMod: p.Date,
		})
	}
	return writeXML(c, "application/xml; charset=utf-8", sitemapURLSet{
		XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs:  urls,
	})
}

// handleFeed renders an RSS feed whose titles, links and descriptions are
// the resolved Open Graph values of each page.
func (a *App) handleFeed(c echo.Context) error {
	posts, err := a.Cache.ListPosts()
	if err != nil {
		return err
	}
	options, err := a.Cache.Options()
	if err != nil {
		return err
	}
	front := a.Resolver.Resolve(a.FrontPage(options))
	items := make([]rssItem, 0, len(posts))
	for _, p := range posts {
		page, _, err := a.PostPage(p, options)
		if err != nil {
			return err
		}
		md := a.Resolver.Resolve(page)
		pubDate := ""
		if t, err := time.Parse("2006-01-02", p.Date); err == nil {
			pubDate = t.Format(time.RFC1123Z)
		}
		link := md.Value(opengraph.URL.Key())
		items = append(items, rssItem{
			Title:       md.Value(opengraph.Title.Key()),
			Link:        link,
			Description: md.Value(opengraph.Description.Key()),
			PubDate:     pubDate,
			GUID:        link,
		})
	}
	return writeXML(c, "application/rss+xml; charset=utf-8", rssXML{
		Version: "2.0",
		Channel: rssChannel{
			Title:       front.Value(opengraph.SiteName.Key()),
			Link:        front.Value(opengraph.URL.Key()),
			Description: front.Value(opengraph.Description.Key()),
			Items:       items,
		},
	})
}

func writeXML(c echo.Context, contentType string, v any) error {
	c.Response().Header().Set(echo.HeaderContentType, contentType)
	c.Response().WriteHeader(http.StatusOK)
	if _, err := c.Response().Write([]byte(xml.Header)); err != nil {
		return err
	}
	return xml.NewEncoder(c.Response()).Encode(v)
}
