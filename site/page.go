package site

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/eringen/opengraph"
)

var markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

// RenderMarkdown converts a post body to HTML.
func RenderMarkdown(src string) (string, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(src), &buf); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return buf.String(), nil
}

// siteContext returns the site-wide part of a page. Saved options win over the
// values from the config file.
func (a *App) siteContext(options map[string]string) opengraph.Site {
	meta := make(map[string]string, len(a.Config.OpenGraph)+len(options))
	for k, v := range a.Config.OpenGraph {
		meta[k] = v
	}
	for k, v := range options {
		meta[k] = v
	}
	return opengraph.Site{
		Name:       a.Config.Name,
		Tagline:    a.Config.Description,
		URL:        a.Config.URL,
		Thumbnails: a.Config.Thumbnails,
		Meta:       meta,
	}
}

// FrontPage returns the page context of the post listing.
func (a *App) FrontPage(options map[string]string) opengraph.Page {
	return opengraph.Page{Site: a.siteContext(options)}
}

// PostPage returns the page context of a single post along with its
// rendered body.
func (a *App) PostPage(post Post, options map[string]string) (opengraph.Page, string, error) {
	body, err := RenderMarkdown(post.Content)
	if err != nil {
		return opengraph.Page{}, "", err
	}
	return opengraph.Page{
		Site: a.siteContext(options),
		Item: &opengraph.Item{
			ID:        post.Slug,
			Title:     post.Title,
			Content:   body,
			Excerpt:   post.Excerpt,
			Permalink: BuildURL(a.Config.URL, "blog", post.Slug),
			Thumbnail: AbsoluteURL(a.Config.URL, post.Thumbnail),
			Meta:      post.Meta,
		},
	}, body, nil
}

// registerProviders wires the stored overrides into the resolver: site-wide
// values replace the defaults, per-post values replace both.
func registerProviders(r *opengraph.Resolver) {
	for _, p := range opengraph.Properties() {
		name := string(p)
		r.Register(p, func(page opengraph.Page, value string) string {
			if v := page.Site.Meta[name]; v != "" {
				return v
			}
			return value
		}, opengraph.WithPriority(opengraph.Priority), opengraph.Overwrite())
		r.Register(p, func(page opengraph.Page, value string) string {
			if page.Singular() {
				if v := page.Item.Meta[name]; v != "" {
					return v
				}
			}
			return value
		}, opengraph.WithPriority(opengraph.Priority+10), opengraph.Overwrite())
	}
}
