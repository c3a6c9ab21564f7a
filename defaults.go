package opengraph

import "strings"

func (r *Resolver) registerDefaults() {
	at := WithPriority(DefaultPriority)
	r.Register(Title, DefaultTitle, at)
	r.Register(Type, DefaultType, at)
	r.Register(Image, DefaultImage, at)
	r.Register(URL, DefaultURL, at)
	r.Register(SiteName, DefaultSiteName, at)
	r.Register(Description, r.summarizer.DefaultDescription, at)
}

// DefaultTitle uses the item title on single-item pages.
func DefaultTitle(page Page, title string) string {
	if title == "" && page.Singular() {
		title = page.Item.Title
	}
	return title
}

// DefaultType is always "blog".
func DefaultType(_ Page, typ string) string {
	if typ == "" {
		typ = "blog"
	}
	return typ
}

// DefaultImage uses the item thumbnail on single-item pages of sites that
// display thumbnails.
func DefaultImage(page Page, image string) string {
	if image == "" && page.Singular() && page.Site.Thumbnails && page.Item.Thumbnail != "" {
		image = page.Item.Thumbnail
	}
	return image
}

// DefaultURL uses the item permalink on single-item pages and the site
// root, with a trailing slash, everywhere else.
func DefaultURL(page Page, url string) string {
	if url != "" {
		return url
	}
	if page.Singular() {
		return page.Item.Permalink
	}
	return TrailingSlash(page.Site.URL)
}

// DefaultSiteName uses the configured site name.
func DefaultSiteName(page Page, name string) string {
	if name == "" {
		name = page.Site.Name
	}
	return name
}

// DefaultDescription uses the site tagline, replaced on single-item pages
// by the item excerpt or, without one, a summary of the item body.
func (s Summarizer) DefaultDescription(page Page, description string) string {
	if description != "" {
		return description
	}
	if !page.Singular() {
		return page.Site.Tagline
	}
	if strings.TrimSpace(page.Item.Excerpt) != "" {
		return Sanitize(page.Item.Excerpt)
	}
	// Summarize already returns plain text; stripping it again would treat
	// decoded entities such as "a<b" as markup.
	return s.Summarize(page.Item.Content)
}

// TrailingSlash appends a slash to u unless it already ends with one.
func TrailingSlash(u string) string {
	if u == "" {
		return "/"
	}
	return strings.TrimRight(u, "/\\") + "/"
}
