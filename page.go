package opengraph

// Site holds site-wide settings a provider may read. It is treated as
// read-only while a page resolves.
type Site struct {
	Name    string // site name
	Tagline string // site description
	URL     string // site root URL

	// Thumbnails reports whether the active theme displays item thumbnails.
	// The default image provider only runs when it is set.
	Thumbnails bool

	// Meta holds site-wide property values keyed by property name.
	Meta map[string]string
}

// Item is the single content item of a page, such as a post.
type Item struct {
	ID        string
	Title     string
	Content   string // body HTML
	Excerpt   string // hand-written excerpt, may be empty
	Permalink string
	Thumbnail string // featured image URL, empty when the item has none

	// Meta holds per-item property overrides keyed by property name.
	Meta map[string]string
}

// Page is the context of a single page render.
type Page struct {
	Site Site
	Item *Item // nil unless the page renders exactly one item
}

// Singular reports whether the page renders a single content item.
func (p Page) Singular() bool {
	return p.Item != nil
}
