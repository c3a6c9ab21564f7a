package site

// Post is the content item stored in SQLite and rendered as a single page.
type Post struct {
	Slug      string            `json:"slug"`
	Title     string            `json:"title"`
	Date      string            `json:"date"`
	Excerpt   string            `json:"excerpt"`
	Content   string            `json:"content"`   // markdown
	Thumbnail string            `json:"thumbnail"` // absolute URL or site-relative path
	Link      string            `json:"link"`
	Published bool              `json:"published"`
	Meta      map[string]string `json:"meta,omitempty"` // og overrides keyed by property name
}
