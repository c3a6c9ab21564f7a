package site

import (
	"database/sql"
	"sync"
	"time"
)

// ErrNotFound is returned when a requested post does not exist.
var ErrNotFound = sql.ErrNoRows

// PostCache is an in-memory cache of published posts and site-wide Open
// Graph options with TTL.
type PostCache struct {
	mu      sync.RWMutex
	posts   []Post
	options map[string]string
	fetched time.Time
	ttl     time.Duration
	store   *Store
}

// NewPostCache creates a PostCache backed by the given Store.
func NewPostCache(s *Store, ttl time.Duration) *PostCache {
	return &PostCache{store: s, ttl: ttl}
}

func (c *PostCache) valid() bool {
	return c.options != nil && time.Since(c.fetched) < c.ttl
}

// Invalidate clears the cache so the next read triggers a fresh load.
func (c *PostCache) Invalidate() {
	c.mu.Lock()
	c.posts = nil
	c.options = nil
	c.mu.Unlock()
}

func (c *PostCache) load() error {
	if c.valid() {
		return nil
	}
	posts, err := c.store.ListPosts()
	if err != nil {
		return err
	}
	options, err := c.store.Options()
	if err != nil {
		return err
	}
	c.posts = posts
	c.options = options
	c.fetched = time.Now()
	return nil
}

// ensureLoaded returns cached posts and options after ensuring the cache is
// fresh. It tries a read lock first; only takes a write lock if a reload is needed.
func (c *PostCache) ensureLoaded() ([]Post, map[string]string, error) {
	c.mu.RLock()
	if c.valid() {
		posts, options := c.posts, c.options
		c.mu.RUnlock()
		return posts, options, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.load(); err != nil {
		return nil, nil, err
	}
	return c.posts, c.options, nil
}

// ListPosts returns published posts, newest first.
func (c *PostCache) ListPosts() ([]Post, error) {
	posts, _, err := c.ensureLoaded()
	return posts, err
}

// Options returns the site-wide Open Graph values. The map is shared and
// must not be modified.
func (c *PostCache) Options() (map[string]string, error) {
	_, options, err := c.ensureLoaded()
	return options, err
}

// GetPost returns a single published post by slug from the cache.
func (c *PostCache) GetPost(slug string) (Post, error) {
	posts, _, err := c.ensureLoaded()
	if err != nil {
		return Post{}, err
	}
	for _, p := range posts {
		if p.Slug == slug {
			return p, nil
		}
	}
	return Post{}, ErrNotFound
}
