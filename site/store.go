package site

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// Store wraps a SQLite database holding posts, per-post Open Graph
// overrides and site-wide Open Graph options.
type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) the SQLite database at path, ensures the data
// directory exists, and runs schema migrations.
func NewStore(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// WAL lets readers run alongside the admin writer; the busy timeout
	// makes writers wait instead of failing with SQLITE_BUSY.
	if _, err := db.Exec(`
		PRAGMA journal_mode=WAL;
		PRAGMA busy_timeout=5000;
		PRAGMA synchronous=NORMAL;
	`); err != nil {
		db.Close()
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS posts (
    slug TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    date TEXT NOT NULL,
    excerpt TEXT NOT NULL DEFAULT '',
    content TEXT NOT NULL,
    thumbnail TEXT NOT NULL DEFAULT '',
    published INTEGER NOT NULL DEFAULT 1
);
CREATE TABLE IF NOT EXISTS post_meta (
    slug TEXT NOT NULL,
    property TEXT NOT NULL,
    value TEXT NOT NULL,
    PRIMARY KEY (slug, property)
);
CREATE TABLE IF NOT EXISTS options (
    name TEXT PRIMARY KEY,
    value TEXT NOT NULL
);
`)
	return err
}

const postColumns = `slug, title, date, excerpt, content, thumbnail, published`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPost(row rowScanner) (Post, error) {
	var p Post
	var published int
	if err := row.Scan(&p.Slug, &p.Title, &p.Date, &p.Excerpt, &p.Content, &p.Thumbnail, &published); err != nil {
		return Post{}, err
	}
	p.Link = PostPath(p.Slug)
	p.Published = published == 1
	return p, nil
}

func (s *Store) queryPosts(query string, args ...any) ([]Post, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	meta, err := s.allPostMeta()
	if err != nil {
		return nil, err
	}
	for i := range posts {
		posts[i].Meta = meta[posts[i].Slug]
	}
	return posts, nil
}

// ListPosts returns all published posts ordered by date descending.
func (s *Store) ListPosts() ([]Post, error) {
	return s.queryPosts(`SELECT ` + postColumns + ` FROM posts WHERE published = 1 ORDER BY date DESC, slug`)
}

// ListAllPosts returns every post (published and drafts) ordered by date descending.
func (s *Store) ListAllPosts() ([]Post, error) {
	return s.queryPosts(`SELECT ` + postColumns + ` FROM posts ORDER BY date DESC, slug`)
}

// GetPost returns a single published post by slug.
func (s *Store) GetPost(slug string) (Post, error) {
	return s.getPost(`SELECT `+postColumns+` FROM posts WHERE slug = ? AND published = 1`, slug)
}

// GetPostAny returns a post by slug regardless of published status (for admin).
func (s *Store) GetPostAny(slug string) (Post, error) {
	return s.getPost(`SELECT `+postColumns+` FROM posts WHERE slug = ?`, slug)
}

func (s *Store) getPost(query, slug string) (Post, error) {
	p, err := scanPost(s.db.QueryRow(query, slug))
	if err != nil {
		return Post{}, err
	}
	if p.Meta, err = s.PostMeta(slug); err != nil {
		return Post{}, err
	}
	return p, nil
}

// SavePost upserts a post. Its Open Graph overrides are left untouched.
func (s *Store) SavePost(p Post) error {
	published := 0
	if p.Published {
		published = 1
	}
	_, err := s.db.Exec(`
INSERT INTO posts (slug, title, date, excerpt, content, thumbnail, published) VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(slug) DO UPDATE SET
    title = excluded.title,
    date = excluded.date,
    excerpt = excluded.excerpt,
    content = excluded.content,
    thumbnail = excluded.thumbnail,
    published = excluded.published`,
		p.Slug, p.Title, p.Date, p.Excerpt, p.Content, p.Thumbnail, published)
	return err
}

// DeletePost removes a post and its overrides by slug.
func (s *Store) DeletePost(slug string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if _, err := tx.Exec(`DELETE FROM post_meta WHERE slug = ?`, slug); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM posts WHERE slug = ?`, slug); err != nil {
		return err
	}
	return tx.Commit()
}

// PostMeta returns the Open Graph overrides of a post keyed by property name.
func (s *Store) PostMeta(slug string) (map[string]string, error) {
	return s.queryMap(`SELECT property, value FROM post_meta WHERE slug = ?`, slug)
}

// SetPostMeta stores an override for one property of a post. An empty
// value removes the override.
func (s *Store) SetPostMeta(slug, property, value string) error {
	if value == "" {
		_, err := s.db.Exec(`DELETE FROM post_meta WHERE slug = ? AND property = ?`, slug, property)
		return err
	}
	_, err := s.db.Exec(`INSERT OR REPLACE INTO post_meta (slug, property, value) VALUES (?, ?, ?)`, slug, property, value)
	return err
}

func (s *Store) allPostMeta() (map[string]map[string]string, error) {
	rows, err := s.db.Query(`SELECT slug, property, value FROM post_meta`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]map[string]string)
	for rows.Next() {
		var slug, property, value string
		if err := rows.Scan(&slug, &property, &value); err != nil {
			return nil, err
		}
		if out[slug] == nil {
			out[slug] = make(map[string]string)
		}
		out[slug][property] = value
	}
	return out, rows.Err()
}

// Options returns the site-wide Open Graph values keyed by property name.
func (s *Store) Options() (map[string]string, error) {
	return s.queryMap(`SELECT name, value FROM options`)
}

// SetOption stores a site-wide value. An empty value removes it.
func (s *Store) SetOption(name, value string) error {
	if value == "" {
		_, err := s.db.Exec(`DELETE FROM options WHERE name = ?`, name)
		return err
	}
	_, err := s.db.Exec(`INSERT OR REPLACE INTO options (name, value) VALUES (?, ?)`, name, value)
	return err
}

func (s *Store) queryMap(query string, args ...any) (map[string]string, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, err
		}
		out[k] = v
	}
	return out, rows.Err()
}
