package site

import (
	"context"
	"io"
	"strings"

	"github.com/a-h/templ"

	"github.com/eringen/opengraph"
)

// PageData is passed to the public views.
type PageData struct {
	Site     SiteConfig
	Title    string
	Posts    []Post
	Post     *Post
	BodyHTML string
	Meta     *opengraph.Metadata
}

// AdminData is passed to the admin dashboard view.
type AdminData struct {
	Posts     []Post
	Options   map[string]string
	Message   string
	CSRFToken string
}

// ViewFuncs holds the templ components the App renders. Public views are
// expected to place the Open Graph block in <head> using Head.
type ViewFuncs struct {
	Home           func(PageData) templ.Component
	Post           func(PageData) templ.Component
	NotFound       func(PageData) templ.Component
	ServerError    func(PageData) templ.Component
	AdminLogin     func(showError bool, csrfToken string) templ.Component
	AdminDashboard func(AdminData) templ.Component
}

// DefaultViews returns the built-in minimal HTML views.
func DefaultViews() ViewFuncs {
	return ViewFuncs{
		Home:           homeView,
		Post:           postView,
		NotFound:       messageView("Not found", "The page you requested does not exist."),
		ServerError:    messageView("Server error", "Something went wrong."),
		AdminLogin:     adminLoginView,
		AdminDashboard: adminDashboardView,
	}
}

func (v ViewFuncs) merge(o ViewFuncs) ViewFuncs {
	if o.Home != nil {
		v.Home = o.Home
	}
	if o.Post != nil {
		v.Post = o.Post
	}
	if o.NotFound != nil {
		v.NotFound = o.NotFound
	}
	if o.ServerError != nil {
		v.ServerError = o.ServerError
	}
	if o.AdminLogin != nil {
		v.AdminLogin = o.AdminLogin
	}
	if o.AdminDashboard != nil {
		v.AdminDashboard = o.AdminDashboard
	}
	return v
}

var esc = templ.EscapeString[string]

// Document renders a full HTML page. The og namespace is declared on the
// <html> element and the metadata block is written into <head>.
func Document(title string, md *opengraph.Metadata, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		state := &opengraph.RenderState{}
		if _, err := io.WriteString(w, "<!DOCTYPE html>\n<html "+state.LanguageAttributes(`lang="en"`)+">\n<head>\n"+
			"<meta charset=\"utf-8\" />\n<title>"+esc(title)+"</title>\n"); err != nil {
			return err
		}
		if err := Head(md, state).Render(ctx, w); err != nil {
			return err
		}
		if _, err := io.WriteString(w, "</head>\n<body>\n"); err != nil {
			return err
		}
		if body != nil {
			if err := body.Render(ctx, w); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, "</body>\n</html>\n")
		return err
	})
}

// Head renders the Open Graph block for custom layouts.
func Head(md *opengraph.Metadata, state *opengraph.RenderState) templ.Component {
	return opengraph.MetaTags(md, state)
}

func html(s string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, s)
		return err
	})
}

func homeView(d PageData) templ.Component {
	var b strings.Builder
	b.WriteString("<h1>" + esc(d.Site.Name) + "</h1>\n")
	if d.Site.Description != "" {
		b.WriteString("<p>" + esc(d.Site.Description) + "</p>\n")
	}
	b.WriteString("<ul>\n")
	for _, p := range d.Posts {
		b.WriteString(`<li><a href="` + esc(p.Link) + `">` + esc(p.Title) + "</a> <time>" + esc(p.Date) + "</time></li>\n")
	}
	b.WriteString("</ul>\n")
	return Document(d.Title, d.Meta, html(b.String()))
}

func postView(d PageData) templ.Component {
	var b strings.Builder
	b.WriteString("<article>\n<h1>" + esc(d.Post.Title) + "</h1>\n<time>" + esc(d.Post.Date) + "</time>\n")
	b.WriteString(d.BodyHTML)
	b.WriteString("</article>\n<p><a href=\"/\">" + esc(d.Site.Name) + "</a></p>\n")
	return Document(d.Title, d.Meta, html(b.String()))
}

func messageView(heading, text string) func(PageData) templ.Component {
	return func(d PageData) templ.Component {
		return Document(heading, d.Meta, html("<h1>"+esc(heading)+"</h1>\n<p>"+esc(text)+"</p>\n"))
	}
}

func adminLoginView(showError bool, csrfToken string) templ.Component {
	var b strings.Builder
	b.WriteString("<h1>Admin</h1>\n")
	if showError {
		b.WriteString("<p class=\"error\">Wrong password.</p>\n")
	}
	b.WriteString(`<form method="post" action="/admin/login/">` + "\n")
	b.WriteString(`<input type="hidden" name="_csrf" value="` + esc(csrfToken) + `" />` + "\n")
	b.WriteString(`<input type="password" name="password" /> <button type="submit">Log in</button>` + "\n</form>\n")
	return Document("Admin", nil, html(b.String()))
}

func adminDashboardView(d AdminData) templ.Component {
	csrf := `<input type="hidden" name="_csrf" value="` + esc(d.CSRFToken) + `" />` + "\n"
	var b strings.Builder
	b.WriteString("<h1>Admin</h1>\n")
	if d.Message != "" {
		b.WriteString(`<p class="message">` + esc(d.Message) + "</p>\n")
	}
	b.WriteString("<h2>Posts</h2>\n<ul>\n")
	for _, p := range d.Posts {
		state := "draft"
		if p.Published {
			state = "published"
		}
		b.WriteString(`<li><a href="` + esc(p.Link) + `">` + esc(p.Title) + "</a> (" + state + ")\n")
		b.WriteString(`<form method="post" action="/admin/post/` + esc(p.Slug) + `/meta/" class="post-meta">` + "\n" + csrf)
		propertyInputs(&b, p.Meta)
		b.WriteString("<button type=\"submit\">Save metadata</button>\n</form>\n")
		b.WriteString(`<form method="post" action="/admin/post/` + esc(p.Slug) + `/delete/" class="post-delete">` + csrf)
		b.WriteString("<button type=\"submit\">Delete</button></form>\n</li>\n")
	}
	b.WriteString("</ul>\n<h2>New post</h2>\n")
	b.WriteString(`<form method="post" action="/admin/save/" class="post-save">` + "\n" + csrf)
	for _, f := range []string{"title", "slug", "date", "thumbnail"} {
		b.WriteString(`<label>` + f + ` <input name="` + f + `" /></label>` + "\n")
	}
	b.WriteString(`<label>excerpt <textarea name="excerpt"></textarea></label>` + "\n")
	b.WriteString(`<label>content <textarea name="content"></textarea></label>` + "\n")
	b.WriteString(`<label><input type="checkbox" name="published" value="1" /> published</label>` + "\n")
	b.WriteString("<button type=\"submit\">Save post</button>\n</form>\n")
	b.WriteString("<h2>Open Graph</h2>\n")
	b.WriteString(`<form method="post" action="/admin/options/" class="site-options">` + "\n" + csrf)
	propertyInputs(&b, d.Options)
	b.WriteString("<button type=\"submit\">Save</button>\n</form>\n")
	b.WriteString(`<form method="post" action="/admin/logout/">` + csrf + `<button type="submit">Log out</button></form>` + "\n")
	return Document("Admin", nil, html(b.String()))
}

// propertyInputs writes one labelled input per property, prefilled from values.
func propertyInputs(b *strings.Builder, values map[string]string) {
	for _, p := range opengraph.Properties() {
		name := string(p)
		b.WriteString(`<label>` + esc(p.Key()) + ` <input name="` + esc(name) + `" value="` + esc(values[name]) + `" /></label>` + "\n")
	}
}
