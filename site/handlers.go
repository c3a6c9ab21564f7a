package site

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/eringen/opengraph"
)

func (a *App) handleHome(c echo.Context) error {
	posts, err := a.Cache.ListPosts()
	if err != nil {
		return err
	}
	options, err := a.Cache.Options()
	if err != nil {
		return err
	}
	md := a.Resolver.Resolve(a.FrontPage(options))
	return Render(c, a.Views.Home(PageData{
		Site:  a.Config,
		Title: a.Config.Name,
		Posts: posts,
		Meta:  md,
	}))
}

func (a *App) handlePost(c echo.Context) error {
	post, err := a.Cache.GetPost(c.Param("slug"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.ErrNotFound
		}
		return err
	}
	options, err := a.Cache.Options()
	if err != nil {
		return err
	}
	page, body, err := a.PostPage(post, options)
	if err != nil {
		return err
	}
	return Render(c, a.Views.Post(PageData{
		Site:     a.Config,
		Title:    post.Title + " | " + a.Config.Name,
		Post:     &post,
		BodyHTML: body,
		Meta:     a.Resolver.Resolve(page),
	}))
}

// metadataResponse is the JSON body of /api/opengraph.
type metadataResponse struct {
	Path     string            `json:"path"`
	Metadata []opengraph.Entry `json:"metadata"`
	HTML     string            `json:"html"`
}

// handleMetadata reports the resolved metadata of the page at ?path=,
// including empty entries, together with the emitted block.
func (a *App) handleMetadata(c echo.Context) error {
	path := c.QueryParam("path")
	md, err := a.Metadata(path)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "no page at " + path})
		}
		return err
	}
	var b strings.Builder
	if err := opengraph.Emit(&b, md, &opengraph.RenderState{NamespaceDeclared: true}); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, metadataResponse{
		Path:     path,
		Metadata: md.Entries(),
		HTML:     b.String(),
	})
}

// Metadata resolves the metadata of the front page ("" or "/") or of a
// published post path ("/blog/<slug>/").
func (a *App) Metadata(path string) (*opengraph.Metadata, error) {
	slug, ok := SlugFromPath(path)
	if !ok {
		return nil, ErrNotFound
	}
	options, err := a.Cache.Options()
	if err != nil {
		return nil, err
	}
	if slug == "" {
		return a.Resolver.Resolve(a.FrontPage(options)), nil
	}
	post, err := a.Cache.GetPost(slug)
	if err != nil {
		return nil, err
	}
	page, _, err := a.PostPage(post, options)
	if err != nil {
		return nil, err
	}
	return a.Resolver.Resolve(page), nil
}

func (a *App) handleRobots(c echo.Context) error {
	body := "User-agent: *\nAllow: /\nDisallow: /admin/\n\nSitemap: " + opengraph.TrailingSlash(a.Config.URL) + "sitemap.xml" + "\n"
	return c.String(http.StatusOK, body)
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	he, ok := err.(*echo.HTTPError)
	if ok && he.Code == http.StatusNotFound {
		_ = RenderStatus(c, http.StatusNotFound, a.Views.NotFound(a.errorPageData()))
		return
	}
	code := http.StatusInternalServerError
	if ok {
		code = he.Code
	}
	if code >= 500 {
		c.Logger().Errorf("server error: %v", err)
		_ = RenderStatus(c, code, a.Views.ServerError(a.errorPageData()))
		return
	}
	a.Echo.DefaultHTTPErrorHandler(err, c)
}

// errorPageData describes error pages as non-singular pages of the site.
func (a *App) errorPageData() PageData {
	var options map[string]string
	if a.Cache != nil {
		options, _ = a.Cache.Options()
	}
	return PageData{
		Site:  a.Config,
		Title: a.Config.Name,
		Meta:  a.Resolver.Resolve(a.FrontPage(options)),
	}
}
