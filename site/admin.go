package site

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/eringen/opengraph"
)

func (a *App) handleAdmin(c echo.Context) error {
	if !IsAdmin(c) {
		return Render(c, a.Views.AdminLogin(false, CsrfToken(c)))
	}
	return a.renderAdminDashboard(c, c.QueryParam("msg"))
}

func (a *App) handleAdminPost(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	post, err := a.Store.GetPostAny(c.Param("slug"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return c.NoContent(http.StatusNotFound)
		}
		return err
	}
	return c.JSON(http.StatusOK, post)
}

func (a *App) handleAdminLogin(c echo.Context) error {
	ip := c.RealIP()
	if !a.loginLimiter.Check(ip) {
		return c.String(http.StatusTooManyRequests, "Too many login attempts. Try again later.")
	}
	pass := c.FormValue("password")
	if subtle.ConstantTimeCompare([]byte(pass), []byte(a.Config.AdminPassword)) == 1 {
		a.loginLimiter.Reset(ip)
		if err := setAdminSession(c); err != nil {
			return err
		}
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	a.loginLimiter.Record(ip)
	c.Logger().Warnf("failed admin login from %s", ip)
	return Render(c, a.Views.AdminLogin(true, CsrfToken(c)))
}

func handleAdminLogout(c echo.Context) error {
	if err := clearAdminSession(c); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/admin/")
}

func (a *App) handleAdminSave(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	if err := c.Request().ParseForm(); err != nil {
		return err
	}
	title := strings.TrimSpace(c.FormValue("title"))
	slug := strings.TrimSpace(c.FormValue("slug"))
	if slug == "" {
		slug = Slugify(title)
	}
	if slug == "" {
		return c.Redirect(http.StatusSeeOther, "/admin/?msg=Slug+is+required.+Add+a+title+or+slug.")
	}
	date := strings.TrimSpace(c.FormValue("date"))
	if date == "" {
		date = time.Now().Format("2006-01-02")
	}
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return c.Redirect(http.StatusSeeOther, "/admin/?msg=Invalid+date+format.+Use+YYYY-MM-DD.")
	}
	if err := a.Store.SavePost(Post{
		Slug:      slug,
		Title:     title,
		Date:      date,
		Excerpt:   strings.TrimSpace(c.FormValue("excerpt")),
		Content:   c.FormValue("content"),
		Thumbnail: strings.TrimSpace(c.FormValue("thumbnail")),
		Published: c.FormValue("published") != "",
	}); err != nil {
		return err
	}
	a.Cache.Invalidate()
	return a.renderAdminDashboard(c, "saved")
}

func (a *App) handleAdminDelete(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	if err := a.Store.DeletePost(c.Param("slug")); err != nil {
		return err
	}
	a.Cache.Invalidate()
	return a.renderAdminDashboard(c, "deleted")
}

// handleAdminPostMeta saves per-post overrides. Every submitted form field
// named after a property (with or without og:) is stored; empty fields
// clear the override.
func (a *App) handleAdminPostMeta(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	slug := c.Param("slug")
	if _, err := a.Store.GetPostAny(slug); err != nil {
		if errors.Is(err, ErrNotFound) {
			return c.NoContent(http.StatusNotFound)
		}
		return err
	}
	values, err := propertyForm(c)
	if err != nil {
		return err
	}
	for name, v := range values {
		if err := a.Store.SetPostMeta(slug, name, v); err != nil {
			return err
		}
	}
	a.Cache.Invalidate()
	return a.renderAdminDashboard(c, "post metadata saved")
}

// handleAdminOptions saves site-wide property values.
func (a *App) handleAdminOptions(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	values, err := propertyForm(c)
	if err != nil {
		return err
	}
	for name, v := range values {
		if err := a.Store.SetOption(name, v); err != nil {
			return err
		}
	}
	a.Cache.Invalidate()
	return a.renderAdminDashboard(c, "site metadata saved")
}

// propertyForm collects the submitted form fields that name a property.
func propertyForm(c echo.Context) (map[string]string, error) {
	form, err := c.FormParams()
	if err != nil {
		return nil, err
	}
	values := make(map[string]string)
	for field := range form {
		p, ok := opengraph.ParseProperty(field)
		if !ok {
			continue
		}
		values[string(p)] = strings.TrimSpace(form.Get(field))
	}
	return values, nil
}

func (a *App) renderAdminDashboard(c echo.Context, msg string) error {
	posts, err := a.Store.ListAllPosts()
	if err != nil {
		return err
	}
	options, err := a.Store.Options()
	if err != nil {
		return err
	}
	return Render(c, a.Views.AdminDashboard(AdminData{
		Posts:     posts,
		Options:   options,
		Message:   msg,
		CSRFToken: CsrfToken(c),
	}))
}
