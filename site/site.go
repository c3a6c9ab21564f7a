// Package site is a small blog host built with Echo, templ and SQLite that
// renders Open Graph metadata for every public page.
//
// Posts live in SQLite and are written in markdown. Site-wide and per-post
// Open Graph values can be edited from the admin dashboard; they are
// layered over the opengraph package defaults by providers registered on
// the App's Resolver.
package site

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/eringen/opengraph"
)

// App is the central site application. It wires together the store,
// cache, resolver, handlers, middleware, and views.
type App struct {
	Config   SiteConfig
	Echo     *echo.Echo
	Store    *Store
	Cache    *PostCache
	Resolver *opengraph.Resolver
	Views    ViewFuncs

	loginLimiter *LoginLimiter
	customRoutes []func(*App)
	initialized  bool
}

// New creates a new App with the given configuration.
func New(cfg SiteConfig, opts ...Option) *App {
	cfg.setDefaults()

	a := &App{
		Config: cfg,
		Echo:   echo.New(),
		Resolver: opengraph.NewResolver(opengraph.WithSummarizer(opengraph.Summarizer{
			Words:      cfg.SummaryWords,
			Shortcodes: cfg.Shortcodes,
		})),
		Views: DefaultViews(),
	}
	a.Echo.HideBanner = true
	registerProviders(a.Resolver)

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Init opens the database and sets up the cache, middleware and routes
// without starting the server.
func (a *App) Init() error {
	if a.initialized {
		return nil
	}
	store, err := NewStore(a.Config.DatabasePath)
	if err != nil {
		return fmt.Errorf("site: init store: %w", err)
	}
	a.Store = store
	a.Cache = NewPostCache(a.Store, a.Config.PostCacheTTL)
	a.loginLimiter = NewLoginLimiter(5, time.Minute)

	a.setupMiddleware()
	a.setupRoutes()
	for _, fn := range a.customRoutes {
		fn(a)
	}
	a.initialized = true
	return nil
}

// Start initializes the App and serves HTTP on Config.Addr.
func (a *App) Start() error {
	if a.Config.AdminPassword == "" {
		return errors.New("site: AdminPassword is required")
	}
	if a.Config.SessionSecret == "" {
		return errors.New("site: SessionSecret is required")
	}
	if err := a.Init(); err != nil {
		return err
	}
	a.Echo.Logger.Infof("serving %s on %s", a.Config.URL, a.Config.Addr)
	if err := a.Echo.Start(a.Config.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (a *App) setupRoutes() {
	e := a.Echo

	e.GET("/robots.txt", a.handleRobots)
	e.GET("/sitemap.xml", a.handleSitemap)
	e.GET("/feed.xml", a.handleFeed)
	e.GET("/api/opengraph", a.handleMetadata)

	e.GET("/", a.handleHome)
	e.GET("/blog/:slug/", a.handlePost)

	e.GET("/admin/", a.handleAdmin)
	e.POST("/admin/login/", a.handleAdminLogin)
	e.POST("/admin/logout/", handleAdminLogout)
	e.GET("/admin/post/:slug/", a.handleAdminPost)
	e.POST("/admin/post/:slug/meta/", a.handleAdminPostMeta)
	e.POST("/admin/save/", a.handleAdminSave)
	e.DELETE("/admin/post/:slug/", a.handleAdminDelete)
	e.POST("/admin/post/:slug/delete/", a.handleAdminDelete)
	e.POST("/admin/options/", a.handleAdminOptions)
}

// Close cleans up resources. Call this when the app is shutting down.
func (a *App) Close() error {
	if a.loginLimiter != nil {
		a.loginLimiter.Stop()
	}
	if a.Store != nil {
		return a.Store.Close()
	}
	return nil
}
