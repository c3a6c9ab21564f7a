package opengraph

import (
	"sort"
	"sync"
)

const (
	// DefaultPriority is the priority of the built-in providers. They run
	// first so that site providers can override them.
	DefaultPriority = 5
	// Priority is the priority of providers registered without WithPriority.
	Priority = 10
)

// ProviderFunc resolves one property. It receives the value produced by
// the providers that ran before it and returns the new value.
type ProviderFunc func(page Page, value string) string

// FilterFunc post-processes the whole metadata map after every property
// has been resolved. It may add, change or delete entries.
type FilterFunc func(page Page, md *Metadata)

type provider struct {
	priority  int
	overwrite bool
	fn        ProviderFunc
}

type filter struct {
	priority int
	fn       FilterFunc
}

type providerConfig struct {
	priority  int
	overwrite bool
}

// ProviderOption configures a registered provider or filter.
type ProviderOption func(*providerConfig)

// WithPriority sets the priority of a provider. Lower priorities run first.
func WithPriority(priority int) ProviderOption {
	return func(c *providerConfig) {
		c.priority = priority
	}
}

// Overwrite makes a provider run even when a value is already set.
// Without it a provider only fills in an empty value.
func Overwrite() ProviderOption {
	return func(c *providerConfig) {
		c.overwrite = true
	}
}

// Resolver computes the metadata of a page from per-property provider
// chains. It is safe for concurrent use; registrations made while a page
// resolves take effect on the next Resolve.
type Resolver struct {
	mu         sync.RWMutex
	chains     map[Property][]provider
	filters    []filter
	summarizer Summarizer
	defaults   bool
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithSummarizer sets how item bodies are summarized for og:description.
func WithSummarizer(s Summarizer) ResolverOption {
	return func(r *Resolver) {
		r.summarizer = s
	}
}

// WithoutDefaults leaves every chain empty, so only explicitly registered
// providers contribute values.
func WithoutDefaults() ResolverOption {
	return func(r *Resolver) {
		r.defaults = false
	}
}

// NewResolver returns a Resolver with the default providers registered at
// DefaultPriority.
func NewResolver(opts ...ResolverOption) *Resolver {
	r := &Resolver{
		chains:   make(map[Property][]provider),
		defaults: true,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.defaults {
		r.registerDefaults()
	}
	return r
}

// Register appends fn to the chain of p. Unknown properties get a chain
// too, but Resolve only consults the known ones; use RegisterFilter to add
// arbitrary keys.
func (r *Resolver) Register(p Property, fn ProviderFunc, opts ...ProviderOption) {
	cfg := providerConfig{priority: Priority}
	for _, opt := range opts {
		opt(&cfg)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	// Chains are replaced, never mutated, so a Resolve in flight keeps
	// the slice it started with.
	old := r.chains[p]
	chain := make([]provider, len(old), len(old)+1)
	copy(chain, old)
	chain = append(chain, provider{
		priority:  cfg.priority,
		overwrite: cfg.overwrite,
		fn:        fn,
	})
	sort.SliceStable(chain, func(i, j int) bool {
		return chain[i].priority < chain[j].priority
	})
	r.chains[p] = chain
}

// RegisterFilter adds a whole-map filter. Filters run in priority order
// after all properties are resolved. Overwrite has no effect on filters.
func (r *Resolver) RegisterFilter(fn FilterFunc, opts ...ProviderOption) {
	cfg := providerConfig{priority: Priority}
	for _, opt := range opts {
		opt(&cfg)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	filters := make([]filter, len(r.filters), len(r.filters)+1)
	copy(filters, r.filters)
	filters = append(filters, filter{priority: cfg.priority, fn: fn})
	sort.SliceStable(filters, func(i, j int) bool {
		return filters[i].priority < filters[j].priority
	})
	r.filters = filters
}

// Resolve builds the metadata map of page: one og:<property> entry per
// known property in declaration order, followed by any filter changes.
// A property nobody provides a value for resolves to "".
//
// Providers and filters run without the registry lock held; they may
// register more providers, which apply from the next Resolve on.
func (r *Resolver) Resolve(page Page) *Metadata {
	r.mu.RLock()
	chains := make(map[Property][]provider, len(properties))
	for _, p := range properties {
		chains[p] = r.chains[p]
	}
	filters := r.filters
	r.mu.RUnlock()

	md := NewMetadata()
	for _, p := range properties {
		md.Set(p.Key(), resolve(chains[p], page))
	}
	for _, f := range filters {
		f.fn(page, md)
	}
	return md
}

// Value resolves a single property of page without running the filters.
func (r *Resolver) Value(p Property, page Page) string {
	r.mu.RLock()
	chain := r.chains[p]
	r.mu.RUnlock()
	return resolve(chain, page)
}

func resolve(chain []provider, page Page) string {
	value := ""
	for _, pr := range chain {
		if value != "" && !pr.overwrite {
			continue
		}
		value = pr.fn(page, value)
	}
	return value
}
