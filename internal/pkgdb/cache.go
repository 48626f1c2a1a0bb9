package pkgdb

import (
	"context"
	"fmt"
	"strings"

	"github.com/manasm11/packtui/internal/progress"
)

// Cache is the Cache Adapter: it pairs a Backend with a Registry so every
// caller above this package addresses packages by stable Handle rather
// than by name, and refreshing the backend never invalidates a handle
// already handed out.
type Cache struct {
	backend  Backend
	registry *Registry
}

// NewCache wraps backend with a fresh, empty handle registry.
func NewCache(backend Backend) *Cache {
	return &Cache{backend: backend, registry: NewRegistry()}
}

// Package is a RawPackage plus the stable Handle assigned to it.
type Package struct {
	Handle Handle
	RawPackage
}

// Load performs the initial backend load and populates the registry.
func (c *Cache) Load(ctx context.Context) error {
	if err := c.backend.Load(ctx); err != nil {
		return fmt.Errorf("loading package cache: %w", err)
	}
	return c.syncRegistry()
}

// Refresh re-reads the backend. Per Testable Property 7, handles already
// assigned to a still-present package are preserved; only packages newly
// seen get a new Handle appended to the registry.
func (c *Cache) Refresh(ctx context.Context) error {
	if err := c.backend.Refresh(ctx); err != nil {
		return fmt.Errorf("refreshing package cache: %w", err)
	}
	return c.syncRegistry()
}

func (c *Cache) syncRegistry() error {
	pkgs, err := c.backend.Packages(SortDefault)
	if err != nil {
		return err
	}
	for _, p := range pkgs {
		c.registry.HandleFor(p.Fullname)
	}
	return nil
}

// Packages returns the backend's current packages, each tagged with its
// stable Handle, in the backend's requested order.
func (c *Cache) Packages(sort SortHint) ([]Package, error) {
	raw, err := c.backend.Packages(sort)
	if err != nil {
		return nil, err
	}
	out := make([]Package, 0, len(raw))
	for _, p := range raw {
		h := c.registry.HandleFor(p.Fullname)
		out = append(out, Package{Handle: h, RawPackage: p})
	}
	return out, nil
}

// Get looks a package up by fullname.
func (c *Cache) Get(fullname string) (Package, bool) {
	raw, ok := c.backend.Get(fullname)
	if !ok {
		return Package{}, false
	}
	h, ok := c.registry.Lookup(fullname)
	if !ok {
		h = c.registry.HandleFor(fullname)
	}
	return Package{Handle: h, RawPackage: raw}, true
}

// GetByHandle resolves a previously-issued Handle back to its current
// package state, or false if the backend no longer carries it (e.g. it
// was purged).
func (c *Cache) GetByHandle(h Handle) (Package, bool) {
	fullname, ok := c.registry.Fullname(h)
	if !ok {
		return Package{}, false
	}
	return c.Get(fullname)
}

// DisplayName strips the native-architecture suffix from a fullname, the
// way apt only shows ":arch" for foreign-architecture packages.
func (c *Cache) DisplayName(fullname string) string {
	native := c.backend.NativeArch()
	if native == "" {
		return fullname
	}
	suffix := ":" + native
	if strings.HasSuffix(fullname, suffix) {
		return strings.TrimSuffix(fullname, suffix)
	}
	return fullname
}

func (c *Cache) MarkInstall(fullname string)  { c.backend.MarkInstall(fullname) }
func (c *Cache) MarkRemove(fullname string)   { c.backend.MarkRemove(fullname) }
func (c *Cache) MarkKeep(fullname string)     { c.backend.MarkKeep(fullname) }
func (c *Cache) ClearAllMarks()               { c.backend.ClearAllMarks() }
func (c *Cache) Changes() []RawPackage        { return c.backend.Changes() }

func (c *Cache) Resolve(ctx context.Context) []ConflictError {
	return c.backend.Resolve(ctx)
}

func (c *Cache) Commit(ctx context.Context, sink progress.Sink) error {
	if err := c.backend.Commit(ctx, sink); err != nil {
		return err
	}
	return c.syncRegistry()
}

func (c *Cache) Dependencies(fullname string) []DepEdge {
	return c.backend.Dependencies(fullname)
}

func (c *Cache) ReverseDependencies(fullname string) []DepEdge {
	return c.backend.ReverseDependencies(fullname)
}

func (c *Cache) NativeArch() string { return c.backend.NativeArch() }

// Len reports how many handles the registry has ever issued.
func (c *Cache) Len() int { return c.registry.Len() }
