// Package manager is the upward facade: the single object internal/tui
// holds, composing the cache adapter, intent store, state machine,
// toggle engine, list projection, search index, changelog fetcher, and
// lock-file probe behind one narrow API.
package manager

import (
	"context"
	"errors"
	"fmt"

	"github.com/manasm11/packtui/internal/changelog"
	"github.com/manasm11/packtui/internal/intent"
	"github.com/manasm11/packtui/internal/lockfile"
	"github.com/manasm11/packtui/internal/pkgdb"
	"github.com/manasm11/packtui/internal/planner"
	"github.com/manasm11/packtui/internal/progress"
	"github.com/manasm11/packtui/internal/projection"
	"github.com/manasm11/packtui/internal/searchindex"
	"github.com/manasm11/packtui/internal/toggle"
	"github.com/manasm11/packtui/internal/txn"
)

// Typed error taxonomy for Manager's failure modes. Dependency-conflict and
// changelog-unavailable are deliberately NOT part of this taxonomy — they
// are recoverable/expected outcomes carried as data (Planned.Errors, a
// one-element changelog line), not failures of the call.
var (
	ErrCacheUnavailable   = errors.New("manager: package cache unavailable")
	ErrLockHeld           = errors.New("manager: another package manager is running")
	ErrCommitFailed       = errors.New("manager: commit failed")
	ErrSearchQueryInvalid = errors.New("manager: invalid search query")
)

// Manager owns every piece of engine state and exposes the engine's upward
// API. The zero value is not ready to use; construct with New.
type Manager struct {
	cache *pkgdb.Cache
	store *intent.Store
	life  *txn.Lifecycle

	lockPaths []string

	rows    []projection.PackageInfo
	widths  projection.ColumnWidths
	filter  projection.Category
	sortCfg projection.SortConfig

	searchIdx     *searchindex.Index
	searchQuery   string
	searchActive  bool
	searchResults *searchindex.ResultSet
}

// New wires a fresh Manager over backend, in Clean state with no filter,
// no active search, and the default name-ascending sort.
func New(backend pkgdb.Backend) *Manager {
	cache := pkgdb.NewCache(backend)
	store := intent.NewStore()
	m := &Manager{
		cache:     cache,
		store:     store,
		life:      txn.New(cache, store),
		lockPaths: lockfile.DefaultPaths,
		filter:    projection.CategoryAll,
		sortCfg:   projection.SortConfig{By: projection.SortByName, Ascending: true},
	}
	return m
}

// --- State Machine handle ---

func (m *Manager) IsClean() bool   { return m.life.IsClean() }
func (m *Manager) IsDirty() bool   { return m.life.IsDirty() }
func (m *Manager) IsPlanned() bool { return m.life.IsPlanned() }

// PlannedChanges returns the last computed changeset and whether one exists.
func (m *Manager) PlannedChanges() (*planner.Planned, bool) { return m.life.PlannedChanges() }

// PlanErrors returns the last plan's solver diagnostics, if any.
func (m *Manager) PlanErrors() []string { return m.life.PlanErrors() }

// HasMarks reports whether any explicit user intent is recorded.
func (m *Manager) HasMarks() bool { return m.life.HasMarks() }

// --- Load / Refresh ---

// Load performs the initial cache load, probing the lock files first.
func (m *Manager) Load(ctx context.Context) error {
	if err := lockfile.Probe(m.lockPaths); err != nil {
		return fmt.Errorf("%w: %v", ErrLockHeld, err)
	}
	if err := m.cache.Load(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrCacheUnavailable, err)
	}
	m.invalidateSearch()
	m.RebuildList()
	return nil
}

// Refresh re-reads the cache (preserving handles, per Testable Property 7)
// and invalidates the search index, per scenario S6.
func (m *Manager) Refresh(ctx context.Context) error {
	if err := lockfile.Probe(m.lockPaths); err != nil {
		return fmt.Errorf("%w: %v", ErrLockHeld, err)
	}
	if err := m.cache.Refresh(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrCacheUnavailable, err)
	}
	m.invalidateSearch()
	m.RebuildList()
	return nil
}

func (m *Manager) invalidateSearch() {
	m.searchIdx = nil
	m.searchActive = false
	m.searchResults = nil
	m.searchQuery = ""
}

// --- List Projection ---

// List returns the current projected rows, as of the last RebuildList.
func (m *Manager) List() []projection.PackageInfo { return m.rows }

// Widths returns the column widths computed by the last RebuildList, with
// no recomputation — every mutating method below already rebuilds the
// list internally, so callers never need to force a second rebuild just
// to read the widths back.
func (m *Manager) Widths() projection.ColumnWidths { return m.widths }

// GetPackage returns the row at index, or false if out of range.
func (m *Manager) GetPackage(index int) (projection.PackageInfo, bool) {
	if index < 0 || index >= len(m.rows) {
		return projection.PackageInfo{}, false
	}
	return m.rows[index], true
}

// PackageCount is the number of handles the cache's registry has issued,
// including packages purged since.
func (m *Manager) PackageCount() int { return m.cache.Len() }

// UpgradableCount counts upgradable packages irrespective of the current filter.
func (m *Manager) UpgradableCount() int {
	raw, err := m.cache.Packages(pkgdb.SortDefault)
	if err != nil {
		return 0
	}
	n := 0
	for _, p := range raw {
		if p.IsUpgradable {
			n++
		}
	}
	return n
}

// FilterCount counts how many packages the given category would admit,
// independent of the currently applied filter.
func (m *Manager) FilterCount(category projection.Category) int {
	planned, _ := m.life.PlannedChanges()
	rows, _ := projection.Rebuild(m.cache, m.store, planned, category, m.currentSearchResults(), m.sortCfg)
	return len(rows)
}

// ApplyFilter sets the active category filter and rebuilds the list.
func (m *Manager) ApplyFilter(category projection.Category) {
	m.filter = category
	m.RebuildList()
}

// RebuildList recomputes the projected rows and column widths from the
// current filter, search, sort, and planned changeset. Called on filter
// change, search change, sort change, or a Planner run.
func (m *Manager) RebuildList() projection.ColumnWidths {
	planned, _ := m.life.PlannedChanges()
	m.rows, m.widths = projection.Rebuild(m.cache, m.store, planned, m.filter, m.currentSearchResults(), m.sortCfg)
	return m.widths
}

// SetSort changes the sort column/direction and rebuilds.
func (m *Manager) SetSort(by projection.SortKey, ascending bool) {
	m.sortCfg = projection.SortConfig{By: by, Ascending: ascending}
	m.RebuildList()
}

// --- Search Index ---

func (m *Manager) currentSearchResults() *searchindex.ResultSet {
	if !m.searchActive {
		return nil
	}
	return m.searchResults
}

// SetSearchQuery builds the index lazily if needed, searches, and rebuilds
// the list. An empty query is legal: it yields an active search matching
// nothing against its own terms.
func (m *Manager) SetSearchQuery(ctx context.Context, q string) error {
	if m.searchIdx == nil {
		idx, _, _, err := searchindex.Build(ctx, m.cache)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrSearchQueryInvalid, err)
		}
		m.searchIdx = idx
	}
	m.searchQuery = q
	m.searchActive = true
	m.searchResults = m.searchIdx.Search(q)
	m.RebuildList()
	return nil
}

// ClearSearch deactivates the current search without discarding the index.
func (m *Manager) ClearSearch() {
	m.searchActive = false
	m.searchResults = nil
	m.searchQuery = ""
	m.RebuildList()
}

// SearchQuery returns the active query string, or "" if no search is active.
func (m *Manager) SearchQuery() string {
	if !m.searchActive {
		return ""
	}
	return m.searchQuery
}

// SearchResultCount returns the match count and whether a search is active
// ("None" vs an actual count, per scenario S6: a refresh invalidates the
// index, so this reports !ok until the next SetSearchQuery call rebuilds it).
func (m *Manager) SearchResultCount() (int, bool) {
	if !m.searchActive || m.searchResults == nil {
		return 0, false
	}
	return m.searchResults.Len(), true
}

// --- Mark / Toggle / Plan / Commit ---

// MarkInstall records an install intent for h and rebuilds the list.
func (m *Manager) MarkInstall(h pkgdb.Handle) {
	m.life.MarkInstall(h)
	m.RebuildList()
}

// MarkRemove records a remove intent for h and rebuilds the list.
func (m *Manager) MarkRemove(h pkgdb.Handle) {
	m.life.MarkRemove(h)
	m.RebuildList()
}

// Unmark clears any explicit intent for h and rebuilds the list.
func (m *Manager) Unmark(h pkgdb.Handle) {
	m.life.Unmark(h)
	m.RebuildList()
}

// Toggle runs the cascading mark/unmark engine and rebuilds the list.
func (m *Manager) Toggle(ctx context.Context, h pkgdb.Handle) (toggle.Result, error) {
	result, err := toggle.Toggle(ctx, m.cache, m.life, h)
	m.RebuildList()
	return result, err
}

// MarkAllUpgradable marks every currently upgradable package for install
// (which the Planner classifies as Upgrade, since it is already installed).
func (m *Manager) MarkAllUpgradable() {
	raw, err := m.cache.Packages(pkgdb.SortDefault)
	if err != nil {
		return
	}
	for _, p := range raw {
		if !p.IsUpgradable {
			continue
		}
		m.life.MarkInstall(p.Handle)
	}
	m.RebuildList()
}

// Reset clears all intent, returns the lifecycle to Clean, and rebuilds.
func (m *Manager) Reset() {
	m.life.Reset()
	m.RebuildList()
}

// ComputePlan runs the planner and rebuilds the list from the resulting
// changeset.
func (m *Manager) ComputePlan(ctx context.Context) (*planner.Planned, error) {
	p, err := m.life.Plan(ctx)
	m.RebuildList()
	return p, err
}

// Commit probes the lock files, executes the transaction via sink, and
// afterward, regardless of outcome, invalidates the search index and
// rebuilds the list. It runs no cache refresh itself: the cache re-syncs
// with the backend only when the commit succeeds.
func (m *Manager) Commit(ctx context.Context, sink progress.Sink) error {
	if err := lockfile.Probe(m.lockPaths); err != nil {
		return fmt.Errorf("%w: %v", ErrLockHeld, err)
	}

	err := m.life.Commit(ctx, sink)
	m.invalidateSearch()
	m.RebuildList()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCommitFailed, err)
	}
	return nil
}

// UpdateWithProgress is a convenience wrapper: plan if needed, then commit,
// streaming acquire/install callbacks through sink.
func (m *Manager) UpdateWithProgress(ctx context.Context, sink progress.Sink) error {
	return m.Commit(ctx, sink)
}

// --- Per-package intent queries ---

// IsUserMarked reports whether h has an explicit, non-Default intent.
func (m *Manager) IsUserMarked(h pkgdb.Handle) bool { return m.life.IsUserMarked(h) }

// UserIntent returns the explicit intent recorded for h.
func (m *Manager) UserIntent(h pkgdb.Handle) intent.Intent { return m.life.UserIntent(h) }

// --- Dependencies / Changelog ---

// GetDependencies returns h's forward dependency edges.
func (m *Manager) GetDependencies(h pkgdb.Handle) []pkgdb.DepEdge {
	pkg, ok := m.cache.GetByHandle(h)
	if !ok {
		return nil
	}
	return m.cache.Dependencies(pkg.Fullname)
}

// GetReverseDependencies returns the packages that depend on h.
func (m *Manager) GetReverseDependencies(h pkgdb.Handle) []pkgdb.DepEdge {
	pkg, ok := m.cache.GetByHandle(h)
	if !ok {
		return nil
	}
	return m.cache.ReverseDependencies(pkg.Fullname)
}

// FetchChangelog fetches h's changelog text, or a single-line error slot
// if the fetch fails — an unavailable changelog is not a fatal condition.
func (m *Manager) FetchChangelog(ctx context.Context, h pkgdb.Handle) []string {
	pkg, ok := m.cache.GetByHandle(h)
	if !ok {
		return []string{"package not found"}
	}
	lines, err := changelog.Fetch(ctx, pkg.Name)
	if err != nil {
		return []string{err.Error()}
	}
	return lines
}

// BuildMarkPreview assembles the confirmation-modal payload following a
// mark that pulled in additional packages.
func (m *Manager) BuildMarkPreview(h pkgdb.Handle, additional []pkgdb.Handle) toggle.MarkPreview {
	planned, _ := m.life.PlannedChanges()
	return toggle.BuildMarkPreview(m.cache, planned, h, additional)
}

// Cache exposes the underlying Cache Adapter for callers (debugdump,
// cmd/packtui-debug) that need direct handle/fullname resolution beyond
// the narrow upward API.
func (m *Manager) Cache() *pkgdb.Cache { return m.cache }

// IntentStore exposes the underlying Intent Store for the debug dump
// harness to inspect persisted mark state directly.
func (m *Manager) IntentStore() *intent.Store { return m.store }
