// Package toggle implements mark/unmark-with-cascade: the one place the
// spec calls "where the subtle logic lives". Unmarking a pure dependency
// is translated back into unmarking whichever user-requested package
// pulled it in, found by walking each user-marked package's Depends/PreDepends
// edges forward until the dependency is reached.
package toggle

import (
	"context"
	"fmt"
	"strings"

	"github.com/manasm11/packtui/internal/pkgdb"
	"github.com/manasm11/packtui/internal/planner"
	"github.com/manasm11/packtui/internal/txn"
)

// resultKind tags which variant a Result holds; it is an unexported field
// of Result, so only this package can construct each kind.
type resultKind int

const (
	kindMarked resultKind = iota
	kindUnmarked
	kindNoChange
)

// Result is the outcome of a Toggle call: exactly one of Marked, Unmarked,
// or NoChange. Use the IsX accessors or the Handle/Additional/AlsoUnmarked
// fields, which are only meaningful for the matching kind.
type Result struct {
	kind         resultKind
	Handle       pkgdb.Handle
	Additional   []pkgdb.Handle // populated only when IsMarked()
	AlsoUnmarked []pkgdb.Handle // populated only when IsUnmarked()
}

func (r Result) IsMarked() bool   { return r.kind == kindMarked }
func (r Result) IsUnmarked() bool { return r.kind == kindUnmarked }
func (r Result) IsNoChange() bool { return r.kind == kindNoChange }

// MarkPreview backs the confirmation modal shown after a mark: the set of
// additional packages pulled in, plus the byte cost, so the UI can show
// "this will also install N packages (X MB)" before the user accepts.
type MarkPreview struct {
	Handle           pkgdb.Handle
	Additional       []pkgdb.Handle
	AdditionalBytes  uint64
	TotalDownload    uint64
	TotalSizeChange  int64
}

// Toggle marks h if unmarked, or unmarks it (with cascade) if marked. It
// leaves the lifecycle Planned, or Clean when Intent ends up empty, so the
// caller's list reflects true marked-or-not status afterward.
func Toggle(ctx context.Context, cache *pkgdb.Cache, l *txn.Lifecycle, h pkgdb.Handle) (Result, error) {
	planned, err := ensurePlanned(ctx, l)
	if err != nil {
		return Result{}, err
	}

	if !planned.HasChange(h) {
		return markPath(ctx, cache, l, h)
	}
	return unmarkPath(ctx, cache, l, h)
}

func ensurePlanned(ctx context.Context, l *txn.Lifecycle) (*planner.Planned, error) {
	if p, ok := l.PlannedChanges(); ok {
		return p, nil
	}
	p, err := l.Plan(ctx)
	if err != nil {
		return nil, fmt.Errorf("toggle: %w", err)
	}
	return p, nil
}

func markPath(ctx context.Context, cache *pkgdb.Cache, l *txn.Lifecycle, h pkgdb.Handle) (Result, error) {
	before := changeSet(mustPlanned(l))

	l.MarkInstall(h)
	planned, err := l.Plan(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("toggle: mark: %w", err)
	}

	var additional []pkgdb.Handle
	for _, c := range planned.Changes {
		if c.Handle == h {
			continue
		}
		if !before[c.Handle] {
			additional = append(additional, c.Handle)
		}
	}

	return Result{kind: kindMarked, Handle: h, Additional: additional}, nil
}

func unmarkPath(ctx context.Context, cache *pkgdb.Cache, l *txn.Lifecycle, h pkgdb.Handle) (Result, error) {
	if l.IsUserMarked(h) {
		before := changeSet(mustPlanned(l))
		l.Unmark(h)
		planned, err := l.Plan(ctx)
		if err != nil {
			return Result{}, fmt.Errorf("toggle: unmark: %w", err)
		}
		after := changeSet(planned)

		var alsoUnmarked []pkgdb.Handle
		for hdl := range before {
			if hdl == h {
				continue
			}
			if !after[hdl] {
				alsoUnmarked = append(alsoUnmarked, hdl)
			}
		}
		return Result{kind: kindUnmarked, Handle: h, AlsoUnmarked: alsoUnmarked}, nil
	}

	originators := findOriginators(cache, l, h)
	if len(originators) == 0 {
		return Result{kind: kindNoChange, Handle: h}, nil
	}

	for _, u := range originators {
		l.Unmark(u)
	}
	if _, err := l.Plan(ctx); err != nil {
		return Result{}, fmt.Errorf("toggle: unmark cascade: %w", err)
	}

	return Result{kind: kindUnmarked, Handle: h, AlsoUnmarked: originators}, nil
}

// findOriginators computes R = {u in Intent : u transitively depends on h},
// walking Depends/PreDepends edges via the cache and matching base names
// (arch suffix stripped) to tolerate multi-arch duplicates.
func findOriginators(cache *pkgdb.Cache, l *txn.Lifecycle, h pkgdb.Handle) []pkgdb.Handle {
	targetPkg, ok := cache.GetByHandle(h)
	if !ok {
		return nil
	}
	targetBase := baseName(targetPkg.Fullname)

	var originators []pkgdb.Handle
	for _, u := range userMarkedHandles(l) {
		if dependsOnTransitively(cache, u, targetBase, make(map[pkgdb.Handle]bool)) {
			originators = append(originators, u)
		}
	}
	return originators
}

func dependsOnTransitively(cache *pkgdb.Cache, from pkgdb.Handle, targetBase string, visited map[pkgdb.Handle]bool) bool {
	if visited[from] {
		return false
	}
	visited[from] = true

	pkg, ok := cache.GetByHandle(from)
	if !ok {
		return false
	}

	for _, edge := range cache.Dependencies(pkg.Fullname) {
		if edge.Kind != "Depends" && edge.Kind != "PreDepends" {
			continue
		}
		if baseName(edge.Target) == targetBase {
			return true
		}
		depHandle, ok := lookupHandle(cache, edge.Target)
		if !ok {
			continue
		}
		if dependsOnTransitively(cache, depHandle, targetBase, visited) {
			return true
		}
	}
	return false
}

func lookupHandle(cache *pkgdb.Cache, fullname string) (pkgdb.Handle, bool) {
	pkg, ok := cache.Get(fullname)
	if !ok {
		return pkgdb.InvalidHandle, false
	}
	return pkg.Handle, true
}

func baseName(fullname string) string {
	if i := strings.IndexByte(fullname, ':'); i >= 0 {
		return fullname[:i]
	}
	return fullname
}

func mustPlanned(l *txn.Lifecycle) *planner.Planned {
	p, _ := l.PlannedChanges()
	return p
}

func changeSet(p *planner.Planned) map[pkgdb.Handle]bool {
	set := make(map[pkgdb.Handle]bool)
	if p == nil {
		return set
	}
	for _, c := range p.Changes {
		set[c.Handle] = true
	}
	return set
}

func userMarkedHandles(l *txn.Lifecycle) []pkgdb.Handle {
	// Lifecycle doesn't expose Intent iteration directly to keep its API
	// narrow; a fresh Planned changeset's UserRequested entries are its
	// equivalent, since reason=UserRequested iff the handle is in Intent.
	p, ok := l.PlannedChanges()
	if !ok {
		return nil
	}
	var out []pkgdb.Handle
	for _, c := range p.Changes {
		if c.Reason == planner.UserRequested {
			out = append(out, c.Handle)
		}
	}
	return out
}

// BuildMarkPreview assembles the confirmation-modal payload for a mark
// that was just performed: the additional handles pulled in, their
// download size, and the plan's current aggregates.
func BuildMarkPreview(cache *pkgdb.Cache, planned *planner.Planned, h pkgdb.Handle, additional []pkgdb.Handle) MarkPreview {
	var additionalBytes uint64
	for _, a := range additional {
		if pkg, ok := cache.GetByHandle(a); ok {
			additionalBytes += pkg.DownloadSize
		}
	}
	preview := MarkPreview{Handle: h, Additional: additional, AdditionalBytes: additionalBytes}
	if planned != nil {
		preview.TotalDownload = planned.DownloadSize
		preview.TotalSizeChange = planned.InstallSizeChange
	}
	return preview
}
