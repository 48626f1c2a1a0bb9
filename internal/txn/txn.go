// Package txn implements the mark-plan-commit state machine: a tagged
// union of Clean, Dirty, and Planned, held as a wrapper struct rather than
// as distinct consuming types, because the UI boundary in internal/tui
// must be able to hold and inspect the lifecycle on every keystroke — Go
// has no move semantics to make a consuming-transition style ergonomic
// there. An unexported "transitioning" kind is declared but never
// assigned, so it is never returned from any exported method.
package txn

import (
	"context"
	"errors"
	"fmt"

	"github.com/manasm11/packtui/internal/intent"
	"github.com/manasm11/packtui/internal/pkgdb"
	"github.com/manasm11/packtui/internal/planner"
	"github.com/manasm11/packtui/internal/progress"
)

// Kind names the three observable lifecycle states.
type Kind int

const (
	Clean Kind = iota
	Dirty
	Planned
	transitioning // unexported, never observable outside this package
)

func (k Kind) String() string {
	switch k {
	case Clean:
		return "clean"
	case Dirty:
		return "dirty"
	case Planned:
		return "planned"
	default:
		return "transitioning"
	}
}

// ErrIllegalTransition is returned by any method invoked in a state that
// does not accept it, for the subset of (state, gesture) pairs the spec
// does not define a fallback for.
var ErrIllegalTransition = errors.New("txn: illegal transition")

// Lifecycle holds the current state plus the last computed changeset, if
// any. The zero value is not ready to use; construct with New.
type Lifecycle struct {
	kind    Kind
	cache   *pkgdb.Cache
	store   *intent.Store
	planned *planner.Planned
}

// New creates a Lifecycle in Clean state over the given cache and intent
// store. The caller retains ownership of both; Lifecycle only reads and
// mutates them through their own APIs.
func New(cache *pkgdb.Cache, store *intent.Store) *Lifecycle {
	return &Lifecycle{kind: Clean, cache: cache, store: store}
}

func (l *Lifecycle) IsClean() bool   { return l.kind == Clean }
func (l *Lifecycle) IsDirty() bool   { return l.kind == Dirty }
func (l *Lifecycle) IsPlanned() bool { return l.kind == Planned }
func (l *Lifecycle) Kind() Kind      { return l.kind }

// PlannedChanges returns the last computed changeset and whether one exists.
func (l *Lifecycle) PlannedChanges() (*planner.Planned, bool) {
	if l.kind != Planned || l.planned == nil {
		return nil, false
	}
	return l.planned, true
}

// PlanErrors returns the last plan's solver diagnostics, if any.
func (l *Lifecycle) PlanErrors() []string {
	if l.planned == nil {
		return nil
	}
	return l.planned.Errors
}

// HasMarks reports whether any explicit user intent is recorded.
func (l *Lifecycle) HasMarks() bool {
	return l.store.Len() > 0
}

// IsUserMarked reports whether h has an explicit, non-Default intent.
func (l *Lifecycle) IsUserMarked(h pkgdb.Handle) bool {
	return l.store.Contains(h)
}

// UserIntent returns the explicit intent recorded for h.
func (l *Lifecycle) UserIntent(h pkgdb.Handle) intent.Intent {
	return l.store.Get(h)
}

func (l *Lifecycle) afterIntentChange() {
	l.planned = nil
	if l.store.Len() == 0 {
		l.kind = Clean
	} else {
		l.kind = Dirty
	}
}

// MarkInstall records an install intent for h. Legal from any state.
func (l *Lifecycle) MarkInstall(h pkgdb.Handle) {
	l.store.Set(h, intent.Install)
	l.afterIntentChange()
}

// MarkRemove records a remove intent for h. Legal from any state.
func (l *Lifecycle) MarkRemove(h pkgdb.Handle) {
	l.store.Set(h, intent.Remove)
	l.afterIntentChange()
}

// MarkKeep records a hold intent for h. Legal from any state.
func (l *Lifecycle) MarkKeep(h pkgdb.Handle) {
	l.store.Set(h, intent.Hold)
	l.afterIntentChange()
}

// Unmark clears any explicit intent for h. Stays Dirty unless Intent
// becomes empty, in which case the state returns to Clean.
func (l *Lifecycle) Unmark(h pkgdb.Handle) {
	l.store.Clear(h)
	l.afterIntentChange()
}

// Reset clears all intent and returns to Clean. Legal from any state.
func (l *Lifecycle) Reset() {
	l.store.ClearAll()
	l.cache.ClearAllMarks()
	l.kind = Clean
	l.planned = nil
}

// Plan runs the planner and transitions to Planned. Legal from Dirty or
// Planned (re-planning); from Clean (empty Intent) it leaves the lifecycle
// Clean with no stored changeset.
func (l *Lifecycle) Plan(ctx context.Context) (*planner.Planned, error) {
	p, err := planner.Plan(ctx, l.cache, l.store)
	if err != nil {
		return nil, fmt.Errorf("txn: plan: %w", err)
	}
	l.planned = p
	// An empty Intent necessarily resolves to an empty changeset, so this
	// is the Clean state, not a degenerate Planned-with-nothing-in-it —
	// keeps is_clean() <=> Intent empty <=> planned_changes() empty/None
	// a true three-way equivalence (Testable Property 2).
	if l.store.Len() == 0 {
		l.kind = Clean
		l.planned = nil
	} else {
		l.kind = Planned
	}
	return p, nil
}

// Modify drops the current changeset and returns to Dirty, keeping Intent
// intact. Legal only from Planned.
func (l *Lifecycle) Modify() error {
	if l.kind != Planned {
		return ErrIllegalTransition
	}
	l.planned = nil
	if l.store.Len() == 0 {
		l.kind = Clean
	} else {
		l.kind = Dirty
	}
	return nil
}

// Commit executes the transaction. If the lifecycle is Dirty it implicitly
// plans first, the one documented fallback. From Clean there is nothing to
// commit, so it's a successful no-op that leaves the lifecycle Clean.
// Intent is cleared unconditionally on return from an actual commit,
// success or failure, because partial on-disk state after a failed commit
// cannot be safely reconciled with Intent — the caller should refresh.
func (l *Lifecycle) Commit(ctx context.Context, sink progress.Sink) error {
	if l.kind == Clean {
		return nil
	}
	if l.kind == Dirty {
		if _, err := l.Plan(ctx); err != nil {
			return err
		}
	}
	if l.kind != Planned {
		return ErrIllegalTransition
	}

	err := l.cache.Commit(ctx, sink)
	l.store.ClearAll()

	if err != nil {
		l.planned = nil
		l.kind = Planned
		return fmt.Errorf("txn: commit: %w", err)
	}

	l.planned = nil
	l.kind = Clean
	return nil
}
