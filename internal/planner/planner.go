// Package planner translates user intent into native cache marks, invokes
// the solver, and reads the computed changeset back — the one place that
// touches the cache's native marking API end to end.
package planner

import (
	"context"
	"fmt"
	"sort"

	"github.com/manasm11/packtui/internal/intent"
	"github.com/manasm11/packtui/internal/pkgdb"
)

// Action is what a PlannedChange does to a package.
type Action int

const (
	Install Action = iota
	Upgrade
	Remove
	Downgrade
)

func (a Action) String() string {
	switch a {
	case Install:
		return "install"
	case Upgrade:
		return "upgrade"
	case Remove:
		return "remove"
	case Downgrade:
		return "downgrade"
	default:
		return "unknown"
	}
}

// Reason explains why a package appears in the changeset.
type Reason int

const (
	UserRequested Reason = iota
	Dependency
	AutoRemove
)

func (r Reason) String() string {
	switch r {
	case UserRequested:
		return "user-requested"
	case Dependency:
		return "dependency"
	case AutoRemove:
		return "auto-remove"
	default:
		return "unknown"
	}
}

// PlannedChange is a single action the solver wants to take on one package.
type PlannedChange struct {
	Handle       pkgdb.Handle
	Fullname     string
	Action       Action
	Reason       Reason
	DownloadSize uint64
	SizeChange   int64
}

// Planned is the solver's output: every change plus aggregates and any
// errors it reported. A non-empty Errors slice does not mean the plan is
// unusable — conflicts are recoverable per the error taxonomy.
type Planned struct {
	Changes           []PlannedChange
	DownloadSize      uint64
	InstallSizeChange int64
	Errors            []string
}

// HasChange reports whether h appears anywhere in the changeset.
func (p *Planned) HasChange(h pkgdb.Handle) bool {
	if p == nil {
		return false
	}
	for _, c := range p.Changes {
		if c.Handle == h {
			return true
		}
	}
	return false
}

// Find returns the PlannedChange for h, if any.
func (p *Planned) Find(h pkgdb.Handle) (PlannedChange, bool) {
	if p == nil {
		return PlannedChange{}, false
	}
	for _, c := range p.Changes {
		if c.Handle == h {
			return c, true
		}
	}
	return PlannedChange{}, false
}

// Plan performs the five-step algorithm: clear native marks, reapply every
// recorded intent, resolve, classify the resulting changeset, and sum
// aggregates. It is atomic with respect to the caller — no partial state
// is observable once Plan returns.
//
// Upgrade vs Install is decided by is_installed alone, not by which mark
// the backend reports, per the resolved classification question.
func Plan(ctx context.Context, cache *pkgdb.Cache, store *intent.Store) (*Planned, error) {
	cache.ClearAllMarks()

	for _, e := range store.Iter() {
		pkg, ok := cache.GetByHandle(e.Handle)
		if !ok {
			continue
		}
		switch e.Intent {
		case intent.Install:
			cache.MarkInstall(pkg.Fullname)
		case intent.Remove:
			cache.MarkRemove(pkg.Fullname)
		case intent.Hold:
			cache.MarkKeep(pkg.Fullname)
		}
	}

	var errs []string
	for _, c := range cache.Resolve(ctx) {
		errs = append(errs, c.Message)
	}

	raw := cache.Changes()
	changes := make([]PlannedChange, 0, len(raw))
	var totalDownload uint64
	var totalSizeChange int64

	for _, rp := range raw {
		pkg, ok := cache.Get(rp.Fullname)
		if !ok {
			continue
		}

		var action Action
		switch {
		case (rp.MarkedInstall || rp.MarkedUpgrade) && rp.IsInstalled:
			action = Upgrade
		case (rp.MarkedInstall || rp.MarkedUpgrade) && !rp.IsInstalled:
			action = Install
		case rp.MarkedDelete:
			action = Remove
		default:
			continue
		}

		userRequested := store.Contains(pkg.Handle)
		var reason Reason
		switch {
		case userRequested:
			reason = UserRequested
		case action == Remove:
			reason = AutoRemove
		default:
			reason = Dependency
		}

		var sizeChange int64
		var downloadSize uint64
		if action == Remove {
			sizeChange = -int64(rp.InstalledSize)
		} else {
			downloadSize = rp.DownloadSize
			sizeChange = int64(rp.InstalledSize)
		}

		changes = append(changes, PlannedChange{
			Handle:       pkg.Handle,
			Fullname:     rp.Fullname,
			Action:       action,
			Reason:       reason,
			DownloadSize: downloadSize,
			SizeChange:   sizeChange,
		})
		totalDownload += downloadSize
		totalSizeChange += sizeChange
	}

	sort.Slice(changes, func(i, j int) bool { return changes[i].Fullname < changes[j].Fullname })

	return &Planned{
		Changes:           changes,
		DownloadSize:      totalDownload,
		InstallSizeChange: totalSizeChange,
		Errors:            errs,
	}, nil
}

// FormatErrors condenses multiple solver diagnostics down to "first; and N
// more issue(s)", the one-line status message format spec'd for user-visible
// failures.
func FormatErrors(errs []string) string {
	switch len(errs) {
	case 0:
		return ""
	case 1:
		return errs[0]
	default:
		return fmt.Sprintf("%s; and %d more issue(s)", errs[0], len(errs)-1)
	}
}
