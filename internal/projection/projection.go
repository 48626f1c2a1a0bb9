// Package projection builds the displayed package list: filter, enrich,
// sort, and the column widths the UI's table needs to lay itself out.
package projection

import (
	"sort"
	"strconv"

	"github.com/manasm11/packtui/internal/intent"
	"github.com/manasm11/packtui/internal/pkgdb"
	"github.com/manasm11/packtui/internal/planner"
	"github.com/manasm11/packtui/internal/searchindex"
)

// Status is the displayed package state, overlaying AptState with Intent
// and the Planner's changeset.
type Status int

const (
	Installed Status = iota
	NotInstalled
	Upgradable
	MarkedForInstall
	MarkedForUpgrade
	MarkedForRemove
	Keep
	Broken
)

func (s Status) String() string {
	switch s {
	case Installed:
		return "installed"
	case NotInstalled:
		return "not installed"
	case Upgradable:
		return "upgradable"
	case MarkedForInstall:
		return "+install"
	case MarkedForUpgrade:
		return "+upgrade"
	case MarkedForRemove:
		return "-remove"
	case Keep:
		return "keep"
	case Broken:
		return "broken"
	default:
		return "?"
	}
}

// Category filters the admitted package set.
type Category int

const (
	CategoryAll Category = iota
	CategoryUpgradable
	CategoryMarkedChanges
	CategoryInstalled
	CategoryNotInstalled
)

// SortKey selects the column rows are ordered by.
type SortKey int

const (
	SortByName SortKey = iota
	SortBySection
	SortByInstalledVersion
	SortByCandidateVersion
)

// SortConfig configures phase 3 of Rebuild.
type SortConfig struct {
	By        SortKey
	Ascending bool
}

// PackageInfo is one row of the projected list.
type PackageInfo struct {
	Handle           pkgdb.Handle
	Fullname         string
	DisplayName      string
	Section          string
	InstalledVersion string
	CandidateVersion string
	InstalledSize    uint64
	DownloadSize     uint64
	Summary          string
	Architecture     string
	Status           Status
}

// ColumnWidths is the max content width per visible column, headers
// supplying a floor so narrow lists don't collapse the header text.
type ColumnWidths struct {
	Name             int
	Section          int
	InstalledVersion int
	CandidateVersion int
	Status           int
}

// NewColumnWidths seeds widths from header labels.
func NewColumnWidths() ColumnWidths {
	return ColumnWidths{
		Name:             len("Name"),
		Section:          len("Section"),
		InstalledVersion: len("Installed"),
		CandidateVersion: len("Candidate"),
		Status:           len("Status"),
	}
}

func (w *ColumnWidths) observe(row PackageInfo) {
	grow(&w.Name, len(row.DisplayName))
	grow(&w.Section, len(row.Section))
	grow(&w.InstalledVersion, len(row.InstalledVersion))
	grow(&w.CandidateVersion, len(row.CandidateVersion))
	grow(&w.Status, len(row.Status.String()))
}

func grow(field *int, n int) {
	if n > *field {
		*field = n
	}
}

// Rebuild implements the three phases of list projection: filter, enrich,
// sort. searchResults may be nil, meaning "no active search" — distinct
// from a non-nil empty set, which means "active search, zero matches."
func Rebuild(
	cache *pkgdb.Cache,
	store *intent.Store,
	planned *planner.Planned,
	filter Category,
	searchResults *searchindex.ResultSet,
	sort_ SortConfig,
) ([]PackageInfo, ColumnWidths) {
	raw, _ := cache.Packages(pkgdb.SortDefault)

	rows := make([]PackageInfo, 0, len(raw))
	nameCounts := make(map[string]int)

	for _, rp := range raw {
		if !admits(rp, filter, cache, searchResults) {
			continue
		}

		pkg, ok := cache.Get(rp.Fullname)
		if !ok {
			continue
		}

		status := baseStatus(rp)
		if store.Contains(pkg.Handle) {
			status = overlayIntent(store.Get(pkg.Handle), rp.IsInstalled)
		} else if planned != nil {
			if change, found := planned.Find(pkg.Handle); found {
				status = overlayAction(change.Action)
			}
		}

		display := cache.DisplayName(rp.Fullname)
		nameCounts[display]++

		rows = append(rows, PackageInfo{
			Handle:           pkg.Handle,
			Fullname:         rp.Fullname,
			DisplayName:      display,
			Section:          rp.Section,
			InstalledVersion: rp.InstalledVersion,
			CandidateVersion: rp.CandidateVersion,
			InstalledSize:    rp.InstalledSize,
			DownloadSize:     rp.DownloadSize,
			Summary:          rp.Summary,
			Architecture:     rp.Architecture,
			Status:           status,
		})
	}

	// Multi-arch disambiguation: a display name colliding across more
	// than one row (e.g. a native and a foreign-arch build) falls back
	// to showing the full "name:arch" form so rows stay distinguishable.
	for i, row := range rows {
		if nameCounts[row.DisplayName] > 1 {
			rows[i].DisplayName = row.Fullname
		}
	}

	sortRows(rows, sort_)

	widths := NewColumnWidths()
	for _, row := range rows {
		widths.observe(row)
	}

	return rows, widths
}

func admits(rp pkgdb.RawPackage, filter Category, cache *pkgdb.Cache, searchResults *searchindex.ResultSet) bool {
	switch filter {
	case CategoryUpgradable:
		if !rp.IsUpgradable {
			return false
		}
	case CategoryMarkedChanges:
		if !(rp.MarkedInstall || rp.MarkedUpgrade || rp.MarkedDelete) {
			return false
		}
	case CategoryInstalled:
		if !rp.IsInstalled {
			return false
		}
	case CategoryNotInstalled:
		if rp.IsInstalled {
			return false
		}
	}

	if searchResults != nil {
		base := cache.DisplayName(rp.Fullname)
		if !searchResults.Contains(base) {
			return false
		}
	}
	return true
}

func baseStatus(rp pkgdb.RawPackage) Status {
	switch {
	case rp.IsUpgradable:
		return Upgradable
	case rp.IsInstalled:
		return Installed
	default:
		return NotInstalled
	}
}

func overlayIntent(i intent.Intent, isInstalled bool) Status {
	switch i {
	case intent.Install:
		if isInstalled {
			return MarkedForUpgrade
		}
		return MarkedForInstall
	case intent.Remove:
		return MarkedForRemove
	case intent.Hold:
		return Keep
	default:
		if isInstalled {
			return Installed
		}
		return NotInstalled
	}
}

func overlayAction(a planner.Action) Status {
	switch a {
	case planner.Install:
		return MarkedForInstall
	case planner.Upgrade:
		return MarkedForUpgrade
	case planner.Remove:
		return MarkedForRemove
	default:
		return Broken
	}
}

func sortRows(rows []PackageInfo, cfg SortConfig) {
	less := func(i, j int) bool {
		var a, b string
		switch cfg.By {
		case SortBySection:
			a, b = rows[i].Section, rows[j].Section
		case SortByInstalledVersion:
			a, b = rows[i].InstalledVersion, rows[j].InstalledVersion
		case SortByCandidateVersion:
			a, b = rows[i].CandidateVersion, rows[j].CandidateVersion
		default:
			a, b = rows[i].DisplayName, rows[j].DisplayName
		}
		if cfg.Ascending {
			return a < b
		}
		return a > b
	}
	sort.SliceStable(rows, less)
}

// FormatSize renders a byte count in the short apt-ish "12.3 MB" form,
// used by the UI's size columns.
func FormatSize(bytes uint64) string {
	const unit = 1024
	if bytes < unit {
		return strconv.FormatUint(bytes, 10) + " B"
	}
	div, exp := uint64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	units := []string{"kB", "MB", "GB", "TB"}
	return strconv.FormatFloat(float64(bytes)/float64(div), 'f', 1, 64) + " " + units[exp]
}
