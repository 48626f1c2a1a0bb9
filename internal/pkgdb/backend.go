package pkgdb

import (
	"context"

	"github.com/manasm11/packtui/internal/progress"
)

// SortHint selects an iteration order from the backend.
type SortHint int

const (
	// SortDefault iterates packages in the backend's natural order.
	SortDefault SortHint = iota
	// SortUpgradableFirst restricts iteration to upgradable packages.
	SortUpgradableFirst
)

// RawPackage is the backend's view of a single package, as read directly
// off the native dpkg/apt cache objects before any projection or intent
// overlay is applied.
type RawPackage struct {
	Fullname         string
	Name             string
	Architecture     string
	Section          string
	Summary          string
	InstalledVersion string
	CandidateVersion string
	InstalledSize    uint64
	DownloadSize     uint64
	IsInstalled      bool
	IsUpgradable     bool
	MarkedInstall    bool
	MarkedUpgrade    bool
	MarkedDelete     bool
}

// DepEdge is a (dependency-kind, target base name) pair.
type DepEdge struct {
	Kind   string // "PreDepends", "Depends", "Recommends", ...
	Target string
}

// ConflictError describes one solver-reported conflict.
type ConflictError struct {
	Message string
}

// Backend is the native package library the Cache Adapter wraps: query,
// iterate, mark, resolve, commit. Only the Cache Adapter's internals and
// the Planner invoke the stateful marking methods.
type Backend interface {
	Load(ctx context.Context) error
	Refresh(ctx context.Context) error
	Packages(sort SortHint) ([]RawPackage, error)
	Get(fullname string) (RawPackage, bool)

	MarkInstall(fullname string)
	MarkRemove(fullname string)
	MarkKeep(fullname string)
	ClearAllMarks()

	Resolve(ctx context.Context) []ConflictError
	Changes() []RawPackage

	Commit(ctx context.Context, sink progress.Sink) error

	Dependencies(fullname string) []DepEdge
	ReverseDependencies(fullname string) []DepEdge

	NativeArch() string
}
