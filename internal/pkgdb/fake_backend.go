package pkgdb

import (
	"context"
	"sort"

	"github.com/manasm11/packtui/internal/progress"
)

// FakeBackend is an in-memory Backend used by every test in this repo: it
// records calls and answers from a small fixture instead of touching the
// real system.
type FakeBackend struct {
	arch     string
	packages map[string]*RawPackage
	deps     map[string][]DepEdge
	rdeps    map[string][]DepEdge

	ResolveErrors []ConflictError // returned verbatim by every Resolve call while set
	CommitErr     error
	RefreshCount  int
}

// NewFakeBackend creates an empty fake with the given native architecture.
func NewFakeBackend(arch string) *FakeBackend {
	return &FakeBackend{
		arch:     arch,
		packages: make(map[string]*RawPackage),
		deps:     make(map[string][]DepEdge),
		rdeps:    make(map[string][]DepEdge),
	}
}

// AddPackage seeds the fixture with a package record (copied).
func (f *FakeBackend) AddPackage(p RawPackage) {
	cp := p
	f.packages[p.Fullname] = &cp
}

// AddDependency records a forward dependency edge from 'from' to 'target',
// and the mirrored reverse edge.
func (f *FakeBackend) AddDependency(from, kind, target string) {
	f.deps[from] = append(f.deps[from], DepEdge{Kind: kind, Target: target})
	f.rdeps[target] = append(f.rdeps[target], DepEdge{Kind: kind, Target: from})
}

func (f *FakeBackend) Load(ctx context.Context) error    { return nil }
func (f *FakeBackend) Refresh(ctx context.Context) error { f.RefreshCount++; return nil }

func (f *FakeBackend) Packages(sort_ SortHint) ([]RawPackage, error) {
	var out []RawPackage
	for _, p := range f.packages {
		if sort_ == SortUpgradableFirst && !p.IsUpgradable {
			continue
		}
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Fullname < out[j].Fullname })
	return out, nil
}

func (f *FakeBackend) Get(fullname string) (RawPackage, bool) {
	p, ok := f.packages[fullname]
	if !ok {
		return RawPackage{}, false
	}
	return *p, true
}

func (f *FakeBackend) MarkInstall(fullname string) {
	p, ok := f.packages[fullname]
	if !ok {
		return
	}
	if p.IsInstalled {
		p.MarkedUpgrade = true
	} else {
		p.MarkedInstall = true
	}
	p.MarkedDelete = false
}

func (f *FakeBackend) MarkRemove(fullname string) {
	p, ok := f.packages[fullname]
	if !ok {
		return
	}
	p.MarkedDelete = true
	p.MarkedInstall = false
	p.MarkedUpgrade = false
}

func (f *FakeBackend) MarkKeep(fullname string) {
	p, ok := f.packages[fullname]
	if !ok {
		return
	}
	p.MarkedInstall = false
	p.MarkedUpgrade = false
	p.MarkedDelete = false
}

func (f *FakeBackend) ClearAllMarks() {
	for _, p := range f.packages {
		p.MarkedInstall = false
		p.MarkedUpgrade = false
		p.MarkedDelete = false
	}
}

// Resolve returns ResolveErrors if set, without expanding anything.
// Otherwise it applies fixture-declared dependency expansion: the targets
// of every dependency edge (of any kind) from a package marked for install
// or upgrade get marked too, computed to a fixed point.
func (f *FakeBackend) Resolve(ctx context.Context) []ConflictError {
	if len(f.ResolveErrors) > 0 {
		errs := f.ResolveErrors
		return errs
	}
	changed := true
	for changed {
		changed = false
		for name, edges := range f.deps {
			p, ok := f.packages[name]
			if !ok || !(p.MarkedInstall || p.MarkedUpgrade) {
				continue
			}
			for _, e := range edges {
				dep, ok := f.packages[e.Target]
				if !ok {
					continue
				}
				if !dep.MarkedInstall && !dep.MarkedUpgrade && !dep.MarkedDelete {
					if dep.IsInstalled {
						dep.MarkedUpgrade = true
					} else {
						dep.MarkedInstall = true
					}
					changed = true
				}
			}
		}
	}
	return nil
}

func (f *FakeBackend) Changes() []RawPackage {
	var out []RawPackage
	for _, p := range f.packages {
		if p.MarkedInstall || p.MarkedUpgrade || p.MarkedDelete {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Fullname < out[j].Fullname })
	return out
}

func (f *FakeBackend) Commit(ctx context.Context, sink progress.Sink) error {
	if f.CommitErr != nil {
		return f.CommitErr
	}
	sink.Start()
	for _, p := range f.Changes() {
		sink.Fetch(p.Fullname)
		sink.Done(p.Fullname)
	}
	sink.Stop()
	i := 0
	changes := f.Changes()
	for _, p := range changes {
		i++
		sink.StatusChanged(p.Fullname, i, len(changes), progress.InstallActionUnpacking)
	}
	for _, p := range changes {
		if p.MarkedDelete {
			delete(f.packages, p.Fullname)
			continue
		}
		stored := f.packages[p.Fullname]
		stored.IsInstalled = true
		stored.IsUpgradable = false
		stored.MarkedInstall = false
		stored.MarkedUpgrade = false
		stored.InstalledVersion = stored.CandidateVersion
	}
	return nil
}

func (f *FakeBackend) Dependencies(fullname string) []DepEdge        { return f.deps[fullname] }
func (f *FakeBackend) ReverseDependencies(fullname string) []DepEdge { return f.rdeps[fullname] }
func (f *FakeBackend) NativeArch() string                            { return f.arch }

var _ Backend = (*FakeBackend)(nil)
