package manager

import (
	"context"
	"errors"
	"testing"

	"github.com/manasm11/packtui/internal/pkgdb"
	"github.com/manasm11/packtui/internal/progress"
	"github.com/manasm11/packtui/internal/projection"
)

func newTestManager(t *testing.T) (*Manager, *pkgdb.FakeBackend) {
	t.Helper()
	backend := pkgdb.NewFakeBackend("amd64")
	m := New(backend)
	m.lockPaths = nil // no real lock files to probe in a unit test
	if err := m.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	return m, backend
}

func TestLoadPopulatesListAndStaysClean(t *testing.T) {
	backend := pkgdb.NewFakeBackend("amd64")
	backend.AddPackage(pkgdb.RawPackage{Fullname: "bash:amd64", Name: "bash", IsInstalled: true})
	m := New(backend)
	m.lockPaths = nil

	if err := m.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !m.IsClean() {
		t.Fatal("manager should start Clean after Load")
	}
	if m.PackageCount() != 1 {
		t.Fatalf("PackageCount = %d, want 1", m.PackageCount())
	}
	if len(m.List()) != 1 {
		t.Fatalf("List() len = %d, want 1", len(m.List()))
	}
}

func TestMarkInstallTransitionsToDirtyAndRebuildsList(t *testing.T) {
	m, backend := newTestManager(t)
	backend.AddPackage(pkgdb.RawPackage{Fullname: "pkg-a:amd64", Name: "pkg-a", IsInstalled: false})
	if err := m.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	pkg, ok := m.Cache().Get("pkg-a:amd64")
	if !ok {
		t.Fatal("pkg-a not found")
	}
	m.MarkInstall(pkg.Handle)

	if !m.IsDirty() {
		t.Fatalf("expected Dirty after MarkInstall, got %v", m.IsClean())
	}
	if !m.IsUserMarked(pkg.Handle) {
		t.Fatal("expected pkg-a to be user-marked")
	}
}

func TestApplyFilterNarrowsList(t *testing.T) {
	m, backend := newTestManager(t)
	backend.AddPackage(pkgdb.RawPackage{Fullname: "pkg-a:amd64", Name: "pkg-a", IsInstalled: true, IsUpgradable: true})
	backend.AddPackage(pkgdb.RawPackage{Fullname: "pkg-b:amd64", Name: "pkg-b", IsInstalled: true})
	if err := m.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	m.ApplyFilter(projection.CategoryUpgradable)
	rows := m.List()
	if len(rows) != 1 || rows[0].DisplayName != "pkg-a" {
		t.Fatalf("filtered rows = %+v, want only pkg-a", rows)
	}

	if got := m.FilterCount(projection.CategoryAll); got != 2 {
		t.Fatalf("FilterCount(All) = %d, want 2", got)
	}
}

func TestSearchQueryLifecycle(t *testing.T) {
	m, backend := newTestManager(t)
	backend.AddPackage(pkgdb.RawPackage{Fullname: "libcurl4:amd64", Name: "libcurl4", Summary: "transfer library"})
	backend.AddPackage(pkgdb.RawPackage{Fullname: "vim:amd64", Name: "vim", Summary: "editor"})
	if err := m.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	if err := m.SetSearchQuery(context.Background(), "lib"); err != nil {
		t.Fatalf("SetSearchQuery: %v", err)
	}
	if count, ok := m.SearchResultCount(); !ok || count != 1 {
		t.Fatalf("SearchResultCount = (%d, %v), want (1, true)", count, ok)
	}
	if len(m.List()) != 1 {
		t.Fatalf("List() len = %d, want 1 while searching", len(m.List()))
	}

	m.ClearSearch()
	if q := m.SearchQuery(); q != "" {
		t.Fatalf("SearchQuery after clear = %q, want empty", q)
	}
	if len(m.List()) != 2 {
		t.Fatalf("List() len after clear = %d, want 2", len(m.List()))
	}
}

func TestCommitFailurePropagatesErrCommitFailed(t *testing.T) {
	m, backend := newTestManager(t)
	backend.AddPackage(pkgdb.RawPackage{Fullname: "pkg-a:amd64", Name: "pkg-a"})
	if err := m.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	pkg, _ := m.Cache().Get("pkg-a:amd64")
	m.MarkInstall(pkg.Handle)

	backend.CommitErr = errors.New("dpkg exited 1")
	sink := progress.NewSharedState(0)
	err := m.Commit(context.Background(), sink)
	if !errors.Is(err, ErrCommitFailed) {
		t.Fatalf("Commit error = %v, want ErrCommitFailed", err)
	}
	if !m.IsPlanned() {
		t.Fatal("expected Planned to be preserved after a failed commit")
	}
	if m.HasMarks() {
		t.Fatal("Intent must be cleared unconditionally after commit, success or failure")
	}
}

func TestResetReturnsToCleanAndClearsList(t *testing.T) {
	m, backend := newTestManager(t)
	backend.AddPackage(pkgdb.RawPackage{Fullname: "pkg-a:amd64", Name: "pkg-a"})
	if err := m.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	pkg, _ := m.Cache().Get("pkg-a:amd64")
	m.MarkInstall(pkg.Handle)
	m.Reset()

	if !m.IsClean() {
		t.Fatal("expected Clean after Reset")
	}
	if m.HasMarks() {
		t.Fatal("expected no marks after Reset")
	}
}
