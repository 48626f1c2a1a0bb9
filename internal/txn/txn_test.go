package txn

import (
	"context"
	"testing"

	"github.com/manasm11/packtui/internal/intent"
	"github.com/manasm11/packtui/internal/pkgdb"
	"github.com/manasm11/packtui/internal/progress"
)

func newFixtureLifecycle() (*pkgdb.Cache, *Lifecycle, pkgdb.Handle) {
	backend := pkgdb.NewFakeBackend("amd64")
	backend.AddPackage(pkgdb.RawPackage{Fullname: "pkg-a:amd64", Name: "pkg-a", IsInstalled: false, CandidateVersion: "1.0"})
	cache := pkgdb.NewCache(backend)
	_ = cache.Load(context.Background())
	store := intent.NewStore()
	l := New(cache, store)
	pkg, _ := cache.Get("pkg-a:amd64")
	return cache, l, pkg.Handle
}

// TestCleanIffIntentEmpty asserts Testable Property 2.
func TestCleanIffIntentEmpty(t *testing.T) {
	_, l, h := newFixtureLifecycle()

	if !l.IsClean() || l.HasMarks() {
		t.Fatal("fresh lifecycle must be Clean with no marks")
	}

	l.MarkInstall(h)
	if l.IsClean() || !l.HasMarks() {
		t.Fatal("after MarkInstall, lifecycle must not be Clean and must have marks")
	}

	l.Unmark(h)
	if !l.IsClean() || l.HasMarks() {
		t.Fatal("after unmarking the only intent, lifecycle must return to Clean with no marks")
	}
}

func TestPlanTransitionsToPlannedAndModifyReturnsToDirty(t *testing.T) {
	_, l, h := newFixtureLifecycle()
	l.MarkInstall(h)

	if _, err := l.Plan(context.Background()); err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if !l.IsPlanned() {
		t.Fatal("expected Planned after Plan()")
	}

	if err := l.Modify(); err != nil {
		t.Fatalf("Modify: %v", err)
	}
	if !l.IsDirty() {
		t.Fatal("expected Dirty after Modify() with intent still present")
	}
	if !l.IsUserMarked(h) {
		t.Fatal("Modify must preserve Intent")
	}
}

func TestModifyIllegalOutsidePlanned(t *testing.T) {
	_, l, _ := newFixtureLifecycle()
	if err := l.Modify(); err != ErrIllegalTransition {
		t.Fatalf("Modify from Clean = %v, want ErrIllegalTransition", err)
	}
}

func TestCommitFromDirtyImplicitlyPlans(t *testing.T) {
	_, l, h := newFixtureLifecycle()
	l.MarkInstall(h)
	if !l.IsDirty() {
		t.Fatal("expected Dirty before commit")
	}

	sink := progress.NewSharedState(0)
	if err := l.Commit(context.Background(), sink); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if !l.IsClean() {
		t.Fatal("expected Clean after successful commit")
	}
	if l.HasMarks() {
		t.Fatal("Commit must clear Intent unconditionally")
	}
}

func TestCommitFromCleanIsNoOp(t *testing.T) {
	_, l, _ := newFixtureLifecycle()
	if !l.IsClean() {
		t.Fatal("expected fresh lifecycle to be Clean")
	}

	sink := progress.NewSharedState(0)
	if err := l.Commit(context.Background(), sink); err != nil {
		t.Fatalf("Commit from Clean: %v", err)
	}
	if !l.IsClean() {
		t.Fatal("Commit from Clean must leave the lifecycle Clean")
	}
}

func TestResetReturnsToClean(t *testing.T) {
	_, l, h := newFixtureLifecycle()
	l.MarkInstall(h)
	l.Reset()
	if !l.IsClean() || l.HasMarks() {
		t.Fatal("Reset must return to Clean with no marks")
	}
}
