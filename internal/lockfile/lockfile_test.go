package lockfile

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/gofrs/flock"
)

func TestProbeSucceedsWhenPathMissing(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "does-not-exist", "lock")
	if err := Probe([]string{path}); err != nil {
		t.Fatalf("Probe on a path whose parent directory is absent = %v, want nil", err)
	}
}

func TestProbeReportsErrHeldWhenLocked(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lock")

	holder := flock.New(path)
	locked, err := holder.TryLock()
	if err != nil || !locked {
		t.Fatalf("test setup: could not acquire holder lock: locked=%v err=%v", locked, err)
	}
	defer holder.Unlock()

	err = Probe([]string{path})
	var held *ErrHeld
	if !errors.As(err, &held) {
		t.Fatalf("Probe on a held lock = %v, want *ErrHeld", err)
	}
	if held.Path != path {
		t.Fatalf("ErrHeld.Path = %q, want %q", held.Path, path)
	}
}

func TestProbeReleasesItsOwnLock(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lock")

	if err := Probe([]string{path}); err != nil {
		t.Fatalf("first Probe: %v", err)
	}
	if err := Probe([]string{path}); err != nil {
		t.Fatalf("second Probe (must not still hold its own lock): %v", err)
	}
}
