// Package lockfile probes the dpkg/apt lock files with a non-blocking
// exclusive flock attempt before refresh or commit, the Go-ecosystem
// replacement for the raw libc flock the native tooling itself uses.
package lockfile

import (
	"fmt"

	"github.com/gofrs/flock"
)

// DefaultPaths are the lock files apt and dpkg hold during their own
// operations. Any one of them being held means another package manager
// is active.
var DefaultPaths = []string{
	"/var/lib/dpkg/lock-frontend",
	"/var/lib/dpkg/lock",
	"/var/lib/apt/lists/lock",
}

// ErrHeld is returned when any probed path is currently locked by another
// process.
type ErrHeld struct {
	Path string
}

func (e *ErrHeld) Error() string {
	return fmt.Sprintf("another package manager is running (lock held: %s)", e.Path)
}

// Probe attempts a non-blocking exclusive lock on each path in turn,
// releasing it immediately on success. It returns *ErrHeld for the first
// path it cannot lock, or nil if every path was free.
func Probe(paths []string) error {
	for _, p := range paths {
		fl := flock.New(p)
		locked, err := fl.TryLock()
		if err != nil {
			// Missing lock file or permission issue is not itself
			// contention; treat it as "not held" and move on.
			continue
		}
		if !locked {
			return &ErrHeld{Path: p}
		}
		_ = fl.Unlock()
	}
	return nil
}
