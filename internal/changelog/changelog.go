// Package changelog fetches a package's changelog by spawning the
// system's changelog command, the one subprocess-shaped collaborator the
// engine still owns directly.
package changelog

import (
	"context"
	"os/exec"
	"strings"
	"time"
)

const fetchTimeout = 20 * time.Second

// Fetch runs "apt-get changelog <name>" and splits its stdout on newline.
// Not performance-critical, so no caching here; callers that want to
// avoid refetching should cache the result themselves.
func Fetch(ctx context.Context, name string) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "apt-get", "changelog", name)
	var stderr strings.Builder
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return nil, &FetchError{Name: name, Err: err, Output: string(out) + stderr.String()}
	}

	return emptyOutputLines(string(out)), nil
}

// emptyOutputLines splits raw changelog output into lines, substituting a
// sentinel line when the output is empty or whitespace-only.
func emptyOutputLines(out string) []string {
	if len(strings.TrimSpace(out)) == 0 {
		return []string{"No changelog available."}
	}
	var lines []string
	for _, line := range strings.Split(out, "\n") {
		lines = append(lines, line)
	}
	return lines
}

// FetchError describes a failed changelog fetch. This is not fatal: the
// caller slots a single error string into the lines it would otherwise
// display.
type FetchError struct {
	Name   string
	Err    error
	Output string
}

func (e *FetchError) Error() string {
	return "fetching changelog for " + e.Name + ": " + e.Err.Error()
}

func (e *FetchError) Unwrap() error { return e.Err }
