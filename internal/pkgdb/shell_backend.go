package pkgdb

import (
	"bufio"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/manasm11/packtui/internal/progress"
	"github.com/rs/zerolog/log"
)

const shellTimeout = 30 * time.Second

// ShellBackend drives the real dpkg/apt toolchain via subprocesses with
// exec.CommandContext and a bounded timeout on each call. It is the adapter
// that talks to the OS's native package library.
type ShellBackend struct {
	mu       sync.Mutex
	arch     string
	snapshot map[string]*RawPackage
}

// NewShellBackend creates an adapter bound to the real system toolchain.
func NewShellBackend() *ShellBackend {
	return &ShellBackend{snapshot: make(map[string]*RawPackage)}
}

func (b *ShellBackend) Load(ctx context.Context) error {
	return b.Refresh(ctx)
}

func (b *ShellBackend) Refresh(ctx context.Context) error {
	arch, err := runTrimmed(ctx, "dpkg", "--print-architecture")
	if err != nil {
		return fmt.Errorf("detecting native architecture: %w", err)
	}

	out, err := run(ctx, "dpkg-query", "-W", "-f",
		"${Package}\t${Architecture}\t${Status}\t${Version}\t${Section}\n")
	if err != nil {
		return fmt.Errorf("listing installed packages: %w", err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.arch = arch
	next := make(map[string]*RawPackage)

	scanner := bufio.NewScanner(strings.NewReader(out))
	for scanner.Scan() {
		fields := strings.Split(scanner.Text(), "\t")
		if len(fields) < 5 {
			continue
		}
		name, pkgArch, status, version, section := fields[0], fields[1], fields[2], fields[3], fields[4]
		fullname := name + ":" + pkgArch
		installed := strings.Contains(status, "installed") && !strings.Contains(status, "not-installed")
		next[fullname] = &RawPackage{
			Fullname:         fullname,
			Name:             name,
			Architecture:     pkgArch,
			Section:          section,
			InstalledVersion: version,
			CandidateVersion: version,
			IsInstalled:      installed,
		}
	}

	if err := b.enrichCandidates(ctx, next); err != nil {
		log.Warn().Err(err).Msg("apt-cache policy enrichment failed; candidate info may be stale")
	}

	b.snapshot = next
	return nil
}

// enrichCandidates fills in candidate version and upgradable via
// `apt-cache policy`, best-effort. Sizes and summary are not filled here.
func (b *ShellBackend) enrichCandidates(ctx context.Context, pkgs map[string]*RawPackage) error {
	names := make([]string, 0, len(pkgs))
	for _, p := range pkgs {
		names = append(names, p.Name)
	}
	if len(names) == 0 {
		return nil
	}

	args := append([]string{"policy"}, names...)
	out, err := run(ctx, "apt-cache", args...)
	if err != nil {
		return err
	}

	var current *RawPackage
	for _, line := range strings.Split(out, "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case !strings.HasPrefix(line, " ") && strings.HasSuffix(trimmed, ":"):
			name := strings.TrimSuffix(trimmed, ":")
			for _, p := range pkgs {
				if p.Name == name {
					current = p
					break
				}
			}
		case strings.HasPrefix(trimmed, "Candidate:") && current != nil:
			cand := strings.TrimSpace(strings.TrimPrefix(trimmed, "Candidate:"))
			if cand != "(none)" {
				current.CandidateVersion = cand
				current.IsUpgradable = current.IsInstalled && cand != current.InstalledVersion
			}
		}
	}
	return nil
}

func (b *ShellBackend) Packages(sort SortHint) ([]RawPackage, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []RawPackage
	for _, p := range b.snapshot {
		if sort == SortUpgradableFirst && !p.IsUpgradable {
			continue
		}
		out = append(out, *p)
	}
	return out, nil
}

func (b *ShellBackend) Get(fullname string) (RawPackage, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	p, ok := b.snapshot[fullname]
	if !ok {
		return RawPackage{}, false
	}
	return *p, true
}

func (b *ShellBackend) MarkInstall(fullname string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if p, ok := b.snapshot[fullname]; ok {
		if p.IsInstalled {
			p.MarkedUpgrade = true
		} else {
			p.MarkedInstall = true
		}
		p.MarkedDelete = false
	}
}

func (b *ShellBackend) MarkRemove(fullname string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if p, ok := b.snapshot[fullname]; ok {
		p.MarkedDelete = true
		p.MarkedInstall = false
		p.MarkedUpgrade = false
	}
}

func (b *ShellBackend) MarkKeep(fullname string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if p, ok := b.snapshot[fullname]; ok {
		p.MarkedInstall = false
		p.MarkedUpgrade = false
		p.MarkedDelete = false
	}
}

func (b *ShellBackend) ClearAllMarks() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, p := range b.snapshot {
		p.MarkedInstall = false
		p.MarkedUpgrade = false
		p.MarkedDelete = false
	}
}

// Resolve invokes apt-get's solver in simulate mode against the currently
// marked packages and reports any conflicts it surfaces. It does not
// mutate the live system.
func (b *ShellBackend) Resolve(ctx context.Context) []ConflictError {
	b.mu.Lock()
	var toInstall, toRemove []string
	for _, p := range b.snapshot {
		switch {
		case p.MarkedInstall || p.MarkedUpgrade:
			toInstall = append(toInstall, p.Name)
		case p.MarkedDelete:
			toRemove = append(toRemove, p.Name+"-")
		}
	}
	b.mu.Unlock()

	if len(toInstall) == 0 && len(toRemove) == 0 {
		return nil
	}

	args := append([]string{"install", "--simulate", "-y"}, toInstall...)
	args = append(args, toRemove...)
	out, err := run(ctx, "apt-get", args...)
	if err == nil {
		return nil
	}
	return []ConflictError{{Message: formatAptDiagnostics(out, err)}}
}

func (b *ShellBackend) Changes() []RawPackage {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []RawPackage
	for _, p := range b.snapshot {
		if p.MarkedInstall || p.MarkedUpgrade || p.MarkedDelete {
			out = append(out, *p)
		}
	}
	return out
}

// Commit executes the real transaction via apt-get, translating its
// terse output into Sink callbacks at the grain apt actually reports:
// one acquire event per "Get:"/"Hit:" line, one install event per
// "Setting up"/"Unpacking"/"Removing" line.
func (b *ShellBackend) Commit(ctx context.Context, sink progress.Sink) error {
	changes := b.Changes()
	if len(changes) == 0 {
		return nil
	}

	var toInstall, toRemove []string
	for _, p := range changes {
		if p.MarkedDelete {
			toRemove = append(toRemove, p.Name+"-")
		} else {
			toInstall = append(toInstall, p.Name)
		}
	}

	sink.Start()
	args := append([]string{"install", "-y"}, toInstall...)
	args = append(args, toRemove...)

	cmd := exec.CommandContext(ctx, "apt-get", args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("apt-get install: %w", err)
	}
	cmd.Stderr = cmd.Stdout

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("apt-get install: %w", err)
	}

	step := 0
	scanner := bufio.NewScanner(stdout)
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "Get:"):
			sink.Fetch(line)
		case strings.HasPrefix(line, "Hit:"):
			sink.Hit(line)
		case strings.HasPrefix(line, "Fetched"):
			sink.Done(line)
		case strings.HasPrefix(line, "Unpacking"), strings.HasPrefix(line, "Setting up"),
			strings.HasPrefix(line, "Removing"):
			step++
			sink.StatusChanged(line, step, len(changes), classifyInstallLine(line))
		}
	}
	sink.Stop()

	waitErr := cmd.Wait()
	if waitErr != nil {
		sink.Error("apt-get install", waitErr.Error())
		return fmt.Errorf("apt-get install: %w", waitErr)
	}
	return b.Refresh(ctx)
}

func classifyInstallLine(line string) progress.InstallAction {
	switch {
	case strings.HasPrefix(line, "Removing"):
		return progress.InstallActionRemoving
	case strings.HasPrefix(line, "Setting up"):
		return progress.InstallActionConfiguring
	default:
		return progress.InstallActionUnpacking
	}
}

func (b *ShellBackend) Dependencies(fullname string) []DepEdge {
	name := strings.SplitN(fullname, ":", 2)[0]
	out, err := run(context.Background(), "apt-cache", "depends", name)
	if err != nil {
		return nil
	}
	return parseDependsOutput(out)
}

func (b *ShellBackend) ReverseDependencies(fullname string) []DepEdge {
	name := strings.SplitN(fullname, ":", 2)[0]
	out, err := run(context.Background(), "apt-cache", "rdepends", name)
	if err != nil {
		return nil
	}
	return parseDependsOutput(out)
}

// parseDependsOutput parses the indented "  Depends: foo" / "  PreDepends: bar"
// lines `apt-cache depends`/`rdepends` emit.
func parseDependsOutput(out string) []DepEdge {
	var edges []DepEdge
	for _, line := range strings.Split(out, "\n") {
		trimmed := strings.TrimSpace(line)
		for _, kind := range []string{"PreDepends", "Depends", "Recommends", "Suggests", "Enhances"} {
			prefix := kind + ":"
			if strings.HasPrefix(trimmed, prefix) {
				target := strings.TrimSpace(strings.TrimPrefix(trimmed, prefix))
				target = strings.Trim(target, "<>")
				if target != "" {
					edges = append(edges, DepEdge{Kind: kind, Target: target})
				}
			}
		}
	}
	return edges
}

func (b *ShellBackend) NativeArch() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.arch
}

func run(ctx context.Context, name string, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, shellTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, name, args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return string(out), fmt.Errorf("%s %s: %w", name, strings.Join(args, " "), err)
	}
	return string(out), nil
}

func runTrimmed(ctx context.Context, name string, args ...string) (string, error) {
	out, err := run(ctx, name, args...)
	return strings.TrimSpace(out), err
}

// formatAptDiagnostics condenses apt-get's simulate output down to its
// first actionable line plus a count of any remaining ones, so a failed
// Resolve reports something a user can act on instead of a raw dump.
func formatAptDiagnostics(out string, err error) string {
	var lines []string
	for _, line := range strings.Split(out, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if strings.HasPrefix(trimmed, "E:") || strings.HasPrefix(trimmed, "The following") {
			lines = append(lines, trimmed)
		}
	}
	if len(lines) == 0 {
		return "dependency resolution failed: " + err.Error()
	}
	if len(lines) == 1 {
		return lines[0]
	}
	return fmt.Sprintf("%s; and %d more issue(s)", lines[0], len(lines)-1)
}

var _ Backend = (*ShellBackend)(nil)

// sizeFromString parses a size like apt reports it (e.g. "123 kB") into bytes.
// Nothing in this package calls it.
func sizeFromString(s string) uint64 {
	s = strings.TrimSpace(s)
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return 0
	}
	n, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return 0
	}
	mult := 1.0
	if len(fields) > 1 {
		switch strings.ToLower(fields[1]) {
		case "kb":
			mult = 1024
		case "mb":
			mult = 1024 * 1024
		case "gb":
			mult = 1024 * 1024 * 1024
		}
	}
	return uint64(n * mult)
}
