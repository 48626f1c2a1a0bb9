// Package progress defines the observer contract the cache library drives
// during commit, and a shared, mutex-protected cell the UI renders from.
package progress

import (
	"sync"
	"time"
)

// AcquireSink receives callbacks during the download phase of a commit.
type AcquireSink interface {
	Start()
	Hit(item string)
	Fetch(item string)
	Done(item string)
	Fail(item, errorText string)
	Pulse(percent int, currentBytes, totalBytes uint64, bytesPerSec uint64)
	Stop()
	// PulseInterval is how often Pulse should be invoked.
	PulseInterval() time.Duration
}

// InstallAction classifies what dpkg is doing to a package right now.
type InstallAction string

const (
	InstallActionUnpacking    InstallAction = "unpacking"
	InstallActionConfiguring  InstallAction = "configuring"
	InstallActionRemoving     InstallAction = "removing"
	InstallActionTriggersRun  InstallAction = "triggers-running"
)

// InstallSink receives callbacks during the install phase of a commit.
type InstallSink interface {
	StatusChanged(pkgName string, stepsDone, totalSteps int, action InstallAction)
	Error(pkgName, errorText string)
}

// Sink bundles both halves of the observer contract consumed by Backend.Commit.
type Sink interface {
	AcquireSink
	InstallSink
}

// Snapshot is a point-in-time read of acquire/install progress, safe to
// copy and render from the UI goroutine.
type Snapshot struct {
	Phase        string // "idle", "acquiring", "installing", "done", "failed"
	CurrentItem  string
	Percent      int
	CurrentBytes uint64
	TotalBytes   uint64
	BytesPerSec  uint64
	StepsDone    int
	TotalSteps   int
	LastError    string
}

// SharedState is the single mutable cell the cache library's commit
// callbacks write into and the UI renderer reads from. The scheduling
// model is single-threaded, but the real cache library's acquire loop is
// treated as a distinct producer, so access is mutex-protected.
type SharedState struct {
	mu            sync.Mutex
	snap          Snapshot
	pulseInterval time.Duration
}

// NewSharedState creates a cell with the given pulse interval (defaults to
// 500ms, matching the native acquire progress observer's cadence).
func NewSharedState(pulseInterval time.Duration) *SharedState {
	if pulseInterval <= 0 {
		pulseInterval = 500 * time.Millisecond
	}
	return &SharedState{pulseInterval: pulseInterval, snap: Snapshot{Phase: "idle"}}
}

func (s *SharedState) PulseInterval() time.Duration { return s.pulseInterval }

func (s *SharedState) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap = Snapshot{Phase: "acquiring"}
}

func (s *SharedState) Hit(item string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap.CurrentItem = item
}

func (s *SharedState) Fetch(item string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap.CurrentItem = item
}

func (s *SharedState) Done(item string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap.CurrentItem = item
}

func (s *SharedState) Fail(item, errorText string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap.CurrentItem = item
	s.snap.LastError = errorText
}

// Pulse records download progress. current_bytes is expected non-decreasing
// within a phase and percent must be clamped into [0, 100].
func (s *SharedState) Pulse(percent int, currentBytes, totalBytes uint64, bytesPerSec uint64) {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if currentBytes >= s.snap.CurrentBytes {
		s.snap.CurrentBytes = currentBytes
	}
	s.snap.Percent = percent
	s.snap.TotalBytes = totalBytes
	s.snap.BytesPerSec = bytesPerSec
}

func (s *SharedState) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.snap.Phase == "acquiring" {
		s.snap.Phase = "installing"
	}
}

func (s *SharedState) StatusChanged(pkgName string, stepsDone, totalSteps int, action InstallAction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap.Phase = "installing"
	s.snap.CurrentItem = pkgName
	s.snap.StepsDone = stepsDone
	s.snap.TotalSteps = totalSteps
}

func (s *SharedState) Error(pkgName, errorText string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap.LastError = errorText
}

// MarkDone transitions the cell to its terminal phase.
func (s *SharedState) MarkDone(failed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if failed {
		s.snap.Phase = "failed"
	} else {
		s.snap.Phase = "done"
	}
}

// Read returns a copy of the current state, safe for concurrent read.
func (s *SharedState) Read() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap
}

var _ Sink = (*SharedState)(nil)
