// Package distrostate implements the mocking of the state of the distro
// (i.e. running, stopped, etc.).
package distrostate

import (
	"errors"
	"sync"
)

// Process is anything that runs inside a distro and can be killed.
type Process interface {
	Kill()
}

// DistroState tracks whether a distro is active or not.
type DistroState struct {
	// running indicates whether the distro is running or not.
	running bool

	// processes is a set of attached processes.
	processes map[Process]struct{}

	// flag to avoid races where you may attach a process after the distro has been uninstalled.
	uninstalled bool

	mu sync.RWMutex
}

// ErrUninstalled is returned when attaching to a distro that no longer exists.
var ErrUninstalled = errors.New("distro unregistered")

// New creates a new distro state with state Stopped.
func New() *DistroState {
	return &DistroState{
		processes: make(map[Process]struct{}),
	}
}

// IsRunning returns whether the distro is running this moment.
func (t *DistroState) IsRunning() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return t.running
}

// Touch wakes the distro up without attaching anything to it.
func (t *DistroState) Touch() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.uninstalled {
		return ErrUninstalled
	}

	t.running = true
	return nil
}

// AttachProcess wakes up the distro and attaches the process to it.
// Attached processes are killed if the distro is unregistered.
func (t *DistroState) AttachProcess(p Process) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.uninstalled {
		return ErrUninstalled
	}

	t.processes[p] = struct{}{}
	t.running = true

	return nil
}

// DetachProcess forgets about a process that finished on its own. The distro
// stops when no process is left.
func (t *DistroState) DetachProcess(p Process) {
	t.mu.Lock()
	defer t.mu.Unlock()

	delete(t.processes, p)
	if len(t.processes) == 0 {
		t.running = false
	}
}

// MarkUninstalled kills all processes and marks the distro as uninstalled.
func (t *DistroState) MarkUninstalled() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.uninstalled {
		return ErrUninstalled
	}

	for p := range t.processes {
		p.Kill()
	}
	t.processes = make(map[Process]struct{})
	t.running = false
	t.uninstalled = true

	return nil
}
