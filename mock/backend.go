// Package mock mocks the WSL api, useful for tests as it allows parallelism,
// decoupling, and execution speed.
//
// Launched commands run inside the test process: a small interpreter
// understands the handful of shell builtins the tests rely on, and talks to
// the real stdin, stdout and stderr handles it is given.
package mock

import (
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/ubuntu/decorate"
	"github.com/ubuntu/wslapi/internal/handle"
	"github.com/ubuntu/wslapi/internal/hresult"
)

// Backend implements the Backend interface.
type Backend struct {
	lxssRootKey *RegistryKey // Registry mock

	// processes maps the fake process handles to the processes they refer to.
	processes  map[handle.Handle]*process
	nextHandle handle.Handle

	// allocations are the live blocks handed out by WslGetDistributionConfiguration.
	allocations map[unsafe.Pointer]struct{}

	mu sync.Mutex

	calls    atomic.Int64
	loadedAs atomic.Value

	// Error injectors. These all have the form of:
	//
	// NameOfTheFunctionError
	//
	// Their effect is to make the relevant function fail instantly upon being
	// called, with E_FAIL for the wslapi.dll entry points and mock.Error for the rest.
	LoadError                            bool
	OpenLxssKeyError                     bool
	WslConfigureDistributionError        bool
	WslGetDistributionConfigurationError bool
	WslLaunchError                       bool
	WslLaunchInteractiveError            bool
	WslRegisterDistributionError         bool
	WslUnregisterDistributionError       bool
	WaitForSingleObjectError             bool
	GetExitCodeProcessError              bool
	CloseHandleError                     bool

	// AllocateOnFailure makes a failing WslGetDistributionConfiguration hand
	// out an environment anyway, which the caller still has to free.
	AllocateOnFailure bool

	// LxssKeyMissing pretends WSL was never used on this machine.
	LxssKeyMissing bool
}

// New constructs a new mocked back-end for WSL.
func New() *Backend {
	return &Backend{
		lxssRootKey: newRootKey(),
		processes:   make(map[handle.Handle]*process),
		nextHandle:  0x4000,
		allocations: make(map[unsafe.Pointer]struct{}),
	}
}

// ResetErrors sets all the error flags to false.
func (b *Backend) ResetErrors() {
	b.LoadError = false
	b.OpenLxssKeyError = false
	b.WslConfigureDistributionError = false
	b.WslGetDistributionConfigurationError = false
	b.WslLaunchError = false
	b.WslLaunchInteractiveError = false
	b.WslRegisterDistributionError = false
	b.WslUnregisterDistributionError = false
	b.WaitForSingleObjectError = false
	b.GetExitCodeProcessError = false
	b.CloseHandleError = false
}

// Load mocks loading wslapi.dll.
func (b *Backend) Load(dllName string) (err error) {
	defer decorate.OnError(&err, "could not load %s", dllName)

	if b.LoadError {
		return hresult.FromWin32(hresult.ERROR_MOD_NOT_FOUND)
	}

	b.loadedAs.Store(dllName)
	return nil
}

// LoadedDLL is the name last passed to Load.
func (b *Backend) LoadedDLL() string {
	s, _ := b.loadedAs.Load().(string)
	return s
}

// NativeCalls is the number of wslapi.dll entry points called so far.
func (b *Backend) NativeCalls() int64 {
	return b.calls.Load()
}

// OpenProcessHandles is the number of process handles that were returned by
// WslLaunch and not closed yet.
func (b *Backend) OpenProcessHandles() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return len(b.processes)
}

// LiveAllocations is the number of blocks handed out by
// WslGetDistributionConfiguration and not freed yet.
func (b *Backend) LiveAllocations() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return len(b.allocations)
}

// Error is an error triggered by the mock, and not a real problem.
type Error struct{}

func (err Error) Error() string {
	return "error triggered by mock"
}
