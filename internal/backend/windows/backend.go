// Package windows contains the production backend. It is the
// one used in production code, and makes real syscalls and
// accesses to the registry.
//
// All functions will return an error when ran on Linux.
package windows

// DefaultDLL is the library loaded when no other is requested.
const DefaultDLL = "wslapi.dll"

// Backend implements the Backend interface.
// It must be loaded before any of the Wsl* calls can be made.
type Backend struct {
	procs *procs
}

// New returns an unloaded production back-end.
func New() *Backend {
	return &Backend{}
}
