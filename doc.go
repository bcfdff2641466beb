// Package wslapi wraps around the wslApi.dll for safe and idiomatic use
// within Go projects.
//
// A Library binds the seven entry points of wslapi.dll once, and can then be
// shared between goroutines. Launched processes are returned as a Process,
// which owns the process handle and the three standard streams it was given
// until it is waited for.
//
//	lib, err := wslapi.New(ctx)
//	if err != nil {
//		return err
//	}
//
//	p, err := lib.Launch("Ubuntu", "sh", true, "echo hello\nexit 3", nil, nil)
//	if err != nil {
//		return err
//	}
//	status, err := p.Wait()
//
// This package also contains a mock WSL back-end which can be useful for testing, as
// setting up WSL distros for every test-case can be quite time-consuming. This mock back-end
// is disabled by default, and can be enabled by using the context returned by the WithMock
// function.
package wslapi
