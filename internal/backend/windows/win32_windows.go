package windows

// This file contains Win32 API definitions and imports.

import (
	"errors"
	"fmt"
	"path/filepath"
	"unsafe"

	"github.com/ubuntu/decorate"
	"github.com/ubuntu/wslapi/internal/flags"
	"github.com/ubuntu/wslapi/internal/handle"
	"github.com/ubuntu/wslapi/internal/hresult"
	"golang.org/x/sys/windows"
)

// procs are the entry points of a loaded wslapi.dll.
type procs struct {
	isDistributionRegistered     *windows.LazyProc
	registerDistribution         *windows.LazyProc
	unregisterDistribution       *windows.LazyProc
	configureDistribution        *windows.LazyProc
	getDistributionConfiguration *windows.LazyProc
	launchInteractive            *windows.LazyProc
	launch                       *windows.LazyProc
}

// Windows' BOOL.
type wBOOL = uintptr

func toBOOL(b bool) wBOOL {
	if b {
		return 1
	}
	return 0
}

// Load binds every entry point of dllName. Bare names are only looked up in
// the system directory.
func (b *Backend) Load(dllName string) (err error) {
	defer decorate.OnError(&err, "could not load %s", dllName)

	dll := windows.NewLazySystemDLL(dllName)
	if filepath.Base(dllName) != dllName {
		dll = windows.NewLazyDLL(dllName)
	}

	if err := dll.Load(); err != nil {
		return fmt.Errorf("%v: %w", err, toHRESULT(err))
	}

	p := &procs{
		isDistributionRegistered:     dll.NewProc("WslIsDistributionRegistered"),
		registerDistribution:         dll.NewProc("WslRegisterDistribution"),
		unregisterDistribution:       dll.NewProc("WslUnregisterDistribution"),
		configureDistribution:        dll.NewProc("WslConfigureDistribution"),
		getDistributionConfiguration: dll.NewProc("WslGetDistributionConfiguration"),
		launchInteractive:            dll.NewProc("WslLaunchInteractive"),
		launch:                       dll.NewProc("WslLaunch"),
	}

	for _, proc := range []*windows.LazyProc{
		p.isDistributionRegistered,
		p.registerDistribution,
		p.unregisterDistribution,
		p.configureDistribution,
		p.getDistributionConfiguration,
		p.launchInteractive,
		p.launch,
	} {
		if err := proc.Find(); err != nil {
			return fmt.Errorf("%v: %w", err, toHRESULT(err))
		}
	}

	b.procs = p
	return nil
}

// WslIsDistributionRegistered is a wrapper around the WslIsDistributionRegistered
// function in the wslApi.dll Win32 library.
func (b *Backend) WslIsDistributionRegistered(distributionName []uint16) bool {
	if b.procs == nil {
		return false
	}

	r, _, _ := b.procs.isDistributionRegistered.Call(uintptr(unsafe.Pointer(&distributionName[0])))
	return r != 0
}

// WslRegisterDistribution is a wrapper around the WslRegisterDistribution
// function in the wslApi.dll Win32 library.
func (b *Backend) WslRegisterDistribution(distributionName, tarGzFilename []uint16) hresult.HRESULT {
	if b.procs == nil {
		return hresult.E_UNEXPECTED
	}

	r, _, _ := b.procs.registerDistribution.Call(
		uintptr(unsafe.Pointer(&distributionName[0])),
		uintptr(unsafe.Pointer(&tarGzFilename[0])))
	return status(r)
}

// WslUnregisterDistribution is a wrapper around the WslUnregisterDistribution
// function in the wslApi.dll Win32 library.
func (b *Backend) WslUnregisterDistribution(distributionName []uint16) hresult.HRESULT {
	if b.procs == nil {
		return hresult.E_UNEXPECTED
	}

	r, _, _ := b.procs.unregisterDistribution.Call(uintptr(unsafe.Pointer(&distributionName[0])))
	return status(r)
}

// WslConfigureDistribution is a wrapper around the WslConfigureDistribution
// function in the wslApi.dll Win32 library.
func (b *Backend) WslConfigureDistribution(distributionName []uint16, defaultUID uint32, wslDistributionFlags flags.WslFlags) hresult.HRESULT {
	if b.procs == nil {
		return hresult.E_UNEXPECTED
	}

	r, _, _ := b.procs.configureDistribution.Call(
		uintptr(unsafe.Pointer(&distributionName[0])),
		uintptr(defaultUID),
		uintptr(wslDistributionFlags))
	return status(r)
}

// WslGetDistributionConfiguration is a wrapper around the WslGetDistributionConfiguration
// function in the wslApi.dll Win32 library.
//
// The environment array is allocated by the library with CoTaskMemAlloc.
func (b *Backend) WslGetDistributionConfiguration(distributionName []uint16,
	distributionVersion *uint32,
	defaultUID *uint32,
	wslDistributionFlags *flags.WslFlags,
	defaultEnvironmentVariables ***byte,
	defaultEnvironmentVariableCount *uint32) hresult.HRESULT {
	if b.procs == nil {
		return hresult.E_UNEXPECTED
	}

	r, _, _ := b.procs.getDistributionConfiguration.Call(
		uintptr(unsafe.Pointer(&distributionName[0])),
		uintptr(unsafe.Pointer(distributionVersion)),
		uintptr(unsafe.Pointer(defaultUID)),
		uintptr(unsafe.Pointer(wslDistributionFlags)),
		uintptr(unsafe.Pointer(defaultEnvironmentVariables)),
		uintptr(unsafe.Pointer(defaultEnvironmentVariableCount)))
	return status(r)
}

// WslLaunchInteractive is a wrapper around the WslLaunchInteractive
// function in the wslApi.dll Win32 library.
func (b *Backend) WslLaunchInteractive(distributionName, command []uint16, useCurrentWorkingDirectory bool, exitCode *uint32) hresult.HRESULT {
	if b.procs == nil {
		return hresult.E_UNEXPECTED
	}

	var cmd *uint16
	if len(command) > 0 {
		cmd = &command[0]
	}

	r, _, _ := b.procs.launchInteractive.Call(
		uintptr(unsafe.Pointer(&distributionName[0])),
		uintptr(unsafe.Pointer(cmd)),
		toBOOL(useCurrentWorkingDirectory),
		uintptr(unsafe.Pointer(exitCode)))
	return status(r)
}

// WslLaunch is a wrapper around the WslLaunch
// function in the wslApi.dll Win32 library.
func (b *Backend) WslLaunch(distributionName, command []uint16,
	useCurrentWorkingDirectory bool,
	stdIn, stdOut, stdErr handle.Handle,
	process *handle.Handle) hresult.HRESULT {
	if b.procs == nil {
		return hresult.E_UNEXPECTED
	}

	var cmd *uint16
	if len(command) > 0 {
		cmd = &command[0]
	}

	r, _, _ := b.procs.launch.Call(
		uintptr(unsafe.Pointer(&distributionName[0])),
		uintptr(unsafe.Pointer(cmd)),
		toBOOL(useCurrentWorkingDirectory),
		uintptr(stdIn),
		uintptr(stdOut),
		uintptr(stdErr),
		uintptr(unsafe.Pointer(process)))
	return status(r)
}

// WaitForSingleObject blocks until the process exits.
func (*Backend) WaitForSingleObject(process handle.Handle) (err error) {
	defer decorate.OnError(&err, "WaitForSingleObject(0x%x)", uintptr(process))

	event, err := windows.WaitForSingleObject(windows.Handle(process), windows.INFINITE)
	if err != nil {
		return toHRESULT(err)
	}
	if event != windows.WAIT_OBJECT_0 {
		return fmt.Errorf("unexpected wait event 0x%x", event)
	}

	return nil
}

// GetExitCodeProcess returns the exit code of a finished process.
func (*Backend) GetExitCodeProcess(process handle.Handle) (code uint32, err error) {
	defer decorate.OnError(&err, "GetExitCodeProcess(0x%x)", uintptr(process))

	if err := windows.GetExitCodeProcess(windows.Handle(process), &code); err != nil {
		return 0, toHRESULT(err)
	}

	return code, nil
}

// CloseHandle releases the process handle.
func (*Backend) CloseHandle(process handle.Handle) (err error) {
	defer decorate.OnError(&err, "CloseHandle(0x%x)", uintptr(process))

	if err := windows.CloseHandle(windows.Handle(process)); err != nil {
		return toHRESULT(err)
	}

	return nil
}

// CoTaskMemFree frees memory allocated by the library.
func (*Backend) CoTaskMemFree(p unsafe.Pointer) {
	windows.CoTaskMemFree(p)
}

// status extracts the HRESULT from the return register.
func status(r uintptr) hresult.HRESULT {
	return hresult.HRESULT(int32(r))
}

// toHRESULT converts a Win32 error into its HRESULT.
func toHRESULT(err error) error {
	var errno windows.Errno
	if errors.As(err, &errno) {
		return hresult.FromWin32(uint32(errno))
	}
	return err
}
