package windows

// This file contains stubs for Win32 API definitions and imports.
// wslapi.dll cannot be loaded on Linux, so every other call is unreachable.

import (
	"unsafe"

	"github.com/ubuntu/decorate"
	"github.com/ubuntu/wslapi/internal/flags"
	"github.com/ubuntu/wslapi/internal/handle"
	"github.com/ubuntu/wslapi/internal/hresult"
)

type procs struct{}

// Load always fails on Linux, as if the library was missing.
func (*Backend) Load(dllName string) (err error) {
	defer decorate.OnError(&err, "could not load %s", dllName)
	return hresult.FromWin32(hresult.ERROR_MOD_NOT_FOUND)
}

// WslIsDistributionRegistered always returns false on Linux.
func (*Backend) WslIsDistributionRegistered(distributionName []uint16) bool {
	return false
}

// WslRegisterDistribution is not implemented on Linux.
func (*Backend) WslRegisterDistribution(distributionName, tarGzFilename []uint16) hresult.HRESULT {
	return hresult.E_NOTIMPL
}

// WslUnregisterDistribution is not implemented on Linux.
func (*Backend) WslUnregisterDistribution(distributionName []uint16) hresult.HRESULT {
	return hresult.E_NOTIMPL
}

// WslConfigureDistribution is not implemented on Linux.
func (*Backend) WslConfigureDistribution(distributionName []uint16, defaultUID uint32, wslDistributionFlags flags.WslFlags) hresult.HRESULT {
	return hresult.E_NOTIMPL
}

// WslGetDistributionConfiguration is not implemented on Linux.
func (*Backend) WslGetDistributionConfiguration(distributionName []uint16,
	distributionVersion *uint32,
	defaultUID *uint32,
	wslDistributionFlags *flags.WslFlags,
	defaultEnvironmentVariables ***byte,
	defaultEnvironmentVariableCount *uint32) hresult.HRESULT {
	return hresult.E_NOTIMPL
}

// WslLaunchInteractive is not implemented on Linux.
func (*Backend) WslLaunchInteractive(distributionName, command []uint16, useCurrentWorkingDirectory bool, exitCode *uint32) hresult.HRESULT {
	return hresult.E_NOTIMPL
}

// WslLaunch is not implemented on Linux.
func (*Backend) WslLaunch(distributionName, command []uint16,
	useCurrentWorkingDirectory bool,
	stdIn, stdOut, stdErr handle.Handle,
	process *handle.Handle) hresult.HRESULT {
	return hresult.E_NOTIMPL
}

// WaitForSingleObject is not implemented on Linux.
func (*Backend) WaitForSingleObject(process handle.Handle) error {
	return hresult.E_NOTIMPL
}

// GetExitCodeProcess is not implemented on Linux.
func (*Backend) GetExitCodeProcess(process handle.Handle) (uint32, error) {
	return 0, hresult.E_NOTIMPL
}

// CloseHandle is not implemented on Linux.
func (*Backend) CloseHandle(process handle.Handle) error {
	return hresult.E_NOTIMPL
}

// CoTaskMemFree is a no-op on Linux: nothing was ever allocated.
func (*Backend) CoTaskMemFree(p unsafe.Pointer) {}
