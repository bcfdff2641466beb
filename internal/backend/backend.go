// Package backend defines all the actions that a back-end to wslapi must
// be able to perform in order to run, or otherwise mock WSL.
package backend

import (
	"unsafe"

	"github.com/ubuntu/wslapi/internal/flags"
	"github.com/ubuntu/wslapi/internal/handle"
	"github.com/ubuntu/wslapi/internal/hresult"
)

// RegistryKey mocks a very small subset of behaviours of a Windows Registry key, enough
// for wslapi to do the limited amount of traversal and reading that it needs.
type RegistryKey interface {
	Close() error
	Field(name string) (string, error)
	SubkeyNames() ([]string, error)
}

// Backend defines what a back-end to wslapi must be able to do or mock.
//
// The Wsl* methods mirror the wslapi.dll entry points one to one: strings are
// NUL-terminated UTF-16, and the returned status is the raw HRESULT.
type Backend interface {
	// Load binds every entry point of the named library.
	Load(dllName string) error

	// Registry
	OpenLxssRegistry(path string) (RegistryKey, error)

	// wslapi.dll
	WslIsDistributionRegistered(distributionName []uint16) bool
	WslRegisterDistribution(distributionName, tarGzFilename []uint16) hresult.HRESULT
	WslUnregisterDistribution(distributionName []uint16) hresult.HRESULT
	WslConfigureDistribution(distributionName []uint16, defaultUID uint32, wslDistributionFlags flags.WslFlags) hresult.HRESULT
	WslGetDistributionConfiguration(distributionName []uint16,
		distributionVersion *uint32,
		defaultUID *uint32,
		wslDistributionFlags *flags.WslFlags,
		defaultEnvironmentVariables ***byte,
		defaultEnvironmentVariableCount *uint32) hresult.HRESULT
	// A nil command launches the default shell.
	WslLaunchInteractive(distributionName, command []uint16, useCurrentWorkingDirectory bool, exitCode *uint32) hresult.HRESULT
	WslLaunch(distributionName, command []uint16,
		useCurrentWorkingDirectory bool,
		stdIn, stdOut, stdErr handle.Handle,
		process *handle.Handle) hresult.HRESULT

	// Win32
	WaitForSingleObject(process handle.Handle) error
	GetExitCodeProcess(process handle.Handle) (uint32, error)
	CloseHandle(process handle.Handle) error
	CoTaskMemFree(p unsafe.Pointer)
}
