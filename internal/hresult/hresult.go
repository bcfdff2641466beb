// Package hresult contains the HRESULT status codes returned by wslapi.dll
// and the Win32 error codes they may wrap. It builds on every platform.
package hresult

import "fmt"

// HRESULT is a Windows status code. Negative values are failures.
// https://learn.microsoft.com/en-us/windows/win32/com/structure-of-com-error-codes
type HRESULT int32

// Generic HRESULT values.
//
//nolint:revive // Keeping Windows' names.
const (
	S_OK         HRESULT = 0
	S_FALSE      HRESULT = 1
	E_NOTIMPL    HRESULT = -0x7fffbfff // 0x80004001
	E_FAIL       HRESULT = -0x7fffbffb // 0x80004005
	E_UNEXPECTED HRESULT = -0x7fff0001 // 0x8000FFFF
	E_INVALIDARG HRESULT = -0x7ff8ffa9 // 0x80070057
)

// WSL_E_DISTRO_NOT_FOUND is what wslapi.dll returns for unknown distributions.
//
//nolint:revive // Keeping Windows' names.
const WSL_E_DISTRO_NOT_FOUND HRESULT = -0x7ffbfcd4 // 0x8004032C

// FacilityWin32 is the facility of HRESULTs built from Win32 error codes.
const FacilityWin32 = 7

// Win32 error codes the classification table knows about.
//
//nolint:revive // Keeping Windows' names.
const (
	ERROR_SUCCESS            uint32 = 0
	ERROR_FILE_NOT_FOUND     uint32 = 2
	ERROR_PATH_NOT_FOUND     uint32 = 3
	ERROR_ACCESS_DENIED      uint32 = 5
	ERROR_INVALID_HANDLE     uint32 = 6
	ERROR_INVALID_DATA       uint32 = 13
	ERROR_INVALID_DRIVE      uint32 = 15
	ERROR_NO_MORE_FILES      uint32 = 18
	ERROR_WRITE_PROTECT      uint32 = 19
	ERROR_SHARING_VIOLATION  uint32 = 32
	ERROR_LOCK_VIOLATION     uint32 = 33
	ERROR_HANDLE_EOF         uint32 = 38
	ERROR_FILE_EXISTS        uint32 = 80
	ERROR_INVALID_PARAMETER  uint32 = 87
	ERROR_BROKEN_PIPE        uint32 = 109
	ERROR_SEM_TIMEOUT        uint32 = 121
	ERROR_INVALID_NAME       uint32 = 123
	ERROR_INVALID_LEVEL      uint32 = 124
	ERROR_MOD_NOT_FOUND      uint32 = 126
	ERROR_PROC_NOT_FOUND     uint32 = 127
	ERROR_ALREADY_EXISTS     uint32 = 183
	ERROR_PIPE_NOT_CONNECTED uint32 = 233
	WAIT_TIMEOUT             uint32 = 258
	ERROR_NO_MORE_ITEMS      uint32 = 259
	ERROR_NOT_FOUND          uint32 = 1168
)

// FromWin32 is the Go version of the HRESULT_FROM_WIN32 macro.
func FromWin32(code uint32) HRESULT {
	if HRESULT(code) <= 0 {
		return HRESULT(code)
	}
	return HRESULT((code & 0xFFFF) | FacilityWin32<<16 | 0x80000000)
}

// Succeeded is the Go version of the SUCCEEDED macro.
func (hr HRESULT) Succeeded() bool {
	return hr >= 0
}

// Failed is the Go version of the FAILED macro.
func (hr HRESULT) Failed() bool {
	return hr < 0
}

// Facility is the 11-bit facility field.
func (hr HRESULT) Facility() uint32 {
	return (uint32(hr) >> 16) & 0x7FF
}

// Code is the low 16 bits of the HRESULT. For FACILITY_WIN32 it is the Win32
// error code.
func (hr HRESULT) Code() uint32 {
	return uint32(hr) & 0xFFFF
}

// Error lets back-ends return an HRESULT as a plain error.
func (hr HRESULT) Error() string {
	return fmt.Sprintf("HRESULT 0x%08x", uint32(hr))
}
