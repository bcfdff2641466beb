// Package flags contains the enum used by WSL to store
// some configuration of a WSL distro.
package flags

import (
	"fmt"
	"strings"
)

// WslFlags is an alias for Windows' WSL_DISTRIBUTION_FLAGS
// https://learn.microsoft.com/en-us/windows/win32/api/wslapi/ne-wslapi-wsl_distribution_flags
type WslFlags uint32

// Allowing underscores in names to keep it as close to Windows as possible.
const (
	None                WslFlags = 0x0
	EnableInterop       WslFlags = 0x1
	AppendNTPath        WslFlags = 0x2
	EnableDriveMounting WslFlags = 0x4

	// Per the conversation at https://github.com/microsoft/WSL-DistroLauncher/issues/96
	// the information about version 1 or 2 is on the 4th bit of the flags, which is
	// currently referenced neither by the API nor the documentation.
	UndocumentedWSLVersion WslFlags = 0x8

	// Valid are all the documented flags.
	Valid WslFlags = EnableInterop | AppendNTPath | EnableDriveMounting
	// Default is what a freshly registered distro gets.
	Default WslFlags = Valid
)

// names is sorted by bit value, which is the order String renders them in.
var names = []struct {
	flag WslFlags
	name string
}{
	{EnableInterop, "ENABLE_INTEROP"},
	{AppendNTPath, "APPEND_NT_PATH"},
	{EnableDriveMounting, "ENABLE_DRIVE_MOUNTING"},
	{UndocumentedWSLVersion, "UNDOCUMENTED_WSL_VERSION"},
}

// Has returns true if all bits in want are set.
func (f WslFlags) Has(want WslFlags) bool {
	return f&want == want
}

// String renders the named bits in ascending order joined by '|', followed by
// any leftover unknown bits in hexadecimal.
func (f WslFlags) String() string {
	if f == None {
		return "NONE"
	}

	var parts []string
	rest := f
	for _, n := range names {
		if f&n.flag == 0 {
			continue
		}
		parts = append(parts, n.name)
		rest &^= n.flag
	}

	if rest != 0 {
		parts = append(parts, fmt.Sprintf("0x%X", uint32(rest)))
	}

	return strings.Join(parts, "|")
}
