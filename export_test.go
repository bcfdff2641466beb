package wslapi

import "unsafe"

// This file exports private functions used for unit testing

var (
	NextTempPath     = nextTempPath
	StdioFromBytesAt = stdioFromBytesAt
)

// NewEnvironmentVariables lays out vars the way wslapi.dll does, in Go memory.
// The count can be made to disagree with the array to test edge cases.
func NewEnvironmentVariables(vars []string, count uint32, free func(unsafe.Pointer)) *EnvironmentVariables {
	e := &EnvironmentVariables{count: count, free: free}
	if vars == nil {
		return e
	}

	array := make([]*byte, len(vars)+1)
	for i, v := range vars {
		s := append([]byte(v), 0)
		array[i] = &s[0]
	}
	e.array = &array[0]

	return e
}
