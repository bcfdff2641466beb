package wslapi

import (
	"bytes"
	"iter"
	"runtime"
	"unsafe"
)

// EnvironmentVariables are the default environment variables of a distro, as
// returned by WslGetDistributionConfiguration.
//
// They own memory allocated by wslapi.dll, which Close frees. The slices
// returned by Get and All are copies owned by the caller, and outlive Close.
type EnvironmentVariables struct {
	array **byte
	count uint32

	free func(unsafe.Pointer)
}

// Len returns the number of variables.
func (e *EnvironmentVariables) Len() int {
	if e == nil || e.array == nil {
		return 0
	}
	return int(e.count)
}

// Get splits a copy of the i-th variable at its first '='. A variable without
// '=' is all key and an empty value. ok is false if i is out of range.
func (e *EnvironmentVariables) Get(i int) (key, value []byte, ok bool) {
	if i < 0 || i >= e.Len() {
		return nil, nil, false
	}

	kv := e.raw(i)
	key, value, _ = bytes.Cut(kv, []byte("="))
	return bytes.Clone(key), bytes.Clone(value), true
}

// All iterates over the variables in order. It can be ranged over any number of times.
func (e *EnvironmentVariables) All() iter.Seq2[[]byte, []byte] {
	return func(yield func([]byte, []byte) bool) {
		for i := range e.Len() {
			k, v, _ := e.Get(i)
			if !yield(k, v) {
				return
			}
		}
	}
}

// Map copies the variables into a map. Later duplicates win.
func (e *EnvironmentVariables) Map() map[string]string {
	m := make(map[string]string, e.Len())
	for k, v := range e.All() {
		m[string(k)] = string(v)
	}
	return m
}

// Close frees every string and then the array itself, with the allocator
// wslapi.dll requires. It is safe to call more than once.
func (e *EnvironmentVariables) Close() {
	if e == nil || e.array == nil {
		return
	}

	runtime.SetFinalizer(e, nil)

	for _, s := range unsafe.Slice(e.array, e.count) {
		if s != nil {
			e.free(unsafe.Pointer(s))
		}
	}
	e.free(unsafe.Pointer(e.array))

	e.array = nil
	e.count = 0
}

// raw returns the i-th string, without its terminator.
func (e *EnvironmentVariables) raw(i int) []byte {
	p := unsafe.Slice(e.array, e.count)[i]
	if p == nil {
		return nil
	}

	n := 0
	for *(*byte)(unsafe.Add(unsafe.Pointer(p), n)) != 0 {
		n++
	}
	return unsafe.Slice(p, n)
}

// track frees the memory if the variables become unreachable without being closed.
func (e *EnvironmentVariables) track() {
	if e.array == nil {
		return
	}
	runtime.SetFinalizer(e, (*EnvironmentVariables).Close)
}
