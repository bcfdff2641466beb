// Package handle contains the few operating system primitives needed to own
// inheritable handles: duplication, release and raw reads and writes.
//
// A Handle is a HANDLE on Windows and a file descriptor everywhere else.
package handle

import (
	"errors"
	"io"
	"os"
)

// Handle is a raw, untyped OS handle.
type Handle uintptr

// Null is the absence of a handle.
const Null Handle = 0

// FromFile duplicates the handle of f into a new inheritable handle, and closes f.
// The returned handle is owned by the caller, whether f could be closed or not.
func FromFile(f *os.File) (h Handle, err error) {
	if f == nil {
		return Null, errors.New("nil file")
	}

	h, err = Duplicate(Handle(f.Fd()))
	if err != nil {
		_ = f.Close()
		return Null, err
	}

	if err := f.Close(); err != nil {
		_ = Close(h)
		return Null, err
	}

	return h, nil
}

// NullDevice opens the OS null device, for reading or for writing.
func NullDevice(write bool) (*os.File, error) {
	flag := os.O_RDONLY
	if write {
		flag = os.O_WRONLY
	}
	return os.OpenFile(os.DevNull, flag, 0)
}

// ReadAll reads from h until EOF. It does not close h.
func ReadAll(h Handle) ([]byte, error) {
	var out []byte
	buf := make([]byte, 4096)
	for {
		n, err := Read(h, buf)
		out = append(out, buf[:n]...)
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return out, err
		}
	}
}

// WriteAll writes all of p into h. It does not close h.
func WriteAll(h Handle, p []byte) error {
	for len(p) > 0 {
		n, err := Write(h, p)
		if err != nil {
			return err
		}
		if n == 0 {
			return io.ErrShortWrite
		}
		p = p[n:]
	}
	return nil
}
