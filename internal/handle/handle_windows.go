package handle

import (
	"errors"
	"io"
	"os"

	"golang.org/x/sys/windows"
)

// Duplicate creates a new inheritable handle to the same object as h.
func Duplicate(h Handle) (Handle, error) {
	proc := windows.CurrentProcess()

	var dup windows.Handle
	err := windows.DuplicateHandle(proc, windows.Handle(h), proc, &dup, 0, true, windows.DUPLICATE_SAME_ACCESS)
	if err != nil {
		return Null, err
	}

	return Handle(dup), nil
}

// Close releases the handle.
func Close(h Handle) error {
	return windows.CloseHandle(windows.Handle(h))
}

// Read is a single ReadFile call. A broken pipe is reported as io.EOF.
func Read(h Handle, p []byte) (int, error) {
	var n uint32
	err := windows.ReadFile(windows.Handle(h), p, &n, nil)
	if errors.Is(err, windows.ERROR_BROKEN_PIPE) {
		return int(n), io.EOF
	}
	if err != nil {
		return int(n), err
	}
	if n == 0 && len(p) > 0 {
		return 0, io.EOF
	}
	return int(n), nil
}

// Write is a single WriteFile call.
func Write(h Handle, p []byte) (int, error) {
	var n uint32
	err := windows.WriteFile(windows.Handle(h), p, &n, nil)
	return int(n), err
}

// CreateTemporary creates a new file at path that Windows deletes when its last
// handle is closed. It fails if the file exists.
func CreateTemporary(path string) (*os.File, error) {
	p, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return nil, &os.PathError{Op: "open", Path: path, Err: err}
	}

	h, err := windows.CreateFile(p,
		windows.GENERIC_READ|windows.GENERIC_WRITE,
		windows.FILE_SHARE_READ|windows.FILE_SHARE_WRITE|windows.FILE_SHARE_DELETE,
		nil,
		windows.CREATE_NEW,
		windows.FILE_ATTRIBUTE_TEMPORARY|windows.FILE_FLAG_DELETE_ON_CLOSE, // in-memory cache if possible, cleanup after use
		0)
	if err != nil {
		return nil, &os.PathError{Op: "open", Path: path, Err: err}
	}

	return os.NewFile(uintptr(h), path), nil
}
