//go:build unix

package handle

import (
	"errors"
	"io"
	"os"

	"golang.org/x/sys/unix"
)

// Duplicate creates a new file descriptor to the same file as h. The new
// descriptor does not have FD_CLOEXEC set, so child processes inherit it.
func Duplicate(h Handle) (Handle, error) {
	fd, err := unix.Dup(int(h))
	if err != nil {
		return Null, err
	}
	return Handle(fd), nil
}

// Close releases the file descriptor.
func Close(h Handle) error {
	return unix.Close(int(h))
}

// Read is a single read(2), retried on EINTR.
func Read(h Handle, p []byte) (int, error) {
	for {
		n, err := unix.Read(int(h), p)
		if errors.Is(err, unix.EINTR) {
			continue
		}
		if err != nil {
			return 0, err
		}
		if n == 0 && len(p) > 0 {
			return 0, io.EOF
		}
		return n, nil
	}
}

// Write is a single write(2), retried on EINTR.
func Write(h Handle, p []byte) (int, error) {
	for {
		n, err := unix.Write(int(h), p)
		if errors.Is(err, unix.EINTR) {
			continue
		}
		if err != nil {
			return 0, err
		}
		return n, nil
	}
}

// CreateTemporary creates a new file at path and unlinks it straight away, so
// that it disappears once its last descriptor is closed. It fails if the file exists.
func CreateTemporary(path string) (*os.File, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0600)
	if err != nil {
		return nil, err
	}

	if err := os.Remove(path); err != nil {
		_ = f.Close()
		return nil, err
	}

	return f, nil
}
