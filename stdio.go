package wslapi

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sync/atomic"

	"github.com/0xrawsec/golang-utils/log"
	"github.com/ubuntu/decorate"
	"github.com/ubuntu/wslapi/internal/handle"
)

// tempCounter makes the names of concurrent StdioFromBytes buffers unique within the process.
var tempCounter atomic.Uint64

type stdioState int

const (
	stdioNull     stdioState = iota // Discard the stream
	stdioOwned                      // Owns h, which must be closed
	stdioReleased                   // Closed, or moved into another Stdio
)

// Stdio is the standard input, output or error stream of a launched process.
//
// It owns an inheritable handle and closes it exactly once: when Close is called,
// or when the Process it was moved into is joined. A null Stdio discards the
// stream. A Stdio is not safe for concurrent use.
type Stdio struct {
	state stdioState
	h     handle.Handle
}

// NullStdio returns a Stdio that discards the stream, like attaching it to /dev/null.
func NullStdio() *Stdio {
	return &Stdio{state: stdioNull}
}

// StdioFromHandle takes ownership of a raw handle. The caller asserts that h is
// valid, inheritable, legal for the stream it is used for and can be closed by
// the Stdio. A zero handle gives a null Stdio.
func StdioFromHandle(h uintptr) *Stdio {
	if h == 0 {
		return NullStdio()
	}

	s := &Stdio{state: stdioOwned, h: handle.Handle(h)}
	runtime.SetFinalizer(s, (*Stdio).finalize)
	return s
}

// StdioFromFile duplicates the handle of f into an inheritable handle owned by
// the new Stdio. f is closed in all cases: the Stdio is now the only owner.
// Passing os.Stdout or os.Stderr closes the stream of the calling process.
func StdioFromFile(f *os.File) (s *Stdio, err error) {
	if f == nil {
		return nil, errors.New("could not duplicate file: nil file")
	}
	defer decorate.OnError(&err, "could not duplicate %s", f.Name())

	h, err := handle.FromFile(f)
	if err != nil {
		return nil, err
	}

	return StdioFromHandle(uintptr(h)), nil
}

// StdioFromBytes streams data from a temporary file. The file is deleted once
// its last handle is closed.
func StdioFromBytes(data []byte) (*Stdio, error) {
	return stdioFromBytesAt(nextTempPath(), data)
}

func stdioFromBytesAt(path string, data []byte) (s *Stdio, err error) {
	defer decorate.OnError(&err, "could not buffer %d bytes into %s", len(data), path)

	f, err := handle.CreateTemporary(path)
	if err != nil {
		return nil, err
	}

	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return nil, err
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		_ = f.Close()
		return nil, err
	}

	return StdioFromFile(f)
}

// ToStdio converts any of the supported stream specifications into a Stdio:
//   - nil gives a null Stdio.
//   - a *Stdio is moved: the original no longer owns anything.
//   - an *os.File is duplicated and closed, as in StdioFromFile.
//   - []byte, string and io.Reader are buffered, as in StdioFromBytes.
func ToStdio(v any) (*Stdio, error) {
	switch v := v.(type) {
	case nil:
		return NullStdio(), nil
	case *Stdio:
		if v == nil {
			return NullStdio(), nil
		}
		return v.move()
	case *os.File:
		return StdioFromFile(v)
	case []byte:
		return StdioFromBytes(v)
	case string:
		return StdioFromBytes([]byte(v))
	case io.Reader:
		data, err := io.ReadAll(v)
		if err != nil {
			return nil, fmt.Errorf("could not read stream: %v", err)
		}
		return StdioFromBytes(data)
	default:
		return nil, fmt.Errorf("unsupported stream type %T", v)
	}
}

// Fd returns the raw handle, or 0 for a null or closed Stdio. The Stdio keeps ownership.
func (s *Stdio) Fd() uintptr {
	if s == nil || s.state != stdioOwned {
		return 0
	}
	return uintptr(s.h)
}

// IsNull returns true if the stream is discarded.
func (s *Stdio) IsNull() bool {
	return s == nil || s.state == stdioNull
}

// Close releases the handle. Closing a null or already closed Stdio does nothing.
func (s *Stdio) Close() error {
	if s == nil || s.state != stdioOwned {
		return nil
	}

	s.state = stdioReleased
	runtime.SetFinalizer(s, nil)

	if err := handle.Close(s.h); err != nil {
		return fmt.Errorf("could not close handle 0x%x: %v", uintptr(s.h), err)
	}
	return nil
}

// move transfers ownership into a new Stdio.
func (s *Stdio) move() (*Stdio, error) {
	switch s.state {
	case stdioNull:
		return NullStdio(), nil
	case stdioReleased:
		return nil, errors.New("stream was already closed or used")
	}

	s.state = stdioReleased
	runtime.SetFinalizer(s, nil)

	return StdioFromHandle(uintptr(s.h)), nil
}

// resolve replaces a null Stdio with one attached to the null device, which
// is what WslLaunch expects for a discarded stream. Other streams are returned as is.
func (s *Stdio) resolve(write bool) (*Stdio, error) {
	if !s.IsNull() {
		return s, nil
	}

	f, err := handle.NullDevice(write)
	if err != nil {
		return nil, err
	}

	return StdioFromFile(f)
}

func (s *Stdio) finalize() {
	if s.state != stdioOwned {
		return
	}
	log.Warnf("wslapi: closing handle 0x%x of a Stdio that was never closed", uintptr(s.h))
	if err := s.Close(); err != nil {
		log.Warnf("wslapi: %v", err)
	}
}

func nextTempPath() string {
	n := tempCounter.Add(1) - 1
	return filepath.Join(os.TempDir(), fmt.Sprintf("wslapi-%d-%d.tmp", os.Getpid(), n))
}
