package wslapi

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/ubuntu/wslapi/internal/hresult"
)

// HRESULT is a Windows status code, as returned by wslapi.dll.
type HRESULT = hresult.HRESULT

// ErrInvalidData is what errors of kind KindInvalidData match with errors.Is.
var ErrInvalidData = errors.New("invalid data")

// ErrorKind is a coarse classification of an HRESULT, for generic error handling.
type ErrorKind int

// Error kinds. Each of them but KindOther matches a standard sentinel error with errors.Is.
const (
	KindOther            ErrorKind = iota // no sentinel
	KindNotFound                          // fs.ErrNotExist
	KindAlreadyExists                     // fs.ErrExist
	KindPermissionDenied                  // fs.ErrPermission
	KindInvalidInput                      // fs.ErrInvalid
	KindInvalidData                       // ErrInvalidData
	KindTimedOut                          // os.ErrDeadlineExceeded
	KindBrokenPipe                        // io.ErrClosedPipe
	KindUnexpectedEOF                     // io.ErrUnexpectedEOF
)

func (k ErrorKind) String() string {
	switch k {
	case KindNotFound:
		return "not found"
	case KindAlreadyExists:
		return "already exists"
	case KindPermissionDenied:
		return "permission denied"
	case KindInvalidInput:
		return "invalid input"
	case KindInvalidData:
		return "invalid data"
	case KindTimedOut:
		return "timed out"
	case KindBrokenPipe:
		return "broken pipe"
	case KindUnexpectedEOF:
		return "unexpected end of file"
	default:
		return "other error"
	}
}

func (k ErrorKind) sentinel() error {
	switch k {
	case KindNotFound:
		return fs.ErrNotExist
	case KindAlreadyExists:
		return fs.ErrExist
	case KindPermissionDenied:
		return fs.ErrPermission
	case KindInvalidInput:
		return fs.ErrInvalid
	case KindInvalidData:
		return ErrInvalidData
	case KindTimedOut:
		return os.ErrDeadlineExceeded
	case KindBrokenPipe:
		return io.ErrClosedPipe
	case KindUnexpectedEOF:
		return io.ErrUnexpectedEOF
	default:
		return nil
	}
}

// Classify maps an HRESULT to its ErrorKind. Unknown codes, and successes, are KindOther.
func Classify(hr HRESULT) ErrorKind {
	if hr == hresult.E_INVALIDARG {
		return KindInvalidInput
	}

	if hr.Succeeded() || hr.Facility() != hresult.FacilityWin32 {
		return KindOther
	}

	switch hr.Code() {
	case hresult.ERROR_ALREADY_EXISTS, hresult.ERROR_FILE_EXISTS:
		return KindAlreadyExists
	case hresult.ERROR_FILE_NOT_FOUND, hresult.ERROR_PATH_NOT_FOUND, hresult.ERROR_MOD_NOT_FOUND, hresult.ERROR_PROC_NOT_FOUND:
		return KindNotFound
	case hresult.ERROR_INVALID_HANDLE, hresult.ERROR_INVALID_DRIVE, hresult.ERROR_INVALID_PARAMETER, hresult.ERROR_INVALID_NAME, hresult.ERROR_INVALID_LEVEL:
		return KindInvalidInput
	case hresult.ERROR_INVALID_DATA:
		return KindInvalidData
	case hresult.ERROR_NO_MORE_FILES, hresult.ERROR_HANDLE_EOF:
		return KindUnexpectedEOF
	case hresult.ERROR_WRITE_PROTECT, hresult.ERROR_SHARING_VIOLATION, hresult.ERROR_LOCK_VIOLATION:
		return KindPermissionDenied
	case hresult.ERROR_BROKEN_PIPE, hresult.ERROR_PIPE_NOT_CONNECTED:
		return KindBrokenPipe
	case hresult.WAIT_TIMEOUT, hresult.ERROR_SEM_TIMEOUT:
		return KindTimedOut
	default:
		return KindOther
	}
}

// Error is an HRESULT along with a description of the call that failed.
//
// It matches the sentinel of its kind with errors.Is, so that callers can use
// generic checks such as errors.Is(err, fs.ErrNotExist).
type Error struct {
	Code    HRESULT
	Message string

	cause error
}

func (e *Error) Error() string {
	return e.Message
}

// Kind classifies the error from its HRESULT.
func (e *Error) Kind() ErrorKind {
	return Classify(e.Code)
}

// Is reports whether target is the sentinel of the error's kind.
func (e *Error) Is(target error) bool {
	s := e.Kind().sentinel()
	return s != nil && s == target
}

// Unwrap returns the lower-level error that caused this one, if any.
func (e *Error) Unwrap() error {
	return e.cause
}

// callError reports a failed call to wslapi.dll.
func callError(hr HRESULT, call string) *Error {
	return &Error{
		Code:    hr,
		Message: fmt.Sprintf("%s failed with HRESULT 0x%08X", call, uint32(hr)),
	}
}

// wrapError converts any error into an *Error. The HRESULT is taken from err if
// it carries one, and is fallback otherwise.
func wrapError(err error, fallback HRESULT, format string, args ...any) *Error {
	code := fallback
	var hr hresult.HRESULT
	if errors.As(err, &hr) {
		code = hr
	}

	return &Error{
		Code:    code,
		Message: fmt.Sprintf("%s: %v", fmt.Sprintf(format, args...), err),
		cause:   err,
	}
}
