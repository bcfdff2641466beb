package wslapi_test

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/ubuntu/wslapi"
	"github.com/ubuntu/wslapi/internal/hresult"
)

func TestClassify(t *testing.T) {
	t.Parallel()

	testCases := map[string]struct {
		hr   wslapi.HRESULT
		want wslapi.ErrorKind
	}{
		"E_INVALIDARG": {hr: hresult.E_INVALIDARG, want: wslapi.KindInvalidInput},

		"ERROR_ALREADY_EXISTS":     {hr: hresult.FromWin32(hresult.ERROR_ALREADY_EXISTS), want: wslapi.KindAlreadyExists},
		"ERROR_FILE_EXISTS":        {hr: hresult.FromWin32(hresult.ERROR_FILE_EXISTS), want: wslapi.KindAlreadyExists},
		"ERROR_FILE_NOT_FOUND":     {hr: hresult.FromWin32(hresult.ERROR_FILE_NOT_FOUND), want: wslapi.KindNotFound},
		"ERROR_PATH_NOT_FOUND":     {hr: hresult.FromWin32(hresult.ERROR_PATH_NOT_FOUND), want: wslapi.KindNotFound},
		"ERROR_MOD_NOT_FOUND":      {hr: hresult.FromWin32(hresult.ERROR_MOD_NOT_FOUND), want: wslapi.KindNotFound},
		"ERROR_PROC_NOT_FOUND":     {hr: hresult.FromWin32(hresult.ERROR_PROC_NOT_FOUND), want: wslapi.KindNotFound},
		"ERROR_INVALID_HANDLE":     {hr: hresult.FromWin32(hresult.ERROR_INVALID_HANDLE), want: wslapi.KindInvalidInput},
		"ERROR_INVALID_DRIVE":      {hr: hresult.FromWin32(hresult.ERROR_INVALID_DRIVE), want: wslapi.KindInvalidInput},
		"ERROR_INVALID_PARAMETER":  {hr: hresult.FromWin32(hresult.ERROR_INVALID_PARAMETER), want: wslapi.KindInvalidInput},
		"ERROR_INVALID_NAME":       {hr: hresult.FromWin32(hresult.ERROR_INVALID_NAME), want: wslapi.KindInvalidInput},
		"ERROR_INVALID_LEVEL":      {hr: hresult.FromWin32(hresult.ERROR_INVALID_LEVEL), want: wslapi.KindInvalidInput},
		"ERROR_INVALID_DATA":       {hr: hresult.FromWin32(hresult.ERROR_INVALID_DATA), want: wslapi.KindInvalidData},
		"ERROR_NO_MORE_FILES":      {hr: hresult.FromWin32(hresult.ERROR_NO_MORE_FILES), want: wslapi.KindUnexpectedEOF},
		"ERROR_HANDLE_EOF":         {hr: hresult.FromWin32(hresult.ERROR_HANDLE_EOF), want: wslapi.KindUnexpectedEOF},
		"ERROR_WRITE_PROTECT":      {hr: hresult.FromWin32(hresult.ERROR_WRITE_PROTECT), want: wslapi.KindPermissionDenied},
		"ERROR_SHARING_VIOLATION":  {hr: hresult.FromWin32(hresult.ERROR_SHARING_VIOLATION), want: wslapi.KindPermissionDenied},
		"ERROR_LOCK_VIOLATION":     {hr: hresult.FromWin32(hresult.ERROR_LOCK_VIOLATION), want: wslapi.KindPermissionDenied},
		"ERROR_BROKEN_PIPE":        {hr: hresult.FromWin32(hresult.ERROR_BROKEN_PIPE), want: wslapi.KindBrokenPipe},
		"ERROR_PIPE_NOT_CONNECTED": {hr: hresult.FromWin32(hresult.ERROR_PIPE_NOT_CONNECTED), want: wslapi.KindBrokenPipe},
		"WAIT_TIMEOUT":             {hr: hresult.FromWin32(hresult.WAIT_TIMEOUT), want: wslapi.KindTimedOut},
		"ERROR_SEM_TIMEOUT":        {hr: hresult.FromWin32(hresult.ERROR_SEM_TIMEOUT), want: wslapi.KindTimedOut},

		"Success is not an error kind": {hr: hresult.S_OK, want: wslapi.KindOther},
		"Unlisted Win32 error":         {hr: hresult.FromWin32(hresult.ERROR_ACCESS_DENIED), want: wslapi.KindOther},
		"Same code outside of FACILITY_WIN32": {hr: wslapi.HRESULT(-0x7ffbfffe), want: wslapi.KindOther}, // 0x80040002
		"E_FAIL":                 {hr: hresult.E_FAIL, want: wslapi.KindOther},
		"WSL_E_DISTRO_NOT_FOUND": {hr: hresult.WSL_E_DISTRO_NOT_FOUND, want: wslapi.KindOther},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			require.Equal(t, tc.want, wslapi.Classify(tc.hr), "Unexpected error kind")
		})
	}
}

func TestErrorIs(t *testing.T) {
	t.Parallel()

	testCases := map[string]struct {
		hr   wslapi.HRESULT
		want error
	}{
		"Not found":         {hr: hresult.FromWin32(hresult.ERROR_FILE_NOT_FOUND), want: fs.ErrNotExist},
		"Already exists":    {hr: hresult.FromWin32(hresult.ERROR_ALREADY_EXISTS), want: fs.ErrExist},
		"Permission denied": {hr: hresult.FromWin32(hresult.ERROR_WRITE_PROTECT), want: fs.ErrPermission},
		"Invalid input":     {hr: hresult.E_INVALIDARG, want: fs.ErrInvalid},
		"Invalid data":      {hr: hresult.FromWin32(hresult.ERROR_INVALID_DATA), want: wslapi.ErrInvalidData},
		"Timed out":         {hr: hresult.FromWin32(hresult.WAIT_TIMEOUT), want: os.ErrDeadlineExceeded},
		"Broken pipe":       {hr: hresult.FromWin32(hresult.ERROR_BROKEN_PIPE), want: io.ErrClosedPipe},
		"Unexpected EOF":    {hr: hresult.FromWin32(hresult.ERROR_HANDLE_EOF), want: io.ErrUnexpectedEOF},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			err := &wslapi.Error{Code: tc.hr, Message: "some call failed"}
			require.ErrorIs(t, err, tc.want, "Error should match the sentinel of its kind")
			require.NotErrorIs(t, err, fs.ErrClosed, "Error should not match unrelated sentinels")
			require.Equal(t, "some call failed", err.Error(), "Error message should be the one provided")
		})
	}

	err := &wslapi.Error{Code: hresult.E_FAIL, Message: "some call failed"}
	require.Equal(t, wslapi.KindOther, err.Kind(), "E_FAIL should be of kind Other")
	require.NotErrorIs(t, err, fs.ErrNotExist, "Errors of kind Other should not match any sentinel")

	var target *wslapi.Error
	wrapped := errors.Join(errors.New("context"), err)
	require.ErrorAs(t, wrapped, &target, "Error should be found in a chain")
	require.Equal(t, hresult.E_FAIL, target.Code, "HRESULT should be preserved")
}

func TestErrorKindString(t *testing.T) {
	t.Parallel()

	require.Equal(t, "not found", wslapi.KindNotFound.String())
	require.Equal(t, "invalid input", wslapi.KindInvalidInput.String())
	require.Equal(t, "other error", wslapi.KindOther.String())
	require.Equal(t, "other error", wslapi.ErrorKind(42).String(), "Unknown kinds should render as other")
}
