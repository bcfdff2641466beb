package handle_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/ubuntu/wslapi/internal/handle"
)

func TestFromFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(path, []byte("contents"), 0600), "Setup: could not write file")

	f, err := os.Open(path)
	require.NoError(t, err, "Setup: could not open file")

	h, err := handle.FromFile(f)
	require.NoError(t, err, "FromFile should not fail")
	defer handle.Close(h)

	require.NotEqual(t, handle.Null, h, "FromFile should return a valid handle")

	_, err = f.Stat()
	require.ErrorIs(t, err, os.ErrClosed, "FromFile should close the file")

	got, err := handle.ReadAll(h)
	require.NoError(t, err, "ReadAll should not fail")
	require.Equal(t, "contents", string(got), "Unexpected contents")

	_, err = handle.FromFile(nil)
	require.Error(t, err, "FromFile should fail with a nil file")
}

func TestWriteAllReadAll(t *testing.T) {
	t.Parallel()

	r, w, err := os.Pipe()
	require.NoError(t, err, "Setup: could not create pipe")
	defer r.Close()

	hr, err := handle.FromFile(r)
	require.NoError(t, err, "Setup: could not duplicate read end")
	defer handle.Close(hr)

	hw, err := handle.FromFile(w)
	require.NoError(t, err, "Setup: could not duplicate write end")

	want := []byte("hello through a pipe")
	errCh := make(chan error, 1)
	go func() {
		errCh <- handle.WriteAll(hw, want)
		_ = handle.Close(hw)
	}()

	got, err := handle.ReadAll(hr)
	require.NoError(t, err, "ReadAll should not fail")
	require.NoError(t, <-errCh, "WriteAll should not fail")
	require.Equal(t, string(want), string(got), "Unexpected contents")
}

func TestNullDevice(t *testing.T) {
	t.Parallel()

	in, err := handle.NullDevice(false)
	require.NoError(t, err, "NullDevice should open for reading")
	h, err := handle.FromFile(in)
	require.NoError(t, err, "FromFile should not fail")
	defer handle.Close(h)

	got, err := handle.ReadAll(h)
	require.NoError(t, err, "Reading the null device should not fail")
	require.Empty(t, got, "The null device should be empty")

	out, err := handle.NullDevice(true)
	require.NoError(t, err, "NullDevice should open for writing")
	h2, err := handle.FromFile(out)
	require.NoError(t, err, "FromFile should not fail")
	defer handle.Close(h2)

	require.NoError(t, handle.WriteAll(h2, []byte("discarded")), "Writing to the null device should not fail")
}

func TestCreateTemporary(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "buffer.tmp")

	f, err := handle.CreateTemporary(path)
	require.NoError(t, err, "CreateTemporary should not fail")

	_, err = f.WriteString("temporary")
	require.NoError(t, err, "Writing to the temporary file should not fail")

	require.NoError(t, f.Close(), "Closing the temporary file should not fail")
	require.NoFileExists(t, path, "The file should be gone once closed")
}

func TestCreateTemporaryFailsIfExists(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "buffer.tmp")
	require.NoError(t, os.WriteFile(path, nil, 0600), "Setup: could not write file")

	_, err := handle.CreateTemporary(path)
	require.ErrorIs(t, err, os.ErrExist, "CreateTemporary should not reuse an existing file")
	require.FileExists(t, path, "The existing file should be left alone")
}
