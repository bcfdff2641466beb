package wslapi_test

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/ubuntu/wslapi"
	wslmock "github.com/ubuntu/wslapi/mock"
)

const namePrefix string = "wsltesting"

// sanitizeDistroName sanitizes the name of the disto as much as possible.
func sanitizeDistroName(candidateName string) string {
	r := strings.NewReplacer(
		`/`, `--`,
		` `, `_`,
		`\`, `--`,
		`:`, `_`,
	)
	return r.Replace(candidateName)
}

// uniqueDistroName generates a unique distro name. It does not create the distro.
func uniqueDistroName(t *testing.T) string {
	t.Helper()

	//nolint:gosec // No need to be cryptographically secure for this
	return sanitizeDistroName(fmt.Sprintf("%s_%s_%d", namePrefix, t.Name(), rand.Uint64()))
}

// newTestLibrary loads a library backed by a fresh mock. The mock is returned
// so that tests can inject errors and look for leaks.
func newTestLibrary(t *testing.T) (*wslapi.Library, *wslmock.Backend) {
	t.Helper()

	m := wslmock.New()
	lib, err := wslapi.New(wslapi.WithMock(context.Background(), m))
	require.NoError(t, err, "Setup: could not load the mock library")

	return lib, m
}

// newTestDistro registers a distro with a unique name and unregisters it on cleanup.
func newTestDistro(t *testing.T, lib *wslapi.Library) string {
	t.Helper()

	name := uniqueDistroName(t)

	rootfs := filepath.Join(t.TempDir(), "rootfs.tar.gz")
	err := os.WriteFile(rootfs, nil, 0600)
	require.NoError(t, err, "Setup: could not write empty rootfs")

	err = lib.RegisterDistribution(name, rootfs)
	require.NoError(t, err, "Setup: could not register test distro")

	t.Cleanup(func() {
		if err := lib.UnregisterDistribution(name); err != nil {
			t.Logf("Cleanup: %v", err)
		}
	})

	return name
}

// launchAndWait launches command with stdin as its input, and returns its
// exit code and what it wrote to stdout and stderr.
func launchAndWait(t *testing.T, lib *wslapi.Library, distro, command string, stdin any) (code uint32, stdout, stderr string) {
	t.Helper()

	outR, outW, err := os.Pipe()
	require.NoError(t, err, "Setup: could not create stdout pipe")
	defer outR.Close()

	errR, errW, err := os.Pipe()
	require.NoError(t, err, "Setup: could not create stderr pipe")
	defer errR.Close()

	p, err := lib.Launch(distro, command, false, stdin, outW, errW)
	require.NoError(t, err, "Launch should not fail")

	status, err := p.Wait()
	require.NoError(t, err, "Wait should not fail")

	code, ok := status.Code()
	require.True(t, ok, "Exit code should be known")

	return code, readAll(t, outR), readAll(t, errR)
}

func readAll(t *testing.T, f *os.File) string {
	t.Helper()

	var sb strings.Builder
	buf := make([]byte, 512)
	for {
		n, err := f.Read(buf)
		sb.Write(buf[:n])
		if err != nil {
			break
		}
	}
	return sb.String()
}
