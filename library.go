package wslapi

import (
	"context"
	"fmt"
	"os"
	"strings"
	"unicode/utf16"

	"github.com/ubuntu/wslapi/internal/backend"
	"github.com/ubuntu/wslapi/internal/backend/windows"
	"github.com/ubuntu/wslapi/internal/handle"
	"github.com/ubuntu/wslapi/internal/hresult"
)

// Library is a loaded wslapi.dll. It is immutable once created, and safe for
// concurrent use.
type Library struct {
	backend backend.Backend
}

// New loads wslapi.dll and binds all its entry points. The back-end is
// taken from the context, see WithMock.
//
// It fails with an error of kind KindNotFound if the library or any of its
// entry points is missing, as is the case when WSL is not installed.
func New(ctx context.Context, args ...Option) (*Library, error) {
	opts := options{dll: windows.DefaultDLL}
	for _, f := range args {
		f(&opts)
	}

	b := selectBackend(ctx)
	if err := b.Load(opts.dll); err != nil {
		return nil, wrapError(err, hresult.FromWin32(hresult.ERROR_MOD_NOT_FOUND), "wslapi: could not bind %s", opts.dll)
	}

	return &Library{backend: b}, nil
}

// IsDistributionRegistered is a wrapper around Win32's WslIsDistributionRegistered.
func (l *Library) IsDistributionRegistered(distributionName string) (bool, error) {
	name, err := utf16Args("WslIsDistributionRegistered", distributionName)
	if err != nil {
		return false, err
	}

	return l.backend.WslIsDistributionRegistered(name[0]), nil
}

// RegisterDistribution is a wrapper around Win32's WslRegisterDistribution.
// It creates a new distro with a copy of the given tarball as its filesystem.
func (l *Library) RegisterDistribution(distributionName, tarGzFilename string) error {
	args, err := utf16Args("WslRegisterDistribution", distributionName, tarGzFilename)
	if err != nil {
		return err
	}

	if hr := l.backend.WslRegisterDistribution(args[0], args[1]); hr.Failed() {
		return callError(hr, fmt.Sprintf("WslRegisterDistribution(%q, %q)", distributionName, tarGzFilename))
	}

	return nil
}

// UnregisterDistribution is a wrapper around Win32's WslUnregisterDistribution.
// It irreparably destroys a distro and its filesystem.
func (l *Library) UnregisterDistribution(distributionName string) error {
	args, err := utf16Args("WslUnregisterDistribution", distributionName)
	if err != nil {
		return err
	}

	if hr := l.backend.WslUnregisterDistribution(args[0]); hr.Failed() {
		return callError(hr, fmt.Sprintf("WslUnregisterDistribution(%q)", distributionName))
	}

	return nil
}

// ConfigureDistribution is a wrapper around Win32's WslConfigureDistribution.
func (l *Library) ConfigureDistribution(distributionName string, defaultUID uint32, wslDistributionFlags DistributionFlags) error {
	args, err := utf16Args("WslConfigureDistribution", distributionName)
	if err != nil {
		return err
	}

	if hr := l.backend.WslConfigureDistribution(args[0], defaultUID, wslDistributionFlags); hr.Failed() {
		return callError(hr, fmt.Sprintf("WslConfigureDistribution(%q, %d, %s)", distributionName, defaultUID, wslDistributionFlags))
	}

	return nil
}

// GetDistributionConfiguration is a wrapper around Win32's WslGetDistributionConfiguration.
// The returned configuration owns the environment variables, and must be closed.
func (l *Library) GetDistributionConfiguration(distributionName string) (*Configuration, error) {
	args, err := utf16Args("WslGetDistributionConfiguration", distributionName)
	if err != nil {
		return nil, err
	}

	env := &EnvironmentVariables{free: l.backend.CoTaskMemFree}
	c := &Configuration{DefaultEnvironmentVariables: env}

	// The environment is taken even on failure: whatever was allocated must be freed.
	hr := l.backend.WslGetDistributionConfiguration(args[0], &c.Version, &c.DefaultUID, &c.Flags, &env.array, &env.count)
	env.track()

	if hr.Failed() {
		env.Close()
		return nil, callError(hr, fmt.Sprintf("WslGetDistributionConfiguration(%q, ...)", distributionName))
	}

	return c, nil
}

// LaunchInteractive is a wrapper around Win32's WslLaunchInteractive.
// The command shares the console of the calling process, and this call blocks
// until it exits. An empty command starts the default shell.
func (l *Library) LaunchInteractive(distributionName, command string, useCurrentWorkingDirectory bool) (exitCode uint32, err error) {
	args, err := utf16Args("WslLaunchInteractive", distributionName, command)
	if err != nil {
		return 0, err
	}

	if hr := l.backend.WslLaunchInteractive(args[0], optional(command, args[1]), useCurrentWorkingDirectory, &exitCode); hr.Failed() {
		return 0, callError(hr, fmt.Sprintf("WslLaunchInteractive(%q, %q, %t, ...)", distributionName, command, useCurrentWorkingDirectory))
	}

	return exitCode, nil
}

// Launch is a wrapper around Win32's WslLaunch. It starts command in the
// background, with the given standard streams. An empty command starts the default shell.
//
// The streams can be anything ToStdio accepts. On success, they are owned by
// the returned Process until it is joined. On failure, they are all released.
// Either way, *os.File and *Stdio arguments must not be used afterwards: passing
// os.Stdout or os.Stderr closes them in the calling process. Pass a duplicate,
// or nil to discard the stream.
func (l *Library) Launch(distributionName, command string, useCurrentWorkingDirectory bool, stdin, stdout, stderr any) (p *Process, err error) {
	given := [3]any{stdin, stdout, stderr}

	var streams [3]*Stdio
	defer func() {
		if err == nil {
			return
		}
		for i, s := range streams {
			if s == nil {
				releaseStream(given[i])
				continue
			}
			_ = s.Close()
		}
	}()

	args, err := utf16Args("WslLaunch", distributionName, command)
	if err != nil {
		return nil, err
	}

	call := fmt.Sprintf("WslLaunch(%q, %q, %t, ...)", distributionName, command, useCurrentWorkingDirectory)

	for i, v := range given {
		name := [...]string{"stdin", "stdout", "stderr"}[i]

		s, err := ToStdio(v)
		if err != nil {
			return nil, wrapError(err, hresult.E_INVALIDARG, "%s: invalid %s", call, name)
		}

		if streams[i], err = s.resolve(i != 0); err != nil {
			return nil, wrapError(err, hresult.E_INVALIDARG, "%s: invalid %s", call, name)
		}
	}

	var h handle.Handle
	hr := l.backend.WslLaunch(args[0], args[1], useCurrentWorkingDirectory,
		handle.Handle(streams[0].Fd()),
		handle.Handle(streams[1].Fd()),
		handle.Handle(streams[2].Fd()),
		&h)
	if hr.Failed() {
		return nil, callError(hr, call)
	}

	return newProcess(l.backend, h, streams[0], streams[1], streams[2]), nil
}

// releaseStream closes a stream argument that was never converted. Arguments
// that own nothing are left alone.
func releaseStream(v any) {
	switch v := v.(type) {
	case *Stdio:
		_ = v.Close()
	case *os.File:
		if v != nil {
			_ = v.Close()
		}
	}
}

// utf16Args converts the arguments of call into NUL-terminated UTF-16. Arguments
// containing a NUL would be silently truncated, so they are rejected.
func utf16Args(call string, args ...string) ([][]uint16, error) {
	out := make([][]uint16, len(args))
	for i, s := range args {
		if strings.IndexByte(s, 0) != -1 {
			return nil, &Error{
				Code:    hresult.E_INVALIDARG,
				Message: fmt.Sprintf("%s: argument %q contains a NUL character", call, s),
			}
		}
		out[i] = append(utf16.Encode([]rune(s)), 0)
	}
	return out, nil
}

// optional maps an empty string to a null pointer.
func optional(s string, u []uint16) []uint16 {
	if s == "" {
		return nil
	}
	return u
}
