package mock

// This file contains mocks for Win32 API definitions and imports.

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"strings"
	"unicode/utf16"
	"unsafe"

	"github.com/google/uuid"
	"github.com/ubuntu/decorate"
	"github.com/ubuntu/wslapi/internal/flags"
	"github.com/ubuntu/wslapi/internal/handle"
	"github.com/ubuntu/wslapi/internal/hresult"
	"github.com/ubuntu/wslapi/mock/internal/distrostate"
)

// DefaultEnvironment is what WslGetDistributionConfiguration reports for every
// distro registered through the mock.
var DefaultEnvironment = []string{
	"HOSTTYPE=x86_64",
	"LANG=en_US.UTF-8",
	"PATH=/usr/local/sbin:/usr/local/bin:/usr/sbin:/usr/bin:/sbin:/bin:/usr/games:/usr/local/games",
	"TERM=xterm-256color",
}

// stillActive is what GetExitCodeProcess returns for a process that has not exited yet.
const stillActive = 259

// WslIsDistributionRegistered mocks the WslIsDistributionRegistered call to the Win32 API.
func (b *Backend) WslIsDistributionRegistered(distributionName []uint16) bool {
	b.calls.Add(1)

	_, key := b.findDistroKey(decode(distributionName))
	return key != nil
}

// WslRegisterDistribution mocks the WslRegisterDistribution call to the Win32 API.
func (b *Backend) WslRegisterDistribution(distributionName, tarGzFilename []uint16) hresult.HRESULT {
	b.calls.Add(1)

	if b.WslRegisterDistributionError {
		return hresult.E_FAIL
	}

	name := decode(distributionName)
	if !validDistroName(name) {
		return hresult.E_INVALIDARG
	}

	if _, err := os.Stat(decode(tarGzFilename)); err != nil {
		return hresult.FromWin32(hresult.ERROR_FILE_NOT_FOUND)
	}

	b.lxssRootKey.mu.Lock()
	defer b.lxssRootKey.mu.Unlock()

	if _, key := b.findDistroKeyLocked(name); key != nil {
		return hresult.FromWin32(hresult.ERROR_ALREADY_EXISTS)
	}

	GUID, err := uuid.NewRandom()
	if err != nil {
		return hresult.E_UNEXPECTED
	}

	guidStr := fmt.Sprintf("{%s}", GUID.String())

	b.lxssRootKey.children[guidStr] = &RegistryKey{
		path: lxssPath + `\` + guidStr,
		data: map[string]any{
			"DistributionName":   name,
			"Flags":              flags.WslFlags(0xf),
			"Version":            uint32(2),
			"DefaultUid":         uint32(0),
			"DefaultEnvironment": DefaultEnvironment,
		},
		state: distrostate.New(),
	}

	// When registering the first distro, DefaultDistribution
	// is updated with its GUID
	if b.lxssRootKey.data["DefaultDistribution"] == "" {
		b.lxssRootKey.data["DefaultDistribution"] = guidStr
	}

	return hresult.S_OK
}

// WslUnregisterDistribution mocks the WslUnregisterDistribution call to the Win32 API.
func (b *Backend) WslUnregisterDistribution(distributionName []uint16) hresult.HRESULT {
	b.calls.Add(1)

	if b.WslUnregisterDistributionError {
		return hresult.E_FAIL
	}

	b.lxssRootKey.mu.Lock()
	defer b.lxssRootKey.mu.Unlock()

	GUID, key := b.findDistroKeyLocked(decode(distributionName))
	if key == nil {
		return hresult.WSL_E_DISTRO_NOT_FOUND
	}

	_ = key.state.MarkUninstalled()
	delete(b.lxssRootKey.children, GUID)

	// When you unregister the default distro, the one with the lowest GUID
	// (lexicographically) is set as default. If there are none, the field is
	// set to empty string.
	if b.lxssRootKey.data["DefaultDistribution"] != GUID {
		return hresult.S_OK
	}

	var firstGUID string
	for GUID := range b.lxssRootKey.children {
		if _, err := uuid.Parse(GUID); err != nil {
			continue // Not a distro
		}
		if firstGUID == "" || GUID < firstGUID {
			firstGUID = GUID
		}
	}
	b.lxssRootKey.data["DefaultDistribution"] = firstGUID

	return hresult.S_OK
}

// WslConfigureDistribution mocks the WslConfigureDistribution call to the Win32 API.
// Only the documented flags can be set, the WSL version bit is kept as it was.
func (b *Backend) WslConfigureDistribution(distributionName []uint16, defaultUID uint32, wslDistributionFlags flags.WslFlags) hresult.HRESULT {
	b.calls.Add(1)

	if b.WslConfigureDistributionError {
		return hresult.E_FAIL
	}

	if wslDistributionFlags&^flags.Valid != 0 {
		return hresult.E_INVALIDARG
	}

	_, key := b.findDistroKey(decode(distributionName))
	if key == nil {
		return hresult.WSL_E_DISTRO_NOT_FOUND
	}

	key.mu.Lock()
	defer key.mu.Unlock()

	old := key.data["Flags"].(flags.WslFlags) //nolint: forcetypeassert // we're the only ones with access to these fields
	key.data["Flags"] = wslDistributionFlags | old&flags.UndocumentedWSLVersion
	key.data["DefaultUid"] = defaultUID

	return hresult.S_OK
}

// WslGetDistributionConfiguration mocks the WslGetDistributionConfiguration call to the Win32 API.
// The environment is allocated in memory tracked by the mock, and must be released with CoTaskMemFree.
func (b *Backend) WslGetDistributionConfiguration(distributionName []uint16,
	distributionVersion *uint32,
	defaultUID *uint32,
	wslDistributionFlags *flags.WslFlags,
	defaultEnvironmentVariables ***byte,
	defaultEnvironmentVariableCount *uint32) hresult.HRESULT {
	b.calls.Add(1)

	if b.WslGetDistributionConfigurationError {
		if b.AllocateOnFailure {
			*defaultEnvironmentVariables, *defaultEnvironmentVariableCount = b.allocEnvironment(DefaultEnvironment)
		}
		return hresult.E_FAIL
	}

	_, key := b.findDistroKey(decode(distributionName))
	if key == nil {
		return hresult.WSL_E_DISTRO_NOT_FOUND
	}

	key.mu.RLock()
	defer key.mu.RUnlock()

	// Ignoring type assert linter because we're the only ones with access to these fields
	*distributionVersion = key.data["Version"].(uint32)        //nolint: forcetypeassert
	*defaultUID = key.data["DefaultUid"].(uint32)              //nolint: forcetypeassert
	*wslDistributionFlags = key.data["Flags"].(flags.WslFlags) //nolint: forcetypeassert
	env := key.data["DefaultEnvironment"].([]string)           //nolint: forcetypeassert

	*defaultEnvironmentVariables, *defaultEnvironmentVariableCount = b.allocEnvironment(env)

	return hresult.S_OK
}

// WslLaunchInteractive mocks the WslLaunchInteractive call to the Win32 API.
// The command runs synchronously, and writes to the test process' own stdout and stderr.
func (b *Backend) WslLaunchInteractive(distributionName, command []uint16, useCurrentWorkingDirectory bool, exitCode *uint32) hresult.HRESULT {
	b.calls.Add(1)

	if b.WslLaunchInteractiveError {
		return hresult.E_FAIL
	}

	_, key := b.findDistroKey(decode(distributionName))
	if key == nil {
		return hresult.WSL_E_DISTRO_NOT_FOUND
	}

	if err := key.state.Touch(); err != nil {
		return hresult.WSL_E_DISTRO_NOT_FOUND
	}

	sh := &shell{
		stdin:  handle.Null,
		stdout: handle.Handle(os.Stdout.Fd()),
		stderr: handle.Handle(os.Stderr.Fd()),
		env:    environment(key),
		useCWD: useCurrentWorkingDirectory,
	}

	// A nil command is the default shell: with no console input, it exits right away.
	*exitCode = sh.run(context.Background(), decode(command))

	return hresult.S_OK
}

// WslLaunch mocks the WslLaunch call to the Win32 API.
// The command runs in a goroutine, until the returned process handle is waited for.
func (b *Backend) WslLaunch(distributionName, command []uint16,
	useCurrentWorkingDirectory bool,
	stdIn, stdOut, stdErr handle.Handle,
	process *handle.Handle) hresult.HRESULT {
	b.calls.Add(1)

	if b.WslLaunchError {
		return hresult.E_FAIL
	}

	// Streams are never optional: the caller must pass the null device instead.
	// The command is not either: the default shell is an empty string.
	if command == nil || stdIn == handle.Null || stdOut == handle.Null || stdErr == handle.Null || process == nil {
		return hresult.E_INVALIDARG
	}

	_, key := b.findDistroKey(decode(distributionName))
	if key == nil {
		return hresult.WSL_E_DISTRO_NOT_FOUND
	}

	sh := &shell{
		stdin:  stdIn,
		stdout: stdOut,
		stderr: stdErr,
		env:    environment(key),
		useCWD: useCurrentWorkingDirectory,
	}

	p := newProcess()
	if err := key.state.AttachProcess(p); err != nil {
		p.cancel()
		return hresult.WSL_E_DISTRO_NOT_FOUND
	}

	go func() {
		defer key.state.DetachProcess(p)
		p.finish(sh.run(p.ctx, decode(command)))
	}()

	b.mu.Lock()
	defer b.mu.Unlock()

	*process = b.nextHandle
	b.processes[b.nextHandle] = p
	b.nextHandle += 4

	return hresult.S_OK
}

// WaitForSingleObject mocks waiting on a process handle.
func (b *Backend) WaitForSingleObject(h handle.Handle) (err error) {
	defer decorate.OnError(&err, "WaitForSingleObject(0x%x)", uintptr(h))

	p, err := b.process(h)
	if err != nil {
		return err
	}

	<-p.done

	// The error is only reported once the process is gone, so that the
	// caller is free to release its streams.
	if b.WaitForSingleObjectError {
		return Error{}
	}

	return nil
}

// GetExitCodeProcess mocks reading the exit code of a process handle.
func (b *Backend) GetExitCodeProcess(h handle.Handle) (code uint32, err error) {
	defer decorate.OnError(&err, "GetExitCodeProcess(0x%x)", uintptr(h))

	if b.GetExitCodeProcessError {
		return 0, Error{}
	}

	p, err := b.process(h)
	if err != nil {
		return 0, err
	}

	select {
	case <-p.done:
		return p.exitCode, nil
	default:
		return stillActive, nil
	}
}

// CloseHandle mocks closing a process handle.
func (b *Backend) CloseHandle(h handle.Handle) (err error) {
	defer decorate.OnError(&err, "CloseHandle(0x%x)", uintptr(h))

	if b.CloseHandleError {
		return Error{}
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.processes[h]; !ok {
		return hresult.FromWin32(hresult.ERROR_INVALID_HANDLE)
	}
	delete(b.processes, h)

	return nil
}

// CoTaskMemFree releases a block returned by WslGetDistributionConfiguration.
// It panics on anything else, including a double free.
func (b *Backend) CoTaskMemFree(p unsafe.Pointer) {
	if p == nil {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.allocations[p]; !ok {
		panic(fmt.Sprintf("CoTaskMemFree: %p was not allocated by the mock, or was already freed", p))
	}
	delete(b.allocations, p)
}

func (b *Backend) process(h handle.Handle) (*process, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	p, ok := b.processes[h]
	if !ok {
		return nil, hresult.FromWin32(hresult.ERROR_INVALID_HANDLE)
	}
	return p, nil
}

// allocEnvironment lays out vars the way wslapi.dll does: an array of pointers
// to NUL-terminated strings, each of them a separate allocation.
func (b *Backend) allocEnvironment(vars []string) (**byte, uint32) {
	if len(vars) == 0 {
		return nil, 0
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	array := make([]*byte, len(vars))
	for i, v := range vars {
		s := append([]byte(v), 0)
		array[i] = &s[0]
		b.allocations[unsafe.Pointer(&s[0])] = struct{}{}
	}
	b.allocations[unsafe.Pointer(&array[0])] = struct{}{}

	return &array[0], uint32(len(vars))
}

func (b *Backend) findDistroKey(distroName string) (GUID string, key *RegistryKey) {
	b.lxssRootKey.mu.RLock()
	defer b.lxssRootKey.mu.RUnlock()

	return b.findDistroKeyLocked(distroName)
}

// findDistroKeyLocked is findDistroKey for callers already holding the root key's mutex.
func (b *Backend) findDistroKeyLocked(distroName string) (GUID string, key *RegistryKey) {
	for GUID, key := range b.lxssRootKey.children {
		if _, err := uuid.Parse(GUID); err != nil {
			continue // Not a distro
		}
		if key.state == nil {
			continue // Not registered through the API
		}

		name, ok := key.data["DistributionName"].(string)
		if !ok {
			continue
		}
		// Distro names are case-insensitive
		if !strings.EqualFold(name, distroName) {
			continue
		}

		return GUID, key
	}

	return "", nil
}

// environment converts the default environment of a distro into a map.
func environment(key *RegistryKey) map[string]string {
	key.mu.RLock()
	defer key.mu.RUnlock()

	env := make(map[string]string)
	vars, _ := key.data["DefaultEnvironment"].([]string)
	for _, kv := range vars {
		k, v, _ := strings.Cut(kv, "=")
		env[k] = v
	}
	return env
}

var distroNameRegex = regexp.MustCompile(`^[A-Za-z0-9-_\.]+$`)

func validDistroName(distroName string) bool {
	return distroNameRegex.MatchString(distroName)
}

// decode converts a NUL-terminated UTF-16 string back into Go.
func decode(s []uint16) string {
	for i, c := range s {
		if c == 0 {
			s = s[:i]
			break
		}
	}
	return string(utf16.Decode(s))
}
