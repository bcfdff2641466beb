package mock

import (
	"errors"
	"io/fs"
	"sort"
	"sync"

	"github.com/ubuntu/decorate"
	"github.com/ubuntu/wslapi/internal/backend"
	"github.com/ubuntu/wslapi/mock/internal/distrostate"
)

// RegistryKey wraps around a Windows registry key.
// Create it by calling OpenLxssRegistry. Must be closed after use with RegistryKey.Close.
// This implementation is a mock used for testing.
type RegistryKey struct {
	path string

	children map[string]*RegistryKey
	data     map[string]any

	state *distrostate.DistroState

	mu sync.RWMutex
}

const lxssPath = `HKEY_CURRENT_USER\Software\Microsoft\Windows\CurrentVersion\Lxss`

func newRootKey() *RegistryKey {
	return &RegistryKey{
		path: lxssPath,
		children: map[string]*RegistryKey{
			"AppxInstallerCache": {
				path: lxssPath + `\AppxInstallerCache`,
				data: map[string]any{},
			},
		},
		data: map[string]any{
			"DefaultDistribution": "",
		},
	}
}

// OpenLxssRegistry opens a registry key at the chosen path subpath of the Lxss key.
//
// This implementation is a mock used for testing.
func (b *Backend) OpenLxssRegistry(path string) (r backend.RegistryKey, err error) {
	defer decorate.OnError(&err, `registry: could not open %s\%s`, lxssPath, path)

	if b.OpenLxssKeyError {
		return nil, Error{}
	}

	if b.LxssKeyMissing {
		return nil, fs.ErrNotExist
	}

	if path == "" || path == "." {
		return b.lxssRootKey, nil
	}

	b.lxssRootKey.mu.RLock()
	defer b.lxssRootKey.mu.RUnlock()

	key, ok := b.lxssRootKey.children[path]
	if !ok {
		return nil, fs.ErrNotExist
	}

	return key, nil
}

// SetRegistryKey creates or overwrites a subkey of the Lxss key with the given
// string fields, bypassing WslRegisterDistribution. It is meant to set up
// unusual registry contents.
func (b *Backend) SetRegistryKey(subkey string, fields map[string]string) {
	data := make(map[string]any, len(fields))
	for k, v := range fields {
		data[k] = v
	}

	b.lxssRootKey.mu.Lock()
	defer b.lxssRootKey.mu.Unlock()

	b.lxssRootKey.children[subkey] = &RegistryKey{
		path: lxssPath + `\` + subkey,
		data: data,
	}
}

// Close releases the key.
// This implementation is a mock used for testing.
func (r *RegistryKey) Close() error {
	return nil
}

// Field obtains the value of a Field. The value must be a string.
// This implementation is a mock used for testing.
func (r *RegistryKey) Field(name string) (value string, err error) {
	defer decorate.OnError(&err, "registry: could not access field %q in %s", name, r.path)

	r.mu.RLock()
	defer r.mu.RUnlock()

	v, ok := r.data[name]
	if !ok {
		return "", fs.ErrNotExist
	}

	s, ok := v.(string)
	if !ok {
		return "", errors.New("field is not string")
	}

	return s, nil
}

// SubkeyNames returns a slice containing the names of the current key's children.
// This implementation is a mock used for testing.
func (r *RegistryKey) SubkeyNames() (subkeys []string, err error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for key := range r.children {
		subkeys = append(subkeys, key)
	}
	sort.Strings(subkeys)

	return subkeys, nil
}
