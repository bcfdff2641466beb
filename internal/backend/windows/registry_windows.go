package windows

import (
	"errors"
	"io/fs"

	"github.com/ubuntu/decorate"
	"github.com/ubuntu/wslapi/internal/backend"
	"golang.org/x/sys/windows"
	"golang.org/x/sys/windows/registry"
)

// LxssPath is the registry key, under HKEY_CURRENT_USER, where WSL keeps track
// of its distributions: one subkey per distribution, named after its GUID.
const LxssPath = `Software\Microsoft\Windows\CurrentVersion\Lxss`

// RegistryKey wraps around a Windows registry key.
// Create it by calling OpenLxssRegistry. Must be closed after use.
type RegistryKey struct {
	key  registry.Key
	path string
}

// OpenLxssRegistry opens path, relative to the Lxss key, for reading.
// A missing key is reported as fs.ErrNotExist.
func (*Backend) OpenLxssRegistry(path string) (r backend.RegistryKey, err error) {
	p := LxssPath
	if path != "" && path != "." {
		p = LxssPath + `\` + path
	}
	defer decorate.OnError(&err, `registry: could not open HKEY_CURRENT_USER\%s`, p)

	k, err := registry.OpenKey(registry.CURRENT_USER, p, registry.QUERY_VALUE|registry.ENUMERATE_SUB_KEYS)
	if errors.Is(err, windows.ERROR_FILE_NOT_FOUND) {
		return nil, fs.ErrNotExist
	}
	if err != nil {
		return nil, err
	}

	return &RegistryKey{key: k, path: p}, nil
}

// Close releases the key.
func (r *RegistryKey) Close() (err error) {
	defer decorate.OnError(&err, `registry: could not close HKEY_CURRENT_USER\%s`, r.path)
	return r.key.Close()
}

// Field obtains the value of a string field.
func (r *RegistryKey) Field(name string) (value string, err error) {
	defer decorate.OnError(&err, `registry: could not access string field %q in HKEY_CURRENT_USER\%s`, name, r.path)

	value, _, err = r.key.GetStringValue(name)
	if errors.Is(err, windows.ERROR_FILE_NOT_FOUND) {
		return "", fs.ErrNotExist
	}
	if err != nil {
		return "", err
	}

	return value, nil
}

// SubkeyNames returns the names of the key's children.
func (r *RegistryKey) SubkeyNames() (subkeys []string, err error) {
	defer decorate.OnError(&err, `registry: could not list subkeys of HKEY_CURRENT_USER\%s`, r.path)

	info, err := r.key.Stat()
	if err != nil {
		return nil, err
	}

	return r.key.ReadSubKeyNames(int(info.SubKeyCount))
}
