package windows

import (
	"errors"

	"github.com/ubuntu/decorate"
	"github.com/ubuntu/wslapi/internal/backend"
)

// LxssPath is the registry key, under HKEY_CURRENT_USER, where WSL keeps track
// of its distributions.
const LxssPath = `Software\Microsoft\Windows\CurrentVersion\Lxss`

// OpenLxssRegistry always fails on Linux, there is no registry to read.
func (*Backend) OpenLxssRegistry(path string) (r backend.RegistryKey, err error) {
	defer decorate.OnError(&err, `registry: could not open HKEY_CURRENT_USER\%s\%s`, LxssPath, path)
	return nil, errors.New("not implemented on Linux")
}
