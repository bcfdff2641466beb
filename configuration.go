package wslapi

import (
	"fmt"

	"github.com/ubuntu/wslapi/internal/flags"
	"gopkg.in/yaml.v3"
)

// Configuration is the configuration of a distro, as returned by
// WslGetDistributionConfiguration. It must be closed to free its environment.
type Configuration struct {
	Version                     uint32                // WSL version the distro is configured for
	DefaultUID                  uint32                // User ID of default user
	Flags                       DistributionFlags     // Flags governing the behaviour of the distro
	DefaultEnvironmentVariables *EnvironmentVariables // Environment variables passed to the distro by default
}

// Close frees the environment variables.
func (c *Configuration) Close() {
	c.DefaultEnvironmentVariables.Close()
}

// InteropEnabled is whether the ENABLE_INTEROP flag is set.
// It allows you to launch Windows executables from WSL.
func (c Configuration) InteropEnabled() bool {
	return c.Flags.Has(flags.EnableInterop)
}

// PathAppended is whether the APPEND_NT_PATH flag is set.
// It adds the Windows %PATH% to the $PATH of WSL sessions.
func (c Configuration) PathAppended() bool {
	return c.Flags.Has(flags.AppendNTPath)
}

// DriveMountingEnabled is whether the ENABLE_DRIVE_MOUNTING flag is set.
// It mounts the Windows drives into WSL's filesystem.
func (c Configuration) DriveMountingEnabled() bool {
	return c.Flags.Has(flags.EnableDriveMounting)
}

// WSLVersion is 1 or 2, read from an undocumented flag.
func (c Configuration) WSLVersion() uint8 {
	return flags.Unpack(c.Flags).UndocumentedWSLVersion
}

// String shows the configuration as a yaml string.
// If it errors out, the message is returned as the value in the yaml.
func (c Configuration) String() string {
	out, err := yaml.Marshal(struct {
		Version                     uint32            `yaml:"version"`
		DefaultUID                  uint32            `yaml:"defaultUid"`
		Flags                       string            `yaml:"flags"`
		InteropEnabled              bool              `yaml:"interopEnabled"`
		PathAppended                bool              `yaml:"pathAppended"`
		DriveMountingEnabled        bool              `yaml:"driveMountingEnabled"`
		WSLVersion                  uint8             `yaml:"wslVersion"`
		DefaultEnvironmentVariables map[string]string `yaml:"defaultEnvironmentVariables,omitempty"`
	}{
		Version:                     c.Version,
		DefaultUID:                  c.DefaultUID,
		Flags:                       c.Flags.String(),
		InteropEnabled:              c.InteropEnabled(),
		PathAppended:                c.PathAppended(),
		DriveMountingEnabled:        c.DriveMountingEnabled(),
		WSLVersion:                  c.WSLVersion(),
		DefaultEnvironmentVariables: c.DefaultEnvironmentVariables.Map(),
	})
	if err != nil {
		return fmt.Sprintf("configuration: |\n  %v\n", err)
	}
	return string(out)
}
