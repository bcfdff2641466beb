package wslapi_test

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/ubuntu/wslapi"
	wslmock "github.com/ubuntu/wslapi/mock"
	"gopkg.in/yaml.v3"
)

func TestGetDistributionConfiguration(t *testing.T) {
	t.Parallel()

	lib, m := newTestLibrary(t)
	distro := newTestDistro(t, lib)

	c, err := lib.GetDistributionConfiguration(distro)
	require.NoError(t, err, "GetDistributionConfiguration should not fail")

	require.Equal(t, uint32(2), c.Version, "Unexpected WSL version")
	require.Equal(t, uint32(0), c.DefaultUID, "Unexpected default user")
	require.Equal(t, wslapi.FlagsValid|wslapi.FlagUndocumentedWSLVersion, c.Flags, "Unexpected flags")

	require.True(t, c.InteropEnabled(), "Interop should be enabled")
	require.True(t, c.PathAppended(), "Windows path should be appended")
	require.True(t, c.DriveMountingEnabled(), "Drive mounting should be enabled")
	require.Equal(t, uint8(2), c.WSLVersion(), "Unexpected WSL version from the flags")

	env := c.DefaultEnvironmentVariables
	require.Equal(t, len(wslmock.DefaultEnvironment), env.Len(), "Unexpected number of environment variables")
	for i, want := range wslmock.DefaultEnvironment {
		k, v, ok := env.Get(i)
		require.True(t, ok, "Variable %d should exist", i)
		require.Equal(t, want, string(k)+"="+string(v), "Variable %d does not match", i)
	}
	require.Contains(t, env.Map(), "PATH", "PATH should be in the default environment")

	require.Positive(t, m.LiveAllocations(), "The environment should be allocated until closed")
	c.Close()
	require.Zero(t, m.LiveAllocations(), "Close should free every allocation")
	require.Zero(t, c.DefaultEnvironmentVariables.Len(), "A closed environment should be empty")

	require.NotPanics(t, c.Close, "Closing twice should not free anything twice")
}

func TestGetDistributionConfigurationAfterConfigure(t *testing.T) {
	t.Parallel()

	lib, _ := newTestLibrary(t)
	distro := newTestDistro(t, lib)

	err := lib.ConfigureDistribution(distro, 1000, wslapi.FlagEnableInterop)
	require.NoError(t, err, "ConfigureDistribution should not fail")

	c, err := lib.GetDistributionConfiguration(distro)
	require.NoError(t, err, "GetDistributionConfiguration should not fail")
	defer c.Close()

	require.Equal(t, uint32(1000), c.DefaultUID, "Default user should have been changed")
	require.True(t, c.InteropEnabled(), "Interop should be enabled")
	require.False(t, c.PathAppended(), "Windows path should no longer be appended")
	require.False(t, c.DriveMountingEnabled(), "Drive mounting should be disabled")
	require.Equal(t, uint8(2), c.WSLVersion(), "WSL version should not be changed by ConfigureDistribution")
}

func TestGetDistributionConfigurationFails(t *testing.T) {
	t.Parallel()

	testCases := map[string]struct {
		distroNotRegistered bool
		mockError           bool
		allocateOnFailure   bool

		wantKind wslapi.ErrorKind
	}{
		"Error when the distro is not registered":       {distroNotRegistered: true, wantKind: wslapi.KindOther},
		"Error when the call fails":                     {mockError: true, wantKind: wslapi.KindOther},
		"Error when the call fails after allocating":    {mockError: true, allocateOnFailure: true, wantKind: wslapi.KindOther},
		"Error with a NUL character in the distro name": {wantKind: wslapi.KindInvalidInput},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			lib, m := newTestLibrary(t)

			distro := uniqueDistroName(t)
			if !tc.distroNotRegistered {
				distro = newTestDistro(t, lib)
			}
			if tc.wantKind == wslapi.KindInvalidInput {
				distro += "\x00"
			}

			m.WslGetDistributionConfigurationError = tc.mockError
			m.AllocateOnFailure = tc.allocateOnFailure

			c, err := lib.GetDistributionConfiguration(distro)
			require.Error(t, err, "GetDistributionConfiguration should fail")
			require.Nil(t, c, "No configuration should be returned on failure")

			var e *wslapi.Error
			require.ErrorAs(t, err, &e, "Error should be a *wslapi.Error")
			require.Equal(t, tc.wantKind, e.Kind(), "Unexpected error kind")

			require.Zero(t, m.LiveAllocations(), "Nothing should be left allocated after a failure")
		})
	}
}

func TestConfigureDistribution(t *testing.T) {
	t.Parallel()

	testCases := map[string]struct {
		flags               wslapi.DistributionFlags
		distroNotRegistered bool
		mockError           bool

		wantErr     bool
		wantInvalid bool
	}{
		"No flags":            {flags: wslapi.FlagNone},
		"Every valid flag":    {flags: wslapi.FlagsValid},
		"Only drive mounting": {flags: wslapi.FlagEnableDriveMounting},

		"Error with the undocumented version flag": {flags: wslapi.FlagUndocumentedWSLVersion, wantErr: true, wantInvalid: true},
		"Error when the distro is not registered":  {flags: wslapi.FlagsDefault, distroNotRegistered: true, wantErr: true},
		"Error when the call fails":                {flags: wslapi.FlagsDefault, mockError: true, wantErr: true},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			lib, m := newTestLibrary(t)

			distro := uniqueDistroName(t)
			if !tc.distroNotRegistered {
				distro = newTestDistro(t, lib)
			}
			m.WslConfigureDistributionError = tc.mockError

			err := lib.ConfigureDistribution(distro, 1000, tc.flags)
			if tc.wantErr {
				require.Error(t, err, "ConfigureDistribution should fail")
				if tc.wantInvalid {
					require.ErrorIs(t, err, fs.ErrInvalid, "Invalid flags should be an invalid input error")
				}
				return
			}
			require.NoError(t, err, "ConfigureDistribution should not fail")

			c, err := lib.GetDistributionConfiguration(distro)
			require.NoError(t, err, "GetDistributionConfiguration should not fail")
			defer c.Close()

			require.Equal(t, tc.flags|wslapi.FlagUndocumentedWSLVersion, c.Flags, "Flags were not applied")
		})
	}
}

func TestConfigurationString(t *testing.T) {
	t.Parallel()

	lib, _ := newTestLibrary(t)
	distro := newTestDistro(t, lib)

	c, err := lib.GetDistributionConfiguration(distro)
	require.NoError(t, err, "GetDistributionConfiguration should not fail")
	defer c.Close()

	s := c.String()

	var got map[string]any
	err = yaml.Unmarshal([]byte(s), &got)
	require.NoError(t, err, "String should return valid yaml:\n%s", s)

	require.Equal(t, 2, got["version"], "Unexpected version in:\n%s", s)
	require.Equal(t, 0, got["defaultUid"], "Unexpected default user in:\n%s", s)
	require.Equal(t, "ENABLE_INTEROP|APPEND_NT_PATH|ENABLE_DRIVE_MOUNTING|UNDOCUMENTED_WSL_VERSION", got["flags"], "Unexpected flags in:\n%s", s)
	require.Equal(t, true, got["interopEnabled"], "Unexpected interop in:\n%s", s)
	require.Equal(t, true, got["pathAppended"], "Unexpected path appending in:\n%s", s)
	require.Equal(t, true, got["driveMountingEnabled"], "Unexpected drive mounting in:\n%s", s)
	require.Equal(t, 2, got["wslVersion"], "Unexpected WSL version in:\n%s", s)

	env, ok := got["defaultEnvironmentVariables"].(map[string]any)
	require.True(t, ok, "Environment should be a mapping in:\n%s", s)
	require.Equal(t, "en_US.UTF-8", env["LANG"], "Unexpected LANG in:\n%s", s)

	// Without an environment, the field is left out.
	c.Close()
	require.False(t, strings.Contains(c.String(), "defaultEnvironmentVariables"), "A closed environment should not be rendered")
}
