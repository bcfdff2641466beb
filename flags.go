package wslapi

import "github.com/ubuntu/wslapi/internal/flags"

// DistributionFlags is Windows' WSL_DISTRIBUTION_FLAGS.
// Its String method renders the named bits, followed by the unknown ones in hexadecimal.
type DistributionFlags = flags.WslFlags

// Flags accepted by ConfigureDistribution.
const (
	FlagNone                DistributionFlags = flags.None
	FlagEnableInterop       DistributionFlags = flags.EnableInterop
	FlagAppendNTPath        DistributionFlags = flags.AppendNTPath
	FlagEnableDriveMounting DistributionFlags = flags.EnableDriveMounting

	// FlagsValid are all the documented flags.
	FlagsValid DistributionFlags = flags.Valid
	// FlagsDefault is what a freshly registered distro gets.
	FlagsDefault DistributionFlags = flags.Default
)

// FlagUndocumentedWSLVersion is reported by GetDistributionConfiguration for
// WSL 2 distros. It is not part of the documented API and cannot be configured.
const FlagUndocumentedWSLVersion DistributionFlags = flags.UndocumentedWSLVersion
