package flags

import "fmt"

// Unpacked contains the same information as WslFlags but in a struct instead of an integer.
type Unpacked struct {
	InteropEnabled         bool  // Whether interop with windows is enabled
	PathAppended           bool  // Whether Windows paths are appended
	DriveMountingEnabled   bool  // Whether drive mounting is enabled
	UndocumentedWSLVersion uint8 // Undocumented variable. WSL1 vs. WSL2.

	// Bits this package does not know about. They are kept so that
	// packing an unpacked value gives back the original flags.
	Unknown WslFlags
}

// Unpack examines a WslFlags object and stores its data in a Unpacked flags struct.
func Unpack(f WslFlags) Unpacked {
	up := Unpacked{
		InteropEnabled:         f&EnableInterop != 0,
		PathAppended:           f&AppendNTPath != 0,
		DriveMountingEnabled:   f&EnableDriveMounting != 0,
		UndocumentedWSLVersion: 1,
		Unknown:                f &^ (Valid | UndocumentedWSLVersion),
	}

	if f&UndocumentedWSLVersion != 0 {
		up.UndocumentedWSLVersion = 2
	}

	return up
}

// Pack generates a WslFlags object from the Unpacked struct.
func (conf Unpacked) Pack() (WslFlags, error) {
	f := conf.Unknown &^ (Valid | UndocumentedWSLVersion)

	if conf.InteropEnabled {
		f |= EnableInterop
	}

	if conf.PathAppended {
		f |= AppendNTPath
	}

	if conf.DriveMountingEnabled {
		f |= EnableDriveMounting
	}

	switch conf.UndocumentedWSLVersion {
	case 1:
	case 2:
		f |= UndocumentedWSLVersion
	default:
		return f, fmt.Errorf("unknown WSL version %d", conf.UndocumentedWSLVersion)
	}

	return f, nil
}
