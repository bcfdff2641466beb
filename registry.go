package wslapi

// This file contains utilities to list the distros WSL keeps track of in the registry.

import (
	"context"
	"errors"
	"io/fs"
	"unicode/utf16"

	"github.com/0xrawsec/golang-utils/log"
	"github.com/google/uuid"
	"github.com/ubuntu/decorate"
	"github.com/ubuntu/wslapi/internal/backend"
)

// Size limits of registry elements, in UTF-16 code units.
// https://learn.microsoft.com/en-us/windows/win32/sysinfo/registry-element-size-limits
const (
	maxKeyNameLength = 255
	maxValueLength   = 32 * 1024
)

// DistributionNames returns the DistributionName of every subkey of
// HKCU\Software\Microsoft\Windows\CurrentVersion\Lxss, in registry order.
// If WSL was never used, the key does not exist and the list is empty.
//
// Names are read from the registry only: use Library.RegisteredDistributions
// to keep only those that WSL recognises.
func DistributionNames(ctx context.Context) ([]string, error) {
	return distributionNames(selectBackend(ctx))
}

// RegisteredDistributions is DistributionNames, keeping only the distros that
// WslIsDistributionRegistered recognises.
func (l *Library) RegisteredDistributions() ([]string, error) {
	names, err := distributionNames(l.backend)
	if err != nil {
		return nil, err
	}

	var registered []string
	for _, name := range names {
		args, err := utf16Args("WslIsDistributionRegistered", name)
		if err != nil {
			log.Warnf("wslapi: skipping distro: %v", err)
			continue
		}
		if l.backend.WslIsDistributionRegistered(args[0]) {
			registered = append(registered, name)
		}
	}

	return registered, nil
}

// DefaultDistribution returns the name of the distro wsl.exe starts when none
// is specified. ok is false if there is no default distro.
func DefaultDistribution(ctx context.Context) (name string, ok bool, err error) {
	defer decorate.OnError(&err, "could not read the default distribution from the registry")

	b := selectBackend(ctx)

	lxss, err := b.OpenLxssRegistry(".")
	if errors.Is(err, fs.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	defer lxss.Close()

	guid, err := lxss.Field("DefaultDistribution")
	if errors.Is(err, fs.ErrNotExist) || (err == nil && guid == "") {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}

	name, err = distributionName(b, guid)
	if err != nil {
		return "", false, err
	}

	return name, true, nil
}

func distributionNames(b backend.Backend) (names []string, err error) {
	defer decorate.OnError(&err, "could not list distributions from the registry")

	lxss, err := b.OpenLxssRegistry(".")
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer lxss.Close()

	subkeys, err := lxss.SubkeyNames()
	if err != nil {
		return nil, err
	}

	for _, subkey := range subkeys {
		if len(utf16.Encode([]rune(subkey))) > maxKeyNameLength {
			log.Warnf("wslapi: skipping registry key with a name longer than %d characters", maxKeyNameLength)
			continue
		}

		if _, err := uuid.Parse(subkey); err != nil {
			continue // Not a WSL distro
		}

		name, err := distributionName(b, subkey)
		if errors.Is(err, fs.ErrNotExist) {
			log.Warnf("wslapi: skipping registry key %s: %v", subkey, err)
			continue
		}
		if err != nil {
			return nil, err
		}

		if len(utf16.Encode([]rune(name))) > maxValueLength {
			log.Warnf("wslapi: skipping distro in registry key %s: name longer than %d characters", subkey, maxValueLength)
			continue
		}

		names = append(names, name)
	}

	return names, nil
}

func distributionName(b backend.Backend, subkey string) (string, error) {
	key, err := b.OpenLxssRegistry(subkey)
	if err != nil {
		return "", err
	}
	defer key.Close()

	return key.Field("DistributionName")
}
