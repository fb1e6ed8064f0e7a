// Copyright (c) 2023 Canonical Ltd
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License version 3 as
// published by the Free Software Foundation.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

// Package bootloader reads and updates the persistent bootloader
// environment that selects the partition booted next.
package bootloader

import (
	"errors"
	"fmt"
)

// Bootloader provides access to the bootloader environment.
type Bootloader interface {
	// Name returns the bootloader name.
	Name() string

	// Present returns whether the bootloader is installed on the system.
	// Implementations should only return a non-nil error if they can
	// positively identify that the bootloader is installed, but there is
	// actually an error with the installation.
	Present() (bool, error)

	// GetEnv returns the value of the named environment variable.
	GetEnv(name string) (string, error)

	// SetEnv sets all the given variables in a single environment write.
	// An empty value removes the variable.
	SetEnv(vars map[string]string) error
}

var rootDir = "/"

type bootloaderNewFunc func(rootdir string) Bootloader

// bootloaders lists all supported bootloaders by their constructor
// function.
var bootloaders = []bootloaderNewFunc{
	newUBoot,
}

// Find obtains an instance of the first supported bootloader that is
// available on the system.
func Find() (Bootloader, error) {
	for _, newFunc := range bootloaders {
		bl := newFunc(rootDir)
		isPresent, err := bl.Present()
		if err != nil {
			return nil, fmt.Errorf("bootloader %q found but not usable: %w", bl.Name(), err)
		}
		if isPresent {
			return bl, nil
		}
	}
	return nil, errors.New("cannot determine bootloader")
}
