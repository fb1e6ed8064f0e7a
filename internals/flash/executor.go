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

// Package flash runs the device side of a firmware update: erasing MTD
// partitions and flushing pending writes, with the bootloader environment
// reached through the bootloader package.
package flash

import (
	"bytes"
	"fmt"
	"os/exec"

	"golang.org/x/sys/unix"

	"github.com/termus/burnfw/internals/bootloader"
	"github.com/termus/burnfw/internals/logger"
	"github.com/termus/burnfw/internals/osutil"
)

var (
	eraseCommand = func() string {
		return osutil.LookPathDefault("flash_eraseall", "/usr/sbin/flash_eraseall")
	}
	syncFilesystems = unix.Sync
)

// Executor erases flash partitions with flash_eraseall and keeps the
// bootloader environment in a Bootloader.
type Executor struct {
	loader bootloader.Bootloader
}

// New returns an Executor using the given bootloader for environment
// access.
func New(loader bootloader.Bootloader) *Executor {
	return &Executor{loader: loader}
}

// Erase blocks until the whole MTD device has been erased and formatted
// for JFFS2.
func (e *Executor) Erase(device string) error {
	cmd := exec.Command(eraseCommand(), "--jffs2", device)
	out, err := cmd.CombinedOutput()
	if err != nil {
		if msg := bytes.TrimSpace(out); len(msg) > 0 {
			return fmt.Errorf("cannot erase %s: %s", device, msg)
		}
		return fmt.Errorf("cannot erase %s: %w", device, err)
	}
	logger.Debugf("Erased %s.", device)
	return nil
}

func (e *Executor) GetEnv(name string) (string, error) {
	return e.loader.GetEnv(name)
}

func (e *Executor) SetEnv(vars map[string]string) error {
	return e.loader.SetEnv(vars)
}

// Sync flushes filesystem buffers, including the bootloader environment
// and the freshly written partition.
func (e *Executor) Sync() error {
	syncFilesystems()
	return nil
}
