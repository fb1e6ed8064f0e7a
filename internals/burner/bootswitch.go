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

package burner

import (
	"fmt"

	"github.com/termus/burnfw/internals/logger"
	"github.com/termus/burnfw/internals/partition"
)

// Bootloader environment variables.
const (
	envActivePartition = "rootfspart"
	envBootArgs        = "linux_bootargs"
	envCheckFirmware   = "check_fw"

	checkNone   = "none"
	checkVerify = "verify"

	validNo   = "no"
	validNone = "none"
)

// BootArgs returns the kernel command line that boots the named partition.
func BootArgs(name string) string {
	return fmt.Sprintf("root=mtd:%s rootfstype=jffs2", name)
}

// bootSwitcher drives the bootloader side of an update. With the
// handshake enabled the target partition is flagged as not valid before
// it is erased, and the flag is only cleared once the update ends.
type bootSwitcher struct {
	exec      Executor
	handshake bool
}

// invalidate runs before the target partition is erased.
func (b *bootSwitcher) invalidate(spec partition.Spec) error {
	if !b.handshake {
		return nil
	}
	err := b.exec.SetEnv(map[string]string{
		envCheckFirmware: checkNone,
		spec.ValidFlag:   validNo,
	})
	if err != nil {
		return errorf(ErrorKindDefault, "cannot invalidate partition %q: %w", spec.Name, err)
	}
	if err := b.exec.Sync(); err != nil {
		logger.Noticef("Cannot sync after invalidating %s: %v", spec.Name, err)
	}
	return nil
}

// commit makes spec the active boot partition. It must only run after
// the whole payload was written.
func (b *bootSwitcher) commit(spec partition.Spec) error {
	vars := map[string]string{
		envActivePartition: spec.Name,
		envBootArgs:        BootArgs(spec.Name),
	}
	if b.handshake {
		vars[envCheckFirmware] = checkVerify
		vars[spec.ValidFlag] = validNone
	}
	if err := b.exec.SetEnv(vars); err != nil {
		logger.Noticef("Cannot switch boot partition to %s: %v", spec.Name, err)
		return errorf(ErrorKindDefault, "cannot switch boot partition to %q: %w", spec.Name, err)
	}
	logger.Noticef("Boot partition switched to %s.", spec.Name)
	return nil
}

// restore undoes invalidate after a failed update without touching the
// active partition selection.
func (b *bootSwitcher) restore(spec partition.Spec) {
	if !b.handshake {
		return
	}
	err := b.exec.SetEnv(map[string]string{
		envCheckFirmware: checkVerify,
		spec.ValidFlag:   validNone,
	})
	if err != nil {
		logger.Noticef("Cannot restore firmware check for %s: %v", spec.Name, err)
	}
}

func (b *bootSwitcher) sync() {
	if err := b.exec.Sync(); err != nil {
		logger.Noticef("Cannot sync: %v", err)
	}
}
