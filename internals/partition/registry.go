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

// Package partition maps the logical names of the redundant root
// filesystem partitions to the flash devices that back them.
package partition

import (
	"fmt"

	"github.com/canonical/x-go/strutil"
)

// Spec describes one root filesystem partition.
type Spec struct {
	// Name is the logical partition name, as known to the bootloader.
	Name string
	// EraseDevice is the raw MTD character device erased before writing.
	EraseDevice string
	// BlockDevice is the MTD block device the payload is written to.
	BlockDevice string
	// ValidFlag is the bootloader variable holding the partition validity.
	ValidFlag string
}

// Registry is an ordered, read-only table of partitions.
type Registry []Spec

// Default is the A/B layout of the device.
var Default = Registry{{
	Name:        "rootfs",
	EraseDevice: "/dev/mtd2",
	BlockDevice: "/dev/mtdblock2",
	ValidFlag:   "partition1_valid",
}, {
	Name:        "rootfs-2",
	EraseDevice: "/dev/mtd3",
	BlockDevice: "/dev/mtdblock3",
	ValidFlag:   "partition2_valid",
}}

// Lookup returns the partition with the given logical name.
func (r Registry) Lookup(name string) (Spec, bool) {
	for _, spec := range r {
		if spec.Name == name {
			return spec, true
		}
	}
	return Spec{}, false
}

// Names returns the logical partition names in registry order.
func (r Registry) Names() []string {
	names := make([]string, 0, len(r))
	for _, spec := range r {
		names = append(names, spec.Name)
	}
	return names
}

// Validate checks that names are unique and that no two partitions share
// a device.
func (r Registry) Validate() error {
	var names, devices []string
	for _, spec := range r {
		if spec.Name == "" {
			return fmt.Errorf("partition without a name")
		}
		if strutil.ListContains(names, spec.Name) {
			return fmt.Errorf("partition %q defined twice", spec.Name)
		}
		names = append(names, spec.Name)
		for _, dev := range []string{spec.EraseDevice, spec.BlockDevice} {
			if dev == "" {
				continue
			}
			if strutil.ListContains(devices, dev) {
				return fmt.Errorf("partition %q reuses device %s", spec.Name, dev)
			}
			devices = append(devices, dev)
		}
	}
	return nil
}
