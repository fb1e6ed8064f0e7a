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

package cli

import (
	"fmt"

	"github.com/canonical/go-flags"

	"github.com/termus/burnfw/internals/logger"
	"github.com/termus/burnfw/internals/osutil"
	"github.com/termus/burnfw/internals/partition"
)

const cmdPartitionsSummary = "List the firmware partitions"
const cmdPartitionsDescription = `
The partitions command lists the partitions firmware can be written to,
with their devices, their size as reported by the kernel and which one the
bootloader currently boots.
`

type cmdPartitions struct{}

func init() {
	AddCommand(&CmdInfo{
		Name:        "partitions",
		Summary:     cmdPartitionsSummary,
		Description: cmdPartitionsDescription,
		New:         func() flags.Commander { return &cmdPartitions{} },
	})
}

var readMTD = partition.ReadMTD

func (cmd *cmdPartitions) Execute(args []string) error {
	if len(args) > 0 {
		return ErrExtraArgs
	}

	dev, err := openDevice(false)
	if err != nil {
		return err
	}
	engine, err := dev.engine(nil)
	if err != nil {
		return err
	}

	activeName := ""
	if active, err := engine.ActivePartition(); err == nil {
		activeName = active.Name
	} else {
		logger.Debugf("Cannot determine active partition: %v", err)
	}
	mtd, err := readMTD()
	if err != nil {
		logger.Debugf("Cannot read MTD partitions: %v", err)
	}

	w := tabWriter()
	defer w.Flush()
	fmt.Fprintln(w, "Name\tErase device\tBlock device\tSize\tNotes")
	for _, spec := range engine.Partitions() {
		size := "-"
		if part, ok := partition.FindMTD(mtd, spec.Name); ok {
			size = formatSize(part.Size)
		}
		notes := "-"
		switch {
		case spec.Name == activeName:
			notes = "active"
		case spec.BlockDevice != "" && !osutil.DeviceExists(spec.BlockDevice):
			notes = "missing"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", spec.Name, spec.EraseDevice, orDash(spec.BlockDevice), size, notes)
	}
	return nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
