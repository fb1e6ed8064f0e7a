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
)

const cmdEraseSummary = "Erase a firmware partition"
const cmdEraseDescription = `
The erase command erases the flash device backing the given partition.
The bootloader configuration is left untouched, so erasing the active
partition leaves the device unable to boot.
`

type cmdErase struct {
	Positional struct {
		Partition string `positional-arg-name:"<partition>" required:"yes"`
	} `positional-args:"yes"`
}

func init() {
	AddCommand(&CmdInfo{
		Name:        "erase",
		Summary:     cmdEraseSummary,
		Description: cmdEraseDescription,
		ArgumentsHelp: map[string]ArgumentHelp{
			"<partition>": {"<partition>", "Name of the partition, as listed by 'burnfw partitions'"},
		},
		New: func() flags.Commander { return &cmdErase{} },
	})
}

func (cmd *cmdErase) Execute(args []string) error {
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
	if err := engine.Erase(cmd.Positional.Partition); err != nil {
		return err
	}
	fmt.Fprintf(Stdout, "Partition %s erased.\n", cmd.Positional.Partition)
	return nil
}
