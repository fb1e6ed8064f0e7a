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

	"github.com/termus/burnfw/internals/firmware"
)

const cmdValidateSummary = "Check that a firmware image fits this device"
const cmdValidateDescription = `
The validate command reads the header of a firmware image and checks that
it was built for this product. Nothing is written to the device.
`

type cmdValidate struct {
	Positional struct {
		Image string `positional-arg-name:"<image>" required:"yes"`
	} `positional-args:"yes"`
}

func init() {
	AddCommand(&CmdInfo{
		Name:        "validate",
		Summary:     cmdValidateSummary,
		Description: cmdValidateDescription,
		ArgumentsHelp: map[string]ArgumentHelp{
			"<image>": {"<image>", "Path of the firmware image"},
		},
		New: func() flags.Commander { return &cmdValidate{} },
	})
}

func (cmd *cmdValidate) Execute(args []string) error {
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
	header, err := engine.Validate(cmd.Positional.Image)
	if err != nil {
		return err
	}

	w := tabWriter()
	defer w.Flush()
	fmt.Fprintf(w, "image:\t%s\n", cmd.Positional.Image)
	fmt.Fprintf(w, "device-id:\t%d\n", header.DeviceID)
	fmt.Fprintf(w, "vendor:\t%d\n", header.Vendor)
	fmt.Fprintf(w, "version:\t%s\n", header.Version())
	if img, err := firmware.Open(cmd.Positional.Image); err == nil {
		fmt.Fprintf(w, "payload:\t%s\n", formatSize(uint64(img.PayloadSize)))
	}
	if !header.HasMagic() {
		fmt.Fprintf(w, "warning:\tunexpected magic byte 0x%02x\n", header.Magic)
	}
	return nil
}
