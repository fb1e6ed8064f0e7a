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

	version "github.com/termus/burnfw/cmd"
	"github.com/termus/burnfw/internals/firmware"
	"github.com/termus/burnfw/internals/logger"
)

const cmdVersionSummary = "Show version details"
const cmdVersionDescription = `
The version command displays the version of burnfw and of the firmware the
device is currently running from.
`

var runningInfo = firmware.RunningInfo

type cmdVersion struct {
	ClientOnly bool `long:"client"`
}

func init() {
	AddCommand(&CmdInfo{
		Name:        "version",
		Summary:     cmdVersionSummary,
		Description: cmdVersionDescription,
		OptionsHelp: map[string]string{
			"client": "Only display the burnfw version",
		},
		New: func() flags.Commander { return &cmdVersion{} },
	})
}

func (cmd *cmdVersion) Execute(args []string) error {
	if len(args) > 0 {
		return ErrExtraArgs
	}

	if cmd.ClientOnly {
		fmt.Fprintln(Stdout, version.Version)
		return nil
	}

	active := "-"
	if dev, err := openDevice(false); err == nil {
		if engine, err := dev.engine(nil); err == nil {
			if spec, err := engine.ActivePartition(); err == nil {
				active = spec.Name
			}
		}
	}
	running := "-"
	if info, err := runningInfo(); err == nil && info.String() != "" {
		running = info.String()
	} else if err != nil {
		logger.Debugf("Cannot read running firmware metadata: %v", err)
	}
	w := tabWriter()
	fmt.Fprintf(w, "burnfw\t%s\n", version.Version)
	fmt.Fprintf(w, "firmware\t%s\n", running)
	fmt.Fprintf(w, "boot-partition\t%s\n", active)
	w.Flush()
	return nil
}
