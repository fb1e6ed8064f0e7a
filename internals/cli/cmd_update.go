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
	"time"

	"github.com/canonical/go-flags"

	"github.com/termus/burnfw/internals/burner"
	"github.com/termus/burnfw/internals/leds"
	"github.com/termus/burnfw/internals/logger"
	"github.com/termus/burnfw/internals/metrics"
	"github.com/termus/burnfw/internals/progress"
	"github.com/termus/burnfw/internals/systemd"
)

var reboot = systemd.Reboot

const cmdUpdateSummary = "Write a firmware image and boot from it"
const cmdUpdateDescription = `
The update command validates a firmware image, erases the target partition,
writes the image payload into it and switches the bootloader to boot from
it. Without --partition the partition that is not currently booted is used.

If anything fails the bootloader keeps booting the previous partition.
`

type cmdUpdate struct {
	Partition   string `short:"p" long:"partition"`
	NoLEDs      bool   `long:"no-leds"`
	StatusFile  string `long:"status-file" default:"/tmp/burningPercent"`
	MetricsFile string `long:"metrics-file"`
	Reboot      bool   `long:"reboot"`

	Positional struct {
		Image string `positional-arg-name:"<image>" required:"yes"`
	} `positional-args:"yes"`
}

func init() {
	AddCommand(&CmdInfo{
		Name:        "update",
		Aliases:     []string{"burn"},
		Summary:     cmdUpdateSummary,
		Description: cmdUpdateDescription,
		OptionsHelp: map[string]string{
			"partition":    "Partition to write (defaults to the inactive one)",
			"no-leds":      "Do not blink the LEDs while writing",
			"status-file":  "File updated with the completion percentage (empty to disable)",
			"metrics-file": "Write Prometheus metrics about the update to this file",
			"reboot":       "Reboot into the new firmware once it is written",
		},
		ArgumentsHelp: map[string]ArgumentHelp{
			"<image>": {"<image>", "Path of the firmware image"},
		},
		New: func() flags.Commander { return &cmdUpdate{} },
	})
}

func (cmd *cmdUpdate) Execute(args []string) error {
	if len(args) > 0 {
		return ErrExtraArgs
	}

	dev, err := openDevice(true)
	if err != nil {
		return err
	}

	target := cmd.Partition
	if target == "" {
		target, err = inactivePartition(dev)
		if err != nil {
			return err
		}
	}

	var reporters []progress.Reporter
	if cmd.StatusFile != "" {
		reporters = append(reporters, progress.NewStatusFile(cmd.StatusFile, progress.DefaultHold))
	}
	if isStdoutTTY {
		reporters = append(reporters, progress.NewBar(Stdout, "Writing "+target, termWidth()))
	}
	var recorder *metrics.Recorder
	if cmd.MetricsFile != "" {
		recorder = metrics.NewRecorder(target)
		reporters = append(reporters, recorder)
	}

	engine, err := dev.engine(progress.Multi(reporters...))
	if err != nil {
		return err
	}

	start := time.Now()
	finish := func(err error) error {
		if recorder != nil {
			recorder.Finish(err, time.Since(start))
			if werr := recorder.WriteTextfile(cmd.MetricsFile); werr != nil {
				logger.Noticef("Cannot record update metrics: %v", werr)
			}
		}
		return err
	}

	if _, err := engine.Validate(cmd.Positional.Image); err != nil {
		return finish(err)
	}

	if dev.config.LED.Enabled && !cmd.NoLEDs {
		blinker := leds.NewBlinker(dev.config.LED.Device, dev.config.LED.Active())
		if err := blinker.Start(); err != nil {
			logger.Noticef("Cannot blink LEDs: %v", err)
		} else {
			defer func() {
				if err := blinker.Stop(); err != nil {
					logger.Noticef("Cannot stop LEDs: %v", err)
				}
			}()
		}
	}

	if err := finish(engine.Update(cmd.Positional.Image, target)); err != nil {
		return err
	}

	fmt.Fprintf(Stdout, "Firmware written to %s, which boots next.\n", target)
	if cmd.Reboot {
		return reboot(0, "Rebooting into firmware on "+target)
	}
	return nil
}

// inactivePartition returns the only registered partition that is not
// currently booted.
func inactivePartition(dev *device) (string, error) {
	engine, err := dev.engine(nil)
	if err != nil {
		return "", err
	}
	active, err := engine.ActivePartition()
	if err != nil {
		return "", err
	}
	var candidates []string
	for _, name := range engine.Partitions().Names() {
		if name != active.Name {
			candidates = append(candidates, name)
		}
	}
	if len(candidates) != 1 {
		return "", &burner.Error{
			Kind: burner.ErrorKindPartitionPath,
			Err:  fmt.Errorf("cannot choose a partition to update among %q, use --partition", candidates),
		}
	}
	return candidates[0], nil
}
