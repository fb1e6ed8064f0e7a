// Copyright (c) 2014-2020 Canonical Ltd
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

	"github.com/termus/burnfw/internals/burner"
	"github.com/termus/burnfw/internals/config"
	"github.com/termus/burnfw/internals/firmware"
	"github.com/termus/burnfw/internals/logger"
	"github.com/termus/burnfw/internals/partition"
)

var FormatSize = formatSize

func FakeIsStdoutTTY(t bool) (restore func()) {
	oldIsStdoutTTY := isStdoutTTY
	isStdoutTTY = t
	return func() {
		isStdoutTTY = oldIsStdoutTTY
	}
}

func FakeTermWidth(width int) (restore func()) {
	old := termWidth
	termWidth = func() int { return width }
	return func() {
		termWidth = old
	}
}

// FakeDevice makes commands run against the given executor and registry
// instead of the machine's bootloader and flash.
func FakeDevice(cfg *config.DeviceConfig, exec burner.Executor, registry partition.Registry) (restore func()) {
	old := openDevice
	openDevice = func(needBootloader bool) (*device, error) {
		return &device{config: cfg, exec: exec, registry: registry}, nil
	}
	return func() {
		openDevice = old
	}
}

// RealDevice undoes FakeDevice so that the configuration is really loaded.
func RealDevice() (restore func()) {
	old := openDevice
	openDevice = openDeviceImpl
	return func() {
		openDevice = old
	}
}

func FakeDeviceError(err error) (restore func()) {
	old := openDevice
	openDevice = func(needBootloader bool) (*device, error) {
		return nil, err
	}
	return func() {
		openDevice = old
	}
}

func FakeReadMTD(f func() ([]partition.MTDPart, error)) (restore func()) {
	old := readMTD
	readMTD = f
	return func() {
		readMTD = old
	}
}

func FakeRunningInfo(info *firmware.Info, err error) (restore func()) {
	old := runningInfo
	runningInfo = func() (*firmware.Info, error) { return info, err }
	return func() {
		runningInfo = old
	}
}

func FakeReboot(f func(delay time.Duration, msg string) error) (restore func()) {
	old := reboot
	reboot = f
	return func() {
		reboot = old
	}
}

func BurnfwMain() (exitCode int) {
	oldLogger := logger.SetLogger(logger.NullLogger)
	oldOsExit := osExit
	oldSetupLogger := setupLogger
	setupLogger = func() {}
	osExit = func(code int) {
		panic(&exitStatus{code})
	}
	defer func() {
		osExit = oldOsExit
		setupLogger = oldSetupLogger
		logger.SetLogger(oldLogger)
		if v := recover(); v != nil {
			if e, ok := v.(*exitStatus); ok {
				exitCode = e.code
			} else {
				panic(v)
			}
		}
	}()
	if err := Run(); err != nil {
		fmt.Fprintf(Stderr, "error: %v\n", err)
		osExit(1)
	}
	return
}
