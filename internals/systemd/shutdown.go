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


// Package systemd schedules the reboot into freshly written firmware.
package systemd

import (
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/termus/burnfw/internals/logger"
	"github.com/termus/burnfw/internals/osutil"
)

var shutdownCommand = func() string {
	return osutil.LookPathDefault("shutdown", "/sbin/shutdown")
}

// Reboot asks the init system to restart the device after delay,
// broadcasting msg to logged in users. Delays are rounded down to whole
// minutes, the granularity shutdown(8) accepts.
func Reboot(delay time.Duration, msg string) error {
	if delay < 0 {
		delay = 0
	}
	mins := int64(delay / time.Minute)
	cmd := exec.Command(shutdownCommand(), "-r", fmt.Sprintf("+%d", mins), msg)
	if out, err := cmd.CombinedOutput(); err != nil {
		if output := strings.TrimSpace(string(out)); output != "" {
			return fmt.Errorf("cannot schedule reboot: %s", output)
		}
		return fmt.Errorf("cannot schedule reboot: %w", err)
	}
	logger.Noticef("Reboot scheduled in %d minute(s).", mins)
	return nil
}
